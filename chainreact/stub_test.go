package chainreact

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubServer is an in-memory ChainReact API. Workflows and webhooks are kept
// as raw JSON objects so partial updates merge exactly the keys they carry.
type stubServer struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	nextID    int
	workflows map[string]map[string]any
	webhooks  map[string]map[string]any
	bodies    map[string]map[string]any
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()

	s := &stubServer{
		t:         t,
		workflows: make(map[string]map[string]any),
		webhooks:  make(map[string]map[string]any),
		bodies:    make(map[string]map[string]any),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubServer) client(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(Config{APIKey: "stub-key", BaseURL: s.server.URL})
	require.NoError(t, err)
	return c
}

// lastBody returns the JSON object most recently sent as "METHOD path".
func (s *stubServer) lastBody(method, path string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[method+" "+path]
}

func (s *stubServer) seedWorkflow(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := "wf_" + strconv.Itoa(s.nextID)
	s.workflows[id] = map[string]any{
		"id":          id,
		"name":        name,
		"nodes":       []any{},
		"connections": []any{},
		"status":      "draft",
		"created_at":  "2024-01-15T10:30:00Z",
		"updated_at":  "2024-01-15T10:30:00Z",
	}
	return id
}

func (s *stubServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer stub-key" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid API key"})
		return
	}

	var body map[string]any
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed JSON"})
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[r.Method+" "+r.URL.Path] = body

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/"), "/")
	switch parts[0] {
	case "workflows":
		s.handleWorkflows(w, r, parts[1:], body)
	case "webhooks":
		s.handleWebhooks(w, r, parts[1:], body)
	case "analytics":
		q := r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{
			map[string]any{"date": q.Get("start_date"), "granularity": q.Get("granularity"), "executions": 3},
		}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "route not found"})
	}
}

func (s *stubServer) handleWorkflows(w http.ResponseWriter, r *http.Request, parts []string, body map[string]any) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		ids := make([]string, 0, len(s.workflows))
		for id := range s.workflows {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		items := []any{}
		for i := (page - 1) * limit; i < len(ids) && i < page*limit; i++ {
			items = append(items, s.workflows[ids[i]])
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data":       items,
			"pagination": map[string]any{"page": page, "limit": limit, "total": len(ids)},
		})

	case len(parts) == 0 && r.Method == http.MethodPost:
		s.nextID++
		id := "wf_" + strconv.Itoa(s.nextID)
		wf := map[string]any{"id": id, "status": "draft", "created_at": "2024-01-15T10:30:00Z", "updated_at": "2024-01-15T10:30:00Z"}
		for k, v := range body {
			wf[k] = v
		}
		s.workflows[id] = wf
		writeJSON(w, http.StatusCreated, map[string]any{"data": wf})

	case len(parts) == 2 && parts[1] == "execute" && r.Method == http.MethodPost:
		if _, ok := s.workflows[parts[0]]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "workflow not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"execution_id": "exec_" + parts[0]}})

	case len(parts) == 1:
		wf, ok := s.workflows[parts[0]]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "workflow not found"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"data": wf})
		case http.MethodPut:
			for k, v := range body {
				wf[k] = v
			}
			wf["updated_at"] = "2024-01-16T08:00:00Z"
			writeJSON(w, http.StatusOK, map[string]any{"data": wf})
		case http.MethodDelete:
			delete(s.workflows, parts[0])
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *stubServer) handleWebhooks(w http.ResponseWriter, r *http.Request, parts []string, body map[string]any) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		items := []any{}
		for _, wh := range s.webhooks {
			items = append(items, wh)
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": items})

	case len(parts) == 0 && r.Method == http.MethodPost:
		s.nextID++
		id := "wh_" + strconv.Itoa(s.nextID)
		wh := map[string]any{"id": id, "is_active": true, "created_at": "2024-01-15T10:30:00Z"}
		for k, v := range body {
			wh[k] = v
		}
		s.webhooks[id] = wh
		writeJSON(w, http.StatusCreated, map[string]any{"data": wh})

	case len(parts) == 1:
		wh, ok := s.webhooks[parts[0]]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "webhook not found"})
			return
		}
		switch r.Method {
		case http.MethodPut:
			for k, v := range body {
				wh[k] = v
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": wh})
		case http.MethodDelete:
			delete(s.webhooks, parts[0])
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": fmt.Sprintf("%s not allowed", r.Method)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
