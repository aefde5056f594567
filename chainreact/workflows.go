package chainreact

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

const workflowsPath = "/api/v1/workflows"

// Page defaults used when ListOptions leaves them at zero.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// ListOptions selects a page of a list endpoint. Page and Limit are hints;
// the returned Pagination is authoritative.
type ListOptions struct {
	Page  int
	Limit int
}

func (o ListOptions) query() url.Values {
	page, limit := o.Page, o.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return params
}

// WorkflowService handles the workflow endpoints
type WorkflowService struct {
	transport Transport
	logger    zerolog.Logger
}

func workflowPath(id string) string {
	return workflowsPath + "/" + url.PathEscape(id)
}

// List retrieves one page of workflows
func (s *WorkflowService) List(ctx context.Context, opts ListOptions) (*PaginatedResponse[Workflow], error) {
	body, err := s.transport.Do(ctx, http.MethodGet, workflowsPath, opts.query(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	var page PaginatedResponse[Workflow]
	if err := body.Decode("data", &page.Data); err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", unusable(err))
	}
	if err := body.Decode("pagination", &page.Pagination); err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", unusable(err))
	}

	s.logger.Debug().
		Int("page", page.Pagination.Page).
		Int("count", len(page.Data)).
		Int("total", page.Pagination.Total).
		Msg("Retrieved workflows from ChainReact")

	return &page, nil
}

// ListAll walks every page of workflows using the given page size
func (s *WorkflowService) ListAll(ctx context.Context, limit int) ([]Workflow, error) {
	var all []Workflow
	page := DefaultPage

	for {
		resp, err := s.List(ctx, ListOptions{Page: page, Limit: limit})
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)

		// An empty page ends the walk even if the totals disagree.
		if len(resp.Data) == 0 || page >= resp.Pagination.TotalPages() {
			break
		}
		page++
	}

	return all, nil
}

// Get retrieves a single workflow
func (s *WorkflowService) Get(ctx context.Context, id string) (*Workflow, error) {
	if err := validateID("workflow", id); err != nil {
		return nil, err
	}

	body, err := s.transport.Do(ctx, http.MethodGet, workflowPath(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow %q: %w", id, err)
	}

	return decodeWorkflow(body, "get", id)
}

// Create creates a new workflow
func (s *WorkflowService) Create(ctx context.Context, req CreateWorkflowRequest) (*Workflow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := s.transport.Do(ctx, http.MethodPost, workflowsPath, nil, req.payload())
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow %q: %w", req.Name, err)
	}

	wf, err := decodeWorkflow(body, "create", req.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("workflow_id", wf.ID).Str("name", wf.Name).Msg("Created workflow")
	return wf, nil
}

// Update sends the set fields of patch and returns the server's new copy
func (s *WorkflowService) Update(ctx context.Context, id string, patch WorkflowUpdate) (*Workflow, error) {
	if err := validateID("workflow", id); err != nil {
		return nil, err
	}

	body, err := s.transport.Do(ctx, http.MethodPut, workflowPath(id), nil, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow %q: %w", id, err)
	}

	return decodeWorkflow(body, "update", id)
}

// Delete deletes a workflow
func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	if err := validateID("workflow", id); err != nil {
		return err
	}

	if _, err := s.transport.Do(ctx, http.MethodDelete, workflowPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete workflow %q: %w", id, err)
	}

	s.logger.Debug().Str("workflow_id", id).Msg("Deleted workflow")
	return nil
}

// Execute triggers a run of the workflow. A nil input sends an empty object.
func (s *WorkflowService) Execute(ctx context.Context, id string, input map[string]any) (string, error) {
	if err := validateID("workflow", id); err != nil {
		return "", err
	}

	payload := map[string]any{}
	if input != nil {
		payload["input"] = input
	}

	body, err := s.transport.Do(ctx, http.MethodPost, workflowPath(id)+"/execute", nil, payload)
	if err != nil {
		return "", fmt.Errorf("failed to execute workflow %q: %w", id, err)
	}

	var data struct {
		ExecutionID string `json:"execution_id"`
	}
	if err := body.Decode("data", &data); err != nil {
		return "", fmt.Errorf("failed to execute workflow %q: %w", id, unusable(err))
	}
	if data.ExecutionID == "" {
		return "", fmt.Errorf("failed to execute workflow %q: %w",
			id, unusable(fmt.Errorf("%w: missing execution_id", ErrUnexpectedResponse)))
	}

	s.logger.Debug().Str("workflow_id", id).Str("execution_id", data.ExecutionID).Msg("Executed workflow")
	return data.ExecutionID, nil
}

func decodeWorkflow(body Body, op, ref string) (*Workflow, error) {
	var wf Workflow
	if err := body.Decode("data", &wf); err != nil {
		return nil, fmt.Errorf("failed to %s workflow %q: %w", op, ref, unusable(err))
	}
	return &wf, nil
}
