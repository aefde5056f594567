package chainreact

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField(t *testing.T) {
	var unset Field[string]
	assert.False(t, unset.IsSet())
	assert.False(t, unset.IsNull())
	_, ok := unset.Value()
	assert.False(t, ok)

	null := Null[string]()
	assert.True(t, null.IsSet())
	assert.True(t, null.IsNull())
	_, ok = null.Value()
	assert.False(t, ok)

	set := Set("")
	assert.True(t, set.IsSet())
	assert.False(t, set.IsNull())
	v, ok := set.Value()
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestWorkflowUpdateFields(t *testing.T) {
	u := WorkflowUpdate{
		Name:      Set("renamed"),
		Nodes:     Set([]Node{}),
		Variables: Null[map[string]any](),
		Extra:     map[string]any{"name": "from-extra", "owner": nil},
	}

	assert.Equal(t, map[string]any{
		"name":      "from-extra",
		"nodes":     []Node{},
		"variables": nil,
		"owner":     nil,
	}, u.Fields())
	assert.False(t, u.IsEmpty())
	assert.True(t, WorkflowUpdate{}.IsEmpty())

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"from-extra","nodes":[],"variables":null,"owner":null}`, string(raw))
}

func TestWebhookUpdateFields(t *testing.T) {
	u := WebhookUpdate{
		IsActive: Set(false),
		Headers:  Set(map[string]string{}),
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_active":false,"headers":{}}`, string(raw))
	assert.True(t, WebhookUpdate{}.IsEmpty())
}

func TestUpdateMarshalsThroughPointer(t *testing.T) {
	u := &WorkflowUpdate{Status: Set("paused")}
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"paused"}`, string(raw))
}
