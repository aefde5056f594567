package chainreact

import (
	"encoding/json"
	"maps"
)

type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldNull
	fieldSet
)

// Field is one member of a partial update. The zero value is unset and is
// not sent; Null sends an explicit JSON null; Set sends the value.
type Field[T any] struct {
	value T
	state fieldState
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, state: fieldSet}
}

// Null returns a Field that clears the member server-side.
func Null[T any]() Field[T] {
	return Field[T]{state: fieldNull}
}

// IsSet reports whether the field will be sent, as a value or as null.
func (f Field[T]) IsSet() bool {
	return f.state != fieldUnset
}

// IsNull reports whether the field will be sent as null.
func (f Field[T]) IsNull() bool {
	return f.state == fieldNull
}

// Value returns the carried value and whether there is one.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == fieldSet
}

func putField[T any](fields map[string]any, key string, f Field[T]) {
	switch f.state {
	case fieldNull:
		fields[key] = nil
	case fieldSet:
		fields[key] = f.value
	}
}

// WorkflowUpdate is a partial update of a workflow. Only the fields that are
// set end up in the request body.
type WorkflowUpdate struct {
	Name          Field[string]
	Description   Field[string]
	Nodes         Field[[]Node]
	Connections   Field[[]Connection]
	Variables     Field[map[string]any]
	Configuration Field[map[string]any]
	Status        Field[string]

	// Extra carries members the typed fields do not cover. A nil value is
	// sent as null. Extra wins over a typed field with the same key.
	Extra map[string]any
}

// Fields returns the members that will be sent.
func (u WorkflowUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	putField(fields, "name", u.Name)
	putField(fields, "description", u.Description)
	putField(fields, "nodes", u.Nodes)
	putField(fields, "connections", u.Connections)
	putField(fields, "variables", u.Variables)
	putField(fields, "configuration", u.Configuration)
	putField(fields, "status", u.Status)
	maps.Copy(fields, u.Extra)
	return fields
}

// IsEmpty reports whether the update would send an empty object.
func (u WorkflowUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

// MarshalJSON implements json.Marshaler
func (u WorkflowUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Fields())
}

// WebhookUpdate is a partial update of a webhook subscription.
type WebhookUpdate struct {
	Name       Field[string]
	EventTypes Field[[]string]
	TargetURL  Field[string]
	IsActive   Field[bool]
	SecretKey  Field[string]
	Headers    Field[map[string]string]

	// Extra carries members the typed fields do not cover.
	Extra map[string]any
}

// Fields returns the members that will be sent.
func (u WebhookUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	putField(fields, "name", u.Name)
	putField(fields, "event_types", u.EventTypes)
	putField(fields, "target_url", u.TargetURL)
	putField(fields, "is_active", u.IsActive)
	putField(fields, "secret_key", u.SecretKey)
	putField(fields, "headers", u.Headers)
	maps.Copy(fields, u.Extra)
	return fields
}

// IsEmpty reports whether the update would send an empty object.
func (u WebhookUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

// MarshalJSON implements json.Marshaler
func (u WebhookUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Fields())
}
