package tools

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTaskSchema() map[string]any {
	return catalog[ToolCreateTask].Parameters
}

// TestValidateArgs_ValidInput verifies a well-formed call decodes cleanly.
func TestValidateArgs_ValidInput(t *testing.T) {
	args, err := validateArgs(createTaskSchema(), json.RawMessage(
		`{"title": "Renew insurance", "priority": "high", "assignedTo": "coowner"}`))
	require.NoError(t, err)
	assert.Equal(t, "Renew insurance", args["title"])
	assert.Equal(t, "high", args["priority"])
	assert.Equal(t, "coowner", args["assignedTo"])
}

// TestValidateArgs_UnknownField verifies extra fields are rejected rather
// than ignored.
func TestValidateArgs_UnknownField(t *testing.T) {
	_, err := validateArgs(createTaskSchema(), json.RawMessage(
		`{"title": "Renew insurance", "partyId": "some-other-party"}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "partyId", vErr.Field)
	assert.Equal(t, "unknown field", vErr.Reason)
}

// TestValidateArgs_MissingRequired verifies required fields are enforced.
func TestValidateArgs_MissingRequired(t *testing.T) {
	_, err := validateArgs(createTaskSchema(), json.RawMessage(`{"priority": "low"}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
}

// TestValidateArgs_WrongType verifies non-string values fail.
func TestValidateArgs_WrongType(t *testing.T) {
	_, err := validateArgs(createTaskSchema(), json.RawMessage(`{"title": 42}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, "must be a string", vErr.Reason)
}

// TestValidateArgs_NullValue verifies an explicit JSON null is a type
// error, not an empty string.
func TestValidateArgs_NullValue(t *testing.T) {
	_, err := validateArgs(createTaskSchema(), json.RawMessage(`{"title": null}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, "must be a string", vErr.Reason)

	// Same for optional fields.
	_, err = validateArgs(createTaskSchema(), json.RawMessage(
		`{"title": "Renew insurance", "description": null}`))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "description", vErr.Field)
}

// TestValidateArgs_EnumViolation verifies out-of-enum values fail.
func TestValidateArgs_EnumViolation(t *testing.T) {
	_, err := validateArgs(createTaskSchema(), json.RawMessage(
		`{"title": "Renew insurance", "priority": "urgent"}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "priority", vErr.Field)
}

// TestValidateArgs_NotAnObject verifies non-object payloads fail.
func TestValidateArgs_NotAnObject(t *testing.T) {
	_, err := validateArgs(createTaskSchema(), json.RawMessage(`["title"]`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "JSON object")
}

// TestValidateArgs_EmptyArguments verifies a missing body is an empty object,
// which fails only when required fields exist.
func TestValidateArgs_EmptyArguments(t *testing.T) {
	args, err := validateArgs(catalog[ToolListTasks].Parameters, nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = validateArgs(createTaskSchema(), nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
}

// TestCatalog_StableOrderAndClosedSchemas verifies every tool forbids
// unknown fields and the catalog order is deterministic.
func TestCatalog_StableOrderAndClosedSchemas(t *testing.T) {
	defs := Catalog()
	require.Len(t, defs, 5)
	assert.Equal(t, ToolSearchDocuments, defs[0].Name)
	assert.Equal(t, ToolAddTaskComment, defs[4].Name)

	for _, def := range defs {
		assert.Equal(t, false, def.Parameters["additionalProperties"], def.Name)
		assert.Equal(t, "object", def.Parameters["type"], def.Name)
	}
}
