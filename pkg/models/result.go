package models

// ErrorKind classifies a failed tool call so the conversational agent can
// reason about the failure instead of crashing the turn.
type ErrorKind string

const (
	// ErrValidation means the tool arguments failed schema validation.
	// Raised before any store access.
	ErrValidation ErrorKind = "validation"
	// ErrNotFound means the referenced entity does not exist or belongs to
	// another party. The two cases are deliberately indistinguishable.
	ErrNotFound ErrorKind = "not_found"
	// ErrEmbeddingProvider means the upstream embedding call failed or
	// returned vectors of the wrong dimension.
	ErrEmbeddingProvider ErrorKind = "embedding_provider"
	// ErrStore means the underlying persistence layer failed.
	ErrStore ErrorKind = "store"
)

// ToolResult is the structured outcome of a tool call. Exactly one of the
// success payload or the error kind+message is populated.
type ToolResult struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   ErrorKind `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

// OK wraps a tool-specific payload in a successful result.
func OK(data any) ToolResult {
	return ToolResult{Success: true, Data: data}
}

// Fail builds a failed result with the given kind and human-readable message.
func Fail(kind ErrorKind, message string) ToolResult {
	return ToolResult{Success: false, Error: kind, Message: message}
}
