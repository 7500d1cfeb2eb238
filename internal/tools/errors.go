// Package tools implements the scoped tool catalog and dispatcher.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/internal/embedding"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// ValidationError reports tool arguments that failed schema validation.
// It is always raised before any store access, so a malformed call can
// never leave partial side effects.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// failureFrom converts an execution error into a structured failed result.
// The dispatcher never lets a raw error escape to the orchestrator.
func failureFrom(err error) models.ToolResult {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return models.Fail(models.ErrValidation, vErr.Error())
	}

	var pErr *embedding.ProviderError
	if errors.As(err, &pErr) {
		return models.Fail(models.ErrEmbeddingProvider, pErr.Error())
	}

	if errors.Is(err, db.ErrNotFound) {
		return models.Fail(models.ErrNotFound, "the requested item could not be found")
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.Fail(models.ErrStore, "the operation timed out")
	}

	return models.Fail(models.ErrStore, err.Error())
}
