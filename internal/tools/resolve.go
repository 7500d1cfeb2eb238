package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// Scope pins tool execution to an authenticated (party, user) pair. It is
// fixed when the dispatcher is built from the session, so no tool argument
// can smuggle in a different tenant.
type Scope struct {
	PartyID uuid.UUID
	UserID  uuid.UUID
}

// ResolveAssignee maps a symbolic assignee reference to a concrete user id.
// This is the single shared resolution point for every tool that accepts a
// role, so the semantics cannot diverge between tools.
//
// "self" always resolves to the scope's user. "coowner" resolves to the
// first accepted member of the party other than self, or nil when the party
// has no accepted co-owner; the nil case is not an error, and callers treat
// it as "unassigned".
func ResolveAssignee(ctx context.Context, members db.MemberReader, scope Scope, ref models.AssigneeRole) (*uuid.UUID, error) {
	switch ref {
	case models.RoleSelf:
		userID := scope.UserID
		return &userID, nil
	case models.RoleCoOwner:
		coOwner, err := members.FindCoOwner(ctx, scope.PartyID, scope.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve coowner: %w", err)
		}
		return coOwner, nil
	default:
		return nil, &ValidationError{Field: "assignedTo", Reason: fmt.Sprintf("unknown role %q", ref)}
	}
}
