package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohabitat/assistant-core/pkg/models"
)

// fakeMembers serves a fixed co-owner lookup.
type fakeMembers struct {
	coOwner *uuid.UUID
	err     error

	lastPartyID uuid.UUID
	lastSelfID  uuid.UUID
}

func (f *fakeMembers) FindCoOwner(_ context.Context, partyID, selfID uuid.UUID) (*uuid.UUID, error) {
	f.lastPartyID = partyID
	f.lastSelfID = selfID
	return f.coOwner, f.err
}

// TestResolveAssignee_Self verifies "self" maps to the scope's user.
func TestResolveAssignee_Self(t *testing.T) {
	scope := Scope{PartyID: uuid.New(), UserID: uuid.New()}

	got, err := ResolveAssignee(context.Background(), &fakeMembers{}, scope, models.RoleSelf)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, scope.UserID, *got)
}

// TestResolveAssignee_CoOwner verifies "coowner" resolves through the
// member store within the scope's party.
func TestResolveAssignee_CoOwner(t *testing.T) {
	scope := Scope{PartyID: uuid.New(), UserID: uuid.New()}
	partner := uuid.New()
	members := &fakeMembers{coOwner: &partner}

	got, err := ResolveAssignee(context.Background(), members, scope, models.RoleCoOwner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, partner, *got)
	assert.Equal(t, scope.PartyID, members.lastPartyID)
	assert.Equal(t, scope.UserID, members.lastSelfID)
}

// TestResolveAssignee_NoCoOwner verifies a solo party resolves to nil
// without an error.
func TestResolveAssignee_NoCoOwner(t *testing.T) {
	scope := Scope{PartyID: uuid.New(), UserID: uuid.New()}

	got, err := ResolveAssignee(context.Background(), &fakeMembers{}, scope, models.RoleCoOwner)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestResolveAssignee_StoreError verifies store failures propagate.
func TestResolveAssignee_StoreError(t *testing.T) {
	scope := Scope{PartyID: uuid.New(), UserID: uuid.New()}
	members := &fakeMembers{err: errors.New("connection reset")}

	_, err := ResolveAssignee(context.Background(), members, scope, models.RoleCoOwner)
	require.Error(t, err)
}

// TestResolveAssignee_UnknownRole verifies any other value is a validation
// error, never a lookup.
func TestResolveAssignee_UnknownRole(t *testing.T) {
	scope := Scope{PartyID: uuid.New(), UserID: uuid.New()}

	_, err := ResolveAssignee(context.Background(), &fakeMembers{}, scope, models.AssigneeRole("everyone"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "assignedTo", vErr.Field)
}
