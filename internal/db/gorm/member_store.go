package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// MemberStore reads party membership. This core never writes members; it
// only resolves the "coowner" role against them.
type MemberStore struct {
	db *gorm.DB
}

// NewMemberStore creates a new member store.
func NewMemberStore(store *Store) *MemberStore {
	return &MemberStore{db: store.DB}
}

// FindCoOwner returns the first accepted member of the party other than
// selfID, ordered by join time then user id for determinism. Returns
// (nil, nil) when the party has no accepted co-owner: an unresolved
// co-owner is not an error.
func (s *MemberStore) FindCoOwner(ctx context.Context, partyID, selfID uuid.UUID) (*uuid.UUID, error) {
	var record PartyMember
	err := s.db.WithContext(ctx).
		Where("party_id = ? AND user_id != ? AND invite_status = ?",
			partyID, selfID, string(models.InviteAccepted)).
		Order("joined_at ASC, user_id ASC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find co-owner: %w", err)
	}

	userID := record.UserID
	return &userID, nil
}

// Compile-time check: MemberStore must satisfy db.MemberReader.
var _ db.MemberReader = (*MemberStore)(nil)
