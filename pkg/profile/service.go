package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// Service provides profile store operations.
type Service struct {
	repo Repository
}

// NewService creates a new profile service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureRecord creates the user's profile record with the default tenant role
// if it does not exist yet. Called on first login and on registration;
// existing records are returned untouched.
func (s *Service) EnsureRecord(ctx context.Context, userID uuid.UUID, email, displayName string) (Record, error) {
	rec, err := s.repo.Get(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return Record{}, err
	}

	role := rbac.RoleTenant
	rec, err = s.repo.Upsert(ctx, UpsertParams{
		UserID:      userID,
		Email:       &email,
		DisplayName: &displayName,
		Role:        &role,
	})
	if err != nil {
		return Record{}, err
	}
	slog.Info("Created profile record", "userId", userID, "email", email)
	return rec, nil
}

// SetRole merges the new role (and current identity display data) into the
// user's record.
func (s *Service) SetRole(ctx context.Context, userID uuid.UUID, email, displayName string, role rbac.Role) (Record, error) {
	return s.repo.Upsert(ctx, UpsertParams{
		UserID:      userID,
		Email:       &email,
		DisplayName: &displayName,
		Role:        &role,
	})
}

// Get returns the record for a user.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	return s.repo.Get(ctx, userID)
}

// Roster returns every profile record.
func (s *Service) Roster(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// Delete removes the record for a user.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Delete(ctx, userID)
}
