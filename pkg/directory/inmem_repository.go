package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// InMemoryRepository implements Repository using in-memory storage.
type InMemoryRepository struct {
	mu         sync.RWMutex
	identities map[uuid.UUID]Identity
	byEmail    map[string]uuid.UUID
}

// NewInMemoryRepository creates a new in-memory identity repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		identities: make(map[uuid.UUID]Identity),
		byEmail:    make(map[string]uuid.UUID),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new identity.
func (r *InMemoryRepository) Create(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(params.Email)
	if _, exists := r.byEmail[key]; exists {
		return Identity{}, ErrEmailTaken
	}

	ident := Identity{
		ID:           uuid.New(),
		Email:        key,
		DisplayName:  params.DisplayName,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	r.identities[ident.ID] = ident
	r.byEmail[key] = ident.ID
	return ident, nil
}

// GetByID looks up an identity by its unique identifier.
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.identities[id]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return ident, nil
}

// GetByEmail resolves an email address to an identity.
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return r.identities[id], nil
}

// List returns all identities.
func (r *InMemoryRepository) List(ctx context.Context) ([]Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Identity, 0, len(r.identities))
	for _, ident := range r.identities {
		result = append(result, ident)
	}
	return result, nil
}

// SetClaims rewrites the identity's claim set.
func (r *InMemoryRepository) SetClaims(ctx context.Context, id uuid.UUID, claims rbac.Claims) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	ident.Claims = claims
	ident.ClaimsUpdatedAt = time.Now()
	r.identities[id] = ident
	return nil
}

// UpdatePassword replaces the identity's password hash.
func (r *InMemoryRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	ident.PasswordHash = passwordHash
	r.identities[id] = ident
	return nil
}

// Delete removes an identity and its credentials.
func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	delete(r.byEmail, normalizeEmail(ident.Email))
	delete(r.identities, id)
	return nil
}
