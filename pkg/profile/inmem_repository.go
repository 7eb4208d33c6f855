package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
}

// NewInMemoryRepository creates a new in-memory profile repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[uuid.UUID]Record),
	}
}

// Upsert creates or merges a record.
func (r *InMemoryRepository) Upsert(ctx context.Context, params UpsertParams) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	rec, exists := r.records[params.UserID]
	if !exists {
		rec = Record{UserID: params.UserID, CreatedAt: now}
	}
	if params.Email != nil {
		rec.Email = *params.Email
	}
	if params.DisplayName != nil {
		rec.DisplayName = *params.DisplayName
	}
	if params.Role != nil {
		rec.Role = *params.Role
	}
	rec.LastUpdated = now

	r.records[params.UserID] = rec
	return rec, nil
}

// Get returns the record for a user.
func (r *InMemoryRepository) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

// List returns all records.
func (r *InMemoryRepository) List(ctx context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		result = append(result, rec)
	}
	return result, nil
}

// Delete removes the record for a user.
func (r *InMemoryRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[userID]; !ok {
		return ErrRecordNotFound
	}
	delete(r.records, userID)
	return nil
}
