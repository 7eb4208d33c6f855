package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryPropertyRepository implements PropertyRepository using in-memory
// storage.
type InMemoryPropertyRepository struct {
	mu         sync.RWMutex
	properties map[uuid.UUID]Property
}

// NewInMemoryPropertyRepository creates a new in-memory property repository.
func NewInMemoryPropertyRepository() *InMemoryPropertyRepository {
	return &InMemoryPropertyRepository{
		properties: make(map[uuid.UUID]Property),
	}
}

// Create stores a new property.
func (r *InMemoryPropertyRepository) Create(ctx context.Context, params CreatePropertyParams) (Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prop := Property{
		ID:        uuid.New(),
		Name:      params.Name,
		Address:   params.Address,
		CreatedAt: time.Now(),
	}
	r.properties[prop.ID] = prop
	return prop, nil
}

// Get returns a property by id.
func (r *InMemoryPropertyRepository) Get(ctx context.Context, id uuid.UUID) (Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prop, ok := r.properties[id]
	if !ok {
		return Property{}, ErrPropertyNotFound
	}
	return prop, nil
}

// List returns all properties.
func (r *InMemoryPropertyRepository) List(ctx context.Context) ([]Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Property, 0, len(r.properties))
	for _, prop := range r.properties {
		result = append(result, prop)
	}
	return result, nil
}

// Delete removes a property.
func (r *InMemoryPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.properties[id]; !ok {
		return ErrPropertyNotFound
	}
	delete(r.properties, id)
	return nil
}

// InMemoryBookingRepository implements BookingRepository using in-memory
// storage.
type InMemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]Booking
}

// NewInMemoryBookingRepository creates a new in-memory booking repository.
func NewInMemoryBookingRepository() *InMemoryBookingRepository {
	return &InMemoryBookingRepository{
		bookings: make(map[uuid.UUID]Booking),
	}
}

// Create stores a new pending booking.
func (r *InMemoryBookingRepository) Create(ctx context.Context, params CreateBookingParams) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b := Booking{
		ID:          uuid.New(),
		PropertyID:  params.PropertyID,
		TenantID:    params.TenantID,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Status:      StatusPending,
		Notes:       params.Notes,
		CreatedAt:   now,
		LastUpdated: now,
	}
	r.bookings[b.ID] = b
	return b, nil
}

// Get returns a booking by id.
func (r *InMemoryBookingRepository) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

// List returns all bookings.
func (r *InMemoryBookingRepository) List(ctx context.Context) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		result = append(result, b)
	}
	return result, nil
}

// ListByTenant returns the bookings belonging to one tenant.
func (r *InMemoryBookingRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Booking
	for _, b := range r.bookings {
		if b.TenantID == tenantID {
			result = append(result, b)
		}
	}
	return result, nil
}

// SetStatus updates a booking's lifecycle state.
func (r *InMemoryBookingRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	b.Status = status
	b.LastUpdated = time.Now()
	r.bookings[id] = b
	return b, nil
}

// Delete removes a booking.
func (r *InMemoryBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(r.bookings, id)
	return nil
}
