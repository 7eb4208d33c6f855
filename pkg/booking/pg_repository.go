package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPropertyRepository implements PropertyRepository backed by
// PostgreSQL.
type PostgresPropertyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPropertyRepository creates a new PostgreSQL-based property
// repository.
func NewPostgresPropertyRepository(pool *pgxpool.Pool) *PostgresPropertyRepository {
	return &PostgresPropertyRepository{pool: pool}
}

const propertyColumns = `id, name, address, created_at`

func scanProperty(row pgx.Row) (Property, error) {
	var prop Property
	err := row.Scan(&prop.ID, &prop.Name, &prop.Address, &prop.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, err
	}
	return prop, nil
}

// Create stores a new property.
func (r *PostgresPropertyRepository) Create(ctx context.Context, params CreatePropertyParams) (Property, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO properties (id, name, address, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING `+propertyColumns,
		uuid.New(), params.Name, params.Address,
	)
	prop, err := scanProperty(row)
	if err != nil {
		return Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	return prop, nil
}

// Get returns a property by id.
func (r *PostgresPropertyRepository) Get(ctx context.Context, id uuid.UUID) (Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	return scanProperty(row)
}

// List returns all properties.
func (r *PostgresPropertyRepository) List(ctx context.Context) ([]Property, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var result []Property
	for rows.Next() {
		prop, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, prop)
	}
	return result, rows.Err()
}

// Delete removes a property.
func (r *PostgresPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// PostgresBookingRepository implements BookingRepository backed by
// PostgreSQL.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgreSQL-based booking
// repository.
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `id, property_id, tenant_id, start_date, end_date, status, notes, created_at, last_updated`

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	var status string
	err := row.Scan(&b.ID, &b.PropertyID, &b.TenantID, &b.StartDate, &b.EndDate, &status, &b.Notes, &b.CreatedAt, &b.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, err
	}
	b.Status = Status(status)
	return b, nil
}

// Create stores a new pending booking.
func (r *PostgresBookingRepository) Create(ctx context.Context, params CreateBookingParams) (Booking, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO bookings (id, property_id, tenant_id, start_date, end_date, status, notes, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+bookingColumns,
		uuid.New(), params.PropertyID, params.TenantID,
		params.StartDate, params.EndDate, string(StatusPending), params.Notes,
	)
	b, err := scanBooking(row)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to create booking: %w", err)
	}
	return b, nil
}

// Get returns a booking by id.
func (r *PostgresBookingRepository) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// List returns all bookings.
func (r *PostgresBookingRepository) List(ctx context.Context) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListByTenant returns the bookings belonging to one tenant.
func (r *PostgresBookingRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE tenant_id = $1 ORDER BY start_date`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// SetStatus updates a booking's lifecycle state.
func (r *PostgresBookingRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Booking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE bookings SET status = $2, last_updated = now()
		WHERE id = $1
		RETURNING `+bookingColumns,
		id, string(status),
	)
	return scanBooking(row)
}

// Delete removes a booking.
func (r *PostgresBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}
