package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `user_id, email, display_name, role, created_at, last_updated`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var role string
	err := row.Scan(&rec.UserID, &rec.Email, &rec.DisplayName, &role, &rec.CreatedAt, &rec.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	rec.Role = rbac.Role(role)
	return rec, nil
}

// Upsert creates or merges a record. COALESCE keeps existing values for
// fields the caller did not provide; last_updated is set by the database.
func (r *PostgresRepository) Upsert(ctx context.Context, params UpsertParams) (Record, error) {
	var role *string
	if params.Role != nil {
		s := string(*params.Role)
		role = &s
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, email, display_name, role, created_at, last_updated)
		VALUES ($1, coalesce($2, ''), coalesce($3, ''), coalesce($4, 'tenant'), now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			email        = coalesce($2, profiles.email),
			display_name = coalesce($3, profiles.display_name),
			role         = coalesce($4, profiles.role),
			last_updated = now()
		RETURNING `+recordColumns,
		params.UserID, params.Email, params.DisplayName, role,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return rec, nil
}

// Get returns the record for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM profiles WHERE user_id = $1`, userID)
	return scanRecord(row)
}

// List returns all records.
func (r *PostgresRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM profiles ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Delete removes the record for a user.
func (r *PostgresRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
