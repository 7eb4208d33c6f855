package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based identity repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const identityColumns = `id, email, display_name, password_hash,
	claim_admin, claim_manager, claim_staff, claim_tenant,
	created_at, coalesce(claims_updated_at, 'epoch'::timestamptz)`

func scanIdentity(row pgx.Row) (Identity, error) {
	var ident Identity
	err := row.Scan(
		&ident.ID, &ident.Email, &ident.DisplayName, &ident.PasswordHash,
		&ident.Claims.Admin, &ident.Claims.Manager, &ident.Claims.Staff, &ident.Claims.Tenant,
		&ident.CreatedAt, &ident.ClaimsUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, err
	}
	return ident, nil
}

// Create registers a new identity.
func (r *PostgresRepository) Create(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (id, email, display_name, password_hash)
		VALUES ($1, lower($2), $3, $4)
		RETURNING `+identityColumns,
		uuid.New(), params.Email, params.DisplayName, params.PasswordHash,
	)
	ident, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Identity{}, ErrEmailTaken
		}
		return Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}
	return ident, nil
}

// GetByID looks up an identity by its unique identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)
	return scanIdentity(row)
}

// GetByEmail resolves an email address to an identity.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = lower($1)`, email)
	return scanIdentity(row)
}

// List returns all identities.
func (r *PostgresRepository) List(ctx context.Context) ([]Identity, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+identityColumns+` FROM identities ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var result []Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ident)
	}
	return result, rows.Err()
}

// SetClaims rewrites the identity's claim set.
func (r *PostgresRepository) SetClaims(ctx context.Context, id uuid.UUID, claims rbac.Claims) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET claim_admin = $2, claim_manager = $3, claim_staff = $4, claim_tenant = $5,
		    claims_updated_at = now()
		WHERE id = $1`,
		id, claims.Admin, claims.Manager, claims.Staff, claims.Tenant,
	)
	if err != nil {
		return fmt.Errorf("failed to set claims: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// UpdatePassword replaces the identity's password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	tag, err := r.pool.Exec(ctx, `UPDATE identities SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// Delete removes an identity and its credentials.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
