package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists profiles. Profiles are never deleted.
type Repository interface {
	Get(ctx context.Context, id string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches the profile keyed by the user id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Profile, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return Profile{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id::text, full_name, aadhaar_number, aadhaar_verified, updated_at
        FROM profiles WHERE id = $1`, userID)
	var (
		p             Profile
		name, aadhaar *string
	)
	if err := row.Scan(&p.ID, &name, &aadhaar, &p.AadhaarVerified, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if name != nil {
		p.FullName = *name
	}
	if aadhaar != nil {
		p.AadhaarNumber = *aadhaar
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// Upsert inserts the profile or overwrites the existing row.
func (r *PostgresRepository) Upsert(ctx context.Context, p Profile) error {
	userID, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO profiles (id, full_name, aadhaar_number, aadhaar_verified, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name,
            aadhaar_number = EXCLUDED.aadhaar_number,
            aadhaar_verified = EXCLUDED.aadhaar_verified,
            updated_at = EXCLUDED.updated_at`,
		userID, nullable(p.FullName), nullable(p.AadhaarNumber), p.AadhaarVerified, p.UpdatedAt.UTC())
	return err
}
