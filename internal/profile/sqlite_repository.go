package profile

import (
	"context"
	"database/sql"
	"errors"
)

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed profile repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, full_name, aadhaar_number, aadhaar_verified, updated_at
        FROM profiles WHERE id = ?`, id)
	var (
		p             Profile
		name, aadhaar sql.NullString
	)
	if err := row.Scan(&p.ID, &name, &aadhaar, &p.AadhaarVerified, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.FullName = name.String
	p.AadhaarNumber = aadhaar.String
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p Profile) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (id, full_name, aadhaar_number, aadhaar_verified, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET full_name = excluded.full_name,
            aadhaar_number = excluded.aadhaar_number,
            aadhaar_verified = excluded.aadhaar_verified,
            updated_at = excluded.updated_at`,
		p.ID, nullable(p.FullName), nullable(p.AadhaarNumber), p.AadhaarVerified, p.UpdatedAt.UTC())
	return err
}
