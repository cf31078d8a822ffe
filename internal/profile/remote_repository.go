package profile

import (
	"context"
	"time"

	"github.com/schemes-portal/schemes_portal/internal/backend"
)

// RowStore is the slice of the hosted data service profiles need.
type RowStore interface {
	Select(ctx context.Context, table string, q backend.Query, accessToken string, dest any) error
	Upsert(ctx context.Context, table string, row any, accessToken string) error
}

// RemoteRepository stores profiles in the hosted data service.
type RemoteRepository struct {
	rows RowStore
}

// NewRemoteRepository builds a profile repository over the hosted service.
func NewRemoteRepository(rows RowStore) *RemoteRepository {
	return &RemoteRepository{rows: rows}
}

func (r *RemoteRepository) Get(ctx context.Context, id string) (Profile, error) {
	var out []Profile
	q := backend.Query{Eq: []backend.Filter{{Column: "id", Value: id}}, Limit: 1}
	if err := r.rows.Select(ctx, backend.TableProfiles, q, backend.AccessToken(ctx), &out); err != nil {
		return Profile{}, err
	}
	if len(out) == 0 {
		return Profile{}, ErrNotFound
	}
	return out[0], nil
}

type profileRow struct {
	ID              string    `json:"id"`
	FullName        *string   `json:"full_name"`
	AadhaarNumber   *string   `json:"aadhaar_number"`
	AadhaarVerified bool      `json:"aadhaar_verified"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (r *RemoteRepository) Upsert(ctx context.Context, p Profile) error {
	row := profileRow{
		ID:              p.ID,
		FullName:        nullable(p.FullName),
		AadhaarNumber:   nullable(p.AadhaarNumber),
		AadhaarVerified: p.AadhaarVerified,
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
	return r.rows.Upsert(ctx, backend.TableProfiles, row, backend.AccessToken(ctx))
}
