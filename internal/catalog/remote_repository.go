package catalog

import (
	"context"
	"time"

	"github.com/schemes-portal/schemes_portal/internal/backend"
)

// RowStore is the slice of the hosted data service the remote repositories need.
type RowStore interface {
	Select(ctx context.Context, table string, q backend.Query, accessToken string, dest any) error
	Upsert(ctx context.Context, table string, row any, accessToken string) error
}

// RemoteRepository reads the catalog from the hosted data service. The
// caller's access token is taken from the context.
type RemoteRepository struct {
	rows RowStore
}

// NewRemoteRepository builds a catalog repository over the hosted service.
func NewRemoteRepository(rows RowStore) *RemoteRepository {
	return &RemoteRepository{rows: rows}
}

func (r *RemoteRepository) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	q := backend.Query{Order: []backend.Order{{Column: "name"}}}
	if err := r.rows.Select(ctx, backend.TableCategories, q, backend.AccessToken(ctx), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RemoteRepository) ListSchemes(ctx context.Context) ([]Scheme, error) {
	var out []Scheme
	q := backend.Query{Order: []backend.Order{{Column: "created_at", Descending: true}}}
	if err := r.rows.Select(ctx, backend.TableSchemes, q, backend.AccessToken(ctx), &out); err != nil {
		return nil, err
	}
	return out, nil
}

type categoryRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

type schemeRow struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Eligibility  *string   `json:"eligibility"`
	Benefits     *string   `json:"benefits"`
	OfficialLink *string   `json:"official_link"`
	CategoryID   *string   `json:"category_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *RemoteRepository) UpsertCategory(ctx context.Context, c Category) error {
	row := categoryRow{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: nullable(c.Description), Icon: c.Icon, CreatedAt: c.CreatedAt.UTC()}
	return r.rows.Upsert(ctx, backend.TableCategories, row, backend.AccessToken(ctx))
}

func (r *RemoteRepository) UpsertScheme(ctx context.Context, s Scheme) error {
	row := schemeRow{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		Eligibility:  nullable(s.Eligibility),
		Benefits:     nullable(s.Benefits),
		OfficialLink: nullable(s.OfficialLink),
		CategoryID:   nullable(s.CategoryID),
		CreatedAt:    s.CreatedAt.UTC(),
		UpdatedAt:    s.UpdatedAt.UTC(),
	}
	return r.rows.Upsert(ctx, backend.TableSchemes, row, backend.AccessToken(ctx))
}
