package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads and writes catalog rows.
type Repository interface {
	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]Category, error)
	// ListSchemes returns every scheme, newest first.
	ListSchemes(ctx context.Context) ([]Scheme, error)
	UpsertCategory(ctx context.Context, category Category) error
	UpsertScheme(ctx context.Context, scheme Scheme) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed catalog repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListCategories returns every category ordered by name.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text, name, slug, description, icon, created_at
        FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var (
			c           Category
			description *string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &description, &c.Icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Description = deref(description)
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListSchemes returns every scheme, newest first.
func (r *PostgresRepository) ListSchemes(ctx context.Context) ([]Scheme, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text, title, description, eligibility, benefits, official_link,
        category_id::text, created_at, updated_at
        FROM schemes ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Scheme
	for rows.Next() {
		var (
			s                                  Scheme
			eligibility, benefits, link, catID *string
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &eligibility, &benefits, &link, &catID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Eligibility = deref(eligibility)
		s.Benefits = deref(benefits)
		s.OfficialLink = deref(link)
		s.CategoryID = deref(catID)
		s.CreatedAt = s.CreatedAt.UTC()
		s.UpdatedAt = s.UpdatedAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertCategory inserts or updates a category by id.
func (r *PostgresRepository) UpsertCategory(ctx context.Context, c Category) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO categories (id, name, slug, description, icon, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug,
            description = EXCLUDED.description, icon = EXCLUDED.icon`,
		id, c.Name, c.Slug, nullable(c.Description), c.Icon, c.CreatedAt.UTC())
	return err
}

// UpsertScheme inserts or updates a scheme by id.
func (r *PostgresRepository) UpsertScheme(ctx context.Context, s Scheme) error {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return err
	}
	var categoryID *uuid.UUID
	if s.CategoryID != "" {
		parsed, err := uuid.Parse(s.CategoryID)
		if err != nil {
			return errors.New("category id must be a uuid")
		}
		categoryID = &parsed
	}
	_, err = r.db.Exec(ctx, `INSERT INTO schemes (id, title, description, eligibility, benefits, official_link, category_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description,
            eligibility = EXCLUDED.eligibility, benefits = EXCLUDED.benefits,
            official_link = EXCLUDED.official_link, category_id = EXCLUDED.category_id,
            updated_at = EXCLUDED.updated_at`,
		id, s.Title, s.Description, nullable(s.Eligibility), nullable(s.Benefits), nullable(s.OfficialLink),
		categoryID, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	return err
}
