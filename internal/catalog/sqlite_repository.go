package catalog

import (
	"context"
	"database/sql"
)

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed catalog repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, description, icon, created_at
        FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var (
			c           Category
			description sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &description, &c.Icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Description = description.String
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListSchemes(ctx context.Context) ([]Scheme, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, description, eligibility, benefits, official_link,
        category_id, created_at, updated_at
        FROM schemes ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Scheme
	for rows.Next() {
		var (
			s                                  Scheme
			eligibility, benefits, link, catID sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &eligibility, &benefits, &link, &catID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Eligibility = eligibility.String
		s.Benefits = benefits.String
		s.OfficialLink = link.String
		s.CategoryID = catID.String
		s.CreatedAt = s.CreatedAt.UTC()
		s.UpdatedAt = s.UpdatedAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name, slug, description, icon, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET name = excluded.name, slug = excluded.slug,
            description = excluded.description, icon = excluded.icon`,
		c.ID, c.Name, c.Slug, nullable(c.Description), c.Icon, c.CreatedAt.UTC())
	return err
}

func (r *SQLiteRepository) UpsertScheme(ctx context.Context, s Scheme) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO schemes (id, title, description, eligibility, benefits, official_link, category_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET title = excluded.title, description = excluded.description,
            eligibility = excluded.eligibility, benefits = excluded.benefits,
            official_link = excluded.official_link, category_id = excluded.category_id,
            updated_at = excluded.updated_at`,
		s.ID, s.Title, s.Description, nullable(s.Eligibility), nullable(s.Benefits), nullable(s.OfficialLink),
		nullable(s.CategoryID), s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	return err
}
