package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	categoryNamespace = uuid.MustParse("6f1f5b8e-3a56-4c4b-9a55-3c6a1f0d2b11")
	schemeNamespace   = uuid.MustParse("0b9d2f3e-8c1a-4f7e-b2d4-7e5a9c6b1d20")
)

// CategoryID derives the stable identifier of a category from its slug.
func CategoryID(slug string) string {
	return uuid.NewSHA1(categoryNamespace, []byte(strings.ToLower(slug))).String()
}

// SchemeID derives the stable identifier of a scheme from its title, so
// re-importing the same listing updates rows instead of duplicating them.
func SchemeID(title string) string {
	return uuid.NewSHA1(schemeNamespace, []byte(strings.ToLower(strings.TrimSpace(title)))).String()
}

// ScrapedRecord is one card captured from the public scheme directory: a
// title plus the card's span texts in page order.
type ScrapedRecord struct {
	Title string
	Spans []string
}

// ParseScraped decodes the scraper output: a JSON array of objects with a
// "title" and positional "key_N" span fields.
func ParseScraped(r io.Reader) ([]ScrapedRecord, error) {
	var raw []map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode scraped records: %w", err)
	}

	out := make([]ScrapedRecord, 0, len(raw))
	for _, item := range raw {
		rec := ScrapedRecord{Title: clean(item["title"])}
		type span struct {
			idx  int
			text string
		}
		var spans []span
		for k, v := range item {
			n, ok := strings.CutPrefix(k, "key_")
			if !ok {
				continue
			}
			idx, err := strconv.Atoi(n)
			if err != nil {
				continue
			}
			spans = append(spans, span{idx: idx, text: clean(v)})
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].idx < spans[j].idx })
		for _, s := range spans {
			rec.Spans = append(rec.Spans, s.text)
		}
		out = append(out, rec)
	}
	return out, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// CategorySeed describes a category to create from a seed file.
type CategorySeed struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ImportResult summarises an import run.
type ImportResult struct {
	Categories int
	Imported   int
	Skipped    int
}

// Importer loads seed categories and scraped schemes into a Repository.
type Importer struct {
	repo            Repository
	logger          *slog.Logger
	defaultCategory string
	now             func() time.Time
}

// NewImporter builds an importer. Schemes whose tags match no category are
// filed under defaultCategory (a slug); they are skipped when it is empty.
func NewImporter(repo Repository, defaultCategory string, logger *slog.Logger) *Importer {
	return &Importer{repo: repo, logger: logger, defaultCategory: defaultCategory, now: time.Now}
}

// ImportCategories upserts seed categories. Unknown icons are rejected
// before anything is written.
func (i *Importer) ImportCategories(ctx context.Context, seeds []CategorySeed) (int, error) {
	categories := make([]Category, 0, len(seeds))
	for _, seed := range seeds {
		if seed.Slug == "" || seed.Name == "" {
			return 0, errors.New("category seed requires name and slug")
		}
		categories = append(categories, Category{
			ID:          CategoryID(seed.Slug),
			Name:        seed.Name,
			Slug:        seed.Slug,
			Description: seed.Description,
			Icon:        seed.Icon,
			CreatedAt:   i.now().UTC(),
		})
	}
	if err := ValidateIcons(categories); err != nil {
		return 0, err
	}
	for _, c := range categories {
		if err := i.repo.UpsertCategory(ctx, c); err != nil {
			return 0, fmt.Errorf("upsert category %s: %w", c.Slug, err)
		}
	}
	return len(categories), nil
}

// ImportSchemes converts scraped records into schemes and upserts them.
// The first span is the issuing agency, the second the description, the
// rest are tags matched against category names and slugs.
func (i *Importer) ImportSchemes(ctx context.Context, records []ScrapedRecord) (ImportResult, error) {
	categories, err := i.repo.ListCategories(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list categories: %w", err)
	}
	index := make(map[string]string, 2*len(categories))
	for _, c := range categories {
		index[strings.ToLower(c.Name)] = c.ID
		index[strings.ToLower(c.Slug)] = c.ID
	}
	fallback := index[strings.ToLower(i.defaultCategory)]

	var res ImportResult
	for _, rec := range records {
		scheme, ok := i.toScheme(rec, index, fallback)
		if !ok {
			res.Skipped++
			i.logger.Warn("scraped record skipped", slog.String("title", rec.Title))
			continue
		}
		if err := i.repo.UpsertScheme(ctx, scheme); err != nil {
			return res, fmt.Errorf("upsert scheme %q: %w", scheme.Title, err)
		}
		res.Imported++
	}
	return res, nil
}

func (i *Importer) toScheme(rec ScrapedRecord, index map[string]string, fallback string) (Scheme, bool) {
	if rec.Title == "" {
		return Scheme{}, false
	}
	var agency, description string
	var tags []string
	switch len(rec.Spans) {
	case 0:
	case 1:
		description = rec.Spans[0]
	default:
		agency, description = rec.Spans[0], rec.Spans[1]
		tags = rec.Spans[2:]
	}
	if description == "" {
		description = agency
	}

	categoryID := fallback
	for _, tag := range tags {
		if id, ok := index[strings.ToLower(tag)]; ok {
			categoryID = id
			break
		}
	}
	if categoryID == "" {
		return Scheme{}, false
	}

	now := i.now().UTC()
	return Scheme{
		ID:          SchemeID(rec.Title),
		Title:       rec.Title,
		Description: description,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, true
}
