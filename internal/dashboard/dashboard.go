package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schemes-portal/schemes_portal/internal/catalog"
	"github.com/schemes-portal/schemes_portal/internal/profile"
)

// Catalog is the read side of the scheme catalog.
type Catalog interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	Schemes(ctx context.Context) ([]catalog.Scheme, error)
}

// Profiles reads user profiles.
type Profiles interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// Data is what one dashboard load fetched. Failed fetches leave their
// field empty. Loading stays true when the scheme fetch was cut off by the
// load timeout before it settled.
type Data struct {
	Profile    profile.Profile
	Categories []catalog.Category
	Schemes    []catalog.Scheme
	Loading    bool
}

// Service loads the signed-in dashboard.
type Service struct {
	catalog  Catalog
	profiles Profiles
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService builds a dashboard loader. A positive timeout bounds each
// load; zero waits for every fetch.
func NewService(c Catalog, profiles Profiles, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{catalog: c, profiles: profiles, timeout: timeout, logger: logger}
}

// Load runs the profile, category and scheme fetches concurrently. No
// failure is returned to the caller: each is logged and leaves its value
// empty. Loading is false once the scheme fetch has settled.
func (s *Service) Load(ctx context.Context, userID string) Data {
	data := Data{Loading: true}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var g errgroup.Group
	g.Go(func() error {
		p, err := s.profiles.Get(ctx, userID)
		switch {
		case err == nil:
			data.Profile = p
		case errors.Is(err, profile.ErrNotFound):
			s.logger.Debug("no profile for user", slog.String("user_id", userID))
		default:
			s.logger.Error("fetch profile failed", slog.String("user_id", userID), slog.Any("error", err))
		}
		return nil
	})
	g.Go(func() error {
		categories, err := s.catalog.Categories(ctx)
		if err != nil {
			s.logger.Error("fetch categories failed", slog.Any("error", err))
			return nil
		}
		data.Categories = categories
		return nil
	})
	g.Go(func() error {
		schemes, err := s.catalog.Schemes(ctx)
		switch {
		case err == nil:
			data.Schemes = schemes
		case ctx.Err() != nil:
			s.logger.Warn("scheme fetch did not settle", slog.Any("error", err))
			return nil
		default:
			s.logger.Error("fetch schemes failed", slog.Any("error", err))
		}
		data.Loading = false
		return nil
	})
	_ = g.Wait()

	return data
}

// Filter is the user's current selection. An empty CategoryID means all.
type Filter struct {
	CategoryID string
	Query      string
}

// View is everything the dashboard template renders.
type View struct {
	Filter     Filter
	Heading    string
	FullName   string
	Status     string
	Categories []catalog.CategoryEntry
	Cards      []catalog.SchemeCard
	Loading    bool
}

const (
	allHeading      = "All Government Schemes"
	fallbackHeading = "Schemes"
)

// View derives the rendered dashboard from loaded data and a filter.
func (d Data) View(f Filter) View {
	return View{
		Filter:     f,
		Heading:    Heading(d.Categories, f.CategoryID),
		FullName:   d.Profile.FullName,
		Status:     d.Profile.VerificationLabel(),
		Categories: catalog.CategoryList(d.Categories, f.CategoryID),
		Cards:      catalog.Cards(catalog.FilterSchemes(d.Schemes, f.CategoryID, f.Query)),
		Loading:    d.Loading,
	}
}

// Heading is "All Government Schemes" without a selection and
// "<Category> Schemes" with one. A selection that names no loaded
// category yields "Schemes".
func Heading(categories []catalog.Category, categoryID string) string {
	if categoryID == "" {
		return allHeading
	}
	c, ok := catalog.FindCategory(categories, categoryID)
	if !ok {
		return fallbackHeading
	}
	return c.Name + " Schemes"
}
