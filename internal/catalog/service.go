package catalog

import (
	"context"
	"log/slog"
)

// Service exposes catalog reads to the dashboard and the JSON API.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a catalog service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Categories lists categories by name. Categories whose icon is not in the
// supported set are still returned; the unknown identifiers are logged as
// errors so bad data surfaces at load time.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateIcons(categories); err != nil {
		s.logger.Error("categories reference unknown icons", slog.Any("error", err))
	}
	return categories, nil
}

// Schemes lists schemes, newest first.
func (s *Service) Schemes(ctx context.Context) ([]Scheme, error) {
	return s.repo.ListSchemes(ctx)
}

// Search lists schemes and applies FilterSchemes.
func (s *Service) Search(ctx context.Context, categoryID, query string) ([]Scheme, error) {
	schemes, err := s.repo.ListSchemes(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSchemes(schemes, categoryID, query), nil
}
