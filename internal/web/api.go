package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/schemes-portal/schemes_portal/internal/backend"
	"github.com/schemes-portal/schemes_portal/internal/catalog"
	"github.com/schemes-portal/schemes_portal/internal/middleware"
	"github.com/schemes-portal/schemes_portal/internal/profile"
	"github.com/schemes-portal/schemes_portal/internal/session"
)

// Profiles reads user profiles.
type Profiles interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// API serves the JSON endpoints under /api/v1.
type API struct {
	catalog  *catalog.Service
	profiles Profiles
	logger   *slog.Logger
}

// NewAPI builds the JSON API handler.
func NewAPI(c *catalog.Service, profiles Profiles, logger *slog.Logger) *API {
	return &API{catalog: c, profiles: profiles, logger: logger}
}

type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon"`
	Glyph       string `json:"glyph,omitempty"`
}

type meResponse struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	AadhaarNumber   string    `json:"aadhaar_number,omitempty"`
	AadhaarVerified bool      `json:"aadhaar_verified"`
	Status          string    `json:"status"`
	SessionExpires  time.Time `json:"session_expires_at"`
}

// Ping reports liveness with the request id.
func (a *API) Ping(c *fiber.Ctx) error {
	reqID := middleware.RequestIDFrom(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":     "ok",
		"request_id": reqID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Categories lists categories ordered by name.
func (a *API) Categories(c *fiber.Ctx) error {
	categories, err := a.catalog.Categories(a.context(c))
	if err != nil {
		a.logger.Error("list categories failed", slog.Any("error", err))
		return fiber.NewError(http.StatusBadGateway, backend.UserMessage(err))
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		icon, _ := catalog.ResolveIcon(cat.Icon)
		out = append(out, categoryResponse{
			ID:          cat.ID,
			Name:        cat.Name,
			Slug:        cat.Slug,
			Description: cat.Description,
			Icon:        cat.Icon,
			Glyph:       icon.Glyph,
		})
	}
	return c.JSON(fiber.Map{"categories": out})
}

// Schemes lists schemes newest first, filtered by ?category= and ?q=.
func (a *API) Schemes(c *fiber.Ctx) error {
	schemes, err := a.catalog.Search(a.context(c), c.Query("category"), c.Query("q"))
	if err != nil {
		a.logger.Error("list schemes failed", slog.Any("error", err))
		return fiber.NewError(http.StatusBadGateway, backend.UserMessage(err))
	}
	return c.JSON(fiber.Map{"schemes": schemes, "count": len(schemes)})
}

// Me returns the signed-in user and profile.
func (a *API) Me(c *fiber.Ctx) error {
	sess, _ := c.Locals(session.LocalsKey).(*session.Session)
	if sess == nil {
		return fiber.NewError(http.StatusUnauthorized, "sign in required")
	}
	p, err := a.profiles.Get(a.context(c), sess.UserID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		a.logger.Error("fetch profile failed", slog.String("user_id", sess.UserID), slog.Any("error", err))
	}
	return c.JSON(meResponse{
		UserID:          sess.UserID,
		Email:           sess.Email,
		FullName:        p.FullName,
		AadhaarNumber:   p.MaskedAadhaar(),
		AadhaarVerified: p.AadhaarVerified,
		Status:          p.VerificationLabel(),
		SessionExpires:  sess.ExpiresAt,
	})
}

func (a *API) context(c *fiber.Ctx) context.Context {
	if sess, _ := c.Locals(session.LocalsKey).(*session.Session); sess != nil {
		return backend.WithAccessToken(c.UserContext(), sess.AccessToken)
	}
	return c.UserContext()
}
