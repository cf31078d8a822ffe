package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/schemes-portal/schemes_portal/internal/logging"
	"github.com/schemes-portal/schemes_portal/internal/session"
)

func loginRequest(email string) *http.Request {
	form := url.Values{"email": {email}, "password": {"secret"}}
	req := httptest.NewRequest(fiber.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/auth/login", LoginRateLimit(cache, 2), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i, want := range []int{200, 200, 429} {
		resp, err := app.Test(loginRequest("Asha@Example.in"))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != want {
			t.Fatalf("request %d: expected %d got %d", i, want, resp.StatusCode)
		}
	}

	resp, err := app.Test(loginRequest("other@example.in"))
	if err != nil {
		t.Fatalf("other email: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("limit must be per email, got %d", resp.StatusCode)
	}
	if ttl := mr.TTL(loginRateLimitPrefix + "asha@example.in"); ttl <= 0 {
		t.Fatalf("expected counter expiry, got %s", ttl)
	}
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()
	mr.Close()

	app := fiber.New()
	app.Post("/auth/login", LoginRateLimit(cache, 1), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	for i := 0; i < 3; i++ {
		resp, err := app.Test(loginRequest("a@b.in"))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected fail-open, got %d", resp.StatusCode)
		}
	}
}

type staticSessions map[string]*session.Session

func (s staticSessions) GetSession(_ context.Context, token string) *session.Session {
	return s[token]
}

func TestSessionMiddleware(t *testing.T) {
	sessions := staticSessions{"good": {ID: "s1", UserID: "u1"}}
	app := fiber.New()
	app.Use(Session(sessions))
	app.Get("/me", RequireSession(), func(c *fiber.Ctx) error {
		sess := c.Locals(session.LocalsKey).(*session.Session)
		return c.SendString(sess.UserID)
	})

	cases := map[string]int{"": 401, "bad": 401, "good": 200}
	for token, want := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set(fiber.HeaderCookie, session.CookieName+"="+token)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("token %q: %v", token, err)
		}
		if resp.StatusCode != want {
			t.Fatalf("token %q: expected %d got %d", token, want, resp.StatusCode)
		}
	}
}

func TestRequestIDAndAudit(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logging.NewWithWriter(&buf, "info")))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestIDFrom(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected request id echoed, got %q", resp.Header.Get(requestIDHeader))
	}

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode audit record: %v", err)
	}
	if record["request_id"] != "req-42" || record["path"] != "/" {
		t.Fatalf("unexpected audit record %v", record)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}
