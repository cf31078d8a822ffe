package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/schemes-portal/schemes_portal/internal/config"
	"github.com/schemes-portal/schemes_portal/internal/infra"
	"github.com/schemes-portal/schemes_portal/internal/logging"
	"github.com/schemes-portal/schemes_portal/internal/session"
	"github.com/schemes-portal/schemes_portal/internal/web"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		AppName:         "Government Schemes Portal",
		AppEnv:          "test",
		DataBackend:     config.DriverMemory,
		SessionSecret:   "test-secret",
		SessionTTL:      time.Hour,
		OTPMaxAttempts:  3,
		OTPFormTTL:      time.Minute,
		LoginRateLimit:  100,
		CatalogCacheTTL: time.Minute,
		IdempotencyTTL:  time.Minute,
	}
	app := fiber.New()
	cleanup, err := Setup(app, Deps{Cfg: cfg, Res: &infra.Resources{}, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { cleanup() })
	return app
}

type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(body)
}

func (c *client) get(target string) (*http.Response, string) {
	return c.do(httptest.NewRequest(fiber.MethodGet, target, nil))
}

func (c *client) post(target string, form url.Values) (*http.Response, string) {
	req := httptest.NewRequest(fiber.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return c.do(req)
}

func signupForm(action string) url.Values {
	return url.Values{
		"action":    {action},
		"email":     {"asha@example.in"},
		"password":  {"secret1"},
		"full_name": {"Asha Devi"},
		"aadhaar":   {"1234 5678 9012"},
		"otp":       {"123456"},
	}
}

func expectStatus(t *testing.T, resp *http.Response, body string, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d got %d: %s", want, resp.StatusCode, body)
	}
}

func expectContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Fatalf("expected body to contain %q:\n%s", w, body)
		}
	}
}

func TestSignupDashboardSignOut(t *testing.T) {
	c := newClient(t, newTestApp(t))

	resp, body := c.get("/")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, "Sign in to your account", "Don't have an account? Sign up")

	resp, body = c.get("/?view=signup")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, "Create a new account", "Send OTP")

	resp, body = c.post("/auth/signup", signupForm("send_otp"))
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, "OTP sent successfully! Please check your registered mobile number.", "Enter OTP", "(2 attempts left)")
	if c.cookies[web.FormCookie] == "" {
		t.Fatalf("expected signup form cookie")
	}

	resp, body = c.post("/auth/signup", signupForm("submit"))
	expectStatus(t, resp, body, http.StatusSeeOther)
	if c.cookies[session.CookieName] == "" {
		t.Fatalf("expected session cookie after signup")
	}

	resp, body = c.get("/")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, "Asha Devi", "Verified User", "All Government Schemes", "Sign Out")

	resp, body = c.get("/api/v1/me")
	expectStatus(t, resp, body, http.StatusOK)
	var me struct {
		Email           string `json:"email"`
		AadhaarNumber   string `json:"aadhaar_number"`
		AadhaarVerified bool   `json:"aadhaar_verified"`
	}
	if err := json.Unmarshal([]byte(body), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "asha@example.in" || me.AadhaarNumber != "XXXXXXXX9012" || !me.AadhaarVerified {
		t.Fatalf("unexpected me %+v", me)
	}

	token := c.cookies[session.CookieName]
	resp, body = c.post("/signout", nil)
	expectStatus(t, resp, body, http.StatusSeeOther)

	c.cookies[session.CookieName] = token
	resp, body = c.get("/")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, "Sign in to your account")
}

func TestLoginAfterSignup(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app)
	c.post("/auth/signup", signupForm("send_otp"))
	resp, body := c.post("/auth/signup", signupForm("submit"))
	expectStatus(t, resp, body, http.StatusSeeOther)

	fresh := newClient(t, app)
	resp, body = fresh.post("/auth/login", url.Values{"email": {"asha@example.in"}, "password": {"wrong!"}})
	expectStatus(t, resp, body, http.StatusUnauthorized)
	expectContains(t, body, "Invalid login credentials")

	resp, body = fresh.post("/auth/login", url.Values{"email": {"asha@example.in"}, "password": {"secret1"}})
	expectStatus(t, resp, body, http.StatusSeeOther)
	resp, body = fresh.get("/")
	expectContains(t, body, "Asha Devi")
}

func TestSignupValidationMessages(t *testing.T) {
	c := newClient(t, newTestApp(t))

	form := signupForm("submit")
	form.Set("full_name", "")
	resp, body := c.post("/auth/signup", form)
	expectStatus(t, resp, body, http.StatusBadRequest)
	expectContains(t, body, "Please fill in all required fields")

	form = signupForm("send_otp")
	form.Set("aadhaar", "12345")
	resp, body = c.post("/auth/signup", form)
	expectStatus(t, resp, body, http.StatusBadRequest)
	expectContains(t, body, "Please enter a valid 12-digit Aadhaar number")

	c.post("/auth/signup", signupForm("send_otp"))
	form = signupForm("submit")
	form.Set("otp", "123")
	resp, body = c.post("/auth/signup", form)
	expectStatus(t, resp, body, http.StatusBadRequest)
	expectContains(t, body, "Please enter a valid 6-digit OTP")
}

func TestOTPAttemptLimit(t *testing.T) {
	c := newClient(t, newTestApp(t))

	c.post("/auth/signup", signupForm("send_otp"))
	c.post("/auth/signup", signupForm("resend_otp"))
	resp, body := c.post("/auth/signup", signupForm("resend_otp"))
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, "(0 attempts left)", "Maximum attempts reached")

	resp, body = c.post("/auth/signup", signupForm("resend_otp"))
	expectStatus(t, resp, body, http.StatusTooManyRequests)
	expectContains(t, body, "Maximum OTP attempts reached. Please try again after some time.")
}

func TestAPIRoutes(t *testing.T) {
	c := newClient(t, newTestApp(t))

	resp, body := c.get("/api/v1/ping")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, `"status":"ok"`)

	resp, body = c.get("/api/v1/categories")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, `"categories":[]`)

	resp, body = c.get("/api/v1/schemes?q=health")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, `"count":0`)

	resp, body = c.get("/api/v1/me")
	expectStatus(t, resp, body, http.StatusUnauthorized)

	resp, body = c.get("/healthz")
	expectStatus(t, resp, body, http.StatusOK)
	expectContains(t, body, `"backend":"memory"`)
}
