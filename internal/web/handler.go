package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/schemes-portal/schemes_portal/internal/backend"
	"github.com/schemes-portal/schemes_portal/internal/dashboard"
	"github.com/schemes-portal/schemes_portal/internal/identity"
	"github.com/schemes-portal/schemes_portal/internal/session"
)

// FormCookie identifies one signup form lifetime for the OTP state.
const FormCookie = "portal_form"

const accountCreatedMessage = "Account created. Please confirm your email address, then sign in."

// Options carries the presentation settings of the handler.
type Options struct {
	AppName      string
	CookieSecure bool
	SessionTTL   time.Duration
	FormTTL      time.Duration
}

// Handler serves the portal pages.
type Handler struct {
	ids       *identity.Service
	sessions  *session.Manager
	shell     *Shell
	dashboard *dashboard.Service
	opts      Options
	logger    *slog.Logger
}

// NewHandler builds the page handler.
func NewHandler(ids *identity.Service, sessions *session.Manager, shell *Shell, dash *dashboard.Service, opts Options, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, sessions: sessions, shell: shell, dashboard: dash, opts: opts, logger: logger}
}

type authPage struct {
	AppName  string
	SignedIn bool
	Signup   bool

	Email    string
	FullName string
	Aadhaar  string

	OTPSent   bool
	Attempts  int
	Remaining int
	CanResend bool

	Error   string
	Message string
}

type dashboardPage struct {
	AppName  string
	SignedIn bool
	Email    string
	View     dashboard.View
}

// Home renders the dashboard for a signed-in visitor and the auth screen
// otherwise.
func (h *Handler) Home(c *fiber.Ctx) error {
	sess := h.shell.Current(c.UserContext(), c.Cookies(session.CookieName))
	if sess == nil {
		mode := identity.ParseMode(c.Query("view"))
		page := h.authPage(mode)
		if mode == identity.ModeSignup {
			h.restoreSignup(c, &page)
		}
		return render(c, http.StatusOK, "auth.html", page)
	}

	ctx := backend.WithAccessToken(c.UserContext(), sess.AccessToken)
	data := h.dashboard.Load(ctx, sess.UserID)
	view := data.View(dashboard.Filter{CategoryID: c.Query("category"), Query: c.Query("q")})
	return render(c, http.StatusOK, "dashboard.html", dashboardPage{
		AppName:  h.opts.AppName,
		SignedIn: true,
		Email:    sess.Email,
		View:     view,
	})
}

// Login handles the sign-in form.
func (h *Handler) Login(c *fiber.Ctx) error {
	creds := identity.Credentials{Email: c.FormValue("email"), Password: c.FormValue("password")}
	user, tokens, err := h.ids.Login(c.UserContext(), creds)
	if err != nil {
		page := h.authPage(identity.ModeLogin)
		page.Email = creds.Email
		page.Error = identity.UserMessage(err)
		return render(c, statusFor(err, http.StatusUnauthorized), "auth.html", page)
	}
	return h.startSession(c, user, tokens)
}

// Signup handles the three signup form actions: send_otp, resend_otp and
// submit.
func (h *Handler) Signup(c *fiber.Ctx) error {
	ctx := c.UserContext()
	formID := h.formID(c)
	otp := h.ids.OTP()

	stored, err := otp.Form(ctx, formID)
	if err != nil {
		h.logger.Error("load otp form failed", slog.String("form_id", formID), slog.Any("error", err))
	}
	form := identity.SignupForm{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		FullName: c.FormValue("full_name"),
		Aadhaar:  stored.Aadhaar,
		OTPSent:  stored.Sent,
		Attempts: stored.Attempts,
	}
	form.SetAadhaar(c.FormValue("aadhaar"))
	form.SetOTP(c.FormValue("otp"))

	page := h.authPage(identity.ModeSignup)
	page.Email, page.FullName = form.Email, form.FullName

	switch c.FormValue("action") {
	case "send_otp", "resend_otp":
		send := otp.Send
		if c.FormValue("action") == "resend_otp" {
			send = otp.Resend
		}
		status, err := send(ctx, formID, form.Aadhaar)
		if status.Attempts > 0 || status.Sent {
			form.OTPSent, form.Attempts = status.Sent, status.Attempts
		}
		h.fillOTP(&page, form)
		if err != nil {
			page.Error = identity.UserMessage(err)
			return render(c, statusFor(err, http.StatusBadRequest), "auth.html", page)
		}
		page.Message = status.Message
		return render(c, http.StatusOK, "auth.html", page)

	default:
		user, tokens, err := h.ids.Signup(ctx, formID, form)
		if err != nil {
			h.fillOTP(&page, form)
			page.Error = identity.UserMessage(err)
			return render(c, statusFor(err, http.StatusBadRequest), "auth.html", page)
		}
		expireCookie(c, FormCookie)
		if tokens == nil {
			login := h.authPage(identity.ModeLogin)
			login.Email = user.Email
			login.Message = accountCreatedMessage
			return render(c, http.StatusCreated, "auth.html", login)
		}
		return h.startSession(c, user, *tokens)
	}
}

// SignOut ends the session. The page flips back to the auth screen once the
// sign-out event has reached the shell.
func (h *Handler) SignOut(c *fiber.Ctx) error {
	err := h.sessions.SignOut(c.UserContext(), c.Cookies(session.CookieName))
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		h.logger.Error("sign out failed", slog.Any("error", err))
	}
	expireCookie(c, session.CookieName)
	return c.Redirect("/", http.StatusSeeOther)
}

func (h *Handler) startSession(c *fiber.Ctx, user identity.User, tokens identity.Tokens) error {
	token, _, err := h.sessions.Start(c.UserContext(), user, tokens)
	if err != nil {
		h.logger.Error("start session failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, backend.GenericMessage)
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.opts.SessionTTL),
		HTTPOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", http.StatusSeeOther)
}

func expireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
}

func (h *Handler) formID(c *fiber.Ctx) string {
	if id := c.Cookies(FormCookie); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     FormCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(h.opts.FormTTL),
		HTTPOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

func (h *Handler) authPage(mode identity.Mode) authPage {
	return authPage{AppName: h.opts.AppName, Signup: mode == identity.ModeSignup}
}

func (h *Handler) restoreSignup(c *fiber.Ctx, page *authPage) {
	id := c.Cookies(FormCookie)
	if id == "" {
		return
	}
	stored, err := h.ids.OTP().Form(c.UserContext(), id)
	if err != nil {
		return
	}
	h.fillOTP(page, identity.SignupForm{Aadhaar: stored.Aadhaar, OTPSent: stored.Sent, Attempts: stored.Attempts})
}

func (h *Handler) fillOTP(page *authPage, form identity.SignupForm) {
	max := h.ids.OTP().MaxAttempts()
	page.Aadhaar = form.Aadhaar
	page.OTPSent = form.OTPSent
	page.Attempts = form.Attempts
	page.Remaining = form.RemainingAttempts(max)
	page.CanResend = form.CanResend(max)
}

// statusFor maps an identity or backend failure to a response status.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, identity.ErrMaxOTPAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, identity.ErrOTPSendFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, identity.ErrRequiredFields),
		errors.Is(err, identity.ErrInvalidAadhaar),
		errors.Is(err, identity.ErrInvalidOTP),
		errors.Is(err, identity.ErrOTPNotSent):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return fallback
}
