package backend

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// User is the authenticated identity returned by the auth service.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an issued token pair for a user.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	User         User      `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signUpResponse covers both shapes GoTrue answers with: a session when
// email confirmation is disabled, the bare user otherwise.
type signUpResponse struct {
	Session
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SignUp registers a new account. The session is nil when the service
// requires email confirmation before sign-in.
func (c *Client) SignUp(ctx context.Context, email, password string) (User, *Session, error) {
	body, err := c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return User{}, nil, err
	}
	var resp signUpResponse
	if err := decode(body, &resp); err != nil {
		return User{}, nil, err
	}
	if resp.AccessToken != "" {
		sess := resp.Session
		sess.ExpiresAt = expiry(sess.ExpiresIn)
		return sess.User, &sess, nil
	}
	if resp.ID == "" {
		return User{}, nil, errors.New("sign up response carried no user")
	}
	return User{ID: resp.ID, Email: resp.Email, CreatedAt: resp.CreatedAt}, nil, nil
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	body, err := c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := decode(body, &sess); err != nil {
		return Session{}, err
	}
	sess.ExpiresAt = expiry(sess.ExpiresIn)
	return sess, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	})
	return err
}

// GetUser resolves the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	body, err := c.do(ctx, request{
		method: fiber.MethodGet,
		path:   "/auth/v1/user",
		token:  accessToken,
	})
	if err != nil {
		return User{}, err
	}
	var user User
	if err := decode(body, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func expiry(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second).UTC()
}
