package identity

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/schemes-portal/schemes_portal/internal/backend"
)

const minPasswordLength = 6

// Authenticator is the credential side of the data service.
type Authenticator interface {
	SignUp(ctx context.Context, creds Credentials) (User, *Tokens, error)
	SignIn(ctx context.Context, creds Credentials) (User, Tokens, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (User, error)
}

// AuthClient is the auth surface of the hosted backend client.
type AuthClient interface {
	SignUp(ctx context.Context, email, password string) (backend.User, *backend.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (backend.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (backend.User, error)
}

// RemoteAuthenticator delegates credentials to the hosted auth service.
type RemoteAuthenticator struct {
	client AuthClient
}

// NewRemoteAuthenticator wraps the hosted auth client.
func NewRemoteAuthenticator(client AuthClient) *RemoteAuthenticator {
	return &RemoteAuthenticator{client: client}
}

func (a *RemoteAuthenticator) SignUp(ctx context.Context, creds Credentials) (User, *Tokens, error) {
	u, sess, err := a.client.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return User{}, nil, err
	}
	if sess == nil {
		return fromBackendUser(u), nil, nil
	}
	tokens := tokensFromSession(*sess)
	return fromBackendUser(u), &tokens, nil
}

func (a *RemoteAuthenticator) SignIn(ctx context.Context, creds Credentials) (User, Tokens, error) {
	sess, err := a.client.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		return User{}, Tokens{}, err
	}
	return fromBackendUser(sess.User), tokensFromSession(sess), nil
}

func (a *RemoteAuthenticator) SignOut(ctx context.Context, accessToken string) error {
	return a.client.SignOut(ctx, accessToken)
}

func (a *RemoteAuthenticator) GetUser(ctx context.Context, accessToken string) (User, error) {
	u, err := a.client.GetUser(ctx, accessToken)
	if err != nil {
		return User{}, err
	}
	return fromBackendUser(u), nil
}

func fromBackendUser(u backend.User) User {
	return User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func tokensFromSession(s backend.Session) Tokens {
	return Tokens{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresAt: s.ExpiresAt}
}

// LocalAuthenticator keeps bcrypt password hashes in a Repository. Its
// access token is the user id; the portal session store keeps it server side.
type LocalAuthenticator struct {
	repo Repository
	now  func() time.Time
}

// NewLocalAuthenticator builds an authenticator over a local user store.
func NewLocalAuthenticator(repo Repository) *LocalAuthenticator {
	return &LocalAuthenticator{repo: repo, now: time.Now}
}

func (a *LocalAuthenticator) SignUp(ctx context.Context, creds Credentials) (User, *Tokens, error) {
	if _, err := mail.ParseAddress(creds.Email); err != nil {
		return User{}, nil, errors.New("Unable to validate email address: invalid format")
	}
	if len(creds.Password) < minPasswordLength {
		return User{}, nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, nil, err
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(creds.Email),
		PasswordHash: hash,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.repo.Create(ctx, user); err != nil {
		return User{}, nil, err
	}

	return user, &Tokens{AccessToken: user.ID}, nil
}

func (a *LocalAuthenticator) SignIn(ctx context.Context, creds Credentials) (User, Tokens, error) {
	user, err := a.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, Tokens{}, ErrInvalidLogin
		}
		return User{}, Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, Tokens{}, ErrInvalidLogin
	}
	return user, Tokens{AccessToken: user.ID}, nil
}

func (a *LocalAuthenticator) SignOut(context.Context, string) error { return nil }

func (a *LocalAuthenticator) GetUser(ctx context.Context, accessToken string) (User, error) {
	user, err := a.repo.FindByID(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidAccessKey
		}
		return User{}, err
	}
	return user, nil
}
