package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorded struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

type fakeService struct {
	mu       sync.Mutex
	requests []recorded
	handler  http.HandlerFunc
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, header: r.Header.Clone(), body: string(body)})
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeService) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatalf("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeService) {
	t.Helper()
	fake := &fakeService{handler: handler}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := New(Options{BaseURL: srv.URL + "/", APIKey: "anon-key", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, fake
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInWithPassword(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
			"user":          map[string]any{"id": "user-1", "email": "asha@example.in"},
		})
	})

	sess, err := client.SignInWithPassword(context.Background(), "asha@example.in", "secret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.AccessToken != "access-1" || sess.User.ID != "user-1" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.ExpiresAt.IsZero() {
		t.Fatalf("expected expiry to be computed")
	}

	req := fake.last(t)
	if req.method != http.MethodPost || req.path != "/auth/v1/token" || req.query != "grant_type=password" {
		t.Fatalf("unexpected request %s %s?%s", req.method, req.path, req.query)
	}
	if req.header.Get("apikey") != "anon-key" {
		t.Fatalf("missing apikey header")
	}
	if !strings.Contains(req.body, `"email":"asha@example.in"`) {
		t.Fatalf("unexpected body %s", req.body)
	}
}

func TestSignInWithPasswordForwardsMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})

	_, err := client.SignInWithPassword(context.Background(), "asha@example.in", "wrong")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := UserMessage(err); got != "Invalid login credentials" {
		t.Fatalf("expected backend message, got %q", got)
	}
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 api error, got %v", err)
	}
}

func TestUserMessageFallsBackToGeneric(t *testing.T) {
	if got := UserMessage(&APIError{Status: http.StatusInternalServerError}); got != GenericMessage {
		t.Fatalf("expected generic message, got %q", got)
	}
	if got := UserMessage(errors.New("Please fill in all required fields")); got != "Please fill in all required fields" {
		t.Fatalf("expected plain error text, got %q", got)
	}
}

func TestSignUpWithoutSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "user-2", "email": "ravi@example.in"})
	})

	user, sess, err := client.SignUp(context.Background(), "ravi@example.in", "secret")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.ID != "user-2" || sess != nil {
		t.Fatalf("unexpected result %+v %+v", user, sess)
	}
}

func TestSignUpWithSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "access-3",
			"expires_in":   60,
			"user":         map[string]any{"id": "user-3", "email": "meena@example.in"},
		})
	})

	user, sess, err := client.SignUp(context.Background(), "meena@example.in", "secret")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.ID != "user-3" || sess == nil || sess.AccessToken != "access-3" {
		t.Fatalf("unexpected result %+v %+v", user, sess)
	}
}

func TestSelectBuildsQuery(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "c1", "name": "Agriculture"}})
	})

	var rows []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	q := Query{Eq: []Filter{{Column: "slug", Value: "agri"}}, Order: []Order{{Column: "name"}}, Limit: 10}
	if err := client.Select(context.Background(), TableCategories, q, "user-token", &rows); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Agriculture" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	req := fake.last(t)
	if req.path != "/rest/v1/categories" {
		t.Fatalf("unexpected path %s", req.path)
	}
	for _, want := range []string{"select=%2A", "slug=eq.agri", "order=name.asc", "limit=10"} {
		if !strings.Contains(req.query, want) {
			t.Fatalf("query %q missing %q", req.query, want)
		}
	}
	if req.header.Get("Authorization") != "Bearer user-token" {
		t.Fatalf("expected user token bearer, got %q", req.header.Get("Authorization"))
	}
}

func TestUpsertSendsMergePreference(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	row := map[string]any{"id": "p1", "full_name": "Asha"}
	if err := client.Upsert(context.Background(), TableProfiles, row, ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	req := fake.last(t)
	if !strings.Contains(req.header.Get("Prefer"), "resolution=merge-duplicates") {
		t.Fatalf("missing merge preference, got %q", req.header.Get("Prefer"))
	}
	if req.header.Get("Authorization") != "Bearer anon-key" {
		t.Fatalf("expected anon key bearer, got %q", req.header.Get("Authorization"))
	}
}

func TestCanceledContextSkipsRequest(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.SignOut(ctx, "token"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatalf("expected no request to be sent")
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{APIKey: "k"}); err == nil {
		t.Fatalf("expected error without base url")
	}
	if _, err := New(Options{BaseURL: "https://example.supabase.co"}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
