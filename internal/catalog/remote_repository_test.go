package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/schemes-portal/schemes_portal/internal/backend"
)

type fakeRows struct {
	table    string
	query    backend.Query
	token    string
	response string
	upserted any
}

func (f *fakeRows) Select(_ context.Context, table string, q backend.Query, token string, dest any) error {
	f.table, f.query, f.token = table, q, token
	return json.Unmarshal([]byte(f.response), dest)
}

func (f *fakeRows) Upsert(_ context.Context, table string, row any, token string) error {
	f.table, f.token, f.upserted = table, token, row
	return nil
}

func TestRemoteRepositoryListSchemes(t *testing.T) {
	rows := &fakeRows{response: `[{"id":"1","title":"PM Kisan","description":"Income","eligibility":null,"category_id":"A","created_at":"2024-01-02T03:04:05.123456+00:00","updated_at":"2024-01-02T03:04:05+00:00"}]`}
	repo := NewRemoteRepository(rows)

	ctx := backend.WithAccessToken(context.Background(), "user-token")
	schemes, err := repo.ListSchemes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(schemes) != 1 || schemes[0].Eligibility != "" || schemes[0].CategoryID != "A" {
		t.Fatalf("unexpected schemes %+v", schemes)
	}
	if rows.table != backend.TableSchemes || rows.token != "user-token" {
		t.Fatalf("unexpected call %s token=%q", rows.table, rows.token)
	}
	if len(rows.query.Order) != 1 || rows.query.Order[0].Column != "created_at" || !rows.query.Order[0].Descending {
		t.Fatalf("expected created_at desc ordering, got %+v", rows.query.Order)
	}
}

func TestRemoteRepositoryListCategoriesOrdersByName(t *testing.T) {
	rows := &fakeRows{response: `[]`}
	repo := NewRemoteRepository(rows)
	if _, err := repo.ListCategories(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if rows.query.Order[0].Column != "name" || rows.query.Order[0].Descending {
		t.Fatalf("expected name asc ordering, got %+v", rows.query.Order)
	}
}

func TestRemoteRepositoryUpsertSendsNulls(t *testing.T) {
	rows := &fakeRows{}
	repo := NewRemoteRepository(rows)
	if err := repo.UpsertScheme(context.Background(), Scheme{ID: "1", Title: "T", Description: "D"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	payload, err := json.Marshal(rows.upserted)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	_ = json.Unmarshal(payload, &decoded)
	if v, ok := decoded["eligibility"]; !ok || v != nil {
		t.Fatalf("expected explicit null eligibility, got %v", decoded)
	}
}
