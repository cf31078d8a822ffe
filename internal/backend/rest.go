package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Table names exposed by the hosted data service.
const (
	TableProfiles   = "profiles"
	TableCategories = "categories"
	TableSchemes    = "schemes"
)

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  string
}

// Order sorts rows by one column.
type Order struct {
	Column     string
	Descending bool
}

// Query narrows a Select call.
type Query struct {
	Eq    []Filter
	Order []Order
	Limit int
}

func (q Query) values() url.Values {
	v := url.Values{"select": {"*"}}
	for _, f := range q.Eq {
		v.Add(f.Column, "eq."+f.Value)
	}
	for _, o := range q.Order {
		dir := "asc"
		if o.Descending {
			dir = "desc"
		}
		v.Add("order", o.Column+"."+dir)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Select decodes rows of table matching q into dest, which must point to a slice.
func (c *Client) Select(ctx context.Context, table string, q Query, accessToken string, dest any) error {
	body, err := c.do(ctx, request{
		method: fiber.MethodGet,
		path:   "/rest/v1/" + table,
		query:  q.values(),
		token:  accessToken,
	})
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return decode(body, dest)
}

// Upsert inserts row into table, merging on the primary key when it exists.
func (c *Client) Upsert(ctx context.Context, table string, row any, accessToken string) error {
	_, err := c.do(ctx, request{
		method:  fiber.MethodPost,
		path:    "/rest/v1/" + table,
		token:   accessToken,
		headers: map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"},
		body:    row,
	})
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}
