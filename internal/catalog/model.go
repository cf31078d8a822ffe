package catalog

import "time"

// Category groups schemes for filtering.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// Scheme is a government welfare programme.
type Scheme struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Eligibility  string    `json:"eligibility,omitempty"`
	Benefits     string    `json:"benefits,omitempty"`
	OfficialLink string    `json:"official_link,omitempty"`
	CategoryID   string    `json:"category_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
