package catalog

// CategoryEntry is one selectable row of the category list. The "All
// Schemes" row has an empty ID.
type CategoryEntry struct {
	ID       string
	Name     string
	Icon     Icon
	Selected bool
}

// AllSchemesLabel names the entry that clears the category filter.
const AllSchemesLabel = "All Schemes"

// CategoryList builds the category list for the given selection.
func CategoryList(categories []Category, selected string) []CategoryEntry {
	entries := make([]CategoryEntry, 0, len(categories)+1)
	entries = append(entries, CategoryEntry{Name: AllSchemesLabel, Selected: selected == ""})
	for _, c := range categories {
		icon, _ := ResolveIcon(c.Icon)
		entries = append(entries, CategoryEntry{
			ID:       c.ID,
			Name:     c.Name,
			Icon:     icon,
			Selected: selected == c.ID,
		})
	}
	return entries
}

// SchemeCard holds what a scheme card renders. Optional sections are
// present only when their text is non-empty.
type SchemeCard struct {
	ID           string
	Title        string
	Description  string
	Eligibility  string
	Benefits     string
	OfficialLink string
}

func (c SchemeCard) HasEligibility() bool { return c.Eligibility != "" }
func (c SchemeCard) HasBenefits() bool    { return c.Benefits != "" }
func (c SchemeCard) HasLink() bool        { return c.OfficialLink != "" }

// Card renders one scheme.
func Card(s Scheme) SchemeCard {
	return SchemeCard{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		Eligibility:  s.Eligibility,
		Benefits:     s.Benefits,
		OfficialLink: s.OfficialLink,
	}
}

// Cards renders a list of schemes.
func Cards(schemes []Scheme) []SchemeCard {
	out := make([]SchemeCard, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, Card(s))
	}
	return out
}
