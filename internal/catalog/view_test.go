package catalog

import "testing"

func TestCategoryListAllSelectedByDefault(t *testing.T) {
	entries := CategoryList([]Category{{ID: "A", Name: "Agriculture", Icon: "Wheat"}}, "")
	if len(entries) != 2 {
		t.Fatalf("expected all entry plus one category, got %d", len(entries))
	}
	if entries[0].ID != "" || entries[0].Name != AllSchemesLabel || !entries[0].Selected {
		t.Fatalf("unexpected all entry %+v", entries[0])
	}
	if entries[1].Selected || !entries[1].Icon.Valid() {
		t.Fatalf("unexpected category entry %+v", entries[1])
	}
}

func TestCategoryListMarksSelection(t *testing.T) {
	entries := CategoryList([]Category{{ID: "A", Name: "Agriculture"}, {ID: "B", Name: "Banking"}}, "B")
	if entries[0].Selected || entries[1].Selected || !entries[2].Selected {
		t.Fatalf("expected only B selected, got %+v", entries)
	}
}

func TestCardOptionalSections(t *testing.T) {
	bare := Card(Scheme{Title: "PM Kisan", Description: "Income support"})
	if bare.HasEligibility() || bare.HasBenefits() || bare.HasLink() {
		t.Fatalf("expected no optional sections, got %+v", bare)
	}

	full := Card(Scheme{Title: "PM Kisan", Eligibility: "Farmers", Benefits: "Rs 6000", OfficialLink: "https://pmkisan.gov.in"})
	if !full.HasEligibility() || !full.HasBenefits() || !full.HasLink() {
		t.Fatalf("expected all optional sections, got %+v", full)
	}
}
