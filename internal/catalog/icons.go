package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownIcon is returned for icon identifiers outside the supported set.
var ErrUnknownIcon = errors.New("unknown icon")

// Icon is a resolved category icon. Glyph is what the templates render.
type Icon struct {
	Name  string
	Glyph string
}

// Valid reports whether the icon resolved to a known identifier.
func (i Icon) Valid() bool { return i.Glyph != "" }

var icons = map[string]string{
	"Accessibility": "♿",
	"Baby":          "👶",
	"Briefcase":     "💼",
	"Building":      "🏢",
	"Building2":     "🏢",
	"Bus":           "🚌",
	"Factory":       "🏭",
	"GraduationCap": "🎓",
	"HandCoins":     "🪙",
	"Heart":         "❤",
	"HeartPulse":    "💓",
	"Home":          "🏠",
	"Landmark":      "🏛",
	"Leaf":          "🍃",
	"Lightbulb":     "💡",
	"PiggyBank":     "🐖",
	"Scale":         "⚖",
	"Shield":        "🛡",
	"Sprout":        "🌱",
	"Stethoscope":   "🩺",
	"Tractor":       "🚜",
	"Users":         "👥",
	"Wallet":        "👛",
	"Wheat":         "🌾",
}

// ResolveIcon maps an icon identifier to its rendering handle.
func ResolveIcon(name string) (Icon, error) {
	glyph, ok := icons[name]
	if !ok {
		return Icon{Name: name}, fmt.Errorf("%w %q", ErrUnknownIcon, name)
	}
	return Icon{Name: name, Glyph: glyph}, nil
}

// ValidateIcons returns one joined error naming every category whose icon
// is not in the supported set.
func ValidateIcons(categories []Category) error {
	var errs []error
	for _, c := range categories {
		if _, err := ResolveIcon(c.Icon); err != nil {
			errs = append(errs, fmt.Errorf("category %s (%s): %w", c.Slug, c.ID, err))
		}
	}
	return errors.Join(errs...)
}
