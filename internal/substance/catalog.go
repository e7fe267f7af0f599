// Package substance is the static catalog of tracked substance kinds.
package substance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/promile/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownKind is returned when a name, alias or emoji matches no kind
var ErrUnknownKind = errors.New("unknown substance kind")

// Info describes one substance kind
type Info struct {
	// Kind is the canonical identifier
	Kind models.SubstanceKind

	// Emoji is the reaction used to record a dose
	Emoji string

	// EthanolGrams is grams of ethanol per dose; 0 for the non-alcoholic kind
	EthanolGrams float64

	// ExpiryHours bounds how long an event can stay in the ledger
	ExpiryHours int

	// Aliases are extra accepted names, lower case
	Aliases []string
}

// Alcoholic reports whether doses of this kind feed the decay metric
func (i Info) Alcoholic() bool {
	return i.EthanolGrams > 0
}

// DisplayName returns a human readable title-cased name
func (i Info) DisplayName() string {
	return titleCaser.String(string(i.Kind))
}

var titleCaser = cases.Title(language.English)

// catalog is ordered the way kinds are listed to users
var catalog = []Info{
	{Kind: models.SubstanceBeer, Emoji: "🍺", EthanolGrams: 19.73, ExpiryHours: 3, Aliases: []string{"piwo"}},
	{Kind: models.SubstanceVodka, Emoji: "🍸", EthanolGrams: 15.78, ExpiryHours: 2, Aliases: []string{"wodka", "wódka"}},
	{Kind: models.SubstanceWhiskey, Emoji: "🥃", EthanolGrams: 31.56, ExpiryHours: 2, Aliases: []string{"whisky"}},
	{Kind: models.SubstanceWine, Emoji: "🍷", EthanolGrams: 23.67, ExpiryHours: 2, Aliases: []string{"wino"}},
	{Kind: models.SubstanceCocktail, Emoji: "🍹", EthanolGrams: 23.23, ExpiryHours: 2, Aliases: []string{"drink"}},
	{Kind: models.SubstanceLiqueur, Emoji: "🍶", EthanolGrams: 18.50, ExpiryHours: 2, Aliases: []string{"likier"}},
	{Kind: models.SubstanceSmokable, Emoji: "🍃", EthanolGrams: 0, ExpiryHours: 4, Aliases: []string{"blunt"}},
}

var (
	byKind  = make(map[models.SubstanceKind]Info, len(catalog))
	byToken = make(map[string]models.SubstanceKind)
)

func init() {
	for _, info := range catalog {
		byKind[info.Kind] = info
		byToken[string(info.Kind)] = info.Kind
		byToken[info.Emoji] = info.Kind
		for _, alias := range info.Aliases {
			byToken[alias] = info.Kind
		}
	}
}

// All returns every kind in display order
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Kinds returns every kind identifier in display order
func Kinds() []models.SubstanceKind {
	kinds := make([]models.SubstanceKind, 0, len(catalog))
	for _, info := range catalog {
		kinds = append(kinds, info.Kind)
	}
	return kinds
}

// Lookup returns the catalog entry for a kind
func Lookup(kind models.SubstanceKind) (Info, bool) {
	info, ok := byKind[kind]
	return info, ok
}

// MustLookup returns the catalog entry for a known kind and panics otherwise
func MustLookup(kind models.SubstanceKind) Info {
	info, ok := byKind[kind]
	if !ok {
		panic(fmt.Sprintf("substance: unknown kind %q", kind))
	}
	return info
}

// Parse resolves a canonical name, an alias or an emoji to a kind
func Parse(token string) (models.SubstanceKind, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if kind, ok := byToken[token]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, token)
}

// IsAlcoholic reports whether the kind feeds the decay metric. Unknown kinds
// are not alcoholic.
func IsAlcoholic(kind models.SubstanceKind) bool {
	info, ok := byKind[kind]
	return ok && info.Alcoholic()
}
