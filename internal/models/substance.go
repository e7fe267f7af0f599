package models

// SubstanceKind identifies a tracked substance
type SubstanceKind string

const (
	// SubstanceBeer is a bottle of beer
	SubstanceBeer SubstanceKind = "beer"

	// SubstanceVodka is a shot of vodka
	SubstanceVodka SubstanceKind = "vodka"

	// SubstanceWhiskey is a glass of whiskey
	SubstanceWhiskey SubstanceKind = "whiskey"

	// SubstanceWine is a glass of wine
	SubstanceWine SubstanceKind = "wine"

	// SubstanceCocktail is a mixed drink
	SubstanceCocktail SubstanceKind = "cocktail"

	// SubstanceLiqueur is a glass of liqueur
	SubstanceLiqueur SubstanceKind = "liqueur"

	// SubstanceSmokable is the non-alcoholic kind; it only ever expires by time
	SubstanceSmokable SubstanceKind = "smokable"
)

// String returns the kind as stored in the persisted document
func (k SubstanceKind) String() string {
	return string(k)
}
