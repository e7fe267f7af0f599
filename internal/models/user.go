package models

// DefaultWeightKg is the body weight assumed until a user sets their own
const DefaultWeightKg = 80.0

// DisplayMode selects how a user's status is rendered by the integration layer
type DisplayMode string

const (
	// DisplayModeMetric shows the current intoxication metric
	DisplayModeMetric DisplayMode = "metric"

	// DisplayModeIcons shows this month's counts as substance icons
	DisplayModeIcons DisplayMode = "icons"
)

// IsValid reports whether the mode is one of the known display modes
func (m DisplayMode) IsValid() bool {
	return m == DisplayModeMetric || m == DisplayModeIcons
}

// UserRecord is everything tracked for one user within one guild
type UserRecord struct {
	// DisplayName is the name captured when the record was created
	DisplayName string `json:"display_name"`

	// Ledger holds the events that still contribute, per kind, oldest first
	Ledger map[SubstanceKind][]ConsumptionEvent `json:"ledger"`

	// MonthlyUsage counts occurrences per "YYYY-MM" month and kind. Pruning
	// never touches it.
	MonthlyUsage map[string]map[SubstanceKind]int `json:"monthly_usage"`

	// WeightKg is the body weight used by the decay model, always > 0
	WeightKg float64 `json:"weight_kg"`

	// DisplayMode is the user's preferred status rendering
	DisplayMode DisplayMode `json:"display_mode"`
}

// NewUserRecord creates an empty record with default weight and mode
func NewUserRecord(displayName string) *UserRecord {
	return &UserRecord{
		DisplayName:  displayName,
		Ledger:       make(map[SubstanceKind][]ConsumptionEvent),
		MonthlyUsage: make(map[string]map[SubstanceKind]int),
		WeightKg:     DefaultWeightKg,
		DisplayMode:  DisplayModeMetric,
	}
}

// HasLedgerEvents reports whether any kind still has events in the ledger
func (u *UserRecord) HasLedgerEvents() bool {
	for _, events := range u.Ledger {
		if len(events) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record
func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}

	clone := &UserRecord{
		DisplayName:  u.DisplayName,
		Ledger:       make(map[SubstanceKind][]ConsumptionEvent, len(u.Ledger)),
		MonthlyUsage: make(map[string]map[SubstanceKind]int, len(u.MonthlyUsage)),
		WeightKg:     u.WeightKg,
		DisplayMode:  u.DisplayMode,
	}

	for kind, events := range u.Ledger {
		clone.Ledger[kind] = append([]ConsumptionEvent(nil), events...)
	}

	for month, counts := range u.MonthlyUsage {
		monthCopy := make(map[SubstanceKind]int, len(counts))
		for kind, count := range counts {
			monthCopy[kind] = count
		}
		clone.MonthlyUsage[month] = monthCopy
	}

	return clone
}
