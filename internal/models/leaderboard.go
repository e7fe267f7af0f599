package models

// ConsumptionEntry is one row of the monthly consumption leaderboard
type ConsumptionEntry struct {
	// Rank is the 1-based position in the leaderboard
	Rank int

	// UserID is the platform user identifier
	UserID string

	// Name is the resolved display name
	Name string

	// Counts are the month's occurrence counts for every kind with activity,
	// including non-alcoholic kinds
	Counts map[SubstanceKind]int

	// EthanolGrams is the sort key: grams of ethanol implied by Counts
	EthanolGrams float64
}

// IntoxicationEntry is one row of the current intoxication leaderboard
type IntoxicationEntry struct {
	// Rank is the 1-based position in the leaderboard
	Rank int

	// UserID is the platform user identifier
	UserID string

	// Name is the resolved display name
	Name string

	// Metric is the current decay metric, always > 0 for listed users
	Metric float64
}
