package tracker

import (
	"time"

	"github.com/KirkDiggler/promile/internal/common/clock"
	"github.com/KirkDiggler/promile/internal/common/uuid"
	"github.com/KirkDiggler/promile/internal/leaderboard"
	"github.com/KirkDiggler/promile/internal/models"
	guildRepo "github.com/KirkDiggler/promile/internal/repositories/guild"
	"github.com/rs/zerolog"
)

// Config holds configuration for the tracker service
type Config struct {
	// Repository dependencies
	Repository guildRepo.Repository

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID

	// Logger for anomalies and persistence failures
	Logger zerolog.Logger
}

// MaxDosesPerRecord caps how many events one RecordConsumption call adds.
// A larger Count is clamped.
const MaxDosesPerRecord = 10

// LoadOutput describes the loaded store
type LoadOutput struct {
	// Guilds is the number of guilds in the store
	Guilds int

	// Created is set when no store existed yet
	Created bool

	// Recovered is set when an unreadable store was replaced with an empty one
	Recovered bool
}

// RecordConsumptionInput contains parameters for recording doses
type RecordConsumptionInput struct {
	GuildID string
	UserID  string

	// DisplayName is stored when the record is created
	DisplayName string

	// Substance is a kind name, alias or emoji
	Substance string

	// Dose per event, in catalog units
	Dose float64

	// Count is the number of separate events to record. Values below 1 mean
	// 1 and values above MaxDosesPerRecord are clamped to it, not rejected.
	Count int

	// Timestamp of the events; zero means now
	Timestamp time.Time
}

// RecordConsumptionOutput contains the result of recording doses
type RecordConsumptionOutput struct {
	Kind   models.SubstanceKind
	Events []models.ConsumptionEvent

	// Metric is the user's metric right after recording
	Metric float64

	// MonthlyCount is the user's count of this kind in the events' month
	MonthlyCount int
}

// GetMetricInput contains parameters for reading a metric
type GetMetricInput struct {
	GuildID string
	UserID  string
}

// GetMetricOutput contains a user's current metric
type GetMetricOutput struct {
	Metric float64

	// Found is false when the user has no record; Metric is then 0
	Found bool
}

// GetMonthlyCountsInput contains parameters for reading monthly counts
type GetMonthlyCountsInput struct {
	GuildID string
	UserID  string

	// Month as "YYYY-MM"; empty means the current month
	Month string
}

// GetMonthlyCountsOutput contains a user's counts for one month
type GetMonthlyCountsOutput struct {
	Month  string
	Counts map[models.SubstanceKind]int
	Found  bool
}

// GetStatusInput contains parameters for reading a user's status
type GetStatusInput struct {
	GuildID string
	UserID  string
}

// GetStatusOutput is a snapshot of one user
type GetStatusOutput struct {
	UserID      string
	DisplayName string
	Metric      float64
	Month       string
	Counts      map[models.SubstanceKind]int
	WeightKg    float64
	DisplayMode models.DisplayMode

	// ActiveEvents is the number of events still in the ledger
	ActiveEvents int
}

// RankConsumptionInput contains parameters for the monthly leaderboard
type RankConsumptionInput struct {
	GuildID string

	// Month as "YYYY-MM"; empty means the current month
	Month string

	// Resolver is optional
	Resolver leaderboard.NameResolver
}

// RankConsumptionOutput contains the monthly leaderboard
type RankConsumptionOutput struct {
	Month   string
	Entries []models.ConsumptionEntry
}

// RankIntoxicationInput contains parameters for the intoxication leaderboard
type RankIntoxicationInput struct {
	GuildID string

	// Resolver is optional
	Resolver leaderboard.NameResolver
}

// RankIntoxicationOutput contains the intoxication leaderboard
type RankIntoxicationOutput struct {
	At      time.Time
	Entries []models.IntoxicationEntry
}

// SetWeightInput contains parameters for setting a user's weight
type SetWeightInput struct {
	GuildID     string
	UserID      string
	DisplayName string
	WeightKg    float64
}

// SetWeightOutput contains the weight change
type SetWeightOutput struct {
	PreviousWeightKg float64
	WeightKg         float64
}

// SetDisplayModeInput contains parameters for setting a user's display mode
type SetDisplayModeInput struct {
	GuildID     string
	UserID      string
	DisplayName string
	Mode        models.DisplayMode
}

// SetDisplayModeOutput contains the new mode
type SetDisplayModeOutput struct {
	Mode models.DisplayMode
}

// ResetUserInput contains parameters for resetting a user
type ResetUserInput struct {
	GuildID string

	// ActorID is the user asking for the reset
	ActorID string

	// TargetUserID is the user to reset; empty means the actor
	TargetUserID string

	// Privileged must be set to reset anyone other than the actor
	Privileged bool
}

// ResetUserOutput contains the result of a reset
type ResetUserOutput struct {
	TargetUserID string

	// Removed is false when the target had no record
	Removed bool
}

// GetSettingsInput contains parameters for reading guild settings
type GetSettingsInput struct {
	GuildID string
}

// GetSettingsOutput contains a copy of the guild settings
type GetSettingsOutput struct {
	Settings models.GuildSettings
}

// UpdateSettingsInput contains settings changes for one guild
type UpdateSettingsInput struct {
	GuildID string

	// Set adds or replaces keys
	Set map[string]string

	// Delete removes keys; applied after Set
	Delete []string
}

// UpdateSettingsOutput contains the settings after the update
type UpdateSettingsOutput struct {
	Settings models.GuildSettings
}

// RefreshOutput summarises one refresh pass
type RefreshOutput struct {
	// Removed counts expired events across all guilds
	Removed int

	// Malformed counts events dropped for an unreadable timestamp
	Malformed int

	// ChangedGuilds lists guilds where anything was pruned, sorted
	ChangedGuilds []string

	// Saved is set when the store was persisted
	Saved bool
}
