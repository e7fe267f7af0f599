package tracker

import "context"

// Service defines the interface for consumption tracking operations
type Service interface {
	// Load replaces the in-memory store with the persisted one
	Load(ctx context.Context) (*LoadOutput, error)

	// Save persists the whole store
	Save(ctx context.Context) error

	// RecordConsumption records one or more doses of a substance for a user
	RecordConsumption(ctx context.Context, input *RecordConsumptionInput) (*RecordConsumptionOutput, error)

	// GetMetric returns a user's current intoxication metric
	GetMetric(ctx context.Context, input *GetMetricInput) (*GetMetricOutput, error)

	// GetMonthlyCounts returns a user's occurrence counts for a month
	GetMonthlyCounts(ctx context.Context, input *GetMonthlyCountsInput) (*GetMonthlyCountsOutput, error)

	// GetStatus returns everything shown on a user's status card
	GetStatus(ctx context.Context, input *GetStatusInput) (*GetStatusOutput, error)

	// RankConsumption returns the monthly consumption leaderboard of a guild
	RankConsumption(ctx context.Context, input *RankConsumptionInput) (*RankConsumptionOutput, error)

	// RankIntoxication returns the current intoxication leaderboard of a guild
	RankIntoxication(ctx context.Context, input *RankIntoxicationInput) (*RankIntoxicationOutput, error)

	// SetWeight changes the body weight used for a user's metric
	SetWeight(ctx context.Context, input *SetWeightInput) (*SetWeightOutput, error)

	// SetDisplayMode changes how a user's status is rendered
	SetDisplayMode(ctx context.Context, input *SetDisplayModeInput) (*SetDisplayModeOutput, error)

	// ResetUser removes a user's record entirely
	ResetUser(ctx context.Context, input *ResetUserInput) (*ResetUserOutput, error)

	// GetSettings returns a copy of a guild's settings
	GetSettings(ctx context.Context, input *GetSettingsInput) (*GetSettingsOutput, error)

	// UpdateSettings sets and deletes guild settings
	UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*UpdateSettingsOutput, error)

	// ListGuilds returns the IDs of every known guild, sorted
	ListGuilds(ctx context.Context) ([]string, error)

	// Refresh prunes every ledger and persists the store when anything changed
	Refresh(ctx context.Context) (*RefreshOutput, error)
}
