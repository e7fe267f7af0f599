package messaging

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetConsumptionMessage returns a quip for a freshly recorded dose
	GetConsumptionMessage(ctx context.Context, input *GetConsumptionMessageInput) (*GetConsumptionMessageOutput, error)

	// GetStatusMessage returns a one-line verdict for a status card
	GetStatusMessage(ctx context.Context, input *GetStatusMessageInput) (*GetStatusMessageOutput, error)

	// GetResetMessage returns a message for a cleared record
	GetResetMessage(ctx context.Context, input *GetResetMessageInput) (*GetResetMessageOutput, error)

	// GetEmptyLeaderboardMessage returns the text shown when a board has no rows
	GetEmptyLeaderboardMessage(ctx context.Context, input *GetEmptyLeaderboardMessageInput) (*GetEmptyLeaderboardMessageOutput, error)

	// GetErrorMessage returns a user-friendly error message
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
