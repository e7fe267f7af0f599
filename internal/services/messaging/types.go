package messaging

import (
	"github.com/KirkDiggler/promile/internal/dice"
	"github.com/KirkDiggler/promile/internal/models"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a neutral tone
	ToneNeutral MessageTone = "neutral"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"

	// ToneSarcastic is a sarcastic tone
	ToneSarcastic MessageTone = "sarcastic"

	// ToneEncouraging is an encouraging tone
	ToneEncouraging MessageTone = "encouraging"

	// ToneConcerned is used once the metric gets high
	ToneConcerned MessageTone = "concerned"
)

// Band groups metric values into the ranges messages are written for
type Band string

const (
	BandSober  Band = "sober"
	BandLight  Band = "light"
	BandTipsy  Band = "tipsy"
	BandDrunk  Band = "drunk"
	BandWasted Band = "wasted"
)

// BandFor returns the band a metric falls into
func BandFor(metric float64) Band {
	switch {
	case metric <= 0:
		return BandSober
	case metric < 0.5:
		return BandLight
	case metric < 1.0:
		return BandTipsy
	case metric < 2.0:
		return BandDrunk
	default:
		return BandWasted
	}
}

// ErrorType identifies which error message family to use
type ErrorType string

const (
	ErrorTypeInvalidWeight   ErrorType = "invalid_weight"
	ErrorTypeUnknownKind     ErrorType = "unknown_substance"
	ErrorTypeInvalidMode     ErrorType = "invalid_mode"
	ErrorTypeNotPrivileged   ErrorType = "not_privileged"
	ErrorTypeNotConfigured   ErrorType = "not_configured"
	ErrorTypeUserNotFound    ErrorType = "user_not_found"
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	ErrorTypeInternal        ErrorType = "internal"
)

// GetConsumptionMessageInput contains parameters for a consumption quip
type GetConsumptionMessageInput struct {
	// Name of the user who recorded the dose
	Name string

	Kind models.SubstanceKind

	// Metric right after recording
	Metric float64

	// MonthlyCount of this kind, including the new dose
	MonthlyCount int

	// PreferredTone overrides the band's tone (optional)
	PreferredTone MessageTone
}

// GetConsumptionMessageOutput contains the quip
type GetConsumptionMessageOutput struct {
	Message string
	Tone    MessageTone
	Band    Band
}

// GetStatusMessageInput contains parameters for a status verdict
type GetStatusMessageInput struct {
	Name   string
	Metric float64
}

// GetStatusMessageOutput contains the verdict
type GetStatusMessageOutput struct {
	Message string
	Band    Band
}

// GetResetMessageInput contains parameters for a reset message
type GetResetMessageInput struct {
	// Name of the user whose record was cleared
	Name string

	// Self is set when the user cleared their own record
	Self bool

	// Removed is false when there was nothing to clear
	Removed bool
}

// GetResetMessageOutput contains the reset message
type GetResetMessageOutput struct {
	Message string
}

// GetEmptyLeaderboardMessageInput selects the board
type GetEmptyLeaderboardMessageInput struct {
	// Intoxication selects the live board instead of the monthly one
	Intoxication bool
}

// GetEmptyLeaderboardMessageOutput contains the placeholder text
type GetEmptyLeaderboardMessageOutput struct {
	Message string
}

// GetErrorMessageInput contains parameters for an error message
type GetErrorMessageInput struct {
	ErrorType ErrorType

	// Detail is appended when set
	Detail string
}

// GetErrorMessageOutput contains the error message
type GetErrorMessageOutput struct {
	Title   string
	Message string
}

// ServiceConfig contains configuration for the messaging service
type ServiceConfig struct {
	// Roller picks messages; nil seeds one from the clock
	Roller *dice.Roller
}
