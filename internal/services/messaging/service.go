package messaging

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/promile/internal/dice"
	"github.com/KirkDiggler/promile/internal/substance"
)

// service implements the Service interface
type service struct {
	roller *dice.Roller
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	var roller *dice.Roller
	if config != nil {
		roller = config.Roller
	}
	if roller == nil {
		roller = dice.New(&dice.Config{})
	}

	return &service{
		roller: roller,
	}, nil
}

func (s *service) pick(messages []string) string {
	return s.roller.Pick(messages)
}

var bandTones = map[Band]MessageTone{
	BandSober:  ToneNeutral,
	BandLight:  ToneEncouraging,
	BandTipsy:  ToneFunny,
	BandDrunk:  ToneSarcastic,
	BandWasted: ToneConcerned,
}

// GetConsumptionMessage returns a quip for a freshly recorded dose
func (s *service) GetConsumptionMessage(ctx context.Context, input *GetConsumptionMessageInput) (*GetConsumptionMessageOutput, error) {
	band := BandFor(input.Metric)
	tone := input.PreferredTone
	if tone == "" {
		tone = bandTones[band]
	}

	emoji := ""
	if info, ok := substance.Lookup(input.Kind); ok {
		emoji = info.Emoji
	}

	var messages []string
	switch band {
	case BandSober:
		messages = []string{
			fmt.Sprintf("%s %s logged. Clear head, clear conscience.", emoji, input.Name),
			fmt.Sprintf("%s Noted, %s. Still stone cold sober.", emoji, input.Name),
			fmt.Sprintf("%s %s is keeping it light today.", emoji, input.Name),
		}
	case BandLight:
		messages = []string{
			fmt.Sprintf("%s Cheers, %s! Just warming up.", emoji, input.Name),
			fmt.Sprintf("%s %s has entered the chat. Pace yourself!", emoji, input.Name),
			fmt.Sprintf("%s Number %d this month for %s. Easy does it.", emoji, input.MonthlyCount, input.Name),
		}
	case BandTipsy:
		messages = []string{
			fmt.Sprintf("%s %s is getting chatty. Someone get them a glass of water.", emoji, input.Name),
			fmt.Sprintf("%s Another one, %s? The room is starting to feel warmer.", emoji, input.Name),
			fmt.Sprintf("%s %s just found their dancing shoes.", emoji, input.Name),
		}
	case BandDrunk:
		messages = []string{
			fmt.Sprintf("%s Sure, %s. That's definitely a good idea.", emoji, input.Name),
			fmt.Sprintf("%s %s, you know this thing keeps score, right?", emoji, input.Name),
			fmt.Sprintf("%s Legendary, %s. Tomorrow you will not agree.", emoji, input.Name),
		}
	default:
		messages = []string{
			fmt.Sprintf("%s %s, maybe switch to water for a bit?", emoji, input.Name),
			fmt.Sprintf("%s Okay %s, that's plenty. Eat something.", emoji, input.Name),
			fmt.Sprintf("%s %s is off the charts. Someone call them a taxi.", emoji, input.Name),
		}
	}

	return &GetConsumptionMessageOutput{
		Message: s.pick(messages),
		Tone:    tone,
		Band:    band,
	}, nil
}

// GetStatusMessage returns a one-line verdict for a status card
func (s *service) GetStatusMessage(ctx context.Context, input *GetStatusMessageInput) (*GetStatusMessageOutput, error) {
	band := BandFor(input.Metric)

	var messages []string
	switch band {
	case BandSober:
		messages = []string{"Sober as a judge.", "Fresh as a daisy.", "Designated driver material."}
	case BandLight:
		messages = []string{"A little glow, nothing more.", "Warmed up and feeling fine."}
	case BandTipsy:
		messages = []string{"Tipsy. Definitely tipsy.", "Telling everyone they're your best friend."}
	case BandDrunk:
		messages = []string{"Properly drunk.", "Walking in a straight-ish line."}
	default:
		messages = []string{"Way past the point of good ideas.", "Please hydrate."}
	}

	return &GetStatusMessageOutput{
		Message: s.pick(messages),
		Band:    band,
	}, nil
}

// GetResetMessage returns a message for a cleared record
func (s *service) GetResetMessage(ctx context.Context, input *GetResetMessageInput) (*GetResetMessageOutput, error) {
	var messages []string
	switch {
	case !input.Removed:
		messages = []string{
			fmt.Sprintf("Nothing to clear for %s, the slate was already clean.", input.Name),
			fmt.Sprintf("%s has no record yet. Nothing happened.", input.Name),
		}
	case input.Self:
		messages = []string{
			fmt.Sprintf("%s wiped the slate clean. Fresh start!", input.Name),
			fmt.Sprintf("What happens at the bar stays at the bar. %s has been reset.", input.Name),
		}
	default:
		messages = []string{
			fmt.Sprintf("%s's record has been cleared.", input.Name),
			fmt.Sprintf("The tab for %s has been wiped.", input.Name),
		}
	}

	return &GetResetMessageOutput{
		Message: s.pick(messages),
	}, nil
}

// GetEmptyLeaderboardMessage returns the text shown when a board has no rows
func (s *service) GetEmptyLeaderboardMessage(ctx context.Context, input *GetEmptyLeaderboardMessageInput) (*GetEmptyLeaderboardMessageOutput, error) {
	messages := []string{
		"Nobody has had a drink this month. Suspicious.",
		"The leaderboard is empty. Who's buying the first round?",
	}
	if input.Intoxication {
		messages = []string{
			"Everyone is sober right now.",
			"All clear. Not a single drop in anyone's system.",
		}
	}

	return &GetEmptyLeaderboardMessageOutput{
		Message: s.pick(messages),
	}, nil
}

// GetErrorMessage returns a user-friendly error message
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	var title string
	var messages []string

	switch input.ErrorType {
	case ErrorTypeInvalidWeight:
		title = "Invalid Weight"
		messages = []string{
			"That weight doesn't look right. Give me a positive number of kilograms.",
			"Nice try. Weight has to be more than zero.",
		}
	case ErrorTypeUnknownKind:
		title = "Unknown Drink"
		messages = []string{
			"Never heard of that one. Pick something from the menu.",
			"The bartender doesn't know that drink.",
		}
	case ErrorTypeInvalidMode:
		title = "Invalid Mode"
		messages = []string{"Display mode must be metric or icons."}
	case ErrorTypeNotPrivileged:
		title = "Not Allowed"
		messages = []string{
			"Only moderators can clear someone else's record.",
			"You can only clear your own tab.",
		}
	case ErrorTypeNotConfigured:
		title = "Not Set Up"
		messages = []string{"This server isn't set up yet. Ask a moderator to run /promile init."}
	case ErrorTypeUserNotFound:
		title = "No Record"
		messages = []string{
			"No drinks on record yet. React to the status message to start.",
			"Nothing here yet. Your liver thanks you.",
		}
	case ErrorTypeInvalidArgument:
		title = "Invalid Input"
		messages = []string{"Something about that command didn't add up."}
	default:
		title = "Error"
		messages = []string{
			"Something went wrong. Try again in a bit.",
			"The bot spilled its drink. Please try again.",
		}
	}

	message := s.pick(messages)
	if input.Detail != "" {
		message = fmt.Sprintf("%s (%s)", message, input.Detail)
	}

	return &GetErrorMessageOutput{
		Title:   title,
		Message: message,
	}, nil
}
