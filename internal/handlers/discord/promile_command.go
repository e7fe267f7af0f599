package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/services/messaging"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/KirkDiggler/promile/internal/substance"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Subcommand names
const (
	SubcommandStatus       = "status"
	SubcommandAdd          = "add"
	SubcommandClear        = "clear"
	SubcommandLeaderboard  = "leaderboard"
	SubcommandIntoxication = "intoxication"
	SubcommandSetWeight    = "setweight"
	SubcommandSetMode      = "setmode"
	SubcommandSetChannel   = "setchannel"
	SubcommandInit         = "init"
)

// privilegedPermissions may clear other users' records
const privilegedPermissions = discordgo.PermissionManageNicknames | discordgo.PermissionAdministrator

// PromileCommand handles the /promile command
type PromileCommand struct {
	BaseCommand
	tracker   tracker.Service
	messaging messaging.Service
	boards    *Boards
	logger    zerolog.Logger
}

// invocation is a parsed slash command, independent of the session
type invocation struct {
	GuildID    string
	ChannelID  string
	UserID     string
	UserName   string
	Privileged bool
	Subcommand string
	Options    map[string]*discordgo.ApplicationCommandInteractionDataOption

	// Resolved carries the users and members referenced by options
	Resolved *discordgo.ApplicationCommandInteractionDataResolved
}

// response is what a subcommand wants sent back
type response struct {
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Ephemeral bool
}

func floatPtr(v float64) *float64 {
	return &v
}

// NewPromileCommand creates a new promile command handler
func NewPromileCommand(trackerService tracker.Service, messagingService messaging.Service, boards *Boards, logger zerolog.Logger) *PromileCommand {
	kindChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(substance.All()))
	for _, info := range substance.All() {
		kindChoices = append(kindChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s %s", info.Emoji, info.DisplayName()),
			Value: string(info.Kind),
		})
	}

	return &PromileCommand{
		BaseCommand: BaseCommand{
			Name:        "promile",
			Description: "Track drinks and see who is leading",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandStatus,
					Description: "Show your current status",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandAdd,
					Description: "Record a drink",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "kind",
							Description: "What you had",
							Required:    true,
							Choices:     kindChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "How many",
							MinValue:    floatPtr(1),
							MaxValue:    tracker.MaxDosesPerRecord,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandClear,
					Description: "Clear your record, or someone else's with Manage Nicknames",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to clear",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandLeaderboard,
					Description: "Show this month's leaderboard",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandIntoxication,
					Description: "Show who is the most intoxicated right now",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandSetWeight,
					Description: "Set your body weight in kg",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "kg",
							Description: "Weight in kilograms",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandSetMode,
					Description: "Choose how your status is shown",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "mode",
							Description: "Display mode",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "metric", Value: string(models.DisplayModeMetric)},
								{Name: "icons", Value: string(models.DisplayModeIcons)},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandSetChannel,
					Description: "Set the channel for the status message and boards",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Dedicated channel",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandInit,
					Description: "Post the status message and the live leaderboards",
				},
			},
		},
		tracker:   trackerService,
		messaging: messagingService,
		boards:    boards,
		logger:    logger,
	}
}

// Handle processes a Discord interaction for the promile command
func (c *PromileCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	if i.GuildID == "" || i.Member == nil || len(data.Options) == 0 {
		return RespondWithError(s, i, "This command only works inside a server.")
	}

	inv := &invocation{
		GuildID:    i.GuildID,
		ChannelID:  i.ChannelID,
		UserID:     i.Member.User.ID,
		UserName:   memberName(i.Member),
		Privileged: i.Member.Permissions&privilegedPermissions != 0,
		Subcommand: data.Options[0].Name,
		Options:    make(map[string]*discordgo.ApplicationCommandInteractionDataOption),
		Resolved:   data.Resolved,
	}
	for _, opt := range data.Options[0].Options {
		inv.Options[opt.Name] = opt
	}

	resp, err := c.dispatch(context.Background(), inv)
	if err != nil {
		return err
	}

	return respond(s, i, resp)
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, resp *response) error {
	if len(resp.Embeds) == 0 {
		if resp.Ephemeral {
			return RespondWithEphemeralMessage(s, i, resp.Content)
		}
		return RespondWithMessage(s, i, resp.Content)
	}

	data := &discordgo.InteractionResponseData{
		Content: resp.Content,
		Embeds:  resp.Embeds,
	}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return respondData(s, i, data)
}

// dispatch runs a subcommand. Service failures are turned into error
// responses; the returned error is only for programming mistakes.
func (c *PromileCommand) dispatch(ctx context.Context, inv *invocation) (*response, error) {
	var resp *response
	var err error

	switch inv.Subcommand {
	case SubcommandStatus:
		resp, err = c.handleStatus(ctx, inv)
	case SubcommandAdd:
		resp, err = c.handleAdd(ctx, inv)
	case SubcommandClear:
		resp, err = c.handleClear(ctx, inv)
	case SubcommandLeaderboard:
		resp, err = c.handleLeaderboard(ctx, inv)
	case SubcommandIntoxication:
		resp, err = c.handleIntoxication(ctx, inv)
	case SubcommandSetWeight:
		resp, err = c.handleSetWeight(ctx, inv)
	case SubcommandSetMode:
		resp, err = c.handleSetMode(ctx, inv)
	case SubcommandSetChannel:
		resp, err = c.handleSetChannel(ctx, inv)
	case SubcommandInit:
		resp, err = c.handleInit(ctx, inv)
	default:
		return nil, fmt.Errorf("unknown subcommand %q", inv.Subcommand)
	}

	if err != nil {
		return c.errorResponse(ctx, inv, err), nil
	}
	return resp, nil
}

// errorTypeFor maps service errors to message families
func errorTypeFor(err error) messaging.ErrorType {
	switch {
	case errors.Is(err, tracker.ErrInvalidWeight):
		return messaging.ErrorTypeInvalidWeight
	case errors.Is(err, tracker.ErrUnknownSubstance):
		return messaging.ErrorTypeUnknownKind
	case errors.Is(err, tracker.ErrInvalidDisplayMode):
		return messaging.ErrorTypeInvalidMode
	case errors.Is(err, tracker.ErrNotPrivileged):
		return messaging.ErrorTypeNotPrivileged
	case errors.Is(err, tracker.ErrUserNotFound):
		return messaging.ErrorTypeUserNotFound
	case tracker.IsValidation(err):
		return messaging.ErrorTypeInvalidArgument
	default:
		return messaging.ErrorTypeInternal
	}
}

func (c *PromileCommand) errorResponse(ctx context.Context, inv *invocation, err error) *response {
	errorType := errorTypeFor(err)
	if errorType == messaging.ErrorTypeInternal {
		c.logger.Error().Err(err).
			Str("guild_id", inv.GuildID).
			Str("user_id", inv.UserID).
			Str("subcommand", inv.Subcommand).
			Msg("command failed")
	}

	title, text := "Error", err.Error()
	if msg, msgErr := c.messaging.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{ErrorType: errorType}); msgErr == nil {
		title, text = msg.Title, msg.Message
	}

	return &response{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       title,
			Description: text,
			Color:       colorError,
		}},
		Ephemeral: true,
	}
}

func (c *PromileCommand) handleStatus(ctx context.Context, inv *invocation) (*response, error) {
	status, err := c.tracker.GetStatus(ctx, &tracker.GetStatusInput{
		GuildID: inv.GuildID,
		UserID:  inv.UserID,
	})
	if err != nil {
		return nil, err
	}
	if status.DisplayName == "" {
		status.DisplayName = inv.UserName
	}

	verdict, err := c.messaging.GetStatusMessage(ctx, &messaging.GetStatusMessageInput{
		Name:   status.DisplayName,
		Metric: status.Metric,
	})
	if err != nil {
		return nil, err
	}

	return &response{
		Embeds:    []*discordgo.MessageEmbed{renderStatus(status, verdict.Message)},
		Ephemeral: true,
	}, nil
}

func (c *PromileCommand) handleAdd(ctx context.Context, inv *invocation) (*response, error) {
	kind := ""
	if opt, ok := inv.Options["kind"]; ok {
		kind = opt.StringValue()
	}
	amount := 1
	if opt, ok := inv.Options["amount"]; ok {
		amount = int(opt.IntValue())
	}

	recorded, err := c.tracker.RecordConsumption(ctx, &tracker.RecordConsumptionInput{
		GuildID:     inv.GuildID,
		UserID:      inv.UserID,
		DisplayName: inv.UserName,
		Substance:   kind,
		Dose:        1,
		Count:       amount,
	})
	if err != nil {
		return nil, err
	}

	quip, err := c.messaging.GetConsumptionMessage(ctx, &messaging.GetConsumptionMessageInput{
		Name:         inv.UserName,
		Kind:         recorded.Kind,
		Metric:       recorded.Metric,
		MonthlyCount: recorded.MonthlyCount,
	})
	if err != nil {
		return nil, err
	}

	return &response{
		Content: fmt.Sprintf("%s\nCurrent: %s", quip.Message, formatMetric(recorded.Metric)),
	}, nil
}

func (c *PromileCommand) handleClear(ctx context.Context, inv *invocation) (*response, error) {
	target, targetName := inv.UserID, inv.UserName
	if opt, ok := inv.Options["user"]; ok {
		if id, ok := opt.Value.(string); ok && id != "" {
			target, targetName = id, resolvedName(inv.Resolved, id)
		}
	}

	reset, err := c.tracker.ResetUser(ctx, &tracker.ResetUserInput{
		GuildID:      inv.GuildID,
		ActorID:      inv.UserID,
		TargetUserID: target,
		Privileged:   inv.Privileged,
	})
	if err != nil {
		return nil, err
	}

	msg, err := c.messaging.GetResetMessage(ctx, &messaging.GetResetMessageInput{
		Name:    targetName,
		Self:    target == inv.UserID,
		Removed: reset.Removed,
	})
	if err != nil {
		return nil, err
	}

	return &response{Content: msg.Message, Ephemeral: !reset.Removed}, nil
}

// resolvedName finds the display name of a user referenced by an option
func resolvedName(resolved *discordgo.ApplicationCommandInteractionDataResolved, userID string) string {
	if resolved != nil {
		if member, ok := resolved.Members[userID]; ok && member.Nick != "" {
			return member.Nick
		}
		if user, ok := resolved.Users[userID]; ok {
			if user.GlobalName != "" {
				return user.GlobalName
			}
			return user.Username
		}
	}
	return fmt.Sprintf("<@%s>", userID)
}

func (c *PromileCommand) handleLeaderboard(ctx context.Context, inv *invocation) (*response, error) {
	embed, err := c.boards.ConsumptionEmbed(ctx, inv.GuildID, "")
	if err != nil {
		return nil, err
	}
	return &response{Embeds: []*discordgo.MessageEmbed{embed}}, nil
}

func (c *PromileCommand) handleIntoxication(ctx context.Context, inv *invocation) (*response, error) {
	embed, err := c.boards.IntoxicationEmbed(ctx, inv.GuildID)
	if err != nil {
		return nil, err
	}
	return &response{Embeds: []*discordgo.MessageEmbed{embed}}, nil
}

func (c *PromileCommand) handleSetWeight(ctx context.Context, inv *invocation) (*response, error) {
	weight := 0.0
	if opt, ok := inv.Options["kg"]; ok {
		weight = opt.FloatValue()
	}

	output, err := c.tracker.SetWeight(ctx, &tracker.SetWeightInput{
		GuildID:     inv.GuildID,
		UserID:      inv.UserID,
		DisplayName: inv.UserName,
		WeightKg:    weight,
	})
	if err != nil {
		return nil, err
	}

	return &response{
		Content:   fmt.Sprintf("Weight set to %.1f kg (was %.1f kg).", output.WeightKg, output.PreviousWeightKg),
		Ephemeral: true,
	}, nil
}

func (c *PromileCommand) handleSetMode(ctx context.Context, inv *invocation) (*response, error) {
	mode := ""
	if opt, ok := inv.Options["mode"]; ok {
		mode = opt.StringValue()
	}

	output, err := c.tracker.SetDisplayMode(ctx, &tracker.SetDisplayModeInput{
		GuildID:     inv.GuildID,
		UserID:      inv.UserID,
		DisplayName: inv.UserName,
		Mode:        models.DisplayMode(mode),
	})
	if err != nil {
		return nil, err
	}

	return &response{
		Content:   fmt.Sprintf("Display mode set to %s.", output.Mode),
		Ephemeral: true,
	}, nil
}

func (c *PromileCommand) handleSetChannel(ctx context.Context, inv *invocation) (*response, error) {
	channelID := ""
	if opt, ok := inv.Options["channel"]; ok {
		channelID, _ = opt.Value.(string)
	}
	if channelID == "" {
		return &response{Content: "Pick a channel.", Ephemeral: true}, nil
	}

	_, err := c.tracker.UpdateSettings(ctx, &tracker.UpdateSettingsInput{
		GuildID: inv.GuildID,
		Set:     map[string]string{models.SettingDedicatedChannelID: channelID},
	})
	if err != nil {
		return nil, err
	}

	return &response{Content: fmt.Sprintf("Dedicated channel set to <#%s>.", channelID)}, nil
}

func (c *PromileCommand) handleInit(ctx context.Context, inv *invocation) (*response, error) {
	settings, err := c.tracker.GetSettings(ctx, &tracker.GetSettingsInput{GuildID: inv.GuildID})
	if err != nil {
		return nil, err
	}

	channelID := settings.Settings[models.SettingDedicatedChannelID]
	if channelID == "" {
		channelID = inv.ChannelID
	}

	if _, err := c.boards.PostStatusMessage(ctx, inv.GuildID, channelID); err != nil {
		return nil, err
	}
	if err := c.boards.Post(ctx, inv.GuildID, channelID); err != nil {
		return nil, err
	}

	return &response{
		Content:   fmt.Sprintf("Status message and leaderboards posted in <#%s>.", channelID),
		Ephemeral: true,
	}, nil
}
