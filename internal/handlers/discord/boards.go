package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/promile/internal/leaderboard"
	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/services/messaging"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// ResolverFactory returns a name resolver for one guild
type ResolverFactory func(guildID string) leaderboard.NameResolver

// NewStateResolver resolves names from the session's member cache
func NewStateResolver(session *discordgo.Session) ResolverFactory {
	return func(guildID string) leaderboard.NameResolver {
		return func(userID string) string {
			member, err := session.State.Member(guildID, userID)
			if err != nil || member == nil {
				return ""
			}
			return memberName(member)
		}
	}
}

// memberName prefers the guild nickname, then the global name, then the username
func memberName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// boardKind selects one of the two live boards
type boardKind struct {
	name         string
	channelKey   string
	messageKey   string
	intoxication bool
}

var liveBoards = []boardKind{
	{
		name:       "consumption",
		channelKey: models.SettingConsumptionBoardChannelID,
		messageKey: models.SettingConsumptionBoardMessageID,
	},
	{
		name:         "intoxication",
		channelKey:   models.SettingIntoxicationChannelID,
		messageKey:   models.SettingIntoxicationMessageID,
		intoxication: true,
	},
}

// BoardsConfig holds configuration for the live boards
type BoardsConfig struct {
	Tracker   tracker.Service
	Messaging messaging.Service
	Poster    Poster

	// Resolvers is optional
	Resolvers ResolverFactory

	Logger zerolog.Logger
}

// Boards renders, posts and updates the live leaderboard messages
type Boards struct {
	tracker   tracker.Service
	messaging messaging.Service
	poster    Poster
	resolvers ResolverFactory
	logger    zerolog.Logger
}

// NewBoards creates the live board manager
func NewBoards(cfg *BoardsConfig) (*Boards, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Tracker == nil {
		return nil, errors.New("tracker service cannot be nil")
	}

	if cfg.Messaging == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	if cfg.Poster == nil {
		return nil, errors.New("poster cannot be nil")
	}

	return &Boards{
		tracker:   cfg.Tracker,
		messaging: cfg.Messaging,
		poster:    cfg.Poster,
		resolvers: cfg.Resolvers,
		logger:    cfg.Logger,
	}, nil
}

func (b *Boards) resolver(guildID string) leaderboard.NameResolver {
	if b.resolvers == nil {
		return nil
	}
	return b.resolvers(guildID)
}

// ConsumptionEmbed renders the monthly board of a guild
func (b *Boards) ConsumptionEmbed(ctx context.Context, guildID, month string) (*discordgo.MessageEmbed, error) {
	output, err := b.tracker.RankConsumption(ctx, &tracker.RankConsumptionInput{
		GuildID:  guildID,
		Month:    month,
		Resolver: b.resolver(guildID),
	})
	if err != nil {
		return nil, err
	}

	empty, err := b.messaging.GetEmptyLeaderboardMessage(ctx, &messaging.GetEmptyLeaderboardMessageInput{})
	if err != nil {
		return nil, err
	}

	return renderConsumptionBoard(output, empty.Message), nil
}

// IntoxicationEmbed renders the live intoxication board of a guild
func (b *Boards) IntoxicationEmbed(ctx context.Context, guildID string) (*discordgo.MessageEmbed, error) {
	output, err := b.tracker.RankIntoxication(ctx, &tracker.RankIntoxicationInput{
		GuildID:  guildID,
		Resolver: b.resolver(guildID),
	})
	if err != nil {
		return nil, err
	}

	empty, err := b.messaging.GetEmptyLeaderboardMessage(ctx, &messaging.GetEmptyLeaderboardMessageInput{Intoxication: true})
	if err != nil {
		return nil, err
	}

	return renderIntoxicationBoard(output, empty.Message), nil
}

func (b *Boards) embedFor(ctx context.Context, guildID string, kind boardKind) (*discordgo.MessageEmbed, error) {
	if kind.intoxication {
		return b.IntoxicationEmbed(ctx, guildID)
	}
	return b.ConsumptionEmbed(ctx, guildID, "")
}

// PostStatusMessage posts the message users react to and stores its ID
func (b *Boards) PostStatusMessage(ctx context.Context, guildID, channelID string) (string, error) {
	messageID, err := b.poster.SendMessage(channelID, statusMessageContent())
	if err != nil {
		return "", fmt.Errorf("failed to post status message: %w", err)
	}

	for _, emoji := range statusReactions() {
		if err := b.poster.AddReaction(channelID, messageID, emoji); err != nil {
			b.logger.Warn().Err(err).Str("guild_id", guildID).Str("emoji", emoji).Msg("failed to seed reaction")
		}
	}

	_, err = b.tracker.UpdateSettings(ctx, &tracker.UpdateSettingsInput{
		GuildID: guildID,
		Set: map[string]string{
			models.SettingStatusMessageID: messageID,
		},
	})
	if err != nil {
		return "", err
	}

	return messageID, nil
}

// Post posts both live boards into channelID and stores their IDs
func (b *Boards) Post(ctx context.Context, guildID, channelID string) error {
	for _, kind := range liveBoards {
		if err := b.post(ctx, guildID, channelID, kind); err != nil {
			return err
		}
	}
	return nil
}

func (b *Boards) post(ctx context.Context, guildID, channelID string, kind boardKind) error {
	embed, err := b.embedFor(ctx, guildID, kind)
	if err != nil {
		return err
	}

	messageID, err := b.poster.SendEmbed(channelID, embed)
	if err != nil {
		return fmt.Errorf("failed to post %s board: %w", kind.name, err)
	}

	_, err = b.tracker.UpdateSettings(ctx, &tracker.UpdateSettingsInput{
		GuildID: guildID,
		Set: map[string]string{
			kind.channelKey: channelID,
			kind.messageKey: messageID,
		},
	})
	return err
}

// Update edits the stored board messages of a guild. A board whose message
// is gone is posted again in the same channel.
func (b *Boards) Update(ctx context.Context, guildID string) error {
	settings, err := b.tracker.GetSettings(ctx, &tracker.GetSettingsInput{GuildID: guildID})
	if err != nil {
		return err
	}

	var errs []error
	for _, kind := range liveBoards {
		channelID := settings.Settings[kind.channelKey]
		messageID := settings.Settings[kind.messageKey]
		if channelID == "" || messageID == "" {
			continue
		}

		embed, err := b.embedFor(ctx, guildID, kind)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		err = b.poster.EditEmbed(channelID, messageID, embed)
		if errors.Is(err, ErrMessageNotFound) {
			b.logger.Warn().Str("guild_id", guildID).Str("board", kind.name).Msg("board message missing, posting it again")
			err = b.post(ctx, guildID, channelID, kind)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s board: %w", kind.name, err))
		}
	}

	return errors.Join(errs...)
}
