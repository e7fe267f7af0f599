package discord

import (
	"context"
	"errors"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/rs/zerolog"
)

// reactionEvent is a reaction added by a user
type reactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	UserName  string
	Emoji     string
}

// Reactions turns reactions on the status message into records
type Reactions struct {
	tracker tracker.Service
	poster  Poster
	logger  zerolog.Logger
}

// NewReactions creates the reaction handler
func NewReactions(trackerService tracker.Service, poster Poster, logger zerolog.Logger) *Reactions {
	return &Reactions{
		tracker: trackerService,
		poster:  poster,
		logger:  logger,
	}
}

// Handle records a dose for a substance emoji or clears the user's record
// for the reset emoji. Reactions on other messages are ignored. The
// reaction is removed afterwards so the same emoji can be used again.
func (r *Reactions) Handle(ctx context.Context, ev *reactionEvent) error {
	if ev.GuildID == "" || ev.UserID == "" {
		return nil
	}

	settings, err := r.tracker.GetSettings(ctx, &tracker.GetSettingsInput{GuildID: ev.GuildID})
	if err != nil {
		return err
	}
	if settings.Settings[models.SettingStatusMessageID] != ev.MessageID {
		return nil
	}

	defer func() {
		if err := r.poster.RemoveReaction(ev.ChannelID, ev.MessageID, ev.Emoji, ev.UserID); err != nil {
			r.logger.Warn().Err(err).Str("guild_id", ev.GuildID).Str("user_id", ev.UserID).Msg("failed to remove reaction")
		}
	}()

	if ev.Emoji == ResetEmoji {
		reset, err := r.tracker.ResetUser(ctx, &tracker.ResetUserInput{
			GuildID: ev.GuildID,
			ActorID: ev.UserID,
		})
		if err != nil {
			return err
		}
		r.logger.Info().Str("guild_id", ev.GuildID).Str("user_id", ev.UserID).Bool("removed", reset.Removed).Msg("record cleared by reaction")
		return nil
	}

	recorded, err := r.tracker.RecordConsumption(ctx, &tracker.RecordConsumptionInput{
		GuildID:     ev.GuildID,
		UserID:      ev.UserID,
		DisplayName: ev.UserName,
		Substance:   ev.Emoji,
		Dose:        1,
		Count:       1,
	})
	if errors.Is(err, tracker.ErrUnknownSubstance) {
		return nil
	}
	if err != nil {
		return err
	}

	r.logger.Debug().
		Str("guild_id", ev.GuildID).
		Str("user_id", ev.UserID).
		Str("kind", string(recorded.Kind)).
		Float64("metric", recorded.Metric).
		Msg("dose recorded by reaction")
	return nil
}
