package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/promile/internal/services/messaging"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	reactions  *Reactions
	refresher  *Refresher
	boards     *Boards
	config     *Config
	logger     zerolog.Logger
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	Tracker   tracker.Service
	Messaging messaging.Service

	// Refresher intervals; zero uses the defaults
	RefreshInterval time.Duration
	SaveInterval    time.Duration

	Logger zerolog.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.Tracker == nil {
		return nil, errors.New("tracker service cannot be nil")
	}

	if cfg.Messaging == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessageReactions

	poster := NewSessionPoster(session)
	boards, err := NewBoards(&BoardsConfig{
		Tracker:   cfg.Tracker,
		Messaging: cfg.Messaging,
		Poster:    poster,
		Resolvers: NewStateResolver(session),
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	refresher, err := NewRefresher(&RefresherConfig{
		Tracker:         cfg.Tracker,
		Boards:          boards,
		RefreshInterval: cfg.RefreshInterval,
		SaveInterval:    cfg.SaveInterval,
		Logger:          cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		reactions:  NewReactions(cfg.Tracker, poster, cfg.Logger),
		refresher:  refresher,
		boards:     boards,
		config:     cfg,
		logger:     cfg.Logger,
	}

	session.AddHandler(bot.handleInteraction)
	session.AddHandler(bot.handleReactionAdd)

	return bot, nil
}

// Start initializes the Discord connection, registers commands and starts
// the background refresher
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	promileCmd := NewPromileCommand(b.config.Tracker, b.config.Messaging, b.boards, b.logger)
	if err := b.RegisterCommand(promileCmd); err != nil {
		return fmt.Errorf("failed to register promile command: %w", err)
	}

	b.refresher.Start()

	b.logger.Info().Msg("bot is now running")
	return nil
}

// Stop halts the refresher, removes the commands and closes the connection
func (b *Bot) Stop() error {
	b.refresher.Stop()

	appID := b.appID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.Warn().Err(err).Str("command", cmdName).Str("command_id", cmdID).Msg("failed to delete command")
		} else {
			b.logger.Debug().Str("command", cmdName).Str("command_id", cmdID).Msg("deleted command")
		}
	}

	return b.session.Close()
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// RegisterCommand registers a command with Discord. Without a guild ID the
// command is registered globally.
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	guildID := b.config.GuildID
	scope := "global"
	if guildID != "" {
		scope = guildID
	}

	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), guildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.Info().Str("command", cmd.GetName()).Str("command_id", createdCmd.ID).Str("scope", scope).Msg("registered command")

	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	if h, ok := b.commands[name]; ok {
		if err := h.Handle(s, i); err != nil {
			b.logger.Error().Err(err).Str("command", name).Msg("error handling command")
		}
	}
}

// handleReactionAdd forwards user reactions to the reaction handler
func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	name := ""
	if r.Member != nil {
		if r.Member.User != nil && r.Member.User.Bot {
			return
		}
		name = memberName(r.Member)
	}

	err := b.reactions.Handle(context.Background(), &reactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		UserName:  name,
		Emoji:     r.Emoji.Name,
	})
	if err != nil {
		b.logger.Error().Err(err).Str("guild_id", r.GuildID).Str("user_id", r.UserID).Msg("error handling reaction")
	}
}
