package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/promile/internal/config"
	"github.com/KirkDiggler/promile/internal/handlers/discord"
	"github.com/KirkDiggler/promile/internal/logging"
	"github.com/KirkDiggler/promile/internal/server"
	"github.com/KirkDiggler/promile/internal/services/messaging"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Discord bot, the refresher and the optional HTTP API",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	trackerService, closeStore, err := openTracker(ctx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer closeStore()

	messagingService, err := messaging.NewService(&messaging.ServiceConfig{})
	if err != nil {
		return fmt.Errorf("failed to create messaging service: %w", err)
	}

	bot, err := discord.New(&discord.Config{
		Token:           cfg.DiscordToken,
		ApplicationID:   cfg.ApplicationID,
		GuildID:         cfg.GuildID,
		Tracker:         trackerService,
		Messaging:       messagingService,
		RefreshInterval: cfg.RefreshInterval,
		SaveInterval:    cfg.SaveInterval,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	if err := bot.Start(); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		srv, err := server.New(&server.Config{
			Tracker: trackerService,
			Version: VersionString(),
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.HTTPAddr).Msg("http api listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("http api stopped")
			}
		}()
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("http api shutdown")
		}
	}

	if err := bot.Stop(); err != nil {
		logger.Warn().Err(err).Msg("error stopping bot")
	}

	if err := trackerService.Save(shutdownCtx); err != nil {
		return fmt.Errorf("failed to save store on shutdown: %w", err)
	}
	return nil
}
