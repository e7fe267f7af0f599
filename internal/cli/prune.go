package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/KirkDiggler/promile/internal/config"
	"github.com/KirkDiggler/promile/internal/logging"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop expired events from every ledger and save the store",
	RunE:  runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trackerService, closeStore, err := openTracker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	output, err := trackerService.Refresh(ctx)
	if err != nil {
		return err
	}
	if !output.Saved {
		if err := trackerService.Save(ctx); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired and %d malformed events across %d guilds\n",
		output.Removed, output.Malformed, len(output.ChangedGuilds))
	return nil
}
