package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KirkDiggler/promile/internal/config"
	"github.com/KirkDiggler/promile/internal/logging"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/KirkDiggler/promile/internal/substance"
	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard <guildID>",
	Short: "Print a guild's leaderboard from the configured store",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().Bool("intoxication", false, "print the current intoxication ranking instead of the monthly one")
	leaderboardCmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	intoxication, _ := cmd.Flags().GetBool("intoxication")
	month, _ := cmd.Flags().GetString("month")

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

	if intoxication {
		return printIntoxication(ctx, cmd.OutOrStdout(), trackerService, args[0])
	}
	return printConsumption(ctx, cmd.OutOrStdout(), trackerService, args[0], month)
}

func printConsumption(ctx context.Context, w io.Writer, svc tracker.Service, guildID, month string) error {
	output, err := svc.RankConsumption(ctx, &tracker.RankConsumptionInput{GuildID: guildID, Month: month})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Monthly leaderboard %s\n", output.Month)
	if len(output.Entries) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return nil
	}

	for _, entry := range output.Entries {
		var parts []string
		for _, info := range substance.All() {
			if n := entry.Counts[info.Kind]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", info.Kind, n))
			}
		}
		fmt.Fprintf(w, "%3d. %-24s %7.1f g  %s\n", entry.Rank, entry.Name, entry.EthanolGrams, strings.Join(parts, " "))
	}
	return nil
}

func printIntoxication(ctx context.Context, w io.Writer, svc tracker.Service, guildID string) error {
	output, err := svc.RankIntoxication(ctx, &tracker.RankIntoxicationInput{GuildID: guildID})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Intoxication at %s\n", output.At.Format(time.RFC3339))
	if len(output.Entries) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return nil
	}

	for _, entry := range output.Entries {
		fmt.Fprintf(w, "%3d. %-24s %.2f ‰\n", entry.Rank, entry.Name, entry.Metric)
	}
	return nil
}
