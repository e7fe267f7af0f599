package discord

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/KirkDiggler/promile/internal/substance"
	"github.com/bwmarrin/discordgo"
)

// Embed colors
const (
	colorConsumption  = 0x00ff00
	colorIntoxication = 0xff8c00
	colorStatus       = 0x3498db
	colorError        = 0xff0000
)

// ResetEmoji clears the reacting user's record
const ResetEmoji = "❌"

// maxBoardRows keeps embeds under Discord's 25 field limit
const maxBoardRows = 20

func formatMetric(metric float64) string {
	return fmt.Sprintf("%.2f ‰", metric)
}

// formatCounts renders counts in catalog order, e.g. "🍺 3 · 🍃 1"
func formatCounts(counts map[models.SubstanceKind]int) string {
	parts := make([]string, 0, len(counts))
	for _, info := range substance.All() {
		if n := counts[info.Kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", info.Emoji, n))
		}
	}
	if len(parts) == 0 {
		return "nothing yet"
	}
	return strings.Join(parts, " · ")
}

// renderConsumptionBoard renders the monthly leaderboard
func renderConsumptionBoard(output *tracker.RankConsumptionOutput, emptyMessage string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Monthly leaderboard – %s", output.Month),
		Color: colorConsumption,
	}

	if len(output.Entries) == 0 {
		embed.Description = emptyMessage
		return embed
	}

	total := 0.0
	for i, entry := range output.Entries {
		total += entry.EthanolGrams
		if i >= maxBoardRows {
			continue
		}

		var lines []string
		for _, info := range substance.All() {
			n := entry.Counts[info.Kind]
			if n == 0 {
				continue
			}
			if info.Alcoholic() {
				lines = append(lines, fmt.Sprintf("%s %s: %d (%.1f g)", info.Emoji, info.DisplayName(), n, float64(n)*info.EthanolGrams))
			} else {
				lines = append(lines, fmt.Sprintf("%s %s: %d", info.Emoji, info.DisplayName(), n))
			}
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d %s · %.1f g", entry.Rank, entry.Name, entry.EthanolGrams),
			Value: strings.Join(lines, "\n"),
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Total ethanol this month: %.1f g", total),
	}
	return embed
}

// renderIntoxicationBoard renders the live intoxication leaderboard
func renderIntoxicationBoard(output *tracker.RankIntoxicationOutput, emptyMessage string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "Intoxication leaderboard",
		Color:     colorIntoxication,
		Timestamp: output.At.Format("2006-01-02T15:04:05Z07:00"),
	}

	if len(output.Entries) == 0 {
		embed.Description = emptyMessage
		return embed
	}

	lines := make([]string, 0, len(output.Entries))
	for i, entry := range output.Entries {
		if i >= maxBoardRows {
			break
		}
		lines = append(lines, fmt.Sprintf("**#%d** %s: %s", entry.Rank, entry.Name, formatMetric(entry.Metric)))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

// renderStatus renders a user's status card in their display mode
func renderStatus(status *tracker.GetStatusOutput, verdict string) *discordgo.MessageEmbed {
	name := status.DisplayName
	if name == "" {
		name = status.UserID
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Status: %s", name),
		Description: verdict,
		Color:       colorStatus,
	}

	if status.DisplayMode == models.DisplayModeIcons {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  status.Month,
			Value: formatCounts(status.Counts),
		})
	} else {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Current", Value: formatMetric(status.Metric), Inline: true},
			&discordgo.MessageEmbedField{Name: status.Month, Value: formatCounts(status.Counts), Inline: true},
		)
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Weight %.1f kg · %d active drinks", status.WeightKg, status.ActiveEvents),
	}
	return embed
}

// statusMessageContent is the text of the message users react to
func statusMessageContent() string {
	var b strings.Builder
	b.WriteString("**Drink tracker**\nReact to record a drink:\n")
	for _, info := range substance.All() {
		if info.Alcoholic() {
			fmt.Fprintf(&b, "%s %s (%dh, ~%.1f g ethanol)\n", info.Emoji, info.DisplayName(), info.ExpiryHours, info.EthanolGrams)
		} else {
			fmt.Fprintf(&b, "%s %s (%dh)\n", info.Emoji, info.DisplayName(), info.ExpiryHours)
		}
	}
	fmt.Fprintf(&b, "%s clear your record", ResetEmoji)
	return b.String()
}

// statusReactions lists the reactions seeded on the status message
func statusReactions() []string {
	reactions := make([]string, 0, len(substance.All())+1)
	for _, info := range substance.All() {
		reactions = append(reactions, info.Emoji)
	}
	return append(reactions, ResetEmoji)
}
