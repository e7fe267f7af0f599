package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/stretchr/testify/assert"
)

func TestFormatCounts(t *testing.T) {
	assert.Equal(t, "nothing yet", formatCounts(nil))
	assert.Equal(t, "🍺 3 · 🍃 1", formatCounts(map[models.SubstanceKind]int{
		models.SubstanceSmokable: 1,
		models.SubstanceBeer:     3,
	}))
}

func TestRenderConsumptionBoard(t *testing.T) {
	empty := renderConsumptionBoard(&tracker.RankConsumptionOutput{Month: "2025-04"}, "nobody")
	assert.Equal(t, "nobody", empty.Description)
	assert.Empty(t, empty.Fields)

	board := renderConsumptionBoard(&tracker.RankConsumptionOutput{
		Month: "2025-04",
		Entries: []models.ConsumptionEntry{
			{Rank: 1, UserID: "a", Name: "Ala", EthanolGrams: 47.34, Counts: map[models.SubstanceKind]int{models.SubstanceWhiskey: 1, models.SubstanceVodka: 1}},
			{Rank: 2, UserID: "b", Name: "Bob", EthanolGrams: 31.56, Counts: map[models.SubstanceKind]int{models.SubstanceWhiskey: 1}},
		},
	}, "nobody")

	assert.Equal(t, "Monthly leaderboard – 2025-04", board.Title)
	assert.Len(t, board.Fields, 2)
	assert.Equal(t, "#1 Ala · 47.3 g", board.Fields[0].Name)
	assert.Equal(t, "🍸 Vodka: 1 (15.8 g)\n🥃 Whiskey: 1 (31.6 g)", board.Fields[0].Value)
	assert.Equal(t, "Total ethanol this month: 78.9 g", board.Footer.Text)
}

func TestRenderConsumptionBoardCapsRows(t *testing.T) {
	output := &tracker.RankConsumptionOutput{Month: "2025-04"}
	for i := 0; i < maxBoardRows+5; i++ {
		output.Entries = append(output.Entries, models.ConsumptionEntry{
			Rank:         i + 1,
			Name:         "x",
			EthanolGrams: 1,
			Counts:       map[models.SubstanceKind]int{models.SubstanceBeer: 1},
		})
	}

	board := renderConsumptionBoard(output, "")
	assert.Len(t, board.Fields, maxBoardRows)
	assert.Equal(t, "Total ethanol this month: 25.0 g", board.Footer.Text)
}

func TestRenderIntoxicationBoard(t *testing.T) {
	at := time.Date(2025, 4, 19, 20, 0, 0, 0, time.UTC)
	board := renderIntoxicationBoard(&tracker.RankIntoxicationOutput{
		At: at,
		Entries: []models.IntoxicationEntry{
			{Rank: 1, UserID: "a", Name: "Ala", Metric: 1.234},
			{Rank: 2, UserID: "b", Name: "Bob", Metric: 0.5},
		},
	}, "sober")

	assert.Equal(t, "2025-04-19T20:00:00Z", board.Timestamp)
	assert.Equal(t, "**#1** Ala: 1.23 ‰\n**#2** Bob: 0.50 ‰", board.Description)
}

func TestRenderStatusModes(t *testing.T) {
	status := &tracker.GetStatusOutput{
		UserID:      "a",
		Metric:      0.8,
		Month:       "2025-04",
		Counts:      map[models.SubstanceKind]int{models.SubstanceBeer: 2},
		WeightKg:    70,
		DisplayMode: models.DisplayModeMetric,
	}

	metric := renderStatus(status, "Tipsy")
	assert.Equal(t, "Status: a", metric.Title)
	assert.Len(t, metric.Fields, 2)
	assert.Equal(t, "0.80 ‰", metric.Fields[0].Value)

	status.DisplayMode = models.DisplayModeIcons
	icons := renderStatus(status, "Tipsy")
	assert.Len(t, icons.Fields, 1)
	assert.Equal(t, "🍺 2", icons.Fields[0].Value)
}

func TestStatusMessageContent(t *testing.T) {
	content := statusMessageContent()
	for _, emoji := range statusReactions() {
		assert.True(t, strings.Contains(content, emoji), emoji)
	}
	assert.Equal(t, ResetEmoji, statusReactions()[len(statusReactions())-1])
}
