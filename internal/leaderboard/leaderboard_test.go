package leaderboard

import (
	"testing"
	"time"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 4, 19, 22, 0, 0, 0, time.UTC)

func userWithCounts(name string, counts map[models.SubstanceKind]int) *models.UserRecord {
	user := models.NewUserRecord(name)
	user.MonthlyUsage["2025-04"] = counts
	return user
}

func TestRankConsumption_OrdersByEthanol(t *testing.T) {
	// A: 2 beers + 1 whiskey ≈ 71 g, B: 1 wine + 1 liqueur ≈ 42 g
	users := map[string]*models.UserRecord{
		"b": userWithCounts("Bea", map[models.SubstanceKind]int{models.SubstanceWine: 1, models.SubstanceLiqueur: 1}),
		"a": userWithCounts("Ada", map[models.SubstanceKind]int{models.SubstanceBeer: 2, models.SubstanceWhiskey: 1}),
	}

	entries := RankConsumption(users, "2025-04", nil)

	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "b", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.InDelta(t, 2*19.73+31.56, entries[0].EthanolGrams, 1e-9)
}

func TestRankConsumption_ExcludesZeroAndReportsSmokable(t *testing.T) {
	users := map[string]*models.UserRecord{
		"smoker":  userWithCounts("", map[models.SubstanceKind]int{models.SubstanceSmokable: 4}),
		"mixed":   userWithCounts("Mix", map[models.SubstanceKind]int{models.SubstanceSmokable: 2, models.SubstanceBeer: 1}),
		"nothing": models.NewUserRecord("Idle"),
	}

	entries := RankConsumption(users, "2025-04", nil)

	require.Len(t, entries, 1)
	assert.Equal(t, "mixed", entries[0].UserID)
	assert.Equal(t, 2, entries[0].Counts[models.SubstanceSmokable])
	assert.InDelta(t, 19.73, entries[0].EthanolGrams, 1e-9)
}

func TestRankConsumption_TiesBreakByUserID(t *testing.T) {
	users := map[string]*models.UserRecord{
		"300": userWithCounts("", map[models.SubstanceKind]int{models.SubstanceBeer: 1}),
		"100": userWithCounts("", map[models.SubstanceKind]int{models.SubstanceBeer: 1}),
		"200": userWithCounts("", map[models.SubstanceKind]int{models.SubstanceBeer: 1}),
	}

	for i := 0; i < 10; i++ {
		entries := RankConsumption(users, "2025-04", nil)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{"100", "200", "300"}, []string{entries[0].UserID, entries[1].UserID, entries[2].UserID})
	}
}

func TestRankConsumption_OtherMonthIgnored(t *testing.T) {
	users := map[string]*models.UserRecord{
		"a": userWithCounts("Ada", map[models.SubstanceKind]int{models.SubstanceBeer: 3}),
	}

	assert.Empty(t, RankConsumption(users, "2025-05", nil))
}

func TestRankIntoxication(t *testing.T) {
	heavy := models.NewUserRecord("Heavy")
	heavy.Ledger[models.SubstanceWhiskey] = []models.ConsumptionEvent{{Dose: 1, Timestamp: now.Add(-30 * time.Minute)}}

	light := models.NewUserRecord("Light")
	light.Ledger[models.SubstanceBeer] = []models.ConsumptionEvent{{Dose: 1, Timestamp: now.Add(-time.Hour)}}

	sober := models.NewUserRecord("Sober")
	sober.Ledger[models.SubstanceBeer] = []models.ConsumptionEvent{{Dose: 1, Timestamp: now.Add(-5 * time.Hour)}}

	smoker := models.NewUserRecord("Smoker")
	smoker.Ledger[models.SubstanceSmokable] = []models.ConsumptionEvent{{Dose: 1, Timestamp: now}}

	users := map[string]*models.UserRecord{"h": heavy, "l": light, "s": sober, "x": smoker}
	entries := RankIntoxication(users, now, nil)

	require.Len(t, entries, 2)
	assert.Equal(t, "h", entries[0].UserID)
	assert.Equal(t, "l", entries[1].UserID)
	assert.Greater(t, entries[0].Metric, entries[1].Metric)
	assert.Greater(t, entries[1].Metric, 0.0)

	// Ranking does not prune
	assert.Len(t, sober.Ledger[models.SubstanceBeer], 1)
}

func TestResolveName(t *testing.T) {
	resolver := func(userID string) string {
		if userID == "42" {
			return "Resolved"
		}
		return ""
	}

	assert.Equal(t, "Stored", ResolveName("42", models.NewUserRecord("Stored"), resolver))
	assert.Equal(t, "Resolved", ResolveName("42", models.NewUserRecord(""), resolver))
	assert.Equal(t, "7", ResolveName("7", models.NewUserRecord(""), resolver))
	assert.Equal(t, "7", ResolveName("7", models.NewUserRecord(""), nil))
}
