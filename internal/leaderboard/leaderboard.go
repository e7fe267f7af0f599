// Package leaderboard ranks a guild's users by monthly ethanol or by their
// current intoxication metric. Rankings never mutate the records they read.
package leaderboard

import (
	"sort"
	"time"

	"github.com/KirkDiggler/promile/internal/bac"
	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/tally"
)

// NameResolver looks up a display name for a user ID. It may return "" when
// the name is unknown.
type NameResolver func(userID string) string

// ResolveName picks the stored display name, then the resolver, then the raw ID
func ResolveName(userID string, user *models.UserRecord, resolver NameResolver) string {
	if user != nil && user.DisplayName != "" {
		return user.DisplayName
	}
	if resolver != nil {
		if name := resolver(userID); name != "" {
			return name
		}
	}
	return userID
}

// RankConsumption ranks users by grams of ethanol implied by their counts
// for month. Users without alcoholic activity that month are left out.
func RankConsumption(users map[string]*models.UserRecord, month string, resolver NameResolver) []models.ConsumptionEntry {
	entries := make([]models.ConsumptionEntry, 0, len(users))
	for userID, user := range users {
		counts := tally.MonthlyCounts(user, month)
		grams := tally.EthanolGrams(counts)
		if grams <= 0 {
			continue
		}

		entries = append(entries, models.ConsumptionEntry{
			UserID:       userID,
			Name:         ResolveName(userID, user, resolver),
			Counts:       counts,
			EthanolGrams: grams,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EthanolGrams != entries[j].EthanolGrams {
			return entries[i].EthanolGrams > entries[j].EthanolGrams
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankIntoxication ranks users by their metric at now. Users at zero are
// left out. Events that a prune would drop contribute nothing, so the result
// matches ranking after a prune.
func RankIntoxication(users map[string]*models.UserRecord, now time.Time, resolver NameResolver) []models.IntoxicationEntry {
	entries := make([]models.IntoxicationEntry, 0, len(users))
	for userID, user := range users {
		metric := bac.Metric(user, now)
		if metric <= 0 {
			continue
		}

		entries = append(entries, models.IntoxicationEntry{
			UserID: userID,
			Name:   ResolveName(userID, user, resolver),
			Metric: metric,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Metric != entries[j].Metric {
			return entries[i].Metric > entries[j].Metric
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
