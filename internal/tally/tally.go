// Package tally maintains the monthly per-kind usage counts of a user. The
// counts are cumulative and independent of ledger pruning.
package tally

import (
	"sort"
	"time"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/substance"
)

// MonthLayout is the format of month keys
const MonthLayout = "2006-01"

// MonthKey returns the UTC month an instant falls into
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// RecordEvent appends the event to the user's ledger and counts one
// occurrence in the event's own month, whatever the dose.
func RecordEvent(user *models.UserRecord, kind models.SubstanceKind, event models.ConsumptionEvent) {
	if user.Ledger == nil {
		user.Ledger = make(map[models.SubstanceKind][]models.ConsumptionEvent)
	}
	if user.MonthlyUsage == nil {
		user.MonthlyUsage = make(map[string]map[models.SubstanceKind]int)
	}

	events := append(user.Ledger[kind], event)
	// Back-dated events are inserted in place so the ledger stays chronological
	if n := len(events); n > 1 && events[n-1].Timestamp.Before(events[n-2].Timestamp) {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp.Before(events[j].Timestamp)
		})
	}
	user.Ledger[kind] = events

	month := MonthKey(event.Timestamp)
	counts, ok := user.MonthlyUsage[month]
	if !ok {
		counts = make(map[models.SubstanceKind]int)
		user.MonthlyUsage[month] = counts
	}
	counts[kind]++
}

// MonthlyCounts returns a copy of the counts for a month. Kinds with a zero
// count are left out; months without activity yield an empty map.
func MonthlyCounts(user *models.UserRecord, month string) map[models.SubstanceKind]int {
	out := make(map[models.SubstanceKind]int)
	if user == nil {
		return out
	}
	for kind, count := range user.MonthlyUsage[month] {
		if count > 0 {
			out[kind] = count
		}
	}
	return out
}

// EthanolGrams is the ethanol implied by a set of counts. Non-alcoholic
// kinds add nothing.
func EthanolGrams(counts map[models.SubstanceKind]int) float64 {
	total := 0.0
	for _, info := range substance.All() {
		total += float64(counts[info.Kind]) * info.EthanolGrams
	}
	return total
}
