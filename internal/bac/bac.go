// Package bac computes the decaying intoxication metric from a user's ledger
// and prunes events that can no longer contribute to it.
//
// Each alcoholic dose starts at
//
//	dose * ethanolGrams / (weightKg * 1000 * DistributionRatio) * 1000
//
// and loses EliminationRate per elapsed hour. A dose never contributes less
// than zero. The non-alcoholic kind never contributes and expires purely by
// time.
package bac

import (
	"time"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/substance"
)

const (
	// DistributionRatio is the assumed volume-of-distribution ratio
	DistributionRatio = 0.68

	// EliminationRate is the metric eliminated per hour
	EliminationRate = 0.15
)

// PruneResult reports what a prune removed
type PruneResult struct {
	// Removed counts events dropped because they expired
	Removed int

	// Malformed counts events dropped because their timestamp was unreadable
	Malformed int
}

// Total is the number of events dropped for any reason
func (r PruneResult) Total() int {
	return r.Removed + r.Malformed
}

func hoursSince(t, now time.Time) float64 {
	return now.Sub(t).Hours()
}

func effectiveWeight(weightKg float64) float64 {
	if weightKg <= 0 {
		return models.DefaultWeightKg
	}
	return weightKg
}

// BaseContribution is the undecayed metric of one dose
func BaseContribution(kind models.SubstanceKind, dose, weightKg float64) float64 {
	info, ok := substance.Lookup(kind)
	if !ok || !info.Alcoholic() {
		return 0
	}
	return dose * info.EthanolGrams / (effectiveWeight(weightKg) * 1000 * DistributionRatio) * 1000
}

// rawContribution is the decayed contribution before clamping at zero
func rawContribution(kind models.SubstanceKind, event models.ConsumptionEvent, weightKg float64, now time.Time) float64 {
	return BaseContribution(kind, event.Dose, weightKg) - EliminationRate*hoursSince(event.Timestamp, now)
}

// Contribution is what a single event adds to the metric at now
func Contribution(kind models.SubstanceKind, event models.ConsumptionEvent, weightKg float64, now time.Time) float64 {
	if event.Malformed() || !substance.IsAlcoholic(kind) {
		return 0
	}
	current := rawContribution(kind, event, weightKg, now)
	if current < 0 {
		return 0
	}
	return current
}

// Metric sums every event's contribution at now. It has no side effects.
func Metric(user *models.UserRecord, now time.Time) float64 {
	if user == nil {
		return 0
	}

	total := 0.0
	for kind, events := range user.Ledger {
		if !substance.IsAlcoholic(kind) {
			continue
		}
		for _, event := range events {
			total += Contribution(kind, event, user.WeightKg, now)
		}
	}
	return total
}

// Expired reports whether the event can no longer be kept in the ledger
func Expired(kind models.SubstanceKind, event models.ConsumptionEvent, weightKg float64, now time.Time) bool {
	info, ok := substance.Lookup(kind)
	if !ok {
		return true
	}
	if !info.Alcoholic() {
		return hoursSince(event.Timestamp, now) >= float64(info.ExpiryHours)
	}
	return rawContribution(kind, event, weightKg, now) <= 0
}

// Prune drops expired and malformed events from the ledger in place. Kinds
// left without events are removed. Monthly usage is never touched.
func Prune(user *models.UserRecord, now time.Time) PruneResult {
	var result PruneResult
	if user == nil {
		return result
	}

	for kind, events := range user.Ledger {
		kept := events[:0]
		for _, event := range events {
			switch {
			case event.Malformed():
				result.Malformed++
			case Expired(kind, event, user.WeightKg, now):
				result.Removed++
			default:
				kept = append(kept, event)
			}
		}

		if len(kept) == 0 {
			delete(user.Ledger, kind)
			continue
		}
		user.Ledger[kind] = kept
	}

	return result
}
