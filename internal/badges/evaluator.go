package badges

import (
	"strings"
	"time"

	"cinehub/internal/models"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Evaluator decides which catalog badges a user newly qualifies for.
// It performs no I/O and holds no mutable state.
type Evaluator struct {
	catalog *Catalog
	now     Clock
}

// NewEvaluator creates an evaluator over catalog. A nil clock uses time.Now.
func NewEvaluator(catalog *Catalog, now Clock) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{catalog: catalog, now: now}
}

// Catalog returns the catalog the evaluator reads.
func (e *Evaluator) Catalog() *Catalog {
	return e.catalog
}

// Evaluate returns the badges whose threshold is met and which are not yet
// owned, in catalog order. Owned ids are never returned again.
func (e *Evaluator) Evaluate(counters models.UserStats, owned []string, registeredAt time.Time) []models.BadgeDefinition {
	return e.EvaluateAt(counters, owned, registeredAt, e.now())
}

// EvaluateAt is Evaluate with an explicit reference time.
func (e *Evaluator) EvaluateAt(counters models.UserStats, owned []string, registeredAt, now time.Time) []models.BadgeDefinition {
	ownedSet := make(map[string]struct{}, len(owned))
	topRank := make(map[string]int)
	for _, id := range owned {
		ownedSet[id] = struct{}{}
		if family, tier, ok := SplitTier(id); ok && tier.Rank() > topRank[family] {
			topRank[family] = tier.Rank()
		}
	}

	memberDays := MembershipDays(registeredAt, now)

	var earned []models.BadgeDefinition
	for _, def := range e.catalog.defs {
		if _, ok := ownedSet[def.ID]; ok {
			continue
		}
		// a retracted lower tier stays retracted
		if family, tier, ok := SplitTier(def.ID); ok && tier.Rank() < topRank[family] {
			continue
		}
		if applicableCount(def, counters, memberDays) >= def.Threshold {
			earned = append(earned, def)
		}
	}
	return earned
}

func applicableCount(def models.BadgeDefinition, counters models.UserStats, memberDays int64) int64 {
	switch def.Category {
	case models.BadgeCategoryInteraction:
		if strings.Contains(def.ID, "comment") {
			return counters.Get(models.CounterTotalComments)
		}
		return 0
	case models.BadgeCategoryGenre:
		if def.RelatedGenreID == nil {
			return 0
		}
		return counters.Get(models.GenreCounterKey(*def.RelatedGenreID))
	case models.BadgeCategoryLoyalty:
		return memberDays
	default:
		return 0
	}
}

// MembershipDays is the number of whole days between registeredAt and now.
// A registration in the future counts as zero days.
func MembershipDays(registeredAt, now time.Time) int64 {
	if registeredAt.IsZero() || now.Before(registeredAt) {
		return 0
	}
	return int64(now.Sub(registeredAt) / (24 * time.Hour))
}
