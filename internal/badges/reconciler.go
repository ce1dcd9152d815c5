package badges

import "cinehub/internal/models"

// Award appends newly earned badge ids to owned and reconciles tiers.
// owned is not modified; the caller persists the returned set.
func Award(owned []string, earned []models.BadgeDefinition) []string {
	next := make([]string, 0, len(owned)+len(earned))
	next = append(next, owned...)
	for _, def := range earned {
		if !contains(next, def.ID) {
			next = append(next, def.ID)
		}
	}
	return Reconcile(next, earned)
}

// Reconcile removes lower tiers superseded by the newly awarded badges.
// A silver award retracts <family>_bronze; a gold award retracts
// <family>_bronze and <family>_silver. Ids without a tier suffix are
// standalone and never trigger removals. Only exact ids are removed.
func Reconcile(owned []string, awarded []models.BadgeDefinition) []string {
	superseded := make(map[string]struct{})
	for _, def := range awarded {
		family, tier, ok := SplitTier(def.ID)
		if !ok {
			continue
		}
		switch tier {
		case models.BadgeTierSilver:
			superseded[family+"_bronze"] = struct{}{}
		case models.BadgeTierGold:
			superseded[family+"_bronze"] = struct{}{}
			superseded[family+"_silver"] = struct{}{}
		}
	}

	if len(superseded) == 0 {
		return append([]string(nil), owned...)
	}

	out := make([]string, 0, len(owned))
	for _, id := range owned {
		if _, drop := superseded[id]; drop {
			continue
		}
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
