// Package badges holds the badge catalog and the pure award rules that run
// over a user's counters: evaluation, tier reconciliation and grouped display.
package badges

import (
	"fmt"
	"strings"

	"cinehub/internal/models"
)

// Catalog is an immutable, ordered table of badge definitions.
type Catalog struct {
	defs  []models.BadgeDefinition
	index map[string]int
}

// NewCatalog validates defs and builds a catalog preserving declaration order.
// Ids must be unique and tiered thresholds must strictly increase within a family.
func NewCatalog(defs []models.BadgeDefinition) (*Catalog, error) {
	c := &Catalog{
		defs:  make([]models.BadgeDefinition, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	copy(c.defs, defs)

	type rung struct {
		tier      models.BadgeTier
		threshold int64
	}
	families := make(map[string][]rung)

	for i, def := range c.defs {
		if def.ID == "" {
			return nil, fmt.Errorf("badge at position %d has an empty id", i)
		}
		if def.Threshold < 0 {
			return nil, fmt.Errorf("badge %q has a negative threshold", def.ID)
		}
		if def.Category == models.BadgeCategoryGenre && def.RelatedGenreID == nil {
			return nil, fmt.Errorf("genre badge %q has no related genre", def.ID)
		}
		if _, dup := c.index[def.ID]; dup {
			return nil, fmt.Errorf("duplicate badge id %q", def.ID)
		}
		c.index[def.ID] = i

		if family, tier, ok := SplitTier(def.ID); ok {
			key := string(def.Category) + "/" + family
			families[key] = append(families[key], rung{tier: tier, threshold: def.Threshold})
		}
	}

	for family, rungs := range families {
		for i := range rungs {
			for j := range rungs {
				if rungs[i].tier.Rank() < rungs[j].tier.Rank() && rungs[i].threshold >= rungs[j].threshold {
					return nil, fmt.Errorf("family %s: %s threshold %d must be below %s threshold %d",
						family, rungs[i].tier, rungs[i].threshold, rungs[j].tier, rungs[j].threshold)
				}
			}
		}
	}

	return c, nil
}

// MustNewCatalog is NewCatalog for tables known to be valid at build time.
func MustNewCatalog(defs []models.BadgeDefinition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the definitions in declaration order. The slice is a copy.
func (c *Catalog) All() []models.BadgeDefinition {
	out := make([]models.BadgeDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// FindByID looks up a definition; unknown ids report false.
func (c *Catalog) FindByID(id string) (models.BadgeDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.BadgeDefinition{}, false
	}
	return c.defs[i], true
}

// Names resolves ids to display names, skipping unknown ids.
func (c *Catalog) Names(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if def, ok := c.FindByID(id); ok {
			names = append(names, def.Name)
		}
	}
	return names
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// tierSuffixes are the id suffixes that place a badge on a family ladder
var tierSuffixes = map[string]models.BadgeTier{
	"bronze":   models.BadgeTierBronze,
	"silver":   models.BadgeTierSilver,
	"gold":     models.BadgeTierGold,
	"platinum": models.BadgeTierPlatinum,
}

// SplitTier splits "action_gold" into ("action", gold). Ids without a
// recognised tier suffix are standalone and report false.
func SplitTier(id string) (family string, tier models.BadgeTier, ok bool) {
	i := strings.LastIndex(id, "_")
	if i <= 0 || i == len(id)-1 {
		return "", "", false
	}
	tier, ok = tierSuffixes[id[i+1:]]
	if !ok {
		return "", "", false
	}
	return id[:i], tier, true
}
