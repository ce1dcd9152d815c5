package models

// BadgeCategory groups badges by what they measure
type BadgeCategory string

const (
	BadgeCategoryGenre       BadgeCategory = "genre"
	BadgeCategoryInteraction BadgeCategory = "interaction"
	BadgeCategoryLoyalty     BadgeCategory = "loyalty"
)

// DisplayName returns the section header used for grouped badge boards
func (c BadgeCategory) DisplayName() string {
	switch c {
	case BadgeCategoryGenre:
		return "Genre Badges"
	case BadgeCategoryInteraction:
		return "Interaction Badges"
	case BadgeCategoryLoyalty:
		return "Loyalty Badges"
	default:
		return "Other Badges"
	}
}

// BadgeTier is the ordinal rank of a badge within its family
type BadgeTier string

const (
	BadgeTierBronze   BadgeTier = "bronze"
	BadgeTierSilver   BadgeTier = "silver"
	BadgeTierGold     BadgeTier = "gold"
	BadgeTierPlatinum BadgeTier = "platinum"
	BadgeTierSpecial  BadgeTier = "special"
)

// Rank orders tiers; Special sits outside the ladder and ranks zero.
func (t BadgeTier) Rank() int {
	switch t {
	case BadgeTierBronze:
		return 1
	case BadgeTierSilver:
		return 2
	case BadgeTierGold:
		return 3
	case BadgeTierPlatinum:
		return 4
	default:
		return 0
	}
}

// BadgeDefinition is an immutable catalog entry. Definitions are never
// persisted per user; users own badge ids only.
type BadgeDefinition struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Icon           string        `json:"icon"`
	Category       BadgeCategory `json:"category"`
	Tier           BadgeTier     `json:"tier"`
	Threshold      int64         `json:"threshold"`
	RelatedGenreID *int          `json:"related_genre_id,omitempty"`
}
