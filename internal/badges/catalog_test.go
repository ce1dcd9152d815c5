package badges

import (
	"testing"

	"cinehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genre(id int) *int { return &id }

func TestDefaultCatalog(t *testing.T) {
	catalog := NewDefaultCatalog()

	// 3 loyalty + 3 comment + 18 genre ladders of 3
	assert.Equal(t, 60, catalog.Len())

	all := catalog.All()
	require.NotEmpty(t, all)
	assert.Equal(t, "loyalty_new", all[0].ID)
	assert.Equal(t, "comment_bronze", all[3].ID)
	assert.Equal(t, "action_bronze", all[6].ID)
	assert.Equal(t, "western_gold", all[len(all)-1].ID)

	def, ok := catalog.FindByID("horror_silver")
	require.True(t, ok)
	assert.Equal(t, models.BadgeCategoryGenre, def.Category)
	assert.Equal(t, int64(20), def.Threshold)
	require.NotNil(t, def.RelatedGenreID)
	assert.Equal(t, GenreHorror, *def.RelatedGenreID)

	for _, d := range all {
		if d.RelatedGenreID != nil {
			assert.NotEqual(t, GenreTVMovie, *d.RelatedGenreID)
		}
	}
}

func TestCatalogFindByIDUnknown(t *testing.T) {
	catalog := NewDefaultCatalog()

	def, ok := catalog.FindByID("does_not_exist")
	assert.False(t, ok)
	assert.Empty(t, def.ID)
}

func TestCatalogAllReturnsCopy(t *testing.T) {
	catalog := NewDefaultCatalog()

	all := catalog.All()
	all[0].Name = "mutated"

	again := catalog.All()
	assert.Equal(t, "New Member", again[0].Name)
}

func TestNewCatalogRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		defs []models.BadgeDefinition
	}{
		{
			name: "duplicate id",
			defs: []models.BadgeDefinition{
				{ID: "comment_bronze", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierBronze, Threshold: 1},
				{ID: "comment_bronze", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierBronze, Threshold: 2},
			},
		},
		{
			name: "silver not above bronze",
			defs: []models.BadgeDefinition{
				{ID: "action_bronze", Category: models.BadgeCategoryGenre, Tier: models.BadgeTierBronze, Threshold: 5, RelatedGenreID: genre(28)},
				{ID: "action_silver", Category: models.BadgeCategoryGenre, Tier: models.BadgeTierSilver, Threshold: 5, RelatedGenreID: genre(28)},
			},
		},
		{
			name: "gold below silver",
			defs: []models.BadgeDefinition{
				{ID: "comment_silver", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierSilver, Threshold: 10},
				{ID: "comment_gold", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierGold, Threshold: 9},
			},
		},
		{
			name: "genre badge without genre",
			defs: []models.BadgeDefinition{
				{ID: "drama_bronze", Category: models.BadgeCategoryGenre, Tier: models.BadgeTierBronze, Threshold: 5},
			},
		},
		{
			name: "empty id",
			defs: []models.BadgeDefinition{{Category: models.BadgeCategoryLoyalty}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.defs)
			assert.Error(t, err)
		})
	}
}

func TestSplitTier(t *testing.T) {
	tests := []struct {
		id     string
		family string
		tier   models.BadgeTier
		ok     bool
	}{
		{"action_gold", "action", models.BadgeTierGold, true},
		{"comment_bronze", "comment", models.BadgeTierBronze, true},
		{"science_fiction_silver", "science_fiction", models.BadgeTierSilver, true},
		{"loyalty_1month", "", "", false},
		{"loyalty_new", "", "", false},
		{"gold", "", "", false},
		{"_gold", "", "", false},
		{"action_", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			family, tier, ok := SplitTier(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.family, family)
			assert.Equal(t, tt.tier, tier)
		})
	}
}
