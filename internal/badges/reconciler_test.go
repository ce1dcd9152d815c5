package badges

import (
	"testing"

	"cinehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFind(t *testing.T, catalog *Catalog, id string) models.BadgeDefinition {
	t.Helper()
	def, ok := catalog.FindByID(id)
	require.True(t, ok, id)
	return def
}

func TestReconcileGoldRemovesLowerTiers(t *testing.T) {
	catalog := NewDefaultCatalog()
	gold := mustFind(t, catalog, "action_gold")

	owned := []string{"loyalty_new", "action_bronze", "action_silver", "horror_bronze"}
	result := Award(owned, []models.BadgeDefinition{gold})

	assert.Equal(t, []string{"loyalty_new", "horror_bronze", "action_gold"}, result)
	assert.Equal(t, []string{"loyalty_new", "action_bronze", "action_silver", "horror_bronze"}, owned)
}

func TestReconcileSilverRemovesBronzeOnly(t *testing.T) {
	catalog := NewDefaultCatalog()
	silver := mustFind(t, catalog, "comment_silver")

	result := Reconcile([]string{"comment_bronze", "comment_silver", "comment_gold_fan"}, []models.BadgeDefinition{silver})

	assert.Equal(t, []string{"comment_silver", "comment_gold_fan"}, result)
}

func TestReconcileBronzeAndStandaloneAreNoops(t *testing.T) {
	catalog := NewDefaultCatalog()
	awarded := []models.BadgeDefinition{
		mustFind(t, catalog, "drama_bronze"),
		mustFind(t, catalog, "loyalty_1month"),
	}
	owned := []string{"loyalty_new", "drama_bronze", "loyalty_1month"}

	assert.Equal(t, owned, Reconcile(owned, awarded))
}

func TestAwardWholeLadderAtOnce(t *testing.T) {
	catalog := NewDefaultCatalog()
	awarded := []models.BadgeDefinition{
		mustFind(t, catalog, "comment_bronze"),
		mustFind(t, catalog, "comment_silver"),
		mustFind(t, catalog, "comment_gold"),
	}

	assert.Equal(t, []string{"comment_gold"}, Award(nil, awarded))
}

func TestAwardDoesNotDuplicate(t *testing.T) {
	catalog := NewDefaultCatalog()

	result := Award([]string{"war_bronze"}, []models.BadgeDefinition{mustFind(t, catalog, "war_bronze")})
	assert.Equal(t, []string{"war_bronze"}, result)
}

func TestGroupTaggedRows(t *testing.T) {
	catalog := smallCatalog(t)

	rows := Group(catalog.All(), []string{"comment_bronze"})

	require.Len(t, rows, 4)
	assert.Equal(t, RowHeader, rows[0].Kind)
	assert.Equal(t, "Interaction Badges", rows[0].Header)
	assert.Equal(t, RowItem, rows[1].Kind)
	assert.Equal(t, "comment_bronze", rows[1].Badge.ID)
	assert.True(t, rows[1].Owned)
	assert.Equal(t, "Genre Badges", rows[2].Header)
	assert.Equal(t, "action_bronze", rows[3].Badge.ID)
	assert.False(t, rows[3].Owned)
}

func TestOwnedDefinitionsSkipsUnknown(t *testing.T) {
	catalog := NewDefaultCatalog()

	defs := catalog.OwnedDefinitions([]string{"retired_badge", "comment_bronze"})

	require.Len(t, defs, 1)
	assert.Equal(t, "Voice", defs[0].Name)
	assert.Equal(t, []string{"Voice"}, catalog.Names([]string{"comment_bronze", "retired_badge"}))
}
