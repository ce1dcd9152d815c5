package badges

import "cinehub/internal/models"

// RowKind tags a Row as a section header or a badge entry.
type RowKind string

const (
	RowHeader RowKind = "header"
	RowItem   RowKind = "item"
)

// Row is one entry of a grouped badge board. Exactly one of Header or
// Badge is meaningful, selected by Kind.
type Row struct {
	Kind   RowKind                 `json:"kind"`
	Header string                  `json:"header,omitempty"`
	Badge  *models.BadgeDefinition `json:"badge,omitempty"`
	Owned  bool                    `json:"owned,omitempty"`
}

// HeaderRow builds a section header row.
func HeaderRow(name string) Row {
	return Row{Kind: RowHeader, Header: name}
}

// ItemRow builds a badge row.
func ItemRow(def models.BadgeDefinition, owned bool) Row {
	return Row{Kind: RowItem, Badge: &def, Owned: owned}
}

var categoryOrder = []models.BadgeCategory{
	models.BadgeCategoryLoyalty,
	models.BadgeCategoryInteraction,
	models.BadgeCategoryGenre,
}

// Group lays defs out under one header per non-empty category, in the fixed
// category order and catalog order within each category.
func Group(defs []models.BadgeDefinition, owned []string) []Row {
	ownedSet := make(map[string]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	byCategory := make(map[models.BadgeCategory][]models.BadgeDefinition)
	for _, def := range defs {
		byCategory[def.Category] = append(byCategory[def.Category], def)
	}

	rows := make([]Row, 0, len(defs)+len(categoryOrder))
	for _, category := range categoryOrder {
		group := byCategory[category]
		if len(group) == 0 {
			continue
		}
		rows = append(rows, HeaderRow(category.DisplayName()))
		for _, def := range group {
			_, isOwned := ownedSet[def.ID]
			rows = append(rows, ItemRow(def, isOwned))
		}
	}
	return rows
}

// OwnedDefinitions resolves owned ids against the catalog in owned order.
// Unknown ids are skipped.
func (c *Catalog) OwnedDefinitions(owned []string) []models.BadgeDefinition {
	defs := make([]models.BadgeDefinition, 0, len(owned))
	for _, id := range owned {
		if def, ok := c.FindByID(id); ok {
			defs = append(defs, def)
		}
	}
	return defs
}
