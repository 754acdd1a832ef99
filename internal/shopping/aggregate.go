// Package shopping merges the ingredients of the recipes a user has added
// into a single checklist.
package shopping

import (
	"strings"

	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/quantity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ItemKey returns the merge key for an ingredient name.
func ItemKey(name string) string {
	// Casers carry state and are not safe to share between goroutines.
	return cases.Lower(language.Swedish).String(strings.TrimSpace(name))
}

// Rebuild recomputes the merged line items from scratch. Ingredients merge
// into an existing item with the same key when the units match (both
// unit-less counts as matching) or when the incoming scaled amount is zero.
// Otherwise the item forks under "key_unit". Checked state is carried over
// from previous by display name; IDs are always fresh.
func Rebuild(recipes []models.ShoppingRecipe, previous []models.LineItem, newID func() string) []models.LineItem {
	var order []string
	byKey := make(map[string]*models.LineItem)

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			q := quantity.Parse(ing.Amount)
			scaled := q.Amount * float64(r.Portions)
			name := strings.TrimSpace(ing.Item)
			key := ItemKey(name)
			src := models.Source{RecipeName: r.Name, Portions: r.Portions, OriginalAmount: ing.Amount}

			if existing, ok := byKey[key]; ok && !mergeable(existing, q.Unit, scaled) {
				key = key + "_" + q.Unit
			}
			if existing, ok := byKey[key]; ok {
				existing.Amount += scaled
				existing.Sources = append(existing.Sources, src)
				continue
			}
			byKey[key] = &models.LineItem{
				Key:         key,
				DisplayName: name,
				Amount:      scaled,
				Unit:        q.Unit,
				Sources:     []models.Source{src},
			}
			order = append(order, key)
		}
	}

	checked := make(map[string]bool, len(previous))
	for _, it := range previous {
		if it.Checked {
			checked[it.DisplayName] = true
		}
	}

	items := make([]models.LineItem, 0, len(order))
	for _, key := range order {
		it := *byKey[key]
		it.ID = newID()
		it.Checked = checked[it.DisplayName]
		items = append(items, it)
	}
	return Sorted(items)
}

func mergeable(existing *models.LineItem, unit string, scaled float64) bool {
	return existing.Unit == unit || scaled == 0
}

// Sorted returns items with unchecked entries first, keeping the relative
// order within each group.
func Sorted(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		if !it.Checked {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if it.Checked {
			out = append(out, it)
		}
	}
	return out
}
