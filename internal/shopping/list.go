package shopping

import (
	"errors"
	"fmt"
	"slices"

	"github.com/claude/dianafit/internal/models"
	"github.com/google/uuid"
)

var (
	ErrDuplicateRecipe = errors.New("recipe is already on the shopping list")
	ErrInvalidPortions = fmt.Errorf("portions must be between %d and %d", models.MinPortions, models.MaxPortions)
	ErrUnknownEntry    = errors.New("unknown shopping list entry")
	ErrUnknownItem     = errors.New("unknown shopping list item")
)

// Resolution is the user's answer when a recipe already on the list is
// added again.
type Resolution int

const (
	// Cancel leaves the list unchanged.
	Cancel Resolution = iota
	// ReplacePortions sets the new portion count on the existing entry.
	ReplacePortions
	// AddSeparate adds an independent entry; the amounts become additive.
	AddSeparate
)

// ParseResolution maps "replace", "add" and "cancel" to a Resolution.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "replace":
		return ReplacePortions, nil
	case "add":
		return AddSeparate, nil
	case "cancel", "":
		return Cancel, nil
	}
	return Cancel, fmt.Errorf("unknown duplicate resolution %q (want replace, add or cancel)", s)
}

// List holds the recipes on the shopping list and their merged items. It is
// not safe for concurrent use.
type List struct {
	recipes []models.ShoppingRecipe
	items   []models.LineItem
	newID   func() string
}

// NewList creates an empty list. IDs come from newID, or random UUIDs when
// newID is nil.
func NewList(newID func() string) *List {
	if newID == nil {
		newID = uuid.NewString
	}
	return &List{newID: newID}
}

// Restore replaces the list state with previously persisted values.
func (l *List) Restore(recipes []models.ShoppingRecipe, items []models.LineItem) {
	l.recipes = slices.Clone(recipes)
	l.items = Sorted(items)
}

// Has reports whether any entry refers to recipeID.
func (l *List) Has(recipeID string) bool {
	return slices.ContainsFunc(l.recipes, func(r models.ShoppingRecipe) bool {
		return r.RecipeID == recipeID
	})
}

// AddRecipe adds recipe with the given portions. If the recipe is already on
// the list it returns ErrDuplicateRecipe and the caller must decide via
// ResolveDuplicate.
func (l *List) AddRecipe(recipe models.Recipe, portions int) (models.ShoppingRecipe, error) {
	if err := checkPortions(portions); err != nil {
		return models.ShoppingRecipe{}, err
	}
	if l.Has(recipe.ID) {
		return models.ShoppingRecipe{}, ErrDuplicateRecipe
	}
	entry := l.newEntry(recipe, portions)
	l.recipes = append(l.recipes, entry)
	l.rebuild()
	return entry, nil
}

// ResolveDuplicate applies the user's decision for a recipe that is already
// on the list.
func (l *List) ResolveDuplicate(recipe models.Recipe, portions int, res Resolution) error {
	if res == Cancel {
		return nil
	}
	if err := checkPortions(portions); err != nil {
		return err
	}
	switch res {
	case ReplacePortions:
		found := false
		for i := range l.recipes {
			if l.recipes[i].RecipeID == recipe.ID {
				l.recipes[i].Portions = portions
				found = true
			}
		}
		if !found {
			l.recipes = append(l.recipes, l.newEntry(recipe, portions))
		}
	case AddSeparate:
		l.recipes = append(l.recipes, l.newEntry(recipe, portions))
	default:
		return fmt.Errorf("unknown resolution %d", res)
	}
	l.rebuild()
	return nil
}

// RemoveRecipe removes the entry with entryID and rebuilds the items.
func (l *List) RemoveRecipe(entryID string) error {
	i := slices.IndexFunc(l.recipes, func(r models.ShoppingRecipe) bool { return r.EntryID == entryID })
	if i < 0 {
		return ErrUnknownEntry
	}
	l.recipes = slices.Delete(l.recipes, i, i+1)
	l.rebuild()
	return nil
}

// Toggle flips the checked state of one item without re-parsing amounts.
func (l *List) Toggle(itemID string) (models.LineItem, error) {
	i := slices.IndexFunc(l.items, func(it models.LineItem) bool { return it.ID == itemID })
	if i < 0 {
		return models.LineItem{}, ErrUnknownItem
	}
	l.items[i].Checked = !l.items[i].Checked
	toggled := l.items[i]
	l.items = Sorted(l.items)
	return toggled, nil
}

// Clear empties the list.
func (l *List) Clear() {
	l.recipes = nil
	l.items = nil
}

// Recipes returns a copy of the entries.
func (l *List) Recipes() []models.ShoppingRecipe {
	return slices.Clone(l.recipes)
}

// Items returns a copy of the line items, unchecked first.
func (l *List) Items() []models.LineItem {
	return slices.Clone(l.items)
}

// UncheckedCount returns the number of items still to buy.
func (l *List) UncheckedCount() int {
	n := 0
	for _, it := range l.items {
		if !it.Checked {
			n++
		}
	}
	return n
}

func (l *List) newEntry(recipe models.Recipe, portions int) models.ShoppingRecipe {
	return models.ShoppingRecipe{
		EntryID:     l.newID(),
		RecipeID:    recipe.ID,
		Name:        recipe.Name,
		Category:    recipe.Category,
		Portions:    portions,
		Ingredients: slices.Clone(recipe.Ingredients),
	}
}

func (l *List) rebuild() {
	l.items = Rebuild(l.recipes, l.items, l.newID)
}

func checkPortions(p int) error {
	if p < models.MinPortions || p > models.MaxPortions {
		return ErrInvalidPortions
	}
	return nil
}
