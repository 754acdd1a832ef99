package tracker

import (
	"context"
	"fmt"

	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/quantity"
	"github.com/claude/dianafit/internal/shopping"
)

func (t *Tracker) recipe(id string) (models.Recipe, error) {
	r, ok := t.Catalog().RecipeByID(id)
	if !ok {
		return models.Recipe{}, fmt.Errorf("%w: %s", ErrUnknownRecipe, id)
	}
	return r, nil
}

// ScaledRecipe returns recipe id with every ingredient amount scaled to
// portions.
func (t *Tracker) ScaledRecipe(id string, portions int) (models.Recipe, error) {
	r, err := t.recipe(id)
	if err != nil {
		return models.Recipe{}, err
	}
	if portions < models.MinPortions || portions > models.MaxPortions {
		return models.Recipe{}, shopping.ErrInvalidPortions
	}
	ings := make([]models.Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ings[i] = models.Ingredient{Amount: quantity.Scale(ing.Amount, float64(portions)), Item: ing.Item}
	}
	r.Ingredients = ings
	return r, nil
}

// AddRecipe puts a recipe on the shopping list. shopping.ErrDuplicateRecipe
// means the caller must ask the user and call ResolveDuplicate.
func (t *Tracker) AddRecipe(ctx context.Context, recipeID string, portions int) (models.ShoppingRecipe, error) {
	r, err := t.recipe(recipeID)
	if err != nil {
		return models.ShoppingRecipe{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	entry, err := t.shopping.AddRecipe(r, portions)
	if err != nil {
		return models.ShoppingRecipe{}, err
	}
	t.metrics.ShoppingRecipeAdded()
	t.saveShoppingLocked(ctx)
	return entry, nil
}

// ResolveDuplicate applies the user's answer to a duplicate add.
func (t *Tracker) ResolveDuplicate(ctx context.Context, recipeID string, portions int, res shopping.Resolution) error {
	r, err := t.recipe(recipeID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.shopping.ResolveDuplicate(r, portions, res); err != nil {
		return err
	}
	if res == shopping.AddSeparate {
		t.metrics.ShoppingRecipeAdded()
	}
	t.saveShoppingLocked(ctx)
	return nil
}

func (t *Tracker) RemoveShoppingRecipe(ctx context.Context, entryID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.shopping.RemoveRecipe(entryID); err != nil {
		return err
	}
	t.saveShoppingLocked(ctx)
	return nil
}

func (t *Tracker) ToggleShoppingItem(ctx context.Context, itemID string) (models.LineItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, err := t.shopping.Toggle(itemID)
	if err != nil {
		return models.LineItem{}, err
	}
	t.saveShoppingLocked(ctx)
	return item, nil
}

func (t *Tracker) ClearShopping(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shopping.Clear()
	t.saveShoppingLocked(ctx)
}

// ShoppingList is the current list state.
type ShoppingList struct {
	Recipes        []models.ShoppingRecipe `json:"recipes"`
	Items          []models.LineItem       `json:"items"`
	UncheckedCount int                     `json:"uncheckedCount"`
}

func (t *Tracker) ShoppingList() ShoppingList {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ShoppingList{
		Recipes:        t.shopping.Recipes(),
		Items:          t.shopping.Items(),
		UncheckedCount: t.shopping.UncheckedCount(),
	}
}

func (t *Tracker) saveShoppingLocked(ctx context.Context) {
	if err := t.repo.SaveShopping(ctx, t.shopping.Recipes(), t.shopping.Items()); err != nil {
		t.log.Warn("saving shopping list failed", "error", err)
	}
}
