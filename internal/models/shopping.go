package models

// MinPortions and MaxPortions bound the portion count of a shopping entry.
const (
	MinPortions = 1
	MaxPortions = 10
)

// ShoppingRecipe is a recipe added to the shopping list. Ingredients are a
// snapshot taken when the entry was added.
type ShoppingRecipe struct {
	EntryID     string       `json:"entryId"`
	RecipeID    string       `json:"id"`
	Name        string       `json:"name"`
	Category    Category     `json:"category,omitempty"`
	Portions    int          `json:"portions"`
	Ingredients []Ingredient `json:"ingredients"`
}

// LineItem is one merged row of the shopping list.
type LineItem struct {
	ID          string   `json:"id"`
	Key         string   `json:"key"`
	DisplayName string   `json:"name"`
	Amount      float64  `json:"amount"`
	Unit        string   `json:"unit"`
	Checked     bool     `json:"checked"`
	Sources     []Source `json:"sources"`
}

// Source records which recipe contributed to a line item.
type Source struct {
	RecipeName     string `json:"recipe"`
	Portions       int    `json:"portions"`
	OriginalAmount string `json:"originalAmount"`
}
