package models

// Category groups recipes by meal.
type Category string

const (
	CategoryBreakfast Category = "breakfast"
	CategoryLunch     Category = "lunch"
	CategoryDinner    Category = "dinner"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner:
		return true
	}
	return false
}

// Recipe is a static recipe from the content catalog.
type Recipe struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Category     Category     `json:"category" yaml:"category"`
	PrepTime     int          `json:"prepTime" yaml:"prep_time"`
	CookTime     int          `json:"cookTime" yaml:"cook_time"`
	Kcal         int          `json:"kcal" yaml:"kcal"`
	Protein      float64      `json:"protein" yaml:"protein"`
	Carbs        float64      `json:"carbs" yaml:"carbs"`
	Fat          float64      `json:"fat" yaml:"fat"`
	Ingredients  []Ingredient `json:"ingredients" yaml:"ingredients"`
	Instructions []string     `json:"instructions" yaml:"instructions"`
	Tips         string       `json:"tips,omitempty" yaml:"tips"`
}

// Ingredient is a free-form quantity string plus an item name,
// e.g. {"115g (3 skivor)", "Kycklingpålägg"}.
type Ingredient struct {
	Amount string `json:"amount" yaml:"amount"`
	Item   string `json:"item" yaml:"item"`
}
