package mcp

import (
	"context"

	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/stats"
	"github.com/claude/dianafit/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// tracker) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	History(ctx context.Context) ([]models.WorkoutRecord, error)
	// Calendar returns the calendar for a "YYYY-MM" month, the current one
	// when month is empty.
	Calendar(ctx context.Context, month string) (*tracker.Calendar, error)
	ShoppingList(ctx context.Context) (*tracker.ShoppingList, error)
	Recipes(ctx context.Context, category models.Category) ([]models.Recipe, error)
	Recipe(ctx context.Context, id string, portions int) (*models.Recipe, error)
	ActivePasses(ctx context.Context) ([]models.Pass, error)
	Settings(ctx context.Context) (*tracker.Settings, error)
}

// Local serves MCP requests straight from a tracker.
type Local struct {
	T *tracker.Tracker
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

func (l Local) History(ctx context.Context) ([]models.WorkoutRecord, error) {
	return l.T.History(ctx), nil
}

func (l Local) Calendar(ctx context.Context, month string) (*tracker.Calendar, error) {
	m := l.T.CurrentMonth()
	if month != "" {
		parsed, err := stats.ParseMonth(month)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	cal := l.T.Calendar(ctx, m)
	return &cal, nil
}

func (l Local) ShoppingList(ctx context.Context) (*tracker.ShoppingList, error) {
	list := l.T.ShoppingList()
	return &list, nil
}

func (l Local) Recipes(ctx context.Context, category models.Category) ([]models.Recipe, error) {
	return l.T.Catalog().RecipesByCategory(category), nil
}

func (l Local) Recipe(ctx context.Context, id string, portions int) (*models.Recipe, error) {
	r, err := l.T.ScaledRecipe(id, portions)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (l Local) ActivePasses(ctx context.Context) ([]models.Pass, error) {
	return l.T.Passes(ctx), nil
}

func (l Local) Settings(ctx context.Context) (*tracker.Settings, error) {
	s := l.T.Settings(ctx)
	return &s, nil
}
