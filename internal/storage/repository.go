package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/workout"
)

// Persisted keys. The prefixes match the browser build so exported data and
// stored state stay interchangeable.
const (
	KeyWorkoutHistory   = "diana-fitness-workoutHistory"
	KeyNutritionHistory = "diana-fitness-nutritionHistory"
	KeyShoppingRecipes  = "diana-fitness-shoppingRecipes"
	KeyShoppingList     = "diana-fitness-shoppingList"
	KeyActivePlan       = "diana-fitness-activePlan"
	KeyCurrentScreen    = "diana-fitness-currentScreen"
	KeyTheme            = "diana-fitness-theme"
	KeyWorkoutWeights   = "diana_workout_weights"
	KeyViewMode         = "diana_workout_view_mode"
)

const (
	// MaxHistory caps the stored workout history.
	MaxHistory = 100

	DefaultActivePlan    = 3
	DefaultCurrentScreen = "recipes"
)

const weightWriteTimeout = 5 * time.Second

// Repository gives typed access to the persisted state. Read failures are
// logged and fall back to defaults so the app keeps working on a damaged
// store.
type Repository struct {
	store Store
	log   *slog.Logger

	weightsMu     sync.Mutex
	weights       map[string]string
	weightsLoaded bool
}

// NewRepository wraps store.
func NewRepository(store Store, log *slog.Logger) *Repository {
	return &Repository{store: store, log: log}
}

// getJSON decodes key into dst. It reports false when the key is missing or
// unreadable; the latter is logged.
func (r *Repository) getJSON(ctx context.Context, key string, dst any) bool {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		r.log.Warn("reading stored state failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.log.Warn("decoding stored state failed", "key", key, "error", err)
		return false
	}
	return true
}

func (r *Repository) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// History returns stored workouts, newest first.
func (r *Repository) History(ctx context.Context) []models.WorkoutRecord {
	var h []models.WorkoutRecord
	r.getJSON(ctx, KeyWorkoutHistory, &h)
	return h
}

// AppendWorkout prepends rec to the history and trims it to MaxHistory.
func (r *Repository) AppendWorkout(ctx context.Context, rec models.WorkoutRecord) error {
	h := append([]models.WorkoutRecord{rec}, r.History(ctx)...)
	if len(h) > MaxHistory {
		h = h[:MaxHistory]
	}
	return r.putJSON(ctx, KeyWorkoutHistory, h)
}

// Shopping returns the stored shopping entries and merged line items.
func (r *Repository) Shopping(ctx context.Context) ([]models.ShoppingRecipe, []models.LineItem) {
	var recipes []models.ShoppingRecipe
	var items []models.LineItem
	r.getJSON(ctx, KeyShoppingRecipes, &recipes)
	r.getJSON(ctx, KeyShoppingList, &items)
	return recipes, items
}

// SaveShopping stores entries and items together.
func (r *Repository) SaveShopping(ctx context.Context, recipes []models.ShoppingRecipe, items []models.LineItem) error {
	if recipes == nil {
		recipes = []models.ShoppingRecipe{}
	}
	if items == nil {
		items = []models.LineItem{}
	}
	rd, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("encoding shopping recipes: %w", err)
	}
	id, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding shopping list: %w", err)
	}
	if err := r.store.PutAll(ctx, map[string][]byte{KeyShoppingRecipes: rd, KeyShoppingList: id}); err != nil {
		return fmt.Errorf("saving shopping list: %w", err)
	}
	return nil
}

// ActivePlan returns the selected plan id, DefaultActivePlan if unset.
func (r *Repository) ActivePlan(ctx context.Context) int {
	var id int
	if !r.getJSON(ctx, KeyActivePlan, &id) || id == 0 {
		return DefaultActivePlan
	}
	return id
}

func (r *Repository) SetActivePlan(ctx context.Context, id int) error {
	return r.putJSON(ctx, KeyActivePlan, id)
}

// Theme returns the stored theme, ThemeAuto if unset or unknown.
func (r *Repository) Theme(ctx context.Context) models.Theme {
	var t models.Theme
	if !r.getJSON(ctx, KeyTheme, &t) || !t.Valid() {
		return models.ThemeAuto
	}
	return t
}

func (r *Repository) SetTheme(ctx context.Context, t models.Theme) error {
	return r.putJSON(ctx, KeyTheme, t)
}

func (r *Repository) CurrentScreen(ctx context.Context) string {
	var s string
	if !r.getJSON(ctx, KeyCurrentScreen, &s) || s == "" {
		return DefaultCurrentScreen
	}
	return s
}

func (r *Repository) SetCurrentScreen(ctx context.Context, screen string) error {
	return r.putJSON(ctx, KeyCurrentScreen, screen)
}

// ViewMode returns the stored session view mode, or def when unset.
func (r *Repository) ViewMode(ctx context.Context, def models.ViewMode) models.ViewMode {
	var m models.ViewMode
	if !r.getJSON(ctx, KeyViewMode, &m) || !m.Valid() {
		return def
	}
	return m
}

func (r *Repository) SetViewMode(ctx context.Context, m models.ViewMode) error {
	return r.putJSON(ctx, KeyViewMode, m)
}

// Snapshot is the subset of state written by a backup import. Nil fields
// are left untouched.
type Snapshot struct {
	History    []models.WorkoutRecord
	ActivePlan *int
	Theme      *models.Theme
}

// ImportSnapshot writes every field of s in one transaction.
func (r *Repository) ImportSnapshot(ctx context.Context, s Snapshot) error {
	entries := make(map[string][]byte, 3)
	history := s.History
	if history == nil {
		history = []models.WorkoutRecord{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	entries[KeyWorkoutHistory] = data
	if s.ActivePlan != nil {
		entries[KeyActivePlan], _ = json.Marshal(*s.ActivePlan)
	}
	if s.Theme != nil {
		entries[KeyTheme], _ = json.Marshal(*s.Theme)
	}
	if err := r.store.PutAll(ctx, entries); err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}
	return nil
}

// ClearAll removes history, nutrition history, the active plan and the
// current screen. Shopping state, theme and weight memory are kept.
func (r *Repository) ClearAll(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeyWorkoutHistory, KeyNutritionHistory, KeyActivePlan, KeyCurrentScreen); err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}
	return nil
}

// Weights returns the list-mode weight memory, loading it on first use.
func (r *Repository) Weights(ctx context.Context) workout.WeightMemory {
	r.weightsMu.Lock()
	defer r.weightsMu.Unlock()
	if !r.weightsLoaded {
		r.weights = make(map[string]string)
		r.getJSON(ctx, KeyWorkoutWeights, &r.weights)
		if r.weights == nil {
			r.weights = make(map[string]string)
		}
		r.weightsLoaded = true
	}
	return weightMemory{r}
}

type weightMemory struct {
	r *Repository
}

func (w weightMemory) Weight(exercise string, row int) string {
	w.r.weightsMu.Lock()
	defer w.r.weightsMu.Unlock()
	return w.r.weights[workout.WeightKey(exercise, row)]
}

// SetWeight updates the cache and writes through. A failed write is logged;
// the cached value still pre-fills this process's next session.
func (w weightMemory) SetWeight(exercise string, row int, weight string) {
	w.r.weightsMu.Lock()
	w.r.weights[workout.WeightKey(exercise, row)] = weight
	data, err := json.Marshal(w.r.weights)
	w.r.weightsMu.Unlock()
	if err != nil {
		w.r.log.Warn("encoding weight memory failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), weightWriteTimeout)
	defer cancel()
	if err := w.r.store.Put(ctx, KeyWorkoutWeights, data); err != nil {
		w.r.log.Warn("saving weight memory failed", "error", err)
	}
}
