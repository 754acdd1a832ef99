package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claude/dianafit/internal/backup"
	"github.com/claude/dianafit/internal/content"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/shopping"
	"github.com/claude/dianafit/internal/storage"
	"github.com/claude/dianafit/internal/workout"
)

// idleScheduler never fires; tests drive time through the clock.
type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) func() { return func() {} }

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	tracker *Tracker
	repo    *storage.Repository
	store   *storage.MemoryStore
	clock   *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	f := &fixture{
		store: store,
		repo:  storage.NewRepository(store, slog.New(slog.NewTextHandler(io.Discard, nil))),
		clock: &clock{t: time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC)},
	}
	f.tracker = f.newTracker()
	t.Cleanup(f.tracker.Close)
	return f
}

func (f *fixture) newTracker() *Tracker {
	n := 0
	return New(context.Background(), Options{
		Content:   content.NewProvider(content.Default()),
		Repo:      f.repo,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       f.clock.Now,
		Scheduler: idleScheduler{},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
}

// TestStartPassUsesStoredViewMode verifies the preference selects the
// session variant.
func TestStartPassUsesStoredViewMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v, err := f.tracker.StartPass(ctx, "pass-1-home", "")
	if err != nil {
		t.Fatalf("StartPass: %v", err)
	}
	if v.Mode != models.ViewList || v.List == nil || len(v.List.Exercises[0].Rows) != 5 {
		t.Errorf("default start = %+v, want list with 5 rows for the first exercise", v)
	}

	if err := f.tracker.SetViewMode(ctx, models.ViewDetailed); err != nil {
		t.Fatal(err)
	}
	v, err = f.tracker.StartPass(ctx, "pass-2-home", "")
	if err != nil {
		t.Fatalf("StartPass: %v", err)
	}
	if v.Mode != models.ViewDetailed || v.Detailed == nil || v.PassKey != "pass-2-home" {
		t.Errorf("detailed start = %+v", v)
	}

	if _, err := f.tracker.StartPass(ctx, "pass-9", ""); !errors.Is(err, ErrUnknownPass) {
		t.Errorf("unknown pass err = %v, want ErrUnknownPass", err)
	}
}

// TestDetailedWorkoutIsRecorded runs a detailed session to completion.
func TestDetailedWorkoutIsRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.tracker.StartPass(ctx, "pass-1-home", models.ViewDetailed); err != nil {
		t.Fatal(err)
	}

	v, recorded, err := f.tracker.CompleteSet(0, workout.SetInput{Weight: "20"})
	if err != nil || !recorded {
		t.Fatalf("CompleteSet = %v, %v", recorded, err)
	}
	if !v.Detailed.Resting || v.Detailed.CompletedForCurrent[0].Reps != "4-6" {
		t.Errorf("after set: %+v", v.Detailed)
	}
	if _, recorded, _ := f.tracker.CompleteSet(0, workout.SetInput{}); recorded {
		t.Error("repeated set should not be recorded")
	}
	if _, moved, _ := f.tracker.Navigate(workout.Prev); moved {
		t.Error("Navigate(Prev) at first unit should be refused")
	}
	if _, err := f.tracker.ToggleRow(0, 0); !errors.Is(err, ErrWrongMode) {
		t.Errorf("ToggleRow err = %v, want ErrWrongMode", err)
	}

	f.clock.advance(30*time.Minute + 500*time.Millisecond)
	rec, err := f.tracker.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if rec.Duration != 1800 || rec.Date != "2026-10-16" || rec.Mode != models.ViewDetailed {
		t.Errorf("record = %+v", rec)
	}
	if want := fmt.Sprintf("workout-%d", f.clock.Now().UnixMilli()); rec.ID != want {
		t.Errorf("ID = %s, want %s", rec.ID, want)
	}
	if h := f.tracker.History(ctx); len(h) != 1 || h[0].ID != rec.ID {
		t.Errorf("history = %+v", h)
	}
	if _, err := f.tracker.Session(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Session after finish err = %v, want ErrNoSession", err)
	}
}

// TestListFinishPersistsSummary verifies list-mode sessions land in the
// history with their completion counts.
func TestListFinishPersistsSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v, err := f.tracker.StartPass(ctx, "pass-1-home", models.ViewList)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.tracker.ToggleRow(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.tracker.SetRowWeight(0, 1, "22,5"); err != nil {
		t.Fatal(err)
	}

	f.clock.advance(45 * time.Minute)
	rec, err := f.tracker.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if rec.Mode != models.ViewList || rec.Duration != 45*60 || rec.CompletedSetCount != 1 || rec.TotalSets != v.List.TotalSets {
		t.Errorf("record = %+v", rec)
	}
	if rec.Exercises != len(v.List.Exercises) {
		t.Errorf("exercises = %d, want %d", rec.Exercises, len(v.List.Exercises))
	}

	// The weight is remembered for the next session of any pass with the
	// same exercise.
	v, _ = f.tracker.StartPass(ctx, "pass-1-home", models.ViewList)
	if got := v.List.Exercises[0].Rows[1].Weight; got != "22,5" {
		t.Errorf("remembered weight = %q, want 22,5", got)
	}
}

// TestSwitchToDetailed verifies switching keeps the pass and stores the
// preference.
func TestSwitchToDetailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.tracker.StartPass(ctx, "pass-3-gym", models.ViewList); err != nil {
		t.Fatal(err)
	}
	v, err := f.tracker.SwitchToDetailed(ctx)
	if err != nil {
		t.Fatalf("SwitchToDetailed: %v", err)
	}
	if v.Mode != models.ViewDetailed || v.PassKey != "pass-3-gym" {
		t.Errorf("view = %+v", v)
	}
	if got := f.tracker.Settings(ctx).ViewMode; got != models.ViewDetailed {
		t.Errorf("stored view mode = %q, want detailed", got)
	}
	if _, err := f.tracker.SwitchToDetailed(ctx); !errors.Is(err, ErrWrongMode) {
		t.Errorf("second switch err = %v, want ErrWrongMode", err)
	}
}

// TestQuickStart verifies last/next pass selection.
func TestQuickStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.tracker.QuickStart(ctx, QuickLast); !errors.Is(err, ErrNoHistory) {
		t.Errorf("QuickLast without history err = %v, want ErrNoHistory", err)
	}

	v, err := f.tracker.QuickStart(ctx, QuickNext)
	if err != nil || v.PassKey != "pass-1-home" {
		t.Fatalf("QuickNext without history = %q, %v", v.PassKey, err)
	}
	if _, err := f.tracker.Finish(ctx); err != nil {
		t.Fatal(err)
	}
	if v, _ := f.tracker.QuickStart(ctx, QuickNext); v.PassKey != "pass-2-home" {
		t.Errorf("QuickNext after pass-1 = %q, want pass-2-home", v.PassKey)
	}
	f.tracker.Cancel()
	if v, _ := f.tracker.QuickStart(ctx, QuickLast); v.PassKey != "pass-1-home" {
		t.Errorf("QuickLast = %q, want pass-1-home", v.PassKey)
	}
	f.tracker.Cancel()

	f.clock.advance(time.Hour)
	if _, err := f.tracker.StartPass(ctx, "pass-4-gym", ""); err != nil {
		t.Fatal(err)
	}
	f.tracker.Finish(ctx)
	if v, _ := f.tracker.QuickStart(ctx, QuickNext); v.PassKey != "pass-1-home" {
		t.Errorf("QuickNext after last pass = %q, want wrap to pass-1-home", v.PassKey)
	}
}

// TestSessionErrors verifies calls without a session.
func TestSessionErrors(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.tracker.CompleteSet(0, workout.SetInput{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("CompleteSet err = %v", err)
	}
	if _, err := f.tracker.Finish(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("Finish err = %v", err)
	}
	if err := f.tracker.Cancel(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Cancel err = %v", err)
	}
}

// TestShoppingPersistsAcrossTrackers verifies the list is restored from
// storage and duplicates go through resolution.
func TestShoppingPersistsAcrossTrackers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.tracker.AddRecipe(ctx, "lunch-1", 2); err != nil {
		t.Fatalf("AddRecipe: %v", err)
	}
	if _, err := f.tracker.AddRecipe(ctx, "lunch-1", 1); !errors.Is(err, shopping.ErrDuplicateRecipe) {
		t.Fatalf("duplicate err = %v, want ErrDuplicateRecipe", err)
	}
	if err := f.tracker.ResolveDuplicate(ctx, "lunch-1", 1, shopping.AddSeparate); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tracker.AddRecipe(ctx, "nope", 1); !errors.Is(err, ErrUnknownRecipe) {
		t.Errorf("unknown recipe err = %v", err)
	}

	list := f.tracker.ShoppingList()
	if len(list.Recipes) != 2 {
		t.Fatalf("recipes = %d, want 2", len(list.Recipes))
	}
	var chicken models.LineItem
	for _, it := range list.Items {
		if it.DisplayName == "Kycklingfile, ra" {
			chicken = it
		}
	}
	if chicken.Amount != 390 || chicken.Unit != "g" {
		t.Errorf("chicken = %+v, want 390 g", chicken)
	}
	if _, err := f.tracker.ToggleShoppingItem(ctx, chicken.ID); err != nil {
		t.Fatal(err)
	}

	restored := f.newTracker().ShoppingList()
	if len(restored.Recipes) != 2 || restored.UncheckedCount != list.UncheckedCount-1 {
		t.Errorf("restored = %d recipes, %d unchecked", len(restored.Recipes), restored.UncheckedCount)
	}
}

// TestScaledRecipe verifies ingredient scaling for a portion count.
func TestScaledRecipe(t *testing.T) {
	f := newFixture(t)
	r, err := f.tracker.ScaledRecipe("lunch-1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if r.Ingredients[0].Amount != "390g" {
		t.Errorf("scaled amount = %q, want 390g", r.Ingredients[0].Amount)
	}
	if _, err := f.tracker.ScaledRecipe("lunch-1", 11); !errors.Is(err, shopping.ErrInvalidPortions) {
		t.Errorf("portions 11 err = %v", err)
	}
}

// TestImportWithoutVersionKeepsHistory verifies a rejected import writes
// nothing and a valid one replaces the history.
func TestImportWithoutVersionKeepsHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.tracker.StartPass(ctx, "pass-1-home", "")
	if _, err := f.tracker.Finish(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := f.tracker.Import(ctx, strings.NewReader(`{"workoutHistory": []}`))
	if !errors.Is(err, backup.ErrInvalidBackup) {
		t.Fatalf("Import err = %v, want ErrInvalidBackup", err)
	}
	if len(f.tracker.History(ctx)) != 1 {
		t.Error("history changed after rejected import")
	}

	doc := `{"version": "1.0.0", "workoutHistory": [{"id": "a", "date": "2026-01-02"}, {"id": "b", "date": "2026-01-01"}], "activePlan": 1, "theme": "light"}`
	n, err := f.tracker.Import(ctx, strings.NewReader(doc))
	if err != nil || n != 2 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	s := f.tracker.Settings(ctx)
	if s.ActivePlan != 1 || s.Theme != models.ThemeLight || len(f.tracker.History(ctx)) != 2 {
		t.Errorf("after import: %+v, history %d", s, len(f.tracker.History(ctx)))
	}

	exp := f.tracker.Export(ctx)
	if exp.Version != backup.Version || len(exp.WorkoutHistory) != 2 || exp.ActivePlan != 1 {
		t.Errorf("export = %+v", exp)
	}
	if f.tracker.ExportFilename() != "diana-fitness-backup-2026-10-16.json" {
		t.Errorf("filename = %s", f.tracker.ExportFilename())
	}
}

// TestClearAllRequiresConfirmation verifies the confirmation gate.
func TestClearAllRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.tracker.SetActivePlan(ctx, 2)
	f.tracker.StartPass(ctx, "pass-1-gym", "")
	f.tracker.Finish(ctx)

	if err := f.tracker.ClearAll(ctx, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Errorf("ClearAll(false) err = %v", err)
	}
	if len(f.tracker.History(ctx)) != 1 {
		t.Fatal("history cleared without confirmation")
	}
	if err := f.tracker.ClearAll(ctx, true); err != nil {
		t.Fatal(err)
	}
	if len(f.tracker.History(ctx)) != 0 || f.tracker.Settings(ctx).ActivePlan != storage.DefaultActivePlan {
		t.Error("ClearAll left data behind")
	}
}

// TestSettingsValidation verifies invalid settings are refused.
func TestSettingsValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for name, err := range map[string]error{
		"plan":   f.tracker.SetActivePlan(ctx, 9),
		"theme":  f.tracker.SetTheme(ctx, "neon"),
		"mode":   f.tracker.SetViewMode(ctx, "grid"),
		"screen": f.tracker.SetCurrentScreen(ctx, ""),
	} {
		if !errors.Is(err, ErrInvalidSetting) {
			t.Errorf("%s: err = %v, want ErrInvalidSetting", name, err)
		}
	}
}

// TestCalendar verifies the calendar view uses the stored history.
func TestCalendar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.tracker.StartPass(ctx, "pass-1-home", "")
	f.clock.advance(40 * time.Minute)
	f.tracker.Finish(ctx)

	cal := f.tracker.Calendar(ctx, f.tracker.CurrentMonth())
	if cal.Summary.Workouts != 1 || cal.Summary.Streak != 1 || len(cal.Recent) != 1 {
		t.Errorf("calendar = %+v", cal.Summary)
	}
	if cal.Prev != "2026-09" || cal.Next != "2026-11" {
		t.Errorf("prev/next = %s/%s", cal.Prev, cal.Next)
	}
	if got := f.tracker.DayWorkouts(ctx, "2026-10-16"); len(got) != 1 {
		t.Errorf("DayWorkouts = %d", len(got))
	}
}
