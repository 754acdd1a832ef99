package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/claude/dianafit/internal/backup"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/stats"
	"github.com/claude/dianafit/internal/storage"
)

// Settings are the user preferences shown on the settings screen.
type Settings struct {
	ActivePlan    int             `json:"activePlan"`
	Theme         models.Theme    `json:"theme"`
	ViewMode      models.ViewMode `json:"viewMode"`
	CurrentScreen string          `json:"currentScreen"`
}

func (t *Tracker) Settings(ctx context.Context) Settings {
	return Settings{
		ActivePlan:    t.repo.ActivePlan(ctx),
		Theme:         t.repo.Theme(ctx),
		ViewMode:      t.repo.ViewMode(ctx, t.defaultMode),
		CurrentScreen: t.repo.CurrentScreen(ctx),
	}
}

// SetActivePlan selects one of the catalog's plans.
func (t *Tracker) SetActivePlan(ctx context.Context, id int) error {
	if _, ok := t.Catalog().Plan(id); !ok {
		return fmt.Errorf("%w: unknown plan %d", ErrInvalidSetting, id)
	}
	return t.repo.SetActivePlan(ctx, id)
}

func (t *Tracker) SetTheme(ctx context.Context, theme models.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: theme %q", ErrInvalidSetting, theme)
	}
	return t.repo.SetTheme(ctx, theme)
}

func (t *Tracker) SetViewMode(ctx context.Context, mode models.ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: view mode %q", ErrInvalidSetting, mode)
	}
	return t.repo.SetViewMode(ctx, mode)
}

func (t *Tracker) SetCurrentScreen(ctx context.Context, screen string) error {
	if screen == "" {
		return fmt.Errorf("%w: empty screen", ErrInvalidSetting)
	}
	return t.repo.SetCurrentScreen(ctx, screen)
}

// History returns stored workouts, newest first.
func (t *Tracker) History(ctx context.Context) []models.WorkoutRecord {
	return t.repo.History(ctx)
}

// Calendar is everything the calendar screen shows for one month.
type Calendar struct {
	Grid    stats.Grid       `json:"grid"`
	Summary stats.Summary    `json:"summary"`
	Recent  []stats.Activity `json:"recent"`
	Prev    string           `json:"prev"`
	Next    string           `json:"next"`
}

// Calendar builds the calendar for m.
func (t *Tracker) Calendar(ctx context.Context, m stats.Month) Calendar {
	history := t.repo.History(ctx)
	today := t.now()
	return Calendar{
		Grid:    stats.BuildGrid(history, m, today),
		Summary: stats.Summarize(history, m, today),
		Recent:  stats.Recent(history, stats.RecentLimit),
		Prev:    m.Prev().String(),
		Next:    m.Next().String(),
	}
}

// CurrentMonth is the month containing the tracker's clock.
func (t *Tracker) CurrentMonth() stats.Month {
	return stats.MonthOf(t.now())
}

// DayWorkouts lists the workouts of a "YYYY-MM-DD" day.
func (t *Tracker) DayWorkouts(ctx context.Context, date string) []models.WorkoutRecord {
	return stats.OnDay(t.repo.History(ctx), date)
}

// Export builds a backup of the history and preferences.
func (t *Tracker) Export(ctx context.Context) backup.Document {
	return backup.New(t.repo.History(ctx), t.repo.ActivePlan(ctx), t.repo.Theme(ctx), t.now())
}

// ExportFilename is the suggested name for an export made now.
func (t *Tracker) ExportFilename() string {
	return backup.Filename(t.now())
}

// Import validates a backup and replaces the history with it. Nothing is
// written when validation fails. It returns the number of restored
// workouts.
func (t *Tracker) Import(ctx context.Context, r io.Reader) (int, error) {
	imp, err := backup.Read(r)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidBackup) {
			t.metrics.BackupImported("invalid")
		}
		return 0, err
	}
	err = t.repo.ImportSnapshot(ctx, storage.Snapshot{
		History:    imp.WorkoutHistory,
		ActivePlan: imp.ActivePlan,
		Theme:      imp.Theme,
	})
	if err != nil {
		return 0, err
	}
	t.metrics.BackupImported("ok")
	t.log.Info("backup imported", "workouts", len(imp.WorkoutHistory), "exported", imp.ExportDate)
	return len(imp.WorkoutHistory), nil
}

// ClearAll removes the history and resets the plan. It refuses to run
// unless confirmed is true.
func (t *Tracker) ClearAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := t.repo.ClearAll(ctx); err != nil {
		return err
	}
	t.log.Info("all data cleared")
	return nil
}
