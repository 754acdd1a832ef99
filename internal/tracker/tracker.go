// Package tracker is the controller behind every UI shell. It owns the
// single active workout session, the shopping list and the persisted
// settings, and serializes access to them.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/dianafit/internal/content"
	"github.com/claude/dianafit/internal/metrics"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/shopping"
	"github.com/claude/dianafit/internal/storage"
	"github.com/claude/dianafit/internal/workout"
)

var (
	ErrNoSession            = errors.New("no workout session in progress")
	ErrUnknownPass          = errors.New("pass not found in the active plan")
	ErrUnknownRecipe        = errors.New("recipe not found")
	ErrNoHistory            = errors.New("no previous workout")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrWrongMode            = errors.New("operation not available in this view mode")
	ErrInvalidSetting       = errors.New("invalid setting")
)

// Options configure a Tracker. Content and Repo are required.
type Options struct {
	Content *content.Provider
	Repo    *storage.Repository
	Metrics *metrics.Manager
	Log     *slog.Logger

	Now          func() time.Time
	Scheduler    workout.Scheduler
	RestDuration time.Duration
	// DefaultViewMode is used when no preference has been stored.
	DefaultViewMode models.ViewMode
	// Hooks are passed to every detailed session.
	Hooks workout.Hooks
	// NewID generates shopping list ids; nil selects random UUIDs.
	NewID func() string
}

// Tracker is safe for concurrent use.
type Tracker struct {
	content *content.Provider
	repo    *storage.Repository
	metrics *metrics.Manager
	log     *slog.Logger

	now          func() time.Time
	sched        workout.Scheduler
	restDuration time.Duration
	defaultMode  models.ViewMode
	hooks        workout.Hooks

	mu       sync.Mutex
	detailed *workout.Session
	list     *workout.ListSession
	shopping *shopping.List
}

// New creates a tracker and restores the persisted shopping list.
func New(ctx context.Context, opts Options) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if !opts.DefaultViewMode.Valid() {
		opts.DefaultViewMode = models.ViewList
	}
	t := &Tracker{
		content:      opts.Content,
		repo:         opts.Repo,
		metrics:      opts.Metrics,
		log:          opts.Log,
		now:          opts.Now,
		sched:        opts.Scheduler,
		restDuration: opts.RestDuration,
		defaultMode:  opts.DefaultViewMode,
		hooks:        opts.Hooks,
		shopping:     shopping.NewList(opts.NewID),
	}
	recipes, items := t.repo.Shopping(ctx)
	t.shopping.Restore(recipes, items)
	return t
}

// Catalog returns the content currently served.
func (t *Tracker) Catalog() *content.Catalog {
	return t.content.Catalog()
}

// Passes returns the passes of the active plan in order.
func (t *Tracker) Passes(ctx context.Context) []models.Pass {
	return t.Catalog().PlanExercises(t.repo.ActivePlan(ctx))
}

// SessionView is a snapshot of the active session in either mode.
type SessionView struct {
	Mode     models.ViewMode `json:"mode"`
	PassKey  string          `json:"passKey"`
	PassName string          `json:"passName"`
	Detailed *DetailedView   `json:"detailed,omitempty"`
	List     *ListView       `json:"list,omitempty"`
}

// DetailedView mirrors workout.Progress for the shells.
type DetailedView struct {
	State               string                   `json:"state"`
	CurrentIndex        int                      `json:"currentIndex"`
	TotalUnits          int                      `json:"totalUnits"`
	Current             workout.Unit             `json:"current"`
	CompletedForCurrent map[int]models.SetRecord `json:"completedForCurrent"`
	Completed           models.CompletedSets     `json:"completed"`
	Resting             bool                     `json:"resting"`
	RestRemaining       int                      `json:"restRemaining"`
	Elapsed             string                   `json:"elapsed"`
	ElapsedSeconds      int                      `json:"elapsedSeconds"`
}

// ListView is the list-mode checklist with its totals.
type ListView struct {
	Exercises     []workout.ListExercise `json:"exercises"`
	TotalSets     int                    `json:"totalSets"`
	CompletedSets int                    `json:"completedSets"`
}

// StartPass starts passKey from the active plan, closing any session that
// is still open. An empty mode uses the stored view mode preference.
func (t *Tracker) StartPass(ctx context.Context, passKey string, mode models.ViewMode) (SessionView, error) {
	pass, ok := t.Catalog().Pass(t.repo.ActivePlan(ctx), passKey)
	if !ok {
		return SessionView{}, fmt.Errorf("%w: %s", ErrUnknownPass, passKey)
	}
	if mode == "" {
		mode = t.repo.ViewMode(ctx, t.defaultMode)
	}
	if !mode.Valid() {
		return SessionView{}, fmt.Errorf("%w: view mode %q", ErrInvalidSetting, mode)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.startLocked(ctx, pass, mode); err != nil {
		return SessionView{}, err
	}
	return t.viewLocked()
}

func (t *Tracker) startLocked(ctx context.Context, pass models.Pass, mode models.ViewMode) error {
	t.closeLocked()

	switch mode {
	case models.ViewDetailed:
		s := workout.New(workout.Options{
			Now:          t.now,
			Scheduler:    t.sched,
			RestDuration: t.restDuration,
			Hooks:        t.hooks,
		})
		if err := s.Start(pass.Key, pass.Name, workout.Flatten(pass.Exercises)); err != nil {
			return fmt.Errorf("starting session: %w", err)
		}
		t.detailed = s
	default:
		t.list = workout.StartList(pass.Key, pass.Name, pass.Exercises, t.repo.Weights(ctx), t.now)
	}
	t.metrics.WorkoutStarted(string(mode))
	t.log.Info("workout started", "pass", pass.Key, "mode", mode)
	return nil
}

// closeLocked discards any open session without recording it.
func (t *Tracker) closeLocked() {
	if t.detailed != nil {
		if err := t.detailed.Cancel(); err == nil {
			t.metrics.WorkoutCancelled()
		}
		t.detailed = nil
	}
	if t.list != nil {
		if !t.list.Closed() {
			t.metrics.WorkoutCancelled()
		}
		t.list.Close()
		t.list = nil
	}
}

// QuickAction selects a pass without the user picking one.
type QuickAction string

const (
	QuickLast QuickAction = "last-workout"
	QuickNext QuickAction = "next-workout"
)

// QuickStart repeats the newest workout's pass, or starts the pass after
// it in plan order (wrapping, the first pass when there is no history).
func (t *Tracker) QuickStart(ctx context.Context, action QuickAction) (SessionView, error) {
	passes := t.Passes(ctx)
	history := t.repo.History(ctx)

	var key string
	switch action {
	case QuickLast:
		if len(history) == 0 {
			return SessionView{}, ErrNoHistory
		}
		key = history[0].PassKey
	case QuickNext:
		if len(passes) == 0 {
			return SessionView{}, ErrUnknownPass
		}
		key = passes[0].Key
		if len(history) > 0 {
			for i, p := range passes {
				if p.Key == history[0].PassKey && i < len(passes)-1 {
					key = passes[i+1].Key
				}
			}
		}
	default:
		return SessionView{}, fmt.Errorf("unknown quick start action %q", action)
	}
	return t.StartPass(ctx, key, "")
}

// Session returns the active session.
func (t *Tracker) Session() (SessionView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

func (t *Tracker) viewLocked() (SessionView, error) {
	switch {
	case t.detailed != nil:
		p := t.detailed.Progress()
		return SessionView{
			Mode:     models.ViewDetailed,
			PassKey:  p.PassKey,
			PassName: p.PassName,
			Detailed: &DetailedView{
				State:               p.State.String(),
				CurrentIndex:        p.CurrentIndex,
				TotalUnits:          p.TotalUnits,
				Current:             p.Current,
				CompletedForCurrent: p.CompletedForCurrent,
				Completed:           p.Completed,
				Resting:             p.Resting,
				RestRemaining:       p.RestRemaining,
				Elapsed:             workout.FormatClock(p.Elapsed),
				ElapsedSeconds:      int(p.Elapsed / time.Second),
			},
		}, nil
	case t.list != nil:
		total, completed := t.list.Totals()
		return SessionView{
			Mode:     models.ViewList,
			PassKey:  t.list.PassKey(),
			PassName: t.list.PassName(),
			List: &ListView{
				Exercises:     t.list.Exercises(),
				TotalSets:     total,
				CompletedSets: completed,
			},
		}, nil
	}
	return SessionView{}, ErrNoSession
}

func (t *Tracker) detailedLocked() (*workout.Session, error) {
	if t.detailed != nil {
		return t.detailed, nil
	}
	if t.list != nil {
		return nil, ErrWrongMode
	}
	return nil, ErrNoSession
}

func (t *Tracker) listLocked() (*workout.ListSession, error) {
	if t.list != nil {
		return t.list, nil
	}
	if t.detailed != nil {
		return nil, ErrWrongMode
	}
	return nil, ErrNoSession
}

// CompleteSet records a set of the current unit. recorded is false when the
// set was already done.
func (t *Tracker) CompleteSet(setIndex int, in workout.SetInput) (view SessionView, recorded bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.detailedLocked()
	if err != nil {
		return SessionView{}, false, err
	}
	recorded, err = s.CompleteSet(setIndex, in)
	if err != nil {
		return SessionView{}, false, err
	}
	if recorded {
		t.metrics.SetCompleted()
	}
	view, err = t.viewLocked()
	return view, recorded, err
}

// Navigate moves between units. moved is false at either end.
func (t *Tracker) Navigate(dir workout.Direction) (view SessionView, moved bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.detailedLocked()
	if err != nil {
		return SessionView{}, false, err
	}
	moved = s.Navigate(dir)
	view, err = t.viewLocked()
	return view, moved, err
}

func (t *Tracker) SkipRest() (SessionView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.detailedLocked()
	if err != nil {
		return SessionView{}, err
	}
	s.SkipRest()
	return t.viewLocked()
}

// ToggleRow flips a list-mode row.
func (t *Tracker) ToggleRow(ex, row int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, err := t.listLocked()
	if err != nil {
		return false, err
	}
	done, err := l.Toggle(ex, row)
	if err == nil && done {
		t.metrics.SetCompleted()
	}
	return done, err
}

// SetRowWeight stores a list-mode weight and remembers it for next time.
func (t *Tracker) SetRowWeight(ex, row int, weight string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, err := t.listLocked()
	if err != nil {
		return err
	}
	return l.SetWeight(ex, row, weight)
}

// SwitchToDetailed stores the detailed preference, closes the list session
// and starts a fresh detailed session for the same pass.
func (t *Tracker) SwitchToDetailed(ctx context.Context) (SessionView, error) {
	if err := t.repo.SetViewMode(ctx, models.ViewDetailed); err != nil {
		t.log.Warn("saving view mode failed", "error", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	l, err := t.listLocked()
	if err != nil {
		return SessionView{}, err
	}
	pass, ok := t.Catalog().Pass(t.repo.ActivePlan(ctx), l.PassKey())
	if !ok {
		return SessionView{}, fmt.Errorf("%w: %s", ErrUnknownPass, l.PassKey())
	}
	if err := t.startLocked(ctx, pass, models.ViewDetailed); err != nil {
		return SessionView{}, err
	}
	return t.viewLocked()
}

// Finish completes the active session and appends it to the history. A
// failed history write is logged; the record is still returned.
func (t *Tracker) Finish(ctx context.Context) (models.WorkoutRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rec models.WorkoutRecord
	switch {
	case t.detailed != nil:
		r, err := t.detailed.Complete()
		if err != nil {
			return models.WorkoutRecord{}, err
		}
		rec = r
		t.detailed = nil
	case t.list != nil:
		exercises := len(t.list.Exercises())
		sum, err := t.list.Complete()
		if err != nil {
			return models.WorkoutRecord{}, err
		}
		rec = listRecord(sum, exercises)
		t.list = nil
	default:
		return models.WorkoutRecord{}, ErrNoSession
	}

	if err := t.repo.AppendWorkout(ctx, rec); err != nil {
		t.log.Warn("saving workout failed", "id", rec.ID, "error", err)
	}
	t.metrics.WorkoutFinished(string(rec.Mode), rec.Duration)
	t.log.Info("workout finished", "id", rec.ID, "pass", rec.PassKey, "duration", rec.Duration, "sets", rec.SetCount())
	return rec, nil
}

// listRecord converts a list-mode summary into a history record.
func listRecord(sum models.ListSummary, exercises int) models.WorkoutRecord {
	return models.WorkoutRecord{
		ID:                fmt.Sprintf("workout-%d", sum.Date.UnixMilli()),
		Date:              sum.Date.Format(models.DateLayout),
		PassKey:           sum.PassKey,
		PassName:          sum.PassName,
		Duration:          sum.DurationMinutes * 60,
		Exercises:         exercises,
		CompletedSets:     models.CompletedSets{},
		CompletedAt:       models.At(sum.Date),
		Mode:              models.ViewList,
		TotalSets:         sum.TotalSets,
		CompletedSetCount: sum.CompletedSets,
		CompletionPercent: sum.CompletionPercent,
	}
}

// Cancel discards the active session without a record.
func (t *Tracker) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detailed == nil && t.list == nil {
		return ErrNoSession
	}
	t.closeLocked()
	t.log.Info("workout cancelled")
	return nil
}

// Close stops the timers of any open session.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
}
