package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/claude/dianafit/internal/content"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/storage"
	"github.com/claude/dianafit/internal/tracker"
)

type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) func() { return func() {} }

func newTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := 0
	tr := tracker.New(context.Background(), tracker.Options{
		Content:   content.NewProvider(content.Default()),
		Repo:      storage.NewRepository(storage.NewMemoryStore(), log),
		Log:       log,
		Scheduler: idleScheduler{},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	t.Cleanup(tr.Close)
	return tr
}

func startModel(t *testing.T, mode models.ViewMode) (Model, *tracker.Tracker) {
	t.Helper()
	tr := newTracker(t)
	if _, err := tr.StartPass(context.Background(), "pass-1-home", mode); err != nil {
		t.Fatalf("StartPass: %v", err)
	}
	m, err := New(context.Background(), tr, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, tr
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func send(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

// TestNewWithoutSession verifies the runner needs an active session.
func TestNewWithoutSession(t *testing.T) {
	if _, err := New(context.Background(), newTracker(t), nil); !errors.Is(err, tracker.ErrNoSession) {
		t.Errorf("New error = %v, want ErrNoSession", err)
	}
}

// TestListToggleAndFinish verifies toggling a row and finishing records the
// workout, after which any key quits.
func TestListToggleAndFinish(t *testing.T) {
	m, tr := startModel(t, models.ViewList)

	m, _ = send(m, enter)
	view, err := tr.Session()
	if err != nil {
		t.Fatal(err)
	}
	if !view.List.Exercises[0].Rows[0].Completed {
		t.Fatal("first row should be completed")
	}
	if !strings.Contains(m.View(), "1/") {
		t.Errorf("view should show one completed set:\n%s", m.View())
	}

	m, _ = send(m, keys("f"))
	rec := m.Record()
	if rec == nil || rec.Mode != models.ViewList || rec.CompletedSetCount != 1 {
		t.Fatalf("record = %+v, want list record with 1 set", rec)
	}
	if _, cmd := send(m, keys("x")); cmd == nil {
		t.Error("a key after finishing should quit")
	}
}

// TestListWeightEdit verifies the weight input writes the selected row.
func TestListWeightEdit(t *testing.T) {
	m, tr := startModel(t, models.ViewList)

	m, _ = send(m, keys("j"), keys("w"), keys("42"), enter)
	if m.editing {
		t.Error("enter should leave edit mode")
	}
	view, err := tr.Session()
	if err != nil {
		t.Fatal(err)
	}
	if got := view.List.Exercises[0].Rows[1].Weight; got != "42" {
		t.Errorf("row weight = %q, want 42", got)
	}
}

// TestDetailedCompleteSetWithInput verifies weight and reps entry feed the
// completed set and the cursor advances.
func TestDetailedCompleteSetWithInput(t *testing.T) {
	m, tr := startModel(t, models.ViewDetailed)

	m, _ = send(m, keys("w"), keys("20"), tea.KeyMsg{Type: tea.KeyTab}, keys("6"), enter, enter)

	view, err := tr.Session()
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := view.Detailed.CompletedForCurrent[0]
	if !ok {
		t.Fatal("set 0 should be completed")
	}
	if rec.Weight != "20" || rec.Reps != "6" {
		t.Errorf("set = %s × %s, want 20 × 6", rec.Weight, rec.Reps)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	if !view.Detailed.Resting {
		t.Error("a non-final set should start the rest countdown")
	}

	m, _ = send(m, keys("s"))
	if m.view.Detailed.Resting {
		t.Error("skip should end the rest")
	}

	m, _ = send(m, keys("n"))
	if m.view.Detailed.CurrentIndex != 1 || m.cursor != 0 {
		t.Errorf("after next: index %d cursor %d, want 1 and 0", m.view.Detailed.CurrentIndex, m.cursor)
	}
}

// TestQuitCancelsSession verifies q discards the workout.
func TestQuitCancelsSession(t *testing.T) {
	m, tr := startModel(t, models.ViewDetailed)

	m, cmd := send(m, keys("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
	if m.Record() != nil {
		t.Error("cancelled session should have no record")
	}
	if _, err := tr.Session(); !errors.Is(err, tracker.ErrNoSession) {
		t.Errorf("Session error = %v, want ErrNoSession", err)
	}
	if got := len(tr.History(context.Background())); got != 0 {
		t.Errorf("history = %d, want 0", got)
	}
}

// TestSwitchToDetailed verifies d converts a list session.
func TestSwitchToDetailed(t *testing.T) {
	m, _ := startModel(t, models.ViewList)
	m, _ = send(m, keys("d"))
	if m.view.Mode != models.ViewDetailed || m.view.Detailed == nil {
		t.Errorf("mode = %q, want detailed", m.view.Mode)
	}
}

// TestTicksNeverBlock verifies hooks deliver messages and drop them when
// the buffer is full.
func TestTicksNeverBlock(t *testing.T) {
	ticks := NewTicks()
	h := ticks.Hooks()
	h.OnRestTick(42)
	if msg := ticks.wait()(); msg != (restTickMsg{42}) {
		t.Errorf("msg = %#v, want restTickMsg{42}", msg)
	}

	done := make(chan struct{})
	go func() {
		for range 100 {
			h.OnElapsed(time.Second)
		}
		h.OnRestDone()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hooks blocked on a full buffer")
	}
}
