// Package tui provides a Bubble Tea workout runner for both session modes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/claude/dianafit/internal/workout"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	restStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("178"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// Controller is the part of the tracker the runner drives.
type Controller interface {
	Session() (tracker.SessionView, error)
	CompleteSet(setIndex int, in workout.SetInput) (tracker.SessionView, bool, error)
	Navigate(dir workout.Direction) (tracker.SessionView, bool, error)
	SkipRest() (tracker.SessionView, error)
	ToggleRow(ex, row int) (bool, error)
	SetRowWeight(ex, row int, weight string) error
	SwitchToDetailed(ctx context.Context) (tracker.SessionView, error)
	Finish(ctx context.Context) (models.WorkoutRecord, error)
	Cancel() error
}

var _ Controller = (*tracker.Tracker)(nil)

type rowRef struct{ ex, row int }

// Model is the root Bubble Tea model of the runner.
type Model struct {
	ctx   context.Context
	ctl   Controller
	ticks *Ticks

	view    tracker.SessionView
	cursor  int
	weight  textinput.Model
	reps    textinput.Model
	editing bool

	record *models.WorkoutRecord
	err    error
	width  int
}

// New creates a runner for the tracker's active session.
func New(ctx context.Context, ctl Controller, ticks *Ticks) (Model, error) {
	view, err := ctl.Session()
	if err != nil {
		return Model{}, err
	}
	weight := textinput.New()
	weight.Placeholder = "vikt (kg)"
	weight.CharLimit = 8
	reps := textinput.New()
	reps.Placeholder = "reps"
	reps.CharLimit = 8
	return Model{ctx: ctx, ctl: ctl, ticks: ticks, view: view, weight: weight, reps: reps}, nil
}

// Record is the finished workout, nil when the session was cancelled.
func (m Model) Record() *models.WorkoutRecord { return m.record }

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	return m.waitTick()
}

func (m Model) waitTick() tea.Cmd {
	if m.ticks == nil {
		return nil
	}
	return m.ticks.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case elapsedMsg, restTickMsg, restDoneMsg:
		m.refresh()
		return m, m.waitTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.record != nil {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		if m.view.Mode == models.ViewDetailed {
			return m.updateDetailed(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) refresh() {
	view, err := m.ctl.Session()
	if err != nil {
		if !errors.Is(err, tracker.ErrNoSession) {
			m.err = err
		}
		return
	}
	m.view = view
}

func (m *Model) cancel() {
	if err := m.ctl.Cancel(); err != nil && !errors.Is(err, tracker.ErrNoSession) {
		m.err = err
	}
}

func (m Model) finish() (tea.Model, tea.Cmd) {
	rec, err := m.ctl.Finish(m.ctx)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.record = &rec
	return m, nil
}

// updateEditing routes keys to the focused input. Enter saves, esc
// discards.
func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		return m, nil
	case "tab":
		if m.view.Mode == models.ViewDetailed {
			if m.weight.Focused() {
				m.weight.Blur()
				return m, m.reps.Focus()
			}
			m.reps.Blur()
			return m, m.weight.Focus()
		}
	case "enter":
		if m.view.Mode == models.ViewList {
			if ref, ok := m.selectedRow(); ok {
				if err := m.ctl.SetRowWeight(ref.ex, ref.row, strings.TrimSpace(m.weight.Value())); err != nil {
					m.err = err
				}
			}
			m.stopEditing()
			m.refresh()
			return m, nil
		}
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	if m.reps.Focused() {
		m.reps, cmd = m.reps.Update(msg)
	} else {
		m.weight, cmd = m.weight.Update(msg)
	}
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.weight.Blur()
	m.reps.Blur()
}

func (m Model) updateDetailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.view.Detailed
	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if d != nil && m.cursor < d.Current.TotalSets-1 {
			m.cursor++
		}
	case "left", "h", "p":
		m.move(workout.Prev)
	case "right", "l", "n":
		m.move(workout.Next)
	case "w":
		if d != nil && d.Current.Kind == models.StepNormal {
			m.editing = true
			return m, m.weight.Focus()
		}
	case "enter", " ", "space":
		view, _, err := m.ctl.CompleteSet(m.cursor, workout.SetInput{
			Weight: strings.TrimSpace(m.weight.Value()),
			Reps:   strings.TrimSpace(m.reps.Value()),
		})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.view = view
		if m.cursor < view.Detailed.Current.TotalSets-1 {
			m.cursor++
		}
	case "s":
		view, err := m.ctl.SkipRest()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.view = view
	case "f":
		return m.finish()
	}
	return m, nil
}

func (m *Model) move(dir workout.Direction) {
	view, moved, err := m.ctl.Navigate(dir)
	if err != nil {
		m.err = err
		return
	}
	m.view = view
	if moved {
		m.cursor = 0
		m.reps.SetValue("")
	}
}

func (m Model) rows() []rowRef {
	if m.view.List == nil {
		return nil
	}
	var refs []rowRef
	for i, ex := range m.view.List.Exercises {
		for j := range ex.Rows {
			refs = append(refs, rowRef{i, j})
		}
	}
	return refs
}

func (m Model) selectedRow() (rowRef, bool) {
	refs := m.rows()
	if m.cursor < 0 || m.cursor >= len(refs) {
		return rowRef{}, false
	}
	return refs[m.cursor], true
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case "enter", " ", "space":
		if ref, ok := m.selectedRow(); ok {
			if _, err := m.ctl.ToggleRow(ref.ex, ref.row); err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.refresh()
		}
	case "w":
		if ref, ok := m.selectedRow(); ok {
			m.weight.SetValue(m.view.List.Exercises[ref.ex].Rows[ref.row].Weight)
			m.editing = true
			return m, m.weight.Focus()
		}
	case "d":
		view, err := m.ctl.SwitchToDetailed(m.ctx)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.view = view
		m.cursor = 0
		m.weight.SetValue("")
	case "f":
		return m.finish()
	}
	return m, nil
}

// ── Rendering ───────────────

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("  dianafit  "+m.view.PassName) + "\n\n")

	switch {
	case m.record != nil:
		sb.WriteString(m.renderSummary())
	case m.view.Mode == models.ViewDetailed && m.view.Detailed != nil:
		sb.WriteString(m.renderDetailed())
	case m.view.List != nil:
		sb.WriteString(m.renderList())
	}

	if m.err != nil {
		sb.WriteString("\n" + errorStyle.Render("  "+m.err.Error()) + "\n")
	}
	sb.WriteString("\n" + statusBarStyle.Render(m.hint()) + "\n")
	return sb.String()
}

func (m Model) hint() string {
	switch {
	case m.record != nil:
		return "any key quit"
	case m.editing:
		if m.view.Mode == models.ViewDetailed {
			return "tab weight/reps  enter done  esc cancel"
		}
		return "enter save  esc cancel"
	case m.view.Mode == models.ViewDetailed:
		return "↑/↓ set  enter complete  w weight  ←/→ exercise  s skip rest  f finish  q quit"
	}
	return "↑/↓ row  space toggle  w weight  d detailed  f finish  q quit"
}

func (m Model) renderDetailed() string {
	d := m.view.Detailed
	u := d.Current
	var sb strings.Builder

	sb.WriteString(labelStyle.Render(fmt.Sprintf("  Övning %d/%d", d.CurrentIndex+1, d.TotalUnits)))
	sb.WriteString("  " + dimStyle.Render(d.Elapsed) + "\n")
	sb.WriteString(sectionHeader.Render("  "+u.Name) + "\n")
	if u.Reps != "" {
		sb.WriteString(dimStyle.Render("  "+u.Reps+" reps") + "\n")
	}
	sb.WriteString("\n")

	for i := range u.TotalSets {
		line := fmt.Sprintf("  Set %d", i+1)
		if rec, ok := d.CompletedForCurrent[i]; ok {
			mark := "✓"
			if u.Kind == models.StepNormal {
				mark = fmt.Sprintf("✓ %s kg × %s", rec.Weight, rec.Reps)
			}
			line += "  " + doneStyle.Render(mark)
		}
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	if u.Kind == models.StepNormal {
		sb.WriteString("\n  " + m.weight.View() + "  " + m.reps.View() + "\n")
	}
	if d.Resting {
		sb.WriteString("\n" + restStyle.Render(fmt.Sprintf("  Vila %ds", d.RestRemaining)) + "\n")
	}
	return sb.String()
}

func (m Model) renderList() string {
	l := m.view.List
	var sb strings.Builder
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %d/%d set", l.CompletedSets, l.TotalSets)) + "\n")

	n := 0
	for _, ex := range l.Exercises {
		sb.WriteString("\n" + sectionHeader.Render("  "+ex.Name) + "  " + dimStyle.Render(ex.TypeLabel+" · "+ex.RepsDisplay) + "\n")
		for _, row := range ex.Rows {
			box := "[ ]"
			if row.Completed {
				box = doneStyle.Render("[x]")
			}
			weight := row.Weight
			if weight == "" {
				weight = "-"
			}
			line := fmt.Sprintf("  %s %-3s %-8s %s kg", box, row.Label, row.Reps, weight)
			if row.Note != "" {
				line += "  " + dimStyle.Render(row.Note)
			}
			if n == m.cursor {
				line = selectedRowStyle.Render(line)
			}
			sb.WriteString(line + "\n")
			n++
		}
	}
	if m.editing {
		sb.WriteString("\n  " + m.weight.View() + "\n")
	}
	return sb.String()
}

func (m Model) renderSummary() string {
	r := m.record
	var sb strings.Builder
	sb.WriteString(sectionHeader.Render("  Bra jobbat!") + "\n\n")
	sb.WriteString(labelStyle.Render("  Tid:      ") + workout.FormatClock(time.Duration(r.Duration)*time.Second) + "\n")
	sb.WriteString(labelStyle.Render("  Övningar: ") + fmt.Sprint(r.Exercises) + "\n")
	sb.WriteString(labelStyle.Render("  Set:      ") + fmt.Sprint(r.SetCount()) + "\n")
	if r.Mode == models.ViewList {
		sb.WriteString(labelStyle.Render("  Klart:    ") + fmt.Sprintf("%d%%", r.CompletionPercent) + "\n")
	}
	return sb.String()
}

// Run starts the runner on the terminal and returns the finished workout,
// or nil when it was cancelled.
func Run(ctx context.Context, ctl Controller, ticks *Ticks) (*models.WorkoutRecord, error) {
	m, err := New(ctx, ctl, ticks)
	if err != nil {
		return nil, err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Record(), nil
}
