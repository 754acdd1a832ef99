package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/claude/dianafit/internal/workout"
)

type elapsedMsg struct{ elapsed time.Duration }

type restTickMsg struct{ remaining int }

type restDoneMsg struct{}

// Ticks turns session timer callbacks into Bubble Tea messages. Pass
// Hooks() to the tracker before the program starts.
type Ticks struct {
	ch chan tea.Msg
}

func NewTicks() *Ticks {
	return &Ticks{ch: make(chan tea.Msg, 16)}
}

// Hooks returns session hooks that never block the timer goroutines; ticks
// are dropped while the UI is behind.
func (t *Ticks) Hooks() workout.Hooks {
	return workout.Hooks{
		OnElapsed:  func(d time.Duration) { t.send(elapsedMsg{d}) },
		OnRestTick: func(remaining int) { t.send(restTickMsg{remaining}) },
		OnRestDone: func() { t.send(restDoneMsg{}) },
	}
}

func (t *Ticks) send(msg tea.Msg) {
	select {
	case t.ch <- msg:
	default:
	}
}

func (t *Ticks) wait() tea.Cmd {
	return func() tea.Msg { return <-t.ch }
}
