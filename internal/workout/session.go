package workout

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/claude/dianafit/internal/models"
)

// DefaultRestDuration is the rest countdown started after a set.
const DefaultRestDuration = 60 * time.Second

var (
	ErrNotActive      = errors.New("no workout in progress")
	ErrAlreadyStarted = errors.New("workout already started")
	ErrSetOutOfRange  = errors.New("set index out of range")
)

// State is the lifecycle state of a detailed session.
type State int

const (
	NotStarted State = iota
	InProgress
	Resting
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Resting:
		return "resting"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) active() bool { return s == InProgress || s == Resting }

// Direction moves the session between units.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Hooks are called from timer goroutines after the session lock has been
// released. Any of them may be nil.
type Hooks struct {
	OnElapsed  func(elapsed time.Duration)
	OnRestTick func(remaining int)
	OnRestDone func()
}

// Options configure a Session. Zero values select the wall clock, a
// TickerScheduler and DefaultRestDuration.
type Options struct {
	Now          func() time.Time
	Scheduler    Scheduler
	RestDuration time.Duration
	Hooks        Hooks
}

// SetInput is what the user entered for a set. Empty fields fall back to
// defaults.
type SetInput struct {
	Weight string
	Reps   string
}

// Progress is a point-in-time view of a session.
type Progress struct {
	State               State
	PassKey             string
	PassName            string
	CurrentIndex        int
	TotalUnits          int
	Current             Unit
	CompletedForCurrent map[int]models.SetRecord
	Completed           models.CompletedSets
	Resting             bool
	RestRemaining       int
	Elapsed             time.Duration
}

// Session is a detailed workout session. All methods are safe for
// concurrent use.
type Session struct {
	mu           sync.Mutex
	now          func() time.Time
	sched        Scheduler
	restDuration time.Duration
	hooks        Hooks

	state     State
	passKey   string
	passName  string
	startTime time.Time
	endTime   time.Time
	units     []Unit
	current   int
	completed models.CompletedSets

	restRemaining int
	restGen       int
	stopRest      func()
	stopElapsed   func()
}

// New creates a session in the NotStarted state.
func New(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.RestDuration <= 0 {
		opts.RestDuration = DefaultRestDuration
	}
	return &Session{
		now:          opts.Now,
		sched:        opts.Scheduler,
		restDuration: opts.RestDuration,
		hooks:        opts.Hooks,
	}
}

// Start begins tracking units and starts the elapsed clock.
func (s *Session) Start(passKey, passName string, units []Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotStarted {
		return ErrAlreadyStarted
	}
	s.passKey = passKey
	s.passName = passName
	s.units = units
	s.current = 0
	s.completed = make(models.CompletedSets)
	s.startTime = s.now()
	s.state = InProgress
	s.stopElapsed = s.sched.Every(time.Second, s.elapsedTick)
	return nil
}

// CompleteSet records set setIndex of the current unit. It returns false
// without changing anything when the set is already recorded. A rest
// countdown starts unless this was the unit's last remaining set.
func (s *Session) CompleteSet(setIndex int, in SetInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.active() {
		return false, ErrNotActive
	}
	if len(s.units) == 0 {
		return false, ErrSetOutOfRange
	}
	u := s.units[s.current]
	if setIndex < 0 || setIndex >= u.TotalSets {
		return false, fmt.Errorf("%w: %d of %d", ErrSetOutOfRange, setIndex, u.TotalSets)
	}

	sets := s.completed[s.current]
	if sets == nil {
		sets = make(map[int]models.SetRecord)
		s.completed[s.current] = sets
	}
	if _, done := sets[setIndex]; done {
		return false, nil
	}

	rec := models.SetRecord{CompletedAt: models.At(s.now())}
	if u.Kind == models.StepNormal {
		rec.Weight = models.FlexString(in.Weight)
		if rec.Weight == "" {
			rec.Weight = "0"
		}
		rec.Reps = models.FlexString(in.Reps)
		if rec.Reps == "" {
			rec.Reps = models.FlexString(u.Reps)
		}
	}
	sets[setIndex] = rec

	if len(sets) < u.TotalSets {
		s.startRestLocked()
	}
	return true, nil
}

// Navigate moves to the previous or next unit. Moving past either end is
// refused and reported as false.
func (s *Session) Navigate(dir Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.active() {
		return false
	}
	next := s.current + int(dir)
	if next < 0 || next >= len(s.units) {
		return false
	}
	s.current = next
	return true
}

// SkipRest ends the rest countdown early. It is a no-op when not resting.
func (s *Session) SkipRest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopRestLocked()
}

// Complete finishes the session and returns its record. Unfinished sets
// are allowed.
func (s *Session) Complete() (models.WorkoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.active() {
		return models.WorkoutRecord{}, ErrNotActive
	}
	s.stopTimersLocked()
	s.state = Completed
	end := s.now()
	s.endTime = end

	return models.WorkoutRecord{
		ID:            fmt.Sprintf("workout-%d", end.UnixMilli()),
		Date:          end.Format(models.DateLayout),
		PassKey:       s.passKey,
		PassName:      s.passName,
		Duration:      int(end.Sub(s.startTime) / time.Second),
		Exercises:     len(s.units),
		CompletedSets: cloneCompleted(s.completed),
		CompletedAt:   models.At(end),
		Mode:          models.ViewDetailed,
	}, nil
}

// Cancel stops both timers and discards the session without a record.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.active() {
		return ErrNotActive
	}
	s.stopTimersLocked()
	s.state = Cancelled
	s.endTime = s.now()
	s.completed = nil
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns a snapshot of the session.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{
		State:         s.state,
		PassKey:       s.passKey,
		PassName:      s.passName,
		CurrentIndex:  s.current,
		TotalUnits:    len(s.units),
		Completed:     cloneCompleted(s.completed),
		Resting:       s.state == Resting,
		RestRemaining: s.restRemaining,
		Elapsed:       s.elapsedLocked(),
	}
	if s.current < len(s.units) {
		p.Current = s.units[s.current]
	}
	p.CompletedForCurrent = p.Completed[s.current]
	if p.CompletedForCurrent == nil {
		p.CompletedForCurrent = map[int]models.SetRecord{}
	}
	return p
}

func (s *Session) elapsedLocked() time.Duration {
	switch s.state {
	case NotStarted:
		return 0
	case Completed, Cancelled:
		return s.endTime.Sub(s.startTime)
	}
	return s.now().Sub(s.startTime)
}

func (s *Session) elapsedTick() {
	s.mu.Lock()
	if !s.state.active() {
		s.mu.Unlock()
		return
	}
	elapsed := s.now().Sub(s.startTime)
	hook := s.hooks.OnElapsed
	s.mu.Unlock()

	if hook != nil {
		hook(elapsed)
	}
}

func (s *Session) startRestLocked() {
	if s.stopRest != nil {
		s.stopRest()
	}
	s.restGen++
	gen := s.restGen
	s.restRemaining = int(s.restDuration / time.Second)
	s.state = Resting
	s.stopRest = s.sched.Every(time.Second, func() { s.restTick(gen) })
}

func (s *Session) restTick(gen int) {
	s.mu.Lock()
	if gen != s.restGen || s.state != Resting {
		s.mu.Unlock()
		return
	}
	s.restRemaining--
	remaining := s.restRemaining
	done := remaining <= 0
	if done {
		s.stopRestLocked()
	}
	tick, fin := s.hooks.OnRestTick, s.hooks.OnRestDone
	s.mu.Unlock()

	if tick != nil {
		tick(remaining)
	}
	if done && fin != nil {
		fin()
	}
}

func (s *Session) stopRestLocked() {
	if s.stopRest != nil {
		s.stopRest()
		s.stopRest = nil
	}
	s.restGen++
	s.restRemaining = 0
	if s.state == Resting {
		s.state = InProgress
	}
}

func (s *Session) stopTimersLocked() {
	s.stopRestLocked()
	if s.stopElapsed != nil {
		s.stopElapsed()
		s.stopElapsed = nil
	}
}

func cloneCompleted(c models.CompletedSets) models.CompletedSets {
	out := make(models.CompletedSets, len(c))
	for unit, sets := range c {
		m := make(map[int]models.SetRecord, len(sets))
		for i, r := range sets {
			m[i] = r
		}
		out[unit] = m
	}
	return out
}
