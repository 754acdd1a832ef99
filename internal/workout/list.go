package workout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/claude/dianafit/internal/models"
)

var ErrRowOutOfRange = errors.New("row index out of range")

// Row labels and notes shown in list mode.
const (
	warmupLabel = "S"
	warmupNote  = "Uppvärmning"
	startNote   = "Startset"

	defaultSets         = 3
	defaultReps         = "8-12"
	defaultSupersetReps = "10"
	defaultRepsDisplay  = "8 - 12 reps"
)

// WeightMemory remembers the last weight entered per exercise name and row
// index. Exercises that share a name share memory.
type WeightMemory interface {
	Weight(exercise string, row int) string
	SetWeight(exercise string, row int, weight string)
}

// WeightKey is the storage key for an exercise row's remembered weight.
func WeightKey(exercise string, row int) string {
	return exercise + "_" + strconv.Itoa(row)
}

// Row is one line of the list-mode checklist.
type Row struct {
	Label     string `json:"label"`
	Reps      string `json:"reps"`
	Note      string `json:"note,omitempty"`
	Weight    string `json:"weight"`
	Completed bool   `json:"completed"`
}

// ListExercise is an exercise expanded into checklist rows.
type ListExercise struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Kind        models.StepKind `json:"kind"`
	TypeLabel   string          `json:"typeLabel"`
	RepsDisplay string          `json:"repsDisplay"`
	Tip         string          `json:"tip,omitempty"`
	Rows        []Row           `json:"rows"`
}

// ListSession is the list-mode variant of a workout: a flat checklist of
// rows with weights but no timers or rest.
type ListSession struct {
	mu        sync.Mutex
	now       func() time.Time
	weights   WeightMemory
	passKey   string
	passName  string
	startTime time.Time
	exercises []ListExercise
	closed    bool
}

// StartList expands steps into rows, pre-filling weights from memory.
func StartList(passKey, passName string, steps []models.ExerciseStep, weights WeightMemory, now func() time.Time) *ListSession {
	if now == nil {
		now = time.Now
	}
	exercises := make([]ListExercise, 0, len(steps))
	for i, step := range steps {
		ex := expand(i, step)
		if weights != nil {
			for r := range ex.Rows {
				ex.Rows[r].Weight = weights.Weight(ex.Name, r)
			}
		}
		exercises = append(exercises, ex)
	}
	return &ListSession{
		now:       now,
		weights:   weights,
		passKey:   passKey,
		passName:  passName,
		startTime: now(),
		exercises: exercises,
	}
}

// PassKey returns the pass the session was started for.
func (l *ListSession) PassKey() string { return l.passKey }

// PassName returns the display name of the pass.
func (l *ListSession) PassName() string { return l.passName }

// Exercises returns a copy of the checklist.
func (l *ListSession) Exercises() []ListExercise {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ListExercise, len(l.exercises))
	for i, ex := range l.exercises {
		ex.Rows = append([]Row(nil), ex.Rows...)
		out[i] = ex
	}
	return out
}

// Toggle flips a row's completed flag and returns the new value.
func (l *ListSession) Toggle(ex, row int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.rowLocked(ex, row)
	if err != nil {
		return false, err
	}
	r.Completed = !r.Completed
	return r.Completed, nil
}

// SetWeight updates a row's weight and writes it to weight memory
// immediately.
func (l *ListSession) SetWeight(ex, row int, weight string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.rowLocked(ex, row)
	if err != nil {
		return err
	}
	r.Weight = weight
	if l.weights != nil {
		l.weights.SetWeight(l.exercises[ex].Name, row, weight)
	}
	return nil
}

// Totals returns the number of rows and completed rows.
func (l *ListSession) Totals() (total, completed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalsLocked()
}

func (l *ListSession) totalsLocked() (total, completed int) {
	for _, ex := range l.exercises {
		for _, r := range ex.Rows {
			total++
			if r.Completed {
				completed++
			}
		}
	}
	return total, completed
}

// Complete closes the session and returns its summary.
func (l *ListSession) Complete() (models.ListSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return models.ListSummary{}, ErrNotActive
	}
	l.closed = true
	end := l.now()
	total, completed := l.totalsLocked()
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return models.ListSummary{
		PassKey:           l.passKey,
		PassName:          l.passName,
		Date:              end,
		DurationMinutes:   int(end.Sub(l.startTime) / time.Minute),
		TotalSets:         total,
		CompletedSets:     completed,
		CompletionPercent: percent,
	}, nil
}

// Close discards the session without a summary.
func (l *ListSession) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// Closed reports whether the session has been completed or closed.
func (l *ListSession) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *ListSession) rowLocked(ex, row int) (*Row, error) {
	if l.closed {
		return nil, ErrNotActive
	}
	if ex < 0 || ex >= len(l.exercises) || row < 0 || row >= len(l.exercises[ex].Rows) {
		return nil, fmt.Errorf("%w: exercise %d row %d", ErrRowOutOfRange, ex, row)
	}
	return &l.exercises[ex].Rows[row], nil
}

func expand(index int, step models.ExerciseStep) ListExercise {
	name := step.DisplayName()
	ex := ListExercise{
		Key:  "ex_" + strconv.Itoa(index) + "_" + strings.Join(strings.Fields(name), "_"),
		Name: name,
		Kind: step.Kind(),
	}
	switch s := step.(type) {
	case models.NormalExercise:
		ex.TypeLabel = "Normalt set"
		ex.Tip = s.Tip
		ex.Rows = normalRows(s)
		ex.RepsDisplay = defaultRepsDisplay
		if s.Reps != "" {
			ex.RepsDisplay = s.Reps + " reps"
		}
	case models.Dropset:
		ex.TypeLabel = "Dropset"
		ex.Tip = s.Tip
		ex.Rows = dropsetRows(s)
		ex.RepsDisplay = dropsetRepsDisplay(s)
	case models.Superset:
		ex.TypeLabel = "Superset"
		ex.Rows = supersetRows(s)
		ex.RepsDisplay = supersetRepsDisplay(s)
	}
	return ex
}

func normalRows(e models.NormalExercise) []Row {
	sets := e.Sets
	if sets <= 0 {
		sets = defaultSets
	}
	reps := e.Reps
	if reps == "" {
		reps = defaultReps
	}
	warmupReps := reps
	if _, upper, ok := strings.Cut(reps, "-"); ok && upper != "" {
		warmupReps = upper
	}
	rows := []Row{{Label: warmupLabel, Reps: warmupReps, Note: warmupNote}}
	for i := range sets {
		rows = append(rows, Row{Label: strconv.Itoa(i + 1), Reps: reps})
	}
	return rows
}

func dropsetRows(d models.Dropset) []Row {
	if len(d.Drops) == 0 {
		return nil
	}
	startReps := d.Drops[0].Reps
	if startReps == "" {
		startReps = "18"
	}
	block := []Row{{Label: warmupLabel, Reps: startReps, Note: startNote}}
	for i, drop := range d.Drops {
		reps := drop.Reps
		if reps == "" {
			reps = "10"
		}
		block = append(block, Row{Label: strconv.Itoa(i + 1), Reps: reps, Note: drop.Note})
	}
	rounds := max(d.Rounds, 1)
	rows := make([]Row, 0, len(block)*rounds)
	for range rounds {
		rows = append(rows, block...)
	}
	return rows
}

func supersetRows(s models.Superset) []Row {
	rounds := max(s.Rounds, 1)
	var rows []Row
	for r := range rounds {
		for i, sub := range s.Exercises {
			reps := sub.Reps
			if reps == "" {
				reps = defaultSupersetReps
			}
			rows = append(rows, Row{
				Label: strconv.Itoa(r*len(s.Exercises) + i + 1),
				Reps:  reps,
				Note:  sub.Name,
			})
		}
	}
	return rows
}

func dropsetRepsDisplay(d models.Dropset) string {
	lo, hi := math.MaxInt, math.MinInt
	for _, drop := range d.Drops {
		n, err := strconv.Atoi(strings.TrimSpace(drop.Reps))
		if err != nil {
			continue
		}
		lo = min(lo, n)
		hi = max(hi, n)
	}
	if lo > hi {
		return defaultRepsDisplay
	}
	return fmt.Sprintf("%d - %d reps", lo, hi)
}

func supersetRepsDisplay(s models.Superset) string {
	var reps []string
	for _, sub := range s.Exercises {
		if sub.Reps != "" {
			reps = append(reps, sub.Reps)
		}
	}
	if len(reps) == 0 {
		return defaultRepsDisplay
	}
	return strings.Join(reps, " / ") + " reps"
}
