package workout

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/dianafit/internal/models"
)

type mapWeights map[string]string

func (m mapWeights) Weight(exercise string, row int) string { return m[WeightKey(exercise, row)] }
func (m mapWeights) SetWeight(exercise string, row int, w string) {
	m[WeightKey(exercise, row)] = w
}

func labels(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var listPass = []models.ExerciseStep{
	models.NormalExercise{Name: "Knäböj", Sets: 3, Reps: "8-12"},
	models.Dropset{Name: "Latsdrag", Rounds: 2, Drops: []models.Drop{{Reps: "12", Note: "tung"}, {Reps: "8", Note: "lätt"}}},
	models.Superset{Rounds: 2, Exercises: []models.SupersetExercise{{Name: "Armhävningar", Reps: "10"}, {Name: "Plankan", Reps: "30s"}}},
	models.NormalExercise{Name: "Utfall"},
}

// TestListRowExpansion verifies the row layout for each exercise shape.
func TestListRowExpansion(t *testing.T) {
	l := StartList("pass-1-gym", "Pass 1", listPass, nil, nil)
	ex := l.Exercises()

	normal := ex[0]
	if got := labels(normal.Rows); !equalStrings(got, []string{"S", "1", "2", "3"}) {
		t.Errorf("normal labels = %v", got)
	}
	if normal.Rows[0].Reps != "12" || normal.Rows[0].Note != "Uppvärmning" {
		t.Errorf("warm-up row = %+v, want reps 12 note Uppvärmning", normal.Rows[0])
	}
	if normal.Rows[1].Reps != "8-12" {
		t.Errorf("working row reps = %q, want 8-12", normal.Rows[1].Reps)
	}
	if normal.Key != "ex_0_Knäböj" || normal.TypeLabel != "Normalt set" || normal.RepsDisplay != "8-12 reps" {
		t.Errorf("normal header = %+v", normal)
	}

	drop := ex[1]
	if got := labels(drop.Rows); !equalStrings(got, []string{"S", "1", "2", "S", "1", "2"}) {
		t.Errorf("dropset labels = %v", got)
	}
	if drop.Rows[0].Reps != "12" || drop.Rows[0].Note != "Startset" || drop.Rows[2].Note != "lätt" {
		t.Errorf("dropset rows = %+v", drop.Rows)
	}
	if drop.RepsDisplay != "8 - 12 reps" {
		t.Errorf("dropset reps display = %q", drop.RepsDisplay)
	}

	super := ex[2]
	if got := labels(super.Rows); !equalStrings(got, []string{"1", "2", "3", "4"}) {
		t.Errorf("superset labels = %v", got)
	}
	if super.Rows[3].Note != "Plankan" || super.Rows[3].Reps != "30s" {
		t.Errorf("superset row 3 = %+v", super.Rows[3])
	}
	if super.Name != "Superset" || super.RepsDisplay != "10 / 30s reps" {
		t.Errorf("superset header = %+v", super)
	}

	defaults := ex[3]
	if len(defaults.Rows) != 4 || defaults.Rows[1].Reps != "8-12" || defaults.RepsDisplay != "8 - 12 reps" {
		t.Errorf("default exercise = %+v", defaults)
	}
}

// TestListDropsetWithoutDrops verifies a dropset with no drops has no rows.
func TestListDropsetWithoutDrops(t *testing.T) {
	l := StartList("p", "P", []models.ExerciseStep{models.Dropset{Name: "X", Rounds: 3}}, nil, nil)
	if rows := l.Exercises()[0].Rows; len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

// TestListWeightMemory verifies weights persist immediately and pre-fill
// the next session, keyed by exercise name and row.
func TestListWeightMemory(t *testing.T) {
	mem := mapWeights{}
	l := StartList("p", "P", listPass, mem, nil)
	if err := l.SetWeight(0, 2, "60"); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}
	if err := l.SetWeight(2, 1, "0"); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}
	if mem["Knäböj_2"] != "60" || mem["Superset_1"] != "0" {
		t.Errorf("memory = %v", mem)
	}

	next := StartList("p", "P", listPass, mem, nil)
	if got := next.Exercises()[0].Rows[2].Weight; got != "60" {
		t.Errorf("pre-filled weight = %q, want 60", got)
	}
}

// TestListToggleAndSummary verifies toggling and the completion summary.
func TestListToggleAndSummary(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC)}
	steps := []models.ExerciseStep{models.NormalExercise{Name: "A", Sets: 2, Reps: "10"}}
	l := StartList("pass-2-home", "Pass 2", steps, nil, clock.Now)

	for _, row := range []int{0, 1} {
		done, err := l.Toggle(0, row)
		if err != nil || !done {
			t.Fatalf("Toggle(0, %d) = %v, %v", row, done, err)
		}
	}
	if done, _ := l.Toggle(0, 1); done {
		t.Error("second toggle should uncheck")
	}
	if _, err := l.Toggle(0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Toggle(1, 0); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("Toggle out of range err = %v, want ErrRowOutOfRange", err)
	}

	clock.advance(42*time.Minute + 50*time.Second)
	sum, err := l.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if sum.TotalSets != 3 || sum.CompletedSets != 2 || sum.CompletionPercent != 67 {
		t.Errorf("summary = %+v, want 2 of 3 (67%%)", sum)
	}
	if sum.DurationMinutes != 42 {
		t.Errorf("duration = %d, want 42", sum.DurationMinutes)
	}
	if _, err := l.Complete(); !errors.Is(err, ErrNotActive) {
		t.Errorf("second Complete err = %v, want ErrNotActive", err)
	}
	if _, err := l.Toggle(0, 0); !errors.Is(err, ErrNotActive) {
		t.Errorf("Toggle after complete err = %v, want ErrNotActive", err)
	}
}
