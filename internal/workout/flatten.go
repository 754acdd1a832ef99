// Package workout runs active workout sessions: the detailed per-set state
// machine with its rest and elapsed timers, and the lighter list-mode
// checklist.
package workout

import (
	"fmt"

	"github.com/claude/dianafit/internal/models"
)

// Unit is one trackable exercise of a session.
type Unit struct {
	Kind      models.StepKind `json:"kind"`
	Name      string          `json:"name"`
	TotalSets int             `json:"totalSets"`
	// Reps is the target reps of a normal exercise, used as the default
	// when a set is completed without reps.
	Reps string              `json:"reps,omitempty"`
	Step models.ExerciseStep `json:"step"`
}

// Flatten turns a pass's exercise list into one trackable unit per step,
// in order. Normal exercises track Sets sets; dropsets and supersets track
// one set per round.
func Flatten(steps []models.ExerciseStep) []Unit {
	units := make([]Unit, 0, len(steps))
	for _, step := range steps {
		units = append(units, unitFor(step))
	}
	return units
}

func unitFor(step models.ExerciseStep) Unit {
	switch s := step.(type) {
	case models.NormalExercise:
		return Unit{Kind: models.StepNormal, Name: s.Name, TotalSets: s.Sets, Reps: s.Reps, Step: s}
	case models.Dropset:
		return Unit{Kind: models.StepDropset, Name: s.Name, TotalSets: s.Rounds, Step: s}
	case models.Superset:
		return Unit{Kind: models.StepSuperset, Name: models.SupersetName, TotalSets: s.Rounds, Step: s}
	default:
		panic(fmt.Sprintf("workout: unhandled exercise step %T", step))
	}
}
