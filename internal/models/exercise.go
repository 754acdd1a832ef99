package models

import (
	"encoding/json"
	"fmt"
)

// StepKind discriminates the three exercise step shapes found in a pass.
type StepKind string

const (
	StepNormal   StepKind = "normal"
	StepDropset  StepKind = "dropset"
	StepSuperset StepKind = "superset"
)

// SupersetName is the display name of every superset unit.
const SupersetName = "Superset"

// ExerciseStep is one entry of a pass's exercise list. The set of
// implementations is closed: NormalExercise, Dropset and Superset.
type ExerciseStep interface {
	Kind() StepKind
	// DisplayName is the name shown for the step and used for weight memory keys.
	DisplayName() string
	exerciseStep()
}

// NormalExercise is a straight-sets exercise, e.g. 3 x 8-12.
type NormalExercise struct {
	Name string `json:"name" yaml:"name"`
	Sets int    `json:"sets" yaml:"sets"`
	Reps string `json:"reps" yaml:"reps"`
	Tip  string `json:"tip,omitempty" yaml:"tip"`
}

// Dropset is performed as Rounds repetitions of the Drops sequence.
type Dropset struct {
	Name   string `json:"name" yaml:"name"`
	Rounds int    `json:"rounds" yaml:"rounds"`
	Drops  []Drop `json:"drops" yaml:"drops"`
	Tip    string `json:"tip,omitempty" yaml:"tip"`
}

// Drop is one weight drop inside a dropset.
type Drop struct {
	Reps string `json:"reps" yaml:"reps"`
	Note string `json:"note" yaml:"note"`
}

// Superset is performed as Rounds passes over its sub-exercises.
type Superset struct {
	Rounds    int                `json:"rounds" yaml:"rounds"`
	Exercises []SupersetExercise `json:"exercises" yaml:"exercises"`
}

// SupersetExercise is one member of a superset.
type SupersetExercise struct {
	Name string `json:"name" yaml:"name"`
	Reps string `json:"reps" yaml:"reps"`
}

func (NormalExercise) Kind() StepKind { return StepNormal }
func (Dropset) Kind() StepKind        { return StepDropset }
func (Superset) Kind() StepKind       { return StepSuperset }

func (e NormalExercise) DisplayName() string { return e.Name }
func (d Dropset) DisplayName() string        { return d.Name }
func (Superset) DisplayName() string         { return SupersetName }

func (NormalExercise) exerciseStep() {}
func (Dropset) exerciseStep()        {}
func (Superset) exerciseStep()       {}

func (e NormalExercise) MarshalJSON() ([]byte, error) {
	type plain NormalExercise
	return json.Marshal(struct {
		Type StepKind `json:"type"`
		plain
	}{StepNormal, plain(e)})
}

func (d Dropset) MarshalJSON() ([]byte, error) {
	type plain Dropset
	return json.Marshal(struct {
		Type StepKind `json:"type"`
		plain
	}{StepDropset, plain(d)})
}

func (s Superset) MarshalJSON() ([]byte, error) {
	type plain Superset
	return json.Marshal(struct {
		Type StepKind `json:"type"`
		Name string   `json:"name"`
		plain
	}{StepSuperset, SupersetName, plain(s)})
}

// Steps is an exercise list that can be decoded from JSON using the
// "type" discriminator. A missing type means a normal exercise.
type Steps []ExerciseStep

func (s *Steps) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	steps := make(Steps, 0, len(raw))
	for i, r := range raw {
		step, err := DecodeStep(r)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	*s = steps
	return nil
}

// DecodeStep decodes a single JSON-encoded exercise step.
func DecodeStep(data []byte) (ExerciseStep, error) {
	var head struct {
		Type StepKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case StepNormal, "":
		var e NormalExercise
		err := json.Unmarshal(data, &e)
		return e, err
	case StepDropset:
		var d Dropset
		err := json.Unmarshal(data, &d)
		return d, err
	case StepSuperset:
		var s Superset
		err := json.Unmarshal(data, &s)
		return s, err
	default:
		return nil, fmt.Errorf("unknown step type %q", head.Type)
	}
}

// Pass is one training session of a plan, keyed like "pass-1-gym".
// Duration is the planned length in minutes.
type Pass struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Location  string `json:"location"`
	Duration  int    `json:"duration"`
	Exercises Steps  `json:"exercises"`
}

// Plan is a training plan with its passes in display order.
type Plan struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Equipment   []string `json:"equipment"`
	Sessions    int      `json:"sessions"`
	Passes      []Pass   `json:"passes"`
}

// RestGuideline maps a rep range to a recommended rest.
type RestGuideline struct {
	Reps string `json:"reps" yaml:"reps"`
	Rest string `json:"rest" yaml:"rest"`
}

// WarmupOption is one suggested warm-up activity, e.g. {"Roddmaskin", "2 km minst"}.
type WarmupOption struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Nutrition holds the daily targets shown next to the recipes.
type Nutrition struct {
	DailyCalories int            `json:"dailyCalories" yaml:"daily_calories"`
	Protein       int            `json:"protein" yaml:"protein"`
	Carbs         int            `json:"carbs" yaml:"carbs"`
	Fat           int            `json:"fat" yaml:"fat"`
	MealCalories  map[string]int `json:"mealCalories" yaml:"meal_calories"`
}
