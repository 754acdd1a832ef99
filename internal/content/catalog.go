// Package content serves the static recipes, training plans and guidance
// shown by the app. The catalog is embedded and may be overridden by a
// YAML file on disk.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/claude/dianafit/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultPlanID is used when a plan id is unknown.
const DefaultPlanID = 3

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is an immutable set of content.
type Catalog struct {
	nutrition      models.Nutrition
	plans          []models.Plan
	recipes        []models.Recipe
	restGuidelines []models.RestGuideline
	warmups        []models.WarmupOption
}

type catalogDoc struct {
	Nutrition      models.Nutrition       `yaml:"nutrition"`
	Plans          []planDoc              `yaml:"plans"`
	Recipes        []models.Recipe        `yaml:"recipes"`
	RestGuidelines []models.RestGuideline `yaml:"rest_guidelines"`
	Warmups        []models.WarmupOption  `yaml:"warmups"`
}

type planDoc struct {
	ID          int       `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Type        string    `yaml:"type"`
	Equipment   []string  `yaml:"equipment"`
	Sessions    int       `yaml:"sessions"`
	Passes      []passDoc `yaml:"passes"`
}

type passDoc struct {
	Key       string    `yaml:"key"`
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	Location  string    `yaml:"location"`
	Duration  int       `yaml:"duration"`
	Exercises []stepDoc `yaml:"exercises"`
}

// stepDoc is the union of all step fields; Type selects the shape.
type stepDoc struct {
	Type      string                    `yaml:"type"`
	Name      string                    `yaml:"name"`
	Sets      int                       `yaml:"sets"`
	Reps      string                    `yaml:"reps"`
	Tip       string                    `yaml:"tip"`
	Rounds    int                       `yaml:"rounds"`
	Drops     []models.Drop             `yaml:"drops"`
	Exercises []models.SupersetExercise `yaml:"exercises"`
}

func (d stepDoc) step() (models.ExerciseStep, error) {
	switch models.StepKind(d.Type) {
	case models.StepNormal, "":
		return models.NormalExercise{Name: d.Name, Sets: d.Sets, Reps: d.Reps, Tip: d.Tip}, nil
	case models.StepDropset:
		return models.Dropset{Name: d.Name, Rounds: d.Rounds, Drops: d.Drops, Tip: d.Tip}, nil
	case models.StepSuperset:
		return models.Superset{Rounds: d.Rounds, Exercises: d.Exercises}, nil
	}
	return nil, fmt.Errorf("unknown step type %q", d.Type)
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("content: embedded catalog: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	if len(doc.Plans) == 0 || len(doc.Recipes) == 0 {
		return nil, fmt.Errorf("catalog needs at least one plan and one recipe")
	}

	c := &Catalog{
		nutrition:      doc.Nutrition,
		recipes:        doc.Recipes,
		restGuidelines: doc.RestGuidelines,
		warmups:        doc.Warmups,
	}

	planIDs := make(map[int]bool)
	for _, pd := range doc.Plans {
		if planIDs[pd.ID] {
			return nil, fmt.Errorf("duplicate plan id %d", pd.ID)
		}
		planIDs[pd.ID] = true

		plan := models.Plan{
			ID:          pd.ID,
			Name:        pd.Name,
			Description: pd.Description,
			Type:        pd.Type,
			Equipment:   pd.Equipment,
			Sessions:    pd.Sessions,
		}
		passKeys := make(map[string]bool)
		for _, ps := range pd.Passes {
			if ps.Key == "" || passKeys[ps.Key] {
				return nil, fmt.Errorf("plan %d: missing or duplicate pass key %q", pd.ID, ps.Key)
			}
			passKeys[ps.Key] = true
			pass := models.Pass{Key: ps.Key, Name: ps.Name, Type: ps.Type, Location: ps.Location, Duration: ps.Duration}
			for i, sd := range ps.Exercises {
				step, err := sd.step()
				if err != nil {
					return nil, fmt.Errorf("plan %d pass %s exercise %d: %w", pd.ID, ps.Key, i, err)
				}
				pass.Exercises = append(pass.Exercises, step)
			}
			plan.Passes = append(plan.Passes, pass)
		}
		c.plans = append(c.plans, plan)
	}
	slices.SortStableFunc(c.plans, func(a, b models.Plan) int { return a.ID - b.ID })

	recipeIDs := make(map[string]bool)
	for _, r := range c.recipes {
		if r.ID == "" || recipeIDs[r.ID] {
			return nil, fmt.Errorf("missing or duplicate recipe id %q", r.ID)
		}
		recipeIDs[r.ID] = true
		if !r.Category.Valid() {
			return nil, fmt.Errorf("recipe %s: unknown category %q", r.ID, r.Category)
		}
	}
	return c, nil
}

// Plans returns all plans ordered by id.
func (c *Catalog) Plans() []models.Plan { return slices.Clone(c.plans) }

// Plan returns the plan with id.
func (c *Catalog) Plan(id int) (models.Plan, bool) {
	i := slices.IndexFunc(c.plans, func(p models.Plan) bool { return p.ID == id })
	if i < 0 {
		return models.Plan{}, false
	}
	return c.plans[i], true
}

// PlanExercises returns the ordered passes of a plan. Unknown ids fall back
// to DefaultPlanID.
func (c *Catalog) PlanExercises(planID int) []models.Pass {
	p, ok := c.Plan(planID)
	if !ok {
		p, _ = c.Plan(DefaultPlanID)
	}
	return slices.Clone(p.Passes)
}

// Pass looks up a pass by key within a plan.
func (c *Catalog) Pass(planID int, key string) (models.Pass, bool) {
	for _, p := range c.PlanExercises(planID) {
		if p.Key == key {
			return p, true
		}
	}
	return models.Pass{}, false
}

// AllRecipes returns every recipe in catalog order.
func (c *Catalog) AllRecipes() []models.Recipe { return slices.Clone(c.recipes) }

// RecipesByCategory filters recipes. An empty category returns all.
func (c *Catalog) RecipesByCategory(cat models.Category) []models.Recipe {
	if cat == "" {
		return c.AllRecipes()
	}
	var out []models.Recipe
	for _, r := range c.recipes {
		if r.Category == cat {
			out = append(out, r)
		}
	}
	return out
}

// RecipeByID looks up a recipe.
func (c *Catalog) RecipeByID(id string) (models.Recipe, bool) {
	i := slices.IndexFunc(c.recipes, func(r models.Recipe) bool { return r.ID == id })
	if i < 0 {
		return models.Recipe{}, false
	}
	return c.recipes[i], true
}

func (c *Catalog) RestGuidelines() []models.RestGuideline { return slices.Clone(c.restGuidelines) }

func (c *Catalog) WarmupOptions() []models.WarmupOption { return slices.Clone(c.warmups) }

func (c *Catalog) Nutrition() models.Nutrition { return c.nutrition }
