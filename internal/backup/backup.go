// Package backup reads and writes the JSON backup document used to move
// workout history between devices.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/claude/dianafit/internal/models"
)

// Version is written into every export.
const Version = "1.0.0"

// ErrInvalidBackup is returned for documents that fail validation. Nothing
// is imported when it is returned.
var ErrInvalidBackup = errors.New("invalid backup file")

// isoMillis matches the browser's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Document is the exported file.
type Document struct {
	Version        string                 `json:"version"`
	ExportDate     string                 `json:"exportDate"`
	WorkoutHistory []models.WorkoutRecord `json:"workoutHistory"`
	ActivePlan     int                    `json:"activePlan"`
	Theme          models.Theme           `json:"theme"`
}

// New builds an export document stamped with now.
func New(history []models.WorkoutRecord, activePlan int, theme models.Theme, now time.Time) Document {
	if history == nil {
		history = []models.WorkoutRecord{}
	}
	return Document{
		Version:        Version,
		ExportDate:     now.UTC().Format(isoMillis),
		WorkoutHistory: history,
		ActivePlan:     activePlan,
		Theme:          theme,
	}
}

// Filename returns the suggested download name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("diana-fitness-backup-%s.json", now.UTC().Format(models.DateLayout))
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// Import is a validated backup. ActivePlan and Theme are nil when the file
// did not set them.
type Import struct {
	Version        string
	ExportDate     string
	WorkoutHistory []models.WorkoutRecord
	ActivePlan     *int
	Theme          *models.Theme
}

// Read decodes and validates a backup. The document must carry a version
// and a workoutHistory array; activePlan must be 1-3 and theme a known
// value when present.
func Read(r io.Reader) (Import, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Import{}, fmt.Errorf("reading backup: %w", err)
	}

	var raw struct {
		Version        string          `json:"version"`
		ExportDate     string          `json:"exportDate"`
		WorkoutHistory json.RawMessage `json:"workoutHistory"`
		ActivePlan     json.RawMessage `json:"activePlan"`
		Theme          json.RawMessage `json:"theme"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Import{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if raw.Version == "" {
		return Import{}, fmt.Errorf("%w: missing version", ErrInvalidBackup)
	}
	history := bytes.TrimSpace(raw.WorkoutHistory)
	if len(history) == 0 || history[0] != '[' {
		return Import{}, fmt.Errorf("%w: workoutHistory must be an array", ErrInvalidBackup)
	}

	out := Import{Version: raw.Version, ExportDate: raw.ExportDate}
	if err := json.Unmarshal(history, &out.WorkoutHistory); err != nil {
		return Import{}, fmt.Errorf("%w: workoutHistory: %v", ErrInvalidBackup, err)
	}
	if out.WorkoutHistory == nil {
		out.WorkoutHistory = []models.WorkoutRecord{}
	}

	if present(raw.ActivePlan) {
		var plan int
		if err := json.Unmarshal(raw.ActivePlan, &plan); err != nil || plan < 1 || plan > 3 {
			return Import{}, fmt.Errorf("%w: activePlan must be 1, 2 or 3", ErrInvalidBackup)
		}
		out.ActivePlan = &plan
	}
	if present(raw.Theme) {
		var theme models.Theme
		if err := json.Unmarshal(raw.Theme, &theme); err != nil || !theme.Valid() {
			return Import{}, fmt.Errorf("%w: unknown theme %s", ErrInvalidBackup, raw.Theme)
		}
		out.Theme = &theme
	}
	return out, nil
}

// present reports whether a field was set to something other than null or
// an empty string.
func present(raw json.RawMessage) bool {
	v := string(bytes.TrimSpace(raw))
	return v != "" && v != "null" && v != `""`
}
