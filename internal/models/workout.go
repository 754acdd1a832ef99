package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-day layout used by workout records.
const DateLayout = "2006-01-02"

// ViewMode selects the session variant used when a pass is started.
type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewDetailed ViewMode = "detailed"
)

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool { return m == ViewList || m == ViewDetailed }

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeAuto, ThemeLight, ThemeDark:
		return true
	}
	return false
}

// WorkoutRecord is the persisted result of a finished session.
// JSON field names match the backup file format.
type WorkoutRecord struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	PassKey       string        `json:"passKey"`
	PassName      string        `json:"passName"`
	Duration      int           `json:"duration"`
	Exercises     int           `json:"exercises"`
	CompletedSets CompletedSets `json:"completedSets"`
	CompletedAt   EpochMillis   `json:"completedAt"`

	// Set by list-mode sessions only.
	Mode              ViewMode `json:"mode,omitempty"`
	TotalSets         int      `json:"totalSets,omitempty"`
	CompletedSetCount int      `json:"completedSetCount,omitempty"`
	CompletionPercent int      `json:"completionPercent,omitempty"`
}

// Day parses the record's calendar date.
func (r WorkoutRecord) Day() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}

// SetCount returns the number of completed sets across all units.
func (r WorkoutRecord) SetCount() int {
	if r.CompletedSetCount > 0 {
		return r.CompletedSetCount
	}
	n := 0
	for _, sets := range r.CompletedSets {
		n += len(sets)
	}
	return n
}

// SetRecord is one completed set. Weight and Reps are only set for
// normal exercises.
type SetRecord struct {
	Weight      FlexString  `json:"weight,omitempty"`
	Reps        FlexString  `json:"reps,omitempty"`
	CompletedAt EpochMillis `json:"completedAt"`
}

// CompletedSets maps unit index to set index to record.
type CompletedSets map[int]map[int]SetRecord

// UnmarshalJSON accepts both object and sparse-array encodings of the
// per-unit set collection; null array slots are skipped.
func (c *CompletedSets) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	res := make(CompletedSets, len(outer))
	for k, raw := range outer {
		unit, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("completed sets: unit index %q: %w", k, err)
		}
		sets, err := decodeSetRecords(raw)
		if err != nil {
			return fmt.Errorf("completed sets: unit %d: %w", unit, err)
		}
		res[unit] = sets
	}
	*c = res
	return nil
}

func decodeSetRecords(raw json.RawMessage) (map[int]SetRecord, error) {
	sets := make(map[int]SetRecord)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []*SetRecord
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, err
		}
		for i, r := range arr {
			if r != nil {
				sets[i] = *r
			}
		}
		return sets, nil
	}
	var obj map[string]SetRecord
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	for k, r := range obj {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("set index %q: %w", k, err)
		}
		sets[idx] = r
	}
	return sets, nil
}

// FlexString decodes from either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
	}
	return nil
}

// EpochMillis is a timestamp encoded in JSON as Unix milliseconds.
type EpochMillis struct {
	time.Time
}

// At wraps t.
func At(t time.Time) EpochMillis { return EpochMillis{t} }

func (e EpochMillis) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(e.UnixMilli(), 10)), nil
}

// UnmarshalJSON accepts Unix milliseconds or an RFC 3339 string.
func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		e.Time = time.Time{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("cannot parse timestamp %q: %w", s, err)
		}
		e.Time = t
		return nil
	}
	ms, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return fmt.Errorf("cannot parse timestamp %s: %w", trimmed, err)
	}
	if ms == 0 {
		e.Time = time.Time{}
		return nil
	}
	e.Time = time.UnixMilli(ms)
	return nil
}

// ListSummary is emitted when a list-mode session is finished.
type ListSummary struct {
	PassKey           string    `json:"passKey"`
	PassName          string    `json:"passName"`
	Date              time.Time `json:"date"`
	DurationMinutes   int       `json:"duration"`
	TotalSets         int       `json:"totalSets"`
	CompletedSets     int       `json:"completedSets"`
	CompletionPercent int       `json:"completionPercent"`
}
