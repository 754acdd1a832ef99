// Package stats derives the calendar view and workout statistics from the
// stored history.
package stats

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/claude/dianafit/internal/models"
)

var monthNames = [12]string{
	"Januari", "Februari", "Mars", "April", "Maj", "Juni",
	"Juli", "Augusti", "September", "Oktober", "November", "December",
}

// MonthName returns the Swedish name of m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// Month identifies a calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous month, wrapping into the previous year.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month, wrapping into the next year.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Label is the display heading, e.g. "Oktober 2026".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", MonthName(m.Month), m.Year)
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) contains(d time.Time) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Day is one cell of the month grid.
type Day struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Today    bool   `json:"today"`
	Workouts int    `json:"workouts"`
}

// Grid is a Monday-first month calendar. Leading is the number of empty
// cells before the 1st.
type Grid struct {
	Month   Month  `json:"month"`
	Label   string `json:"label"`
	Leading int    `json:"leading"`
	Days    []Day  `json:"days"`
}

// BuildGrid lays out m with per-day workout counts. today is compared by
// calendar date in its own location.
func BuildGrid(history []models.WorkoutRecord, m Month, today time.Time) Grid {
	counts := make(map[string]int)
	for _, r := range history {
		counts[r.Date]++
	}

	first := m.first()
	// time.Weekday is Sunday-first.
	leading := (int(first.Weekday()) + 6) % 7
	todayStr := today.Format(models.DateLayout)

	g := Grid{Month: m, Label: m.Label(), Leading: leading}
	for d := first; d.Month() == m.Month; d = d.AddDate(0, 0, 1) {
		date := d.Format(models.DateLayout)
		g.Days = append(g.Days, Day{
			Date:     date,
			Day:      d.Day(),
			Today:    date == todayStr,
			Workouts: counts[date],
		})
	}
	return g
}

// Trend compares a month with the month before.
type Trend struct {
	Value    float64 `json:"value"`
	Positive bool    `json:"positive"`
	Label    string  `json:"label"`
}

// Summary is the statistics panel for a month.
type Summary struct {
	Period         string  `json:"period"`
	Workouts       int     `json:"workouts"`
	TotalHours     float64 `json:"totalHours"`
	AverageMinutes int     `json:"averageMinutes"`
	Streak         int     `json:"streak"`
	WorkoutsTrend  Trend   `json:"workoutsTrend"`
	HoursTrend     Trend   `json:"hoursTrend"`
}

// Summarize computes the month summary, trends against the previous month
// and the current streak.
func Summarize(history []models.WorkoutRecord, m Month, today time.Time) Summary {
	count, seconds := monthTotals(history, m)
	prevCount, prevSeconds := monthTotals(history, m.Prev())

	s := Summary{
		Period:     MonthName(m.Month),
		Workouts:   count,
		TotalHours: round1(float64(seconds) / 3600),
		Streak:     Streak(history, today),
	}
	if count > 0 {
		s.AverageMinutes = int(math.Round(float64(seconds) / 60 / float64(count)))
	}

	diff := count - prevCount
	s.WorkoutsTrend = Trend{Value: float64(diff), Positive: diff >= 0, Label: strconv.Itoa(abs(diff))}

	hours := float64(seconds-prevSeconds) / 3600
	s.HoursTrend = Trend{
		Value:    hours,
		Positive: hours >= 0,
		Label:    strconv.FormatFloat(math.Abs(hours), 'f', 1, 64) + "h",
	}
	return s
}

func monthTotals(history []models.WorkoutRecord, m Month) (count, seconds int) {
	for _, r := range history {
		d, err := r.Day()
		if err != nil || !m.contains(d) {
			continue
		}
		count++
		seconds += r.Duration
	}
	return count, seconds
}

// Streak counts consecutive workout days ending today or yesterday.
// Several workouts on one day count once.
func Streak(history []models.WorkoutRecord, today time.Time) int {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, r := range history {
		d, err := r.Day()
		if err != nil || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if daysBetween(days[0], t) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// Activity is one entry of the recent activity list.
type Activity struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Day             int    `json:"day"`
	MonthShort      string `json:"monthShort"`
	PassName        string `json:"passName"`
	DurationMinutes int    `json:"durationMinutes"`
	Exercises       int    `json:"exercises"`
}

// RecentLimit is the length of the recent activity list.
const RecentLimit = 5

// Recent returns up to n of the newest records, assuming history is newest
// first.
func Recent(history []models.WorkoutRecord, n int) []Activity {
	out := make([]Activity, 0, min(n, len(history)))
	for _, r := range history[:min(n, len(history))] {
		a := Activity{
			ID:              r.ID,
			Date:            r.Date,
			PassName:        r.PassName,
			DurationMinutes: int(math.Round(float64(r.Duration) / 60)),
			Exercises:       r.Exercises,
		}
		if a.PassName == "" {
			a.PassName = "Träningspass"
		}
		if d, err := r.Day(); err == nil {
			a.Day = d.Day()
			a.MonthShort = string([]rune(MonthName(d.Month()))[:3])
		}
		out = append(out, a)
	}
	return out
}

// OnDay returns the records dated date ("YYYY-MM-DD").
func OnDay(history []models.WorkoutRecord, date string) []models.WorkoutRecord {
	var out []models.WorkoutRecord
	for _, r := range history {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
