package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/claude/dianafit/internal/content"
	"github.com/claude/dianafit/internal/metrics"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/storage"
	"github.com/claude/dianafit/internal/tracker"
)

type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) func() { return func() {} }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, apiKey string) (*Server, *metrics.Manager) {
	t.Helper()
	log := discardLogger()
	n := 0
	tr := tracker.New(context.Background(), tracker.Options{
		Content:   content.NewProvider(content.Default()),
		Repo:      storage.NewRepository(storage.NewMemoryStore(), log),
		Log:       log,
		Now:       func() time.Time { return time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC) },
		Scheduler: idleScheduler{},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	t.Cleanup(tr.Close)
	m := metrics.NewTestManager()
	return New(tr, m, apiKey, log), m
}

// do sends a request with an optional JSON body and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return v
}

// TestHealth verifies the unauthenticated health endpoint.
func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	rec := do(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestAPIRequiresKeyWhenConfigured verifies the API group is guarded only
// when a key is set.
func TestAPIRequiresKeyWhenConfigured(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	if rec := do(t, s, http.MethodGet, "/api/v1/plans", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with key: status = %d, want 200", rec.Code)
	}

	open, _ := newTestServer(t, "")
	if rec := do(t, open, http.MethodGet, "/api/v1/plans", nil); rec.Code != http.StatusOK {
		t.Errorf("open server: status = %d, want 200", rec.Code)
	}
}

// TestRecipes verifies filtering and portion scaling.
func TestRecipes(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/v1/recipes?category=lunch", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, r := range decode[[]models.Recipe](t, rec) {
		if r.Category != models.CategoryLunch {
			t.Errorf("recipe %s has category %s", r.ID, r.Category)
		}
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/recipes?category=snack", http.StatusBadRequest},
		{"/api/v1/recipes/lunch-1?portions=3", http.StatusOK},
		{"/api/v1/recipes/lunch-1?portions=abc", http.StatusBadRequest},
		{"/api/v1/recipes/lunch-1?portions=11", http.StatusBadRequest},
		{"/api/v1/recipes/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := do(t, s, http.MethodGet, tt.path, nil); rec.Code != tt.want {
			t.Errorf("GET %s: status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

// TestListSessionLifecycle walks a list-mode session from start to the
// history.
func TestListSessionLifecycle(t *testing.T) {
	s, _ := newTestServer(t, "")

	if rec := do(t, s, http.MethodGet, "/api/v1/session", nil); rec.Code != http.StatusNotFound {
		t.Errorf("no session: status = %d, want 404", rec.Code)
	}

	rec := do(t, s, http.MethodPost, "/api/v1/session", startRequest{PassKey: "pass-1-home", Mode: models.ViewList})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, want 201: %s", rec.Code, rec.Body)
	}
	view := decode[tracker.SessionView](t, rec)
	if view.List == nil || view.PassKey != "pass-1-home" {
		t.Fatalf("view = %+v, want list session for pass-1-home", view)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/session/rows/toggle", rowRequest{Exercise: 0, Row: 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d, want 200", rec.Code)
	}
	if got := decode[map[string]bool](t, rec); !got["completed"] {
		t.Error("row should be completed after toggle")
	}

	// Detailed-only operations conflict with a list session.
	if rec := do(t, s, http.MethodPost, "/api/v1/session/sets", setRequest{SetIndex: 0}); rec.Code != http.StatusConflict {
		t.Errorf("complete set in list mode: status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/session/finish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish: status = %d, want 200", rec.Code)
	}
	if got := decode[models.WorkoutRecord](t, rec); got.Mode != models.ViewList || got.CompletedSetCount != 1 {
		t.Errorf("record mode = %q, sets = %d, want list, 1", got.Mode, got.CompletedSetCount)
	}

	history := decode[[]models.WorkoutRecord](t, do(t, s, http.MethodGet, "/api/v1/history", nil))
	if len(history) != 1 {
		t.Errorf("history = %d, want 1", len(history))
	}
}

// TestDetailedSession verifies set completion and navigation validation.
func TestDetailedSession(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/v1/session", startRequest{PassKey: "pass-1-home", Mode: models.ViewDetailed})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, want 201", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/session/sets", setRequest{SetIndex: 0, Weight: "20", Reps: "6"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set: status = %d, want 200", rec.Code)
	}
	if got := decode[map[string]any](t, rec); got["recorded"] != true {
		t.Errorf("recorded = %v, want true", got["recorded"])
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/session/sets", setRequest{SetIndex: 99}); rec.Code != http.StatusBadRequest {
		t.Errorf("out of range set: status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/session/navigate", navigateRequest{Direction: "sideways"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad direction: status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/session/navigate", navigateRequest{Direction: "next"}); rec.Code != http.StatusOK {
		t.Errorf("next: status = %d, want 200", rec.Code)
	}

	if rec := do(t, s, http.MethodDelete, "/api/v1/session", nil); rec.Code != http.StatusNoContent {
		t.Errorf("cancel: status = %d, want 204", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/session", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second cancel: status = %d, want 404", rec.Code)
	}
}

// TestQuickStartWithoutHistory verifies repeating the last workout needs a
// history while starting the next one does not.
func TestQuickStartWithoutHistory(t *testing.T) {
	s, _ := newTestServer(t, "")
	if rec := do(t, s, http.MethodPost, "/api/v1/session/quick-start", map[string]string{"action": "last-workout"}); rec.Code != http.StatusNotFound {
		t.Errorf("last-workout: status = %d, want 404", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/v1/session/quick-start", map[string]string{"action": "next-workout"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("next-workout: status = %d, want 201", rec.Code)
	}
	if got := decode[tracker.SessionView](t, rec); got.PassKey != "pass-1-home" {
		t.Errorf("pass = %q, want pass-1-home", got.PassKey)
	}
}

// TestShoppingDuplicateFlow verifies the 409 answer and its resolution.
func TestShoppingDuplicateFlow(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/v1/shopping/recipes", addRecipeRequest{RecipeID: "lunch-1", Portions: 1})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: status = %d, want 201", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/shopping/recipes", addRecipeRequest{RecipeID: "lunch-1", Portions: 2})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", rec.Code)
	}
	if got := decode[map[string]any](t, rec); got["resolutions"] == nil {
		t.Error("409 body should list resolutions")
	}

	rec = do(t, s, http.MethodPost, "/api/v1/shopping/recipes", addRecipeRequest{RecipeID: "lunch-1", Portions: 2, Resolution: "replace"})
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve: status = %d, want 200", rec.Code)
	}
	list := decode[tracker.ShoppingList](t, rec)
	if len(list.Recipes) != 1 || list.Recipes[0].Portions != 2 {
		t.Fatalf("recipes = %+v, want one entry with 2 portions", list.Recipes)
	}
	if list.UncheckedCount != len(list.Items) {
		t.Errorf("unchecked = %d, want %d", list.UncheckedCount, len(list.Items))
	}

	item := list.Items[0]
	rec = do(t, s, http.MethodPost, "/api/v1/shopping/items/"+item.ID+"/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d, want 200", rec.Code)
	}
	if got := decode[models.LineItem](t, rec); !got.Checked {
		t.Error("item should be checked")
	}

	if rec := do(t, s, http.MethodDelete, "/api/v1/shopping/recipes/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("remove unknown: status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/shopping/recipes", addRecipeRequest{RecipeID: "lunch-1", Resolution: "maybe"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad resolution: status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/shopping", nil); rec.Code != http.StatusNoContent {
		t.Errorf("clear: status = %d, want 204", rec.Code)
	}
	if got := decode[tracker.ShoppingList](t, do(t, s, http.MethodGet, "/api/v1/shopping", nil)); len(got.Items) != 0 {
		t.Errorf("items after clear = %d, want 0", len(got.Items))
	}
}

// TestSettingsUpdate verifies partial updates and validation.
func TestSettingsUpdate(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, http.MethodPut, "/api/v1/settings", map[string]any{"theme": "dark", "activePlan": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, want 200", rec.Code)
	}
	got := decode[tracker.Settings](t, rec)
	if got.Theme != models.ThemeDark || got.ActivePlan != 1 {
		t.Errorf("settings = %+v, want dark theme and plan 1", got)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/settings", map[string]any{"theme": "neon"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad theme: status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/settings", map[string]any{"activePlan": 9}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad plan: status = %d, want 400", rec.Code)
	}
}

// TestBackupEndpoints verifies export headers, import validation and the
// confirmation guard on clearing.
func TestBackupEndpoints(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/v1/backup", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "diana-fitness-backup-2026-10-16.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup", strings.NewReader(`{"workoutHistory":[]}`))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("import without version: status = %d, want 400", rec.Code)
	}

	body := `{"version":"1.0.0","workoutHistory":[{"id":"workout-1","date":"2026-10-15","passKey":"pass-1-home","passName":"Pass 1","duration":1800,"exercises":5,"completedSets":{},"completedAt":1792040400000}]}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/backup", strings.NewReader(body))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if got := decode[map[string]int](t, rec); got["workouts"] != 1 {
		t.Errorf("imported = %d, want 1", got["workouts"])
	}

	day := decode[[]models.WorkoutRecord](t, do(t, s, http.MethodGet, "/api/v1/calendar/days/2026-10-15", nil))
	if len(day) != 1 {
		t.Errorf("workouts on 2026-10-15 = %d, want 1", len(day))
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/data/clear", map[string]bool{"confirm": false}); rec.Code != http.StatusPreconditionRequired {
		t.Errorf("unconfirmed clear: status = %d, want 428", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/data/clear", map[string]bool{"confirm": true}); rec.Code != http.StatusNoContent {
		t.Errorf("clear: status = %d, want 204", rec.Code)
	}
	if got := decode[[]models.WorkoutRecord](t, do(t, s, http.MethodGet, "/api/v1/history", nil)); len(got) != 0 {
		t.Errorf("history after clear = %d, want 0", len(got))
	}
}

// TestCalendarMonthParam verifies the month query is validated.
func TestCalendarMonthParam(t *testing.T) {
	s, _ := newTestServer(t, "")
	if rec := do(t, s, http.MethodGet, "/api/v1/calendar?month=oktober", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month: status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/calendar/days/today", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad day: status = %d, want 400", rec.Code)
	}
	rec := do(t, s, http.MethodGet, "/api/v1/calendar?month=2026-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode[tracker.Calendar](t, rec); got.Prev != "2025-12" || got.Next != "2026-02" {
		t.Errorf("prev/next = %s/%s, want 2025-12/2026-02", got.Prev, got.Next)
	}
}

// TestSetFrontendFallback verifies unknown paths serve index.html while
// API routes keep working.
func TestSetFrontendFallback(t *testing.T) {
	s, _ := newTestServer(t, "")
	s.SetFrontend(fstest.MapFS{
		"index.html": {Data: []byte("<html>shell</html>")},
		"app.js":     {Data: []byte("console.log(1)")},
	})

	for _, path := range []string{"/", "/calendar", "/app.js"} {
		rec := do(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
	}
	if rec := do(t, s, http.MethodGet, "/calendar", nil); !strings.Contains(rec.Body.String(), "shell") {
		t.Errorf("fallback body = %q, want index.html", rec.Body.String())
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/plans", nil); rec.Code != http.StatusOK {
		t.Errorf("API after SetFrontend: status = %d, want 200", rec.Code)
	}
}
