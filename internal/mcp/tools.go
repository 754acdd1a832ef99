package mcp

import (
	"context"
	"time"

	"github.com/claude/dianafit/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultHistoryDays = 30

// defaultDateRange returns start/end defaulting to the last 30 days.
func defaultDateRange(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -defaultHistoryDays)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(models.DateLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// filterHistory keeps records whose calendar day lies within [start, end],
// compared by date only.
func filterHistory(history []models.WorkoutRecord, start, end time.Time, passKey string) []models.WorkoutRecord {
	from := start.Format(models.DateLayout)
	to := end.Format(models.DateLayout)
	out := []models.WorkoutRecord{}
	for _, r := range history {
		if r.Date < from || r.Date > to {
			continue
		}
		if passKey != "" && r.PassKey != passKey {
			continue
		}
		out = append(out, r)
	}
	return out
}

// --- Tool definitions ---

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Finished workouts, newest first. Detailed sessions include every completed set with weight and reps; list sessions include set totals and completion percent."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("pass", mcp.Description("Only workouts of this pass key (e.g. 'pass-1-gym')")),
)

var toolGetCalendar = mcp.NewTool("get_calendar",
	mcp.WithDescription("Monthly training calendar: per-day workout counts, month summary with trends versus the previous month, the current streak and recent activity."),
	mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
)

var toolGetShoppingList = mcp.NewTool("get_shopping_list",
	mcp.WithDescription("Recipes on the shopping list with portions, and the merged ingredient list with checked state."),
)

var toolListRecipes = mcp.NewTool("list_recipes",
	mcp.WithDescription("List recipes with nutrition per portion, optionally filtered by meal category."),
	mcp.WithString("category", mcp.Description("Meal category"), mcp.Enum("breakfast", "lunch", "dinner")),
)

var toolGetRecipe = mcp.NewTool("get_recipe",
	mcp.WithDescription("One recipe with ingredient amounts scaled to the requested portions."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Recipe id (e.g. 'lunch-1')")),
	mcp.WithNumber("portions", mcp.Description("Portions between 1 and 10. Defaults to 1.")),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("The active training plan's passes with their exercises, plus the user's settings."),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultDateRange(req.GetString("start", ""), req.GetString("end", ""), time.Now())
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	history, err := h.ds.History(ctx)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(filterHistory(history, start, end, req.GetString("pass", "")))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cal, err := h.ds.Calendar(ctx, req.GetString("month", ""))
	if err != nil {
		h.log.Error("mcp get_calendar", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(cal)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getShoppingList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.ShoppingList(ctx)
	if err != nil {
		h.log.Error("mcp get_shopping_list", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(list)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat := models.Category(req.GetString("category", ""))
	if cat != "" && !cat.Valid() {
		return mcp.NewToolResultError("category must be breakfast, lunch or dinner"), nil
	}

	recipes, err := h.ds.Recipes(ctx, cat)
	if err != nil {
		h.log.Error("mcp list_recipes", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(recipes)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	portions := req.GetInt("portions", 1)
	if portions < models.MinPortions || portions > models.MaxPortions {
		return mcp.NewToolResultError("portions must be between 1 and 10"), nil
	}

	recipe, err := h.ds.Recipe(ctx, id, portions)
	if err != nil {
		h.log.Error("mcp get_recipe", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(recipe)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := h.ds.Settings(ctx)
	if err != nil {
		h.log.Error("mcp get_plan settings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	passes, err := h.ds.ActivePasses(ctx)
	if err != nil {
		h.log.Error("mcp get_plan passes", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"activePlan": settings.ActivePlan,
		"viewMode":   settings.ViewMode,
		"passes":     passes,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
