// Package mcp exposes the workout history, calendar, recipes and shopping
// list to MCP clients.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("DianaFit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("DianaFit training and meal planning data. Query finished workouts, the monthly training calendar, recipes with portion scaling, the active training plan and the shopping list. Text in the catalog is Swedish."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetCalendar, Handler: h.getCalendar},
		server.ServerTool{Tool: toolGetShoppingList, Handler: h.getShoppingList},
		server.ServerTool{Tool: toolListRecipes, Handler: h.listRecipes},
		server.ServerTool{Tool: toolGetRecipe, Handler: h.getRecipe},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resShoppingList, Handler: h.shoppingList},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"dianafit://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The five most recent finished workouts"),
	mcp.WithMIMEType("application/json"),
)

var resShoppingList = mcp.NewResource(
	"dianafit://shopping_list",
	"Shopping List",
	mcp.WithResourceDescription("Recipes on the shopping list and the merged line items"),
	mcp.WithMIMEType("application/json"),
)
