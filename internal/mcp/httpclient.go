package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/tracker"
)

// HTTPClient implements DataSource by calling the dianafit REST API.
// Used when the MCP binary runs over stdio next to a running server.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. A
// non-empty apiKey is sent as X-API-Key.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, dst any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) History(ctx context.Context) ([]models.WorkoutRecord, error) {
	var h []models.WorkoutRecord
	if err := c.get(ctx, "/api/v1/history", nil, &h); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *HTTPClient) Calendar(ctx context.Context, month string) (*tracker.Calendar, error) {
	params := url.Values{}
	if month != "" {
		params.Set("month", month)
	}
	var cal tracker.Calendar
	if err := c.get(ctx, "/api/v1/calendar", params, &cal); err != nil {
		return nil, err
	}
	return &cal, nil
}

func (c *HTTPClient) ShoppingList(ctx context.Context) (*tracker.ShoppingList, error) {
	var list tracker.ShoppingList
	if err := c.get(ctx, "/api/v1/shopping", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *HTTPClient) Recipes(ctx context.Context, category models.Category) ([]models.Recipe, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", string(category))
	}
	var recipes []models.Recipe
	if err := c.get(ctx, "/api/v1/recipes", params, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (c *HTTPClient) Recipe(ctx context.Context, id string, portions int) (*models.Recipe, error) {
	params := url.Values{}
	params.Set("portions", strconv.Itoa(portions))
	var r models.Recipe
	if err := c.get(ctx, "/api/v1/recipes/"+url.PathEscape(id), params, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) ActivePasses(ctx context.Context) ([]models.Pass, error) {
	var passes []models.Pass
	if err := c.get(ctx, "/api/v1/plans/active/passes", nil, &passes); err != nil {
		return nil, err
	}
	return passes, nil
}

func (c *HTTPClient) Settings(ctx context.Context) (*tracker.Settings, error) {
	var s tracker.Settings
	if err := c.get(ctx, "/api/v1/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
