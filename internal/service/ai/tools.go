package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino-ext/components/tool/googlesearch"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"truthfinder/internal/config"
	"truthfinder/internal/models"
)

const webSearchToolName = "web_search"

// One limiter across requests; search providers throttle hard and a single
// multi-agent run can fire several lookups.
var webSearchLimiter = newToolRateLimiter(WebSearchRateLimit, WebSearchRateWindow)

type webSearchTool struct {
	google     tool.InvokableTool
	duck       tool.InvokableTool
	httpClient *http.Client
	logger     *zap.Logger
}

type webSearchParams struct {
	Query string `json:"query"`
}

// newWebSearchTool wires Google Programmable Search when credentials exist
// and DuckDuckGo as the keyless fallback. Returns nil when neither provider
// could be built.
func newWebSearchTool(cfg *config.SearchConfig, logger *zap.Logger) *webSearchTool {
	googleTool := initGoogleSearch(cfg, logger)
	duckTool := initDDGSearch(logger)
	if googleTool == nil && duckTool == nil {
		logger.Warn("web search disabled: no search providers available")
		return nil
	}
	return &webSearchTool{
		google:     googleTool,
		duck:       duckTool,
		httpClient: &http.Client{Timeout: WebSearchHTTPTimeout},
		logger:     logger,
	}
}

// asTool exposes the search chain to the ReAct agent.
func (w *webSearchTool) asTool() tool.InvokableTool {
	info := &schema.ToolInfo{
		Name: webSearchToolName,
		Desc: "Search the web for information; " +
			"automatically fallbacks to another provider if needed;" +
			"can search URL if needed.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Desc:     "Natural language query or URL to search",
				Type:     schema.String,
				Required: true,
			},
		}),
	}
	return utils.NewTool(info, w.run)
}

func (w *webSearchTool) run(ctx context.Context, params *webSearchParams) (string, error) {
	if params == nil {
		return "", errors.New("missing search parameters")
	}
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return "", errors.New("query must not be empty")
	}
	if !webSearchLimiter.Allow(webSearchToolName) {
		return "", errors.New("web search rate limit exceeded, please retry in a minute")
	}

	if looksLikeURL(query) {
		if content, err := w.fetchURL(ctx, query); err == nil {
			return content, nil
		} else {
			w.logger.Warn("web url loader failed", zap.Error(err))
		}
	}

	payloadBytes, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return "", fmt.Errorf("marshal search params: %w", err)
	}
	payload := string(payloadBytes)

	if w.google != nil {
		if result, err := w.google.InvokableRun(ctx, payload); err == nil {
			return result, nil
		} else {
			w.logger.Warn("google search failed", zap.Error(err))
		}
	}

	if w.duck != nil {
		if result, err := w.duck.InvokableRun(ctx, payload); err == nil {
			return result, nil
		} else {
			w.logger.Warn("duckduckgo search failed", zap.Error(err))
		}
	}

	return "", errors.New("no search provider succeeded")
}

func initDDGSearch(logger *zap.Logger) tool.InvokableTool {
	duckTool, err := duckduckgo.NewTextSearchTool(context.Background(), &duckduckgo.Config{
		ToolName:   "web_search_ddg",
		ToolDesc:   "DuckDuckGo Search Tool (no token required)",
		MaxResults: 3,
		Region:     duckduckgo.RegionWT,
		Timeout:    10 * time.Second,
	})
	if err != nil {
		logger.Error("init duckduckgo search failed", zap.Error(err))
		return nil
	}
	return duckTool
}

func initGoogleSearch(cfg *config.SearchConfig, logger *zap.Logger) tool.InvokableTool {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		logger.Info("google search disabled: missing GOOGLE_SEARCH_API_KEY or GOOGLE_SEARCH_ENGINE_ID")
		return nil
	}
	googleTool, err := googlesearch.NewTool(context.Background(), &googlesearch.Config{
		ToolName:       "web_search_google",
		ToolDesc:       "Google Search Tool",
		APIKey:         cfg.APIKey,
		SearchEngineID: cfg.EngineID,
		Lang:           "en",
		Num:            5,
	})
	if err != nil {
		logger.Error("init google search failed", zap.Error(err))
		return nil
	}
	return googleTool
}

// parseSearchResults maps a provider payload onto a uniform result list.
// Google and DuckDuckGo label fields differently, hence the loose walk over
// both naming schemes. Unparsable payloads yield no results rather than an
// error; callers treat search as best-effort.
func parseSearchResults(raw string, limit int) []models.WebSearchResult {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}
	items, ok := doc["items"].([]any)
	if !ok {
		items, _ = doc["results"].([]any)
	}

	results := make([]models.WebSearchResult, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		result := models.WebSearchResult{
			Title:   firstString(entry, "title"),
			URL:     firstString(entry, "link", "url"),
			Snippet: firstString(entry, "snippet", "description", "summary", "desc"),
		}
		if result.Title == "" && result.URL == "" {
			continue
		}
		results = append(results, result)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}

func firstString(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := entry[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
