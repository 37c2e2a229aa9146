package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"truthfinder/internal/config"
	"truthfinder/internal/models"
	"truthfinder/internal/service/agent"
	"truthfinder/internal/service/ai"
	"truthfinder/internal/service/chat"
	"truthfinder/internal/storage"
)

func TestAnalyzeEndpointReturnsVerdictAndPersists(t *testing.T) {
	router, model := newTestServer(t)
	model.analysisText = "This claim is verified and credible. Confidence: 85"

	resp := doJSONRequest(t, router, http.MethodPost, "/agent/analyze", map[string]string{
		"content":  "Pakistan won the T20 series",
		"language": "english",
		"user_id":  "u1",
	})
	assertStatus(t, resp, http.StatusOK)

	var body struct {
		Analysis     string `json:"analysis"`
		Confidence   int    `json:"confidence"`
		Verdict      string `json:"verdict"`
		Language     string `json:"language"`
		AgentVersion string `json:"agent_version"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Verdict != string(models.VerdictReal) {
		t.Fatalf("unexpected verdict %q", body.Verdict)
	}
	if body.Confidence != 85 {
		t.Fatalf("unexpected confidence %d", body.Confidence)
	}
	if body.Language != "english" {
		t.Fatalf("unexpected language %q", body.Language)
	}
	if body.AgentVersion == "" {
		t.Fatal("missing agent_version")
	}

	// Both turns are now visible through the sessions endpoint.
	histResp := doJSONRequest(t, router, http.MethodGet, "/api/v1/sessions/u1", nil)
	assertStatus(t, histResp, http.StatusOK)
	var hist struct {
		SessionID string               `json:"session_id"`
		History   []models.ChatMessage `json:"history"`
		Count     int                  `json:"count"`
	}
	decodeJSON(t, histResp.Body.Bytes(), &hist)
	if hist.Count != 2 || len(hist.History) != 2 {
		t.Fatalf("expected 2 stored turns, got count=%d len=%d", hist.Count, len(hist.History))
	}
	if hist.History[0].Role != models.RoleUser || hist.History[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected turn roles %q, %q", hist.History[0].Role, hist.History[1].Role)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodPost, "/agent/analyze", map[string]string{
		"content": "   ",
		"user_id": "u1",
	})
	assertStatus(t, resp, http.StatusBadRequest)
	if !strings.Contains(resp.Body.String(), "content") {
		t.Fatalf("expected content validation message, got %s", resp.Body.String())
	}

	// Malformed JSON is rejected before it reaches the service.
	req := httptest.NewRequest(http.MethodPost, "/agent/analyze", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusBadRequest)

	// Nothing was persisted for the rejected requests.
	histResp := doJSONRequest(t, router, http.MethodGet, "/api/v1/sessions/u1", nil)
	var hist struct {
		Count int `json:"count"`
	}
	decodeJSON(t, histResp.Body.Bytes(), &hist)
	if hist.Count != 0 {
		t.Fatalf("expected empty history, got %d turns", hist.Count)
	}
}

func TestAnalyzeEndpointModelFailure(t *testing.T) {
	router, model := newTestServer(t)
	model.analyzeErr = fmt.Errorf("analyze news: %w: upstream timeout", models.ErrAnalysisUnavailable)

	resp := doJSONRequest(t, router, http.MethodPost, "/agent/analyze", map[string]string{
		"content": "some claim",
		"user_id": "u1",
	})
	assertStatus(t, resp, http.StatusServiceUnavailable)

	// The user turn survives the failed model call.
	histResp := doJSONRequest(t, router, http.MethodGet, "/api/v1/sessions/u1", nil)
	var hist struct {
		History []models.ChatMessage `json:"history"`
	}
	decodeJSON(t, histResp.Body.Bytes(), &hist)
	if len(hist.History) != 1 || hist.History[0].Role != models.RoleUser {
		t.Fatalf("expected the lone user turn, got %+v", hist.History)
	}
}

func TestChatEndpointRoundTrip(t *testing.T) {
	router, model := newTestServer(t)
	model.converseReply = "Nice to meet you!"

	resp := doJSONRequest(t, router, http.MethodPost, "/api/v1/agent/chat", map[string]string{
		"message": "hello there",
	})
	assertStatus(t, resp, http.StatusOK)

	var body struct {
		Response  string               `json:"response"`
		SessionID string               `json:"session_id"`
		History   []models.ChatMessage `json:"history"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Response != "Nice to meet you!" {
		t.Fatalf("unexpected response %q", body.Response)
	}
	if body.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if len(body.History) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(body.History))
	}

	// Continuing with the returned session id extends the same conversation.
	resp2 := doJSONRequest(t, router, http.MethodPost, "/api/v1/agent/chat", map[string]string{
		"message":    "and again",
		"session_id": body.SessionID,
	})
	assertStatus(t, resp2, http.StatusOK)
	var body2 struct {
		SessionID string               `json:"session_id"`
		History   []models.ChatMessage `json:"history"`
	}
	decodeJSON(t, resp2.Body.Bytes(), &body2)
	if body2.SessionID != body.SessionID {
		t.Fatalf("session id changed between turns: %q vs %q", body.SessionID, body2.SessionID)
	}
	if len(body2.History) != 4 {
		t.Fatalf("expected 4 turns after second exchange, got %d", len(body2.History))
	}
}

func TestChatEndpointIdentityQuestion(t *testing.T) {
	router, model := newTestServer(t)
	model.converseReply = "should not appear"

	resp := doJSONRequest(t, router, http.MethodPost, "/api/v1/agent/chat", map[string]string{
		"message": "who are you?",
		"user_id": "u1",
	})
	assertStatus(t, resp, http.StatusOK)
	var body struct {
		Response string `json:"response"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Response != ai.IdentityResponse {
		t.Fatalf("expected identity response, got %q", body.Response)
	}
	if model.converseCalls != 0 {
		t.Fatalf("model called %d times for identity question", model.converseCalls)
	}
}

func TestChatEndpointDegradesOnModelFailure(t *testing.T) {
	router, model := newTestServer(t)
	model.converseErr = fmt.Errorf("converse: %w: boom", models.ErrAnalysisUnavailable)

	resp := doJSONRequest(t, router, http.MethodPost, "/api/v1/agent/chat", map[string]string{
		"message": "are you there?",
		"user_id": "u1",
	})
	assertStatus(t, resp, http.StatusOK)
	var body struct {
		Response string `json:"response"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Response != ai.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", body.Response)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodPost, "/api/v1/agent/chat", map[string]string{
		"message": "",
	})
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestSessionHistoryUnknownSessionIsEmpty(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodGet, "/api/v1/sessions/nobody", nil)
	assertStatus(t, resp, http.StatusOK)
	if !strings.Contains(resp.Body.String(), `"history":[]`) {
		t.Fatalf("expected empty history array, got %s", resp.Body.String())
	}
	var body struct {
		SessionID string `json:"session_id"`
		Count     int    `json:"count"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.SessionID != "nobody" || body.Count != 0 {
		t.Fatalf("unexpected payload %+v", body)
	}
}

func TestMultiAnalyzeEndpoint(t *testing.T) {
	router, model := newTestServer(t)
	model.analysisText = "Verified reporting. Confidence: 80"
	model.sentiment = models.SentimentNeutral
	model.searchResults = []models.WebSearchResult{{Title: "Coverage", URL: "https://news.example/a"}}

	resp := doJSONRequest(t, router, http.MethodPost, "/agent/multi-analyze", map[string]string{
		"content": "major policy announcement today",
		"user_id": "u1",
	})
	assertStatus(t, resp, http.StatusOK)

	var body struct {
		Content      string            `json:"content"`
		Language     string            `json:"language"`
		NewsAnalysis *json.RawMessage  `json:"news_analysis"`
		Sentiment    *json.RawMessage  `json:"sentiment_analysis"`
		WebSearch    *json.RawMessage  `json:"web_search"`
		Errors       map[string]string `json:"errors"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.NewsAnalysis == nil || body.Sentiment == nil || body.WebSearch == nil {
		t.Fatalf("missing sections in %s", resp.Body.String())
	}
	// No twitter client is wired in tests, so that branch reports its error.
	if body.Errors["twitter_sentiment"] == "" {
		t.Fatalf("expected twitter_sentiment error entry, got %v", body.Errors)
	}
}

func TestStatusEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodGet, "/agent/status", nil)
	assertStatus(t, resp, http.StatusOK)
	var body struct {
		Status       string          `json:"status"`
		Version      string          `json:"version"`
		Agents       []string        `json:"agents"`
		Capabilities map[string]bool `json:"capabilities"`
		Store        string          `json:"store"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Status != "active" {
		t.Fatalf("unexpected status %q", body.Status)
	}
	if body.Version != ai.AgentVersion {
		t.Fatalf("unexpected version %q", body.Version)
	}
	if !body.Capabilities["fact_checking"] {
		t.Fatal("expected fact_checking capability with configured model")
	}
	if body.Capabilities["twitter_sentiment"] {
		t.Fatal("twitter capability should be down without a client")
	}
	if body.Store != "ok" {
		t.Fatalf("unexpected store state %q", body.Store)
	}
}

func TestHealthAndRootEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodGet, "/health", nil)
	assertStatus(t, resp, http.StatusOK)
	var health struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	decodeJSON(t, resp.Body.Bytes(), &health)
	if health.Status != "healthy" || health.Service != "TruthFinder API" {
		t.Fatalf("unexpected health payload %+v", health)
	}

	rootResp := doJSONRequest(t, router, http.MethodGet, "/", nil)
	assertStatus(t, rootResp, http.StatusOK)
	if !strings.Contains(rootResp.Body.String(), "TruthFinder API is running") {
		t.Fatalf("unexpected root payload %s", rootResp.Body.String())
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodGet, "/no/such/route", nil)
	assertStatus(t, resp, http.StatusNotFound)
	if !strings.Contains(resp.Body.String(), "endpoint not found") {
		t.Fatalf("unexpected 404 payload %s", resp.Body.String())
	}
}

// fakeModel stands in for the model-backed capability stack.
type fakeModel struct {
	analysisText  string
	analyzeErr    error
	converseReply string
	converseErr   error
	converseCalls int
	sentiment     models.Sentiment
	searchResults []models.WebSearchResult
}

func (f *fakeModel) Available() bool       { return true }
func (f *fakeModel) SearchAvailable() bool { return true }

func (f *fakeModel) AnalyzeNews(_ context.Context, _, language string, _ []models.ChatMessage) (*models.AnalysisResult, error) {
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return &models.AnalysisResult{
		Analysis:     f.analysisText,
		Confidence:   ai.ExtractConfidence(f.analysisText),
		Verdict:      ai.DetermineVerdict(f.analysisText),
		Language:     language,
		Timestamp:    time.Now().UTC(),
		AgentVersion: ai.AgentVersion,
	}, nil
}

func (f *fakeModel) Converse(context.Context, string, []models.ChatMessage) (string, error) {
	f.converseCalls++
	if f.converseErr != nil {
		return "", f.converseErr
	}
	return f.converseReply, nil
}

func (f *fakeModel) Sentiment(context.Context, string) (models.Sentiment, error) {
	return f.sentiment, nil
}

func (f *fakeModel) FactCheck(_ context.Context, claim string) (*models.FactCheckResult, error) {
	return &models.FactCheckResult{Claim: claim, Analysis: "checks out", Confidence: 70, Verdict: models.VerdictReal}, nil
}

func (f *fakeModel) SourceCredibility(_ context.Context, source string) (*models.CredibilityResult, error) {
	return &models.CredibilityResult{Source: source, Analysis: "established", Score: 75}, nil
}

func (f *fakeModel) SearchWeb(context.Context, string, int) ([]models.WebSearchResult, error) {
	return f.searchResults, nil
}

func (f *fakeModel) TwitterReactionSummary(context.Context, string, []string) (string, error) {
	return "summary", nil
}

func newTestServer(t *testing.T) (*gin.Engine, *fakeModel) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open("sqlite3", &config.DatabaseConfig{SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	store := chat.NewService(db, "sqlite3")
	model := &fakeModel{analysisText: "Verified and credible. Confidence: 85", sentiment: models.SentimentNeutral}
	svc := agent.NewService(store, model, nil, 10, zap.NewNop())
	handler := NewHandler(svc, false, zap.NewNop())

	router := gin.New()
	handler.RegisterRoutes(router)
	return router, model
}

func doJSONRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
