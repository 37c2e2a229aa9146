// Package agent coordinates the chat store, the model capabilities, and the
// social-signal client behind the public analysis operations.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"truthfinder/internal/models"
	"truthfinder/internal/service/ai"
	"truthfinder/internal/twitter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// historyWindow bounds how many stored turns are replayed into a model call.
	historyWindow = 20
	// sampleTweetLimit bounds how many tweets feed the sentiment read.
	sampleTweetLimit = 10
	// searchQueryLimit and topicLimit truncate long content before it is used
	// as a search or twitter query.
	searchQueryLimit = 100
	topicLimit       = 50
)

// HistoryStore persists and replays conversation turns.
type HistoryStore interface {
	Append(ctx context.Context, userID string, role models.Role, content string) (*models.ChatMessage, error)
	History(ctx context.Context, userID string) ([]models.ChatMessage, error)
	Ping(ctx context.Context) error
}

// Analyzer is the model-backed capability surface the orchestrator drives.
type Analyzer interface {
	Available() bool
	SearchAvailable() bool
	AnalyzeNews(ctx context.Context, content, language string, history []models.ChatMessage) (*models.AnalysisResult, error)
	Converse(ctx context.Context, message string, history []models.ChatMessage) (string, error)
	Sentiment(ctx context.Context, text string) (models.Sentiment, error)
	FactCheck(ctx context.Context, claim string) (*models.FactCheckResult, error)
	SourceCredibility(ctx context.Context, source string) (*models.CredibilityResult, error)
	SearchWeb(ctx context.Context, query string, maxResults int) ([]models.WebSearchResult, error)
	TwitterReactionSummary(ctx context.Context, topic string, tweets []string) (string, error)
}

// TweetSearcher finds recent tweets about a topic.
type TweetSearcher interface {
	Available() bool
	SearchRecent(ctx context.Context, topic string, maxResults int) ([]twitter.Tweet, error)
}

// Service routes each operation through validation, persistence, and the
// capability calls it needs.
type Service struct {
	store      HistoryStore
	ai         Analyzer
	twitter    TweetSearcher
	tweetCount int
	logger     *zap.Logger
}

// NewService wires the orchestrator. tweetCount is how many tweets a
// twitter-sentiment pass requests; values below 1 fall back to 10.
func NewService(store HistoryStore, analyzer Analyzer, tweets TweetSearcher, tweetCount int, logger *zap.Logger) *Service {
	if tweetCount < 1 {
		tweetCount = 10
	}
	return &Service{
		store:      store,
		ai:         analyzer,
		twitter:    tweets,
		tweetCount: tweetCount,
		logger:     logger,
	}
}

// Analyze runs the verification pipeline for one piece of content: the user
// turn is persisted, the model is called with the prior conversation as
// context, and the verdict text is persisted as the assistant turn. The user
// turn stays stored even when the model call fails.
func (s *Service) Analyze(ctx context.Context, userID, content, language string) (*models.AnalysisResult, error) {
	content = SanitizeContent(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", models.ErrValidation)
	}
	language = resolveLanguage(language, content)

	prior, err := s.store.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load prior turns: %w", err)
	}
	if _, err := s.store.Append(ctx, userID, models.RoleUser, content); err != nil {
		return nil, fmt.Errorf("record user turn: %w", err)
	}

	result, err := s.ai.AnalyzeNews(ctx, content, language, tail(prior, historyWindow))
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Append(ctx, userID, models.RoleAssistant, result.Analysis); err != nil {
		// The verdict is already in hand; losing the stored copy is not
		// worth failing the request over.
		s.logger.Error("record assistant turn failed", zap.String("user_id", userID), zap.Error(err))
	}
	return result, nil
}

// ChatResult is one completed conversational exchange.
type ChatResult struct {
	Reply     string
	SessionID string
	History   []models.ChatMessage
}

// Chat handles a conversational turn. Anonymous callers get a generated
// session id, which doubles as the user id when none is supplied. Model
// trouble degrades to a fallback reply so the conversation keeps its shape.
func (s *Service) Chat(ctx context.Context, userID, sessionID, message string) (*ChatResult, error) {
	message = SanitizeContent(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", models.ErrValidation)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if userID == "" {
		userID = sessionID
	}

	if _, err := s.store.Append(ctx, userID, models.RoleUser, message); err != nil {
		return nil, fmt.Errorf("record user turn: %w", err)
	}

	var reply string
	if isIdentityQuestion(message) {
		reply = ai.IdentityResponse
	} else {
		history, err := s.store.History(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
		reply, err = s.ai.Converse(ctx, message, tail(history, historyWindow))
		if err != nil {
			s.logger.Warn("conversational model call failed", zap.String("user_id", userID), zap.Error(err))
			reply = ai.FallbackReply
		}
	}

	if _, err := s.store.Append(ctx, userID, models.RoleAssistant, reply); err != nil {
		s.logger.Error("record assistant turn failed", zap.String("user_id", userID), zap.Error(err))
	}

	history, err := s.store.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return &ChatResult{Reply: reply, SessionID: sessionID, History: history}, nil
}

// MultiAnalyze runs the verification pipeline plus the independent secondary
// passes. Secondary passes run concurrently and fail independently: a dead
// branch lands in Errors under its section name instead of sinking the rest.
func (s *Service) MultiAnalyze(ctx context.Context, userID, content, language string) (*models.MultiAnalysisResult, error) {
	content = SanitizeContent(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", models.ErrValidation)
	}
	language = resolveLanguage(language, content)

	result := &models.MultiAnalysisResult{
		Timestamp: time.Now().UTC(),
		Content:   content,
		Language:  language,
	}

	var mu sync.Mutex
	fail := func(section string, err error) {
		s.logger.Warn("analysis section failed", zap.String("section", section), zap.Error(err))
		mu.Lock()
		defer mu.Unlock()
		if result.Errors == nil {
			result.Errors = make(map[string]string)
		}
		result.Errors[section] = err.Error()
	}

	news, err := s.Analyze(ctx, userID, content, language)
	switch {
	case err == nil:
		result.NewsAnalysis = news
	case errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrStoreUnavailable):
		return nil, err
	default:
		fail("news_analysis", err)
	}

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		fc, err := s.ai.FactCheck(ctx, content)
		if err != nil {
			fail("fact_checking", err)
			return
		}
		result.FactChecking = fc
	}()
	go func() {
		defer wg.Done()
		sentiment, err := s.ai.Sentiment(ctx, content)
		if err != nil {
			fail("sentiment_analysis", err)
			return
		}
		result.SentimentAnalysis = &models.SentimentSummary{Sentiment: sentiment}
	}()
	go func() {
		defer wg.Done()
		query := truncateRunes(content, searchQueryLimit)
		results, err := s.ai.SearchWeb(ctx, query, 3)
		if err != nil {
			fail("web_search", err)
			return
		}
		result.WebSearch = &models.WebSearchSection{Query: query, Results: results}
	}()
	go func() {
		defer wg.Done()
		ts, err := s.twitterSentiment(ctx, truncateRunes(content, topicLimit))
		if err != nil {
			fail("twitter_sentiment", err)
			return
		}
		result.TwitterSentiment = ts
	}()
	go func() {
		defer wg.Done()
		cred, err := s.ai.SourceCredibility(ctx, content)
		if err != nil {
			fail("source_credibility", err)
			return
		}
		result.SourceCredibility = cred
	}()
	wg.Wait()

	return result, nil
}

// twitterSentiment reads the public mood about a topic off recent tweets.
func (s *Service) twitterSentiment(ctx context.Context, topic string) (*models.TwitterSentimentResult, error) {
	if s.twitter == nil || !s.twitter.Available() {
		return nil, twitter.ErrNotConfigured
	}
	tweets, err := s.twitter.SearchRecent(ctx, topic, s.tweetCount)
	if err != nil {
		return nil, err
	}
	if len(tweets) == 0 {
		return nil, fmt.Errorf("no recent tweets found about this topic")
	}

	texts := make([]string, 0, sampleTweetLimit)
	for _, tw := range tweets {
		texts = append(texts, tw.Text)
		if len(texts) == sampleTweetLimit {
			break
		}
	}

	sentiment, err := s.ai.Sentiment(ctx, strings.Join(texts, "\n"))
	if err != nil {
		return nil, err
	}
	out := &models.TwitterSentimentResult{
		Sentiment:    sentiment,
		TweetCount:   len(texts),
		SampleTweets: texts,
	}
	summary, err := s.ai.TwitterReactionSummary(ctx, topic, texts)
	if err != nil {
		s.logger.Warn("twitter reaction summary failed", zap.Error(err))
	} else {
		out.Summary = summary
	}
	return out, nil
}

// History returns every stored turn for the user, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	return s.store.History(ctx, userID)
}

// SystemStatus describes which capabilities are currently live.
type SystemStatus struct {
	Status       string          `json:"status"`
	Version      string          `json:"version"`
	Agents       []string        `json:"agents"`
	Capabilities map[string]bool `json:"capabilities"`
	Store        string          `json:"store"`
}

// Status reports capability availability, probing the store as it goes.
func (s *Service) Status(ctx context.Context) *SystemStatus {
	storeState := "ok"
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("store ping failed", zap.Error(err))
		storeState = "unavailable"
	}
	modelUp := s.ai.Available()
	return &SystemStatus{
		Status:  "active",
		Version: ai.AgentVersion,
		Agents:  []string{"news_analysis"},
		Capabilities: map[string]bool{
			"web_search":         s.ai.SearchAvailable(),
			"sentiment_analysis": modelUp,
			"fact_checking":      modelUp,
			"source_credibility": modelUp,
			"twitter_sentiment":  s.twitter != nil && s.twitter.Available(),
		},
		Store: storeState,
	}
}

// isIdentityQuestion matches the handful of phrasings that get the canned
// identity reply without a model round trip.
func isIdentityQuestion(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range []string{"who are you", "tum kon ho", "tum kaun ho", "ap kon hain", "aap kaun hain"} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// tail returns the last n messages, or all of them when fewer exist.
func tail(history []models.ChatMessage, n int) []models.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// truncateRunes cuts s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
