package models

import "time"

// Verdict classifies analyzed content. The set is closed; failures surface as
// errors, never as a verdict value.
type Verdict string

const (
	VerdictReal       Verdict = "REAL"
	VerdictFake       Verdict = "FAKE"
	VerdictPropaganda Verdict = "PROPAGANDA"
	VerdictSuspicious Verdict = "SUSPICIOUS"
)

// Sentiment labels the overall tone of a text.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// AnalysisResult is the outcome of a single misinformation analysis.
// Confidence is a percentage in [0,100].
type AnalysisResult struct {
	Analysis     string    `json:"analysis"`
	Confidence   int       `json:"confidence"`
	Verdict      Verdict   `json:"verdict"`
	Language     string    `json:"language"`
	Timestamp    time.Time `json:"timestamp"`
	AgentVersion string    `json:"agent_version"`
}

// WebSearchResult is one hit returned by the web-search capability.
type WebSearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// FactCheckResult is the outcome of the search-grounded fact-check chain.
type FactCheckResult struct {
	Claim      string   `json:"claim"`
	Analysis   string   `json:"analysis"`
	Confidence int      `json:"confidence"`
	Verdict    Verdict  `json:"verdict"`
	Sources    []string `json:"sources"`
}

// CredibilityResult scores how trustworthy a source or framing looks.
// Score is a percentage in [0,100].
type CredibilityResult struct {
	Source   string `json:"source"`
	Analysis string `json:"analysis"`
	Score    int    `json:"score"`
}

// TwitterSentimentResult summarizes public sentiment sampled from recent
// tweets about a topic.
type TwitterSentimentResult struct {
	Sentiment    Sentiment `json:"sentiment"`
	TweetCount   int       `json:"tweet_count"`
	SampleTweets []string  `json:"sample_tweets"`
	Summary      string    `json:"summary,omitempty"`
}

// MultiAnalysisResult aggregates the concurrent multi-agent pipeline. A nil
// branch pointer paired with an entry in Errors means that branch failed;
// branch failures never abort the others.
type MultiAnalysisResult struct {
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`

	NewsAnalysis      *AnalysisResult         `json:"news_analysis,omitempty"`
	FactChecking      *FactCheckResult        `json:"fact_checking,omitempty"`
	SentimentAnalysis *SentimentSummary       `json:"sentiment_analysis,omitempty"`
	WebSearch         *WebSearchSection       `json:"web_search,omitempty"`
	TwitterSentiment  *TwitterSentimentResult `json:"twitter_sentiment,omitempty"`
	SourceCredibility *CredibilityResult      `json:"source_credibility,omitempty"`

	// Errors maps a failed branch name to its failure detail.
	Errors map[string]string `json:"errors,omitempty"`
}

// SentimentSummary carries the standalone sentiment branch payload.
type SentimentSummary struct {
	Sentiment Sentiment `json:"sentiment"`
}

// WebSearchSection carries the standalone web-search branch payload.
type WebSearchSection struct {
	Query   string            `json:"query"`
	Results []WebSearchResult `json:"results"`
}
