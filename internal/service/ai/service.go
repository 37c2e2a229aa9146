package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"truthfinder/internal/config"
	"truthfinder/internal/models"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// AgentVersion is reported with every analysis result.
const AgentVersion = "2.0"

// Service wraps the chat-model provider and the web-search tooling behind
// the analysis capabilities. A service without a configured model still
// constructs; its model-backed methods fail with ErrAnalysisUnavailable so
// the HTTP surface can keep serving status and history.
type Service struct {
	chatModel model.ToolCallingChatModel
	agent     *react.Agent
	webSearch *webSearchTool
	logger    *zap.Logger
}

// NewService builds the capability stack for the configured provider.
// A missing API key degrades the service instead of failing construction;
// a present key that cannot initialize its provider is an error.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	svc := &Service{
		webSearch: newWebSearchTool(&cfg.Search, logger),
		logger:    logger,
	}

	var err error
	switch cfg.Model.Provider {
	case "gemini":
		key := cfg.Model.GeminiKey()
		if key == "" {
			logger.Warn("gemini api key not set, analysis capability disabled")
			break
		}
		var client *genai.Client
		client, err = genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: key,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		svc.chatModel, err = gemini.NewChatModel(context.Background(), &gemini.Config{
			Client: client,
			Model:  cfg.Model.Name,
			ThinkingConfig: &genai.ThinkingConfig{
				// Thought parts would leak into verdict parsing.
				IncludeThoughts: false,
				ThinkingBudget:  nil,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini model: %w", err)
		}
	case "openai":
		if cfg.Model.OpenAIAPIKey == "" {
			logger.Warn("openai api key not set, analysis capability disabled")
			break
		}
		svc.chatModel, err = openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
			BaseURL: cfg.Model.OpenAIBaseURL,
			Model:   cfg.Model.Name,
			APIKey:  cfg.Model.OpenAIAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai model: %w", err)
		}
	case "claude":
		if cfg.Model.AnthropicAPIKey == "" {
			logger.Warn("anthropic api key not set, analysis capability disabled")
			break
		}
		svc.chatModel, err = claude.NewChatModel(context.Background(), &claude.Config{
			APIKey:    cfg.Model.AnthropicAPIKey,
			Model:     cfg.Model.Name,
			MaxTokens: 3000,
		})
		if err != nil {
			return nil, fmt.Errorf("init claude model: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid provider: %s", cfg.Model.Provider)
	}

	if svc.chatModel != nil {
		var tools []tool.BaseTool
		if svc.webSearch != nil {
			tools = append(tools, svc.webSearch.asTool())
		}
		if len(tools) > 0 {
			svc.agent, err = react.NewAgent(context.Background(), &react.AgentConfig{
				ToolCallingModel: svc.chatModel,
				ToolsConfig: compose.ToolsNodeConfig{
					Tools: tools,
				},
			})
			if err != nil {
				return nil, fmt.Errorf("init react agent: %w", err)
			}
		}
	}

	return svc, nil
}

// Available reports whether a chat model is configured.
func (s *Service) Available() bool {
	return s != nil && s.chatModel != nil
}

// SearchAvailable reports whether any web-search provider is configured.
func (s *Service) SearchAvailable() bool {
	return s != nil && s.webSearch != nil
}

// generate runs one completion. useTools routes through the ReAct agent so
// the model can call web search; classification prompts skip it.
func (s *Service) generate(ctx context.Context, messages []*schema.Message, useTools bool) (string, error) {
	if !s.Available() {
		return "", fmt.Errorf("%w: no model configured", models.ErrAnalysisUnavailable)
	}

	var (
		resp *schema.Message
		err  error
	)
	if useTools && s.agent != nil {
		resp, err = s.agent.Generate(ctx, messages)
	} else {
		resp, err = s.chatModel.Generate(ctx, messages)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrAnalysisUnavailable, err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty model response", models.ErrAnalysisUnavailable)
	}
	return text, nil
}

// AnalyzeNews runs the full verification prompt over the content, with the
// prior conversation supplied as context, and parses verdict and confidence
// out of the reply.
func (s *Service) AnalyzeNews(ctx context.Context, content, language string, history []models.ChatMessage) (*models.AnalysisResult, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, &schema.Message{Role: schema.System, Content: analysisSystemPrompt(language)})
	messages = append(messages, convertHistory(history)...)
	messages = append(messages, &schema.Message{Role: schema.User, Content: analysisUserPrompt(content, language)})

	text, err := s.generate(ctx, messages, true)
	if err != nil {
		return nil, fmt.Errorf("analyze news: %w", err)
	}

	return &models.AnalysisResult{
		Analysis:     text,
		Confidence:   ExtractConfidence(text),
		Verdict:      DetermineVerdict(text),
		Language:     language,
		Timestamp:    time.Now().UTC(),
		AgentVersion: AgentVersion,
	}, nil
}

// Converse answers a conversational turn with the prior history as context.
func (s *Service) Converse(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, &schema.Message{Role: schema.System, Content: conversationSystemPrompt(len(history) > 0)})
	messages = append(messages, convertHistory(history)...)
	messages = append(messages, &schema.Message{Role: schema.User, Content: message})

	reply, err := s.generate(ctx, messages, true)
	if err != nil {
		return "", fmt.Errorf("converse: %w", err)
	}
	return reply, nil
}

// Sentiment classifies the text as POSITIVE, NEGATIVE, or NEUTRAL. Model
// trouble degrades to NEUTRAL only when the model is configured but answers
// off-format; a missing model is still an error.
func (s *Service) Sentiment(ctx context.Context, text string) (models.Sentiment, error) {
	reply, err := s.generate(ctx, []*schema.Message{
		{Role: schema.User, Content: sentimentPrompt(text)},
	}, false)
	if err != nil {
		return "", fmt.Errorf("analyze sentiment: %w", err)
	}
	return ParseSentiment(reply), nil
}

// Summarize condenses a long text into a short summary.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	reply, err := s.generate(ctx, []*schema.Message{
		{Role: schema.User, Content: summaryPrompt(text)},
	}, false)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return reply, nil
}

// FactCheck grounds the claim in fresh search results and asks the model for
// a verdict. Search being unavailable degrades to an ungrounded check. Long
// claims are condensed first so the search query stays inside provider limits.
func (s *Service) FactCheck(ctx context.Context, claim string) (*models.FactCheckResult, error) {
	query := claim
	if utf8.RuneCountInString(claim) > 300 {
		summary, err := s.Summarize(ctx, claim)
		if err != nil {
			s.logger.Warn("fact check falling back to raw claim as query", zap.Error(err))
		} else {
			query = summary
		}
	}

	var (
		searchText string
		sources    []string
	)
	results, err := s.SearchWeb(ctx, query, 3)
	if err != nil {
		s.logger.Warn("fact check proceeding without search context", zap.Error(err))
	}
	for _, r := range results {
		searchText += fmt.Sprintf("Title: %s\nURL: %s\nSnippet: %s\n\n", r.Title, r.URL, r.Snippet)
		sources = append(sources, r.URL)
	}

	reply, err := s.generate(ctx, []*schema.Message{
		{Role: schema.User, Content: factCheckPrompt(claim, searchText)},
	}, false)
	if err != nil {
		return nil, fmt.Errorf("fact check: %w", err)
	}

	return &models.FactCheckResult{
		Claim:      claim,
		Analysis:   reply,
		Confidence: ExtractConfidence(reply),
		Verdict:    DetermineVerdict(reply),
		Sources:    sources,
	}, nil
}

// SourceCredibility scores the trustworthiness of a source description.
func (s *Service) SourceCredibility(ctx context.Context, source string) (*models.CredibilityResult, error) {
	reply, err := s.generate(ctx, []*schema.Message{
		{Role: schema.User, Content: credibilityPrompt(source)},
	}, false)
	if err != nil {
		return nil, fmt.Errorf("evaluate source credibility: %w", err)
	}
	return &models.CredibilityResult{
		Source:   source,
		Analysis: reply,
		Score:    ExtractConfidence(reply),
	}, nil
}

// TwitterReactionSummary condenses a batch of tweets about a topic into a
// one-paragraph read of the public reaction.
func (s *Service) TwitterReactionSummary(ctx context.Context, topic string, tweets []string) (string, error) {
	reply, err := s.generate(ctx, []*schema.Message{
		{Role: schema.User, Content: twitterSummaryPrompt(topic, strings.Join(tweets, "\n"))},
	}, false)
	if err != nil {
		return "", fmt.Errorf("summarize twitter reaction: %w", err)
	}
	return reply, nil
}

// SearchWeb runs the configured search providers directly, outside any model
// call, and parses the provider payload into uniform results.
func (s *Service) SearchWeb(ctx context.Context, query string, maxResults int) ([]models.WebSearchResult, error) {
	if s.webSearch == nil {
		return nil, fmt.Errorf("web search not configured")
	}
	raw, err := s.webSearch.run(ctx, &webSearchParams{Query: query})
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	return parseSearchResults(raw, maxResults), nil
}

// convertHistory maps stored chat turns onto model messages.
func convertHistory(history []models.ChatMessage) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		var role schema.RoleType
		switch msg.Role {
		case models.RoleAssistant:
			role = schema.Assistant
		default:
			role = schema.User
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages
}
