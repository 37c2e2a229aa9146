package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"truthfinder/internal/models"
	"truthfinder/internal/service/agent"
)

// Handler wires HTTP routes to the agent service.
type Handler struct {
	agent  *agent.Service
	debug  bool
	logger *zap.Logger
}

// NewHandler constructs a Handler instance. debug adds diagnostic fields to
// chat responses.
func NewHandler(service *agent.Service, debug bool, logger *zap.Logger) *Handler {
	return &Handler{
		agent:  service,
		debug:  debug,
		logger: logger,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.root)
	router.GET("/health", h.health)
	router.GET("/agent/status", h.agentStatus)
	router.POST("/agent/analyze", h.analyze)
	router.POST("/agent/multi-analyze", h.multiAnalyze)

	v1 := router.Group("/api/v1")
	v1.POST("/agent/chat", h.chat)
	v1.GET("/sessions/:session_id", h.sessionHistory)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found", "path": c.Request.URL.Path})
	})
}

// writeError maps service failures onto HTTP statuses. Validation is the
// caller's fault, unavailable capabilities are a 503, anything else stays a
// logged 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAnalysisUnavailable), errors.Is(err, models.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Analysis request interface
type analysisRequest struct {
	Content   string `json:"content"`
	Language  string `json:"language"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// effectiveUserID picks the id the turns are stored under. Anonymous analyze
// calls get a throwaway id so their history still hangs together.
func (r *analysisRequest) effectiveUserID() string {
	if r.UserID != "" {
		return r.UserID
	}
	if r.SessionID != "" {
		return r.SessionID
	}
	return uuid.NewString()
}

func (h *Handler) analyze(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.agent.Analyze(c.Request.Context(), req.effectiveUserID(), req.Content, req.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) multiAnalyze(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.agent.MultiAnalyze(c.Request.Context(), req.effectiveUserID(), req.Content, req.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Conversational turn interface
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.agent.Chat(c.Request.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	payload := gin.H{
		"response":   result.Reply,
		"session_id": result.SessionID,
		"history":    result.History,
	}
	if h.debug {
		userID := req.UserID
		if userID == "" {
			userID = result.SessionID
		}
		payload["debug"] = gin.H{
			"user_id":       userID,
			"history_count": len(result.History),
		}
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) sessionHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	history, err := h.agent.History(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"history":    history,
		"count":      len(history),
	})
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "TruthFinder API is running!",
		"status":  "healthy",
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "TruthFinder API",
	})
}

func (h *Handler) agentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.agent.Status(c.Request.Context()))
}
