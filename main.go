package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"truthfinder/internal/api"
	"truthfinder/internal/config"
	"truthfinder/internal/service/agent"
	"truthfinder/internal/service/ai"
	"truthfinder/internal/service/chat"
	"truthfinder/internal/storage"
	"truthfinder/internal/supabase"
	"truthfinder/internal/twitter"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	var store agent.HistoryStore
	if cfg.Supabase.Configured() {
		store = supabase.NewStore(cfg.Supabase.URL, cfg.Supabase.Key)
		logger.Info("chat store: supabase", zap.String("project", cfg.Supabase.URL))
	} else {
		db, err := storage.Open(cfg.Database.Driver, &cfg.Database)
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		defer db.Close()
		// Create the chat_history table and its indexes.
		if err := storage.Migrate(db, cfg.Database.Driver); err != nil {
			logger.Fatal("migrate database", zap.Error(err))
		}
		store = chat.NewService(db, cfg.Database.Driver)
		logger.Info("chat store: sql", zap.String("driver", cfg.Database.Driver))
	}

	aiService, err := ai.NewService(cfg, logger)
	if err != nil {
		logger.Fatal("init ai service", zap.Error(err))
	}
	tweetClient := twitter.NewClient(cfg.Twitter.BearerToken)
	if !tweetClient.Available() {
		logger.Warn("twitter bearer token not set, twitter sentiment disabled")
	}

	agentService := agent.NewService(store, aiService, tweetClient, cfg.Twitter.TweetCount(), logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handlers := api.NewHandler(agentService, cfg.Debug, logger)
	handlers.RegisterRoutes(router)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		})(router),
		ReadTimeout: 30 * time.Second,
		// Multi-agent passes chain several model calls.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info("stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
