package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zaynkorai/gemini-deepcrawl-research/agent"
	"github.com/zaynkorai/gemini-deepcrawl-research/config"
	"github.com/zaynkorai/gemini-deepcrawl-research/crawl"
	"github.com/zaynkorai/gemini-deepcrawl-research/enhancement"
	"github.com/zaynkorai/gemini-deepcrawl-research/llm"
	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
)

var cfgPath string

// app is everything a command needs, built once from settings.
type app struct {
	settings *config.Settings
	logger   *zap.Logger
	redis    *redis.Client
	workflow *agent.Workflow
}

func setup(ctx context.Context) (*app, error) {
	settings, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	gen, err := llm.NewGeminiClient(ctx, settings.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	rt := &app{settings: settings, logger: logger}
	rt.redis = connectRedis(ctx, settings, logger)

	opts := crawl.Options{
		Provider:        crawl.Provider(settings.CrawlProvider),
		FirecrawlAPIKey: settings.FirecrawlAPIKey,
		FirecrawlAPIURL: settings.FirecrawlAPIURL,
		Timeout:         settings.CrawlTimeout,
		CacheTTL:        settings.CrawlCacheTTL,
		Logger:          logger,
	}
	if rt.redis != nil {
		opts.Redis = rt.redis
	}
	scraper, err := crawl.New(opts)
	switch {
	case errors.Is(err, crawl.ErrNotConfigured):
		logger.Warn("FIRECRAWL_API_KEY is not set, content enhancement is disabled")
		scraper = nil
	case err != nil:
		rt.Close()
		return nil, err
	default:
		logger.Info("crawl capability ready", zap.String("provider", settings.CrawlProvider))
	}

	enhancer := enhancement.NewDecisionMaker(gen, scraper, logger)
	rt.workflow = agent.NewWorkflow(gen, enhancer, logger).WithDefaultModel(settings.GeminiModel)
	return rt, nil
}

// connectRedis returns a client for REDIS_ADDR, or nil when it is unset or
// unreachable. Redis only backs caches, so the process runs without it.
func connectRedis(ctx context.Context, settings *config.Settings, logger *zap.Logger) *redis.Client {
	if settings.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     settings.RedisAddr,
		Password: settings.RedisPassword,
		DB:       settings.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, running without it", zap.String("addr", settings.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func (rt *app) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	_ = rt.logger.Sync()
}
