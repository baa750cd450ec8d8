// Package container provides dependency injection using Uber FX
package container

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/recipetalk/v1/internal/application/dialogue"
	"github.com/recipetalk/v1/internal/infrastructure/ai"
	"github.com/recipetalk/v1/internal/infrastructure/ai/ollama"
	"github.com/recipetalk/v1/internal/infrastructure/cache"
	"github.com/recipetalk/v1/internal/infrastructure/config"
	"github.com/recipetalk/v1/internal/infrastructure/http/server"
	"github.com/recipetalk/v1/internal/infrastructure/monitoring"
	gormstore "github.com/recipetalk/v1/internal/infrastructure/persistence/gorm"
	"github.com/recipetalk/v1/internal/infrastructure/persistence/memory"
	redisrepo "github.com/recipetalk/v1/internal/infrastructure/persistence/redis"
	"github.com/recipetalk/v1/internal/ports/inbound"
	"github.com/recipetalk/v1/internal/ports/outbound"
	"github.com/recipetalk/v1/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module wires the whole application.
var Module = fx.Options(
	fx.Provide(
		config.Load,
		newLogger,
		newMetrics,
		newDatabase,
		newRecipeStore,
		newCacheRepository,
		newCompletionClient,
		newPromptBuilder,
		dialogue.NewContextAnalyzer,
		dialogue.NewIntentClassifier,
		dialogue.NewAlternativeRecipeGenerator,
		newDialogueService,
		newHTTPServer,
	),
	fx.Invoke(
		registerDialogueLifecycle,
		registerHTTPLifecycle,
	),
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.IsDevelopment(),
	})
}

func newMetrics() *monitoring.Metrics {
	return monitoring.NewMetrics(prometheus.DefaultRegisterer)
}

func newDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	return gormstore.NewDatabase(gormstore.Config{Path: cfg.Database.Path}, log)
}

// newRecipeStore exposes the single store through both of its ports.
func newRecipeStore(db *gorm.DB, log *zap.Logger) (outbound.RecipeSearchProvider, outbound.ArtifactStore) {
	store := gormstore.NewRecipeStore(db, log)
	return store, store
}

func newCacheRepository(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-memory cache")
		return memory.NewCacheRepository(), nil
	}
	return redisrepo.NewCacheRepository(redisrepo.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		Database: cfg.Redis.Database,
	}, log)
}

func newCompletionClient(cfg *config.Config, cacheRepo outbound.CacheRepository, log *zap.Logger) outbound.CompletionClient {
	client := ollama.NewClient(ollama.Config{
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, log)
	return ai.NewCachedClient(client, cacheRepo, cfg.AI.CompletionCacheTTL, log)
}

func newPromptBuilder(cfg *config.Config) *dialogue.PromptBuilder {
	return dialogue.NewPromptBuilder(cache.NewPromptCache(
		cfg.Dialogue.PromptCacheMax,
		cfg.Dialogue.PromptCacheTTL,
	))
}

func newDialogueService(
	cfg *config.Config,
	analyzer *dialogue.ContextAnalyzer,
	classifier *dialogue.IntentClassifier,
	generator *dialogue.AlternativeRecipeGenerator,
	client outbound.CompletionClient,
	search outbound.RecipeSearchProvider,
	prompts *dialogue.PromptBuilder,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) (*dialogue.Orchestrator, inbound.DialogueService) {
	orchestrator := dialogue.NewOrchestrator(
		analyzer, classifier, generator, client, search, prompts, metrics, log,
		dialogue.Options{
			TopN:          cfg.Dialogue.TopN,
			ReadyAttempts: cfg.Dialogue.ReadyAttempts,
			ReadyInterval: cfg.Dialogue.ReadyInterval,
			QueryTimeout:  cfg.Dialogue.QueryTimeout,
		},
	)
	return orchestrator, orchestrator
}

func newHTTPServer(cfg *config.Config, service inbound.DialogueService, log *zap.Logger) *server.Server {
	return server.New(cfg.Server, service, log)
}

// registerDialogueLifecycle starts readiness polling in the background so a
// slow or absent provider never blocks startup.
func registerDialogueLifecycle(lc fx.Lifecycle, orchestrator *dialogue.Orchestrator) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go orchestrator.WaitReady(context.Background())
			return nil
		},
	})
}

func registerHTTPLifecycle(lc fx.Lifecycle, srv *server.Server, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
