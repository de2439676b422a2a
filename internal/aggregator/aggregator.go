// Package aggregator wires the collection, generation, capability, and HTTP
// components together and runs the daemon loops.
package aggregator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sota-ai/sotanews/internal/capability"
	"github.com/sota-ai/sotanews/internal/collector"
	"github.com/sota-ai/sotanews/internal/config"
	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/newsletter"
	"github.com/sota-ai/sotanews/internal/scoring"
	"github.com/sota-ai/sotanews/internal/server"
	"github.com/sota-ai/sotanews/internal/store"
	"github.com/sota-ai/sotanews/internal/telegram"
)

type Aggregator struct {
	cfg          *config.Config
	collector    *collector.Collector
	engine       *scoring.Engine
	generator    *newsletter.Generator
	capabilities *capability.Server
	httpServer   *server.Server
	articles     *store.Store
	bot          *telegram.Bot // optional
	logger       *zap.Logger
}

func New(cfg *config.Config, coll *collector.Collector, engine *scoring.Engine,
	generator *newsletter.Generator, capabilities *capability.Server,
	httpServer *server.Server, articles *store.Store, bot *telegram.Bot,
	logger *zap.Logger) *Aggregator {

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:          cfg,
		collector:    coll,
		engine:       engine,
		generator:    generator,
		capabilities: capabilities,
		httpServer:   httpServer,
		articles:     articles,
		bot:          bot,
		logger:       logger,
	}
}

// Run starts the capability server, the HTTP API, and the background loops,
// then blocks until the context is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	a.capabilities.Start()

	errChan := make(chan error, 1)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	go a.collectLoop(ctx)
	go a.digestLoop(ctx)

	select {
	case <-ctx.Done():
	case err := <-errChan:
		a.logger.Error("http server failed", zap.Error(err))
		a.shutdown()
		return err
	}

	return a.shutdown()
}

// collectLoop periodically pulls new articles from all sources, scores them,
// and persists them.
func (a *Aggregator) collectLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.ProcessingIntervalDuration())
	defer ticker.Stop()

	a.collectBatch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.collectBatch(ctx)
		}
	}
}

func (a *Aggregator) collectBatch(ctx context.Context) {
	fresh, err := a.collector.FetchNew(ctx)
	if err != nil {
		a.logger.Error("collecting articles", zap.Error(err))
		return
	}
	if len(fresh) == 0 {
		return
	}

	a.logger.Info("processing new articles", zap.Int("count", len(fresh)))

	if a.articles == nil {
		return
	}
	scored := make([]models.ScoredArticle, 0, len(fresh))
	for _, article := range fresh {
		scored = append(scored, a.engine.Score(article))
	}
	if err := a.articles.UpsertArticles(ctx, scored); err != nil {
		a.logger.Error("persisting articles", zap.Error(err))
	}
}

// digestLoop makes sure today's digest exists, rechecking hourly, and
// broadcasts each newly generated digest.
func (a *Aggregator) digestLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	a.ensureTodaysDigest(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.ensureTodaysDigest(ctx)
		}
	}
}

func (a *Aggregator) ensureTodaysDigest(ctx context.Context) {
	today := time.Now().Format(newsletter.DateFormat)
	if _, ok := a.generator.GetIfReady(today); ok {
		return
	}

	digest, err := a.generator.Generate(ctx, today, false)
	if err != nil {
		a.logger.Error("generating daily digest", zap.Error(err))
		return
	}

	if a.bot != nil {
		if err := a.bot.SendDigest(digest); err != nil {
			a.logger.Warn("broadcasting digest", zap.Error(err))
		}
	}
}

func (a *Aggregator) shutdown() error {
	a.logger.Info("shutting down aggregator")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.httpServer.Shutdown(ctx)
	a.capabilities.Stop()
	return err
}
