package cmd

import (
	"go.uber.org/zap"

	"github.com/sota-ai/sotanews/internal/ai"
	"github.com/sota-ai/sotanews/internal/cache"
	"github.com/sota-ai/sotanews/internal/collector"
	"github.com/sota-ai/sotanews/internal/config"
	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/newsletter"
	"github.com/sota-ai/sotanews/internal/scoring"
	"github.com/sota-ai/sotanews/internal/sources"
)

func buildSources(cfg *config.Config) []models.Source {
	var clients []models.Source
	for _, src := range cfg.EnabledSources() {
		switch src.Type {
		case "hackernews":
			clients = append(clients, sources.NewHackerNewsClient())
		case "reddit":
			clients = append(clients, sources.NewRedditClient())
		case "arxiv":
			clients = append(clients, sources.NewArxivClient())
		case "rss":
			clients = append(clients, sources.NewRSSClient(src.Name, src.URL))
		}
	}
	return clients
}

// buildAnalyzer picks the OpenAI-backed analyzer when a key is configured,
// otherwise the deterministic heuristic engine.
func buildAnalyzer(cfg *config.Config, engine *scoring.Engine, logger *zap.Logger) scoring.Analyzer {
	if cfg.AIEnabled() {
		logger.Info("using openai analyzer")
		return ai.NewOpenAIAnalyzer(cfg.OpenAIAPIKey)
	}
	return engine
}

func buildGenerator(cfg *config.Config, seen *cache.Cache, archive newsletter.Archive,
	logger *zap.Logger) (*newsletter.Generator, *collector.Collector, *scoring.Engine) {

	engine := scoring.NewEngine(scoring.DefaultConfig())
	analyzer := buildAnalyzer(cfg, engine, logger)
	selector := scoring.NewSelector(analyzer, cfg.MinScore, cfg.TopArticles)

	coll := collector.New(buildSources(cfg), seen, cfg.BatchSize, logger)
	generator := newsletter.NewGenerator(coll, selector, archive, logger)
	return generator, coll, engine
}
