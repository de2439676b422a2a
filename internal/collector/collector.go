// Package collector fans out over the configured news sources and merges
// their articles into one candidate batch for digest generation.
package collector

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sota-ai/sotanews/internal/cache"
	"github.com/sota-ai/sotanews/internal/models"
)

// Collector gathers candidate articles from every source concurrently. A
// failing source is logged and skipped; collection only fails when no source
// could be reached at all.
type Collector struct {
	sources   []models.Source
	seen      *cache.Cache // optional dedup index
	batchSize int
	logger    *zap.Logger
}

func New(sources []models.Source, seen *cache.Cache, batchSize int, logger *zap.Logger) *Collector {
	if batchSize <= 0 {
		batchSize = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		sources:   sources,
		seen:      seen,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Collect implements newsletter.Collector. The date parameter identifies the
// generation run; sources return their current window of articles.
func (c *Collector) Collect(ctx context.Context, date string) ([]models.Article, error) {
	articles, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return c.dedupe(articles), nil
}

// FetchNew returns articles not seen in previous cycles and marks them seen.
// Used by the periodic collection loop to feed the persistent store.
func (c *Collector) FetchNew(ctx context.Context) ([]models.Article, error) {
	articles, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if c.seen != nil && c.seen.Seen(article.Hash) {
			continue
		}
		if c.seen != nil {
			c.seen.MarkSeen(article.Hash)
		}
		fresh = append(fresh, article)
	}
	return fresh, nil
}

func (c *Collector) fetchAll(ctx context.Context) ([]models.Article, error) {
	var (
		mu  sync.Mutex
		all []models.Article
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, source := range c.sources {
		g.Go(func() error {
			articles, err := source.FetchArticles(gctx, c.batchSize)
			if err != nil {
				// One dead source should not sink the whole batch.
				c.logger.Warn("source fetch failed",
					zap.String("source", source.Name()), zap.Error(err))
				return nil
			}

			mu.Lock()
			all = append(all, articles...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

// dedupe drops same-batch duplicates by content hash, keeping first
// occurrence order.
func (c *Collector) dedupe(articles []models.Article) []models.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if article.Hash != "" && seen[article.Hash] {
			continue
		}
		seen[article.Hash] = true
		out = append(out, article)
	}
	return out
}
