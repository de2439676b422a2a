// Package newsletter coordinates digest generation. Each logical date is
// generated at most once and memoized; concurrent requests for the same date
// join the in-flight run instead of duplicating ingestion and scoring.
package newsletter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sota-ai/sotanews/internal/compose"
	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/scoring"
)

// DateFormat is the logical key format for digests.
const DateFormat = "2006-01-02"

// Collector supplies the candidate articles for a date. Collection failures
// surface as generation failures.
type Collector interface {
	Collect(ctx context.Context, date string) ([]models.Article, error)
}

// Archive durably stores generated digests. The in-memory cache sits in
// front of it; persistence is best-effort write-through.
type Archive interface {
	SaveNewsletter(ctx context.Context, digest models.Digest) error
}

// Generator owns the digest cache. No other component touches it; all access
// to a date's slot is serialized through the single-flight group plus a
// per-date run lock, so at most one generation computes at a time even when
// a force-regeneration supersedes an in-flight run.
type Generator struct {
	collector Collector
	selector  *scoring.Selector
	archive   Archive // optional
	logger    *zap.Logger

	group singleflight.Group
	cache *digestCache

	mu    sync.Mutex
	gens  map[string]uint64
	locks map[string]*sync.Mutex
}

// NewGenerator builds a Generator. archive may be nil when persistence is
// not configured.
func NewGenerator(collector Collector, selector *scoring.Selector, archive Archive, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		collector: collector,
		selector:  selector,
		archive:   archive,
		logger:    logger,
		cache:     newDigestCache(),
		gens:      make(map[string]uint64),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Generate returns the digest for a date, producing it if needed. An empty
// date means today. With force set, any cached digest for the date is
// dropped and regenerated; a force issued while a run is already in flight
// supersedes that run, whose result still reaches its own waiters but is
// never cached. Concurrent calls for the same date share one generation run
// and receive the same digest or error; a caller whose context expires while
// waiting abandons the wait, but the run itself continues for the other
// joined callers. Nothing is cached on failure.
func (g *Generator) Generate(ctx context.Context, date string, force bool) (models.Digest, error) {
	if date == "" {
		date = time.Now().Format(DateFormat)
	}

	if force {
		// Superseding an in-flight run: bump the generation so the old run
		// cannot publish over the forced result, and detach it from the
		// flight group so a fresh run starts.
		g.bumpGeneration(date)
		g.cache.drop(date)
		g.group.Forget(date)
	} else if digest, ok := g.cache.get(date); ok {
		return digest, nil
	}

	// Generation is detached from the triggering caller's context so it
	// keeps serving the other joined callers when that caller gives up.
	runCtx := context.WithoutCancel(ctx)
	gen := g.generation(date)
	ch := g.group.DoChan(date, func() (any, error) {
		if !force {
			if digest, ok := g.cache.get(date); ok {
				return digest, nil
			}
		}
		return g.run(runCtx, date, gen)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.Digest{}, res.Err
		}
		return res.Val.(models.Digest), nil
	case <-ctx.Done():
		return models.Digest{}, ctx.Err()
	}
}

// GetIfReady returns the cached digest for a date without ever triggering
// generation.
func (g *Generator) GetIfReady(date string) (models.Digest, bool) {
	return g.cache.get(date)
}

func (g *Generator) run(ctx context.Context, date string, gen uint64) (models.Digest, error) {
	// One computation per date at a time: a forced run waits for the run it
	// superseded to finish before it starts collecting.
	lock := g.runLock(date)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	g.logger.Info("generating newsletter", zap.String("date", date))

	articles, err := g.collector.Collect(ctx, date)
	if err != nil {
		return models.Digest{}, fmt.Errorf("gathering articles for %s: %w", date, err)
	}

	ranked, err := g.selector.Select(ctx, articles)
	if err != nil {
		return models.Digest{}, fmt.Errorf("ranking articles for %s: %w", date, err)
	}

	label := dateLabel(date)
	digest := models.Digest{
		ID:          "newsletter_" + date,
		Date:        date,
		Title:       compose.Title(label),
		Content:     compose.Render(ranked, label, len(articles)),
		Articles:    ranked,
		GeneratedAt: time.Now(),
		Stats: models.DigestStats{
			Analyzed: len(articles),
			Featured: len(ranked),
		},
	}

	// A run superseded by a force-regeneration still answers its own
	// waiters, but only the current generation may publish its digest.
	if g.generation(date) == gen {
		g.cache.put(date, digest)

		if g.archive != nil {
			if err := g.archive.SaveNewsletter(ctx, digest); err != nil {
				g.logger.Warn("persisting newsletter", zap.String("date", date), zap.Error(err))
			}
		}
	} else {
		g.logger.Info("discarding superseded newsletter run", zap.String("date", date))
	}

	g.logger.Info("newsletter generated",
		zap.String("date", date),
		zap.Int("analyzed", digest.Stats.Analyzed),
		zap.Int("featured", digest.Stats.Featured),
		zap.Duration("took", time.Since(started)))
	return digest, nil
}

func (g *Generator) generation(date string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[date]
}

func (g *Generator) bumpGeneration(date string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[date]++
}

func (g *Generator) runLock(date string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[date]
	if !ok {
		lock = new(sync.Mutex)
		g.locks[date] = lock
	}
	return lock
}

func dateLabel(date string) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}
