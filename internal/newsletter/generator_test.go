package newsletter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/scoring"
)

// countingCollector records how many times Collect ran and can be made to
// block or fail.
type countingCollector struct {
	calls   atomic.Int64
	err     error
	release chan struct{} // when set, Collect blocks until closed
}

func (c *countingCollector) Collect(ctx context.Context, date string) ([]models.Article, error) {
	c.calls.Add(1)
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return []models.Article{
		{ID: "1", Title: "OpenAI announces breakthrough model", URL: "https://example.com/1", Source: "TestWire"},
		{ID: "2", Title: "local bakery opens", URL: "https://example.com/2", Source: "TestWire"},
	}, nil
}

func newTestGenerator(coll Collector) *Generator {
	selector := scoring.NewSelector(scoring.NewEngine(scoring.DefaultConfig()), 0.7, 10)
	return NewGenerator(coll, selector, nil, zap.NewNop())
}

func TestGenerateCachesDigest(t *testing.T) {
	coll := &countingCollector{}
	gen := newTestGenerator(coll)

	first, err := gen.Generate(context.Background(), "2026-01-15", false)
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), "2026-01-15", false)
	require.NoError(t, err)

	assert.Equal(t, int64(1), coll.calls.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, "newsletter_2026-01-15", first.ID)
	assert.Equal(t, 2, first.Stats.Analyzed)
	assert.Equal(t, 1, first.Stats.Featured)
	assert.Equal(t, "SOTA.ai Daily Digest - January 15, 2026", first.Title)
}

func TestGenerateSingleFlight(t *testing.T) {
	coll := &countingCollector{release: make(chan struct{})}
	gen := newTestGenerator(coll)

	var (
		wg      sync.WaitGroup
		results [2]models.Digest
		errs    [2]error
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = gen.Generate(context.Background(), "2026-01-15", false)
		}(i)
	}

	// Let both callers join the flight before releasing the collector.
	time.Sleep(50 * time.Millisecond)
	close(coll.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(1), coll.calls.Load())
	assert.Equal(t, results[0], results[1])
}

func TestGenerateForceRegenerates(t *testing.T) {
	coll := &countingCollector{}
	gen := newTestGenerator(coll)

	first, err := gen.Generate(context.Background(), "2026-01-15", false)
	require.NoError(t, err)

	second, err := gen.Generate(context.Background(), "2026-01-15", true)
	require.NoError(t, err)

	assert.Equal(t, int64(2), coll.calls.Load())

	cached, ok := gen.GetIfReady("2026-01-15")
	require.True(t, ok)
	assert.Equal(t, second.GeneratedAt, cached.GeneratedAt)
	assert.True(t, !second.GeneratedAt.Before(first.GeneratedAt))
}

func TestGenerateFailureCachesNothing(t *testing.T) {
	coll := &countingCollector{err: errors.New("feed unreachable")}
	gen := newTestGenerator(coll)

	_, err := gen.Generate(context.Background(), "2026-01-15", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed unreachable")

	_, ok := gen.GetIfReady("2026-01-15")
	assert.False(t, ok)

	// A later attempt retries instead of replaying the failure.
	coll.err = nil
	_, err = gen.Generate(context.Background(), "2026-01-15", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), coll.calls.Load())
}

func TestGetIfReadyNeverGenerates(t *testing.T) {
	coll := &countingCollector{}
	gen := newTestGenerator(coll)

	_, ok := gen.GetIfReady("2026-01-15")
	assert.False(t, ok)
	assert.Equal(t, int64(0), coll.calls.Load())
}

func TestGenerateEmptySelection(t *testing.T) {
	coll := &emptyCollector{}
	gen := newTestGenerator(coll)

	digest, err := gen.Generate(context.Background(), "2026-01-15", false)
	require.NoError(t, err)
	assert.Empty(t, digest.Articles)
	assert.Equal(t, 1, digest.Stats.Analyzed)
	assert.Equal(t, 0, digest.Stats.Featured)
	assert.NotEmpty(t, digest.Content)
}

type emptyCollector struct{}

func (e *emptyCollector) Collect(ctx context.Context, date string) ([]models.Article, error) {
	return []models.Article{{ID: "1", Title: "quiet news day"}}, nil
}

func TestGenerateDifferentKeysAreIndependent(t *testing.T) {
	coll := &countingCollector{}
	gen := newTestGenerator(coll)

	_, err := gen.Generate(context.Background(), "2026-01-15", false)
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), "2026-01-16", false)
	require.NoError(t, err)

	assert.Equal(t, int64(2), coll.calls.Load())

	_, ok := gen.GetIfReady("2026-01-15")
	assert.True(t, ok)
	_, ok = gen.GetIfReady("2026-01-16")
	assert.True(t, ok)
}

// supersededCollector blocks its first call until released and tracks how
// many collections run at once.
type supersededCollector struct {
	mu        sync.Mutex
	calls     int
	active    int
	maxActive int
	started   chan struct{}
	release   chan struct{}
}

func (c *supersededCollector) Collect(ctx context.Context, date string) ([]models.Article, error) {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
	}()

	if n == 1 {
		close(c.started)
		<-c.release
		return []models.Article{
			{ID: "stale", Title: "OpenAI announces breakthrough model", URL: "https://example.com/stale", Source: "TestWire"},
		}, nil
	}
	return []models.Article{
		{ID: "fresh", Title: "Google releases major milestone model", URL: "https://example.com/fresh", Source: "TestWire"},
	}, nil
}

func TestForceSupersedesInFlightRun(t *testing.T) {
	coll := &supersededCollector{started: make(chan struct{}), release: make(chan struct{})}
	gen := newTestGenerator(coll)

	var (
		wg       sync.WaitGroup
		stale    models.Digest
		staleErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		stale, staleErr = gen.Generate(context.Background(), "2026-01-15", false)
	}()
	<-coll.started

	// Let the superseded run finish once the forced one is waiting on it.
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(coll.release)
	}()

	fresh, err := gen.Generate(context.Background(), "2026-01-15", true)
	require.NoError(t, err)
	wg.Wait()
	require.NoError(t, staleErr)

	// The forced caller got the regenerated digest; the superseded run
	// still answered its own waiter.
	require.Len(t, fresh.Articles, 1)
	assert.Equal(t, "fresh", fresh.Articles[0].ID)
	require.Len(t, stale.Articles, 1)
	assert.Equal(t, "stale", stale.Articles[0].ID)

	// The cache holds the forced result, not the superseded run's.
	cached, ok := gen.GetIfReady("2026-01-15")
	require.True(t, ok)
	require.Len(t, cached.Articles, 1)
	assert.Equal(t, "fresh", cached.Articles[0].ID)

	// The two collections ran one after the other, never overlapping.
	coll.mu.Lock()
	defer coll.mu.Unlock()
	assert.Equal(t, 2, coll.calls)
	assert.Equal(t, 1, coll.maxActive)
}

func TestGenerateCallerTimeoutDoesNotAbortFlight(t *testing.T) {
	coll := &countingCollector{release: make(chan struct{})}
	gen := newTestGenerator(coll)

	// Caller A joins with a short deadline and gives up.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := gen.Generate(ctx, "2026-01-15", false)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The generation keeps running and completes for later callers.
	close(coll.release)
	digest, err := gen.Generate(context.Background(), "2026-01-15", false)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", digest.Date)
	assert.Equal(t, int64(1), coll.calls.Load())
}
