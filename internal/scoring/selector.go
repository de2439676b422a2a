package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/sota-ai/sotanews/internal/models"
)

// Selection defaults for digest generation.
const (
	DefaultMinScore = 0.7
	DefaultTopN     = 10
)

// Selector scores a batch of articles and keeps the best of them.
type Selector struct {
	analyzer Analyzer
	minScore float64
	topN     int
}

// NewSelector builds a Selector over the given analyzer. Non-positive
// minScore or topN fall back to the defaults.
func NewSelector(analyzer Analyzer, minScore float64, topN int) *Selector {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Selector{analyzer: analyzer, minScore: minScore, topN: topN}
}

// Select analyzes every article, drops those under the score threshold, and
// returns the survivors sorted by score descending, capped to topN. The sort
// is stable: equal scores keep their original ingestion order. An empty
// result is not an error.
func (s *Selector) Select(ctx context.Context, articles []models.Article) ([]models.ScoredArticle, error) {
	ranked := make([]models.ScoredArticle, 0, len(articles))
	for _, article := range articles {
		scored, err := s.analyzer.Analyze(ctx, article)
		if err != nil {
			return nil, fmt.Errorf("analyzing article %s: %w", article.ID, err)
		}
		if scored.Score < s.minScore {
			continue
		}
		ranked = append(ranked, scored)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > s.topN {
		ranked = ranked[:s.topN]
	}
	return ranked, nil
}
