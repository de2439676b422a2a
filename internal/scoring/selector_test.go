package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sota-ai/sotanews/internal/models"
)

// stubAnalyzer returns a canned score per article ID.
type stubAnalyzer struct {
	scores map[string]float64
	err    error
}

func (s *stubAnalyzer) Analyze(_ context.Context, article models.Article) (models.ScoredArticle, error) {
	if s.err != nil {
		return models.ScoredArticle{}, s.err
	}
	score := s.scores[article.ID]
	return models.ScoredArticle{Article: article, Score: score, Tier: TierFor(score)}, nil
}

func articleBatch(ids ...string) []models.Article {
	out := make([]models.Article, len(ids))
	for i, id := range ids {
		out[i] = models.Article{ID: id, Title: "article " + id}
	}
	return out
}

func TestSelectFiltersAndSorts(t *testing.T) {
	analyzer := &stubAnalyzer{scores: map[string]float64{
		"a": 0.75, "b": 0.95, "c": 0.5, "d": 0.85,
	}}
	selector := NewSelector(analyzer, 0.7, 10)

	ranked, err := selector.Select(context.Background(), articleBatch("a", "b", "c", "d"))
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].ID)
	assert.Equal(t, "d", ranked[1].ID)
	assert.Equal(t, "a", ranked[2].ID)
}

func TestSelectStableOnEqualScores(t *testing.T) {
	analyzer := &stubAnalyzer{scores: map[string]float64{
		"first": 0.8, "second": 0.8, "third": 0.8, "higher": 0.9,
	}}
	selector := NewSelector(analyzer, 0.7, 10)

	ranked, err := selector.Select(context.Background(), articleBatch("first", "second", "third", "higher"))
	require.NoError(t, err)
	require.Len(t, ranked, 4)
	assert.Equal(t, "higher", ranked[0].ID)
	assert.Equal(t, "first", ranked[1].ID)
	assert.Equal(t, "second", ranked[2].ID)
	assert.Equal(t, "third", ranked[3].ID)
}

func TestSelectTruncatesToTopN(t *testing.T) {
	scores := map[string]float64{}
	ids := make([]string, 0, 15)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		scores[id] = 0.9
		ids = append(ids, id)
	}
	selector := NewSelector(&stubAnalyzer{scores: scores}, 0.7, 5)

	ranked, err := selector.Select(context.Background(), articleBatch(ids...))
	require.NoError(t, err)
	assert.Len(t, ranked, 5)
}

func TestSelectEmptyResultIsNotAnError(t *testing.T) {
	analyzer := &stubAnalyzer{scores: map[string]float64{"a": 0.2, "b": 0.3}}
	selector := NewSelector(analyzer, 0.7, 10)

	ranked, err := selector.Select(context.Background(), articleBatch("a", "b"))
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestSelectPropagatesAnalyzerError(t *testing.T) {
	selector := NewSelector(&stubAnalyzer{err: errors.New("backend down")}, 0.7, 10)

	_, err := selector.Select(context.Background(), articleBatch("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestSelectWithHeuristicEngine(t *testing.T) {
	selector := NewSelector(NewEngine(DefaultConfig()), 0.7, 10)

	ranked, err := selector.Select(context.Background(), []models.Article{
		{ID: "1", Title: "OpenAI announces breakthrough model"},
		{ID: "2", Title: "weather report"},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "1", ranked[0].ID)
}
