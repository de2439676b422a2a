package capability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sota-ai/sotanews/internal/models"
)

func TestAnalyzeArticle(t *testing.T) {
	content := "OpenAI published new machine learning research on neural networks today"
	payload := analyzeArticle(content)

	assert.Equal(t, "positive", payload["sentiment"])
	assert.Equal(t, []string{"machine learning"}, payload["topics"])
	assert.Equal(t, []string{"OpenAI", "neural networks"}, payload["entities"])
	assert.Equal(t, 10, payload["word_count"])
	assert.Equal(t, "1 min", payload["estimated_read_time"])
}

func TestAnalyzeArticleReadTime(t *testing.T) {
	long := strings.Repeat("word ", 600)
	payload := analyzeArticle(long)
	assert.Equal(t, 600, payload["word_count"])
	assert.Equal(t, "3 min", payload["estimated_read_time"])
}

func TestSummarizeContent(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = "word"
	}
	payload := summarizeContent(strings.Join(words, " "))

	assert.Equal(t, 100, payload["original_length"])
	assert.Equal(t, 25, payload["summary_length"])
	assert.InDelta(t, 0.25, payload["compression_ratio"].(float64), 1e-9)

	summary := payload["summary"].(string)
	assert.True(t, strings.HasSuffix(summary, "..."))
	assert.Len(t, payload["key_points"].([]string), 3)
}

func TestSummarizeCapsAtFifty(t *testing.T) {
	words := make([]string, 400)
	for i := range words {
		words[i] = "word"
	}
	payload := summarizeContent(strings.Join(words, " "))
	assert.Equal(t, 50, payload["summary_length"])
}

func TestSummarizeEmptyContent(t *testing.T) {
	payload := summarizeContent("")
	assert.Equal(t, 0, payload["original_length"])
	assert.Equal(t, 0, payload["summary_length"])
	assert.InDelta(t, 0.0, payload["compression_ratio"].(float64), 1e-9)
}

func TestExtractKeywords(t *testing.T) {
	payload := extractKeywords("This paper discusses machine learning and neural networks")

	keywords := payload["keywords"].([]string)
	require.Equal(t, []string{"machine learning", "neural networks"}, keywords)
	assert.Equal(t, "AI/ML Research", payload["category"])

	relevance := payload["relevance_scores"].(map[string]float64)
	assert.InDelta(t, 0.8, relevance["machine learning"], 1e-9)
	assert.InDelta(t, 0.82, relevance["neural networks"], 1e-9)
}

func TestExtractKeywordsNoMatches(t *testing.T) {
	payload := extractKeywords("a story about gardening")
	assert.Empty(t, payload["keywords"])
	assert.Equal(t, "Technology", payload["category"])
}

func TestRateImportance(t *testing.T) {
	tests := []struct {
		name    string
		content string
		level   models.Tier
		score   float64
		found   int
	}{
		{
			name:    "three indicators rate high",
			content: "A revolutionary breakthrough and major step forward",
			level:   models.TierHigh,
			score:   0.9,
			found:   3,
		},
		{
			name:    "one indicator rates medium",
			content: "This is a significant development",
			level:   models.TierMedium,
			score:   0.6,
			found:   1,
		},
		{
			name:    "no indicators rate low",
			content: "nothing to see here",
			level:   models.TierLow,
			score:   0.3,
			found:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := rateImportance(tt.content)
			assert.Equal(t, tt.level, payload["importance_level"])
			assert.InDelta(t, tt.score, payload["importance_score"].(float64), 1e-9)
			assert.Equal(t, tt.found, payload["indicators_found"])
			assert.Equal(t, tt.level, payload["recommended_priority"])
		})
	}
}

func TestComposeNewsletter(t *testing.T) {
	content := "OpenAI announces breakthrough model\n\nMeta releases major open source LLM\n"
	payload := composeNewsletter(content)

	assert.Equal(t, 2, payload["article_count"])
	body := payload["newsletter_content"].(string)
	assert.Contains(t, body, "SOTA.ai Daily Digest")
	assert.Contains(t, body, "OpenAI announces breakthrough model")
	assert.Greater(t, payload["word_count"].(int), 0)
}
