// Package scoring implements the heuristic importance engine used to rank
// candidate articles for the daily digest. Scoring is deterministic and
// side-effect free so generation output is reproducible for a given batch.
package scoring

import (
	"context"
	"strings"

	"github.com/sota-ai/sotanews/internal/models"
)

// Analyzer produces a ScoredArticle for a raw article. The heuristic Engine
// is the default implementation; an LLM-backed analyzer can be swapped in
// without touching the generation pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, article models.Article) (models.ScoredArticle, error)
}

const (
	baseScore          = 0.5
	indicatorIncrement = 0.1

	tierHighMin   = 0.8
	tierMediumMin = 0.6
)

// defaultIndicators are the importance phrases the digest scorer looks for.
// Each distinct indicator present in the text adds one increment, regardless
// of how many times it occurs.
var defaultIndicators = []string{
	"breakthrough", "revolutionary", "announces", "releases",
	"achievement", "milestone", "significant", "major",
}

// defaultTagVocabulary is scanned in order against the article text; matches
// keep vocabulary order.
var defaultTagVocabulary = []string{
	"AI", "Machine Learning", "Deep Learning", "LLM", "OpenAI", "Google", "Meta",
}

// defaultInsights are attached (at most two) to articles that clear the
// insight threshold.
var defaultInsights = []string{
	"Significant advancement in AI capabilities",
	"Potential impact on industry applications",
	"Research implications for future development",
}

// Config controls a scoring Engine. The digest pipeline and the capability
// dispatcher run separately configured engines; their vocabularies are
// intentionally independent.
type Config struct {
	Indicators       []string
	TagVocabulary    []string
	Insights         []string
	MaxTags          int
	MaxInsights      int
	InsightThreshold float64
}

// DefaultConfig returns the digest-generation configuration: the standard
// vocabularies with at most 5 tags per article.
func DefaultConfig() Config {
	return Config{
		Indicators:       defaultIndicators,
		TagVocabulary:    defaultTagVocabulary,
		Insights:         defaultInsights,
		MaxTags:          5,
		MaxInsights:      2,
		InsightThreshold: tierMediumMin,
	}
}

// Engine scores articles with a fixed keyword heuristic.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine. Zero-valued config fields fall back to the
// defaults so callers can override only what they need.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if len(cfg.Indicators) == 0 {
		cfg.Indicators = def.Indicators
	}
	if len(cfg.TagVocabulary) == 0 {
		cfg.TagVocabulary = def.TagVocabulary
	}
	if len(cfg.Insights) == 0 {
		cfg.Insights = def.Insights
	}
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = def.MaxTags
	}
	if cfg.MaxInsights <= 0 {
		cfg.MaxInsights = def.MaxInsights
	}
	if cfg.InsightThreshold <= 0 {
		cfg.InsightThreshold = def.InsightThreshold
	}
	return &Engine{cfg: cfg}
}

// Score computes the importance score, tier, tags, insights, and summary for
// an article. The score starts at the base and gains one increment per
// distinct indicator present in the title or content, clamped to [0, 1].
func (e *Engine) Score(article models.Article) models.ScoredArticle {
	text := strings.ToLower(article.Title + " " + article.Content)

	score := baseScore
	for _, indicator := range e.cfg.Indicators {
		if strings.Contains(text, indicator) {
			score += indicatorIncrement
		}
	}
	if score > 1.0 {
		score = 1.0
	}

	scored := models.ScoredArticle{
		Article: article,
		Score:   score,
		Tier:    TierFor(score),
		Summary: Summarize(article.Content, 200),
		Tags:    e.extractTags(text),
	}
	if score >= e.cfg.InsightThreshold {
		n := e.cfg.MaxInsights
		if n > len(e.cfg.Insights) {
			n = len(e.cfg.Insights)
		}
		scored.Insights = append(scored.Insights, e.cfg.Insights[:n]...)
	}
	return scored
}

// Analyze implements Analyzer. The heuristic engine never fails and ignores
// the context.
func (e *Engine) Analyze(_ context.Context, article models.Article) (models.ScoredArticle, error) {
	return e.Score(article), nil
}

func (e *Engine) extractTags(loweredText string) []string {
	var tags []string
	for _, tag := range e.cfg.TagVocabulary {
		if len(tags) >= e.cfg.MaxTags {
			break
		}
		if strings.Contains(loweredText, strings.ToLower(tag)) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// TierFor maps a score to its tier: >= 0.8 high, >= 0.6 medium, else low.
func TierFor(score float64) models.Tier {
	switch {
	case score >= tierHighMin:
		return models.TierHigh
	case score >= tierMediumMin:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

// Summarize truncates text to at most maxLen runes, appending an ellipsis
// marker when anything was cut.
func Summarize(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
