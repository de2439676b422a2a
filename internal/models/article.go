package models

import (
	"context"
	"time"
)

// Article is a raw content item collected from a source. Immutable once
// ingested; analysis results live on ScoredArticle.
type Article struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	PublishedAt time.Time         `json:"published_at"`
	Hash        string            `json:"hash"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Tier is the coarse importance classification derived from a score.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ScoredArticle is an Article plus the analysis derived from it. Scoring
// always produces a fresh value; an existing ScoredArticle is never mutated.
type ScoredArticle struct {
	Article
	Score    float64  `json:"ai_score"`
	Tier     Tier     `json:"importance"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Insights []string `json:"key_insights"`
}

// Digest is the rendered, ranked output of one newsletter generation run.
// Articles are in rank order, highest score first.
type Digest struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Articles    []ScoredArticle `json:"articles"`
	GeneratedAt time.Time       `json:"generated_at"`
	Stats       DigestStats     `json:"stats"`
}

// DigestStats summarizes a generation run.
type DigestStats struct {
	Analyzed int `json:"total_articles_analyzed"`
	Featured int `json:"featured_articles"`
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Frequency    string    `json:"frequency"`
	Topics       []string  `json:"topics"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Active       bool      `json:"is_active"`
}

// Source fetches candidate articles from an external provider.
type Source interface {
	FetchArticles(ctx context.Context, limit int) ([]Article, error)
	Name() string
}
