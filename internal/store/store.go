// Package store persists articles, newsletters, and subscribers in sqlite.
// The generation coordinator's in-memory cache sits in front of it; nothing
// in the pipeline requires the store to be present.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sota-ai/sotanews/internal/models"
)

// ErrDuplicateSubscriber is returned when an email is already subscribed.
var ErrDuplicateSubscriber = errors.New("subscriber already exists")

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// Open creates or opens the database at dbPath. Writes go through a single
// connection; reads use a separate read-only handle.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			content      TEXT NOT NULL DEFAULT '',
			url          TEXT NOT NULL,
			source       TEXT NOT NULL,
			published_at DATETIME NOT NULL,
			hash         TEXT NOT NULL,
			ai_score     REAL NOT NULL DEFAULT 0,
			importance   TEXT NOT NULL DEFAULT 'low',
			summary      TEXT NOT NULL DEFAULT '',
			tags         TEXT NOT NULL DEFAULT '[]',
			created_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_importance ON articles(importance);

		CREATE TABLE IF NOT EXISTS newsletters (
			date         TEXT PRIMARY KEY,
			id           TEXT NOT NULL,
			title        TEXT NOT NULL,
			content      TEXT NOT NULL,
			articles     TEXT NOT NULL DEFAULT '[]',
			analyzed     INTEGER NOT NULL DEFAULT 0,
			featured     INTEGER NOT NULL DEFAULT 0,
			generated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS subscribers (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			frequency     TEXT NOT NULL DEFAULT 'daily',
			topics        TEXT NOT NULL DEFAULT '[]',
			subscribed_at DATETIME NOT NULL,
			is_active     INTEGER NOT NULL DEFAULT 1
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// UpsertArticles writes scored articles, replacing the analysis fields of
// any existing rows.
func (s *Store) UpsertArticles(ctx context.Context, articles []models.ScoredArticle) error {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (id, title, content, url, source, published_at, hash,
			ai_score, importance, summary, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ai_score = excluded.ai_score,
			importance = excluded.importance,
			summary = excluded.summary,
			tags = excluded.tags
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, a := range articles {
		tags, err := json.Marshal(a.Tags)
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", a.ID, err)
		}
		_, err = stmt.ExecContext(ctx, a.ID, a.Title, a.Content, a.URL, a.Source,
			a.PublishedAt, a.Hash, a.Score, string(a.Tier), a.Summary, string(tags), now)
		if err != nil {
			return fmt.Errorf("upserting article %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LatestArticles returns the most recently published articles, optionally
// filtered by importance tier.
func (s *Store) LatestArticles(ctx context.Context, limit int, importance string) ([]models.ScoredArticle, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, title, content, url, source, published_at, hash,
		ai_score, importance, summary, tags FROM articles`
	var args []any
	if importance != "" {
		query += " WHERE importance = ?"
		args = append(args, importance)
	}
	query += " ORDER BY published_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []models.ScoredArticle
	for rows.Next() {
		var (
			a       models.ScoredArticle
			tier    string
			tagJSON string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.URL, &a.Source,
			&a.PublishedAt, &a.Hash, &a.Score, &tier, &a.Summary, &tagJSON); err != nil {
			return nil, err
		}
		a.Tier = models.Tier(tier)
		if err := json.Unmarshal([]byte(tagJSON), &a.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", a.ID, err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// SaveNewsletter stores a digest, replacing any previous digest for the
// same date.
func (s *Store) SaveNewsletter(ctx context.Context, digest models.Digest) error {
	articles, err := json.Marshal(digest.Articles)
	if err != nil {
		return fmt.Errorf("encoding digest articles: %w", err)
	}

	_, err = s.writeDB.ExecContext(ctx, `
		INSERT INTO newsletters (date, id, title, content, articles, analyzed, featured, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			id = excluded.id,
			title = excluded.title,
			content = excluded.content,
			articles = excluded.articles,
			analyzed = excluded.analyzed,
			featured = excluded.featured,
			generated_at = excluded.generated_at
	`, digest.Date, digest.ID, digest.Title, digest.Content, string(articles),
		digest.Stats.Analyzed, digest.Stats.Featured, digest.GeneratedAt)
	if err != nil {
		return fmt.Errorf("saving newsletter %s: %w", digest.Date, err)
	}
	return nil
}

// GetNewsletter loads the digest for a date. The second return is false when
// none exists.
func (s *Store) GetNewsletter(ctx context.Context, date string) (models.Digest, bool, error) {
	var (
		digest      models.Digest
		articleJSON string
	)
	err := s.readDB.QueryRowContext(ctx, `
		SELECT date, id, title, content, articles, analyzed, featured, generated_at
		FROM newsletters WHERE date = ?
	`, date).Scan(&digest.Date, &digest.ID, &digest.Title, &digest.Content,
		&articleJSON, &digest.Stats.Analyzed, &digest.Stats.Featured, &digest.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Digest{}, false, nil
	}
	if err != nil {
		return models.Digest{}, false, err
	}

	if err := json.Unmarshal([]byte(articleJSON), &digest.Articles); err != nil {
		return models.Digest{}, false, fmt.Errorf("decoding digest articles: %w", err)
	}
	return digest, true, nil
}

// AddSubscriber registers a new subscriber.
func (s *Store) AddSubscriber(ctx context.Context, email, frequency string, topics []string) (models.Subscriber, error) {
	if frequency == "" {
		frequency = "daily"
	}
	if topics == nil {
		topics = []string{}
	}

	sub := models.Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		Frequency:    frequency,
		Topics:       topics,
		SubscribedAt: time.Now(),
		Active:       true,
	}

	topicJSON, err := json.Marshal(sub.Topics)
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("encoding topics: %w", err)
	}

	_, err = s.writeDB.ExecContext(ctx, `
		INSERT INTO subscribers (id, email, frequency, topics, subscribed_at, is_active)
		VALUES (?, ?, ?, ?, ?, 1)
	`, sub.ID, sub.Email, sub.Frequency, string(topicJSON), sub.SubscribedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return models.Subscriber{}, ErrDuplicateSubscriber
		}
		return models.Subscriber{}, fmt.Errorf("adding subscriber: %w", err)
	}
	return sub, nil
}

// ActiveSubscribers lists subscribers that have not unsubscribed.
func (s *Store) ActiveSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT id, email, frequency, topics, subscribed_at, is_active
		FROM subscribers WHERE is_active = 1 ORDER BY subscribed_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		var (
			sub       models.Subscriber
			topicJSON string
		)
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Frequency, &topicJSON,
			&sub.SubscribedAt, &sub.Active); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(topicJSON), &sub.Topics); err != nil {
			return nil, fmt.Errorf("decoding topics for %s: %w", sub.ID, err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Stats returns row counts for the stats endpoint.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int, 3)
	for name, query := range map[string]string{
		"articles":    "SELECT COUNT(*) FROM articles",
		"newsletters": "SELECT COUNT(*) FROM newsletters",
		"subscribers": "SELECT COUNT(*) FROM subscribers WHERE is_active = 1",
	} {
		var n int
		if err := s.readDB.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", name, err)
		}
		stats[name] = n
	}
	return stats, nil
}
