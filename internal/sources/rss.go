package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/scoring"
)

// RSSClient fetches articles from a single RSS or Atom feed, such as the
// OpenAI or Google AI blogs.
type RSSClient struct {
	name   string
	url    string
	parser *gofeed.Parser
}

func NewRSSClient(name, feedURL string) *RSSClient {
	return &RSSClient{
		name:   name,
		url:    feedURL,
		parser: gofeed.NewParser(),
	}
}

func (c *RSSClient) FetchArticles(ctx context.Context, limit int) ([]models.Article, error) {
	feed, err := c.parser.ParseURLWithContext(c.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", c.name, err)
	}

	articles := make([]models.Article, 0, limit)
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}

		publishedAt := time.Now()
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		content := item.Description
		if content == "" {
			content = item.Content
		}
		content = scoring.Summarize(stripHTML(content), 300)

		articles = append(articles, models.Article{
			ID:          fmt.Sprintf("%s_%s", c.name, generateHash(item.Link)[:16]),
			Title:       item.Title,
			Content:     content,
			URL:         item.Link,
			Source:      c.name,
			PublishedAt: publishedAt,
			Hash:        generateHash(item.Link),
		})
	}

	return articles, nil
}

func (c *RSSClient) Name() string {
	return c.name
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
