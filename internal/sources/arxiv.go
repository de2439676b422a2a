package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/scoring"
)

const arxivQueryURL = "http://export.arxiv.org/api/query"

// ArxivClient fetches recent AI/ML/NLP papers from the ArXiv Atom API.
type ArxivClient struct {
	parser *gofeed.Parser
}

func NewArxivClient() *ArxivClient {
	return &ArxivClient{parser: gofeed.NewParser()}
}

func (c *ArxivClient) FetchArticles(ctx context.Context, limit int) ([]models.Article, error) {
	query := url.Values{}
	query.Set("search_query", "cat:cs.AI OR cat:cs.LG OR cat:cs.CL")
	query.Set("start", "0")
	query.Set("max_results", fmt.Sprintf("%d", limit))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")

	feed, err := c.parser.ParseURLWithContext(arxivQueryURL+"?"+query.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching arxiv feed: %w", err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		publishedAt := time.Now()
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		}

		summary := scoring.Summarize(strings.TrimSpace(item.Description), 300)

		// Atom entry IDs look like http://arxiv.org/abs/2401.12345v1.
		paperID := item.Link
		if idx := strings.LastIndex(paperID, "/"); idx >= 0 {
			paperID = paperID[idx+1:]
		}

		articles = append(articles, models.Article{
			ID:          fmt.Sprintf("arxiv_%s", paperID),
			Title:       item.Title,
			Content:     summary,
			URL:         item.Link,
			Source:      "ArXiv",
			PublishedAt: publishedAt,
			Hash:        generateHash(item.Link),
			Metadata: map[string]string{
				"authors": joinAuthors(item),
			},
		})
	}

	return articles, nil
}

func (c *ArxivClient) Name() string {
	return "arxiv"
}

func joinAuthors(item *gofeed.Item) string {
	names := make([]string, 0, len(item.Authors))
	for _, author := range item.Authors {
		names = append(names, author.Name)
	}
	return strings.Join(names, ", ")
}
