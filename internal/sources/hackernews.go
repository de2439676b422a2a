package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sota-ai/sotanews/internal/models"
)

const hackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"

// scanDepth is how many top stories are examined per fetch; only the
// AI-related subset is returned.
const scanDepth = 100

type HackerNewsClient struct {
	baseURL string
	client  *http.Client
}

type hackerNewsItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

func NewHackerNewsClient() *HackerNewsClient {
	return &HackerNewsClient{
		baseURL: hackerNewsBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HackerNewsClient) FetchArticles(ctx context.Context, limit int) ([]models.Article, error) {
	var storyIDs []int
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &storyIDs); err != nil {
		return nil, fmt.Errorf("fetching top stories: %w", err)
	}

	if len(storyIDs) > scanDepth {
		storyIDs = storyIDs[:scanDepth]
	}

	articles := make([]models.Article, 0, limit)
	for _, id := range storyIDs {
		if len(articles) >= limit {
			break
		}

		var item hackerNewsItem
		url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
		if err := c.getJSON(ctx, url, &item); err != nil {
			return nil, fmt.Errorf("fetching story %d: %w", id, err)
		}

		if item.Title == "" || !isAIRelated(item.Title) {
			continue
		}

		articles = append(articles, models.Article{
			ID:          fmt.Sprintf("hn_%d", item.ID),
			Title:       item.Title,
			URL:         item.URL,
			Source:      "HackerNews",
			PublishedAt: time.Unix(item.Time, 0),
			Hash:        generateHash(item.Title),
			Metadata: map[string]string{
				"score": fmt.Sprintf("%d", item.Score),
			},
		})
	}

	return articles, nil
}

func (c *HackerNewsClient) Name() string {
	return "hackernews"
}

func (c *HackerNewsClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hackernews returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
