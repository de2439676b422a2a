package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/scoring"
)

type RedditClient struct {
	url    string
	client *http.Client
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				URL        string  `json:"url"`
				SelfText   string  `json:"selftext"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
				Permalink  string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func NewRedditClient() *RedditClient {
	return &RedditClient{
		url: "https://www.reddit.com/r/MachineLearning/.json",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *RedditClient) FetchArticles(ctx context.Context, limit int) ([]models.Article, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "SOTA.ai/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	articles := make([]models.Article, 0, limit)
	for _, child := range listing.Data.Children {
		if len(articles) >= limit {
			break
		}

		post := child.Data
		content := scoring.Summarize(post.SelfText, 200)

		articles = append(articles, models.Article{
			ID:          fmt.Sprintf("reddit_%s", post.ID),
			Title:       post.Title,
			Content:     content,
			URL:         post.URL,
			Source:      "Reddit r/MachineLearning",
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0),
			Hash:        generateHash(post.Title),
			Metadata: map[string]string{
				"score":     fmt.Sprintf("%d", post.Score),
				"permalink": post.Permalink,
			},
		})
	}

	return articles, nil
}

func (c *RedditClient) Name() string {
	return "reddit"
}
