package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHackerNewsTestServer(t *testing.T, items map[int]hackerNewsItem, order []int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(order)
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(r.URL.Path, "/item/%d.json", &id)
		json.NewEncoder(w).Encode(items[id])
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHackerNewsFetchFiltersAIStories(t *testing.T) {
	items := map[int]hackerNewsItem{
		1: {ID: 1, Title: "OpenAI releases new model", URL: "https://example.com/1", Score: 312, Time: 1700000000},
		2: {ID: 2, Title: "Show HN: my static site generator", URL: "https://example.com/2", Score: 90, Time: 1700000100},
		3: {ID: 3, Title: "Deep learning on the edge", URL: "https://example.com/3", Score: 45, Time: 1700000200},
	}
	srv := newHackerNewsTestServer(t, items, []int{1, 2, 3})

	client := NewHackerNewsClient()
	client.baseURL = srv.URL

	got, err := client.FetchArticles(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "hn_1", got[0].ID)
	assert.Equal(t, "OpenAI releases new model", got[0].Title)
	assert.Equal(t, "HackerNews", got[0].Source)
	assert.Equal(t, "312", got[0].Metadata["score"])
	assert.Equal(t, generateHash("OpenAI releases new model"), got[0].Hash)
	assert.Equal(t, "hn_3", got[1].ID)
}

func TestHackerNewsFetchHonorsLimit(t *testing.T) {
	items := map[int]hackerNewsItem{
		1: {ID: 1, Title: "GPT agents in production", Time: 1700000000},
		2: {ID: 2, Title: "Neural network pruning survey", Time: 1700000100},
	}
	srv := newHackerNewsTestServer(t, items, []int{1, 2})

	client := NewHackerNewsClient()
	client.baseURL = srv.URL

	got, err := client.FetchArticles(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestHackerNewsFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewHackerNewsClient()
	client.baseURL = srv.URL

	_, err := client.FetchArticles(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestIsAIRelated(t *testing.T) {
	assert.True(t, isAIRelated("Anthropic ships a new Claude release"))
	assert.True(t, isAIRelated("LLM inference on consumer GPUs"))
	assert.False(t, isAIRelated("Rust 2.0 roadmap discussion"))
}
