package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, description string) *httptest.Server {
	t.Helper()
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <item>
      <title>New model announced</title>
      <link>https://example.com/posts/1</link>
      <description>` + description + `</description>
      <pubDate>Thu, 15 Jan 2026 09:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feed))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetchArticles(t *testing.T) {
	srv := newFeedServer(t, "A short description.")
	client := NewRSSClient("example_blog", srv.URL)

	got, err := client.FetchArticles(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "New model announced", got[0].Title)
	assert.Equal(t, "A short description.", got[0].Content)
	assert.Equal(t, "example_blog", got[0].Source)
	assert.Equal(t, "https://example.com/posts/1", got[0].URL)
	assert.Equal(t, "example_blog_"+generateHash("https://example.com/posts/1")[:16], got[0].ID)
}

func TestRSSFetchTruncatesOnRuneBoundary(t *testing.T) {
	// A long accented description must be cut between characters, never
	// mid-rune.
	srv := newFeedServer(t, strings.Repeat("é", 400))
	client := NewRSSClient("example_blog", srv.URL)

	got, err := client.FetchArticles(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	content := got[0].Content
	assert.True(t, utf8.ValidString(content))
	assert.True(t, strings.HasSuffix(content, "..."))
	assert.Equal(t, 303, utf8.RuneCountInString(content))
}

func TestRSSFetchStripsHTML(t *testing.T) {
	srv := newFeedServer(t, "&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;")
	client := NewRSSClient("example_blog", srv.URL)

	got, err := client.FetchArticles(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hello world", got[0].Content)
}
