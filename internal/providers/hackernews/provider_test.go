package hackernews

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

const sampleHitsJSON = `{
  "hits": [
    {
      "objectID": "8863",
      "title": "My YC app: Dropbox",
      "url": "http://www.getdropbox.com/u/2/screencast.html",
      "author": "dhouston",
      "points": 111,
      "num_comments": 71,
      "created_at_i": 1175714200,
      "story_text": null
    },
    {
      "objectID": "121003",
      "title": "Ask HN: The Arc Effect",
      "url": null,
      "author": "tel",
      "points": 25,
      "num_comments": 16,
      "created_at_i": 1210010000,
      "story_text": "What are the long term effects?"
    }
  ],
  "nbHits": 2,
  "page": 0
}`

func testServer(t *testing.T, statusCode int, body string, capture *string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			*capture = r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestProvider(t *testing.T, ts *httptest.Server) *Provider {
	t.Helper()
	old := searchBase
	searchBase = ts.URL
	t.Cleanup(func() { searchBase = old })

	p := New()
	p.client = ts.Client()
	return p
}

func TestProvider_Identity(t *testing.T) {
	p := New()

	assert.Equal(t, "hackernews", p.ID())
	assert.Equal(t, "Hacker News", p.Name())
	assert.NotEmpty(t, p.Description())
}

func TestProvider_Search(t *testing.T) {
	t.Run("maps points to score and submission time to timestamp", func(t *testing.T) {
		ts := testServer(t, http.StatusOK, sampleHitsJSON, nil)
		p := newTestProvider(t, ts)

		results, err := p.Search(context.Background(), "dropbox", 0)

		require.NoError(t, err)
		require.Len(t, results, 2)

		story := results[0]
		assert.Equal(t, "My YC app: Dropbox", story.Title)
		assert.Equal(t, "http://www.getdropbox.com/u/2/screencast.html", story.URL)
		require.NotNil(t, story.Score)
		assert.InDelta(t, 111.0, *story.Score, 0.001)
		require.NotNil(t, story.Timestamp)
		assert.Equal(t, int64(1175714200000), *story.Timestamp)
		assert.Equal(t, "dhouston", story.Metadata["author"])
		assert.Equal(t, 71, story.Metadata["comments"])
	})

	t.Run("text posts fall back to the HN permalink", func(t *testing.T) {
		ts := testServer(t, http.StatusOK, sampleHitsJSON, nil)
		p := newTestProvider(t, ts)

		results, err := p.Search(context.Background(), "arc", 0)

		require.NoError(t, err)
		require.Len(t, results, 2)

		ask := results[1]
		assert.Equal(t, "https://news.ycombinator.com/item?id=121003", ask.URL)
		assert.Equal(t, "What are the long term effects?", ask.Description)
	})

	t.Run("passes query, story tag and clamped page size", func(t *testing.T) {
		var query string
		ts := testServer(t, http.StatusOK, `{"hits":[]}`, &query)
		p := newTestProvider(t, ts)

		_, err := p.Search(context.Background(), "zig lang", 500)

		require.NoError(t, err)
		assert.Contains(t, query, "query=zig+lang")
		assert.Contains(t, query, "tags=story")
		assert.Contains(t, query, "hitsPerPage=100")
	})

	t.Run("HTTP 429 maps to the rate limit error", func(t *testing.T) {
		ts := testServer(t, http.StatusTooManyRequests, "slow down", nil)
		p := newTestProvider(t, ts)

		_, err := p.Search(context.Background(), "golang", 0)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("other non-200 statuses are provider failures", func(t *testing.T) {
		ts := testServer(t, http.StatusBadGateway, "bad", nil)
		p := newTestProvider(t, ts)

		_, err := p.Search(context.Background(), "golang", 0)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	})

	t.Run("already-cancelled context returns empty without a request", func(t *testing.T) {
		called := false
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		t.Cleanup(ts.Close)
		p := newTestProvider(t, ts)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := p.Search(ctx, "golang", 0)

		require.NoError(t, err)
		assert.Nil(t, results)
		assert.False(t, called)
	})
}

func TestHitResult(t *testing.T) {
	t.Run("zero submission time leaves the timestamp unset", func(t *testing.T) {
		r := hitResult(hit{ObjectID: "1", Title: "t", Points: 3})

		assert.Nil(t, r.Timestamp)
		require.NotNil(t, r.Score)
		assert.InDelta(t, 3.0, *r.Score, 0.001)
	})
}
