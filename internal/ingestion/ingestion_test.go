package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Backend Engineer - DataSystems</title><style>body{color:red}</style></head>
<body>
<nav>Home | Jobs | About</nav>
<h1>Backend   Engineer</h1>
<p>Join our backend team to build scalable APIs.</p>
<script>console.log("tracking")</script>
<div>Requirements: Go, PostgreSQL, 3+ years experience</div>
<footer>© DataSystems</footer>
</body>
</html>`

func TestExtractText_StripsBoilerplate(t *testing.T) {
	text, err := ExtractText(samplePage)
	require.NoError(t, err)

	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Join our backend team to build scalable APIs.")
	assert.Contains(t, text, "Requirements: Go, PostgreSQL, 3+ years experience")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "Home | Jobs")
	assert.NotContains(t, text, "© DataSystems")
}

func TestCleanText(t *testing.T) {
	in := "  line one\t\twith   runs  \r\n\r\n\r\n\r\nline two  "
	out := CleanText(in)
	assert.Equal(t, "line one with runs\n\nline two", out)
}

func TestFetchPostingText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher()
	text, err := f.FetchPostingText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
}

func TestFetchPostingText_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher()
	_, err := f.FetchPostingText(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchPostingText_InvalidURL(t *testing.T) {
	f := NewFetcher()

	_, err := f.FetchPostingText(context.Background(), "ftp://example.com/job")
	assert.Error(t, err)

	_, err = f.FetchPostingText(context.Background(), "://bad")
	assert.Error(t, err)
}
