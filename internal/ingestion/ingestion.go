// Package ingestion fetches job posting pages and extracts readable text.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher downloads job posting pages. Static HTML only; sites that
// require JavaScript rendering are out of scope.
type Fetcher struct {
	client *http.Client
}

const (
	defaultFetchTimeout = 20 * time.Second
	maxBodyBytes        = 4 << 20 // 4 MiB cap on fetched pages
	userAgent           = "talent-match/1.0 (+job posting ingestion)"
)

// NewFetcher creates a Fetcher with a sensible timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// FetchPostingText downloads the page at rawURL and returns its readable
// text content.
func (f *Fetcher) FetchPostingText(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid posting URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid posting URL %q: must be http or https", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch posting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch posting: status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read posting body: %w", err)
	}

	return ExtractText(string(body))
}

// ExtractText strips markup and boilerplate elements from an HTML page and
// returns normalized visible text.
func ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, iframe").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		// Fragment without a body element.
		text = doc.Text()
	}

	return CleanText(text), nil
}

var (
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes whitespace while keeping line structure readable.
func CleanText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, strings.TrimSpace(spaceRuns.ReplaceAllString(line, " ")))
	}

	result := strings.Join(cleaned, "\n")
	result = blankRuns.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}
