// Package webpage downloads a URL and extracts readable text or raw HTML
// for the browse tool. Readability handles the article case; a DOM text
// walk covers pages readability rejects.
package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/awsq/awsq/internal/httpkit"
)

const maxBodyBytes = 5 * 1024 * 1024

// Page holds the downloaded document in both extracted and raw form.
type Page struct {
	Title string
	Text  string
	HTML  string
}

// Fetcher downloads pages.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher. No overall client timeout is set; the browse tool
// enforces its own hard wall-clock deadline.
func New() *Fetcher {
	return &Fetcher{client: httpkit.NewClient(httpkit.WithTimeout(0))}
}

// Fetch downloads rawURL and returns title, extracted text, and raw HTML.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("webpage: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webpage: only http/https allowed, got %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("webpage: build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.7")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpage: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		httpkit.DrainAndClose(resp.Body, 1024)
		return nil, fmt.Errorf("webpage: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("webpage: read body: %w", err)
	}
	html := string(body)

	page := &Page{HTML: html}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		page.Title = article.Title
		page.Text = strings.TrimSpace(article.TextContent)
		return page, nil
	}

	// Readability gave up; fall back to a plain DOM text walk.
	title, text := extractText(html)
	page.Title = title
	page.Text = text
	return page, nil
}

// Screenshotter captures a rendered screenshot of a URL. Implemented by the
// remote renderer client; nil when no renderer is configured.
type Screenshotter interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

// RendererClient captures screenshots through a remote browser renderer.
//
// Wire contract: POST {base}/screenshot {"url": "..."} -> image bytes.
type RendererClient struct {
	base   string
	client *http.Client
}

// NewRenderer returns a RendererClient for the renderer at base.
func NewRenderer(base string) *RendererClient {
	return &RendererClient{base: base, client: httpkit.NewClient(httpkit.WithTimeout(55 * time.Second))}
}

// Capture renders url and returns the raw image bytes.
func (r *RendererClient) Capture(ctx context.Context, pageURL string) ([]byte, error) {
	body := strings.NewReader(fmt.Sprintf(`{"url":%q}`, pageURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/screenshot", body)
	if err != nil {
		return nil, fmt.Errorf("webpage: screenshot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpage: screenshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webpage: screenshot: status %d: %s",
			resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 512))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
