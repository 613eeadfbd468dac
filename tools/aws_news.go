package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/awsq/awsq/internal/feed"
)

const (
	defaultNewsLimit = 5
	maxSummaryRunes  = 200
	newsEllipsis     = "..."
)

// NewsFetcher is implemented by internal/feed.Fetcher.
type NewsFetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Entry, error)
}

// NewsInput is the model-facing input schema for get_aws_news.
type NewsInput struct {
	Limit int `json:"limit,omitempty" jsonschema_description:"Maximum number of news items to return (default 5)."`
}

var newsInputSchema = GenerateSchema[NewsInput]()

// NewsItem is one entry in the tool's payload.
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
}

// NewsData is the payload of get_aws_news. Items is always non-nil so the
// failure shape carries an empty list rather than JSON null.
type NewsData struct {
	Items []NewsItem `json:"items"`
}

// NewNewsTool builds the get_aws_news tool reading from feedURL.
func NewNewsTool(fetcher NewsFetcher, feedURL string, logger *slog.Logger) ToolDefinition {
	return ToolDefinition{
		Name:        "get_aws_news",
		Description: "AWS の最新ニュース (What's New) を取得します。",
		InputSchema: newsInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) Result {
			var in NewsInput
			if err := json.Unmarshal(input, &in); err != nil {
				return Fail("invalid input: %v", err)
			}
			limit := in.Limit
			if limit <= 0 {
				limit = defaultNewsLimit
			}

			if fetcher == nil {
				res := Fail("news feed backend is not configured")
				res.Data = NewsData{Items: []NewsItem{}}
				return res
			}

			entries, err := fetcher.Fetch(ctx, feedURL)
			if err != nil {
				logger.Warn("news feed fetch failed", "url", feedURL, "error", err)
				res := Fail("failed to fetch news feed: %v", err)
				res.Data = NewsData{Items: []NewsItem{}}
				return res
			}
			if limit > len(entries) {
				limit = len(entries)
			}

			items := make([]NewsItem, 0, limit)
			for _, e := range entries[:limit] {
				published := ""
				if !e.Published.IsZero() {
					published = e.Published.Format("2006-01-02 15:04")
				}
				items = append(items, NewsItem{
					Title:     e.Title,
					Link:      e.Link,
					Published: published,
					Summary:   truncateRunes(e.Summary, maxSummaryRunes, newsEllipsis),
				})
			}
			return OK(NewsData{Items: items})
		},
	}
}

// truncateRunes clamps s to max runes, appending marker when clamped.
func truncateRunes(s string, max int, marker string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + marker
}
