package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/awsq/awsq/internal/webpage"
)

const (
	// browseTimeout is a hard wall-clock bound on the whole page interaction,
	// independent of any library-internal blocking.
	browseTimeout = 60 * time.Second

	maxExtractedTextRunes = 10_000
	maxHTMLRunes          = 20_000
	maxScreenshotRunes    = 10_000
	browseTruncationMark  = "\n... [truncated]"
)

// PageFetcher is implemented by internal/webpage.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*webpage.Page, error)
}

// BrowseInput is the model-facing input schema for browse_web.
type BrowseInput struct {
	URL         string `json:"url" jsonschema_description:"The URL to open."`
	ExtractType string `json:"extract_type,omitempty" jsonschema:"enum=text,enum=html,enum=screenshot" jsonschema_description:"What to extract: text (default), html, or screenshot."`
}

var browseInputSchema = GenerateSchema[BrowseInput]()

// BrowseData is the payload of browse_web. Exactly one of Text, HTML, or
// Screenshot is set depending on extract_type.
type BrowseData struct {
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	Text       string `json:"text,omitempty"`
	HTML       string `json:"html,omitempty"`
	Screenshot string `json:"screenshot,omitempty"` // base64, possibly truncated
}

// NewBrowseTool builds the browse_web tool. shots may be nil; screenshot
// requests then fail with a configuration message rather than an exception.
func NewBrowseTool(pages PageFetcher, shots webpage.Screenshotter, logger *slog.Logger) ToolDefinition {
	return ToolDefinition{
		Name:        "browse_web",
		Description: "指定された URL のウェブページを開き、テキスト・HTML・スクリーンショットのいずれかを取得します。",
		InputSchema: browseInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) Result {
			var in BrowseInput
			if err := json.Unmarshal(input, &in); err != nil {
				return Fail("invalid input: %v", err)
			}
			if in.URL == "" {
				return Fail("url is required")
			}
			mode := in.ExtractType
			if mode == "" {
				mode = "text"
			}
			switch mode {
			case "text", "html", "screenshot":
			default:
				return Fail("unknown extract_type %q (valid: text, html, screenshot)", mode)
			}

			// The fetch runs in its own goroutine so the timeout holds even
			// if the underlying library ignores context cancellation.
			type outcome struct {
				res Result
			}
			done := make(chan outcome, 1)
			fetchCtx, cancel := context.WithTimeout(ctx, browseTimeout)
			defer cancel()
			go func() {
				done <- outcome{res: browse(fetchCtx, pages, shots, in.URL, mode)}
			}()

			select {
			case o := <-done:
				return o.res
			case <-fetchCtx.Done():
				if ctx.Err() != nil {
					return Fail("browse cancelled: %v", ctx.Err())
				}
				logger.Warn("browse timed out", "url", in.URL, "mode", mode)
				return Fail("page interaction timed out after %s", browseTimeout)
			}
		},
	}
}

func browse(ctx context.Context, pages PageFetcher, shots webpage.Screenshotter, url, mode string) Result {
	if mode == "screenshot" {
		if shots == nil {
			return Fail("screenshot capture requires a configured browser renderer")
		}
		img, err := shots.Capture(ctx, url)
		if err != nil {
			return Fail("failed to capture screenshot: %v", err)
		}
		encoded := base64.StdEncoding.EncodeToString(img)
		return OK(BrowseData{
			URL:        url,
			Screenshot: truncateRunes(encoded, maxScreenshotRunes, browseTruncationMark),
		})
	}

	if pages == nil {
		return Fail("web browse backend is not configured")
	}
	page, err := pages.Fetch(ctx, url)
	if err != nil {
		return Fail("failed to open page: %v", err)
	}
	data := BrowseData{URL: url, Title: page.Title}
	if mode == "html" {
		data.HTML = truncateRunes(page.HTML, maxHTMLRunes, browseTruncationMark)
	} else {
		data.Text = truncateRunes(page.Text, maxExtractedTextRunes, browseTruncationMark)
	}
	return OK(data)
}
