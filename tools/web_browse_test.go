package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/awsq/awsq/internal/webpage"
	"github.com/awsq/awsq/tools"
)

type fakePages struct {
	page *webpage.Page
	err  error
	// block, when set, makes Fetch hang until the context is cancelled.
	block bool
}

func (f *fakePages) Fetch(ctx context.Context, _ string) (*webpage.Page, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.page, f.err
}

type fakeShots struct {
	img []byte
	err error
}

func (f *fakeShots) Capture(context.Context, string) ([]byte, error) { return f.img, f.err }

func browseResult(t *testing.T, pages tools.PageFetcher, shots webpage.Screenshotter, input string) tools.Result {
	t.Helper()
	def := tools.NewBrowseTool(pages, shots, discard)
	return def.Function(context.Background(), json.RawMessage(input))
}

func TestBrowseTool_DefaultsToText(t *testing.T) {
	fp := &fakePages{page: &webpage.Page{Title: "Doc", Text: "page body", HTML: "<p>page body</p>"}}
	res := browseResult(t, fp, nil, `{"url":"https://example.com"}`)
	if res.IsError() {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	data := res.Data.(tools.BrowseData)
	if data.Text != "page body" || data.HTML != "" {
		t.Errorf("text mode payload wrong: %+v", data)
	}
}

func TestBrowseTool_HTMLMode(t *testing.T) {
	fp := &fakePages{page: &webpage.Page{HTML: "<p>raw</p>", Text: "raw"}}
	res := browseResult(t, fp, nil, `{"url":"https://example.com","extract_type":"html"}`)
	data := res.Data.(tools.BrowseData)
	if data.HTML != "<p>raw</p>" || data.Text != "" {
		t.Errorf("html mode payload wrong: %+v", data)
	}
}

func TestBrowseTool_TextTruncation(t *testing.T) {
	fp := &fakePages{page: &webpage.Page{Text: strings.Repeat("x", 12_000)}}
	res := browseResult(t, fp, nil, `{"url":"https://example.com"}`)
	data := res.Data.(tools.BrowseData)
	if !strings.HasSuffix(data.Text, "[truncated]") {
		t.Error("truncated text missing marker")
	}
	if len([]rune(data.Text)) > 10_100 {
		t.Errorf("text not truncated: %d runes", len([]rune(data.Text)))
	}
}

func TestBrowseTool_ScreenshotWithoutRenderer(t *testing.T) {
	res := browseResult(t, &fakePages{}, nil, `{"url":"https://example.com","extract_type":"screenshot"}`)
	if !res.IsError() {
		t.Fatal("expected failure without a renderer")
	}
	if !strings.Contains(res.Error, "renderer") {
		t.Errorf("failure should name the missing renderer: %s", res.Error)
	}
}

func TestBrowseTool_Screenshot(t *testing.T) {
	res := browseResult(t, &fakePages{}, &fakeShots{img: []byte{1, 2, 3, 4}}, `{"url":"https://example.com","extract_type":"screenshot"}`)
	if res.IsError() {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	data := res.Data.(tools.BrowseData)
	if data.Screenshot == "" {
		t.Error("screenshot payload empty")
	}
}

func TestBrowseTool_FetchErrorIsFailureResult(t *testing.T) {
	res := browseResult(t, &fakePages{err: errors.New("dns failure")}, nil, `{"url":"https://example.com"}`)
	if !res.IsError() {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(res.Error, "dns failure") {
		t.Errorf("failure should carry the cause: %s", res.Error)
	}
}

func TestBrowseTool_UnknownMode(t *testing.T) {
	res := browseResult(t, &fakePages{}, nil, `{"url":"https://example.com","extract_type":"pdf"}`)
	if !res.IsError() {
		t.Fatal("expected failure for unknown extract_type")
	}
}

func TestBrowseTool_CancelledContext(t *testing.T) {
	// A blocking fetch plus an already-cancelled caller context exercises the
	// timeout select without waiting 60 seconds.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	def := tools.NewBrowseTool(&fakePages{block: true}, nil, discard)
	res := def.Function(ctx, json.RawMessage(`{"url":"https://example.com"}`))
	if !res.IsError() {
		t.Fatal("expected failure for cancelled context")
	}
}
