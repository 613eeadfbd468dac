package tools

import (
	"log/slog"

	"github.com/awsq/awsq/internal/sandbox"
	"github.com/awsq/awsq/internal/webpage"
)

// Deps carries the backends the agent tools are wired to. Nil backends are
// allowed; the affected tool stays registered and reports itself
// unavailable when invoked.
type Deps struct {
	Quotas      QuotaFetcher
	News        NewsFetcher
	FeedURL     string
	Interpreter sandbox.Interpreter
	Pages       PageFetcher
	Shots       webpage.Screenshotter
	Logger      *slog.Logger
}

// DefaultRegistry returns all tool definitions wired for the agent.
func DefaultRegistry(d Deps) (*Registry, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return NewRegistry(
		NewQuotaTool(d.Quotas, logger),
		NewNewsTool(d.News, d.FeedURL, logger),
		NewCodeExecTool(d.Interpreter, logger),
		NewBrowseTool(d.Pages, d.Shots, logger),
	)
}
