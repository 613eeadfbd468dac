package memory

import (
	"context"
	"time"
)

// StoreInfo describes one long-term memory store at the backend.
type StoreInfo struct {
	ID   string
	Name string
}

// Record is one recalled memory entry.
type Record struct {
	Text  string
	Score float64
}

// Backend is the remote memory store contract. All methods are expected to
// fail with ordinary errors; the adapter decides what is fatal (nothing is).
type Backend interface {
	// ListStores enumerates available memory stores.
	ListStores(ctx context.Context) ([]StoreInfo, error)
	// CreateEvent appends one conversation event to a store. eventToken is a
	// caller-generated dedup token.
	CreateEvent(ctx context.Context, storeID, actorID, sessionID, role, text, eventToken string, at time.Time) error
	// Search runs a relevance search within a namespace of a store and
	// returns up to topK records, most relevant first.
	Search(ctx context.Context, storeID, namespace, query string, topK int) ([]Record, error)
}
