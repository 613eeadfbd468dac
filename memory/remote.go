package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/awsq/awsq/internal/httpkit"
)

// RemoteBackend is the HTTP implementation of Backend.
//
// Wire contract with the memory service:
//
//	GET  {base}/memories                     -> {"memories": [{"id": "...", "name": "..."}]}
//	POST {base}/memories/{id}/events         {"actor_id", "session_id", "role", "text",
//	                                          "event_token", "timestamp"}
//	POST {base}/memories/{id}/search         {"namespace", "query", "top_k"}
//	                                         -> {"records": [{"text": "...", "score": 0.9}]}
type RemoteBackend struct {
	base   string
	client *http.Client
}

// NewRemoteBackend returns a RemoteBackend for the memory service at base.
func NewRemoteBackend(base string) *RemoteBackend {
	return &RemoteBackend{
		base:   base,
		client: httpkit.NewClient(httpkit.WithTimeout(10 * time.Second)),
	}
}

func (b *RemoteBackend) ListStores(ctx context.Context) ([]StoreInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+"/memories", nil)
	if err != nil {
		return nil, fmt.Errorf("memory: list request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory: list stores: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memory: list stores: status %d: %s",
			resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 512))
	}

	var payload struct {
		Memories []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"memories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("memory: decode store list: %w", err)
	}
	stores := make([]StoreInfo, 0, len(payload.Memories))
	for _, m := range payload.Memories {
		stores = append(stores, StoreInfo{ID: m.ID, Name: m.Name})
	}
	return stores, nil
}

func (b *RemoteBackend) CreateEvent(ctx context.Context, storeID, actorID, sessionID, role, text, eventToken string, at time.Time) error {
	body, err := json.Marshal(map[string]string{
		"actor_id":    actorID,
		"session_id":  sessionID,
		"role":        role,
		"text":        text,
		"event_token": eventToken,
		"timestamp":   at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("memory: marshal event: %w", err)
	}
	url := fmt.Sprintf("%s/memories/%s/events", b.base, storeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("memory: event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("memory: create event: %w", err)
	}
	httpkit.DrainAndClose(resp.Body, 1024)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("memory: create event: status %d", resp.StatusCode)
	}
	return nil
}

func (b *RemoteBackend) Search(ctx context.Context, storeID, namespace, query string, topK int) ([]Record, error) {
	body, err := json.Marshal(map[string]any{
		"namespace": namespace,
		"query":     query,
		"top_k":     topK,
	})
	if err != nil {
		return nil, fmt.Errorf("memory: marshal search: %w", err)
	}
	url := fmt.Sprintf("%s/memories/%s/search", b.base, storeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("memory: search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory: search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memory: search: status %d: %s",
			resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 512))
	}

	var payload struct {
		Records []struct {
			Text  string  `json:"text"`
			Score float64 `json:"score"`
		} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("memory: decode search results: %w", err)
	}
	records := make([]Record, 0, len(payload.Records))
	for _, r := range payload.Records {
		records = append(records, Record{Text: r.Text, Score: r.Score})
	}
	return records, nil
}
