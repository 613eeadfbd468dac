package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/awsq/awsq/internal/identity"
)

// DefaultRecallTopK is how many records RecallContext asks for by default.
const DefaultRecallTopK = 5

// roleVocabulary maps conversation roles onto the store's role enum.
var roleVocabulary = map[string]string{
	"user":      "USER",
	"assistant": "ASSISTANT",
}

// Adapter resolves a logical store name to a handle and mediates all reads
// and writes. The resolved handle is cached for the process lifetime; two
// requests racing to resolve it are collapsed by the singleflight group, and
// even a duplicate resolution would converge on the same store.
type Adapter struct {
	backend   Backend
	storeName string
	logger    *slog.Logger

	handles sync.Map // logical store name -> store ID
	group   singleflight.Group
}

// NewAdapter builds an Adapter over backend for the store whose name starts
// with storeName. backend may be nil, in which case every operation is a
// logged no-op.
func NewAdapter(backend Backend, storeName string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{backend: backend, storeName: storeName, logger: logger}
}

// resolveHandle returns the cached store ID for the adapter's logical name,
// resolving it from the backend on first use. Returns "", false when no
// store matches or the backend is unreachable.
func (a *Adapter) resolveHandle(ctx context.Context) (string, bool) {
	if a.backend == nil {
		return "", false
	}
	if id, ok := a.handles.Load(a.storeName); ok {
		return id.(string), true
	}

	v, err, _ := a.group.Do(a.storeName, func() (any, error) {
		stores, err := a.backend.ListStores(ctx)
		if err != nil {
			return "", err
		}
		for _, s := range stores {
			if strings.HasPrefix(s.Name, a.storeName) {
				a.handles.Store(a.storeName, s.ID)
				return s.ID, nil
			}
		}
		return "", nil
	})
	if err != nil {
		a.logger.Warn("memory store resolution failed", "store", a.storeName, "error", err)
		return "", false
	}
	id := v.(string)
	if id == "" {
		a.logger.Warn("no memory store matches logical name", "store", a.storeName)
		return "", false
	}
	return id, true
}

// PersistTurn writes one conversation turn. Best-effort: a missing handle or
// backend failure is logged and swallowed.
func (a *Adapter) PersistTurn(ctx context.Context, actorID, sessionID, role, text string) {
	storeID, ok := a.resolveHandle(ctx)
	if !ok {
		a.logger.Warn("skipping turn persistence: no memory store", "role", role)
		return
	}
	storeRole, ok := roleVocabulary[role]
	if !ok {
		a.logger.Warn("skipping turn persistence: unknown role", "role", role)
		return
	}

	actor := identity.NormalizeActorID(actorID)
	token := uuid.NewString()
	if err := a.backend.CreateEvent(ctx, storeID, actor, sessionID, storeRole, text, token, time.Now()); err != nil {
		a.logger.Warn("failed to persist turn", "role", role, "error", err)
	}
}

// RecallContext retrieves relevant prior context for query, scoped to the
// actor. Returns "" when nothing is available for any reason.
func (a *Adapter) RecallContext(ctx context.Context, actorID, query string, topK int) string {
	storeID, ok := a.resolveHandle(ctx)
	if !ok {
		return ""
	}
	if topK <= 0 {
		topK = DefaultRecallTopK
	}

	namespace := "/users/" + identity.NormalizeActorID(actorID)
	records, err := a.backend.Search(ctx, storeID, namespace, query, topK)
	if err != nil {
		a.logger.Warn("memory recall failed", "namespace", namespace, "error", err)
		return ""
	}

	texts := make([]string, 0, len(records))
	for _, r := range records {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	return strings.Join(texts, "\n")
}
