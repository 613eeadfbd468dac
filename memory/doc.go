// Package memory adapts the remote long-term memory store.
//
// Persistence model:
//   - Conversation turns are written as events keyed by normalized actor ID
//     and session ID, each tagged with a fresh dedup token.
//   - Recall is a relevance search scoped to a per-actor namespace.
//   - Everything here is best-effort: backend failures are logged and
//     swallowed so memory never blocks the user-visible response.
package memory
