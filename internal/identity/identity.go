// Package identity normalizes external actor identifiers into storage-safe keys.
//
// The memory backend only accepts a restricted character set in actor IDs, so
// free-form identifiers (typically email-like strings) are rewritten before use.
// Normalization is deterministic and idempotent: normalizing an already
// normalized ID is a no-op.
package identity

// NormalizeActorID rewrites id into the character set accepted by the memory
// backend. "@" becomes "_at_" so email-like IDs stay readable; every other
// character outside [A-Za-z0-9_-] becomes "_".
func NormalizeActorID(id string) string {
	out := make([]byte, 0, len(id)+8)
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c == '@':
			out = append(out, "_at_"...)
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
