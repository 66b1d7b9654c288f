package storage

import "context"

// Store is the key/value persistence gateway. Two instances are wired:
// a durable store (survives restarts) and a session-scoped store (entries
// expire). Implementations must never propagate storage or parse errors
// to callers: a failed read is an absent value, and corrupted entries are
// deleted on sight.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys with the given prefix. Used for cascading
	// cleanup when an assessment is deleted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
