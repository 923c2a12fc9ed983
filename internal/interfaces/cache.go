package interfaces

import "context"

// InvalidationRegistry is a keyed cache of server views. Invalidate marks a
// key (and the keys below it) stale so the next Fetch goes to the server.
type InvalidationRegistry interface {
	Invalidate(key string)
	Fetch(ctx context.Context, key string) (any, error)
}
