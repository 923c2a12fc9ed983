package trade

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/groupcache/singleflight"

	"daytrader-client/internal/logger"
	"daytrader-client/internal/types"
)

type LookupStatus int

const (
	LookupIdle LookupStatus = iota
	LookupLoading
	LookupResolved
	LookupNotFound
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupIdle:
		return "idle"
	case LookupLoading:
		return "loading"
	case LookupResolved:
		return "resolved"
	case LookupNotFound:
		return "not_found"
	case LookupFailed:
		return "failed"
	}
	return fmt.Sprintf("LookupStatus(%d)", int(s))
}

// Lookup is the state of one resolution. Value is set only when Resolved;
// Err is a *LookupError when NotFound or Failed.
type Lookup[K comparable, V any] struct {
	Key    K
	Status LookupStatus
	Value  V
	Err    error
}

func (l Lookup[K, V]) Resolved() bool { return l.Status == LookupResolved }

// Retryable is true only for transient failures; an unknown key is not
// worth retrying.
func (l Lookup[K, V]) Retryable() bool { return l.Status == LookupFailed }

// resolver owns the state shared by the quote and holding resolvers. Every
// new request bumps gen; completions carrying an older gen are dropped.
type resolver[K comparable, V any] struct {
	kind  string
	fetch func(ctx context.Context, key K) (V, error)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     Lookup[K, V]
	gen       uint64
	settled   chan struct{} // non-nil while Loading
	closed    bool
	listeners map[int]func(Lookup[K, V])
	nextSub   int

	group singleflight.Group
}

func newResolver[K comparable, V any](kind string, fetch func(context.Context, K) (V, error)) *resolver[K, V] {
	ctx, cancel := context.WithCancel(context.Background())
	return &resolver[K, V]{
		kind:      kind,
		fetch:     fetch,
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[int]func(Lookup[K, V])),
	}
}

// State returns the current resolution.
func (r *resolver[K, V]) State() Lookup[K, V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until the resolution leaves Loading or ctx is done.
func (r *resolver[K, V]) Wait(ctx context.Context) (Lookup[K, V], error) {
	for {
		r.mu.Lock()
		st, ch := r.state, r.settled
		r.mu.Unlock()
		if ch == nil {
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Subscribe registers fn for every state change and returns a function that
// removes it. fn must not call back into the resolver synchronously.
func (r *resolver[K, V]) Subscribe(fn func(Lookup[K, V])) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// Retry re-issues a failed lookup immediately. It reports false unless the
// current state is Failed.
func (r *resolver[K, V]) Retry() bool {
	r.mu.Lock()
	if r.closed || r.state.Status != LookupFailed {
		r.mu.Unlock()
		return false
	}
	key := r.state.Key
	gen := r.beginLocked(key)
	st, subs := r.state, r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, st)
	go r.run(gen, key)
	return true
}

// Close discards pending work. Lookups that finish later change nothing.
func (r *resolver[K, V]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.gen++
	r.listeners = nil
	r.settleLocked()
	r.cancel()
}

// beginLocked moves to Loading for key and returns the request generation.
func (r *resolver[K, V]) beginLocked(key K) uint64 {
	r.gen++
	if r.settled == nil {
		r.settled = make(chan struct{})
	}
	r.state = Lookup[K, V]{Key: key, Status: LookupLoading}
	return r.gen
}

func (r *resolver[K, V]) idleLocked() {
	r.gen++
	r.state = Lookup[K, V]{}
	r.settleLocked()
}

func (r *resolver[K, V]) settleLocked() {
	if r.settled != nil {
		close(r.settled)
		r.settled = nil
	}
}

func (r *resolver[K, V]) subscribersLocked() []func(Lookup[K, V]) {
	subs := make([]func(Lookup[K, V]), 0, len(r.listeners))
	for _, fn := range r.listeners {
		subs = append(subs, fn)
	}
	return subs
}

// run performs the lookup for gen. Concurrent lookups of one key share a
// single request.
func (r *resolver[K, V]) run(gen uint64, key K) {
	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	label := fmt.Sprint(key)
	v, err := r.group.Do(label, func() (interface{}, error) {
		val, err := r.fetch(r.ctx, key)
		return val, err
	})

	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	next := Lookup[K, V]{Key: key}
	switch {
	case err == nil:
		next.Status = LookupResolved
		next.Value = v.(V)
	case errors.Is(err, types.ErrNotFound):
		next.Status = LookupNotFound
		next.Err = &LookupError{Kind: r.kind, Key: label, Err: err}
	default:
		next.Status = LookupFailed
		next.Err = &LookupError{Kind: r.kind, Key: label, Err: err}
	}
	r.state = next
	r.settleLocked()
	subs := r.subscribersLocked()
	r.mu.Unlock()

	logger.Lookup(r.ctx, r.kind, label, next.Status.String())
	notify(subs, next)
}

func notify[T any](subs []func(T), v T) {
	for _, fn := range subs {
		fn(v)
	}
}
