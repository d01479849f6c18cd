// Package resource binds backend resources to their consumers: each store
// tracks loading/error state for one read, exposes an explicit Refetch, and
// discards stale responses when fetches overlap. Mutation actions live in
// actions.go. Nothing here caches across refetches and nothing invalidates
// automatically; after a mutation the caller refetches every store whose data
// it may have changed.
package resource

import (
	"context"
	"sync"
)

// Requester is the slice of the HTTP client the stores use.
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// FetchState is the observable state of one read store. Exactly one of
// {loading, error, settled data} holds once a fetch completes.
type FetchState struct {
	Loading bool
	Error   string
}

// fetcher hands out fetch tickets and decides which resolution gets to
// commit. Tickets increase monotonically per store; a resolving fetch commits
// only while its ticket is still the latest issued, so an out-of-order stale
// response can never overwrite a newer one.
type fetcher struct {
	mu      sync.Mutex
	seq     uint64
	loading bool
	errMsg  string
}

// begin issues a ticket for a new fetch and flips the store into loading.
func (f *fetcher) begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.loading = true
	f.errMsg = ""
	return f.seq
}

// resolve settles a fetch. commit runs under the lock only when ticket is
// still the latest; stale resolutions are dropped without touching state.
// Returns whether the resolution was committed.
func (f *fetcher) resolve(ticket uint64, err error, commit func()) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket != f.seq {
		return false
	}
	f.loading = false
	if err != nil {
		f.errMsg = err.Error()
		return true
	}
	f.errMsg = ""
	if commit != nil {
		commit()
	}
	return true
}

// state snapshots loading/error under the lock.
func (f *fetcher) state() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FetchState{Loading: f.loading, Error: f.errMsg}
}

// read runs fn under the store lock. Store data committed by resolve is
// guarded by the same lock, so snapshots go through here.
func (f *fetcher) read(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}
