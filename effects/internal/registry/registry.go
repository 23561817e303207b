package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Registry maps cancellation ids to the cancel functions of the effects running under them.
// Ids are spread over shards by hash so unrelated ids do not contend on one lock.
// Ids must be comparable.
type Registry struct {
	shards []*shard
}

type shard struct {
	mu      sync.Mutex
	entries map[any]map[uuid.UUID]context.CancelFunc
}

func New(numShards int) *Registry {
	if numShards <= 0 {
		numShards = 1
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{entries: make(map[any]map[uuid.UUID]context.CancelFunc)}
	}
	return &Registry{shards: shards}
}

func hash(key string) uint64 {
	return xxhash.Sum64String(key)
}

func (r *Registry) shardOf(id any) *shard {
	switch len(r.shards) {
	case 0:
		panic("number of shards cannot be 0")
	case 1:
		return r.shards[0]
	default:
		return r.shards[hash(fmt.Sprintf("%T:%v", id, id))%uint64(len(r.shards))]
	}
}

// Register records cancel under id. The returned release removes exactly this entry
// and is safe to call more than once.
func (r *Registry) Register(id any, cancel context.CancelFunc) (release func()) {
	s := r.shardOf(id)
	entryId := uuid.New()

	s.mu.Lock()
	byId, ok := s.entries[id]
	if !ok {
		byId = make(map[uuid.UUID]context.CancelFunc)
		s.entries[id] = byId
	}
	byId[entryId] = cancel
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		byId, ok := s.entries[id]
		if !ok {
			return
		}
		delete(byId, entryId)
		if len(byId) == 0 {
			delete(s.entries, id)
		}
	}
}

// Cancel cancels every effect registered under id and forgets them.
// Unknown ids are a no-op.
func (r *Registry) Cancel(id any) {
	s := r.shardOf(id)

	s.mu.Lock()
	byId := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	for _, cancel := range byId {
		cancel()
	}
}

// CancelAll cancels everything still registered.
func (r *Registry) CancelAll() {
	for _, s := range r.shards {
		s.mu.Lock()
		entries := s.entries
		s.entries = make(map[any]map[uuid.UUID]context.CancelFunc)
		s.mu.Unlock()

		for _, byId := range entries {
			for _, cancel := range byId {
				cancel()
			}
		}
	}
}

// Len reports how many effects are registered under id.
func (r *Registry) Len(id any) int {
	s := r.shardOf(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries[id])
}
