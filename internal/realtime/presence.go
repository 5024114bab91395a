package realtime

import (
	"context"
	"sort"
	"sync"
)

// Registry tracks which users currently hold an open connection to each room.
// Set semantics per room; the room entry disappears with its last member.
// Single-instance deployments use the in-memory implementation; multi-instance
// deployments must share state through RedisRegistry, since connections land
// on different processes.
type Registry interface {
	Join(ctx context.Context, room string, userID uint) error
	Leave(ctx context.Context, room string, userID uint) error
	Snapshot(ctx context.Context, room string) ([]uint, error)
}

// MemoryRegistry is the in-process Registry. Every operation is atomic with
// respect to concurrent connects and disconnects on the same room.
type MemoryRegistry struct {
	mu    sync.Mutex
	rooms map[string]map[uint]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		rooms: make(map[string]map[uint]struct{}),
	}
}

func (r *MemoryRegistry) Join(_ context.Context, room string, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[room]
	if !ok {
		users = make(map[uint]struct{})
		r.rooms[room] = users
	}
	users[userID] = struct{}{}
	return nil
}

// Leave removes a user from a room. Removing an absent user or a user from an
// unknown room is a no-op, never an error.
func (r *MemoryRegistry) Leave(_ context.Context, room string, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[room]
	if !ok {
		return nil
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(r.rooms, room)
	}
	return nil
}

// Snapshot returns the user ids present in a room, ascending.
func (r *MemoryRegistry) Snapshot(_ context.Context, room string) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.rooms[room]
	ids := make([]uint, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
