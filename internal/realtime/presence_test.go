package realtime

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryRegistry_JoinAndSnapshot(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	reg.Join(ctx, "room:1", 3)
	reg.Join(ctx, "room:1", 1)
	reg.Join(ctx, "room:1", 2)

	ids, err := reg.Snapshot(ctx, "room:1")
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, expected 3", len(ids))
	}
	for i, want := range []uint{1, 2, 3} {
		if ids[i] != want {
			t.Errorf("ids[%d] = %d, expected %d (snapshot must be ascending)", i, ids[i], want)
		}
	}
}

func TestMemoryRegistry_SetSemantics(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	// A user with several tabs open still appears once.
	reg.Join(ctx, "room:1", 7)
	reg.Join(ctx, "room:1", 7)

	ids, _ := reg.Snapshot(ctx, "room:1")
	if len(ids) != 1 {
		t.Errorf("len(ids) = %d, expected 1", len(ids))
	}
}

func TestMemoryRegistry_LeaveAbsentIsNoop(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if err := reg.Leave(ctx, "room:1", 99); err != nil {
		t.Errorf("Leave on unknown room returned error: %v", err)
	}

	reg.Join(ctx, "room:1", 1)
	if err := reg.Leave(ctx, "room:1", 99); err != nil {
		t.Errorf("Leave of absent user returned error: %v", err)
	}

	ids, _ := reg.Snapshot(ctx, "room:1")
	if len(ids) != 1 {
		t.Errorf("len(ids) = %d, expected 1", len(ids))
	}
}

func TestMemoryRegistry_EmptyRoomDropped(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	reg.Join(ctx, "room:1", 1)
	reg.Leave(ctx, "room:1", 1)

	if _, ok := reg.rooms["room:1"]; ok {
		t.Error("room entry should be removed with its last member")
	}

	ids, _ := reg.Snapshot(ctx, "room:1")
	if len(ids) != 0 {
		t.Errorf("len(ids) = %d, expected 0", len(ids))
	}
}

func TestMemoryRegistry_RoomIsolation(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	reg.Join(ctx, "room:1", 1)
	reg.Join(ctx, "room:2", 2)

	ids, _ := reg.Snapshot(ctx, "room:1")
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("room:1 snapshot = %v, expected [1]", ids)
	}
}

func TestMemoryRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			reg.Join(ctx, "room:1", id)
			reg.Snapshot(ctx, "room:1")
			reg.Leave(ctx, "room:1", id)
		}(uint(i))
	}
	wg.Wait()

	ids, _ := reg.Snapshot(ctx, "room:1")
	if len(ids) != 0 {
		t.Errorf("len(ids) = %d after all leaves, expected 0", len(ids))
	}
}
