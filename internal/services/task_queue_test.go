package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTaskTypeIndex_Constant(t *testing.T) {
	if TaskTypeIndex != "rag:index" {
		t.Errorf("TaskTypeIndex = %q, expected %q", TaskTypeIndex, "rag:index")
	}
}

func TestSyncQueue_New(t *testing.T) {
	queue := NewSyncQueue()
	if queue == nil {
		t.Error("NewSyncQueue should not return nil")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("SyncQueue.Close() should return nil, got %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()

	err := queue.Enqueue(&IndexTask{ProjectID: 1})
	if err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_EnqueueRunsProcessor(t *testing.T) {
	queue := NewSyncQueue()

	var mu sync.Mutex
	var got []uint
	done := make(chan struct{})
	queue.SetProcessor(func(ctx context.Context, task *IndexTask) error {
		mu.Lock()
		got = append(got, task.ProjectID)
		mu.Unlock()
		close(done)
		return nil
	})

	if err := queue.Enqueue(&IndexTask{ProjectID: 7}); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("processed projects = %v, expected [7]", got)
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}
