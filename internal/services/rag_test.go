package services

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/codehive/server/internal/config"
)

func newRAGService(t *testing.T, withRedis bool) (*RAGService, uint) {
	t.Helper()

	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	files := NewFileTreeService(db)
	content := "def greet():\n    return 'hi'\n"
	for _, name := range []string{"a.py", "b.py"} {
		f, err := files.CreateFile(project.ID, &CreateFileRequest{Name: name, Language: "python"})
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := files.UpdateFile(project.ID, f.ID, &UpdateFileRequest{Content: &content}); err != nil {
			t.Fatalf("fill file: %v", err)
		}
	}

	var rdb *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}
	return NewRAGService(db, &config.OpenAIConfig{APIKey: "test"}, rdb), project.ID
}

func TestRAGService_BuildIndexLocal(t *testing.T) {
	svc, projectID := newRAGService(t, false)
	ctx := context.Background()

	if err := svc.BuildIndex(ctx, projectID); err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}

	blob, ok, err := svc.loadContext(ctx, projectID)
	if err != nil || !ok {
		t.Fatalf("loadContext = (ok=%t, err=%v), expected a cached blob", ok, err)
	}
	for _, want := range []string{"--- a.py (python) ---", "--- b.py (python) ---", "def greet():"} {
		if !strings.Contains(blob, want) {
			t.Errorf("context blob missing %q", want)
		}
	}
}

func TestRAGService_BuildIndexRedis(t *testing.T) {
	svc, projectID := newRAGService(t, true)
	ctx := context.Background()

	if err := svc.BuildIndex(ctx, projectID); err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}

	blob, ok, err := svc.loadContext(ctx, projectID)
	if err != nil || !ok {
		t.Fatalf("loadContext = (ok=%t, err=%v), expected a cached blob", ok, err)
	}
	if !strings.Contains(blob, "a.py") {
		t.Error("redis-backed blob missing file content")
	}

	svc.InvalidateIndex(ctx, projectID)
	_, ok, err = svc.loadContext(ctx, projectID)
	if err != nil {
		t.Fatalf("loadContext after invalidation returned error: %v", err)
	}
	if ok {
		t.Error("invalidation should drop the cached blob")
	}
}

func TestRAGService_InvalidateLocal(t *testing.T) {
	svc, projectID := newRAGService(t, false)
	ctx := context.Background()

	svc.BuildIndex(ctx, projectID)
	svc.InvalidateIndex(ctx, projectID)

	_, ok, _ := svc.loadContext(ctx, projectID)
	if ok {
		t.Error("invalidation should drop the local blob")
	}
}

func TestRAGService_ContextCapped(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	files := NewFileTreeService(db)
	huge := strings.Repeat("x", ragMaxContextBytes)
	f, _ := files.CreateFile(project.ID, &CreateFileRequest{Name: "huge.txt"})
	if _, err := files.UpdateFile(project.ID, f.ID, &UpdateFileRequest{Content: &huge}); err != nil {
		t.Fatalf("fill file: %v", err)
	}

	svc := NewRAGService(db, &config.OpenAIConfig{APIKey: "test"}, nil)
	ctx := context.Background()
	if err := svc.BuildIndex(ctx, project.ID); err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}

	blob, _, _ := svc.loadContext(ctx, project.ID)
	if len(blob) > ragMaxContextBytes {
		t.Errorf("context blob is %d bytes, cap is %d", len(blob), ragMaxContextBytes)
	}
}
