package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/codehive/server/internal/config"
)

// fakeJudge stands in for the Judge0 API: submissions get a fixed token and
// stay queued for a configurable number of polls before going terminal.
type fakeJudge struct {
	pollsUntilDone int32
	polls          int32
	stdout         string
	statusID       int
	statusDesc     string
	gotKey         string
}

func (f *fakeJudge) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions", func(w http.ResponseWriter, r *http.Request) {
		f.gotKey = r.Header.Get("X-RapidAPI-Key")
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/submissions/tok-1", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&f.polls, 1)
		sub := map[string]interface{}{"token": "tok-1"}
		if n <= f.pollsUntilDone {
			sub["status"] = map[string]interface{}{"id": 2, "description": "Processing"}
		} else {
			sub["status"] = map[string]interface{}{"id": f.statusID, "description": f.statusDesc}
			sub["stdout"] = f.stdout
			sub["time"] = "0.01"
			sub["memory"] = 1024.0
		}
		json.NewEncoder(w).Encode(sub)
	})
	return mux
}

func newExecutionService(judge *fakeJudge) (*ExecutionService, *httptest.Server) {
	server := httptest.NewServer(judge.handler())
	svc := NewExecutionService(&config.JudgeConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		APIHost: "judge.test",
	})
	return svc, server
}

func TestExecutionService_PollsUntilTerminal(t *testing.T) {
	judge := &fakeJudge{pollsUntilDone: 2, stdout: "hello\n", statusID: 3, statusDesc: "Accepted"}
	svc, server := newExecutionService(judge)
	defer server.Close()

	result, err := svc.Execute(context.Background(), &ExecuteRequest{
		Language: "python",
		Source:   `print("hello")`,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Status != "Accepted" {
		t.Errorf("status = %q, expected %q", result.Status, "Accepted")
	}
	if result.Stdout != "hello\n" {
		t.Errorf("stdout = %q", result.Stdout)
	}
	if judge.polls != 3 {
		t.Errorf("polled %d times, expected 3", judge.polls)
	}
	if judge.gotKey != "test-key" {
		t.Errorf("X-RapidAPI-Key = %q, expected forwarded credential", judge.gotKey)
	}
}

func TestExecutionService_RuntimeErrorIsTerminal(t *testing.T) {
	judge := &fakeJudge{stdout: "", statusID: 11, statusDesc: "Runtime Error (NZEC)"}
	svc, server := newExecutionService(judge)
	defer server.Close()

	result, err := svc.Execute(context.Background(), &ExecuteRequest{
		Language: "javascript",
		Source:   "process.exit(1)",
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Status != "Runtime Error (NZEC)" {
		t.Errorf("status = %q", result.Status)
	}
}

func TestExecutionService_UnsupportedLanguage(t *testing.T) {
	svc, server := newExecutionService(&fakeJudge{statusID: 3, statusDesc: "Accepted"})
	defer server.Close()

	_, err := svc.Execute(context.Background(), &ExecuteRequest{
		Language: "cobol",
		Source:   "DISPLAY 'HI'.",
	})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestExecutionService_ContextCancellation(t *testing.T) {
	// The run never leaves the queue; cancellation must end the poll loop.
	judge := &fakeJudge{pollsUntilDone: 1 << 20, statusID: 3, statusDesc: "Accepted"}
	svc, server := newExecutionService(judge)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Execute(ctx, &ExecuteRequest{Language: "python", Source: "pass"})
	if err == nil {
		t.Fatal("cancelled context should abort execution")
	}
}

func TestSupportedLanguages(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		if _, ok := languageIDs[lang]; !ok {
			t.Errorf("%s advertised but has no language id", lang)
		}
	}
}
