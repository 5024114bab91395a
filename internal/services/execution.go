package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/codehive/server/internal/config"
	"github.com/codehive/server/pkg/response"
)

// languageIDs maps supported language names to Judge0 language IDs.
var languageIDs = map[string]int{
	"python":     71,
	"javascript": 63,
	"cpp":        54,
	"java":       62,
}

// ExecutionService proxies code runs to the Judge0 API so client machines
// never execute untrusted collaborator code.
type ExecutionService struct {
	cfg    *config.JudgeConfig
	client *http.Client
}

func NewExecutionService(cfg *config.JudgeConfig) *ExecutionService {
	return &ExecutionService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type ExecuteRequest struct {
	Language string `json:"language" binding:"required"`
	Source   string `json:"source" binding:"required"`
	Stdin    string `json:"stdin"`
}

// ExecuteResult is the normalized outcome of one run.
type ExecuteResult struct {
	Status        string  `json:"status"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	Time          string  `json:"time"`
	Memory        float64 `json:"memory"`
}

type judgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type judgeSubmission struct {
	Token         string      `json:"token"`
	Stdout        *string     `json:"stdout"`
	Stderr        *string     `json:"stderr"`
	CompileOutput *string     `json:"compile_output"`
	Time          *string     `json:"time"`
	Memory        *float64    `json:"memory"`
	Status        judgeStatus `json:"status"`
}

const (
	judgePollInterval = 200 * time.Millisecond
	judgeMaxPolls     = 50
)

// Execute submits source to Judge0 and polls until the run leaves the queue.
func (s *ExecutionService) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResult, error) {
	languageID, ok := languageIDs[req.Language]
	if !ok {
		return nil, response.NewBadRequest("unsupported language")
	}

	token, err := s.submit(ctx, languageID, req.Source, req.Stdin)
	if err != nil {
		return nil, err
	}

	for i := 0; i < judgeMaxPolls; i++ {
		sub, err := s.fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		// Status 1 is queued, 2 is processing; anything above is terminal.
		if sub.Status.ID > 2 {
			return normalizeResult(sub), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(judgePollInterval):
		}
	}
	return nil, response.NewServerError("code execution timed out")
}

func (s *ExecutionService) submit(ctx context.Context, languageID int, source, stdin string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"language_id": languageID,
		"source_code": source,
		"stdin":       stdin,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/submissions?base64_encoded=false&wait=false", s.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	s.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", response.NewServerError(fmt.Sprintf("execution service returned %d", resp.StatusCode))
	}

	var sub judgeSubmission
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return "", err
	}
	if sub.Token == "" {
		return "", response.NewServerError("execution service returned no token")
	}
	return sub.Token, nil
}

func (s *ExecutionService) fetch(ctx context.Context, token string) (*judgeSubmission, error) {
	url := fmt.Sprintf("%s/submissions/%s?base64_encoded=false", s.cfg.BaseURL, token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(httpReq)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, response.NewServerError(fmt.Sprintf("execution service returned %d", resp.StatusCode))
	}

	var sub judgeSubmission
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *ExecutionService) setHeaders(req *http.Request) {
	if s.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", s.cfg.APIKey)
	}
	if s.cfg.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", s.cfg.APIHost)
	}
}

func normalizeResult(sub *judgeSubmission) *ExecuteResult {
	result := &ExecuteResult{Status: sub.Status.Description}
	if sub.Stdout != nil {
		result.Stdout = *sub.Stdout
	}
	if sub.Stderr != nil {
		result.Stderr = *sub.Stderr
	}
	if sub.CompileOutput != nil {
		result.CompileOutput = *sub.CompileOutput
	}
	if sub.Time != nil {
		result.Time = *sub.Time
	}
	if sub.Memory != nil {
		result.Memory = *sub.Memory
	}
	return result
}

// SupportedLanguages lists the language names accepted by Execute.
func SupportedLanguages() []string {
	return []string{"python", "javascript", "cpp", "java"}
}
