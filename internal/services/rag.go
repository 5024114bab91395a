package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/config"
	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/logger"
	"github.com/codehive/server/pkg/response"
)

const (
	ragContextKeyPrefix = "ragctx:"
	ragContextTTL       = time.Hour
	ragMaxContextBytes  = 60_000
)

// RAGService answers questions about a project's code. The project's files
// are flattened into a context blob, cached in Redis (or in process when
// Redis is disabled), and sent to the chat model alongside the question.
type RAGService struct {
	db     *gorm.DB
	ai     *openai.Client
	model  string
	rdb    *redis.Client
	mu     sync.Mutex
	local  map[uint]string
}

func NewRAGService(db *gorm.DB, cfg *config.OpenAIConfig, rdb *redis.Client) *RAGService {
	aiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		aiCfg.BaseURL = cfg.BaseURL
	}

	return &RAGService{
		db:    db,
		ai:    openai.NewClientWithConfig(aiCfg),
		model: cfg.Model,
		rdb:   rdb,
		local: make(map[uint]string),
	}
}

type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// BuildIndex flattens the project's files into the cached context blob.
// Called by the worker after file mutations and on demand.
func (s *RAGService) BuildIndex(ctx context.Context, projectID uint) error {
	var files []models.File
	if err := s.db.Where("project_id = ?", projectID).Order("name ASC").Find(&files).Error; err != nil {
		return err
	}

	var b strings.Builder
	for _, f := range files {
		if b.Len() >= ragMaxContextBytes {
			break
		}
		fmt.Fprintf(&b, "--- %s (%s) ---\n%s\n\n", f.Name, f.Language, f.Content)
	}
	blob := b.String()
	if len(blob) > ragMaxContextBytes {
		blob = blob[:ragMaxContextBytes]
	}

	return s.storeContext(ctx, projectID, blob)
}

// Chat answers one question grounded in the project's indexed files. A cache
// miss rebuilds the index inline.
func (s *RAGService) Chat(ctx context.Context, projectID uint, req *ChatRequest) (*ChatResponse, error) {
	blob, ok, err := s.loadContext(ctx, projectID)
	if err != nil {
		logger.Warn().Err(err).Uint("project_id", projectID).Msg("context cache read failed, rebuilding")
		ok = false
	}
	if !ok {
		if err := s.BuildIndex(ctx, projectID); err != nil {
			return nil, err
		}
		if blob, _, err = s.loadContext(ctx, projectID); err != nil {
			return nil, err
		}
	}

	systemPrompt := "You are a coding assistant for a shared project workspace. " +
		"Answer questions using the project files below. If the files do not " +
		"contain the answer, say so.\n\nProject files:\n" + blob

	resp, err := s.ai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Question},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, response.NewServerError("model returned no answer")
	}

	return &ChatResponse{Answer: resp.Choices[0].Message.Content}, nil
}

// InvalidateIndex drops the cached context so the next question sees fresh
// file contents.
func (s *RAGService) InvalidateIndex(ctx context.Context, projectID uint) {
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, ragContextKey(projectID)).Err(); err != nil {
			logger.Warn().Err(err).Uint("project_id", projectID).Msg("context cache invalidation failed")
		}
		return
	}
	s.mu.Lock()
	delete(s.local, projectID)
	s.mu.Unlock()
}

func (s *RAGService) storeContext(ctx context.Context, projectID uint, blob string) error {
	if s.rdb != nil {
		return s.rdb.Set(ctx, ragContextKey(projectID), blob, ragContextTTL).Err()
	}
	s.mu.Lock()
	s.local[projectID] = blob
	s.mu.Unlock()
	return nil
}

func (s *RAGService) loadContext(ctx context.Context, projectID uint) (string, bool, error) {
	if s.rdb != nil {
		blob, err := s.rdb.Get(ctx, ragContextKey(projectID)).Result()
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return blob, true, nil
	}

	s.mu.Lock()
	blob, ok := s.local[projectID]
	s.mu.Unlock()
	return blob, ok, nil
}

func ragContextKey(projectID uint) string {
	return fmt.Sprintf("%s%d", ragContextKeyPrefix, projectID)
}
