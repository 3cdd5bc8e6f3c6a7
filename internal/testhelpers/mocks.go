package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/masterchef/backend/internal/llm"
)

// MockCompleter is a testify mock of llm.Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt llm.Prompt) (*llm.Completion, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Completion), args.Error(1)
}

func (m *MockCompleter) Provider() string { return "mock" }
func (m *MockCompleter) Model() string    { return "mock-model" }

// MemoryObjectStore is an in-memory stand-in for the S3 export bucket
type MemoryObjectStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	PutErr  error
}

func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{Objects: make(map[string][]byte)}
}

func (s *MemoryObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = body
	return nil
}

func (s *MemoryObjectStore) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

func (s *MemoryObjectStore) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "https://exports.example.com/" + key + "?expires=" + expiration.String(), nil
}

// Has reports whether key was uploaded
func (s *MemoryObjectStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok
}
