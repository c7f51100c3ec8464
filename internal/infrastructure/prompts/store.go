package prompts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/policyops/policy-rag/internal/core/domain"
)

// MemoryStore is an in-process prompt registry for tests and runs
// without a database. Same append-only contract as the postgres store.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]domain.PromptTemplate
	order     []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{templates: make(map[string]domain.PromptTemplate)}
}

func (s *MemoryStore) Get(ctx context.Context, version string) (*domain.PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[version]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnknownPromptVersion, "get prompt", fmt.Errorf("version %s", version))
	}
	out := tpl
	return &out, nil
}

func (s *MemoryStore) Publish(ctx context.Context, tpl domain.PromptTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[tpl.Version]; ok {
		return domain.WrapError(domain.ErrInvalidInput, "publish prompt",
			fmt.Errorf("version %s already published", tpl.Version))
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}
	s.templates[tpl.Version] = tpl
	s.order = append(s.order, tpl.Version)
	return nil
}

func (s *MemoryStore) Versions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}
