package project

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Store persists projects. GetProject returns nil, nil when the id is unknown.
type Store interface {
	SaveProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
}

// MemoryStore keeps deep copies of projects in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]*models.Project)}
}

func (s *MemoryStore) SaveProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) GetProject(_ context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects[id].Clone(), nil
}

// ListProjects returns projects oldest first.
func (s *MemoryStore) ListProjects(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Project) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}
