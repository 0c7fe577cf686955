package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/seed"
)

// MemoryStore keeps everything in process memory. It implements all three
// repositories and is reset on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	requests []models.Request
	notices  []models.Notice
	aid      models.AidRequests
	states   []models.StateDetail
	regions  []models.RegionOverview
	resource []models.Resource
	alerts   []models.Alert
}

func NewMemoryStore(ds *seed.Dataset) *MemoryStore {
	s := &MemoryStore{aid: models.AidRequests{}}
	if ds == nil {
		return s
	}

	s.requests = slices.Clone(ds.Requests)
	s.notices = slices.Clone(ds.Notices)
	for country, items := range ds.AidRequests {
		s.aid[country] = slices.Clone(items)
	}
	s.states = slices.Clone(ds.States)
	s.regions = slices.Clone(ds.Regions)
	s.resource = slices.Clone(ds.Resources)
	s.alerts = slices.Clone(ds.Alerts)
	return s
}

func (s *MemoryStore) AddRequest(ctx context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.requests {
		if existing.ID == r.ID {
			return fmt.Errorf("request %s: %w", r.ID, ErrDuplicate)
		}
	}
	s.requests = append(s.requests, *r)
	return nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.requests {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListRequests(ctx context.Context) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.requests), nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID == id {
			s.requests[i].Status = status
			r := s.requests[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) AddNotice(ctx context.Context, n *models.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.notices, func(existing models.Notice) bool { return existing.ID == n.ID }) {
		return fmt.Errorf("notice %s: %w", n.ID, ErrDuplicate)
	}
	s.notices = append(s.notices, *n)
	return nil
}

func (s *MemoryStore) NoticeExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.notices, func(n models.Notice) bool { return n.ID == id }), nil
}

// ListNotices returns matching notices newest first.
func (s *MemoryStore) ListNotices(ctx context.Context, opts NoticeFilter) ([]models.Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.Notice
	for _, n := range s.notices {
		if opts.TargetState != "" && !strings.EqualFold(n.TargetState, opts.TargetState) {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		results = append(results, n)
	}

	slices.SortStableFunc(results, func(a, b models.Notice) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (s *MemoryStore) AidRequests(ctx context.Context) (models.AidRequests, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.AidRequests, len(s.aid))
	for country, items := range s.aid {
		out[country] = slices.Clone(items)
	}
	return out, nil
}

func (s *MemoryStore) AddAidItem(ctx context.Context, country string, item models.AidItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.aid {
		if strings.EqualFold(name, country) {
			country = name
			break
		}
	}
	s.aid[country] = append(s.aid[country], item)
	return nil
}

func (s *MemoryStore) States(ctx context.Context) ([]models.StateDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.states), nil
}

func (s *MemoryStore) State(ctx context.Context, name string) (*models.StateDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.states {
		if strings.EqualFold(st.Name, name) {
			return &st, nil
		}
	}
	return nil, fmt.Errorf("state %s: %w", name, ErrNotFound)
}

func (s *MemoryStore) Regions(ctx context.Context, scope models.Scope) ([]models.RegionOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.RegionOverview
	for _, r := range s.regions {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) Resources(ctx context.Context) ([]models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.resource), nil
}

func (s *MemoryStore) Alerts(ctx context.Context) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.alerts), nil
}
