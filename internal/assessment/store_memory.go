package assessment

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	questions map[string]Question
	results   map[string]AttemptResult
}

func NewInMemoryStore() Store {
	return &memoryStore{
		questions: map[string]Question{},
		results:   map[string]AttemptResult{},
	}
}

func (m *memoryStore) PutQuestion(_ context.Context, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	return q, nil
}

func (m *memoryStore) GetQuestions(_ context.Context, ids []string) (map[string]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Question, len(ids))
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (m *memoryStore) ListQuestions(_ context.Context, opts ListOpts) ([]Question, error) {
	opts = opts.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]Question, 0, len(m.questions))
	for _, q := range m.questions {
		if opts.Type != "" && q.Type != opts.Type {
			continue
		}
		all = append(all, q)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if opts.Offset >= len(all) {
		return []Question{}, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[opts.Offset:end], nil
}

func (m *memoryStore) SaveAttemptResult(_ context.Context, r AttemptResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]GradedItem, len(r.Items))
	copy(items, r.Items)
	r.Items = items
	m.results[r.AttemptID] = r
	return nil
}

func (m *memoryStore) GetAttemptResult(_ context.Context, attemptID string) (AttemptResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[attemptID]
	if !ok {
		return AttemptResult{}, ErrAttemptNotFound
	}
	return r, nil
}
