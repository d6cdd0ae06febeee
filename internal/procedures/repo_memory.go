package procedures

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Procedure
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Procedure)}
}

func (r *MemoryRepo) Create(ctx context.Context, p Procedure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[p.ID]; exists {
		return fmt.Errorf("procedure %s already exists", p.ID)
	}
	r.byID[p.ID] = p
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Procedure, error) {
	if err := ctx.Err(); err != nil {
		return Procedure{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return Procedure{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Procedure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]Procedure, 0, len(r.byID))
	for _, p := range r.byID {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Procedure{}, nil
	}
	end := len(out)
	if f.Limit > 0 && offset+f.Limit < end {
		end = offset + f.Limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
