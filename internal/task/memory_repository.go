package task

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewMemoryRepository builds an in-memory task store for development and
// testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{tasks: make(map[string]Task)}
}

func (r *memoryRepository) Create(_ context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return task, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := []Task{}
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			owned = append(owned, task)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID < owned[j].ID
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})

	if offset >= len(owned) {
		return []Task{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *memoryRepository) Update(_ context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}
