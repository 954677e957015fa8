package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Deekshi23/portfolio/internal/model"
)

// MemoryContactRepository keeps contact messages in process memory. It backs
// DB_DRIVER=memory for local development and is used by tests.
type MemoryContactRepository struct {
	mu       sync.RWMutex
	messages map[string]*model.ContactMessage
}

// NewMemoryContactRepository creates an empty in-memory repository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{messages: make(map[string]*model.ContactMessage)}
}

var _ ContactRepository = (*MemoryContactRepository)(nil)

// Ping always succeeds.
func (r *MemoryContactRepository) Ping(context.Context) error { return nil }

func (r *MemoryContactRepository) Create(_ context.Context, msg *model.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.messages[msg.ID]; exists {
		return fmt.Errorf("insert contact message: duplicate id %q", msg.ID)
	}
	cp := *msg
	r.messages[msg.ID] = &cp
	return nil
}

func (r *MemoryContactRepository) List(_ context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	r.mu.RLock()
	all := make([]*model.ContactMessage, 0, len(r.messages))
	for _, m := range r.messages {
		cp := *m
		all = append(all, &cp)
	}
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	out := []*model.ContactMessage{}
	if opts.Skip >= len(all) || opts.Limit <= 0 {
		return out, nil
	}
	end := opts.Skip + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return append(out, all[opts.Skip:end]...), nil
}

func (r *MemoryContactRepository) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.messages)), nil
}

func (r *MemoryContactRepository) MarkRead(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok || m.IsRead {
		return false, nil
	}
	m.IsRead = true
	return true, nil
}

func (r *MemoryContactRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return false, nil
	}
	delete(r.messages, id)
	return true, nil
}
