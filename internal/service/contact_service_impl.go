package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Deekshi23/portfolio/internal/model"
	"github.com/Deekshi23/portfolio/internal/repository"
	"github.com/Deekshi23/portfolio/internal/validation"
	"github.com/google/uuid"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo  repository.ContactRepository
	newID func() string
	now   func() time.Time
}

// ContactOption customises a ContactService.
type ContactOption func(*contactServiceImpl)

// WithIDGenerator replaces the default UUID v4 generator.
func WithIDGenerator(f func() string) ContactOption {
	return func(s *contactServiceImpl) { s.newID = f }
}

// WithClock replaces the default UTC wall clock.
func WithClock(f func() time.Time) ContactOption {
	return func(s *contactServiceImpl) { s.now = f }
}

// NewContactService creates a ContactService backed by the given repository.
func NewContactService(repo repository.ContactRepository, opts ...ContactOption) ContactService {
	s := &contactServiceImpl{
		repo:  repo,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *contactServiceImpl) Submit(ctx context.Context, in model.ContactInput, meta model.RequestMeta) (*model.ContactMessage, error) {
	fields, err := validation.Contact(in)
	if err != nil {
		return nil, err
	}

	msg := model.NewContactMessage(fields, meta, s.newID(), s.now())
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("submit contact message: %w", err)
	}
	return msg, nil
}

func (s *contactServiceImpl) List(ctx context.Context, opts model.ContactListOptions) (*model.ContactPage, error) {
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.ContactMessage{}
	}
	return &model.ContactPage{
		Items: items,
		Total: s.Count(ctx),
		Skip:  opts.Skip,
		Limit: opts.Limit,
	}, nil
}

// Count logs storage errors and reports 0 instead of failing.
func (s *contactServiceImpl) Count(ctx context.Context) int64 {
	n, err := s.repo.Count(ctx)
	if err != nil {
		slog.Error("count contact messages failed", "error", err)
		return 0
	}
	return n
}

func (s *contactServiceImpl) MarkRead(ctx context.Context, id string) (bool, error) {
	return s.repo.MarkRead(ctx, id)
}

func (s *contactServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
