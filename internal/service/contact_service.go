package service

import (
	"context"

	"github.com/Deekshi23/portfolio/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates in, builds a new unread message carrying meta and
	// stores it. Validation failures are returned as validation.Errors.
	Submit(ctx context.Context, in model.ContactInput, meta model.RequestMeta) (*model.ContactMessage, error)

	// List returns one page of messages, newest first, with the total count.
	List(ctx context.Context, opts model.ContactListOptions) (*model.ContactPage, error)

	// Count returns the number of stored messages, or 0 when the store
	// cannot be queried.
	Count(ctx context.Context) int64

	// MarkRead marks a message read. It reports false when the id is unknown
	// or the message was already read.
	MarkRead(ctx context.Context, id string) (bool, error)

	// Delete removes a message and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}
