package repository

import (
	"context"
	"encoding/json"

	"github.com/Deekshi23/portfolio/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository defines the persistence interface for contact messages.
// Implementations key records by ContactMessage.ID using the same string
// representation on every path.
type ContactRepository interface {
	// Create inserts msg. An unacknowledged write is reported as an error.
	Create(ctx context.Context, msg *model.ContactMessage) error
	// List returns messages newest first, paginated by opts.
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	// Count returns the total number of stored messages.
	Count(ctx context.Context) (int64, error)
	// MarkRead flips isRead to true and reports whether this call changed it.
	MarkRead(ctx context.Context, id string) (bool, error)
	// Delete removes the message and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// AdminRepository exposes raw collections (tables) of the backing store for
// ad-hoc inspection.
type AdminRepository interface {
	Collections(ctx context.Context) ([]string, error)
	// Documents returns up to limit raw documents as JSON. ErrNotFound is
	// returned for unknown collections where the store can tell.
	Documents(ctx context.Context, collection string, limit int) ([]json.RawMessage, error)
	// Insert stores doc and returns its identifier, if the store assigns one.
	Insert(ctx context.Context, collection string, doc map[string]any) (string, error)
	// Delete removes the document with the given id and reports whether it existed.
	Delete(ctx context.Context, collection, id string) (bool, error)
}
