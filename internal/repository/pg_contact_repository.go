package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Deekshi23/portfolio/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Create inserts a new contact_messages row. The id and timestamp are taken
// from msg as-is; the database does not generate them.
func (r *PgContactRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, submitted_at, is_read, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Timestamp, msg.IsRead, msg.IPAddress, msg.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return errors.New("insert contact message: no row written")
	}
	return nil
}

// List returns contact messages newest first, paginated by skip/limit.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, subject, message, submitted_at, is_read,
		        COALESCE(ip_address, ''), COALESCE(user_agent, '')
		 FROM contact_messages
		 ORDER BY submitted_at DESC
		 LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []*model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Timestamp, &m.IsRead, &m.IPAddress, &m.UserAgent); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return messages, nil
}

// Count returns the number of rows in contact_messages.
func (r *PgContactRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return n, nil
}

// MarkRead sets is_read for an unread message. The id is compared as text,
// the same representation Create stores.
func (r *PgContactRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contact_messages SET is_read = TRUE WHERE id = $1 AND is_read = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("mark contact message read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a message by id.
func (r *PgContactRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete contact message: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
