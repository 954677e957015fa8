package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgAdminRepository exposes the tables of the public schema as raw JSON rows.
type PgAdminRepository struct {
	pool *pgxpool.Pool
}

// NewPgAdminRepository creates a PgAdminRepository backed by the given pool.
func NewPgAdminRepository(pool *pgxpool.Pool) *PgAdminRepository {
	return &PgAdminRepository{pool: pool}
}

var _ AdminRepository = (*PgAdminRepository)(nil)

func (r *PgAdminRepository) Collections(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// columns returns the column set of table, or ErrNotFound when the table does
// not exist in the public schema.
func (r *PgAdminRepository) columns(ctx context.Context, table string) (map[string]bool, error) {
	if !ValidCollectionName(table) {
		return nil, ErrInvalidCollection
	}
	rows, err := r.pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNotFound
	}
	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[n] = true
	}
	return cols, nil
}

func (r *PgAdminRepository) Documents(ctx context.Context, table string, limit int) ([]json.RawMessage, error) {
	if _, err := r.columns(ctx, table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT row_to_json(t)::text FROM %s AS t LIMIT $1`, pgx.Identifier{table}.Sanitize())
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (json.RawMessage, error) {
		var s string
		err := row.Scan(&s)
		return json.RawMessage(s), err
	})
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	return docs, nil
}

// Insert writes doc into table. Keys must name existing columns; columns not
// present in doc get their defaults. The new row's id column is returned when
// the table has one.
func (r *PgAdminRepository) Insert(ctx context.Context, table string, doc map[string]any) (string, error) {
	cols, err := r.columns(ctx, table)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		if !cols[k] {
			return "", fmt.Errorf("%w: unknown column %q", ErrInvalidDocument, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ident := pgx.Identifier{table}.Sanitize()
	returning := `RETURNING COALESCE(row_to_json(t)->>'id', '')`

	var query string
	var args []any
	if len(keys) == 0 {
		query = fmt.Sprintf(`INSERT INTO %s AS t DEFAULT VALUES %s`, ident, returning)
	} else {
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = pgx.Identifier{k}.Sanitize()
		}
		colList := strings.Join(quoted, ", ")
		query = fmt.Sprintf(`INSERT INTO %s AS t (%s) SELECT %s FROM json_populate_record(NULL::%s, $1::json) %s`,
			ident, colList, colList, ident, returning)
		body, err := json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		args = append(args, string(body))
	}

	var id string
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert row: %w", err)
	}
	return id, nil
}

func (r *PgAdminRepository) Delete(ctx context.Context, table, id string) (bool, error) {
	cols, err := r.columns(ctx, table)
	if err != nil {
		return false, err
	}
	if !cols["id"] {
		return false, fmt.Errorf("%w: table %q has no id column", ErrInvalidDocument, table)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id::text = $1`, pgx.Identifier{table}.Sanitize())
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete row: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
