// internal/store/store.go
//
// Backoffice – SQL adapter for the records database.
//
// Context
// -------
// Some deployments run the console on the same network as the records
// database, with no REST service in between.  This package implements
// entity.Service directly on MySQL through sqlx, so the entity manager is
// oblivious to which boundary it talks to.
//
// The schema mirrors the upstream wire shape:
//
//	user (id PK AUTO_INCREMENT, username, email, role, status,
//	      last_login NULL, created_at)
//	post (id PK AUTO_INCREMENT, title, content, author, category,
//	      status, views, created_at)
//
// Workflow transitions are guarded in SQL: the UPDATE carries the
// expected from-status in its WHERE clause, so a stale dispatch matches
// zero rows instead of clobbering a concurrent change.
//
// Notes
// -----
//   - Field names arrive in wire form (camelCase); column() maps them.
//   - Oxford commas, two spaces after periods.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/workflow"
)

// compile-time assertion
var _ entity.Service = (*Store)(nil)

// Store serves entity.Service from a MySQL pool.
type Store struct {
	db *sqlx.DB
}

// New wraps an open pool.  The caller owns the pool's lifecycle.
func New(db *sqlx.DB) *Store { return &Store{db: db} }

//
// Column mapping
//

// columns maps wire field names to table columns, per kind.  Only mutable
// fields appear; id and created_at are never written through here.
var columns = map[record.Kind]map[string]string{
	record.KindUser: {
		"username": "username",
		"email":    "email",
		"role":     "role",
		"status":   "status",
	},
	record.KindPost: {
		"title":    "title",
		"content":  "content",
		"author":   "author",
		"category": "category",
		"status":   "status",
	},
}

// assignments builds a deterministic "col = ?" list plus its argument
// slice from a wire-form field map.  Unknown fields are rejected rather
// than silently dropped.
func assignments(kind record.Kind, fields map[string]string) (string, []any, error) {
	cols := columns[kind]

	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names) // stable SQL text for tests and logs

	var set []string
	var args []any
	for _, f := range names {
		col, ok := cols[f]
		if !ok {
			return "", nil, &entity.ValidationError{Field: f, Reason: "unknown field"}
		}
		set = append(set, col+" = ?")
		args = append(args, fields[f])
	}
	if len(set) == 0 {
		return "", nil, &entity.ValidationError{Reason: "no fields to persist"}
	}
	return strings.Join(set, ", "), args, nil
}

//
// entity.Service implementation
//

// GetAll selects the full collection in primary-key order, the order the
// REST upstream also serves.
func (s *Store) GetAll(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	if kind == record.KindUser {
		const q = `SELECT id, username, email, role, status, last_login, created_at FROM user ORDER BY id`
		var rows []record.User
		if err := s.db.SelectContext(ctx, &rows, q); err != nil {
			return nil, wrap(err)
		}
		out := make([]record.Record, len(rows))
		for i, r := range rows {
			out[i] = r
		}
		return out, nil
	}

	const q = `SELECT id, title, content, author, category, status, views, created_at FROM post ORDER BY id`
	var rows []record.Post
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, wrap(err)
	}
	out := make([]record.Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

// Create inserts a new row and reads it back by LastInsertId.
func (s *Store) Create(ctx context.Context, kind record.Kind, fields map[string]string) (record.Record, error) {
	set, args, err := assignments(kind, fields)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`INSERT INTO %s SET %s, created_at = NOW()`, table(kind), set)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, wrap(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrap(err)
	}
	return s.byID(ctx, kind, int(id))
}

// Update writes the partial field set and reads the row back.
func (s *Store) Update(ctx context.Context, kind record.Kind, id int, fields map[string]string) (record.Record, error) {
	set, args, err := assignments(kind, fields)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table(kind), set)
	res, err := s.db.ExecContext(ctx, q, append(args, id)...)
	if err != nil {
		return nil, wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL also reports 0 for no-op updates; verify existence before
		// declaring the id missing.
		if _, err := s.byID(ctx, kind, id); err != nil {
			return nil, &entity.NotFoundError{Kind: kind, ID: id}
		}
	}
	return s.byID(ctx, kind, id)
}

// Delete removes a row; a zero-row result means the id never existed.
func (s *Store) Delete(ctx context.Context, kind record.Kind, id int) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table(kind))
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// Transition applies a workflow action with the from-status in the WHERE
// clause.  Zero rows affected means the post either does not exist or is
// not in the action's from-state; the distinction is resolved with one
// follow-up read.
func (s *Store) Transition(ctx context.Context, id int, action workflow.Action) error {
	from, to, err := workflow.Edge(action)
	if err != nil {
		return err
	}

	const q = `UPDATE post SET status = ? WHERE id = ? AND status = ?`
	res, err := s.db.ExecContext(ctx, q, string(to), id, string(from))
	if err != nil {
		return wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.byID(ctx, record.KindPost, id); err != nil {
			return &entity.NotFoundError{Kind: record.KindPost, ID: id}
		}
		return fmt.Errorf("%w: cannot %s this post", workflow.ErrInvalidTransition, action)
	}
	return nil
}

//
// Internal helpers
//

func table(kind record.Kind) string {
	if kind == record.KindUser {
		return "user"
	}
	return "post"
}

func (s *Store) byID(ctx context.Context, kind record.Kind, id int) (record.Record, error) {
	if kind == record.KindUser {
		const q = `SELECT id, username, email, role, status, last_login, created_at FROM user WHERE id = ? LIMIT 1`
		var u record.User
		if err := s.db.GetContext(ctx, &u, q, id); err != nil {
			return nil, wrap(err)
		}
		return u, nil
	}
	const q = `SELECT id, title, content, author, category, status, views, created_at FROM post WHERE id = ? LIMIT 1`
	var p record.Post
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, wrap(err)
	}
	return p, nil
}

// wrap converts driver errors into the manager's taxonomy so the banner
// shows a transport-ish message instead of raw SQL internals.
func wrap(err error) error {
	return &entity.RemoteError{Message: err.Error()}
}
