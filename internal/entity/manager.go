// internal/entity/manager.go
//
// Backoffice – entity manager.
//
// Context
// -------
// One Manager owns the authoritative in-memory collection for a single
// record kind.  Every mutation follows the same shape: persist through the
// adapter, then unconditionally reload the whole collection, because the
// design trusts only server-confirmed state.  Nothing is ever patched
// locally; a failed mutation leaves the collection exactly as the last
// successful load left it.
//
// Workflow
//   - Load fetches GetAll, replacing Items wholesale.  A failed load keeps
//     the previous items visible (stale-but-available) and records the
//     error message for the banner.
//   - Create fills unset required fields with kind defaults before
//     persisting.  Update requires the id to be present in the current
//     collection.  Delete is gated on a Confirmer and reports whether it
//     ran.  Transition checks the workflow table against the post's
//     current status before dispatching.
//
// Concurrency
// -----------
// State is guarded by a mutex; concurrent loads are deduplicated through
// singleflight so a burst of refreshes costs one upstream call.  The
// Manager itself does not serialize mutations against each other; the
// console holds a per-workspace lock around each request, so within one
// session they never interleave.  Across sessions, trailing reloads race
// and the final items reflect whichever response lands last.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package entity

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/backoffice/internal/metrics"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/workflow"
)

// Collection is a point-in-time snapshot of a managed collection.  Items
// keep server order; callers must treat the records as immutable.
type Collection struct {
	Kind    record.Kind
	Items   []record.Record
	Loading bool
	Error   string // last operation's message, empty when healthy
}

// Manager owns the collection of one record kind.
type Manager struct {
	kind    record.Kind
	svc     Service
	confirm Confirmer
	log     *zap.SugaredLogger

	mu    sync.Mutex
	col   Collection
	loads singleflight.Group
}

// NewManager builds a Manager for kind.  A nil confirmer means Delete is
// always confirmed (useful for the API surface, where the client confirms
// before dispatching); a nil logger falls back to the global one.
func NewManager(kind record.Kind, svc Service, confirm Confirmer, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.S()
	}
	return &Manager{
		kind:    kind,
		svc:     svc,
		confirm: confirm,
		log:     log,
		col:     Collection{Kind: kind},
	}
}

// Kind returns the managed record kind.
func (m *Manager) Kind() record.Kind { return m.kind }

// Collection returns a snapshot.  The slice header is copied so callers
// can iterate while the manager reloads.
func (m *Manager) Collection() Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.col
	snap.Items = append([]record.Record(nil), m.col.Items...)
	return snap
}

// Find returns the record with id from the current collection.
func (m *Manager) Find(id int) (record.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.col.Items {
		if r.RecordID() == id {
			return r, true
		}
	}
	return nil, false
}

//
// Load
//

// Load fetches the full collection from the adapter, replacing Items
// wholesale.  Error is cleared at the start; on failure it carries the
// message and the previous items stay visible.  Concurrent callers share
// one upstream fetch.
func (m *Manager) Load(ctx context.Context) error {
	_, err, _ := m.loads.Do("load", func() (any, error) {
		return nil, m.doLoad(ctx)
	})
	return err
}

func (m *Manager) doLoad(ctx context.Context) error {
	m.mu.Lock()
	m.col.Loading = true
	m.col.Error = ""
	m.mu.Unlock()

	items, err := m.svc.GetAll(ctx, m.kind)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.col.Loading = false
	if err != nil {
		// Stale-but-available: keep the previous items on screen.
		m.col.Error = ErrorMessage(err)
		metrics.CollectionLoadErrorsTotal.WithLabelValues(string(m.kind)).Inc()
		m.log.Warnw("collection load failed", "kind", m.kind, "error", err)
		return err
	}
	m.col.Items = items
	metrics.CollectionLoadTotal.WithLabelValues(string(m.kind)).Inc()
	m.log.Debugw("collection loaded", "kind", m.kind, "count", len(items))
	return nil
}

//
// Mutations
//

// Create fills unset required fields with kind defaults, persists the new
// record, and reloads.  The form binder enforces required fields only as
// advice, so the defaults here are the real backstop.
func (m *Manager) Create(ctx context.Context, fields map[string]string) error {
	full := record.Defaults(m.kind)
	for k, v := range fields {
		if v != "" {
			full[k] = v
		}
	}
	if _, err := m.svc.Create(ctx, m.kind, full); err != nil {
		return m.failMutation(ctx, "create", err)
	}
	metrics.MutationTotal.WithLabelValues(string(m.kind), "create").Inc()
	m.log.Infow("record created", "kind", m.kind)
	return m.Load(ctx)
}

// Update persists a partial field set against id, then reloads.  The id
// must reference a record in the current collection.
func (m *Manager) Update(ctx context.Context, id int, fields map[string]string) error {
	if _, ok := m.Find(id); !ok {
		return m.failMutation(ctx, "update", &NotFoundError{Kind: m.kind, ID: id})
	}
	if _, err := m.svc.Update(ctx, m.kind, id, fields); err != nil {
		return m.failMutation(ctx, "update", err)
	}
	metrics.MutationTotal.WithLabelValues(string(m.kind), "update").Inc()
	m.log.Infow("record updated", "kind", m.kind, "id", id)
	return m.Load(ctx)
}

// Delete removes id after an explicit confirmation.  A declined
// confirmation performs no I/O and returns (false, nil).  A confirmed
// delete persists, reloads, and returns (true, nil).
func (m *Manager) Delete(ctx context.Context, id int) (bool, error) {
	if m.confirm != nil && !m.confirm.Confirm(ctx, m.kind, id) {
		m.log.Debugw("delete declined", "kind", m.kind, "id", id)
		return false, nil
	}
	if _, ok := m.Find(id); !ok {
		return false, m.failMutation(ctx, "delete", &NotFoundError{Kind: m.kind, ID: id})
	}
	if err := m.svc.Delete(ctx, m.kind, id); err != nil {
		return false, m.failMutation(ctx, "delete", err)
	}
	metrics.MutationTotal.WithLabelValues(string(m.kind), "delete").Inc()
	m.log.Infow("record deleted", "kind", m.kind, "id", id)
	return true, m.Load(ctx)
}

// Transition applies a workflow action to a post, then reloads.  On a
// user-kind manager the call is a logged no-op, mirroring the UI contract
// that transition controls exist only on post views.  The workflow table
// is re-checked against the record's current status so a dispatch from a
// stale view fails with ErrInvalidTransition instead of corrupting state.
func (m *Manager) Transition(ctx context.Context, id int, action workflow.Action) error {
	if m.kind != record.KindPost {
		m.log.Warnw("transition ignored for non-post kind", "kind", m.kind, "id", id, "action", action)
		return nil
	}
	rec, ok := m.Find(id)
	if !ok {
		return m.failMutation(ctx, "transition", &NotFoundError{Kind: m.kind, ID: id})
	}
	post, ok := rec.(record.Post)
	if !ok {
		return m.failMutation(ctx, "transition", &ValidationError{Reason: "record is not a post"})
	}
	if _, err := workflow.Next(post.Status, action); err != nil {
		return m.failMutation(ctx, "transition", err)
	}
	if err := m.svc.Transition(ctx, id, action); err != nil {
		return m.failMutation(ctx, "transition", err)
	}
	metrics.MutationTotal.WithLabelValues(string(m.kind), "transition").Inc()
	m.log.Infow("post transitioned", "id", id, "action", action)
	return m.Load(ctx)
}

// failMutation records the error message for passive display and returns
// the error unchanged so callers still handle the failure (e.g., keep the
// modal open).  Items are untouched: no partial local application.
func (m *Manager) failMutation(_ context.Context, op string, err error) error {
	m.mu.Lock()
	m.col.Error = ErrorMessage(err)
	m.mu.Unlock()
	metrics.MutationErrorsTotal.WithLabelValues(string(m.kind), op).Inc()
	m.log.Warnw("mutation failed", "kind", m.kind, "op", op, "error", err)
	return err
}
