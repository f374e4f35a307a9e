// internal/session/session.go
//
// Per-operator console session.
//
// Context
// -------
// Every operator who opens the console gets a Session keyed by an opaque
// id (cookie value).  The Session aggregates one Workspace per record
// kind: the entity manager that owns the collection, the table view that
// holds search, sort, and pagination state, and the form binder for the
// edit panel.  Workspaces are built once, when the session is first seen,
// and live until the cache evicts the session.
//
// Notes
// -----
//   - Workspace construction is the only fallible step (an unknown kind
//     has no form definition), so New returns an error rather than panic.
//   - Oxford commas, two spaces after periods.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/form"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/table"
)

//
// Workspace
//

// Workspace bundles the per-kind console state for one operator.  The
// Manager guards its own collection, but View and Form are plain
// mutable state; concurrent requests on one session (two browser tabs)
// must hold the workspace lock across any use of them.
type Workspace struct {
	Kind    record.Kind
	Manager *entity.Manager
	View    *table.View
	Form    *form.Binder

	mu sync.Mutex
}

// Lock serializes request handling for this workspace.
func (w *Workspace) Lock() { w.mu.Lock() }

// Unlock releases the workspace for the next request.
func (w *Workspace) Unlock() { w.mu.Unlock() }

//
// Session aggregate
//

// Session groups the workspaces for one operator.
type Session struct {
	ID       string
	lastSeen int64 // UnixNano
	spaces   map[record.Kind]*Workspace
}

// New builds a Session with one Workspace per known kind.  All workspaces
// share the same backing service and confirmer; collection state is
// per-session.
func New(id string, svc entity.Service, confirm entity.Confirmer, pageSize int, log *zap.SugaredLogger) (*Session, error) {
	s := &Session{
		ID:       id,
		lastSeen: time.Now().UnixNano(),
		spaces:   make(map[record.Kind]*Workspace, 2),
	}
	for _, kind := range []record.Kind{record.KindUser, record.KindPost} {
		b, err := form.New(kind)
		if err != nil {
			return nil, err
		}
		s.spaces[kind] = &Workspace{
			Kind:    kind,
			Manager: entity.NewManager(kind, svc, confirm, log),
			View:    table.New(pageSize),
			Form:    b,
		}
	}
	return s, nil
}

// Workspace returns the per-kind state, or nil for an unknown kind.
func (s *Session) Workspace(kind record.Kind) *Workspace {
	return s.spaces[kind]
}

// Touch records activity for the idle evictor.
func (s *Session) Touch() {
	atomic.StoreInt64(&s.lastSeen, time.Now().UnixNano())
}

// LastSeen reports the most recent activity timestamp.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, atomic.LoadInt64(&s.lastSeen))
}
