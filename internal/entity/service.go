// internal/entity/service.go
//
// Adapter contract consumed by the entity manager.
//
// The manager never talks to a transport directly; it depends on this
// narrow interface so the same core drives the REST client
// (internal/remote) and the direct SQL store (internal/store), and so
// tests can substitute an in-memory fake.
package entity

import (
	"context"

	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/workflow"
)

// Service is the remote CRUD boundary for one deployment.  All calls are
// synchronous and may fail with a transport or validation error whose
// message is extracted via ErrorMessage.
type Service interface {
	// GetAll fetches the full collection of a kind in server order.
	GetAll(ctx context.Context, kind record.Kind) ([]record.Record, error)

	// Create persists a new record built from stringly-typed form fields.
	Create(ctx context.Context, kind record.Kind, fields map[string]string) (record.Record, error)

	// Update persists a partial field set against an existing id.
	Update(ctx context.Context, kind record.Kind, id int, fields map[string]string) (record.Record, error)

	// Delete removes a record permanently.  Orthogonal to the workflow:
	// legal from every status.
	Delete(ctx context.Context, kind record.Kind, id int) error

	// Transition applies a workflow action to a post.
	Transition(ctx context.Context, id int, action workflow.Action) error
}

// Confirmer gates destructive operations on an explicit user decision.  It
// is side-effecting by design (a dialog, a prompt, a query parameter); a
// false return aborts the operation before any I/O happens.
type Confirmer interface {
	Confirm(ctx context.Context, kind record.Kind, id int) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, kind record.Kind, id int) bool

func (f ConfirmFunc) Confirm(ctx context.Context, kind record.Kind, id int) bool {
	return f(ctx, kind, id)
}
