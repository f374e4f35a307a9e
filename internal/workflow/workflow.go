// internal/workflow/workflow.go
//
// Backoffice – post status workflow.
//
// Context
// -------
// A post's lifecycle is a strict three-state cycle:
//
//	draft --publish--> published --archive--> archived --restore--> draft
//
// No other transition exists, and no state is terminal; "archived" is not
// deletion (deletion is an orthogonal operation available from every state).
// The console hides controls for actions that are not legal from the current
// state, but a dispatch can still arrive from a stale view, so Next enforces
// the table again and returns ErrInvalidTransition for illegal pairs.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package workflow

import (
	"errors"
	"fmt"

	"github.com/yanizio/backoffice/internal/record"
)

// Action is a workflow verb dispatched against a post.
type Action string

const (
	ActionPublish Action = "publish"
	ActionArchive Action = "archive"
	ActionRestore Action = "restore"
)

// ErrInvalidTransition is wrapped by every illegal-transition error; match
// with errors.Is.
var ErrInvalidTransition = errors.New("invalid status transition")

// edge is one legal transition.
type edge struct {
	from, to record.PostStatus
}

// transitions is the complete workflow table.  One edge per action keeps
// the cycle strict: an action is legal from exactly one state.
var transitions = map[Action]edge{
	ActionPublish: {record.PostDraft, record.PostPublished},
	ActionArchive: {record.PostPublished, record.PostArchived},
	ActionRestore: {record.PostArchived, record.PostDraft},
}

// ParseAction converts untrusted input into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("workflow: unknown action %q", s)
	}
	return a, nil
}

// Next returns the status that results from applying action to current.
// Illegal pairs return an error wrapping ErrInvalidTransition.
func Next(current record.PostStatus, action Action) (record.PostStatus, error) {
	e, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	if e.from != current {
		return "", fmt.Errorf("%w: cannot %s a %s post", ErrInvalidTransition, action, current)
	}
	return e.to, nil
}

// Edge reports the (from, to) pair for an action.  The SQL adapter uses it
// to guard transition updates with a status predicate.
func Edge(action Action) (from, to record.PostStatus, err error) {
	e, ok := transitions[action]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	return e.from, e.to, nil
}

// Allowed lists the actions legal from a status, in a stable order.  The
// console offers only these controls; unknown statuses allow nothing.
func Allowed(current record.PostStatus) []Action {
	var out []Action
	for _, a := range []Action{ActionPublish, ActionArchive, ActionRestore} {
		if transitions[a].from == current {
			out = append(out, a)
		}
	}
	return out
}
