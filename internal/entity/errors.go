// internal/entity/errors.go
//
// Backoffice – entity manager error taxonomy.
//
// Context
// -------
// Every operation on the entity manager fails in one of four ways:
//
//	ValidationError        – input rejected before any I/O (advisory layer).
//	NotFoundError          – a mutation referenced an id that is not in the
//	                         current collection.
//	workflow transitions   – see internal/workflow (ErrInvalidTransition).
//	RemoteError            – the adapter or transport failed; the upstream
//	                         message passes through verbatim.
//
// All of them surface by returning the error to the caller; the manager
// additionally records ErrorMessage(err) into the collection snapshot for
// passive display, but never swallows the error itself.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package entity

import (
	"errors"
	"fmt"

	"github.com/yanizio/backoffice/internal/record"
)

// ValidationError reports input rejected before any adapter call.  The
// required-field layer is advisory, so in practice this fires only for
// structural misuse (e.g., transitioning a user).
type ValidationError struct {
	Field  string // offending field, may be empty for operation-level faults
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports a mutation against an id absent from the collection.
type NotFoundError struct {
	Kind record.Kind
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// RemoteError wraps an adapter or transport failure.  Message is
// human-readable and shown to the operator unchanged.
type RemoteError struct {
	Message string
	Status  int // HTTP status when known, zero otherwise
}

func (e *RemoteError) Error() string { return e.Message }

// unknownErrMsg substitutes for errors that carry no usable text.
const unknownErrMsg = "unknown error"

// ErrorMessage extracts a human-readable message from any error: a
// RemoteError's message field wins, any other error contributes its string,
// and a nil or blank error yields a generic fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return unknownErrMsg
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if s := err.Error(); s != "" {
		return s
	}
	return unknownErrMsg
}
