// internal/form/binder.go
//
// Backoffice – form binder.
//
// Context
// -------
// The binder is the editable layer between a typed record and the console.
// Every field, enums included, is a string while it is being edited;
// conversion to and from typed records happens only at the populate and
// submit boundaries.  Lifecycle: a binder starts with kind defaults
// (create mode), Populate overwrites it wholesale from an existing record
// (edit mode), Reset restores defaults after submit or cancel.
//
// Serialization never fails on incomplete input: required fields are
// advisory at this layer (the console marks them with an asterisk), and
// the entity manager backfills kind defaults before persisting.  Validate
// reports findings for the UI without blocking anything.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package form

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/backoffice/internal/record"
)

// FieldError describes one advisory validation finding so the console can
// highlight the exact field.
type FieldError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// fieldValidator backs format rules (currently just email syntax).
var fieldValidator = validator.New()

// Binder holds one kind's editable form state.
type Binder struct {
	kind   record.Kind
	def    *FormDef
	values map[string]string
}

// New returns a binder seeded with kind defaults.  Unknown kinds error.
func New(kind record.Kind) (*Binder, error) {
	def, ok := Definition(kind)
	if !ok {
		return nil, fmt.Errorf("form: no definition for kind %q", kind)
	}
	b := &Binder{kind: kind, def: def}
	b.Reset()
	return b, nil
}

// DefaultsFor returns the kind-specific zero-value form state.
func DefaultsFor(kind record.Kind) map[string]string {
	return record.Defaults(kind)
}

// Kind returns the bound record kind.
func (b *Binder) Kind() record.Kind { return b.kind }

// Fields exposes the definition's fields in display order for rendering.
func (b *Binder) Fields() []FieldDef { return b.def.Fields }

// Reset restores kind defaults wholesale, discarding in-progress edits.
func (b *Binder) Reset() {
	b.values = record.Defaults(b.kind)
}

// Populate overwrites the form state from an existing record.  The mapping
// is total: every form field is set, falling back to the kind default when
// the record's value is empty, so no field is ever left unset.
func (b *Binder) Populate(rec record.Record) error {
	if rec.RecordKind() != b.kind {
		return fmt.Errorf("form: cannot populate %s binder from %s record", b.kind, rec.RecordKind())
	}
	defaults := record.Defaults(b.kind)
	fields := rec.Fields()
	next := make(map[string]string, len(b.def.Fields))
	for _, f := range b.def.Fields {
		v := fields[f.Name]
		if v == "" {
			v = defaults[f.Name]
		}
		next[f.Name] = v
	}
	b.values = next
	return nil
}

// Set stores one user edit.  Unknown field names are rejected so typos in
// the console surface immediately.
func (b *Binder) Set(field, value string) error {
	if _, ok := b.values[field]; !ok {
		return fmt.Errorf("form: %s has no field %q", b.kind, field)
	}
	b.values[field] = value
	return nil
}

// Get returns the current value of a field, empty for unknown names.
func (b *Binder) Get(field string) string { return b.values[field] }

// Serialize returns a copy of the current values, strings throughout.  It
// never fails: required-field enforcement is advisory, and the entity
// manager fills any still-empty required field with its default before
// persisting.
func (b *Binder) Serialize() map[string]string {
	out := make(map[string]string, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Validate reports advisory findings: empty required fields, select values
// outside the declared options, and malformed email addresses.  Findings
// never block serialization.
func (b *Binder) Validate() []FieldError {
	var errs []FieldError
	for _, f := range b.def.Fields {
		v := b.values[f.Name]

		if f.Required && v == "" {
			errs = append(errs, FieldError{f.Name, "This field is required."})
			continue
		}
		if v == "" {
			continue
		}

		switch f.Type {
		case "email":
			if fieldValidator.Var(v, "email") != nil {
				errs = append(errs, FieldError{f.Name, "Invalid email address."})
			}
		case "select":
			if !optionAllowed(f.Options, v) {
				errs = append(errs, FieldError{f.Name, "Value is not one of the allowed options."})
			}
		}
	}
	return errs
}
