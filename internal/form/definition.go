// internal/form/definition.go
//
// Backoffice – form definitions.
//
// Context
// -------
// Each record kind has one editable form, declared in a YAML file embedded
// in the binary.  The definition names the mutable fields in display
// order, marks which are required (advisory: the console renders an
// asterisk, but serialization never fails on an empty field), and lists
// the legal options for enum columns.  At package init we parse both
// definitions, validate their structural rules, and store them in an
// in-memory registry keyed by kind.  The binder, validator, and console
// all fetch definitions through Definition, guaranteeing a single source
// of truth.
//
// Workflow
//   - Structs mirror the YAML schema: FormDef → FieldDef.
//   - loadDef parses one embedded file and validates structural rules.
//   - Definition offers read-only access to a parsed form by kind.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package form

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/backoffice/internal/record"
)

//go:embed forms/*.yaml
var formFS embed.FS

//
// Data structures
//

// FormDef is one kind's editable form.
type FormDef struct {
	ID     string     `yaml:"id"` // must parse as a record.Kind
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input on the form.  Option and default
// metadata live inline so the binder enforces the same rules the console
// hints at.
type FieldDef struct {
	Name        string   `yaml:"name" json:"name"`   // submission key, required
	Label       string   `yaml:"label" json:"label"` // human-readable label, required
	Type        string   `yaml:"type" json:"type"`   // text, textarea, email, select
	Placeholder string   `yaml:"placeholder" json:"placeholder,omitempty"`
	Required    bool     `yaml:"required" json:"required"`
	Options     []string `yaml:"options" json:"options,omitempty"` // for select; may contain ""
	Default     string   `yaml:"default" json:"default,omitempty"`
}

//
// Registry
//

var registry = map[record.Kind]*FormDef{}

func init() {
	for _, name := range []string{"forms/user.yaml", "forms/post.yaml"} {
		fd, err := loadDef(name)
		if err != nil {
			panic("form: " + err.Error()) // embedded defs are build assets; fail loudly
		}
		registry[record.Kind(fd.ID)] = fd
	}
}

// Definition returns the parsed form for a kind.  The boolean is false
// when the kind has no form.
func Definition(kind record.Kind) (*FormDef, bool) {
	fd, ok := registry[kind]
	return fd, ok
}

//
// Loader
//

// loadDef parses one embedded YAML file and validates its structure.
func loadDef(name string) (*FormDef, error) {
	raw, err := formFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read form %s: %w", name, err)
	}
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse form %s: %w", name, err)
	}
	if err := validateDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

//
// Validation
//

// validateDef enforces structural rules that YAML tags alone cannot.
func validateDef(fd *FormDef, name string) error {
	kind, err := record.ParseKind(fd.ID)
	if err != nil {
		return fmt.Errorf("form %s: id %q is not a record kind", name, fd.ID)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form %s: no fields", name)
	}

	// The YAML default is a rendering hint; record.Defaults is the
	// persistence backstop.  They must agree or the form would promise
	// one value and the manager would write another.
	defaults := record.Defaults(kind)

	seen := make(map[string]struct{})
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("form %s: field missing 'name'", name)
		}
		if f.Label == "" {
			return fmt.Errorf("form %s: field %q missing 'label'", name, f.Name)
		}
		switch f.Type {
		case "text", "textarea", "email", "select":
		default:
			return fmt.Errorf("form %s: field %q has unsupported type %q", name, f.Name, f.Type)
		}
		if f.Type == "select" {
			if len(f.Options) == 0 {
				return fmt.Errorf("form %s: select field %q has no options", name, f.Name)
			}
			if !optionAllowed(f.Options, f.Default) {
				return fmt.Errorf("form %s: field %q default %q not in options", name, f.Name, f.Default)
			}
		}
		if want, known := defaults[f.Name]; known && f.Default != want {
			return fmt.Errorf("form %s: field %q default %q disagrees with kind default %q",
				name, f.Name, f.Default, want)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name %q", name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func optionAllowed(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
