// internal/form/binder_test.go
//
// Unit-tests for the form binder: kind defaults, wholesale populate with
// fallback, reset, passthrough serialization, and advisory validation.
//
// Run: go test ./internal/form -v

package form

import (
	"testing"

	"github.com/yanizio/backoffice/internal/record"
)

func TestNew_SeedsKindDefaults(t *testing.T) {
	b, err := New(record.KindUser)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Get("role") != "user" || b.Get("status") != "active" {
		t.Fatalf("user defaults not seeded: %v", b.Serialize())
	}

	p, _ := New(record.KindPost)
	if p.Get("status") != "draft" || p.Get("category") != "" {
		t.Fatalf("post defaults not seeded: %v", p.Serialize())
	}
}

func TestNew_UnknownKind(t *testing.T) {
	if _, err := New(record.Kind("invoice")); err == nil {
		t.Fatalf("unknown kind must error")
	}
}

func TestPopulate_TotalMappingWithFallback(t *testing.T) {
	b, _ := New(record.KindUser)
	// Record with empty role: populate must fall back to the kind default
	// rather than leaving the field blank.
	u := record.User{ID: 1, Username: "alice", Email: "alice@example.com",
		Status: record.UserSuspended}
	if err := b.Populate(u); err != nil {
		t.Fatalf("populate: %v", err)
	}

	got := b.Serialize()
	want := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"role":     "user",      // fallback
		"status":   "suspended", // from record
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("serialize has %d fields, want %d: %v", len(got), len(want), got)
	}
}

func TestPopulate_KindMismatch(t *testing.T) {
	b, _ := New(record.KindUser)
	if err := b.Populate(record.Post{ID: 1}); err == nil {
		t.Fatalf("cross-kind populate must error")
	}
}

func TestReset_DiscardsEdits(t *testing.T) {
	b, _ := New(record.KindPost)
	if err := b.Set("title", "WIP draft"); err != nil {
		t.Fatalf("set: %v", err)
	}
	b.Reset()
	if b.Get("title") != "" || b.Get("status") != "draft" {
		t.Fatalf("reset did not restore defaults: %v", b.Serialize())
	}
}

func TestSet_UnknownField(t *testing.T) {
	b, _ := New(record.KindUser)
	if err := b.Set("nickname", "x"); err == nil {
		t.Fatalf("unknown field must be rejected")
	}
}

func TestSerialize_NeverFailsOnIncompleteInput(t *testing.T) {
	b, _ := New(record.KindPost)
	// Required title and author left empty on purpose.
	got := b.Serialize()
	if got["title"] != "" || got["status"] != "draft" {
		t.Fatalf("passthrough serialize = %v", got)
	}
	// Mutating the returned map must not leak back into the binder.
	got["title"] = "hijack"
	if b.Get("title") != "" {
		t.Fatalf("serialize must return a copy")
	}
}

func TestValidate_AdvisoryFindings(t *testing.T) {
	b, _ := New(record.KindUser)
	_ = b.Set("email", "not-an-address")
	_ = b.Set("role", "overlord")

	findings := map[string]bool{}
	for _, fe := range b.Validate() {
		findings[fe.Name] = true
	}
	for _, want := range []string{"username", "email", "role"} {
		if !findings[want] {
			t.Errorf("missing finding for %q: %v", want, b.Validate())
		}
	}
}

func TestValidate_CleanForm(t *testing.T) {
	b, _ := New(record.KindUser)
	_ = b.Set("username", "alice")
	_ = b.Set("email", "alice@example.com")
	if errs := b.Validate(); len(errs) != 0 {
		t.Fatalf("clean form produced findings: %v", errs)
	}
}

func TestDefinition_EmptyCategoryOption(t *testing.T) {
	fd, ok := Definition(record.KindPost)
	if !ok {
		t.Fatalf("post definition missing")
	}
	for _, f := range fd.Fields {
		if f.Name == "category" {
			if !optionAllowed(f.Options, "") {
				t.Fatalf("category must allow the empty (uncategorized) option")
			}
			return
		}
	}
	t.Fatalf("category field missing from post form")
}

func TestDefinition_DefaultMustMatchKind(t *testing.T) {
	// The YAML default and record.Defaults are two spellings of one fact;
	// a definition that drifts from the kind must fail to load.
	fd := &FormDef{
		ID:    "user",
		Title: "Users",
		Fields: []FieldDef{
			{Name: "role", Label: "Role", Type: "select",
				Options: []string{"admin", "user"}, Default: "admin"},
		},
	}
	if err := validateDef(fd, "user.yaml"); err == nil {
		t.Fatalf("drifted default must be rejected")
	}

	fd.Fields[0].Default = "user"
	if err := validateDef(fd, "user.yaml"); err != nil {
		t.Fatalf("agreeing default rejected: %v", err)
	}
}
