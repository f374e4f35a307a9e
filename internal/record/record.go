// internal/record/record.go
//
// Backoffice – record schema registry.
//
// Context
// -------
// The console manages exactly two record kinds: users and posts.  Both are
// served by the upstream CRUD service and share a uniform management shape
// (integer ID, string-ish fields, enum columns, server-assigned order).  This
// package declares the two concrete schemas, the Kind discriminator that
// selects between them, and the per-kind metadata (mutable field subsets and
// creation defaults) that the entity manager and form binder rely on.
//
// Everything downstream dispatches on Kind rather than comparing raw strings;
// ParseKind is the single point where untrusted kind input enters the system.
//
// Notes
// -----
//   - JSON tags mirror the upstream wire shape (camelCase).
//   - Fields() stringifies every column for the table engine's search filter;
//     FieldValues() keeps typed values so numeric columns sort numerically.
//   - Oxford commas, two spaces after periods.
package record

import (
	"fmt"
	"strconv"
)

//
// Kind discriminator
//

// Kind selects which of the two schemas is active.
type Kind string

const (
	KindUser Kind = "user"
	KindPost Kind = "post"
)

// ParseKind converts untrusted input into a Kind.  The plural forms are
// accepted because they appear in URL paths ("/api/users").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "user", "users":
		return KindUser, nil
	case "post", "posts":
		return KindPost, nil
	default:
		return "", fmt.Errorf("record: unknown kind %q", s)
	}
}

// Kinds returns every supported kind in display order.
func Kinds() []Kind { return []Kind{KindUser, KindPost} }

//
// Enum columns
//

// Role is a user's permission tier.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
	RoleGuest     Role = "guest"
)

// UserStatus is a user account's operational state.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// PostStatus is a post's lifecycle state; transitions between states are
// governed by internal/workflow.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

// Category tags a post's subject area.  The empty category is legal and
// means "uncategorized".
type Category string

const (
	CategoryNone          Category = ""
	CategoryDevelopment   Category = "development"
	CategoryDesign        Category = "design"
	CategoryAccessibility Category = "accessibility"
)

//
// Record contract
//

// Record is the uniform view the entity manager, table engine, and form
// binder share.  IDs are immutable and unique within a collection; every
// other field mutates only through entity manager operations.
type Record interface {
	RecordID() int
	RecordKind() Kind

	// Fields returns every column stringified, keyed by field name.  The
	// table engine's search filter matches against these values.
	Fields() map[string]string

	// FieldValues returns typed column values so the sorter can compare
	// numeric columns numerically.  Nil values stand in for absent data.
	FieldValues() map[string]any
}

//
// User schema
//

// User mirrors one row of the upstream user collection.
type User struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	Role      Role       `json:"role" db:"role"`
	Status    UserStatus `json:"status" db:"status"`
	LastLogin *string    `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt string     `json:"createdAt" db:"created_at"`
}

func (u User) RecordID() int    { return u.ID }
func (u User) RecordKind() Kind { return KindUser }

func (u User) Fields() map[string]string {
	last := ""
	if u.LastLogin != nil {
		last = *u.LastLogin
	}
	return map[string]string{
		"id":        strconv.Itoa(u.ID),
		"username":  u.Username,
		"email":     u.Email,
		"role":      string(u.Role),
		"status":    string(u.Status),
		"lastLogin": last,
		"createdAt": u.CreatedAt,
	}
}

func (u User) FieldValues() map[string]any {
	var last any
	if u.LastLogin != nil {
		last = *u.LastLogin
	}
	return map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"role":      string(u.Role),
		"status":    string(u.Status),
		"lastLogin": last,
		"createdAt": u.CreatedAt,
	}
}

//
// Post schema
//

// Post mirrors one row of the upstream post collection.
type Post struct {
	ID        int        `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Content   string     `json:"content" db:"content"`
	Author    string     `json:"author" db:"author"`
	Category  Category   `json:"category" db:"category"`
	Status    PostStatus `json:"status" db:"status"`
	Views     int        `json:"views" db:"views"`
	CreatedAt string     `json:"createdAt" db:"created_at"`
}

func (p Post) RecordID() int    { return p.ID }
func (p Post) RecordKind() Kind { return KindPost }

func (p Post) Fields() map[string]string {
	return map[string]string{
		"id":        strconv.Itoa(p.ID),
		"title":     p.Title,
		"content":   p.Content,
		"author":    p.Author,
		"category":  string(p.Category),
		"status":    string(p.Status),
		"views":     strconv.Itoa(p.Views),
		"createdAt": p.CreatedAt,
	}
}

func (p Post) FieldValues() map[string]any {
	return map[string]any{
		"id":        p.ID,
		"title":     p.Title,
		"content":   p.Content,
		"author":    p.Author,
		"category":  string(p.Category),
		"status":    string(p.Status),
		"views":     p.Views,
		"createdAt": p.CreatedAt,
	}
}

//
// Per-kind metadata
//

// Mutable lists the fields that may be edited through the console, in form
// display order.  ID and server-maintained columns are excluded.
func Mutable(kind Kind) []string {
	switch kind {
	case KindUser:
		return []string{"username", "email", "role", "status"}
	case KindPost:
		return []string{"title", "content", "author", "category", "status"}
	}
	return nil
}

// Defaults returns the kind-specific zero-value form: the values a freshly
// created record receives for any field the operator left unset.
func Defaults(kind Kind) map[string]string {
	switch kind {
	case KindUser:
		return map[string]string{
			"username": "",
			"email":    "",
			"role":     string(RoleUser),
			"status":   string(UserActive),
		}
	case KindPost:
		return map[string]string{
			"title":    "",
			"content":  "",
			"author":   "",
			"category": string(CategoryNone),
			"status":   string(PostDraft),
		}
	}
	return nil
}

// Columns lists the table columns the console renders for a kind, in
// display order.
func Columns(kind Kind) []string {
	switch kind {
	case KindUser:
		return []string{"id", "username", "email", "role", "status", "lastLogin", "createdAt"}
	case KindPost:
		return []string{"id", "title", "author", "category", "status", "views", "createdAt"}
	}
	return nil
}
