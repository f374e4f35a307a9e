// internal/record/badge.go
//
// Badge mappings for enum columns.
//
// The console renders role, status, and category values as colored badges.
// Unknown enum values fall through to a neutral badge that shows the raw
// value; upstream may grow new states before the console learns about them,
// and a passthrough label degrades better than an error.
package record

// Badge pairs a visual variant with a display label.
type Badge struct {
	Variant string `json:"variant"` // primary, success, warning, danger, info, or secondary
	Label   string `json:"label"`
}

// StatusBadge maps a status value of either kind to a badge.
func StatusBadge(kind Kind, status string) Badge {
	var m map[string]Badge
	switch kind {
	case KindUser:
		m = map[string]Badge{
			string(UserActive):    {"success", "Active"},
			string(UserInactive):  {"warning", "Inactive"},
			string(UserSuspended): {"danger", "Suspended"},
		}
	case KindPost:
		m = map[string]Badge{
			string(PostPublished): {"success", "Published"},
			string(PostDraft):     {"warning", "Draft"},
			string(PostArchived):  {"secondary", "Archived"},
		}
	}
	if b, ok := m[status]; ok {
		return b
	}
	return Badge{"secondary", status}
}

// RoleBadge maps a user role to a badge.
func RoleBadge(role string) Badge {
	m := map[string]Badge{
		string(RoleAdmin):     {"danger", "Admin"},
		string(RoleModerator): {"warning", "Moderator"},
		string(RoleUser):      {"primary", "User"},
		string(RoleGuest):     {"secondary", "Guest"},
	}
	if b, ok := m[role]; ok {
		return b
	}
	return Badge{"secondary", role}
}

// CategoryBadge maps a post category to a badge.  The empty category gets a
// muted "uncategorized" label.
func CategoryBadge(category string) Badge {
	m := map[string]Badge{
		string(CategoryDevelopment):   {"primary", "development"},
		string(CategoryDesign):        {"info", "design"},
		string(CategoryAccessibility): {"danger", "accessibility"},
	}
	if b, ok := m[category]; ok {
		return b
	}
	if category == "" {
		return Badge{"secondary", "uncategorized"}
	}
	return Badge{"secondary", category}
}
