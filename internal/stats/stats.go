// internal/stats/stats.go
//
// Collection summary cards.
//
// Context
// -------
// The console header shows a row of stat cards above each table: user
// counts by status plus the admin head-count, and post counts by
// workflow status plus cumulative views.  Summaries are computed from
// the in-memory collection on every render, so they always agree with
// the table below them.
//
// Notes
// -----
//   - Unknown status values land in no bucket but still count toward
//     Total, mirroring the permissive badge handling in record.
//   - Oxford commas, two spaces after periods.
package stats

import (
	"github.com/yanizio/backoffice/internal/record"
)

//
// Summary types
//

// UserSummary buckets a user collection by status and role.
type UserSummary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Suspended int `json:"suspended"`
	Admins    int `json:"admins"`
}

// PostSummary buckets a post collection by workflow status.
type PostSummary struct {
	Total      int `json:"total"`
	Published  int `json:"published"`
	Draft      int `json:"draft"`
	Archived   int `json:"archived"`
	TotalViews int `json:"totalViews"`
}

//
// Builders
//

// Users summarizes a user collection.  Non-user records are skipped.
func Users(items []record.Record) UserSummary {
	var s UserSummary
	for _, it := range items {
		u, ok := it.(record.User)
		if !ok {
			continue
		}
		s.Total++
		switch u.Status {
		case record.UserActive:
			s.Active++
		case record.UserInactive:
			s.Inactive++
		case record.UserSuspended:
			s.Suspended++
		}
		if u.Role == record.RoleAdmin {
			s.Admins++
		}
	}
	return s
}

// Posts summarizes a post collection.  Non-post records are skipped.
func Posts(items []record.Record) PostSummary {
	var s PostSummary
	for _, it := range items {
		p, ok := it.(record.Post)
		if !ok {
			continue
		}
		s.Total++
		switch p.Status {
		case record.PostPublished:
			s.Published++
		case record.PostDraft:
			s.Draft++
		case record.PostArchived:
			s.Archived++
		}
		s.TotalViews += p.Views
	}
	return s
}

// For returns the kind-appropriate summary as a JSON-serializable value.
func For(kind record.Kind, items []record.Record) any {
	if kind == record.KindUser {
		return Users(items)
	}
	return Posts(items)
}
