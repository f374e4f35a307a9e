// internal/table/view.go
//
// Backoffice – client-side table engine.
//
// Context
// -------
// The table engine derives the visible page of a collection snapshot.  It
// owns only its own view state (search term, sort column and direction,
// current page, page size); the collection itself belongs to the entity
// manager and is passed in read-only at derivation time.  The pipeline is
// always filter → sort → clamp → slice, recomputed on every render.
//
// Semantics
//   - Search: a record matches iff ANY stringified field value contains
//     the case-folded term as a substring.  Empty term matches everything.
//   - Sort: numeric when both values are numeric, otherwise stringified
//     (nil → "") and ordered by locale-aware collation.  Stable for equal
//     keys, because the incoming order carries server-assigned meaning.
//   - Pagination: the current page is clamped into the valid range after
//     every filter or sort change, never left dangling.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package table

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/yanizio/backoffice/internal/record"
)

// Direction orders a sorted column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultPageSize is used when a caller passes a non-positive size to New.
const DefaultPageSize = 10

// collator is shared; collation keys are locale-aware and case-insensitive
// at the secondary strength level.
var collator = collate.New(language.English, collate.Loose)

// View holds the derivation inputs for one table.  Zero value is not
// usable; construct with New.
type View struct {
	SearchTerm    string
	SortColumn    string // empty = server order
	SortDirection Direction
	CurrentPage   int
	PageSize      int
}

// New returns a view on page 1 with the given page size.  PageSize is a
// configuration-time invariant, so a non-positive value falls back to the
// default rather than panicking at request time.
func New(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{CurrentPage: 1, PageSize: pageSize, SortDirection: Asc}
}

// SetSearch replaces the filter term and rewinds to page 1.
func (v *View) SetSearch(term string) {
	v.SearchTerm = term
	v.CurrentPage = 1
}

// ToggleSort selects column ascending, or flips direction when the column
// is already active.
func (v *View) ToggleSort(column string) {
	if v.SortColumn == column {
		if v.SortDirection == Asc {
			v.SortDirection = Desc
		} else {
			v.SortDirection = Asc
		}
		return
	}
	v.SortColumn = column
	v.SortDirection = Asc
}

// SetSort installs an explicit column and direction, for callers driven by
// query parameters rather than click toggling.
func (v *View) SetSort(column string, dir Direction) {
	v.SortColumn = column
	if dir != Desc {
		dir = Asc
	}
	v.SortDirection = dir
}

// SetPage stores n clamped into the valid range for total filtered rows.
func (v *View) SetPage(n, filtered int) {
	v.CurrentPage = clampPage(n, filtered, v.PageSize)
}

// Result is one derived page plus the paging facts the console renders.
type Result struct {
	Rows      []record.Record
	Page      int // clamped current page, ≥ 1
	PageCount int // ≥ 1 even for an empty collection
	Total     int // collection size before filtering
	Filtered  int // rows matching the search term
}

// Apply runs the full derivation over a collection snapshot.  The view's
// CurrentPage is clamped as a side effect so it never dangles after the
// filtered set shrinks.
func (v *View) Apply(items []record.Record) Result {
	filtered := v.filter(items)
	v.sortRows(filtered)

	v.CurrentPage = clampPage(v.CurrentPage, len(filtered), v.PageSize)
	pageCount := pageCount(len(filtered), v.PageSize)

	lo := (v.CurrentPage - 1) * v.PageSize
	hi := lo + v.PageSize
	if lo > len(filtered) {
		lo = len(filtered)
	}
	if hi > len(filtered) {
		hi = len(filtered)
	}

	return Result{
		Rows:      filtered[lo:hi],
		Page:      v.CurrentPage,
		PageCount: pageCount,
		Total:     len(items),
		Filtered:  len(filtered),
	}
}

//
// Filtering
//

// filter returns the records matching the current search term, preserving
// input order.  The term is matched verbatim after case folding, so a
// whitespace-only term matches only values containing that whitespace.
// The result is always a fresh slice so sorting never reorders the
// caller's snapshot in place.
func (v *View) filter(items []record.Record) []record.Record {
	out := make([]record.Record, 0, len(items))
	term := strings.ToLower(v.SearchTerm)
	for _, r := range items {
		if term == "" || matches(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r record.Record, term string) bool {
	for _, val := range r.Fields() {
		if strings.Contains(strings.ToLower(val), term) {
			return true
		}
	}
	return false
}

//
// Sorting
//

// sortRows stably orders rows by the active column.  No column selected
// means server order, untouched.
func (v *View) sortRows(rows []record.Record) {
	col := v.SortColumn
	if col == "" {
		return
	}
	desc := v.SortDirection == Desc
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(rows[i].FieldValues()[col], rows[j].FieldValues()[col])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareValues orders two field values: numerically when both are
// numeric, otherwise by locale-aware string collation with nil → "".
func compareValues(a, b any) int {
	af, aNum := asNumber(a)
	bf, bNum := asNumber(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return collator.CompareString(asString(a), asString(b))
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

//
// Paging helpers
//

func pageCount(filtered, pageSize int) int {
	if filtered <= 0 {
		return 1
	}
	return (filtered + pageSize - 1) / pageSize
}

func clampPage(n, filtered, pageSize int) int {
	if n < 1 {
		return 1
	}
	if max := pageCount(filtered, pageSize); n > max {
		return max
	}
	return n
}
