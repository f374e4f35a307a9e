// components/console/handlers.go
//
// JSON API handlers for the console component.
//
// Context
// -------
// Every list response carries the full render state for one kind: the
// derived page, paging facts, stat cards, badges, and the passive error
// banner.  Mutation handlers run the form binder, dispatch through the
// entity manager (which reloads the collection on success), and then
// answer with the same list payload so the client repaints from
// server-confirmed state.
//
// Notes
// -----
//   - Mutation audit lines include the operator's request info when the
//     enrich middleware has run.
//   - Oxford commas, two spaces after periods.
package console

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/form"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/requestinfo"
	"github.com/yanizio/backoffice/internal/session"
	"github.com/yanizio/backoffice/internal/stats"
	"github.com/yanizio/backoffice/internal/table"
	"github.com/yanizio/backoffice/internal/workflow"
)

//
// Payload shapes
//

type rowPayload struct {
	Record record.Record           `json:"record"`
	Badges map[string]record.Badge `json:"badges"`
}

type viewPayload struct {
	Search string `json:"search"`
	Sort   string `json:"sort"`
	Dir    string `json:"dir"`
}

type listPayload struct {
	Kind      record.Kind     `json:"kind"`
	Columns   []string        `json:"columns"`
	Rows      []rowPayload    `json:"rows"`
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
	Total     int             `json:"total"`
	Filtered  int             `json:"filtered"`
	Stats     any             `json:"stats"`
	View      viewPayload     `json:"view"`
	Fields    []form.FieldDef `json:"fields"`
	Loading   bool            `json:"loading"`
	Error     string          `json:"error,omitempty"`
}

//
// List
//

func (c *Comp) getList(w http.ResponseWriter, r *http.Request) {
	kind, ws, ok := c.resolve(w, r)
	if !ok {
		return
	}
	ws.Lock()
	defer ws.Unlock()

	q := r.URL.Query()
	if q.Has("q") {
		ws.View.SetSearch(q.Get("q"))
	}
	if col := q.Get("sort"); col != "" {
		ws.View.SetSort(col, table.Direction(q.Get("dir")))
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		ws.View.CurrentPage = p // Apply clamps against the filtered set
	}

	// Refresh on every list request so a failed load retries and other
	// operators' writes become visible.  Singleflight inside the manager
	// collapses concurrent fetches, and a failed refresh still renders:
	// the banner carries the message, the last good rows stay on screen.
	_ = ws.Manager.Load(r.Context())

	c.writeList(w, http.StatusOK, kind, ws)
}

//
// Mutations
//

func (c *Comp) postCreate(w http.ResponseWriter, r *http.Request) {
	kind, ws, ok := c.resolve(w, r)
	if !ok {
		return
	}
	ws.Lock()
	defer ws.Unlock()

	fields, ok := c.bind(w, r, ws, nil)
	if !ok {
		return
	}

	if err := ws.Manager.Create(r.Context(), fields); err != nil {
		c.writeError(w, err)
		return
	}
	c.audit(r, "create", kind, 0)
	ws.Form.Reset()
	c.writeList(w, http.StatusCreated, kind, ws)
}

func (c *Comp) putUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ws, ok := c.resolve(w, r)
	if !ok {
		return
	}
	ws.Lock()
	defer ws.Unlock()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, found := ws.Manager.Find(id)
	if !found {
		c.writeError(w, &entity.NotFoundError{Kind: kind, ID: id})
		return
	}
	fields, ok := c.bind(w, r, ws, current)
	if !ok {
		return
	}

	if err := ws.Manager.Update(r.Context(), id, fields); err != nil {
		c.writeError(w, err)
		return
	}
	c.audit(r, "update", kind, id)
	ws.Form.Reset()
	c.writeList(w, http.StatusOK, kind, ws)
}

func (c *Comp) deleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, ws, ok := c.resolve(w, r)
	if !ok {
		return
	}
	ws.Lock()
	defer ws.Unlock()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	confirm := r.URL.Query().Get("confirm") == "true"
	ctx := withConfirmation(r.Context(), confirm)

	deleted, err := ws.Manager.Delete(ctx, id)
	if err != nil {
		c.writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusOK, map[string]any{"deleted": false})
		return
	}
	c.audit(r, "delete", kind, id)
	c.writeList(w, http.StatusOK, kind, ws)
}

func (c *Comp) postTransition(w http.ResponseWriter, r *http.Request) {
	ws, err := c.workspace(w, r, record.KindPost)
	if err != nil {
		c.writeError(w, err)
		return
	}
	ws.Lock()
	defer ws.Unlock()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	action, err := workflow.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	if err := ws.Manager.Transition(r.Context(), id, action); err != nil {
		c.writeError(w, err)
		return
	}
	c.audit(r, string(action), record.KindPost, id)
	c.writeList(w, http.StatusOK, record.KindPost, ws)
}

//
// Shared plumbing
//

// resolve parses {kind} and fetches the session workspace.
func (c *Comp) resolve(w http.ResponseWriter, r *http.Request) (record.Kind, *session.Workspace, bool) {
	kind, err := record.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
		return "", nil, false
	}
	ws, err := c.workspace(w, r, kind)
	if err != nil {
		c.writeError(w, err)
		return "", nil, false
	}
	return kind, ws, true
}

// bind runs the request body through the form binder.  When base is
// non-nil the binder is first populated from it, so a partial update
// keeps untouched fields.  Returns the serialized field set, or false
// after writing the error response.
func (c *Comp) bind(w http.ResponseWriter, r *http.Request, ws *session.Workspace, base record.Record) (map[string]string, bool) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed JSON body"})
		return nil, false
	}

	ws.Form.Reset()
	if base != nil {
		if err := ws.Form.Populate(base); err != nil {
			c.writeError(w, err)
			return nil, false
		}
	}
	for k, v := range body {
		if err := ws.Form.Set(k, v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return nil, false
		}
	}

	if findings := ws.Form.Validate(); len(findings) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"fieldErrors": findings})
		return nil, false
	}
	return ws.Form.Serialize(), true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// writeList renders the full table state for one kind.
func (c *Comp) writeList(w http.ResponseWriter, status int, kind record.Kind, ws *session.Workspace) {
	snap := ws.Manager.Collection()
	res := ws.View.Apply(snap.Items)

	rows := make([]rowPayload, len(res.Rows))
	for i, rec := range res.Rows {
		rows[i] = rowPayload{Record: rec, Badges: badgesFor(rec)}
	}

	writeJSON(w, status, listPayload{
		Kind:      kind,
		Columns:   record.Columns(kind),
		Rows:      rows,
		Page:      res.Page,
		PageCount: res.PageCount,
		Total:     res.Total,
		Filtered:  res.Filtered,
		Stats:     stats.For(kind, snap.Items),
		View: viewPayload{
			Search: ws.View.SearchTerm,
			Sort:   ws.View.SortColumn,
			Dir:    string(ws.View.SortDirection),
		},
		Fields:  ws.Form.Fields(),
		Loading: snap.Loading,
		Error:   snap.Error,
	})
}

func badgesFor(rec record.Record) map[string]record.Badge {
	switch v := rec.(type) {
	case record.User:
		return map[string]record.Badge{
			"status": record.StatusBadge(record.KindUser, string(v.Status)),
			"role":   record.RoleBadge(string(v.Role)),
		}
	case record.Post:
		return map[string]record.Badge{
			"status":   record.StatusBadge(record.KindPost, string(v.Status)),
			"category": record.CategoryBadge(string(v.Category)),
		}
	}
	return nil
}

// writeError maps the error taxonomy onto HTTP statuses.
func (c *Comp) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var nf *entity.NotFoundError
	var ve *entity.ValidationError
	var re *entity.RemoteError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &ve):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.As(err, &re):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]any{"error": entity.ErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// audit logs one mutation with the operator's request fingerprint.
func (c *Comp) audit(r *http.Request, op string, kind record.Kind, id int) {
	fields := append([]any{"op", op, "kind", kind, "id", id},
		requestinfo.AuditFields(r.Context())...)
	c.log.Infow("console mutation", fields...)
}
