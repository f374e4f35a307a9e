// components/console/console_test.go
//
// Handler tests for the console component against an in-memory service.
//
// Run: go test ./components/console -v

package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/backoffice/internal/component"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/session"
	"github.com/yanizio/backoffice/internal/workflow"
)

//
// In-memory service
//

type memService struct {
	mu       sync.Mutex
	users    map[int]record.User
	posts    map[int]record.Post
	nextID   int
	deletes  int
	failList error // returned by GetAll while set
}

func newMemService() *memService {
	return &memService{
		users: map[int]record.User{
			1: {ID: 1, Username: "alice", Email: "alice@example.com", Role: record.RoleAdmin, Status: record.UserActive, CreatedAt: "2024-01-01"},
			2: {ID: 2, Username: "bob", Email: "bob@example.com", Role: record.RoleUser, Status: record.UserInactive, CreatedAt: "2024-02-01"},
		},
		posts: map[int]record.Post{
			10: {ID: 10, Title: "Go concurrency", Author: "alice", Category: record.CategoryDevelopment, Status: record.PostDraft, Views: 4, CreatedAt: "2024-03-01"},
			11: {ID: 11, Title: "CSS grids", Author: "bob", Category: record.CategoryDesign, Status: record.PostPublished, Views: 90, CreatedAt: "2024-03-02"},
		},
		nextID: 100,
	}
}

func (m *memService) GetAll(_ context.Context, kind record.Kind) ([]record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var out []record.Record
	if kind == record.KindUser {
		for i := 0; i < 1000; i++ {
			if u, ok := m.users[i]; ok {
				out = append(out, u)
			}
		}
		return out, nil
	}
	for i := 0; i < 1000; i++ {
		if p, ok := m.posts[i]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memService) Create(_ context.Context, kind record.Kind, fields map[string]string) (record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	if kind == record.KindUser {
		u := record.User{ID: id, Username: fields["username"], Email: fields["email"],
			Role: record.Role(fields["role"]), Status: record.UserStatus(fields["status"]), CreatedAt: "2024-06-01"}
		m.users[id] = u
		return u, nil
	}
	p := record.Post{ID: id, Title: fields["title"], Content: fields["content"], Author: fields["author"],
		Category: record.Category(fields["category"]), Status: record.PostStatus(fields["status"]), CreatedAt: "2024-06-01"}
	m.posts[id] = p
	return p, nil
}

func (m *memService) Update(_ context.Context, kind record.Kind, id int, fields map[string]string) (record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == record.KindUser {
		u := m.users[id]
		if v, ok := fields["username"]; ok {
			u.Username = v
		}
		if v, ok := fields["email"]; ok {
			u.Email = v
		}
		if v, ok := fields["role"]; ok {
			u.Role = record.Role(v)
		}
		if v, ok := fields["status"]; ok {
			u.Status = record.UserStatus(v)
		}
		m.users[id] = u
		return u, nil
	}
	p := m.posts[id]
	if v, ok := fields["title"]; ok {
		p.Title = v
	}
	if v, ok := fields["status"]; ok {
		p.Status = record.PostStatus(v)
	}
	m.posts[id] = p
	return p, nil
}

func (m *memService) Delete(_ context.Context, kind record.Kind, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if kind == record.KindUser {
		delete(m.users, id)
	} else {
		delete(m.posts, id)
	}
	return nil
}

func (m *memService) Transition(_ context.Context, id int, action workflow.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.posts[id]
	next, err := workflow.Next(p.Status, action)
	if err != nil {
		return err
	}
	p.Status = next
	m.posts[id] = p
	return nil
}

//
// Test harness
//

type client struct {
	t      *testing.T
	srv    *httptest.Server
	cookie *http.Cookie
}

func newClient(t *testing.T) (*client, *memService) {
	t.Helper()
	svc := newMemService()
	cache := session.NewCache(svc, Confirmer, 10, time.Hour, 0, zap.NewNop().Sugar())
	t.Cleanup(cache.Stop)

	comp := &Comp{}
	if err := comp.Init(component.Deps{Sessions: cache, Log: zap.NewNop().Sugar()}); err != nil {
		t.Fatalf("init: %v", err)
	}
	srv := httptest.NewServer(comp.Routes())
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv}, svc
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rdr)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func rowIDs(payload map[string]any) []int {
	var ids []int
	rows, _ := payload["rows"].([]any)
	for _, r := range rows {
		rec := r.(map[string]any)["record"].(map[string]any)
		ids = append(ids, int(rec["id"].(float64)))
	}
	return ids
}

//
// Tests
//

func TestListLoadsOnFirstView(t *testing.T) {
	c, _ := newClient(t)

	status, payload := c.do(http.MethodGet, "/api/users", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := rowIDs(payload); len(got) != 2 || got[0] != 1 {
		t.Fatalf("rows = %v", got)
	}
	if payload["error"] != nil {
		t.Fatalf("unexpected banner: %v", payload["error"])
	}
	st := payload["stats"].(map[string]any)
	if st["total"].(float64) != 2 || st["admins"].(float64) != 1 {
		t.Fatalf("stats = %v", st)
	}
}

func TestListAcceptsPluralAndSingularKind(t *testing.T) {
	c, _ := newClient(t)

	if status, _ := c.do(http.MethodGet, "/api/user", nil); status != http.StatusOK {
		t.Fatalf("singular kind status = %d", status)
	}
	if status, _ := c.do(http.MethodGet, "/api/widgets", nil); status != http.StatusNotFound {
		t.Fatalf("unknown kind must 404")
	}
}

func TestSearchPersistsAcrossRequests(t *testing.T) {
	c, _ := newClient(t)

	_, payload := c.do(http.MethodGet, "/api/users?q=alice", nil)
	if got := rowIDs(payload); len(got) != 1 || got[0] != 1 {
		t.Fatalf("filtered rows = %v", got)
	}

	// The term is session state: a follow-up request without q keeps it.
	_, payload = c.do(http.MethodGet, "/api/users", nil)
	if got := rowIDs(payload); len(got) != 1 {
		t.Fatalf("search term must persist, rows = %v", got)
	}

	// An explicit empty q clears it.
	_, payload = c.do(http.MethodGet, "/api/users?q=", nil)
	if got := rowIDs(payload); len(got) != 2 {
		t.Fatalf("cleared search, rows = %v", got)
	}
}

func TestSortByColumn(t *testing.T) {
	c, _ := newClient(t)

	_, payload := c.do(http.MethodGet, "/api/posts?sort=views&dir=desc", nil)
	if got := rowIDs(payload); len(got) != 2 || got[0] != 11 {
		t.Fatalf("sorted rows = %v", got)
	}
}

func TestCreateFillsDefaultsAndReloads(t *testing.T) {
	c, svc := newClient(t)

	status, payload := c.do(http.MethodPost, "/api/users",
		map[string]string{"username": "carol", "email": "carol@example.com"})
	if status != http.StatusCreated {
		t.Fatalf("status = %d, body = %v", status, payload)
	}
	if got := rowIDs(payload); len(got) != 3 {
		t.Fatalf("reloaded rows = %v", got)
	}

	svc.mu.Lock()
	created := svc.users[100]
	svc.mu.Unlock()
	if created.Role != record.RoleUser || created.Status != record.UserActive {
		t.Fatalf("defaults not applied: %+v", created)
	}
}

func TestCreateRejectsInvalidForm(t *testing.T) {
	c, _ := newClient(t)

	status, payload := c.do(http.MethodPost, "/api/users",
		map[string]string{"username": "dave", "email": "not-an-email"})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %v", status, payload)
	}
	if payload["fieldErrors"] == nil {
		t.Fatalf("want fieldErrors, got %v", payload)
	}
}

func TestUpdateKeepsUntouchedFields(t *testing.T) {
	c, svc := newClient(t)

	c.do(http.MethodGet, "/api/users", nil) // prime the collection

	status, _ := c.do(http.MethodPut, "/api/users/2", map[string]string{"status": "active"})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	svc.mu.Lock()
	bob := svc.users[2]
	svc.mu.Unlock()
	if bob.Status != record.UserActive {
		t.Fatalf("status not updated: %+v", bob)
	}
	if bob.Username != "bob" || bob.Email != "bob@example.com" {
		t.Fatalf("untouched fields lost: %+v", bob)
	}
}

func TestUpdateUnknownIDIs404(t *testing.T) {
	c, _ := newClient(t)
	c.do(http.MethodGet, "/api/users", nil)

	status, _ := c.do(http.MethodPut, "/api/users/99", map[string]string{"status": "active"})
	if status != http.StatusNotFound {
		t.Fatalf("status = %d", status)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	c, svc := newClient(t)
	c.do(http.MethodGet, "/api/users", nil)

	status, payload := c.do(http.MethodDelete, "/api/users/2", nil)
	if status != http.StatusOK || payload["deleted"] != false {
		t.Fatalf("unconfirmed delete: status = %d, body = %v", status, payload)
	}
	if svc.deletes != 0 {
		t.Fatalf("declined delete must not reach the service")
	}

	status, payload = c.do(http.MethodDelete, "/api/users/2?confirm=true", nil)
	if status != http.StatusOK {
		t.Fatalf("confirmed delete: status = %d", status)
	}
	if got := rowIDs(payload); len(got) != 1 {
		t.Fatalf("rows after delete = %v", got)
	}
}

func TestTransitionPublishesDraft(t *testing.T) {
	c, svc := newClient(t)
	c.do(http.MethodGet, "/api/posts", nil)

	status, _ := c.do(http.MethodPost, "/api/posts/10/publish", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	svc.mu.Lock()
	got := svc.posts[10].Status
	svc.mu.Unlock()
	if got != record.PostPublished {
		t.Fatalf("status = %s", got)
	}
}

func TestTransitionConflictFromStaleState(t *testing.T) {
	c, _ := newClient(t)
	c.do(http.MethodGet, "/api/posts", nil)

	// Post 11 is already published; publishing again is illegal.
	status, payload := c.do(http.MethodPost, "/api/posts/11/publish", nil)
	if status != http.StatusConflict {
		t.Fatalf("status = %d, body = %v", status, payload)
	}
}

func TestPaginationParams(t *testing.T) {
	c, svc := newClient(t)

	// Grow the collection past one page.
	svc.mu.Lock()
	for i := 0; i < 15; i++ {
		id := 200 + i
		svc.users[id] = record.User{ID: id, Username: fmt.Sprintf("user%02d", i),
			Email: "u" + strconv.Itoa(i) + "@example.com", Role: record.RoleUser,
			Status: record.UserActive, CreatedAt: "2024-05-01"}
	}
	svc.mu.Unlock()

	_, payload := c.do(http.MethodGet, "/api/users?page=2", nil)
	if payload["page"].(float64) != 2 {
		t.Fatalf("page = %v", payload["page"])
	}
	if payload["pageCount"].(float64) != 2 {
		t.Fatalf("pageCount = %v", payload["pageCount"])
	}
	if got := rowIDs(payload); len(got) != 7 {
		t.Fatalf("second page rows = %v", got)
	}
}

func TestListRetriesAfterFailedLoad(t *testing.T) {
	c, svc := newClient(t)

	svc.mu.Lock()
	svc.failList = errors.New("upstream unreachable")
	svc.mu.Unlock()

	status, payload := c.do(http.MethodGet, "/api/users", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if payload["error"] == nil || len(rowIDs(payload)) != 0 {
		t.Fatalf("failed load must banner with no rows: %v", payload)
	}

	svc.mu.Lock()
	svc.failList = nil
	svc.mu.Unlock()

	// The next view retries instead of pinning the stale banner to the
	// session for its whole lifetime.
	_, payload = c.do(http.MethodGet, "/api/users", nil)
	if payload["error"] != nil {
		t.Fatalf("banner must clear after the service recovers: %v", payload["error"])
	}
	if got := rowIDs(payload); len(got) != 2 {
		t.Fatalf("rows after recovery = %v", got)
	}
}

func TestListReflectsOutOfBandWrites(t *testing.T) {
	c, svc := newClient(t)
	c.do(http.MethodGet, "/api/users", nil)

	// Another operator (or the upstream itself) adds a row between views.
	svc.mu.Lock()
	svc.users[3] = record.User{ID: 3, Username: "carol", Email: "carol@example.com",
		Role: record.RoleUser, Status: record.UserActive, CreatedAt: "2024-06-01"}
	svc.mu.Unlock()

	_, payload := c.do(http.MethodGet, "/api/users", nil)
	if got := rowIDs(payload); len(got) != 3 {
		t.Fatalf("later view must refresh the collection, rows = %v", got)
	}
}

func TestConcurrentRequestsOnOneSession(t *testing.T) {
	c, svc := newClient(t)
	c.do(http.MethodGet, "/api/users", nil) // mint the session cookie

	// Two browser tabs on one session: parallel creates and views share a
	// single workspace, so its lock has to carry them.  Run with -race.
	const writers = 8
	statuses := make([]int, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(map[string]string{
				"username": fmt.Sprintf("op%02d", i),
				"email":    fmt.Sprintf("op%02d@example.com", i),
			})
			req, err := http.NewRequest(http.MethodPost, c.srv.URL+"/api/users", bytes.NewReader(body))
			if err != nil {
				return
			}
			req.AddCookie(c.cookie)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodGet, c.srv.URL+"/api/users?q=op", nil)
			req.AddCookie(c.cookie)
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	for i, s := range statuses {
		if s != http.StatusCreated {
			t.Fatalf("create %d status = %d", i, s)
		}
	}
	svc.mu.Lock()
	got := len(svc.users)
	svc.mu.Unlock()
	if got != 2+writers {
		t.Fatalf("users after concurrent creates = %d, want %d", got, 2+writers)
	}
}
