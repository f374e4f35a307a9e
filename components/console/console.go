// components/console/console.go
//
// Console Component – the admin surface over users and posts.
//
// Context
// -------
// The console mounts one HTML shell page and a JSON API.  All list
// shaping (search, sort, pagination) and all mutations run server-side
// against the operator's session state, so the page only renders what
// the API returns:
//
//	GET    /console                      – HTML shell
//	GET    /api/{kind}                   – derived table page + stats
//	POST   /api/{kind}                   – create via the form binder
//	PUT    /api/{kind}/{id}              – update via the form binder
//	DELETE /api/{kind}/{id}?confirm=true – confirmed delete
//	POST   /api/posts/{id}/{action}      – workflow transition
//
// Notes
// -----
//   - {kind} accepts singular and plural spellings ("user", "users").
//   - Oxford commas, two spaces after periods.
package console

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/backoffice/internal/component"
	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/session"
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

const sessionCookie = "backoffice_session"

// Comp implements component.Component.  Sessions and the logger are
// injected through Init before the server starts.
type Comp struct {
	sessions *session.Cache
	log      *zap.SugaredLogger
}

func (c *Comp) Name() string { return "console" }

func (c *Comp) Init(deps component.Deps) error {
	c.sessions = deps.Sessions
	c.log = deps.Log
	if c.log == nil {
		c.log = zap.S()
	}
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/console", c.getConsole)
	r.Get("/static/console.js", c.getConsoleJS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/{kind}", c.getList)
		api.Post("/{kind}", c.postCreate)
		api.Put("/{kind}/{id}", c.putUpdate)
		api.Delete("/{kind}/{id}", c.deleteRecord)
		api.Post("/posts/{id}/{action}", c.postTransition)
	})

	return r
}

//
// Confirmation plumbing
//

type confirmKey struct{}

// Confirmer reads the confirmation flag the delete handler stores in the
// request context.  Wire it into the session cache so Manager.Delete
// treats an unconfirmed request as declined.
var Confirmer = entity.ConfirmFunc(func(ctx context.Context, _ record.Kind, _ int) bool {
	ok, _ := ctx.Value(confirmKey{}).(bool)
	return ok
})

func withConfirmation(ctx context.Context, ok bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, ok)
}

//
// Session plumbing
//

// workspace resolves the operator's session from the cookie, minting a
// new id when absent, and returns the per-kind workspace.
func (c *Comp) workspace(w http.ResponseWriter, r *http.Request, kind record.Kind) (*session.Workspace, error) {
	id := ""
	if ck, err := r.Cookie(sessionCookie); err == nil && ck.Value != "" {
		id = ck.Value
	}
	if id == "" {
		id = newSessionID()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	sess, err := c.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Workspace(kind), nil
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("console: session id entropy unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// Register component at package init.
func init() {
	component.Register(&Comp{})
}
