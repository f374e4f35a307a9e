// internal/server/timeouts.go
//
// Construction of the console's *http.Server.
//
// Context
// -------
// The console serves short JSON exchanges: list snapshots, single-record
// mutations, workflow transitions.  Nothing streams and nothing should
// hold a connection open, so the server carries tight read and write
// deadlines and a keep-alive idle cap.  Building the server here keeps
// cmd/web down to wiring.
//
// Notes
// -----
//   - WriteTimeout bounds the slowest expected path, a full collection
//     reload against the upstream service plus render.
//   - Oxford commas, two spaces after periods.

package server

import (
	"net/http"
	"time"
)

// New wraps handler in an *http.Server with the console's deadlines.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
