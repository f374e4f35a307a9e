// cmd/web/main.go
//
// Backoffice Console – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (.env fallback for dev shells).
//
//  2. Start the Vault client when VAULT_ADDR is set and install its
//     resolver so `vault:` config values decrypt during Load.
//
//  3. Load and validate config (YAML + BACKOFFICE_ env overlay).
//
//  4. Start the daily rotating logger (tees to console in a TTY).
//
//  5. Open the optional GeoLite2 database for mutation audit lines.
//
//  6. Pick the entity adapter: REST client or direct SQL store.
//
//  7. Build the session cache, init every registered component, and
//     mount their routes plus Prometheus /metrics on one chi router.
//
//  8. Wrap with request-info, security-header, and (optionally)
//     ForceHTTPS middleware, then serve with hardened timeouts.
//
// Large comment blocks are framed by blank “//” lines; inline comments
// use a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/backoffice/internal/component"
	"github.com/yanizio/backoffice/internal/config"
	"github.com/yanizio/backoffice/internal/database"
	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/logger"
	"github.com/yanizio/backoffice/internal/middleware"
	"github.com/yanizio/backoffice/internal/remote"
	"github.com/yanizio/backoffice/internal/requestinfo"
	"github.com/yanizio/backoffice/internal/server"
	"github.com/yanizio/backoffice/internal/session"
	"github.com/yanizio/backoffice/internal/store"
	"github.com/yanizio/backoffice/internal/vault"

	"github.com/yanizio/backoffice/components/console"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	//
	// ── 1.  Vault (optional) ────────────────────────────────────────────
	//
	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := vault.New(ctx, nil)
		if err != nil {
			log.Fatalf("vault client: %v", err)
		}
		config.SetSecretResolver(cli.Resolver(ctx, 0))
	}

	//
	// ── 2.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	//
	// ── 3.  Logger ──────────────────────────────────────────────────────
	//
	zlog, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	//
	// ── 4.  Geo database (optional) ─────────────────────────────────────
	//
	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			zlog.Warnw("geo database unavailable, audit lines degrade", "path", cfg.Geo.DBPath, "err", err)
		}
	}

	//
	// ── 5.  Entity adapter ──────────────────────────────────────────────
	//
	var svc entity.Service
	switch cfg.Adapter.Mode {
	case "sql":
		db, err := database.Open(cfg.Adapter.DSN)
		if err != nil {
			zlog.Fatalw("connect database", "err", err)
		}
		defer db.Close()
		svc = store.New(db)
		zlog.Infow("adapter online", "mode", "sql")
	default:
		cli, err := remote.New(cfg.Upstream.BaseURL,
			remote.WithTimeout(cfg.Upstream.Timeout),
			remote.WithToken(cfg.Upstream.Token))
		if err != nil {
			zlog.Fatalw("build upstream client", "err", err)
		}
		svc = cli
		zlog.Infow("adapter online", "mode", "rest", "base_url", cfg.Upstream.BaseURL)
	}

	//
	// ── 6.  Session cache + components ──────────────────────────────────
	//
	idleTTL := cfg.Session.IdleTTL
	if idleTTL <= 0 {
		idleTTL = session.IdleTTL
	}
	maxEntries := cfg.Session.MaxEntries
	if maxEntries <= 0 {
		maxEntries = session.MaxEntries
	}
	sessions := session.NewCache(svc, console.Confirmer, cfg.Table.PageSize, idleTTL, maxEntries, zlog)
	defer sessions.Stop()

	deps := component.Deps{Sessions: sessions, Log: zlog}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)

	r.Handle("/metrics", promhttp.Handler())
	for _, comp := range component.All() {
		if ini, ok := comp.(component.Initializer); ok {
			if err := ini.Init(deps); err != nil {
				zlog.Fatalw("component init failed", "component", comp.Name(), "err", err)
			}
		}
		r.Mount("/", comp.Routes())
		zlog.Infow("component mounted", "component", comp.Name())
	}

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	//
	// ── 7.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler)
	zlog.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatalw("server stopped", "err", err)
	}
}
