// internal/config/model.go
//
// Typed configuration model for the console.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                              – dotenv values,
//   • `conf/backoffice.yaml`                       – primary static file,
//   • `BACKOFFICE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client before unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`; Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Adapter section
//

// Adapter selects the backing service for the entity managers.  Mode
// "rest" talks to the upstream JSON API; mode "sql" reads and writes the
// local MySQL tables directly.
type Adapter struct {
	Mode string `koanf:"mode" validate:"required,oneof=rest sql"`
	DSN  string `koanf:"dsn"  validate:"required_if=Mode sql"`
}

//
// Upstream section
//

// Upstream configures the REST client used in adapter mode "rest".  The
// token is usually a `vault:` reference in YAML.
type Upstream struct {
	BaseURL string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout"`
	Token   string        `koanf:"token"`
}

//
// Console tunables
//

// Table holds table-engine defaults.
type Table struct {
	PageSize int `koanf:"page_size" validate:"omitempty,min=1"`
}

// Session holds session-cache tunables.  Zero values fall back to the
// package defaults in internal/session.
type Session struct {
	IdleTTL    time.Duration `koanf:"idle_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

//
// Observability
//

// Log holds logger tunables.
type Log struct {
	Level string `koanf:"level"`
}

// Geo points at an optional MaxMind database used to annotate mutation
// audit logs.  An empty path disables the lookup.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or BACKOFFICE_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string // BACKOFFICE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Adapter  Adapter  `koanf:"adapter"`
	Upstream Upstream `koanf:"upstream"`
	Table    Table    `koanf:"table"`
	Session  Session  `koanf:"session"`
	Log      Log      `koanf:"log"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
