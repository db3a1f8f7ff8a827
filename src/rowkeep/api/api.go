// Package api exposes the registered tables over HTTP.
package api

import (
	"github.com/bitswalk/rowkeep/src/common/logs"
	"github.com/bitswalk/rowkeep/src/common/version"
	"github.com/bitswalk/rowkeep/src/rowkeep/auth"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

var (
	log         = logs.Discard()
	versionInfo = version.New()
)

// SetLogger sets the logger for the api package
func SetLogger(l *logs.Logger) {
	log = l
}

// SetVersionInfo sets the version reported by the version endpoint
func SetVersionInfo(v *version.Info) {
	if v != nil {
		versionInfo = v
	}
}

// API holds the handler dependencies
type API struct {
	registry    *schema.Registry
	exec        repository.Executor
	dialect     repository.Dialect
	tokens      *auth.TokenService
	limits      RateLimitConfig
	rateLimiter *RateLimiter
}

// Config contains API configuration options
type Config struct {
	// Registry lists the tables served
	Registry *schema.Registry
	// Executor runs the generated statements
	Executor repository.Executor
	// Dialect of Executor, SQLite when zero
	Dialect repository.Dialect
	// Tokens guards the write routes. Nil or disabled leaves them open.
	Tokens *auth.TokenService
	// RateLimit configures per-client request limits
	RateLimit RateLimitConfig
}

// New creates a new API instance
func New(cfg Config) *API {
	dialect := cfg.Dialect
	if dialect.Name == "" {
		dialect = repository.SQLite
	}

	a := &API{
		registry: cfg.Registry,
		exec:     cfg.Executor,
		dialect:  dialect,
		tokens:   cfg.Tokens,
		limits:   cfg.RateLimit,
	}
	if cfg.RateLimit.Enabled {
		a.rateLimiter = NewRateLimiter(cfg.RateLimit)
	}
	return a
}

// AuthEnabled reports whether write routes require a token
func (a *API) AuthEnabled() bool {
	return a.tokens.Enabled()
}

// Close stops background work started by New
func (a *API) Close() {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
}

// rows builds a dynamic-row repository for a registered schema
func (a *API) rows(s schema.Schema) (*repository.Repository[repository.Row], error) {
	return repository.NewRows(a.exec, s, repository.WithDialect(a.dialect), repository.WithLogger(log))
}
