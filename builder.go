package adminauth

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/tatyanamixx/nebulahunt-admin-sub001/credstore"
)

// Builder defines a public type used by adminauth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	backend   Backend
	creds     credstore.Store
	auditSink AuditSink
	log       *zerolog.Logger

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend describes the withbackend operation and its observable behavior.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithCredentialStore describes the withcredentialstore operation and its observable behavior.
func (b *Builder) WithCredentialStore(store credstore.Store) *Builder {
	b.creds = store
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = &log
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the collaborators, and recovers any
// state a previous run persisted. A builder is single-use.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.backend == nil {
		return nil, errors.New("backend required")
	}

	creds := b.creds
	if creds == nil {
		creds = credstore.NewMemory()
	}

	log := zerolog.Nop()
	if b.log != nil {
		log = *b.log
	}

	controller := &Controller{
		config:  cfg,
		backend: b.backend,
		creds:   creds,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		log:     log,
	}
	controller.restore()

	b.built = true

	return controller, nil
}
