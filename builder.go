package mailauth

import "errors"

// Builder assembles an Engine. Builders are single-use: configure,
// Build once, discard.
type Builder struct {
	config Config

	users  UserStore
	mailer MailDispatcher
	tokens TokenGranter
	sink   AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithUserStore wires the durable account store. Required.
func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithMailDispatcher wires the OTP delivery channel. Required.
func (b *Builder) WithMailDispatcher(mailer MailDispatcher) *Builder {
	b.mailer = mailer
	return b
}

// WithTokenGranter wires the optional free-token collaborator invoked
// during registration.
func (b *Builder) WithTokenGranter(tokens TokenGranter) *Builder {
	b.tokens = tokens
	return b
}

// WithAuditSink wires the audit destination. Defaults to a NoOpSink
// when auditing is enabled without a sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and dependencies and returns a
// ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mail dispatcher required")
	}

	engine := &Engine{
		config:  cfg,
		otps:    newOTPStore(cfg.OTP),
		limiter: newRateLimiter(cfg.RateLimit),
		users:   b.users,
		mailer:  b.mailer,
		tokens:  b.tokens,
		audit:   newAuditDispatcher(cfg.Audit, b.sink),
		metrics: NewMetrics(cfg.Metrics),
	}
	engine.keys = newAPIKeyIssuer(cfg.APIKey, b.users)

	b.built = true

	return engine, nil
}
