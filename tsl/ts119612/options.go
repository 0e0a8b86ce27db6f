// Package ts119612 implements the ETSI TS 119 612 v2.1.1 builder, serializer
// and checker for the trusted list model of package tsl.
package ts119612

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/georgepadayatti/gotsl/tsl"
	"github.com/georgepadayatti/gotsl/xmlsig"
)

type options struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	verifier xmlsig.Verifier
	namer    tsl.OIDNamer
}

// Option configures a Builder or a Checker.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the clock used for the next update freshness check.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithVerifier sets the signature verifier used when the signature is
// enforced.
func WithVerifier(v xmlsig.Verifier) Option {
	return func(o *options) { o.verifier = v }
}

// WithOIDNamer sets the namer used for OIDs in diagnostics.
func WithOIDNamer(n tsl.OIDNamer) Option {
	return func(o *options) { o.namer = n }
}

func newOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
		namer:  tsl.DefaultOIDNamer,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	o.logger = o.logger.With(zap.String("package", "ts119612"))
	return o
}

// Register adds the v2.1.1 builder and checker to d.
func Register(d *tsl.Dispatcher, opts ...Option) {
	d.Register(tsl.Specification119612, tsl.Version020101, tsl.Implementation{
		Builder: NewBuilder(opts...),
		Checker: NewChecker(opts...),
	})
}
