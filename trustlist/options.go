// Package trustlist holds a trusted list document through its build and
// check lifecycle and answers certificate lookups against it.
package trustlist

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/georgepadayatti/gotsl/tsl"
	"github.com/georgepadayatti/gotsl/tsl/ts119612"
	"github.com/georgepadayatti/gotsl/xmlsig"
)

type options struct {
	logger     *zap.Logger
	clock      clockwork.Clock
	verifier   xmlsig.Verifier
	dispatcher *tsl.Dispatcher
	namer      tsl.OIDNamer
}

// Option configures a Document.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the clock used for freshness checks and StatusNow.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithVerifier sets the signature verifier handed to the default checker.
func WithVerifier(v xmlsig.Verifier) Option {
	return func(o *options) { o.verifier = v }
}

// WithDispatcher replaces the default dispatcher. The caller is then
// responsible for registering builders and checkers.
func WithDispatcher(d *tsl.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
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
	if o.dispatcher == nil {
		o.dispatcher = tsl.NewDispatcher()
		ts119612.Register(o.dispatcher,
			ts119612.WithLogger(o.logger),
			ts119612.WithClock(o.clock),
			ts119612.WithVerifier(o.verifier),
			ts119612.WithOIDNamer(o.namer))
	}
	o.logger = o.logger.With(zap.String("package", "trustlist"))
	return o
}
