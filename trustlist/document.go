package trustlist

import (
	"crypto/x509"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgepadayatti/gotsl/tsl"
)

// Diagnostic records an error that was tolerated in cache mode.
type Diagnostic struct {
	AttemptID string
	Time      time.Time
	Code      tsl.Code
	Err       error
}

// Document is a trusted list of one specification and version. The list
// moves from empty to built to validated. Build and check calls take the
// write lock; lookups take the read lock and may run concurrently.
type Document struct {
	mu            sync.RWMutex
	opts          options
	specification string
	version       string
	list          *tsl.TSLObject
	diagnostics   []Diagnostic
}

// New creates an empty document for specification and version.
func New(specification, version string, opts ...Option) (*Document, error) {
	probe, err := tsl.NewTSLObject(specification, version)
	if err != nil {
		return nil, err
	}
	return &Document{
		opts:          newOptions(opts),
		specification: probe.Specification(),
		version:       probe.Version(),
	}, nil
}

// Specification returns the specification identifier of the document.
func (d *Document) Specification() string { return d.specification }

// Version returns the specification version of the document.
func (d *Document) Version() string { return d.version }

// TSL returns the committed trusted list, or nil before the first build.
func (d *Document) TSL() *tsl.TSLObject {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.list
}

// Diagnostics returns the errors tolerated in cache mode, oldest first.
func (d *Document) Diagnostics() []Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Diagnostic, len(d.diagnostics))
	copy(out, d.diagnostics)
	return out
}

// Build parses r and, on success, replaces the document's list. The new
// list is not checked.
func (d *Document) Build(r io.Reader) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := d.build(r)
	if err != nil {
		return err
	}
	d.list = next
	return nil
}

// CheckValues checks the committed list without changing it.
func (d *Document) CheckValues(enforceSignature bool) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.list == nil {
		return tsl.NewArgumentError(tsl.CodeNilValue, "document has not been built")
	}
	return d.check(d.list, enforceSignature, d.opts.logger)
}

// BuildAndCheck parses r into a fresh list and checks it when it carries
// scheme information. On success the fresh list replaces the committed one.
// On failure the committed list is kept and the error returned, unless
// cacheMode is set and the error is a parsing or malformed error: then the
// fresh list is committed anyway, with every field the failed build did not
// reach taken from the committed list. The error is logged and recorded as a
// Diagnostic, and nil is returned.
func (d *Document) BuildAndCheck(r io.Reader, enforceSignature, cacheMode bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	attempt := uuid.NewString()
	log := d.opts.logger.With(zap.String("attempt", attempt))

	next, err := d.build(r)
	if err == nil && next.SchemeInformation() != nil {
		err = d.check(next, enforceSignature, log)
	}
	if err == nil {
		d.list = next
		log.Info("trusted list loaded",
			zap.String("territory", next.SchemeTerritory()),
			zap.String("tsl_id", next.ID()))
		return nil
	}

	if !cacheMode || errors.Is(err, tsl.ErrArgument) {
		log.Debug("trusted list rejected, previous list kept", zap.Error(err))
		return err
	}

	if next != nil {
		next.KeepUnset(d.list)
		d.list = next
	}
	diag := Diagnostic{AttemptID: attempt, Time: d.opts.clock.Now(), Err: err}
	var te *tsl.Error
	if errors.As(err, &te) {
		diag.Code = te.Code
	}
	d.diagnostics = append(d.diagnostics, diag)
	log.Warn("trusted list accepted in cache mode despite errors",
		zap.String("code", string(diag.Code)),
		zap.Error(err))
	return nil
}

// CheckValuesBuildXML checks the committed list and serializes it. Errors
// always propagate.
func (d *Document) CheckValuesBuildXML() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.list == nil {
		return nil, tsl.NewArgumentError(tsl.CodeNilValue, "document has not been built")
	}
	if err := d.check(d.list, false, d.opts.logger); err != nil {
		return nil, err
	}
	b, ok := d.opts.dispatcher.BuilderFor(d.specification, d.version)
	if !ok {
		return nil, d.noBuilder()
	}
	return b.BuildXML(d.list)
}

// build parses r into a fresh list. The returned list is non-nil whenever a
// builder was found, even when building failed part way.
func (d *Document) build(r io.Reader) (*tsl.TSLObject, error) {
	b, ok := d.opts.dispatcher.BuilderFor(d.specification, d.version)
	if !ok {
		return nil, d.noBuilder()
	}
	next, err := tsl.NewTSLObject(d.specification, d.version)
	if err != nil {
		return nil, err
	}
	if err := b.Build(r, next); err != nil {
		return next, err
	}
	return next, nil
}

func (d *Document) check(t *tsl.TSLObject, enforceSignature bool, log *zap.Logger) error {
	c, ok := d.opts.dispatcher.CheckerFor(d.specification, d.version)
	if !ok {
		log.Warn("no checker registered, trusted list accepted unchecked",
			zap.String("specification", d.specification),
			zap.String("version", d.version))
		return nil
	}
	return c.Check(t, enforceSignature)
}

func (d *Document) noBuilder() error {
	return tsl.NewArgumentError(tsl.CodeNoBuilder, "no builder registered for specification %q version %q", d.specification, d.version)
}

// ServiceMatch is a service whose digital identity is, or issued, a
// certificate.
type ServiceMatch struct {
	Provider   *tsl.TrustServiceProvider
	Service    *tsl.TSPService
	State      *tsl.ServiceHistoryInstance
	Status     string
	Issuer     tsl.IssuerMatch
	Identifies bool
	Qualifiers []string
}

// ServicesFor returns the services whose digital identity in force at at
// either is cert or issued it. Qualifiers are only computed for issued
// certificates.
func (d *Document) ServicesFor(cert *x509.Certificate, at time.Time) ([]ServiceMatch, error) {
	if cert == nil {
		return nil, tsl.NewArgumentError(tsl.CodeNilCertificate, "certificate is nil")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.list == nil {
		return nil, tsl.NewArgumentError(tsl.CodeNilValue, "document has not been built")
	}

	var (
		matches []ServiceMatch
		err     error
	)
	d.list.Services(func(p *tsl.TrustServiceProvider, s *tsl.TSPService) bool {
		state, ok := s.StateAt(at)
		if !ok {
			return true
		}
		sdi := state.DigitalIdentity()
		if !sdi.IsThereSomeIdentity() {
			return true
		}

		m := ServiceMatch{Provider: p, Service: s, State: state, Status: state.ServiceStatus()}
		if m.Identifies, err = sdi.IdentifiesCertificate(cert); err != nil {
			return false
		}
		if m.Issuer, err = sdi.IssuerOf(cert); err != nil {
			return false
		}
		if !m.Identifies && !m.Issuer.Issued {
			return true
		}
		if m.Issuer.Issued {
			if m.Qualifiers, err = s.QualifiersFor(cert, at); err != nil {
				return false
			}
		}
		matches = append(matches, m)
		return true
	})
	if err != nil {
		return nil, err
	}

	d.opts.logger.Debug("service lookup",
		zap.String("subject", cert.Subject.String()),
		zap.Time("at", at),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// StatusNow is ServicesFor at the current time of the document's clock.
func (d *Document) StatusNow(cert *x509.Certificate) ([]ServiceMatch, error) {
	return d.ServicesFor(cert, d.opts.clock.Now())
}
