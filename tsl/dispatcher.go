package tsl

import (
	"io"
	"sync"
)

// Builder translates between the XML form of a trusted list and the model.
type Builder interface {
	// Build parses r into into, which is freshly created by the caller.
	Build(r io.Reader, into *TSLObject) error
	// BuildXML serializes t.
	BuildXML(t *TSLObject) ([]byte, error)
}

// Checker validates a built trusted list.
type Checker interface {
	Check(t *TSLObject, enforceSignature bool) error
}

// Implementation is the builder and checker registered for one
// specification and version.
type Implementation struct {
	Builder Builder
	Checker Checker
}

type specVersion struct {
	specification string
	version       string
}

// Dispatcher selects the Implementation for a (specification, version) pair.
// It is safe for concurrent use.
type Dispatcher struct {
	mu    sync.RWMutex
	impls map[specVersion]Implementation
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{impls: make(map[specVersion]Implementation)}
}

// Register sets the implementation for specification and version, replacing
// any previous one.
func (d *Dispatcher) Register(specification, version string, impl Implementation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.impls[specVersion{specification, NormalizeVersion(version)}] = impl
}

// Lookup returns the implementation for specification and version.
func (d *Dispatcher) Lookup(specification, version string) (Implementation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	impl, ok := d.impls[specVersion{specification, NormalizeVersion(version)}]
	return impl, ok
}

// BuilderFor returns the builder for specification and version, if any.
func (d *Dispatcher) BuilderFor(specification, version string) (Builder, bool) {
	impl, ok := d.Lookup(specification, version)
	if !ok || impl.Builder == nil {
		return nil, false
	}
	return impl.Builder, true
}

// CheckerFor returns the checker for specification and version, if any.
func (d *Dispatcher) CheckerFor(specification, version string) (Checker, bool) {
	impl, ok := d.Lookup(specification, version)
	if !ok || impl.Checker == nil {
		return nil, false
	}
	return impl.Checker, true
}

// OIDNamer resolves object identifiers to display names for diagnostics.
type OIDNamer interface {
	OIDName(oid string) string
}

// OIDNamerFunc adapts a function to OIDNamer.
type OIDNamerFunc func(oid string) string

func (f OIDNamerFunc) OIDName(oid string) string { return f(oid) }

var wellKnownOIDs = map[string]string{
	"2.5.4.3":              "commonName",
	"2.5.4.4":              "surname",
	"2.5.4.5":              "serialNumber",
	"2.5.4.6":              "countryName",
	"2.5.4.7":              "localityName",
	"2.5.4.8":              "stateOrProvinceName",
	"2.5.4.10":             "organizationName",
	"2.5.4.11":             "organizationalUnitName",
	"2.5.4.42":             "givenName",
	"2.5.4.97":             "organizationIdentifier",
	"1.3.6.1.5.5.7.3.1":    "serverAuth",
	"1.3.6.1.5.5.7.3.2":    "clientAuth",
	"1.3.6.1.5.5.7.3.3":    "codeSigning",
	"1.3.6.1.5.5.7.3.4":    "emailProtection",
	"1.3.6.1.5.5.7.3.8":    "timeStamping",
	"1.3.6.1.5.5.7.3.9":    "OCSPSigning",
	"0.4.0.194112.1.0":     "QCP-n",
	"0.4.0.194112.1.1":     "QCP-l",
	"0.4.0.194112.1.2":     "QCP-n-qscd",
	"0.4.0.194112.1.3":     "QCP-l-qscd",
	"0.4.0.194112.1.4":     "QCP-w",
	"1.2.840.113549.1.9.1": "emailAddress",
	"0.4.0.1456.1.1":       "QCP+",
	"0.4.0.1456.1.2":       "QCP",
}

// DefaultOIDNamer names common subject attribute, key purpose and policy
// OIDs. Unknown OIDs are returned unchanged.
var DefaultOIDNamer OIDNamer = OIDNamerFunc(func(oid string) string {
	if name, ok := wellKnownOIDs[oid]; ok {
		return name + " (" + oid + ")"
	}
	return oid
})
