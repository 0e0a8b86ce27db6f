package tsl

import (
	"strings"

	"github.com/georgepadayatti/gotsl/generated/w3c"
)

// TSLObject is an in-memory trusted list. Specification and version are
// fixed at construction; the other fields are filled by a Builder.
type TSLObject struct {
	specification string
	version       string

	tag               string
	id                string
	schemeInformation *SchemeInformation
	providers         []*TrustServiceProvider
	signature         *w3c.Signature
	raw               []byte
}

// NewTSLObject creates an empty trusted list for the given specification and
// version. The version alias "020101" is stored as "2.1.1".
func NewTSLObject(specification, version string) (*TSLObject, error) {
	specification = strings.TrimSpace(specification)
	version = strings.TrimSpace(version)
	if specification == "" {
		return nil, NewArgumentError(CodeEmptySpecification, "specification must not be empty")
	}
	if version == "" {
		return nil, NewArgumentError(CodeEmptySpecification, "specification version must not be empty")
	}
	return &TSLObject{specification: specification, version: NormalizeVersion(version)}, nil
}

func (t *TSLObject) Specification() string                 { return t.specification }
func (t *TSLObject) Version() string                       { return t.version }
func (t *TSLObject) Tag() string                           { return t.tag }
func (t *TSLObject) ID() string                            { return t.id }
func (t *TSLObject) SchemeInformation() *SchemeInformation { return t.schemeInformation }
func (t *TSLObject) Signature() *w3c.Signature             { return t.signature }
func (t *TSLObject) Raw() []byte                           { return t.raw }

func (t *TSLObject) SetTag(tag string)                          { t.tag = tag }
func (t *TSLObject) SetID(id string)                            { t.id = id }
func (t *TSLObject) SetSchemeInformation(si *SchemeInformation) { t.schemeInformation = si }
func (t *TSLObject) SetSignature(sig *w3c.Signature)            { t.signature = sig }
func (t *TSLObject) SetRaw(raw []byte)                          { t.raw = raw }

// KeepUnset copies from prev every field that t has not set. A nil prev is
// ignored.
func (t *TSLObject) KeepUnset(prev *TSLObject) {
	if prev == nil {
		return
	}
	if t.tag == "" {
		t.tag = prev.tag
	}
	if t.id == "" {
		t.id = prev.id
	}
	if t.schemeInformation == nil {
		t.schemeInformation = prev.schemeInformation
	}
	if len(t.providers) == 0 {
		t.providers = prev.providers
	}
	if t.signature == nil {
		t.signature = prev.signature
	}
	if t.raw == nil {
		t.raw = prev.raw
	}
}

// AddTrustServiceProvider appends a provider.
func (t *TSLObject) AddTrustServiceProvider(p *TrustServiceProvider) {
	t.providers = append(t.providers, p)
}

// IsThereSomeTrustServiceProvider reports whether the list has providers.
func (t *TSLObject) IsThereSomeTrustServiceProvider() bool {
	return len(t.providers) > 0
}

// TrustServiceProviders returns the providers, or false when there are none.
func (t *TSLObject) TrustServiceProviders() ([]*TrustServiceProvider, bool) {
	if len(t.providers) == 0 {
		return nil, false
	}
	return t.providers, true
}

// SchemeTerritory returns the territory of the scheme, or "".
func (t *TSLObject) SchemeTerritory() string {
	if t.schemeInformation == nil {
		return ""
	}
	return t.schemeInformation.SchemeTerritory
}

// Services calls fn for each service of each provider in document order,
// stopping when fn returns false.
func (t *TSLObject) Services(fn func(p *TrustServiceProvider, s *TSPService) bool) {
	for _, p := range t.providers {
		for _, s := range p.services {
			if !fn(p, s) {
				return
			}
		}
	}
}
