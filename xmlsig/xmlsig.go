// Package xmlsig verifies and produces the enveloped XML signatures carried by
// trusted lists. Two verification engines are available: moov-io/signedxml
// and russellhaering/goxmldsig. Signing uses goxmldsig.
package xmlsig

import (
	"crypto/x509"
	"errors"
	"fmt"
	"sort"
)

// Verifier checks the enveloped signature of a serialized document and
// returns the certificate that produced it.
type Verifier interface {
	Verify(raw []byte) (*x509.Certificate, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(raw []byte) (*x509.Certificate, error)

func (f VerifierFunc) Verify(raw []byte) (*x509.Certificate, error) { return f(raw) }

var (
	// ErrNoTrustedCertificates is returned when a verifier has no trust anchors.
	ErrNoTrustedCertificates = errors.New("no trusted certificates provided for signature validation")
	// ErrNoSignedContent is returned when a valid signature covers nothing.
	ErrNoSignedContent = errors.New("no signed content found in XML")
	// ErrEmptyDocument is returned for an empty input.
	ErrEmptyDocument = errors.New("empty XML document")
)

// SignatureError represents an XML signature validation or signing error.
type SignatureError struct {
	Message string
	Err     error
}

func (e *SignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

func newSignatureError(err error, format string, args ...any) *SignatureError {
	return &SignatureError{Message: fmt.Sprintf(format, args...), Err: err}
}

// Engine names a verification engine.
type Engine string

const (
	EngineSignedXML Engine = "signedxml"
	EngineGoXMLDsig Engine = "goxmldsig"
)

// NewVerifier returns a verifier using engine with the given trust anchors.
func NewVerifier(engine Engine, trusted []*x509.Certificate) (Verifier, error) {
	switch engine {
	case EngineSignedXML, "":
		return NewSignedXMLVerifier(trusted), nil
	case EngineGoXMLDsig:
		return NewDsigVerifier(trusted), nil
	default:
		return nil, fmt.Errorf("unknown signature engine %q", engine)
	}
}

// newestFirst returns a copy of certs sorted by NotBefore, newest first.
func newestFirst(certs []*x509.Certificate) []*x509.Certificate {
	sorted := make([]*x509.Certificate, 0, len(certs))
	for _, c := range certs {
		if c != nil {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NotBefore.After(sorted[j].NotBefore)
	})
	return sorted
}
