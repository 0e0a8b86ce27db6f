package xmlsig

import (
	"crypto/x509"

	"github.com/moov-io/signedxml"
)

// SignedXMLVerifier verifies signatures with moov-io/signedxml against a set
// of trusted certificates.
type SignedXMLVerifier struct {
	trusted []*x509.Certificate
}

// NewSignedXMLVerifier creates a verifier trusting the given certificates.
func NewSignedXMLVerifier(trusted []*x509.Certificate) *SignedXMLVerifier {
	return &SignedXMLVerifier{trusted: newestFirst(trusted)}
}

// Verify tries every trusted certificate, newest first, and then all of them
// at once, so that a certificate embedded in KeyInfo can be picked.
func (v *SignedXMLVerifier) Verify(raw []byte) (*x509.Certificate, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(v.trusted) == 0 {
		return nil, ErrNoTrustedCertificates
	}

	var lastErr error
	for _, cert := range v.trusted {
		signer, err := validate(string(raw), []*x509.Certificate{cert})
		if err == nil {
			return signer, nil
		}
		lastErr = err
	}
	if signer, err := validate(string(raw), v.trusted); err == nil {
		return signer, nil
	}
	return nil, newSignatureError(lastErr, "none of the %d trusted certificates could validate the signature", len(v.trusted))
}

func validate(doc string, trusted []*x509.Certificate) (*x509.Certificate, error) {
	validator, err := signedxml.NewValidator(doc)
	if err != nil {
		return nil, newSignatureError(err, "failed to create XML signature validator")
	}

	certs := make([]x509.Certificate, len(trusted))
	for i, cert := range trusted {
		certs[i] = *cert
	}
	validator.Certificates = certs
	validator.SetReferenceIDAttribute(IDAttribute)

	refs, err := validator.ValidateReferences()
	if err != nil {
		return nil, newSignatureError(err, "XML signature validation failed")
	}
	if len(refs) == 0 {
		return nil, ErrNoSignedContent
	}

	signing := validator.SigningCert()
	if len(signing.Raw) == 0 {
		if len(trusted) == 1 {
			return trusted[0], nil
		}
		return nil, newSignatureError(nil, "signature validated but the signing certificate is unknown")
	}
	for _, cert := range trusted {
		if cert.Equal(&signing) {
			return cert, nil
		}
	}
	return nil, newSignatureError(nil, "document signed by untrusted certificate %q", signing.Subject.String())
}
