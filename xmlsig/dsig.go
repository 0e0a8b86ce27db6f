package xmlsig

import (
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	dsig "github.com/russellhaering/goxmldsig"
)

// IDAttribute is the attribute trusted lists use to reference the signed
// element.
const IDAttribute = "Id"

// DsigVerifier verifies signatures with goxmldsig against a set of trusted
// certificates.
type DsigVerifier struct {
	trusted []*x509.Certificate
	clock   clockwork.Clock
}

// NewDsigVerifier creates a verifier trusting the given certificates.
func NewDsigVerifier(trusted []*x509.Certificate) *DsigVerifier {
	return &DsigVerifier{trusted: newestFirst(trusted), clock: clockwork.NewRealClock()}
}

// WithClock sets the clock used to check certificate validity periods.
func (v *DsigVerifier) WithClock(c clockwork.Clock) *DsigVerifier {
	v.clock = c
	return v
}

// Verify validates the enveloped signature of raw.
func (v *DsigVerifier) Verify(raw []byte) (*x509.Certificate, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(v.trusted) == 0 {
		return nil, ErrNoTrustedCertificates
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, newSignatureError(err, "failed to parse XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}

	roots := make([]*x509.Certificate, len(v.trusted))
	copy(roots, v.trusted)
	ctx := dsig.NewDefaultValidationContext(&dsig.MemoryX509CertificateStore{Roots: roots})
	ctx.IdAttribute = IDAttribute
	ctx.Clock = dsig.NewFakeClock(v.clock)

	validated, err := ctx.Validate(root)
	if err != nil {
		return nil, newSignatureError(err, "XML signature validation failed")
	}
	if validated == nil {
		return nil, ErrNoSignedContent
	}
	return v.signingCertificate(root)
}

// signingCertificate returns the trusted certificate named by the signature
// KeyInfo, or the only trusted certificate when KeyInfo carries none.
func (v *DsigVerifier) signingCertificate(root *etree.Element) (*x509.Certificate, error) {
	el := root.FindElement("./Signature/KeyInfo/X509Data/X509Certificate")
	if el == nil {
		if len(v.trusted) == 1 {
			return v.trusted[0], nil
		}
		return nil, newSignatureError(nil, "signature validated but the signing certificate is unknown")
	}
	der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(el.Text()), ""))
	if err != nil {
		return nil, newSignatureError(err, "invalid X509Certificate in KeyInfo")
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, newSignatureError(err, "invalid X509Certificate in KeyInfo")
	}
	for _, t := range v.trusted {
		if t.Equal(cert) {
			return t, nil
		}
	}
	return nil, newSignatureError(nil, "document signed by untrusted certificate %q", cert.Subject.String())
}

// Signer produces enveloped signatures with goxmldsig.
type Signer struct {
	key   crypto.Signer
	chain []*x509.Certificate
}

// NewSigner creates a signer for key. chain[0] is the certificate of key.
func NewSigner(key crypto.Signer, chain []*x509.Certificate) (*Signer, error) {
	if key == nil {
		return nil, newSignatureError(nil, "signing key is nil")
	}
	if len(chain) == 0 || chain[0] == nil {
		return nil, newSignatureError(nil, "signing certificate is missing")
	}
	return &Signer{key: key, chain: chain}, nil
}

// Sign adds an enveloped signature as the last child of the root element of
// raw. A root without an Id attribute gets a generated one.
func (s *Signer) Sign(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, newSignatureError(err, "failed to parse XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	if root.SelectAttrValue(IDAttribute, "") == "" {
		root.CreateAttr(IDAttribute, "tsl-"+uuid.NewString())
	}

	certs := make([][]byte, len(s.chain))
	for i, c := range s.chain {
		certs[i] = c.Raw
	}
	ctx, err := dsig.NewSigningContext(s.key, certs)
	if err != nil {
		return nil, newSignatureError(err, "failed to create signing context")
	}
	ctx.IdAttribute = IDAttribute
	ctx.Canonicalizer = dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")

	signed, err := ctx.SignEnveloped(root)
	if err != nil {
		return nil, newSignatureError(err, "failed to sign document")
	}
	doc.SetRoot(signed)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, newSignatureError(err, "failed to serialize signed document")
	}
	return out, nil
}
