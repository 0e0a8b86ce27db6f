package tsl

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"sort"
	"strings"
)

// DigitalIDKind identifies the form of a DigitalID.
type DigitalIDKind int

const (
	DigitalIDX509Certificate DigitalIDKind = iota + 1
	DigitalIDX509SubjectName
	DigitalIDKeyValue
	DigitalIDX509SKI
	DigitalIDOther
)

func (k DigitalIDKind) String() string {
	switch k {
	case DigitalIDX509Certificate:
		return "X509Certificate"
	case DigitalIDX509SubjectName:
		return "X509SubjectName"
	case DigitalIDKeyValue:
		return "KeyValue"
	case DigitalIDX509SKI:
		return "X509SKI"
	case DigitalIDOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// DigitalID is one digital identity descriptor of a service or TSL pointer.
type DigitalID struct {
	kind        DigitalIDKind
	certificate *x509.Certificate
	subjectName string
	publicKey   crypto.PublicKey
	ski         []byte
	other       []byte
}

// NewCertificateID creates an X509Certificate identity.
func NewCertificateID(cert *x509.Certificate) DigitalID {
	return DigitalID{kind: DigitalIDX509Certificate, certificate: cert}
}

// NewSubjectNameID creates an X509SubjectName identity.
func NewSubjectNameID(name string) DigitalID {
	return DigitalID{kind: DigitalIDX509SubjectName, subjectName: name}
}

// NewKeyValueID creates a KeyValue identity.
func NewKeyValueID(pub crypto.PublicKey) DigitalID {
	return DigitalID{kind: DigitalIDKeyValue, publicKey: pub}
}

// NewSKIID creates an X509SKI identity.
func NewSKIID(ski []byte) DigitalID {
	return DigitalID{kind: DigitalIDX509SKI, ski: ski}
}

// NewOtherID creates an Other identity holding its raw XML content.
func NewOtherID(raw []byte) DigitalID {
	return DigitalID{kind: DigitalIDOther, other: raw}
}

func (d DigitalID) Kind() DigitalIDKind            { return d.kind }
func (d DigitalID) Certificate() *x509.Certificate { return d.certificate }
func (d DigitalID) SubjectName() string            { return d.subjectName }
func (d DigitalID) PublicKey() crypto.PublicKey    { return d.publicKey }
func (d DigitalID) SKI() []byte                    { return d.ski }
func (d DigitalID) Other() []byte                  { return d.other }

// ServiceDigitalIdentity is an ordered list of digital identities.
type ServiceDigitalIdentity struct {
	ids []DigitalID
}

// Add appends an identity.
func (s *ServiceDigitalIdentity) Add(id DigitalID) {
	s.ids = append(s.ids, id)
}

// IsThereSomeIdentity reports whether at least one identity was added.
func (s *ServiceDigitalIdentity) IsThereSomeIdentity() bool {
	return s != nil && len(s.ids) > 0
}

// IDs returns the identities, or false when there are none.
func (s *ServiceDigitalIdentity) IDs() ([]DigitalID, bool) {
	if !s.IsThereSomeIdentity() {
		return nil, false
	}
	return s.ids, true
}

// Certificates returns the X509Certificate identities.
func (s *ServiceDigitalIdentity) Certificates() []*x509.Certificate {
	if s == nil {
		return nil
	}
	var certs []*x509.Certificate
	for _, id := range s.ids {
		if id.kind == DigitalIDX509Certificate && id.certificate != nil {
			certs = append(certs, id.certificate)
		}
	}
	return certs
}

// IdentifiesCertificate reports whether cert is one of the declared
// X509Certificate identities. Other identity forms never identify a
// certificate on their own.
func (s *ServiceDigitalIdentity) IdentifiesCertificate(cert *x509.Certificate) (bool, error) {
	if cert == nil {
		return false, NewArgumentError(CodeNilCertificate, "certificate is nil")
	}
	for _, c := range s.Certificates() {
		if c.Equal(cert) {
			return true, nil
		}
	}
	return false, nil
}

// IssuerMatch describes which identity was found to have issued a certificate.
type IssuerMatch struct {
	Issued      bool
	Certificate *x509.Certificate
	PublicKey   crypto.PublicKey
	SubjectName string
	SKI         []byte
}

// IssuerOf determines whether one of the identities issued cert. A declared
// certificate or key that verifies the signature is conclusive. A subject name
// equal to the certificate issuer is only conclusive together with a declared
// SKI equal to the certificate's authority key identifier.
func (s *ServiceDigitalIdentity) IssuerOf(cert *x509.Certificate) (IssuerMatch, error) {
	var m IssuerMatch
	if cert == nil {
		return m, NewArgumentError(CodeNilCertificate, "certificate is nil")
	}
	if s == nil {
		return m, nil
	}

	for _, issuer := range s.Certificates() {
		if cert.CheckSignatureFrom(issuer) == nil {
			m.Issued = true
			m.Certificate = issuer
			m.PublicKey = issuer.PublicKey
			m.SubjectName = issuer.Subject.String()
			if !isSelfIssued(cert) {
				m.SKI = issuer.SubjectKeyId
			}
			break
		}
	}
	if m.Issued && m.SubjectName != "" && m.SKI != nil {
		return m, nil
	}

	for _, id := range s.ids {
		if id.kind != DigitalIDKeyValue || id.publicKey == nil {
			continue
		}
		if checkSignatureWithKey(cert, id.publicKey) {
			m.Issued = true
			m.PublicKey = id.publicKey
			break
		}
	}

	subjectMatched := false
	for _, id := range s.ids {
		if id.kind != DigitalIDX509SubjectName {
			continue
		}
		if canonicalDN(id.subjectName) == canonicalDN(cert.Issuer.String()) {
			subjectMatched = true
			m.SubjectName = id.subjectName
			break
		}
	}

	if subjectMatched && m.SKI == nil && !isSelfIssued(cert) && len(cert.AuthorityKeyId) > 0 {
		for _, id := range s.ids {
			if id.kind == DigitalIDX509SKI && bytes.Equal(id.ski, cert.AuthorityKeyId) {
				m.Issued = true
				m.SKI = id.ski
				break
			}
		}
	}
	return m, nil
}

func isSelfIssued(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawSubject, cert.RawIssuer)
}

// checkSignatureWithKey verifies cert against a bare public key by wrapping it
// in a throwaway parent certificate.
func checkSignatureWithKey(cert *x509.Certificate, pub crypto.PublicKey) bool {
	parent := &x509.Certificate{
		PublicKey:          pub,
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm,
	}
	return parent.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

// canonicalDN folds a textual distinguished name into an order-insensitive,
// case-insensitive form.
func canonicalDN(dn string) string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range dn {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == ',' || r == ';' || r == '+':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())

	out := parts[:0]
	for _, p := range parts {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		k = strings.ToUpper(strings.TrimSpace(k))
		v = strings.ToLower(strings.Join(strings.Fields(v), " "))
		if alias, found := dnAliases[k]; found {
			k = alias
		}
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

var dnAliases = map[string]string{
	"2.5.4.3":                  "CN",
	"2.5.4.5":                  "SERIALNUMBER",
	"2.5.4.6":                  "C",
	"2.5.4.7":                  "L",
	"2.5.4.8":                  "ST",
	"2.5.4.10":                 "O",
	"2.5.4.11":                 "OU",
	"2.5.4.97":                 "ORGANIZATIONIDENTIFIER",
	"S":                        "ST",
	"OID.2.5.4.97":             "ORGANIZATIONIDENTIFIER",
	"1.2.840.113549.1.9.1":     "E",
	"EMAILADDRESS":             "E",
	"OID.1.2.840.113549.1.9.1": "E",
}
