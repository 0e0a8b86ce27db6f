package tsl

import (
	"crypto/x509"
	"encoding/asn1"
	"errors"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidExtensionExtendedKeyUsage    = asn1.ObjectIdentifier{2, 5, 29, 37}
	oidExtensionCertificatePolicies = asn1.ObjectIdentifier{2, 5, 29, 32}
)

var errTrailingData = errors.New("trailing data")

// SubjectAttributeCounts decodes the raw subject of cert and counts how many
// attribute values of each type OID it contains.
func SubjectAttributeCounts(cert *x509.Certificate) (map[string]int, error) {
	if cert == nil {
		return nil, errNilCertificate()
	}
	counts, err := parseRDNSequence(cert.RawSubject)
	if err != nil {
		return nil, NewCertificateValidationError(CodeSubjectDecoding, err,
			"cannot decode the subject of certificate %s", cert.SerialNumber)
	}
	return counts, nil
}

func parseRDNSequence(raw []byte) (map[string]int, error) {
	input := cryptobyte.String(raw)
	var rdnSeq cryptobyte.String
	if !input.ReadASN1(&rdnSeq, cbasn1.SEQUENCE) {
		return nil, errors.New("malformed RDN sequence")
	}
	if !input.Empty() {
		return nil, errTrailingData
	}

	counts := make(map[string]int)
	for !rdnSeq.Empty() {
		var set cryptobyte.String
		if !rdnSeq.ReadASN1(&set, cbasn1.SET) {
			return nil, errors.New("malformed relative distinguished name")
		}
		for !set.Empty() {
			var atv cryptobyte.String
			if !set.ReadASN1(&atv, cbasn1.SEQUENCE) {
				return nil, errors.New("malformed attribute type and value")
			}
			var oid asn1.ObjectIdentifier
			if !atv.ReadASN1ObjectIdentifier(&oid) {
				return nil, errors.New("malformed attribute type")
			}
			var value cryptobyte.String
			var tag cbasn1.Tag
			if !atv.ReadAnyASN1(&value, &tag) {
				return nil, errors.New("malformed attribute value")
			}
			counts[oid.String()]++
		}
	}
	return counts, nil
}

// ExtendedKeyUsageOIDs returns the key purpose OIDs of cert in extension
// order. It returns nil when the extension is absent.
func ExtendedKeyUsageOIDs(cert *x509.Certificate) ([]string, error) {
	if cert == nil {
		return nil, errNilCertificate()
	}
	ext, ok := findExtension(cert, oidExtensionExtendedKeyUsage)
	if !ok {
		return nil, nil
	}
	oids, err := parseOIDSequence(ext)
	if err != nil {
		return nil, NewCertificateValidationError(CodeEKUDecoding, err,
			"cannot decode the extended key usage of certificate %s", cert.SerialNumber)
	}
	return oids, nil
}

func parseOIDSequence(raw []byte) ([]string, error) {
	input := cryptobyte.String(raw)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return nil, errors.New("malformed OID sequence")
	}
	if !input.Empty() {
		return nil, errTrailingData
	}
	oids := []string{}
	for !seq.Empty() {
		var oid asn1.ObjectIdentifier
		if !seq.ReadASN1ObjectIdentifier(&oid) {
			return nil, errors.New("malformed object identifier")
		}
		oids = append(oids, oid.String())
	}
	return oids, nil
}

// PolicyOIDs returns the policy identifiers of cert's certificate policies
// extension. It returns nil when the extension is absent.
func PolicyOIDs(cert *x509.Certificate) ([]string, error) {
	if cert == nil {
		return nil, errNilCertificate()
	}
	ext, ok := findExtension(cert, oidExtensionCertificatePolicies)
	if !ok {
		return nil, nil
	}
	oids, err := parsePolicyInformation(ext)
	if err != nil {
		return nil, NewCertificateValidationError(CodePolicyDecoding, err,
			"cannot decode the certificate policies of certificate %s", cert.SerialNumber)
	}
	return oids, nil
}

func parsePolicyInformation(raw []byte) ([]string, error) {
	input := cryptobyte.String(raw)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return nil, errors.New("malformed certificate policies")
	}
	if !input.Empty() {
		return nil, errTrailingData
	}
	var oids []string
	for !seq.Empty() {
		var info cryptobyte.String
		if !seq.ReadASN1(&info, cbasn1.SEQUENCE) {
			return nil, errors.New("malformed policy information")
		}
		var oid asn1.ObjectIdentifier
		if !info.ReadASN1ObjectIdentifier(&oid) {
			return nil, errors.New("malformed policy identifier")
		}
		oids = append(oids, oid.String())
	}
	return oids, nil
}

func findExtension(cert *x509.Certificate, id asn1.ObjectIdentifier) ([]byte, bool) {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(id) {
			return ext.Value, true
		}
	}
	return nil, false
}

var keyUsageBits = map[string]x509.KeyUsage{
	"digitalSignature": x509.KeyUsageDigitalSignature,
	"nonRepudiation":   x509.KeyUsageContentCommitment,
	"keyEncipherment":  x509.KeyUsageKeyEncipherment,
	"dataEncipherment": x509.KeyUsageDataEncipherment,
	"keyAgreement":     x509.KeyUsageKeyAgreement,
	"keyCertSign":      x509.KeyUsageCertSign,
	"crlSign":          x509.KeyUsageCRLSign,
	"encipherOnly":     x509.KeyUsageEncipherOnly,
	"decipherOnly":     x509.KeyUsageDecipherOnly,
}

// IsKnownKeyUsageBit reports whether name is a key usage bit name.
func IsKnownKeyUsageBit(name string) bool {
	_, ok := keyUsageBits[name]
	return ok
}
