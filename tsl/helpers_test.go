package tsl

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"strconv"
	"strings"
	"testing"
	"time"
)

type testCertOptions struct {
	commonName   string
	organization string
	ekus         []asn1.ObjectIdentifier
	policies     []asn1.ObjectIdentifier
	keyUsage     x509.KeyUsage
	isCA         bool
	subjectKeyID []byte
}

type testKeyPair struct {
	cert *x509.Certificate
	key  crypto.Signer
}

// generateTestCert creates a certificate signed by issuer, or self-signed
// when issuer is nil.
func generateTestCert(t *testing.T, opts testCertOptions, issuer *testKeyPair) *testKeyPair {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	if opts.commonName == "" {
		opts.commonName = "Test User"
	}
	if opts.organization == "" {
		opts.organization = "Test Org"
	}
	if opts.keyUsage == 0 {
		opts.keyUsage = x509.KeyUsageDigitalSignature
	}

	serial, _ := rand.Int(rand.Reader, big.NewInt(1000000))
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   opts.commonName,
			Organization: []string{opts.organization},
			Country:      []string{"DE"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              opts.keyUsage,
		BasicConstraintsValid: true,
		IsCA:                  opts.isCA,
		UnknownExtKeyUsage:    opts.ekus,
		PolicyIdentifiers:     opts.policies,
		SubjectKeyId:          opts.subjectKeyID,
	}

	for _, p := range opts.policies {
		arcs := make([]uint64, len(p))
		for i, a := range p {
			arcs[i] = uint64(a)
		}
		oid, err := x509.OIDFromInts(arcs)
		if err != nil {
			t.Fatalf("OIDFromInts(%v) error = %v", p, err)
		}
		template.Policies = append(template.Policies, oid)
	}

	parent := template
	var signer crypto.Signer = key
	if issuer != nil {
		parent = issuer.cert
		signer = issuer.key
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, signer)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("Failed to parse certificate: %v", err)
	}

	return &testKeyPair{cert: cert, key: key}
}

func generateTestCertWithEKU(t *testing.T, ekus ...string) *x509.Certificate {
	t.Helper()
	var oids []asn1.ObjectIdentifier
	for _, e := range ekus {
		oids = append(oids, mustOID(t, e))
	}
	return generateTestCert(t, testCertOptions{ekus: oids}, nil).cert
}

func mustOID(t *testing.T, s string) asn1.ObjectIdentifier {
	t.Helper()
	if !IsWellFormedOID(s) {
		t.Fatalf("malformed OID %q", s)
	}
	var oid asn1.ObjectIdentifier
	for _, part := range strings.Split(s, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			t.Fatalf("malformed OID %q: %v", s, err)
		}
		oid = append(oid, n)
	}
	return oid
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("time.Parse(%q) error = %v", s, err)
	}
	return ts
}

func newTestTSL(t *testing.T) *TSLObject {
	t.Helper()
	obj, err := NewTSLObject(Specification119612, Version020101)
	if err != nil {
		t.Fatalf("NewTSLObject() error = %v", err)
	}
	return obj
}

func newServiceState(serviceType string) *ServiceHistoryInstance {
	shi := &ServiceHistoryInstance{}
	shi.SetServiceTypeIdentifier(serviceType)
	shi.SetServiceStatus(StatusGranted)
	return shi
}
