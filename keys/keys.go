// Package keys loads the certificates and keys used around trusted lists:
// trusted list signer certificates, certificates to look up, and the key
// that signs an exported list. PEM, DER and PKCS#12 inputs are supported.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

var (
	ErrNoCertFound       = errors.New("no certificate found in data")
	ErrNoKeyFound        = errors.New("no private key found in data")
	ErrUnknownKeyType    = errors.New("unknown private key type")
	ErrInvalidPEMBlock   = errors.New("invalid PEM block")
	ErrDecryptionFailed  = errors.New("failed to decrypt private key")
	ErrMultipleCerts     = errors.New("expected exactly one certificate")
	ErrEmptyTrustStore   = errors.New("trust store holds no certificate")
)

// PrivateKey is a key that can sign a trusted list.
type PrivateKey interface {
	crypto.Signer
}

// LoadCertificate loads exactly one certificate from a PEM or DER file.
func LoadCertificate(filename string) (*x509.Certificate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	cert, err := ParseCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cert, nil
}

// ParseCertificate parses exactly one PEM or DER certificate.
func ParseCertificate(data []byte) (*x509.Certificate, error) {
	certs, err := ParseCertificates(data)
	if err != nil {
		return nil, err
	}
	if len(certs) != 1 {
		return nil, fmt.Errorf("%w: found %d certificates", ErrMultipleCerts, len(certs))
	}
	return certs[0], nil
}

// LoadCertificates loads every certificate of a PEM or DER file.
func LoadCertificates(filename string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ParseCertificates(data)
}

// ParseCertificates parses PEM data holding CERTIFICATE blocks, or DER data
// holding one or more concatenated certificates.
func ParseCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	if isPEM(data) {
		rest := data
		for len(rest) > 0 {
			var block *pem.Block
			block, rest = pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type != "CERTIFICATE" {
				continue
			}
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse certificate: %w", err)
			}
			certs = append(certs, cert)
		}
	} else if len(data) > 0 {
		parsed, err := x509.ParseCertificates(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DER certificate: %w", err)
		}
		certs = parsed
	}

	if len(certs) == 0 {
		return nil, ErrNoCertFound
	}
	return certs, nil
}

// LoadTrustedSigners loads the certificates of every file, in file order.
func LoadTrustedSigners(filenames []string) ([]*x509.Certificate, error) {
	var all []*x509.Certificate
	for _, filename := range filenames {
		certs, err := LoadCertificates(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to load trusted signers from %s: %w", filename, err)
		}
		all = append(all, certs...)
	}
	return all, nil
}

// LoadTrustStore loads the certificates of a PKCS#12 trust store.
func LoadTrustStore(filename, password string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	certs, err := pkcs12.DecodeTrustStore(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decode trust store %s: %w", filename, err)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyTrustStore)
	}
	return certs, nil
}

// SigningCredential is a signing key with its certificate chain, leaf first.
type SigningCredential struct {
	Key   PrivateKey
	Chain []*x509.Certificate
}

// Certificate returns the signing certificate.
func (c *SigningCredential) Certificate() *x509.Certificate {
	if len(c.Chain) == 0 {
		return nil
	}
	return c.Chain[0]
}

// LoadSigningChain loads a signing key and chain from a PKCS#12 file.
func LoadSigningChain(filename, password string) (*SigningCredential, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	key, cert, cas, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PKCS#12 file %s: %w", filename, err)
	}
	signer, err := toPrivateKey(key)
	if err != nil {
		return nil, err
	}
	return &SigningCredential{Key: signer, Chain: append([]*x509.Certificate{cert}, cas...)}, nil
}

// LoadPemDer loads a signing key and a chain from PEM or DER files. The
// first certificate of certFile is the signing certificate.
func LoadPemDer(certFile, keyFile string, passphrase []byte) (*SigningCredential, error) {
	chain, err := LoadCertificates(certFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	key, err := LoadPrivateKey(keyFile, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	return &SigningCredential{Key: key, Chain: chain}, nil
}

// LoadPrivateKey loads a private key from a PEM or DER file.
func LoadPrivateKey(filename string, passphrase []byte) (PrivateKey, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ParsePrivateKey(data, passphrase)
}

// ParsePrivateKey parses a PEM or DER private key.
func ParsePrivateKey(data []byte, passphrase []byte) (PrivateKey, error) {
	if isPEM(data) {
		return parsePEMPrivateKey(data, passphrase)
	}
	return parseDERPrivateKey(data)
}

func parsePEMPrivateKey(data []byte, passphrase []byte) (PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}

	keyBytes := block.Bytes
	if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck
		if passphrase == nil {
			return nil, fmt.Errorf("private key is encrypted but no passphrase provided")
		}
		var err error
		keyBytes, err = x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
		}
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(keyBytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(keyBytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
		}
		return toPrivateKey(key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyType, block.Type)
	}
}

func parseDERPrivateKey(data []byte) (PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(data); err == nil {
		return toPrivateKey(key)
	}
	if key, err := x509.ParsePKCS1PrivateKey(data); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(data); err == nil {
		return key, nil
	}
	return nil, ErrNoKeyFound
}

func toPrivateKey(key any) (PrivateKey, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	case ed25519.PrivateKey:
		return k, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKeyType, key)
	}
}

func isPEM(data []byte) bool {
	return len(data) > 10 && string(data[:5]) == "-----"
}

// KeyInfo describes a private key.
type KeyInfo struct {
	Algorithm string
	BitSize   int    // RSA only
	Curve     string // ECDSA only
}

// GetKeyInfo describes key.
func GetKeyInfo(key PrivateKey) KeyInfo {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return KeyInfo{Algorithm: "RSA", BitSize: k.N.BitLen()}
	case *ecdsa.PrivateKey:
		return KeyInfo{Algorithm: "ECDSA", Curve: k.Curve.Params().Name}
	case ed25519.PrivateKey:
		return KeyInfo{Algorithm: "Ed25519"}
	default:
		return KeyInfo{Algorithm: "Unknown"}
	}
}
