// Package w3c provides W3C XML Digital Signature structures.
//
// Implements the subset of XML Signature Syntax and Processing (Second Edition)
// and XML Signature 1.1 that trusted lists carry:
// https://www.w3.org/TR/xmldsig-core/
package w3c

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Namespace is the XML Digital Signature namespace.
const Namespace = "http://www.w3.org/2000/09/xmldsig#"

// Namespace11 is the XML Signature 1.1 namespace, home of ECKeyValue.
const Namespace11 = "http://www.w3.org/2009/xmldsig11#"

// CanonicalizationMethod specifies the canonicalization algorithm.
type CanonicalizationMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

// SignatureMethod specifies the signature algorithm.
type SignatureMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

// DigestMethod specifies the digest algorithm.
type DigestMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

// Transform specifies a transformation.
type Transform struct {
	Algorithm string `xml:"Algorithm,attr"`
}

// Transforms contains a list of transforms.
type Transforms struct {
	Transform []Transform `xml:"Transform"`
}

// Reference contains a reference to a resource.
type Reference struct {
	Transforms   *Transforms   `xml:"Transforms,omitempty"`
	DigestMethod *DigestMethod `xml:"DigestMethod"`
	DigestValue  string        `xml:"DigestValue"`
	ID           string        `xml:"Id,attr,omitempty"`
	URI          string        `xml:"URI,attr"`
	Type         string        `xml:"Type,attr,omitempty"`
}

// SignedInfo contains the signed information.
type SignedInfo struct {
	CanonicalizationMethod *CanonicalizationMethod `xml:"CanonicalizationMethod"`
	SignatureMethod        *SignatureMethod        `xml:"SignatureMethod"`
	Reference              []Reference             `xml:"Reference"`
	ID                     string                  `xml:"Id,attr,omitempty"`
}

// SignatureValue contains the base64 signature value.
type SignatureValue struct {
	Value string `xml:",chardata"`
	ID    string `xml:"Id,attr,omitempty"`
}

// X509Data contains base64 X.509 certificates and related identifiers.
type X509Data struct {
	X509SKI         []string `xml:"X509SKI,omitempty"`
	X509SubjectName []string `xml:"X509SubjectName,omitempty"`
	X509Certificate []string `xml:"X509Certificate,omitempty"`
}

// RSAKeyValue contains base64 RSA public key values.
type RSAKeyValue struct {
	Modulus  string `xml:"Modulus"`
	Exponent string `xml:"Exponent"`
}

// NamedCurve identifies an elliptic curve by URI, usually "urn:oid:...".
type NamedCurve struct {
	URI string `xml:"URI,attr"`
}

// ECKeyValue contains an elliptic curve public key as defined by XML
// Signature 1.1.
type ECKeyValue struct {
	NamedCurve *NamedCurve `xml:"http://www.w3.org/2009/xmldsig11# NamedCurve"`
	PublicKey  string      `xml:"http://www.w3.org/2009/xmldsig11# PublicKey"`
}

// DSAKeyValue is recognised so that it can be reported; DSA keys are not
// supported.
type DSAKeyValue struct {
	Y string `xml:"Y"`
}

// KeyValue contains a single public key.
type KeyValue struct {
	XMLName     xml.Name     `xml:"http://www.w3.org/2000/09/xmldsig# KeyValue"`
	RSAKeyValue *RSAKeyValue `xml:"http://www.w3.org/2000/09/xmldsig# RSAKeyValue,omitempty"`
	DSAKeyValue *DSAKeyValue `xml:"http://www.w3.org/2000/09/xmldsig# DSAKeyValue,omitempty"`
	ECKeyValue  *ECKeyValue  `xml:"http://www.w3.org/2009/xmldsig11# ECKeyValue,omitempty"`
}

// KeyInfo contains key information.
type KeyInfo struct {
	ID       string     `xml:"Id,attr,omitempty"`
	KeyName  []string   `xml:"KeyName,omitempty"`
	KeyValue []KeyValue `xml:"KeyValue,omitempty"`
	X509Data []X509Data `xml:"X509Data,omitempty"`
}

// Object contains an embedded object, typically XAdES qualifying properties.
type Object struct {
	ID      string `xml:"Id,attr,omitempty"`
	Content []byte `xml:",innerxml"`
}

// Signature is the root element for XML signatures.
type Signature struct {
	XMLName        xml.Name        `xml:"http://www.w3.org/2000/09/xmldsig# Signature"`
	SignedInfo     *SignedInfo     `xml:"SignedInfo"`
	SignatureValue *SignatureValue `xml:"SignatureValue"`
	KeyInfo        *KeyInfo        `xml:"KeyInfo,omitempty"`
	Object         []Object        `xml:"Object,omitempty"`
	ID             string          `xml:"Id,attr,omitempty"`
}

// Common algorithm URIs
const (
	// Canonicalization algorithms
	AlgC14N                = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgC14NWithComments    = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315#WithComments"
	AlgExcC14N             = "http://www.w3.org/2001/10/xml-exc-c14n#"
	AlgExcC14NWithComments = "http://www.w3.org/2001/10/xml-exc-c14n#WithComments"

	// Digest algorithms
	AlgSHA1   = "http://www.w3.org/2000/09/xmldsig#sha1"
	AlgSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"
	AlgSHA384 = "http://www.w3.org/2001/04/xmldsig-more#sha384"
	AlgSHA512 = "http://www.w3.org/2001/04/xmlenc#sha512"

	// Signature algorithms
	AlgRSAWithSHA1     = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	AlgRSAWithSHA256   = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgRSAWithSHA384   = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha384"
	AlgRSAWithSHA512   = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha512"
	AlgECDSAWithSHA256 = "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha256"
	AlgECDSAWithSHA384 = "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha384"
	AlgECDSAWithSHA512 = "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha512"

	// Transform algorithms
	AlgEnvelopedSignature = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// ErrUnsupportedKeyValue is returned for key values that have no Go public
// key representation here.
var ErrUnsupportedKeyValue = errors.New("w3c: unsupported key value")

// NewKeyValue encodes an RSA or ECDSA public key.
func NewKeyValue(pub crypto.PublicKey) (*KeyValue, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return &KeyValue{RSAKeyValue: &RSAKeyValue{
			Modulus:  encodeCryptoBinary(k.N.Bytes()),
			Exponent: encodeCryptoBinary(big.NewInt(int64(k.E)).Bytes()),
		}}, nil
	case *ecdsa.PublicKey:
		oid, ok := curveOIDs[k.Curve]
		if !ok {
			return nil, fmt.Errorf("%w: curve %s", ErrUnsupportedKeyValue, k.Curve.Params().Name)
		}
		ecdhKey, err := k.ECDH()
		if err != nil {
			return nil, fmt.Errorf("w3c: encoding EC key: %w", err)
		}
		return &KeyValue{ECKeyValue: &ECKeyValue{
			NamedCurve: &NamedCurve{URI: "urn:oid:" + oid},
			PublicKey:  encodeCryptoBinary(ecdhKey.Bytes()),
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyValue, pub)
	}
}

// PublicKey decodes the key value.
func (kv *KeyValue) PublicKey() (crypto.PublicKey, error) {
	switch {
	case kv.RSAKeyValue != nil:
		n, err := decodeCryptoBinary(kv.RSAKeyValue.Modulus)
		if err != nil {
			return nil, fmt.Errorf("w3c: RSA modulus: %w", err)
		}
		e, err := decodeCryptoBinary(kv.RSAKeyValue.Exponent)
		if err != nil {
			return nil, fmt.Errorf("w3c: RSA exponent: %w", err)
		}
		exp := new(big.Int).SetBytes(e)
		if len(n) == 0 || !exp.IsInt64() || exp.Int64() < 3 || exp.Int64() > 1<<31-1 {
			return nil, errors.New("w3c: RSA key value out of range")
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
	case kv.ECKeyValue != nil:
		if kv.ECKeyValue.NamedCurve == nil {
			return nil, fmt.Errorf("%w: EC key without named curve", ErrUnsupportedKeyValue)
		}
		oid := strings.TrimPrefix(strings.TrimSpace(kv.ECKeyValue.NamedCurve.URI), "urn:oid:")
		curve, ok := oidCurves[oid]
		if !ok {
			return nil, fmt.Errorf("%w: curve %s", ErrUnsupportedKeyValue, oid)
		}
		point, err := decodeCryptoBinary(kv.ECKeyValue.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("w3c: EC public key: %w", err)
		}
		return parseECPoint(curve, point)
	case kv.DSAKeyValue != nil:
		return nil, fmt.Errorf("%w: DSA", ErrUnsupportedKeyValue)
	default:
		return nil, fmt.Errorf("%w: empty KeyValue", ErrUnsupportedKeyValue)
	}
}

func parseECPoint(curve ecdh.Curve, point []byte) (*ecdsa.PublicKey, error) {
	if _, err := curve.NewPublicKey(point); err != nil {
		return nil, fmt.Errorf("w3c: EC public key: %w", err)
	}
	var c elliptic.Curve
	switch curve {
	case ecdh.P256():
		c = elliptic.P256()
	case ecdh.P384():
		c = elliptic.P384()
	default:
		c = elliptic.P521()
	}
	size := (c.Params().BitSize + 7) / 8
	return &ecdsa.PublicKey{
		Curve: c,
		X:     new(big.Int).SetBytes(point[1 : 1+size]),
		Y:     new(big.Int).SetBytes(point[1+size:]),
	}, nil
}

var curveOIDs = map[elliptic.Curve]string{
	elliptic.P256(): "1.2.840.10045.3.1.7",
	elliptic.P384(): "1.3.132.0.34",
	elliptic.P521(): "1.3.132.0.35",
}

var oidCurves = map[string]ecdh.Curve{
	"1.2.840.10045.3.1.7": ecdh.P256(),
	"1.3.132.0.34":        ecdh.P384(),
	"1.3.132.0.35":        ecdh.P521(),
}

func encodeCryptoBinary(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// decodeCryptoBinary decodes base64 content, ignoring the line breaks that
// signers commonly insert.
func decodeCryptoBinary(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), ""))
}
