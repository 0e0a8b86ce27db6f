// Package etsi provides ETSI XML structures.
// This file contains the XAdES (ETSI EN 319 132) types that TS 119 612 reuses
// for object identifiers.
package etsi

// XAdESNamespace is the XAdES v1.3.2 namespace.
const XAdESNamespace = "http://uri.etsi.org/01903/v1.3.2#"

// QualifierType tells how an Identifier value encodes the OID.
type QualifierType string

const (
	QualifierOIDAsURI QualifierType = "OIDAsURI"
	QualifierOIDAsURN QualifierType = "OIDAsURN"
)

// IdentifierType contains an object identifier.
type IdentifierType struct {
	Value     string        `xml:",chardata"`
	Qualifier QualifierType `xml:"Qualifier,attr,omitempty"`
}

// DocumentationReferencesType lists documentation URIs.
type DocumentationReferencesType struct {
	DocumentationReference []string `xml:"http://uri.etsi.org/01903/v1.3.2# DocumentationReference"`
}

// ObjectIdentifierType contains an object identifier.
type ObjectIdentifierType struct {
	Identifier              *IdentifierType              `xml:"http://uri.etsi.org/01903/v1.3.2# Identifier"`
	Description             string                       `xml:"http://uri.etsi.org/01903/v1.3.2# Description,omitempty"`
	DocumentationReferences *DocumentationReferencesType `xml:"http://uri.etsi.org/01903/v1.3.2# DocumentationReferences,omitempty"`
}

// NewObjectIdentifier returns an identifier for a dotted OID in the
// "urn:oid:" form.
func NewObjectIdentifier(oid string) ObjectIdentifierType {
	return ObjectIdentifierType{Identifier: &IdentifierType{Value: "urn:oid:" + oid, Qualifier: QualifierOIDAsURN}}
}

// OID returns the identifier value, or "".
func (o ObjectIdentifierType) OID() string {
	if o.Identifier == nil {
		return ""
	}
	return o.Identifier.Value
}
