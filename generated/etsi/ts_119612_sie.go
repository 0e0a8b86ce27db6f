// Package etsi provides ETSI XML structures.
// This file contains Service Information Extension types for ETSI TS 119 612.
package etsi

import (
	"encoding/xml"
)

// SIENamespace is the Service Information Extension namespace.
const SIENamespace = "http://uri.etsi.org/TrstSvc/SvcInfoExt/eSigDir-1999-93-EC-TrustedList/#"

// CriteriaListAssert specifies how criteria should be evaluated.
type CriteriaListAssert string

const (
	CriteriaListAssertAll        CriteriaListAssert = "all"
	CriteriaListAssertAtLeastOne CriteriaListAssert = "atLeastOne"
	CriteriaListAssertNone       CriteriaListAssert = "none"
)

// SIEQualifierType contains a qualifier URI.
type SIEQualifierType struct {
	URI string `xml:"uri,attr"`
}

// SIEQualifiersType contains a list of qualifiers.
type SIEQualifiersType struct {
	Qualifier []SIEQualifierType `xml:"Qualifier"`
}

// KeyUsageBitType represents a single key usage bit. Value holds the
// xsd:boolean content as written.
type KeyUsageBitType struct {
	Value string `xml:",chardata"`
	Name  string `xml:"name,attr"`
}

// KeyUsageTypeList contains key usage bits.
type KeyUsageTypeList struct {
	KeyUsageBit []KeyUsageBitType `xml:"KeyUsageBit"`
}

// PoliciesListType contains a list of policy identifiers.
type PoliciesListType struct {
	PolicyIdentifier []ObjectIdentifierType `xml:"PolicyIdentifier"`
}

// CriteriaListType contains criteria for qualification.
type CriteriaListType struct {
	Assert            CriteriaListAssert     `xml:"assert,attr,omitempty"`
	KeyUsage          []KeyUsageTypeList     `xml:"KeyUsage,omitempty"`
	PolicySet         []PoliciesListType     `xml:"PolicySet,omitempty"`
	CriteriaList      []CriteriaListType     `xml:"CriteriaList,omitempty"`
	Description       string                 `xml:"Description,omitempty"`
	OtherCriteriaList *OtherCriteriaListType `xml:"otherCriteriaList,omitempty"`
}

// QualificationElementType contains a qualification element.
type QualificationElementType struct {
	Qualifiers   *SIEQualifiersType `xml:"Qualifiers"`
	CriteriaList *CriteriaListType  `xml:"CriteriaList"`
}

// QualificationsType contains qualification elements.
type QualificationsType struct {
	QualificationElement []QualificationElementType `xml:"QualificationElement"`
}

// Qualifications is the element form of QualificationsType.
type Qualifications struct {
	XMLName xml.Name `xml:"http://uri.etsi.org/TrstSvc/SvcInfoExt/eSigDir-1999-93-EC-TrustedList/# Qualifications"`
	QualificationsType
}
