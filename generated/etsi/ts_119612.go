// Package etsi provides ETSI XML structures.
// This file contains structures for ETSI TS 119 612 Trusted Lists.
//
// ETSI TS 119 612 specifies the XML format for Trusted Lists of
// Trust Service Providers in the European Union. Dates, booleans held as
// element content and base64 values are kept as strings so that the caller
// can report which value was malformed.
package etsi

import (
	"encoding/xml"

	"github.com/georgepadayatti/gotsl/generated/w3c"
)

// TS119612Namespace is the TS 119 612 namespace.
const TS119612Namespace = "http://uri.etsi.org/02231/v2#"

// XMLNamespace is the namespace bound to the xml: prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// AttributedNonEmptyURIType is a URI with optional type attribute.
type AttributedNonEmptyURIType struct {
	Value    string `xml:",chardata"`
	TypeAttr string `xml:"type,attr,omitempty"`
}

// NonEmptyURIListType contains a list of URIs.
type NonEmptyURIListType struct {
	URI []string `xml:"URI"`
}

// MultiLangNormStringType is a normalized string with language.
type MultiLangNormStringType struct {
	Value string `xml:",chardata"`
	Lang  string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
}

// MultiLangStringType is a string with language.
type MultiLangStringType struct {
	Value string `xml:",chardata"`
	Lang  string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
}

// NonEmptyMultiLangURIType is a URI with language.
type NonEmptyMultiLangURIType struct {
	Value string `xml:",chardata"`
	Lang  string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
}

// NonEmptyMultiLangURIListType contains URIs with languages.
type NonEmptyMultiLangURIListType struct {
	URI []NonEmptyMultiLangURIType `xml:"URI"`
}

// InternationalNamesType contains names in multiple languages. Name stays in
// the TS 119 612 namespace under additional types elements too.
type InternationalNamesType struct {
	Name []MultiLangNormStringType `xml:"http://uri.etsi.org/02231/v2# Name"`
}

// PostalAddressType contains postal address information.
type PostalAddressType struct {
	StreetAddress   string `xml:"StreetAddress"`
	Locality        string `xml:"Locality"`
	StateOrProvince string `xml:"StateOrProvince,omitempty"`
	PostalCode      string `xml:"PostalCode,omitempty"`
	CountryName     string `xml:"CountryName"`
	Lang            string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
}

// PostalAddressListType contains a list of postal addresses.
type PostalAddressListType struct {
	PostalAddress []PostalAddressType `xml:"PostalAddress"`
}

// ElectronicAddressType contains electronic address URIs.
type ElectronicAddressType struct {
	URI []NonEmptyMultiLangURIType `xml:"URI"`
}

// AddressType contains postal and electronic addresses.
type AddressType struct {
	PostalAddresses   *PostalAddressListType `xml:"PostalAddresses"`
	ElectronicAddress *ElectronicAddressType `xml:"ElectronicAddress"`
}

// AnyType contains wildcard content.
type AnyType struct {
	Content []byte `xml:",innerxml"`
}

// DigitalIdentityType is one digital identity. Exactly one field is set.
type DigitalIdentityType struct {
	X509Certificate string        `xml:"X509Certificate,omitempty"`
	X509SubjectName string        `xml:"X509SubjectName,omitempty"`
	KeyValue        *w3c.KeyValue `xml:"http://www.w3.org/2000/09/xmldsig# KeyValue,omitempty"`
	X509SKI         string        `xml:"X509SKI,omitempty"`
	Other           *AnyType      `xml:"Other,omitempty"`
}

// DigitalIdentityListType contains a list of digital identities.
type DigitalIdentityListType struct {
	DigitalId []DigitalIdentityType `xml:"DigitalId"`
}

// ServiceDigitalIdentityListType contains multiple service digital identities.
type ServiceDigitalIdentityListType struct {
	ServiceDigitalIdentity []DigitalIdentityListType `xml:"ServiceDigitalIdentity"`
}

// ExtensionsListType contains a list of extensions.
type ExtensionsListType struct {
	Extension []ExtensionType `xml:"Extension"`
}

// ServiceSupplyPointsType contains service supply points.
type ServiceSupplyPointsType struct {
	ServiceSupplyPoint []AttributedNonEmptyURIType `xml:"ServiceSupplyPoint"`
}

// AdditionalServiceInformationType contains additional service information.
type AdditionalServiceInformationType struct {
	URI              *NonEmptyMultiLangURIType `xml:"URI"`
	InformationValue string                    `xml:"InformationValue,omitempty"`
	OtherInformation *AnyType                  `xml:"OtherInformation,omitempty"`
}

// AdditionalServiceInformation is the element form.
type AdditionalServiceInformation struct {
	XMLName xml.Name `xml:"http://uri.etsi.org/02231/v2# AdditionalServiceInformation"`
	AdditionalServiceInformationType
}

// ExpiredCertsRevocationInfo contains the xsd:dateTime from which revocation
// information on expired certificates is kept.
type ExpiredCertsRevocationInfo struct {
	XMLName xml.Name `xml:"http://uri.etsi.org/02231/v2# ExpiredCertsRevocationInfo"`
	Value   string   `xml:",chardata"`
}

// ServiceHistoryInstanceType contains service history.
type ServiceHistoryInstanceType struct {
	ServiceTypeIdentifier        string                   `xml:"ServiceTypeIdentifier"`
	ServiceName                  *InternationalNamesType  `xml:"ServiceName"`
	ServiceDigitalIdentity       *DigitalIdentityListType `xml:"ServiceDigitalIdentity"`
	ServiceStatus                string                   `xml:"ServiceStatus"`
	StatusStartingTime           string                   `xml:"StatusStartingTime"`
	ServiceInformationExtensions *ExtensionsListType      `xml:"ServiceInformationExtensions,omitempty"`
}

// TSPServiceInformationType contains TSP service information.
type TSPServiceInformationType struct {
	ServiceTypeIdentifier        string                        `xml:"ServiceTypeIdentifier"`
	ServiceName                  *InternationalNamesType       `xml:"ServiceName"`
	ServiceDigitalIdentity       *DigitalIdentityListType      `xml:"ServiceDigitalIdentity"`
	ServiceStatus                string                        `xml:"ServiceStatus"`
	StatusStartingTime           string                        `xml:"StatusStartingTime"`
	SchemeServiceDefinitionURI   *NonEmptyMultiLangURIListType `xml:"SchemeServiceDefinitionURI,omitempty"`
	ServiceSupplyPoints          *ServiceSupplyPointsType      `xml:"ServiceSupplyPoints,omitempty"`
	TSPServiceDefinitionURI      *NonEmptyMultiLangURIListType `xml:"TSPServiceDefinitionURI,omitempty"`
	ServiceInformationExtensions *ExtensionsListType           `xml:"ServiceInformationExtensions,omitempty"`
}

// ServiceHistoryType contains service history instances.
type ServiceHistoryType struct {
	ServiceHistoryInstance []ServiceHistoryInstanceType `xml:"ServiceHistoryInstance"`
}

// TSPServiceType contains service information and history.
type TSPServiceType struct {
	ServiceInformation *TSPServiceInformationType `xml:"ServiceInformation"`
	ServiceHistory     *ServiceHistoryType        `xml:"ServiceHistory,omitempty"`
}

// TSPServicesListType contains a list of TSP services.
type TSPServicesListType struct {
	TSPService []TSPServiceType `xml:"TSPService"`
}

// TSPInformationType contains TSP information.
type TSPInformationType struct {
	TSPName                  *InternationalNamesType       `xml:"TSPName"`
	TSPTradeName             *InternationalNamesType       `xml:"TSPTradeName,omitempty"`
	TSPAddress               *AddressType                  `xml:"TSPAddress"`
	TSPInformationURI        *NonEmptyMultiLangURIListType `xml:"TSPInformationURI"`
	TSPInformationExtensions *ExtensionsListType           `xml:"TSPInformationExtensions,omitempty"`
}

// TSPType contains TSP information and services.
type TSPType struct {
	TSPInformation *TSPInformationType  `xml:"TSPInformation"`
	TSPServices    *TSPServicesListType `xml:"TSPServices"`
}

// TrustServiceProviderListType contains a list of TSPs.
type TrustServiceProviderListType struct {
	TrustServiceProvider []TSPType `xml:"TrustServiceProvider"`
}

// OtherInformationType holds one property of a pointed-to list.
type OtherInformationType struct {
	TSLType                  string                        `xml:"http://uri.etsi.org/02231/v2# TSLType,omitempty"`
	SchemeOperatorName       *InternationalNamesType       `xml:"http://uri.etsi.org/02231/v2# SchemeOperatorName,omitempty"`
	SchemeTypeCommunityRules *NonEmptyMultiLangURIListType `xml:"http://uri.etsi.org/02231/v2# SchemeTypeCommunityRules,omitempty"`
	SchemeTerritory          string                        `xml:"http://uri.etsi.org/02231/v2# SchemeTerritory,omitempty"`
	MimeType                 string                        `xml:"http://uri.etsi.org/02231/v2/additionaltypes# MimeType,omitempty"`
}

// AdditionalInformationType contains additional information.
type AdditionalInformationType struct {
	TextualInformation []MultiLangStringType  `xml:"TextualInformation,omitempty"`
	OtherInformation   []OtherInformationType `xml:"OtherInformation,omitempty"`
}

// OtherTSLPointerType points to another TSL.
type OtherTSLPointerType struct {
	ServiceDigitalIdentities *ServiceDigitalIdentityListType `xml:"ServiceDigitalIdentities,omitempty"`
	TSLLocation              string                          `xml:"TSLLocation"`
	AdditionalInformation    *AdditionalInformationType      `xml:"AdditionalInformation,omitempty"`
}

// OtherTSLPointersType contains pointers to other TSLs.
type OtherTSLPointersType struct {
	OtherTSLPointer []OtherTSLPointerType `xml:"OtherTSLPointer"`
}

// PolicyOrLegalnoticeType contains policy or legal notice.
type PolicyOrLegalnoticeType struct {
	TSLPolicy      []NonEmptyMultiLangURIType `xml:"TSLPolicy,omitempty"`
	TSLLegalNotice []MultiLangStringType      `xml:"TSLLegalNotice,omitempty"`
}

// NextUpdateType contains the next update time. An empty DateTime means the
// list is closed.
type NextUpdateType struct {
	DateTime string `xml:"dateTime,omitempty"`
}

// TSLSchemeInformationType contains TSL scheme information.
type TSLSchemeInformationType struct {
	TSLVersionIdentifier        int                           `xml:"TSLVersionIdentifier"`
	TSLSequenceNumber           int                           `xml:"TSLSequenceNumber"`
	TSLType                     string                        `xml:"TSLType"`
	SchemeOperatorName          *InternationalNamesType       `xml:"SchemeOperatorName"`
	SchemeOperatorAddress       *AddressType                  `xml:"SchemeOperatorAddress"`
	SchemeName                  *InternationalNamesType       `xml:"SchemeName"`
	SchemeInformationURI        *NonEmptyMultiLangURIListType `xml:"SchemeInformationURI"`
	StatusDeterminationApproach string                        `xml:"StatusDeterminationApproach"`
	SchemeTypeCommunityRules    *NonEmptyMultiLangURIListType `xml:"SchemeTypeCommunityRules,omitempty"`
	SchemeTerritory             string                        `xml:"SchemeTerritory,omitempty"`
	PolicyOrLegalNotice         *PolicyOrLegalnoticeType      `xml:"PolicyOrLegalNotice,omitempty"`
	HistoricalInformationPeriod int                           `xml:"HistoricalInformationPeriod"`
	PointersToOtherTSL          *OtherTSLPointersType         `xml:"PointersToOtherTSL,omitempty"`
	ListIssueDateTime           string                        `xml:"ListIssueDateTime"`
	NextUpdate                  *NextUpdateType               `xml:"NextUpdate"`
	DistributionPoints          *NonEmptyURIListType          `xml:"DistributionPoints,omitempty"`
	SchemeExtensions            *ExtensionsListType           `xml:"SchemeExtensions,omitempty"`
}

// TrustServiceStatusList is the root element of a trusted list.
type TrustServiceStatusList struct {
	XMLName                  xml.Name                      `xml:"http://uri.etsi.org/02231/v2# TrustServiceStatusList"`
	TSLTag                   string                        `xml:"TSLTag,attr"`
	ID                       string                        `xml:"Id,attr,omitempty"`
	SchemeInformation        *TSLSchemeInformationType     `xml:"SchemeInformation"`
	TrustServiceProviderList *TrustServiceProviderListType `xml:"TrustServiceProviderList,omitempty"`
	Signature                *w3c.Signature                `xml:"http://www.w3.org/2000/09/xmldsig# Signature,omitempty"`
}

// NewTrustServiceStatusList creates a new TrustServiceStatusList.
func NewTrustServiceStatusList() *TrustServiceStatusList {
	return &TrustServiceStatusList{}
}
