package tsl

// Specifications and versions with a registered rule set.
const (
	Specification119612 = "119612"
	Version020101       = "2.1.1"

	// version020101Alias is the zero-padded form some callers use for 2.1.1.
	version020101Alias = "020101"
)

// URI bases for ETSI trust service identifiers.
const (
	TrstSvcURIBase     = "http://uri.etsi.org/TrstSvc"
	TrustedListURIBase = TrstSvcURIBase + "/TrustedList"
	SvcInfoExtURIBase  = TrustedListURIBase + "/SvcInfoExt"
	SvcTypeURIBase     = TrstSvcURIBase + "/Svctype"
	SvcStatusURIBase   = TrustedListURIBase + "/Svcstatus"

	TSLTag119612   = "http://uri.etsi.org/19612/TSLTag"
	TSLMimeType    = "application/vnd.etsi.tsl+xml"
	TSLVersion5    = 5
	TSLTypeEUGen   = TrustedListURIBase + "/TSLType/EUgeneric"
	TSLTypeEULOTL  = TrustedListURIBase + "/TSLType/EUlistofthelists"
	StatusDetnEUAp = TrustedListURIBase + "/TSLType/StatusDetn/EUappropriate"
)

// Service type identifiers.
const (
	ServiceTypeCAQC           = SvcTypeURIBase + "/CA/QC"
	ServiceTypeCAPKC          = SvcTypeURIBase + "/CA/PKC"
	ServiceTypeNationalRootCA = SvcTypeURIBase + "/NationalRootCA-QC"
	ServiceTypeOCSP           = SvcTypeURIBase + "/Certstatus/OCSP"
	ServiceTypeOCSPQC         = SvcTypeURIBase + "/Certstatus/OCSP/QC"
	ServiceTypeCRL            = SvcTypeURIBase + "/Certstatus/CRL"
	ServiceTypeCRLQC          = SvcTypeURIBase + "/Certstatus/CRL/QC"
	ServiceTypeTSAQTST        = SvcTypeURIBase + "/TSA/QTST"
)

// Service status identifiers.
const (
	StatusGranted            = SvcStatusURIBase + "/granted"
	StatusWithdrawn          = SvcStatusURIBase + "/withdrawn"
	StatusRecognisedAtNation = SvcStatusURIBase + "/recognisedatnationallevel"
	StatusDeprecatedAtNation = SvcStatusURIBase + "/deprecatedatnationallevel"
)

// AdditionalServiceInformation URIs accepted by ETSI TS 119 612 v2.1.1.
const (
	AdditionalInfoRootCAQC                 = SvcInfoExtURIBase + "/RootCA-QC"
	AdditionalInfoForESignatures           = SvcInfoExtURIBase + "/ForeSignatures"
	AdditionalInfoForESeals                = SvcInfoExtURIBase + "/ForeSeals"
	AdditionalInfoForWebSiteAuthentication = SvcInfoExtURIBase + "/ForWebSiteAuthentication"
)

// Qualifier URIs, ETSI TS 119 612 clause 5.5.9.2.
const (
	QualifierQCWithSSCD            = SvcInfoExtURIBase + "/QCWithSSCD"
	QualifierQCNoSSCD              = SvcInfoExtURIBase + "/QCNoSSCD"
	QualifierQCStatusAsInCert      = SvcInfoExtURIBase + "/QCSSCDStatusAsInCert"
	QualifierQCWithQSCD            = SvcInfoExtURIBase + "/QCWithQSCD"
	QualifierQCNoQSCD              = SvcInfoExtURIBase + "/QCNoQSCD"
	QualifierQCQSCDStatusAsInCert  = SvcInfoExtURIBase + "/QCQSCDStatusAsInCert"
	QualifierQCQSCDManagedOnBehalf = SvcInfoExtURIBase + "/QCQSCDManagedOnBehalf"
	QualifierQCForLegalPerson      = SvcInfoExtURIBase + "/QCForLegalPerson"
	QualifierQCForESig             = SvcInfoExtURIBase + "/QCForESig"
	QualifierQCForESeal            = SvcInfoExtURIBase + "/QCForESeal"
	QualifierQCForWSA              = SvcInfoExtURIBase + "/QCForWSA"
	QualifierNotQualified          = SvcInfoExtURIBase + "/NotQualified"
	QualifierQCStatement           = SvcInfoExtURIBase + "/QCStatement"
)

var legalQualifiers = map[string]bool{
	QualifierQCWithSSCD:            true,
	QualifierQCNoSSCD:              true,
	QualifierQCStatusAsInCert:      true,
	QualifierQCWithQSCD:            true,
	QualifierQCNoQSCD:              true,
	QualifierQCQSCDStatusAsInCert:  true,
	QualifierQCQSCDManagedOnBehalf: true,
	QualifierQCForLegalPerson:      true,
	QualifierQCForESig:             true,
	QualifierQCForESeal:            true,
	QualifierQCForWSA:              true,
	QualifierNotQualified:          true,
	QualifierQCStatement:           true,
}

// IsLegalQualifier reports whether uri is one of the 13 qualifier URIs.
func IsLegalQualifier(uri string) bool {
	return legalQualifiers[uri]
}

var legalAdditionalInfo = map[string]bool{
	AdditionalInfoRootCAQC:                 true,
	AdditionalInfoForESignatures:           true,
	AdditionalInfoForESeals:                true,
	AdditionalInfoForWebSiteAuthentication: true,
}

// ExpiredCertsRevocationInfo is only meaningful on services that issue or
// report on certificates.
var expiredCertsServiceTypes = map[string]bool{
	ServiceTypeCAPKC:          true,
	ServiceTypeCAQC:           true,
	ServiceTypeNationalRootCA: true,
	ServiceTypeOCSP:           true,
	ServiceTypeOCSPQC:         true,
	ServiceTypeCRL:            true,
	ServiceTypeCRLQC:          true,
}

// NormalizeVersion maps accepted aliases of a specification version onto the
// canonical form used by the dispatcher.
func NormalizeVersion(version string) string {
	if version == version020101Alias {
		return Version020101
	}
	return version
}
