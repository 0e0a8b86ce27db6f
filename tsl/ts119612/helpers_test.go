package ts119612

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/georgepadayatti/gotsl/tsl"
)

// listTemplate is a minimal valid TS 119 612 v2.1.1 list with one provider
// and one CA/QC service. The placeholders are filled by renderList.
const listTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<tsl:TrustServiceStatusList xmlns:tsl="http://uri.etsi.org/02231/v2#"
    xmlns:ds="http://www.w3.org/2000/09/xmldsig#"
    xmlns:tslx="http://uri.etsi.org/02231/v2/additionaltypes#"
    xmlns:ecc="http://uri.etsi.org/TrstSvc/SvcInfoExt/eSigDir-1999-93-EC-TrustedList/#"
    xmlns:xades="http://uri.etsi.org/01903/v1.3.2#"
    TSLTag="{{TAG}}" Id="tsl-be">
  <tsl:SchemeInformation>
    <tsl:TSLVersionIdentifier>{{VERSION}}</tsl:TSLVersionIdentifier>
    <tsl:TSLSequenceNumber>{{SEQUENCE}}</tsl:TSLSequenceNumber>
    <tsl:TSLType>http://uri.etsi.org/TrstSvc/TrustedList/TSLType/EUgeneric</tsl:TSLType>
    <tsl:SchemeOperatorName><tsl:Name xml:lang="en">FPS Economy</tsl:Name></tsl:SchemeOperatorName>
    <tsl:SchemeOperatorAddress>
      <tsl:PostalAddresses>
        <tsl:PostalAddress xml:lang="en">
          <tsl:StreetAddress>Rue du Progres 50</tsl:StreetAddress>
          <tsl:Locality>Brussels</tsl:Locality>
          <tsl:PostalCode>1210</tsl:PostalCode>
          <tsl:CountryName>BE</tsl:CountryName>
        </tsl:PostalAddress>
      </tsl:PostalAddresses>
      <tsl:ElectronicAddress><tsl:URI xml:lang="en">mailto:tsl@example.be</tsl:URI></tsl:ElectronicAddress>
    </tsl:SchemeOperatorAddress>
    <tsl:SchemeName><tsl:Name xml:lang="en">BE:Trusted list</tsl:Name></tsl:SchemeName>
    <tsl:SchemeInformationURI><tsl:URI xml:lang="en">https://tsl.example.be</tsl:URI></tsl:SchemeInformationURI>
    <tsl:StatusDeterminationApproach>http://uri.etsi.org/TrstSvc/TrustedList/TSLType/StatusDetn/EUappropriate</tsl:StatusDeterminationApproach>
    <tsl:SchemeTerritory>BE</tsl:SchemeTerritory>
    <tsl:PolicyOrLegalNotice><tsl:TSLLegalNotice xml:lang="en">Legal notice</tsl:TSLLegalNotice></tsl:PolicyOrLegalNotice>
    <tsl:HistoricalInformationPeriod>65535</tsl:HistoricalInformationPeriod>
    <tsl:PointersToOtherTSL>
      <tsl:OtherTSLPointer>
        <tsl:ServiceDigitalIdentities>
          <tsl:ServiceDigitalIdentity>
            <tsl:DigitalId><tsl:X509Certificate>{{CERT}}</tsl:X509Certificate></tsl:DigitalId>
          </tsl:ServiceDigitalIdentity>
        </tsl:ServiceDigitalIdentities>
        <tsl:TSLLocation>https://ec.europa.eu/tools/lotl/eu-lotl.xml</tsl:TSLLocation>
        <tsl:AdditionalInformation>
          <tsl:OtherInformation><tsl:SchemeTerritory>EU</tsl:SchemeTerritory></tsl:OtherInformation>
          <tsl:OtherInformation><tslx:MimeType>application/vnd.etsi.tsl+xml</tslx:MimeType></tsl:OtherInformation>
        </tsl:AdditionalInformation>
      </tsl:OtherTSLPointer>
    </tsl:PointersToOtherTSL>
    <tsl:ListIssueDateTime>{{ISSUE}}</tsl:ListIssueDateTime>
    <tsl:NextUpdate>{{NEXT}}</tsl:NextUpdate>
  </tsl:SchemeInformation>
  <tsl:TrustServiceProviderList>
    <tsl:TrustServiceProvider>
      <tsl:TSPInformation>
        <tsl:TSPName><tsl:Name xml:lang="en">Example Certification Authority</tsl:Name></tsl:TSPName>
        <tsl:TSPTradeName><tsl:Name xml:lang="en">VATBE-0123456789</tsl:Name></tsl:TSPTradeName>
        <tsl:TSPInformationURI><tsl:URI xml:lang="en">https://ca.example.be</tsl:URI></tsl:TSPInformationURI>
      </tsl:TSPInformation>
      <tsl:TSPServices>
        <tsl:TSPService>
          <tsl:ServiceInformation>
            <tsl:ServiceTypeIdentifier>{{SERVICE_TYPE}}</tsl:ServiceTypeIdentifier>
            <tsl:ServiceName><tsl:Name xml:lang="en">Example Qualified CA</tsl:Name></tsl:ServiceName>
            <tsl:ServiceDigitalIdentity>
              <tsl:DigitalId><tsl:X509Certificate>{{CERT}}</tsl:X509Certificate></tsl:DigitalId>
            </tsl:ServiceDigitalIdentity>
            <tsl:ServiceStatus>http://uri.etsi.org/TrstSvc/TrustedList/Svcstatus/granted</tsl:ServiceStatus>
            <tsl:StatusStartingTime>2016-07-01T00:00:00Z</tsl:StatusStartingTime>
            {{EXTENSIONS}}
          </tsl:ServiceInformation>
          {{HISTORY}}
        </tsl:TSPService>
      </tsl:TSPServices>
    </tsl:TrustServiceProvider>
  </tsl:TrustServiceProviderList>
</tsl:TrustServiceStatusList>
`

const qualificationExtensions = `<tsl:ServiceInformationExtensions>
  <tsl:Extension Critical="true">
    <ecc:Qualifications>
      <ecc:QualificationElement>
        <ecc:Qualifiers><ecc:Qualifier uri="http://uri.etsi.org/TrstSvc/TrustedList/SvcInfoExt/QCForESig"/></ecc:Qualifiers>
        <ecc:CriteriaList assert="atLeastOne">
          <ecc:KeyUsage>
            <ecc:KeyUsageBit name="nonRepudiation">true</ecc:KeyUsageBit>
          </ecc:KeyUsage>
          <ecc:PolicySet>
            <ecc:PolicyIdentifier><xades:Identifier Qualifier="OIDAsURN">urn:oid:0.4.0.194112.1.2</xades:Identifier></ecc:PolicyIdentifier>
          </ecc:PolicySet>
          <ecc:Description>Qualified certificates for signatures</ecc:Description>
        </ecc:CriteriaList>
      </ecc:QualificationElement>
    </ecc:Qualifications>
  </tsl:Extension>
  <tsl:Extension Critical="false">
    <tsl:AdditionalServiceInformation>
      <tsl:URI xml:lang="en">http://uri.etsi.org/TrstSvc/TrustedList/SvcInfoExt/ForeSignatures</tsl:URI>
    </tsl:AdditionalServiceInformation>
  </tsl:Extension>
  <tsl:Extension Critical="false">
    <tsl:ExpiredCertsRevocationInfo>2016-07-01T00:00:00Z</tsl:ExpiredCertsRevocationInfo>
  </tsl:Extension>
</tsl:ServiceInformationExtensions>`

const serviceHistory = `<tsl:ServiceHistory>
  <tsl:ServiceHistoryInstance>
    <tsl:ServiceTypeIdentifier>http://uri.etsi.org/TrstSvc/Svctype/CA/QC</tsl:ServiceTypeIdentifier>
    <tsl:ServiceName><tsl:Name xml:lang="en">Example Qualified CA</tsl:Name></tsl:ServiceName>
    <tsl:ServiceDigitalIdentity>
      <tsl:DigitalId><tsl:X509SubjectName>CN=Example Qualified CA,C=BE</tsl:X509SubjectName></tsl:DigitalId>
    </tsl:ServiceDigitalIdentity>
    <tsl:ServiceStatus>http://uri.etsi.org/TrstSvc/TrustedList/Svcstatus/undersupervision</tsl:ServiceStatus>
    <tsl:StatusStartingTime>{{HISTORY_START}}</tsl:StatusStartingTime>
  </tsl:ServiceHistoryInstance>
</tsl:ServiceHistory>`

type listParams struct {
	tag          string
	version      string
	sequence     string
	cert         string
	issue        string
	next         string
	serviceType  string
	extensions   string
	history      string
	historyStart string
}

func defaultListParams(t *testing.T) listParams {
	t.Helper()
	return listParams{
		tag:          tsl.TSLTag119612,
		version:      "5",
		sequence:     "42",
		cert:         base64.StdEncoding.EncodeToString(newTestCA(t).cert.Raw),
		issue:        "2024-01-15T00:00:00Z",
		next:         "<tsl:dateTime>2024-07-15T00:00:00Z</tsl:dateTime>",
		serviceType:  tsl.ServiceTypeCAQC,
		historyStart: "2010-01-01T00:00:00Z",
	}
}

func renderList(p listParams) []byte {
	return []byte(strings.NewReplacer(
		"{{TAG}}", p.tag,
		"{{VERSION}}", p.version,
		"{{SEQUENCE}}", p.sequence,
		"{{CERT}}", p.cert,
		"{{ISSUE}}", p.issue,
		"{{NEXT}}", p.next,
		"{{SERVICE_TYPE}}", p.serviceType,
		"{{EXTENSIONS}}", p.extensions,
		"{{HISTORY}}", strings.ReplaceAll(p.history, "{{HISTORY_START}}", p.historyStart),
	).Replace(listTemplate))
}

type testCA struct {
	key  *rsa.PrivateKey
	cert *x509.Certificate
}

var cachedCA *testCA

// newTestCA returns a self-signed RSA certificate shared by the tests of
// this package.
func newTestCA(t *testing.T) *testCA {
	t.Helper()
	if cachedCA != nil {
		return cachedCA
	}
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Example Qualified CA", Country: []string{"BE"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("x509.CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("x509.ParseCertificate: %v", err)
	}
	cachedCA = &testCA{key: key, cert: cert}
	return cachedCA
}

func newTSL(t *testing.T) *tsl.TSLObject {
	t.Helper()
	obj, err := tsl.NewTSLObject(tsl.Specification119612, tsl.Version020101)
	if err != nil {
		t.Fatalf("NewTSLObject() error = %v", err)
	}
	return obj
}

func mustBuild(t *testing.T, b *Builder, raw []byte) *tsl.TSLObject {
	t.Helper()
	obj := newTSL(t)
	if err := b.Build(bytes.NewReader(raw), obj); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return obj
}

// assertCode fails unless err is a *tsl.Error of the given kind sentinel and code.
func assertCode(t *testing.T, err error, kind error, code tsl.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", code)
	}
	var e *tsl.Error
	if !errors.As(err, &e) {
		t.Fatalf("error = %T %v, want *tsl.Error", err, err)
	}
	if !errors.Is(err, kind) {
		t.Errorf("error kind = %s, want %v", e.Kind, kind)
	}
	if e.Code != code {
		t.Errorf("error code = %s, want %s (%v)", e.Code, code, err)
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("time.Parse(%q) error = %v", s, err)
	}
	return ts
}
