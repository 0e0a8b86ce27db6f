package ts119612

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/georgepadayatti/gotsl/generated/etsi"
	"github.com/georgepadayatti/gotsl/tsl"
)

// Builder translates between TS 119 612 XML and the tsl model.
type Builder struct {
	opts options
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: newOptions(opts)}
}

// Build parses the trusted list read from r into into. The raw bytes and
// the signature envelope are kept on into.
func (b *Builder) Build(r io.Reader, into *tsl.TSLObject) error {
	if r == nil || into == nil {
		return tsl.NewArgumentError(tsl.CodeNilValue, "reader and target must not be nil")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return tsl.NewParsingError(tsl.CodeXMLSyntax, err, "failed to read trusted list")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return tsl.NewArgumentError(tsl.CodeEmptyStream, "trusted list stream is empty")
	}

	var doc etsi.TrustServiceStatusList
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return tsl.NewParsingError(tsl.CodeXMLSyntax, err, "failed to parse trusted list XML")
	}

	into.SetRaw(raw)
	into.SetTag(strings.TrimSpace(doc.TSLTag))
	into.SetID(doc.ID)
	into.SetSignature(doc.Signature)

	if doc.SchemeInformation != nil {
		si, err := buildSchemeInformation(doc.SchemeInformation)
		if err != nil {
			return err
		}
		into.SetSchemeInformation(si)
	}

	if doc.TrustServiceProviderList != nil {
		for i := range doc.TrustServiceProviderList.TrustServiceProvider {
			p, err := buildProvider(&doc.TrustServiceProviderList.TrustServiceProvider[i])
			if err != nil {
				return err
			}
			into.AddTrustServiceProvider(p)
		}
	}

	providers, _ := into.TrustServiceProviders()
	b.opts.logger.Debug("built trusted list",
		zap.String("territory", into.SchemeTerritory()),
		zap.Int("providers", len(providers)),
		zap.Bool("signed", doc.Signature != nil))
	return nil
}

// parseDateTime parses an xsd:dateTime. Values without a zone are UTC.
func parseDateTime(element, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, tsl.NewParsingError(tsl.CodeInvalidDate, nil, "%s is empty", element)
	}
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, tsl.NewParsingError(tsl.CodeInvalidDate, nil, "%s %q is not an xsd:dateTime", element, s)
}

func decodeBase64(element, s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, tsl.NewParsingError(tsl.CodeInvalidBase64, err, "%s is not valid base64", element)
	}
	return b, nil
}

func addNames(dst *tsl.MultilingualText, src *etsi.InternationalNamesType) {
	if src == nil {
		return
	}
	for _, n := range src.Name {
		dst.Add(n.Lang, strings.TrimSpace(n.Value))
	}
}

func langURIs(src *etsi.NonEmptyMultiLangURIListType) []tsl.LangString {
	if src == nil {
		return nil
	}
	out := make([]tsl.LangString, 0, len(src.URI))
	for _, u := range src.URI {
		out = append(out, tsl.LangString{Lang: tsl.CanonicalLanguage(u.Lang), Value: strings.TrimSpace(u.Value)})
	}
	return out
}

func fillAddress(dst *tsl.Address, src *etsi.AddressType) {
	if src == nil {
		return
	}
	if src.PostalAddresses != nil {
		for _, pa := range src.PostalAddresses.PostalAddress {
			dst.AddPostalAddress(pa.Lang, tsl.NewPostalAddress(
				strings.TrimSpace(pa.StreetAddress),
				strings.TrimSpace(pa.Locality),
				strings.TrimSpace(pa.StateOrProvince),
				strings.TrimSpace(pa.PostalCode),
				strings.TrimSpace(pa.CountryName),
			))
		}
	}
	if src.ElectronicAddress != nil {
		for _, u := range src.ElectronicAddress.URI {
			dst.AddElectronicAddress(u.Lang, strings.TrimSpace(u.Value))
		}
	}
}

func buildSchemeInformation(src *etsi.TSLSchemeInformationType) (*tsl.SchemeInformation, error) {
	si := &tsl.SchemeInformation{
		VersionIdentifier:           src.TSLVersionIdentifier,
		SequenceNumber:              src.TSLSequenceNumber,
		TSLType:                     strings.TrimSpace(src.TSLType),
		SchemeInformationURIs:       langURIs(src.SchemeInformationURI),
		StatusDeterminationApproach: strings.TrimSpace(src.StatusDeterminationApproach),
		SchemeTypeCommunityRules:    langURIs(src.SchemeTypeCommunityRules),
		SchemeTerritory:             strings.TrimSpace(src.SchemeTerritory),
		HistoricalInformationPeriod: src.HistoricalInformationPeriod,
	}
	addNames(&si.SchemeOperatorName, src.SchemeOperatorName)
	addNames(&si.SchemeName, src.SchemeName)
	if src.SchemeOperatorAddress != nil {
		si.SchemeOperatorAddress = tsl.NewAddress()
		fillAddress(si.SchemeOperatorAddress, src.SchemeOperatorAddress)
	}

	if pn := src.PolicyOrLegalNotice; pn != nil {
		for _, p := range pn.TSLPolicy {
			si.Policies = append(si.Policies, tsl.LangString{Lang: tsl.CanonicalLanguage(p.Lang), Value: strings.TrimSpace(p.Value)})
		}
		for _, n := range pn.TSLLegalNotice {
			si.LegalNotices = append(si.LegalNotices, tsl.LangString{Lang: tsl.CanonicalLanguage(n.Lang), Value: strings.TrimSpace(n.Value)})
		}
	}

	if src.PointersToOtherTSL != nil {
		for i := range src.PointersToOtherTSL.OtherTSLPointer {
			p, err := buildPointer(&src.PointersToOtherTSL.OtherTSLPointer[i])
			if err != nil {
				return nil, err
			}
			si.Pointers = append(si.Pointers, p)
		}
	}

	issued, err := parseDateTime("ListIssueDateTime", src.ListIssueDateTime)
	if err != nil {
		return nil, err
	}
	si.ListIssueDateTime = issued
	if src.NextUpdate != nil && strings.TrimSpace(src.NextUpdate.DateTime) != "" {
		next, err := parseDateTime("NextUpdate", src.NextUpdate.DateTime)
		if err != nil {
			return nil, err
		}
		si.NextUpdate = &next
	}

	if src.DistributionPoints != nil {
		for _, u := range src.DistributionPoints.URI {
			si.DistributionPoints = append(si.DistributionPoints, strings.TrimSpace(u))
		}
	}

	exts, err := buildExtensions(src.SchemeExtensions, tsl.PlacementScheme)
	if err != nil {
		return nil, err
	}
	si.Extensions = exts
	return si, nil
}

func buildPointer(src *etsi.OtherTSLPointerType) (*tsl.TSLPointer, error) {
	p, err := tsl.NewTSLPointer(src.TSLLocation)
	if err != nil {
		return nil, err
	}
	if src.ServiceDigitalIdentities != nil {
		for i := range src.ServiceDigitalIdentities.ServiceDigitalIdentity {
			sdi := &tsl.ServiceDigitalIdentity{}
			if err := fillDigitalIdentity(sdi, &src.ServiceDigitalIdentities.ServiceDigitalIdentity[i]); err != nil {
				return nil, err
			}
			p.Identities = append(p.Identities, sdi)
		}
	}
	if ai := src.AdditionalInformation; ai != nil {
		for _, ti := range ai.TextualInformation {
			p.TextualInformation = append(p.TextualInformation, tsl.LangString{Lang: tsl.CanonicalLanguage(ti.Lang), Value: strings.TrimSpace(ti.Value)})
		}
		for _, oi := range ai.OtherInformation {
			if v := strings.TrimSpace(oi.TSLType); v != "" {
				p.TSLType = v
			}
			if v := strings.TrimSpace(oi.SchemeTerritory); v != "" {
				p.SchemeTerritory = v
			}
			if v := strings.TrimSpace(oi.MimeType); v != "" {
				p.MimeType = v
			}
			addNames(&p.SchemeOperatorName, oi.SchemeOperatorName)
			p.SchemeTypeCommunityRules = append(p.SchemeTypeCommunityRules, langURIs(oi.SchemeTypeCommunityRules)...)
		}
	}
	return p, nil
}

func fillDigitalIdentity(dst *tsl.ServiceDigitalIdentity, src *etsi.DigitalIdentityListType) error {
	if src == nil {
		return nil
	}
	for _, id := range src.DigitalId {
		switch {
		case strings.TrimSpace(id.X509Certificate) != "":
			der, err := decodeBase64("X509Certificate", id.X509Certificate)
			if err != nil {
				return err
			}
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				return tsl.NewParsingError(tsl.CodeInvalidCertificate, err, "X509Certificate is not a valid certificate")
			}
			dst.Add(tsl.NewCertificateID(cert))
		case strings.TrimSpace(id.X509SubjectName) != "":
			dst.Add(tsl.NewSubjectNameID(strings.TrimSpace(id.X509SubjectName)))
		case id.KeyValue != nil:
			pub, err := id.KeyValue.PublicKey()
			if err != nil {
				return tsl.NewParsingError(tsl.CodeInvalidKeyValue, err, "KeyValue cannot be decoded")
			}
			dst.Add(tsl.NewKeyValueID(pub))
		case strings.TrimSpace(id.X509SKI) != "":
			ski, err := decodeBase64("X509SKI", id.X509SKI)
			if err != nil {
				return err
			}
			dst.Add(tsl.NewSKIID(ski))
		case id.Other != nil:
			dst.Add(tsl.NewOtherID(id.Other.Content))
		}
	}
	return nil
}

func buildProvider(src *etsi.TSPType) (*tsl.TrustServiceProvider, error) {
	info := &tsl.TSPInformation{}
	if ti := src.TSPInformation; ti != nil {
		addNames(info.Name(), ti.TSPName)
		addNames(info.TradeName(), ti.TSPTradeName)
		if ti.TSPAddress != nil {
			fillAddress(info.Address(), ti.TSPAddress)
		}
		for _, u := range langURIs(ti.TSPInformationURI) {
			info.AddInformationURI(u.Lang, u.Value)
		}
		exts, err := buildExtensions(ti.TSPInformationExtensions, tsl.PlacementTSPInformation)
		if err != nil {
			return nil, err
		}
		for _, e := range exts {
			info.AddExtension(e)
		}
	}

	p := tsl.NewTrustServiceProvider(info)
	if src.TSPServices == nil {
		return p, nil
	}
	for i := range src.TSPServices.TSPService {
		svc, err := buildService(&src.TSPServices.TSPService[i])
		if err != nil {
			return nil, err
		}
		p.AddTSPService(svc)
	}
	return p, nil
}

func buildService(src *etsi.TSPServiceType) (*tsl.TSPService, error) {
	var info *tsl.ServiceInformation
	if si := src.ServiceInformation; si != nil {
		info = &tsl.ServiceInformation{}
		err := fillHistoryInstance(&info.ServiceHistoryInstance, &etsi.ServiceHistoryInstanceType{
			ServiceTypeIdentifier:        si.ServiceTypeIdentifier,
			ServiceName:                  si.ServiceName,
			ServiceDigitalIdentity:       si.ServiceDigitalIdentity,
			ServiceStatus:                si.ServiceStatus,
			StatusStartingTime:           si.StatusStartingTime,
			ServiceInformationExtensions: si.ServiceInformationExtensions,
		})
		if err != nil {
			return nil, err
		}
		for _, u := range langURIs(si.SchemeServiceDefinitionURI) {
			info.AddSchemeServiceDefinitionURI(u.Lang, u.Value)
		}
		for _, u := range langURIs(si.TSPServiceDefinitionURI) {
			info.AddTSPServiceDefinitionURI(u.Lang, u.Value)
		}
		if si.ServiceSupplyPoints != nil {
			for _, sp := range si.ServiceSupplyPoints.ServiceSupplyPoint {
				info.AddSupplyPoint(tsl.SupplyPoint{URI: strings.TrimSpace(sp.Value), Type: sp.TypeAttr})
			}
		}
	}

	svc := tsl.NewTSPService(info)
	if src.ServiceHistory == nil {
		return svc, nil
	}
	for i := range src.ServiceHistory.ServiceHistoryInstance {
		shi := &tsl.ServiceHistoryInstance{}
		if err := fillHistoryInstance(shi, &src.ServiceHistory.ServiceHistoryInstance[i]); err != nil {
			return nil, err
		}
		svc.AddHistoryInstance(shi)
	}
	return svc, nil
}

func fillHistoryInstance(dst *tsl.ServiceHistoryInstance, src *etsi.ServiceHistoryInstanceType) error {
	dst.SetServiceTypeIdentifier(strings.TrimSpace(src.ServiceTypeIdentifier))
	dst.SetServiceStatus(strings.TrimSpace(src.ServiceStatus))
	addNames(dst.ServiceName(), src.ServiceName)

	start, err := parseDateTime("StatusStartingTime", src.StatusStartingTime)
	if err != nil {
		return err
	}
	dst.SetStatusStartingTime(start)

	if err := fillDigitalIdentity(dst.DigitalIdentity(), src.ServiceDigitalIdentity); err != nil {
		return err
	}

	exts, err := buildExtensions(src.ServiceInformationExtensions, tsl.PlacementServiceInformation)
	if err != nil {
		return err
	}
	for _, e := range exts {
		dst.AddExtension(e)
	}
	return nil
}

// buildExtensions turns every child of every Extension into a model
// extension carrying the Extension's criticality. An empty critical
// Extension cannot be honoured and is a parsing error; an empty non-critical
// one is skipped.
func buildExtensions(src *etsi.ExtensionsListType, placement tsl.Placement) (tsl.Extensions, error) {
	if src == nil {
		return nil, nil
	}
	var out tsl.Extensions
	for _, ext := range src.Extension {
		if len(ext.Items) == 0 && ext.Critical {
			return nil, tsl.NewParsingError(tsl.CodeEmptyExtension, nil, "critical Extension has no content")
		}
		for _, item := range ext.Items {
			e, err := buildExtension(ext.Critical, placement, item)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func buildExtension(critical bool, placement tsl.Placement, item etsi.ExtensionItem) (tsl.Extension, error) {
	switch {
	case item.AdditionalServiceInformation != nil:
		src := item.AdditionalServiceInformation
		var uri, lang string
		if src.URI != nil {
			uri, lang = src.URI.Value, src.URI.Lang
		}
		e := tsl.NewAdditionalServiceInformation(critical, placement, uri)
		e.SetLang(tsl.CanonicalLanguage(lang))
		e.SetInformationValue(strings.TrimSpace(src.InformationValue))
		if src.OtherInformation != nil {
			e.SetOtherInformation(src.OtherInformation.Content)
		}
		return e, nil

	case item.ExpiredCertsRevocationInfo != nil:
		date, err := parseDateTime("ExpiredCertsRevocationInfo", item.ExpiredCertsRevocationInfo.Value)
		if err != nil {
			return nil, err
		}
		return tsl.NewExpiredCertsRevocationInfo(critical, placement, date), nil

	case item.Qualifications != nil:
		e := tsl.NewQualifications(critical, placement)
		for i := range item.Qualifications.QualificationElement {
			qe, err := buildQualificationElement(&item.Qualifications.QualificationElement[i])
			if err != nil {
				return nil, err
			}
			e.AddElement(qe)
		}
		return e, nil

	case item.TakenOverBy != nil:
		src := item.TakenOverBy
		var uri string
		if src.URI != nil {
			uri = src.URI.Value
		}
		e := tsl.NewTakenOverBy(critical, placement, uri)
		addNames(e.TSPName(), src.TSPName)
		addNames(e.SchemeOperatorName(), src.SchemeOperatorName)
		e.SetSchemeTerritory(src.SchemeTerritory)
		for _, q := range src.OtherQualifier {
			e.AddOtherQualifier(q.Content)
		}
		return e, nil

	case item.Other != nil:
		return tsl.NewUnknownExtension(critical, placement, item.Other.XMLName.Space, item.Other.XMLName.Local, item.Other.Content), nil

	default:
		return nil, tsl.NewParsingError(tsl.CodeUnhandledVariant, nil, "extension item has no content")
	}
}

func buildQualificationElement(src *etsi.QualificationElementType) (*tsl.QualificationElement, error) {
	var criteria *tsl.CriteriaList
	if src.CriteriaList != nil {
		cl, err := buildCriteriaList(src.CriteriaList)
		if err != nil {
			return nil, err
		}
		criteria = cl
	}
	var qualifiers []string
	if src.Qualifiers != nil {
		for _, q := range src.Qualifiers.Qualifier {
			qualifiers = append(qualifiers, strings.TrimSpace(q.URI))
		}
	}
	return tsl.NewQualificationElement(criteria, qualifiers...), nil
}

func objectIdentifiers(src []etsi.ObjectIdentifierType) []string {
	oids := make([]string, 0, len(src))
	for _, o := range src {
		if v := o.OID(); v != "" {
			oids = append(oids, v)
		}
	}
	return oids
}

func buildCriteriaList(src *etsi.CriteriaListType) (*tsl.CriteriaList, error) {
	assert := tsl.Assert(strings.TrimSpace(string(src.Assert)))
	if assert == "" {
		assert = tsl.AssertAll
	}
	cl := tsl.NewCriteriaList(assert)
	cl.SetDescription(strings.TrimSpace(src.Description))

	for _, ku := range src.KeyUsage {
		k := tsl.NewKeyUsage()
		for _, bit := range ku.KeyUsageBit {
			v, err := strconv.ParseBool(strings.TrimSpace(bit.Value))
			if err != nil {
				return nil, tsl.NewParsingError(tsl.CodeInvalidValue, err, "KeyUsageBit %q has a non-boolean value %q", bit.Name, bit.Value)
			}
			k.AddBit(strings.TrimSpace(bit.Name), v)
		}
		cl.AddKeyUsage(k)
	}
	for _, ps := range src.PolicySet {
		cl.AddPolicySet(tsl.NewPolicySet(objectIdentifiers(ps.PolicyIdentifier)...))
	}
	for i := range src.CriteriaList {
		nested, err := buildCriteriaList(&src.CriteriaList[i])
		if err != nil {
			return nil, err
		}
		cl.AddCriteriaList(nested)
	}
	if src.OtherCriteriaList != nil {
		for _, item := range src.OtherCriteriaList.Items {
			switch {
			case item.CertSubjectDNAttribute != nil:
				cl.AddOtherCriteria(tsl.NewCertSubjectDNAttribute(objectIdentifiers(item.CertSubjectDNAttribute.AttributeOID)...))
			case item.ExtendedKeyUsage != nil:
				cl.AddOtherCriteria(tsl.NewExtendedKeyUsage(objectIdentifiers(item.ExtendedKeyUsage.KeyPurposeId)...))
			case item.Other != nil:
				cl.AddOtherCriteria(tsl.NewUnknownCriteria(item.Other.XMLName.Space, item.Other.XMLName.Local, item.Other.Content))
			}
		}
	}
	return cl, nil
}
