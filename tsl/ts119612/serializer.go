package ts119612

import (
	"encoding/base64"
	"encoding/xml"
	"sort"
	"strconv"
	"time"

	"github.com/georgepadayatti/gotsl/generated/etsi"
	"github.com/georgepadayatti/gotsl/generated/w3c"
	"github.com/georgepadayatti/gotsl/tsl"
)

// BuildXML serializes t as an unsigned TS 119 612 document. A signature held
// by t is not carried over; sign the output with xmlsig.Signer.
func (b *Builder) BuildXML(t *tsl.TSLObject) ([]byte, error) {
	if t == nil {
		return nil, tsl.NewArgumentError(tsl.CodeNilValue, "trusted list is nil")
	}

	doc := etsi.NewTrustServiceStatusList()
	doc.TSLTag = t.Tag()
	doc.ID = t.ID()

	if si := t.SchemeInformation(); si != nil {
		esi, err := schemeInformationXML(si)
		if err != nil {
			return nil, err
		}
		doc.SchemeInformation = esi
	}

	if providers, ok := t.TrustServiceProviders(); ok {
		list := &etsi.TrustServiceProviderListType{}
		for _, p := range providers {
			ep, err := providerXML(p)
			if err != nil {
				return nil, err
			}
			list.TrustServiceProvider = append(list.TrustServiceProvider, ep)
		}
		doc.TrustServiceProviderList = list
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, tsl.NewEncodingError(tsl.CodeXMLMarshal, err, "failed to marshal trusted list")
	}
	return append([]byte(xml.Header), out...), nil
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func namesXML(m *tsl.MultilingualText) *etsi.InternationalNamesType {
	if m.IsEmpty() {
		return nil
	}
	names := &etsi.InternationalNamesType{}
	for _, lang := range m.Languages() {
		v, _ := m.Get(lang)
		names.Name = append(names.Name, etsi.MultiLangNormStringType{Value: v, Lang: lang})
	}
	return names
}

func langURIsXML(list []tsl.LangString) *etsi.NonEmptyMultiLangURIListType {
	if len(list) == 0 {
		return nil
	}
	out := &etsi.NonEmptyMultiLangURIListType{}
	for _, u := range list {
		out.URI = append(out.URI, etsi.NonEmptyMultiLangURIType{Value: u.Value, Lang: u.Lang})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func addressXML(a *tsl.Address) *etsi.AddressType {
	if !a.IsThereSomePostalAddress() && !a.IsThereSomeElectronicAddress() {
		return nil
	}
	out := &etsi.AddressType{}
	if a.IsThereSomePostalAddress() {
		postal := a.AllPostalAddresses()
		out.PostalAddresses = &etsi.PostalAddressListType{}
		for _, lang := range sortedKeys(postal) {
			for _, pa := range postal[lang] {
				out.PostalAddresses.PostalAddress = append(out.PostalAddresses.PostalAddress, etsi.PostalAddressType{
					StreetAddress:   pa.Street(),
					Locality:        pa.Locality(),
					StateOrProvince: pa.StateOrProvince(),
					PostalCode:      pa.PostalCode(),
					CountryName:     pa.CountryName(),
					Lang:            lang,
				})
			}
		}
	}
	if a.IsThereSomeElectronicAddress() {
		electronic := a.AllElectronicAddresses()
		out.ElectronicAddress = &etsi.ElectronicAddressType{}
		for _, lang := range sortedKeys(electronic) {
			for _, uri := range electronic[lang] {
				out.ElectronicAddress.URI = append(out.ElectronicAddress.URI, etsi.NonEmptyMultiLangURIType{Value: uri, Lang: lang})
			}
		}
	}
	return out
}

func schemeInformationXML(si *tsl.SchemeInformation) (*etsi.TSLSchemeInformationType, error) {
	out := &etsi.TSLSchemeInformationType{
		TSLVersionIdentifier:        si.VersionIdentifier,
		TSLSequenceNumber:           si.SequenceNumber,
		TSLType:                     si.TSLType,
		SchemeOperatorName:          namesXML(&si.SchemeOperatorName),
		SchemeOperatorAddress:       addressXML(si.SchemeOperatorAddress),
		SchemeName:                  namesXML(&si.SchemeName),
		SchemeInformationURI:        langURIsXML(si.SchemeInformationURIs),
		StatusDeterminationApproach: si.StatusDeterminationApproach,
		SchemeTypeCommunityRules:    langURIsXML(si.SchemeTypeCommunityRules),
		SchemeTerritory:             si.SchemeTerritory,
		HistoricalInformationPeriod: si.HistoricalInformationPeriod,
		ListIssueDateTime:           formatDateTime(si.ListIssueDateTime),
		NextUpdate:                  &etsi.NextUpdateType{},
	}
	if si.NextUpdate != nil {
		out.NextUpdate.DateTime = formatDateTime(*si.NextUpdate)
	}

	if len(si.Policies) > 0 || len(si.LegalNotices) > 0 {
		pn := &etsi.PolicyOrLegalnoticeType{}
		for _, p := range si.Policies {
			pn.TSLPolicy = append(pn.TSLPolicy, etsi.NonEmptyMultiLangURIType{Value: p.Value, Lang: p.Lang})
		}
		for _, n := range si.LegalNotices {
			pn.TSLLegalNotice = append(pn.TSLLegalNotice, etsi.MultiLangStringType{Value: n.Value, Lang: n.Lang})
		}
		out.PolicyOrLegalNotice = pn
	}

	if si.IsThereSomePointer() {
		out.PointersToOtherTSL = &etsi.OtherTSLPointersType{}
		for _, p := range si.Pointers {
			ep, err := pointerXML(p)
			if err != nil {
				return nil, err
			}
			out.PointersToOtherTSL.OtherTSLPointer = append(out.PointersToOtherTSL.OtherTSLPointer, ep)
		}
	}

	if len(si.DistributionPoints) > 0 {
		out.DistributionPoints = &etsi.NonEmptyURIListType{URI: si.DistributionPoints}
	}

	exts, err := extensionsXML(si.Extensions)
	if err != nil {
		return nil, err
	}
	out.SchemeExtensions = exts
	return out, nil
}

func pointerXML(p *tsl.TSLPointer) (etsi.OtherTSLPointerType, error) {
	out := etsi.OtherTSLPointerType{TSLLocation: p.Location()}
	if len(p.Identities) > 0 {
		out.ServiceDigitalIdentities = &etsi.ServiceDigitalIdentityListType{}
		for _, sdi := range p.Identities {
			ids, err := digitalIdentityXML(sdi)
			if err != nil {
				return out, err
			}
			if ids == nil {
				ids = &etsi.DigitalIdentityListType{}
			}
			out.ServiceDigitalIdentities.ServiceDigitalIdentity = append(out.ServiceDigitalIdentities.ServiceDigitalIdentity, *ids)
		}
	}

	ai := &etsi.AdditionalInformationType{}
	for _, ti := range p.TextualInformation {
		ai.TextualInformation = append(ai.TextualInformation, etsi.MultiLangStringType{Value: ti.Value, Lang: ti.Lang})
	}
	if p.TSLType != "" {
		ai.OtherInformation = append(ai.OtherInformation, etsi.OtherInformationType{TSLType: p.TSLType})
	}
	if names := namesXML(&p.SchemeOperatorName); names != nil {
		ai.OtherInformation = append(ai.OtherInformation, etsi.OtherInformationType{SchemeOperatorName: names})
	}
	if rules := langURIsXML(p.SchemeTypeCommunityRules); rules != nil {
		ai.OtherInformation = append(ai.OtherInformation, etsi.OtherInformationType{SchemeTypeCommunityRules: rules})
	}
	if p.SchemeTerritory != "" {
		ai.OtherInformation = append(ai.OtherInformation, etsi.OtherInformationType{SchemeTerritory: p.SchemeTerritory})
	}
	if p.MimeType != "" {
		ai.OtherInformation = append(ai.OtherInformation, etsi.OtherInformationType{MimeType: p.MimeType})
	}
	if len(ai.TextualInformation) > 0 || len(ai.OtherInformation) > 0 {
		out.AdditionalInformation = ai
	}
	return out, nil
}

func digitalIdentityXML(sdi *tsl.ServiceDigitalIdentity) (*etsi.DigitalIdentityListType, error) {
	ids, ok := sdi.IDs()
	if !ok {
		return nil, nil
	}
	out := &etsi.DigitalIdentityListType{}
	for _, id := range ids {
		var did etsi.DigitalIdentityType
		switch id.Kind() {
		case tsl.DigitalIDX509Certificate:
			did.X509Certificate = base64.StdEncoding.EncodeToString(id.Certificate().Raw)
		case tsl.DigitalIDX509SubjectName:
			did.X509SubjectName = id.SubjectName()
		case tsl.DigitalIDKeyValue:
			kv, err := w3c.NewKeyValue(id.PublicKey())
			if err != nil {
				return nil, tsl.NewEncodingError(tsl.CodeXMLMarshal, err, "KeyValue cannot be encoded")
			}
			did.KeyValue = kv
		case tsl.DigitalIDX509SKI:
			did.X509SKI = base64.StdEncoding.EncodeToString(id.SKI())
		case tsl.DigitalIDOther:
			did.Other = &etsi.AnyType{Content: id.Other()}
		default:
			return nil, tsl.NewEncodingError(tsl.CodeUnhandledVariant, nil, "unhandled digital identity kind %s", id.Kind())
		}
		out.DigitalId = append(out.DigitalId, did)
	}
	return out, nil
}

func providerXML(p *tsl.TrustServiceProvider) (etsi.TSPType, error) {
	info := p.Information()
	ti := &etsi.TSPInformationType{
		TSPName:           namesXML(info.Name()),
		TSPTradeName:      namesXML(info.TradeName()),
		TSPAddress:        addressXML(info.Address()),
		TSPInformationURI: langURIsXML(info.InformationURIs()),
	}
	if exts, ok := info.Extensions(); ok {
		list, err := extensionsXML(exts)
		if err != nil {
			return etsi.TSPType{}, err
		}
		ti.TSPInformationExtensions = list
	}

	out := etsi.TSPType{TSPInformation: ti}
	services, ok := p.AllTSPServices()
	if !ok {
		return out, nil
	}
	out.TSPServices = &etsi.TSPServicesListType{}
	for _, s := range services {
		es, err := serviceXML(s)
		if err != nil {
			return out, err
		}
		out.TSPServices.TSPService = append(out.TSPServices.TSPService, es)
	}
	return out, nil
}

func serviceXML(s *tsl.TSPService) (etsi.TSPServiceType, error) {
	var out etsi.TSPServiceType
	if info := s.Information(); info != nil {
		shi, err := historyInstanceXML(&info.ServiceHistoryInstance)
		if err != nil {
			return out, err
		}
		si := &etsi.TSPServiceInformationType{
			ServiceTypeIdentifier:        shi.ServiceTypeIdentifier,
			ServiceName:                  shi.ServiceName,
			ServiceDigitalIdentity:       shi.ServiceDigitalIdentity,
			ServiceStatus:                shi.ServiceStatus,
			StatusStartingTime:           shi.StatusStartingTime,
			SchemeServiceDefinitionURI:   langURIsXML(info.SchemeServiceDefinitionURIs()),
			TSPServiceDefinitionURI:      langURIsXML(info.TSPServiceDefinitionURIs()),
			ServiceInformationExtensions: shi.ServiceInformationExtensions,
		}
		if sps := info.SupplyPoints(); len(sps) > 0 {
			si.ServiceSupplyPoints = &etsi.ServiceSupplyPointsType{}
			for _, sp := range sps {
				si.ServiceSupplyPoints.ServiceSupplyPoint = append(si.ServiceSupplyPoints.ServiceSupplyPoint, etsi.AttributedNonEmptyURIType{Value: sp.URI, TypeAttr: sp.Type})
			}
		}
		out.ServiceInformation = si
	}

	history, ok := s.History()
	if !ok {
		return out, nil
	}
	out.ServiceHistory = &etsi.ServiceHistoryType{}
	for _, h := range history {
		eh, err := historyInstanceXML(h)
		if err != nil {
			return out, err
		}
		out.ServiceHistory.ServiceHistoryInstance = append(out.ServiceHistory.ServiceHistoryInstance, *eh)
	}
	return out, nil
}

func historyInstanceXML(h *tsl.ServiceHistoryInstance) (*etsi.ServiceHistoryInstanceType, error) {
	ids, err := digitalIdentityXML(h.DigitalIdentity())
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = &etsi.DigitalIdentityListType{}
	}
	out := &etsi.ServiceHistoryInstanceType{
		ServiceTypeIdentifier:  h.ServiceTypeIdentifier(),
		ServiceName:            namesXML(h.ServiceName()),
		ServiceDigitalIdentity: ids,
		ServiceStatus:          h.ServiceStatus(),
		StatusStartingTime:     formatDateTime(h.StatusStartingTime()),
	}
	if exts, ok := h.Extensions(); ok {
		list, err := extensionsXML(exts)
		if err != nil {
			return nil, err
		}
		out.ServiceInformationExtensions = list
	}
	return out, nil
}

// extensionsXML writes one Extension element per model extension.
func extensionsXML(exts tsl.Extensions) (*etsi.ExtensionsListType, error) {
	if len(exts) == 0 {
		return nil, nil
	}
	out := &etsi.ExtensionsListType{}
	for _, e := range exts {
		item, err := extensionItemXML(e)
		if err != nil {
			return nil, err
		}
		out.Extension = append(out.Extension, etsi.ExtensionType{Critical: e.Critical(), Items: []etsi.ExtensionItem{item}})
	}
	return out, nil
}

func extensionItemXML(e tsl.Extension) (etsi.ExtensionItem, error) {
	var item etsi.ExtensionItem
	switch e := e.(type) {
	case *tsl.AdditionalServiceInformation:
		asi := &etsi.AdditionalServiceInformation{}
		asi.URI = &etsi.NonEmptyMultiLangURIType{Value: e.URI(), Lang: e.Lang()}
		asi.InformationValue = e.InformationValue()
		if raw := e.OtherInformation(); len(raw) > 0 {
			asi.OtherInformation = &etsi.AnyType{Content: raw}
		}
		item.AdditionalServiceInformation = asi
	case *tsl.ExpiredCertsRevocationInfo:
		item.ExpiredCertsRevocationInfo = &etsi.ExpiredCertsRevocationInfo{Value: formatDateTime(e.Date())}
	case *tsl.Qualifications:
		q := &etsi.Qualifications{}
		elements, _ := e.Elements()
		for _, qe := range elements {
			q.QualificationElement = append(q.QualificationElement, qualificationElementXML(qe))
		}
		item.Qualifications = q
	case *tsl.TakenOverBy:
		tob := &etsi.TakenOverBy{}
		tob.URI = &etsi.NonEmptyMultiLangURIType{Value: e.URI(), Lang: tsl.PreferredLanguage}
		tob.TSPName = namesXML(e.TSPName())
		tob.SchemeOperatorName = namesXML(e.SchemeOperatorName())
		tob.SchemeTerritory = e.SchemeTerritory()
		for _, raw := range e.OtherQualifiers() {
			tob.OtherQualifier = append(tob.OtherQualifier, etsi.AnyType{Content: raw})
		}
		item.TakenOverBy = tob
	case *tsl.UnknownExtension:
		item.Other = &etsi.AnyElement{XMLName: xml.Name{Space: e.Namespace(), Local: e.Name()}, Content: e.Raw()}
	default:
		return item, tsl.NewEncodingError(tsl.CodeUnhandledVariant, nil, "unhandled extension %T", e)
	}
	return item, nil
}

func qualificationElementXML(qe *tsl.QualificationElement) etsi.QualificationElementType {
	out := etsi.QualificationElementType{Qualifiers: &etsi.SIEQualifiersType{}}
	qualifiers, _ := qe.Qualifiers()
	for _, q := range qualifiers {
		out.Qualifiers.Qualifier = append(out.Qualifiers.Qualifier, etsi.SIEQualifierType{URI: q})
	}
	if cl := qe.CriteriaList(); cl != nil {
		ecl := criteriaListXML(cl)
		out.CriteriaList = &ecl
	}
	return out
}

func objectIdentifiersXML(oids []string) []etsi.ObjectIdentifierType {
	out := make([]etsi.ObjectIdentifierType, 0, len(oids))
	for _, oid := range oids {
		out = append(out, etsi.NewObjectIdentifier(oid))
	}
	return out
}

func criteriaListXML(cl *tsl.CriteriaList) etsi.CriteriaListType {
	out := etsi.CriteriaListType{
		Assert:      etsi.CriteriaListAssert(cl.Assert()),
		Description: cl.Description(),
	}
	for _, ku := range cl.KeyUsages() {
		list := etsi.KeyUsageTypeList{}
		for _, bit := range ku.Bits() {
			list.KeyUsageBit = append(list.KeyUsageBit, etsi.KeyUsageBitType{Name: bit.Name, Value: strconv.FormatBool(bit.Value)})
		}
		out.KeyUsage = append(out.KeyUsage, list)
	}
	for _, ps := range cl.PolicySets() {
		out.PolicySet = append(out.PolicySet, etsi.PoliciesListType{PolicyIdentifier: objectIdentifiersXML(ps.OIDs())})
	}
	for _, nested := range cl.CriteriaLists() {
		out.CriteriaList = append(out.CriteriaList, criteriaListXML(nested))
	}
	if other := cl.OtherCriteria(); len(other) > 0 {
		ocl := &etsi.OtherCriteriaListType{}
		for _, o := range other {
			var item etsi.OtherCriteriaItem
			switch o := o.(type) {
			case *tsl.CertSubjectDNAttribute:
				dn := &etsi.CertSubjectDNAttribute{}
				dn.AttributeOID = objectIdentifiersXML(o.OIDs())
				item.CertSubjectDNAttribute = dn
			case *tsl.ExtendedKeyUsage:
				eku := &etsi.ExtendedKeyUsage{}
				eku.KeyPurposeId = objectIdentifiersXML(o.OIDs())
				item.ExtendedKeyUsage = eku
			case *tsl.UnknownCriteria:
				item.Other = &etsi.AnyElement{XMLName: xml.Name{Space: o.Namespace(), Local: o.Name()}, Content: o.Raw()}
			}
			ocl.Items = append(ocl.Items, item)
		}
		out.OtherCriteriaList = ocl
	}
	return out
}

