package tsl

import (
	"strings"
	"time"
)

// Placement is the part of the trusted list an extension was found in.
type Placement int

const (
	PlacementScheme Placement = iota + 1
	PlacementTSPInformation
	PlacementServiceInformation
)

func (p Placement) String() string {
	switch p {
	case PlacementScheme:
		return "SchemeExtensions"
	case PlacementTSPInformation:
		return "TSPInformationExtensions"
	case PlacementServiceInformation:
		return "ServiceInformationExtensions"
	default:
		return "UnknownPlacement"
	}
}

// ExtensionKind identifies the variant of an Extension.
type ExtensionKind int

const (
	ExtensionAdditionalServiceInformation ExtensionKind = iota + 1
	ExtensionExpiredCertsRevocationInfo
	ExtensionQualifications
	ExtensionTakenOverBy
	ExtensionUnknown
)

func (k ExtensionKind) String() string {
	switch k {
	case ExtensionAdditionalServiceInformation:
		return "AdditionalServiceInformation"
	case ExtensionExpiredCertsRevocationInfo:
		return "ExpiredCertsRevocationInfo"
	case ExtensionQualifications:
		return "Qualifications"
	case ExtensionTakenOverBy:
		return "TakenOverBy"
	case ExtensionUnknown:
		return "UnknownExtension"
	default:
		return "InvalidExtensionKind"
	}
}

// Extension is one of *AdditionalServiceInformation,
// *ExpiredCertsRevocationInfo, *Qualifications, *TakenOverBy or
// *UnknownExtension. The set is closed.
type Extension interface {
	Critical() bool
	Placement() Placement
	Kind() ExtensionKind
	isExtension()
}

type extensionBase struct {
	critical  bool
	placement Placement
}

func (b *extensionBase) Critical() bool       { return b.critical }
func (b *extensionBase) Placement() Placement { return b.placement }
func (b *extensionBase) isExtension()         {}

// AdditionalServiceInformation carries an additional information URI, for
// instance the kind of certificates a CA/QC service issues.
type AdditionalServiceInformation struct {
	extensionBase
	uri              string
	lang             string
	informationValue string
	otherInformation []byte
}

// NewAdditionalServiceInformation creates the extension. A trailing "/" on uri
// is removed.
func NewAdditionalServiceInformation(critical bool, placement Placement, uri string) *AdditionalServiceInformation {
	return &AdditionalServiceInformation{
		extensionBase: extensionBase{critical: critical, placement: placement},
		uri:           NormalizeURI(uri),
	}
}

func (e *AdditionalServiceInformation) Kind() ExtensionKind { return ExtensionAdditionalServiceInformation }

func (e *AdditionalServiceInformation) URI() string              { return e.uri }
func (e *AdditionalServiceInformation) Lang() string             { return e.lang }
func (e *AdditionalServiceInformation) InformationValue() string { return e.informationValue }
func (e *AdditionalServiceInformation) OtherInformation() []byte { return e.otherInformation }

func (e *AdditionalServiceInformation) SetLang(lang string)          { e.lang = lang }
func (e *AdditionalServiceInformation) SetInformationValue(v string) { e.informationValue = v }
func (e *AdditionalServiceInformation) SetOtherInformation(b []byte) { e.otherInformation = b }

// NormalizeURI removes one trailing "/" from uri.
func NormalizeURI(uri string) string {
	uri = strings.TrimSpace(uri)
	return strings.TrimSuffix(uri, "/")
}

// ExpiredCertsRevocationInfo marks the date from which revocation information
// for expired certificates is kept by the service.
type ExpiredCertsRevocationInfo struct {
	extensionBase
	date time.Time
}

// NewExpiredCertsRevocationInfo creates the extension.
func NewExpiredCertsRevocationInfo(critical bool, placement Placement, date time.Time) *ExpiredCertsRevocationInfo {
	return &ExpiredCertsRevocationInfo{
		extensionBase: extensionBase{critical: critical, placement: placement},
		date:          date,
	}
}

func (e *ExpiredCertsRevocationInfo) Kind() ExtensionKind { return ExtensionExpiredCertsRevocationInfo }

// Date returns the revocation info date.
func (e *ExpiredCertsRevocationInfo) Date() time.Time { return e.date }

// Qualifications maps criteria trees to qualifier URIs.
type Qualifications struct {
	extensionBase
	elements []*QualificationElement
}

// NewQualifications creates an empty Qualifications extension.
func NewQualifications(critical bool, placement Placement) *Qualifications {
	return &Qualifications{extensionBase: extensionBase{critical: critical, placement: placement}}
}

func (e *Qualifications) Kind() ExtensionKind { return ExtensionQualifications }

// AddElement appends a qualification element.
func (e *Qualifications) AddElement(qe *QualificationElement) {
	e.elements = append(e.elements, qe)
}

// Elements returns the qualification elements, or false when there are none.
func (e *Qualifications) Elements() ([]*QualificationElement, bool) {
	if len(e.elements) == 0 {
		return nil, false
	}
	return e.elements, true
}

// QualificationElement is an ordered qualifier URI list and the criteria
// deciding which certificates the qualifiers apply to.
type QualificationElement struct {
	qualifiers   []string
	criteriaList *CriteriaList
}

// NewQualificationElement creates a qualification element.
func NewQualificationElement(criteria *CriteriaList, qualifiers ...string) *QualificationElement {
	qe := &QualificationElement{criteriaList: criteria}
	for _, q := range qualifiers {
		qe.AddQualifier(q)
	}
	return qe
}

// AddQualifier appends a qualifier URI.
func (qe *QualificationElement) AddQualifier(uri string) {
	qe.qualifiers = append(qe.qualifiers, strings.TrimSpace(uri))
}

// Qualifiers returns the qualifier URIs, or false when there are none.
func (qe *QualificationElement) Qualifiers() ([]string, bool) {
	if len(qe.qualifiers) == 0 {
		return nil, false
	}
	return qe.qualifiers, true
}

func (qe *QualificationElement) CriteriaList() *CriteriaList      { return qe.criteriaList }
func (qe *QualificationElement) SetCriteriaList(cl *CriteriaList) { qe.criteriaList = cl }

// TakenOverBy identifies the TSP that took over a service.
type TakenOverBy struct {
	extensionBase
	uri                string
	tspName            MultilingualText
	schemeOperatorName MultilingualText
	schemeTerritory    string
	otherQualifiers    [][]byte
}

// NewTakenOverBy creates the extension.
func NewTakenOverBy(critical bool, placement Placement, uri string) *TakenOverBy {
	return &TakenOverBy{
		extensionBase: extensionBase{critical: critical, placement: placement},
		uri:           strings.TrimSpace(uri),
	}
}

func (e *TakenOverBy) Kind() ExtensionKind { return ExtensionTakenOverBy }

func (e *TakenOverBy) URI() string                           { return e.uri }
func (e *TakenOverBy) TSPName() *MultilingualText            { return &e.tspName }
func (e *TakenOverBy) SchemeOperatorName() *MultilingualText { return &e.schemeOperatorName }
func (e *TakenOverBy) SchemeTerritory() string               { return e.schemeTerritory }
func (e *TakenOverBy) OtherQualifiers() [][]byte             { return e.otherQualifiers }

func (e *TakenOverBy) SetSchemeTerritory(t string)  { e.schemeTerritory = strings.TrimSpace(t) }
func (e *TakenOverBy) AddOtherQualifier(raw []byte) { e.otherQualifiers = append(e.otherQualifiers, raw) }

// UnknownExtension is an extension whose content is not recognized. Its
// payload is kept verbatim.
type UnknownExtension struct {
	extensionBase
	namespace string
	name      string
	raw       []byte
}

// NewUnknownExtension creates the extension for an element named
// {namespace}name.
func NewUnknownExtension(critical bool, placement Placement, namespace, name string, raw []byte) *UnknownExtension {
	return &UnknownExtension{
		extensionBase: extensionBase{critical: critical, placement: placement},
		namespace:     namespace,
		name:          name,
		raw:           raw,
	}
}

func (e *UnknownExtension) Kind() ExtensionKind { return ExtensionUnknown }

func (e *UnknownExtension) Namespace() string { return e.namespace }
func (e *UnknownExtension) Name() string      { return e.name }
func (e *UnknownExtension) Raw() []byte       { return e.raw }

// Extensions is an ordered list of extensions found at one placement.
type Extensions []Extension

// OfKind returns the extensions of kind k, in document order.
func (l Extensions) OfKind(k ExtensionKind) []Extension {
	var out []Extension
	for _, e := range l {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

// AdditionalServiceInformationURIs returns the URIs of every
// AdditionalServiceInformation extension.
func (l Extensions) AdditionalServiceInformationURIs() []string {
	var out []string
	for _, e := range l {
		if asi, ok := e.(*AdditionalServiceInformation); ok {
			out = append(out, asi.URI())
		}
	}
	return out
}
