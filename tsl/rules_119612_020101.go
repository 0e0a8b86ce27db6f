package tsl

import (
	"net/url"

	"go.uber.org/zap"
)

// RuleContext is what the per-node rules need beyond the node itself.
type RuleContext struct {
	// TSL selects the rule set through its specification and version.
	TSL *TSLObject
	// Service is the service state owning the node. It is nil for scheme and
	// TSP information extensions.
	Service *ServiceHistoryInstance
	Logger  *zap.Logger
	Namer   OIDNamer
}

func (c RuleContext) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c RuleContext) namer() OIDNamer {
	if c.Namer == nil {
		return DefaultOIDNamer
	}
	return c.Namer
}

func (c RuleContext) is119612v020101() bool {
	return c.TSL != nil &&
		c.TSL.Specification() == Specification119612 &&
		c.TSL.Version() == Version020101
}

// CheckExtension checks that ext is legal where it was found and that its
// value is consistent. Pairs without a rule set are accepted as is.
func CheckExtension(ctx RuleContext, ext Extension) error {
	if err := CheckExtensionType(ctx, ext); err != nil {
		return err
	}
	return CheckExtensionValue(ctx, ext)
}

// CheckExtensionType checks that ext is legal at its placement.
func CheckExtensionType(ctx RuleContext, ext Extension) error {
	if ext == nil {
		return NewArgumentError(CodeNilValue, "extension is nil")
	}
	switch {
	case ctx.is119612v020101():
		return checkExtensionType119612v020101(ext)
	default:
		return nil
	}
}

// CheckExtensionValue checks the payload of ext against the owning list and
// service.
func CheckExtensionValue(ctx RuleContext, ext Extension) error {
	if ext == nil {
		return NewArgumentError(CodeNilValue, "extension is nil")
	}
	switch {
	case ctx.is119612v020101():
		return checkExtensionValue119612v020101(ctx, ext)
	default:
		return nil
	}
}

// CheckCriteria checks a criteria node and, for lists, its children.
func CheckCriteria(ctx RuleContext, node Criterion) error {
	if node == nil {
		return NewArgumentError(CodeNilValue, "criteria node is nil")
	}
	switch {
	case ctx.is119612v020101():
		return checkCriteria119612v020101(ctx, node)
	default:
		return nil
	}
}

func checkExtensionType119612v020101(ext Extension) error {
	switch e := ext.(type) {
	case *AdditionalServiceInformation, *ExpiredCertsRevocationInfo, *Qualifications, *TakenOverBy:
		if e.Placement() != PlacementServiceInformation {
			return NewMalformedError(CodeExtensionPlacement,
				"%s extension is only allowed in ServiceInformationExtensions, found in %s",
				e.Kind(), e.Placement())
		}
		return nil
	case *UnknownExtension:
		return nil
	default:
		return &Error{Kind: KindMalformed, Code: CodeUnhandledVariant, Message: "unhandled extension variant"}
	}
}

func checkExtensionValue119612v020101(ctx RuleContext, ext Extension) error {
	switch e := ext.(type) {
	case *AdditionalServiceInformation:
		return checkAdditionalServiceInformation(ctx, e)
	case *ExpiredCertsRevocationInfo:
		return checkExpiredCertsRevocationInfo(ctx, e)
	case *Qualifications:
		return checkQualifications(ctx, e)
	case *TakenOverBy:
		return checkTakenOverBy(e)
	case *UnknownExtension:
		if e.Critical() {
			return NewMalformedError(CodeUnknownCritical,
				"unknown extension {%s}%s is marked critical", e.Namespace(), e.Name())
		}
		return nil
	default:
		return &Error{Kind: KindMalformed, Code: CodeUnhandledVariant, Message: "unhandled extension variant"}
	}
}

func serviceType(ctx RuleContext, kind ExtensionKind) (string, error) {
	if ctx.Service == nil {
		return "", NewArgumentError(CodeNilValue, "%s extension checked without its owning service", kind)
	}
	return ctx.Service.ServiceTypeIdentifier(), nil
}

func checkAdditionalServiceInformation(ctx RuleContext, e *AdditionalServiceInformation) error {
	if e.URI() == "" {
		return NewMalformedError(CodeMissingElement, "AdditionalServiceInformation has no URI")
	}
	if !legalAdditionalInfo[e.URI()] {
		if e.Critical() {
			return NewMalformedError(CodeAdditionalInfoURI,
				"critical AdditionalServiceInformation has unsupported URI %q", e.URI())
		}
		ctx.logger().Warn("ignoring non-critical AdditionalServiceInformation with unsupported URI",
			zap.String("uri", e.URI()))
	}
	if e.URI() == AdditionalInfoRootCAQC {
		st, err := serviceType(ctx, e.Kind())
		if err != nil {
			return err
		}
		if st != ServiceTypeCAQC {
			return NewMalformedError(CodeRootCAQCServiceType,
				"AdditionalServiceInformation %q is only allowed on %s services, found on %q",
				e.URI(), ServiceTypeCAQC, st)
		}
	}
	return nil
}

func checkExpiredCertsRevocationInfo(ctx RuleContext, e *ExpiredCertsRevocationInfo) error {
	if e.Critical() {
		return NewMalformedError(CodeExtensionCritical, "ExpiredCertsRevocationInfo must not be critical")
	}
	st, err := serviceType(ctx, e.Kind())
	if err != nil {
		return err
	}
	if !expiredCertsServiceTypes[st] {
		return NewMalformedError(CodeExtensionServiceType,
			"ExpiredCertsRevocationInfo is not allowed on service type %q", st)
	}
	return nil
}

func checkQualifications(ctx RuleContext, e *Qualifications) error {
	st, err := serviceType(ctx, e.Kind())
	if err != nil {
		return err
	}
	if st != ServiceTypeCAQC {
		return NewMalformedError(CodeExtensionServiceType,
			"Qualifications extension is only allowed on %s services, found on %q", ServiceTypeCAQC, st)
	}
	elements, ok := e.Elements()
	if !ok {
		return NewMalformedError(CodeEmptyQualifications, "Qualifications extension has no QualificationElement")
	}
	for _, qe := range elements {
		if err := CheckQualificationElement(ctx, qe); err != nil {
			return err
		}
	}
	return nil
}

// CheckQualificationElement checks that every qualifier is one of the legal
// qualifier URIs and that the criteria list is present and valid. Criticality
// of the owning extension plays no part.
func CheckQualificationElement(ctx RuleContext, qe *QualificationElement) error {
	if qe == nil {
		return NewArgumentError(CodeNilValue, "qualification element is nil")
	}
	if !ctx.is119612v020101() {
		return nil
	}
	qualifiers, ok := qe.Qualifiers()
	if !ok {
		return NewMalformedError(CodeMissingElement, "QualificationElement has no qualifier")
	}
	for _, q := range qualifiers {
		if !IsLegalQualifier(q) {
			return NewMalformedError(CodeInvalidQualifier, "qualifier %q is not a legal qualifier URI", q)
		}
	}
	if qe.CriteriaList() == nil {
		return NewMalformedError(CodeMissingElement, "QualificationElement has no CriteriaList")
	}
	return CheckCriteria(ctx, qe.CriteriaList())
}

func checkTakenOverBy(e *TakenOverBy) error {
	if e.URI() == "" {
		return NewMalformedError(CodeMissingElement, "TakenOverBy has no URI")
	}
	if u, err := url.Parse(e.URI()); err != nil || !u.IsAbs() {
		return NewMalformedError(CodeInvalidValue, "TakenOverBy URI %q is not an absolute URI", e.URI())
	}
	if e.TSPName().IsEmpty() {
		return NewMalformedError(CodeMissingElement, "TakenOverBy has no TSPName")
	}
	if e.SchemeOperatorName().IsEmpty() {
		return NewMalformedError(CodeMissingElement, "TakenOverBy has no SchemeOperatorName")
	}
	if e.SchemeTerritory() == "" {
		return NewMalformedError(CodeMissingElement, "TakenOverBy has no SchemeTerritory")
	}
	return nil
}

func checkCriteria119612v020101(ctx RuleContext, node Criterion) error {
	switch n := node.(type) {
	case *CriteriaList:
		if !n.Assert().IsValid() {
			return NewMalformedError(CodeInvalidAssert,
				"criteria list assert %q is not one of all, atLeastOne, none", n.Assert())
		}
		if !n.IsThereSomeCriteria() {
			return NewMalformedError(CodeEmptyCriteria, "criteria list has no criteria")
		}
		for _, child := range n.Children() {
			if err := checkCriteria119612v020101(ctx, child); err != nil {
				return err
			}
		}
		return nil
	case *KeyUsage:
		if len(n.Bits()) == 0 {
			return NewMalformedError(CodeEmptyCriteria, "KeyUsage criterion has no KeyUsageBit")
		}
		for _, b := range n.Bits() {
			if !IsKnownKeyUsageBit(b.Name) {
				return NewMalformedError(CodeInvalidValue, "KeyUsageBit name %q is not a key usage bit", b.Name)
			}
		}
		return nil
	case *PolicySet:
		return checkOIDList(ctx, "PolicySet", n.OIDs())
	case *CertSubjectDNAttribute:
		return checkOIDList(ctx, "CertSubjectDNAttribute", n.OIDs())
	case *ExtendedKeyUsage:
		return checkOIDList(ctx, "ExtendedKeyUsage", n.OIDs())
	case *UnknownCriteria:
		return nil
	default:
		return &Error{Kind: KindMalformed, Code: CodeUnhandledVariant, Message: "unhandled criteria variant"}
	}
}

func checkOIDList(ctx RuleContext, element string, oids []string) error {
	if len(oids) == 0 {
		return NewMalformedError(CodeEmptyCriteria, "%s criterion has no OID", element)
	}
	for _, oid := range oids {
		if !IsWellFormedOID(oid) {
			return NewMalformedError(CodeInvalidOID, "%s criterion has malformed OID %q", element, oid)
		}
		ctx.logger().Debug("criterion OID accepted",
			zap.String("element", element),
			zap.String("oid", ctx.namer().OIDName(oid)))
	}
	return nil
}
