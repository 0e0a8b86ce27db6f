package tsl

import (
	"crypto/x509"
	"strings"
)

// Assert is the combination rule of a CriteriaList.
type Assert string

const (
	AssertAll        Assert = "all"
	AssertAtLeastOne Assert = "atLeastOne"
	AssertNone       Assert = "none"
)

// IsValid reports whether a is one of the three legal assertion types.
func (a Assert) IsValid() bool {
	switch a {
	case AssertAll, AssertAtLeastOne, AssertNone:
		return true
	default:
		return false
	}
}

// Criterion is a node of a criteria tree: *CriteriaList, *KeyUsage,
// *PolicySet or an OtherCriteria variant. The set is closed.
type Criterion interface {
	Matches(cert *x509.Certificate) (bool, error)
	isCriterion()
}

// CriteriaKind identifies the variant of an OtherCriteria.
type CriteriaKind int

const (
	CriteriaCertSubjectDNAttribute CriteriaKind = iota + 1
	CriteriaExtendedKeyUsage
	CriteriaUnknown
)

func (k CriteriaKind) String() string {
	switch k {
	case CriteriaCertSubjectDNAttribute:
		return "CertSubjectDNAttribute"
	case CriteriaExtendedKeyUsage:
		return "ExtendedKeyUsage"
	case CriteriaUnknown:
		return "UnknownOtherCriteria"
	default:
		return "InvalidCriteriaKind"
	}
}

// OtherCriteria is one of *CertSubjectDNAttribute, *ExtendedKeyUsage or
// *UnknownCriteria, found inside an otherCriteriaList element.
type OtherCriteria interface {
	Criterion
	Kind() CriteriaKind
	isOtherCriteria()
}

// CertSubjectDNAttribute requires every listed attribute OID to be present in
// the certificate subject.
type CertSubjectDNAttribute struct {
	oids []string
}

// NewCertSubjectDNAttribute creates the criterion. OIDs given as "urn:oid:"
// URNs are reduced to dotted form.
func NewCertSubjectDNAttribute(oids ...string) *CertSubjectDNAttribute {
	return &CertSubjectDNAttribute{oids: normalizeOIDs(oids)}
}

func (c *CertSubjectDNAttribute) Kind() CriteriaKind { return CriteriaCertSubjectDNAttribute }
func (c *CertSubjectDNAttribute) OIDs() []string     { return c.oids }
func (c *CertSubjectDNAttribute) AddOID(oid string)  { c.oids = append(c.oids, NormalizeOID(oid)) }
func (c *CertSubjectDNAttribute) isCriterion()       {}
func (c *CertSubjectDNAttribute) isOtherCriteria()   {}

// ExtendedKeyUsage requires every listed key purpose OID to be present in the
// certificate's extended key usage extension.
type ExtendedKeyUsage struct {
	oids []string
}

// NewExtendedKeyUsage creates the criterion.
func NewExtendedKeyUsage(oids ...string) *ExtendedKeyUsage {
	return &ExtendedKeyUsage{oids: normalizeOIDs(oids)}
}

func (c *ExtendedKeyUsage) Kind() CriteriaKind { return CriteriaExtendedKeyUsage }
func (c *ExtendedKeyUsage) OIDs() []string     { return c.oids }
func (c *ExtendedKeyUsage) AddOID(oid string)  { c.oids = append(c.oids, NormalizeOID(oid)) }
func (c *ExtendedKeyUsage) isCriterion()       {}
func (c *ExtendedKeyUsage) isOtherCriteria()   {}

// UnknownCriteria is an unrecognized criterion. It never matches.
type UnknownCriteria struct {
	namespace string
	name      string
	raw       []byte
}

// NewUnknownCriteria creates the criterion for an element named {namespace}name.
func NewUnknownCriteria(namespace, name string, raw []byte) *UnknownCriteria {
	return &UnknownCriteria{namespace: namespace, name: name, raw: raw}
}

func (c *UnknownCriteria) Kind() CriteriaKind { return CriteriaUnknown }
func (c *UnknownCriteria) Namespace() string  { return c.namespace }
func (c *UnknownCriteria) Name() string       { return c.name }
func (c *UnknownCriteria) Raw() []byte        { return c.raw }
func (c *UnknownCriteria) isCriterion()       {}
func (c *UnknownCriteria) isOtherCriteria()   {}

// KeyUsageBit is a key usage bit and whether it must be set or clear.
type KeyUsageBit struct {
	Name  string
	Value bool
}

// KeyUsage requires each listed bit to have its declared value.
type KeyUsage struct {
	bits []KeyUsageBit
}

// NewKeyUsage creates the criterion.
func NewKeyUsage(bits ...KeyUsageBit) *KeyUsage {
	return &KeyUsage{bits: bits}
}

func (c *KeyUsage) Bits() []KeyUsageBit { return c.bits }
func (c *KeyUsage) isCriterion()        {}

// AddBit appends a key usage bit requirement.
func (c *KeyUsage) AddBit(name string, value bool) {
	c.bits = append(c.bits, KeyUsageBit{Name: name, Value: value})
}

// PolicySet requires every listed policy OID to be present in the
// certificate policies extension.
type PolicySet struct {
	oids []string
}

// NewPolicySet creates the criterion.
func NewPolicySet(oids ...string) *PolicySet {
	return &PolicySet{oids: normalizeOIDs(oids)}
}

func (c *PolicySet) OIDs() []string    { return c.oids }
func (c *PolicySet) AddOID(oid string) { c.oids = append(c.oids, NormalizeOID(oid)) }
func (c *PolicySet) isCriterion()      {}

// CriteriaList combines child criteria according to its Assert.
type CriteriaList struct {
	assert      Assert
	description string
	keyUsages   []*KeyUsage
	policySets  []*PolicySet
	lists       []*CriteriaList
	other       []OtherCriteria
}

// NewCriteriaList creates an empty list.
func NewCriteriaList(assert Assert) *CriteriaList {
	return &CriteriaList{assert: assert}
}

func (cl *CriteriaList) Assert() Assert                 { return cl.assert }
func (cl *CriteriaList) Description() string            { return cl.description }
func (cl *CriteriaList) SetDescription(d string)        { cl.description = d }
func (cl *CriteriaList) KeyUsages() []*KeyUsage         { return cl.keyUsages }
func (cl *CriteriaList) PolicySets() []*PolicySet       { return cl.policySets }
func (cl *CriteriaList) CriteriaLists() []*CriteriaList { return cl.lists }
func (cl *CriteriaList) OtherCriteria() []OtherCriteria { return cl.other }

func (cl *CriteriaList) AddKeyUsage(ku *KeyUsage)         { cl.keyUsages = append(cl.keyUsages, ku) }
func (cl *CriteriaList) AddPolicySet(ps *PolicySet)       { cl.policySets = append(cl.policySets, ps) }
func (cl *CriteriaList) AddCriteriaList(l *CriteriaList)  { cl.lists = append(cl.lists, l) }
func (cl *CriteriaList) AddOtherCriteria(o OtherCriteria) { cl.other = append(cl.other, o) }

func (cl *CriteriaList) isCriterion() {}

// Children returns every child criterion: key usages, policy sets, nested
// lists and other criteria, in that order.
func (cl *CriteriaList) Children() []Criterion {
	children := make([]Criterion, 0, len(cl.keyUsages)+len(cl.policySets)+len(cl.lists)+len(cl.other))
	for _, c := range cl.keyUsages {
		children = append(children, c)
	}
	for _, c := range cl.policySets {
		children = append(children, c)
	}
	for _, c := range cl.lists {
		children = append(children, c)
	}
	for _, c := range cl.other {
		children = append(children, c)
	}
	return children
}

// IsThereSomeCriteria reports whether the list has at least one child.
func (cl *CriteriaList) IsThereSomeCriteria() bool {
	return len(cl.keyUsages)+len(cl.policySets)+len(cl.lists)+len(cl.other) > 0
}

const oidURNPrefix = "urn:oid:"

// NormalizeOID reduces "urn:oid:1.2.3" to "1.2.3" and trims blanks.
func NormalizeOID(oid string) string {
	oid = strings.TrimSpace(oid)
	if len(oid) >= len(oidURNPrefix) && strings.EqualFold(oid[:len(oidURNPrefix)], oidURNPrefix) {
		oid = oid[len(oidURNPrefix):]
	}
	return oid
}

func normalizeOIDs(oids []string) []string {
	out := make([]string, 0, len(oids))
	for _, o := range oids {
		out = append(out, NormalizeOID(o))
	}
	return out
}

// IsWellFormedOID reports whether oid is a dotted decimal object identifier
// with at least two arcs and a legal first arc.
func IsWellFormedOID(oid string) bool {
	arcs := strings.Split(oid, ".")
	if len(arcs) < 2 {
		return false
	}
	for _, a := range arcs {
		if a == "" {
			return false
		}
		for _, r := range a {
			if r < '0' || r > '9' {
				return false
			}
		}
		if len(a) > 1 && a[0] == '0' {
			return false
		}
	}
	switch arcs[0] {
	case "0", "1", "2":
		return true
	default:
		return false
	}
}
