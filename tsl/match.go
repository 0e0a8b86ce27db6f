package tsl

import (
	"crypto/x509"
)

// MatchCriteria evaluates cert against node. Unknown criteria never match;
// a certificate that cannot be decoded yields a CertificateValidationError
// rather than a non-match.
func MatchCriteria(node Criterion, cert *x509.Certificate) (bool, error) {
	if cert == nil {
		return false, errNilCertificate()
	}
	if node == nil {
		return false, NewArgumentError(CodeNilValue, "criteria node is nil")
	}
	switch n := node.(type) {
	case *CriteriaList:
		return n.Matches(cert)
	case *KeyUsage:
		return n.Matches(cert)
	case *PolicySet:
		return n.Matches(cert)
	case *CertSubjectDNAttribute:
		return n.Matches(cert)
	case *ExtendedKeyUsage:
		return n.Matches(cert)
	case *UnknownCriteria:
		return n.Matches(cert)
	default:
		return false, &Error{Kind: KindMalformed, Code: CodeUnhandledVariant,
			Message: "unhandled criteria variant"}
	}
}

// Matches reports whether every configured attribute OID occurs at least once
// in the certificate subject.
func (c *CertSubjectDNAttribute) Matches(cert *x509.Certificate) (bool, error) {
	counts, err := SubjectAttributeCounts(cert)
	if err != nil {
		return false, err
	}
	for _, oid := range c.oids {
		if counts[oid] == 0 {
			return false, nil
		}
	}
	return true, nil
}

// Matches reports whether the certificate carries an extended key usage
// extension listing every configured key purpose.
func (c *ExtendedKeyUsage) Matches(cert *x509.Certificate) (bool, error) {
	ekus, err := ExtendedKeyUsageOIDs(cert)
	if err != nil {
		return false, err
	}
	if ekus == nil {
		return false, nil
	}
	return containsAll(ekus, c.oids), nil
}

// Matches always returns false.
func (c *UnknownCriteria) Matches(cert *x509.Certificate) (bool, error) {
	if cert == nil {
		return false, errNilCertificate()
	}
	return false, nil
}

// Matches reports whether each declared bit has its declared value in the
// certificate key usage. An unknown bit name never matches.
func (c *KeyUsage) Matches(cert *x509.Certificate) (bool, error) {
	if cert == nil {
		return false, errNilCertificate()
	}
	for _, b := range c.bits {
		bit, ok := keyUsageBits[b.Name]
		if !ok {
			return false, nil
		}
		if (cert.KeyUsage&bit != 0) != b.Value {
			return false, nil
		}
	}
	return true, nil
}

// Matches reports whether every configured policy OID is asserted by the
// certificate.
func (c *PolicySet) Matches(cert *x509.Certificate) (bool, error) {
	policies, err := PolicyOIDs(cert)
	if err != nil {
		return false, err
	}
	return containsAll(policies, c.oids), nil
}

// Matches combines the child results. An empty list matches.
func (cl *CriteriaList) Matches(cert *x509.Certificate) (bool, error) {
	if cert == nil {
		return false, errNilCertificate()
	}
	children := cl.Children()
	if len(children) == 0 {
		return true, nil
	}
	switch cl.assert {
	case AssertAll:
		for _, child := range children {
			ok, err := MatchCriteria(child, cert)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case AssertAtLeastOne:
		for _, child := range children {
			ok, err := MatchCriteria(child, cert)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case AssertNone:
		for _, child := range children {
			ok, err := MatchCriteria(child, cert)
			if err != nil {
				return false, err
			}
			if ok {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, NewMalformedError(CodeInvalidAssert, "criteria list assert %q is not one of all, atLeastOne, none", cl.assert)
	}
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

func errNilCertificate() error {
	return NewArgumentError(CodeNilCertificate, "certificate is nil")
}
