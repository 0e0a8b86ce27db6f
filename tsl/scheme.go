package tsl

import (
	"net/url"
	"strings"
	"time"
)

// SchemeInformation is the scheme information block of a trusted list.
type SchemeInformation struct {
	VersionIdentifier           int
	SequenceNumber              int
	TSLType                     string
	SchemeOperatorName          MultilingualText
	SchemeOperatorAddress       *Address
	SchemeName                  MultilingualText
	SchemeInformationURIs       []LangString
	StatusDeterminationApproach string
	SchemeTypeCommunityRules    []LangString
	SchemeTerritory             string
	Policies                    []LangString
	LegalNotices                []LangString
	HistoricalInformationPeriod int
	Pointers                    []*TSLPointer
	ListIssueDateTime           time.Time
	NextUpdate                  *time.Time // nil for a closed list
	DistributionPoints          []string
	Extensions                  Extensions
}

// IsThereSomePointer reports whether the scheme points to other lists.
func (s *SchemeInformation) IsThereSomePointer() bool {
	return len(s.Pointers) > 0
}

// TSLPointer points to another trusted list.
type TSLPointer struct {
	location    string
	locationURL *url.URL

	Identities               []*ServiceDigitalIdentity
	TSLType                  string
	SchemeTerritory          string
	MimeType                 string
	SchemeOperatorName       MultilingualText
	SchemeTypeCommunityRules []LangString
	TextualInformation       []LangString
}

// NewTSLPointer creates a pointer to the list published at location.
func NewTSLPointer(location string) (*TSLPointer, error) {
	location = strings.TrimSpace(location)
	u, err := url.Parse(location)
	if err != nil {
		return nil, NewParsingError(CodeInvalidURI, err, "TSL location %q is not a valid URI", location)
	}
	if !u.IsAbs() {
		return nil, NewParsingError(CodeInvalidURI, nil, "TSL location %q is not an absolute URI", location)
	}
	return &TSLPointer{location: location, locationURL: u}, nil
}

func (p *TSLPointer) Location() string      { return p.location }
func (p *TSLPointer) LocationURL() *url.URL { return p.locationURL }

// IsThereSomeIdentity reports whether any of the pointer's digital identities
// holds at least one identity.
func (p *TSLPointer) IsThereSomeIdentity() bool {
	for _, sdi := range p.Identities {
		if sdi.IsThereSomeIdentity() {
			return true
		}
	}
	return false
}
