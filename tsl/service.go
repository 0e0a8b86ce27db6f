package tsl

import (
	"crypto/x509"
	"time"
)

// LangString is a value qualified by an xml:lang attribute.
type LangString struct {
	Lang  string
	Value string
}

// SupplyPoint is a service supply point URI with its optional type.
type SupplyPoint struct {
	URI  string
	Type string
}

// ServiceHistoryInstance is the state of a service from its status starting
// time onwards.
type ServiceHistoryInstance struct {
	serviceType        string
	serviceName        MultilingualText
	digitalIdentity    *ServiceDigitalIdentity
	status             string
	statusStartingTime time.Time
	extensions         Extensions
}

func (s *ServiceHistoryInstance) ServiceTypeIdentifier() string  { return s.serviceType }
func (s *ServiceHistoryInstance) ServiceName() *MultilingualText { return &s.serviceName }
func (s *ServiceHistoryInstance) ServiceStatus() string          { return s.status }
func (s *ServiceHistoryInstance) StatusStartingTime() time.Time  { return s.statusStartingTime }

func (s *ServiceHistoryInstance) SetServiceTypeIdentifier(uri string) { s.serviceType = uri }
func (s *ServiceHistoryInstance) SetServiceStatus(uri string)         { s.status = uri }
func (s *ServiceHistoryInstance) SetStatusStartingTime(t time.Time)   { s.statusStartingTime = t }

// ServiceNameInLanguage returns the service name in lang.
func (s *ServiceHistoryInstance) ServiceNameInLanguage(lang string) (string, bool) {
	return s.serviceName.Get(lang)
}

// DigitalIdentity returns the service digital identity, creating it on first use.
func (s *ServiceHistoryInstance) DigitalIdentity() *ServiceDigitalIdentity {
	if s.digitalIdentity == nil {
		s.digitalIdentity = &ServiceDigitalIdentity{}
	}
	return s.digitalIdentity
}

// AddExtension appends an extension.
func (s *ServiceHistoryInstance) AddExtension(e Extension) {
	s.extensions = append(s.extensions, e)
}

// IsThereSomeExtension reports whether the instance carries extensions.
func (s *ServiceHistoryInstance) IsThereSomeExtension() bool {
	return len(s.extensions) > 0
}

// Extensions returns the extensions, or false when there are none.
func (s *ServiceHistoryInstance) Extensions() (Extensions, bool) {
	if len(s.extensions) == 0 {
		return nil, false
	}
	return s.extensions, true
}

// ServiceInformation is the current state of a service.
type ServiceInformation struct {
	ServiceHistoryInstance
	schemeServiceDefinitionURIs []LangString
	supplyPoints                []SupplyPoint
	tspServiceDefinitionURIs    []LangString
}

func (s *ServiceInformation) SchemeServiceDefinitionURIs() []LangString { return s.schemeServiceDefinitionURIs }
func (s *ServiceInformation) SupplyPoints() []SupplyPoint               { return s.supplyPoints }
func (s *ServiceInformation) TSPServiceDefinitionURIs() []LangString    { return s.tspServiceDefinitionURIs }

func (s *ServiceInformation) AddSchemeServiceDefinitionURI(lang, uri string) {
	s.schemeServiceDefinitionURIs = append(s.schemeServiceDefinitionURIs, LangString{Lang: CanonicalLanguage(lang), Value: uri})
}

func (s *ServiceInformation) AddSupplyPoint(sp SupplyPoint) {
	s.supplyPoints = append(s.supplyPoints, sp)
}

func (s *ServiceInformation) AddTSPServiceDefinitionURI(lang, uri string) {
	s.tspServiceDefinitionURIs = append(s.tspServiceDefinitionURIs, LangString{Lang: CanonicalLanguage(lang), Value: uri})
}

// TSPService is a trust service: its current information and its history,
// newest first.
type TSPService struct {
	information *ServiceInformation
	history     []*ServiceHistoryInstance
}

// NewTSPService creates a service with the given current information.
func NewTSPService(info *ServiceInformation) *TSPService {
	return &TSPService{information: info}
}

func (s *TSPService) Information() *ServiceInformation        { return s.information }
func (s *TSPService) SetInformation(info *ServiceInformation) { s.information = info }

// AddHistoryInstance inserts shi keeping the history sorted by status starting
// time, newest first. shi goes immediately before the first entry that
// started strictly earlier, or at the end.
func (s *TSPService) AddHistoryInstance(shi *ServiceHistoryInstance) {
	for i, cur := range s.history {
		if cur.statusStartingTime.Before(shi.statusStartingTime) {
			s.history = append(s.history, nil)
			copy(s.history[i+1:], s.history[i:])
			s.history[i] = shi
			return
		}
	}
	s.history = append(s.history, shi)
}

// IsThereSomeHistory reports whether the service has history instances.
func (s *TSPService) IsThereSomeHistory() bool {
	return len(s.history) > 0
}

// History returns the history instances newest first, or false when there
// are none.
func (s *TSPService) History() ([]*ServiceHistoryInstance, bool) {
	if len(s.history) == 0 {
		return nil, false
	}
	return s.history, true
}

// HistoryAt returns the history instance in force at d: the newest one whose
// status starting time is not after d.
func (s *TSPService) HistoryAt(d time.Time) (*ServiceHistoryInstance, bool) {
	for _, shi := range s.history {
		if !shi.statusStartingTime.After(d) {
			return shi, true
		}
	}
	return nil, false
}

// StateAt returns the service state in force at d, looking at the current
// information first and then at the history.
func (s *TSPService) StateAt(d time.Time) (*ServiceHistoryInstance, bool) {
	if s.information != nil && !s.information.statusStartingTime.After(d) {
		return &s.information.ServiceHistoryInstance, true
	}
	return s.HistoryAt(d)
}

// StatusAt returns the service status URI in force at d.
func (s *TSPService) StatusAt(d time.Time) (string, bool) {
	state, ok := s.StateAt(d)
	if !ok {
		return "", false
	}
	return state.status, true
}

// QualifiersFor returns the qualifier URIs that apply to cert according to
// the Qualifications extensions in force at d. Each URI appears once, in
// document order.
func (s *TSPService) QualifiersFor(cert *x509.Certificate, d time.Time) ([]string, error) {
	if cert == nil {
		return nil, NewArgumentError(CodeNilCertificate, "certificate is nil")
	}
	state, ok := s.StateAt(d)
	if !ok {
		return nil, nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, ext := range state.extensions.OfKind(ExtensionQualifications) {
		q := ext.(*Qualifications)
		for _, qe := range q.elements {
			if qe.criteriaList == nil {
				continue
			}
			ok, err := MatchCriteria(qe.criteriaList, cert)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			for _, uri := range qe.qualifiers {
				if !seen[uri] {
					seen[uri] = true
					out = append(out, uri)
				}
			}
		}
	}
	return out, nil
}
