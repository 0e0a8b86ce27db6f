package tsl

// TSPInformation identifies a trust service provider.
type TSPInformation struct {
	name            MultilingualText
	tradeName       MultilingualText
	address         *Address
	informationURIs []LangString
	extensions      Extensions
}

func (i *TSPInformation) Name() *MultilingualText       { return &i.name }
func (i *TSPInformation) TradeName() *MultilingualText  { return &i.tradeName }
func (i *TSPInformation) InformationURIs() []LangString { return i.informationURIs }

// Address returns the TSP address, creating it on first use.
func (i *TSPInformation) Address() *Address {
	if i.address == nil {
		i.address = NewAddress()
	}
	return i.address
}

// AddInformationURI appends a TSP information URI.
func (i *TSPInformation) AddInformationURI(lang, uri string) {
	i.informationURIs = append(i.informationURIs, LangString{Lang: CanonicalLanguage(lang), Value: uri})
}

// AddExtension appends a TSP information extension.
func (i *TSPInformation) AddExtension(e Extension) {
	i.extensions = append(i.extensions, e)
}

// Extensions returns the TSP information extensions, or false when there are none.
func (i *TSPInformation) Extensions() (Extensions, bool) {
	if len(i.extensions) == 0 {
		return nil, false
	}
	return i.extensions, true
}

// TrustServiceProvider is a TSP and its services in document order.
type TrustServiceProvider struct {
	information *TSPInformation
	services    []*TSPService
}

// NewTrustServiceProvider creates a provider without services.
func NewTrustServiceProvider(info *TSPInformation) *TrustServiceProvider {
	return &TrustServiceProvider{information: info}
}

// Information returns the TSP information, creating it on first use.
func (p *TrustServiceProvider) Information() *TSPInformation {
	if p.information == nil {
		p.information = &TSPInformation{}
	}
	return p.information
}

// AddTSPService appends a service.
func (p *TrustServiceProvider) AddTSPService(s *TSPService) {
	p.services = append(p.services, s)
}

// IsThereSomeTSPService reports whether the provider has at least one service.
func (p *TrustServiceProvider) IsThereSomeTSPService() bool {
	return len(p.services) > 0
}

// AllTSPServices returns the services, or false when there are none. Callers
// must treat the false case as "no services".
func (p *TrustServiceProvider) AllTSPServices() ([]*TSPService, bool) {
	if len(p.services) == 0 {
		return nil, false
	}
	return p.services, true
}
