package tsl

import (
	"strings"

	"golang.org/x/text/language"
)

// PreferredLanguage is the language used when a caller asks for "the" name of
// a multilingual element.
const PreferredLanguage = "en"

// CanonicalLanguage normalizes an xml:lang value so that "EN", "en" and "en"
// with surrounding blanks share one key. Values that are not BCP 47 tags are
// lower-cased and kept.
func CanonicalLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	return tag.String()
}

// PostalAddress is a postal address in one language.
type PostalAddress struct {
	street          string
	locality        string
	stateOrProvince string
	postalCode      string
	countryName     string
}

// NewPostalAddress creates a fully populated postal address.
func NewPostalAddress(street, locality, stateOrProvince, postalCode, countryName string) PostalAddress {
	return PostalAddress{
		street:          street,
		locality:        locality,
		stateOrProvince: stateOrProvince,
		postalCode:      postalCode,
		countryName:     countryName,
	}
}

func (p PostalAddress) Street() string          { return p.street }
func (p PostalAddress) Locality() string        { return p.locality }
func (p PostalAddress) StateOrProvince() string { return p.stateOrProvince }
func (p PostalAddress) PostalCode() string      { return p.postalCode }
func (p PostalAddress) CountryName() string     { return p.countryName }

func (p *PostalAddress) SetStreet(v string)          { p.street = v }
func (p *PostalAddress) SetLocality(v string)        { p.locality = v }
func (p *PostalAddress) SetStateOrProvince(v string) { p.stateOrProvince = v }
func (p *PostalAddress) SetPostalCode(v string)      { p.postalCode = v }
func (p *PostalAddress) SetCountryName(v string)     { p.countryName = v }

// Address groups postal and electronic addresses by language. A language key
// is present only while its list is non-empty.
type Address struct {
	postal     map[string][]PostalAddress
	electronic map[string][]string
}

// NewAddress creates an empty address.
func NewAddress() *Address {
	return &Address{
		postal:     make(map[string][]PostalAddress),
		electronic: make(map[string][]string),
	}
}

// AddPostalAddress appends a postal address for lang.
func (a *Address) AddPostalAddress(lang string, pa PostalAddress) {
	if a.postal == nil {
		a.postal = make(map[string][]PostalAddress)
	}
	key := CanonicalLanguage(lang)
	a.postal[key] = append(a.postal[key], pa)
}

// AddElectronicAddress appends an electronic address URI for lang. Empty URIs
// are ignored.
func (a *Address) AddElectronicAddress(lang, uri string) {
	if uri == "" {
		return
	}
	if a.electronic == nil {
		a.electronic = make(map[string][]string)
	}
	key := CanonicalLanguage(lang)
	a.electronic[key] = append(a.electronic[key], uri)
}

// IsThereSomePostalAddress reports whether any postal address was added.
func (a *Address) IsThereSomePostalAddress() bool {
	return a != nil && len(a.postal) > 0
}

// IsThereSomeElectronicAddress reports whether any electronic address was added.
func (a *Address) IsThereSomeElectronicAddress() bool {
	return a != nil && len(a.electronic) > 0
}

// PostalAddresses returns the postal addresses for lang.
func (a *Address) PostalAddresses(lang string) ([]PostalAddress, bool) {
	if a == nil {
		return nil, false
	}
	l, ok := a.postal[CanonicalLanguage(lang)]
	return l, ok
}

// ElectronicAddresses returns the electronic addresses for lang.
func (a *Address) ElectronicAddresses(lang string) ([]string, bool) {
	if a == nil {
		return nil, false
	}
	l, ok := a.electronic[CanonicalLanguage(lang)]
	return l, ok
}

// AllPostalAddresses returns the postal address map keyed by canonical language.
func (a *Address) AllPostalAddresses() map[string][]PostalAddress {
	if a == nil {
		return nil
	}
	return a.postal
}

// AllElectronicAddresses returns the electronic address map keyed by canonical language.
func (a *Address) AllElectronicAddresses() map[string][]string {
	if a == nil {
		return nil
	}
	return a.electronic
}

// MultilingualText holds one value per language, in document order.
type MultilingualText struct {
	langs  []string
	values map[string]string
}

// Add sets the value for lang. A repeated language keeps its first position.
func (m *MultilingualText) Add(lang, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	key := CanonicalLanguage(lang)
	if _, ok := m.values[key]; !ok {
		m.langs = append(m.langs, key)
	}
	m.values[key] = value
}

// IsEmpty reports whether no value has been added.
func (m *MultilingualText) IsEmpty() bool {
	return m == nil || len(m.langs) == 0
}

// Get returns the value for lang.
func (m *MultilingualText) Get(lang string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[CanonicalLanguage(lang)]
	return v, ok
}

// Languages returns the languages in document order.
func (m *MultilingualText) Languages() []string {
	if m == nil {
		return nil
	}
	return m.langs
}

// Preferred returns the value in PreferredLanguage, falling back to the first
// value in document order. It returns "" for an empty text.
func (m *MultilingualText) Preferred() string {
	return m.In(PreferredLanguage)
}

// In returns the value in lang, falling back to the first value in document
// order.
func (m *MultilingualText) In(lang string) string {
	if m.IsEmpty() {
		return ""
	}
	if v, ok := m.Get(lang); ok {
		return v
	}
	return m.values[m.langs[0]]
}
