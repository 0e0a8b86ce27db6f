package tsl

import (
	"testing"
)

func TestCanonicalLanguage(t *testing.T) {
	tests := map[string]string{
		"en":      "en",
		"EN":      "en",
		" de ":    "de",
		"en-gb":   "en-GB",
		"":        "",
		"!!":      "!!",
	}
	for in, want := range tests {
		if got := CanonicalLanguage(in); got != want {
			t.Errorf("CanonicalLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAddressEmptyIsAbsent(t *testing.T) {
	a := NewAddress()
	if a.IsThereSomePostalAddress() || a.IsThereSomeElectronicAddress() {
		t.Fatal("new address reports content")
	}
	if _, ok := a.PostalAddresses("en"); ok {
		t.Error("PostalAddresses(en) ok = true for empty address")
	}

	a.AddElectronicAddress("en", "")
	if a.IsThereSomeElectronicAddress() {
		t.Error("empty electronic address was stored")
	}

	a.AddPostalAddress("EN", NewPostalAddress("Main St 1", "Berlin", "", "10115", "DE"))
	a.AddElectronicAddress("en", "mailto:info@example.com")
	a.AddElectronicAddress("en", "https://example.com")

	postal, ok := a.PostalAddresses("en")
	if !ok || len(postal) != 1 {
		t.Fatalf("PostalAddresses(en) = %v, %v", postal, ok)
	}
	if postal[0].Locality() != "Berlin" || postal[0].CountryName() != "DE" {
		t.Errorf("postal address = %+v", postal[0])
	}
	electronic, ok := a.ElectronicAddresses("EN")
	if !ok || len(electronic) != 2 {
		t.Errorf("ElectronicAddresses(EN) = %v, %v", electronic, ok)
	}
	if _, ok := a.ElectronicAddresses("de"); ok {
		t.Error("ElectronicAddresses(de) ok = true")
	}
	if len(a.AllPostalAddresses()) != 1 {
		t.Errorf("AllPostalAddresses() = %v", a.AllPostalAddresses())
	}
}

func TestNilAddress(t *testing.T) {
	var a *Address
	if a.IsThereSomePostalAddress() || a.IsThereSomeElectronicAddress() {
		t.Error("nil address reports content")
	}
	if _, ok := a.ElectronicAddresses("en"); ok {
		t.Error("ElectronicAddresses() ok = true on nil address")
	}
}

func TestPostalAddressSetters(t *testing.T) {
	var p PostalAddress
	p.SetStreet("Rue 2")
	p.SetLocality("Paris")
	p.SetStateOrProvince("IDF")
	p.SetPostalCode("75001")
	p.SetCountryName("FR")
	if p != NewPostalAddress("Rue 2", "Paris", "IDF", "75001", "FR") {
		t.Errorf("PostalAddress = %+v", p)
	}
}

func TestMultilingualText(t *testing.T) {
	var m MultilingualText
	if !m.IsEmpty() || m.Preferred() != "" {
		t.Fatal("zero MultilingualText is not empty")
	}

	m.Add("de", "Vertrauensliste")
	if got := m.Preferred(); got != "Vertrauensliste" {
		t.Errorf("Preferred() without English = %q", got)
	}

	m.Add("EN", "Trusted List")
	m.Add("de", "Vertrauensliste 2")
	if got := m.Preferred(); got != "Trusted List" {
		t.Errorf("Preferred() = %q, want English value", got)
	}
	if got, _ := m.Get("de"); got != "Vertrauensliste 2" {
		t.Errorf("Get(de) = %q, want last value", got)
	}
	langs := m.Languages()
	if len(langs) != 2 || langs[0] != "de" || langs[1] != "en" {
		t.Errorf("Languages() = %v, want [de en]", langs)
	}
	if got := m.In("DE"); got != "Vertrauensliste 2" {
		t.Errorf("In(DE) = %q", got)
	}
	if got := m.In("fr"); got != "Vertrauensliste 2" {
		t.Errorf("In(fr) = %q, want first value", got)
	}
}
