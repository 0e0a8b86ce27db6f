package ts119612

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/georgepadayatti/gotsl/tsl"
)

func TestBuild(t *testing.T) {
	p := defaultListParams(t)
	p.extensions = qualificationExtensions
	p.history = serviceHistory
	obj := mustBuild(t, NewBuilder(), renderList(p))

	if obj.Tag() != tsl.TSLTag119612 {
		t.Errorf("Tag() = %q", obj.Tag())
	}
	if obj.ID() != "tsl-be" {
		t.Errorf("ID() = %q, want tsl-be", obj.ID())
	}
	if len(obj.Raw()) == 0 {
		t.Error("Raw() is empty")
	}
	if obj.Signature() != nil {
		t.Error("Signature() is set for an unsigned list")
	}

	si := obj.SchemeInformation()
	if si == nil {
		t.Fatal("SchemeInformation() = nil")
	}
	if si.VersionIdentifier != 5 || si.SequenceNumber != 42 {
		t.Errorf("version/sequence = %d/%d, want 5/42", si.VersionIdentifier, si.SequenceNumber)
	}
	if got, _ := si.SchemeOperatorName.Get("en"); got != "FPS Economy" {
		t.Errorf("SchemeOperatorName[en] = %q", got)
	}
	if obj.SchemeTerritory() != "BE" {
		t.Errorf("SchemeTerritory() = %q, want BE", obj.SchemeTerritory())
	}
	if want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC); !si.ListIssueDateTime.Equal(want) {
		t.Errorf("ListIssueDateTime = %v, want %v", si.ListIssueDateTime, want)
	}
	if si.NextUpdate == nil || si.NextUpdate.Month() != time.July {
		t.Errorf("NextUpdate = %v", si.NextUpdate)
	}
	if len(si.LegalNotices) != 1 || si.LegalNotices[0].Value != "Legal notice" {
		t.Errorf("LegalNotices = %v", si.LegalNotices)
	}
	if pas, ok := si.SchemeOperatorAddress.PostalAddresses("en"); !ok || pas[0].Locality() != "Brussels" {
		t.Errorf("PostalAddresses(en) = %v, %v", pas, ok)
	}

	if !si.IsThereSomePointer() {
		t.Fatal("IsThereSomePointer() = false")
	}
	ptr := si.Pointers[0]
	if ptr.SchemeTerritory != "EU" || ptr.MimeType != tsl.TSLMimeType {
		t.Errorf("pointer territory/mime = %q/%q", ptr.SchemeTerritory, ptr.MimeType)
	}
	if !ptr.IsThereSomeIdentity() {
		t.Error("pointer has no identity")
	}

	providers, ok := obj.TrustServiceProviders()
	if !ok || len(providers) != 1 {
		t.Fatalf("TrustServiceProviders() = %d, %v", len(providers), ok)
	}
	info := providers[0].Information()
	if got, _ := info.TradeName().Get("en"); got != "VATBE-0123456789" {
		t.Errorf("TradeName[en] = %q", got)
	}
	services, ok := providers[0].AllTSPServices()
	if !ok || len(services) != 1 {
		t.Fatalf("AllTSPServices() = %d, %v", len(services), ok)
	}
	svc := services[0]
	if svc.Information().ServiceTypeIdentifier() != tsl.ServiceTypeCAQC {
		t.Errorf("ServiceTypeIdentifier() = %q", svc.Information().ServiceTypeIdentifier())
	}
	certs := svc.Information().DigitalIdentity().Certificates()
	if len(certs) != 1 || !certs[0].Equal(newTestCA(t).cert) {
		t.Errorf("Certificates() = %d, want the CA certificate", len(certs))
	}

	exts, ok := svc.Information().Extensions()
	if !ok || len(exts) != 3 {
		t.Fatalf("Extensions() = %d, %v", len(exts), ok)
	}
	q, ok := exts[0].(*tsl.Qualifications)
	if !ok || !q.Critical() || q.Placement() != tsl.PlacementServiceInformation {
		t.Fatalf("extension 0 = %T critical=%v", exts[0], exts[0].Critical())
	}
	elems, _ := q.Elements()
	cl := elems[0].CriteriaList()
	if cl.Assert() != tsl.AssertAtLeastOne {
		t.Errorf("Assert() = %q", cl.Assert())
	}
	if len(cl.KeyUsages()) != 1 || len(cl.PolicySets()) != 1 {
		t.Errorf("criteria = %d key usages, %d policy sets", len(cl.KeyUsages()), len(cl.PolicySets()))
	}
	if oids := cl.PolicySets()[0].OIDs(); len(oids) != 1 || oids[0] != "0.4.0.194112.1.2" {
		t.Errorf("PolicySet OIDs = %v", oids)
	}
	if uris := exts.AdditionalServiceInformationURIs(); len(uris) != 1 || uris[0] != tsl.AdditionalInfoForESignatures {
		t.Errorf("AdditionalServiceInformationURIs() = %v", uris)
	}
	if ecri, ok := exts[2].(*tsl.ExpiredCertsRevocationInfo); !ok || ecri.Date().Year() != 2016 {
		t.Errorf("extension 2 = %T", exts[2])
	}

	history, ok := svc.History()
	if !ok || len(history) != 1 {
		t.Fatalf("History() = %d, %v", len(history), ok)
	}
	ids, _ := history[0].DigitalIdentity().IDs()
	if len(ids) != 1 || ids[0].Kind() != tsl.DigitalIDX509SubjectName {
		t.Errorf("history identities = %v", ids)
	}
}

func TestBuildWithoutTimezone(t *testing.T) {
	p := defaultListParams(t)
	p.issue = "2024-01-15T10:30:00"
	obj := mustBuild(t, NewBuilder(), renderList(p))

	got := obj.SchemeInformation().ListIssueDateTime
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ListIssueDateTime = %v, want %v", got, want)
	}
}

func TestBuildClosedList(t *testing.T) {
	p := defaultListParams(t)
	p.next = ""
	obj := mustBuild(t, NewBuilder(), renderList(p))

	if obj.SchemeInformation().NextUpdate != nil {
		t.Errorf("NextUpdate = %v, want nil for a closed list", obj.SchemeInformation().NextUpdate)
	}
}

func TestBuildErrors(t *testing.T) {
	base := defaultListParams(t)

	tests := []struct {
		name   string
		raw    []byte
		kind   error
		code   tsl.Code
		modify func(p *listParams)
	}{
		{name: "empty stream", raw: []byte("  \n"), kind: tsl.ErrArgument, code: tsl.CodeEmptyStream},
		{name: "malformed XML", raw: []byte("<tsl:TrustServiceStatusList"), kind: tsl.ErrParsing, code: tsl.CodeXMLSyntax},
		{
			name:   "bad issue date",
			kind:   tsl.ErrParsing,
			code:   tsl.CodeInvalidDate,
			modify: func(p *listParams) { p.issue = "15/01/2024" },
		},
		{
			name:   "bad base64 certificate",
			kind:   tsl.ErrParsing,
			code:   tsl.CodeInvalidBase64,
			modify: func(p *listParams) { p.cert = "%%%" },
		},
		{
			name:   "not a certificate",
			kind:   tsl.ErrParsing,
			code:   tsl.CodeInvalidCertificate,
			modify: func(p *listParams) { p.cert = "AQIDBA==" },
		},
		{
			name: "non-boolean key usage bit",
			kind: tsl.ErrParsing,
			code: tsl.CodeInvalidValue,
			modify: func(p *listParams) {
				p.extensions = strings.Replace(qualificationExtensions, ">true</ecc:KeyUsageBit>", ">maybe</ecc:KeyUsageBit>", 1)
			},
		},
		{
			name: "bad history date",
			kind: tsl.ErrParsing,
			code: tsl.CodeInvalidDate,
			modify: func(p *listParams) {
				p.history = serviceHistory
				p.historyStart = "yesterday"
			},
		},
		{
			name: "relative pointer location",
			kind: tsl.ErrParsing,
			code: tsl.CodeInvalidURI,
			raw: bytes.Replace(renderList(base),
				[]byte("https://ec.europa.eu/tools/lotl/eu-lotl.xml"), []byte("eu-lotl.xml"), 1),
		},
		{
			name: "invalid Critical attribute",
			kind: tsl.ErrParsing,
			code: tsl.CodeXMLSyntax,
			modify: func(p *listParams) {
				p.extensions = strings.Replace(qualificationExtensions, `Critical="true"`, `Critical="yes"`, 1)
			},
		},
		{
			name: "missing Critical attribute",
			kind: tsl.ErrParsing,
			code: tsl.CodeXMLSyntax,
			modify: func(p *listParams) {
				p.extensions = strings.Replace(qualificationExtensions, ` Critical="true"`, "", 1)
			},
		},
		{
			name: "empty critical extension",
			kind: tsl.ErrParsing,
			code: tsl.CodeEmptyExtension,
			modify: func(p *listParams) {
				p.extensions = `<tsl:ServiceInformationExtensions><tsl:Extension Critical="true"/></tsl:ServiceInformationExtensions>`
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if tt.modify != nil {
				p := base
				tt.modify(&p)
				raw = renderList(p)
			}
			err := NewBuilder().Build(bytes.NewReader(raw), newTSL(t))
			assertCode(t, err, tt.kind, tt.code)
		})
	}
}

func TestBuildNilArguments(t *testing.T) {
	b := NewBuilder()
	assertCode(t, b.Build(nil, newTSL(t)), tsl.ErrArgument, tsl.CodeNilValue)
	assertCode(t, b.Build(strings.NewReader("<x/>"), nil), tsl.ErrArgument, tsl.CodeNilValue)
}

func TestBuildUnknownExtensionKept(t *testing.T) {
	p := defaultListParams(t)
	p.extensions = `<tsl:ServiceInformationExtensions>
  <tsl:Extension Critical="false"><ex:Vendor xmlns:ex="urn:example">payload</ex:Vendor></tsl:Extension>
</tsl:ServiceInformationExtensions>`
	obj := mustBuild(t, NewBuilder(), renderList(p))

	providers, _ := obj.TrustServiceProviders()
	services, _ := providers[0].AllTSPServices()
	exts, _ := services[0].Information().Extensions()
	if len(exts) != 1 {
		t.Fatalf("Extensions() = %d, want 1", len(exts))
	}
	u, ok := exts[0].(*tsl.UnknownExtension)
	if !ok {
		t.Fatalf("extension = %T, want *tsl.UnknownExtension", exts[0])
	}
	if u.Namespace() != "urn:example" || u.Name() != "Vendor" || string(u.Raw()) != "payload" {
		t.Errorf("unknown extension = {%q %q %q}", u.Namespace(), u.Name(), u.Raw())
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-15T00:00:00Z", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-15T02:00:00+02:00", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{" 2024-01-15T00:00:00 ", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"2024-13-01T00:00:00Z", time.Time{}, false},
	}
	for _, tt := range tests {
		got, err := parseDateTime("StatusStartingTime", tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parseDateTime(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && (!got.Equal(tt.want) || got.Location() != time.UTC) {
			t.Errorf("parseDateTime(%q) = %v, want %v UTC", tt.in, got, tt.want)
		}
	}
}
