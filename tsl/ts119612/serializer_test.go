package ts119612

import (
	"bytes"
	"strings"
	"testing"

	"github.com/georgepadayatti/gotsl/tsl"
)

func TestBuildXMLRoundTrip(t *testing.T) {
	p := defaultListParams(t)
	p.extensions = qualificationExtensions
	p.history = serviceHistory
	b := NewBuilder()
	first := mustBuild(t, b, renderList(p))

	out, err := b.BuildXML(first)
	if err != nil {
		t.Fatalf("BuildXML() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("<?xml")) {
		t.Errorf("BuildXML() output has no XML header")
	}
	for _, want := range []string{
		`TSLTag="http://uri.etsi.org/19612/TSLTag"`,
		`Id="tsl-be"`,
		"Qualifications",
		"ExpiredCertsRevocationInfo",
		"urn:oid:0.4.0.194112.1.2",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("BuildXML() output lacks %q", want)
		}
	}

	second := mustBuild(t, b, out)
	if err := NewChecker().Check(second, false); err != nil {
		t.Fatalf("Check() of the rebuilt list error = %v", err)
	}

	si1, si2 := first.SchemeInformation(), second.SchemeInformation()
	if si1.SequenceNumber != si2.SequenceNumber || !si1.ListIssueDateTime.Equal(si2.ListIssueDateTime) {
		t.Errorf("scheme information changed: %d/%v -> %d/%v",
			si1.SequenceNumber, si1.ListIssueDateTime, si2.SequenceNumber, si2.ListIssueDateTime)
	}
	if !si1.NextUpdate.Equal(*si2.NextUpdate) {
		t.Errorf("NextUpdate changed: %v -> %v", si1.NextUpdate, si2.NextUpdate)
	}
	if len(si2.Pointers) != 1 || si2.Pointers[0].MimeType != tsl.TSLMimeType {
		t.Errorf("pointers not preserved: %+v", si2.Pointers)
	}

	var count1, count2 int
	first.Services(func(_ *tsl.TrustServiceProvider, s *tsl.TSPService) bool {
		exts, _ := s.Information().Extensions()
		count1 += len(exts)
		return true
	})
	second.Services(func(_ *tsl.TrustServiceProvider, s *tsl.TSPService) bool {
		exts, _ := s.Information().Extensions()
		count2 += len(exts)
		for i, e := range exts {
			if e.Kind() == tsl.ExtensionQualifications && !e.Critical() {
				t.Errorf("extension %d lost its criticality", i)
			}
		}
		if h, ok := s.History(); !ok || len(h) != 1 {
			t.Errorf("history not preserved: %d", len(h))
		}
		return true
	})
	if count1 != count2 {
		t.Errorf("extension count %d -> %d", count1, count2)
	}

	again, err := b.BuildXML(second)
	if err != nil {
		t.Fatalf("BuildXML() second pass error = %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Errorf("serialization is not stable:\n%s\n---\n%s", out, again)
	}
}

func TestBuildXMLClosedList(t *testing.T) {
	p := defaultListParams(t)
	p.next = ""
	b := NewBuilder()
	out, err := b.BuildXML(mustBuild(t, b, renderList(p)))
	if err != nil {
		t.Fatalf("BuildXML() error = %v", err)
	}
	if !strings.Contains(string(out), "NextUpdate") {
		t.Error("a closed list must still carry an empty NextUpdate")
	}
	if mustBuild(t, b, out).SchemeInformation().NextUpdate != nil {
		t.Error("closed list reopened after a round trip")
	}
}

func TestBuildXMLFromModel(t *testing.T) {
	obj := newTSL(t)
	obj.SetTag(tsl.TSLTag119612)
	issued := mustParse(t, "2024-03-01T00:00:00Z")
	next := issued.AddDate(0, 6, 0)
	si := &tsl.SchemeInformation{
		VersionIdentifier:           tsl.TSLVersion5,
		SequenceNumber:              1,
		TSLType:                     tsl.TSLTypeEUGen,
		SchemeInformationURIs:       []tsl.LangString{{Lang: "en", Value: "https://tsl.example.be"}},
		StatusDeterminationApproach: tsl.StatusDetnEUAp,
		SchemeTerritory:             "BE",
		ListIssueDateTime:           issued,
		NextUpdate:                  &next,
	}
	si.SchemeOperatorName.Add("en", "FPS Economy")
	si.SchemeName.Add("en", "BE:Trusted list")
	obj.SetSchemeInformation(si)

	info := &tsl.TSPInformation{}
	info.Name().Add("en", "Example TSP")
	p := tsl.NewTrustServiceProvider(info)
	svcInfo := &tsl.ServiceInformation{}
	svcInfo.SetServiceTypeIdentifier(tsl.ServiceTypeTSAQTST)
	svcInfo.SetServiceStatus(tsl.StatusGranted)
	svcInfo.SetStatusStartingTime(issued)
	svcInfo.ServiceName().Add("en", "Example TSA")
	svcInfo.DigitalIdentity().Add(tsl.NewCertificateID(newTestCA(t).cert))
	svcInfo.DigitalIdentity().Add(tsl.NewKeyValueID(newTestCA(t).key.Public()))
	svcInfo.AddExtension(tsl.NewTakenOverBy(false, tsl.PlacementServiceInformation, "https://other.example.be"))
	p.AddTSPService(tsl.NewTSPService(svcInfo))
	obj.AddTrustServiceProvider(p)

	b := NewBuilder()
	out, err := b.BuildXML(obj)
	if err != nil {
		t.Fatalf("BuildXML() error = %v", err)
	}
	rebuilt := mustBuild(t, b, out)

	providers, _ := rebuilt.TrustServiceProviders()
	services, _ := providers[0].AllTSPServices()
	ids, _ := services[0].Information().DigitalIdentity().IDs()
	if len(ids) != 2 || ids[0].Kind() != tsl.DigitalIDX509Certificate || ids[1].Kind() != tsl.DigitalIDKeyValue {
		t.Fatalf("identities = %v", ids)
	}
	exts, _ := services[0].Information().Extensions()
	if tob, ok := exts[0].(*tsl.TakenOverBy); !ok || tob.URI() != "https://other.example.be" {
		t.Errorf("extension = %T", exts[0])
	}
}

func TestBuildXMLNil(t *testing.T) {
	_, err := NewBuilder().BuildXML(nil)
	assertCode(t, err, tsl.ErrArgument, tsl.CodeNilValue)
}
