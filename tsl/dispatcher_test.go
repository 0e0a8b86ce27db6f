package tsl

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
)

type stubBuilder struct{ name string }

func (b stubBuilder) Build(io.Reader, *TSLObject) error   { return nil }
func (b stubBuilder) BuildXML(*TSLObject) ([]byte, error) { return []byte(b.name), nil }

type stubChecker struct{}

func (stubChecker) Check(*TSLObject, bool) error { return nil }

func TestDispatcherLookup(t *testing.T) {
	d := NewDispatcher()
	d.Register(Specification119612, "020101", Implementation{Builder: stubBuilder{"v2"}, Checker: stubChecker{}})
	d.Register(Specification119612, "3.0.0", Implementation{Builder: stubBuilder{"v3"}})

	tests := []struct {
		name          string
		specification string
		version       string
		wantBuilder   string
		wantChecker   bool
	}{
		{"canonical version", Specification119612, Version020101, "v2", true},
		{"alias version", Specification119612, "020101", "v2", true},
		{"builder only", Specification119612, "3.0.0", "v3", false},
		{"unknown version", Specification119612, "9.9.9", "", false},
		{"unknown specification", "119615", Version020101, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := d.BuilderFor(tt.specification, tt.version)
			if ok != (tt.wantBuilder != "") {
				t.Fatalf("BuilderFor() ok = %v", ok)
			}
			if ok {
				out, _ := b.BuildXML(nil)
				if string(out) != tt.wantBuilder {
					t.Errorf("BuilderFor() = %s, want %s", out, tt.wantBuilder)
				}
			}
			if _, ok := d.CheckerFor(tt.specification, tt.version); ok != tt.wantChecker {
				t.Errorf("CheckerFor() ok = %v, want %v", ok, tt.wantChecker)
			}
		})
	}
}

func TestDispatcherReplace(t *testing.T) {
	d := NewDispatcher()
	d.Register(Specification119612, Version020101, Implementation{Builder: stubBuilder{"old"}})
	d.Register(Specification119612, Version020101, Implementation{Builder: stubBuilder{"new"}})

	b, _ := d.BuilderFor(Specification119612, Version020101)
	out, _ := b.BuildXML(nil)
	if string(out) != "new" {
		t.Errorf("BuilderFor() = %s, want new", out)
	}
}

func TestDispatcherConcurrentUse(t *testing.T) {
	d := NewDispatcher()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			d.Register(Specification119612, fmt.Sprintf("1.%d", i), Implementation{Checker: stubChecker{}})
		}(i)
		go func(i int) {
			defer wg.Done()
			d.Lookup(Specification119612, fmt.Sprintf("1.%d", i))
		}(i)
	}
	wg.Wait()
	for i := 0; i < 16; i++ {
		if _, ok := d.CheckerFor(Specification119612, fmt.Sprintf("1.%d", i)); !ok {
			t.Errorf("CheckerFor(1.%d) missing", i)
		}
	}
}

func TestDefaultOIDNamer(t *testing.T) {
	if got := DefaultOIDNamer.OIDName("1.3.6.1.5.5.7.3.4"); got != "emailProtection (1.3.6.1.5.5.7.3.4)" {
		t.Errorf("OIDName() = %q", got)
	}
	if got := DefaultOIDNamer.OIDName("1.2.3.4"); got != "1.2.3.4" {
		t.Errorf("OIDName() = %q", got)
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err      *Error
		sentinel error
		text     string
	}{
		{NewArgumentError(CodeEmptySpecification, "empty"), ErrArgument, "argument error [TSL-ARG-001]: empty"},
		{NewMalformedError(CodeInvalidQualifier, "bad %s", "q"), ErrMalformed, ""},
		{NewParsingError(CodeXMLSyntax, cause, "xml"), ErrParsing, ""},
		{NewCertificateValidationError(CodeSubjectDecoding, cause, "subject"), ErrCertificateValidation, ""},
		{NewEncodingError(CodeXMLMarshal, cause, "marshal"), ErrEncoding, ""},
	}

	sentinels := []error{ErrArgument, ErrMalformed, ErrParsing, ErrCertificateValidation, ErrEncoding}
	for _, tt := range tests {
		wrapped := fmt.Errorf("context: %w", tt.err)
		for _, s := range sentinels {
			if got := errors.Is(wrapped, s); got != (s == tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = %v", tt.err, s, got)
			}
		}
		if CodeOf(wrapped) != tt.err.Code {
			t.Errorf("CodeOf() = %q, want %q", CodeOf(wrapped), tt.err.Code)
		}
		if tt.err.Err != nil && !errors.Is(tt.err, cause) {
			t.Errorf("errors.Is(%v, cause) = false", tt.err)
		}
		if tt.text != "" && tt.err.Error() != tt.text {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.text)
		}
	}

	if !errors.Is(NewMalformedError(CodeInvalidOID, "a"), &Error{Kind: KindMalformed, Code: CodeInvalidOID}) {
		t.Error("errors with the same kind and code should match")
	}
	if errors.Is(NewMalformedError(CodeInvalidOID, "a"), &Error{Kind: KindMalformed, Code: CodeEmptyCriteria}) {
		t.Error("errors with different codes should not match")
	}
	if CodeOf(cause) != "" {
		t.Error("CodeOf() of a foreign error should be empty")
	}
}
