package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/georgepadayatti/gotsl/tsl"
)

func generateSelfSigned(t *testing.T, cn string) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("Failed to parse certificate: %v", err)
	}
	return cert, key
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Expected field 'field', got '%s'", err.Field)
	}
	if err.Message != "message" {
		t.Errorf("Expected message 'message', got '%s'", err.Message)
	}

	expected := "config error in 'field': message"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}
	if !errors.Is(err, ErrConfigurationError) {
		t.Error("ConfigError without cause should match ErrConfigurationError")
	}
}

func TestConfigErrorWithoutField(t *testing.T) {
	err := NewConfigError("", "general error")
	expected := "config error: general error"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}
}

func TestOIDRegex(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1.2.3.4", true},
		{"0.4.0.194112.1.2", true},
		{"2.5.4.3", true},
		{"1.2", true},
		{"1", false},
		{"abc", false},
		{"1.2.abc", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := OIDRegex.MatchString(tt.input); got != tt.expected {
			t.Errorf("OIDRegex.MatchString(%s) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestProcessOID(t *testing.T) {
	tests := []struct {
		input       string
		expected    string
		shouldError bool
	}{
		{"1.2.3.4", "1.2.3.4", false},
		{"urn:oid:0.4.0.194112.1.2", "0.4.0.194112.1.2", false},
		{"digitalSignature", "", true},
		{"urn:oid:", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ProcessOID(tt.input)
			if tt.shouldError {
				if !errors.Is(err, ErrInvalidOID) {
					t.Errorf("Expected ErrInvalidOID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ProcessOID(%s) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestProcessOIDs(t *testing.T) {
	got, err := ProcessOIDs([]string{"1.2.3", "urn:oid:2.5.4.3"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 2 || got[1] != "2.5.4.3" {
		t.Errorf("ProcessOIDs = %v", got)
	}
	if _, err := ProcessOIDs([]string{"1.2.3", ""}); err == nil {
		t.Error("Expected error for empty OID")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cache_mode", "cache-mode"},
		{"cache-mode", "cache-mode"},
		{"trusted_signers_list", "trusted-signers-list"},
		{"version", "version"},
	}

	for _, tt := range tests {
		if got := normalizeKey(tt.input); got != tt.expected {
			t.Errorf("normalizeKey(%s) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestCheckConfigKeys(t *testing.T) {
	expected := []string{"cache-mode", "version"}

	if err := CheckConfigKeys("trusted-list", expected, []string{"cache_mode", "version"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	err := CheckConfigKeys("trusted-list", expected, []string{"cache-mode", "vers", "extra"})
	if !errors.Is(err, ErrUnexpectedField) {
		t.Fatalf("Expected ErrUnexpectedField, got %v", err)
	}
	if !strings.Contains(err.Error(), "unexpected keys") || !strings.Contains(err.Error(), "vers, extra") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.TrustedList.Specification != tsl.Specification119612 {
		t.Errorf("Specification = %s", c.TrustedList.Specification)
	}
	if c.TrustedList.Version != tsl.Version020101 {
		t.Errorf("Version = %s", c.TrustedList.Version)
	}
	if c.TrustedList.SignatureEngine != "signedxml" {
		t.Errorf("SignatureEngine = %s", c.TrustedList.SignatureEngine)
	}
	if c.TrustedList.PreferredLanguage != "en" {
		t.Errorf("PreferredLanguage = %s", c.TrustedList.PreferredLanguage)
	}
	if c.Logging.Level != "info" || c.Logging.Format != "console" || c.Logging.Output != "stderr" {
		t.Errorf("Logging = %+v", c.Logging)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	yamlData := `
trusted-list:
  version: "020101"
  cache-mode: true
  enforce-signature: true
  signature-engine: goxmldsig
  trusted-signers:
    - be-signer.pem
  preferred-language: fr
  oid-names:
    "urn:oid:1.3.6.1.4.1.99999.1": vendorPolicy
signing:
  type: pkcs12
  pkcs12:
    pfx-file: operator.p12
    pfx-passphrase: secret
logging:
  level: debug
  format: json
`
	c, err := ParseConfig([]byte(yamlData))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	l := c.TrustedList
	if l.Specification != tsl.Specification119612 {
		t.Errorf("Specification default not applied: %s", l.Specification)
	}
	if l.Version != "020101" || !l.CacheMode || !l.EnforceSignature {
		t.Errorf("TrustedList = %+v", l)
	}
	if l.SignatureEngine != "goxmldsig" || l.PreferredLanguage != "fr" {
		t.Errorf("TrustedList = %+v", l)
	}
	if len(l.TrustedSigners) != 1 || l.TrustedSigners[0] != "be-signer.pem" {
		t.Errorf("TrustedSigners = %v", l.TrustedSigners)
	}
	if got := l.OIDNamer().OIDName("1.3.6.1.4.1.99999.1"); got != "vendorPolicy (1.3.6.1.4.1.99999.1)" {
		t.Errorf("OIDName = %s", got)
	}
	if got := l.OIDNamer().OIDName("2.5.4.3"); got != "commonName (2.5.4.3)" {
		t.Errorf("OIDName fallback = %s", got)
	}
	if c.Signing.Type != "pkcs12" || c.Signing.PKCS12.PFXFile != "operator.p12" {
		t.Errorf("Signing = %+v", c.Signing)
	}
	if c.Logging.Level != "debug" || c.Logging.Format != "json" || c.Logging.Output != "stderr" {
		t.Errorf("Logging = %+v", c.Logging)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		field   string
	}{
		{"syntax", "trusted-list: [", nil, ""},
		{"unknown top key", "extra: 1\n", ErrUnexpectedField, ""},
		{"unknown section key", "trusted-list:\n  cache-mod: true\n", ErrUnexpectedField, ""},
		{"unknown engine", "trusted-list:\n  signature-engine: xmlsec\n", nil, "signature-engine"},
		{"enforce without signers", "trusted-list:\n  enforce-signature: true\n", nil, "trusted-signers"},
		{"truststore without file", "trusted-list:\n  truststore:\n    password: x\n", ErrMissingRequiredField, "truststore.file"},
		{"bad oid name", "trusted-list:\n  oid-names:\n    policy: x\n", ErrInvalidOID, "oid"},
		{"unknown signing type", "signing:\n  type: hsm\n", nil, "signing.type"},
		{"pemder without section", "signing:\n  type: pemder\n", ErrMissingRequiredField, "signing.pemder"},
		{"pkcs12 without file", "signing:\n  type: pkcs12\n  pkcs12:\n    pfx-passphrase: x\n", ErrMissingRequiredField, "pfx-file"},
		{"bad level", "logging:\n  level: loud\n", nil, "logging.level"},
		{"bad format", "logging:\n  format: xml\n", nil, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.field != "" {
				var ce *ConfigError
				if !errors.As(err, &ce) {
					t.Fatalf("error %v is not a ConfigError", err)
				}
				if ce.Field != tt.field {
					t.Errorf("Field = %s, want %s", ce.Field, tt.field)
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gotsl.yaml", []byte("trusted-list:\n  cache_mode: true\n"))

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !c.TrustedList.CacheMode {
		t.Error("cache_mode spelled with underscore should be accepted")
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadConfigFromMap(t *testing.T) {
	c, err := LoadConfigFromMap(map[string]any{
		"trusted-list": map[string]any{"version": "2.1.1", "cache-mode": true},
	})
	if err != nil {
		t.Fatalf("LoadConfigFromMap failed: %v", err)
	}
	if !c.TrustedList.CacheMode || c.TrustedList.Version != "2.1.1" {
		t.Errorf("TrustedList = %+v", c.TrustedList)
	}
}

func TestTSLConfigVerifier(t *testing.T) {
	dir := t.TempDir()
	be, _ := generateSelfSigned(t, "Signer BE")
	fr, _ := generateSelfSigned(t, "Signer FR")

	pemFile := writeFile(t, dir, "be.pem", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: be.Raw}))
	pfx, err := pkcs12.Modern.EncodeTrustStore([]*x509.Certificate{fr}, "changeit")
	if err != nil {
		t.Fatalf("EncodeTrustStore failed: %v", err)
	}
	storeFile := writeFile(t, dir, "trust.p12", pfx)

	c := &TSLConfig{
		TrustedSigners: []string{pemFile},
		TrustStore:     &TrustStoreConfig{File: storeFile, Password: "changeit"},
	}
	c.SetDefaults()

	certs, err := c.LoadTrustedSigners()
	if err != nil {
		t.Fatalf("LoadTrustedSigners failed: %v", err)
	}
	if len(certs) != 2 || certs[0].Subject.CommonName != "Signer BE" || certs[1].Subject.CommonName != "Signer FR" {
		t.Errorf("LoadTrustedSigners returned %d certs in unexpected order", len(certs))
	}

	v, err := c.Verifier()
	if err != nil || v == nil {
		t.Fatalf("Verifier() = %v, %v", v, err)
	}

	empty := &TSLConfig{}
	empty.SetDefaults()
	if v, err := empty.Verifier(); err != nil || v != nil {
		t.Errorf("Verifier() without signers = %v, %v; want nil, nil", v, err)
	}

	c.TrustStore.Password = "wrong"
	if _, err := c.Verifier(); err == nil {
		t.Error("Expected error for wrong trust store password")
	}
}

func TestSigningConfigSigner(t *testing.T) {
	dir := t.TempDir()
	cert, key := generateSelfSigned(t, "Scheme Operator")
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to marshal key: %v", err)
	}
	certFile := writeFile(t, dir, "operator.pem", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))
	keyFile := writeFile(t, dir, "operator.key", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}))
	pfx, err := pkcs12.Modern.Encode(key, cert, nil, "secret")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	pfxFile := writeFile(t, dir, "operator.p12", pfx)

	tests := []struct {
		name string
		cfg  SigningConfig
	}{
		{"pemder", SigningConfig{Type: "pemder", PemDer: &PemDerSignatureConfig{CertFile: certFile, KeyFile: keyFile}}},
		{"pkcs12", SigningConfig{Type: "pkcs12", PKCS12: &PKCS12SignatureConfig{PFXFile: pfxFile, PFXPassphrase: "secret"}}},
		{"pkcs12 with other certs", SigningConfig{Type: "pkcs12", PKCS12: &PKCS12SignatureConfig{
			PFXFile: pfxFile, PFXPassphrase: "secret", OtherCertsFiles: []string{certFile},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := tt.cfg.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !cred.Certificate().Equal(cert) {
				t.Error("Certificate() is not the operator certificate")
			}
			if _, err := tt.cfg.Signer(); err != nil {
				t.Errorf("Signer failed: %v", err)
			}
		})
	}
}

func TestPemDerSignatureConfigGetPassphraseBytes(t *testing.T) {
	c := &PemDerSignatureConfig{}
	if c.GetPassphraseBytes() != nil {
		t.Error("Expected nil for empty passphrase")
	}
	c.KeyPassphrase = "secret"
	if string(c.GetPassphraseBytes()) != "secret" {
		t.Error("Expected passphrase bytes")
	}
}

func TestLoggingConfigBuild(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			c := &LoggingConfig{Level: "warn", Format: format, Output: filepath.Join(dir, format+".log")}
			logger, err := c.Build()
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			logger.Info("dropped")
			logger.Warn("kept")
			_ = logger.Sync()

			data, err := os.ReadFile(c.Output)
			if err != nil {
				t.Fatalf("Failed to read log: %v", err)
			}
			if strings.Contains(string(data), "dropped") || !strings.Contains(string(data), "kept") {
				t.Errorf("log output = %q", data)
			}
		})
	}

	if _, err := (&LoggingConfig{Level: "loud"}).Build(); err == nil {
		t.Error("Expected error for invalid level")
	}
}
