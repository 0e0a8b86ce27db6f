// Package config loads the YAML configuration of the gotsl tool: which
// trusted list specification to expect, how strictly to check it, which
// certificates to trust for its signature, the key that signs exported
// lists, and logging.
package config

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/gotsl/keys"
	"github.com/georgepadayatti/gotsl/tsl"
	"github.com/georgepadayatti/gotsl/xmlsig"
)

// Common errors
var (
	ErrConfigurationError   = errors.New("configuration error")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnexpectedField      = errors.New("unexpected field in configuration")
	ErrInvalidOID           = errors.New("invalid OID")
)

// OIDRegex matches OID strings like "1.2.3.4"
var OIDRegex = regexp.MustCompile(`^\d+(\.\d+)+$`)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConfigurationError
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// TrustStoreConfig points at a PKCS#12 trust store.
type TrustStoreConfig struct {
	File     string `yaml:"file" json:"file"`
	Password string `yaml:"password" json:"password,omitempty"`
}

// TSLConfig describes the trusted list to load and how to check it.
type TSLConfig struct {
	// Specification is the specification identifier, default ETSI TS 119612.
	Specification string `yaml:"specification" json:"specification"`

	// Version is the specification version, default 2.1.1.
	Version string `yaml:"version" json:"version"`

	// CacheMode keeps a list that fails to parse or check instead of the
	// previous one.
	CacheMode bool `yaml:"cache-mode" json:"cache_mode"`

	// EnforceSignature requires a valid enveloped signature.
	EnforceSignature bool `yaml:"enforce-signature" json:"enforce_signature"`

	// SignatureEngine is "signedxml" or "goxmldsig".
	SignatureEngine string `yaml:"signature-engine" json:"signature_engine,omitempty"`

	// TrustedSigners are PEM or DER files holding the certificates allowed
	// to sign the list.
	TrustedSigners []string `yaml:"trusted-signers" json:"trusted_signers,omitempty"`

	// TrustStore is a PKCS#12 trust store adding to TrustedSigners.
	TrustStore *TrustStoreConfig `yaml:"truststore" json:"truststore,omitempty"`

	// PreferredLanguage selects the language of names in reports.
	PreferredLanguage string `yaml:"preferred-language" json:"preferred_language,omitempty"`

	// OIDNames adds display names for OIDs in diagnostics.
	OIDNames map[string]string `yaml:"oid-names" json:"oid_names,omitempty"`
}

// SetDefaults fills unset fields.
func (c *TSLConfig) SetDefaults() {
	if c.Specification == "" {
		c.Specification = tsl.Specification119612
	}
	if c.Version == "" {
		c.Version = tsl.Version020101
	}
	if c.SignatureEngine == "" {
		c.SignatureEngine = string(xmlsig.EngineSignedXML)
	}
	if c.PreferredLanguage == "" {
		c.PreferredLanguage = tsl.PreferredLanguage
	}
}

// Validate validates the trusted list configuration.
func (c *TSLConfig) Validate() error {
	if strings.TrimSpace(c.Specification) == "" {
		return &ConfigError{Field: "specification", Message: "required field is missing", Err: ErrMissingRequiredField}
	}
	if strings.TrimSpace(c.Version) == "" {
		return &ConfigError{Field: "version", Message: "required field is missing", Err: ErrMissingRequiredField}
	}
	switch xmlsig.Engine(c.SignatureEngine) {
	case xmlsig.EngineSignedXML, xmlsig.EngineGoXMLDsig, "":
	default:
		return NewConfigError("signature-engine", fmt.Sprintf("unknown engine '%s'", c.SignatureEngine))
	}
	if c.EnforceSignature && len(c.TrustedSigners) == 0 && c.TrustStore == nil {
		return NewConfigError("trusted-signers", "enforce-signature needs trusted-signers or a truststore")
	}
	if c.TrustStore != nil && c.TrustStore.File == "" {
		return &ConfigError{Field: "truststore.file", Message: "required field is missing", Err: ErrMissingRequiredField}
	}
	for oid := range c.OIDNames {
		if _, err := ProcessOID(oid); err != nil {
			return err
		}
	}
	return nil
}

// LoadTrustedSigners loads every trusted signer certificate, the PEM/DER
// files first and then the trust store.
func (c *TSLConfig) LoadTrustedSigners() ([]*x509.Certificate, error) {
	certs, err := keys.LoadTrustedSigners(c.TrustedSigners)
	if err != nil {
		return nil, err
	}
	if c.TrustStore != nil {
		stored, err := keys.LoadTrustStore(c.TrustStore.File, c.TrustStore.Password)
		if err != nil {
			return nil, err
		}
		certs = append(certs, stored...)
	}
	return certs, nil
}

// Verifier builds the signature verifier, or returns nil when no signer is
// trusted.
func (c *TSLConfig) Verifier() (xmlsig.Verifier, error) {
	certs, err := c.LoadTrustedSigners()
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, nil
	}
	return xmlsig.NewVerifier(xmlsig.Engine(c.SignatureEngine), certs)
}

// OIDNamer names OIDs from OIDNames first and tsl.DefaultOIDNamer second.
func (c *TSLConfig) OIDNamer() tsl.OIDNamer {
	if len(c.OIDNames) == 0 {
		return tsl.DefaultOIDNamer
	}
	names := make(map[string]string, len(c.OIDNames))
	for oid, name := range c.OIDNames {
		if dotted, err := ProcessOID(oid); err == nil {
			names[dotted] = name
		}
	}
	return tsl.OIDNamerFunc(func(oid string) string {
		if name, ok := names[oid]; ok {
			return name + " (" + oid + ")"
		}
		return tsl.DefaultOIDNamer.OIDName(oid)
	})
}

// PKCS12SignatureConfig contains configuration for signing using a PKCS#12 file.
type PKCS12SignatureConfig struct {
	// PFXFile is the path to the PKCS#12 file.
	PFXFile string `yaml:"pfx-file" json:"pfx_file"`

	// PFXPassphrase is the PKCS#12 passphrase.
	PFXPassphrase string `yaml:"pfx-passphrase" json:"pfx_passphrase,omitempty"`

	// OtherCertsFiles are paths to certificates appended to the chain.
	OtherCertsFiles []string `yaml:"other-certs" json:"other_certs,omitempty"`
}

// Validate validates the PKCS12 signature configuration.
func (c *PKCS12SignatureConfig) Validate() error {
	if c.PFXFile == "" {
		return &ConfigError{Field: "pfx-file", Message: "required field is missing", Err: ErrMissingRequiredField}
	}
	return nil
}

// Load loads the signing key and chain.
func (c *PKCS12SignatureConfig) Load() (*keys.SigningCredential, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cred, err := keys.LoadSigningChain(c.PFXFile, c.PFXPassphrase)
	if err != nil {
		return nil, err
	}
	return withOtherCerts(cred, c.OtherCertsFiles)
}

// PemDerSignatureConfig contains configuration for signing using PEM/DER files.
type PemDerSignatureConfig struct {
	// KeyFile is the path to the private key file.
	KeyFile string `yaml:"key-file" json:"key_file"`

	// CertFile is the path to the certificate file.
	CertFile string `yaml:"cert-file" json:"cert_file"`

	// KeyPassphrase is the private key passphrase.
	KeyPassphrase string `yaml:"key-passphrase" json:"key_passphrase,omitempty"`

	// OtherCertsFiles are paths to certificates appended to the chain.
	OtherCertsFiles []string `yaml:"other-certs" json:"other_certs,omitempty"`
}

// Validate validates the PEM/DER signature configuration.
func (c *PemDerSignatureConfig) Validate() error {
	if c.KeyFile == "" {
		return &ConfigError{Field: "key-file", Message: "required field is missing", Err: ErrMissingRequiredField}
	}
	if c.CertFile == "" {
		return &ConfigError{Field: "cert-file", Message: "required field is missing", Err: ErrMissingRequiredField}
	}
	return nil
}

// Load loads the signing key and chain.
func (c *PemDerSignatureConfig) Load() (*keys.SigningCredential, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cred, err := keys.LoadPemDer(c.CertFile, c.KeyFile, c.GetPassphraseBytes())
	if err != nil {
		return nil, err
	}
	return withOtherCerts(cred, c.OtherCertsFiles)
}

// GetPassphraseBytes returns the passphrase as bytes.
func (c *PemDerSignatureConfig) GetPassphraseBytes() []byte {
	if c.KeyPassphrase == "" {
		return nil
	}
	return []byte(c.KeyPassphrase)
}

func withOtherCerts(cred *keys.SigningCredential, files []string) (*keys.SigningCredential, error) {
	if len(files) == 0 {
		return cred, nil
	}
	certs, err := keys.LoadTrustedSigners(files)
	if err != nil {
		return nil, fmt.Errorf("failed to load other certs: %w", err)
	}
	cred.Chain = append(cred.Chain, certs...)
	return cred, nil
}

// SigningConfig selects the credential that signs exported trusted lists.
type SigningConfig struct {
	// Type is "pemder" or "pkcs12".
	Type string `yaml:"type" json:"type"`

	PemDer *PemDerSignatureConfig `yaml:"pemder" json:"pemder,omitempty"`
	PKCS12 *PKCS12SignatureConfig `yaml:"pkcs12" json:"pkcs12,omitempty"`
}

// Validate validates the signing configuration.
func (c *SigningConfig) Validate() error {
	switch c.Type {
	case "pemder":
		if c.PemDer == nil {
			return &ConfigError{Field: "signing.pemder", Message: "required for type pemder", Err: ErrMissingRequiredField}
		}
		return c.PemDer.Validate()
	case "pkcs12":
		if c.PKCS12 == nil {
			return &ConfigError{Field: "signing.pkcs12", Message: "required for type pkcs12", Err: ErrMissingRequiredField}
		}
		return c.PKCS12.Validate()
	default:
		return NewConfigError("signing.type", fmt.Sprintf("unknown type '%s'", c.Type))
	}
}

// Load loads the configured credential.
func (c *SigningConfig) Load() (*keys.SigningCredential, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Type == "pkcs12" {
		return c.PKCS12.Load()
	}
	return c.PemDer.Load()
}

// Signer loads the configured credential and returns an XML signer for it.
func (c *SigningConfig) Signer() (*xmlsig.Signer, error) {
	cred, err := c.Load()
	if err != nil {
		return nil, err
	}
	return xmlsig.NewSigner(cred.Key, cred.Chain)
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is the log format (console, json).
	Format string `yaml:"format" json:"format,omitempty"`

	// Output is the log output (stdout, stderr, or file path).
	Output string `yaml:"output" json:"output,omitempty"`
}

// SetDefaults sets default values for logging configuration.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate validates the logging configuration.
func (c *LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error(), Err: err}
	}
	switch c.Format {
	case "console", "json":
	default:
		return NewConfigError("logging.format", fmt.Sprintf("unknown format '%s'", c.Format))
	}
	return nil
}

// Build builds a zap logger from the configuration.
func (c *LoggingConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, &ConfigError{Field: "logging.level", Message: err.Error(), Err: err}
	}
	cfg := zap.NewProductionConfig()
	if c.Format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = c.Format
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{c.Output}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Config contains the complete application configuration.
type Config struct {
	TrustedList *TSLConfig     `yaml:"trusted-list" json:"trusted_list,omitempty"`
	Signing     *SigningConfig `yaml:"signing" json:"signing,omitempty"`
	Logging     *LoggingConfig `yaml:"logging" json:"logging,omitempty"`
}

// SetDefaults fills unset sections and fields.
func (c *Config) SetDefaults() {
	if c.TrustedList == nil {
		c.TrustedList = &TSLConfig{}
	}
	c.TrustedList.SetDefaults()
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	c.Logging.SetDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if c.TrustedList != nil {
		if err := c.TrustedList.Validate(); err != nil {
			return err
		}
	}
	if c.Signing != nil {
		if err := c.Signing.Validate(); err != nil {
			return err
		}
	}
	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a configuration with every default set.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// LoadConfig loads a configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses configuration from YAML data, rejects unknown keys,
// sets defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	raw = normalizeKeys(raw)
	if err := checkSectionKeys(raw); err != nil {
		return nil, err
	}

	normalized, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(normalized, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigFromMap loads configuration from a map.
func LoadConfigFromMap(data map[string]any) (*Config, error) {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config map: %w", err)
	}
	return ParseConfig(yamlData)
}

var sectionKeys = map[string][]string{
	"":             {"trusted-list", "signing", "logging"},
	"trusted-list": {"specification", "version", "cache-mode", "enforce-signature", "signature-engine", "trusted-signers", "truststore", "preferred-language", "oid-names"},
	"signing":      {"type", "pemder", "pkcs12"},
	"logging":      {"level", "format", "output"},
}

func checkSectionKeys(raw map[string]any) error {
	if err := CheckConfigKeys("gotsl", sectionKeys[""], mapKeys(raw)); err != nil {
		return err
	}
	for section, expected := range sectionKeys {
		if section == "" {
			continue
		}
		sub, ok := raw[section].(map[string]any)
		if !ok {
			continue
		}
		if err := CheckConfigKeys(section, expected, mapKeys(sub)); err != nil {
			return err
		}
	}
	return nil
}

// normalizeKeys rewrites underscores in keys to dashes, leaving the
// user-chosen keys of oid-names alone.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := normalizeKey(k)
		if sub, ok := v.(map[string]any); ok && key != "oid-names" {
			v = normalizeKeys(sub)
		}
		out[key] = v
	}
	return out
}

func mapKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CheckConfigKeys checks if all provided keys are valid for a given configuration type.
func CheckConfigKeys(configName string, expectedKeys, suppliedKeys []string) error {
	expectedSet := make(map[string]bool)
	for _, k := range expectedKeys {
		expectedSet[normalizeKey(k)] = true
	}

	var unexpected []string
	for _, k := range suppliedKeys {
		if !expectedSet[normalizeKey(k)] {
			unexpected = append(unexpected, k)
		}
	}

	if len(unexpected) > 0 {
		keyWord := "key"
		if len(unexpected) > 1 {
			keyWord = "keys"
		}
		return fmt.Errorf("%w: unexpected %s in configuration for %s: %s",
			ErrUnexpectedField, keyWord, configName, strings.Join(unexpected, ", "))
	}

	return nil
}

// normalizeKey normalizes a configuration key (underscores to dashes).
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// ProcessOID validates a dotted OID string, accepting the "urn:oid:" form
// used by trusted lists.
func ProcessOID(oidString string) (string, error) {
	if oidString == "" {
		return "", &ConfigError{Field: "oid", Message: "OID string is empty", Err: ErrInvalidOID}
	}
	oid := strings.TrimPrefix(oidString, "urn:oid:")
	if !OIDRegex.MatchString(oid) {
		return "", &ConfigError{Field: "oid", Message: fmt.Sprintf("'%s' is not a dotted OID", oidString), Err: ErrInvalidOID}
	}
	return oid, nil
}

// ProcessOIDs validates and normalizes a list of OID strings.
func ProcessOIDs(oidStrings []string) ([]string, error) {
	result := make([]string, 0, len(oidStrings))
	for _, oid := range oidStrings {
		processed, err := ProcessOID(oid)
		if err != nil {
			return nil, err
		}
		result = append(result, processed)
	}
	return result, nil
}
