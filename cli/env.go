package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/georgepadayatti/gotsl/config"
	"github.com/georgepadayatti/gotsl/trustlist"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// CommonOptions are the options shared by every command that loads a list.
// Flags override the configuration file.
type CommonOptions struct {
	ConfigFile       string
	Version          string
	CacheMode        bool
	EnforceSignature bool
	Engine           string
	Trusted          stringList
	LogLevel         string
}

func (o *CommonOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&o.Version, "tsl-version", "", "Trusted list specification version (default 2.1.1)")
	fs.BoolVar(&o.CacheMode, "cache", false, "Keep a list that fails to parse or check and report the errors")
	fs.BoolVar(&o.EnforceSignature, "enforce-signature", false, "Require a valid enveloped signature")
	fs.StringVar(&o.Engine, "engine", "", "Signature engine: signedxml or goxmldsig")
	fs.Var(&o.Trusted, "trusted", "Trusted signer certificate file (PEM or DER, repeatable)")
	fs.StringVar(&o.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// environment is a loaded configuration with its logger and an empty
// document.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	doc    *trustlist.Document
}

func (o *CommonOptions) load() (*environment, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadConfig(o.ConfigFile); err != nil {
			return nil, err
		}
	}

	l := cfg.TrustedList
	if o.Version != "" {
		l.Version = o.Version
	}
	if o.Engine != "" {
		l.SignatureEngine = o.Engine
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	l.CacheMode = l.CacheMode || o.CacheMode
	l.EnforceSignature = l.EnforceSignature || o.EnforceSignature
	l.TrustedSigners = append(l.TrustedSigners, o.Trusted...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.Logging.Build()
	if err != nil {
		return nil, err
	}
	verifier, err := l.Verifier()
	if err != nil {
		return nil, err
	}
	doc, err := trustlist.New(l.Specification, l.Version,
		trustlist.WithLogger(logger.With(zap.String("package", "cli"))),
		trustlist.WithVerifier(verifier),
		trustlist.WithOIDNamer(l.OIDNamer()))
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger, doc: doc}, nil
}

// loadList builds and checks the list at path with the configured
// signature and cache settings.
func (e *environment) loadList(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open trusted list: %w", err)
	}
	defer f.Close()

	l := e.cfg.TrustedList
	return e.doc.BuildAndCheck(f, l.EnforceSignature, l.CacheMode)
}

func (e *environment) language() string {
	return e.cfg.TrustedList.PreferredLanguage
}
