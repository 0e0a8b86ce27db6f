package cli

import (
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/georgepadayatti/gotsl/keys"
	"github.com/georgepadayatti/gotsl/trustlist"
)

// MatchOptions contains options for the match command.
type MatchOptions struct {
	CommonOptions
	At   string
	JSON bool
}

// MatchCommand implements the 'match' command.
func MatchCommand(args []string) {
	matchFlags := flag.NewFlagSet("match", flag.ContinueOnError)
	matchFlags.SetOutput(stderr)

	var opts MatchOptions
	opts.register(matchFlags)
	matchFlags.StringVar(&opts.At, "at", "", "Evaluate at this RFC 3339 time instead of now")
	matchFlags.BoolVar(&opts.JSON, "json", false, "Output results in JSON format")

	matchFlags.Usage = func() {
		fmt.Fprintf(stdout, "Usage: %s match [options] <tsl.xml> <cert>\n\n", os.Args[0])
		fmt.Fprintln(stdout, "Find the trust services whose digital identity is, or issued, a certificate,")
		fmt.Fprintln(stdout, "with their status and the qualifiers that apply to the certificate.")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Arguments:")
		fmt.Fprintln(stdout, "  tsl.xml  Trusted list file")
		fmt.Fprintln(stdout, "  cert     Certificate file (PEM or DER)")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Options:")
		matchFlags.SetOutput(stdout)
		matchFlags.PrintDefaults()
		matchFlags.SetOutput(stderr)
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Examples:")
		fmt.Fprintf(stdout, "  %s match BE.xml signer.pem\n", os.Args[0])
		fmt.Fprintf(stdout, "  %s match -at 2019-06-01T00:00:00Z -json BE.xml signer.pem\n", os.Args[0])
	}

	if err := matchFlags.Parse(args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		osExit(2)
		return
	}
	if matchFlags.NArg() < 2 {
		matchFlags.Usage()
		osExit(2)
		return
	}

	var at time.Time
	if opts.At != "" {
		var err error
		if at, err = time.Parse(time.RFC3339, opts.At); err != nil {
			fmt.Fprintf(stderr, "Error: invalid -at time: %v\n", err)
			osExit(2)
			return
		}
	}

	cert, err := keys.LoadCertificate(matchFlags.Arg(1))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		osExit(1)
		return
	}

	env, err := opts.load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		osExit(1)
		return
	}
	defer env.logger.Sync() //nolint:errcheck

	result, err := matchCertificate(env, matchFlags.Arg(0), cert, at)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		osExit(1)
		return
	}
	if opts.JSON {
		outputJSON(result)
	} else {
		outputMatchText(result)
	}
	if len(result.Services) == 0 {
		osExit(1)
	}
}

// MatchResult is the JSON-serializable result of the match command.
type MatchResult struct {
	Certificate *CertificateInfo  `json:"certificate"`
	At          string            `json:"at"`
	Services    []*MatchedService `json:"services"`
}

// CertificateInfo describes the looked up certificate.
type CertificateInfo struct {
	Subject      string `json:"subject"`
	Issuer       string `json:"issuer"`
	SerialNumber string `json:"serial_number"`
}

// MatchedService is a service matching the certificate.
type MatchedService struct {
	Provider   string   `json:"provider"`
	Service    string   `json:"service"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Since      string   `json:"since"`
	Relation   string   `json:"relation"`
	MatchedBy  string   `json:"matched_by,omitempty"`
	Qualifiers []string `json:"qualifiers,omitempty"`
}

// Relations between a service and the looked up certificate.
const (
	RelationIdentity = "identity"
	RelationIssuer   = "issuer"
)

func matchCertificate(env *environment, path string, cert *x509.Certificate, at time.Time) (*MatchResult, error) {
	if err := env.loadList(path); err != nil {
		return nil, err
	}

	var (
		matches []trustlist.ServiceMatch
		err     error
	)
	if at.IsZero() {
		at = time.Now()
		matches, err = env.doc.StatusNow(cert)
	} else {
		matches, err = env.doc.ServicesFor(cert, at)
	}
	if err != nil {
		return nil, err
	}

	result := &MatchResult{
		Certificate: &CertificateInfo{
			Subject:      cert.Subject.String(),
			Issuer:       cert.Issuer.String(),
			SerialNumber: cert.SerialNumber.String(),
		},
		At:       at.UTC().Format(time.RFC3339),
		Services: []*MatchedService{},
	}
	for _, m := range matches {
		ms := &MatchedService{
			Provider:   m.Provider.Information().Name().In(env.language()),
			Service:    m.State.ServiceName().In(env.language()),
			Type:       m.State.ServiceTypeIdentifier(),
			Status:     m.Status,
			Since:      m.State.StatusStartingTime().UTC().Format(time.RFC3339),
			Relation:   RelationIssuer,
			Qualifiers: m.Qualifiers,
		}
		if m.Identifies {
			ms.Relation = RelationIdentity
		} else {
			ms.MatchedBy = issuerMatchedBy(m)
		}
		result.Services = append(result.Services, ms)
	}
	return result, nil
}

func issuerMatchedBy(m trustlist.ServiceMatch) string {
	switch {
	case m.Issuer.Certificate != nil:
		return "certificate"
	case m.Issuer.PublicKey != nil:
		return "public key"
	case m.Issuer.SKI != nil:
		return "subject name and key identifier"
	default:
		return ""
	}
}

func outputMatchText(r *MatchResult) {
	fmt.Fprintf(stdout, "Trusted List Match\n")
	fmt.Fprintf(stdout, "==================\n\n")
	fmt.Fprintf(stdout, "Certificate: %s\n", r.Certificate.Subject)
	fmt.Fprintf(stdout, "  Issuer: %s\n", r.Certificate.Issuer)
	fmt.Fprintf(stdout, "  Serial: %s\n", r.Certificate.SerialNumber)
	fmt.Fprintf(stdout, "  At: %s\n\n", r.At)

	if len(r.Services) == 0 {
		fmt.Fprintf(stdout, "%s No trust service matches this certificate\n", getStatusIcon(StatusInvalid))
		return
	}
	for _, s := range r.Services {
		status := StatusWarning
		if isGranted(s.Status) {
			status = StatusValid
		}
		fmt.Fprintf(stdout, "%s %s\n", getStatusIcon(status), s.Service)
		fmt.Fprintf(stdout, "  Provider: %s\n", s.Provider)
		fmt.Fprintf(stdout, "  Type: %s\n", s.Type)
		fmt.Fprintf(stdout, "  Status: %s (since %s)\n", s.Status, s.Since)
		if s.MatchedBy != "" {
			fmt.Fprintf(stdout, "  Relation: %s (by %s)\n", s.Relation, s.MatchedBy)
		} else {
			fmt.Fprintf(stdout, "  Relation: %s\n", s.Relation)
		}
		for _, q := range s.Qualifiers {
			fmt.Fprintf(stdout, "  Qualifier: %s\n", q)
		}
	}
}
