package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/georgepadayatti/gotsl/tsl"
)

// CheckOptions contains options for the check command.
type CheckOptions struct {
	CommonOptions
	JSON    bool
	Verbose bool
}

// CheckCommand implements the 'check' command.
func CheckCommand(args []string) {
	checkFlags := flag.NewFlagSet("check", flag.ContinueOnError)
	checkFlags.SetOutput(stderr)

	var opts CheckOptions
	opts.register(checkFlags)
	checkFlags.BoolVar(&opts.JSON, "json", false, "Output results in JSON format")
	checkFlags.BoolVar(&opts.Verbose, "verbose", false, "List providers and services")

	checkFlags.Usage = func() {
		fmt.Fprintf(stdout, "Usage: %s check [options] <tsl.xml>\n\n", os.Args[0])
		fmt.Fprintln(stdout, "Parse a trusted list and check it against its specification.")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Arguments:")
		fmt.Fprintln(stdout, "  tsl.xml  Trusted list file")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Options:")
		checkFlags.SetOutput(stdout)
		checkFlags.PrintDefaults()
		checkFlags.SetOutput(stderr)
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Examples:")
		fmt.Fprintf(stdout, "  %s check BE.xml\n", os.Args[0])
		fmt.Fprintf(stdout, "  %s check -cache -json BE.xml\n", os.Args[0])
		fmt.Fprintf(stdout, "  %s check -enforce-signature -trusted be-signer.pem BE.xml\n", os.Args[0])
	}

	if err := checkFlags.Parse(args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		osExit(2)
		return
	}
	if checkFlags.NArg() < 1 {
		checkFlags.Usage()
		osExit(2)
		return
	}

	env, err := opts.load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		osExit(1)
		return
	}
	defer env.logger.Sync() //nolint:errcheck

	result := checkList(env, checkFlags.Arg(0), opts.Verbose)
	if opts.JSON {
		outputJSON(result)
	} else {
		outputCheckText(result, opts.Verbose)
	}
	if result.Status == StatusInvalid {
		osExit(1)
	}
}

// CheckResult is the JSON-serializable result of the check command.
type CheckResult struct {
	File          string            `json:"file"`
	Status        string            `json:"status"`
	Specification string            `json:"specification"`
	Version       string            `json:"version"`
	ID            string            `json:"id,omitempty"`
	Territory     string            `json:"territory,omitempty"`
	Operator      string            `json:"operator,omitempty"`
	Sequence      int               `json:"sequence,omitempty"`
	IssueDate     string            `json:"issue_date,omitempty"`
	NextUpdate    string            `json:"next_update,omitempty"`
	Closed        bool              `json:"closed,omitempty"`
	Signed        bool              `json:"signed"`
	Providers     []*ProviderInfo   `json:"providers,omitempty"`
	Services      int               `json:"services"`
	Error         *ErrorInfo        `json:"error,omitempty"`
	Diagnostics   []*DiagnosticInfo `json:"diagnostics,omitempty"`
}

// ProviderInfo summarizes a trust service provider.
type ProviderInfo struct {
	Name     string         `json:"name"`
	Services []*ServiceInfo `json:"services"`
}

// ServiceInfo summarizes the current state of a trust service.
type ServiceInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Since  string `json:"since"`
}

// ErrorInfo describes a trusted list error.
type ErrorInfo struct {
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// DiagnosticInfo describes an error tolerated in cache mode.
type DiagnosticInfo struct {
	Attempt string `json:"attempt"`
	Time    string `json:"time"`
	ErrorInfo
}

// Status values reported by the commands.
const (
	StatusValid   = "VALID"
	StatusInvalid = "INVALID"
	StatusWarning = "WARNING"
)

func checkList(env *environment, path string, verbose bool) *CheckResult {
	result := &CheckResult{
		File:          path,
		Status:        StatusValid,
		Specification: env.doc.Specification(),
		Version:       env.doc.Version(),
	}

	if err := env.loadList(path); err != nil {
		result.Status = StatusInvalid
		result.Error = errorInfo(err)
		return result
	}
	for _, d := range env.doc.Diagnostics() {
		result.Status = StatusWarning
		result.Diagnostics = append(result.Diagnostics, &DiagnosticInfo{
			Attempt:   d.AttemptID,
			Time:      d.Time.UTC().Format(time.RFC3339),
			ErrorInfo: *errorInfo(d.Err),
		})
	}

	t := env.doc.TSL()
	if t == nil {
		return result
	}
	result.ID = t.ID()
	result.Signed = t.Signature() != nil
	result.Territory = t.SchemeTerritory()
	if si := t.SchemeInformation(); si != nil {
		result.Operator = si.SchemeOperatorName.In(env.language())
		result.Sequence = si.SequenceNumber
		if !si.ListIssueDateTime.IsZero() {
			result.IssueDate = si.ListIssueDateTime.UTC().Format(time.RFC3339)
		}
		if si.NextUpdate != nil {
			result.NextUpdate = si.NextUpdate.UTC().Format(time.RFC3339)
		} else {
			result.Closed = true
		}
	}

	providers, _ := t.TrustServiceProviders()
	for _, p := range providers {
		info := &ProviderInfo{Name: p.Information().Name().In(env.language())}
		services, _ := p.AllTSPServices()
		for _, s := range services {
			result.Services++
			si := s.Information()
			if si == nil {
				continue
			}
			info.Services = append(info.Services, &ServiceInfo{
				Name:   si.ServiceName().In(env.language()),
				Type:   si.ServiceTypeIdentifier(),
				Status: si.ServiceStatus(),
				Since:  si.StatusStartingTime().UTC().Format(time.RFC3339),
			})
		}
		if verbose {
			result.Providers = append(result.Providers, info)
		}
	}
	return result
}

func errorInfo(err error) *ErrorInfo {
	info := &ErrorInfo{Message: err.Error()}
	var te *tsl.Error
	if errors.As(err, &te) {
		info.Kind = te.Kind.String()
		info.Code = string(te.Code)
	}
	return info
}

func outputCheckText(r *CheckResult, verbose bool) {
	fmt.Fprintf(stdout, "Trusted List Check\n")
	fmt.Fprintf(stdout, "==================\n\n")
	fmt.Fprintf(stdout, "%s %s\n", getStatusIcon(r.Status), r.File)
	fmt.Fprintf(stdout, "  Specification: %s %s\n", r.Specification, r.Version)

	if r.Error != nil {
		fmt.Fprintf(stdout, "  Error: %s\n", r.Error.Message)
		if r.Error.Code != "" {
			fmt.Fprintf(stdout, "  Code: %s (%s)\n", r.Error.Code, r.Error.Kind)
		}
		return
	}

	if r.Territory != "" {
		fmt.Fprintf(stdout, "  Territory: %s\n", r.Territory)
	}
	if r.Operator != "" {
		fmt.Fprintf(stdout, "  Operator: %s\n", r.Operator)
	}
	if r.Sequence > 0 {
		fmt.Fprintf(stdout, "  Sequence: %d\n", r.Sequence)
	}
	if r.IssueDate != "" {
		fmt.Fprintf(stdout, "  Issued: %s\n", r.IssueDate)
	}
	switch {
	case r.Closed:
		fmt.Fprintf(stdout, "  Next update: none (closed list)\n")
	case r.NextUpdate != "":
		fmt.Fprintf(stdout, "  Next update: %s\n", r.NextUpdate)
	}
	fmt.Fprintf(stdout, "  Signed: %s\n", boolToYesNo(r.Signed))
	fmt.Fprintf(stdout, "  Services: %d\n", r.Services)

	for _, d := range r.Diagnostics {
		fmt.Fprintf(stdout, "  %s %s %s\n", getStatusIcon(StatusWarning), d.Code, d.Message)
	}

	if verbose {
		for _, p := range r.Providers {
			fmt.Fprintf(stdout, "\n  %s\n", p.Name)
			for _, s := range p.Services {
				fmt.Fprintf(stdout, "    - %s\n", s.Name)
				fmt.Fprintf(stdout, "      Type: %s\n", s.Type)
				fmt.Fprintf(stdout, "      Status: %s (since %s)\n", s.Status, s.Since)
			}
		}
	}
}
