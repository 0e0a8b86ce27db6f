package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// ExportOptions contains options for the export command.
type ExportOptions struct {
	CommonOptions
	Output string
	Sign   bool
}

// ExportCommand implements the 'export' command.
func ExportCommand(args []string) {
	exportFlags := flag.NewFlagSet("export", flag.ContinueOnError)
	exportFlags.SetOutput(stderr)

	var opts ExportOptions
	opts.register(exportFlags)
	exportFlags.StringVar(&opts.Output, "o", "", "Output file (default stdout)")
	exportFlags.BoolVar(&opts.Sign, "sign", false, "Sign the exported list with the key of the signing configuration")

	exportFlags.Usage = func() {
		fmt.Fprintf(stdout, "Usage: %s export [options] <tsl.xml>\n\n", os.Args[0])
		fmt.Fprintln(stdout, "Parse and check a trusted list, then serialize it again.")
		fmt.Fprintln(stdout, "The serialized list is unsigned unless -sign is given.")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Arguments:")
		fmt.Fprintln(stdout, "  tsl.xml  Trusted list file")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Options:")
		exportFlags.SetOutput(stdout)
		exportFlags.PrintDefaults()
		exportFlags.SetOutput(stderr)
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Examples:")
		fmt.Fprintf(stdout, "  %s export -o BE-normalized.xml BE.xml\n", os.Args[0])
		fmt.Fprintf(stdout, "  %s export -config gotsl.yaml -sign -o BE-signed.xml BE.xml\n", os.Args[0])
	}

	if err := exportFlags.Parse(args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		osExit(2)
		return
	}
	if exportFlags.NArg() < 1 {
		exportFlags.Usage()
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

	out, err := exportList(env, exportFlags.Arg(0), opts.Sign)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		osExit(1)
		return
	}

	if opts.Output == "" {
		if _, err := stdout.Write(out); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			osExit(1)
		}
		return
	}
	if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write output: %v\n", err)
		osExit(1)
		return
	}
	env.logger.Info("trusted list exported",
		zap.String("output", opts.Output),
		zap.Int("bytes", len(out)),
		zap.Bool("signed", opts.Sign))
}

func exportList(env *environment, path string, sign bool) ([]byte, error) {
	if sign && env.cfg.Signing == nil {
		return nil, errors.New("-sign needs a signing section in the configuration")
	}
	if err := env.loadList(path); err != nil {
		return nil, err
	}
	out, err := env.doc.CheckValuesBuildXML()
	if err != nil {
		return nil, err
	}
	if !sign {
		return out, nil
	}

	signer, err := env.cfg.Signing.Signer()
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	return signer.Sign(out)
}
