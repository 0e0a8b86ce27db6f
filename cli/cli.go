// Package cli provides the command-line interface for checking trusted
// lists and looking certificates up in them.
package cli

import (
	"fmt"
	"io"
	"os"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// stdout and stderr are variables to allow testing
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the CLI with the given arguments.
// This is the main entry point for the CLI.
func Run(args []string) {
	if len(args) < 2 {
		Usage()
		return
	}

	command := args[1]

	switch command {
	case "check":
		CheckCommand(args)
	case "match":
		MatchCommand(args)
	case "export":
		ExportCommand(args)
	case "version":
		VersionCommand()
	case "help", "-h", "--help":
		Usage()
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		Usage()
		osExit(2)
	}
}

// Usage prints the CLI usage information.
func Usage() {
	fmt.Fprintf(stdout, "gotsl - ETSI TS 119 612 trusted list tool\n\n")
	fmt.Fprintf(stdout, "Usage: %s <command> [options] <args>\n\n", os.Args[0])
	fmt.Fprintln(stdout, "Commands:")
	fmt.Fprintln(stdout, "  check    Parse and check a trusted list")
	fmt.Fprintln(stdout, "  match    Find the trust services that issued or are a certificate")
	fmt.Fprintln(stdout, "  export   Check a trusted list and write it back, optionally signed")
	fmt.Fprintln(stdout, "  version  Show version information")
	fmt.Fprintln(stdout, "  help     Show this help message")
	fmt.Fprintln(stdout, "")
	fmt.Fprintf(stdout, "Use '%s <command> -h' for command-specific help\n", os.Args[0])
	fmt.Fprintln(stdout, "")
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintf(stdout, "  %s check BE.xml\n", os.Args[0])
	fmt.Fprintf(stdout, "  %s check -enforce-signature -trusted be-signer.pem BE.xml\n", os.Args[0])
	fmt.Fprintf(stdout, "  %s match -json BE.xml signer.pem\n", os.Args[0])
	fmt.Fprintf(stdout, "  %s export -config gotsl.yaml -sign -o BE-signed.xml BE.xml\n", os.Args[0])
}

// VersionCommand prints version information.
func VersionCommand() {
	fmt.Fprintf(stdout, "gotsl version %s\n", Version)
	fmt.Fprintf(stdout, "Build time: %s\n", BuildTime)
}
