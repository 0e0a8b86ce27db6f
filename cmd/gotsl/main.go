// Command gotsl is a CLI tool for ETSI TS 119 612 trusted lists.
//
// Usage:
//
//	gotsl <command> [options] <args>
//
// Commands:
//
//	check    Parse and check a trusted list
//	match    Find the trust services that issued or are a certificate
//	export   Check a trusted list and write it back, optionally signed
//	version  Show version information
//	help     Show help message
//
// Examples:
//
//	# Check a list, keeping it even when it has errors
//	gotsl check -cache BE.xml
//
//	# Require a valid signature by a known scheme operator
//	gotsl check -enforce-signature -trusted be-signer.pem BE.xml
//
//	# Look a certificate up, with JSON output
//	gotsl match -json BE.xml signer.pem
package main

import (
	"os"

	"github.com/georgepadayatti/gotsl/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/gotsl
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime

	cli.Run(os.Args)
}
