// Package main provides the CLI entrypoint for evolve-generator.
//
// evolve-generator reads a definition file naming the version chain of one
// or more domain types, checks the chain against the Go package it lives
// in, and writes the versioned envelope types with their conversions:
//
//	evolve-generator gen -def users.yaml
//	evolve-generator check -def accounts.toml
//	evolve-generator version
package main

import (
	"fmt"
	"io"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `usage: evolve-generator <command> [flags]

commands:
  gen      resolve a definition file and write the generated code
  check    resolve a definition file and report diagnostics only
  version  print the version
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "evolve-generator:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	switch args[0] {
	case "gen":
		return runGen(args[1:], stdout, stderr)
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "evolve-generator %s\n", version)
		return nil
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w %q", errUnknownCommand, args[0])
	}
}
