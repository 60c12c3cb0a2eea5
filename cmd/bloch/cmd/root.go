// Package cmd is the reference CLI surface around internal/driver:
// one cobra command per pipeline stage, a persistent --verbose flag,
// and a version subcommand. The production driver (self-update,
// installation concerns) lives outside this repository; this package
// exercises the pipeline end to end.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bloch",
	Short: "Bloch hybrid classical/quantum language interpreter",
	Long: `bloch is a reference interpreter for the Bloch language: a
strongly typed, hardware-agnostic hybrid classical/quantum language.

This binary drives the language core end to end:
  - lex    tokenize a .bloch source file
  - parse  parse a .bloch source file and print its AST
  - run    lex, parse, analyse, and execute a .bloch program

The core simulates quantum state with an ideal statevector backend and
emits an OpenQASM 2 trace alongside execution.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
