// Command bloch is the reference CLI driver for the Bloch language
// core (internal/lexer, internal/parser, internal/semantic,
// internal/interp): a thin main that delegates to a cobra command
// tree in an internal cmd subpackage.
package main

import (
	"fmt"
	"os"

	"github.com/bloch-lang/bloch/cmd/bloch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
