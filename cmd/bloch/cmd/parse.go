package cmd

import (
	"fmt"
	"os"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/driver"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Bloch source file and print its AST",
	Long: `Parse Bloch source code and print a pre-order dump of the resulting
Abstract Syntax Tree: one line per node, showing its Go type and source
position.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading from file")
}

func runParseCmd(_ *cobra.Command, args []string) error {
	source, filename, err := readInput(parseEval, args)
	if err != nil {
		return err
	}

	program, perr := driver.Parse(source, filename)
	if perr != nil {
		fmt.Fprintln(os.Stderr, perr.Format())
		return fmt.Errorf("parsing failed")
	}

	ast.Walk(program, func(n ast.Node) {
		fmt.Printf("%T @%s\n", n, n.Pos())
	})
	return nil
}
