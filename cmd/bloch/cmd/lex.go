package cmd

import (
	"fmt"
	"os"

	"github.com/bloch-lang/bloch/internal/driver"
	"github.com/bloch-lang/bloch/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEval     string
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Bloch source file",
	Long: `Tokenize a Bloch program and print the resulting token stream.

Examples:
  bloch lex program.bloch
  bloch lex -e "int x = 1 + 2;"
  bloch lex --show-pos program.bloch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show each token's line:column")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "print only lexical errors, not the token stream")
}

func runLex(_ *cobra.Command, args []string) error {
	source, filename, err := readInput(lexEval, args)
	if err != nil {
		return err
	}

	toks, lexErr := driver.Lex(source)
	if lexErr != nil {
		lexErr = lexErr.WithSource(source, filename)
		fmt.Fprintln(os.Stderr, lexErr.Format())
		return fmt.Errorf("lexing failed")
	}

	if lexOnlyErrs {
		return nil
	}

	for _, tok := range toks {
		if lexShowPos {
			fmt.Printf("%-12s %-20q @%s\n", tok.Kind, tok.Lexeme, tok.Pos)
		} else {
			fmt.Printf("%-12s %q\n", tok.Kind, tok.Lexeme)
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}
