package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/bloch-lang/bloch/internal/diagnostics"
	"github.com/bloch-lang/bloch/internal/driver"
	"github.com/bloch-lang/bloch/internal/interp"
	"github.com/spf13/cobra"
)

var (
	runEval     string
	runShots    int
	runEcho     bool
	runWarn     bool
	runEmitQASM bool
	runSeed     int64
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Lex, parse, analyse, and execute a Bloch program",
	Long: `Execute a Bloch program end to end: lexing, parsing, semantic
analysis, and the shot loop over the statevector-backed evaluator.

Examples:
  bloch run program.bloch
  bloch run --shots 1024 program.bloch
  bloch run --emit-qasm program.bloch
  bloch run -e "function main() -> void { echo(1 + 2); }"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "run inline source instead of reading from file")
	runCmd.Flags().IntVar(&runShots, "shots", 0, "shot count (overridden by @shots(N) on main; default 1)")
	runCmd.Flags().BoolVar(&runEcho, "echo", true, "print echo statement output to stdout")
	runCmd.Flags().BoolVar(&runWarn, "warn", true, "emit end-of-run warnings (e.g. unmeasured qubits)")
	runCmd.Flags().BoolVar(&runEmitQASM, "emit-qasm", false, "write the OpenQASM 2 trace to <file-basename>.qasm")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "base random seed each shot's stream derives from")
}

func runRun(cmd *cobra.Command, args []string) error {
	source, filename, err := readInput(runEval, args)
	if err != nil {
		return err
	}

	sink := diagnostics.NewSink(os.Stderr)
	cfg := driver.Config{
		ShotsFlag:  runShots,
		EchoMode:   runEcho,
		WarnOnExit: runWarn,
		Seed:       runSeed,
	}

	result, runErr := driver.Run(source, filename, cfg, sink)
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Format())
		return fmt.Errorf("%s error", runErr.Category)
	}

	fmt.Print(result.Stdout)
	printTrackedOutcomes(result)

	if runEmitQASM {
		if werr := driver.WriteQASM(filename, result.QASM); werr != nil {
			return fmt.Errorf("failed to write QASM sidecar: %w", werr)
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			fmt.Fprintf(os.Stderr, "QASM written to %s\n", driver.QASMPath(filename))
		}
	}

	return nil
}

// printTrackedOutcomes renders each @tracked variable's cross-shot
// outcome counts: binary outcome strings ascending by (width, value),
// non-binary outcomes like "?" last.
func printTrackedOutcomes(result *interp.Result) {
	if len(result.Tracked) == 0 {
		return
	}
	fmt.Println("\nTracked outcomes:")
	names := make([]string, 0, len(result.Tracked))
	for name := range result.Tracked {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		counts := result.Tracked[name]
		fmt.Printf("  %s:\n", name)
		for _, outcome := range interp.SortedOutcomes(counts) {
			fmt.Printf("    %-8s %d\n", outcome, counts[outcome])
		}
	}
}
