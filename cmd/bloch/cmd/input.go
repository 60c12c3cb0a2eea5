package cmd

import (
	"fmt"
	"os"
)

// readInput resolves a subcommand's source: an inline -e/--eval string
// takes priority, otherwise the single positional file argument is
// read from disk.
func readInput(eval string, args []string) (source, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e/--eval for inline source")
}
