package cmd

import (
	"github.com/spf13/cobra"
)

// obfuscateCmd groups the file and dir obfuscation subcommands.
var obfuscateCmd = &cobra.Command{
	Use:   "obfuscate",
	Short: "Obfuscate JavaScript code",
	Long: `Provides subcommands to obfuscate a single file or a whole
directory tree.

Example:
  go-js-obfuscator obfuscate file input.js -o output.js
  go-js-obfuscator obfuscate dir ./src -o ./dist --clean`,
}

func init() {
	rootCmd.AddCommand(obfuscateCmd)
}
