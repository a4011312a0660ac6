// Package cmd implements the command line interface, grounded on the
// teacher's cmd/go-php-obfuscator/cmd package: a root command that loads
// configuration once in PersistentPreRunE, applies flag overrides only
// for flags the user actually set, and delegates to obfuscate/whatis
// subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/jsmixer/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config

	silentMode       bool
	abortOnError     bool
	obfuscateStrings bool
	stripComments    bool
	controlFlow      bool
	deadCode         bool
	renameProps      bool
	compactOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "go-js-obfuscator",
	Short: "A CLI tool to obfuscate JavaScript code.",
	Long: `go-js-obfuscator rewrites JavaScript source through a staged
transformation pipeline: string-array encoding, identifier and property
renaming, control-flow flattening, dead-code injection, and comment
stripping, with a deterministic, seedable scrambler.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			loadedCfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			cfg = loadedCfg
			applyFlagOverrides(cfg, cmd)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("silent") {
		cfg.Silent = silentMode
	}
	if cmd.Flags().Changed("abort-on-error") {
		cfg.AbortOnError = abortOnError
	}
	if cmd.Flags().Changed("obfuscate-strings") {
		cfg.Obfuscation.Strings.Enabled = obfuscateStrings
	}
	if cmd.Flags().Changed("strip-comments") {
		cfg.Obfuscation.Comments.Strip = stripComments
	}
	if cmd.Flags().Changed("control-flow") {
		cfg.Obfuscation.ControlFlow.Enabled = controlFlow
	}
	if cmd.Flags().Changed("dead-code") {
		cfg.Obfuscation.DeadCode.Enabled = deadCode
	}
	if cmd.Flags().Changed("rename-properties") {
		cfg.Obfuscation.RenameProperties.Enabled = renameProps
	}
	if cmd.Flags().Changed("compact") {
		cfg.Compact = compactOutput
	}
}

// Execute runs the root command; called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./jsmixer.yaml)")

	rootCmd.PersistentFlags().BoolVarP(&silentMode, "silent", "s", false, "suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&abortOnError, "abort-on-error", true, "stop processing on the first error")
	rootCmd.PersistentFlags().BoolVar(&obfuscateStrings, "obfuscate-strings", true, "enable string array encoding")
	rootCmd.PersistentFlags().BoolVar(&stripComments, "strip-comments", true, "strip comments from output")
	rootCmd.PersistentFlags().BoolVar(&controlFlow, "control-flow", false, "enable control flow flattening")
	rootCmd.PersistentFlags().BoolVar(&deadCode, "dead-code", false, "enable dead code injection")
	rootCmd.PersistentFlags().BoolVar(&renameProps, "rename-properties", false, "enable object property renaming")
	rootCmd.PersistentFlags().BoolVar(&compactOutput, "compact", true, "collapse whitespace in the generated output")
}
