package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/obfuscator"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
)

var (
	whatisTargetDir string
	whatisType      string
)

var whatisCmd = &cobra.Command{
	Use:   "whatis <scrambled_name>",
	Short: "Look up the original name for a scrambled name",
	Long: `Loads the saved obfuscation context from a previous run's target
directory and reports the original identifier, property, or label name
behind the given scrambled name.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if whatisTargetDir == "" {
			return fmt.Errorf("--target-dir (-t) flag is required")
		}
		info, err := os.Stat(whatisTargetDir)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("target directory %q not found", whatisTargetDir)
			}
			return fmt.Errorf("error checking target directory %q: %w", whatisTargetDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("target path %q is not a directory", whatisTargetDir)
		}
		if whatisType != "" {
			if _, err := scrambler.ParseScrambleType(whatisType); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		scrambledName := args[0]
		cmd.SilenceUsage = true

		dummyCfg, err := config.LoadConfig("")
		if err != nil {
			return fmt.Errorf("failed to load default config for context init: %w", err)
		}

		ctx, err := obfuscator.NewContext(dummyCfg, 0)
		if err != nil {
			return fmt.Errorf("failed to initialize obfuscation context: %w", err)
		}
		if err := ctx.Load(whatisTargetDir); err != nil {
			return fmt.Errorf("error loading obfuscation context from %s: %w", whatisTargetDir, err)
		}

		var sType scrambler.ScrambleType
		if whatisType != "" {
			sType, _ = scrambler.ParseScrambleType(whatisType)
		}

		original, category, found := ctx.LookupOriginal(scrambledName, sType)
		if !found {
			fmt.Fprintf(os.Stderr, "Error: scrambled name %q not found in the loaded context.\n", scrambledName)
			return fmt.Errorf("name not found")
		}
		fmt.Printf("Found: %q (type: %s)\n", original, category)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whatisCmd)
	whatisCmd.Flags().StringVarP(&whatisTargetDir, "target-dir", "t", "", "target directory of a previous obfuscate run (required)")
	whatisCmd.Flags().StringVar(&whatisType, "type", "", "limit the search to one category: identifier, property, label")
}
