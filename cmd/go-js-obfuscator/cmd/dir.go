package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/jsmixer/internal/obfuscator"
)

var (
	outputDir string
	cleanMode bool
)

var dirCmd = &cobra.Command{
	Use:   "dir <source_directory>",
	Short: "Obfuscate JavaScript code in a directory recursively",
	Long: `Recursively scans the source directory for JavaScript files
(per the configured extensions), applies obfuscation, and writes the
results to the target directory, preserving the original tree shape and
sharing one scrambling context across every file.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if outputDir == "" {
			return fmt.Errorf("output directory (-o, --output) is required for directory obfuscation")
		}
		info, err := os.Stat(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("source directory %q not found", args[0])
			}
			return fmt.Errorf("error checking source directory %q: %w", args[0], err)
		}
		if !info.IsDir() {
			return fmt.Errorf("source path %q is not a directory", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		cmd.SilenceUsage = true

		sourceDir := args[0]
		cfg.TargetDirectory = outputDir

		if cleanMode {
			if _, err := os.Stat(outputDir); err == nil {
				if outputDir == "/" || outputDir == "." || outputDir == ".." {
					return fmt.Errorf("refusing to clean potentially dangerous path: %s", outputDir)
				}
				if err := os.RemoveAll(outputDir); err != nil {
					return fmt.Errorf("failed to clean target directory %s: %w", outputDir, err)
				}
			}
		}

		ctx, err := obfuscator.NewContext(cfg, 0)
		if err != nil {
			return fmt.Errorf("failed to initialize obfuscation context: %w", err)
		}
		if err := ctx.Load(outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load existing context: %v\n", err)
		}

		if err := ctx.ProcessDirectory(sourceDir, outputDir); err != nil {
			return fmt.Errorf("error processing directory %s: %w", sourceDir, err)
		}

		if err := ctx.Save(outputDir); err != nil {
			return fmt.Errorf("failed to save obfuscation context: %w", err)
		}
		return nil
	},
}

func init() {
	obfuscateCmd.AddCommand(dirCmd)
	dirCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (required)")
	dirCmd.Flags().BoolVar(&cleanMode, "clean", false, "remove the output directory before processing")
}
