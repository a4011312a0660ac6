package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/jsmixer/internal/obfuscator"
)

var outputFile string

var fileCmd = &cobra.Command{
	Use:   "file <js_file_path>",
	Short: "Obfuscate a single JavaScript file",
	Long: `Reads a single JavaScript file, applies the configured
obfuscation techniques, and writes the result to stdout or the file
named by --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		cmd.SilenceUsage = true
		filePath := args[0]

		ctx, err := obfuscator.NewContext(cfg, 0)
		if err != nil {
			return fmt.Errorf("failed to initialize obfuscation context: %w", err)
		}

		outputContent, err := ctx.ProcessFile(filePath)
		if err != nil {
			return fmt.Errorf("error processing file %s: %w", filePath, err)
		}

		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(outputContent), 0644); err != nil {
				return fmt.Errorf("error writing to output file %s: %w", outputFile, err)
			}
		} else {
			fmt.Print(outputContent)
		}
		return nil
	},
}

func init() {
	obfuscateCmd.AddCommand(fileCmd)
	fileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path (default: stdout)")
}
