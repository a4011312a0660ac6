// Package api provides the public API for using the obfuscator as a
// library. It mirrors the teacher's pkg/api package shape (an Obfuscator
// wrapping a loaded Config and an obfuscation Context, with
// ObfuscateCode/ObfuscateFile/ObfuscateFileToFile/ObfuscateDirectory and
// context load/save/lookup methods), simplified where the new pipeline
// makes the teacher's workaround unnecessary: ObfuscateCode calls the
// driver directly on the in-memory string instead of round-tripping
// through a temporary file, since this pipeline's ProcessFile equivalent
// never required one.
//
// Basic usage:
//
//	obf, err := api.NewObfuscator(api.Options{ConfigPath: "jsmixer.yaml"})
//	if err != nil {
//	    log.Fatalf("failed to create obfuscator: %v", err)
//	}
//	out, err := obf.ObfuscateCode("var x = 1;")
package api

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/driver"
	"github.com/whit3rabbit/jsmixer/internal/obfuscator"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
)

// PrintInfo forwards to config.PrintInfo, respecting config.Testing.
func PrintInfo(format string, args ...interface{}) {
	config.PrintInfo(format, args...)
}

// Obfuscator is the library entry point: a loaded configuration paired
// with the obfuscation context (scramblers) that persists renaming
// decisions across calls made against the same instance.
type Obfuscator struct {
	Context *obfuscator.Context
	Config  *config.Config
}

// Options configures a new Obfuscator.
type Options struct {
	// ConfigPath is a YAML configuration file. Empty uses DefaultConfig.
	ConfigPath string
	// Silent suppresses informational log output.
	Silent bool
	// Seed seeds the deterministic scrambler RNG when the loaded config
	// leaves Obfuscation.Scrambling.Seed at zero.
	Seed int64
}

// NewObfuscator loads configuration and builds a fresh obfuscation
// context.
func NewObfuscator(options Options) (*Obfuscator, error) {
	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if options.Silent {
		cfg.Silent = true
	}

	ctx, err := obfuscator.NewContext(cfg, options.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create obfuscation context: %w", err)
	}

	return &Obfuscator{Context: ctx, Config: cfg}, nil
}

// ObfuscateCode obfuscates a string of source code and returns the
// obfuscated result.
func (o *Obfuscator) ObfuscateCode(code string) (string, error) {
	result, err := driver.Obfuscate(code, driver.Options{
		Config: o.Config,
		Scramblers: driver.Scramblers{
			Identifiers: o.Context.Scramblers[scrambler.TypeIdentifier],
			Properties:  o.Context.Scramblers[scrambler.TypeProperty],
		},
		Logger:        o.Context.Logger,
		InputFileName: "<string>",
		Seed:          o.Config.Obfuscation.Scrambling.Seed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to obfuscate code: %w", err)
	}
	return result.Code, nil
}

// ObfuscateFile obfuscates one file and returns the obfuscated code.
func (o *Obfuscator) ObfuscateFile(filePath string) (string, error) {
	out, err := o.Context.ProcessFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to obfuscate file %s: %w", filePath, err)
	}
	return out, nil
}

// ObfuscateFileToFile obfuscates inputPath and writes the result to
// outputPath, creating any missing output directories.
func (o *Obfuscator) ObfuscateFileToFile(inputPath, outputPath string) error {
	out, err := o.Context.ProcessFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to obfuscate file %s: %w", inputPath, err)
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputPath, err)
	}
	return nil
}

// ObfuscateDirectory obfuscates every matching source file under inputDir
// into outputDir, loading any existing context already saved there and
// saving the updated context back when done.
func (o *Obfuscator) ObfuscateDirectory(inputDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	if err := o.Context.Load(outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load existing context: %v\n", err)
	}
	o.Config.TargetDirectory = outputDir

	if err := o.Context.ProcessDirectory(inputDir, outputDir); err != nil {
		return err
	}
	if err := o.Context.Save(outputDir); err != nil {
		return fmt.Errorf("failed to save obfuscation context: %w", err)
	}
	return nil
}

// LoadContext loads previously persisted scrambler state from baseDir.
func (o *Obfuscator) LoadContext(baseDir string) error {
	return o.Context.Load(baseDir)
}

// SaveContext persists the current scrambler state to baseDir.
func (o *Obfuscator) SaveContext(baseDir string) error {
	return o.Context.Save(baseDir)
}

// LookupObfuscatedName looks up the obfuscated form of an original name,
// optionally narrowed to one category ("identifier", "property", "label").
func (o *Obfuscator) LookupObfuscatedName(name string, typeStr string) (string, error) {
	var sType scrambler.ScrambleType
	if typeStr != "" {
		var err error
		sType, err = scrambler.ParseScrambleType(typeStr)
		if err != nil {
			return "", err
		}
	}

	types := scrambler.AllScrambleTypes
	if sType != "" {
		types = []scrambler.ScrambleType{sType}
	}
	for _, t := range types {
		s, ok := o.Context.Scramblers[t]
		if !ok {
			continue
		}
		if obf, found := s.LookupObfuscated(name); found {
			return obf, nil
		}
	}
	return "", fmt.Errorf("name not found in context: %s", name)
}
