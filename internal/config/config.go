// Package config loads and validates obfuscation settings from a YAML file
// on disk (via gopkg.in/yaml.v3), in the shape of the teacher's
// internal/config package for its own (PHP) option set. BindFlags
// registers GOJSO_-prefixed environment bindings on a caller-supplied
// github.com/spf13/viper instance; LoadConfig itself reads only the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// String-array (StringArray stage) obfuscation techniques.
const (
	StringTechniqueBase64 = "base64"
	StringTechniqueRot13  = "rot13"
	StringTechniqueXOR    = "xor"
)

// Source-map embedding modes, matching spec.md §4.6's sourceMap options.
const (
	SourceMapSourcesContent = "SourcesContent"
	SourceMapSources        = "Sources"
)

// ScramblingConfig controls the renaming scrambler.
type ScramblingConfig struct {
	Mode   string `yaml:"mode" mapstructure:"mode"`     // "identifier", "hexa", "numeric"
	Length int    `yaml:"length" mapstructure:"length"` // target generated name length
	Seed   int64  `yaml:"seed" mapstructure:"seed"`      // deterministic RNG seed; 0 means the scramblers use the caller's fallback seed and each file's driver seed is hashed from its path
}

// StringsConfig controls the StringArray stage.
type StringsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Technique string `yaml:"technique" mapstructure:"technique"`
	XorKey    string `yaml:"xor_key,omitempty" mapstructure:"xor_key,omitempty"`
}

// CommentsConfig controls the always-on comment-stripping pass.
type CommentsConfig struct {
	Strip bool `yaml:"strip" mapstructure:"strip"`
}

// NameToggleConfig enables renaming for one identifier category.
type NameToggleConfig struct {
	Rename bool `yaml:"rename" mapstructure:"rename"`
}

// ControlFlowConfig controls the ControlFlowFlattening stage.
type ControlFlowConfig struct {
	Enabled         bool `yaml:"enabled" mapstructure:"enabled"`
	MaxNestingDepth int  `yaml:"max_nesting_depth" mapstructure:"max_nesting_depth"`
}

// DeadCodeConfig controls the optional DeadCodeInjection stage.
type DeadCodeConfig struct {
	Enabled       bool `yaml:"enabled" mapstructure:"enabled"`
	InjectionRate int  `yaml:"injection_rate" mapstructure:"injection_rate"` // 0-100
}

// SimplifyConfig controls the optional Simplifying stage.
type SimplifyConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ArithmeticConfig controls the arithmetic-expression obfuscation pass
// that runs alongside VarMerger in the optional Simplifying stage. Unlike
// the teacher's MaxObfuscationDepth, there is no depth knob here: every
// rewrite marks its own output ignored, so recursion depth is always
// exactly one and isn't configurable.
type ArithmeticConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// RenamePropertiesConfig controls the optional RenameProperties stage.
type RenamePropertiesConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// IgnoreConfig lists names never renamed, per category, plus prefixes that
// exempt a name from renaming.
type IgnoreConfig struct {
	Identifiers       []string `yaml:"identifiers" mapstructure:"identifiers"`
	IdentifiersPrefix []string `yaml:"identifiers_prefix" mapstructure:"identifiers_prefix"`
	Properties        []string `yaml:"properties" mapstructure:"properties"`
	PropertiesPrefix  []string `yaml:"properties_prefix" mapstructure:"properties_prefix"`
	Globals           []string `yaml:"globals" mapstructure:"globals"` // never renamed regardless of category
}

// ObfuscationConfig groups every knob the stage driver and the
// transformer catalog consult.
type ObfuscationConfig struct {
	Scrambling       ScramblingConfig       `yaml:"scrambling" mapstructure:"scrambling"`
	Strings          StringsConfig          `yaml:"strings" mapstructure:"strings"`
	Comments         CommentsConfig         `yaml:"comments" mapstructure:"comments"`
	Identifiers      NameToggleConfig       `yaml:"identifiers" mapstructure:"identifiers"`
	ControlFlow      ControlFlowConfig      `yaml:"control_flow" mapstructure:"control_flow"`
	DeadCode         DeadCodeConfig         `yaml:"dead_code" mapstructure:"dead_code"`
	Simplify         SimplifyConfig         `yaml:"simplify" mapstructure:"simplify"`
	Arithmetic       ArithmeticConfig       `yaml:"arithmetic" mapstructure:"arithmetic"`
	RenameProperties RenamePropertiesConfig `yaml:"rename_properties" mapstructure:"rename_properties"`
	Ignore           IgnoreConfig           `yaml:"ignore" mapstructure:"ignore"`
}

// Config holds every setting for one obfuscation run or directory pass.
// LoadConfig decodes the config file with yaml.v3, which reads yaml tags
// only: the nested Obfuscation settings use their yaml keys, and the
// top-level fields (no yaml tags) use their lowercased Go field names.
// The mapstructure tags name the viper keys BindFlags registers
// (GOJSO_-prefixed, mirroring the teacher's GOPHO_ convention).
type Config struct {
	SourceDirectory string `mapstructure:"source_directory"`
	TargetDirectory string `mapstructure:"target_directory"`

	Silent       bool `mapstructure:"silent"`
	AbortOnError bool `mapstructure:"abort_on_error"`
	DebugMode    bool `mapstructure:"debug_mode"`

	FollowSymlinks  bool     `mapstructure:"follow_symlinks"`
	JsExtensions    []string `mapstructure:"js_extensions"`
	SkipPaths       []string `mapstructure:"skip"`
	KeepPaths       []string `mapstructure:"keep"`
	AllowEmptyFiles bool     `mapstructure:"allow_and_overwrite_empty_files"`

	Obfuscation ObfuscationConfig `mapstructure:"obfuscation" yaml:"obfuscation"`

	// Pipeline options named directly after spec.md §6's Options record.
	Compact              bool   `mapstructure:"compact"`
	SourceMap            bool   `mapstructure:"source_map"`
	SourceMapSourcesMode string `mapstructure:"source_map_sources_mode"`
	InputFileName        string `mapstructure:"input_file_name"`
}

var defaults = map[string]interface{}{
	"silent":                             false,
	"abort_on_error":                     true,
	"debug_mode":                         false,
	"follow_symlinks":                    false,
	"js_extensions":                      []string{"js", "mjs", "cjs"},
	"skip":                               nil,
	"keep":                               nil,
	"allow_and_overwrite_empty_files":    true,
	"compact":                            true,
	"source_map":                         false,
	"source_map_sources_mode":            SourceMapSourcesContent,
	"input_file_name":                    "",
	"source_directory":                   "",
	"target_directory":                   "",
}

// Testing suppresses PrintInfo output; set by _test.go files.
var Testing bool

// PrintInfo writes a formatted informational message unless Testing is
// set, matching the teacher's config.PrintInfo helper.
func PrintInfo(format string, args ...interface{}) {
	if !Testing {
		fmt.Printf(format, args...)
	}
}

// DefaultConfig returns a Config with every stage disabled except the
// always-on ones (comment stripping, string array), matching spec.md's
// "compact (bool, default true)" and leaving optional stages opt-in.
func DefaultConfig() *Config {
	return &Config{
		Silent:          false,
		AbortOnError:    true,
		DebugMode:       false,
		JsExtensions:    []string{"js", "mjs", "cjs"},
		SkipPaths:       []string{"node_modules/*", "*.min.js", "*.git*"},
		KeepPaths:       []string{},
		AllowEmptyFiles: true,
		Compact:         true,
		SourceMap:       false,
		SourceMapSourcesMode: SourceMapSourcesContent,

		Obfuscation: ObfuscationConfig{
			Scrambling: ScramblingConfig{Mode: "identifier", Length: 6, Seed: 0},
			Strings:    StringsConfig{Enabled: true, Technique: StringTechniqueBase64},
			Comments:   CommentsConfig{Strip: true},
			Identifiers: NameToggleConfig{Rename: true},
			ControlFlow: ControlFlowConfig{Enabled: false, MaxNestingDepth: 2},
			DeadCode:    DeadCodeConfig{Enabled: false, InjectionRate: 20},
			Simplify:    SimplifyConfig{Enabled: false},
			Arithmetic:  ArithmeticConfig{Enabled: false},
			RenameProperties: RenamePropertiesConfig{Enabled: false},
			Ignore: IgnoreConfig{
				Globals: []string{"window", "document", "exports", "module", "require", "global", "globalThis", "console"},
			},
		},
	}
}

// LoadConfig reads configuration from file (if present), falling back to
// DefaultConfig when no file exists at configPath.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = "jsmixer.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error unmarshalling config file %s: %w", configPath, err)
		}
		if !cfg.Silent {
			PrintInfo("Info: Loaded configuration from %s\n", configPath)
		}
	} else if os.IsNotExist(err) {
		if configPath != "jsmixer.yaml" {
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
		PrintInfo("Info: Configuration file 'jsmixer.yaml' not found, using default settings.\n")
	} else {
		return nil, fmt.Errorf("error checking config file %s: %w", configPath, err)
	}

	if cfg.TargetDirectory != "" {
		cfg.TargetDirectory = filepath.Clean(cfg.TargetDirectory)
	}
	return cfg, nil
}

// SaveConfig writes the default configuration to configPath as YAML.
func SaveConfig(configPath string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshalling default config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory for config file %s: %w", configPath, err)
		}
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	PrintInfo("Info: Saved default configuration to %s\n", configPath)
	return nil
}

// bindEnv binds a viper key to its GOJSO_-prefixed environment variable,
// matching the teacher's bindEnv helper for cobra/viper wiring.
func bindEnv(v *viper.Viper, key string) {
	envKey := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	_ = v.BindEnv(key, "GOJSO_"+envKey)
}

// BindFlags registers every default key's environment binding on v. Cobra
// command setup calls this once before reading flags, the same shape as
// the teacher's root.go PersistentPreRunE.
func BindFlags(v *viper.Viper) {
	for key := range defaults {
		bindEnv(v, key)
		v.SetDefault(key, defaults[key])
	}
}
