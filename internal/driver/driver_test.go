package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
)

func newScramblers(t *testing.T, cfg *config.Config) Scramblers {
	t.Helper()
	ids, err := scrambler.NewScrambler(scrambler.TypeIdentifier, cfg, 42)
	require.NoError(t, err)
	props, err := scrambler.NewScrambler(scrambler.TypeProperty, cfg, 42)
	require.NoError(t, err)
	return Scramblers{Identifiers: ids, Properties: props}
}

func TestObfuscate_ProducesParsableOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.Identifiers.Rename = false

	res, err := Obfuscate(`function add(a, b) { return a + b; }`, Options{
		Config:     cfg,
		Scramblers: newScramblers(t, cfg),
		Seed:       1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Code)
}

func TestObfuscate_IsDeterministicForAFixedSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.Scrambling.Seed = 1234

	src := `function greet(name) { var message = "hello " + name; return message; }`

	res1, err := Obfuscate(src, Options{Config: cfg, Scramblers: newScramblers(t, cfg), Seed: 1234})
	require.NoError(t, err)

	res2, err := Obfuscate(src, Options{Config: cfg, Scramblers: newScramblers(t, cfg), Seed: 1234})
	require.NoError(t, err)

	assert.Equal(t, res1.Code, res2.Code)
}

func TestObfuscate_CompactDropsWhitespace(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.Identifiers.Rename = false
	cfg.Compact = true

	res, err := Obfuscate("function add(a, b) {\n  return a + b;\n}\n", Options{
		Config:     cfg,
		Scramblers: newScramblers(t, cfg),
		Seed:       1,
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Code, "\n")
}

func TestObfuscate_RenamesIdentifiersWhenEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.Identifiers.Rename = true
	cfg.Obfuscation.Strings.Enabled = false

	res, err := Obfuscate(`function computeTotal(itemPrice) { return itemPrice * 2; }`, Options{
		Config:     cfg,
		Scramblers: newScramblers(t, cfg),
		Seed:       7,
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Code, "computeTotal")
	assert.NotContains(t, res.Code, "itemPrice")
}

func TestObfuscate_EmptySourceShortCircuitsNodeStages(t *testing.T) {
	cfg := config.DefaultConfig()

	res, err := Obfuscate(``, Options{
		Config:     cfg,
		Scramblers: newScramblers(t, cfg),
		Seed:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, "", res.Code)
}

func TestObfuscate_SourceMapRequestedProducesMap(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.Identifiers.Rename = false
	cfg.SourceMap = true
	cfg.SourceMapSourcesMode = config.SourceMapSourcesContent

	res, err := Obfuscate(`var x = 1;`, Options{
		Config:        cfg,
		Scramblers:    newScramblers(t, cfg),
		Seed:          1,
		InputFileName: "in.js",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Map)
}

func TestObfuscate_InvalidSourceReturnsParseError(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := Obfuscate(`var x = "unterminated;`, Options{
		Config:     cfg,
		Scramblers: newScramblers(t, cfg),
		Seed:       1,
	})
	require.Error(t, err)
}
