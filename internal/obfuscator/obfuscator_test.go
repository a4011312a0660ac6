package obfuscator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Silent = true
	return cfg
}

func TestProcessFile_ReturnsObfuscatedCode(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.js")
	require.NoError(t, os.WriteFile(path, []byte(`function add(a, b) { return a + b; }`), 0644))

	ctx, err := NewContext(cfg, 1)
	require.NoError(t, err)

	out, err := ctx.ProcessFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestContext_SaveThenLoadRoundTripsScramblerState(t *testing.T) {
	cfg := testConfig()
	cfg.Obfuscation.Identifiers.Rename = true
	baseDir := t.TempDir()

	ctx1, err := NewContext(cfg, 1)
	require.NoError(t, err)
	scrambled := ctx1.Scramblers[scrambler.TypeIdentifier].Scramble("computeTotal")
	require.NoError(t, ctx1.Save(baseDir))

	ctx2, err := NewContext(cfg, 1)
	require.NoError(t, err)
	require.NoError(t, ctx2.Load(baseDir))

	original, category, found := ctx2.LookupOriginal(scrambled, "")
	require.True(t, found)
	assert.Equal(t, "computeTotal", original)
	assert.Equal(t, scrambler.TypeIdentifier, category)
}

func TestProcessDirectory_PreservesTreeAndSkipsPatterns(t *testing.T) {
	cfg := testConfig()
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	cfg.SkipPaths = []string{"vendor/*"}

	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "vendor"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "app.js"), []byte(`var x = 1;`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "vendor", "lib.js"), []byte(`var y = 2;`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "data.json"), []byte(`{"a":1}`), 0644))

	ctx, err := NewContext(cfg, 1)
	require.NoError(t, err)
	require.NoError(t, ctx.ProcessDirectory(srcDir, dstDir))

	_, err = os.Stat(filepath.Join(dstDir, "app.js"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dstDir, "vendor", "lib.js"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(dstDir, "data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestLookupOriginal_NotFoundReportsFalse(t *testing.T) {
	cfg := testConfig()
	ctx, err := NewContext(cfg, 1)
	require.NoError(t, err)

	_, _, found := ctx.LookupOriginal("nonexistent_xyz", "")
	assert.False(t, found)
}
