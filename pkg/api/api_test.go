package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObfuscator_DefaultsWhenNoConfigFile(t *testing.T) {
	obf, err := NewObfuscator(Options{Silent: true})
	require.NoError(t, err)
	assert.NotNil(t, obf.Context)
	assert.True(t, obf.Config.Silent)
}

func TestObfuscateCode_ReturnsObfuscatedSource(t *testing.T) {
	obf, err := NewObfuscator(Options{Silent: true})
	require.NoError(t, err)

	out, err := obf.ObfuscateCode(`function add(a, b) { return a + b; }`)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestObfuscateFileToFile_WritesOutput(t *testing.T) {
	obf, err := NewObfuscator(Options{Silent: true})
	require.NoError(t, err)

	dir := t.TempDir()
	in := filepath.Join(dir, "in.js")
	out := filepath.Join(dir, "nested", "out.js")
	require.NoError(t, os.WriteFile(in, []byte(`var x = 1;`), 0644))

	require.NoError(t, obf.ObfuscateFileToFile(in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestObfuscateDirectory_ProcessesTreeAndPersistsContext(t *testing.T) {
	obf, err := NewObfuscator(Options{Silent: true})
	require.NoError(t, err)

	srcDir := t.TempDir()
	dstDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "app.js"), []byte(`var x = 1;`), 0644))

	require.NoError(t, obf.ObfuscateDirectory(srcDir, dstDir))

	_, err = os.Stat(filepath.Join(dstDir, "app.js"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dstDir, "context"))
	assert.NoError(t, err)
}

func TestLookupObfuscatedName_RoundTripsThroughSaveLoad(t *testing.T) {
	obf, err := NewObfuscator(Options{Silent: true})
	require.NoError(t, err)
	obf.Config.Obfuscation.Identifiers.Rename = true

	out, err := obf.ObfuscateCode(`function computeSomething() { return 1; }`)
	require.NoError(t, err)
	assert.NotContains(t, out, "computeSomething")

	obfName, err := obf.LookupObfuscatedName("computeSomething", "identifier")
	require.NoError(t, err)
	assert.NotEmpty(t, obfName)
}

func TestLookupObfuscatedName_UnknownNameErrors(t *testing.T) {
	obf, err := NewObfuscator(Options{Silent: true})
	require.NoError(t, err)

	_, err = obf.LookupObfuscatedName("neverSeenThisName", "")
	assert.Error(t, err)
}
