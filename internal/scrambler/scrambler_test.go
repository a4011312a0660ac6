package scrambler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/config"
)

func testConfig(seed int64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.Scrambling.Seed = seed
	cfg.Obfuscation.Scrambling.Length = 6
	return cfg
}

func TestScramble_DeterministicForSameSeed(t *testing.T) {
	s1, err := NewScrambler(TypeIdentifier, testConfig(42), 0)
	require.NoError(t, err)
	s2, err := NewScrambler(TypeIdentifier, testConfig(42), 0)
	require.NoError(t, err)

	names := []string{"foo", "bar", "baz", "qux", "quux"}
	for _, n := range names {
		assert.Equal(t, s1.Scramble(n), s2.Scramble(n))
	}
}

func TestScramble_DifferentSeedsDiverge(t *testing.T) {
	s1, err := NewScrambler(TypeIdentifier, testConfig(1), 0)
	require.NoError(t, err)
	s2, err := NewScrambler(TypeIdentifier, testConfig(2), 0)
	require.NoError(t, err)

	assert.NotEqual(t, s1.Scramble("someLongIdentifierName"), s2.Scramble("someLongIdentifierName"))
}

func TestScramble_StableForRepeatedCalls(t *testing.T) {
	s, err := NewScrambler(TypeIdentifier, testConfig(7), 0)
	require.NoError(t, err)

	first := s.Scramble("counter")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Scramble("counter"))
	}
}

func TestScramble_ReservedKeywordsPassThrough(t *testing.T) {
	s, err := NewScrambler(TypeIdentifier, testConfig(7), 0)
	require.NoError(t, err)

	assert.Equal(t, "function", s.Scramble("function"))
	assert.Equal(t, "this", s.Scramble("this"))
}

func TestScramble_ReservedGlobalsNeverRenamed(t *testing.T) {
	s, err := NewScrambler(TypeIdentifier, testConfig(7), 0)
	require.NoError(t, err)

	assert.Equal(t, "window", s.Scramble("window"))
	assert.Equal(t, "require", s.Scramble("require"))
}

func TestScramble_IgnoreListHonored(t *testing.T) {
	cfg := testConfig(7)
	cfg.Obfuscation.Ignore.Identifiers = []string{"keepMe"}
	s, err := NewScrambler(TypeIdentifier, cfg, 0)
	require.NoError(t, err)

	assert.Equal(t, "keepMe", s.Scramble("keepMe"))
}

func TestScramble_PropertyWellKnownMembersNeverRenamed(t *testing.T) {
	s, err := NewScrambler(TypeProperty, testConfig(7), 0)
	require.NoError(t, err)

	assert.Equal(t, "length", s.Scramble("length"))
	assert.Equal(t, "then", s.Scramble("then"))
}

func TestScramble_NoCollisionsAcrossManyNames(t *testing.T) {
	s, err := NewScrambler(TypeIdentifier, testConfig(123), 0)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		name := s.Scramble(fakeName(i))
		assert.False(t, seen[name], "collision on %s", name)
		seen[name] = true
	}
}

func fakeName(i int) string {
	return "identifier_" + string(rune('a'+i%26)) + string(rune('A'+(i/26)%26))
}

func TestScrambler_Unscramble(t *testing.T) {
	s, err := NewScrambler(TypeIdentifier, testConfig(9), 0)
	require.NoError(t, err)

	scrambled := s.Scramble("total")
	original, found := s.Unscramble(scrambled)
	require.True(t, found)
	assert.Equal(t, "total", original)

	_, found = s.Unscramble("not-a-known-name")
	assert.False(t, found)
}

func TestScrambler_SaveAndLoadStateRoundtrips(t *testing.T) {
	s, err := NewScrambler(TypeIdentifier, testConfig(3), 0)
	require.NoError(t, err)
	scrambled := s.Scramble("total")

	dir := t.TempDir()
	path := filepath.Join(dir, "identifier.scramble")
	require.NoError(t, s.SaveState(path))

	loaded, err := NewScrambler(TypeIdentifier, testConfig(999), 0)
	require.NoError(t, err)
	require.NoError(t, loaded.LoadState(path))

	original, found := loaded.Unscramble(scrambled)
	require.True(t, found)
	assert.Equal(t, "total", original)
}

func TestScrambler_LoadStateMissingFileIsNotAnError(t *testing.T) {
	s, err := NewScrambler(TypeIdentifier, testConfig(3), 0)
	require.NoError(t, err)

	err = s.LoadState(filepath.Join(t.TempDir(), "does-not-exist.scramble"))
	assert.NoError(t, err)
}

func TestParseScrambleType(t *testing.T) {
	got, err := ParseScrambleType("Property")
	require.NoError(t, err)
	assert.Equal(t, TypeProperty, got)

	_, err = ParseScrambleType("bogus")
	assert.Error(t, err)
}

func TestMain(m *testing.M) {
	config.Testing = true
	os.Exit(m.Run())
}
