// Package scrambler handles identifier/property/label renaming and the
// on-disk persistence of that renaming map, the way the teacher's
// internal/scrambler package does for PHP symbols. The generation source
// is seeded, deterministic math/rand rather than the teacher's
// crypto/rand, per the determinism invariant the specification requires
// (same input + same seed ⇒ bit-identical output); crypto/rand remains
// available via NewSecureScrambler for callers outside the deterministic
// pipeline entry point.
package scrambler

import (
	"bytes"
	"crypto/rand"
	"encoding/gob"
	"fmt"
	"math/big"
	mrand "math/rand"
	"os"
	"strings"
	"sync"

	"github.com/whit3rabbit/jsmixer/internal/config"
)

const (
	firstCharsIdentifier = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_$"
	allCharsIdentifier   = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_$"
	firstCharsHex        = "abcdefABCDEF"
	allCharsHex          = "0123456789abcdefABCDEF"
	firstCharsNumeric    = "O"
	allCharsNumeric      = "0123456789"

	maxIdentifierLen = 16
	maxHexNumericLen = 32
	minScrambleLen   = 2
	maxRegenAttempts = 50

	contextVersion = "jsmixer-scramble-v1.0"
)

// randSource is the minimal RNG surface Scramble needs. *math/rand.Rand
// satisfies it directly.
type randSource interface {
	Intn(n int) int
}

// cryptoRandSource adapts crypto/rand to randSource for NewSecureScrambler.
type cryptoRandSource struct{}

func (cryptoRandSource) Intn(max int) int {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return int(n.Int64())
}

// scramblerState is the gob-serializable persisted form of a Scrambler's
// maps, saved under a context directory the way the teacher persists
// context/<type>.scramble files.
type scramblerState struct {
	Version      string
	ScrambleMap  map[string]string
	RScrambleMap map[string]string
	LabelCounter *big.Int
	CurrentLen   int
}

// Scrambler renames names of one ScrambleType consistently within and
// across calls that share its persisted state.
type Scrambler struct {
	sType        ScrambleType
	mode         string
	targetLength int
	minLength    int
	maxLength    int
	currentLength int
	ignoreMap    map[string]bool
	ignorePrefix []string
	rng          randSource

	scrambleMap  map[string]string
	rScrambleMap map[string]string
	labelCounter *big.Int

	mu sync.RWMutex
}

// NewScrambler builds a deterministic scrambler seeded from cfg's
// configured seed (or from rngSeedFallback if the config leaves it at 0).
func NewScrambler(sType ScrambleType, cfg *config.Config, rngSeedFallback int64) (*Scrambler, error) {
	seed := cfg.Obfuscation.Scrambling.Seed
	if seed == 0 {
		seed = rngSeedFallback
	}
	return newScrambler(sType, cfg, mrand.New(mrand.NewSource(seed)))
}

// NewSecureScrambler builds a scrambler backed by crypto/rand, for callers
// that construct one outside the deterministic obfuscation entry point and
// do not need reproducible output.
func NewSecureScrambler(sType ScrambleType, cfg *config.Config) (*Scrambler, error) {
	return newScrambler(sType, cfg, cryptoRandSource{})
}

func newScrambler(sType ScrambleType, cfg *config.Config, rng randSource) (*Scrambler, error) {
	switch sType {
	case TypeIdentifier, TypeProperty, TypeLabel:
	default:
		return nil, fmt.Errorf("unknown scramble type: %s", sType)
	}

	s := &Scrambler{
		sType:        sType,
		scrambleMap:  make(map[string]string),
		rScrambleMap: make(map[string]string),
		ignoreMap:    make(map[string]bool),
		labelCounter: big.NewInt(0),
		rng:          rng,
	}

	s.mode = strings.ToLower(cfg.Obfuscation.Scrambling.Mode)
	if s.mode == "" {
		s.mode = "identifier"
	}
	s.minLength = minScrambleLen
	s.maxLength = maxIdentifierLen
	switch s.mode {
	case "identifier":
	case "hexa", "numeric":
		s.maxLength = maxHexNumericLen
	default:
		fmt.Fprintf(os.Stderr, "Warning: invalid scrambling mode '%s', using 'identifier'.\n", cfg.Obfuscation.Scrambling.Mode)
		s.mode = "identifier"
	}
	s.targetLength = cfg.Obfuscation.Scrambling.Length
	if s.targetLength < s.minLength {
		s.targetLength = s.minLength
	}
	if s.targetLength > s.maxLength {
		s.targetLength = s.maxLength
	}
	s.currentLength = s.targetLength

	var ignoreList, prefixList []string
	switch sType {
	case TypeIdentifier:
		ignoreList = cfg.Obfuscation.Ignore.Identifiers
		prefixList = cfg.Obfuscation.Ignore.IdentifiersPrefix
	case TypeProperty:
		ignoreList = cfg.Obfuscation.Ignore.Properties
		prefixList = cfg.Obfuscation.Ignore.PropertiesPrefix
	}
	ignoreList = append(ignoreList, cfg.Obfuscation.Ignore.Globals...)
	for _, item := range ignoreList {
		s.ignoreMap[item] = true
	}
	s.ignorePrefix = append(s.ignorePrefix, prefixList...)

	return s, nil
}

// ShouldIgnore reports whether name must be left untouched: reserved
// words, configured ignore lists, and ignore prefixes.
func (s *Scrambler) ShouldIgnore(name string) bool {
	if isReserved(name, s.sType) {
		return true
	}
	if s.ignoreMap[name] {
		return true
	}
	for _, prefix := range s.ignorePrefix {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Scramble returns name's stable scrambled form, generating and recording
// one on first use. Names that ShouldIgnore returns true for pass through
// unchanged.
func (s *Scrambler) Scramble(originalName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrambleLocked(originalName)
}

func (s *Scrambler) scrambleLocked(originalName string) string {
	if s.ShouldIgnore(originalName) {
		return originalName
	}
	if scrambled, exists := s.scrambleMap[originalName]; exists {
		return scrambled
	}

	for attempt := 0; attempt < maxRegenAttempts; attempt++ {
		candidate := s.generateScrambledName()
		if isReserved(candidate, s.sType) || s.ignoreMap[candidate] {
			continue
		}
		if _, exists := s.rScrambleMap[candidate]; exists {
			if attempt > 5 && s.currentLength < s.maxLength {
				s.currentLength++
			}
			continue
		}
		s.scrambleMap[originalName] = candidate
		s.rScrambleMap[candidate] = originalName
		return candidate
	}

	fmt.Fprintf(os.Stderr, "Error: failed to generate unique scrambled name for %q (type %s) after %d attempts.\n", originalName, s.sType, maxRegenAttempts)
	s.scrambleMap[originalName] = originalName
	s.rScrambleMap[originalName] = originalName
	return originalName
}

// Unscramble looks up the original name for a previously scrambled one.
func (s *Scrambler) Unscramble(scrambledName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	original, found := s.rScrambleMap[scrambledName]
	return original, found
}

// LookupObfuscated is the forward lookup: original name to scrambled
// name, used by pkg/api's LookupObfuscatedName and by callers that already
// hold the original.
func (s *Scrambler) LookupObfuscated(original string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obfuscated, found := s.scrambleMap[original]
	return obfuscated, found
}

func (s *Scrambler) generateScrambledName() string {
	var firstChars, allChars string
	length := s.currentLength
	switch s.mode {
	case "numeric":
		firstChars, allChars = firstCharsNumeric, allCharsNumeric
	case "hexa":
		firstChars, allChars = firstCharsHex, allCharsHex
	default:
		firstChars, allChars = firstCharsIdentifier, allCharsIdentifier
	}
	if length < s.minLength {
		length = s.minLength
	}
	if length > s.maxLength {
		length = s.maxLength
	}
	var sb strings.Builder
	sb.Grow(length)
	sb.WriteByte(firstChars[s.rng.Intn(len(firstChars))])
	for i := 1; i < length; i++ {
		sb.WriteByte(allChars[s.rng.Intn(len(allChars))])
	}
	return sb.String()
}

// GenerateLabelName produces the next label for the given prefix (no
// transformer in this repository calls it) and records it the same way a
// scrambled identifier is recorded, so whatis can resolve it later.
func (s *Scrambler) GenerateLabelName(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	counter := s.labelCounter.String()
	s.labelCounter.Add(s.labelCounter, big.NewInt(1))
	generated := fmt.Sprintf("%s_%s", prefix, counter)
	return s.scrambleLocked(generated)
}

// SaveState persists the scrambler's maps to filePath via gob.
func (s *Scrambler) SaveState(filePath string) error {
	s.mu.RLock()
	state := scramblerState{
		Version:      contextVersion,
		ScrambleMap:  s.scrambleMap,
		RScrambleMap: s.rScrambleMap,
		LabelCounter: s.labelCounter,
		CurrentLen:   s.currentLength,
	}
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("failed to encode scrambler state: %w", err)
	}
	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write scrambler state to %s: %w", filePath, err)
	}
	return nil
}

// LoadState replaces the scrambler's maps with the contents of filePath.
// A missing file is not an error: it means there is no prior state.
func (s *Scrambler) LoadState(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read scrambler state file %s: %w", filePath, err)
	}

	var state scramblerState
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode scrambler state from %s: %w", filePath, err)
	}
	if state.Version != contextVersion {
		return fmt.Errorf("incompatible context version: file has %q, expected %q", state.Version, contextVersion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrambleMap = state.ScrambleMap
	s.rScrambleMap = state.RScrambleMap
	s.labelCounter = state.LabelCounter
	s.currentLength = state.CurrentLen
	if s.scrambleMap == nil {
		s.scrambleMap = make(map[string]string)
	}
	if s.rScrambleMap == nil {
		s.rScrambleMap = make(map[string]string)
	}
	if s.labelCounter == nil {
		s.labelCounter = big.NewInt(0)
	}
	return nil
}
