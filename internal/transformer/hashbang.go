package transformer

import (
	"strings"

	"github.com/whit3rabbit/jsmixer/internal/stage"
)

// hashbangStripper removes a leading `#!...` line from the raw source
// before it reaches the parser (the grammar this pipeline parses has no
// hashbang production) and remembers it for hashbangRestorer to prepend
// back onto the generated output. Grounded on the teacher's code-stage
// transformers, which likewise operate on the raw string rather than the
// AST for concerns the parser itself does not model.
type hashbangStripper struct {
	captured *string
}

// NewHashbangStripper returns the PreparingTransformers transformer. The
// captured hashbang text is written into *out so a paired
// hashbangRestorer (constructed with the same pointer) can read it back
// during FinalizingTransformers.
func NewHashbangStripper(out *string) CodeTransformer {
	return &hashbangStripper{captured: out}
}

func (*hashbangStripper) Name() Name           { return HashbangStripper }
func (*hashbangStripper) Dependencies() []Name { return nil }

func (h *hashbangStripper) CodeFunc(s stage.CodeStage) (func(string) (string, error), bool) {
	if s != stage.PreparingTransformers {
		return nil, false
	}
	return func(src string) (string, error) {
		if !strings.HasPrefix(src, "#!") {
			return src, nil
		}
		line, rest, found := strings.Cut(src, "\n")
		if !found {
			line, rest = src, ""
		}
		*h.captured = line
		return rest, nil
	}, true
}

func (*hashbangStripper) Prepare(stage.CodeStage) error  { return nil }
func (*hashbangStripper) Finalize(stage.CodeStage) error { return nil }

// hashbangRestorer prepends the hashbang line hashbangStripper captured
// back onto the generated code.
type hashbangRestorer struct {
	captured *string
}

// NewHashbangRestorer returns the FinalizingTransformers transformer,
// sharing the capture pointer with the hashbangStripper from the same
// pipeline run.
func NewHashbangRestorer(captured *string) CodeTransformer {
	return &hashbangRestorer{captured: captured}
}

func (*hashbangRestorer) Name() Name           { return HashbangRestorer }
func (*hashbangRestorer) Dependencies() []Name { return []Name{HashbangStripper} }

func (h *hashbangRestorer) CodeFunc(s stage.CodeStage) (func(string) (string, error), bool) {
	if s != stage.FinalizingTransformers {
		return nil, false
	}
	return func(src string) (string, error) {
		if h.captured == nil || *h.captured == "" {
			return src, nil
		}
		return *h.captured + "\n" + src, nil
	}, true
}

func (*hashbangRestorer) Prepare(stage.CodeStage) error  { return nil }
func (*hashbangRestorer) Finalize(stage.CodeStage) error { return nil }
