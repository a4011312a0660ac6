// Package driver sequences one obfuscation call through the stages
// spec.md §4.4 lists: PreparingTransformers (code) -> parse ->
// Initializing..Finalizing (node, in stage.CanonicalOrder) -> generate ->
// FinalizingTransformers (code). It is the direct equivalent of the
// teacher's internal/obfuscator.ProcessFile, rebuilt around the
// registry/scheduler machinery in internal/transformer instead of that
// file's sequence of hand-written if blocks per feature.
package driver

import (
	mrand "math/rand"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/generator"
	"github.com/whit3rabbit/jsmixer/internal/logging"
	"github.com/whit3rabbit/jsmixer/internal/obferrors"
	"github.com/whit3rabbit/jsmixer/internal/parser"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/traversal"
	"github.com/whit3rabbit/jsmixer/internal/transformer"
)

// Scramblers groups the two persisted name generators a driver run shares
// with anything else in the pipeline that needs to look a name up (the
// identifier and property renaming passes, and a whatis-style lookup
// command).
type Scramblers struct {
	Identifiers *scrambler.Scrambler
	Properties  *scrambler.Scrambler
}

// Options bundles everything one Obfuscate call needs beyond the source
// text itself.
type Options struct {
	Config        *config.Config
	Scramblers    Scramblers
	Logger        *logging.Logger
	InputFileName string
	// Seed drives the non-scrambler randomness (DeadCodeInjection's
	// injection-rate rolls), per spec.md §8's determinism invariant:
	// same source + same seed always yields the same output.
	Seed int64
}

// Obfuscate runs one source file through the full pipeline and returns
// the generated code (and, if requested, its source map).
func Obfuscate(source string, opts Options) (generator.Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	cfg := opts.Config

	log.ObfuscationStarted(opts.InputFileName)
	log.RandomGeneratorSeed(opts.Seed)

	rng := mrand.New(mrand.NewSource(opts.Seed))
	var hashbang string
	reg := transformer.NewDefaultRegistry(cfg, rng, opts.Scramblers.Identifiers, opts.Scramblers.Properties, &hashbang)

	src := source

	log.CodeTransformationStage(stage.PreparingTransformers)
	src, err := runCodeStage(reg, stage.PreparingTransformers, src)
	if err != nil {
		return generator.Result{}, err
	}

	program, err := parser.Parse(src, parser.DefaultOptions())
	if err != nil {
		if pe, ok := err.(*obferrors.ParseError); ok {
			return generator.Result{}, pe
		}
		return generator.Result{}, &obferrors.ParseError{Message: err.Error()}
	}

	for _, s := range stage.CanonicalOrder {
		if stage.Optional(s) && !nodeStageEnabled(cfg, s) {
			continue
		}
		log.NodeTransformationStage(s)
		if err := runNodeStage(reg, s, program); err != nil {
			return generator.Result{}, err
		}
		if s == stage.Initializing && len(program.Body) == 0 {
			log.EmptySourceCode()
			break
		}
	}

	genOpts := generator.Options{
		// commentStripper (Preparing stage) already cleared Comments on
		// every node when cfg.Obfuscation.Comments.Strip is set, so the
		// generator is asked to retain whatever survived that pass; it
		// prints attached comments only when Compact is off.
		Compact:       cfg.Compact,
		Comments:      true,
		InputFileName: opts.InputFileName,
	}
	if cfg.SourceMap {
		if cfg.SourceMapSourcesMode == config.SourceMapSourcesContent {
			genOpts.SourceMap = generator.EmbeddedSourcesSentinel
			genOpts.SourceContent = source
		} else {
			genOpts.SourceMap = opts.InputFileName
		}
	}
	result, err := generator.Generate(program, genOpts)
	if err != nil {
		return generator.Result{}, err
	}

	log.CodeTransformationStage(stage.FinalizingTransformers)
	result.Code, err = runCodeStage(reg, stage.FinalizingTransformers, result.Code)
	if err != nil {
		return generator.Result{}, err
	}

	log.ObfuscationCompleted()
	return result, nil
}

// nodeStageEnabled reports whether one of the three optional node stages
// is turned on in cfg, per spec.md's stage-skipping rule.
func nodeStageEnabled(cfg *config.Config, s stage.NodeStage) bool {
	switch s {
	case stage.DeadCodeInjection:
		return cfg.Obfuscation.DeadCode.Enabled
	case stage.RenameProperties:
		return cfg.Obfuscation.RenameProperties.Enabled
	case stage.Simplifying:
		return cfg.Obfuscation.Simplify.Enabled
	default:
		return true
	}
}

func runNodeStage(reg *transformer.Registry, s stage.NodeStage, program *ast.Program) error {
	batches, instances, err := transformer.ScheduleNodeStage(reg, s)
	if err != nil {
		return err
	}
	active := transformer.ActiveNames(batches)
	for _, name := range active {
		if err := instances[name].Prepare(s, program); err != nil {
			return &obferrors.TransformerFailure{Stage: s.String(), Transformer: string(name), Err: err}
		}
	}
	for _, batch := range batches {
		replaced := traversal.Replace(program, batch.Visitor)
		newProgram, ok := replaced.(*ast.Program)
		if !ok {
			return &obferrors.TransformerFailure{
				Stage:       s.String(),
				Transformer: namesJoin(batch.Names),
				Err:         errNonProgramRoot,
			}
		}
		*program = *newProgram
	}
	for i := len(active) - 1; i >= 0; i-- {
		name := active[i]
		if err := instances[name].Finalize(s, program); err != nil {
			return &obferrors.TransformerFailure{Stage: s.String(), Transformer: string(name), Err: err}
		}
	}
	return nil
}

func runCodeStage(reg *transformer.Registry, s stage.CodeStage, src string) (string, error) {
	batches, instances, err := transformer.ScheduleCodeStage(reg, s)
	if err != nil {
		return "", err
	}
	var active []transformer.Name
	for _, b := range batches {
		active = append(active, b.Names...)
	}
	for _, name := range active {
		if err := instances[name].Prepare(s); err != nil {
			return "", &obferrors.TransformerFailure{Stage: s.String(), Transformer: string(name), Err: err}
		}
	}
	for _, batch := range batches {
		src, err = batch.Apply(src)
		if err != nil {
			return "", &obferrors.TransformerFailure{Stage: s.String(), Transformer: namesJoin(batch.Names), Err: err}
		}
	}
	for i := len(active) - 1; i >= 0; i-- {
		name := active[i]
		if err := instances[name].Finalize(s); err != nil {
			return "", &obferrors.TransformerFailure{Stage: s.String(), Transformer: string(name), Err: err}
		}
	}
	return src, nil
}

func namesJoin(names []transformer.Name) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += string(n)
	}
	return out
}

var errNonProgramRoot = programRootError{}

// programRootError reports that a node stage's replacement swapped out
// the Program root itself, which no transformer in the catalog is
// expected to do (Replace on the root node is only meaningful for
// non-root nodes; the root's identity must survive every batch).
type programRootError struct{}

func (programRootError) Error() string { return "node stage replaced the program root with a non-Program node" }
