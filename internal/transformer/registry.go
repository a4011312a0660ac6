package transformer

import (
	mrand "math/rand"

	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
)

// NewDefaultRegistry builds the registry for one obfuscation call, wiring
// every transformer in the catalog against cfg. rng seeds the
// content-rewriting transformers that need randomness beyond name
// generation (DeadCodeInjection's injection-rate rolls and junk values);
// scramblers are the already-constructed per-ScrambleType name generators
// shared with anything else in the pipeline that needs to look a name up
// (e.g. a whatis CLI). hashbang is a pointer the Hashbang code transformers
// share to pass the captured line from Stripper to Restorer.
func NewDefaultRegistry(
	cfg *config.Config,
	rng *mrand.Rand,
	identifiers *scrambler.Scrambler,
	properties *scrambler.Scrambler,
	hashbang *string,
) *Registry {
	r := NewRegistry()

	r.RegisterNode(Parentification, func() NodeTransformer {
		return NewParentification()
	})
	r.RegisterNode(CommentStripper, func() NodeTransformer {
		return NewCommentStripper(cfg)
	})
	r.RegisterNode(DeadCodeInjectionName, func() NodeTransformer {
		return NewDeadCodeInjector(cfg, rng)
	})
	r.RegisterNode(ControlFlowFlatteningName, func() NodeTransformer {
		return NewControlFlowFlattener(cfg)
	})
	r.RegisterNode(RenamePropertiesTransformer, func() NodeTransformer {
		return NewPropertyRenamer(cfg, properties)
	})
	r.RegisterNode(TemplateLiteralConverter, func() NodeTransformer {
		return NewTemplateLiteralConverter()
	})
	r.RegisterNode(IdentifierRenamer, func() NodeTransformer {
		return NewIdentifierRenamer(identifiers)
	})
	r.RegisterNode(StringArrayTransformer, func() NodeTransformer {
		return NewStringArrayTransformer(cfg)
	})
	r.RegisterNode(VarMerger, func() NodeTransformer {
		return NewVarMerger(cfg)
	})
	r.RegisterNode(ArithmeticObfuscator, func() NodeTransformer {
		return NewArithmeticObfuscator(cfg, rng)
	})

	r.RegisterCode(HashbangStripper, func() CodeTransformer {
		return NewHashbangStripper(hashbang)
	})
	r.RegisterCode(HashbangRestorer, func() CodeTransformer {
		return NewHashbangRestorer(hashbang)
	})

	return r
}
