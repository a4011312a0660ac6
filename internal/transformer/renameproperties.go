package transformer

import (
	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// propertyRenamer replaces own (non-computed) property keys and member
// accesses with scrambled names, grounded on the teacher's property
// renaming pass (there gated behind the same kind of opt-in flag, since
// blind property renaming is unsound in the presence of reflection-style
// access the obfuscator cannot see, e.g. `obj[someDynamicString]`).
type propertyRenamer struct {
	enabled   bool
	scrambler *scrambler.Scrambler
}

// NewPropertyRenamer returns the RenameProperties transformer, active only
// when cfg.Obfuscation.RenameProperties.Enabled is set.
func NewPropertyRenamer(cfg *config.Config, s *scrambler.Scrambler) NodeTransformer {
	return &propertyRenamer{enabled: cfg.Obfuscation.RenameProperties.Enabled, scrambler: s}
}

func (*propertyRenamer) Name() Name           { return RenamePropertiesTransformer }
func (*propertyRenamer) Dependencies() []Name { return []Name{Parentification} }

func (r *propertyRenamer) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.RenameProperties || !r.enabled {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Enter: func(n ast.Node, parent ast.Node) visitor.Result {
			switch p := parent.(type) {
			case *ast.Property:
				id, ok := n.(*ast.Identifier)
				if !ok || p.Computed || p.Key != ast.Node(id) {
					return visitor.SameResult()
				}
				return r.renamed(id)
			case *ast.MemberExpression:
				id, ok := n.(*ast.Identifier)
				if !ok || p.Computed || p.Property != ast.Node(id) {
					return visitor.SameResult()
				}
				return r.renamed(id)
			default:
				return visitor.SameResult()
			}
		},
	}, true
}

func (r *propertyRenamer) renamed(id *ast.Identifier) visitor.Result {
	scrambled := r.scrambler.Scramble(id.Name)
	if scrambled == id.Name {
		return visitor.SameResult()
	}
	return visitor.ReplaceWith(&ast.Identifier{Base: id.Base, Name: scrambled})
}

func (*propertyRenamer) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (*propertyRenamer) Finalize(stage.NodeStage, *ast.Program) error { return nil }
