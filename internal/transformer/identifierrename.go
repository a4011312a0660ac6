package transformer

import (
	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/scrambler"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// identifierRenamer replaces variable, function, and parameter identifiers
// with scrambled names, grounded on the teacher's IdentifiersObfuscator
// visitor. It switches on the traversal's live parent argument rather than
// node.Meta.Parent: the parent argument is always the true immediate
// parent for this call, whereas Meta.Parent is only refreshed by the
// Parentification pass at the start of Preparing and can go stale once
// DeadCodeInjection or ControlFlowFlattening restructure the tree ahead of
// this stage.
type identifierRenamer struct {
	scrambler *scrambler.Scrambler
}

// NewIdentifierRenamer returns the RenameIdentifiers transformer.
func NewIdentifierRenamer(s *scrambler.Scrambler) NodeTransformer {
	return &identifierRenamer{scrambler: s}
}

func (*identifierRenamer) Name() Name           { return IdentifierRenamer }
func (*identifierRenamer) Dependencies() []Name { return []Name{Parentification} }

func (r *identifierRenamer) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.RenameIdentifiers {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Enter: func(n ast.Node, parent ast.Node) visitor.Result {
			id, ok := n.(*ast.Identifier)
			if !ok {
				return visitor.SameResult()
			}
			if isNonVariableNamePosition(id, parent) {
				return visitor.SameResult()
			}
			scrambled := r.scrambler.Scramble(id.Name)
			if scrambled == id.Name {
				return visitor.SameResult()
			}
			return visitor.ReplaceWith(&ast.Identifier{Base: id.Base, Name: scrambled})
		},
	}, true
}

// isNonVariableNamePosition reports whether id occupies a syntactic slot
// that names something other than a variable binding or reference: an
// own (non-computed) property key, or the non-computed property name of a
// member expression.
func isNonVariableNamePosition(id *ast.Identifier, parent ast.Node) bool {
	switch p := parent.(type) {
	case *ast.Property:
		return p.Key == ast.Node(id) && !p.Computed
	case *ast.MemberExpression:
		return p.Property == ast.Node(id) && !p.Computed
	default:
		return false
	}
}

func (*identifierRenamer) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (*identifierRenamer) Finalize(stage.NodeStage, *ast.Program) error { return nil }
