package transformer

import (
	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// parentify is the always-on Preparing-stage transformer that establishes
// the non-owning parent back-reference on every node, per spec.md's data
// model ("a parent back-reference populated by the Parentification
// transformer"). It has no dependencies and nothing else depends on its
// visitor directly, but every transformer that reads Meta.Parent (instead
// of the immediate parent argument the traversal already hands it) relies
// on this having run first in the stage's batch ordering.
type parentify struct{}

// NewParentification returns the Parentification transformer.
func NewParentification() NodeTransformer { return &parentify{} }

func (*parentify) Name() Name           { return Parentification }
func (*parentify) Dependencies() []Name { return nil }

func (*parentify) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.Preparing {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Enter: func(n ast.Node, parent ast.Node) visitor.Result {
			n.Base().Meta.Parent = parent
			return visitor.SameResult()
		},
	}, true
}

func (*parentify) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (*parentify) Finalize(stage.NodeStage, *ast.Program) error { return nil }
