package transformer

import (
	"strconv"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// templateLiteralConverter folds adjacent string-literal concatenation
// chains (`"a" + "b"`) into a single literal, the JS-domain counterpart of
// the teacher's string/template desugaring pass: later stages (StringArray
// in particular) work against string literal nodes, so any concatenation
// chain earlier stages happened to build needs collapsing back to
// printable literal members before the generator sees it. Folding on
// Leave (post-order) lets nested chains collapse bottom-up in one pass.
type templateLiteralConverter struct{}

// NewTemplateLiteralConverter returns the always-on Converting transformer.
func NewTemplateLiteralConverter() NodeTransformer { return &templateLiteralConverter{} }

func (*templateLiteralConverter) Name() Name           { return TemplateLiteralConverter }
func (*templateLiteralConverter) Dependencies() []Name { return nil }

func (*templateLiteralConverter) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.Converting {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Leave: func(n ast.Node, _ ast.Node) visitor.Result {
			bin, ok := n.(*ast.BinaryExpression)
			if !ok || bin.Operator != "+" {
				return visitor.SameResult()
			}
			left, ok := bin.Left.(*ast.StringLiteral)
			if !ok {
				return visitor.SameResult()
			}
			right, ok := bin.Right.(*ast.StringLiteral)
			if !ok {
				return visitor.SameResult()
			}
			value := left.Value + right.Value
			return visitor.ReplaceWith(&ast.StringLiteral{
				Base:  bin.Base,
				Value: value,
				Raw:   strconv.Quote(value),
			})
		},
	}, true
}

func (*templateLiteralConverter) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (*templateLiteralConverter) Finalize(stage.NodeStage, *ast.Program) error { return nil }
