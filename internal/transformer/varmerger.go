package transformer

import (
	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// varMerger merges adjacent `var` declarations within a single statement
// list into one, grounded on the teacher's statement_shuffler.go (there:
// reordering/merging adjacent statements to obscure the original
// structure). It acts on the list-owning node (Program or BlockStatement)
// itself rather than on the declarations, since the traversal/visitor
// contract only replaces one node for one node and cannot splice a list.
type varMerger struct {
	enabled bool
}

// NewVarMerger returns the Simplifying transformer, active only when
// cfg.Obfuscation.Simplify.Enabled is set.
func NewVarMerger(cfg *config.Config) NodeTransformer {
	return &varMerger{enabled: cfg.Obfuscation.Simplify.Enabled}
}

func (*varMerger) Name() Name           { return VarMerger }
func (*varMerger) Dependencies() []Name { return []Name{Parentification} }

func (m *varMerger) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.Simplifying || !m.enabled {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Enter: func(n ast.Node, _ ast.Node) visitor.Result {
			switch node := n.(type) {
			case *ast.Program:
				node.Body = mergeAdjacentVars(node.Body)
			case *ast.BlockStatement:
				node.Body = mergeAdjacentVars(node.Body)
			}
			return visitor.SameResult()
		},
	}, true
}

// mergeAdjacentVars folds runs of consecutive `var` VariableDeclaration
// statements into the first declaration of the run.
func mergeAdjacentVars(body []ast.Node) []ast.Node {
	merged := make([]ast.Node, 0, len(body))
	for _, stmt := range body {
		decl, ok := stmt.(*ast.VariableDeclaration)
		if !ok || decl.Kind_ != "var" {
			merged = append(merged, stmt)
			continue
		}
		if last, ok := lastVarDecl(merged); ok {
			last.Declarations = append(last.Declarations, decl.Declarations...)
			continue
		}
		merged = append(merged, decl)
	}
	return merged
}

func lastVarDecl(body []ast.Node) (*ast.VariableDeclaration, bool) {
	if len(body) == 0 {
		return nil, false
	}
	decl, ok := body[len(body)-1].(*ast.VariableDeclaration)
	if !ok || decl.Kind_ != "var" {
		return nil, false
	}
	return decl, true
}

func (*varMerger) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (*varMerger) Finalize(stage.NodeStage, *ast.Program) error { return nil }
