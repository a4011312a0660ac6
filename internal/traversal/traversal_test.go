package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

func numLit(v float64) *ast.NumericLiteral {
	return &ast.NumericLiteral{Value: v}
}

func program(body ...ast.Node) *ast.Program {
	return &ast.Program{Body: body}
}

func TestReplace_CoversEveryNonIgnoredNode(t *testing.T) {
	prog := program(
		&ast.ExpressionStatement{Expression: numLit(1)},
		&ast.ExpressionStatement{Expression: numLit(2)},
	)

	var entered, left []ast.Kind
	v := visitor.Visitor{
		Enter: func(n ast.Node, _ ast.Node) visitor.Result {
			entered = append(entered, n.Kind())
			return visitor.SameResult()
		},
		Leave: func(n ast.Node, _ ast.Node) visitor.Result {
			left = append(left, n.Kind())
			return visitor.SameResult()
		},
	}

	Replace(prog, v)

	assert.Equal(t, []ast.Kind{
		ast.KindProgram, ast.KindExpressionStatement, ast.KindNumericLiteral,
		ast.KindExpressionStatement, ast.KindNumericLiteral,
	}, entered)
	assert.Equal(t, []ast.Kind{
		ast.KindNumericLiteral, ast.KindExpressionStatement,
		ast.KindNumericLiteral, ast.KindExpressionStatement, ast.KindProgram,
	}, left)
}

func TestReplace_EnterReplacementVisibleToLeaveAndDescendants(t *testing.T) {
	prog := program(&ast.ExpressionStatement{Expression: numLit(1)})

	replacement := numLit(99)
	var leaveSaw ast.Node

	v := visitor.Visitor{
		Enter: func(n ast.Node, _ ast.Node) visitor.Result {
			if _, ok := n.(*ast.NumericLiteral); ok {
				return visitor.ReplaceWith(replacement)
			}
			return visitor.SameResult()
		},
		Leave: func(n ast.Node, _ ast.Node) visitor.Result {
			if _, ok := n.(*ast.NumericLiteral); ok {
				leaveSaw = n
			}
			return visitor.SameResult()
		},
	}

	Replace(prog, v)

	assert.Same(t, replacement, leaveSaw)
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	assert.Same(t, replacement, stmt.Expression)
}

func TestReplace_SkipSubtreeStopsDescent(t *testing.T) {
	fn := &ast.FunctionExpression{Body: &ast.BlockStatement{Body: []ast.Node{
		&ast.ExpressionStatement{Expression: numLit(1)},
	}}}
	prog := program(&ast.ExpressionStatement{Expression: fn})

	var visitedNumeric bool
	v := visitor.Visitor{
		Enter: func(n ast.Node, _ ast.Node) visitor.Result {
			if _, ok := n.(*ast.FunctionExpression); ok {
				return visitor.SkipSubtree()
			}
			if _, ok := n.(*ast.NumericLiteral); ok {
				visitedNumeric = true
			}
			return visitor.SameResult()
		},
	}

	Replace(prog, v)

	assert.False(t, visitedNumeric)
}

func TestReplace_AbortStopsWholeWalk(t *testing.T) {
	prog := program(
		&ast.ExpressionStatement{Expression: numLit(1)},
		&ast.ExpressionStatement{Expression: numLit(2)},
	)

	var count int
	v := visitor.Visitor{
		Enter: func(n ast.Node, _ ast.Node) visitor.Result {
			if _, ok := n.(*ast.NumericLiteral); ok {
				count++
				if count == 1 {
					return visitor.AbortTraversal()
				}
			}
			return visitor.SameResult()
		},
	}

	Replace(prog, v)

	assert.Equal(t, 1, count)
}

func TestReplace_IgnoredNodeAndSubtreeNeverVisited(t *testing.T) {
	inner := numLit(5)
	ignoredStmt := &ast.ExpressionStatement{Expression: inner}
	ignoredStmt.Meta.Ignored = true
	prog := program(ignoredStmt, &ast.ExpressionStatement{Expression: numLit(6)})

	var kinds []ast.Kind
	v := visitor.Visitor{
		Enter: func(n ast.Node, _ ast.Node) visitor.Result {
			kinds = append(kinds, n.Kind())
			return visitor.SameResult()
		},
	}

	Replace(prog, v)

	assert.Equal(t, []ast.Kind{ast.KindProgram, ast.KindExpressionStatement, ast.KindNumericLiteral}, kinds)
}

func TestFuse_IgnoredCheckedOnceForBatch(t *testing.T) {
	stmt := &ast.ExpressionStatement{Expression: numLit(1)}
	stmt.Meta.Ignored = true
	prog := program(stmt)

	var calls int
	fused := visitor.Fuse([]visitor.Visitor{
		{Enter: func(ast.Node, ast.Node) visitor.Result { calls++; return visitor.SameResult() }},
		{Enter: func(ast.Node, ast.Node) visitor.Result { calls++; return visitor.SameResult() }},
	})

	Replace(prog, fused)

	// Only the non-ignored Program reaches the fused callback, once per
	// component; the ignored statement and its literal add no calls.
	assert.Equal(t, 2, calls)
}
