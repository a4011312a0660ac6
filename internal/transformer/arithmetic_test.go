package transformer

import (
	mrand "math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/traversal"
)

func newArithmeticConfig(enabled bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.Arithmetic.Enabled = enabled
	return cfg
}

// TestArithmeticObfuscator_TerminatesAndIgnoresItsOwnOutput exercises the
// branching hazard a binary-expression rewrite creates: the replacement's
// operands are themselves binary expressions/literals eligible for the
// same rewrite. Without the Ignored-subtree guard on a replacement's
// direct children, that's an unbounded branching walk; with it, the
// traversal must terminate in one pass over a handful of nodes.
func TestArithmeticObfuscator_TerminatesAndIgnoresItsOwnOutput(t *testing.T) {
	cfg := newArithmeticConfig(true)
	rng := mrand.New(mrand.NewSource(1))
	transformer := NewArithmeticObfuscator(cfg, rng)

	v, ok := transformer.NodeVisitor(stage.Simplifying)
	require.True(t, ok)

	expr := &ast.BinaryExpression{
		Operator: "+",
		Left:     &ast.NumericLiteral{Value: 10},
		Right:    &ast.NumericLiteral{Value: 20},
	}

	done := make(chan ast.Node, 1)
	go func() { done <- traversal.Replace(expr, v) }()

	select {
	case result := <-done:
		_, ok := result.(*ast.BinaryExpression)
		require.True(t, ok, "a rewritten or untouched '+' expression is still a BinaryExpression")
	case <-time.After(5 * time.Second):
		t.Fatal("traversal.Replace did not terminate for a rewritten binary expression")
	}
}

// TestArithmeticObfuscator_ReplacementChildrenAreIgnored checks the guard
// directly: markIgnored must flag a freshly built node's own operands so
// the walker's descent into them short-circuits instead of obfuscating
// synthetic output a second time.
func TestArithmeticObfuscator_ReplacementChildrenAreIgnored(t *testing.T) {
	left := &ast.NumericLiteral{Value: 1}
	right := &ast.NumericLiteral{Value: 2}
	replacement := bin("+", left, right)

	markIgnored(replacement)

	assert.True(t, ast.IsIgnored(replacement.Left))
	assert.True(t, ast.IsIgnored(replacement.Right))
}

// TestArithmeticObfuscator_DisabledProducesNoVisitor mirrors the dead-code
// injector's activation guard: inactive outside Simplifying or when off.
func TestArithmeticObfuscator_DisabledProducesNoVisitor(t *testing.T) {
	cfg := newArithmeticConfig(false)
	transformer := NewArithmeticObfuscator(cfg, mrand.New(mrand.NewSource(1)))

	_, ok := transformer.NodeVisitor(stage.Simplifying)
	assert.False(t, ok)

	cfg = newArithmeticConfig(true)
	transformer = NewArithmeticObfuscator(cfg, mrand.New(mrand.NewSource(1)))
	_, ok = transformer.NodeVisitor(stage.RenameIdentifiers)
	assert.False(t, ok)
}

// TestArithmeticObfuscator_LiteralExpansionPreservesValue checks that a
// rewritten integer literal evaluates back to the same value (sum and
// product forms both hold).
func TestArithmeticObfuscator_LiteralExpansionPreservesValue(t *testing.T) {
	a := &arithmeticObfuscator{enabled: true, rng: mrand.New(mrand.NewSource(2))}

	for i := 0; i < 20; i++ {
		lit := &ast.NumericLiteral{Value: 12}
		replacement := a.obfuscateLiteral(lit)
		if replacement == nil {
			continue
		}
		expr, ok := replacement.(*ast.BinaryExpression)
		require.True(t, ok)
		assert.Contains(t, []string{"+", "-", "*", "/"}, expr.Operator)
		assert.Equal(t, float64(12), evalArith(t, replacement))
	}
}

// evalArith evaluates a tree of numeric literals, unary minus and the four
// binary arithmetic operators.
func evalArith(t *testing.T, n ast.Node) float64 {
	t.Helper()
	switch e := n.(type) {
	case *ast.NumericLiteral:
		return e.Value
	case *ast.UnaryExpression:
		require.Equal(t, "-", e.Operator)
		return -evalArith(t, e.Argument)
	case *ast.BinaryExpression:
		l, r := evalArith(t, e.Left), evalArith(t, e.Right)
		switch e.Operator {
		case "+":
			return l + r
		case "-":
			return l - r
		case "*":
			return l * r
		case "/":
			return l / r
		}
	}
	t.Fatalf("unexpected node %T in arithmetic expansion", n)
	return 0
}

// TestArithmeticObfuscator_SmallLiteralsLeftAlone matches the teacher's
// "don't obfuscate small numbers or 0" guard.
func TestArithmeticObfuscator_SmallLiteralsLeftAlone(t *testing.T) {
	a := &arithmeticObfuscator{enabled: true, rng: mrand.New(mrand.NewSource(3))}
	for _, v := range []float64{-1, 0, 1, 2, 2.5} {
		lit := &ast.NumericLiteral{Value: v}
		assert.Nil(t, a.obfuscateLiteral(lit))
	}
}
