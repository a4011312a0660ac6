package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/ast"
)

func TestParse_VarDeclaration(t *testing.T) {
	prog, err := Parse(`var x = 1, y = "hi";`, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	decl, ok := prog.Body[0].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "var", decl.Kind_)
	require.Len(t, decl.Declarations, 2)

	name0, ok := decl.Declarations[0].Name.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "x", name0.Name)

	num, ok := decl.Declarations[0].Init.(*ast.NumericLiteral)
	require.True(t, ok)
	assert.Equal(t, float64(1), num.Value)

	str, ok := decl.Declarations[1].Init.(*ast.StringLiteral)
	require.True(t, ok)
	assert.Equal(t, "hi", str.Value)
}

func TestParse_FunctionDeclarationAndReturn(t *testing.T) {
	prog, err := Parse(`function add(a, b) { return a + b; }`, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	fn, ok := prog.Body[0].(*ast.FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)

	require.Len(t, fn.Body.Body, 1)
	ret, ok := fn.Body.Body[0].(*ast.ReturnStatement)
	require.True(t, ok)
	bin, ok := ret.Argument.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)
}

func TestParse_IfElseAndCall(t *testing.T) {
	prog, err := Parse(`if (x > 0) { foo(x); } else { bar(); }`, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	ifStmt, ok := prog.Body[0].(*ast.IfStatement)
	require.True(t, ok)
	test, ok := ifStmt.Test.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ">", test.Operator)

	consequent, ok := ifStmt.Consequent.(*ast.BlockStatement)
	require.True(t, ok)
	require.Len(t, consequent.Body, 1)
	exprStmt, ok := consequent.Body[0].(*ast.ExpressionStatement)
	require.True(t, ok)
	call, ok := exprStmt.Expression.(*ast.CallExpression)
	require.True(t, ok)
	callee, ok := call.Callee.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "foo", callee.Name)

	require.NotNil(t, ifStmt.Alternate)
}

func TestParse_ForLoop(t *testing.T) {
	prog, err := Parse(`for (var i = 0; i < 10; i++) { sum = sum + i; }`, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	forStmt, ok := prog.Body[0].(*ast.ForStatement)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Test)
	require.NotNil(t, forStmt.Update)

	update, ok := forStmt.Update.(*ast.UpdateExpression)
	require.True(t, ok)
	assert.Equal(t, "++", update.Operator)
	assert.False(t, update.Prefix)
}

func TestParse_OperatorPrecedenceAndAssociativity(t *testing.T) {
	prog, err := Parse(`var r = 2 + 3 * 4 ** 2 ** 2;`, DefaultOptions())
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	add, ok := decl.Declarations[0].Init.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "+", add.Operator)

	// 2 + (3 * (4 ** (2 ** 2)))
	mul, ok := add.Right.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Operator)

	outerExp, ok := mul.Right.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "**", outerExp.Operator)

	innerExp, ok := outerExp.Right.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "**", innerExp.Operator)
}

func TestParse_ObjectAndArrayLiterals(t *testing.T) {
	prog, err := Parse(`var o = {a: 1, "b": [1, 2, x]};`, DefaultOptions())
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	obj, ok := decl.Declarations[0].Init.(*ast.ObjectExpression)
	require.True(t, ok)
	require.Len(t, obj.Properties, 2)

	arr, ok := obj.Properties[1].Value.(*ast.ArrayExpression)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
}

func TestParse_CommentsAttachAsLeading(t *testing.T) {
	prog, err := Parse("// hello\nvar x = 1;", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	assert.NotEmpty(t, prog.Body[0].Base().Comments)
}

func TestParse_UnterminatedStringIsAnError(t *testing.T) {
	_, err := Parse(`var x = "unterminated;`, DefaultOptions())
	require.Error(t, err)
}

func TestParse_NewExpression(t *testing.T) {
	prog, err := Parse(`var x = new Foo(1, 2);`, DefaultOptions())
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	call, ok := decl.Declarations[0].Init.(*ast.CallExpression)
	require.True(t, ok)
	unary, ok := call.Callee.(*ast.UnaryExpression)
	require.True(t, ok)
	assert.Equal(t, "new", unary.Operator)
}
