package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/parser"
)

func roundTrip(t *testing.T, src string, opts Options) string {
	t.Helper()
	prog, err := parser.Parse(src, parser.DefaultOptions())
	require.NoError(t, err)
	res, err := Generate(prog, opts)
	require.NoError(t, err)
	return res.Code
}

func TestGenerate_VarDeclaration(t *testing.T) {
	out := roundTrip(t, `var x = 1, y = "hi";`, Options{Compact: true})
	assert.Equal(t, `var x=1,y="hi";`, out)
}

func TestGenerate_FunctionAndReturn(t *testing.T) {
	out := roundTrip(t, `function add(a, b) { return a + b; }`, Options{Compact: true})
	assert.Equal(t, `function add(a,b){return a+b;}`, out)
}

func TestGenerate_IfElse(t *testing.T) {
	out := roundTrip(t, `if (x > 0) { foo(x); } else { bar(); }`, Options{Compact: true})
	assert.Equal(t, `if(x>0){foo(x);}else{bar();}`, out)
}

func TestGenerate_ParenthesizesWhenPrecedenceRequires(t *testing.T) {
	out := roundTrip(t, `var r = (1 + 2) * 3;`, Options{Compact: true})
	assert.Equal(t, `var r=(1+2)*3;`, out)
}

func TestGenerate_NewExpression(t *testing.T) {
	out := roundTrip(t, `var x = new Foo(1, 2);`, Options{Compact: true})
	assert.Equal(t, `var x=new Foo(1,2);`, out)
}

func TestGenerate_RoundTripIsReparsable(t *testing.T) {
	src := `function f(a,b){var c=a+b*2;if(c>10){return c;}else{return -c;}}`
	out := roundTrip(t, src, Options{Compact: true})

	prog, err := parser.Parse(out, parser.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
}

func TestGenerate_SourceMapEmitsMappings(t *testing.T) {
	prog, err := parser.Parse(`var x = 1;`, parser.DefaultOptions())
	require.NoError(t, err)

	res, err := Generate(prog, Options{Compact: true, SourceMap: "out.js.map", InputFileName: "out.js"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Map)
	assert.Contains(t, res.Map, `"version":3`)
}
