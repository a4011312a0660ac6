// Package generator is the code generator façade spec.md §4.6 specifies:
// it walks a Program and emits source text (plus an optional source map),
// recognizing {compact, comment, sourceMap, sourceContent}. There is no
// verbatim option: no node's text is ever emitted as-is (see VerbatimKey).
// Grounded in the same "façade around
// a real dependency" shape as internal/parser: the teacher's
// custom_printer.go wraps github.com/VKCOM/php-parser/pkg/visitor/printer
// with PHP-specific post-processing; this package is the direct
// equivalent for the from-scratch AST in internal/ast, since no
// ECMAScript code generator exists anywhere in the retrieved corpus (see
// DESIGN.md).
package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/obferrors"
	"github.com/whit3rabbit/jsmixer/internal/sourcemap"
)

// VerbatimKey is the name of the verbatim marker property. Generate does
// not consult it: Options has no verbatim field, internal/ast has no
// verbatim text on nodes, and every node kind internal/ast defines is
// printed by the cases below.
const VerbatimKey = "verbatim"

// Options controls generate's output, matching spec.md §4.6's recognized
// generator options.
type Options struct {
	Compact       bool   // collapse whitespace
	Comments      bool   // retain attached comments (ignored when Compact is set)
	SourceMap     string // "" disables; "sourceMap" sentinel value enables embedded sources; otherwise a file name
	SourceContent string // original source, emitted when SourceMap requests embedded sources
	InputFileName string // the "file" field of the emitted source map
}

// EmbeddedSourcesSentinel is the SourceMap value meaning "embed
// SourceContent in the map" rather than merely attach a file name,
// matching config.SourceMapSourcesContent at the pipeline boundary.
const EmbeddedSourcesSentinel = "sourceMap"

// Result is generate's return value: the emitted code and its source map
// serialized to a string (empty when no map was requested).
type Result struct {
	Code string
	Map  string
}

// Generate renders root as JavaScript source text per opts.
func Generate(root *ast.Program, opts Options) (Result, error) {
	if root == nil {
		return Result{}, &obferrors.GenerateError{Message: "nil program"}
	}
	g := &generatorState{
		opts: opts,
		buf:  &strings.Builder{},
	}
	if opts.SourceMap != "" {
		g.smap = sourcemap.NewBuilder(opts.InputFileName)
	}
	if err := g.program(root); err != nil {
		return Result{}, err
	}

	res := Result{Code: g.buf.String()}
	if g.smap != nil {
		if opts.SourceMap == EmbeddedSourcesSentinel {
			g.smap.SetSourceContent(opts.SourceContent)
		}
		res.Map = g.smap.String()
	}
	return res, nil
}

type generatorState struct {
	opts    Options
	buf     *strings.Builder
	smap    *sourcemap.Builder
	indent  int
	line    int
	col     int
}

func (g *generatorState) write(s string) {
	for _, r := range s {
		if r == '\n' {
			g.line++
			g.col = 0
		} else {
			g.col++
		}
	}
	g.buf.WriteString(s)
}

// mark records a source-position mapping at the current output location,
// for generatedLine/Col -> n's original Loc, when a map was requested.
func (g *generatorState) mark(n ast.Node) {
	if g.smap == nil || n == nil {
		return
	}
	b := n.Base()
	g.smap.Add(g.line+1, g.col, b.Loc.StartLine, b.Loc.StartCol)
}

func (g *generatorState) nl() {
	if g.opts.Compact {
		return
	}
	g.write("\n")
	g.write(strings.Repeat("  ", g.indent))
}

func (g *generatorState) sp() {
	if g.opts.Compact {
		return
	}
	g.write(" ")
}

func (g *generatorState) writeComments(n ast.Node) {
	if !g.opts.Comments || g.opts.Compact {
		return
	}
	for _, c := range n.Base().Comments {
		g.write(c.Text)
		g.nl()
	}
}

func (g *generatorState) program(p *ast.Program) error {
	for _, stmt := range p.Body {
		if err := g.statement(stmt); err != nil {
			return err
		}
		g.nl()
	}
	return nil
}

func (g *generatorState) statement(n ast.Node) error {
	if n == nil {
		return nil
	}
	g.writeComments(n)
	g.mark(n)
	switch s := n.(type) {
	case *ast.VariableDeclaration:
		if err := g.variableDeclaration(s); err != nil {
			return err
		}
		g.write(";")
	case *ast.FunctionDeclaration:
		return g.function(s.Name, s.Params, s.Body)
	case *ast.BlockStatement:
		return g.block(s)
	case *ast.ExpressionStatement:
		if err := g.expression(s.Expression, 0); err != nil {
			return err
		}
		g.write(";")
	case *ast.ReturnStatement:
		g.write("return")
		if s.Argument != nil {
			g.write(" ")
			if err := g.expression(s.Argument, 0); err != nil {
				return err
			}
		}
		g.write(";")
	case *ast.IfStatement:
		return g.ifStatement(s)
	case *ast.ForStatement:
		return g.forStatement(s)
	case *ast.WhileStatement:
		g.write("while(")
		if err := g.expression(s.Test, 0); err != nil {
			return err
		}
		g.write(")")
		g.sp()
		return g.statement(s.Body)
	case *ast.BreakStatement:
		g.write("break")
		if s.Label != "" {
			g.write(" " + s.Label)
		}
		g.write(";")
	case *ast.ContinueStatement:
		g.write("continue")
		if s.Label != "" {
			g.write(" " + s.Label)
		}
		g.write(";")
	default:
		return &obferrors.GenerateError{Message: fmt.Sprintf("unsupported statement node %T", n)}
	}
	return nil
}

func (g *generatorState) block(b *ast.BlockStatement) error {
	g.write("{")
	g.indent++
	for _, stmt := range b.Body {
		g.nl()
		if err := g.statement(stmt); err != nil {
			return err
		}
	}
	g.indent--
	g.nl()
	g.write("}")
	return nil
}

func (g *generatorState) function(name *ast.Identifier, params []*ast.Identifier, body *ast.BlockStatement) error {
	g.write("function")
	if name != nil {
		g.write(" " + name.Name)
	} else {
		g.sp()
	}
	g.write("(")
	for i, p := range params {
		if i > 0 {
			g.write(",")
			g.sp()
		}
		g.write(p.Name)
	}
	g.write(")")
	g.sp()
	return g.block(body)
}

func (g *generatorState) ifStatement(s *ast.IfStatement) error {
	g.write("if(")
	if err := g.expression(s.Test, 0); err != nil {
		return err
	}
	g.write(")")
	g.sp()
	if err := g.statement(s.Consequent); err != nil {
		return err
	}
	if s.Alternate != nil {
		if !g.opts.Compact {
			g.write(" ")
		}
		g.write("else")
		g.sp()
		if err := g.statement(s.Alternate); err != nil {
			return err
		}
	}
	return nil
}

func (g *generatorState) forStatement(s *ast.ForStatement) error {
	g.write("for(")
	if s.Init != nil {
		if decl, ok := s.Init.(*ast.VariableDeclaration); ok {
			if err := g.variableDeclaration(decl); err != nil {
				return err
			}
		} else if err := g.expression(s.Init, 0); err != nil {
			return err
		}
	}
	g.write(";")
	if s.Test != nil {
		if err := g.expression(s.Test, 0); err != nil {
			return err
		}
	}
	g.write(";")
	if s.Update != nil {
		if err := g.expression(s.Update, 0); err != nil {
			return err
		}
	}
	g.write(")")
	g.sp()
	return g.statement(s.Body)
}

func (g *generatorState) variableDeclaration(d *ast.VariableDeclaration) error {
	g.write(d.Kind_ + " ")
	for i, decl := range d.Declarations {
		if i > 0 {
			g.write(",")
			g.sp()
		}
		name, ok := decl.Name.(*ast.Identifier)
		if !ok {
			return &obferrors.GenerateError{Message: fmt.Sprintf("unsupported declarator name node %T", decl.Name)}
		}
		g.write(name.Name)
		if decl.Init != nil {
			g.write("=")
			if err := g.expression(decl.Init, precAssign); err != nil {
				return err
			}
		}
	}
	return nil
}

// Precedence levels used to decide when a sub-expression needs
// parenthesizing. Lower binds looser; an operand whose own precedence is
// lower than the context it sits in gets wrapped. This mirrors (but does
// not need to exactly invert) internal/parser's binaryPrec table: it only
// needs to be consistent enough that re-parsing the emitted text yields an
// equivalent tree, not byte-identical precedence numbers.
const (
	precSequence = iota
	precAssign
	precConditional
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precCall
	precPrimary
)

var binOpPrec = map[string]int{
	"||": precLogicalOr, "??": precLogicalOr,
	"&&": precLogicalAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"instanceof": precRelational, "in": precRelational,
	"<<": precShift, ">>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
	"**": precExponent,
}

func exprPrec(n ast.Node) int {
	switch e := n.(type) {
	case *ast.SequenceExpression:
		return precSequence
	case *ast.AssignmentExpression:
		return precAssign
	case *ast.ConditionalExpression:
		return precConditional
	case *ast.LogicalExpression:
		return binOpPrec[e.Operator]
	case *ast.BinaryExpression:
		return binOpPrec[e.Operator]
	case *ast.UnaryExpression:
		return precUnary
	case *ast.UpdateExpression:
		if e.Prefix {
			return precUnary
		}
		return precPostfix
	case *ast.CallExpression, *ast.MemberExpression:
		return precCall
	default:
		return precPrimary
	}
}

// expression renders n, wrapping it in parentheses when its own
// precedence is lower than minPrec (the precedence the caller requires of
// its operand).
func (g *generatorState) expression(n ast.Node, minPrec int) error {
	if n == nil {
		return nil
	}
	g.mark(n)
	needParens := exprPrec(n) < minPrec
	if needParens {
		g.write("(")
	}
	if err := g.expressionInner(n); err != nil {
		return err
	}
	if needParens {
		g.write(")")
	}
	return nil
}

func (g *generatorState) expressionInner(n ast.Node) error {
	switch e := n.(type) {
	case *ast.Identifier:
		g.write(e.Name)
	case *ast.StringLiteral:
		g.write(quoteString(e.Value))
	case *ast.NumericLiteral:
		g.write(formatNumber(e.Value, e.Raw))
	case *ast.BooleanLiteral:
		if e.Value {
			g.write("true")
		} else {
			g.write("false")
		}
	case *ast.NullLiteral:
		g.write("null")
	case *ast.ArrayExpression:
		return g.arrayExpression(e)
	case *ast.ObjectExpression:
		return g.objectExpression(e)
	case *ast.FunctionExpression:
		return g.function(e.Name, e.Params, e.Body)
	case *ast.CallExpression:
		return g.callExpression(e)
	case *ast.MemberExpression:
		return g.memberExpression(e)
	case *ast.AssignmentExpression:
		if err := g.expression(e.Left, precConditional); err != nil {
			return err
		}
		g.write(e.Operator)
		return g.expression(e.Right, precAssign)
	case *ast.BinaryExpression:
		return g.binaryLike(e.Operator, e.Left, e.Right)
	case *ast.LogicalExpression:
		return g.binaryLike(e.Operator, e.Left, e.Right)
	case *ast.UnaryExpression:
		return g.unaryExpression(e)
	case *ast.UpdateExpression:
		return g.updateExpression(e)
	case *ast.ConditionalExpression:
		if err := g.expression(e.Test, precLogicalOr); err != nil {
			return err
		}
		g.write("?")
		if err := g.expression(e.Consequent, precAssign); err != nil {
			return err
		}
		g.write(":")
		return g.expression(e.Alternate, precAssign)
	case *ast.SequenceExpression:
		for i, el := range e.Expressions {
			if i > 0 {
				g.write(",")
				g.sp()
			}
			if err := g.expression(el, precAssign); err != nil {
				return err
			}
		}
	default:
		return &obferrors.GenerateError{Message: fmt.Sprintf("unsupported expression node %T", n)}
	}
	return nil
}

func (g *generatorState) binaryLike(op string, left, right ast.Node) error {
	prec := binOpPrec[op]
	if err := g.expression(left, prec); err != nil {
		return err
	}
	g.sp()
	g.write(op)
	g.sp()
	return g.expression(right, prec+1)
}

func (g *generatorState) unaryExpression(e *ast.UnaryExpression) error {
	if e.Operator == "new" {
		g.write("new ")
		// Arguments for `new` are attached to the enclosing CallExpression,
		// not this node; print the callee alone.
		return g.expression(e.Argument, precCall)
	}
	g.write(e.Operator)
	if isWordOperator(e.Operator) {
		g.write(" ")
	}
	return g.expression(e.Argument, precUnary)
}

func isWordOperator(op string) bool {
	switch op {
	case "typeof", "void", "delete", "new":
		return true
	default:
		return false
	}
}

func (g *generatorState) updateExpression(e *ast.UpdateExpression) error {
	if e.Prefix {
		g.write(e.Operator)
		return g.expression(e.Argument, precUnary)
	}
	if err := g.expression(e.Argument, precPostfix); err != nil {
		return err
	}
	g.write(e.Operator)
	return nil
}

func (g *generatorState) callExpression(e *ast.CallExpression) error {
	if u, ok := e.Callee.(*ast.UnaryExpression); ok && u.Operator == "new" {
		if err := g.unaryExpression(u); err != nil {
			return err
		}
	} else if err := g.expression(e.Callee, precCall); err != nil {
		return err
	}
	g.write("(")
	for i, arg := range e.Arguments {
		if i > 0 {
			g.write(",")
			g.sp()
		}
		if err := g.expression(arg, precAssign); err != nil {
			return err
		}
	}
	g.write(")")
	return nil
}

func (g *generatorState) memberExpression(e *ast.MemberExpression) error {
	if err := g.expression(e.Object, precCall); err != nil {
		return err
	}
	if e.Computed {
		g.write("[")
		if err := g.expression(e.Property, precSequence); err != nil {
			return err
		}
		g.write("]")
		return nil
	}
	g.write(".")
	id, ok := e.Property.(*ast.Identifier)
	if !ok {
		return &obferrors.GenerateError{Message: fmt.Sprintf("unsupported non-computed member property %T", e.Property)}
	}
	g.write(id.Name)
	return nil
}

func (g *generatorState) arrayExpression(e *ast.ArrayExpression) error {
	g.write("[")
	for i, el := range e.Elements {
		if i > 0 {
			g.write(",")
			g.sp()
		}
		if el == nil {
			continue // elision
		}
		if err := g.expression(el, precAssign); err != nil {
			return err
		}
	}
	g.write("]")
	return nil
}

func (g *generatorState) objectExpression(e *ast.ObjectExpression) error {
	g.write("{")
	g.indent++
	for i, prop := range e.Properties {
		if i > 0 {
			g.write(",")
		}
		g.nl()
		if err := g.property(prop); err != nil {
			return err
		}
	}
	g.indent--
	if len(e.Properties) > 0 {
		g.nl()
	}
	g.write("}")
	return nil
}

func (g *generatorState) property(p *ast.Property) error {
	if p.Computed {
		g.write("[")
		if err := g.expression(p.Key, precAssign); err != nil {
			return err
		}
		g.write("]")
	} else {
		switch k := p.Key.(type) {
		case *ast.Identifier:
			g.write(k.Name)
		case *ast.StringLiteral:
			g.write(quoteString(k.Value))
		default:
			return &obferrors.GenerateError{Message: fmt.Sprintf("unsupported property key %T", p.Key)}
		}
	}
	g.write(":")
	g.sp()
	return g.expression(p.Value, precAssign)
}

// quoteString renders a string literal's value back to double-quoted
// ECMAScript source text, re-escaping backslashes, quotes, and control
// characters the lexer would otherwise choke on.
func quoteString(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatNumber prefers the original raw text (preserving hex literals and
// formatting a human wrote) and falls back to Go's shortest round-trip
// representation for synthesized literals that carry no raw text.
func formatNumber(v float64, raw string) string {
	if raw != "" {
		return raw
	}
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
