package parser

import (
	"strconv"
	"strings"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/obferrors"
)

// Options mirrors the fixed parse configuration spec.md §4.6 requires of
// the parser façade. Every field here is accepted for interface
// compatibility; AllowImportExport and AllowTopLevelReturn describe
// grammar this façade's scoped-down subset (SPEC_FULL.md §3) does not
// reject rather than features it actively parses — import/export
// declarations have no corresponding ast.Node kind, and a ReturnStatement
// is syntactically legal anywhere a statement is, so top-level return was
// never special-cased to begin with.
type Options struct {
	AllowHashbang     bool
	AllowImportExport bool
	AllowTopLevelReturn bool
	RetainLocations   bool
}

// DefaultOptions matches the options the stage driver always parses with.
func DefaultOptions() Options {
	return Options{AllowHashbang: true, AllowImportExport: true, AllowTopLevelReturn: true, RetainLocations: true}
}

// Parse lexes and parses src into a Program. Any lexical or syntax error
// is returned as an *obferrors.ParseError with the offending position.
func Parse(src string, opts Options) (*ast.Program, error) {
	p := &parser{lx: newLexer(src), opts: opts}
	if err := p.prime(); err != nil {
		return nil, err
	}

	prog := &ast.Program{}
	for p.cur.kind != tokEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
	}
	if len(p.trailing) > 0 {
		prog.Comments = append(prog.Comments, p.trailing...)
	}
	prog.Range = ast.Range{Start: 0, End: len(src)}
	return prog, nil
}

// parser is a single-use recursive-descent parser with one token of
// lookahead (cur) plus the raw ability to peek a second (via save/restore
// on the underlying lexer is avoided; instead the grammar here never needs
// more than one token of lookahead because statement keywords are
// unambiguous prefixes).
type parser struct {
	lx             *lexer
	opts           Options
	cur            token
	pendingLeading []*ast.Comment // comments scanned immediately before cur, awaiting attachLeading
	trailing       []*ast.Comment // comments seen after the last statement, with nothing left to attach to
}

func (p *parser) prime() error {
	return p.advance()
}

func (p *parser) advance() error {
	t, err := p.lx.next()
	if err != nil {
		le := err.(*lexError)
		return &obferrors.ParseError{Message: le.Message, Line: le.Line, Col: le.Col}
	}
	comments := p.lx.pending
	p.lx.pending = nil
	p.cur = t
	if t.kind == tokEOF {
		p.trailing = append(p.trailing, comments...)
	} else if len(comments) > 0 {
		p.pendingLeading = comments
	}
	return nil
}

func (p *parser) attachLeading(n ast.Node) {
	if len(p.pendingLeading) == 0 {
		return
	}
	n.Base().Comments = append(n.Base().Comments, p.pendingLeading...)
	p.pendingLeading = nil
}

func (p *parser) errf(msg string) error {
	return &obferrors.ParseError{Message: msg, Line: p.cur.line, Col: p.cur.col}
}

func (p *parser) isPunct(s string) bool {
	return p.cur.kind == tokPunct && p.cur.text == s
}

func (p *parser) isKeyword(s string) bool {
	return p.cur.kind == tokKeyword && p.cur.text == s
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errf("expected '" + s + "'")
	}
	return p.advance()
}

// consumeSemicolon implements automatic semicolon insertion loosely: a
// present ';' is consumed; its absence is always tolerated, whatever token
// follows and whether or not it starts a new line, matching how real JS
// source this pipeline
// re-parses is typically already formatted by its own generator (which
// always emits explicit semicolons) or by upstream tooling.
func (p *parser) consumeSemicolon() error {
	if p.isPunct(";") {
		return p.advance()
	}
	return nil
}

func (p *parser) parseIdentifier() (*ast.Identifier, error) {
	if p.cur.kind != tokIdent {
		return nil, p.errf("expected identifier, got '" + p.cur.text + "'")
	}
	id := &ast.Identifier{Name: p.cur.text, Base: ast.Base{Range: ast.Range{Start: p.cur.start, End: p.cur.end}}}
	p.attachLeading(id)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return id, nil
}

// --- Statements ---

func (p *parser) parseStatement() (ast.Node, error) {
	switch {
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isKeyword("var"):
		return p.parseVarDeclStatement()
	case p.isKeyword("function"):
		return p.parseFunctionDeclaration()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("break"):
		return p.parseBreakContinue(true)
	case p.isKeyword("continue"):
		return p.parseBreakContinue(false)
	case p.isPunct(";"):
		start := p.cur.start
		if err := p.advance(); err != nil {
			return nil, err
		}
		_ = start
		return nil, nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseBlock() (*ast.BlockStatement, error) {
	start := p.cur.start
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	block := &ast.BlockStatement{Base: ast.Base{Range: ast.Range{Start: start}}}
	for !p.isPunct("}") && p.cur.kind != tokEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
	}
	block.Range.End = p.cur.end
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseVarDeclStatement() (ast.Node, error) {
	decl, err := p.parseVarDecl()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseVarDecl() (*ast.VariableDeclaration, error) {
	start := p.cur.start
	decl := &ast.VariableDeclaration{Kind_: "var", Base: ast.Base{Range: ast.Range{Start: start}}}
	p.attachLeading(decl)
	if err := p.advance(); err != nil { // consume 'var'
		return nil, err
	}
	for {
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		d := &ast.VariableDeclarator{Name: name, Base: name.Base}
		if p.isPunct("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			init, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			d.Init = init
		}
		decl.Declarations = append(decl.Declarations, d)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	decl.Range.End = p.cur.start
	return decl, nil
}

func (p *parser) parseFunctionDeclaration() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil { // consume 'function'
		return nil, err
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	params, body, err := p.parseParamsAndBody()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Name: name, Params: params, Body: body,
		Base: ast.Base{Range: ast.Range{Start: start, End: body.Range.End}},
	}, nil
}

func (p *parser) parseParamsAndBody() ([]*ast.Identifier, *ast.BlockStatement, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, nil, err
	}
	var params []*ast.Identifier
	for !p.isPunct(")") {
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, nil, err
		}
		params = append(params, id)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return params, body, nil
}

func (p *parser) parseIf() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	cons, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Test: test, Consequent: cons, Base: ast.Base{Range: ast.Range{Start: start}}}
	if p.isKeyword("else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		alt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alt
	}
	return stmt, nil
}

func (p *parser) parseFor() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	stmt := &ast.ForStatement{Base: ast.Base{Range: ast.Range{Start: start}}}
	if !p.isPunct(";") {
		if p.isKeyword("var") {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			stmt.Init = decl
		} else {
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			stmt.Init = init
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	if !p.isPunct(";") {
		test, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Test = test
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	if !p.isPunct(")") {
		update, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *parser) parseWhile() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Test: test, Body: body, Base: ast.Base{Range: ast.Range{Start: start}}}, nil
}

func (p *parser) parseReturn() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil {
		return nil, err
	}
	stmt := &ast.ReturnStatement{Base: ast.Base{Range: ast.Range{Start: start}}}
	if !p.isPunct(";") && !p.isPunct("}") && p.cur.kind != tokEOF {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Argument = arg
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseBreakContinue(isBreak bool) (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil {
		return nil, err
	}
	label := ""
	if p.cur.kind == tokIdent {
		label = p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	if isBreak {
		return &ast.BreakStatement{Label: label, Base: ast.Base{Range: ast.Range{Start: start}}}, nil
	}
	return &ast.ContinueStatement{Label: label, Base: ast.Base{Range: ast.Range{Start: start}}}, nil
}

func (p *parser) parseExpressionStatement() (ast.Node, error) {
	start := p.cur.start
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expression: expr, Base: ast.Base{Range: ast.Range{Start: start, End: p.cur.start}}}, nil
}

// --- Expressions ---

// parseExpression parses the comma (sequence) operator, the lowest
// precedence production.
func (p *parser) parseExpression() (ast.Node, error) {
	first, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if !p.isPunct(",") {
		return first, nil
	}
	seq := &ast.SequenceExpression{Expressions: []ast.Node{first}, Base: first.Base()}
	for p.isPunct(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		seq.Expressions = append(seq.Expressions, next)
	}
	return seq, nil
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "**=": true, "<<=": true, ">>=": true,
}

func (p *parser) parseAssignment() (ast.Node, error) {
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokPunct && assignOps[p.cur.text] {
		op := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{Operator: op, Left: left, Right: right, Base: left.Base()}, nil
	}
	return left, nil
}

func (p *parser) parseConditional() (ast.Node, error) {
	test, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return test, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	cons, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	alt, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt, Base: test.Base()}, nil
}

// binaryPrec ranks binary and logical operators from loosest (1) to
// tightest; ** is right-associative and handled separately.
var binaryPrec = map[string]int{
	"||": 1, "??": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6, "===": 6, "!==": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7, "instanceof": 7, "in": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

var logicalOps = map[string]bool{"||": true, "&&": true, "??": true}

func (p *parser) currentBinaryOp() (string, bool) {
	if p.cur.kind == tokPunct {
		if _, ok := binaryPrec[p.cur.text]; ok {
			return p.cur.text, true
		}
	}
	if p.cur.kind == tokKeyword && (p.cur.text == "instanceof" || p.cur.text == "in") {
		return p.cur.text, true
	}
	return "", false
}

// parseBinary implements precedence climbing: minPrec is the lowest
// precedence this call is willing to consume. ** is right-associative,
// every other operator here is left-associative.
func (p *parser) parseBinary(minPrec int) (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.currentBinaryOp()
		if !ok {
			return left, nil
		}
		prec := binaryPrec[op]
		if prec < minPrec {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		nextMin := prec + 1
		if op == "**" {
			nextMin = prec // right-associative
		}
		right, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}
		if logicalOps[op] {
			left = &ast.LogicalExpression{Operator: op, Left: left, Right: right, Base: left.Base()}
		} else {
			left = &ast.BinaryExpression{Operator: op, Left: left, Right: right, Base: left.Base()}
		}
	}
}

var unaryOps = map[string]bool{"!": true, "~": true, "+": true, "-": true}
var unaryKeywords = map[string]bool{"typeof": true, "void": true, "delete": true}

func (p *parser) parseUnary() (ast.Node, error) {
	if p.cur.kind == tokPunct && unaryOps[p.cur.text] {
		op := p.cur.text
		start := p.cur.start
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: op, Prefix: true, Argument: arg, Base: ast.Base{Range: ast.Range{Start: start}}}, nil
	}
	if p.cur.kind == tokKeyword && unaryKeywords[p.cur.text] {
		op := p.cur.text
		start := p.cur.start
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: op, Prefix: true, Argument: arg, Base: ast.Base{Range: ast.Range{Start: start}}}, nil
	}
	if p.isPunct("++") || p.isPunct("--") {
		op := p.cur.text
		start := p.cur.start
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Operator: op, Prefix: true, Argument: arg, Base: ast.Base{Range: ast.Range{Start: start}}}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parseCallOrMember()
	if err != nil {
		return nil, err
	}
	if p.isPunct("++") || p.isPunct("--") {
		op := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Operator: op, Prefix: false, Argument: expr, Base: expr.Base()}, nil
	}
	return expr, nil
}

func (p *parser) parseCallOrMember() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: prop, Computed: false, Base: expr.Base()}
		case p.isPunct("["):
			if err := p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: prop, Computed: true, Base: expr.Base()}
		case p.isPunct("("):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{Callee: expr, Arguments: args, Base: expr.Base()}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArguments() ([]ast.Node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Node
	for !p.isPunct(")") {
		arg, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Node, error) {
	switch {
	case p.cur.kind == tokIdent:
		return p.parseIdentifier()
	case p.cur.kind == tokNumber:
		return p.parseNumber()
	case p.cur.kind == tokString:
		return p.parseString()
	case p.isKeyword("true") || p.isKeyword("false"):
		return p.parseBool()
	case p.isKeyword("null"):
		return p.parseNull()
	case p.isKeyword("function"):
		return p.parseFunctionExpression()
	case p.isKeyword("new"):
		return p.parseNew()
	case p.isPunct("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return expr, nil
	case p.isPunct("["):
		return p.parseArrayLiteral()
	case p.isPunct("{"):
		return p.parseObjectLiteral()
	default:
		return nil, p.errf("unexpected token '" + p.cur.text + "'")
	}
}

func (p *parser) parseNumber() (ast.Node, error) {
	raw := p.cur.text
	start, end := p.cur.start, p.cur.end
	v, err := parseNumericLiteral(raw)
	if err != nil {
		return nil, p.errf("invalid numeric literal '" + raw + "'")
	}
	n := &ast.NumericLiteral{Value: v, Raw: raw, Base: ast.Base{Range: ast.Range{Start: start, End: end}}}
	p.attachLeading(n)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return n, nil
}

func parseNumericLiteral(raw string) (float64, error) {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "0x") {
		iv, err := strconv.ParseInt(lower[2:], 16, 64)
		return float64(iv), err
	}
	return strconv.ParseFloat(raw, 64)
}

func (p *parser) parseString() (ast.Node, error) {
	s := &ast.StringLiteral{Value: p.cur.text, Raw: p.cur.raw, Base: ast.Base{Range: ast.Range{Start: p.cur.start, End: p.cur.end}}}
	p.attachLeading(s)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) parseBool() (ast.Node, error) {
	v := p.cur.text == "true"
	b := &ast.BooleanLiteral{Value: v, Base: ast.Base{Range: ast.Range{Start: p.cur.start, End: p.cur.end}}}
	p.attachLeading(b)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *parser) parseNull() (ast.Node, error) {
	n := &ast.NullLiteral{Base: ast.Base{Range: ast.Range{Start: p.cur.start, End: p.cur.end}}}
	p.attachLeading(n)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseFunctionExpression() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil { // consume 'function'
		return nil, err
	}
	var name *ast.Identifier
	if p.cur.kind == tokIdent {
		n, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		name = n
	}
	params, body, err := p.parseParamsAndBody()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpression{
		Name: name, Params: params, Body: body,
		Base: ast.Base{Range: ast.Range{Start: start, End: body.Range.End}},
	}, nil
}

// parseNew parses `new Callee(args)`; a bare `new Callee` with no argument
// list is represented as a CallExpression with no arguments, matching how
// this subset's generator always prints an explicit argument list.
func (p *parser) parseNew() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil {
		return nil, err
	}
	callee, err := p.parseCallOrMemberNoCall()
	if err != nil {
		return nil, err
	}
	var args []ast.Node
	if p.isPunct("(") {
		args, err = p.parseArguments()
		if err != nil {
			return nil, err
		}
	}
	return &ast.CallExpression{
		Callee:    &ast.UnaryExpression{Operator: "new", Prefix: true, Argument: callee, Base: ast.Base{Range: ast.Range{Start: start}}},
		Arguments: args,
	}, nil
}

// parseCallOrMemberNoCall parses member access (`.`/`[]`) without
// consuming a trailing call, so `new a.b.C(x)` attaches `(x)` to the
// whole `new` expression rather than to `C`.
func (p *parser) parseCallOrMemberNoCall() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: prop, Computed: false, Base: expr.Base()}
		case p.isPunct("["):
			if err := p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: prop, Computed: true, Base: expr.Base()}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArrayLiteral() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	arr := &ast.ArrayExpression{Base: ast.Base{Range: ast.Range{Start: start}}}
	for !p.isPunct("]") {
		if p.isPunct(",") {
			arr.Elements = append(arr.Elements, nil) // elision
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		el, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, el)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	arr.Range.End = p.cur.end
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *parser) parseObjectLiteral() (ast.Node, error) {
	start := p.cur.start
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	obj := &ast.ObjectExpression{Base: ast.Base{Range: ast.Range{Start: start}}}
	for !p.isPunct("}") {
		prop, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, prop)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	obj.Range.End = p.cur.end
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *parser) parseProperty() (*ast.Property, error) {
	prop := &ast.Property{}
	if p.isPunct("[") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		key, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		prop.Key = key
		prop.Computed = true
	} else if p.cur.kind == tokString {
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		prop.Key = key
	} else {
		key, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		prop.Key = key
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	prop.Value = value
	prop.Base = prop.Key.Base()
	return prop, nil
}
