package transformer

import (
	"encoding/base64"
	"strconv"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// stringArrayTransformer replaces string literals with calls into a single
// generated decoder function backed by a literal table inserted at the
// start of the program, grounded on the teacher's string_obfuscator.go base64/rot13/xor
// technique switch. The node pass only collects literals and substitutes
// call sites; Finalize splices the literal table and decoder function
// declaration into the program once, after every occurrence in the tree
// has been rewritten, matching the Prepare/Finalize hooks the stage driver
// offers stateful transformers.
type stringArrayTransformer struct {
	enabled   bool
	technique string
	xorKey    string

	arrayName   string
	decoderName string

	index map[string]int
	table []string // encoded (storage) form, in first-seen order
}

// NewStringArrayTransformer returns the always-registered StringArray
// transformer. It produces no visitor, and so is not scheduled, when
// cfg.Obfuscation.Strings.Enabled is false, same as every other
// content-rewriting pass here.
func NewStringArrayTransformer(cfg *config.Config) NodeTransformer {
	return &stringArrayTransformer{
		enabled:     cfg.Obfuscation.Strings.Enabled,
		technique:   cfg.Obfuscation.Strings.Technique,
		xorKey:      cfg.Obfuscation.Strings.XorKey,
		arrayName:   "_sa",
		decoderName: "_sd",
		index:       make(map[string]int),
	}
}

func (*stringArrayTransformer) Name() Name           { return StringArrayTransformer }
func (*stringArrayTransformer) Dependencies() []Name { return nil }

func (t *stringArrayTransformer) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.StringArray || !t.enabled {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Enter: func(n ast.Node, parent ast.Node) visitor.Result {
			lit, ok := n.(*ast.StringLiteral)
			if !ok || isObjectKeyLiteral(lit, parent) {
				return visitor.SameResult()
			}
			idx := t.intern(lit.Value)
			return visitor.ReplaceWith(&ast.CallExpression{
				Base:   lit.Base,
				Callee: &ast.Identifier{Name: t.decoderName},
				Arguments: []ast.Node{
					&ast.NumericLiteral{Value: float64(idx), Raw: strconv.Itoa(idx)},
				},
			})
		},
	}, true
}

// isObjectKeyLiteral reports whether lit names a non-computed property key;
// `{"foo": 1}`'s key must stay a literal, it cannot become a call.
func isObjectKeyLiteral(lit *ast.StringLiteral, parent ast.Node) bool {
	p, ok := parent.(*ast.Property)
	return ok && !p.Computed && p.Key == ast.Node(lit)
}

func (t *stringArrayTransformer) intern(value string) int {
	if idx, ok := t.index[value]; ok {
		return idx
	}
	idx := len(t.table)
	t.index[value] = idx
	t.table = append(t.table, t.encode(value))
	return idx
}

func (t *stringArrayTransformer) encode(value string) string {
	switch t.technique {
	case config.StringTechniqueRot13:
		return base64.StdEncoding.EncodeToString([]byte(rot13(value)))
	case config.StringTechniqueXOR:
		return base64.StdEncoding.EncodeToString(xorBytes([]byte(value), t.xorKey))
	default:
		return base64.StdEncoding.EncodeToString([]byte(value))
	}
}

func rot13(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = 'a' + (c-'a'+13)%26
		case c >= 'A' && c <= 'Z':
			out[i] = 'A' + (c-'A'+13)%26
		default:
			out[i] = c
		}
	}
	return string(out)
}

func xorBytes(data []byte, key string) []byte {
	if key == "" {
		key = "jsmixer"
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// Finalize prepends the literal-table declaration and decoder function to
// root's body once the StringArray stage's traversal has replaced every literal
// with a call site referencing it.
func (t *stringArrayTransformer) Finalize(s stage.NodeStage, root *ast.Program) error {
	if s != stage.StringArray || !t.enabled || len(t.table) == 0 {
		return nil
	}
	elements := make([]ast.Node, len(t.table))
	for i, encoded := range t.table {
		elements[i] = &ast.StringLiteral{Value: encoded, Raw: strconv.Quote(encoded)}
	}
	arrayDecl := &ast.VariableDeclaration{
		Kind_: "var",
		Declarations: []*ast.VariableDeclarator{{
			Name: &ast.Identifier{Name: t.arrayName},
			Init: &ast.ArrayExpression{Elements: elements},
		}},
	}
	root.Body = append([]ast.Node{arrayDecl, t.decoderFunc()}, root.Body...)
	return nil
}

// decoderFunc builds `function _sd(i) { ... }` for the configured
// technique. Every technique starts from atob(_sa[i]); rot13 and xor are
// their own inverse, so the decoder reapplies the same transform the
// encoder used to produce the stored bytes.
func (t *stringArrayTransformer) decoderFunc() *ast.FunctionDeclaration {
	rawDecl := &ast.VariableDeclaration{
		Kind_: "var",
		Declarations: []*ast.VariableDeclarator{{
			Name: &ast.Identifier{Name: "raw"},
			Init: &ast.CallExpression{
				Callee: &ast.Identifier{Name: "atob"},
				Arguments: []ast.Node{&ast.MemberExpression{
					Object:   &ast.Identifier{Name: t.arrayName},
					Property: &ast.Identifier{Name: "i"},
					Computed: true,
				}},
			},
		}},
	}

	var body []ast.Node
	switch t.technique {
	case config.StringTechniqueRot13:
		body = []ast.Node{rawDecl, t.rot13LoopStmt(), &ast.ReturnStatement{Argument: &ast.Identifier{Name: "out"}}}
	case config.StringTechniqueXOR:
		body = []ast.Node{rawDecl, t.xorLoopStmt(), &ast.ReturnStatement{Argument: &ast.Identifier{Name: "out"}}}
	default:
		body = []ast.Node{rawDecl, &ast.ReturnStatement{Argument: &ast.Identifier{Name: "raw"}}}
	}

	return &ast.FunctionDeclaration{
		Name:   &ast.Identifier{Name: t.decoderName},
		Params: []*ast.Identifier{{Name: "i"}},
		Body:   &ast.BlockStatement{Body: body},
	}
}

// charCodeLoopFor returns the shared `var out = ""; for (var j = 0; j <
// raw.length; j++) { var c = raw.charCodeAt(j); ... out += fromCharCode(c);
// }` skeleton, with forBody filling in how c is transformed before being
// appended to out.
func charCodeLoopFor(forBody ...ast.Node) []ast.Node {
	cDecl := &ast.VariableDeclaration{
		Kind_: "var",
		Declarations: []*ast.VariableDeclarator{{
			Name: &ast.Identifier{Name: "c"},
			Init: &ast.CallExpression{
				Callee: &ast.MemberExpression{
					Object:   &ast.Identifier{Name: "raw"},
					Property: &ast.Identifier{Name: "charCodeAt"},
				},
				Arguments: []ast.Node{&ast.Identifier{Name: "j"}},
			},
		}},
	}
	appendOut := &ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
		Operator: "=",
		Left:     &ast.Identifier{Name: "out"},
		Right: &ast.BinaryExpression{
			Operator: "+",
			Left:     &ast.Identifier{Name: "out"},
			Right: &ast.CallExpression{
				Callee: &ast.MemberExpression{
					Object:   &ast.Identifier{Name: "String"},
					Property: &ast.Identifier{Name: "fromCharCode"},
				},
				Arguments: []ast.Node{&ast.Identifier{Name: "c"}},
			},
		},
	}}

	loopBody := []ast.Node{cDecl}
	loopBody = append(loopBody, forBody...)
	loopBody = append(loopBody, appendOut)

	forStmt := &ast.ForStatement{
		Init: &ast.VariableDeclaration{
			Kind_: "var",
			Declarations: []*ast.VariableDeclarator{{
				Name: &ast.Identifier{Name: "j"},
				Init: &ast.NumericLiteral{Value: 0, Raw: "0"},
			}},
		},
		Test: &ast.BinaryExpression{
			Operator: "<",
			Left:     &ast.Identifier{Name: "j"},
			Right: &ast.MemberExpression{
				Object:   &ast.Identifier{Name: "raw"},
				Property: &ast.Identifier{Name: "length"},
			},
		},
		Update: &ast.UpdateExpression{Operator: "++", Argument: &ast.Identifier{Name: "j"}},
		Body:   &ast.BlockStatement{Body: loopBody},
	}

	outDecl := &ast.VariableDeclaration{
		Kind_: "var",
		Declarations: []*ast.VariableDeclarator{{
			Name: &ast.Identifier{Name: "out"},
			Init: &ast.StringLiteral{Value: "", Raw: `""`},
		}},
	}
	return []ast.Node{outDecl, forStmt}
}

// rot13LoopStmt builds the `c = rot13(c)` loop body: shift lowercase and
// uppercase letter ranges by 13, leave everything else untouched.
func (t *stringArrayTransformer) rot13LoopStmt() ast.Node {
	stmts := charCodeLoopFor(rot13ReassignStmt())
	return &ast.BlockStatement{Body: stmts}
}

func rot13ReassignStmt() ast.Node {
	shift := func(baseChar byte) ast.Node {
		return &ast.BinaryExpression{
			Operator: "+",
			Left: &ast.BinaryExpression{
				Operator: "%",
				Left: &ast.BinaryExpression{
					Operator: "+",
					Left: &ast.BinaryExpression{
						Operator: "-",
						Left:     &ast.Identifier{Name: "c"},
						Right:    &ast.NumericLiteral{Value: float64(baseChar), Raw: strconv.Itoa(int(baseChar))},
					},
					Right: &ast.NumericLiteral{Value: 13, Raw: "13"},
				},
				Right: &ast.NumericLiteral{Value: 26, Raw: "26"},
			},
			Right: &ast.NumericLiteral{Value: float64(baseChar), Raw: strconv.Itoa(int(baseChar))},
		}
	}
	lowerAssign := &ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
		Operator: "=", Left: &ast.Identifier{Name: "c"}, Right: shift('a'),
	}}
	upperAssign := &ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
		Operator: "=", Left: &ast.Identifier{Name: "c"}, Right: shift('A'),
	}}
	upperIf := &ast.IfStatement{
		Test:       inRange("c", 'A', 'Z'),
		Consequent: &ast.BlockStatement{Body: []ast.Node{upperAssign}},
	}
	return &ast.IfStatement{
		Test:       inRange("c", 'a', 'z'),
		Consequent: &ast.BlockStatement{Body: []ast.Node{lowerAssign}},
		Alternate:  upperIf,
	}
}

func inRange(ident string, lo, hi byte) ast.Node {
	return &ast.LogicalExpression{
		Operator: "&&",
		Left: &ast.BinaryExpression{
			Operator: ">=",
			Left:     &ast.Identifier{Name: ident},
			Right:    &ast.NumericLiteral{Value: float64(lo), Raw: strconv.Itoa(int(lo))},
		},
		Right: &ast.BinaryExpression{
			Operator: "<=",
			Left:     &ast.Identifier{Name: ident},
			Right:    &ast.NumericLiteral{Value: float64(hi), Raw: strconv.Itoa(int(hi))},
		},
	}
}

// xorLoopStmt builds the `c = c ^ key.charCodeAt(j % key.length)` loop
// body; xor is its own inverse so this undoes the encode-time transform.
func (t *stringArrayTransformer) xorLoopStmt() ast.Node {
	keyLit := &ast.StringLiteral{Value: t.xorKeyOrDefault(), Raw: strconv.Quote(t.xorKeyOrDefault())}
	keyCharCode := &ast.CallExpression{
		Callee: &ast.MemberExpression{
			Object:   keyLit,
			Property: &ast.Identifier{Name: "charCodeAt"},
		},
		Arguments: []ast.Node{&ast.BinaryExpression{
			Operator: "%",
			Left:     &ast.Identifier{Name: "j"},
			Right: &ast.MemberExpression{
				Object:   keyLit,
				Property: &ast.Identifier{Name: "length"},
			},
		}},
	}
	xorAssign := &ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
		Operator: "=",
		Left:     &ast.Identifier{Name: "c"},
		Right: &ast.BinaryExpression{
			Operator: "^",
			Left:     &ast.Identifier{Name: "c"},
			Right:    keyCharCode,
		},
	}}
	stmts := charCodeLoopFor(xorAssign)
	return &ast.BlockStatement{Body: stmts}
}

func (t *stringArrayTransformer) xorKeyOrDefault() string {
	if t.xorKey == "" {
		return "jsmixer"
	}
	return t.xorKey
}

func (*stringArrayTransformer) Prepare(stage.NodeStage, *ast.Program) error { return nil }
