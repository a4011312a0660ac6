package transformer

import (
	"fmt"
	mrand "math/rand"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// deadCodeInjector splices dead `if (false) { ... }` branches between the
// existing statements of a Program or BlockStatement body at a configured
// rate, grounded on the teacher's DeadCodeInserterVisitor.injectIntoStmtList
// / injectIntoRootStmts (dead_code_inserter.go:147-186, 324-359): insert
// before the first statement, then at each gap between statements, never
// after the last one. Splicing into the list (rather than wrapping the
// visited statement inside a replacement that contains it) is deliberate:
// the traversal engine always descends into a replacement's children
// (internal/traversal.Replace), so a self-embedding replacement would hand
// the original statement a second Enter/Leave through its own synthetic
// wrapper — the teacher's processedNodes guard exists for exactly this
// reason. Mutating the owning Program/BlockStatement's Body slice in place
// before the walker descends into it sidesteps the problem entirely: every
// original statement still occupies exactly one slot and is visited once.
//
// That alone isn't sufficient, though: the walker also descends into
// whatever gets spliced in, including each dead branch's own Consequent
// block. At InjectionRate=100 that block would itself roll a guaranteed
// injection, nesting a dead branch inside a dead branch forever. The
// teacher's processedNodes map exists for exactly this case; synthetic
// tracks the same thing for the blocks this injector builds itself, so
// Enter skips injectInto on them instead of recursing into its own junk.
type deadCodeInjector struct {
	enabled   bool
	rate      int // 0-100
	rng       *mrand.Rand
	counter   int
	synthetic map[*ast.BlockStatement]bool
}

// NewDeadCodeInjector returns the DeadCodeInjection transformer.
func NewDeadCodeInjector(cfg *config.Config, rng *mrand.Rand) NodeTransformer {
	return &deadCodeInjector{
		enabled:   cfg.Obfuscation.DeadCode.Enabled,
		rate:      cfg.Obfuscation.DeadCode.InjectionRate,
		rng:       rng,
		synthetic: make(map[*ast.BlockStatement]bool),
	}
}

func (*deadCodeInjector) Name() Name           { return DeadCodeInjectionName }
func (*deadCodeInjector) Dependencies() []Name { return []Name{Parentification} }

func (d *deadCodeInjector) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.DeadCodeInjection || !d.enabled {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Enter: func(n ast.Node, parent ast.Node) visitor.Result {
			switch node := n.(type) {
			case *ast.Program:
				d.injectInto(&node.Body)
			case *ast.BlockStatement:
				if !d.synthetic[node] {
					d.injectInto(&node.Body)
				}
			}
			return visitor.SameResult()
		},
	}, true
}

// injectInto splices dead branches into *body in place: a chance to
// inject before the first statement, then a chance at every gap between
// statements, never after the last one (mirrors the teacher's
// injectIntoStmtList/injectIntoRootStmts ordering exactly).
func (d *deadCodeInjector) injectInto(body *[]ast.Node) {
	stmts := *body
	if len(stmts) == 0 {
		return
	}
	out := make([]ast.Node, 0, len(stmts)+2)
	if d.roll() {
		out = append(out, d.deadBranch())
	}
	for i, stmt := range stmts {
		out = append(out, stmt)
		if i < len(stmts)-1 && d.roll() {
			out = append(out, d.deadBranch())
		}
	}
	*body = out
}

// roll reports whether one injection opportunity fires, per InjectionRate.
func (d *deadCodeInjector) roll() bool {
	return d.rng.Intn(100) < d.rate
}

func (d *deadCodeInjector) deadBranch() *ast.IfStatement {
	d.counter++
	junkName := fmt.Sprintf("_dc%d", d.counter)
	block := &ast.BlockStatement{Body: []ast.Node{
		&ast.VariableDeclaration{
			Kind_: "var",
			Declarations: []*ast.VariableDeclarator{{
				Name: &ast.Identifier{Name: junkName},
				Init: &ast.NumericLiteral{Value: float64(d.rng.Intn(1 << 20))},
			}},
		},
	}}
	d.synthetic[block] = true
	return &ast.IfStatement{
		Test:       &ast.BooleanLiteral{Value: false},
		Consequent: block,
	}
}

func (*deadCodeInjector) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (*deadCodeInjector) Finalize(stage.NodeStage, *ast.Program) error { return nil }
