// Package transformer defines the transformer interface, the closed name
// enumeration, the process-wide registry of factories, and the scheduler
// that batches a stage's active transformers by dependency level and
// fuses their visitors — the centerpiece the specification allots the
// largest share of the pipeline's budget.
package transformer

import (
	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// Name is a stable identifier for a transformer, drawn from a closed
// catalog. Declaration order in that catalog (see NewDefaultRegistry) is the
// tiebreaker used to order transformers within a batch.
type Name string

const (
	Parentification             Name = "Parentification"
	CommentStripper              Name = "CommentStripper"
	DeadCodeInjectionName         Name = "DeadCodeInjection"
	ControlFlowFlatteningName    Name = "ControlFlowFlattening"
	RenamePropertiesTransformer  Name = "RenamePropertiesTransformer"
	TemplateLiteralConverter     Name = "TemplateLiteralConverter"
	IdentifierRenamer            Name = "IdentifierRenamer"
	StringArrayTransformer       Name = "StringArrayTransformer"
	VarMerger                    Name = "VarMerger"
	ArithmeticObfuscator         Name = "ArithmeticObfuscator"
	HashbangStripper             Name = "HashbangStripper"
	HashbangRestorer             Name = "HashbangRestorer"
)

// NodeTransformer is a transformer that operates during a NodeStage,
// producing a Visitor for the stages it participates in. Instances are
// stateless between obfuscation calls: any per-call state must live in
// collaborators captured at construction (see NewDefaultRegistry's factories).
type NodeTransformer interface {
	Name() Name
	Dependencies() []Name
	// NodeVisitor returns the visitor for stage s and true, or a zero
	// Visitor and false if this transformer does not participate in s.
	NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool)
	// Prepare and Finalize bracket the stage's batches. root is the
	// current Program, letting a transformer that accumulates state
	// during the traversal (e.g. a literal table) splice the result in
	// once, after every batch has run.
	Prepare(s stage.NodeStage, root *ast.Program) error
	Finalize(s stage.NodeStage, root *ast.Program) error
}

// CodeTransformer is a transformer that operates during a CodeStage,
// rewriting the source string directly (no AST, no traversal engine).
type CodeTransformer interface {
	Name() Name
	Dependencies() []Name
	// CodeFunc returns the string-to-string function for stage s and
	// true, or nil and false if this transformer does not participate.
	CodeFunc(s stage.CodeStage) (func(string) (string, error), bool)
	Prepare(s stage.CodeStage) error
	Finalize(s stage.CodeStage) error
}

// ActiveNames flattens a sequence of batches' Names into one slice of
// every transformer that actually ran, in run order, for Prepare/Finalize
// bookkeeping by the driver.
func ActiveNames(batches []NodeBatch) []Name {
	var out []Name
	for _, b := range batches {
		out = append(out, b.Names...)
	}
	return out
}

// NodeFactory and CodeFactory produce a fresh transformer instance. The
// registry calls these on demand, once per obfuscation call per stage
// pass, matching the specification's "instances produced on demand and
// kept only for the duration of one obfuscation".
type NodeFactory func() NodeTransformer
type CodeFactory func() CodeTransformer

// Registry is a process-wide mapping from transformer name to factory.
// Catalog order (the order names were registered in) is preserved and
// used by the scheduler as the within-batch tiebreaker.
type Registry struct {
	nodeOrder     []Name
	nodeFactories map[Name]NodeFactory
	codeOrder     []Name
	codeFactories map[Name]CodeFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodeFactories: make(map[Name]NodeFactory),
		codeFactories: make(map[Name]CodeFactory),
	}
}

// RegisterNode adds a node-stage transformer factory to the catalog.
func (r *Registry) RegisterNode(name Name, f NodeFactory) {
	if _, exists := r.nodeFactories[name]; !exists {
		r.nodeOrder = append(r.nodeOrder, name)
	}
	r.nodeFactories[name] = f
}

// RegisterCode adds a code-stage transformer factory to the catalog.
func (r *Registry) RegisterCode(name Name, f CodeFactory) {
	if _, exists := r.codeFactories[name]; !exists {
		r.codeOrder = append(r.codeOrder, name)
	}
	r.codeFactories[name] = f
}

// NodeCatalogOrder returns the node-transformer names in declaration
// order. The returned slice is a copy; callers may not mutate the
// registry through it.
func (r *Registry) NodeCatalogOrder() []Name {
	out := make([]Name, len(r.nodeOrder))
	copy(out, r.nodeOrder)
	return out
}

// CodeCatalogOrder returns the code-transformer names in declaration
// order.
func (r *Registry) CodeCatalogOrder() []Name {
	out := make([]Name, len(r.codeOrder))
	copy(out, r.codeOrder)
	return out
}

// NewNode instantiates the named node transformer.
func (r *Registry) NewNode(name Name) (NodeTransformer, bool) {
	f, ok := r.nodeFactories[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// NewCode instantiates the named code transformer.
func (r *Registry) NewCode(name Name) (CodeTransformer, bool) {
	f, ok := r.codeFactories[name]
	if !ok {
		return nil, false
	}
	return f(), true
}
