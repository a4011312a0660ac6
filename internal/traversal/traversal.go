// Package traversal implements the staged, replacement-capable depth-first
// walk described by the pipeline's data model: pre-order enter, post-order
// leave, in-place replacement, ignored-subtree skipping, and early abort.
//
// The walk itself is grounded on two references found in the same way: the
// teacher's internal/transformer/custom_traverser.go ReplaceTraverser.Traverse,
// which recurses via an explicit type switch over concrete node types and
// applies enter/leave with replacement both before and after descent; and
// the ast-walk.go Walk function, which enumerates every node kind's owned
// children in one big switch. This package keeps that shape: one function
// per concrete kind lists its children, and Replace drives enter/leave
// around the recursion.
package traversal

import (
	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// walker carries the visitor and an abort latch through one call to
// Replace. It is not reused across calls (transformers must not retain
// state across traversals, and neither does this type).
type walker struct {
	v       visitor.Visitor
	aborted bool
}

// Replace performs one pre-order-enter / post-order-leave walk of root,
// applying v, and returns the (possibly different) root node. If the
// walk is aborted, the tree as mutated up to that point is returned; the
// caller decides whether a partial result is usable.
func Replace(root ast.Node, v visitor.Visitor) ast.Node {
	w := &walker{v: v}
	return w.walk(root, nil)
}

// walk applies enter/leave to n (with parent as the non-owning ancestor),
// descending into n's children between the two calls, and returns the
// node that should occupy n's slot afterward.
func (w *walker) walk(n ast.Node, parent ast.Node) ast.Node {
	if w.aborted || n == nil {
		return n
	}
	if ast.IsIgnored(n) {
		return n
	}

	cur := n
	switch res := w.v.CallEnter(cur, parent); res.Kind {
	case visitor.Replace:
		if res.Node != nil {
			cur = res.Node
		}
	case visitor.Skip:
		return cur
	case visitor.Abort:
		w.aborted = true
		return cur
	}

	w.descend(cur)
	if w.aborted {
		return cur
	}

	switch res := w.v.CallLeave(cur, parent); res.Kind {
	case visitor.Replace:
		if res.Node != nil {
			cur = res.Node
		}
	case visitor.Abort:
		w.aborted = true
	}

	return cur
}

// walkSlice replaces the elements of ns in place, treating n as their
// parent. Nil elements (array elisions) are left untouched.
func (w *walker) walkSlice(ns []ast.Node, parent ast.Node) {
	for i, child := range ns {
		if w.aborted || child == nil {
			continue
		}
		ns[i] = w.walk(child, parent)
	}
}

// descend visits n's owned children, one case per concrete node kind.
func (w *walker) descend(n ast.Node) {
	switch node := n.(type) {
	case *ast.Program:
		w.walkSlice(node.Body, node)

	case *ast.VariableDeclaration:
		for i, d := range node.Declarations {
			if w.aborted || d == nil {
				continue
			}
			replaced := w.walk(d, node)
			if vd, ok := replaced.(*ast.VariableDeclarator); ok {
				node.Declarations[i] = vd
			}
		}

	case *ast.VariableDeclarator:
		node.Name = w.walk(node.Name, node)
		if node.Init != nil {
			node.Init = w.walk(node.Init, node)
		}

	case *ast.FunctionDeclaration:
		if node.Name != nil {
			if id, ok := w.walk(node.Name, node).(*ast.Identifier); ok {
				node.Name = id
			}
		}
		for i, p := range node.Params {
			if w.aborted {
				break
			}
			if id, ok := w.walk(p, node).(*ast.Identifier); ok {
				node.Params[i] = id
			}
		}
		if node.Body != nil {
			if b, ok := w.walk(node.Body, node).(*ast.BlockStatement); ok {
				node.Body = b
			}
		}

	case *ast.FunctionExpression:
		if node.Name != nil {
			if id, ok := w.walk(node.Name, node).(*ast.Identifier); ok {
				node.Name = id
			}
		}
		for i, p := range node.Params {
			if w.aborted {
				break
			}
			if id, ok := w.walk(p, node).(*ast.Identifier); ok {
				node.Params[i] = id
			}
		}
		if node.Body != nil {
			if b, ok := w.walk(node.Body, node).(*ast.BlockStatement); ok {
				node.Body = b
			}
		}

	case *ast.BlockStatement:
		w.walkSlice(node.Body, node)

	case *ast.ExpressionStatement:
		node.Expression = w.walk(node.Expression, node)

	case *ast.ReturnStatement:
		if node.Argument != nil {
			node.Argument = w.walk(node.Argument, node)
		}

	case *ast.IfStatement:
		node.Test = w.walk(node.Test, node)
		node.Consequent = w.walk(node.Consequent, node)
		if node.Alternate != nil {
			node.Alternate = w.walk(node.Alternate, node)
		}

	case *ast.ForStatement:
		if node.Init != nil {
			node.Init = w.walk(node.Init, node)
		}
		if node.Test != nil {
			node.Test = w.walk(node.Test, node)
		}
		if node.Update != nil {
			node.Update = w.walk(node.Update, node)
		}
		node.Body = w.walk(node.Body, node)

	case *ast.WhileStatement:
		node.Test = w.walk(node.Test, node)
		node.Body = w.walk(node.Body, node)

	case *ast.ArrayExpression:
		w.walkSlice(node.Elements, node)

	case *ast.Property:
		node.Key = w.walk(node.Key, node)
		node.Value = w.walk(node.Value, node)

	case *ast.ObjectExpression:
		for i, p := range node.Properties {
			if w.aborted || p == nil {
				continue
			}
			if pr, ok := w.walk(p, node).(*ast.Property); ok {
				node.Properties[i] = pr
			}
		}

	case *ast.CallExpression:
		node.Callee = w.walk(node.Callee, node)
		w.walkSlice(node.Arguments, node)

	case *ast.MemberExpression:
		node.Object = w.walk(node.Object, node)
		node.Property = w.walk(node.Property, node)

	case *ast.AssignmentExpression:
		node.Left = w.walk(node.Left, node)
		node.Right = w.walk(node.Right, node)

	case *ast.BinaryExpression:
		node.Left = w.walk(node.Left, node)
		node.Right = w.walk(node.Right, node)

	case *ast.LogicalExpression:
		node.Left = w.walk(node.Left, node)
		node.Right = w.walk(node.Right, node)

	case *ast.UnaryExpression:
		node.Argument = w.walk(node.Argument, node)

	case *ast.UpdateExpression:
		node.Argument = w.walk(node.Argument, node)

	case *ast.ConditionalExpression:
		node.Test = w.walk(node.Test, node)
		node.Consequent = w.walk(node.Consequent, node)
		node.Alternate = w.walk(node.Alternate, node)

	case *ast.SequenceExpression:
		w.walkSlice(node.Expressions, node)

	// Leaves: Identifier, StringLiteral, NumericLiteral, BooleanLiteral,
	// NullLiteral, BreakStatement, ContinueStatement, Hashbang carry no
	// child nodes.
	case *ast.Identifier, *ast.StringLiteral, *ast.NumericLiteral,
		*ast.BooleanLiteral, *ast.NullLiteral, *ast.BreakStatement,
		*ast.ContinueStatement:
		// nothing to descend into
	}
}
