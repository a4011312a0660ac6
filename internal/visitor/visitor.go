// Package visitor defines the enter/leave callback contract transformers
// implement and the traversal engine consumes. It is deliberately tiny: a
// four-way tagged result (same, replace, skip, abort) and a pair of
// optional callbacks, mirroring the teacher's NodeReplacer interface but
// generalized to the fused, multi-transformer batches the scheduler builds.
package visitor

import "github.com/whit3rabbit/jsmixer/internal/ast"

// ResultKind tags the four possible outcomes of an enter or leave callback.
type ResultKind int

const (
	// Same means the node is unchanged; the traversal proceeds as if the
	// callback had not run.
	Same ResultKind = iota
	// Replace means Node holds the node that should take N's place.
	Replace
	// Skip means do not descend into N's children (only meaningful as an
	// Enter result; ignored if returned from Leave).
	Skip
	// Abort means terminate the whole traversal immediately.
	Abort
)

// Result is the return value of an enter or leave callback.
type Result struct {
	Kind ResultKind
	Node ast.Node // only meaningful when Kind == Replace
}

// SameResult is the zero-cost "nothing changed" result.
func SameResult() Result { return Result{Kind: Same} }

// ReplaceWith builds a Replace result.
func ReplaceWith(n ast.Node) Result { return Result{Kind: Replace, Node: n} }

// SkipSubtree builds a Skip result.
func SkipSubtree() Result { return Result{Kind: Skip} }

// AbortTraversal builds an Abort result.
func AbortTraversal() Result { return Result{Kind: Abort} }

// Callback observes or rewrites a node during traversal. parent is the
// non-owning ancestor at the time of the call; it must not be retained
// past the call returns.
type Callback func(n ast.Node, parent ast.Node) Result

// Visitor is a pair of optional callbacks. A nil callback is equivalent to
// one that always returns Same.
type Visitor struct {
	Enter Callback
	Leave Callback
}

// call invokes cb if non-nil, defaulting to Same.
func call(cb Callback, n ast.Node, parent ast.Node) Result {
	if cb == nil {
		return SameResult()
	}
	return cb(n, parent)
}

// CallEnter and CallLeave let the traversal engine treat a nil callback
// uniformly with a present one.
func (v Visitor) CallEnter(n ast.Node, parent ast.Node) Result { return call(v.Enter, n, parent) }
func (v Visitor) CallLeave(n ast.Node, parent ast.Node) Result { return call(v.Leave, n, parent) }

// Fuse combines a batch's visitors, in the given order, into a single
// Visitor per the fusion rule in the specification: each direction's
// callbacks run in order, threading the node through (a valid replacement
// becomes the next callback's input; an invalid one is ignored), and the
// ignored flag is checked once at the top — if set, the fused callback
// returns Skip without running any component callback.
func Fuse(visitors []Visitor) Visitor {
	fuseDirection := func(get func(Visitor) Callback) Callback {
		callbacks := make([]Callback, 0, len(visitors))
		for _, v := range visitors {
			if cb := get(v); cb != nil {
				callbacks = append(callbacks, cb)
			}
		}
		if len(callbacks) == 0 {
			return nil
		}
		return func(n ast.Node, parent ast.Node) Result {
			if ast.IsIgnored(n) {
				return SkipSubtree()
			}
			current := n
			for _, cb := range callbacks {
				res := cb(current, parent)
				switch res.Kind {
				case Replace:
					if res.Node != nil {
						current = res.Node
					}
				case Skip, Abort:
					return res
				}
			}
			if current != n {
				return ReplaceWith(current)
			}
			return SameResult()
		}
	}
	return Visitor{
		Enter: fuseDirection(func(v Visitor) Callback { return v.Enter }),
		Leave: fuseDirection(func(v Visitor) Callback { return v.Leave }),
	}
}
