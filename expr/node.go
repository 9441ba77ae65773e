// Package expr implements the bound expression IR (spec.md §3
// "Expression IR"): literal, parameter, variable, property, function
// application, subquery, and path-property nodes, each carrying a
// resolved LogicalType and a unique name, plus the Visitor/Rewriter
// traversal machinery.
//
// Grounded on _examples/SnellerInc-sneller/expr/node.go's Visitor/
// Rewriter/Walk shape, rewritten from scratch against this module's own
// node kinds (Sneller's own node set is a SQL/PartiQL AST and does not
// carry over; see DESIGN.md).
package expr

import (
	"fmt"

	"github.com/nectardb/nectar/types"
)

// Node is the interface implemented by every expression in the bound IR.
type Node interface {
	fmt.Stringer
	// Name is the unique, stable name the factorized schema indexes
	// expressions by (spec.md §4.2 expressionNameToGroupPos).
	Name() string
	// Type returns the expression's resolved logical type.
	Type() types.LogicalType
	// Children returns the direct operand subexpressions, in evaluation
	// order.
	Children() []Node
	// rewriteChildren returns a copy of the node with its children
	// replaced by the results of applying rw to each (used by Rewrite).
	rewriteChildren(rw Rewriter) Node
}

// Visitor is invoked for each node encountered by Walk. If the returned
// visitor w is non-nil, Walk visits each child with w, followed by a call
// to w.Visit(nil) (mirrors _examples/SnellerInc-sneller/expr/node.go).
type Visitor interface {
	Visit(Node) Visitor
}

// Walk traverses an expression tree in depth-first order.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	w := v.Visit(n)
	if w == nil {
		return
	}
	for _, c := range n.Children() {
		Walk(w, c)
	}
	w.Visit(nil)
}

// Rewriter rewrites nodes in depth-first order.
type Rewriter interface {
	// Rewrite is applied to a node after its children have already been
	// rewritten.
	Rewrite(Node) Node
	// Walk returns the Rewriter to use for n's children, or nil to skip
	// rewriting into them.
	Walk(Node) Rewriter
}

// Rewrite recursively applies r to n in depth-first order, mirroring
// _examples/SnellerInc-sneller/expr/node.go's Rewrite.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	if rc := r.Walk(n); rc != nil {
		n = n.rewriteChildren(rc)
	}
	return r.Rewrite(n)
}

// Equal reports structural equality of two expression trees by name and
// string form; sufficient for the planner's "has this expression already
// been computed" dedup (spec.md §4.3).
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name() && a.String() == b.String()
}
