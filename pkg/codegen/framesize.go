package codegen

import (
	"fmt"

	"github.com/nlsfnr/timber/pkg/ast"
)

// FrameSize computes the number of virtual-stack slots a node needs
// simultaneously live, relative to its entry point. The result is the
// compile-time constant baked into the IncrTOS/DecrTOS pair bracketing a
// compiled function body.
//
// The analysis is purely structural: it needs node shape only, never
// resolved names. Nested blocks and loops inside a block contribute the
// maximum rather than the sum of their needs, because their slots are dead
// once the construct exits and the resolver's depth-derived numbering lets
// a sibling construct reuse them.
func FrameSize(node ast.Node) int {
	switch n := node.(type) {
	case *ast.Block:
		static := 0
		nested := 0
		for _, child := range n.Stmts {
			switch child.(type) {
			case *ast.Block, *ast.While:
				if size := FrameSize(child); size > nested {
					nested = size
				}
			default:
				static += FrameSize(child)
			}
		}
		return static + nested
	case *ast.While:
		return FrameSize(n.Guard) + FrameSize(n.Body)
	case *ast.VarDecl:
		return 1
	case *ast.FnDef:
		return len(n.Params) + FrameSize(n.Body)
	case *ast.Assign, *ast.ExprStmt:
		return 0
	case *ast.IntLit, *ast.VarRef, *ast.Call:
		return 0
	default:
		panic(fmt.Sprintf("codegen: frame size of unhandled node %T", node))
	}
}
