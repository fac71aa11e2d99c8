package codegen

import (
	"testing"

	"github.com/nlsfnr/timber/pkg/ast"
)

func decl(name string) ast.Stmt { return &ast.VarDecl{Name: name} }

func block(stmts ...ast.Stmt) *ast.Block { return &ast.Block{Stmts: stmts} }

func TestFrameSize(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want int
	}{
		{"empty block", block(), 0},
		{"flat decls sum", block(decl("a"), decl("b"), decl("c")), 3},
		{
			"sibling blocks take the max",
			block(
				block(decl("a"), decl("b")),
				block(decl("c")),
			),
			2,
		},
		{
			"statics add to the nested max",
			block(
				decl("a"),
				block(decl("b"), decl("c")),
				block(decl("d")),
			),
			3,
		},
		{
			"while counts guard and body",
			&ast.While{
				Guard: &ast.IntLit{Value: 1},
				Body:  block(decl("a"), decl("b")),
			},
			2,
		},
		{
			"fn counts params plus body",
			&ast.FnDef{
				Name:   "f",
				Params: []string{"x", "y"},
				Body:   block(decl("a")),
			},
			3,
		},
		{"assign is free", &ast.Assign{Name: "x", Value: &ast.IntLit{Value: 1}}, 0},
		{"expr stmt is free", &ast.ExprStmt{X: &ast.VarRef{Name: "x"}}, 0},
		{
			"nested blocks",
			block(
				decl("a"),
				block(
					decl("b"),
					block(decl("c"), decl("d")),
				),
			),
			4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameSize(tt.node); got != tt.want {
				t.Errorf("FrameSize = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestFrameSizeBoundsSlotUse checks the frame size against the slot numbers
// the resolver would actually hand out, walking the same scoping discipline
// the generator uses.
func TestFrameSizeBoundsSlotUse(t *testing.T) {
	prog := block(
		decl("a"),
		block(decl("b"), decl("c")),
		block(decl("d")),
		&ast.While{
			Guard: &ast.IntLit{Value: 0},
			Body:  block(decl("e"), decl("f")),
		},
	)

	maxSlot := 0
	s := NewScope()
	var walk func(stmt ast.Stmt)
	walk = func(stmt ast.Stmt) {
		switch n := stmt.(type) {
		case *ast.Block:
			s.Push()
			for _, child := range n.Stmts {
				walk(child)
			}
			s.Pop()
		case *ast.While:
			s.Push()
			walk(n.Body)
			s.Pop()
		case *ast.VarDecl:
			if err := s.Add(n.Name); err != nil {
				t.Fatalf("Add(%s): %v", n.Name, err)
			}
			if slot, _ := s.Get(n.Name); slot > maxSlot {
				maxSlot = slot
			}
		}
	}
	s.Push()
	walk(prog)
	s.Pop()

	if size := FrameSize(prog); maxSlot > size {
		t.Errorf("max slot %d exceeds frame size %d", maxSlot, size)
	}
}
