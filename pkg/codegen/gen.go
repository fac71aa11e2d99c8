package codegen

import (
	"fmt"

	"github.com/nlsfnr/timber/pkg/ast"
)

// ---------------------------------------------------------------------------
// Code generation: one rule per AST node kind
// ---------------------------------------------------------------------------

// Generator holds the state of one compilation: the scope resolver and the
// synthetic label counter. A fresh Generator per Compile keeps label names
// deterministic and collision-free across independent compilations.
type Generator struct {
	scope   *Scope
	labelID int
}

// Compile translates a top-level statement (normally a block) into a fully
// linked program unit. The top-level statement becomes the function main:
// the entry stub initializes the TOS pointer, calls main, and halts on
// return. A fn main defined inside the top-level block takes over the main
// label, in which case the program starts there instead.
func Compile(stmt ast.Stmt) (*Unit, error) {
	g := &Generator{scope: NewScope()}

	size := int64(FrameSize(stmt))
	body, err := g.genStmt(stmt)
	if err != nil {
		return nil, err
	}
	wrapper := NewUnit().
		Comment("def main {").
		Label("main").
		IncrTOS(size)
	wrapper.Insert(body).
		DecrTOS(size).
		Ret().
		Comment("} def main")

	u := entryStub()
	u.Insert(wrapper)
	u.Halt().InlineComment("barrier between user code and the intrinsics")
	appendIntrinsics(u)
	if err := u.Link(); err != nil {
		return nil, err
	}
	return u, nil
}

// newLabel mints a synthetic label, unique within this compilation. User
// identifiers cannot start with an underscore, so the namespaces are
// disjoint.
func (g *Generator) newLabel() string {
	name := fmt.Sprintf("__%d", g.labelID)
	g.labelID++
	return name
}

// genStmt dispatches on the statement kind. It brackets every statement
// with a scope frame; the declaration rule relies on that frame being the
// innermost one when it splices a binding into the enclosing frame.
func (g *Generator) genStmt(stmt ast.Stmt) (*Unit, error) {
	g.scope.Push()
	defer g.scope.Pop()
	switch n := stmt.(type) {
	case *ast.Block:
		return g.genBlock(n)
	case *ast.ExprStmt:
		u, err := g.genExpr(n.X)
		if err != nil {
			return nil, err
		}
		// Every expression leaves exactly one value; a bare
		// expression statement discards it.
		return u.Pop(), nil
	case *ast.FnDef:
		return g.genFnDef(n)
	case *ast.While:
		return g.genWhile(n)
	case *ast.VarDecl:
		return g.genVarDecl(n)
	case *ast.Assign:
		return g.genAssign(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled statement %T", stmt))
	}
}

func (g *Generator) genBlock(block *ast.Block) (*Unit, error) {
	g.scope.Push()
	defer g.scope.Pop()
	u := NewUnit()
	for _, child := range block.Stmts {
		cu, err := g.genStmt(child)
		if err != nil {
			return nil, err
		}
		u.Insert(cu)
	}
	return u, nil
}

// genVarDecl binds the declared name into the enclosing frame. The
// statement frame pushed by genStmt is popped, the name is spliced into the
// frame beneath (so subsequent sibling statements see it), and a fresh
// frame is pushed to keep the dispatcher's push/pop balanced.
func (g *Generator) genVarDecl(decl *ast.VarDecl) (*Unit, error) {
	u := NewUnit()
	if decl.Init != nil {
		init, err := g.genExpr(decl.Init)
		if err != nil {
			return nil, err
		}
		u.Insert(init)
	}
	g.scope.Pop()
	if err := g.scope.Add(decl.Name); err != nil {
		g.scope.Push()
		return nil, err
	}
	g.scope.Push()
	if decl.Init != nil {
		slot, err := g.scope.Get(decl.Name)
		if err != nil {
			return nil, err
		}
		u.StoreTOS(int64(slot)).InlineComment(decl.Name)
	}
	return u, nil
}

func (g *Generator) genAssign(assign *ast.Assign) (*Unit, error) {
	value, err := g.genExpr(assign.Value)
	if err != nil {
		return nil, err
	}
	slot, err := g.scope.Get(assign.Name)
	if err != nil {
		return nil, err
	}
	return NewUnit().
		Insert(value).
		StoreTOS(int64(slot)).
		InlineComment(assign.Name), nil
}

// genWhile lays the loop out body-first: an unconditional jump runs the
// guard before the body ever executes, and each iteration re-enters via
// the guard, keeping the common false exit a single untaken branch.
func (g *Generator) genWhile(loop *ast.While) (*Unit, error) {
	g.scope.Push()
	guard, err := g.genExpr(loop.Guard)
	g.scope.Pop()
	if err != nil {
		return nil, err
	}
	g.scope.Push()
	body, err := g.genStmt(loop.Body)
	g.scope.Pop()
	if err != nil {
		return nil, err
	}
	start := g.newLabel()
	guardL := g.newLabel()
	end := g.newLabel()
	u := NewUnit().
		Comment("while loop {").
		Jmp(guardL).
		Label(start).
		Comment("while body {").
		Insert(body).
		Comment("} while body").
		Comment("while guard {").
		Label(guardL).
		Insert(guard).
		JmpT(start).
		Comment("} while guard").
		Label(end).
		Comment("} while loop")
	return u, nil
}

// genFnDef emits the function inline behind a jump, so a definition is
// harmless in executed statement position. The body is generated under a
// fresh resolver seeded with the parameters: the runtime model has no
// closures, so a reference to an enclosing function's local must fail
// rather than resolve to a foreign frame.
//
// Prologue: the staged arguments are lifted onto the operand stack before
// the frame is allocated, then stored into the first parameter slots of
// the new frame.
func (g *Generator) genFnDef(def *ast.FnDef) (*Unit, error) {
	size := int64(FrameSize(def))

	outer := g.scope
	g.scope = NewScope()
	g.scope.Push()
	err := g.scope.Add(def.Params...)
	if err == nil {
		var body *Unit
		body, err = g.genStmt(def.Body)
		if err == nil {
			skip := g.newLabel()
			u := NewUnit().
				Comment("def " + def.Name + " {").
				Jmp(skip).
				Label(def.Name)
			for i := len(def.Params) - 1; i >= 0; i-- {
				u.LoadTOS(int64(i)).InlineComment("arg " + def.Params[i])
			}
			u.IncrTOS(size)
			for i, param := range def.Params {
				u.StoreTOS(int64(i + 1)).InlineComment(param)
			}
			u.Insert(body).
				DecrTOS(size).
				Rot(). // return address above the result value
				Ret().
				Label(skip).
				Comment("} def " + def.Name)
			g.scope = outer
			return u, nil
		}
	}
	g.scope = outer
	return nil, err
}

// genExpr dispatches on the expression kind. Every rule leaves exactly one
// value on the hardware stack.
func (g *Generator) genExpr(expr ast.Expr) (*Unit, error) {
	switch n := expr.(type) {
	case *ast.IntLit:
		return NewUnit().
			Push(n.Value).
			InlineComment(fmt.Sprintf("int %d", n.Value)), nil
	case *ast.VarRef:
		slot, err := g.scope.Get(n.Name)
		if err != nil {
			return nil, err
		}
		return NewUnit().
			LoadTOS(int64(slot)).
			InlineComment(n.Name), nil
	case *ast.Call:
		return g.genCall(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled expression %T", expr))
	}
}

// genCall evaluates each argument in order and stages it into the callee's
// frame at slot offsets 0..n-1 above the current TOS, then emits the call.
// The target name resolves at link time, so forward references are fine.
func (g *Generator) genCall(call *ast.Call) (*Unit, error) {
	u := NewUnit().Comment("call " + call.Name + " {")
	for i, arg := range call.Args {
		au, err := g.genExpr(arg)
		if err != nil {
			return nil, err
		}
		u.Insert(au).StoreTOS(int64(i)).InlineComment(fmt.Sprintf("arg %d", i))
	}
	u.CallSym(call.Name).
		InlineComment(call.Name).
		Comment("} call " + call.Name)
	return u, nil
}
