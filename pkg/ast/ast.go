package ast

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for Timber
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	node() // marker method
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Block is a brace-delimited sequence of statements with its own scope.
type Block struct {
	Stmts []Stmt
}

func (n *Block) node() {}
func (n *Block) stmt() {}

// VarDecl declares a variable in the enclosing block, optionally with an
// initializer. The name is visible to subsequent statements of the block.
type VarDecl struct {
	Name string
	Init Expr // may be nil
}

func (n *VarDecl) node() {}
func (n *VarDecl) stmt() {}

// Assign stores the value of an expression into a named variable.
type Assign struct {
	Name  string
	Value Expr
}

func (n *Assign) node() {}
func (n *Assign) stmt() {}

// While repeats Body as long as Guard evaluates to a non-zero value.
// The guard is evaluated before the first iteration.
type While struct {
	Guard Expr
	Body  Stmt
}

func (n *While) node() {}
func (n *While) stmt() {}

// FnDef defines a named function. The body must leave its result via a
// return(...) call.
type FnDef struct {
	Name   string
	Params []string
	Body   Stmt
}

func (n *FnDef) node() {}
func (n *FnDef) stmt() {}

// ExprStmt evaluates an expression for its effect and discards the result.
type ExprStmt struct {
	X Expr
}

func (n *ExprStmt) node() {}
func (n *ExprStmt) stmt() {}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

func (n *IntLit) node() {}
func (n *IntLit) expr() {}

// VarRef references a variable by name.
type VarRef struct {
	Name string
}

func (n *VarRef) node() {}
func (n *VarRef) expr() {}

// Call invokes a named function or intrinsic with argument expressions.
// Infix operators are desugared to calls of the matching intrinsic.
type Call struct {
	Name string
	Args []Expr
}

func (n *Call) node() {}
func (n *Call) expr() {}
