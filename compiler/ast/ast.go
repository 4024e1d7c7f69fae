// Package ast defines the syntax tree the lexer/parser produce and the
// script/model compilers walk.
package ast

import (
	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/simerr"
)

// Node is the common shape every AST node satisfies: a source position
// for diagnostics, nothing else. Unlike a visitor-dispatch tree, this
// tree has exactly two consumers (the script compiler and the model
// compiler) and each does a single direct type-switch walk, so no
// double-dispatch Accept machinery is warranted here.
type Node interface {
	Pos() simerr.Position
}

// Base is embedded by every concrete node to satisfy Node without
// repeating the field and method on each type.
type Base struct {
	Position simerr.Position
}

func (b Base) Pos() simerr.Position { return b.Position }

// At builds a Base anchored at pos, for use in composite literals from
// other packages (e.g. the parser): ast.PinDef{Base: ast.At(pos), ...}.
func At(pos simerr.Position) Base { return Base{Position: pos} }

// Stmt marks a node usable as a block statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr marks a node usable as an expression.
type Expr interface {
	Node
	exprNode()
}

// TopLevel marks a node usable at file scope.
type TopLevel interface {
	Node
	topLevelNode()
}

// File is the root of one parsed source file: a sequence of component
// definitions, instantiations, and connect statements, in declaration
// order. Instantiations and connects may interleave with definitions.
type File struct {
	Base
	Decls []TopLevel
}

// ComponentDef is `define component Ident { member* }`.
type ComponentDef struct {
	Base
	Name    string
	Pins    []*PinDef
	Vars    []*VarMemberDef
	Script  *ScriptDef  // nil if the component has no script block
	Ctor    *CtorDef    // nil if the component has no constructor
	Funcs   []*FuncDef
}

func (*ComponentDef) topLevelNode() {}

// PinDef is a `pin Ident;` member.
type PinDef struct {
	Base
	Name string
}

// VarMemberDef is a component-scoped variable member, distinct from a
// script-local `var` statement: it's visible to the script, constructor,
// and every function of the owning component.
type VarMemberDef struct {
	Base
	Name string
	// Initial is nil when the member has no initializer; it then starts
	// as Null, same as a bare `var x;` script local.
	Initial Expr
}

// ScriptDef is a component's `script block` member.
type ScriptDef struct {
	Base
	Body *Block
}

// CtorDef is a component's `constructor(param_list) block` member.
type CtorDef struct {
	Base
	Parameters []string
	Body       *Block
}

// FuncDef is a named helper function member, callable from the script,
// constructor, or other functions of the same component via Ident
// lookup and a Call expression.
type FuncDef struct {
	Base
	Name       string
	Parameters []string
	Body       *Block
}

// Instantiation is `component Ident = Ident(arg_list);`.
type Instantiation struct {
	Base
	InstanceName string
	DefName      string
	Args         []Expr
}

func (*Instantiation) topLevelNode() {}

// Connect is `connect(accessor, accessor, ...);`.
type Connect struct {
	Base
	Accessors []*Accessor
}

func (*Connect) topLevelNode() {}

// Accessor is `Ident.Ident`: an instance name and one of its pins.
type Accessor struct {
	Base
	InstanceName string
	PinName      string
}

// Block is `{ stmt* }`.
type Block struct {
	Base
	Statements []Stmt
}

// VarDecl is `var Ident (= expr)? ;`, a script-local declaration. Value
// is nil when the statement has no initializer.
type VarDecl struct {
	Base
	Name  string
	Value Expr
}

func (*VarDecl) stmtNode() {}

// Assignment is `Ident = expr;`, rebinding an existing local or
// component variable (never a pin).
type Assignment struct {
	Base
	Name  string
	Value Expr
}

func (*Assignment) stmtNode() {}

// PinAssignment is `Ident <- expr;`, driving one of the owning
// component's own pins.
type PinAssignment struct {
	Base
	PinName string
	Value   Expr
}

func (*PinAssignment) stmtNode() {}

// Sleep is `sleep(expr);`.
type Sleep struct {
	Base
	Duration Expr
}

func (*Sleep) stmtNode() {}

// Trigger is the bare `trigger;` statement.
type Trigger struct {
	Base
}

func (*Trigger) stmtNode() {}

// Dump is `_dump(expr);`.
type Dump struct {
	Base
	Value Expr
}

func (*Dump) stmtNode() {}

// Loop is `loop block`, an unconditional loop broken only by Break.
type Loop struct {
	Base
	Body *Block
}

func (*Loop) stmtNode() {}

// If is `if (expr) block`. The grammar has no else; flow constructs are
// limited to loop/if/break.
type If struct {
	Base
	Cond Expr
	Body *Block
}

func (*If) stmtNode() {}

// Break is the bare `break;` statement, valid only inside a Loop body.
type Break struct {
	Base
}

func (*Break) stmtNode() {}

// ExprStmt wraps a bare call expression used for its side effect, e.g.
// a helper function invoked only to run its body.
type ExprStmt struct {
	Base
	Value Expr
}

func (*ExprStmt) stmtNode() {}

// IntegerLiteral is an Integer atom.
type IntegerLiteral struct {
	Base
	Value int64
}

func (*IntegerLiteral) exprNode() {}

// LogicLiteral is one of the H/L/X atoms.
type LogicLiteral struct {
	Base
	Value logic.Value
}

func (*LogicLiteral) exprNode() {}

// Ident is a bare identifier atom: a pin, a parameter, a script local, or
// a component variable, resolved by the compiler per its name-resolution
// priority order. Function names are only reached through Call.
type Ident struct {
	Base
	Name string
}

func (*Ident) exprNode() {}

// AccessorExpr is `Ident.Ident` used as an expression: reads the named
// pin of the named component instance.
type AccessorExpr struct {
	Base
	InstanceName string
	PinName      string
}

func (*AccessorExpr) exprNode() {}

// BinOp is one of ||, &&, ==, +, -, *, /.
type BinOp struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

func (*BinOp) exprNode() {}

// UnaryNot is the prefix `!expr`.
type UnaryNot struct {
	Base
	Operand Expr
}

func (*UnaryNot) exprNode() {}

// Call is `Ident(arg_list)`, invoking a function member of the owning
// component.
type Call struct {
	Base
	Name string
	Args []Expr
}

func (*Call) exprNode() {}
