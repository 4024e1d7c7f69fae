// Package scriptcompiler lowers a script, constructor, or function body's
// AST into a vm.Function: a flat list of bytecode instructions operating
// against a single component's pins, parameters, locals, and variables.
package scriptcompiler

import (
	"github.com/AaronC81/hiloz/compiler/ast"
	"github.com/AaronC81/hiloz/model"
	"github.com/AaronC81/hiloz/opcodes"
	"github.com/AaronC81/hiloz/simerr"
	"github.com/AaronC81/hiloz/vm"
)

// context is one lexical scope during compilation: a parent link (nil at
// the function's root block), the owning definition used for pin/variable
// lookup, the function's ordered parameter list, and the set of names
// declared directly in this block. Name lookups for enclosing locals climb
// the parent chain; pins, parameters and component variables are reached
// through the root.
type context struct {
	parent     *context
	def        *model.ComponentDefinition
	parameters []string
	locals     map[string]bool
	inLoop     bool
}

func newRootContext(def *model.ComponentDefinition, parameters []string) *context {
	return &context{def: def, parameters: parameters, locals: map[string]bool{}, inLoop: false}
}

func (c *context) child() *context {
	return &context{parent: c, def: c.def, parameters: c.parameters, locals: map[string]bool{}, inLoop: c.inLoop}
}

func (c *context) childLoop() *context {
	ch := c.child()
	ch.inLoop = true
	return ch
}

// declaredHere reports whether name was declared directly in this block
// (not an enclosing one), used to reject a redeclaration within one block.
func (c *context) declaredHere(name string) bool {
	return c.locals[name]
}

func (c *context) declare(name string) {
	c.locals[name] = true
}

// isLocal reports whether name is visible as a local in this block or any
// enclosing one, stopping at the function root (there is no block nesting
// across a function boundary).
func (c *context) isLocal(name string) bool {
	if c.locals[name] {
		return true
	}
	if c.parent != nil {
		return c.parent.isLocal(name)
	}
	return false
}

func (c *context) paramIdx(name string) (int, bool) {
	for i, p := range c.parameters {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// CompileFunction lowers a script or constructor body into a vm.Function
// with the given ordered parameter names. The compiled body always ends
// with a Halt instruction.
func CompileFunction(def *model.ComponentDefinition, parameters []string, body *ast.Block) (*vm.Function, error) {
	return compile(def, parameters, body, vm.Halt())
}

// CompileHelper lowers a named helper function body. Unlike a script or
// constructor, a helper ends by returning Null to its caller rather than
// halting the owning interpreter.
func CompileHelper(def *model.ComponentDefinition, parameters []string, body *ast.Block) (*vm.Function, error) {
	return compile(def, parameters, body, vm.Push(vm.Null), vm.Return())
}

func compile(def *model.ComponentDefinition, parameters []string, body *ast.Block, terminator ...vm.Instruction) (*vm.Function, error) {
	ctx := newRootContext(def, parameters)
	instrs, err := compileBlock(body, ctx)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, terminator...)
	return &vm.Function{Parameters: parameters, Body: instrs}, nil
}

func compileBlock(block *ast.Block, parent *context) ([]vm.Instruction, error) {
	ctx := parent.child()
	var out []vm.Instruction
	for _, stmt := range block.Statements {
		instrs, err := compileStmt(stmt, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

func compileStmt(stmt ast.Stmt, ctx *context) ([]vm.Instruction, error) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		return compileVarDecl(n, ctx)

	case *ast.Assignment:
		return compileAssignment(n, ctx)

	case *ast.PinAssignment:
		return compilePinAssignment(n, ctx)

	case *ast.Sleep:
		durationInstrs, err := compileExpr(n.Duration, ctx)
		if err != nil {
			return nil, err
		}
		return append(durationInstrs, vm.SuspendSleep()), nil

	case *ast.Trigger:
		return []vm.Instruction{vm.SuspendTrigger()}, nil

	case *ast.Dump:
		valueInstrs, err := compileExpr(n.Value, ctx)
		if err != nil {
			return nil, err
		}
		return append(valueInstrs, vm.Dump()), nil

	case *ast.Loop:
		return compileLoop(n, ctx)

	case *ast.If:
		return compileIf(n, ctx)

	case *ast.Break:
		if !ctx.inLoop {
			return nil, simerr.NewCompileError(n.Pos(), "break used outside a loop")
		}
		return []vm.Instruction{vm.MagicBreak()}, nil

	case *ast.ExprStmt:
		instrs, err := compileExpr(n.Value, ctx)
		if err != nil {
			return nil, err
		}
		return append(instrs, vm.Pop()), nil

	default:
		return nil, simerr.NewCompileError(stmt.Pos(), "don't know how to compile statement %T", stmt)
	}
}

func compileVarDecl(n *ast.VarDecl, ctx *context) ([]vm.Instruction, error) {
	if ctx.declaredHere(n.Name) {
		return nil, simerr.NewCompileError(n.Pos(), "local named %q is already defined in this block", n.Name)
	}
	ctx.declare(n.Name)

	out := []vm.Instruction{vm.DefineLocal(n.Name)}
	if n.Value != nil {
		valueInstrs, err := compileExpr(n.Value, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, valueInstrs...)
		out = append(out, vm.SetVariable(n.Name))
	}
	return out, nil
}

func compileAssignment(n *ast.Assignment, ctx *context) ([]vm.Instruction, error) {
	isLocal := ctx.isLocal(n.Name)
	_, isVar := ctx.def.VariableIdx(n.Name)

	switch {
	case isLocal && isVar:
		return nil, simerr.NewCompileError(n.Pos(), "multiple items called %q (local and component variable)", n.Name)
	case !isLocal && !isVar:
		return nil, simerr.NewCompileError(n.Pos(), "nothing named %q to assign to", n.Name)
	}

	valueInstrs, err := compileExpr(n.Value, ctx)
	if err != nil {
		return nil, err
	}
	return append(valueInstrs, vm.SetVariable(n.Name)), nil
}

func compilePinAssignment(n *ast.PinAssignment, ctx *context) ([]vm.Instruction, error) {
	pinIdx, ok := ctx.def.PinIdx(n.PinName)
	if !ok {
		return nil, simerr.NewCompileError(n.Pos(), "no pin named %q", n.PinName)
	}

	valueInstrs, err := compileExpr(n.Value, ctx)
	if err != nil {
		return nil, err
	}
	out := append(valueInstrs,
		vm.Push(vm.NewInteger(int64(pinIdx))),
		vm.GetOwnComponentIdx(),
		vm.ModifyComponentPin(),
	)
	return out, nil
}

func compileLoop(n *ast.Loop, ctx *context) ([]vm.Instruction, error) {
	bodyCtx := ctx.childLoop()
	body, err := compileBlock(n.Body, bodyCtx)
	if err != nil {
		return nil, err
	}

	length := len(body)
	for i, inst := range body {
		if inst.Op == opcodes.OpMagicBreak {
			// +1 jumps past the trailing jump back to the loop's start.
			body[i] = vm.Jump(int64(length-i) + 1)
		}
	}
	body = append(body, vm.Jump(-int64(length)))
	return body, nil
}

func compileIf(n *ast.If, ctx *context) ([]vm.Instruction, error) {
	condInstrs, err := compileExpr(n.Cond, ctx)
	if err != nil {
		return nil, err
	}
	bodyInstrs, err := compileBlock(n.Body, ctx)
	if err != nil {
		return nil, err
	}

	out := append(condInstrs, vm.LogicNot(), vm.JumpConditional(int64(len(bodyInstrs))+1))
	out = append(out, bodyInstrs...)
	return out, nil
}

func compileExpr(expr ast.Expr, ctx *context) ([]vm.Instruction, error) {
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		return []vm.Instruction{vm.Push(vm.NewInteger(n.Value))}, nil

	case *ast.LogicLiteral:
		return []vm.Instruction{vm.Push(vm.NewLogicValue(n.Value))}, nil

	case *ast.Ident:
		return compileIdent(n, ctx)

	case *ast.AccessorExpr:
		return nil, simerr.NewCompileError(n.Pos(), "pin accessor %s.%s can only be used in a connect statement", n.InstanceName, n.PinName)

	case *ast.BinOp:
		return compileBinOp(n, ctx)

	case *ast.UnaryNot:
		operandInstrs, err := compileExpr(n.Operand, ctx)
		if err != nil {
			return nil, err
		}
		return append(operandInstrs, vm.LogicNot()), nil

	case *ast.Call:
		return compileCall(n, ctx)

	default:
		return nil, simerr.NewCompileError(expr.Pos(), "don't know how to compile expression %T", expr)
	}
}

// compileIdent resolves a bare name in priority order: pin, parameter,
// local, component variable. More than one match is an ambiguity error;
// no match is an undefined-name error.
func compileIdent(n *ast.Ident, ctx *context) ([]vm.Instruction, error) {
	pinIdx, isPin := ctx.def.PinIdx(n.Name)
	paramIdx, isParam := ctx.paramIdx(n.Name)
	isLocal := ctx.isLocal(n.Name)
	_, isVar := ctx.def.VariableIdx(n.Name)

	matches := 0
	for _, m := range []bool{isPin, isParam, isLocal, isVar} {
		if m {
			matches++
		}
	}
	if matches == 0 {
		return nil, simerr.NewCompileError(n.Pos(), "nothing named %q", n.Name)
	}
	if matches > 1 {
		return nil, simerr.NewCompileError(n.Pos(), "multiple items called %q", n.Name)
	}

	switch {
	case isPin:
		return []vm.Instruction{
			vm.Push(vm.NewInteger(int64(pinIdx))),
			vm.GetOwnComponentIdx(),
			vm.ReadComponentPin(),
		}, nil
	case isParam:
		return []vm.Instruction{vm.GetParameter(paramIdx)}, nil
	default: // local or component variable; the VM resolves which at run time.
		return []vm.Instruction{vm.GetVariable(n.Name)}, nil
	}
}

// binOpcode maps a surface operator to its instruction. Arithmetic and
// equality/boolean operators share the stack-machine convention: the
// right operand is pushed first so the left operand ends on top, matching
// how a - b must compute left-minus-right with "a" as the first pop.
var binOpcode = map[string]func() vm.Instruction{
	"+":  vm.Add,
	"-":  vm.Sub,
	"*":  vm.Mul,
	"/":  vm.Div,
	"==": vm.Equal,
	"&&": vm.LogicAnd,
	"||": vm.LogicOr,
}

func compileBinOp(n *ast.BinOp, ctx *context) ([]vm.Instruction, error) {
	opFn, ok := binOpcode[n.Op]
	if !ok {
		return nil, simerr.NewCompileError(n.Pos(), "unknown operator %q", n.Op)
	}

	rightInstrs, err := compileExpr(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	leftInstrs, err := compileExpr(n.Left, ctx)
	if err != nil {
		return nil, err
	}

	out := append(rightInstrs, leftInstrs...)
	out = append(out, opFn())
	return out, nil
}

func compileCall(n *ast.Call, ctx *context) ([]vm.Instruction, error) {
	fn, ok := ctx.def.Function(n.Name)
	if !ok {
		return nil, simerr.NewCompileError(n.Pos(), "no function named %q", n.Name)
	}
	if len(n.Args) != len(fn.Parameters) {
		return nil, simerr.NewCompileError(n.Pos(), "%s takes %d argument(s), got %d", n.Name, len(fn.Parameters), len(n.Args))
	}

	var out []vm.Instruction
	for _, arg := range n.Args {
		argInstrs, err := compileExpr(arg, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, argInstrs...)
	}
	out = append(out, vm.Push(vm.NewFunction(fn)), vm.Call())
	return out, nil
}
