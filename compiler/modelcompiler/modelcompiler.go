// Package modelcompiler lowers a parsed top-level file into a runnable
// model.Model: component definitions (each with its script/constructor/
// functions compiled by the scriptcompiler), instances, and the net
// connections between them.
package modelcompiler

import (
	"github.com/AaronC81/hiloz/compiler/ast"
	"github.com/AaronC81/hiloz/compiler/scriptcompiler"
	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/model"
	"github.com/AaronC81/hiloz/simerr"
	"github.com/AaronC81/hiloz/vm"
)

// Compile lowers a parsed file into a fresh model.Model. Every component
// definition is compiled first, in one pass, so an instantiation may name
// a definition declared later in the file. Instantiations and connect
// statements are then handled together in source order, so a connect
// statement can only name instances instantiated above it.
func Compile(file *ast.File) (*model.Model, error) {
	m := model.NewModel()

	defsByName := map[string]*model.ComponentDefinition{}
	for _, decl := range file.Decls {
		cd, ok := decl.(*ast.ComponentDef)
		if !ok {
			continue
		}
		if _, exists := defsByName[cd.Name]; exists {
			return nil, simerr.NewCompileError(cd.Pos(), "duplicate component definition %q", cd.Name)
		}
		def, err := compileComponentDef(cd)
		if err != nil {
			return nil, err
		}
		defsByName[cd.Name] = def
		m.Definitions = append(m.Definitions, def)
	}

	instanceIdx := map[string]int{}
	for _, decl := range file.Decls {
		switch n := decl.(type) {
		case *ast.Instantiation:
			idx, err := compileInstantiation(m, n, defsByName)
			if err != nil {
				return nil, err
			}
			if _, exists := instanceIdx[n.InstanceName]; exists {
				return nil, simerr.NewCompileError(n.Pos(), "duplicate component instance %q", n.InstanceName)
			}
			instanceIdx[n.InstanceName] = idx

		case *ast.Connect:
			if err := compileConnect(m, n, instanceIdx); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func compileComponentDef(cd *ast.ComponentDef) (*model.ComponentDefinition, error) {
	def := &model.ComponentDefinition{Name: cd.Name}

	for _, p := range cd.Pins {
		if _, exists := def.PinIdx(p.Name); exists {
			return nil, simerr.NewCompileError(p.Pos(), "duplicate pin name %q", p.Name)
		}
		def.Pins = append(def.Pins, &model.PinDefinition{Name: p.Name})
	}

	for _, v := range cd.Vars {
		if _, exists := def.VariableIdx(v.Name); exists {
			return nil, simerr.NewCompileError(v.Pos(), "duplicate variable name %q", v.Name)
		}
		vd := &model.VariableDefinition{Name: v.Name}
		if v.Initial != nil {
			initial, err := evalConstExpr(v.Initial)
			if err != nil {
				return nil, err
			}
			vd.Initial = initial
		}
		def.Variables = append(def.Variables, vd)
	}

	// Functions are registered by name (with their arity) before any body
	// is compiled, then each body is filled in. A function's body may call
	// any sibling function, including itself or one declared after it,
	// because the call site only needs the shared *vm.Function pointer and
	// its parameter list.
	def.Functions = map[string]*vm.Function{}
	for _, fn := range cd.Funcs {
		if _, exists := def.Functions[fn.Name]; exists {
			return nil, simerr.NewCompileError(fn.Pos(), "duplicate function name %q", fn.Name)
		}
		def.Functions[fn.Name] = &vm.Function{Parameters: fn.Parameters}
		def.FunctionNames = append(def.FunctionNames, fn.Name)
	}
	for _, fn := range cd.Funcs {
		compiled, err := scriptcompiler.CompileHelper(def, fn.Parameters, fn.Body)
		if err != nil {
			return nil, err
		}
		def.Functions[fn.Name].Body = compiled.Body
	}

	if cd.Script != nil {
		compiled, err := scriptcompiler.CompileFunction(def, nil, cd.Script.Body)
		if err != nil {
			return nil, err
		}
		def.Script = compiled
	}

	if cd.Ctor != nil {
		compiled, err := scriptcompiler.CompileFunction(def, cd.Ctor.Parameters, cd.Ctor.Body)
		if err != nil {
			return nil, err
		}
		def.Constructor = compiled
	}

	return def, nil
}

func compileInstantiation(m *model.Model, n *ast.Instantiation, defsByName map[string]*model.ComponentDefinition) (int, error) {
	def, ok := defsByName[n.DefName]
	if !ok {
		return 0, simerr.NewCompileError(n.Pos(), "no component definition named %q", n.DefName)
	}

	args := make([]vm.Object, len(n.Args))
	for i, a := range n.Args {
		obj, err := evalConstExpr(a)
		if err != nil {
			return 0, err
		}
		args[i] = obj
	}

	component := model.NewComponent(n.InstanceName, def)
	component.ConstructorArguments = args

	idx := len(m.Components)
	m.Components = append(m.Components, component)

	if def.Constructor != nil {
		interp := vm.NewScriptInterpreter(def.Constructor, idx)
		interp.Frames[0].Arguments = args
		m.ConstructorInterpreters = append(m.ConstructorInterpreters, interp)
	}
	if def.Script != nil {
		m.Interpreters = append(m.Interpreters, vm.NewScriptInterpreter(def.Script, idx))
	}

	return idx, nil
}

func compileConnect(m *model.Model, n *ast.Connect, instanceIdx map[string]int) error {
	pins := make([]model.PinConnection, len(n.Accessors))
	for i, acc := range n.Accessors {
		componentIdx, ok := instanceIdx[acc.InstanceName]
		if !ok {
			return simerr.NewCompileError(acc.Pos(), "no component instance named %q", acc.InstanceName)
		}
		def := m.Components[componentIdx].Definition
		pinIdx, ok := def.PinIdx(acc.PinName)
		if !ok {
			return simerr.NewCompileError(acc.Pos(), "%s has no pin named %q", acc.InstanceName, acc.PinName)
		}
		pins[i] = model.PinConnection{ComponentIdx: componentIdx, PinIdx: pinIdx}
	}
	m.ConnectPins(pins)
	return nil
}

// evalConstExpr evaluates an expression used as a constructor argument.
// Constructor arguments must be constant: literals and unary/binary
// operators over literals, never an identifier, pin read, or function
// call.
func evalConstExpr(e ast.Expr) (vm.Object, error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return vm.NewInteger(n.Value), nil

	case *ast.LogicLiteral:
		return vm.NewLogicValue(n.Value), nil

	case *ast.UnaryNot:
		v, err := evalConstExpr(n.Operand)
		if err != nil {
			return vm.Object{}, err
		}
		if v.Kind != vm.KindLogicValue {
			return vm.Object{}, simerr.NewCompileError(n.Pos(), "! requires a logic value")
		}
		return vm.NewLogicValue(v.Logic.Not()), nil

	case *ast.BinOp:
		return evalConstBinOp(n)

	default:
		return vm.Object{}, simerr.NewCompileError(e.Pos(), "constructor arguments must be constant expressions")
	}
}

func evalConstBinOp(n *ast.BinOp) (vm.Object, error) {
	left, err := evalConstExpr(n.Left)
	if err != nil {
		return vm.Object{}, err
	}
	right, err := evalConstExpr(n.Right)
	if err != nil {
		return vm.Object{}, err
	}

	switch n.Op {
	case "+", "-", "*", "/":
		if left.Kind != vm.KindInteger || right.Kind != vm.KindInteger {
			return vm.Object{}, simerr.NewCompileError(n.Pos(), "%s requires integer operands", n.Op)
		}
		if n.Op == "/" && right.Integer == 0 {
			return vm.Object{}, simerr.NewCompileError(n.Pos(), "division by zero")
		}
		var out int64
		switch n.Op {
		case "+":
			out = left.Integer + right.Integer
		case "-":
			out = left.Integer - right.Integer
		case "*":
			out = left.Integer * right.Integer
		case "/":
			out = left.Integer / right.Integer
		}
		return vm.NewInteger(out), nil

	case "==":
		return vm.NewLogicValue(logic.FromBool(left.Equal(right))), nil

	case "&&", "||":
		if left.Kind != vm.KindLogicValue || right.Kind != vm.KindLogicValue {
			return vm.Object{}, simerr.NewCompileError(n.Pos(), "%s requires logic operands", n.Op)
		}
		var out bool
		if n.Op == "&&" {
			out = left.Truthy() && right.Truthy()
		} else {
			out = left.Truthy() || right.Truthy()
		}
		return vm.NewLogicValue(logic.FromBool(out)), nil

	default:
		return vm.Object{}, simerr.NewCompileError(n.Pos(), "unknown operator %q", n.Op)
	}
}
