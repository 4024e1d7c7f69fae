package parser

import (
	"testing"

	"github.com/AaronC81/hiloz/compiler/ast"
	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/simerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsesComponentWithPinsAndScript(t *testing.T) {
	src := `
		define component NotGate {
			pin in;
			pin out;
			script {
				loop {
					trigger;
					out <- !in;
				}
			}
		}
	`
	file, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, file.Decls, 1)

	def, ok := file.Decls[0].(*ast.ComponentDef)
	require.True(t, ok)
	assert.Equal(t, "NotGate", def.Name)
	require.Len(t, def.Pins, 2)
	assert.Equal(t, "in", def.Pins[0].Name)
	assert.Equal(t, "out", def.Pins[1].Name)

	require.NotNil(t, def.Script)
	require.Len(t, def.Script.Body.Statements, 1)
	loop, ok := def.Script.Body.Statements[0].(*ast.Loop)
	require.True(t, ok)
	require.Len(t, loop.Body.Statements, 2)

	_, isTrigger := loop.Body.Statements[0].(*ast.Trigger)
	assert.True(t, isTrigger)

	pinAssign, ok := loop.Body.Statements[1].(*ast.PinAssignment)
	require.True(t, ok)
	assert.Equal(t, "out", pinAssign.PinName)
	not, ok := pinAssign.Value.(*ast.UnaryNot)
	require.True(t, ok)
	ident, ok := not.Operand.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "in", ident.Name)
}

func TestParsesInstantiationAndConnect(t *testing.T) {
	src := `
		component drv = Driver();
		component not = NotGate();
		connect(drv.out, not.in);
	`
	file, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, file.Decls, 3)

	inst, ok := file.Decls[0].(*ast.Instantiation)
	require.True(t, ok)
	assert.Equal(t, "drv", inst.InstanceName)
	assert.Equal(t, "Driver", inst.DefName)

	conn, ok := file.Decls[2].(*ast.Connect)
	require.True(t, ok)
	require.Len(t, conn.Accessors, 2)
	assert.Equal(t, "drv", conn.Accessors[0].InstanceName)
	assert.Equal(t, "out", conn.Accessors[0].PinName)
}

func TestExpressionPrecedence(t *testing.T) {
	// 2*5 - 2*3 - (6/3) should parse as ((2*5) - (2*3)) - (6/3).
	src := `define component C { script { _dump(2*5 - 2*3 - (6/3)); } }`
	file, err := Parse(src)
	require.NoError(t, err)
	def := file.Decls[0].(*ast.ComponentDef)
	dump := def.Script.Body.Statements[0].(*ast.Dump)

	outer, ok := dump.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "-", outer.Op)

	inner, ok := outer.Left.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "-", inner.Op)

	leftMul, ok := inner.Left.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", leftMul.Op)
}

func TestUnaryMinusOnIntegerLiteral(t *testing.T) {
	src := `define component C { script { var a = 5; _dump(a + -1); } }`
	file, err := Parse(src)
	require.NoError(t, err)
	def := file.Decls[0].(*ast.ComponentDef)
	dump := def.Script.Body.Statements[1].(*ast.Dump)
	add, ok := dump.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	sub, ok := add.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "-", sub.Op)
	lit, ok := sub.Right.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 1, lit.Value)
}

func TestLogicLiteralsParseToDistinctValues(t *testing.T) {
	src := `define component C { script { out <- H; } }`
	file, err := Parse(src)
	require.NoError(t, err)
	def := file.Decls[0].(*ast.ComponentDef)
	assign := def.Script.Body.Statements[0].(*ast.PinAssignment)
	lit, ok := assign.Value.(*ast.LogicLiteral)
	require.True(t, ok)
	assert.Equal(t, logic.High, lit.Value)
}

func TestConstructorAndParameterizedInstantiation(t *testing.T) {
	src := `
		define component Component {
			pin out;
			constructor(v) { out <- v; }
			script { _dump(out); }
		}
		component ch = Component(H);
	`
	file, err := Parse(src)
	require.NoError(t, err)
	def := file.Decls[0].(*ast.ComponentDef)
	require.NotNil(t, def.Ctor)
	assert.Equal(t, []string{"v"}, def.Ctor.Parameters)

	inst := file.Decls[1].(*ast.Instantiation)
	require.Len(t, inst.Args, 1)
	lit, ok := inst.Args[0].(*ast.LogicLiteral)
	require.True(t, ok)
	assert.Equal(t, logic.High, lit.Value)
}

func TestBreakInsideLoop(t *testing.T) {
	src := `define component C { script {
		var i = 0;
		loop {
			_dump(i);
			if (i == 9) { break; }
			i = i + 1;
		}
	} }`
	file, err := Parse(src)
	require.NoError(t, err)
	def := file.Decls[0].(*ast.ComponentDef)
	loop := def.Script.Body.Statements[1].(*ast.Loop)
	require.Len(t, loop.Body.Statements, 3)
	ifStmt, ok := loop.Body.Statements[1].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Body.Statements, 1)
	_, isBreak := ifStmt.Body.Statements[0].(*ast.Break)
	assert.True(t, isBreak)
}

func TestDuplicateScriptIsCompileError(t *testing.T) {
	src := `define component C { script {} script {} }`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile error")
}

func TestMissingSemicolonIsParseError(t *testing.T) {
	src := `define component C { pin out }`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestRecoversToReportMultipleErrors(t *testing.T) {
	// Two malformed declarations with a valid one between them: the
	// parser resynchronizes at each declaration keyword and reports both.
	src := `
		define component { pin out; }
		define component Ok { pin out; }
		component x = ;
	`
	_, err := Parse(src)
	require.Error(t, err)

	var errs simerr.List
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	assert.Equal(t, simerr.KindParse, errs[0].Kind)
	assert.Equal(t, simerr.KindParse, errs[1].Kind)
}

func TestCallStatementAndExpression(t *testing.T) {
	src := `define component C {
		fn helper(x) { _dump(x); }
		script { helper(1); _dump(helper(2)); }
	}`
	file, err := Parse(src)
	require.NoError(t, err)
	def := file.Decls[0].(*ast.ComponentDef)
	require.Len(t, def.Funcs, 1)
	assert.Equal(t, "helper", def.Funcs[0].Name)

	exprStmt, ok := def.Script.Body.Statements[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.Value.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "helper", call.Name)
	require.Len(t, call.Args, 1)
}
