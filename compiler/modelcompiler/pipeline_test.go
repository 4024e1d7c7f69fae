package modelcompiler

import (
	"testing"

	"github.com/AaronC81/hiloz/compiler/parser"
	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/model"
	"github.com/AaronC81/hiloz/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive full source text through parse, compile, construct and
// run, checking the dump traces the scripts leave behind.

func runModel(t *testing.T, src string, untilTime uint64) *model.Model {
	t.Helper()
	file, err := parser.Parse(src)
	require.NoError(t, err)
	m, err := Compile(file)
	require.NoError(t, err)
	require.NoError(t, m.Construct())
	require.NoError(t, m.Run(untilTime, nil))
	return m
}

func assertDumps(t *testing.T, c *model.Component, want []vm.Object) {
	t.Helper()
	require.Len(t, c.Dumps, len(want))
	for i, w := range want {
		assert.Truef(t, w.Equal(c.Dumps[i]), "dump %d: got %s, want %s", i, c.Dumps[i], w)
	}
}

func TestPipelineLocalsAndArithmetic(t *testing.T) {
	m := runModel(t, `
		define component C {
			script {
				var a = 5;
				_dump(a + -1);
				_dump(2*5 - 2*3 - (6/3));
			}
		}
		component c = C();
	`, 10)

	assertDumps(t, m.Components[0], []vm.Object{
		vm.NewInteger(4),
		vm.NewInteger(2),
	})
}

func TestPipelineLoopBreakIfCountsToNine(t *testing.T) {
	m := runModel(t, `
		define component Counter {
			script {
				var i = 0;
				loop {
					_dump(i);
					if (i == 9) { break; }
					i = i + 1;
				}
			}
		}
		component c = Counter();
	`, 10)

	want := make([]vm.Object, 10)
	for i := range want {
		want[i] = vm.NewInteger(int64(i))
	}
	assertDumps(t, m.Components[0], want)
}

func TestPipelineConstructorParameters(t *testing.T) {
	m := runModel(t, `
		define component Component {
			pin out;
			constructor(v) { out <- v; }
			script { _dump(out); }
		}
		component ch = Component(H);
		component cl = Component(L);
	`, 10)

	assertDumps(t, m.Components[0], []vm.Object{vm.NewLogicValue(logic.High)})
	assertDumps(t, m.Components[1], []vm.Object{vm.NewLogicValue(logic.Low)})
}

func TestPipelineVariableMemberInitializer(t *testing.T) {
	m := runModel(t, `
		define component C {
			var count = 40 + 2;
			script { _dump(count); }
		}
		component c = C();
	`, 10)

	assertDumps(t, m.Components[0], []vm.Object{vm.NewInteger(42)})
}

func TestPipelineFunctionCallsIncludingForwardReference(t *testing.T) {
	// relay calls shout, which is declared after it.
	m := runModel(t, `
		define component C {
			fn relay(x) { shout(x + 1); }
			fn shout(x) { _dump(x); _dump(x); }
			script { relay(1); }
		}
		component c = C();
	`, 10)

	assertDumps(t, m.Components[0], []vm.Object{
		vm.NewInteger(2),
		vm.NewInteger(2),
	})
}
