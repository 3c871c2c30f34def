package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Task identifiers match the catalog entries for the script practicals.
const (
	TaskClassify = 301 // fizzbuzz(n): classify a number by divisibility by 3/5
	TaskFlatten  = 302 // flatten(lst): recursively flatten nested sequences
)

type task struct {
	fn    string
	total int
	run   func(L *lua.LState, fn *lua.LFunction) (passed int, lines []string)
}

// Case batteries are fixed per task; totals are constants, not derived.
var tasks = map[int]task{
	TaskClassify: {fn: "fizzbuzz", total: 6, run: runClassify},
	TaskFlatten:  {fn: "flatten", total: 4, run: runFlatten},
}

// IsTask reports whether id names a script practical.
func IsTask(id int) bool {
	_, ok := tasks[id]
	return ok
}

var classifyCases = []struct {
	input  int
	expect string
}{
	{1, "1"},
	{3, "Fizz"},
	{5, "Buzz"},
	{15, "FizzBuzz"},
	{16, "16"},
	{30, "FizzBuzz"},
}

func runClassify(L *lua.LState, fn *lua.LFunction) (int, []string) {
	passed := 0
	lines := make([]string, 0, len(classifyCases))
	for _, c := range classifyCases {
		repr := fmt.Sprintf("fizzbuzz(%d)", c.input)
		ret, err := call(L, fn, lua.LNumber(c.input))
		if err != nil {
			lines = append(lines, fmt.Sprintf("error in %s: %s", repr, err.Error()))
			continue
		}
		got := ret.String()
		verdict := "FAIL"
		if got == c.expect {
			passed++
			verdict = "OK"
		}
		lines = append(lines, fmt.Sprintf("%s -> %s | expected: %s | %s", repr, got, c.expect, verdict))
	}
	return passed, lines
}

var flattenCases = []struct {
	input  []any
	expect []float64
}{
	{[]any{1, 2, 3}, []float64{1, 2, 3}},
	{[]any{1, []any{2, []any{3, 4}}, 5}, []float64{1, 2, 3, 4, 5}},
	{[]any{}, []float64{}},
	{[]any{[]any{[]any{1}}, []any{2, []any{3, []any{4}}}}, []float64{1, 2, 3, 4}},
}

func runFlatten(L *lua.LState, fn *lua.LFunction) (int, []string) {
	passed := 0
	lines := make([]string, 0, len(flattenCases))
	for _, c := range flattenCases {
		repr := fmt.Sprintf("flatten(%s)", reprNested(c.input))
		ret, err := call(L, fn, toLuaTable(L, c.input))
		if err != nil {
			lines = append(lines, fmt.Sprintf("error in %s: %s", repr, err.Error()))
			continue
		}
		verdict := "FAIL"
		if flatEqual(ret, c.expect) {
			passed++
			verdict = "OK"
		}
		lines = append(lines, fmt.Sprintf("%s -> %s | expected: %s | %s",
			repr, reprLuaValue(ret), reprFlat(c.expect), verdict))
	}
	return passed, lines
}

// toLuaTable converts a nested []any of ints into nested Lua tables.
func toLuaTable(L *lua.LState, in []any) *lua.LTable {
	t := L.NewTable()
	for _, v := range in {
		switch x := v.(type) {
		case int:
			t.Append(lua.LNumber(x))
		case []any:
			t.Append(toLuaTable(L, x))
		}
	}
	return t
}

// flatEqual checks that ret is a flat sequence with exactly the expected
// numeric elements in order.
func flatEqual(ret lua.LValue, want []float64) bool {
	t, ok := ret.(*lua.LTable)
	if !ok {
		return false
	}
	if t.Len() != len(want) {
		return false
	}
	for i, w := range want {
		n, ok := t.RawGetInt(i + 1).(lua.LNumber)
		if !ok || float64(n) != w {
			return false
		}
	}
	return true
}

func reprNested(in []any) string {
	parts := make([]string, 0, len(in))
	for _, v := range in {
		switch x := v.(type) {
		case int:
			parts = append(parts, fmt.Sprintf("%d", x))
		case []any:
			parts = append(parts, reprNested(x))
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func reprFlat(ff []float64) string {
	parts := make([]string, 0, len(ff))
	for _, f := range ff {
		parts = append(parts, fmt.Sprintf("%g", f))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func reprLuaValue(v lua.LValue) string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return v.String()
	}
	parts := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		parts = append(parts, reprLuaValue(t.RawGetInt(i)))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
