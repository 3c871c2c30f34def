// Package script grades candidate-submitted function definitions by running
// them against fixed behavioral test cases inside a restricted Lua
// interpreter. The denylist is a policy gate for non-adversarial coursework,
// not a security boundary; the interpreter state is additionally stripped of
// file, OS and loader primitives and bounded by the caller's context.
package script

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Result carries the pass count and a per-case diagnostic log.
type Result struct {
	Passed int
	Total  int
	Detail string
}

// forbidden are source substrings tied to environment access, reflection or
// nested evaluation. Auditable by design: a rejection names the token.
var forbidden = []string{
	"os.", "io.", "require", "dofile", "loadfile", "loadstring",
	"load(", "debug.", "package.", "_G", "getfenv", "setfenv",
}

// Grade runs the source against the task's case battery. Policy violations,
// execution faults and missing functions all come back inside the Result;
// an error is returned only for an unknown task id.
func Grade(ctx context.Context, taskID int, source string) (Result, error) {
	t, ok := tasks[taskID]
	if !ok {
		return Result{}, fmt.Errorf("script: unknown task id %d", taskID)
	}
	res := Result{Total: t.total}

	if tok := findForbidden(source); tok != "" {
		res.Detail = fmt.Sprintf("code not allowed: forbidden construct %q", tok)
		return res, nil
	}

	L := newState(ctx)
	defer L.Close()

	if err := L.DoString(source); err != nil {
		res.Detail = "execution error: " + err.Error()
		return res, nil
	}

	fn, ok := L.GetGlobal(t.fn).(*lua.LFunction)
	if !ok {
		res.Detail = "missing function: " + t.fn
		return res, nil
	}

	passed, lines := t.run(L, fn)
	res.Passed = passed
	res.Detail = strings.Join(lines, "\n")
	return res, nil
}

func findForbidden(source string) string {
	for _, tok := range forbidden {
		if strings.Contains(source, tok) {
			return tok
		}
	}
	return ""
}

// newState builds an interpreter with only base, table, string and math
// libraries, then removes the loader and I/O escape hatches base brings in.
func newState(ctx context.Context) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, g := range []string{"dofile", "loadfile", "load", "loadstring", "require", "print", "collectgarbage"} {
		L.SetGlobal(g, lua.LNil)
	}
	L.SetContext(ctx)
	return L
}

// call invokes fn with one argument, protected. The returned error text is
// the candidate's fault message, suitable for the diagnostic log.
func call(L *lua.LState, fn *lua.LFunction, arg lua.LValue) (lua.LValue, error) {
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg); err != nil {
		return lua.LNil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}
