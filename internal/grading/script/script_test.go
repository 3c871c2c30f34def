package script_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillgate/skillgate/internal/grading/script"
)

const correctFizzbuzz = `
function fizzbuzz(n)
  if n % 15 == 0 then
    return "FizzBuzz"
  elseif n % 3 == 0 then
    return "Fizz"
  elseif n % 5 == 0 then
    return "Buzz"
  end
  return tostring(n)
end
`

// Checks divisibility by 3 before 15, so multiples of 15 come out wrong.
const buggyFizzbuzz = `
function fizzbuzz(n)
  if n % 3 == 0 then
    return "Fizz"
  elseif n % 5 == 0 then
    return "Buzz"
  end
  return tostring(n)
end
`

const correctFlatten = `
function flatten(lst)
  local out = {}
  local function walk(t)
    for _, v in ipairs(t) do
      if type(v) == "table" then
        walk(v)
      else
        out[#out + 1] = v
      end
    end
  end
  walk(lst)
  return out
end
`

func TestGradeClassifyCorrect(t *testing.T) {
	res, err := script.Grade(context.Background(), script.TaskClassify, correctFizzbuzz)
	require.NoError(t, err)
	require.Equal(t, 6, res.Passed)
	require.Equal(t, 6, res.Total)
	require.Contains(t, res.Detail, "fizzbuzz(15) -> FizzBuzz | expected: FizzBuzz | OK")
}

func TestGradeClassifyBuggyAtFifteen(t *testing.T) {
	res, err := script.Grade(context.Background(), script.TaskClassify, buggyFizzbuzz)
	require.NoError(t, err)
	require.Equal(t, 4, res.Passed)
	require.Equal(t, 6, res.Total)
	require.Contains(t, res.Detail, "fizzbuzz(15) -> Fizz | expected: FizzBuzz | FAIL")
	require.Contains(t, res.Detail, "fizzbuzz(30) -> Fizz | expected: FizzBuzz | FAIL")
}

func TestGradeFlattenCorrect(t *testing.T) {
	res, err := script.Grade(context.Background(), script.TaskFlatten, correctFlatten)
	require.NoError(t, err)
	require.Equal(t, 4, res.Passed)
	require.Equal(t, 4, res.Total)
	require.Contains(t, res.Detail, "flatten({1,{2,{3,4}},5}) -> {1,2,3,4,5} | expected: {1,2,3,4,5} | OK")
}

func TestGradeForbiddenToken(t *testing.T) {
	src := `
function fizzbuzz(n)
  return os.time()
end
`
	res, err := script.Grade(context.Background(), script.TaskClassify, src)
	require.NoError(t, err)
	require.Equal(t, 0, res.Passed)
	require.Equal(t, 6, res.Total)
	require.Contains(t, res.Detail, `"os."`)
	// No cases ran: the detail is the policy line only.
	require.NotContains(t, res.Detail, "fizzbuzz(1)")
}

func TestGradeMissingFunction(t *testing.T) {
	res, err := script.Grade(context.Background(), script.TaskClassify, `function other(n) return n end`)
	require.NoError(t, err)
	require.Equal(t, 0, res.Passed)
	require.Contains(t, res.Detail, "missing function: fizzbuzz")
}

func TestGradeExecutionError(t *testing.T) {
	res, err := script.Grade(context.Background(), script.TaskClassify, `this is not lua`)
	require.NoError(t, err)
	require.Equal(t, 0, res.Passed)
	require.Contains(t, res.Detail, "execution error")
}

func TestGradePerCallError(t *testing.T) {
	src := `
function fizzbuzz(n)
  error("boom " .. n)
end
`
	res, err := script.Grade(context.Background(), script.TaskClassify, src)
	require.NoError(t, err)
	require.Equal(t, 0, res.Passed)
	require.Equal(t, 6, res.Total)
	require.Contains(t, res.Detail, "error in fizzbuzz(1)")
	require.Contains(t, res.Detail, "boom")
}

func TestGradeTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	src := `
function fizzbuzz(n)
  while true do end
end
`
	res, err := script.Grade(ctx, script.TaskClassify, src)
	require.NoError(t, err)
	require.Equal(t, 0, res.Passed)
}

func TestGradeIdempotent(t *testing.T) {
	a, err := script.Grade(context.Background(), script.TaskClassify, buggyFizzbuzz)
	require.NoError(t, err)
	b, err := script.Grade(context.Background(), script.TaskClassify, buggyFizzbuzz)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGradeUnknownTask(t *testing.T) {
	_, err := script.Grade(context.Background(), 999, correctFizzbuzz)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "unknown task"))
}

func TestIsTask(t *testing.T) {
	require.True(t, script.IsTask(script.TaskClassify))
	require.True(t, script.IsTask(script.TaskFlatten))
	require.False(t, script.IsTask(501))
}
