package interp_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wflang/wfl/internal/diag"
	"github.com/wflang/wfl/internal/interp"
	"github.com/wflang/wfl/internal/parser"
)

func run(t *testing.T, source string, timeout time.Duration) (string, error) {
	t.Helper()
	rep := diag.NewReporter()
	prog := parser.Parse("test.wfl", source, rep)
	require.False(t, rep.HasErrors(), "unexpected parse errors: %s", rep.String())

	var out bytes.Buffer
	in := interp.New("test.wfl", &out, timeout)
	err := in.Run(prog)
	return out.String(), err
}

func TestArithmetic(t *testing.T) {
	out, err := run(t, "display 2 plus 3\n", 0)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestCountLoopSum(t *testing.T) {
	out, err := run(t, "store sum as 0\ncount from 1 to 5: change sum to sum plus count end count\ndisplay sum\n", 0)
	require.NoError(t, err)
	assert.Equal(t, "15\n", out)
}

func TestIfElse(t *testing.T) {
	out, err := run(t, "store x as 1\ncheck if x is equal to 1: display \"one\" otherwise: display \"other\" end check\n", 0)
	require.NoError(t, err)
	assert.Equal(t, "one\n", out)
}

func TestCountLoopPrintsEachIteration(t *testing.T) {
	out, err := run(t, "count from 1 to 3: display count end count\n", 0)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestActionCallWithArgs(t *testing.T) {
	src := "define action called add needs a and b: give back a plus b end action\n" +
		"display call add with 2 and 3\n"
	out, err := run(t, src, 0)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestPatternBlockDefinition(t *testing.T) {
	src := "create pattern digits: one or more digit end pattern\n" +
		"display \"abc123\" matches digits\n"
	out, err := run(t, src, 0)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestTimeoutTerminatesInfiniteLoop(t *testing.T) {
	src := "count from 1 to 1000000000: store x as 1 plus 1 end count\n"
	start := time.Now()
	_, err := run(t, src, 1*time.Second)
	elapsed := time.Since(start)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Execution exceeded timeout")
	assert.LessOrEqual(t, elapsed, 1100*time.Millisecond)
}

func TestClosedFileHandleReuseFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch.txt")
	src := "open file at \"" + path + "\" as f\n" +
		"write \"hello\" to f\n" +
		"close file f\n" +
		"read content from f as body\n"
	_, err := run(t, src, 0)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "closed")
}

func TestDivisionByZero(t *testing.T) {
	_, err := run(t, "display 1 divided by 0\n", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestForEachLoop(t *testing.T) {
	src := "create list nums as [1, 2, 3]\n" +
		"store total as 0\n" +
		"for each n in nums: change total to total plus n end for\n" +
		"display total\n"
	out, err := run(t, src, 0)
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
