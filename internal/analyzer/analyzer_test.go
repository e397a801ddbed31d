package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wflang/wfl/internal/analyzer"
	"github.com/wflang/wfl/internal/diag"
	"github.com/wflang/wfl/internal/parser"
)

func analyze(t *testing.T, source string) *diag.Reporter {
	t.Helper()
	rep := diag.NewReporter()
	prog := parser.Parse("test.wfl", source, rep)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", rep.String())
	}
	analyzer.New("test.wfl", rep).Analyze(prog)
	return rep
}

func codes(rep *diag.Reporter) []string {
	var out []string
	for _, d := range rep.Diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func TestUnusedVariable(t *testing.T) {
	rep := analyze(t, "store x as 10\nstore y as 20\ndisplay x\n")
	assert.Contains(t, codes(rep), "ANALYZE-UNUSED")
	found := false
	for _, d := range rep.Diagnostics {
		if d.Code == "ANALYZE-UNUSED" {
			assert.Contains(t, d.Message, "y")
			found = true
		}
	}
	assert.True(t, found)
}

func TestUnreachableCode(t *testing.T) {
	rep := analyze(t, "define action called test:\ngive back 10\ndisplay \"unreachable\"\nend action\n")
	assert.Contains(t, codes(rep), "ANALYZE-UNREACHABLE")
}

func TestShadowing(t *testing.T) {
	rep := analyze(t, "store x as 10\ndefine action called test:\nstore x as 20\ndisplay x\nend action\n")
	assert.Contains(t, codes(rep), "ANALYZE-SHADOW")
}

func TestInconsistentReturn(t *testing.T) {
	rep := analyze(t, "define action called f needs x return number:\ncheck if x is greater than 0: give back 10 end check\nend action\n")
	assert.Contains(t, codes(rep), "ANALYZE-RETURN")
}

func TestUndefinedAction(t *testing.T) {
	rep := analyze(t, "call unknownAction with \"t\"\n")
	found := false
	for _, d := range rep.Diagnostics {
		if d.Code == "ANALYZE-UNDEFINED-ACTION" {
			assert.Contains(t, d.Message, "unknownAction")
			found = true
		}
	}
	assert.True(t, found)
}

func TestNoFalsePositiveOnUsedVariable(t *testing.T) {
	rep := analyze(t, "store total as 0\ncount from 1 to 5 as i: change total to total plus i end count\ndisplay total\n")
	assert.NotContains(t, codes(rep), "ANALYZE-UNUSED")
}
