package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wflang/wfl/internal/diag"
	"github.com/wflang/wfl/internal/parser"
	"github.com/wflang/wfl/internal/types"
)

func check(t *testing.T, source string) *diag.Reporter {
	t.Helper()
	rep := diag.NewReporter()
	prog := parser.Parse("test.wfl", source, rep)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", rep.String())
	}
	types.New("test.wfl", rep).Check(prog)
	return rep
}

func TestIncompatibleRebindIsATypeError(t *testing.T) {
	rep := check(t, "store x as 1\nstore x as \"oops\"\n")
	assert.True(t, rep.HasErrors())
	found := false
	for _, d := range rep.Diagnostics {
		if d.Code == "TYPE-INCOMPATIBLE-REBIND" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestArithmeticOnTextIsATypeError(t *testing.T) {
	rep := check(t, "store x as \"hi\" plus 1\n")
	assert.True(t, rep.HasErrors())
}

func TestConcatenationAcceptsMixedKinds(t *testing.T) {
	rep := check(t, "store greeting as \"count: \" with 5\n")
	assert.False(t, rep.HasErrors())
}

func TestSameKindRebindIsFine(t *testing.T) {
	rep := check(t, "store x as 1\nstore x as 2\n")
	assert.False(t, rep.HasErrors())
}
