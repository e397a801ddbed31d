package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/pattern"
)

func noLists(string) ([]string, bool) { return nil, false }

func TestLiteralMatch(t *testing.T) {
	prog, err := pattern.Compile(&ast.PatternLiteral{Text: "a"}, noLists)
	require.NoError(t, err)

	vm := pattern.New()
	ok, err := vm.Matches(prog, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = vm.Matches(prog, "")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = vm.Matches(prog, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOneOrMoreDigit(t *testing.T) {
	node := &ast.PatternQuantified{
		Inner: &ast.PatternCharClass{Class: "digit"},
		Kind:  ast.QuantOneOrMore,
	}
	prog, err := pattern.Compile(node, noLists)
	require.NoError(t, err)

	vm := pattern.New()
	ok, err := vm.Matches(prog, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = vm.Matches(prog, "no digits here")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOneOrMoreLetterOrDigit(t *testing.T) {
	node := &ast.PatternQuantified{
		Inner: &ast.PatternAlternative{Options: []ast.Expression{
			&ast.PatternCharClass{Class: "letter"},
			&ast.PatternCharClass{Class: "digit"},
		}},
		Kind: ast.QuantOneOrMore,
	}
	prog, err := pattern.Compile(node, noLists)
	require.NoError(t, err)

	vm := pattern.New()
	ok, err := vm.Matches(prog, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := vm.Find(prog, "   abc123   ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "abc123", found.Text)
}

func TestNegativeLookahead(t *testing.T) {
	// "foo" not followed by "bar"
	node := &ast.PatternSequence{Items: []ast.Expression{
		&ast.PatternLiteral{Text: "foo"},
		&ast.PatternNegativeLookahead{Inner: &ast.PatternLiteral{Text: "bar"}},
	}}
	prog, err := pattern.Compile(node, noLists)
	require.NoError(t, err)

	vm := pattern.New()
	ok, err := vm.Matches(prog, "foobaz")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = vm.Matches(prog, "foobar")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListReference(t *testing.T) {
	resolve := func(name string) ([]string, bool) {
		if name == "colors" {
			return []string{"red", "green", "blue"}, true
		}
		return nil, false
	}
	prog, err := pattern.Compile(&ast.PatternListRef{Name: "colors"}, resolve)
	require.NoError(t, err)

	vm := pattern.New()
	ok, err := vm.Matches(prog, "green")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = vm.Matches(prog, "purple")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindAllNonOverlapping(t *testing.T) {
	node := &ast.PatternQuantified{
		Inner: &ast.PatternCharClass{Class: "digit"},
		Kind:  ast.QuantOneOrMore,
	}
	prog, err := pattern.Compile(node, noLists)
	require.NoError(t, err)

	vm := pattern.New()
	matches, err := vm.FindAll(prog, "a1 b22 c333")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "1", matches[0].Text)
	assert.Equal(t, "22", matches[1].Text)
	assert.Equal(t, "333", matches[2].Text)
}
