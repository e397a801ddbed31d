package transpile

import (
	"strings"
	"testing"

	"github.com/wflang/wfl/internal/ast"
)

func lit(v interface{}) *ast.Literal { return &ast.Literal{Value: v} }

func TestDisplayLiteral(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.DisplayStatement{Value: lit("Hello")},
	}}
	out := Transpile(prog, Options{}).JS
	if !strings.Contains(out, `WFL.display("Hello")`) {
		t.Fatalf("expected WFL.display call, got %q", out)
	}
}

func TestVariableDeclarationUsesLet(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.VariableDeclaration{Name: "first name", Value: lit(int64(5)), IsConstant: true},
	}}
	out := Transpile(prog, Options{}).JS
	if !strings.Contains(out, "let first_name = 5;") {
		t.Fatalf("expected `let`-declared, underscore-joined identifier, got %q", out)
	}
	if strings.Contains(out, "const first_name") {
		t.Fatalf("constants must still transpile to `let` per spec §6: %q", out)
	}
}

func TestConcatenationStringifiesOperands(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.DisplayStatement{Value: &ast.Concatenation{Parts: []ast.Expression{lit("x is "), &ast.Identifier{Name: "x"}}}},
	}}
	out := Transpile(prog, Options{}).JS
	if !strings.Contains(out, `(String("x is ") + String(x))`) {
		t.Fatalf("expected stringified concatenation, got %q", out)
	}
}

func TestIndexAccessBothConventions(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.DisplayStatement{Value: &ast.IndexAccess{Collection: &ast.Identifier{Name: "states"}, Index: lit(int64(1)), Bracket: false}},
		&ast.DisplayStatement{Value: &ast.IndexAccess{Collection: &ast.Identifier{Name: "args"}, Index: lit(int64(0)), Bracket: true}},
	}}
	out := Transpile(prog, Options{}).JS
	if !strings.Contains(out, "states[(1) - 1]") {
		t.Fatalf("bare ordinal index must convert 1-based to 0-based: %q", out)
	}
	if !strings.Contains(out, "args[0]") {
		t.Fatalf("bracket index stays 0-based: %q", out)
	}
}

func TestOtherwiseCheckIfChainStaysFlat(t *testing.T) {
	inner := &ast.IfStatement{
		Condition:   &ast.Identifier{Name: "b"},
		Consequence: []ast.Statement{&ast.DisplayStatement{Value: lit("b")}},
	}
	outer := &ast.IfStatement{
		Condition:   &ast.Identifier{Name: "a"},
		Consequence: []ast.Statement{&ast.DisplayStatement{Value: lit("a")}},
		OtherwiseIf: inner,
	}
	prog := &ast.Program{Statements: []ast.Statement{outer}}
	out := Transpile(prog, Options{}).JS
	if !strings.Contains(out, "} else if (b) {") {
		t.Fatalf("expected a flat else-if chain, got %q", out)
	}
}

func TestMainInvocationWrappedWhenAsync(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.ActionDefinition{Name: "main", Body: []ast.Statement{
			&ast.WaitForStatement{Value: lit(int64(1))},
		}},
	}}
	out := Transpile(prog, Options{}).JS
	if !strings.Contains(out, "(async () => { await main(); })();") {
		t.Fatalf("expected async IIFE invocation of main, got %q", out)
	}
}

func TestMainInvocationPlainWhenSync(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.ActionDefinition{Name: "main", Body: []ast.Statement{
			&ast.DisplayStatement{Value: lit("hi")},
		}},
	}}
	out := Transpile(prog, Options{}).JS
	if !strings.Contains(out, "main();") || strings.Contains(out, "await main()") {
		t.Fatalf("expected a plain main() invocation, got %q", out)
	}
}

func TestPreludeOmittedByDefault(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{&ast.DisplayStatement{Value: lit("hi")}}}
	out := Transpile(prog, Options{EmitPrelude: false}).JS
	if strings.Contains(out, "const WFL = {") {
		t.Fatalf("prelude should be opt-in: %q", out)
	}
	out = Transpile(prog, Options{EmitPrelude: true}).JS
	if !strings.Contains(out, "const WFL = {") {
		t.Fatalf("expected prelude when EmitPrelude is set: %q", out)
	}
}
