package pattern

import (
	"fmt"

	"github.com/wflang/wfl/internal/ast"
)

// ListResolver looks up the string elements of a named list at compile
// time, backing PatternListRef (spec §3: "resolves at compile time to
// an alternative of the list's string elements").
type ListResolver func(name string) ([]string, bool)

// Compile turns a Pattern AST expression into a runnable Program.
// prog.SubPrograms holds negative-lookahead sub-programs, which the VM runs as
// isolated, non-consuming match attempts rather than inlined threads —
// threads in the BFS simulation share one global pc space, and a
// lookahead's "did this match at all" question doesn't fit that model
// without its own program.
func Compile(node ast.Expression, resolve ListResolver) (*Program, error) {
	prog := &Program{}
	if err := compileNode(prog, node, resolve); err != nil {
		return nil, err
	}
	prog.emit(Instruction{Op: OpMatch})
	return prog, nil
}

func compileNode(prog *Program, node ast.Expression, resolve ListResolver) error {
	switch n := node.(type) {
	case *ast.PatternLiteral:
		prog.emit(Instruction{Op: OpLiteral, Literal: n.Text})
		return nil

	case *ast.PatternCharClass:
		class, err := classFromName(n.Class)
		if err != nil {
			return err
		}
		prog.emit(Instruction{Op: OpCharClass, Class: class})
		return nil

	case *ast.PatternSequence:
		for _, item := range n.Items {
			if err := compileNode(prog, item, resolve); err != nil {
				return err
			}
		}
		return nil

	case *ast.PatternAlternative:
		return compileAlternative(prog, n.Options, resolve)

	case *ast.PatternQuantified:
		return compileQuantified(prog, n, resolve)

	case *ast.PatternNegativeLookahead:
		sub := &Program{}
		if err := compileNode(sub, n.Inner, resolve); err != nil {
			return err
		}
		sub.emit(Instruction{Op: OpMatch})
		idx := len(prog.SubPrograms)
		prog.SubPrograms = append(prog.SubPrograms, sub)
		prog.emit(Instruction{Op: OpNegLookahead, X: idx})
		return nil

	case *ast.PatternListRef:
		texts, ok := resolve(n.Name)
		if !ok {
			return fmt.Errorf("pattern: list %q is not defined", n.Name)
		}
		return compileLiteralAlternative(prog, texts)

	case *ast.PatternStartAnchor:
		prog.emit(Instruction{Op: OpStartAnchor})
		return nil

	case *ast.PatternEndAnchor:
		prog.emit(Instruction{Op: OpEndAnchor})
		return nil

	default:
		return fmt.Errorf("pattern: cannot compile node of type %T", node)
	}
}

func classFromName(name string) (CharClass, error) {
	switch name {
	case "digit":
		return ClassDigit, nil
	case "letter":
		return ClassLetter, nil
	case "whitespace":
		return ClassWhitespace, nil
	default:
		return 0, fmt.Errorf("pattern: unknown character class %q", name)
	}
}

// compileAlternative emits Split(L1,L2) L1: <opt0> Jump(End) L2: ...
// End:, chaining right-recursively so N options cost N-1 splits.
func compileAlternative(prog *Program, opts []ast.Expression, resolve ListResolver) error {
	if len(opts) == 0 {
		prog.emit(Instruction{Op: OpFail})
		return nil
	}
	if len(opts) == 1 {
		return compileNode(prog, opts[0], resolve)
	}
	var pendingJumps []int
	remaining := opts
	for len(remaining) > 1 {
		splitIdx := prog.emit(Instruction{Op: OpSplit})
		l1 := len(prog.Instructions)
		if err := compileNode(prog, remaining[0], resolve); err != nil {
			return err
		}
		jumpIdx := prog.emit(Instruction{Op: OpJump})
		pendingJumps = append(pendingJumps, jumpIdx)
		l2 := len(prog.Instructions)
		prog.Instructions[splitIdx].X = l1
		prog.Instructions[splitIdx].Y = l2
		remaining = remaining[1:]
	}
	if err := compileNode(prog, remaining[0], resolve); err != nil {
		return err
	}
	end := len(prog.Instructions)
	for _, j := range pendingJumps {
		prog.Instructions[j].X = end
	}
	return nil
}

// compileLiteralAlternative is compileAlternative specialized for a
// flat list of strings (PatternListRef), with no ast.Expression wrapper
// needed per text.
func compileLiteralAlternative(prog *Program, texts []string) error {
	if len(texts) == 0 {
		prog.emit(Instruction{Op: OpFail})
		return nil
	}
	if len(texts) == 1 {
		prog.emit(Instruction{Op: OpLiteral, Literal: texts[0]})
		return nil
	}
	var pendingJumps []int
	remaining := texts
	for len(remaining) > 1 {
		splitIdx := prog.emit(Instruction{Op: OpSplit})
		l1 := len(prog.Instructions)
		prog.emit(Instruction{Op: OpLiteral, Literal: remaining[0]})
		jumpIdx := prog.emit(Instruction{Op: OpJump})
		pendingJumps = append(pendingJumps, jumpIdx)
		l2 := len(prog.Instructions)
		prog.Instructions[splitIdx].X = l1
		prog.Instructions[splitIdx].Y = l2
		remaining = remaining[1:]
	}
	prog.emit(Instruction{Op: OpLiteral, Literal: remaining[0]})
	end := len(prog.Instructions)
	for _, j := range pendingJumps {
		prog.Instructions[j].X = end
	}
	return nil
}

func compileQuantified(prog *Program, n *ast.PatternQuantified, resolve ListResolver) error {
	switch n.Kind {
	case ast.QuantOneOrMore:
		lStart := len(prog.Instructions)
		if err := compileNode(prog, n.Inner, resolve); err != nil {
			return err
		}
		splitIdx := prog.emit(Instruction{Op: OpSplit})
		after := len(prog.Instructions)
		prog.Instructions[splitIdx].X = lStart
		prog.Instructions[splitIdx].Y = after
		return nil

	case ast.QuantZeroOrMore:
		return compileZeroOrMore(prog, n.Inner, resolve)

	case ast.QuantOptional:
		return compileOptional(prog, n.Inner, resolve)

	case ast.QuantExactly:
		for i := 0; i < n.Min; i++ {
			if err := compileNode(prog, n.Inner, resolve); err != nil {
				return err
			}
		}
		return nil

	case ast.QuantBetween:
		for i := 0; i < n.Min; i++ {
			if err := compileNode(prog, n.Inner, resolve); err != nil {
				return err
			}
		}
		for i := 0; i < n.Max-n.Min; i++ {
			if err := compileOptional(prog, n.Inner, resolve); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("pattern: unknown quantifier kind %v", n.Kind)
	}
}

func compileZeroOrMore(prog *Program, inner ast.Expression, resolve ListResolver) error {
	lIdx := prog.emit(Instruction{Op: OpSplit})
	body := len(prog.Instructions)
	if err := compileNode(prog, inner, resolve); err != nil {
		return err
	}
	jumpIdx := prog.emit(Instruction{Op: OpJump, X: lIdx})
	_ = jumpIdx
	after := len(prog.Instructions)
	prog.Instructions[lIdx].X = body
	prog.Instructions[lIdx].Y = after
	return nil
}

func compileOptional(prog *Program, inner ast.Expression, resolve ListResolver) error {
	splitIdx := prog.emit(Instruction{Op: OpSplit})
	body := len(prog.Instructions)
	if err := compileNode(prog, inner, resolve); err != nil {
		return err
	}
	after := len(prog.Instructions)
	prog.Instructions[splitIdx].X = body
	prog.Instructions[splitIdx].Y = after
	return nil
}
