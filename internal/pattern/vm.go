package pattern

import "fmt"

// MaxSteps bounds one match attempt, per spec §4.6 and §8 ("Any pattern
// either halts with Match/Fail or fails with StepLimitExceeded within
// 100,000 steps").
const MaxSteps = 100_000

// StepLimitExceededError reports that a match attempt ran past MaxSteps.
type StepLimitExceededError struct{}

func (StepLimitExceededError) Error() string {
	return fmt.Sprintf("pattern: step limit of %d exceeded", MaxSteps)
}

// MatchResult describes a successful match.
type MatchResult struct {
	Start, End int
	Text       string
}

// thread is one live execution path in the BFS simulation.
type thread struct {
	pc  int
	pos int
}

// VM runs compiled pattern programs. It carries no state between calls
// other than the step counter reset at the start of each attempt, so a
// single VM value can be reused across matches.
type VM struct {
	steps int
}

// New returns a ready-to-use pattern VM.
func New() *VM { return &VM{} }

// Matches reports whether prog matches anywhere in text (spec:
// `text matches pattern <p>`).
func (vm *VM) Matches(prog *Program, text string) (bool, error) {
	runes := []rune(text)
	for start := 0; start <= len(runes); start++ {
		vm.steps = 0
		end, ok, err := vm.runFrom(prog, runes, start)
		if err != nil {
			return false, err
		}
		if ok {
			_ = end
			return true, nil
		}
	}
	return false, nil
}

// Find returns the first (leftmost) match, if any.
func (vm *VM) Find(prog *Program, text string) (*MatchResult, error) {
	runes := []rune(text)
	for start := 0; start <= len(runes); start++ {
		vm.steps = 0
		end, ok, err := vm.runFrom(prog, runes, start)
		if err != nil {
			return nil, err
		}
		if ok {
			return &MatchResult{Start: start, End: end, Text: string(runes[start:end])}, nil
		}
	}
	return nil, nil
}

// FindAll returns every non-overlapping match, advancing past
// zero-width matches by one rune per spec §4.6 Find/Find-all.
func (vm *VM) FindAll(prog *Program, text string) ([]MatchResult, error) {
	runes := []rune(text)
	var results []MatchResult
	pos := 0
	for pos <= len(runes) {
		vm.steps = 0
		end, ok, err := vm.runFrom(prog, runes, pos)
		if err != nil {
			return results, err
		}
		if ok {
			results = append(results, MatchResult{Start: pos, End: end, Text: string(runes[pos:end])})
			if end > pos {
				pos = end
			} else {
				pos++
			}
			continue
		}
		pos++
	}
	return results, nil
}

// runFrom executes prog as a breadth-first thread set starting at
// position start. Every thread runs to completion, and it returns the
// furthest end offset at which any thread reached Match, so quantifiers
// consume as much input as they can.
func (vm *VM) runFrom(prog *Program, runes []rune, start int) (int, bool, error) {
	threads := []thread{{pc: 0, pos: start}}
	seen := map[[2]int]bool{}
	best, found := 0, false

	for len(threads) > 0 {
		vm.steps++
		if vm.steps > MaxSteps {
			return 0, false, StepLimitExceededError{}
		}

		var next []thread
		for _, th := range threads {
			key := [2]int{th.pc, th.pos}
			if seen[key] {
				continue
			}
			seen[key] = true

			result, newThreads, matchedEnd, err := vm.step(prog, runes, th)
			if err != nil {
				return 0, false, err
			}
			switch result {
			case stepMatch:
				if !found || matchedEnd > best {
					best, found = matchedEnd, true
				}
			case stepContinue:
				next = append(next, newThreads...)
			case stepFail:
				// dead end, drop this thread
			}
		}
		threads = next
	}
	return best, found, nil
}

type stepResult int

const (
	stepContinue stepResult = iota
	stepMatch
	stepFail
)

// step advances one thread through zero-or-more non-consuming
// instructions (Jump/Split/anchors/lookahead) until it either consumes
// a rune, matches, fails, or forks (Split yields two new threads).
func (vm *VM) step(prog *Program, runes []rune, th thread) (stepResult, []thread, int, error) {
	for {
		inst, ok := prog.at(th.pc)
		if !ok {
			return stepFail, nil, 0, nil
		}

		switch inst.Op {
		case OpChar:
			if th.pos < len(runes) && runes[th.pos] == inst.Char {
				th.pc++
				th.pos++
				return stepContinue, []thread{th}, 0, nil
			}
			return stepFail, nil, 0, nil

		case OpCharClass:
			if th.pos < len(runes) && inst.Class.Matches(runes[th.pos]) {
				th.pc++
				th.pos++
				return stepContinue, []thread{th}, 0, nil
			}
			return stepFail, nil, 0, nil

		case OpLiteral:
			lit := []rune(inst.Literal)
			if th.pos+len(lit) > len(runes) {
				return stepFail, nil, 0, nil
			}
			for i, r := range lit {
				if runes[th.pos+i] != r {
					return stepFail, nil, 0, nil
				}
			}
			th.pc++
			th.pos += len(lit)
			return stepContinue, []thread{th}, 0, nil

		case OpJump:
			th.pc = inst.X
			continue

		case OpSplit:
			t1 := thread{pc: inst.X, pos: th.pos}
			t2 := thread{pc: inst.Y, pos: th.pos}
			return stepContinue, []thread{t1, t2}, 0, nil

		case OpStartAnchor:
			if th.pos != 0 {
				return stepFail, nil, 0, nil
			}
			th.pc++
			continue

		case OpEndAnchor:
			if th.pos != len(runes) {
				return stepFail, nil, 0, nil
			}
			th.pc++
			continue

		case OpNegLookahead:
			sub := prog.SubPrograms[inst.X]
			_, matched, err := vm.runFrom(sub, runes, th.pos)
			if err != nil {
				return stepFail, nil, 0, err
			}
			if matched {
				return stepFail, nil, 0, nil
			}
			th.pc++
			continue

		case OpStartCapture, OpEndCapture, OpSave, OpRestore:
			// Reserved for future capture-group support; no-op in the
			// current grammar, which exposes no named groups.
			th.pc++
			continue

		case OpMatch:
			return stepMatch, nil, th.pos, nil

		case OpFail:
			return stepFail, nil, 0, nil

		default:
			return stepFail, nil, 0, nil
		}
	}
}
