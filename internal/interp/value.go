// Package interp is the tree-walking evaluator: it turns a parsed,
// analyzed, type-checked *ast.Program into side effects and a final
// Value, threading a cooperative deadline through every suspension
// point per spec §5.
package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wflang/wfl/internal/ast"
)

// Kind tags the dynamic variant a Value holds, mirroring spec §4.4's
// "Runtime Value (tagged variant; copyable by sharing)".
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindBool
	KindNull
	KindList
	KindMap
	KindFileHandle
	KindURLHandle
	KindProcessHandle
	KindServerHandle
	KindAction
	KindContainer
	KindPattern
)

// Value is the universal runtime representation. Scalars are held
// directly; List/Map/Container/Pattern wrap a pointer to shared mutable
// state so aliasing (spec §5 "Lists and maps are shared-mutable") falls
// out of normal Go value-copy semantics.
type Value struct {
	Kind      Kind
	Number    float64
	Text      string
	Bool      bool
	List      *ListValue
	Map       *MapValue
	Handle    ResourceID
	Action    *ActionValue
	Container *ContainerValue
	Pattern   *PatternValue
}

// ListValue is WFL's shared-mutable ordered sequence.
type ListValue struct {
	Elements []Value
}

// MapValue is WFL's shared-mutable key→value table. Go's builtin map
// already gives reference semantics on copy, matching the spec's
// aliasing requirement without extra indirection.
type MapValue struct {
	Entries map[string]Value
	// order preserves insertion order for Keys, since a Go map has none;
	// String sorts the keys instead.
	order []string
}

func newMapValue() *MapValue {
	return &MapValue{Entries: map[string]Value{}}
}

func (m *MapValue) Set(key string, v Value) {
	if _, exists := m.Entries[key]; !exists {
		m.order = append(m.order, key)
	}
	m.Entries[key] = v
}

func (m *MapValue) Keys() []string {
	keys := make([]string, len(m.order))
	copy(keys, m.order)
	return keys
}

// ActionValue is a closure: the defining parameter list and body, plus
// the environment captured at definition time (spec §4.4 Action).
type ActionValue struct {
	Name       string
	Params     []ast.Param
	ReturnType string
	Body       []ast.Statement
	Env        *Environment
}

// ContainerValue is an instantiated container (spec §4.4 Container).
type ContainerValue struct {
	TypeName string
	Def      *ast.ContainerDefinition
	Fields   map[string]Value
}

// PatternValue wraps a compiled pattern program with its source name,
// for display and for pattern-match/find/replace/split expressions.
type PatternValue struct {
	Name string
	// Compiled is an interface{} holding *pattern.Program, kept untyped
	// here to avoid an import cycle — internal/pattern doesn't need to
	// know about interp.Value, and interp imports pattern directly in
	// patterns.go, which concretely type-asserts this field.
	Compiled interface{}
}

func Number(n float64) Value { return Value{Kind: KindNumber, Number: n} }
func Text(s string) Value    { return Value{Kind: KindText, Text: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Null() Value            { return Value{Kind: KindNull} }

func List(elems []Value) Value {
	return Value{Kind: KindList, List: &ListValue{Elements: elems}}
}

func Map() Value {
	return Value{Kind: KindMap, Map: newMapValue()}
}

func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNull:
		return false
	case KindNumber:
		return v.Number != 0
	case KindText:
		return v.Text != ""
	default:
		return true
	}
}

func (v Value) KindName() string {
	switch v.Kind {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindNull:
		return "nothing"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindFileHandle:
		return "file handle"
	case KindURLHandle:
		return "url handle"
	case KindProcessHandle:
		return "process handle"
	case KindServerHandle:
		return "server handle"
	case KindAction:
		return "action"
	case KindContainer:
		return "container"
	case KindPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// String renders v the way `display` does.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Number)
	case KindText:
		return v.Text
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNull:
		return "nothing"
	case KindList:
		parts := make([]string, len(v.List.Elements))
		for i, e := range v.List.Elements {
			parts[i] = e.displayInner()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := v.Map.Keys()
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+v.Map.Entries[k].displayInner())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindContainer:
		return v.Container.TypeName
	case KindAction:
		return "action " + v.Action.Name
	case KindPattern:
		return "pattern " + v.Pattern.Name
	default:
		return v.KindName()
	}
}

func (v Value) displayInner() string {
	if v.Kind == KindText {
		return strconv.Quote(v.Text)
	}
	return v.String()
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Equal implements WFL's `is equal to` for scalars and for lists
// (element-wise); values of any other kind are never equal, even to
// themselves.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Number == other.Number
	case KindText:
		return v.Text == other.Text
	case KindBool:
		return v.Bool == other.Bool
	case KindNull:
		return true
	case KindList:
		if len(v.List.Elements) != len(other.List.Elements) {
			return false
		}
		for i := range v.List.Elements {
			if !v.List.Elements[i].Equal(other.List.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// RuntimeError is any error raised during evaluation; spec §4.6 "Every
// runtime error carries a message and the (line, column) of the node
// that raised it."
type RuntimeError struct {
	Message string
	Line    int
	Column  int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
