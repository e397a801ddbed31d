// Package ast defines the syntax tree produced by internal/parser.
//
// Grounded on btouchard-gmx/internal/compiler/ast: the Node/Statement/
// Expression interface split and the TokenLiteral() convention are kept;
// every concrete node below is new, replacing GMX's model/service/
// template declarations with WFL's statement and expression set from
// spec §3.
package ast

import "github.com/wflang/wfl/internal/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	TokenLiteral() string
	Pos() token.Position
}

// Statement is a node that appears directly in a block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node: a parsed file's top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) == 0 {
		return ""
	}
	return p.Statements[0].TokenLiteral()
}
func (p *Program) Pos() token.Position {
	if len(p.Statements) == 0 {
		return token.Position{}
	}
	return p.Statements[0].Pos()
}

// Base embeds a token.Token for the common TokenLiteral()/Pos() plumbing.
type Base struct {
	Token token.Token
}

func (b Base) TokenLiteral() string { return b.Token.Literal }
func (b Base) Pos() token.Position  { return b.Token.Pos }

// NewBase constructs a Base from the token that introduces a node.
func NewBase(tok token.Token) Base { return Base{Token: tok} }

// ============ STATEMENTS ============

// VariableDeclaration is `store <name> as <expr>` or
// `create new constant <name> as <expr>` (spec §3, deprecated form).
type VariableDeclaration struct {
	Base
	Name       string
	Value      Expression
	IsConstant bool
	Deprecated bool // true for the `create new constant` spelling
}

func (*VariableDeclaration) statementNode() {}

// Assignment is `change <name> to <expr>`.
type Assignment struct {
	Base
	Name  string
	Value Expression
}

func (*Assignment) statementNode() {}

// DisplayStatement is `display <expr>`.
type DisplayStatement struct {
	Base
	Value Expression
}

func (*DisplayStatement) statementNode() {}

// IfStatement is `check if <cond>: ... otherwise: ... end check`.
type IfStatement struct {
	Base
	Condition   Expression
	Consequence []Statement
	// Alternative holds the `otherwise` branch; OtherwiseIf holds a
	// desugared `otherwise check if` chain as a single nested
	// IfStatement, mutually exclusive with Alternative.
	Alternative []Statement
	OtherwiseIf *IfStatement
}

func (*IfStatement) statementNode() {}

// SingleLineIf is the inline form `if <cond> then <stmt>`.
type SingleLineIf struct {
	Base
	Condition Expression
	Then      Statement
	Else      Statement // nil if absent
}

func (*SingleLineIf) statementNode() {}

// CountLoop is `count from <start> [down] to <end> [by <step>] [as <name>]: ... end count`.
type CountLoop struct {
	Base
	Variable string
	From     Expression
	To       Expression
	By       Expression // nil => 1
	Reversed bool
	Body     []Statement
}

func (*CountLoop) statementNode() {}

// ForEachLoop is `for each <name> in <expr>: ... end for`.
type ForEachLoop struct {
	Base
	Variable   string
	Collection Expression
	Body       []Statement
}

func (*ForEachLoop) statementNode() {}

// RepeatWhileLoop is `repeat while <cond>: ... end repeat`.
type RepeatWhileLoop struct {
	Base
	Condition Expression
	Body      []Statement
}

func (*RepeatWhileLoop) statementNode() {}

// RepeatUntilLoop is `repeat until <cond>: ... end repeat`.
type RepeatUntilLoop struct {
	Base
	Condition Expression
	Body      []Statement
}

func (*RepeatUntilLoop) statementNode() {}

// ForeverLoop is `repeat forever: ... end repeat`.
type ForeverLoop struct {
	Base
	Body []Statement
}

func (*ForeverLoop) statementNode() {}

// MainLoop is `main loop: ... end main loop`, the program's entry block.
type MainLoop struct {
	Base
	Body []Statement
}

func (*MainLoop) statementNode() {}

// Param is one formal parameter of an action, with an optional default.
type Param struct {
	Name    string
	Default Expression // nil if no default
}

// ActionDefinition is `define action called <name> needs <params>
// [return <type>]: ... end action`.
type ActionDefinition struct {
	Base
	Name       string
	Params     []Param
	ReturnType string // "" when the action declares no return type
	Body       []Statement
}

func (*ActionDefinition) statementNode() {}

// ReturnTypeDeclared reports whether this action declared a return
// type, the trigger for the analyzer's inconsistent-return check
// (spec §4.3 ANALYZE-RETURN).
func (a *ActionDefinition) ReturnTypeDeclared() bool { return a.ReturnType != "" }

// ReturnStatement is `give back <expr>` / `return <expr>`.
type ReturnStatement struct {
	Base
	Value Expression // nil for a bare return
}

func (*ReturnStatement) statementNode() {}

// BreakStatement is `break`.
type BreakStatement struct{ Base }

func (*BreakStatement) statementNode() {}

// ContinueStatement is `continue` / `skip`.
type ContinueStatement struct{ Base }

func (*ContinueStatement) statementNode() {}

// ExitStatement terminates the program, optionally with a status.
type ExitStatement struct {
	Base
	Code Expression // nil => 0
}

func (*ExitStatement) statementNode() {}

// TryClause is one `when <cond>: ...` arm of a try statement.
type TryClause struct {
	Condition Expression // nil for a bare `when error`
	Body      []Statement
}

// TryStatement is `try: ... when <cond>: ... otherwise: ... end try`.
type TryStatement struct {
	Base
	Body      []Statement
	Clauses   []TryClause
	Otherwise []Statement
}

func (*TryStatement) statementNode() {}

// PushStatement is `push <expr> to <list>` / `add <expr> to <list>`.
type PushStatement struct {
	Base
	List  Expression
	Value Expression
}

func (*PushStatement) statementNode() {}

// CreateListStatement is `create list <name>: ... end list` or
// `create list <name> as [...]`.
type CreateListStatement struct {
	Base
	Name     string
	Elements []Expression
}

func (*CreateListStatement) statementNode() {}

// MapEntry is one `key: value` pair in a map literal or declaration.
type MapEntry struct {
	Key   string
	Value Expression
}

// CreateMapStatement is `create map <name>: key: value ... end map`.
type CreateMapStatement struct {
	Base
	Name    string
	Entries []MapEntry
}

func (*CreateMapStatement) statementNode() {}

// RemoveFromListStatement is `remove <expr> from <list>`.
type RemoveFromListStatement struct {
	Base
	List  Expression
	Value Expression
}

func (*RemoveFromListStatement) statementNode() {}

// ClearListStatement is `clear <list>`.
type ClearListStatement struct {
	Base
	List Expression
}

func (*ClearListStatement) statementNode() {}

// OpenFileStatement is `open file at <path> as <name>`.
type OpenFileStatement struct {
	Base
	Path Expression
	Name string
}

func (*OpenFileStatement) statementNode() {}

// ReadFileStatement is `read content from <file> as <name>` (or `read
// file at <path> as <name>`, which opens implicitly).
type ReadFileStatement struct {
	Base
	Source Expression
	Name   string
}

func (*ReadFileStatement) statementNode() {}

// WriteFileStatement is `write <expr> to <file>` with append/overwrite mode.
type WriteFileStatement struct {
	Base
	File    Expression
	Content Expression
	Append  bool
}

func (*WriteFileStatement) statementNode() {}

// CloseFileStatement is `close file <name>`.
type CloseFileStatement struct {
	Base
	File Expression
}

func (*CloseFileStatement) statementNode() {}

// CreateDirectoryStatement is `create directory at <path>`.
type CreateDirectoryStatement struct {
	Base
	Path Expression
}

func (*CreateDirectoryStatement) statementNode() {}

// DeleteFileStatement is `delete file at <path>`.
type DeleteFileStatement struct {
	Base
	Path Expression
}

func (*DeleteFileStatement) statementNode() {}

// DeleteDirectoryStatement is `delete directory at <path>`.
type DeleteDirectoryStatement struct {
	Base
	Path Expression
}

func (*DeleteDirectoryStatement) statementNode() {}

// WaitForStatement is `wait for <expr> [as <name>]`, suspending until
// the awaited operation resolves.
type WaitForStatement struct {
	Base
	Value Expression
	Name  string // "" if no binding
}

func (*WaitForStatement) statementNode() {}

// PatternDefinition is `create pattern <name> as "...":`.
type PatternDefinition struct {
	Base
	Name    string
	Pattern Expression
}

func (*PatternDefinition) statementNode() {}

// Property is one field of a container or interface declaration.
type Property struct {
	Name    string
	Default Expression // nil if absent
}

// ContainerDefinition is `create container <name> [implements <ifaces>]:
// ... end container`.
type ContainerDefinition struct {
	Base
	Name       string
	Extends    string
	Implements []string
	Properties []Property
	Statics    []Property
	Actions    []*ActionDefinition
	Events     []*EventDefinition
}

func (*ContainerDefinition) statementNode() {}

// InterfaceDefinition is `create interface <name>: ... end interface`.
type InterfaceDefinition struct {
	Base
	Name       string
	Properties []string
	Actions    []string
}

func (*InterfaceDefinition) statementNode() {}

// EventDefinition is `event <name> [needs <params>]` inside a container.
type EventDefinition struct {
	Base
	Name   string
	Params []Param
}

func (*EventDefinition) statementNode() {}

// TriggerStatement is `trigger <event> [with <args>]`.
type TriggerStatement struct {
	Base
	Event string
	Args  []Expression
}

func (*TriggerStatement) statementNode() {}

// HandlerDefinition is `on <event> of <container> as <name>: ... end on`.
type HandlerDefinition struct {
	Base
	Event     string
	Container string
	Binding   string
	Body      []Statement
}

func (*HandlerDefinition) statementNode() {}

// ExpressionStatement wraps a bare expression used as a statement (e.g.
// a standalone action call).
type ExpressionStatement struct {
	Base
	Expr Expression
}

func (*ExpressionStatement) statementNode() {}

// ============ EXPRESSIONS ============

// Literal wraps a scalar token (number, string, boolean, nothing).
type Literal struct {
	Base
	Value interface{} // int64, float64, string, bool, or nil for `nothing`
}

func (*Literal) expressionNode() {}

// Identifier references a declared name, possibly multi-word.
type Identifier struct {
	Base
	Name string
}

func (*Identifier) expressionNode() {}

// BinaryOperation covers arithmetic, comparison, and logical English
// operator phrases (spec §4.3): "plus", "minus", "times", "divided by",
// "is [not] greater/less than [or equal to]", "is [not] equal to",
// "and", "or", "contains", "matches".
type BinaryOperation struct {
	Base
	Operator string
	Left     Expression
	Right    Expression
}

func (*BinaryOperation) expressionNode() {}

// UnaryOperation covers "not <expr>" and unary "minus <expr>".
type UnaryOperation struct {
	Base
	Operator string
	Operand  Expression
}

func (*UnaryOperation) expressionNode() {}

// Concatenation is a "with"-joined sequence of text expressions.
type Concatenation struct {
	Base
	Parts []Expression
}

func (*Concatenation) expressionNode() {}

// ActionCall is `call <name> [with <args>]` or a bare `<name>(<args>)`.
type ActionCall struct {
	Base
	Name string
	Args []Expression
}

func (*ActionCall) expressionNode() {}

// MethodCall is `<receiver>'s <method> [with <args>]` or
// `<method> of <receiver>`.
type MethodCall struct {
	Base
	Receiver Expression
	Method   string
	Args     []Expression
}

func (*MethodCall) expressionNode() {}

// PropertyAccess is `<receiver>'s <property>`.
type PropertyAccess struct {
	Base
	Receiver Expression
	Property string
}

func (*PropertyAccess) expressionNode() {}

// StaticMemberAccess is `<Container>'s <static member>`.
type StaticMemberAccess struct {
	Base
	Container string
	Member    string
}

func (*StaticMemberAccess) expressionNode() {}

// IndexAccess covers both the 1-based bare-ordinal form (`list 1`) and
// the 0-based bracket form (`list[0]`); Bracket distinguishes
// which convention produced the node (spec Open Question, both kept).
type IndexAccess struct {
	Base
	Collection Expression
	Index      Expression
	Bracket    bool
}

func (*IndexAccess) expressionNode() {}

// ListLiteral is `[e1, e2, ...]`.
type ListLiteral struct {
	Base
	Elements []Expression
}

func (*ListLiteral) expressionNode() {}

// MapLiteral is an inline `{key: value, ...}` map expression.
type MapLiteral struct {
	Base
	Entries []MapEntry
}

func (*MapLiteral) expressionNode() {}

// ContainerInstantiation is `new <Container> [with <args>]`.
type ContainerInstantiation struct {
	Base
	Container string
	Args      []Expression
}

func (*ContainerInstantiation) expressionNode() {}

// ParentMethodCall is `parent.<method> [with <args>]` inside a
// container action, dispatching to the extended container's action.
// The possessive spelling `parent's` is not parsed.
type ParentMethodCall struct {
	Base
	Method string
	Args   []Expression
}

func (*ParentMethodCall) expressionNode() {}

// PatternMatchExpr is `<text> matches <pattern>`.
type PatternMatchExpr struct {
	Base
	Text    Expression
	Pattern Expression
}

func (*PatternMatchExpr) expressionNode() {}

// PatternFindExpr is `find <pattern> in <text>`.
type PatternFindExpr struct {
	Base
	Pattern Expression
	Text    Expression
	All     bool
}

func (*PatternFindExpr) expressionNode() {}

// PatternReplaceExpr is `replace <pattern> with <repl> in <text>`.
type PatternReplaceExpr struct {
	Base
	Pattern     Expression
	Replacement Expression
	Text        Expression
	All         bool
}

func (*PatternReplaceExpr) expressionNode() {}

// PatternSplitExpr is `split <text> on <pattern>`.
type PatternSplitExpr struct {
	Base
	Text    Expression
	Pattern Expression
}

func (*PatternSplitExpr) expressionNode() {}

// StringSplitExpr is `split <text> by <delimiter>` (plain-text split,
// as distinct from pattern-driven PatternSplitExpr).
type StringSplitExpr struct {
	Base
	Text      Expression
	Delimiter Expression
}

func (*StringSplitExpr) expressionNode() {}

// FileExistsExpr is `file at <path> exists`.
type FileExistsExpr struct {
	Base
	Path Expression
}

func (*FileExistsExpr) expressionNode() {}

// DirectoryExistsExpr is `directory at <path> exists`.
type DirectoryExistsExpr struct {
	Base
	Path Expression
}

func (*DirectoryExistsExpr) expressionNode() {}

// ListFilesExpr is `list files in <dir> [recursively] [with extension <ext>]`.
type ListFilesExpr struct {
	Base
	Directory Expression
	Recursive bool
	Extension Expression // nil if unfiltered
}

func (*ListFilesExpr) expressionNode() {}

// ReadContentExpr is `content of <file>` used as an expression.
type ReadContentExpr struct {
	Base
	Source Expression
}

func (*ReadContentExpr) expressionNode() {}

// HeaderAccessExpr is `header <name> of <request/response>`.
type HeaderAccessExpr struct {
	Base
	Target Expression
	Name   Expression
}

func (*HeaderAccessExpr) expressionNode() {}

// CurrentTimeExpr covers `current time in milliseconds` and
// `current time formatted as <fmt>`.
type CurrentTimeExpr struct {
	Base
	Milliseconds bool
	Format       Expression // nil unless Formatted
}

func (*CurrentTimeExpr) expressionNode() {}

// ProcessRunningExpr is `process <id> is running`.
type ProcessRunningExpr struct {
	Base
	Process Expression
}

func (*ProcessRunningExpr) expressionNode() {}

// AwaitExpression is `wait for <expr>` used in expression position.
type AwaitExpression struct {
	Base
	Value Expression
}

func (*AwaitExpression) expressionNode() {}

// ListenStatement is `listen on port <port> [as <name>]` (server setup).
type ListenStatement struct {
	Base
	Port Expression
	Name string
}

func (*ListenStatement) statementNode() {}

// RespondStatement is `respond to <request> with <body> [and status <code>]`.
type RespondStatement struct {
	Base
	Request Expression
	Body    Expression
	Status  Expression // nil => 200
}

func (*RespondStatement) statementNode() {}

// WaitForRequestStatement is `wait for request <name> comes from <server>`,
// the pull-based counterpart to RegisterHandlerStatement: it blocks the
// calling statement until one request is available, then binds it to
// name as a request map (method/path/body/headersJSON/requestId).
type WaitForRequestStatement struct {
	Base
	Server Expression
	Name   string
}

func (*WaitForRequestStatement) statementNode() {}

// RegisterHandlerStatement is `when request comes in on <server>: ... end when`.
type RegisterHandlerStatement struct {
	Base
	Server  Expression
	Request string
	Body    []Statement
}

func (*RegisterHandlerStatement) statementNode() {}

// StopAcceptingStatement is `stop accepting connections on <server>`.
type StopAcceptingStatement struct {
	Base
	Server Expression
}

func (*StopAcceptingStatement) statementNode() {}

// SpawnProcessExpr is `spawn process <cmd> [with arguments <args>]`.
type SpawnProcessExpr struct {
	Base
	Command   Expression
	Arguments Expression // nil if absent, else a list expression
}

func (*SpawnProcessExpr) expressionNode() {}

// KillProcessStatement is `kill process <id>`.
type KillProcessStatement struct {
	Base
	Process Expression
}

func (*KillProcessStatement) statementNode() {}

// LoadModuleStatement is `load module from "<path>"`. The parser emits
// it as an ordinary statement; internal/imports then replaces it with
// the statements of the module it names, so the resolved Program that
// later phases see does not contain it.
type LoadModuleStatement struct {
	Base
	Path string
}

func (*LoadModuleStatement) statementNode() {}
