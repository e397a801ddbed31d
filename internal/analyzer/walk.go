package analyzer

import "github.com/wflang/wfl/internal/ast"

// subexpressions returns the expressions held directly by s (not
// recursing into nested statement blocks, which the caller's own
// scope-aware recursion handles). A SingleLineIf's Then/Else branches
// are themselves statements; callers that need to see into them recurse
// into Then/Else themselves.
func subexpressions(s ast.Statement) []ast.Expression {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		return []ast.Expression{n.Value}
	case *ast.Assignment:
		return []ast.Expression{n.Value}
	case *ast.DisplayStatement:
		return []ast.Expression{n.Value}
	case *ast.IfStatement:
		return []ast.Expression{n.Condition}
	case *ast.SingleLineIf:
		return []ast.Expression{n.Condition}
	case *ast.CountLoop:
		return []ast.Expression{n.From, n.To, n.By}
	case *ast.ForEachLoop:
		return []ast.Expression{n.Collection}
	case *ast.RepeatWhileLoop:
		return []ast.Expression{n.Condition}
	case *ast.RepeatUntilLoop:
		return []ast.Expression{n.Condition}
	case *ast.ReturnStatement:
		return []ast.Expression{n.Value}
	case *ast.ExitStatement:
		return []ast.Expression{n.Code}
	case *ast.PushStatement:
		return []ast.Expression{n.List, n.Value}
	case *ast.CreateListStatement:
		return n.Elements
	case *ast.CreateMapStatement:
		out := make([]ast.Expression, 0, len(n.Entries))
		for _, e := range n.Entries {
			out = append(out, e.Value)
		}
		return out
	case *ast.RemoveFromListStatement:
		return []ast.Expression{n.List, n.Value}
	case *ast.ClearListStatement:
		return []ast.Expression{n.List}
	case *ast.OpenFileStatement:
		return []ast.Expression{n.Path}
	case *ast.ReadFileStatement:
		return []ast.Expression{n.Source}
	case *ast.WriteFileStatement:
		return []ast.Expression{n.File, n.Content}
	case *ast.CloseFileStatement:
		return []ast.Expression{n.File}
	case *ast.CreateDirectoryStatement:
		return []ast.Expression{n.Path}
	case *ast.DeleteFileStatement:
		return []ast.Expression{n.Path}
	case *ast.DeleteDirectoryStatement:
		return []ast.Expression{n.Path}
	case *ast.WaitForStatement:
		return []ast.Expression{n.Value}
	case *ast.PatternDefinition:
		return []ast.Expression{n.Pattern}
	case *ast.TriggerStatement:
		return n.Args
	case *ast.ListenStatement:
		return []ast.Expression{n.Port}
	case *ast.RespondStatement:
		return []ast.Expression{n.Request, n.Body, n.Status}
	case *ast.RegisterHandlerStatement:
		return []ast.Expression{n.Server}
	case *ast.WaitForRequestStatement:
		return []ast.Expression{n.Server}
	case *ast.StopAcceptingStatement:
		return []ast.Expression{n.Server}
	case *ast.KillProcessStatement:
		return []ast.Expression{n.Process}
	case *ast.ExpressionStatement:
		return []ast.Expression{n.Expr}
	default:
		return nil
	}
}

// childExpressions returns the immediate sub-expressions of e, used to
// recurse a full expression tree when marking identifier usage or
// checking nested calls.
func childExpressions(e ast.Expression) []ast.Expression {
	switch n := e.(type) {
	case *ast.BinaryOperation:
		return []ast.Expression{n.Left, n.Right}
	case *ast.UnaryOperation:
		return []ast.Expression{n.Operand}
	case *ast.Concatenation:
		return n.Parts
	case *ast.ActionCall:
		return n.Args
	case *ast.MethodCall:
		return append([]ast.Expression{n.Receiver}, n.Args...)
	case *ast.PropertyAccess:
		return []ast.Expression{n.Receiver}
	case *ast.IndexAccess:
		return []ast.Expression{n.Collection, n.Index}
	case *ast.ListLiteral:
		return n.Elements
	case *ast.MapLiteral:
		out := make([]ast.Expression, 0, len(n.Entries))
		for _, en := range n.Entries {
			out = append(out, en.Value)
		}
		return out
	case *ast.ContainerInstantiation:
		return n.Args
	case *ast.ParentMethodCall:
		return n.Args
	case *ast.PatternMatchExpr:
		return []ast.Expression{n.Text, n.Pattern}
	case *ast.PatternFindExpr:
		return []ast.Expression{n.Pattern, n.Text}
	case *ast.PatternReplaceExpr:
		return []ast.Expression{n.Pattern, n.Replacement, n.Text}
	case *ast.PatternSplitExpr:
		return []ast.Expression{n.Text, n.Pattern}
	case *ast.StringSplitExpr:
		return []ast.Expression{n.Text, n.Delimiter}
	case *ast.FileExistsExpr:
		return []ast.Expression{n.Path}
	case *ast.DirectoryExistsExpr:
		return []ast.Expression{n.Path}
	case *ast.ListFilesExpr:
		return []ast.Expression{n.Directory, n.Extension}
	case *ast.ReadContentExpr:
		return []ast.Expression{n.Source}
	case *ast.HeaderAccessExpr:
		return []ast.Expression{n.Target, n.Name}
	case *ast.CurrentTimeExpr:
		return []ast.Expression{n.Format}
	case *ast.ProcessRunningExpr:
		return []ast.Expression{n.Process}
	case *ast.AwaitExpression:
		return []ast.Expression{n.Value}
	case *ast.SpawnProcessExpr:
		return []ast.Expression{n.Command, n.Arguments}
	default:
		return nil
	}
}
