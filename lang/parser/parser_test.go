package parser_test

import (
	"testing"

	"github.com/loxlang/glox/lang/ast"
	"github.com/loxlang/glox/lang/errors"
	"github.com/loxlang/glox/lang/parser"
	"github.com/loxlang/glox/lang/scanner"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks, err := scanner.Scan(src)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)
	return stmts
}

func TestParseVarDeclAndExpression(t *testing.T) {
	stmts := parse(t, `var a = 1 + 2 * 3;`)
	require.Len(t, stmts, 1)
	v, ok := stmts[0].(*ast.VarStmt)
	require.True(t, ok)
	require.Equal(t, "a", v.Name.Lexeme)
	bin, ok := v.Initializer.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, 1.0, bin.Left.(*ast.LiteralExpr).Value)
}

func TestParseAssignmentTarget(t *testing.T) {
	stmts := parse(t, `a = 1; a.b = 2;`)
	require.Len(t, stmts, 2)
	_, ok := stmts[0].(*ast.ExpressionStmt).Expression.(*ast.AssignExpr)
	require.True(t, ok)
	set, ok := stmts[1].(*ast.ExpressionStmt).Expression.(*ast.SetExpr)
	require.True(t, ok)
	require.Equal(t, "b", set.Name.Lexeme)
}

func TestParseInvalidAssignmentTargetReportsError(t *testing.T) {
	toks, err := scanner.Scan(`1 = 2;`)
	require.NoError(t, err)
	_, err = parser.Parse(toks)
	require.Error(t, err)
}

func TestParseIfWhile(t *testing.T) {
	stmts := parse(t, `if (a) print 1; else print 2;`)
	_, ok := stmts[0].(*ast.IfStmt)
	require.True(t, ok)

	stmts = parse(t, `while (a) print 1;`)
	_, ok = stmts[0].(*ast.WhileStmt)
	require.True(t, ok)
}

func TestParseForDesugarsToWhileInBlock(t *testing.T) {
	stmts := parse(t, `for (var i = 0; i < 10; i = i + 1) print i;`)
	require.Len(t, stmts, 1)
	outer, ok := stmts[0].(*ast.BlockStmt)
	require.True(t, ok)
	require.Len(t, outer.Stmts, 2)
	_, ok = outer.Stmts[0].(*ast.VarStmt)
	require.True(t, ok)
	whileStmt, ok := outer.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	body, ok := whileStmt.Body.(*ast.BlockStmt)
	require.True(t, ok)
	require.Len(t, body.Stmts, 2)
}

func TestParseFunctionDeclaration(t *testing.T) {
	stmts := parse(t, `fun add(a, b) { return a + b; }`)
	fn, ok := stmts[0].(*ast.FunctionStmt)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name.Lexeme)
	require.Len(t, fn.Params, 2)
	require.Len(t, fn.Body, 1)
}

func TestParseClassWithSuperclassAndMethods(t *testing.T) {
	stmts := parse(t, `class Cake < Pastry { bake() { return nil; } }`)
	cls, ok := stmts[0].(*ast.ClassStmt)
	require.True(t, ok)
	require.Equal(t, "Cake", cls.Name.Lexeme)
	require.NotNil(t, cls.Superclass)
	require.Equal(t, "Pastry", cls.Superclass.Name.Lexeme)
	require.Len(t, cls.Methods, 1)
}

func TestParseThisAndSuperExpressions(t *testing.T) {
	stmts := parse(t, `class A < B { m() { this.x = super.m(); } }`)
	cls := stmts[0].(*ast.ClassStmt)
	body := cls.Methods[0].Body
	set := body[0].(*ast.ExpressionStmt).Expression.(*ast.SetExpr)
	_, ok := set.Target.(*ast.ThisExpr)
	require.True(t, ok)
	call, ok := set.Value.(*ast.CallExpr)
	require.True(t, ok)
	_, ok = call.Callee.(*ast.SuperExpr)
	require.True(t, ok)
}

func TestParseCallWithTooManyArgumentsReportsError(t *testing.T) {
	args := ""
	for i := 0; i < 11; i++ {
		if i > 0 {
			args += ", "
		}
		args += "1"
	}
	toks, err := scanner.Scan(`f(` + args + `);`)
	require.NoError(t, err)
	_, err = parser.Parse(toks)
	require.Error(t, err)
}

func TestParseUnexpectedTokenRecoversAndReportsMultipleErrors(t *testing.T) {
	toks, err := scanner.Scan("var ; var ;")
	require.NoError(t, err)
	_, err = parser.Parse(toks)
	require.Error(t, err)
	require.Len(t, err.(*errors.List).Errs(), 2)
}

func TestParseLogicalOperators(t *testing.T) {
	stmts := parse(t, `print a and b or c;`)
	pr, ok := stmts[0].(*ast.PrintStmt)
	require.True(t, ok)
	logical, ok := pr.Expression.(*ast.LogicalExpr)
	require.True(t, ok)
	require.Equal(t, "or", logical.Op.Lexeme)
}
