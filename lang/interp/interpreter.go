// Package interp walks a resolved lox syntax tree and evaluates it
// directly, without compiling to any intermediate form.
package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/loxlang/glox/lang/ast"
	"github.com/loxlang/glox/lang/errors"
	"github.com/loxlang/glox/lang/token"
)

// Interpreter holds the state of a single lox program run: the global
// scope and whichever scope is currently executing. Reusing an
// Interpreter across Interpret calls (as the REPL does) keeps global
// variables and function/class declarations alive between lines.
type Interpreter struct {
	Globals *Environment
	env     *Environment
	out     io.Writer
}

// New creates an interpreter that writes print statement output to out.
func New(out io.Writer) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	globals := NewEnvironment(nil)
	defineGlobals(globals)
	return &Interpreter{Globals: globals, env: globals, out: out}
}

// Interpret executes stmts in order. It returns the first
// *errors.RuntimeError encountered, after which execution of the program
// stops -- a runtime error halts evaluation, unlike scan or parse errors.
// ctx is checked between top-level statements so the CLI can cancel a
// long-running script or REPL line on Ctrl-C; it introduces no
// guest-visible suspension points.
func (i *Interpreter) Interpret(ctx context.Context, stmts []ast.Stmt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rte, ok := r.(*errors.RuntimeError); ok {
				err = rte
				return
			}
			panic(r)
		}
	}()

	for _, s := range stmts {
		if ctx.Err() != nil {
			return nil
		}
		if e := i.execute(s); e != nil {
			return e
		}
	}
	return nil
}

func (i *Interpreter) execute(stmt ast.Stmt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rte, ok := r.(*errors.RuntimeError); ok {
				err = rte
				return
			}
			panic(r)
		}
	}()

	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		i.eval(s.Expression)
	case *ast.PrintStmt:
		fmt.Fprintln(i.out, i.eval(s.Expression).String())
	case *ast.VarStmt:
		v := Value(NilValue)
		if s.Initializer != nil {
			v = i.eval(s.Initializer)
		}
		i.env.Define(s.Name.Lexeme, v)
	case *ast.BlockStmt:
		return i.executeBlock(s.Stmts, NewEnvironment(i.env))
	case *ast.IfStmt:
		if isTruthy(i.eval(s.Cond)) {
			return i.execute(s.Then)
		} else if s.Else != nil {
			return i.execute(s.Else)
		}
	case *ast.WhileStmt:
		for isTruthy(i.eval(s.Cond)) {
			if err := i.execute(s.Body); err != nil {
				return err
			}
		}
	case *ast.FunctionStmt:
		fn := &Function{Decl: s, Closure: i.env}
		i.env.Define(s.Name.Lexeme, fn)
	case *ast.ReturnStmt:
		v := Value(NilValue)
		if s.Value != nil {
			v = i.eval(s.Value)
		}
		panic(returnSignal{value: v})
	case *ast.ClassStmt:
		i.executeClass(s)
	default:
		panic(fmt.Sprintf("interp: unhandled statement type %T", stmt))
	}
	return nil
}

func (i *Interpreter) executeClass(s *ast.ClassStmt) {
	var super *Class
	if s.Superclass != nil {
		v := i.eval(s.Superclass)
		sc, ok := v.(*Class)
		if !ok {
			panic(&errors.RuntimeError{Kind: errors.InvalidSuperclass, Line: s.Superclass.Name.Line,
				Msg: "superclass must be a class"})
		}
		super = sc
	}

	i.env.Define(s.Name.Lexeme, NilValue)

	env := i.env
	if s.Superclass != nil {
		env = NewEnvironment(i.env)
		env.Define("super", super)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &Function{Decl: m, Closure: env, IsInitializer: m.Name.Lexeme == "init"}
	}

	class := &Class{Name: s.Name.Lexeme, Superclass: super, Methods: methods}
	i.env.Assign(s.Name.Lexeme, class)
}

// executeBlock runs stmts against env, restoring the interpreter's
// previous scope (even on early return via panic) when it's done.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

// eval evaluates expr. Runtime errors are signalled by panicking with an
// *errors.RuntimeError, mirroring the parser's internal use of panic for
// control flow; Interpret and execute are the only places that recover
// it.
func (i *Interpreter) eval(expr ast.Expr) Value {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return fromLiteral(e.Value)
	case *ast.GroupingExpr:
		return i.eval(e.Expression)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.VariableExpr:
		return i.lookUpVariable(e.Name, e.Distance)
	case *ast.AssignExpr:
		v := i.eval(e.Value)
		if e.Distance != nil {
			i.env.AssignAt(*e.Distance, e.Name.Lexeme, v)
		} else if !i.Globals.Assign(e.Name.Lexeme, v) {
			panic(&errors.RuntimeError{Kind: errors.UndefinedVariable, Line: e.Name.Line, Name: e.Name.Lexeme,
				Msg: fmt.Sprintf("undefined variable '%s'", e.Name.Lexeme)})
		}
		return v
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.GetExpr:
		target := i.eval(e.Target)
		instance, ok := target.(*Instance)
		if !ok {
			panic(&errors.RuntimeError{Kind: errors.InvalidGetTarget, Line: e.Name.Line,
				Msg: "only instances have properties"})
		}
		v, err := instance.Get(e.Name.Lexeme, e.Name.Line)
		if err != nil {
			panic(err)
		}
		return v
	case *ast.SetExpr:
		target := i.eval(e.Target)
		instance, ok := target.(*Instance)
		if !ok {
			panic(&errors.RuntimeError{Kind: errors.InvalidSetTarget, Line: e.Name.Line,
				Msg: "only instances have fields"})
		}
		v := i.eval(e.Value)
		instance.Set(e.Name.Lexeme, v)
		return v
	case *ast.ThisExpr:
		return i.lookUpVariable(e.Keyword, e.Distance)
	case *ast.SuperExpr:
		return i.evalSuper(e)
	default:
		panic(fmt.Sprintf("interp: unhandled expression type %T", expr))
	}
}

func (i *Interpreter) lookUpVariable(name token.Token, distance *int) Value {
	if distance != nil {
		return i.env.GetAt(*distance, name.Lexeme)
	}
	if v, ok := i.Globals.Get(name.Lexeme); ok {
		return v
	}
	panic(&errors.RuntimeError{Kind: errors.UndefinedVariable, Line: name.Line, Name: name.Lexeme,
		Msg: fmt.Sprintf("undefined variable '%s'", name.Lexeme)})
}

func (i *Interpreter) evalLogical(e *ast.LogicalExpr) Value {
	left := i.eval(e.Left)
	if e.Op.Kind == token.OR {
		if isTruthy(left) {
			return left
		}
	} else if !isTruthy(left) {
		return left
	}
	return i.eval(e.Right)
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) Value {
	right := i.eval(e.Right)
	switch e.Op.Kind {
	case token.MINUS:
		return Number(-i.number(e.Op, right))
	case token.BANG:
		return Bool(!isTruthy(right))
	}
	panic(fmt.Sprintf("interp: unhandled unary operator %s", e.Op.Kind))
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) Value {
	left := i.eval(e.Left)
	right := i.eval(e.Right)

	switch e.Op.Kind {
	case token.MINUS:
		return Number(i.number(e.Op, left) - i.number(e.Op, right))
	case token.SLASH:
		r := i.number(e.Op, right)
		if r == 0 {
			panic(&errors.RuntimeError{Kind: errors.DivisionByZero, Line: e.Op.Line, Msg: "division by zero"})
		}
		return Number(i.number(e.Op, left) / r)
	case token.STAR:
		return Number(i.number(e.Op, left) * i.number(e.Op, right))
	case token.PLUS:
		return i.add(e.Op, left, right)
	case token.GREATER:
		return Bool(i.number(e.Op, left) > i.number(e.Op, right))
	case token.GREATER_EQUAL:
		return Bool(i.number(e.Op, left) >= i.number(e.Op, right))
	case token.LESS:
		return Bool(i.number(e.Op, left) < i.number(e.Op, right))
	case token.LESS_EQUAL:
		return Bool(i.number(e.Op, left) <= i.number(e.Op, right))
	case token.BANG_EQUAL:
		return Bool(!isEqual(left, right))
	case token.EQUAL_EQUAL:
		return Bool(isEqual(left, right))
	}
	panic(fmt.Sprintf("interp: unhandled binary operator %s", e.Op.Kind))
}

func (i *Interpreter) add(op token.Token, left, right Value) Value {
	if lf, ok := left.(Number); ok {
		if rf, ok := right.(Number); ok {
			return lf + rf
		}
	}
	if ls, ok := left.(String); ok {
		if rs, ok := right.(String); ok {
			return ls + rs
		}
	}
	panic(&errors.RuntimeError{Kind: errors.TypeMismatch, Line: op.Line,
		Msg: "operands must be two numbers or two strings"})
}

func (i *Interpreter) number(op token.Token, v Value) float64 {
	f, ok := v.(Number)
	if !ok {
		panic(&errors.RuntimeError{Kind: errors.TypeMismatch, Line: op.Line, Msg: "operand must be a number"})
	}
	return float64(f)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) Value {
	callee := i.eval(e.Callee)

	fn, ok := callee.(Callable)
	if !ok {
		panic(&errors.RuntimeError{Kind: errors.CallOnNonCallable, Line: e.ClosingParen.Line,
			Msg: "can only call functions and classes"})
	}

	args := make([]Value, len(e.Args))
	for idx, a := range e.Args {
		args[idx] = i.eval(a)
	}

	if len(args) != fn.Arity() {
		panic(&errors.RuntimeError{Kind: errors.ArityMismatch, Line: e.ClosingParen.Line,
			Expected: fn.Arity(), Got: len(args),
			Msg: fmt.Sprintf("expected %d arguments but got %d", fn.Arity(), len(args))})
	}

	result, err := fn.Call(i, args)
	if err != nil {
		panic(err)
	}
	return result
}

func (i *Interpreter) evalSuper(e *ast.SuperExpr) Value {
	distance := *e.Distance
	super := i.env.GetAt(distance, "super").(*Class)
	this := i.env.GetAt(distance-1, "this").(*Instance)

	method, ok := super.FindMethod(e.Method.Lexeme)
	if !ok {
		panic(&errors.RuntimeError{Kind: errors.UndefinedProperty, Line: e.Method.Line, Name: e.Method.Lexeme,
			Msg: fmt.Sprintf("undefined property '%s'", e.Method.Lexeme)})
	}
	return method.Bind(this)
}
