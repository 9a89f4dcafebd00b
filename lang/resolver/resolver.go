// Package resolver performs a single static pass over a parsed program,
// annotating every variable-bearing expression node with the number of
// environment hops ("distance") between the scope it's used in and the
// scope it's declared in. The interpreter uses that distance to look a
// variable up directly instead of walking the environment chain name by
// name at every reference.
//
// A resolve error halts before any interpretation of the program begins.
// The resolver only runs on a program that scanned and parsed without
// errors.
package resolver

import (
	"github.com/loxlang/glox/lang/ast"
	"github.com/loxlang/glox/lang/errors"
	"github.com/loxlang/glox/lang/token"
)

// scope maps a name declared in it to whether its initializer has
// finished running. A name present but false is "declared but not yet
// defined", which lets the resolver catch `var a = a;`.
type scope map[string]bool

type functionKind int

const (
	noFunction functionKind = iota
	inFunction
	inMethod
	inInitializer
)

type classKind int

const (
	noClass classKind = iota
	inClass
	inSubclass
)

// Resolve walks stmts and fills in the Distance field of every
// VariableExpr, AssignExpr, ThisExpr and SuperExpr node it finds. It
// returns a non-nil *errors.List of *errors.ResolveError if the program
// violates a static scoping rule.
//
// The top level has no scope pushed around it: declare/define/
// resolveLocal are no-ops/misses against an empty scope stack, so every
// top-level name resolves to a nil Distance (global) rather than a
// local slot, and redeclaring a global is legal shadowing rather than
// DuplicateDeclarationInScope.
func Resolve(stmts []ast.Stmt) error {
	r := &resolver{}
	r.resolveStmts(stmts)
	return r.errs.Err()
}

type resolver struct {
	scopes  []scope
	errs    errors.List
	fnKind  functionKind
	clsKind classKind
}

func (r *resolver) beginScope() { r.scopes = append(r.scopes, scope{}) }
func (r *resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	sc := r.scopes[len(r.scopes)-1]
	if _, ok := sc[name.Lexeme]; ok {
		r.errs.Add(&errors.ResolveError{Kind: errors.DuplicateDeclarationInScope, Line: name.Line,
			Where: " at '" + name.Lexeme + "'", Msg: "already a variable with this name in this scope"})
	}
	sc[name.Lexeme] = false
}

func (r *resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal searches the scope stack from innermost outward and, if
// name is found, records the hop count in distance.
func (r *resolver) resolveLocal(name token.Token, distance **int) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			d := len(r.scopes) - 1 - i
			*distance = &d
			return
		}
	}
	// not found in any scope: treat as global, Distance stays nil.
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		r.resolveExpr(s.Expression)
	case *ast.PrintStmt:
		r.resolveExpr(s.Expression)
	case *ast.VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *ast.IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Body)
	case *ast.FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, inFunction)
	case *ast.ReturnStmt:
		if r.fnKind == noFunction {
			r.errs.Add(&errors.ResolveError{Kind: errors.ReturnFromTopLevel, Line: s.Keyword.Line,
				Msg: "can't return from top-level code"})
		}
		if s.Value != nil {
			if r.fnKind == inInitializer {
				r.errs.Add(&errors.ResolveError{Kind: errors.ReturnValueFromInitializer, Line: s.Keyword.Line,
					Msg: "can't return a value from an initializer"})
			}
			r.resolveExpr(s.Value)
		}
	case *ast.ClassStmt:
		r.resolveClass(s)
	}
}

func (r *resolver) resolveClass(s *ast.ClassStmt) {
	enclosingClass := r.clsKind
	r.clsKind = inClass

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		r.clsKind = inSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, m := range s.Methods {
		kind := inMethod
		if m.Name.Lexeme == "init" {
			kind = inInitializer
		}
		r.resolveFunction(m, kind)
	}

	r.endScope()

	if s.Superclass != nil {
		r.endScope()
	}

	r.clsKind = enclosingClass
}

func (r *resolver) resolveFunction(fn *ast.FunctionStmt, kind functionKind) {
	enclosingFn := r.fnKind
	r.fnKind = kind

	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(fn.Body)
	r.endScope()

	r.fnKind = enclosingFn
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		// nothing to resolve
	case *ast.GroupingExpr:
		r.resolveExpr(e.Expression)
	case *ast.UnaryExpr:
		r.resolveExpr(e.Right)
	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.errs.Add(&errors.ResolveError{Kind: errors.VariableUsedInOwnInitializer, Line: e.Name.Line,
					Where: " at '" + e.Name.Lexeme + "'", Msg: "can't read local variable in its own initializer"})
			}
		}
		var d *int
		r.resolveLocal(e.Name, &d)
		e.Distance = d
	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		var d *int
		r.resolveLocal(e.Name, &d)
		e.Distance = d
	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
	case *ast.GetExpr:
		r.resolveExpr(e.Target)
	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Target)
	case *ast.ThisExpr:
		if r.clsKind == noClass {
			r.errs.Add(&errors.ResolveError{Kind: errors.ThisOutsideClass, Line: e.Keyword.Line,
				Msg: "can't use 'this' outside of a class"})
			return
		}
		var d *int
		r.resolveLocal(e.Keyword, &d)
		e.Distance = d
	case *ast.SuperExpr:
		switch r.clsKind {
		case noClass:
			r.errs.Add(&errors.ResolveError{Kind: errors.SuperOutsideClass, Line: e.Keyword.Line,
				Msg: "can't use 'super' outside of a class"})
		case inClass:
			r.errs.Add(&errors.ResolveError{Kind: errors.SuperWithoutSuperclass, Line: e.Keyword.Line,
				Msg: "can't use 'super' in a class with no superclass"})
		}
		var d *int
		r.resolveLocal(e.Keyword, &d)
		e.Distance = d
	}
}
