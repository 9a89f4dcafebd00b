// Package parser implements the recursive-descent parser for lox: token
// stream in, list of statements (or accumulated parse errors) out.
package parser

import (
	"fmt"

	"github.com/loxlang/glox/lang/ast"
	"github.com/loxlang/glox/lang/errors"
	"github.com/loxlang/glox/lang/token"
)

// maxArgs is the limit on call arguments and function parameters.
const maxArgs = 10

// panicMode is the sentinel panic value used to unwind out of a statement
// or declaration after a parse error has already been recorded. It never
// escapes the package: declaration recovers it at the declaration boundary.
type panicModeT struct{}

var panicMode = panicModeT{}

// Parse parses the full token stream into a list of statements. On
// success, err is nil and every variable-bearing expression node is ready
// for the resolver. On failure, err is a non-nil *errors.List of
// *errors.ParseError and stmts may be partial.
func Parse(tokens []token.Token) (stmts []ast.Stmt, err error) {
	p := &parser{tokens: tokens}
	for !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.errs.Sort()
	return stmts, p.errs.Err()
}

type parser struct {
	tokens  []token.Token
	current int
	errs    errors.List
}

func (p *parser) peek() token.Token     { return p.tokens[p.current] }
func (p *parser) previous() token.Token { return p.tokens[p.current-1] }
func (p *parser) atEnd() bool           { return p.peek().Kind == token.EOF }

func (p *parser) check(k token.Kind) bool {
	if p.atEnd() {
		return k == token.EOF
	}
	return p.peek().Kind == k
}

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume requires the current token to be of kind k, advancing past it.
// Otherwise it records a parse error and panics with panicMode, caught at
// the declaration() boundary.
func (p *parser) consume(k token.Kind, msg string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorAt(p.peek(), msg)
	panic(panicMode)
}

func (p *parser) errorAt(tok token.Token, msg string) {
	kind := errors.UnexpectedToken
	var where string
	if tok.Kind == token.EOF {
		kind = errors.UnexpectedEOF
		where = " at end"
	} else {
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	p.errs.Add(&errors.ParseError{Kind: kind, Line: tok.Line, Where: where, Msg: msg})
}

// synchronize discards tokens until it reaches a likely statement
// boundary: past the next ';', or just before a token that starts a new
// declaration.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.peek().Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// declaration parses a single top-level or block-level declaration,
// recovering via synchronize on a parse error so the caller can continue
// collecting diagnostics instead of aborting on the first mistake.
func (p *parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != panicMode {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(token.VAR):
		return p.varDecl()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.CLASS):
		return p.classDecl()
	default:
		return p.statement()
	}
}

func (p *parser) varDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "expect variable name")
	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.expression()
	}
	p.consume(token.SEMICOLON, "expect ';' after variable declaration")
	return &ast.VarStmt{Name: name, Initializer: init}
}

func (p *parser) function(kind string) *ast.FunctionStmt {
	name := p.consume(token.IDENTIFIER, "expect "+kind+" name")
	p.consume(token.LEFT_PAREN, "expect '(' after "+kind+" name")
	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.errs.Add(&errors.ParseError{Kind: errors.TooManyParameters, Line: p.peek().Line,
					Msg: fmt.Sprintf("can't have more than %d parameters", maxArgs)})
			}
			params = append(params, p.consume(token.IDENTIFIER, "expect parameter name"))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "expect ')' after parameters")
	p.consume(token.LEFT_BRACE, "expect '{' before "+kind+" body")
	body := p.block()
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}
}

func (p *parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "expect class name")

	var superclass *ast.VariableExpr
	if p.match(token.LESS) {
		superName := p.consume(token.IDENTIFIER, "expect superclass name")
		superclass = &ast.VariableExpr{Name: superName}
	}

	p.consume(token.LEFT_BRACE, "expect '{' before class body")
	var methods []*ast.FunctionStmt
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		methods = append(methods, p.function("method"))
	}
	p.consume(token.RIGHT_BRACE, "expect '}' after class body")
	return &ast.ClassStmt{Name: name, Superclass: superclass, Methods: methods}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.LEFT_BRACE):
		return &ast.BlockStmt{Stmts: p.block()}
	default:
		return p.exprStmt()
	}
}

func (p *parser) printStmt() ast.Stmt {
	value := p.expression()
	p.consume(token.SEMICOLON, "expect ';' after value")
	return &ast.PrintStmt{Expression: value}
}

func (p *parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "expect ';' after expression")
	return &ast.ExpressionStmt{Expression: expr}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.consume(token.RIGHT_BRACE, "expect '}' after block")
	return stmts
}

func (p *parser) ifStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "expect '(' after 'if'")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after if condition")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *parser) whileStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after while condition")
	body := p.statement()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

// forStmt desugars the C-style for loop into a block wrapping an
// initializer followed by a while loop whose body runs the increment
// after the original body.
func (p *parser) forStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "expect '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		init = nil
	case p.match(token.VAR):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.expression()
	}
	p.consume(token.SEMICOLON, "expect ';' after loop condition")

	var incr ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		incr = p.expression()
	}
	p.consume(token.RIGHT_PAREN, "expect ')' after for clauses")

	body := p.statement()

	if incr != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{body, &ast.ExpressionStmt{Expression: incr}}}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{Value: true}
	}
	body = &ast.WhileStmt{Cond: cond, Body: body}
	if init != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{init, body}}
	}
	return body
}

func (p *parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.consume(token.SEMICOLON, "expect ';' after return value")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

func (p *parser) expression() ast.Expr { return p.assignment() }

func (p *parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{Name: target.Name, Value: value}
		case *ast.GetExpr:
			return &ast.SetExpr{Target: target.Target, Name: target.Name, Value: value}
		default:
			p.errs.Add(&errors.ParseError{Kind: errors.InvalidAssignment, Line: equals.Line,
				Where: " at '='", Msg: "invalid assignment target"})
			return expr
		}
	}
	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.OR) {
		op := p.previous()
		right := p.and()
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BANG_EQUAL, token.EQUAL_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.MINUS, token.PLUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.SLASH, token.STAR) {
		op := p.previous()
		right := p.unary()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return &ast.UnaryExpr{Op: op, Right: right}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "expect property name after '.'")
			expr = &ast.GetExpr{Target: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.errs.Add(&errors.ParseError{Kind: errors.TooManyArguments, Line: p.peek().Line,
					Msg: fmt.Sprintf("can't have more than %d arguments", maxArgs)})
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.consume(token.RIGHT_PAREN, "expect ')' after arguments")
	return &ast.CallExpr{Callee: callee, ClosingParen: paren, Args: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return &ast.LiteralExpr{Value: false}
	case p.match(token.TRUE):
		return &ast.LiteralExpr{Value: true}
	case p.match(token.NIL):
		return &ast.LiteralExpr{Value: nil}
	case p.match(token.NUMBER, token.STRING):
		return &ast.LiteralExpr{Value: p.previous().Literal}
	case p.match(token.THIS):
		return &ast.ThisExpr{Keyword: p.previous()}
	case p.match(token.SUPER):
		keyword := p.previous()
		p.consume(token.DOT, "expect '.' after 'super'")
		method := p.consume(token.IDENTIFIER, "expect superclass method name")
		return &ast.SuperExpr{Keyword: keyword, Method: method}
	case p.match(token.IDENTIFIER):
		return &ast.VariableExpr{Name: p.previous()}
	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.consume(token.RIGHT_PAREN, "expect ')' after expression")
		return &ast.GroupingExpr{Expression: expr}
	default:
		p.errorAt(p.peek(), "expect expression")
		panic(panicMode)
	}
}
