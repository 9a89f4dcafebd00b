package interp

import (
	"fmt"
	"strconv"

	"github.com/dolthub/swiss"
	"github.com/loxlang/glox/lang/ast"
	"github.com/loxlang/glox/lang/errors"
)

// Value is the interface implemented by every value a lox expression can
// evaluate to, the same two-method shape the teacher's machine.Value
// uses: a display form and a short type name for diagnostics.
type Value interface {
	String() string
	Type() string
}

// Callable is implemented by any value that can appear as the callee of
// a call expression: user-defined functions, bound methods, classes
// (calling a class constructs an instance), and native functions.
type Callable interface {
	Value
	Arity() int
	Call(i *Interpreter, args []Value) (Value, *errors.RuntimeError)
}

// Nil is the lox nil value. There is exactly one: NilValue.
type Nil struct{}

// NilValue is the single instance of Nil.
var NilValue = Nil{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// Bool is a lox boolean.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// Number is lox's single numeric type: a 64-bit float.
type Number float64

func (n Number) String() string { return FormatNumber(float64(n)) }
func (Number) Type() string     { return "number" }

// String is a lox string.
type String string

func (s String) String() string { return string(s) }
func (String) Type() string     { return "string" }

// FormatNumber prints a lox number the way the language this was
// distilled from does: the shortest decimal representation that
// round-trips, which drops the fractional part entirely for integral
// values (4, not 4.0) without any separate trimming step.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// fromLiteral converts a raw literal value produced by the scanner/parser
// (float64, string, bool, or nil) into its Value wrapper.
func fromLiteral(v any) Value {
	switch x := v.(type) {
	case nil:
		return NilValue
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case string:
		return String(x)
	default:
		panic(fmt.Sprintf("interp: unexpected literal type %T", v))
	}
}

// isTruthy implements lox's truthiness rule: nil and false are falsy,
// everything else -- including 0 and the empty string -- is truthy.
func isTruthy(v Value) bool {
	switch x := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(x)
	default:
		return true
	}
}

// isEqual implements lox's "==": values of different Go types are never
// equal, and there is no implicit numeric/string coercion.
func isEqual(a, b Value) bool {
	return a == b
}

// Function is a user-defined function or method. It closes over the
// environment active at the point it was declared, which is what gives
// lox closures and nested functions their lexical scoping.
type Function struct {
	Decl          *ast.FunctionStmt
	Closure       *Environment
	IsInitializer bool
}

var _ Callable = (*Function)(nil)

func (f *Function) Arity() int { return len(f.Decl.Params) }

func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Decl.Name.Lexeme) }
func (f *Function) Type() string   { return "function" }

// Call runs the function body in a fresh scope, enclosed by the closure
// environment, with parameters bound to args.
func (f *Function) Call(i *Interpreter, args []Value) (result Value, rerr *errors.RuntimeError) {
	env := NewEnvironment(f.Closure)
	for idx, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	defer func() {
		if r := recover(); r != nil {
			ret, ok := r.(returnSignal)
			if !ok {
				panic(r)
			}
			if f.IsInitializer {
				result = f.Closure.GetAt(0, "this")
				return
			}
			result = ret.value
		}
	}()

	if err := i.executeBlock(f.Decl.Body, env); err != nil {
		return NilValue, err.(*errors.RuntimeError)
	}
	if f.IsInitializer {
		return f.Closure.GetAt(0, "this"), nil
	}
	return NilValue, nil
}

// Bind returns a copy of the method bound to instance, i.e. a function
// whose closure has "this" defined one scope outside of its own body's
// scope.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

// returnSignal is panicked by a return statement and recovered by the
// nearest enclosing Function.Call, the idiomatic way to unwind a
// tree-walking interpreter's Go call stack without plumbing a sentinel
// value through every statement executor.
type returnSignal struct{ value Value }

// Class is a lox class: a constructor, a method table, and an optional
// superclass to fall back to for methods it doesn't define itself. The
// method table is a plain Go map: it's built once, at class-declaration
// time, and never grows afterward, so it has none of the bulk-insert
// story that motivates the swiss map used for Environment and Instance.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

var _ Callable = (*Class)(nil)

func (c *Class) String() string { return c.Name }
func (c *Class) Type() string   { return "class" }

// FindMethod looks up name on the class, falling back to the
// superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Arity is the arity of "init", or 0 if the class declares none (in
// which case calling the class just allocates a zero-initialized
// instance).
func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call constructs a new Instance of the class, running its "init" method
// (if any) against args.
func (c *Class) Call(i *Interpreter, args []Value) (Value, *errors.RuntimeError) {
	instance := NewInstance(c)
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(instance).Call(i, args); err != nil {
			return NilValue, err
		}
	}
	return instance, nil
}

// Instance is a runtime instance of a Class: a class pointer plus its own
// field table, checked before the class's methods on every property
// access.
type Instance struct {
	Class  *Class
	fields *swiss.Map[string, Value]
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, fields: swiss.NewMap[string, Value](4)}
}

func (in *Instance) String() string { return in.Class.Name + " instance" }
func (in *Instance) Type() string   { return "instance" }

// Get reads a field first, then a method bound to this instance. It
// reports a RuntimeError of kind UndefinedProperty if neither exists.
func (in *Instance) Get(name string, line int) (Value, *errors.RuntimeError) {
	if v, ok := in.fields.Get(name); ok {
		return v, nil
	}
	if m, ok := in.Class.FindMethod(name); ok {
		return m.Bind(in), nil
	}
	return nil, &errors.RuntimeError{Kind: errors.UndefinedProperty, Line: line, Name: name,
		Msg: fmt.Sprintf("undefined property '%s'", name)}
}

// Set writes a field directly onto the instance. Lox instances are open:
// any field name may be assigned regardless of whether the class
// declares it.
func (in *Instance) Set(name string, value Value) {
	in.fields.Put(name, value)
}
