package interp

import (
	"time"

	"github.com/loxlang/glox/lang/errors"
)

// nativeFunction wraps a Go function as a Callable, the same shape the
// language's only builtin, clock, and any future host functions take.
type nativeFunction struct {
	name  string
	arity int
	fn    func(i *Interpreter, args []Value) (Value, *errors.RuntimeError)
}

var _ Callable = (*nativeFunction)(nil)

func (n *nativeFunction) Arity() int       { return n.arity }
func (n *nativeFunction) String() string   { return "<native fn>" }
func (n *nativeFunction) Type() string     { return "function" }
func (n *nativeFunction) Call(i *Interpreter, args []Value) (Value, *errors.RuntimeError) {
	return n.fn(i, args)
}

// defineGlobals installs the builtins available to every program.
func defineGlobals(env *Environment) {
	env.Define("clock", &nativeFunction{
		name:  "clock",
		arity: 0,
		fn: func(*Interpreter, []Value) (Value, *errors.RuntimeError) {
			return Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
		},
	})
}
