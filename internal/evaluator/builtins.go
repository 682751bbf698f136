package evaluator

import (
	"fmt"
	"strings"

	"slang/internal/object"
)

// registerNatives pre-defines the builtin functions in the global
// environment. Natives receive fully evaluated arguments and never touch
// the heap strategy.
func (e *Evaluator) registerNatives() {
	global := e.stack.Global()

	global.Define("print", &object.Native{Name: "print", Fn: e.nativePrint})
	global.Define("format", &object.Native{Name: "format", Fn: nativeFormat})
}

// nativePrint writes its arguments' display forms, space-separated, followed
// by a newline. It produces no value.
func (e *Evaluator) nativePrint(args ...object.Object) object.Object {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, arg.Inspect())
	}
	fmt.Fprintln(e.out, strings.Join(parts, " "))
	return object.NOTHING
}

// nativeFormat substitutes each `{}` placeholder in the template with the
// next argument's display form. Placeholders beyond the argument list are
// left untouched.
func nativeFormat(args ...object.Object) object.Object {
	if len(args) == 0 {
		return object.NewError(object.IncorrectArgumentCount,
			"wrong number of arguments to `format`: expected at least 1, got=0")
	}

	template, ok := args[0].(*object.String)
	if !ok {
		return object.NewError(object.InvalidBinaryOperation,
			"first argument to `format` must be a %s, got %s", object.STRING_OBJ, args[0].Type())
	}

	out := template.Value
	for _, arg := range args[1:] {
		if !strings.Contains(out, "{}") {
			break
		}
		out = strings.Replace(out, "{}", arg.Inspect(), 1)
	}
	return &object.String{Value: out}
}
