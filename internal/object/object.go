package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"slang/internal/ast"
)

const (
	STRING_OBJ  = "STRING"
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	BOOLEAN_OBJ = "BOOLEAN"

	FUNCTION_OBJ = "FUNCTION"
	NATIVE_OBJ   = "NATIVE"

	RECORD_OBJ     = "RECORD"
	RECORD_REF_OBJ = "RECORD_REF"

	NOTHING_OBJ      = "NOTHING"
	RETURN_VALUE_OBJ = "RETURN_VALUE"
	ERROR_OBJ        = "ERROR"
)

var (
	TRUE    = &Boolean{Value: true}
	FALSE   = &Boolean{Value: false}
	NOTHING = &Nothing{}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Pointer is a handle into the heap's slot arena. Handles are never reused,
// so a freed slot's handle simply stops resolving instead of dangling.
type Pointer uint64

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Integer struct {
	Value int32
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(int64(i.Value), 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

// Function is a user-defined function. It deliberately carries no captured
// environment: calls are rooted at the global scope, so functions do not
// close over the locals of their definition site.
type Function struct {
	Name       string
	Parameters []string
	Body       *ast.BlockStatement
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	var out bytes.Buffer

	out.WriteString("fu ")
	out.WriteString(f.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(f.Parameters, ", "))
	out.WriteString(") {\n")
	out.WriteString(f.Body.String())
	out.WriteString("\n}")

	return out.String()
}

// NativeFunction receives fully evaluated arguments and returns a result
// value, NOTHING, or an *Error.
type NativeFunction func(args ...Object) Object

type Native struct {
	Name string
	Fn   NativeFunction
}

func (n *Native) Type() ObjectType { return NATIVE_OBJ }
func (n *Native) Inspect() string  { return "native " + n.Name + "() { <builtin> }" }

// Record is an inline record value: the transient result of evaluating a
// record literal. It becomes heap-resident (a RecordRef) the first time it
// is stored in a variable, field, or argument slot.
type Record struct {
	Fields map[string]Object
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string  { return inspectFields(r.Fields) }

// RecordRef is a shareable handle to a heap-resident record. Copying the
// handle does not copy the record.
type RecordRef struct {
	Pointer Pointer
}

func (rr *RecordRef) Type() ObjectType { return RECORD_REF_OBJ }
func (rr *RecordRef) Inspect() string  { return fmt.Sprintf("<record #%d>", rr.Pointer) }

// Nothing is the result of a call that returned no value. It cannot be used
// in a position that requires a value.
type Nothing struct{}

func (n *Nothing) Type() ObjectType { return NOTHING_OBJ }
func (n *Nothing) Inspect() string  { return "<nothing>" }

// ReturnValue propagates a return upward through enclosing blocks to the
// nearest call boundary. A nil Value models `return;`.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string {
	if rv.Value == nil {
		return "<return>"
	}
	return rv.Value.Inspect()
}

func inspectFields(fields map[string]Object) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name].Inspect())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
