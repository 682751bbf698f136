package object

import "fmt"

// ErrorKind classifies evaluation failures so the driver and tests can match
// on the failure class without parsing messages.
type ErrorKind string

const (
	// Binding errors
	UndefinedTarget           ErrorKind = "UndefinedTarget"
	UninitialisedTarget       ErrorKind = "UninitialisedTarget"
	UndefinedAssignmentTarget ErrorKind = "UndefinedAssignmentTarget"

	// Type errors
	NonBooleanControlFlowCondition ErrorKind = "NonBooleanControlFlowCondition"
	InvalidBinaryOperation         ErrorKind = "InvalidBinaryOperation"
	InvalidUnaryOperation          ErrorKind = "InvalidUnaryOperation"
	AttemptToCallNonFunction       ErrorKind = "AttemptToCallNonFunction"
	AttemptToAccessNonObject       ErrorKind = "AttemptToAccessNonObject"
	UndefinedField                 ErrorKind = "UndefinedField"

	// Arithmetic errors
	DivisionByZero ErrorKind = "DivisionByZero"

	// Arity errors
	IncorrectArgumentCount ErrorKind = "IncorrectArgumentCount"

	// Control-flow misuse
	AttemptToUseNothing ErrorKind = "AttemptToUseNothing"
)

// Error aborts evaluation of the current top-level statement and propagates
// to the driver. There is no user-level catch construct.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return string(e.Kind) + ": " + e.Message }

func NewError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func IsError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}
