// Package evaluator walks the AST and executes it against a shared call
// stack and heap. Every store site (declaration, assignment, field write,
// argument binding, return) feeds the active heap strategy, which is the
// whole point of the exercise: the same programs run under naive,
// reference-counted, and tracing reclamation.
package evaluator

import (
	"io"
	"math"

	"slang/internal/ast"
	"slang/internal/heap"
	"slang/internal/object"
	"slang/internal/stats"
)

// Per-statement diagnostics bindings, re-defined in the innermost scope
// before every statement so programs can observe their own memory behaviour.
const (
	stackFramesCount = "STACK_FRAMES_COUNT"
	heapObjectsCount = "HEAP_OBJECTS_COUNT"
)

type Evaluator struct {
	stack    *object.Stack
	heap     heap.Strategy
	recorder *stats.Recorder
	out      io.Writer

	// inFlight holds call results that have been retained across their
	// originating frame's pop but are not yet stored anywhere persistent.
	// The list is released at the next top-level statement boundary;
	// releasing earlier is unsafe because a sibling argument expression may
	// still be waiting to be bound.
	inFlight []*object.RecordRef
}

// New wires an evaluator to one heap strategy for its whole lifetime. The
// recorder may be nil; out receives the output of `print`.
func New(strategy heap.Strategy, out io.Writer, recorder *stats.Recorder) *Evaluator {
	e := &Evaluator{
		stack:    object.NewStack(),
		heap:     strategy,
		recorder: recorder,
		out:      out,
	}
	e.registerNatives()
	return e
}

func (e *Evaluator) Stack() *object.Stack { return e.stack }
func (e *Evaluator) Heap() heap.Strategy  { return e.heap }

func (e *Evaluator) Eval(node ast.Node) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalProgram(node)

	case *ast.BlockStatement:
		return e.evalBlockStatement(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.LetStatement:
		return e.evalLetStatement(node)

	case *ast.FunctionStatement:
		return e.evalFunctionStatement(node)

	case *ast.ReturnStatement:
		return e.evalReturnStatement(node)

	case *ast.IfStatement:
		return e.evalIfStatement(node)

	case *ast.WhileStatement:
		return e.evalWhileStatement(node)

	// Expressions
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &object.Float{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.RecordLiteral:
		return e.evalRecordLiteral(node)

	case *ast.Identifier:
		return e.evalIdentifier(node)

	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node)

	case *ast.InfixExpression:
		return e.evalInfixExpression(node)

	case *ast.TernaryExpression:
		return e.evalTernaryExpression(node)

	case *ast.AssignExpression:
		return e.evalAssignExpression(node)

	case *ast.GetFieldExpression:
		return e.evalGetFieldExpression(node)

	case *ast.SetFieldExpression:
		return e.evalSetFieldExpression(node)

	case *ast.CallExpression:
		return e.evalCallExpression(node)
	}

	return nil
}

// evalProgram runs top-level statements strictly in order. Function
// definitions are hoisted inside blocks only, so a top-level call above its
// definition fails with an undefined target.
func (e *Evaluator) evalProgram(program *ast.Program) object.Object {
	var result object.Object
	for _, statement := range program.Statements {
		result = e.evalStatement(statement)

		switch result := result.(type) {
		case *object.Error:
			return result
		case *object.ReturnValue:
			if result.Value == nil {
				return object.NOTHING
			}
			return result.Value
		}

		e.flushInFlight()
	}
	return result
}

// evalStatement surrounds one statement with the diagnostics protocol: the
// magic bindings are refreshed before it runs and a sample is recorded
// after.
func (e *Evaluator) evalStatement(statement ast.Statement) object.Object {
	top := e.stack.Top()
	e.heap.OnBind(top.Define(stackFramesCount, &object.Integer{Value: int32(e.stack.FramesCount())}), nil)
	e.heap.OnBind(top.Define(heapObjectsCount, &object.Integer{Value: int32(e.heap.Len())}), nil)

	result := e.Eval(statement)

	if e.recorder != nil {
		e.recorder.Record(e.heap.Len(), e.stack.FramesCount())
	}
	return result
}

func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement) object.Object {
	scope := e.stack.EnterScope()
	e.hoistFunctions(block.Statements)

	var result object.Object
	for _, statement := range block.Statements {
		if _, ok := statement.(*ast.FunctionStatement); ok {
			continue
		}

		result = e.evalStatement(statement)

		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				break
			}
		}
	}

	e.releaseScope(scope)
	e.stack.ExitScope()
	e.heap.Collect(e.collectRoots())

	return result
}

// hoistFunctions defines every `fu` statement of a block before the block's
// other statements run.
func (e *Evaluator) hoistFunctions(statements []ast.Statement) {
	for _, statement := range statements {
		if fn, ok := statement.(*ast.FunctionStatement); ok {
			e.evalFunctionStatement(fn)
		}
	}
}

func (e *Evaluator) evalLetStatement(node *ast.LetStatement) object.Object {
	if node.Value == nil {
		e.heap.OnBind(e.stack.Top().Define(node.Name.Value, nil), nil)
		return nil
	}

	val := e.Eval(node.Value)
	if object.IsError(val) {
		return val
	}
	if err := requireValue(val); err != nil {
		return err
	}

	stored, allocated := e.prepareStore(val)
	previous := e.stack.Top().Define(node.Name.Value, stored)
	e.bindStored(previous, stored, allocated)
	return nil
}

func (e *Evaluator) evalFunctionStatement(node *ast.FunctionStatement) object.Object {
	params := make([]string, 0, len(node.Parameters))
	for _, p := range node.Parameters {
		params = append(params, p.Value)
	}

	fn := &object.Function{Name: node.Name.Value, Parameters: params, Body: node.Body}
	e.heap.OnBind(e.stack.Top().Define(node.Name.Value, fn), nil)
	return nil
}

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement) object.Object {
	if node.ReturnValue == nil {
		return &object.ReturnValue{Value: nil}
	}

	val := e.Eval(node.ReturnValue)
	if object.IsError(val) {
		return val
	}
	if err := requireValue(val); err != nil {
		return err
	}

	return &object.ReturnValue{Value: e.retainInFlight(val)}
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement) object.Object {
	condition := e.Eval(node.Condition)
	if object.IsError(condition) {
		return condition
	}

	boolean, ok := condition.(*object.Boolean)
	if !ok {
		return object.NewError(object.NonBooleanControlFlowCondition,
			"if-statement condition must be a boolean, got %s", typeOf(condition))
	}

	if boolean.Value {
		return e.Eval(node.Consequence)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative)
	}
	return nil
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement) object.Object {
	for {
		condition := e.Eval(node.Condition)
		if object.IsError(condition) {
			return condition
		}

		boolean, ok := condition.(*object.Boolean)
		if !ok {
			return object.NewError(object.NonBooleanControlFlowCondition,
				"while-loop condition must be a boolean, got %s", typeOf(condition))
		}
		if !boolean.Value {
			return nil
		}

		result := e.Eval(node.Body)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
}

// evalRecordLiteral builds an inline record. Field expressions are evaluated
// eagerly, in source order; the record stays off-heap until a store site
// promotes it.
func (e *Evaluator) evalRecordLiteral(node *ast.RecordLiteral) object.Object {
	fields := make(map[string]object.Object, len(node.Fields))
	for _, field := range node.Fields {
		val := e.Eval(field.Value)
		if object.IsError(val) {
			return val
		}
		if err := requireValue(val); err != nil {
			return err
		}
		fields[field.Name] = val
	}
	return &object.Record{Fields: fields}
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier) object.Object {
	val, err := e.stack.Top().Get(node.Value)
	if err != nil {
		return err
	}
	return val
}

func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression) object.Object {
	val := e.Eval(node.Value)
	if object.IsError(val) {
		return val
	}
	if err := requireValue(val); err != nil {
		return err
	}

	stored, allocated := e.prepareStore(val)
	previous, err := e.stack.Top().Assign(node.Name.Value, stored)
	if err != nil {
		return err
	}
	e.bindStored(previous, stored, allocated)
	return stored
}

func (e *Evaluator) evalGetFieldExpression(node *ast.GetFieldExpression) object.Object {
	receiver := e.Eval(node.Object)
	if object.IsError(receiver) {
		return receiver
	}

	fields, err := e.recordFields(receiver, node.Field)
	if err != nil {
		return err
	}

	val, ok := fields[node.Field]
	if !ok {
		return object.NewError(object.UndefinedField, "record has no field `%s`", node.Field)
	}
	return val
}

// evalSetFieldExpression mutates a heap-resident record in place. The
// receiver must already be a RecordRef: mutation has to be visible to every
// alias, which an inline record cannot provide.
func (e *Evaluator) evalSetFieldExpression(node *ast.SetFieldExpression) object.Object {
	receiver := e.Eval(node.Object)
	if object.IsError(receiver) {
		return receiver
	}

	ref, ok := receiver.(*object.RecordRef)
	if !ok {
		return object.NewError(object.AttemptToAccessNonObject,
			"cannot set field `%s` on value of type %s", node.Field, typeOf(receiver))
	}
	slot, ok := e.heap.Lookup(ref.Pointer)
	if !ok {
		return object.NewError(object.AttemptToAccessNonObject,
			"cannot set field `%s`: record #%d is no longer live", node.Field, ref.Pointer)
	}

	val := e.Eval(node.Value)
	if object.IsError(val) {
		return val
	}
	if err := requireValue(val); err != nil {
		return err
	}

	stored, allocated := e.prepareStore(val)
	previous := slot.Fields[node.Field]
	slot.Fields[node.Field] = stored
	e.bindStored(previous, stored, allocated)
	return stored
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression) object.Object {
	callee := e.Eval(node.Function)
	if object.IsError(callee) {
		return callee
	}

	// Argument evaluation errors propagate; a failed argument aborts the
	// call rather than being silently omitted.
	args := make([]object.Object, 0, len(node.Arguments))
	for _, argument := range node.Arguments {
		val := e.Eval(argument)
		if object.IsError(val) {
			return val
		}
		if err := requireValue(val); err != nil {
			return err
		}
		args = append(args, val)
	}

	switch callee := callee.(type) {
	case *object.Native:
		return callee.Fn(args...)
	case *object.Function:
		return e.applyFunction(callee, args)
	default:
		return object.NewError(object.AttemptToCallNonFunction,
			"cannot call value of type %s", typeOf(callee))
	}
}

// applyFunction runs a user-defined function in a fresh frame parented at
// the global environment. Arguments go through the store-site protocol like
// any other binding; the frame's bindings are released before the frame is
// popped.
func (e *Evaluator) applyFunction(fn *object.Function, args []object.Object) object.Object {
	if len(args) != len(fn.Parameters) {
		return object.NewError(object.IncorrectArgumentCount,
			"wrong number of arguments to `%s`: expected=%d, got=%d",
			fn.Name, len(fn.Parameters), len(args))
	}

	frame := e.stack.PushFrame()
	for i, name := range fn.Parameters {
		stored, allocated := e.prepareStore(args[i])
		previous := frame.Define(name, stored)
		e.bindStored(previous, stored, allocated)
	}

	result := e.Eval(fn.Body)

	e.releaseScope(frame)
	e.stack.PopFrame()
	e.heap.Collect(e.collectRoots())

	switch result := result.(type) {
	case *object.Error:
		return result
	case *object.ReturnValue:
		if result.Value == nil {
			return object.NOTHING
		}
		return result.Value
	}
	return object.NOTHING
}

func (e *Evaluator) evalTernaryExpression(node *ast.TernaryExpression) object.Object {
	condition := e.Eval(node.Condition)
	if object.IsError(condition) {
		return condition
	}

	boolean, ok := condition.(*object.Boolean)
	if !ok {
		return object.NewError(object.NonBooleanControlFlowCondition,
			"ternary condition must be a boolean, got %s", typeOf(condition))
	}

	if boolean.Value {
		return e.Eval(node.Left)
	}
	return e.Eval(node.Right)
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression) object.Object {
	right := e.Eval(node.Right)
	if object.IsError(right) {
		return right
	}
	if err := requireValue(right); err != nil {
		return err
	}

	switch node.Operator {
	case "!":
		if boolean, ok := right.(*object.Boolean); ok {
			return nativeBoolToBooleanObject(!boolean.Value)
		}
	case "-":
		switch right := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -right.Value}
		case *object.Float:
			return &object.Float{Value: -right.Value}
		}
	}

	return object.NewError(object.InvalidUnaryOperation,
		"invalid unary operation: %s%s", node.Operator, typeOf(right))
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression) object.Object {
	left := e.Eval(node.Left)
	if object.IsError(left) {
		return left
	}
	if err := requireValue(left); err != nil {
		return err
	}

	// Logical operators short-circuit; the right operand may not run.
	if node.Operator == "&&" || node.Operator == "||" {
		return e.evalLogicalExpression(node, left)
	}

	right := e.Eval(node.Right)
	if object.IsError(right) {
		return right
	}
	if err := requireValue(right); err != nil {
		return err
	}

	switch left := left.(type) {
	case *object.Integer:
		if right, ok := right.(*object.Integer); ok {
			return evalIntegerInfix(node.Operator, left, right)
		}
	case *object.Float:
		if right, ok := right.(*object.Float); ok {
			return evalFloatInfix(node.Operator, left, right)
		}
	case *object.String:
		if right, ok := right.(*object.String); ok {
			return evalStringInfix(node.Operator, left, right)
		}
	case *object.Boolean:
		if right, ok := right.(*object.Boolean); ok {
			switch node.Operator {
			case "==":
				return nativeBoolToBooleanObject(left.Value == right.Value)
			case "!=":
				return nativeBoolToBooleanObject(left.Value != right.Value)
			}
		}
	case *object.RecordRef:
		if right, ok := right.(*object.RecordRef); ok {
			switch node.Operator {
			case "==":
				return nativeBoolToBooleanObject(left.Pointer == right.Pointer)
			case "!=":
				return nativeBoolToBooleanObject(left.Pointer != right.Pointer)
			}
		}
	}

	return object.NewError(object.InvalidBinaryOperation,
		"invalid binary operation: %s %s %s", typeOf(left), node.Operator, typeOf(right))
}

func (e *Evaluator) evalLogicalExpression(node *ast.InfixExpression, left object.Object) object.Object {
	boolean, ok := left.(*object.Boolean)
	if !ok {
		return object.NewError(object.InvalidBinaryOperation,
			"invalid binary operation: %s %s requires boolean operands", typeOf(left), node.Operator)
	}

	if node.Operator == "&&" && !boolean.Value {
		return object.FALSE
	}
	if node.Operator == "||" && boolean.Value {
		return object.TRUE
	}

	right := e.Eval(node.Right)
	if object.IsError(right) {
		return right
	}
	if err := requireValue(right); err != nil {
		return err
	}
	rb, ok := right.(*object.Boolean)
	if !ok {
		return object.NewError(object.InvalidBinaryOperation,
			"invalid binary operation: %s %s %s", typeOf(left), node.Operator, typeOf(right))
	}
	return nativeBoolToBooleanObject(rb.Value)
}

func evalIntegerInfix(operator string, left, right *object.Integer) object.Object {
	switch operator {
	case "+":
		return &object.Integer{Value: left.Value + right.Value}
	case "-":
		return &object.Integer{Value: left.Value - right.Value}
	case "*":
		return &object.Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return object.NewError(object.DivisionByZero, "division by zero")
		}
		return &object.Integer{Value: left.Value / right.Value}
	case "^":
		if right.Value < 0 {
			return object.NewError(object.InvalidBinaryOperation,
				"invalid binary operation: integer exponent must not be negative, got %d", right.Value)
		}
		return &object.Integer{Value: ipow(left.Value, right.Value)}
	case "&":
		return &object.Integer{Value: left.Value & right.Value}
	case "|":
		return &object.Integer{Value: left.Value | right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return object.NewError(object.InvalidBinaryOperation,
		"invalid binary operation: %s %s %s", object.INTEGER_OBJ, operator, object.INTEGER_OBJ)
}

func evalFloatInfix(operator string, left, right *object.Float) object.Object {
	switch operator {
	case "+":
		return &object.Float{Value: left.Value + right.Value}
	case "-":
		return &object.Float{Value: left.Value - right.Value}
	case "*":
		return &object.Float{Value: left.Value * right.Value}
	case "/":
		// Not IEEE infinity: dividing by zero is an error on this path too.
		if right.Value == 0 {
			return object.NewError(object.DivisionByZero, "division by zero")
		}
		return &object.Float{Value: left.Value / right.Value}
	case "^":
		return &object.Float{Value: math.Pow(left.Value, right.Value)}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return object.NewError(object.InvalidBinaryOperation,
		"invalid binary operation: %s %s %s", object.FLOAT_OBJ, operator, object.FLOAT_OBJ)
}

func evalStringInfix(operator string, left, right *object.String) object.Object {
	switch operator {
	case "+":
		return &object.String{Value: left.Value + right.Value}
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return object.NewError(object.InvalidBinaryOperation,
		"invalid binary operation: %s %s %s", object.STRING_OBJ, operator, object.STRING_OBJ)
}

func ipow(base, exp int32) int32 {
	var result int32 = 1
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

// prepareStore implements the promotion half of the store-site protocol: an
// inline record becomes heap-resident exactly here, at its first persistent
// store. allocated reports whether this store created the slot, in which
// case the allocation's initial count already covers the new ownership edge.
func (e *Evaluator) prepareStore(val object.Object) (stored object.Object, allocated bool) {
	if record, ok := val.(*object.Record); ok {
		return &object.RecordRef{Pointer: e.heap.Allocate(record.Fields)}, true
	}
	return val, false
}

// bindStored implements the accounting half: release the slot's previous
// occupant, and retain the new value unless the allocation already did.
func (e *Evaluator) bindStored(previous, stored object.Object, allocated bool) {
	if allocated {
		e.heap.OnBind(previous, nil)
		return
	}
	e.heap.OnBind(previous, stored)
}

// retainInFlight keeps a value alive across the scope and frame pops between
// its `return` and whatever finally stores it. Inline records are promoted
// here because their own fields may hold heap references that scope release
// is about to drop.
func (e *Evaluator) retainInFlight(val object.Object) object.Object {
	switch val := val.(type) {
	case *object.Record:
		ref := &object.RecordRef{Pointer: e.heap.Allocate(val.Fields)}
		e.inFlight = append(e.inFlight, ref)
		return ref
	case *object.RecordRef:
		e.heap.OnBind(nil, val)
		e.inFlight = append(e.inFlight, val)
		return val
	}
	return val
}

// flushInFlight releases every retained call result. Only called at
// top-level statement boundaries, where no expression can still be holding
// an unbound temporary.
func (e *Evaluator) flushInFlight() {
	if len(e.inFlight) == 0 {
		return
	}
	for _, ref := range e.inFlight {
		e.heap.OnBind(ref, nil)
	}
	e.inFlight = e.inFlight[:0]
	e.heap.Collect(e.collectRoots())
}

// releaseScope hands every binding of a dying scope back to the strategy.
// This must run before the scope is popped: the strategy reads the bindings'
// current values.
func (e *Evaluator) releaseScope(scope *object.Environment) {
	for _, val := range scope.LocalValues() {
		e.heap.OnBind(val, nil)
	}
}

// collectRoots is the union of every stack frame's roots plus the retained
// in-flight call results.
func (e *Evaluator) collectRoots() []object.Pointer {
	roots := e.stack.Roots()
	for _, ref := range e.inFlight {
		roots = append(roots, ref.Pointer)
	}
	return roots
}

// recordFields resolves a field-read receiver to its field table. Inline
// records are readable before promotion; anything else is not a record.
func (e *Evaluator) recordFields(receiver object.Object, field string) (map[string]object.Object, *object.Error) {
	switch receiver := receiver.(type) {
	case *object.Record:
		return receiver.Fields, nil
	case *object.RecordRef:
		slot, ok := e.heap.Lookup(receiver.Pointer)
		if !ok {
			return nil, object.NewError(object.AttemptToAccessNonObject,
				"cannot access field `%s`: record #%d is no longer live", field, receiver.Pointer)
		}
		return slot.Fields, nil
	}
	return nil, object.NewError(object.AttemptToAccessNonObject,
		"cannot access field `%s` on value of type %s", field, typeOf(receiver))
}

// requireValue rejects the result of a call that produced no value in a
// position that needs one.
func requireValue(val object.Object) *object.Error {
	if _, ok := val.(*object.Nothing); ok {
		return object.NewError(object.AttemptToUseNothing,
			"call produced no value but one is required here")
	}
	return nil
}

func typeOf(obj object.Object) object.ObjectType {
	if obj == nil {
		return object.NOTHING_OBJ
	}
	return obj.Type()
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return object.TRUE
	}
	return object.FALSE
}
