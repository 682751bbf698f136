package parser

import (
	"fmt"
	"strings"
	"testing"

	"slang/internal/ast"
	"slang/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()

	p := New(lexer.New(input), input)
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()

	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input              string
		expectedIdentifier string
		expectedValue      interface{}
	}{
		{"let x = 5;", "x", 5},
		{"let y = true;", "y", true},
		{"let foobar = y;", "foobar", "y"},
		{"let pi = 3.14;", "pi", 3.14},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)

		if len(program.Statements) != 1 {
			t.Fatalf("program.Statements does not contain 1 statements. got=%d",
				len(program.Statements))
		}

		stmt, ok := program.Statements[0].(*ast.LetStatement)
		if !ok {
			t.Fatalf("program.Statements[0] is not *ast.LetStatement. got=%T",
				program.Statements[0])
		}
		if stmt.Name.Value != tt.expectedIdentifier {
			t.Errorf("stmt.Name.Value not '%s'. got=%s", tt.expectedIdentifier, stmt.Name.Value)
		}
		if !testLiteralExpression(t, stmt.Value, tt.expectedValue) {
			return
		}
	}
}

func TestUninitialisedLetStatement(t *testing.T) {
	program := parseProgram(t, "let x;")

	stmt, ok := program.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not *ast.LetStatement. got=%T",
			program.Statements[0])
	}
	if stmt.Value != nil {
		t.Fatalf("stmt.Value is not nil. got=%v", stmt.Value)
	}
}

func TestFunctionStatement(t *testing.T) {
	program := parseProgram(t, "fu add(x, y) { return x + y; }")

	stmt, ok := program.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not *ast.FunctionStatement. got=%T",
			program.Statements[0])
	}
	if stmt.Name.Value != "add" {
		t.Errorf("function name not 'add'. got=%s", stmt.Name.Value)
	}
	if len(stmt.Parameters) != 2 {
		t.Fatalf("wrong number of parameters. expected=2, got=%d", len(stmt.Parameters))
	}
	if stmt.Parameters[0].Value != "x" || stmt.Parameters[1].Value != "y" {
		t.Errorf("parameters wrong. got=%s, %s", stmt.Parameters[0].Value, stmt.Parameters[1].Value)
	}
	if len(stmt.Body.Statements) != 1 {
		t.Fatalf("body does not contain 1 statements. got=%d", len(stmt.Body.Statements))
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		input         string
		expectedValue interface{}
	}{
		{"return 5;", 5},
		{"return true;", true},
		{"return x;", "x"},
		{"return;", nil},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)

		stmt, ok := program.Statements[0].(*ast.ReturnStatement)
		if !ok {
			t.Fatalf("program.Statements[0] is not *ast.ReturnStatement. got=%T",
				program.Statements[0])
		}
		if tt.expectedValue == nil {
			if stmt.ReturnValue != nil {
				t.Fatalf("bare return carries a value. got=%v", stmt.ReturnValue)
			}
			continue
		}
		if !testLiteralExpression(t, stmt.ReturnValue, tt.expectedValue) {
			return
		}
	}
}

func TestIfElseChain(t *testing.T) {
	input := `if x < 1 { a; } else if x < 2 { b; } else { c; }`
	program := parseProgram(t, input)

	stmt, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not *ast.IfStatement. got=%T",
			program.Statements[0])
	}

	elseIf, ok := stmt.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("stmt.Alternative is not *ast.IfStatement. got=%T", stmt.Alternative)
	}
	if _, ok := elseIf.Alternative.(*ast.BlockStatement); !ok {
		t.Fatalf("elseIf.Alternative is not *ast.BlockStatement. got=%T", elseIf.Alternative)
	}
}

func TestWhileStatement(t *testing.T) {
	program := parseProgram(t, "while x < 3 { x = x + 1; }")

	stmt, ok := program.Statements[0].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not *ast.WhileStatement. got=%T",
			program.Statements[0])
	}
	if stmt.Condition.String() != "(x < 3)" {
		t.Errorf("condition wrong. got=%q", stmt.Condition.String())
	}
	if len(stmt.Body.Statements) != 1 {
		t.Fatalf("body does not contain 1 statements. got=%d", len(stmt.Body.Statements))
	}
}

func TestRecordLiteral(t *testing.T) {
	program := parseProgram(t, "let r = { n: 1, next: { n: 2 } };")

	stmt := program.Statements[0].(*ast.LetStatement)
	lit, ok := stmt.Value.(*ast.RecordLiteral)
	if !ok {
		t.Fatalf("stmt.Value is not *ast.RecordLiteral. got=%T", stmt.Value)
	}
	if len(lit.Fields) != 2 {
		t.Fatalf("wrong number of fields. expected=2, got=%d", len(lit.Fields))
	}
	if lit.Fields[0].Name != "n" || lit.Fields[1].Name != "next" {
		t.Errorf("field names wrong. got=%s, %s", lit.Fields[0].Name, lit.Fields[1].Name)
	}
	if _, ok := lit.Fields[1].Value.(*ast.RecordLiteral); !ok {
		t.Errorf("nested field is not *ast.RecordLiteral. got=%T", lit.Fields[1].Value)
	}
}

func TestAssignmentTargets(t *testing.T) {
	program := parseProgram(t, "x = 1; r.n = 2;")

	first, ok := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression)
	if !ok {
		t.Fatalf("first expression is not *ast.AssignExpression. got=%T",
			program.Statements[0].(*ast.ExpressionStatement).Expression)
	}
	if first.Name.Value != "x" {
		t.Errorf("assignment target not 'x'. got=%s", first.Name.Value)
	}

	second, ok := program.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.SetFieldExpression)
	if !ok {
		t.Fatalf("second expression is not *ast.SetFieldExpression. got=%T",
			program.Statements[1].(*ast.ExpressionStatement).Expression)
	}
	if second.Field != "n" {
		t.Errorf("field target not 'n'. got=%s", second.Field)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	p := New(lexer.New("1 = 2;"), "1 = 2;")
	p.ParseProgram()

	if len(p.Errors()) == 0 {
		t.Fatalf("expected parser error for invalid assignment target, got none")
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b;", "((-a) * b);"},
		{"!true;", "(!true);"},
		{"a + b + c;", "((a + b) + c);"},
		{"a + b * c;", "(a + (b * c));"},
		{"a + b / c;", "(a + (b / c));"},
		{"5 < 4 != 3 > 4;", "((5 < 4) != (3 > 4));"},
		{"3 + 4 * 5 == 3 * 1 + 4 * 5;", "((3 + (4 * 5)) == ((3 * 1) + (4 * 5)));"},
		{"2 ^ 3 ^ 2;", "(2 ^ (3 ^ 2));"},
		{"-2 ^ 2;", "(-(2 ^ 2));"},
		{"a & b | c;", "((a & b) | c);"},
		{"a < b && c > d;", "((a < b) && (c > d));"},
		{"a == b || c != d;", "((a == b) || (c != d));"},
		{"a ? b : c;", "(a ? b : c);"},
		{"a ? b : c ? d : e;", "(a ? b : (c ? d : e));"},
		{"x = y = 1;", "(x = (y = 1));"},
		{"(a + b) * c;", "((a + b) * c);"},
		{"add(a, b * c);", "add(a, (b * c));"},
		{"r.f + 1;", "((r.f) + 1);"},
		{"f(x).g;", "(f(x).g);"},
		{"a <= b >= c;", "((a <= b) >= c);"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)

		actual := program.String()
		if actual != tt.expected {
			t.Errorf("expected=%q, got=%q", tt.expected, actual)
		}
	}
}

func TestIntegerLiteralOutOfRange(t *testing.T) {
	input := "let x = 4294967296;"
	p := New(lexer.New(input), input)
	p.ParseProgram()

	if len(p.Errors()) == 0 {
		t.Fatalf("expected parser error for out-of-range integer, got none")
	}
}

func TestParserErrorsCarryContextLines(t *testing.T) {
	input := "let a = 1;\nlet x = ;"
	p := New(lexer.New(input), input)
	p.ParseProgram()

	if len(p.Errors()) == 0 {
		t.Fatalf("expected a parser error, got none")
	}

	msg := p.Errors()[0]
	if !strings.Contains(msg, "let x = ;") {
		t.Errorf("error does not show the offending line. got=%q", msg)
	}
	if !strings.Contains(msg, "^ here") {
		t.Errorf("error does not point at the offending column. got=%q", msg)
	}
}

func TestMissingSemicolonReported(t *testing.T) {
	input := "let x = 5"
	p := New(lexer.New(input), input)
	p.ParseProgram()

	if len(p.Errors()) == 0 {
		t.Fatalf("expected parser error for missing semicolon, got none")
	}
}

func testLiteralExpression(t *testing.T, exp ast.Expression, expected interface{}) bool {
	t.Helper()

	switch v := expected.(type) {
	case int:
		return testIntegerLiteral(t, exp, int32(v))
	case float64:
		return testFloatLiteral(t, exp, v)
	case string:
		return testIdentifier(t, exp, v)
	case bool:
		return testBooleanLiteral(t, exp, v)
	}
	t.Errorf("type of exp not handled. got=%T", exp)
	return false
}

func testIntegerLiteral(t *testing.T, il ast.Expression, value int32) bool {
	integ, ok := il.(*ast.IntegerLiteral)
	if !ok {
		t.Errorf("il not *ast.IntegerLiteral. got=%T", il)
		return false
	}
	if integ.Value != value {
		t.Errorf("integ.Value not %d. got=%d", value, integ.Value)
		return false
	}
	if integ.TokenLiteral() != fmt.Sprintf("%d", value) {
		t.Errorf("integ.TokenLiteral not %d. got=%s", value, integ.TokenLiteral())
		return false
	}
	return true
}

func testFloatLiteral(t *testing.T, fl ast.Expression, value float64) bool {
	float, ok := fl.(*ast.FloatLiteral)
	if !ok {
		t.Errorf("fl not *ast.FloatLiteral. got=%T", fl)
		return false
	}
	if float.Value != value {
		t.Errorf("float.Value not %v. got=%v", value, float.Value)
		return false
	}
	return true
}

func testIdentifier(t *testing.T, exp ast.Expression, value string) bool {
	ident, ok := exp.(*ast.Identifier)
	if !ok {
		t.Errorf("exp not *ast.Identifier. got=%T", exp)
		return false
	}
	if ident.Value != value {
		t.Errorf("ident.Value not %s. got=%s", value, ident.Value)
		return false
	}
	return true
}

func testBooleanLiteral(t *testing.T, exp ast.Expression, value bool) bool {
	bo, ok := exp.(*ast.Boolean)
	if !ok {
		t.Errorf("exp not *ast.Boolean. got=%T", exp)
		return false
	}
	if bo.Value != value {
		t.Errorf("bo.Value not %t. got=%t", value, bo.Value)
		return false
	}
	return true
}
