package lexer

import (
	"testing"

	"slang/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let pi = 3.14;

fu add(x, y) {
	return x + y;
}

let result = add(five, 10);
!- / * ^ 5;
5 < 10 > 5;
5 <= 10 >= 5;

if a == b {
	return true;
} else {
	return false;
}
// comment
10 != 9; // trailing comment
true && false;
true || false;
10 & 9;
10 | 9;
a ? 1 : 2;
let r = { n: 1 };
r.n;
while x < 3 { x = x + 1; }
"foo bar"
"tab\there"
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INTEGER, "5"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "pi"},
		{token.ASSIGN, "="},
		{token.FLOAT, "3.14"},
		{token.SEMICOLON, ";"},
		{token.FUNCTION, "fu"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.LET, "let"},
		{token.IDENT, "result"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.COMMA, ","},
		{token.INTEGER, "10"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.BANG, "!"},
		{token.MINUS, "-"},
		{token.SLASH, "/"},
		{token.ASTERISK, "*"},
		{token.CARET, "^"},
		{token.INTEGER, "5"},
		{token.SEMICOLON, ";"},
		{token.INTEGER, "5"},
		{token.LT, "<"},
		{token.INTEGER, "10"},
		{token.GT, ">"},
		{token.INTEGER, "5"},
		{token.SEMICOLON, ";"},
		{token.INTEGER, "5"},
		{token.LT_EQ, "<="},
		{token.INTEGER, "10"},
		{token.GT_EQ, ">="},
		{token.INTEGER, "5"},
		{token.SEMICOLON, ";"},
		{token.IF, "if"},
		{token.IDENT, "a"},
		{token.EQ, "=="},
		{token.IDENT, "b"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.INTEGER, "10"},
		{token.NOT_EQ, "!="},
		{token.INTEGER, "9"},
		{token.SEMICOLON, ";"},
		{token.TRUE, "true"},
		{token.LOGICAL_AND, "&&"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.TRUE, "true"},
		{token.LOGICAL_OR, "||"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.INTEGER, "10"},
		{token.BITWISE_AND, "&"},
		{token.INTEGER, "9"},
		{token.SEMICOLON, ";"},
		{token.INTEGER, "10"},
		{token.BITWISE_OR, "|"},
		{token.INTEGER, "9"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.QUESTION, "?"},
		{token.INTEGER, "1"},
		{token.COLON, ":"},
		{token.INTEGER, "2"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "r"},
		{token.ASSIGN, "="},
		{token.LBRACE, "{"},
		{token.IDENT, "n"},
		{token.COLON, ":"},
		{token.INTEGER, "1"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "r"},
		{token.PERIOD, "."},
		{token.IDENT, "n"},
		{token.SEMICOLON, ";"},
		{token.WHILE, "while"},
		{token.IDENT, "x"},
		{token.LT, "<"},
		{token.INTEGER, "3"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.INTEGER, "1"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.STRING, "foo bar"},
		{token.STRING, "tab\there"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q '%q', got=%q: '%q'",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"never closed`)
	tok := l.NextToken()

	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %q: %q", tok.Type, tok.Literal)
	}
}

func TestTokenPositions(t *testing.T) {
	input := "let x = 1;\nx = 2;"

	tests := []struct {
		expectedType     token.TokenType
		expectedPosition int
	}{
		{token.LET, 0},
		{token.IDENT, 4},
		{token.ASSIGN, 6},
		{token.INTEGER, 8},
		{token.SEMICOLON, 9},
		{token.IDENT, 11},
		{token.ASSIGN, 13},
		{token.INTEGER, 15},
		{token.SEMICOLON, 16},
		{token.EOF, 17},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Position != tt.expectedPosition {
			t.Fatalf("tests[%d] - position wrong. expected=%d, got=%d",
				i, tt.expectedPosition, tok.Position)
		}
	}
}
