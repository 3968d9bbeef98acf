package lexer

import (
	"testing"

	"tyrc/internal/token"
)

// TestLexerKinds verifies that the lexer emits the expected token kind sequence for a
// handful of representative tyr fragments, the same style of table-driven coverage as
// the teacher's frontend/lexer_test.go.
func TestLexerKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "let and arithmetic",
			src:  "let x = 1 + 2 * 3",
			want: []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT, token.STAR, token.INT, token.EOF},
		},
		{
			name: "compound assignment",
			src:  "x += 1",
			want: []token.Kind{token.IDENT, token.PLUS_ASSIGN, token.INT, token.EOF},
		},
		{
			name: "comparison operators",
			src:  "a <= b and c != d",
			want: []token.Kind{token.IDENT, token.LE, token.IDENT, token.AND, token.IDENT, token.NEQ, token.IDENT, token.EOF},
		},
		{
			name: "string and call",
			src:  `print("hello", 42)`,
			want: []token.Kind{token.IDENT, token.LPAREN, token.STRING, token.COMMA, token.INT, token.RPAREN, token.EOF},
		},
		{
			name: "array type term",
			src:  "let a = int[3]",
			want: []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.TYPE_INT, token.LBRACKET, token.INT, token.RBRACKET, token.EOF},
		},
		{
			name: "newline separated statements",
			src:  "let a = 1\nlet b = 2",
			want: []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.LET, token.IDENT, token.ASSIGN, token.INT, token.EOF},
		},
		{
			name: "line comment ignored",
			src:  "let x = 1 // comment\nlet y = 2",
			want: []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.LET, token.IDENT, token.ASSIGN, token.INT, token.EOF},
		},
		{
			name: "char literal",
			src:  "let c = 'a'",
			want: []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.CHAR, token.EOF},
		},
		{
			name: "boolean keywords",
			src:  "true or false",
			want: []token.Kind{token.BOOL, token.OR, token.BOOL, token.EOF},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := New(tc.src)
			for i, want := range tc.want {
				got := l.Next()
				if got.Kind != want {
					t.Fatalf("token %d: got %s, want %s", i, got.Kind, want)
				}
			}
			if err := l.Err(); err != nil {
				t.Fatalf("unexpected lex error: %s", err)
			}
		})
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.Next()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %s", tok.Kind)
	}
	if err := l.Err(); err == nil {
		t.Fatal("expected lex error, got nil")
	}
}
