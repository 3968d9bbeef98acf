package parser

import (
	"testing"

	"tyrc/internal/ast"
	"tyrc/internal/token"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %s", src, err)
	}
	return root
}

// TestStatementSeparation verifies that extra blank lines between statements don't change
// the resulting Statements list (spec.md §8's "statement separation" invariant).
func TestStatementSeparation(t *testing.T) {
	root := mustParse(t, "let a = 1\n\n\nlet b = 2\nlet c = 3")
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(root.Children))
	}
	for i, name := range []string{"a", "b", "c"} {
		if root.Children[i].Typ != ast.Let || root.Children[i].Data.(string) != name {
			t.Fatalf("statement %d: expected Let(%s), got %s", i, name, root.Children[i])
		}
	}
}

// TestDanglingElse verifies that in "if a { if b { x } else { y } }" the else binds to
// the inner if (spec.md §8).
func TestDanglingElse(t *testing.T) {
	root := mustParse(t, "if a { if b { x } else { y } }")
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(root.Children))
	}
	outer := root.Children[0]
	if outer.Typ != ast.If {
		t.Fatalf("expected outer If, got %s", outer.Typ)
	}
	if len(outer.Children) != 2 {
		t.Fatalf("outer if should have no else arm, got %d children", len(outer.Children))
	}
	inner := outer.Children[1].Children[0]
	if inner.Typ != ast.If {
		t.Fatalf("expected inner If, got %s", inner.Typ)
	}
	if len(inner.Children) != 3 {
		t.Fatalf("inner if should have an else arm, got %d children", len(inner.Children))
	}
}

// TestDanglingElseAcrossBlankLine verifies that a run of several newlines (e.g. a blank
// line) between an if-body's closing brace and a following 'else' still attaches the
// else to that if, since the lexer emits one NEWLINE token per literal newline with no
// coalescing.
func TestDanglingElseAcrossBlankLine(t *testing.T) {
	root := mustParse(t, "if a { x }\n\n\nelse { y }")
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(root.Children))
	}
	ifNode := root.Children[0]
	if ifNode.Typ != ast.If {
		t.Fatalf("expected If, got %s", ifNode.Typ)
	}
	if len(ifNode.Children) != 3 {
		t.Fatalf("expected an else arm across the blank line, got %d children", len(ifNode.Children))
	}
}

// TestIfWithoutElseLeavesStatementSeparator checks that when no 'else'
// follows an if, the newline the parser peeked past is still visible to the enclosing
// statement list.
func TestIfWithoutElseLeavesStatementSeparator(t *testing.T) {
	root := mustParse(t, "if a { x }\nlet y = 1")
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(root.Children))
	}
	if root.Children[1].Typ != ast.Let {
		t.Fatalf("expected second statement to be Let, got %s", root.Children[1].Typ)
	}
}

// TestPrecedencePositional checks that "1 + 2 * 3" builds the tree right-associatively
// the way spec.md's explicit per-level recursion produces: + at the top, with * nested
// on the right-hand side (term binds tighter than arith_expr).
func TestPrecedencePositional(t *testing.T) {
	root := mustParse(t, "1 + 2 * 3")
	expr := root.Children[0]
	if expr.Typ != ast.Binary || expr.Data.(token.Kind) != token.PLUS {
		t.Fatalf("expected top-level +, got %s", expr)
	}
	right := expr.Children[1]
	if right.Typ != ast.Binary || right.Data.(token.Kind) != token.STAR {
		t.Fatalf("expected nested *, got %s", right)
	}
}

// TestCastVsCall verifies the context-sensitive disambiguation between a type cast and a
// function call (spec.md §4.1).
func TestCastVsCall(t *testing.T) {
	root := mustParse(t, "float(1)")
	cast := root.Children[0]
	if cast.Typ != ast.Cast {
		t.Fatalf("expected Cast, got %s", cast.Typ)
	}
	if cast.Data.(ast.Type).Literal != ast.Float {
		t.Fatalf("expected cast to float, got %v", cast.Data)
	}

	root = mustParse(t, "add(1, 2)")
	call := root.Children[0]
	if call.Typ != ast.Call || call.Data.(string) != "add" {
		t.Fatalf("expected Call(add), got %s", call)
	}
	if len(call.Children) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Children))
	}
}

// TestPostfixIndex verifies that indexing wraps the atom exactly once.
func TestPostfixIndex(t *testing.T) {
	root := mustParse(t, "a[0]")
	idx := root.Children[0]
	if idx.Typ != ast.Index {
		t.Fatalf("expected Index, got %s", idx.Typ)
	}
	if idx.Children[0].Typ != ast.Identifier {
		t.Fatalf("expected indexed base to be Identifier, got %s", idx.Children[0].Typ)
	}
}

// TestCompoundAssignment verifies 'x op= e' parses to an IdentifierOp node.
func TestCompoundAssignment(t *testing.T) {
	root := mustParse(t, "x += 1")
	n := root.Children[0]
	if n.Typ != ast.IdentifierOp || n.Data.(token.Kind) != token.PLUS_ASSIGN {
		t.Fatalf("expected IdentifierOp(+=), got %s", n)
	}
}

// TestFunctionDefinitionDefaultReturn verifies the function grammar, including the default Void
// return type when none is given.
func TestFunctionDefinitionDefaultReturn(t *testing.T) {
	root := mustParse(t, "fn f() { return 1 }")
	fn := root.Children[0]
	sig := fn.Data.(*ast.FnSig)
	if sig.Name != "f" {
		t.Fatalf("expected name f, got %s", sig.Name)
	}
	if sig.Ret.Literal != ast.Void {
		t.Fatalf("expected default return type Void, got %s", sig.Ret)
	}
}

func TestFunctionDefinitionWithParamsAndReturn(t *testing.T) {
	root := mustParse(t, "fn add(a: int, b: int): int { return a + b }")
	fn := root.Children[0]
	sig := fn.Data.(*ast.FnSig)
	if len(sig.Params) != 2 || sig.Params[0].Name != "a" || sig.Params[1].Name != "b" {
		t.Fatalf("unexpected params: %+v", sig.Params)
	}
	if sig.Ret.Literal != ast.Int {
		t.Fatalf("expected return type Int, got %s", sig.Ret)
	}
}

// TestArrayTypeTerm verifies the type-with-size grammar used for declarations like
// "let a = int[3]".
func TestArrayTypeTerm(t *testing.T) {
	root := mustParse(t, "let a = int[3]")
	letNode := root.Children[0]
	typeTerm := letNode.Children[0]
	if typeTerm.Typ != ast.TypeTerm {
		t.Fatalf("expected TypeTerm, got %s", typeTerm.Typ)
	}
	typ := typeTerm.Data.(ast.Type)
	if !typ.IsArray || typ.Literal != ast.Int || typ.Size != 3 {
		t.Fatalf("unexpected type: %+v", typ)
	}
}

// TestArrayLiteral verifies array-literal parsing, end-to-end scenario 5 from spec.md §8.
func TestArrayLiteral(t *testing.T) {
	root := mustParse(t, "a = [10, 20, 30]")
	assign := root.Children[0]
	if assign.Typ != ast.IdentifierOp {
		t.Fatalf("expected IdentifierOp, got %s", assign.Typ)
	}
	arr := assign.Children[1]
	if arr.Typ != ast.Array || len(arr.Children) != 3 {
		t.Fatalf("expected Array with 3 elements, got %s", arr)
	}
}

// TestWhileLoop verifies end-to-end scenario 4's source parses into a While node with a
// Statements body.
func TestWhileLoop(t *testing.T) {
	root := mustParse(t, "let i = 0\nwhile i < 3 { print(i)\n i = i + 1 }")
	loop := root.Children[1]
	if loop.Typ != ast.While {
		t.Fatalf("expected While, got %s", loop.Typ)
	}
	if loop.Children[0].Typ != ast.Binary || loop.Children[0].Data.(token.Kind) != token.LT {
		t.Fatalf("expected < condition, got %s", loop.Children[0])
	}
	if len(loop.Children[1].Children) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(loop.Children[1].Children))
	}
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	_, err := Parse("let = 1")
	if err == nil {
		t.Fatal("expected a parse error")
	}
}
