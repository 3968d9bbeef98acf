package codegen

import (
	"tinygo.org/x/go-llvm"

	"tyrc/internal/ast"
	"tyrc/internal/diag"
	"tyrc/internal/token"
)

// genBinary dispatches a Binary or desugared-compound-assignment operator pair to the
// arithmetic, comparison, or logical family that handles it.
func (g *Generator) genBinary(op token.Kind, l, r Value, n *ast.Node) (Value, error) {
	switch op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return g.genArith(op, l, r, n)
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		return g.genCompare(op, l, r, n)
	case token.AND, token.OR:
		return g.genLogical(op, l, r, n)
	default:
		return Value{}, diag.Internal("codegen: unhandled binary operator %s", op)
	}
}

func (g *Generator) toFloat(v Value) Value {
	if v.Tag == ast.Float {
		return v
	}
	return Value{Tag: ast.Float, V: g.b.CreateSIToFP(v.V, llvm.DoubleType(), "")}
}

// genArith implements spec.md §4.2's numeric arithmetic: either operand Float widens
// both to Float; otherwise both stay Int. Int division and remainder deliberately use
// unsigned LLVM instructions here, preserving (not fixing) the source compiler's known
// signed/unsigned mismatch (spec.md §9's documented open question; see DESIGN.md).
func (g *Generator) genArith(op token.Kind, l, r Value, n *ast.Node) (Value, error) {
	if !l.isNumeric() || !r.isNumeric() {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col,
			"arithmetic requires Int or Float operands, got %s and %s", tagName(l), tagName(r))
	}
	if l.Tag == ast.Float || r.Tag == ast.Float {
		lf, rf := g.toFloat(l), g.toFloat(r)
		var v llvm.Value
		switch op {
		case token.PLUS:
			v = g.b.CreateFAdd(lf.V, rf.V, "")
		case token.MINUS:
			v = g.b.CreateFSub(lf.V, rf.V, "")
		case token.STAR:
			v = g.b.CreateFMul(lf.V, rf.V, "")
		case token.SLASH:
			v = g.b.CreateFDiv(lf.V, rf.V, "")
		case token.PERCENT:
			v = g.b.CreateFRem(lf.V, rf.V, "")
		}
		return Value{Tag: ast.Float, V: v}, nil
	}
	var v llvm.Value
	switch op {
	case token.PLUS:
		v = g.b.CreateAdd(l.V, r.V, "")
	case token.MINUS:
		v = g.b.CreateSub(l.V, r.V, "")
	case token.STAR:
		v = g.b.CreateMul(l.V, r.V, "")
	case token.SLASH:
		v = g.b.CreateUDiv(l.V, r.V, "")
	case token.PERCENT:
		v = g.b.CreateURem(l.V, r.V, "")
	}
	return Value{Tag: ast.Int, V: v}, nil
}

// genCompare implements spec.md §4.2's comparison table: Bool compares via xor/not-xor,
// Char is widened to Int first ("Char compares as Int"), mixed Int/Float widens the Int
// side, and same-type Int or Float use the signed/ordered predicates.
func (g *Generator) genCompare(op token.Kind, l, r Value, n *ast.Node) (Value, error) {
	if l.Tag == ast.Bool && r.Tag == ast.Bool {
		x := g.b.CreateXor(l.V, r.V, "")
		if op == token.NEQ {
			return Value{Tag: ast.Bool, V: x}, nil
		}
		if op != token.EQ {
			return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "%s is not defined for Bool operands", op)
		}
		notX := g.b.CreateXor(x, llvm.ConstInt(llvm.Int1Type(), 1, false), "")
		return Value{Tag: ast.Bool, V: notX}, nil
	}

	lt, rt := l, r
	if lt.Tag == ast.Char {
		lt = Value{Tag: ast.Int, V: g.b.CreateSExt(lt.V, llvm.Int32Type(), "")}
	}
	if rt.Tag == ast.Char {
		rt = Value{Tag: ast.Int, V: g.b.CreateSExt(rt.V, llvm.Int32Type(), "")}
	}

	if !lt.isNumeric() || !rt.isNumeric() {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col,
			"comparison requires Int, Float, Char, or matching Bool operands, got %s and %s", tagName(l), tagName(r))
	}

	if lt.Tag == ast.Float || rt.Tag == ast.Float {
		lf, rf := g.toFloat(lt), g.toFloat(rt)
		var pred llvm.FloatPredicate
		switch op {
		case token.EQ:
			pred = llvm.FloatOEQ
		case token.NEQ:
			pred = llvm.FloatONE
		case token.LT:
			pred = llvm.FloatOLT
		case token.LE:
			pred = llvm.FloatOLE
		case token.GT:
			pred = llvm.FloatOGT
		case token.GE:
			pred = llvm.FloatOGE
		}
		return Value{Tag: ast.Bool, V: g.b.CreateFCmp(pred, lf.V, rf.V, "")}, nil
	}

	var pred llvm.IntPredicate
	switch op {
	case token.EQ:
		pred = llvm.IntEQ
	case token.NEQ:
		pred = llvm.IntNE
	case token.LT:
		pred = llvm.IntSLT
	case token.LE:
		pred = llvm.IntSLE
	case token.GT:
		pred = llvm.IntSGT
	case token.GE:
		pred = llvm.IntSGE
	}
	return Value{Tag: ast.Bool, V: g.b.CreateICmp(pred, lt.V, rt.V, "")}, nil
}

// genLogical implements 'and'/'or': both operands must already be Bool (both were
// evaluated by genNode's caller before this function runs, so neither is
// short-circuited, per spec.md §4.2's explicit non-short-circuiting semantics).
func (g *Generator) genLogical(op token.Kind, l, r Value, n *ast.Node) (Value, error) {
	if l.Tag != ast.Bool || r.Tag != ast.Bool {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col,
			"%s requires Bool operands, got %s and %s", op, tagName(l), tagName(r))
	}
	var v llvm.Value
	if op == token.AND {
		v = g.b.CreateAnd(l.V, r.V, "")
	} else {
		v = g.b.CreateOr(l.V, r.V, "")
	}
	return Value{Tag: ast.Bool, V: v}, nil
}

// genUnary implements unary +, -, and not per spec.md §4.2: '+' is the identity; '-'
// negates via a subtract-from-zero (mirroring the teacher's unary minus); 'not'
// compares the operand to the zero value of its own type with signed/ordered equality.
func (g *Generator) genUnary(op token.Kind, v Value, n *ast.Node) (Value, error) {
	switch op {
	case token.PLUS:
		if !v.isNumeric() {
			return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "unary + requires Int or Float, got %s", tagName(v))
		}
		return v, nil
	case token.MINUS:
		switch v.Tag {
		case ast.Int:
			return Value{Tag: ast.Int, V: g.b.CreateSub(llvm.ConstInt(llvm.Int32Type(), 0, true), v.V, "")}, nil
		case ast.Float:
			return Value{Tag: ast.Float, V: g.b.CreateFSub(llvm.ConstFloat(llvm.DoubleType(), 0), v.V, "")}, nil
		default:
			return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "unary - requires Int or Float, got %s", tagName(v))
		}
	case token.NOT:
		switch v.Tag {
		case ast.Int, ast.Bool, ast.Char:
			zero := llvm.ConstInt(irType(v.Tag), 0, false)
			return Value{Tag: ast.Bool, V: g.b.CreateICmp(llvm.IntEQ, v.V, zero, "")}, nil
		case ast.Float:
			zero := llvm.ConstFloat(llvm.DoubleType(), 0)
			return Value{Tag: ast.Bool, V: g.b.CreateFCmp(llvm.FloatOEQ, v.V, zero, "")}, nil
		default:
			return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "not requires a scalar operand, got %s", tagName(v))
		}
	default:
		return Value{}, diag.Internal("codegen: unhandled unary operator %s", op)
	}
}

func tagName(v Value) string {
	if v.IsArray {
		return v.ElemTag.String() + "[]"
	}
	return v.Tag.String()
}

// genCast implements spec.md §4.2's cast matrix exactly: Int<->Float use signed
// conversions, Int<->Bool use identity bit truncation/zero-extension ("identity-as-bool"
// / "identity"), Float<->Bool go through an unsigned conversion, and Char/Str only cast
// to themselves. Casting to or from Array or Void is always an error.
func (g *Generator) genCast(target ast.Type, v Value, n *ast.Node) (Value, error) {
	if target.IsArray || v.IsArray {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "cannot cast to or from an array type")
	}
	if target.Literal == ast.Void || v.Tag == ast.Void {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "cannot cast to or from void")
	}
	from, to := v.Tag, target.Literal

	if from == to {
		return Value{Tag: to, V: v.V}, nil
	}

	switch from {
	case ast.Int:
		switch to {
		case ast.Float:
			return Value{Tag: ast.Float, V: g.b.CreateSIToFP(v.V, llvm.DoubleType(), "")}, nil
		case ast.Bool:
			return Value{Tag: ast.Bool, V: g.b.CreateTrunc(v.V, llvm.Int1Type(), "")}, nil
		}
	case ast.Float:
		switch to {
		case ast.Int:
			return Value{Tag: ast.Int, V: g.b.CreateFPToSI(v.V, llvm.Int32Type(), "")}, nil
		case ast.Bool:
			return Value{Tag: ast.Bool, V: g.b.CreateFPToUI(v.V, llvm.Int1Type(), "")}, nil
		}
	case ast.Bool:
		switch to {
		case ast.Int:
			return Value{Tag: ast.Int, V: g.b.CreateZExt(v.V, llvm.Int32Type(), "")}, nil
		case ast.Float:
			return Value{Tag: ast.Float, V: g.b.CreateUIToFP(v.V, llvm.DoubleType(), "")}, nil
		}
	}
	return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "no cast exists from %s to %s", from, to)
}
