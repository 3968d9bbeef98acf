package codegen

import (
	"tinygo.org/x/go-llvm"

	"tyrc/internal/ast"
	"tyrc/internal/diag"
)

// genIf lowers If(cond, then[, else]). With an else arm, both arms are generated into
// their own blocks and their values merged with a PHI node at a shared end block
// (spec.md §4.2's "if-expression" SSA merge); when neither arm falls through, no end
// block is created at all. Without an else arm, the if is itself an expression whose
// value is the Int zero spec.md assigns it, and the "then" branches straight back into
// the surrounding flow as soon as it doesn't terminate.
func (g *Generator) genIf(n *ast.Node) (Value, bool, error) {
	cond, _, err := g.genNode(n.Children[0])
	if err != nil {
		return Value{}, false, err
	}
	if cond.Tag != ast.Bool {
		return Value{}, false, diag.Errorf(diag.TypeError, n.Line, n.Col, "if condition must be Bool, got %s", tagName(cond))
	}

	fn := g.curFunc
	thenBB := llvm.AddBasicBlock(fn, "then")

	if len(n.Children) == 2 {
		convBB := llvm.AddBasicBlock(fn, "ifend")
		g.b.CreateCondBr(cond.V, thenBB, convBB)

		g.b.SetInsertPointAtEnd(thenBB)
		outer := g.scope
		g.scope = outer.Child()
		_, thenTerm, err := g.genNode(n.Children[1])
		g.scope = outer
		if err != nil {
			return Value{}, false, err
		}
		if !thenTerm {
			g.b.CreateBr(convBB)
		}

		g.b.SetInsertPointAtEnd(convBB)
		return Value{Tag: ast.Int, V: llvm.ConstInt(llvm.Int32Type(), 0, true)}, false, nil
	}

	elseBB := llvm.AddBasicBlock(fn, "else")
	g.b.CreateCondBr(cond.V, thenBB, elseBB)

	g.b.SetInsertPointAtEnd(thenBB)
	outer := g.scope
	g.scope = outer.Child()
	thenVal, thenTerm, err := g.genNode(n.Children[1])
	g.scope = outer
	if err != nil {
		return Value{}, false, err
	}
	var thenEndBB llvm.BasicBlock
	if !thenTerm {
		thenEndBB = g.b.GetInsertBlock()
	}

	g.b.SetInsertPointAtEnd(elseBB)
	g.scope = outer.Child()
	elseVal, elseTerm, err := g.genNode(n.Children[2])
	g.scope = outer
	if err != nil {
		return Value{}, false, err
	}
	var elseEndBB llvm.BasicBlock
	if !elseTerm {
		elseEndBB = g.b.GetInsertBlock()
	}

	if thenTerm && elseTerm {
		// Neither arm falls through: control never reaches past this If, so there is
		// nothing to merge and no value to produce. The caller (genStatements) treats
		// this as terminating its enclosing block.
		return voidValue(), true, nil
	}

	convBB := llvm.AddBasicBlock(fn, "ifend")
	if !thenTerm {
		g.b.SetInsertPointAtEnd(thenEndBB)
		g.b.CreateBr(convBB)
	}
	if !elseTerm {
		g.b.SetInsertPointAtEnd(elseEndBB)
		g.b.CreateBr(convBB)
	}
	g.b.SetInsertPointAtEnd(convBB)

	if thenTerm {
		return elseVal, false, nil
	}
	if elseTerm {
		return thenVal, false, nil
	}
	if thenVal.Tag != elseVal.Tag || thenVal.IsArray != elseVal.IsArray {
		return Value{}, false, diag.Errorf(diag.TypeError, n.Line, n.Col,
			"if and else arms must produce the same type, got %s and %s", tagName(thenVal), tagName(elseVal))
	}

	phi := g.b.CreatePHI(irType(thenVal.Tag), "")
	phi.AddIncoming([]llvm.Value{thenVal.V, elseVal.V}, []llvm.BasicBlock{thenEndBB, elseEndBB})
	return Value{Tag: thenVal.Tag, V: phi}, false, nil
}

// genWhile lowers While(cond, body): a condition block tested before every iteration, a
// loop body block, and an end block, mirroring the teacher's genWhile. The while
// expression's own value is always Int zero (spec.md §4.2).
func (g *Generator) genWhile(n *ast.Node) (Value, bool, error) {
	fn := g.curFunc
	condBB := llvm.AddBasicBlock(fn, "cond")
	loopBB := llvm.AddBasicBlock(fn, "loop")
	endBB := llvm.AddBasicBlock(fn, "end")

	g.b.CreateBr(condBB)
	g.b.SetInsertPointAtEnd(condBB)
	cond, _, err := g.genNode(n.Children[0])
	if err != nil {
		return Value{}, false, err
	}
	if cond.Tag != ast.Bool {
		return Value{}, false, diag.Errorf(diag.TypeError, n.Line, n.Col, "while condition must be Bool, got %s", tagName(cond))
	}
	g.b.CreateCondBr(cond.V, loopBB, endBB)

	g.b.SetInsertPointAtEnd(loopBB)
	outer := g.scope
	g.scope = outer.Child()
	_, bodyTerm, err := g.genNode(n.Children[1])
	g.scope = outer
	if err != nil {
		return Value{}, false, err
	}
	if !bodyTerm {
		g.b.CreateBr(condBB)
	}

	g.b.SetInsertPointAtEnd(endBB)
	return Value{Tag: ast.Int, V: llvm.ConstInt(llvm.Int32Type(), 0, true)}, false, nil
}
