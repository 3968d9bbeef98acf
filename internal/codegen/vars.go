package codegen

import (
	"tinygo.org/x/go-llvm"

	"tyrc/internal/ast"
	"tyrc/internal/diag"
	"tyrc/internal/scope"
	"tyrc/internal/token"
)

// genLoad resolves an Identifier read. Str and Array variables store their pointer
// value directly in the Variable's Slot (no second indirection, per spec.md §4.2); every
// other type is an alloca that needs a load.
func (g *Generator) genLoad(name string, n *ast.Node) (Value, error) {
	v, ok := g.scope.Lookup(name)
	if !ok {
		return Value{}, diag.Errorf(diag.NameError, n.Line, n.Col, "undeclared variable %q", name)
	}
	if v.Type.IsArray {
		return Value{IsArray: true, ElemTag: v.Type.Literal, Size: v.Type.Size, V: v.Slot}, nil
	}
	if v.Type.Literal == ast.Str {
		return Value{Tag: ast.Str, V: v.Slot}, nil
	}
	loaded := g.b.CreateLoad(v.Slot, "")
	return Value{Tag: v.Type.Literal, V: loaded}, nil
}

// genLet always declares name fresh in the current (innermost) scope, shadowing any
// outer binding of the same name rather than mutating it (spec.md §4.4's "a let inside
// a block doesn't mutate an outer x of the same name").
func (g *Generator) genLet(name string, val Value) {
	if val.IsArray || val.Tag == ast.Str {
		g.scope.Declare(name, &scope.Variable{Slot: val.V, Type: val.typeOf()})
		return
	}
	alloc := g.b.CreateAlloca(irType(val.Tag), name)
	g.b.CreateStore(val.V, alloc)
	g.scope.Declare(name, &scope.Variable{Slot: alloc, Type: val.typeOf()})
}

// genTypeDecl allocates zero-initialized storage for a bare type term used as a Let's
// initializer ("let a = int[3]"): arrays get a zero-filled backing buffer decayed to
// an elemType* pointer, and scalars get a null value of their own type. Strings get a
// single-byte empty backing buffer so they remain indexable and printable even before
// any assignment.
func (g *Generator) genTypeDecl(typ ast.Type) Value {
	if typ.IsArray {
		elemTy := irType(typ.Literal)
		arrTy := llvm.ArrayType(elemTy, typ.Size)
		alloc := g.b.CreateAlloca(arrTy, "")
		g.b.CreateStore(llvm.ConstNull(arrTy), alloc)
		zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
		decayed := g.b.CreateGEP(alloc, []llvm.Value{zero, zero}, "")
		return Value{IsArray: true, ElemTag: typ.Literal, Size: typ.Size, V: decayed}
	}
	if typ.Literal == ast.Str {
		bufTy := llvm.ArrayType(llvm.Int8Type(), 1)
		alloc := g.b.CreateAlloca(bufTy, "")
		g.b.CreateStore(llvm.ConstNull(bufTy), alloc)
		zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
		decayed := g.b.CreateGEP(alloc, []llvm.Value{zero, zero}, "")
		return Value{Tag: ast.Str, V: decayed}
	}
	return Value{Tag: typ.Literal, V: llvm.ConstNull(irType(typ.Literal))}
}

// genSet implements spec.md §4.4's set(): reuse the nearest enclosing binding of name
// if one exists (Str/Array rebind their Slot in place; scalars are promoted then
// stored), otherwise allocate a fresh binding in the current scope exactly like Let.
func (g *Generator) genSet(name string, val Value, n *ast.Node) (Value, error) {
	existing, ok := g.scope.Assign(name)
	if !ok {
		g.genLet(name, val)
		return val, nil
	}
	if existing.Type.IsArray || existing.Type.Literal == ast.Str {
		newTyp := val.typeOf()
		if newTyp.IsArray != existing.Type.IsArray || newTyp.Literal != existing.Type.Literal ||
			(newTyp.IsArray && newTyp.Size != existing.Type.Size) {
			return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col,
				"cannot assign a %s where %s is expected", newTyp, existing.Type)
		}
		existing.Slot = val.V
		return val, nil
	}
	promoted, err := g.promote(val, existing.Type.Literal, n)
	if err != nil {
		return Value{}, err
	}
	g.b.CreateStore(promoted.V, existing.Slot)
	return promoted, nil
}

// promote widens an Int value to Float when the destination expects Float, mirroring
// the teacher's genStore auto-promotion; any other tag mismatch is a hard TypeError.
func (g *Generator) promote(v Value, want ast.TypeLiteral, n *ast.Node) (Value, error) {
	if v.Tag == want {
		return v, nil
	}
	if want == ast.Float && v.Tag == ast.Int {
		return Value{Tag: ast.Float, V: g.b.CreateSIToFP(v.V, llvm.DoubleType(), "")}, nil
	}
	return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "cannot assign a %s where %s is expected", v.Tag, want)
}

// genIdentifierOp lowers 'x op= e' and 'x = e' (IdentifierOp), and the Index form of
// the same ('a[i] op= e'). Compound operators desugar via token.BinaryOp exactly as
// spec.md §9 suggests in place of the teacher's macro-expanded approach.
func (g *Generator) genIdentifierOp(n *ast.Node) (Value, error) {
	target := n.Children[0]
	op := n.Data.(token.Kind)

	switch target.Typ {
	case ast.Identifier:
		return g.genIdentifierAssign(target.Data.(string), op, n)
	case ast.Index:
		return g.genIndexAssign(target, op, n)
	default:
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col,
			"assignment target must be an identifier or an index expression")
	}
}

func (g *Generator) genIdentifierAssign(name string, op token.Kind, n *ast.Node) (Value, error) {
	rhs, _, err := g.genNode(n.Children[1])
	if err != nil {
		return Value{}, err
	}
	if op == token.ASSIGN {
		return g.genSet(name, rhs, n)
	}
	curVal, err := g.genLoad(name, n)
	if err != nil {
		return Value{}, err
	}
	binOp, _ := token.BinaryOp(op)
	combined, err := g.genBinary(binOp, curVal, rhs, n)
	if err != nil {
		return Value{}, err
	}
	return g.genSet(name, combined, n)
}

func (g *Generator) genIndexAssign(target *ast.Node, op token.Kind, n *ast.Node) (Value, error) {
	base := target.Children[0]
	if base.Typ != ast.Identifier {
		return Value{}, diag.Errorf(diag.TypeError, target.Line, target.Col,
			"index assignment target's base must be an identifier")
	}
	baseVar, ok := g.scope.Lookup(base.Data.(string))
	if !ok {
		return Value{}, diag.Errorf(diag.NameError, base.Line, base.Col, "undeclared variable %q", base.Data.(string))
	}
	if !baseVar.Type.IsArray && baseVar.Type.Literal != ast.Str {
		return Value{}, diag.Errorf(diag.TypeError, target.Line, target.Col, "cannot index a %s", baseVar.Type)
	}
	elemTag := baseVar.Type.Literal

	idxVal, _, err := g.genNode(target.Children[1])
	if err != nil {
		return Value{}, err
	}
	if idxVal.Tag != ast.Int {
		return Value{}, diag.Errorf(diag.TypeError, target.Children[1].Line, target.Children[1].Col,
			"array/string index must be Int, got %s", idxVal.Tag)
	}
	elemPtr := g.b.CreateGEP(baseVar.Slot, []llvm.Value{idxVal.V}, "")

	rhs, _, err := g.genNode(n.Children[1])
	if err != nil {
		return Value{}, err
	}

	var newVal Value
	if op == token.ASSIGN {
		newVal, err = g.promoteToElem(rhs, elemTag, n)
		if err != nil {
			return Value{}, err
		}
	} else {
		loaded := Value{Tag: elemTag, V: g.b.CreateLoad(elemPtr, "")}
		binOp, _ := token.BinaryOp(op)
		newVal, err = g.genBinary(binOp, loaded, rhs, n)
		if err != nil {
			return Value{}, err
		}
		newVal, err = g.promoteToElem(newVal, elemTag, n)
		if err != nil {
			return Value{}, err
		}
	}
	g.b.CreateStore(newVal.V, elemPtr)
	return newVal, nil
}

func (g *Generator) promoteToElem(v Value, elemTag ast.TypeLiteral, n *ast.Node) (Value, error) {
	if v.Tag == elemTag {
		return v, nil
	}
	if elemTag == ast.Float && v.Tag == ast.Int {
		return Value{Tag: ast.Float, V: g.b.CreateSIToFP(v.V, llvm.DoubleType(), "")}, nil
	}
	return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "cannot store a %s into a %s element", v.Tag, elemTag)
}

// genIndexRead lowers a[i] used as a value: a single-index GEP into the decayed
// array/string pointer, followed by a load.
func (g *Generator) genIndexRead(n *ast.Node) (Value, error) {
	base := n.Children[0]
	baseVal, _, err := g.genNode(base)
	if err != nil {
		return Value{}, err
	}
	if !baseVal.IsArray && baseVal.Tag != ast.Str {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "cannot index a %s", baseVal.Tag)
	}
	elemTag := ast.Char
	if baseVal.IsArray {
		elemTag = baseVal.ElemTag
	}

	idxVal, _, err := g.genNode(n.Children[1])
	if err != nil {
		return Value{}, err
	}
	if idxVal.Tag != ast.Int {
		return Value{}, diag.Errorf(diag.TypeError, n.Children[1].Line, n.Children[1].Col,
			"array/string index must be Int, got %s", idxVal.Tag)
	}

	elemPtr := g.b.CreateGEP(baseVal.V, []llvm.Value{idxVal.V}, "")
	loaded := g.b.CreateLoad(elemPtr, "")
	return Value{Tag: elemTag, V: loaded}, nil
}
