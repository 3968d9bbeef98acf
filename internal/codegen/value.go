package codegen

import (
	"tinygo.org/x/go-llvm"

	"tyrc/internal/ast"
)

// Value is the code generator's runtime-value discriminator (spec.md §3): the tag
// determines the LLVM type of the underlying SSA operand V. Arrays additionally carry
// the element tag and compile-time size; everything else ignores those two fields.
type Value struct {
	Tag     ast.TypeLiteral
	V       llvm.Value
	IsArray bool
	ElemTag ast.TypeLiteral
	Size    int
}

// voidValue is the Value produced by statements that carry no usable result (Let, a
// call to a Void function, an If whose arms both return, and the implicit value of an
// empty statement block).
func voidValue() Value {
	return Value{Tag: ast.Void}
}

func (v Value) isNumeric() bool {
	return !v.IsArray && (v.Tag == ast.Int || v.Tag == ast.Float)
}

// irType returns the LLVM type that a scalar Value of this tag lowers to, per spec.md
// §4.2's "Value lowering": integers are i32, floats are f64, booleans are i1, characters
// are i8.
func irType(tag ast.TypeLiteral) llvm.Type {
	switch tag {
	case ast.Int:
		return llvm.Int32Type()
	case ast.Float:
		return llvm.DoubleType()
	case ast.Bool:
		return llvm.Int1Type()
	case ast.Char:
		return llvm.Int8Type()
	case ast.Str:
		return llvm.PointerType(llvm.Int8Type(), 0)
	default:
		return llvm.VoidType()
	}
}

// elemIRType returns the LLVM element type an Array's decayed pointer points to.
func elemIRType(elemTag ast.TypeLiteral) llvm.Type {
	return irType(elemTag)
}

// typeOf reconstructs the ast.Type a Value carries, used to record a variable's
// declared Type in the scope table.
func (v Value) typeOf() ast.Type {
	if v.IsArray {
		return ast.Arr(v.ElemTag, v.Size)
	}
	return ast.Scalar(v.Tag)
}
