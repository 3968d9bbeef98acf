package ast

import "tyrc/internal/token"

// TypeLiteral enumerates the scalar type tags of the language.
type TypeLiteral int

const (
	Int TypeLiteral = iota
	Float
	Bool
	Str
	Char
	Void
)

var typeLiteralNames = [...]string{
	Int: "int", Float: "float", Bool: "bool", Str: "str", Char: "char", Void: "void",
}

func (t TypeLiteral) String() string {
	if int(t) >= 0 && int(t) < len(typeLiteralNames) {
		return typeLiteralNames[t]
	}
	return "unknown"
}

// TypeLiteralOf maps a type-keyword token to its TypeLiteral tag.
func TypeLiteralOf(k token.Kind) (TypeLiteral, bool) {
	switch k {
	case token.TYPE_INT:
		return Int, true
	case token.TYPE_FLOAT:
		return Float, true
	case token.TYPE_BOOL:
		return Bool, true
	case token.TYPE_STR:
		return Str, true
	case token.TYPE_CHAR:
		return Char, true
	case token.TYPE_VOID:
		return Void, true
	default:
		return Void, false
	}
}

// Type is either a scalar TypeLiteral, or a fixed-size Array of one.
// Void is not a valid array element type; codegen enforces this invariant since the
// grammar alone cannot (see spec.md §3).
type Type struct {
	Literal TypeLiteral
	IsArray bool
	Size    int // Meaningful only when IsArray.
}

func (t Type) String() string {
	if t.IsArray {
		return t.Literal.String()
	}
	return t.Literal.String()
}

// Scalar constructs a non-array Type.
func Scalar(lit TypeLiteral) Type {
	return Type{Literal: lit}
}

// Arr constructs an Array(lit, size) Type.
func Arr(lit TypeLiteral, size int) Type {
	return Type{Literal: lit, IsArray: true, Size: size}
}
