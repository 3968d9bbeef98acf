// Package ast defines the syntax tree the parser produces and the code generator consumes.
//
// Node follows the teacher's boxed-recursive-AST design (vslc/src/ir/nodetype.go): one
// tagged struct with an interface{} payload and owned child pointers, rather than one Go
// type per node kind. spec.md §9 names this explicitly as the shape to keep.
package ast

import (
	"fmt"

	"tyrc/internal/token"
)

// NodeType differentiates the node variants of the syntax tree.
type NodeType int

const (
	Int NodeType = iota
	Float
	Bool
	Str
	Char
	Array
	Identifier
	TypeTerm
	Cast
	Unary
	Binary
	IdentifierOp
	Index
	Let
	If
	While
	For
	Fn
	Return
	Call
	Statements
	EOF
)

var nodeNames = [...]string{
	Int: "Int", Float: "Float", Bool: "Bool", Str: "Str", Char: "Char",
	Array: "Array", Identifier: "Identifier", TypeTerm: "Type", Cast: "Cast",
	Unary: "Unary", Binary: "Binary", IdentifierOp: "IdentifierOp", Index: "Index",
	Let: "Let", If: "If", While: "While", For: "For", Fn: "Fn",
	Return: "Return", Call: "Call", Statements: "Statements", EOF: "EOF",
}

func (t NodeType) String() string {
	if int(t) >= 0 && int(t) < len(nodeNames) {
		return nodeNames[t]
	}
	return "Unknown"
}

// Param is one (name, type) entry of a function signature.
type Param struct {
	Name string
	Type Type
}

// FnSig is the Fn node's payload: everything about a function definition except its body,
// which lives in Children[0].
type FnSig struct {
	Name   string
	Params []Param
	Ret    Type
}

// Node is a single tagged node of the syntax tree. Data holds the node-kind-specific
// payload (a literal's value; the name of an Identifier, Let, For, or Call; the operator
// token.Kind of a Unary, Binary, or IdentifierOp; the Type of a TypeTerm or Cast; the
// *FnSig of an Fn); Children holds owned recursive sub-nodes.
type Node struct {
	Typ      NodeType
	Line     int
	Col      int
	Data     interface{}
	Children []*Node
}

// New constructs a Node of type typ at the given source position with the given children.
func New(typ NodeType, line, col int, children ...*Node) *Node {
	return &Node{Typ: typ, Line: line, Col: col, Children: children}
}

// String returns a debug-friendly rendering of the node, used by Print and in diagnostics.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Data == nil {
		return n.Typ.String()
	}
	switch n.Typ {
	case Unary, Binary, IdentifierOp:
		return fmt.Sprintf("%s(%s)", n.Typ, n.Data.(token.Kind))
	default:
		return fmt.Sprintf("%s(%v)", n.Typ, n.Data)
	}
}

// Print recursively prints n and its Children, indenting one level per depth of recursion.
// Mirrors the teacher's ir.Node.Print debugging aid.
func (n *Node) Print(depth int) {
	if n == nil {
		fmt.Printf("%*c<nil>\n", depth<<1, ' ')
		return
	}
	fmt.Printf("%*c%s\n", depth<<1, ' ', n.String())
	for _, c := range n.Children {
		c.Print(depth + 1)
	}
}
