package codegen

import (
	"tinygo.org/x/go-llvm"

	"tyrc/internal/ast"
	"tyrc/internal/diag"
)

// genCall lowers Call(name, args...). "print" (spec.md §4.3) and "pow" are the compiler
// builtins; everything else must resolve against a declared function, with argument count
// and type (after Int->Float promotion) checked against its signature.
func (g *Generator) genCall(n *ast.Node) (Value, error) {
	name := n.Data.(string)

	args := make([]Value, len(n.Children))
	for i, c := range n.Children {
		v, _, err := g.genNode(c)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	if name == "print" {
		return g.genPrint(args, n)
	}
	if name == "pow" {
		return g.genPow(args, n)
	}

	desc, ok := g.sh.root.LookupFunction(name)
	if !ok {
		return Value{}, diag.Errorf(diag.NameError, n.Line, n.Col, "undeclared function %q", name)
	}
	if len(args) != len(desc.Params) {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col,
			"function %q expects %d arguments, got %d", name, len(desc.Params), len(args))
	}

	llArgs := make([]llvm.Value, len(args))
	for i, a := range args {
		want := desc.Params[i]
		if want.IsArray {
			if !a.IsArray || a.ElemTag != want.Literal {
				return Value{}, diag.Errorf(diag.TypeError, n.Children[i].Line, n.Children[i].Col,
					"argument %d to %q must be %s[], got %s", i, name, want.Literal, tagName(a))
			}
			llArgs[i] = a.V
			continue
		}
		promoted, err := g.promote(a, want.Literal, n)
		if err != nil {
			return Value{}, err
		}
		llArgs[i] = promoted.V
	}

	call := g.b.CreateCall(desc.Value, llArgs, "")
	if desc.Ret.Literal == ast.Void && !desc.Ret.IsArray {
		return voidValue(), nil
	}
	if desc.Ret.IsArray {
		return Value{IsArray: true, ElemTag: desc.Ret.Literal, Size: desc.Ret.Size, V: call}, nil
	}
	return Value{Tag: desc.Ret.Literal, V: call}, nil
}

// genPow lowers the supplemented pow(base, exp) intrinsic onto libm's pow, widening
// both arguments to Float (SPEC_FULL.md's "pow intrinsic call").
func (g *Generator) genPow(args []Value, n *ast.Node) (Value, error) {
	if len(args) != 2 {
		return Value{}, diag.Errorf(diag.TypeError, n.Line, n.Col, "pow expects 2 arguments, got %d", len(args))
	}
	base, err := g.promote(args[0], ast.Float, n)
	if err != nil {
		return Value{}, err
	}
	exp, err := g.promote(args[1], ast.Float, n)
	if err != nil {
		return Value{}, err
	}
	call := g.b.CreateCall(g.powFunc(), []llvm.Value{base.V, exp.V}, "")
	return Value{Tag: ast.Float, V: call}, nil
}
