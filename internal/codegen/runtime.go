package codegen

import (
	"strings"

	"tinygo.org/x/go-llvm"

	"tyrc/internal/ast"
	"tyrc/internal/diag"
)

// printfFunc lazily declares (and caches) the C library printf this compiler bridges
// every print() call through, grounded on the teacher's genPrintf
// (vslc/src/ir/llvm/transform.go): a variadic function of (i8*, ...) -> i32.
func (g *Generator) printfFunc() llvm.Value {
	g.sh.mu.Lock()
	defer g.sh.mu.Unlock()
	if !g.sh.printfDecl.IsNil() {
		return g.sh.printfDecl
	}
	ftyp := llvm.FunctionType(llvm.Int32Type(), []llvm.Type{llvm.PointerType(llvm.Int8Type(), 0)}, true)
	g.sh.printfDecl = llvm.AddFunction(g.sh.m, "printf", ftyp)
	return g.sh.printfDecl
}

// powFunc lazily declares the C library pow, the one supplemented runtime intrinsic
// this compiler exposes beyond the teacher's printf/atoi/atof trio (SPEC_FULL.md's
// "pow intrinsic call").
func (g *Generator) powFunc() llvm.Value {
	g.sh.mu.Lock()
	defer g.sh.mu.Unlock()
	if !g.sh.powDecl.IsNil() {
		return g.sh.powDecl
	}
	ftyp := llvm.FunctionType(llvm.DoubleType(), []llvm.Type{llvm.DoubleType(), llvm.DoubleType()}, false)
	g.sh.powDecl = llvm.AddFunction(g.sh.m, "pow", ftyp)
	return g.sh.powDecl
}

// specFor returns the printf conversion specifier for one argument's Value tag, per
// the teacher's genPrint format-string synthesis. Arrays print as their pointer value
// (spec.md §4.3's "%p Array pointer"); print() accepts any mixture of scalars, strings,
// and arrays (spec.md §6), so only Void is actually invalid here.
func specFor(v Value, n *ast.Node) (string, error) {
	if v.IsArray {
		return "%p", nil
	}
	switch v.Tag {
	case ast.Int:
		return "%d", nil
	case ast.Float:
		return "%f", nil
	case ast.Bool:
		return "%d", nil
	case ast.Char:
		return "%c", nil
	case ast.Str:
		return "%s", nil
	default:
		return "", diag.Errorf(diag.TypeError, n.Line, n.Col, "print does not accept void arguments")
	}
}

// genPrint lowers a print(...) call: it globalizes a format string built from one
// conversion specifier per argument, widening Char and Bool arguments the way printf's
// varargs promotion requires, then calls printf with the synthesized format first.
// Grounded on the teacher's genPrint (vslc/src/ir/llvm/transform.go).
func (g *Generator) genPrint(argNodes []Value, n *ast.Node) (Value, error) {
	var sb strings.Builder
	args := make([]llvm.Value, 0, len(argNodes)+1)
	for _, v := range argNodes {
		spec, err := specFor(v, n)
		if err != nil {
			return Value{}, err
		}
		sb.WriteString(spec)
		switch v.Tag {
		case ast.Char, ast.Bool:
			// printf's varargs promote sub-int arguments to int.
			args = append(args, g.b.CreateZExt(v.V, llvm.Int32Type(), ""))
		default:
			args = append(args, v.V)
		}
	}
	fmtStr := g.b.CreateGlobalStringPtr(sb.String(), "fmt")
	call := append([]llvm.Value{fmtStr}, args...)
	v := g.b.CreateCall(g.printfFunc(), call, "")
	return Value{Tag: ast.Int, V: v}, nil
}
