package scope

import (
	"testing"

	"tinygo.org/x/go-llvm"

	"tyrc/internal/ast"
)

func TestLookupWalksParentChain(t *testing.T) {
	root := New(nil)
	root.Declare("x", &Variable{Type: ast.Scalar(ast.Int)})
	child := root.Child()
	v, ok := child.Lookup("x")
	if !ok || v.Type.Literal != ast.Int {
		t.Fatalf("expected to find x declared in an ancestor scope")
	}
}

func TestDeclareShadowsWithoutMutatingParent(t *testing.T) {
	root := New(nil)
	root.Declare("x", &Variable{Type: ast.Scalar(ast.Int)})
	child := root.Child()
	child.Declare("x", &Variable{Type: ast.Scalar(ast.Float)})

	childVal, _ := child.Lookup("x")
	if childVal.Type.Literal != ast.Float {
		t.Fatalf("expected child's x to be Float, got %s", childVal.Type.Literal)
	}
	rootVal, _ := root.Lookup("x")
	if rootVal.Type.Literal != ast.Int {
		t.Fatalf("expected parent's x to remain Int, got %s", rootVal.Type.Literal)
	}
}

func TestAssignFindsNearestAncestorSlot(t *testing.T) {
	root := New(nil)
	root.Declare("x", &Variable{Type: ast.Scalar(ast.Int)})
	child := root.Child()
	v, ok := child.Assign("x")
	if !ok {
		t.Fatal("expected Assign to find x declared in the parent")
	}
	v.Slot = llvm.ConstInt(llvm.Int32Type(), 7, false)
	rootVal, _ := root.Lookup("x")
	if rootVal.Slot.IsNil() {
		t.Fatal("expected mutating the Variable returned by Assign to affect the shared entry")
	}
}

func TestLookupFunctionMissing(t *testing.T) {
	root := New(nil)
	if _, ok := root.LookupFunction("nope"); ok {
		t.Fatal("expected LookupFunction to report missing functions as not found")
	}
}

func TestDeclareFunctionVisibleToChildren(t *testing.T) {
	root := New(nil)
	root.DeclareFunction("f", &Function{Ret: ast.Scalar(ast.Void)})
	child := root.Child()
	if _, ok := child.LookupFunction("f"); !ok {
		t.Fatal("expected a child scope to see functions declared in its parent")
	}
}
