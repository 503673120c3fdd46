package types

import (
	"testing"

	"spbg/internal/diag"
)

func TestRegisterScalarAndAlias(t *testing.T) {
	r := NewRegistry()
	name, err := r.Register(Scalar("double"))
	if err != nil {
		t.Fatal(err)
	}
	if name != "double" {
		t.Fatalf("name = %q, want double", name)
	}
	u8, err := r.Register(Scalar("logical"))
	if err != nil {
		t.Fatal(err)
	}
	if u8 != "stdint.uint8_t" {
		t.Fatalf("logical should alias to stdint.uint8_t, got %q", u8)
	}
	rec, ok := r.Lookup(u8)
	if !ok || rec.Mode != ModeScalar {
		t.Fatalf("expected scalar record, got %+v", rec)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	desc := Struct("ExtU", Field("Action", Scalar("double")))
	first, err := r.Register(desc)
	if err != nil {
		t.Fatal(err)
	}
	size := r.Len()
	second, err := r.Register(Struct("ExtU", Field("Action", Scalar("double"))))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("names differ: %q vs %q", first, second)
	}
	if r.Len() != size {
		t.Fatalf("registry grew from %d to %d", size, r.Len())
	}
}

func TestDegenerateWrappersUnwrapAtAnyDepth(t *testing.T) {
	r := NewRegistry()
	inner := Scalar("double")
	wrapped := Array("matrix1x1xdouble", inner, 1, 1)
	wrappedTwice := Array("matrix1xmatrix1x1xdouble", wrapped, 1)
	wrappedThrice := Array("wrapper", wrappedTwice)

	for _, d := range []*Descriptor{inner, wrapped, wrappedTwice, wrappedThrice} {
		name, err := r.Register(d)
		if err != nil {
			t.Fatal(err)
		}
		if name != "double" {
			t.Fatalf("%q registered as %q, want double", d.Name, name)
		}
	}
	if r.Len() != 1 {
		t.Fatalf("expected one record, got %d", r.Len())
	}
}

func TestWrapperWithoutBaseFallsBackToStrippedScalar(t *testing.T) {
	r := NewRegistry()
	d := Array("matrix1x1xuint8", nil, 1, 1)
	name, err := r.Register(d)
	if err != nil {
		t.Fatal(err)
	}
	if name != "stdint.uint8_t" {
		t.Fatalf("name = %q, want stdint.uint8_t", name)
	}
}

func TestArrayDropsUnitDimensions(t *testing.T) {
	r := NewRegistry()
	name, err := r.Register(Array("matrix1x3double", Scalar("double"), 1, 3))
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := r.Lookup(name)
	if rec.Mode != ModeArray || rec.Base != "double" || rec.Size != 3 {
		t.Fatalf("unexpected array record %+v", rec)
	}
	if rec.String() != "double[3]" {
		t.Fatalf("String() = %q", rec.String())
	}
}

func TestMultiDimensionalArrayIsRejected(t *testing.T) {
	r := NewRegistry()
	before := r.Len()
	_, err := r.Register(Array("matrix2x3double", Scalar("double"), 2, 3))
	if !diag.Is(err, diag.TypeMultiDimArray) {
		t.Fatalf("expected TypeMultiDimArray, got %v", err)
	}
	if _, ok := r.Lookup("matrix2x3double"); ok {
		t.Fatalf("rejected array must not be recorded")
	}
	if r.Len() != before {
		t.Fatalf("registry grew on failure")
	}
}

func TestInvalidDimensions(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(Array("empty", Scalar("double"), 0))
	if !diag.Is(err, diag.TypeInvalidDimension) {
		t.Fatalf("expected TypeInvalidDimension, got %v", err)
	}
	_, err = r.Register(Array("nobase", nil, 4))
	if !diag.Is(err, diag.TypeMissingDescriptor) {
		t.Fatalf("expected TypeMissingDescriptor, got %v", err)
	}
}

func TestStructRegistersChildrenFirstInOrder(t *testing.T) {
	r := NewRegistry()
	d := Struct("P",
		Field("Gain", Scalar("double")),
		Field("Table", Array("matrix1x4double", Scalar("double"), 4)),
		Field("Sub", Struct("SubP", Field("Flag", Scalar("boolean")))),
	)
	name, err := r.Register(d)
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := r.Lookup(name)
	want := []Element{
		{Name: "Gain", Type: "double"},
		{Name: "Table", Type: "matrix1x4double"},
		{Name: "Sub", Type: "SubP"},
	}
	if len(rec.Elements) != len(want) {
		t.Fatalf("elements = %+v", rec.Elements)
	}
	for i := range want {
		if rec.Elements[i] != want[i] {
			t.Fatalf("element %d = %+v, want %+v", i, rec.Elements[i], want[i])
		}
	}

	var order []string
	for _, rec := range r.Records() {
		order = append(order, rec.Name)
	}
	wantOrder := []string{"double", "matrix1x4double", "stdint.uint8_t", "SubP", "P"}
	if len(order) != len(wantOrder) {
		t.Fatalf("order = %v, want %v", order, wantOrder)
	}
	for i := range wantOrder {
		if order[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", order, wantOrder)
		}
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	r := NewRegistry()
	name, _ := r.Register(Struct("S", Field("a", Scalar("double"))))
	rec, _ := r.Lookup(name)
	rec.Elements[0].Name = "mutated"
	again, _ := r.Lookup(name)
	if again.Elements[0].Name != "a" {
		t.Fatalf("registry record was mutated through a lookup")
	}
}

func TestScopeIsAssignOnce(t *testing.T) {
	r := NewRegistry()
	name, _ := r.Register(Struct("ExtU", Field("Action", Scalar("double"))))
	if err := r.SetScope(name, "Model"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetScope(name, "Model"); err != nil {
		t.Fatalf("repeating the same scope must be a no-op: %v", err)
	}
	if err := r.SetScope(name, "Other"); !diag.Is(err, diag.ScopeConflict) {
		t.Fatalf("expected ScopeConflict, got %v", err)
	}
	rec, _ := r.Lookup(name)
	if rec.Scope != "Model" || !rec.Scoped() {
		t.Fatalf("scope = %q", rec.Scope)
	}
}

func TestSealedRegistryRejectsWrites(t *testing.T) {
	r := NewRegistry()
	r.Seal()
	if _, err := r.Register(Scalar("double")); !diag.Is(err, diag.TypeRegistrySealed) {
		t.Fatalf("expected TypeRegistrySealed, got %v", err)
	}
}

func TestOnRegisterObservesNewRecordsOnly(t *testing.T) {
	r := NewRegistry()
	var seen []string
	r.OnRegister = func(rec Record) { seen = append(seen, rec.Name) }
	_, _ = r.Register(Scalar("double"))
	_, _ = r.Register(Scalar("double"))
	if len(seen) != 1 || seen[0] != "double" {
		t.Fatalf("seen = %v", seen)
	}
}
