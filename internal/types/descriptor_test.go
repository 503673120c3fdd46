package types

import (
	"encoding/json"
	"testing"
)

func TestDescriptorToleratesShapes(t *testing.T) {
	src := `{
		"Name": "ExtU",
		"Identifier": "Model::ExtU",
		"Elements": {"Identifier": "Action", "Type": {"Name": "double"}}
	}`
	var d Descriptor
	if err := json.Unmarshal([]byte(src), &d); err != nil {
		t.Fatal(err)
	}
	if d.Elements == nil || len(*d.Elements) != 1 || (*d.Elements)[0].Identifier != "Action" {
		t.Fatalf("single element object not read as list: %+v", d.Elements)
	}

	var arr Descriptor
	if err := json.Unmarshal([]byte(`{"Name":"matrix3double","Dimensions":3,"BaseType":{"Name":"double"}}`), &arr); err != nil {
		t.Fatal(err)
	}
	if arr.Dimensions == nil || len(*arr.Dimensions) != 1 || (*arr.Dimensions)[0] != 3 {
		t.Fatalf("bare dimension not read as list: %+v", arr.Dimensions)
	}

	var scalar Descriptor
	if err := json.Unmarshal([]byte(`{"Name":"double","Elements":null}`), &scalar); err != nil {
		t.Fatal(err)
	}
	if scalar.Elements != nil || scalar.Dimensions != nil {
		t.Fatalf("scalar must have neither elements nor dimensions")
	}

	var empty Descriptor
	if err := json.Unmarshal([]byte(`{"Name":"Empty","Elements":[]}`), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.Elements == nil || len(*empty.Elements) != 0 {
		t.Fatalf("empty element list must still mark a struct")
	}
}

func TestDimensionsRejectFractions(t *testing.T) {
	var d Dimensions
	if err := json.Unmarshal([]byte(`[1, 2.5]`), &d); err == nil {
		t.Fatalf("expected error for fractional extent")
	}
	if err := json.Unmarshal([]byte(`[1.0, 3]`), &d); err != nil {
		t.Fatal(err)
	}
	if d.Product() != 3 {
		t.Fatalf("product = %d", d.Product())
	}
	if (Dimensions{}).Product() != 1 {
		t.Fatalf("empty product must be 1")
	}
}
