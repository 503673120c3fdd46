package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// OneOrMany decodes a JSON value that some toolchain versions emit as a single
// object and others as a list of objects.
type OneOrMany[T any] []T

func (m *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if list == nil {
			list = []T{}
		}
		*m = list
		return nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*m = OneOrMany[T]{one}
	return nil
}

// Descriptor is a native type description as found in model metadata.
// Elements and Dimensions are nil when the key is absent, which is how the
// shape of the type is told apart.
type Descriptor struct {
	Name       string                  `json:"Name"`
	Identifier string                  `json:"Identifier,omitempty"`
	Elements   *OneOrMany[ElementDesc] `json:"Elements,omitempty"`
	Dimensions *Dimensions             `json:"Dimensions,omitempty"`
	BaseType   *Descriptor             `json:"BaseType,omitempty"`
}

// ElementDesc is a named member of a struct descriptor.
type ElementDesc struct {
	Identifier string      `json:"Identifier"`
	Type       *Descriptor `json:"Type"`
}

// Dimensions is a dimension list; a bare number is read as a one-entry list.
type Dimensions []int64

func (d *Dimensions) UnmarshalJSON(data []byte) error {
	var raw OneOrMany[float64]
	if err := raw.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("dimensions: %w", err)
	}
	dims := make(Dimensions, 0, len(raw))
	for _, v := range raw {
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return fmt.Errorf("dimensions: %v is not an integer extent", v)
		}
		dims = append(dims, int64(v))
	}
	*d = dims
	return nil
}

// Product multiplies every extent; the empty list has product 1.
func (d Dimensions) Product() int64 {
	p := int64(1)
	for _, v := range d {
		p *= v
	}
	return p
}

// Struct builds a struct descriptor; used by tests and fixtures.
func Struct(name string, elems ...ElementDesc) *Descriptor {
	list := OneOrMany[ElementDesc](elems)
	if list == nil {
		list = OneOrMany[ElementDesc]{}
	}
	return &Descriptor{Name: name, Identifier: name, Elements: &list}
}

// Array builds an array descriptor over base with the given extents.
func Array(name string, base *Descriptor, dims ...int64) *Descriptor {
	d := Dimensions(dims)
	if d == nil {
		d = Dimensions{}
	}
	return &Descriptor{Name: name, Dimensions: &d, BaseType: base}
}

// Scalar builds a scalar descriptor.
func Scalar(name string) *Descriptor {
	return &Descriptor{Name: name, Identifier: name}
}

// Field builds a struct member.
func Field(name string, t *Descriptor) ElementDesc {
	return ElementDesc{Identifier: name, Type: t}
}
