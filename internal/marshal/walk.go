// Package marshal walks canonical types in declared field order. The Cython
// converter emitters are written as visitors over Walk, and ToManaged and
// ToNative evaluate the same walks over in-memory values.
package marshal

import (
	"fmt"

	"spbg/internal/diag"
	"spbg/internal/types"
)

// Strategy selects the managed shape of a struct.
type Strategy uint8

const (
	// Keyed renders a struct as a field name to value mapping.
	Keyed Strategy = iota
	// Positional renders a struct as a sequence in declared field order.
	Positional
)

func (s Strategy) String() string {
	switch s {
	case Keyed:
		return "keyed"
	case Positional:
		return "positional"
	default:
		return fmt.Sprintf("Strategy(%d)", s)
	}
}

// Resolver looks canonical types up by name.
type Resolver interface {
	MustLookup(name string) (types.Record, error)
}

// Visitor receives the nodes of a walk. Path holds the field names from the
// root to the node; it is empty for the root and must not be retained.
type Visitor interface {
	Scalar(path []string, rec types.Record) error
	Array(path []string, rec types.Record) error
	EnterStruct(path []string, rec types.Record) error
	LeaveStruct(path []string, rec types.Record) error
}

// maxDepth bounds recursion through self-referencing metadata.
const maxDepth = 64

// Walk visits the type called name depth-first in declared order.
func Walk(r Resolver, name string, v Visitor) error {
	return walk(r, name, nil, v)
}

func walk(r Resolver, name string, path []string, v Visitor) error {
	if len(path) > maxDepth {
		return diag.Errorf(diag.GenUnsupportedType, "type %q nests deeper than %d levels", name, maxDepth)
	}
	rec, err := r.MustLookup(name)
	if err != nil {
		return err
	}
	switch rec.Mode {
	case types.ModeScalar:
		return v.Scalar(path, rec)
	case types.ModeArray:
		return v.Array(path, rec)
	case types.ModeStruct:
		if err := v.EnterStruct(path, rec); err != nil {
			return err
		}
		for _, el := range rec.Elements {
			if err := walk(r, el.Type, append(path[:len(path):len(path)], el.Name), v); err != nil {
				return err
			}
		}
		return v.LeaveStruct(path, rec)
	default:
		return diag.Errorf(diag.GenUnsupportedType, "type %q has unknown mode %s", name, rec.Mode)
	}
}

// Leaf is a scalar or array reached from a root struct.
type Leaf struct {
	Path   []string
	Record types.Record
}

// Leaves lists every leaf of the type called name in declared order.
func Leaves(r Resolver, name string) ([]Leaf, error) {
	var c leafCollector
	if err := Walk(r, name, &c); err != nil {
		return nil, err
	}
	return c.leaves, nil
}

type leafCollector struct {
	leaves []Leaf
}

func (c *leafCollector) add(path []string, rec types.Record) error {
	c.leaves = append(c.leaves, Leaf{Path: append([]string(nil), path...), Record: rec})
	return nil
}

func (c *leafCollector) Scalar(path []string, rec types.Record) error { return c.add(path, rec) }
func (c *leafCollector) Array(path []string, rec types.Record) error { return c.add(path, rec) }
func (c *leafCollector) EnterStruct([]string, types.Record) error { return nil }
func (c *leafCollector) LeaveStruct([]string, types.Record) error { return nil }

// RequireStruct fails unless the type called name is a struct.
func RequireStruct(r Resolver, name string) (types.Record, error) {
	rec, err := r.MustLookup(name)
	if err != nil {
		return types.Record{}, err
	}
	if rec.Mode != types.ModeStruct {
		return types.Record{}, diag.Errorf(diag.GenNotStruct, "type %q is a %s, not a struct", name, rec.Mode)
	}
	return rec, nil
}
