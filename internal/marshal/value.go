package marshal

import (
	"spbg/internal/diag"
	"spbg/internal/types"
)

// Native is an in-memory native struct: scalars are stored as is, arrays as
// fixed-length slices and nested structs as Native.
type Native map[string]any

// ToManaged converts native value v of type name to its managed form. Arrays
// are copied in one bulk copy; structs become a map for Keyed and a slice in
// declared order for Positional, at every depth.
func ToManaged(r Resolver, name string, v any, s Strategy) (any, error) {
	rec, err := r.MustLookup(name)
	if err != nil {
		return nil, err
	}
	switch rec.Mode {
	case types.ModeScalar:
		return v, nil
	case types.ModeArray:
		src, ok := v.([]any)
		if !ok {
			return nil, diag.Errorf(diag.GenUnsupportedType, "value of %q is %T, not an array", name, v)
		}
		out := make([]any, len(src))
		copy(out, src)
		return out, nil
	case types.ModeStruct:
		src, ok := v.(Native)
		if !ok {
			return nil, diag.Errorf(diag.GenNotStruct, "value of %q is %T, not a struct", name, v)
		}
		keyed := make(map[string]any, len(rec.Elements))
		positional := make([]any, 0, len(rec.Elements))
		for _, el := range rec.Elements {
			mv, err := ToManaged(r, el.Type, src[el.Name], s)
			if err != nil {
				return nil, err
			}
			keyed[el.Name] = mv
			positional = append(positional, mv)
		}
		if s == Positional {
			return positional, nil
		}
		return keyed, nil
	default:
		return nil, diag.Errorf(diag.GenUnsupportedType, "type %q has unknown mode %s", name, rec.Mode)
	}
}

// ToNative builds a native value of struct type name from managed value m,
// assigning every leaf from the managed value at its field path. A path step
// reads a map by field name and a slice by declared position. Array leaves
// take the native size; surplus managed items are dropped.
func ToNative(r Resolver, name string, m any) (Native, error) {
	root, err := RequireStruct(r, name)
	if err != nil {
		return nil, err
	}
	leaves, err := Leaves(r, name)
	if err != nil {
		return nil, err
	}
	out := Native{}
	for _, leaf := range leaves {
		v, err := managedAt(r, root, m, leaf.Path)
		if err != nil {
			return nil, err
		}
		if leaf.Record.Mode == types.ModeArray {
			src, ok := v.([]any)
			if !ok {
				return nil, diag.Errorf(diag.GenUnsupportedType, "managed value at %v is %T, not an array", leaf.Path, v)
			}
			arr := make([]any, leaf.Record.Size)
			copy(arr, src)
			v = arr
		}
		setNative(out, leaf.Path, v)
	}
	return out, nil
}

func managedAt(r Resolver, rec types.Record, m any, path []string) (any, error) {
	cur := m
	for _, step := range path {
		pos := -1
		var elType string
		for i, el := range rec.Elements {
			if el.Name == step {
				pos, elType = i, el.Type
				break
			}
		}
		if pos < 0 {
			return nil, diag.Errorf(diag.TypeUnknown, "%s has no field %q", rec.Name, step)
		}
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[step]
			if !ok {
				return nil, diag.Errorf(diag.GenUnsupportedType, "managed value has no key %q", step)
			}
			cur = v
		case []any:
			if pos >= len(c) {
				return nil, diag.Errorf(diag.GenUnsupportedType, "managed sequence has no position %d for %q", pos, step)
			}
			cur = c[pos]
		default:
			return nil, diag.Errorf(diag.GenNotStruct, "managed value at %q is %T", step, cur)
		}
		next, err := r.MustLookup(elType)
		if err != nil {
			return nil, err
		}
		rec = next
	}
	return cur, nil
}

func setNative(n Native, path []string, v any) {
	for _, step := range path[:len(path)-1] {
		child, ok := n[step].(Native)
		if !ok {
			child = Native{}
			n[step] = child
		}
		n = child
	}
	n[path[len(path)-1]] = v
}
