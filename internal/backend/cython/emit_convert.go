package cython

import (
	"fmt"
	"strings"

	"spbg/internal/emit"
	"spbg/internal/marshal"
	"spbg/internal/types"
)

// toManaged writes the body of a native to managed converter for the struct
// variable src of type typeName. Arrays are copied out in one bulk read
// through a typed memory view.
func (e *Emitter) toManaged(w *emit.Writer, src, typeName string, s marshal.Strategy) error {
	return marshal.Walk(e.reg, typeName, &managedWriter{w: w, src: src, strategy: s})
}

type managedWriter struct {
	w        *emit.Writer
	src      string
	strategy marshal.Strategy
}

func (v *managedWriter) brackets() (string, string) {
	if v.strategy == marshal.Positional {
		return "(", ")"
	}
	return "{", "}"
}

func (v *managedWriter) access(path []string) string {
	return v.src + "." + strings.Join(path, ".")
}

func (v *managedWriter) value(path []string, value string) {
	if v.strategy == marshal.Positional {
		v.w.Line(value + ",")
		return
	}
	v.w.Linef("%q: %s,", path[len(path)-1], value)
}

func (v *managedWriter) Scalar(path []string, _ types.Record) error {
	v.value(path, v.access(path))
	return nil
}

func (v *managedWriter) Array(path []string, rec types.Record) error {
	info, err := scalar(rec.Base)
	if err != nil {
		return err
	}
	v.value(path, fmt.Sprintf("np.asarray(<np.%s[:%d]> %s).copy()", info.view, rec.Size, v.access(path)))
	return nil
}

func (v *managedWriter) EnterStruct(path []string, _ types.Record) error {
	open, _ := v.brackets()
	switch {
	case len(path) == 0:
		v.w.Line("return " + open)
	case v.strategy == marshal.Keyed:
		v.w.Linef("%q: ", path[len(path)-1])
		v.w.Append(open)
	default:
		v.w.Line(open)
	}
	v.w.IndentPush()
	return nil
}

func (v *managedWriter) LeaveStruct(path []string, _ types.Record) error {
	_, closing := v.brackets()
	v.w.IndentPop()
	if len(path) == 0 {
		v.w.Line(closing)
		return nil
	}
	v.w.Line(closing + ",")
	return nil
}

// toNative writes the body of a managed to native converter: it declares a
// native temporary, assigns every leaf from the managed mapping at its field
// path and returns the temporary. Array leaves borrow the managed buffer
// through a typed view.
func (e *Emitter) toNative(w *emit.Writer, src, typeName string) error {
	qualified, err := e.qualify(typeName)
	if err != nil {
		return err
	}
	leaves, err := marshal.Leaves(e.reg, typeName)
	if err != nil {
		return err
	}
	dst := src + "_c"
	w.Linef("cdef %s %s", qualified, dst)
	for i, leaf := range leaves {
		target := dst + "." + strings.Join(leaf.Path, ".")
		source := src + "['" + strings.Join(leaf.Path, "']['") + "']"
		if leaf.Record.Mode == types.ModeArray {
			if _, err := scalar(leaf.Record.Base); err != nil {
				return err
			}
			view := fmt.Sprintf("__tmp_view_%d", i+1)
			w.Linef("cdef %s[:] %s = %s", leaf.Record.Base, view, source)
			w.Linef("%s = &%s[0]", target, view)
			continue
		}
		w.Linef("%s = %s", target, source)
	}
	w.Line("return " + dst)
	return nil
}
