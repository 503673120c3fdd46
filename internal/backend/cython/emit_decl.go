package cython

import (
	"slices"
	"strings"

	"spbg/internal/codeinfo"
	"spbg/internal/diag"
	"spbg/internal/emit"
	"spbg/internal/types"
)

// Declaration renders the extern declaration file (.pxd). Unscoped structs
// become standalone ctypedefs ahead of the class; structs scoped to the class
// are nested inside it. A scoped struct that no class block consumes is an
// error.
func (e *Emitter) Declaration() ([]byte, error) {
	w := e.writer(directives, banner, cimports)

	pending := make(map[string][]types.Record)
	var standalone []types.Record
	for _, rec := range e.reg.Records() {
		if rec.Mode != types.ModeStruct {
			continue
		}
		if rec.Scoped() {
			pending[rec.Scope] = append(pending[rec.Scope], rec)
			continue
		}
		standalone = append(standalone, rec)
	}

	methods, err := e.methodLines()
	if err != nil {
		return nil, err
	}
	fields, err := e.fieldLines()
	if err != nil {
		return nil, err
	}
	standaloneBodies, err := e.structBodies(standalone)
	if err != nil {
		return nil, err
	}
	nested := pending[e.class.Name]
	delete(pending, e.class.Name)
	nestedBodies, err := e.structBodies(nested)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		var names []string
		for scope, recs := range pending {
			for _, rec := range recs {
				names = append(names, scope+"::"+rec.Name)
			}
		}
		slices.Sort(names)
		return nil, diag.Errorf(diag.GenPendingScope, "scoped types never emitted: %s", strings.Join(names, ", "))
	}

	w.Block("cdef extern from '"+e.class.Header+"':", func() {
		for i, rec := range standalone {
			lines(w, "ctypedef struct "+rec.Name+":", standaloneBodies[i])
		}
		w.Block("cdef cppclass "+e.class.Name+":", func() {
			for i, rec := range nested {
				lines(w, "struct "+rec.Name+":", nestedBodies[i])
			}
			for _, l := range methods {
				w.Line(l)
			}
			for _, l := range fields {
				w.Line(l)
			}
		})
	})
	return w.Bytes(), nil
}

func lines(w *emit.Writer, header string, body []string) {
	w.Block(header, func() {
		if len(body) == 0 {
			w.Line("pass")
		}
		for _, l := range body {
			w.Line(l)
		}
	})
}

func (e *Emitter) structBodies(recs []types.Record) ([][]string, error) {
	out := make([][]string, len(recs))
	for i, rec := range recs {
		body := make([]string, 0, len(rec.Elements))
		for _, el := range rec.Elements {
			l, err := e.member(el.Name, "", el.Type)
			if err != nil {
				return nil, err
			}
			body = append(body, l)
		}
		out[i] = body
	}
	return out, nil
}

func (e *Emitter) methodLines() ([]string, error) {
	out := make([]string, 0, len(e.class.Methods))
	for _, m := range e.class.Methods {
		if m.Role == codeinfo.RoleConstructor {
			out = append(out, e.class.Name+"() except +")
			continue
		}
		ret, err := e.qualify(m.Return)
		if err != nil {
			return nil, err
		}
		arg, err := e.qualify(m.Argument)
		if err != nil {
			return nil, err
		}
		// native code writes through the input argument
		if m.Role == codeinfo.RoleInputSetter && arg != types.NoArgs {
			arg += "*"
		}
		out = append(out, ret+" "+m.Name+"("+arg+")")
	}
	return out, nil
}

func (e *Emitter) fieldLines() ([]string, error) {
	out := make([]string, 0, len(e.class.Fields))
	for _, f := range e.class.Fields {
		l, err := e.member(f.Name, f.CName, f.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
