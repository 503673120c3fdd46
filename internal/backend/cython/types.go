package cython

import (
	"spbg/internal/diag"
	"spbg/internal/types"
)

// scalarInfo spells one canonical scalar on the managed side: the Cython
// numpy element type used by typed memory views, the Python annotation and
// the numpy dtype constant.
type scalarInfo struct {
	view   string
	python string
	numpy  string
}

var scalarTable = map[string]scalarInfo{
	"double":          {view: "double_t", python: "float", numpy: "np.double"},
	"float":           {view: "float32_t", python: "float", numpy: "np.single"},
	"stdint.uint8_t":  {view: "uint8_t", python: "int", numpy: "np.uint8"},
	"stdint.int8_t":   {view: "int8_t", python: "int", numpy: "np.int8"},
	"stdint.int16_t":  {view: "int16_t", python: "int", numpy: "np.int16"},
	"stdint.uint16_t": {view: "uint16_t", python: "int", numpy: "np.uint16"},
	"stdint.int32_t":  {view: "int32_t", python: "int", numpy: "np.int32"},
	"stdint.uint32_t": {view: "uint32_t", python: "int", numpy: "np.uint32"},
}

func scalar(name string) (scalarInfo, error) {
	info, ok := scalarTable[name]
	if !ok {
		return scalarInfo{}, diag.Errorf(diag.GenUnsupportedType, "no managed mapping for native type %q", name)
	}
	return info, nil
}

// qualify renders a type reference for a signature. Struct references are
// qualified with their owning class; an unscoped struct is still reached
// through the model class, which is where the native toolchain puts it.
func (e *Emitter) qualify(name string) (string, error) {
	if name == types.Void || name == types.NoArgs {
		return name, nil
	}
	rec, err := e.reg.MustLookup(name)
	if err != nil {
		return "", err
	}
	if rec.Mode != types.ModeStruct {
		return name, nil
	}
	if rec.Scoped() {
		return rec.Scope + "." + rec.Name, nil
	}
	return e.class.Name + "." + rec.Name, nil
}

// member renders a struct element or class field declaration. A non-empty
// cname binds name to a differently named native member.
func (e *Emitter) member(name, cname, typeName string) (string, error) {
	rec, err := e.reg.MustLookup(typeName)
	if err != nil {
		return "", err
	}
	if cname != "" && cname != name {
		name += ` "` + cname + `"`
	}
	if rec.Mode == types.ModeArray {
		return rec.Base + " " + name + "[" + itoa(rec.Size) + "];", nil
	}
	return rec.Name + " " + name + ";", nil
}
