// Package cython emits the Cython side of a model binding: the extern
// declaration file, the wrapper extension module, the build script and the
// helper module.
package cython

import (
	"strconv"

	"spbg/internal/codeinfo"
	"spbg/internal/diag"
	"spbg/internal/emit"
	"spbg/internal/marshal"
	"spbg/internal/types"
)

var directives = `# cython: language_level=3
# distutils: language = c++`

var banner = `# ========================================================
# Generated with spbg (Simulink-Python binding generator)
# Based on code generated by MathWorks Embedded Coder
# ========================================================`

var cimports = `from libc cimport stdint
import numpy as np
cimport numpy as np
from cpython cimport array`

// Options names the generated modules and tunes rendering.
type Options struct {
	IndentWidth int
	// DeclModule is the module name of the declaration file.
	DeclModule string
	// WrapperModule is the module name of the wrapper; it also names the
	// wrapper class.
	WrapperModule string
	// WrapperSource and NativeSource are the file names the build script
	// compiles.
	WrapperSource string
	NativeSource  string
	IncludeDirs   []string
}

// Emitter renders every Cython artifact of one model.
type Emitter struct {
	info  *codeinfo.CodeInfo
	class *codeinfo.Class
	reg   *types.Registry
	opt   Options

	input    codeinfo.Method
	output   codeinfo.Method
	param    codeinfo.Field
	hasParam bool
}

// NewEmitter checks that info describes a bindable class. The registry must
// be sealed: every type is registered and scoped before emission starts.
func NewEmitter(info *codeinfo.CodeInfo, reg *types.Registry, opt Options) (*Emitter, error) {
	if info == nil || reg == nil {
		return nil, diag.Errorf(diag.MetMalformed, "no code info to emit")
	}
	if !reg.Sealed() {
		return nil, diag.Errorf(diag.GenPendingScope, "type registry is still open; scopes are not resolved")
	}
	e := &Emitter{info: info, class: &info.Class, reg: reg, opt: opt}
	if e.opt.DeclModule == "" {
		e.opt.DeclModule = info.Class.Name
	}
	if e.opt.WrapperModule == "" {
		e.opt.WrapperModule = info.Class.Name + "_wrapper"
	}

	var ok bool
	if e.input, ok = e.class.Method(codeinfo.RoleInputSetter); !ok {
		return nil, diag.Errorf(diag.MetMissingMethod, "class %s has no input setter", e.class.Name)
	}
	if e.output, ok = e.class.Method(codeinfo.RoleOutputGetter); !ok {
		return nil, diag.Errorf(diag.MetMissingMethod, "class %s has no output getter", e.class.Name)
	}
	if _, err := marshal.RequireStruct(reg, e.input.Argument); err != nil {
		return nil, err
	}
	if _, err := marshal.RequireStruct(reg, e.output.Return); err != nil {
		return nil, err
	}
	if e.param, e.hasParam = e.class.Param(); e.hasParam {
		if _, err := marshal.RequireStruct(reg, e.param.Type); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// HasParam reports whether the wrapper exposes set_param/get_param.
func (e *Emitter) HasParam() bool {
	return e.hasParam
}

func (e *Emitter) writer(presets ...string) *emit.Writer {
	return emit.New(emit.Options{IndentWidth: e.opt.IndentWidth}, presets...)
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
