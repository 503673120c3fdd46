package cython

import (
	"spbg/internal/codeinfo"
	"spbg/internal/emit"
	"spbg/internal/marshal"
)

// Converter names used by the wrapper class.
const (
	convertInput    = "convert_input"
	convertOutput   = "convert_output"
	convertParamP2C = "convert_param_p2c"
	convertParamC2P = "convert_param_c2p"
)

// Wrapper renders the extension module (.pyx). The wrapper class owns one
// native instance and exposes initialize, terminate, set_param, get_param and
// step(input) -> output; all per-field work happens in generated converters.
func (e *Emitter) Wrapper() ([]byte, error) {
	inType, err := e.qualify(e.input.Argument)
	if err != nil {
		return nil, err
	}
	outType, err := e.qualify(e.output.Return)
	if err != nil {
		return nil, err
	}
	var paramType string
	if e.hasParam {
		if paramType, err = e.qualify(e.param.Type); err != nil {
			return nil, err
		}
	}

	w := e.writer(directives, banner, cimports)
	w.Linef("from %s cimport %s", e.opt.DeclModule, e.class.Name)
	w.Blank()

	var convErr error
	w.Block("cdef class "+e.opt.WrapperModule+":", func() {
		w.Linef("cdef %s c_sim", e.class.Name)
		w.Blank()
		w.Block("def __init__(self):", func() {
			w.Line("pass")
		})
		e.lifecycle(w, "initialize", codeinfo.RoleInitialize)
		e.lifecycle(w, "terminate", codeinfo.RoleTerminate)
		if e.hasParam {
			w.Block("def set_param(self, param):", func() {
				w.Linef("self.c_sim.%s = self.%s(param)", e.param.Name, convertParamP2C)
			})
			w.Block("def get_param(self):", func() {
				w.Linef("return self.%s(self.c_sim.%s)", convertParamC2P, e.param.Name)
			})
		}
		w.Block("cdef "+outType+" _step(self, "+inType+" rtU):", func() {
			w.Linef("self.c_sim.%s(&rtU)", e.input.Name)
			if step, ok := e.class.Method(codeinfo.RoleStep); ok {
				w.Linef("self.c_sim.%s()", step.Name)
			}
			w.Linef("return self.c_sim.%s()", e.output.Name)
		})
		w.Block("def step(self, input):", func() {
			w.Linef("rtu = self.%s(input)", convertInput)
			w.Line("rty = self._step(rtu)")
			w.Linef("return self.%s(rty)", convertOutput)
		})

		convErr = e.converters(w, inType, outType, paramType)
	})
	if convErr != nil {
		return nil, convErr
	}
	return w.Bytes(), nil
}

func (e *Emitter) lifecycle(w *emit.Writer, name string, role codeinfo.Role) {
	w.Block("cpdef void "+name+"(self):", func() {
		m, ok := e.class.Method(role)
		if !ok {
			w.Line("pass")
			return
		}
		w.Linef("self.c_sim.%s()", m.Name)
	})
}

// converters writes the four converter methods. The output payload is
// positional; the parameter block round-trips in keyed form.
func (e *Emitter) converters(w *emit.Writer, inType, outType, paramType string) error {
	var err error
	w.Block("cdef "+inType+" "+convertInput+"(self, input_p):", func() {
		err = e.toNative(w, "input_p", e.input.Argument)
	})
	if err != nil {
		return err
	}
	w.Block("cdef "+convertOutput+"(self, "+outType+" output_c):", func() {
		err = e.toManaged(w, "output_c", e.output.Return, marshal.Positional)
	})
	if err != nil || !e.hasParam {
		return err
	}
	w.Block("cdef "+paramType+" "+convertParamP2C+"(self, param_p):", func() {
		err = e.toNative(w, "param_p", e.param.Type)
	})
	if err != nil {
		return err
	}
	w.Block("cdef "+convertParamC2P+"(self, "+paramType+" param_c):", func() {
		err = e.toManaged(w, "param_c", e.param.Type, marshal.Keyed)
	})
	return err
}
