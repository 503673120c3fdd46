package cython

import "strings"

// BuildScript renders build.py, which compiles the wrapper and the native
// source into one extension module named after the model.
func (e *Emitter) BuildScript() []byte {
	w := e.writer(banner)
	w.Line("from setuptools import setup, Extension")
	w.Line("from Cython.Build import cythonize")
	w.Line("import numpy as np")
	w.Blank()

	includes := []string{"np.get_include()"}
	for _, dir := range e.opt.IncludeDirs {
		includes = append(includes, pyRaw(dir))
	}
	w.Group("extensions = [", "]", false, func() {
		w.Group("Extension(", ")", false, func() {
			w.Linef("%q,", e.info.Model)
			w.Group("[", "],", false, func() {
				w.Line(pyRaw(e.opt.WrapperSource) + ",")
				w.Line(pyRaw(e.opt.NativeSource) + ",")
			})
			w.Line("include_dirs=[" + strings.Join(includes, ", ") + "],")
		})
	})
	w.Blank()
	w.Line("setup(ext_modules=cythonize(extensions))")
	return w.Bytes()
}

// pyRaw quotes s as a Python string literal, raw when s allows it.
func pyRaw(s string) string {
	if !strings.ContainsAny(s, "\"\n") && !strings.HasSuffix(s, `\`) {
		return `r"` + s + `"`
	}
	return `"` + pyEscaper.Replace(s) + `"`
}

var pyEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
