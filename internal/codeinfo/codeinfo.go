// Package codeinfo turns model interface metadata into the normalized
// description the generators read: the model class, its lifecycle methods,
// its exposed fields and the sample period.
package codeinfo

import (
	"fmt"
	"slices"
)

// Role is the part a method plays in the model lifecycle.
type Role uint8

const (
	RoleAuxiliary Role = iota
	RoleConstructor
	RoleInitialize
	RoleStep
	RoleTerminate
	RoleInputSetter
	RoleOutputGetter
)

var roleNames = [...]string{
	RoleAuxiliary:    "auxiliary",
	RoleConstructor:  "constructor",
	RoleInitialize:   "initialize",
	RoleStep:         "step",
	RoleTerminate:    "terminate",
	RoleInputSetter:  "input-setter",
	RoleOutputGetter: "output-getter",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", r)
}

// Method is one native method of the model class. Return is types.Void and
// Argument is types.NoArgs when the method returns or takes nothing.
type Method struct {
	Role     Role
	Name     string
	Argument string
	Return   string
	// Synthesized marks lifecycle methods the metadata did not list.
	Synthesized bool
}

// Field is an exposed data member of the model class.
type Field struct {
	Name string
	Type string
	// CName is the native member name when Name is an alias for it.
	CName string
}

// Class is the generated model class.
type Class struct {
	Name   string
	Header string
	Source string
	// Methods keeps metadata order; a synthesized constructor comes first and
	// synthesized lifecycle methods come last.
	Methods []Method
	// Fields keeps metadata order with the parameter block moved to the end.
	Fields []Field
	// ParamField is the alias the parameter block is exposed under, or empty
	// when the model has none.
	ParamField string
}

// Method returns the method playing role.
func (c *Class) Method(role Role) (Method, bool) {
	for _, m := range c.Methods {
		if m.Role == role {
			return m, true
		}
	}
	return Method{}, false
}

// Field returns the field called name.
func (c *Class) Field(name string) (Field, bool) {
	i := slices.IndexFunc(c.Fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return c.Fields[i], true
}

// Param returns the parameter block field.
func (c *Class) Param() (Field, bool) {
	if c.ParamField == "" {
		return Field{}, false
	}
	return c.Field(c.ParamField)
}

// NormalizeParam moves the field stored under fallback to the end of the
// field list, renamed to alias. When fallback is absent but alias is already
// present the class is left as is, so repeated calls change nothing. It
// reports whether a parameter block is exposed afterwards.
func (c *Class) NormalizeParam(fallback, alias string) bool {
	if i := slices.IndexFunc(c.Fields, func(f Field) bool { return f.Name == fallback }); i >= 0 {
		f := c.Fields[i]
		c.Fields = slices.Delete(c.Fields, i, i+1)
		if fallback != alias && f.CName == "" {
			f.CName = fallback
		}
		f.Name = alias
		c.Fields = append(c.Fields, f)
		c.ParamField = alias
		return true
	}
	if _, ok := c.Field(alias); ok {
		c.ParamField = alias
		return true
	}
	c.ParamField = ""
	return false
}

// CodeInfo is the normalized model description.
type CodeInfo struct {
	Model        string
	SamplePeriod float64
	Class        Class
}
