package codeinfo

import (
	"golang.org/x/text/unicode/norm"

	"spbg/internal/diag"
	"spbg/internal/types"
)

// Options names the methods and fields that metadata does not mark by role.
type Options struct {
	InputSetter  string
	OutputGetter string
	// ParamField is where the parameter block lives when metadata does not
	// say; ParamAlias is the name it is exposed under.
	ParamField string
	ParamAlias string
}

// DefaultOptions matches the toolchain's default naming.
func DefaultOptions() Options {
	return Options{
		InputSetter:  "setExternalInputs",
		OutputGetter: "getExternalOutputs",
		ParamField:   "rtP",
		ParamAlias:   "rtP",
	}
}

// Extract builds the CodeInfo for m, registering every method and field type
// in reg. Method types are registered before field types.
func Extract(m *Metadata, reg *types.Registry, opts Options) (*CodeInfo, error) {
	if m == nil {
		return nil, diag.Errorf(diag.MetMalformed, "no metadata")
	}
	initFn, err := first(m.InitializeFunctions, "InitializeFunctions")
	if err != nil {
		return nil, err
	}
	if initFn.Owner == nil || initFn.Owner.Type == nil {
		return nil, diag.Errorf(diag.MetMissingSection, "InitializeFunctions has no owning class")
	}
	output, err := first(m.OutputFunctions, "OutputFunctions")
	if err != nil {
		return nil, err
	}
	if output.Timing == nil {
		return nil, diag.Errorf(diag.MetMissingSection, "OutputFunctions has no Timing")
	}

	ct := initFn.Owner.Type
	className := norm.NFC.String(ct.Identifier)
	if className == "" {
		className = norm.NFC.String(ct.Name)
	}
	if className == "" {
		return nil, diag.Errorf(diag.MetMissingSection, "owning class has no name")
	}

	roles := make(map[string]Role, 6)
	roles[className] = RoleConstructor
	roles[norm.NFC.String(initFn.Prototype.Name)] = RoleInitialize
	roles[norm.NFC.String(output.Prototype.Name)] = RoleStep
	if term, ok := firstOK(m.TerminateFunctions); ok && term.Prototype.Name != "" {
		roles[norm.NFC.String(term.Prototype.Name)] = RoleTerminate
	}
	roles[opts.InputSetter] = RoleInputSetter
	roles[opts.OutputGetter] = RoleOutputGetter

	class := Class{
		Name:   className,
		Header: initFn.Prototype.HeaderFile,
		Source: initFn.Prototype.SourceFile,
	}
	seen := make(map[Role]bool, len(roles))
	for _, md := range ct.Methods {
		meth, err := parseMethod(md, reg)
		if err != nil {
			return nil, err
		}
		role := roles[meth.Name]
		if role != RoleAuxiliary && seen[role] {
			role = RoleAuxiliary
		}
		meth.Role = role
		seen[role] = true
		class.Methods = append(class.Methods, meth)
	}
	if !seen[RoleInputSetter] {
		return nil, diag.Errorf(diag.MetMissingMethod, "class %s has no input setter %q", className, opts.InputSetter)
	}
	if !seen[RoleOutputGetter] {
		return nil, diag.Errorf(diag.MetMissingMethod, "class %s has no output getter %q", className, opts.OutputGetter)
	}
	synthesize(&class, roles, seen)

	for _, el := range ct.Elements {
		id := norm.NFC.String(el.Identifier)
		if types.IsInternalField(id) {
			continue
		}
		if el.Type == nil {
			return nil, diag.Errorf(diag.TypeMissingDescriptor, "field %q has no type", id)
		}
		t, err := reg.Register(el.Type)
		if err != nil {
			return nil, err
		}
		class.Fields = append(class.Fields, Field{Name: id, Type: t})
	}

	fallback := opts.ParamField
	if discovered, ok := m.ParameterField(); ok {
		if _, exists := class.Field(discovered); exists {
			fallback = discovered
		}
	}
	class.NormalizeParam(fallback, opts.ParamAlias)

	return &CodeInfo{
		Model:        m.Name,
		SamplePeriod: output.Timing.SamplePeriod,
		Class:        class,
	}, nil
}

func parseMethod(md MethodDesc, reg *types.Registry) (Method, error) {
	meth := Method{
		Name:     norm.NFC.String(md.Name),
		Return:   types.Void,
		Argument: types.NoArgs,
	}
	if !md.Type.Empty() {
		t, err := reg.Register(md.Type.Type)
		if err != nil {
			return Method{}, err
		}
		meth.Return = t
	}
	if !md.Arguments.Empty() {
		t, err := reg.Register(md.Arguments.Type)
		if err != nil {
			return Method{}, err
		}
		meth.Argument = t
	}
	return meth, nil
}

// synthesize declares lifecycle methods the metadata left out of the class
// method list. Older toolchains omit the constructor.
func synthesize(class *Class, roles map[string]Role, seen map[Role]bool) {
	if !seen[RoleConstructor] {
		ctor := Method{Role: RoleConstructor, Name: class.Name, Return: types.Void, Synthesized: true}
		class.Methods = append([]Method{ctor}, class.Methods...)
	}
	for _, role := range []Role{RoleInitialize, RoleStep, RoleTerminate} {
		if seen[role] {
			continue
		}
		name, ok := nameFor(roles, role)
		if !ok {
			continue
		}
		class.Methods = append(class.Methods, Method{
			Role:        role,
			Name:        name,
			Return:      types.Void,
			Synthesized: true,
		})
	}
}

func nameFor(roles map[string]Role, role Role) (string, bool) {
	for name, r := range roles {
		if r == role && name != "" {
			return name, true
		}
	}
	return "", false
}

func first(fns types.OneOrMany[Function], section string) (Function, error) {
	fn, ok := firstOK(fns)
	if !ok {
		return Function{}, diag.Errorf(diag.MetMissingSection, "metadata has no %s", section)
	}
	return fn, nil
}

func firstOK(fns types.OneOrMany[Function]) (Function, bool) {
	if len(fns) == 0 {
		return Function{}, false
	}
	return fns[0], true
}
