// Package testkit builds model metadata and complete context directories for
// tests across the generator.
package testkit

import (
	"encoding/json"
	"fmt"
)

// Obj is a JSON object under construction.
type Obj = map[string]any

// None is how the toolchain spells "no type" and "no arguments".
var None = []any{}

// Scalar describes a scalar native type.
func Scalar(name string) Obj {
	return Obj{"Name": name, "Identifier": name}
}

// Matrix describes an array type with the given extents.
func Matrix(name string, base Obj, dims ...int) Obj {
	var d any = dims
	if len(dims) == 1 {
		d = dims[0]
	}
	return Obj{"Name": name, "Dimensions": d, "BaseType": base}
}

// Member is one struct element.
func Member(name string, t Obj) Obj {
	return Obj{"Identifier": name, "Type": t}
}

// Struct describes a struct type; scope may be empty.
func Struct(scope, name string, members ...Obj) Obj {
	id := name
	if scope != "" {
		id = scope + "::" + name
	}
	list := make([]any, len(members))
	for i, m := range members {
		list[i] = m
	}
	return Obj{"Name": name, "Identifier": id, "Elements": list}
}

// Method describes a class method; use None for a missing type or argument.
func Method(name string, ret, args any) Obj {
	return Obj{"Name": name, "Type": ret, "Arguments": args}
}

// Model assembles a full metadata document.
type Model struct {
	Name         string
	Class        string
	Header       string
	Source       string
	SamplePeriod float64
	Methods      []Obj
	Fields       []Obj
	Types        []Obj
	// OmitTerminate drops the TerminateFunctions section.
	OmitTerminate bool
	// ParamRegion, when set, is listed as the parameter region under
	// Parameters.
	ParamRegion string
}

// JSON renders the model as codeInfo.json content.
func (m Model) JSON() []byte {
	header := m.Header
	if header == "" {
		header = m.Class + ".h"
	}
	source := m.Source
	if source == "" {
		source = m.Class + ".cpp"
	}
	methods := make([]any, len(m.Methods))
	for i, v := range m.Methods {
		methods[i] = v
	}
	fields := make([]any, len(m.Fields))
	for i, v := range m.Fields {
		fields[i] = v
	}
	typeList := make([]any, len(m.Types))
	for i, v := range m.Types {
		typeList[i] = v
	}
	doc := Obj{
		"Name": m.Name,
		"InitializeFunctions": Obj{
			"Owner": Obj{
				"Identifier": m.Name + "_Obj",
				"Type": Obj{
					"Name":       m.Class,
					"Identifier": m.Class,
					"Methods":    methods,
					"Elements":   fields,
				},
			},
			"Prototype": Obj{"Name": "initialize", "HeaderFile": header, "SourceFile": source},
		},
		"OutputFunctions": []any{
			Obj{
				"Prototype": Obj{"Name": "step", "HeaderFile": header, "SourceFile": source},
				"Timing":    Obj{"SamplePeriod": m.SamplePeriod},
			},
		},
		"Types": typeList,
	}
	if m.ParamRegion != "" {
		doc["Parameters"] = []any{
			Obj{"Implementation": Obj{"BaseRegion": Obj{"ElementIdentifier": m.ParamRegion}}},
		}
	}
	if !m.OmitTerminate {
		doc["TerminateFunctions"] = Obj{"Prototype": Obj{"Name": "terminate"}}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(fmt.Errorf("testkit: marshal metadata: %w", err))
	}
	return data
}

// Minimal is one class with initialize/step/terminate, input {Action},
// output {State} and parameters {Gain}.
func Minimal() Model {
	const class = "Plant"
	extU := Struct(class, "ExtU", Member("Action", Scalar("double")))
	extY := Struct(class, "ExtY", Member("State", Scalar("double")))
	param := Struct(class, "P", Member("Gain", Scalar("double")))
	return Model{
		Name:         "plant",
		Class:        class,
		SamplePeriod: 0.01,
		Methods: []Obj{
			Method("initialize", None, None),
			Method("step", None, None),
			Method("terminate", None, None),
			Method("setExternalInputs", None, extU),
			Method("getExternalOutputs", extY, None),
		},
		Fields: []Obj{Member("rtP", param)},
		Types: []Obj{
			{"Name": "ExtU", "Identifier": class + "::ExtU"},
			{"Name": "ExtY", "Identifier": class + "::ExtY"},
			{"Name": "P", "Identifier": class + "::P"},
		},
	}
}

// WithParamRegion renames the rtP field to region and lists region as the
// parameter region, the way newer toolchains name the parameter member.
func (m Model) WithParamRegion(region string) Model {
	fields := make([]Obj, len(m.Fields))
	for i, f := range m.Fields {
		if f["Identifier"] == "rtP" {
			f = Member(region, f["Type"].(Obj))
		}
		fields[i] = f
	}
	m.Fields = fields
	m.ParamRegion = region
	return m
}

// Rich exercises every shape: a scalar, an array and a nested struct in
// metadata order, single-element wrappers, an unscoped parameter struct and
// internal-state fields.
func Rich() Model {
	const class = "VehicleModelClass"
	dbl := Scalar("double")
	wrapped := Matrix("matrix1x1xdouble", dbl, 1, 1)
	cmd := Struct(class, "Cmd", Member("Steer", dbl), Member("Enabled", Scalar("boolean")))
	extU := Struct(class, "ExtU",
		Member("Throttle", wrapped),
		Member("Lidar", Matrix("matrix1x4double", dbl, 1, 4)),
		Member("Command", cmd),
	)
	pose := Struct(class, "Pose", Member("X", dbl), Member("Y", dbl))
	extY := Struct(class, "ExtY",
		Member("Speed", dbl),
		Member("Wheel", Matrix("matrix3double", dbl, 3)),
		Member("Pose", pose),
	)
	limits := Struct("", "Limits_Vehicle_T", Member("Max", dbl), Member("Min", dbl))
	param := Struct("", "P_Vehicle_T",
		Member("Mass", dbl),
		Member("Gains", Matrix("matrix1x2double", dbl, 2)),
		Member("Limits", limits),
	)
	dw := Struct(class, "DW_Vehicle_T", Member("state", dbl))
	blk := Struct(class, "B_Vehicle_T", Member("sig", dbl))
	return Model{
		Name:         "vehicle",
		Class:        class,
		Header:       "vehicle.h",
		Source:       "vehicle.cpp",
		SamplePeriod: 0.001,
		Methods: []Obj{
			Method(class, None, None),
			Method("initialize", None, None),
			Method("step", None, None),
			Method("terminate", None, None),
			Method("setExternalInputs", None, []any{Member("pExtU", extU)}),
			Method("getExternalOutputs", extY, None),
			Method("getRTM", Scalar("RT_MODEL_Vehicle_T"), None),
		},
		Fields: []Obj{
			Member("Vehicle_B", blk),
			Member("Vehicle_DW", dw),
			Member("rtP", param),
			Member("Counter", Scalar("uint32")),
		},
		Types: []Obj{
			{"Name": "Cmd", "Identifier": class + "::Cmd"},
			{"Name": "ExtU", "Identifier": class + "::ExtU"},
			{"Name": "Pose", "Identifier": class + "::Pose"},
			{"Name": "ExtY", "Identifier": class + "::ExtY"},
			{"Name": "P_Vehicle_T", "Identifier": "P_Vehicle_T"},
			{"Name": "Limits_Vehicle_T", "Identifier": "Limits_Vehicle_T"},
			{"Name": "DW_Vehicle_T", "Identifier": class + "::DW_Vehicle_T"},
			{"Name": "B_Vehicle_T", "Identifier": class + "::B_Vehicle_T"},
		},
	}
}
