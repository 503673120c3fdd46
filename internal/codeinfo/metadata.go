package codeinfo

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"

	"spbg/internal/diag"
	"spbg/internal/types"
)

// Metadata is the subset of the model interface description the generator
// reads. Function sections are lists in some toolchain versions and single
// objects in others; only the first entry is used.
type Metadata struct {
	Name                string                             `json:"Name"`
	InitializeFunctions types.OneOrMany[Function]          `json:"InitializeFunctions"`
	OutputFunctions     types.OneOrMany[Function]          `json:"OutputFunctions"`
	TerminateFunctions  types.OneOrMany[Function]          `json:"TerminateFunctions"`
	Parameters          types.OneOrMany[Parameter]         `json:"Parameters"`
	Types               types.OneOrMany[*types.Descriptor] `json:"Types"`
}

// Function is one entry of a function section.
type Function struct {
	Owner     *Owner    `json:"Owner"`
	Prototype Prototype `json:"Prototype"`
	Timing    *Timing   `json:"Timing"`
}

// Owner names the instance that owns a function and describes its class.
type Owner struct {
	Identifier string     `json:"Identifier"`
	Type       *ClassType `json:"Type"`
}

// ClassType describes the generated model class.
type ClassType struct {
	Name       string                             `json:"Name"`
	Identifier string                             `json:"Identifier"`
	Methods    types.OneOrMany[MethodDesc]        `json:"Methods"`
	Elements   types.OneOrMany[types.ElementDesc] `json:"Elements"`
}

// MethodDesc is a class method as described by metadata.
type MethodDesc struct {
	Name      string    `json:"Name"`
	Type      Signature `json:"Type"`
	Arguments Signature `json:"Arguments"`
}

// Prototype carries the symbol name and the files that implement it.
type Prototype struct {
	Name       string `json:"Name"`
	HeaderFile string `json:"HeaderFile"`
	SourceFile string `json:"SourceFile"`
}

// Timing holds the rate a function runs at.
type Timing struct {
	SamplePeriod float64 `json:"SamplePeriod"`
}

// Parameter is a model parameter entry. Only the field that stores the
// parameter block is of interest; older toolchains leave it out entirely.
type Parameter struct {
	Implementation *struct {
		BaseRegion *struct {
			ElementIdentifier string `json:"ElementIdentifier"`
		} `json:"BaseRegion"`
	} `json:"Implementation"`
}

// Signature is a return or argument type slot. Metadata spells "nothing" as
// an empty list or an empty object; an argument list may hold bare type
// descriptors or {Identifier, Type} records, of which the first is used.
type Signature struct {
	Type *types.Descriptor
}

// Empty reports whether the slot holds no type.
func (s Signature) Empty() bool {
	return s.Type == nil
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	s.Type = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}
		trimmed = bytes.TrimSpace(list[0])
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	_, hasType := keys["Type"]
	_, hasName := keys["Name"]
	if hasType && !hasName {
		var arg types.ElementDesc
		if err := json.Unmarshal(trimmed, &arg); err != nil {
			return err
		}
		s.Type = arg.Type
		return nil
	}
	var d types.Descriptor
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return err
	}
	s.Type = &d
	return nil
}

// Decode parses metadata from r.
func Decode(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, diag.Errorf(diag.MetMalformed, "invalid metadata: %v", err)
	}
	return &m, nil
}

// Load reads and parses the metadata file at path.
func Load(path string) (*Metadata, error) {
	// #nosec G304 -- path comes from the context directory the user named
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, diag.Errorf(diag.CtxMissingFile, "metadata file %s not found", path)
		}
		return nil, diag.Wrap(diag.IOReadFailed, path, err)
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			return nil, de.WithPath(path)
		}
		return nil, err
	}
	return m, nil
}

// ParameterField reports the field that stores the parameter block when the
// metadata exposes it.
func (m *Metadata) ParameterField() (string, bool) {
	for _, p := range m.Parameters {
		if p.Implementation == nil || p.Implementation.BaseRegion == nil {
			continue
		}
		if id := p.Implementation.BaseRegion.ElementIdentifier; id != "" {
			return id, true
		}
	}
	return "", false
}
