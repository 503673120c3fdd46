// Package irdump writes a snapshot of the normalized model description and
// the type registry, for inspecting what a generation run saw.
package irdump

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"spbg/internal/codeinfo"
	"spbg/internal/diag"
	"spbg/internal/project"
	"spbg/internal/types"
)

// Current schema version - increment when Snapshot changes shape
const schemaVersion uint16 = 1

// Snapshot is the serialized IR of one run.
type Snapshot struct {
	Schema       uint16       `msgpack:"schema" yaml:"schema" json:"schema"`
	Metadata     string       `msgpack:"metadata_sha256" yaml:"metadata_sha256" json:"metadata_sha256"`
	Model        string       `msgpack:"model" yaml:"model" json:"model"`
	SamplePeriod float64      `msgpack:"sample_period" yaml:"sample_period" json:"sample_period"`
	Class        ClassDump    `msgpack:"class" yaml:"class" json:"class"`
	Records      []RecordDump `msgpack:"records" yaml:"records" json:"records"`
}

type ClassDump struct {
	Name       string       `msgpack:"name" yaml:"name" json:"name"`
	Header     string       `msgpack:"header" yaml:"header" json:"header"`
	Source     string       `msgpack:"source" yaml:"source" json:"source"`
	ParamField string       `msgpack:"param_field,omitempty" yaml:"param_field,omitempty" json:"param_field,omitempty"`
	Methods    []MethodDump `msgpack:"methods" yaml:"methods" json:"methods"`
	Fields     []FieldDump  `msgpack:"fields" yaml:"fields" json:"fields"`
}

type MethodDump struct {
	Role        string `msgpack:"role" yaml:"role" json:"role"`
	Name        string `msgpack:"name" yaml:"name" json:"name"`
	Argument    string `msgpack:"argument" yaml:"argument" json:"argument"`
	Return      string `msgpack:"return" yaml:"return" json:"return"`
	Synthesized bool   `msgpack:"synthesized,omitempty" yaml:"synthesized,omitempty" json:"synthesized,omitempty"`
}

type FieldDump struct {
	Name  string `msgpack:"name" yaml:"name" json:"name"`
	Type  string `msgpack:"type" yaml:"type" json:"type"`
	CName string `msgpack:"cname,omitempty" yaml:"cname,omitempty" json:"cname,omitempty"`
}

type RecordDump struct {
	Name     string      `msgpack:"name" yaml:"name" json:"name"`
	Mode     string      `msgpack:"mode" yaml:"mode" json:"mode"`
	Scope    string      `msgpack:"scope,omitempty" yaml:"scope,omitempty" json:"scope,omitempty"`
	Elements []FieldDump `msgpack:"elements,omitempty" yaml:"elements,omitempty" json:"elements,omitempty"`
	Base     string      `msgpack:"base,omitempty" yaml:"base,omitempty" json:"base,omitempty"`
	Size     uint32      `msgpack:"size,omitempty" yaml:"size,omitempty" json:"size,omitempty"`
}

// Build captures info and every record of reg.
func Build(info *codeinfo.CodeInfo, reg *types.Registry, metadata project.Digest) *Snapshot {
	s := &Snapshot{
		Schema:       schemaVersion,
		Metadata:     metadata.Hex(),
		Model:        info.Model,
		SamplePeriod: info.SamplePeriod,
		Class: ClassDump{
			Name:       info.Class.Name,
			Header:     info.Class.Header,
			Source:     info.Class.Source,
			ParamField: info.Class.ParamField,
		},
	}
	for _, m := range info.Class.Methods {
		s.Class.Methods = append(s.Class.Methods, MethodDump{
			Role:        m.Role.String(),
			Name:        m.Name,
			Argument:    m.Argument,
			Return:      m.Return,
			Synthesized: m.Synthesized,
		})
	}
	for _, f := range info.Class.Fields {
		s.Class.Fields = append(s.Class.Fields, FieldDump{Name: f.Name, Type: f.Type, CName: f.CName})
	}
	for _, rec := range reg.Records() {
		d := RecordDump{Name: rec.Name, Mode: rec.Mode.String(), Scope: rec.Scope, Base: rec.Base, Size: rec.Size}
		for _, el := range rec.Elements {
			d.Elements = append(d.Elements, FieldDump{Name: el.Name, Type: el.Type})
		}
		s.Records = append(s.Records, d)
	}
	return s
}

// Format is a snapshot encoding.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return FormatMsgpack, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, diag.Errorf(diag.CtxInvalidConfig, "unsupported IR snapshot extension %q (want .mp, .msgpack, .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Encode writes s to w in format f.
func Encode(w io.Writer, s *Snapshot, f Format) error {
	switch f {
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return fmt.Errorf("irdump: unknown format %s", f)
	}
}

// Decode reads a snapshot in format f.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	var s Snapshot
	var err error
	switch f {
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&s)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&s)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&s)
	default:
		err = fmt.Errorf("irdump: unknown format %s", f)
	}
	if err != nil {
		return nil, err
	}
	if s.Schema != schemaVersion {
		return nil, fmt.Errorf("irdump: schema %d, want %d", s.Schema, schemaVersion)
	}
	return &s, nil
}

// Write stores s at path, replacing any previous snapshot atomically.
func Write(path string, s *Snapshot) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return diag.Wrap(diag.IOWriteFailed, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".irdump-*")
	if err != nil {
		return diag.Wrap(diag.IOWriteFailed, path, err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()
	if err := Encode(tmp, s, f); err != nil {
		_ = tmp.Close()
		return diag.Wrap(diag.IOWriteFailed, path, err)
	}
	if err := tmp.Close(); err != nil {
		return diag.Wrap(diag.IOWriteFailed, path, err)
	}
	// Атомарная замена
	if err := os.Rename(tmp.Name(), path); err != nil {
		return diag.Wrap(diag.IOWriteFailed, path, err)
	}
	return nil
}

// Read loads the snapshot at path.
func Read(path string) (*Snapshot, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path names a snapshot the user asked for
	file, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.IOReadFailed, path, err)
	}
	defer file.Close()
	s, err := Decode(file, f)
	if err != nil {
		return nil, diag.Wrap(diag.IOReadFailed, path, err)
	}
	return s, nil
}
