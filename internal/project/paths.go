package project

import (
	"os"
	"path/filepath"

	"spbg/internal/diag"
)

// Kind is an artifact of a generation run.
type Kind uint8

const (
	KindDeclaration Kind = iota
	KindWrapper
	KindBuild
	KindHelper
	KindHeader
	KindSource
	KindRuntimeTypes
)

// Kinds lists every artifact kind in write order.
var Kinds = []Kind{KindDeclaration, KindWrapper, KindBuild, KindHelper, KindHeader, KindSource, KindRuntimeTypes}

func (k Kind) String() string {
	switch k {
	case KindDeclaration:
		return "declaration"
	case KindWrapper:
		return "wrapper"
	case KindBuild:
		return "build"
	case KindHelper:
		return "helper"
	case KindHeader:
		return "header"
	case KindSource:
		return "source"
	case KindRuntimeTypes:
		return "runtime-types"
	default:
		return "unknown"
	}
}

// Copied reports whether the artifact is copied from the context rather than
// generated.
func (k Kind) Copied() bool {
	return k == KindHeader || k == KindSource || k == KindRuntimeTypes
}

// Artifact locates one artifact. Src is empty for generated artifacts;
// Module is the importable module name where there is one.
type Artifact struct {
	Kind     Kind
	Module   string
	FileName string
	Src      string
	Dest     string
}

// PathPlan maps every artifact kind to its locations.
type PathPlan struct {
	Context   string
	Out       string
	Artifacts map[Kind]Artifact
}

// PlanInput names what the plan is derived from.
type PlanInput struct {
	Context      string
	Out          string
	Model        string
	Class        string
	Header       string
	Source       string
	RuntimeTypes string
}

// NewPathPlan lays out the artifacts of one run. Out defaults to the
// python_out folder of the context.
func NewPathPlan(in PlanInput) PathPlan {
	out := in.Out
	if out == "" {
		out = filepath.Join(in.Context, "python_out")
	}
	gen := func(k Kind, module, file string) Artifact {
		return Artifact{Kind: k, Module: module, FileName: file, Dest: filepath.Join(out, file)}
	}
	cp := func(k Kind, file string) Artifact {
		base := filepath.Base(file)
		return Artifact{Kind: k, FileName: base, Src: filepath.Join(in.Context, file), Dest: filepath.Join(out, base)}
	}
	return PathPlan{
		Context: in.Context,
		Out:     out,
		Artifacts: map[Kind]Artifact{
			KindDeclaration:  gen(KindDeclaration, in.Class, in.Class+".pxd"),
			KindWrapper:      gen(KindWrapper, in.Class+"_wrapper", in.Class+"_wrapper.pyx"),
			KindBuild:        gen(KindBuild, "", "build.py"),
			KindHelper:       gen(KindHelper, in.Model+"_helper", in.Model+"_helper.py"),
			KindHeader:       cp(KindHeader, in.Header),
			KindSource:       cp(KindSource, in.Source),
			KindRuntimeTypes: cp(KindRuntimeTypes, in.RuntimeTypes),
		},
	}
}

// Get returns the artifact of kind k.
func (p PathPlan) Get(k Kind) Artifact {
	return p.Artifacts[k]
}

// Prepare creates the output directory. The directory must not hold any of
// the context files the run copies, or the header patch would land on the
// original.
func (p PathPlan) Prepare() error {
	if err := os.MkdirAll(p.Out, 0o755); err != nil {
		return diag.Wrap(diag.CtxOutputNotUsable, p.Out, err)
	}
	info, err := os.Stat(p.Out)
	if err != nil {
		return diag.Wrap(diag.CtxOutputNotUsable, p.Out, err)
	}
	if !info.IsDir() {
		return diag.Errorf(diag.CtxOutputNotUsable, "%s is not a directory", p.Out)
	}
	if ctx, err := os.Stat(p.Context); err == nil && os.SameFile(info, ctx) {
		return diag.Errorf(diag.CtxOutputNotUsable, "output directory %s is the context directory", p.Out)
	}
	for _, k := range Kinds {
		a := p.Artifacts[k]
		if !k.Copied() || !sameFile(a.Src, a.Dest) {
			continue
		}
		return diag.Errorf(diag.CtxOutputNotUsable, "output directory %s already holds %s", p.Out, a.Src)
	}
	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
