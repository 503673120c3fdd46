// Package pipeline runs one binding generation: load, extract, resolve,
// emit, copy, patch and the optional IR snapshot.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"spbg/internal/backend/cython"
	"spbg/internal/codeinfo"
	"spbg/internal/diag"
	"spbg/internal/fix"
	"spbg/internal/irdump"
	"spbg/internal/observ"
	"spbg/internal/project"
	"spbg/internal/trace"
	"spbg/internal/types"
)

// Request configures a generation run.
type Request struct {
	// Context is the directory holding the metadata and native sources.
	Context string
	// Out overrides the configured output directory.
	Out string
	// ConfigPath names a config file; when empty spbg.toml is looked up
	// from Context upwards.
	ConfigPath string
	// EmitIR, when set, is where the IR snapshot is written.
	EmitIR   string
	Progress ProgressSink
	// Now stamps helper backups; time.Now when nil.
	Now func() time.Time
}

// Result captures what a run produced.
type Result struct {
	Context  string
	Config   project.Config
	Metadata project.Digest
	Info     *codeinfo.CodeInfo
	Registry *types.Registry
	Plan     project.PathPlan
	// Written lists artifacts in the order they were written.
	Written []project.Artifact
	// Backup is the previous helper file, renamed; empty if there was none.
	Backup  string
	Patch   *fix.AppliedFix
	IR      string
	Timer   *observ.Timer
	Timings Timings
}

type stageStep struct {
	stage Stage
	fn    func(context.Context) error
}

type run struct {
	req  *Request
	res  *Result
	meta *codeinfo.Metadata
}

// Generate performs a complete run. The first failure stops it; artifacts
// already written stay on disk.
func Generate(ctx context.Context, req *Request) (res Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return res, fmt.Errorf("missing generate request")
	}
	if req.Context == "" {
		return res, diag.Errorf(diag.CtxNotDirectory, "missing context directory")
	}

	span, ctx := trace.Start(ctx, trace.ScopeDriver, "generate")
	defer func() {
		detail := "ok"
		if err != nil {
			detail = err.Error()
			span.WithExtra("code", diag.CodeOf(err).ID())
		}
		span.WithExtra("artifacts", strconv.Itoa(len(res.Written)))
		span.End(detail)
	}()

	r := &run{req: req, res: &res}
	res.Timer = observ.NewTimer()

	steps := []stageStep{
		{StageLoad, r.load},
		{StageExtract, r.extract},
		{StageResolve, r.resolve},
		{StageEmit, r.emit},
		{StageCopy, r.copySources},
		{StagePatch, r.patch},
	}
	if req.EmitIR != "" {
		steps = append(steps, stageStep{StageSnapshot, r.snapshot})
	}
	for _, step := range steps {
		if err := r.stage(ctx, step.stage, step.fn); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *run) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	span, ctx := trace.Start(ctx, trace.ScopePass, string(stage))
	r.notify(Event{Stage: stage, Status: StatusWorking})
	idx := r.res.Timer.Begin(string(stage))

	err := fn(ctx)

	note := ""
	status := StatusDone
	detail := "ok"
	if err != nil {
		note = "failed"
		status = StatusError
		detail = err.Error()
	}
	elapsed := r.res.Timer.End(idx, note)
	r.res.Timings.Set(stage, elapsed)
	r.notify(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	span.End(detail)
	return err
}

func (r *run) notify(ev Event) {
	if r.req.Progress == nil {
		return
	}
	r.req.Progress.OnEvent(ev)
}

func (r *run) artifact(ctx context.Context, a project.Artifact, stage Stage, fn func() error) error {
	span, _ := trace.Start(ctx, trace.ScopeArtifact, "artifact:"+a.Kind.String())
	r.notify(Event{File: a.FileName, Stage: stage, Status: StatusWorking})
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	status := StatusDone
	detail := a.Dest
	if err != nil {
		status = StatusError
		detail = err.Error()
	} else {
		r.res.Written = append(r.res.Written, a)
	}
	r.notify(Event{File: a.FileName, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	span.End(detail)
	return err
}

func (r *run) load(ctx context.Context) error {
	dir, err := project.CheckContext(r.req.Context)
	if err != nil {
		return err
	}
	r.res.Context = dir

	cfg, err := r.config(dir)
	if err != nil {
		return err
	}
	r.res.Config = cfg
	if cfg.Path != "" {
		trace.Point(ctx, trace.ScopePass, "config", cfg.Path, nil)
	}

	metaPath := inside(dir, cfg.Generate.Metadata)
	r.meta, err = codeinfo.Load(metaPath)
	if err != nil {
		return err
	}
	r.res.Metadata, err = project.DigestFile(metaPath)
	return err
}

func (r *run) config(dir string) (project.Config, error) {
	path := r.req.ConfigPath
	if path == "" {
		found, ok, err := project.FindConfig(dir)
		if err != nil {
			return project.Config{}, diag.Errorf(diag.CtxInvalidConfig, "%v", err)
		}
		if !ok {
			return project.DefaultConfig(), nil
		}
		path = found
	}
	return project.LoadConfig(path)
}

func (r *run) extract(ctx context.Context) error {
	reg := types.NewRegistryWithAliases(r.res.Config.Aliases())
	reg.OnRegister = func(rec types.Record) {
		trace.Point(ctx, trace.ScopeType, "register", rec.String(), map[string]string{"mode": rec.Mode.String()})
	}
	r.res.Registry = reg

	info, err := codeinfo.Extract(r.meta, reg, r.res.Config.ExtractOptions())
	if err != nil {
		return err
	}
	r.res.Info = info
	if _, ok := info.Class.Param(); !ok {
		trace.Point(ctx, trace.ScopeArtifact, "no-param", "class "+info.Class.Name+" exposes no parameter field", nil)
	}
	return nil
}

func (r *run) resolve(ctx context.Context) error {
	reg := r.res.Registry
	skipped, err := types.ResolveScopes(reg, []*types.Descriptor(r.meta.Types))
	if err != nil {
		return err
	}
	for _, name := range skipped {
		trace.Point(ctx, trace.ScopeType, "scope-skip", name, nil)
	}
	reg.Seal()
	return nil
}

func (r *run) emit(ctx context.Context) error {
	cfg := r.res.Config
	info := r.res.Info

	out := r.req.Out
	if out == "" {
		out = inside(r.res.Context, cfg.Generate.Out)
	} else if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	plan := project.NewPathPlan(project.PlanInput{
		Context:      r.res.Context,
		Out:          out,
		Model:        info.Model,
		Class:        info.Class.Name,
		Header:       info.Class.Header,
		Source:       info.Class.Source,
		RuntimeTypes: cfg.Generate.RuntimeTypes,
	})
	r.res.Plan = plan
	for _, kind := range project.Kinds {
		r.notify(Event{File: plan.Get(kind).FileName, Stage: StageEmit, Status: StatusQueued})
	}
	if err := plan.Prepare(); err != nil {
		return err
	}

	em, err := cython.NewEmitter(info, r.res.Registry, cython.Options{
		IndentWidth:   cfg.Generate.Indent,
		DeclModule:    plan.Get(project.KindDeclaration).Module,
		WrapperModule: plan.Get(project.KindWrapper).Module,
		WrapperSource: plan.Get(project.KindWrapper).FileName,
		NativeSource:  plan.Get(project.KindSource).FileName,
		IncludeDirs:   cfg.Build.IncludeDirs,
	})
	if err != nil {
		return err
	}

	renders := []struct {
		kind   project.Kind
		render func() ([]byte, error)
	}{
		{project.KindDeclaration, em.Declaration},
		{project.KindWrapper, em.Wrapper},
		{project.KindBuild, func() ([]byte, error) { return em.BuildScript(), nil }},
		{project.KindHelper, em.Helper},
	}
	for _, step := range renders {
		a := plan.Get(step.kind)
		err := r.artifact(ctx, a, StageEmit, func() error {
			data, err := step.render()
			if err != nil {
				return err
			}
			if step.kind != project.KindHelper {
				return project.WriteFile(a.Dest, data)
			}
			backup, err := project.WriteProtected(a.Dest, data, r.req.Now)
			if backup != "" {
				r.res.Backup = backup
				trace.Point(ctx, trace.ScopeArtifact, "backup", backup, nil)
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) copySources(ctx context.Context) error {
	for _, kind := range project.Kinds {
		if !kind.Copied() {
			continue
		}
		a := r.res.Plan.Get(kind)
		if err := r.artifact(ctx, a, StageCopy, func() error {
			return project.CopyFile(a.Src, a.Dest)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) patch(ctx context.Context) error {
	header := r.res.Plan.Get(project.KindHeader)
	applied, err := fix.PatchHeader(header.Dest)
	if err != nil {
		return err
	}
	r.res.Patch = applied
	trace.Point(ctx, trace.ScopeArtifact, "patch", applied.Title, map[string]string{"path": applied.Path})
	return nil
}

func (r *run) snapshot(ctx context.Context) error {
	snap := irdump.Build(r.res.Info, r.res.Registry, r.res.Metadata)
	if err := irdump.Write(r.req.EmitIR, snap); err != nil {
		return err
	}
	r.res.IR = r.req.EmitIR
	trace.Point(ctx, trace.ScopeArtifact, "snapshot", r.req.EmitIR, nil)
	return nil
}

// inside resolves name against dir unless it is already absolute.
func inside(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
