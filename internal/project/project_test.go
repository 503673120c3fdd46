package project

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"spbg/internal/diag"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverridesOnlyDefinedKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[generate]
indent = 4

[class]
param_alias = "params"

[build]
include_dirs = ["/opt/matlab/simulink/include"]

[types]
real32_T = "float"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := DefaultConfig()
	if cfg.Generate.Indent != 4 || cfg.Generate.Metadata != def.Generate.Metadata || cfg.Generate.Out != "python_out" {
		t.Fatalf("generate = %+v", cfg.Generate)
	}
	if cfg.Class.ParamAlias != "params" || cfg.Class.ParamField != "rtP" || cfg.Class.InputSetter != "setExternalInputs" {
		t.Fatalf("class = %+v", cfg.Class)
	}
	if !slices.Equal(cfg.Build.IncludeDirs, []string{"/opt/matlab/simulink/include"}) {
		t.Fatalf("include dirs = %v", cfg.Build.IncludeDirs)
	}
	aliases := cfg.Aliases()
	if aliases["real32_T"] != "float" || aliases["logical"] != "stdint.uint8_t" {
		t.Fatalf("aliases = %v", aliases)
	}
	if opts := cfg.ExtractOptions(); opts.ParamAlias != "params" {
		t.Fatalf("options = %+v", opts)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[generate\n"},
		{"zero indent", "[generate]\nindent = 0\n"},
		{"empty setter", "[class]\ninput_setter = \"  \"\n"},
		{"unknown key", "[generate]\nmetdata = \"x.json\"\n"},
		{"empty alias target", "[types]\nreal32_T = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			if _, err := LoadConfig(path); !diag.Is(err, diag.CtxInvalidConfig) {
				t.Fatalf("expected CtxInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "models", "plant_ert_rtw")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := FindConfig(nested)
	if err != nil || !ok {
		t.Fatalf("find: %v %v", ok, err)
	}
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCheckContext(t *testing.T) {
	dir := t.TempDir()
	if _, err := CheckContext(dir); err != nil {
		t.Fatalf("dir: %v", err)
	}
	file := filepath.Join(dir, "codeInfo.json")
	if err := os.WriteFile(file, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range []string{file, filepath.Join(dir, "missing")} {
		if _, err := CheckContext(p); !diag.Is(err, diag.CtxNotDirectory) {
			t.Fatalf("%s: expected CtxNotDirectory, got %v", p, err)
		}
	}
}

func TestPathPlan(t *testing.T) {
	plan := NewPathPlan(PlanInput{
		Context:      "/ctx",
		Model:        "plant",
		Class:        "Plant",
		Header:       "Plant.h",
		Source:       "Plant.cpp",
		RuntimeTypes: "rtwtypes.h",
	})
	if plan.Out != filepath.Join("/ctx", "python_out") {
		t.Fatalf("out = %s", plan.Out)
	}
	tests := []struct {
		kind   Kind
		module string
		dest   string
		src    string
	}{
		{KindDeclaration, "Plant", "Plant.pxd", ""},
		{KindWrapper, "Plant_wrapper", "Plant_wrapper.pyx", ""},
		{KindBuild, "", "build.py", ""},
		{KindHelper, "plant_helper", "plant_helper.py", ""},
		{KindHeader, "", "Plant.h", filepath.Join("/ctx", "Plant.h")},
		{KindSource, "", "Plant.cpp", filepath.Join("/ctx", "Plant.cpp")},
		{KindRuntimeTypes, "", "rtwtypes.h", filepath.Join("/ctx", "rtwtypes.h")},
	}
	for _, tt := range tests {
		a := plan.Get(tt.kind)
		if a.Module != tt.module || a.Dest != filepath.Join(plan.Out, tt.dest) || a.Src != tt.src {
			t.Errorf("%s = %+v", tt.kind, a)
		}
		if tt.kind.Copied() != (tt.src != "") {
			t.Errorf("%s copied = %v", tt.kind, tt.kind.Copied())
		}
	}
	if len(Kinds) != len(plan.Artifacts) {
		t.Fatalf("kinds = %d, artifacts = %d", len(Kinds), len(plan.Artifacts))
	}
}

func TestPrepareRejectsFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(out, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	plan := PathPlan{Out: out}
	if err := plan.Prepare(); !diag.Is(err, diag.CtxOutputNotUsable) {
		t.Fatalf("expected CtxOutputNotUsable, got %v", err)
	}
}

func TestPrepareRejectsContextFiles(t *testing.T) {
	tests := []struct {
		name   string
		header string
		out    func(ctx string) string
	}{
		{"output is context", "Plant.h", func(ctx string) string { return ctx }},
		{"output is header folder", filepath.Join("src", "Plant.h"), func(ctx string) string { return filepath.Join(ctx, "src") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.TempDir()
			header := filepath.Join(ctx, tt.header)
			if err := os.MkdirAll(filepath.Dir(header), 0o750); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			if err := os.WriteFile(header, []byte("private:\n"), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			plan := NewPathPlan(PlanInput{
				Context: ctx, Out: tt.out(ctx), Model: "plant", Class: "Plant",
				Header: tt.header, Source: "Plant.cpp", RuntimeTypes: "rtwtypes.h",
			})
			if err := plan.Prepare(); !diag.Is(err, diag.CtxOutputNotUsable) {
				t.Fatalf("expected CtxOutputNotUsable, got %v", err)
			}
		})
	}
}

func TestCopyFileOntoItself(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Plant.h")
	if err := os.WriteFile(path, []byte("private:\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := CopyFile(path, path); !diag.Is(err, diag.IOCopyFailed) {
		t.Fatalf("expected IOCopyFailed, got %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "private:\n" {
		t.Fatalf("source changed: %q", data)
	}
}

func TestWriteProtectedKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plant_helper.py")
	clock := func() time.Time { return time.Date(2024, 3, 1, 13, 4, 5, 0, time.UTC) }

	backup, err := WriteProtected(path, []byte("v1"), clock)
	if err != nil || backup != "" {
		t.Fatalf("first write: %q %v", backup, err)
	}
	backup, err = WriteProtected(path, []byte("v2"), clock)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if want := filepath.Join(dir, "plant_helper_backup_13-04-05.py"); backup != want {
		t.Fatalf("backup = %s, want %s", backup, want)
	}
	backup, err = WriteProtected(path, []byte("v3"), clock)
	if err != nil {
		t.Fatalf("third write: %v", err)
	}
	if want := filepath.Join(dir, "plant_helper_backup_13-04-05_1.py"); backup != want {
		t.Fatalf("backup = %s, want %s", backup, want)
	}

	for file, want := range map[string]string{
		path: "v3",
		filepath.Join(dir, "plant_helper_backup_13-04-05.py"):   "v1",
		filepath.Join(dir, "plant_helper_backup_13-04-05_1.py"): "v2",
	} {
		got, err := os.ReadFile(file)
		if err != nil || string(got) != want {
			t.Fatalf("%s = %q, %v; want %q", file, got, err, want)
		}
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Plant.h")
	if err := os.WriteFile(src, []byte("header"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(dir, "copy.h")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "header" {
		t.Fatalf("copy = %q", got)
	}
	if err := CopyFile(filepath.Join(dir, "absent.h"), dst); !diag.Is(err, diag.CtxMissingFile) {
		t.Fatalf("expected CtxMissingFile, got %v", err)
	}
}

func TestDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeInfo.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := DigestFile(path)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if d != DigestBytes([]byte("{}")) {
		t.Fatalf("file and byte digests differ")
	}
	if got := d.Hex(); got != "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a" {
		t.Fatalf("hex = %s", got)
	}
}
