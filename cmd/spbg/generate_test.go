package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spbg/internal/testkit"
)

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(append([]string{"--color=off", "--ui=off"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestGenerateCommand(t *testing.T) {
	dir := testkit.WriteContext(t, testkit.Minimal(), testkit.ContextOptions{})

	code, stdout, stderr := run(t, "generate", dir)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	out := filepath.Join(dir, "python_out")
	if !strings.HasPrefix(stdout, "generated 7 artifacts in "+out+"\n") {
		t.Fatalf("stdout:\n%s", stdout)
	}
	if !strings.Contains(stdout, "  wrapper        Plant_wrapper.pyx\n") {
		t.Fatalf("stdout lacks wrapper line:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "Plant.pxd")); err != nil {
		t.Fatalf("declaration missing: %v", err)
	}
}

func TestGenerateCommandFlags(t *testing.T) {
	dir := testkit.WriteContext(t, testkit.Minimal(), testkit.ContextOptions{})
	out := filepath.Join(t.TempDir(), "gen")
	ir := filepath.Join(t.TempDir(), "plant.json")
	tracePath := filepath.Join(t.TempDir(), "trace.ndjson")

	code, stdout, stderr := run(t, "--quiet", "--timings", "--trace", tracePath,
		"generate", dir, "--out", out, "--emit-ir", ir)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	if stdout != "" {
		t.Fatalf("quiet run printed:\n%s", stdout)
	}
	if !strings.HasPrefix(stderr, "timings:\n") || !strings.Contains(stderr, "  snapshot ") {
		t.Fatalf("timings not printed:\n%s", stderr)
	}
	if _, err := os.Stat(filepath.Join(out, "plant_helper.py")); err != nil {
		t.Fatalf("helper missing from --out: %v", err)
	}
	if _, err := os.Stat(ir); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("trace file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	var first struct {
		Kind  string `json:"kind"`
		Scope string `json:"scope"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("trace line %q: %v", lines[0], err)
	}
	if first.Kind != "begin" || first.Scope != "driver" || first.Name != "generate" {
		t.Fatalf("first trace event = %+v", first)
	}
	for _, line := range lines {
		if strings.Contains(line, `"scope":"type"`) {
			t.Fatalf("phase level traced a type event: %s", line)
		}
	}
}

func TestGenerateCommandConfigFlag(t *testing.T) {
	dir := testkit.WriteContext(t, testkit.Minimal(), testkit.ContextOptions{})
	cfg := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(cfg, []byte("[generate]\nout = \"bindings\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if code, _, stderr := run(t, "generate", dir, "--config", cfg); code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "bindings", "build.py")); err != nil {
		t.Fatalf("config out dir not used: %v", err)
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	noMarker := testkit.WriteContext(t, testkit.Minimal(), testkit.ContextOptions{NoMarker: true})
	good := testkit.WriteContext(t, testkit.Minimal(), testkit.ContextOptions{})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing context", []string{"generate", missing}, "error[CTX1001]: context " + missing + " does not exist\n"},
		{"no marker", []string{"generate", noMarker}, "error[PAT6001]: "},
		{"no context argument", []string{"generate"}, "error: accepts 1 arg(s), received 0\n"},
		{"bad ui mode", []string{"--ui=sometimes", "generate", noMarker}, "error: invalid --ui value \"sometimes\""},
		{"bad snapshot extension", []string{"generate", good, "--emit-ir", "ir.txt"}, "error[CTX1003]: unsupported IR snapshot extension"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, tt.args...)
			if code != 1 {
				t.Fatalf("exit %d, want 1 (stdout %q)", code, stdout)
			}
			if !strings.HasPrefix(stderr, tt.want) {
				t.Fatalf("stderr = %q, want prefix %q", stderr, tt.want)
			}
		})
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		ok   bool
	}{
		{"", uiModeAuto, true},
		{"AUTO", uiModeAuto, true},
		{" on ", uiModeOn, true},
		{"off", uiModeOff, true},
		{"yes", "", false},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	code, stdout, stderr := run(t, "version", "--format", "json", "--full")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("json: %v\n%s", err, stdout)
	}
	if payload.Tool != "spbg" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}

	code, stdout, _ = run(t, "version")
	if code != 0 || !strings.HasPrefix(stdout, "spbg ") {
		t.Fatalf("pretty version: %d %q", code, stdout)
	}

	if code, _, stderr = run(t, "version", "--format", "xml"); code != 1 || !strings.Contains(stderr, "unsupported format") {
		t.Fatalf("xml format: %d %q", code, stderr)
	}
}

func TestGenerateCommandProfiles(t *testing.T) {
	dir := testkit.WriteContext(t, testkit.Minimal(), testkit.ContextOptions{})
	mem := filepath.Join(t.TempDir(), "mem.pprof")
	if code, _, stderr := run(t, "--quiet", "--mem-profile", mem, "generate", dir); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if info, err := os.Stat(mem); err != nil || info.Size() == 0 {
		t.Fatalf("heap profile not written: %v", err)
	}
}

func TestGenerateCommandMissingContextCreatesNoFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	side := t.TempDir()
	outputs := []string{
		filepath.Join(side, "trace.log"),
		filepath.Join(side, "cpu.pprof"),
		filepath.Join(side, "mem.pprof"),
		filepath.Join(side, "runtime.trace"),
	}
	code, _, stderr := run(t, "--trace", outputs[0], "--cpu-profile", outputs[1],
		"--mem-profile", outputs[2], "--runtime-trace", outputs[3], "generate", missing)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if want := "error[CTX1001]: context " + missing + " does not exist\n"; !strings.HasPrefix(stderr, want) {
		t.Fatalf("stderr = %q, want %q", stderr, want)
	}
	for _, path := range outputs {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s exists after a rejected context (stat err %v)", path, err)
		}
	}
}
