package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		lvl, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if lvl.String() != s {
			t.Fatalf("round trip %q -> %q", s, lvl.String())
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeArtifact) {
		t.Fatalf("phase level must stop at pass scope")
	}
	if !LevelDetail.ShouldEmit(ScopeArtifact) || LevelDetail.ShouldEmit(ScopeType) {
		t.Fatalf("detail level must stop at artifact scope")
	}
	if !LevelDebug.ShouldEmit(ScopeType) {
		t.Fatalf("debug level emits everything")
	}
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
}

func TestSpanAndPointText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	span, ctx := Start(ctx, ScopePass, "emit")
	Point(ctx, ScopeArtifact, "artifact:wrapper", "Model_wrapper.pyx", map[string]string{"b": "2", "a": "1"})
	Point(ctx, ScopeType, "type:double", "", nil)
	span.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (type event filtered), got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "\u2192 emit") {
		t.Fatalf("missing span begin: %q", lines[0])
	}
	if !strings.Contains(lines[1], "artifact:wrapper (Model_wrapper.pyx) {a=1, b=2}") {
		t.Fatalf("unexpected point line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "\u2190 emit (ok)") {
		t.Fatalf("missing span end: %q", lines[2])
	}
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Output: &buf, OutputPath: "run.ndjson"})
	if err != nil {
		t.Fatal(err)
	}
	span := Begin(tr, ScopeDriver, "generate", 0)
	span.End("")

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("line is not JSON: %q: %v", line, err)
		}
		if decoded["name"] != "generate" {
			t.Fatalf("unexpected name %v", decoded["name"])
		}
	}
}

func TestFromContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	if CurrentSpan(context.Background()) != 0 {
		t.Fatalf("expected no active span")
	}
}
