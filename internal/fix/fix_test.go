package fix

import (
	"os"
	"path/filepath"
	"testing"

	"spbg/internal/diag"
)

func TestAccessMarker(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "first marker only",
			in:   "class A {\n  public:\n  void f();\n private:\n  int x;\n  private:\n};\n",
			want: "class A {\n  public:\n  void f();\n    public:\n  int x;\n  private:\n};\n",
		},
		{
			name: "crlf kept",
			in:   "class A {\r\n  private:\r\n  int x;\r\n};\r\n",
			want: "class A {\r\n    public:\r\n  int x;\r\n};\r\n",
		},
		{
			name: "marker on last line",
			in:   "class A {\n private:",
			want: "class A {\n    public:",
		},
		{
			name: "marker must end the line",
			in:   "// private: helpers\nclass A {\nprivate:\n};\n",
			want: "// private: helpers\nclass A {\n    public:\n};\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := AccessMarker([]byte(tt.in))
			if err != nil {
				t.Fatalf("marker: %v", err)
			}
			got, err := Apply([]byte(tt.in), f)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccessMarkerMissing(t *testing.T) {
	for _, in := range []string{"", "class A {\n public:\n};\n", "private: int x;\n"} {
		if _, err := AccessMarker([]byte(in)); !diag.Is(err, diag.PatchMissingMarker) {
			t.Fatalf("%q: expected PatchMissingMarker, got %v", in, err)
		}
	}
}

func TestApplyRejectsOverlapAndStaleText(t *testing.T) {
	content := []byte("abcdef")
	overlap := Fix{ID: "x", Edits: []TextEdit{{Start: 0, End: 3, NewText: "X"}, {Start: 2, End: 4, NewText: "Y"}}}
	if _, err := Apply(content, overlap); err == nil {
		t.Fatalf("expected overlap error")
	}
	stale := Fix{ID: "y", Edits: []TextEdit{{Start: 0, End: 2, OldText: "zz", NewText: "X"}}}
	if _, err := Apply(content, stale); err == nil {
		t.Fatalf("expected stale text error")
	}
	multi := Fix{ID: "z", Edits: []TextEdit{{Start: 0, End: 1, NewText: "AA"}, {Start: 4, End: 6, NewText: ""}}}
	got, err := Apply(content, multi)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if string(got) != "AAbcd" {
		t.Fatalf("got %q", got)
	}
}

func TestPatchHeaderKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.h")
	if err := os.WriteFile(path, []byte("class M {\n private:\n};\n"), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	applied, err := PatchHeader(path)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if applied.EditCount != 1 || applied.Path != path {
		t.Fatalf("applied = %+v", applied)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "class M {\n    public:\n};\n" {
		t.Fatalf("got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %v", info.Mode())
	}
}

func TestPatchHeaderMissingMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.h")
	original := []byte("class M {\n public:\n};\n")
	if err := os.WriteFile(path, original, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := PatchHeader(path)
	if !diag.Is(err, diag.PatchMissingMarker) {
		t.Fatalf("expected PatchMissingMarker, got %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != string(original) {
		t.Fatalf("header modified: %q", got)
	}
}

func TestPatchHeaderMissingFile(t *testing.T) {
	_, err := PatchHeader(filepath.Join(t.TempDir(), "absent.h"))
	if !diag.Is(err, diag.IOReadFailed) {
		t.Fatalf("expected IOReadFailed, got %v", err)
	}
}
