package testkit

import (
	"os"
	"path/filepath"
	"testing"
)

// Header renders a native class header with a private section marker.
func Header(class string, withMarker bool) string {
	access := "  private:\n"
	if !withMarker {
		access = ""
	}
	return "#ifndef RTW_HEADER_" + class + "_h_\n" +
		"#define RTW_HEADER_" + class + "_h_\n" +
		"#include \"rtwtypes.h\"\n\n" +
		"class " + class + " {\n" +
		"  public:\n" +
		"  void initialize();\n" +
		"  void step();\n" +
		"  void terminate();\n" +
		access +
		"  double state;\n" +
		"};\n\n" +
		"#endif\n"
}

// ContextOptions tweaks WriteContext.
type ContextOptions struct {
	// NoMarker writes a header without the private section marker.
	NoMarker bool
	// Config, when set, is written as spbg.toml.
	Config string
	// SkipRuntimeTypes leaves rtwtypes.h out.
	SkipRuntimeTypes bool
}

// WriteContext writes a complete context directory for m and returns its path.
func WriteContext(t testing.TB, m Model, opts ContextOptions) string {
	t.Helper()
	dir := t.TempDir()
	header := m.Header
	if header == "" {
		header = m.Class + ".h"
	}
	source := m.Source
	if source == "" {
		source = m.Class + ".cpp"
	}
	files := map[string]string{
		"codeInfo.json": string(m.JSON()),
		header:          Header(m.Class, !opts.NoMarker),
		source:          "#include \"" + header + "\"\n\nvoid " + m.Class + "::step() {}\n",
	}
	if !opts.SkipRuntimeTypes {
		files["rtwtypes.h"] = "typedef double real_T;\n"
	}
	if opts.Config != "" {
		files["spbg.toml"] = opts.Config
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("testkit: write %s: %v", name, err)
		}
	}
	return dir
}
