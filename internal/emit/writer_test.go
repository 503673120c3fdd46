package emit

import "testing"

func TestWriterRendersLevels(t *testing.T) {
	w := New(Options{}, "# banner\n# second")
	w.Block("class A:", func() {
		w.Line("x = 1")
		w.Block("def f(self):", func() {
			w.Line("pass")
		})
	})
	w.Line("tail  ")

	want := "# banner\n# second\n\nclass A:\n  x = 1\n  def f(self):\n    pass\n\n\ntail\n"
	if got := w.String(); got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriterGroupJoin(t *testing.T) {
	w := New(Options{IndentWidth: 4})
	w.Group("return {", "}", false, func() {
		w.Line(`"a": 1,`)
		w.Line(`"b": `)
		w.Group("{", "},", true, func() {
			w.Line(`"c": 2,`)
		})
	})

	want := "return {\n    \"a\": 1,\n    \"b\": {\n        \"c\": 2,\n    },\n}\n"
	if got := w.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriterIndentPopClamps(t *testing.T) {
	w := New(Options{UseTabs: true})
	w.IndentPop()
	w.IndentPush()
	w.Line("a")
	w.IndentPop()
	w.IndentPop()
	w.Line("b")
	if w.Level() != 0 {
		t.Fatalf("level = %d", w.Level())
	}
	if got := w.String(); got != "\ta\nb\n" {
		t.Fatalf("got %q", got)
	}
}

func TestWriterEmpty(t *testing.T) {
	if got := New(Options{}).Bytes(); got != nil {
		t.Fatalf("got %q", got)
	}
}

func TestWriterAppendFirst(t *testing.T) {
	w := New(Options{})
	w.Append("x")
	w.Append("y")
	if got := w.String(); got != "xy\n" {
		t.Fatalf("got %q", got)
	}
}
