package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(step)
		return at
	}
}

func TestTimerPhases(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(2 * time.Millisecond)

	load := timer.Begin("load")
	if got := timer.End(load, ""); got != 2*time.Millisecond {
		t.Fatalf("load = %v, want 2ms", got)
	}
	emit := timer.Begin("emit")
	timer.End(emit, "4 files")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.TotalMS != 4 {
		t.Fatalf("total = %v ms, want 4", report.TotalMS)
	}
	if report.Phases[1].Note != "4 files" {
		t.Fatalf("note = %q", report.Phases[1].Note)
	}

	summary := timer.Summary()
	for _, want := range []string{"timings:\n", "  load            2.00 ms\n", "  emit            2.00 ms  // 4 files\n", "  total           4.00 ms\n"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	if got := timer.End(3, "x"); got != 0 {
		t.Fatalf("End(3) = %v, want 0", got)
	}
	if report := timer.Report(); len(report.Phases) != 0 || report.TotalMS != 0 {
		t.Fatalf("empty report = %+v", report)
	}
}
