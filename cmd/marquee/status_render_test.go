package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"marquee/internal/audit"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("verdict", statusOK, "pass", false)
	if !strings.Contains(line, "verdict:") || !strings.Contains(line, "[OK] pass") {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("verdict", statusError, "fail", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
}

func TestRenderReportListsChecks(t *testing.T) {
	report := &audit.Report{
		RunID:   "run-1",
		Verdict: audit.VerdictFail,
		Checks: []audit.Check{
			{Name: "cross_entity_violations", Status: audit.StatusFail, Message: "1 cross-entity violation(s); zero tolerated"},
			{Name: "low_confidence_ratio", Status: audit.StatusFlag, Count: 3, Total: 4, Ratio: 0.75, Threshold: 0.5},
		},
	}
	var buf bytes.Buffer
	renderReport(&buf, report, false)
	out := buf.String()
	for _, want := range []string{"[FAIL] fail", "[FAIL] 1 cross-entity", "[WARN] 3/4 (0.750, limit 0.500)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected no colour for non-file writer")
	}
}
