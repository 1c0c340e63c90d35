package audit_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"marquee/internal/audit"
	"marquee/internal/review"
	"marquee/internal/services"
)

func reviews(n int, conf review.Confidence) []*review.CanonicalReview {
	out := make([]*review.CanonicalReview, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &review.CanonicalReview{
			Identity:  review.NormalizedIdentity{ShowID: "hamilton", Outlet: "outlet", Critic: string(rune('a' + i))},
			MemberIDs: []string{string(rune('a' + i))},
			Consensus: &review.ConsensusScore{Score: 80, Bucket: review.BucketPositive, Confidence: conf},
		})
	}
	return out
}

func flagsOf(kind review.FlagKind, severity review.Severity, n int) []review.Flag {
	out := make([]review.Flag, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, review.Flag{Kind: kind, Severity: severity, Explanation: string(rune('a' + i))})
	}
	return out
}

func checkNamed(t *testing.T, r *audit.Report, name string) audit.Check {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %s missing", name)
	return audit.Check{}
}

func TestCleanCorpusPasses(t *testing.T) {
	report := audit.Evaluate(audit.Input{
		RunID:   "run-1",
		Records: 12,
		Reviews: reviews(10, review.ConfidenceHigh),
		Flags:   flagsOf(review.FlagPartialNameCandidate, review.SeverityInfo, 2),
	}, audit.DefaultThresholds())
	if report.Verdict != audit.VerdictPass || report.Err() != nil {
		t.Fatalf("expected pass, got %s (%v)", report.Verdict, report.Err())
	}
	if report.KindCounts[review.FlagPartialNameCandidate] != 2 {
		t.Fatalf("unexpected counts %v", report.KindCounts)
	}
	if report.Totals.Reviews != 10 || report.Totals.Scored != 10 || report.Totals.Shows != 1 {
		t.Fatalf("unexpected totals %+v", report.Totals)
	}
}

func TestCrossEntityViolationFails(t *testing.T) {
	report := audit.Evaluate(audit.Input{
		Reviews: reviews(40, review.ConfidenceHigh),
		Flags:   flagsOf(review.FlagCrossEntityViolation, review.SeverityCritical, 1),
	}, audit.DefaultThresholds())
	if report.Verdict != audit.VerdictFail {
		t.Fatalf("expected fail, got %s", report.Verdict)
	}
	if c := checkNamed(t, report, audit.CheckCrossEntity); c.Status != audit.StatusFail || c.Count != 1 {
		t.Fatalf("unexpected check %+v", c)
	}
	err := report.Err()
	if !errors.Is(err, audit.ErrThresholdExceeded) || !errors.Is(err, services.ErrGateFailed) {
		t.Fatalf("expected gate error, got %v", err)
	}
	if services.ExitCode(err) != services.ExitGateFailed {
		t.Fatalf("unexpected exit code %d", services.ExitCode(err))
	}
}

func TestAmbiguousRatioIsBlocking(t *testing.T) {
	tests := []struct {
		name      string
		ambiguous int
		want      audit.Verdict
	}{
		{"at limit", 1, audit.VerdictPass},
		{"over limit", 2, audit.VerdictFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := audit.Evaluate(audit.Input{
				Reviews: reviews(20, review.ConfidenceHigh),
				Flags:   flagsOf(review.FlagAmbiguousCluster, review.SeverityWarning, tt.ambiguous),
			}, audit.DefaultThresholds())
			if report.Verdict != tt.want {
				t.Fatalf("verdict = %s, want %s", report.Verdict, tt.want)
			}
		})
	}
}

func TestAdvisoryChecksOnlyFlag(t *testing.T) {
	rs := reviews(4, review.ConfidenceLow)
	rs[0].Consensus = nil
	report := audit.Evaluate(audit.Input{
		Reviews: rs,
		Flags:   flagsOf(review.FlagHighDisagreement, review.SeverityWarning, 2),
	}, audit.DefaultThresholds())
	if report.Verdict != audit.VerdictPass {
		t.Fatalf("advisory checks must not fail the run, got %s", report.Verdict)
	}
	if c := checkNamed(t, report, audit.CheckHighDisagreement); c.Status != audit.StatusFlag {
		t.Fatalf("unexpected disagreement check %+v", c)
	}
	low := checkNamed(t, report, audit.CheckLowConfidence)
	if low.Status != audit.StatusFlag || low.Count != 4 {
		t.Fatalf("unscored reviews count as low confidence, got %+v", low)
	}
}

func TestGroupsOrderedBySeverity(t *testing.T) {
	flags := append(flagsOf(review.FlagUnscored, review.SeverityInfo, 2),
		flagsOf(review.FlagCrossEntityViolation, review.SeverityCritical, 1)...)
	flags = append(flags, flagsOf(review.FlagMalformedRecord, review.SeverityWarning, 3)...)
	report := audit.Evaluate(audit.Input{Reviews: reviews(2, review.ConfidenceHigh), Flags: flags}, audit.DefaultThresholds())

	if len(report.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(report.Groups))
	}
	want := []review.FlagKind{review.FlagCrossEntityViolation, review.FlagMalformedRecord, review.FlagUnscored}
	for i, k := range want {
		if report.Groups[i].Kind != k {
			t.Fatalf("group %d = %s, want %s", i, report.Groups[i].Kind, k)
		}
	}
	if report.Groups[1].Count != 3 || len(report.Flags()) != 6 {
		t.Fatalf("unexpected group counts %+v", report.Groups)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit_report.json")
	report := audit.Evaluate(audit.Input{
		RunID:        "run-2",
		GeneratedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		RulesVersion: "test",
		Reviews:      reviews(3, review.ConfidenceHigh),
		Flags:        flagsOf(review.FlagCrossEntityViolation, review.SeverityCritical, 1),
	}, audit.DefaultThresholds())
	if err := audit.Save(path, report); err != nil {
		t.Fatal(err)
	}
	loaded, err := audit.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RunID != "run-2" || !loaded.Failed() || !loaded.GeneratedAt.Equal(report.GeneratedAt) {
		t.Fatalf("unexpected loaded report %+v", loaded)
	}
	if loaded.KindCounts[review.FlagCrossEntityViolation] != 1 {
		t.Fatalf("unexpected kind counts %v", loaded.KindCounts)
	}
}
