package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"marquee/internal/review"
	"marquee/internal/services"
)

// ErrThresholdExceeded is returned when the verdict is fail. It also matches
// services.ErrGateFailed so callers can map it to an exit code.
var ErrThresholdExceeded = errors.New("audit threshold exceeded")

// Check names.
const (
	CheckCrossEntity      = "cross_entity_violations"
	CheckAmbiguous        = "ambiguous_cluster_ratio"
	CheckHighDisagreement = "high_disagreement_ratio"
	CheckLowConfidence    = "low_confidence_ratio"
)

// Thresholds bounds the corpus-wide ratios.
type Thresholds struct {
	MaxAmbiguousClusterRatio float64
	MaxHighDisagreementRatio float64
	MaxLowConfidenceRatio    float64
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxAmbiguousClusterRatio: 0.05,
		MaxHighDisagreementRatio: 0.25,
		MaxLowConfidenceRatio:    0.5,
	}
}

// Input is everything the gate needs from a finished run.
type Input struct {
	RunID            string
	GeneratedAt      time.Time
	RulesVersion     string
	Records          int
	MalformedRecords int
	Reviews          []*review.CanonicalReview
	Flags            []review.Flag
}

// Evaluate measures the run and returns its report. It never mutates input.
func Evaluate(in Input, t Thresholds) *Report {
	flags := append([]review.Flag(nil), in.Flags...)
	review.SortFlags(flags)

	kindCounts := make(map[review.FlagKind]int)
	critical := 0
	for _, f := range flags {
		kindCounts[f.Kind]++
		if f.Severity == review.SeverityCritical {
			critical++
		}
	}

	totals := Totals{
		Records:          in.Records,
		MalformedRecords: in.MalformedRecords,
		Reviews:          len(in.Reviews),
		Flags:            len(flags),
	}
	shows := make(map[string]struct{})
	for _, r := range in.Reviews {
		shows[r.ShowID()] = struct{}{}
		if len(r.MemberIDs) > 1 {
			totals.MergedReviews++
		}
		if r.Consensus == nil {
			continue
		}
		totals.Scored++
		if r.Consensus.Confidence == review.ConfidenceLow {
			totals.LowConfidence++
		}
	}
	totals.Shows = len(shows)

	crossEntity := 0
	for _, f := range flags {
		if f.Kind == review.FlagCrossEntityViolation {
			crossEntity++
		}
	}
	checks := []Check{
		{
			Name:     CheckCrossEntity,
			Count:    crossEntity,
			Total:    totals.Reviews,
			Blocking: true,
		},
		ratioCheck(CheckAmbiguous, kindCounts[review.FlagAmbiguousCluster], totals.Reviews, t.MaxAmbiguousClusterRatio, true),
		ratioCheck(CheckHighDisagreement, kindCounts[review.FlagHighDisagreement], totals.Reviews, t.MaxHighDisagreementRatio, false),
		ratioCheck(CheckLowConfidence, totals.LowConfidence+(totals.Reviews-totals.Scored), totals.Reviews, t.MaxLowConfidenceRatio, false),
	}
	checks[0].Ratio = ratio(crossEntity, totals.Reviews)
	if crossEntity > 0 {
		checks[0].Status = StatusFail
		checks[0].Message = fmt.Sprintf("%d cross-entity violation(s); zero tolerated", crossEntity)
	} else {
		checks[0].Status = StatusPass
		checks[0].Message = "no cross-entity violations"
	}

	verdict := VerdictPass
	if critical > 0 {
		verdict = VerdictFail
	}
	for _, c := range checks {
		if c.Status == StatusFail {
			verdict = VerdictFail
		}
	}

	return &Report{
		RunID:        in.RunID,
		GeneratedAt:  in.GeneratedAt.UTC(),
		RulesVersion: in.RulesVersion,
		Verdict:      verdict,
		Totals:       totals,
		Checks:       checks,
		KindCounts:   kindCounts,
		Groups:       groupFlags(flags),
	}
}

// Err returns ErrThresholdExceeded wrapped with the failing checks when the
// verdict is fail, and nil otherwise.
func (r *Report) Err() error {
	if !r.Failed() {
		return nil
	}
	reasons := r.FailedChecks()
	if n := r.criticalCount(); n > 0 && len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("%d critical flag(s)", n))
	}
	return services.Wrap(services.ErrGateFailed, "audit", "evaluate", strings.Join(reasons, ", "), ErrThresholdExceeded)
}

func (r *Report) criticalCount() int {
	n := 0
	for _, g := range r.Groups {
		if g.Severity == review.SeverityCritical {
			n += g.Count
		}
	}
	return n
}

func ratioCheck(name string, count, total int, threshold float64, blocking bool) Check {
	c := Check{
		Name:      name,
		Count:     count,
		Total:     total,
		Ratio:     ratio(count, total),
		Threshold: threshold,
		Blocking:  blocking,
		Status:    StatusPass,
	}
	c.Message = fmt.Sprintf("%d of %d (%.1f%%), limit %.1f%%", count, total, c.Ratio*100, threshold*100)
	if c.Ratio > threshold {
		if blocking {
			c.Status = StatusFail
		} else {
			c.Status = StatusFlag
		}
	}
	return c
}

func ratio(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// groupFlags buckets flags by (kind, severity). Input must already be sorted,
// which puts groups in severity order.
func groupFlags(flags []review.Flag) []FlagGroup {
	type groupKey struct {
		kind     review.FlagKind
		severity review.Severity
	}
	var order []groupKey
	groups := make(map[groupKey]*FlagGroup)
	for _, f := range flags {
		k := groupKey{f.Kind, f.Severity}
		g, ok := groups[k]
		if !ok {
			g = &FlagGroup{Kind: f.Kind, Severity: f.Severity}
			groups[k] = g
			order = append(order, k)
		}
		g.Count++
		g.Flags = append(g.Flags, f)
	}
	out := make([]FlagGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

