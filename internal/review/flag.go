package review

import (
	"sort"
	"strings"
)

// FlagKind classifies a discrepancy surfaced for human attention.
type FlagKind string

const (
	FlagMalformedRecord       FlagKind = "MalformedRecord"
	FlagAmbiguousCluster      FlagKind = "AmbiguousCluster"
	FlagCrossEntityViolation  FlagKind = "CrossEntityViolation"
	FlagHighDisagreement      FlagKind = "HighDisagreement"
	FlagPartialNameCandidate  FlagKind = "PartialNameCandidate"
	FlagEditDistanceCandidate FlagKind = "EditDistanceCandidate"
	FlagUnscored              FlagKind = "Unscored"
	FlagOutletMismatch        FlagKind = "OutletMismatch"
)

// Severity orders how urgently a flag needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Flag is a structured discrepancy record. Flags never feed back into scoring.
type Flag struct {
	Kind        FlagKind          `json:"kind"`
	Severity    Severity          `json:"severity"`
	ShowIDs     []string          `json:"show_ids,omitempty"`
	Reviews     []string          `json:"reviews,omitempty"`
	Records     []string          `json:"records,omitempty"`
	Explanation string            `json:"explanation"`
	Details     map[string]string `json:"details,omitempty"`
}

// SortFlags orders flags by severity, kind, shows, reviews, and explanation so
// reports are byte-stable across runs.
func SortFlags(flags []Flag) {
	sort.SliceStable(flags, func(i, j int) bool {
		a, b := flags[i], flags[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() < b.Severity.rank()
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if ka, kb := joinKey(a.ShowIDs), joinKey(b.ShowIDs); ka != kb {
			return ka < kb
		}
		if ka, kb := joinKey(a.Reviews), joinKey(b.Reviews); ka != kb {
			return ka < kb
		}
		if ka, kb := joinKey(a.Records), joinKey(b.Records); ka != kb {
			return ka < kb
		}
		return a.Explanation < b.Explanation
	})
}

func joinKey(values []string) string {
	return strings.Join(values, "\x00")
}
