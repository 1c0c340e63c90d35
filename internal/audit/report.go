package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"marquee/internal/fileutil"
	"marquee/internal/review"
)

// Verdict is the corpus-wide outcome.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFlag Status = "flag"
	StatusFail Status = "fail"
)

// Check is one measured threshold.
type Check struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Total     int     `json:"total"`
	Ratio     float64 `json:"ratio"`
	Threshold float64 `json:"threshold"`
	Blocking  bool    `json:"blocking"`
	Status    Status  `json:"status"`
	Message   string  `json:"message"`
}

// FlagGroup collects the flags of one kind and severity.
type FlagGroup struct {
	Kind     review.FlagKind `json:"kind"`
	Severity review.Severity `json:"severity"`
	Count    int             `json:"count"`
	Flags    []review.Flag   `json:"flags"`
}

// Totals summarizes the corpus the report describes.
type Totals struct {
	Records          int `json:"records"`
	MalformedRecords int `json:"malformed_records"`
	Shows            int `json:"shows"`
	Reviews          int `json:"canonical_reviews"`
	MergedReviews    int `json:"merged_reviews"`
	Scored           int `json:"scored_reviews"`
	LowConfidence    int `json:"low_confidence_reviews"`
	Flags            int `json:"flags"`
}

// Report is the persisted audit document.
type Report struct {
	RunID        string                  `json:"run_id"`
	GeneratedAt  time.Time               `json:"generated_at"`
	RulesVersion string                  `json:"rules_version"`
	Verdict      Verdict                 `json:"verdict"`
	Totals       Totals                  `json:"totals"`
	Checks       []Check                 `json:"checks"`
	KindCounts   map[review.FlagKind]int `json:"kind_counts"`
	Groups       []FlagGroup             `json:"groups"`
}

// Failed reports whether the verdict gates a release.
func (r *Report) Failed() bool {
	return r != nil && r.Verdict == VerdictFail
}

// FailedChecks returns the names of checks whose status is fail.
func (r *Report) FailedChecks() []string {
	if r == nil {
		return nil
	}
	var names []string
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			names = append(names, c.Name)
		}
	}
	return names
}

// Flags flattens every grouped flag back into one slice.
func (r *Report) Flags() []review.Flag {
	if r == nil {
		return nil
	}
	var out []review.Flag
	for _, g := range r.Groups {
		out = append(out, g.Flags...)
	}
	return out
}

// Save writes the report atomically as indented JSON.
func Save(path string, report *Report) error {
	if report == nil {
		return errors.New("audit report is nil")
	}
	return fileutil.WriteJSONAtomic(path, report)
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audit report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode audit report %s: %w", path, err)
	}
	return &report, nil
}
