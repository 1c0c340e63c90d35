package resolver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"marquee/internal/review"
	"marquee/internal/similarity"
)

type evidence struct {
	shared   []string
	disagree []string
}

// conflict reports whether members disagree on more evidence than they share.
func (e evidence) conflict() bool {
	return len(e.disagree) > len(e.shared)
}

// assessEvidence compares cluster members along outlet, critic, url and
// publish year. A dimension is shared when at least two members carry the same
// single value, and disputed when more than one distinct value appears.
func assessEvidence(group []member) evidence {
	dims := []struct {
		name  string
		value func(member) string
	}{
		{"outlet", func(m member) string { return m.id.Outlet }},
		{"critic", func(m member) string { return m.id.Critic }},
		{"url", func(m member) string { return m.url }},
		{"publish_year", func(m member) string {
			if m.rec.PublishDate == nil {
				return ""
			}
			return strconv.Itoa(m.rec.PublishDate.UTC().Year())
		}},
	}
	var ev evidence
	for _, dim := range dims {
		distinct := make(map[string]struct{})
		present := 0
		for _, m := range group {
			v := dim.value(m)
			if v == "" {
				continue
			}
			present++
			distinct[v] = struct{}{}
		}
		switch {
		case len(distinct) > 1:
			ev.disagree = append(ev.disagree, dim.name)
		case len(distinct) == 1 && present >= 2:
			ev.shared = append(ev.shared, dim.name)
		}
	}
	return ev
}

func ambiguousFlag(showID string, group []member, reviewKeys []string, reasons []review.MatchReason, ev evidence) review.Flag {
	records := make([]string, 0, len(group))
	for _, m := range group {
		records = append(records, m.rec.ID)
	}
	sort.Strings(records)
	shared := strings.Join(ev.shared, ",")
	if shared == "" {
		shared = "nothing"
	}
	return review.Flag{
		Kind:     review.FlagAmbiguousCluster,
		Severity: review.SeverityWarning,
		ShowIDs:  []string{showID},
		Reviews:  reviewKeys,
		Records:  records,
		Explanation: fmt.Sprintf("%d records linked by %s disagree on %s and share %s; kept as %d separate reviews",
			len(group), reasonSummary(reasons), strings.Join(ev.disagree, ","), shared, len(reviewKeys)),
		Details: map[string]string{
			"disagree": strings.Join(ev.disagree, ","),
			"shared":   strings.Join(ev.shared, ","),
		},
	}
}

func candidateFlag(showID string, rel similarity.Relation, byIdentity map[review.NormalizedIdentity][]int, members []member, left, right string) review.Flag {
	kind := review.FlagEditDistanceCandidate
	if rel.Kind == review.MatchPartialName {
		kind = review.FlagPartialNameCandidate
	}
	var records []string
	for _, id := range []review.NormalizedIdentity{rel.Left, rel.Right} {
		for _, k := range byIdentity[id] {
			records = append(records, members[k].rec.ID)
		}
	}
	sort.Strings(records)
	reviews := []string{}
	for _, key := range []string{left, right} {
		if key != "" {
			reviews = append(reviews, key)
		}
	}
	sort.Strings(reviews)
	details := map[string]string{
		"left":       rel.Left.Critic,
		"right":      rel.Right.Critic,
		"confidence": strconv.FormatFloat(rel.Confidence, 'f', 2, 64),
	}
	if rel.Distance > 0 {
		details["distance"] = strconv.Itoa(rel.Distance)
	}
	if rel.Overlap > 0 {
		details["text_overlap"] = strconv.FormatFloat(rel.Overlap, 'f', 2, 64)
	}
	return review.Flag{
		Kind:        kind,
		Severity:    review.SeverityInfo,
		ShowIDs:     []string{showID},
		Reviews:     reviews,
		Records:     records,
		Explanation: rel.Detail + "; not merged, needs review",
		Details:     details,
	}
}
