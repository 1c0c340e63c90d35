package signals_test

import (
	"strings"
	"testing"

	"marquee/internal/identity"
	"marquee/internal/logging"
	"marquee/internal/refdata"
	"marquee/internal/review"
	"marquee/internal/signals"
)

func newReview(contribs ...review.Contribution) *review.CanonicalReview {
	return &review.CanonicalReview{
		Identity:      review.NormalizedIdentity{ShowID: "hamilton", Outlet: "nytimes", Critic: "benbrantley"},
		Contributions: contribs,
	}
}

func newCollector(t *testing.T, overrides *refdata.Overrides) *signals.Collector {
	t.Helper()
	return signals.NewCollector(signals.DefaultConfig(), overrides, logging.NewNop())
}

func find(sigs []review.ScoreSignal, kind review.SignalKind) []review.ScoreSignal {
	var out []review.ScoreSignal
	for _, s := range sigs {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func TestCollectRatingAndThumb(t *testing.T) {
	r := newReview(review.Contribution{
		RecordID: "r1",
		Indicators: review.Indicators{
			Ratings: []review.RatingIndicator{{Source: "outlet", Text: "5/5"}},
			Thumbs:  []review.ThumbIndicator{{Source: "DTLI", Verdict: "Down"}},
		},
	})
	sigs := newCollector(t, nil).Collect(r)
	if len(sigs) != 2 {
		t.Fatalf("expected 2 signals, got %+v", sigs)
	}
	if sigs[0].Kind != review.SignalExplicitRating || sigs[0].Value != 92 || sigs[0].Confidence != review.ConfidenceHigh {
		t.Fatalf("unexpected rating signal %+v", sigs[0])
	}
	if sigs[1].Kind != review.SignalAggregatorThumb || sigs[1].Value != 35 || sigs[1].Source != "dtli" {
		t.Fatalf("unexpected thumb signal %+v", sigs[1])
	}
}

func TestThumbsFromDifferentSourcesAreKept(t *testing.T) {
	r := newReview(
		review.Contribution{RecordID: "r1", Indicators: review.Indicators{Thumbs: []review.ThumbIndicator{{Source: "dtli", Verdict: "Up"}}}},
		review.Contribution{RecordID: "r2", Indicators: review.Indicators{Thumbs: []review.ThumbIndicator{
			{Source: "dtli", Verdict: "up"},
			{Source: "bww", Verdict: "Meh"},
			{Source: "bww", Verdict: "shrug"},
		}}},
	)
	thumbs := find(newCollector(t, nil).Collect(r), review.SignalAggregatorThumb)
	if len(thumbs) != 2 {
		t.Fatalf("expected duplicate dtli thumb dropped and unknown verdict skipped, got %+v", thumbs)
	}
	if thumbs[0].Source != "bww" || thumbs[0].Value != 60 || thumbs[1].Source != "dtli" || thumbs[1].Value != 80 {
		t.Fatalf("unexpected thumbs %+v", thumbs)
	}
	if !strings.Contains(thumbs[1].Detail, "r1") {
		t.Fatalf("first occurrence should be kept, got detail %q", thumbs[1].Detail)
	}
}

func TestModelConfidenceDowngradedForExcerpts(t *testing.T) {
	tests := []struct {
		name    string
		hasFull bool
		ind     review.ModelIndicator
		want    review.Confidence
	}{
		{"full text keeps confidence", true, review.ModelIndicator{Score: 81, Confidence: review.ConfidenceHigh, Basis: review.BasisFullText}, review.ConfidenceHigh},
		{"excerpt basis downgrades", true, review.ModelIndicator{Score: 81, Confidence: review.ConfidenceHigh, Basis: review.BasisExcerpt}, review.ConfidenceLow},
		{"unknown basis without full text downgrades", false, review.ModelIndicator{Score: 81, Confidence: review.ConfidenceMedium}, review.ConfidenceLow},
		{"unknown basis with full text keeps", true, review.ModelIndicator{Score: 81, Confidence: review.ConfidenceMedium}, review.ConfidenceMedium},
		{"unknown confidence defaults to medium", true, review.ModelIndicator{Score: 81, Confidence: "certain", Basis: review.BasisFullText}, review.ConfidenceMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReview(review.Contribution{
				RecordID:   "r1",
				HasFull:    tt.hasFull,
				Indicators: review.Indicators{ModelScores: []review.ModelIndicator{tt.ind}},
			})
			models := find(newCollector(t, nil).Collect(r), review.SignalModelScore)
			if len(models) != 1 {
				t.Fatalf("expected one model signal, got %+v", models)
			}
			if models[0].Confidence != tt.want || models[0].Value != 81 {
				t.Fatalf("got %+v, want confidence %s", models[0], tt.want)
			}
		})
	}
}

func TestKeywordSentiment(t *testing.T) {
	tests := []struct {
		text  string
		want  int
		found bool
	}{
		{"A brilliant, thrilling triumph.", 90, true},
		{"Not funny. The second act is dull.", 10, true},
		{"It is never dull.", 90, true},
		{"Brilliant staging but a tedious second act.", 58, true},
		{"The cast assembles on a bare stage.", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r := newReview()
			r.FullText = tt.text
			kw := find(newCollector(t, nil).Collect(r), review.SignalKeywordSentiment)
			if !tt.found {
				if len(kw) != 0 {
					t.Fatalf("expected no keyword signal, got %+v", kw)
				}
				return
			}
			if len(kw) != 1 || kw[0].Value != tt.want || kw[0].Confidence != review.ConfidenceLow {
				t.Fatalf("got %+v, want value %d", kw, tt.want)
			}
		})
	}
}

func TestOverrideLookupUsesNormalizedKey(t *testing.T) {
	aliases, err := refdata.DefaultAliases()
	if err != nil {
		t.Fatalf("DefaultAliases: %v", err)
	}
	norm := identity.NewNormalizer(aliases)
	overrides := refdata.NewOverrides([]refdata.Override{{
		ShowID: "hamilton",
		Outlet: "The New York Times",
		Critic: "Ben Brantley",
		Score:  97,
		Reason: "print edition rating",
		Author: "editor",
	}}, norm)

	r := newReview(review.Contribution{
		RecordID:   "r1",
		Indicators: review.Indicators{Ratings: []review.RatingIndicator{{Text: "2/5"}}},
	})
	sigs := newCollector(t, overrides).Collect(r)
	if sigs[0].Kind != review.SignalHumanOverride || sigs[0].Value != 97 {
		t.Fatalf("override should sort first, got %+v", sigs)
	}
	if sigs[0].Detail != "print edition rating (editor)" {
		t.Fatalf("unexpected detail %q", sigs[0].Detail)
	}
	if len(find(sigs, review.SignalExplicitRating)) != 1 {
		t.Fatalf("other signals must still be recorded: %+v", sigs)
	}
}

func TestCollectIsStable(t *testing.T) {
	r := newReview(
		review.Contribution{RecordID: "r1", HasFull: true, Indicators: review.Indicators{
			ModelScores: []review.ModelIndicator{{Model: "m2", Score: 70, Confidence: review.ConfidenceHigh, Basis: review.BasisFullText}},
			Thumbs:      []review.ThumbIndicator{{Source: "dtli", Verdict: "up"}},
		}},
		review.Contribution{RecordID: "r2", Indicators: review.Indicators{
			ModelScores: []review.ModelIndicator{{Model: "m1", Score: 72, Confidence: review.ConfidenceHigh, Basis: review.BasisFullText}},
			Ratings:     []review.RatingIndicator{{Text: "B"}},
		}},
	)
	r.FullText = "A delightful evening."
	c := newCollector(t, nil)
	first := c.Collect(r)
	second := c.Collect(r)
	if len(first) != 5 || len(first) != len(second) {
		t.Fatalf("unexpected signal counts %d/%d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("signal %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	wantKinds := []review.SignalKind{
		review.SignalExplicitRating,
		review.SignalModelScore,
		review.SignalModelScore,
		review.SignalAggregatorThumb,
		review.SignalKeywordSentiment,
	}
	for i, k := range wantKinds {
		if first[i].Kind != k {
			t.Fatalf("signal %d kind = %s, want %s", i, first[i].Kind, k)
		}
	}
	if first[1].Source != "m1" {
		t.Fatalf("model signals should sort by source, got %s", first[1].Source)
	}
}
