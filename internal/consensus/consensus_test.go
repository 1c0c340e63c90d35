package consensus_test

import (
	"testing"

	"marquee/internal/consensus"
	"marquee/internal/review"
)

func sig(kind review.SignalKind, value int, conf review.Confidence, source string) review.ScoreSignal {
	return review.ScoreSignal{Kind: kind, Value: value, Confidence: conf, Source: source}
}

func target() *review.CanonicalReview {
	return &review.CanonicalReview{
		Identity:  review.NormalizedIdentity{ShowID: "hamilton", Outlet: "nytimes", Critic: "benbrantley"},
		MemberIDs: []string{"r1", "r2"},
	}
}

func TestRatingConflictWithThumb(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	signals := []review.ScoreSignal{
		sig(review.SignalExplicitRating, 92, review.ConfidenceHigh, "outlet"),
		sig(review.SignalAggregatorThumb, 35, review.ConfidenceMedium, "dtli"),
	}
	got, flags := scorer.Score(target(), signals)
	if got == nil || got.Score != 92 || got.Bucket != review.BucketRave {
		t.Fatalf("unexpected consensus %+v", got)
	}
	if got.Contributing.Kind != review.SignalExplicitRating || got.Considered != 2 {
		t.Fatalf("unexpected contributing signal %+v", got)
	}
	if len(flags) != 1 || flags[0].Kind != review.FlagHighDisagreement {
		t.Fatalf("expected HighDisagreement flag, got %+v", flags)
	}
	if flags[0].Details["chosen_value"] != "92" || flags[0].Details["thumb_anchor"] != "35" {
		t.Fatalf("flag must record both values, got %v", flags[0].Details)
	}
	if flags[0].Reviews[0] != "hamilton/nytimes/benbrantley" {
		t.Fatalf("unexpected flag review %v", flags[0].Reviews)
	}
}

func TestOverrideWinsRegardlessOfOtherSignals(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	signals := []review.ScoreSignal{
		sig(review.SignalHumanOverride, 12, review.ConfidenceHigh, "human_override"),
		sig(review.SignalExplicitRating, 92, review.ConfidenceHigh, "outlet"),
		sig(review.SignalAggregatorThumb, 80, review.ConfidenceMedium, "dtli"),
	}
	got, flags := scorer.Score(target(), signals)
	if got.Score != 12 || got.Bucket != review.BucketPan || got.Confidence != review.ConfidenceHigh {
		t.Fatalf("override must win, got %+v", got)
	}
	if len(flags) != 0 {
		t.Fatalf("override never raises disagreement, got %+v", flags)
	}
}

func TestHighestConfidenceThenPriority(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	tests := []struct {
		name    string
		signals []review.ScoreSignal
		want    int
		kind    review.SignalKind
	}{
		{
			name: "rating beats model at equal confidence",
			signals: []review.ScoreSignal{
				sig(review.SignalModelScore, 60, review.ConfidenceHigh, "m"),
				sig(review.SignalExplicitRating, 78, review.ConfidenceHigh, "outlet"),
			},
			want: 78,
			kind: review.SignalExplicitRating,
		},
		{
			name: "high model beats medium rating",
			signals: []review.ScoreSignal{
				sig(review.SignalExplicitRating, 78, review.ConfidenceMedium, "outlet"),
				sig(review.SignalModelScore, 66, review.ConfidenceHigh, "m"),
			},
			want: 66,
			kind: review.SignalModelScore,
		},
		{
			name: "thumb beats excerpt model",
			signals: []review.ScoreSignal{
				sig(review.SignalModelScore, 90, review.ConfidenceLow, "m"),
				sig(review.SignalAggregatorThumb, 60, review.ConfidenceMedium, "dtli"),
			},
			want: 60,
			kind: review.SignalAggregatorThumb,
		},
		{
			name: "tied thumbs are averaged",
			signals: []review.ScoreSignal{
				sig(review.SignalAggregatorThumb, 80, review.ConfidenceMedium, "dtli"),
				sig(review.SignalAggregatorThumb, 35, review.ConfidenceMedium, "bww"),
				sig(review.SignalKeywordSentiment, 90, review.ConfidenceLow, "keyword_lexicon"),
			},
			want: 58,
			kind: review.SignalAggregatorThumb,
		},
		{
			name: "keyword only",
			signals: []review.ScoreSignal{
				sig(review.SignalKeywordSentiment, 42, review.ConfidenceLow, "keyword_lexicon"),
			},
			want: 42,
			kind: review.SignalKeywordSentiment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := scorer.Score(target(), tt.signals)
			if got.Score != tt.want || got.Contributing.Kind != tt.kind {
				t.Fatalf("got %d via %s, want %d via %s", got.Score, got.Contributing.Kind, tt.want, tt.kind)
			}
		})
	}
}

func TestScoreIsOrderIndependent(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	a := []review.ScoreSignal{
		sig(review.SignalModelScore, 70, review.ConfidenceHigh, "m1"),
		sig(review.SignalModelScore, 75, review.ConfidenceHigh, "m2"),
		sig(review.SignalAggregatorThumb, 80, review.ConfidenceMedium, "dtli"),
	}
	b := []review.ScoreSignal{a[2], a[1], a[0]}
	x, _ := scorer.Score(target(), a)
	y, _ := scorer.Score(target(), b)
	if *x != *y {
		t.Fatalf("results differ: %+v vs %+v", x, y)
	}
	if x.Score != 73 || x.Contributing.Source != "m1,m2" {
		t.Fatalf("unexpected result %+v", x)
	}
}

func TestAveragedWinnerReportsAverage(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	signals := []review.ScoreSignal{
		sig(review.SignalExplicitRating, 100, review.ConfidenceHigh, "outlet"),
		sig(review.SignalExplicitRating, 40, review.ConfidenceHigh, "aggregator"),
	}
	got, _ := scorer.Score(target(), signals)
	if got.Score != 70 || got.Contributing.Value != got.Score {
		t.Fatalf("contributing value must match score, got %+v", got)
	}
	if got.Contributing.Source != "aggregator,outlet" {
		t.Fatalf("contributing source must name both peers, got %q", got.Contributing.Source)
	}
	if got.Contributing.Detail != "average of 2 explicit_rating signals" {
		t.Fatalf("unexpected detail %q", got.Contributing.Detail)
	}
}

func TestNoSignalsIsUnscored(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	got, flags := scorer.Score(target(), nil)
	if got != nil {
		t.Fatalf("expected nil consensus, got %+v", got)
	}
	if len(flags) != 1 || flags[0].Kind != review.FlagUnscored || flags[0].Severity != review.SeverityInfo {
		t.Fatalf("expected Unscored flag, got %+v", flags)
	}
}

func TestDisagreementWithinDeltaIsQuiet(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	_, flags := scorer.Score(target(), []review.ScoreSignal{
		sig(review.SignalExplicitRating, 65, review.ConfidenceHigh, "outlet"),
		sig(review.SignalAggregatorThumb, 35, review.ConfidenceMedium, "dtli"),
	})
	if len(flags) != 0 {
		t.Fatalf("difference equal to delta must not flag, got %+v", flags)
	}
}

func TestBucketBoundaries(t *testing.T) {
	scorer := consensus.NewScorer(consensus.DefaultConfig())
	tests := []struct {
		score int
		want  review.Bucket
	}{
		{100, review.BucketRave},
		{85, review.BucketRave},
		{84, review.BucketPositive},
		{70, review.BucketPositive},
		{69, review.BucketMixed},
		{50, review.BucketMixed},
		{49, review.BucketNegative},
		{35, review.BucketNegative},
		{34, review.BucketPan},
		{0, review.BucketPan},
	}
	for _, tt := range tests {
		if got := scorer.Bucket(tt.score); got != tt.want {
			t.Errorf("Bucket(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestInvalidBoundsFallBack(t *testing.T) {
	scorer := consensus.NewScorer(consensus.Config{DisagreementDelta: 30, Rave: 50, Positive: 70, Mixed: 50, Negative: 35})
	if got := scorer.Bucket(85); got != review.BucketRave {
		t.Fatalf("expected default bounds, got %s", got)
	}
}
