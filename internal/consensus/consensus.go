// Package consensus reduces a review's score signals to one consensus score.
//
// Score is pure: it reads only the signals it is given and is re-run in
// full whenever any signal changes.
package consensus

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"marquee/internal/review"
)

// Config holds the disagreement delta and bucket lower bounds.
type Config struct {
	DisagreementDelta int
	Rave              int
	Positive          int
	Mixed             int
	Negative          int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		DisagreementDelta: 30,
		Rave:              85,
		Positive:          70,
		Mixed:             50,
		Negative:          35,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.DisagreementDelta <= 0 || c.DisagreementDelta > 100 {
		c.DisagreementDelta = d.DisagreementDelta
	}
	if !(c.Rave > c.Positive && c.Positive > c.Mixed && c.Mixed > c.Negative && c.Negative > 0 && c.Rave <= 100) {
		c.Rave, c.Positive, c.Mixed, c.Negative = d.Rave, d.Positive, d.Mixed, d.Negative
	}
	return c
}

// Scorer applies the reduction with fixed thresholds.
type Scorer struct {
	cfg Config
}

// NewScorer builds a scorer. Invalid thresholds fall back to defaults.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.normalized()}
}

// Bucket maps a score to its qualitative label.
func (s *Scorer) Bucket(score int) review.Bucket {
	switch {
	case score >= s.cfg.Rave:
		return review.BucketRave
	case score >= s.cfg.Positive:
		return review.BucketPositive
	case score >= s.cfg.Mixed:
		return review.BucketMixed
	case score >= s.cfg.Negative:
		return review.BucketNegative
	default:
		return review.BucketPan
	}
}

// Score reduces signals to a consensus. Without signals it returns nil and an
// Unscored flag. A HighDisagreement flag is returned when the chosen signal
// and the aggregator thumbs disagree by more than the configured delta.
func (s *Scorer) Score(r *review.CanonicalReview, signals []review.ScoreSignal) (*review.ConsensusScore, []review.Flag) {
	if len(signals) == 0 {
		flag := review.Flag{
			Kind:        review.FlagUnscored,
			Severity:    review.SeverityInfo,
			Explanation: "no usable score evidence",
		}
		attach(&flag, r)
		return nil, []review.Flag{flag}
	}
	chosen, value := choose(signals)
	result := &review.ConsensusScore{
		Score:        value,
		Bucket:       s.Bucket(value),
		Confidence:   chosen.Confidence,
		Contributing: chosen,
		Considered:   len(signals),
	}
	if chosen.Kind == review.SignalHumanOverride || chosen.Kind == review.SignalAggregatorThumb {
		return result, nil
	}

	thumbs := 0
	sum := 0
	for _, sig := range signals {
		if sig.Kind == review.SignalAggregatorThumb {
			thumbs++
			sum += sig.Value
		}
	}
	if thumbs == 0 {
		return result, nil
	}
	anchor := int(math.Round(float64(sum) / float64(thumbs)))
	diff := value - anchor
	if diff < 0 {
		diff = -diff
	}
	if diff <= s.cfg.DisagreementDelta {
		return result, nil
	}
	flag := review.Flag{
		Kind:     review.FlagHighDisagreement,
		Severity: review.SeverityWarning,
		Explanation: fmt.Sprintf("%s %d disagrees with aggregator thumbs %d by %d (delta %d)",
			chosen.Kind, value, anchor, diff, s.cfg.DisagreementDelta),
		Details: map[string]string{
			"chosen_kind":  string(chosen.Kind),
			"chosen_value": strconv.Itoa(value),
			"thumb_anchor": strconv.Itoa(anchor),
			"thumb_count":  strconv.Itoa(thumbs),
			"difference":   strconv.Itoa(diff),
		},
	}
	attach(&flag, r)
	return result, []review.Flag{flag}
}

func attach(flag *review.Flag, r *review.CanonicalReview) {
	if r == nil {
		return
	}
	flag.ShowIDs = []string{r.ShowID()}
	flag.Reviews = []string{r.Key()}
	flag.Records = append([]string(nil), r.MemberIDs...)
}

// choose picks the winning signal and the resulting value. An override wins
// outright. Otherwise the highest confidence wins, ties broken by kind
// priority; several winners of the same kind and confidence are averaged and
// the returned signal carries the average and every averaged source.
func choose(signals []review.ScoreSignal) (review.ScoreSignal, int) {
	for _, sig := range signals {
		if sig.Kind == review.SignalHumanOverride {
			return sig, sig.Value
		}
	}
	best := signals[0]
	for _, sig := range signals[1:] {
		if better(sig, best) {
			best = sig
		}
	}
	var sum int
	var sources []string
	for _, sig := range signals {
		if sig.Kind == best.Kind && sig.Confidence == best.Confidence {
			sum += sig.Value
			sources = append(sources, sig.Source)
		}
	}
	if len(sources) == 1 {
		return best, best.Value
	}
	sort.Strings(sources)
	best.Value = int(math.Round(float64(sum) / float64(len(sources))))
	best.Source = strings.Join(sources, ",")
	best.Detail = fmt.Sprintf("average of %d %s signals", len(sources), best.Kind)
	return best, best.Value
}

func better(a, b review.ScoreSignal) bool {
	if a.Confidence.Rank() != b.Confidence.Rank() {
		return a.Confidence.Rank() > b.Confidence.Rank()
	}
	if a.Kind.Priority() != b.Kind.Priority() {
		return a.Kind.Priority() > b.Kind.Priority()
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Value < b.Value
}
