package signals

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"marquee/internal/logging"
	"marquee/internal/refdata"
	"marquee/internal/review"
	"marquee/internal/textutil"
)

// Source labels for signals not tied to an aggregator.
const (
	SourceOverride = "human_override"
	SourceLexicon  = "keyword_lexicon"
)

// Config holds the numeric anchors used by the rule tables.
type Config struct {
	ThumbUp       int
	ThumbMeh      int
	ThumbDown     int
	RatingFloor   int
	RatingCeiling int
}

// DefaultConfig returns the stock anchors.
func DefaultConfig() Config {
	return Config{
		ThumbUp:       80,
		ThumbMeh:      60,
		ThumbDown:     35,
		RatingFloor:   20,
		RatingCeiling: 92,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.ThumbUp <= 0 || c.ThumbUp > 100 {
		c.ThumbUp = d.ThumbUp
	}
	if c.ThumbMeh <= 0 || c.ThumbMeh > 100 {
		c.ThumbMeh = d.ThumbMeh
	}
	if c.ThumbDown <= 0 || c.ThumbDown > 100 {
		c.ThumbDown = d.ThumbDown
	}
	if c.RatingCeiling <= 0 || c.RatingCeiling > 100 {
		c.RatingCeiling = d.RatingCeiling
	}
	if c.RatingFloor < 0 || c.RatingFloor >= c.RatingCeiling {
		c.RatingFloor = d.RatingFloor
	}
	return c
}

// Collector extracts score signals from canonical reviews. It is read-only
// after construction and safe for concurrent use.
type Collector struct {
	cfg       Config
	overrides *refdata.Overrides
	logger    *slog.Logger
}

// NewCollector builds a collector. A nil overrides table disables overrides.
func NewCollector(cfg Config, overrides *refdata.Overrides, logger *slog.Logger) *Collector {
	return &Collector{
		cfg:       cfg.normalized(),
		overrides: overrides,
		logger:    logging.NewComponentLogger(logger, "signals"),
	}
}

// Collect returns every signal the review's evidence supports, deduplicated
// and in a stable order. It does not modify the review.
func (c *Collector) Collect(r *review.CanonicalReview) []review.ScoreSignal {
	if r == nil {
		return nil
	}
	var out []review.ScoreSignal
	for _, contrib := range r.Contributions {
		for _, ind := range contrib.Indicators.Ratings {
			if sig, ok := c.rating(contrib.RecordID, ind); ok {
				out = append(out, sig)
			} else {
				c.logger.Debug("rating text matched no rule",
					logging.String(logging.FieldReview, r.Key()),
					logging.String(logging.FieldRecordID, contrib.RecordID),
					logging.String("rating_text", ind.Text))
			}
		}
		for _, ind := range contrib.Indicators.Thumbs {
			if sig, ok := c.thumb(contrib.RecordID, ind); ok {
				out = append(out, sig)
			}
		}
		for _, ind := range contrib.Indicators.ModelScores {
			out = append(out, c.model(contrib, ind))
		}
	}
	if sig, ok := c.keyword(r); ok {
		out = append(out, sig)
	}
	if sig, ok := c.override(r); ok {
		out = append(out, sig)
	}
	return sortSignals(dedupe(out))
}

func (c *Collector) rating(recordID string, ind review.RatingIndicator) (review.ScoreSignal, bool) {
	m, ok := parseRating(ind.Text, c.cfg.RatingFloor, c.cfg.RatingCeiling)
	if !ok {
		return review.ScoreSignal{}, false
	}
	return review.ScoreSignal{
		Kind:       review.SignalExplicitRating,
		Value:      m.value,
		Confidence: review.ConfidenceHigh,
		Source:     sourceOr(ind.Source, "outlet"),
		Detail:     fmt.Sprintf("%s %q from record %s", m.rule, ind.Text, recordID),
	}, true
}

func (c *Collector) thumb(recordID string, ind review.ThumbIndicator) (review.ScoreSignal, bool) {
	var value int
	switch thumbVerdicts[lettersOnly(strings.ToLower(ind.Verdict))] {
	case thumbUp:
		value = c.cfg.ThumbUp
	case thumbMeh:
		value = c.cfg.ThumbMeh
	case thumbDown:
		value = c.cfg.ThumbDown
	default:
		return review.ScoreSignal{}, false
	}
	return review.ScoreSignal{
		Kind:       review.SignalAggregatorThumb,
		Value:      value,
		Confidence: review.ConfidenceMedium,
		Source:     sourceOr(ind.Source, "aggregator"),
		Detail:     fmt.Sprintf("thumb %q from record %s", ind.Verdict, recordID),
	}, true
}

// model keeps the model's own confidence unless the judgment was made from an
// excerpt, in which case it is forced to low.
func (c *Collector) model(contrib review.Contribution, ind review.ModelIndicator) review.ScoreSignal {
	conf, ok := review.ParseConfidence(string(ind.Confidence))
	if !ok {
		conf = review.ConfidenceMedium
	}
	detail := fmt.Sprintf("model score %.1f from record %s", ind.Score, contrib.RecordID)
	excerptBased := ind.Basis == review.BasisExcerpt || (ind.Basis == "" && !contrib.HasFull)
	if excerptBased && conf != review.ConfidenceLow {
		detail += fmt.Sprintf("; confidence %s downgraded, judged from excerpt", conf)
		conf = review.ConfidenceLow
	}
	return review.ScoreSignal{
		Kind:       review.SignalModelScore,
		Value:      clamp(int(math.Round(ind.Score)), 0, 100),
		Confidence: conf,
		Source:     sourceOr(ind.Model, "model"),
		Detail:     detail,
	}
}

func (c *Collector) keyword(r *review.CanonicalReview) (review.ScoreSignal, bool) {
	text, full := r.Text()
	words := textutil.Words(text)
	var net, total, hits int
	lastNegator := -negationWindow - 1
	for i, w := range words {
		if _, ok := negators[w]; ok {
			lastNegator = i
			continue
		}
		weight, ok := lexicon[w]
		if !ok {
			continue
		}
		if i-lastNegator <= negationWindow {
			weight = -weight
		}
		hits++
		net += weight
		total += abs(weight)
	}
	if total == 0 {
		return review.ScoreSignal{}, false
	}
	value := keywordCenter + int(math.Round(float64(keywordSpread)*float64(net)/float64(total)))
	basis := "excerpts"
	if full {
		basis = "full text"
	}
	return review.ScoreSignal{
		Kind:       review.SignalKeywordSentiment,
		Value:      value,
		Confidence: review.ConfidenceLow,
		Source:     SourceLexicon,
		Detail:     fmt.Sprintf("%d lexicon hits in %s, net weight %d of %d", hits, basis, net, total),
	}, true
}

func (c *Collector) override(r *review.CanonicalReview) (review.ScoreSignal, bool) {
	if c.overrides == nil {
		return review.ScoreSignal{}, false
	}
	o, ok := c.overrides.Lookup(r.Identity.ShowID, r.Identity.Outlet, r.Identity.Critic)
	if !ok {
		return review.ScoreSignal{}, false
	}
	detail := strings.TrimSpace(o.Reason)
	if o.Author != "" {
		detail = strings.TrimSpace(detail + " (" + o.Author + ")")
	}
	return review.ScoreSignal{
		Kind:       review.SignalHumanOverride,
		Value:      o.Score,
		Confidence: review.ConfidenceHigh,
		Source:     SourceOverride,
		Detail:     detail,
	}, true
}

// dedupe drops repeats of the same evidence, such as one aggregator thumb
// scraped into two duplicate records. The first occurrence is kept.
func dedupe(signals []review.ScoreSignal) []review.ScoreSignal {
	type key struct {
		kind   review.SignalKind
		source string
		value  int
		conf   review.Confidence
	}
	seen := make(map[key]struct{}, len(signals))
	out := signals[:0]
	for _, s := range signals {
		k := key{s.Kind, s.Source, s.Value, s.Confidence}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

func sortSignals(signals []review.ScoreSignal) []review.ScoreSignal {
	sort.SliceStable(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if a.Kind.Priority() != b.Kind.Priority() {
			return a.Kind.Priority() > b.Kind.Priority()
		}
		if a.Confidence.Rank() != b.Confidence.Rank() {
			return a.Confidence.Rank() > b.Confidence.Rank()
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Value < b.Value
	})
	return signals
}

func sourceOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return strings.ToLower(value)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
