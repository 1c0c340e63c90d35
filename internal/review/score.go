package review

// Confidence is a coarse three-level trust rating.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidences; unknown values rank below low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// ParseConfidence maps free-form confidence labels onto the three levels.
func ParseConfidence(value string) (Confidence, bool) {
	switch value {
	case "high", "HIGH", "High":
		return ConfidenceHigh, true
	case "medium", "MEDIUM", "Medium", "med":
		return ConfidenceMedium, true
	case "low", "LOW", "Low":
		return ConfidenceLow, true
	}
	return "", false
}

// SignalKind is the closed set of scoring evidence types.
type SignalKind string

const (
	SignalHumanOverride    SignalKind = "human_override"
	SignalExplicitRating   SignalKind = "explicit_rating"
	SignalModelScore       SignalKind = "model_score"
	SignalAggregatorThumb  SignalKind = "aggregator_thumb"
	SignalKeywordSentiment SignalKind = "keyword_sentiment"
)

// Priority orders kinds for tie-breaks; higher wins.
func (k SignalKind) Priority() int {
	switch k {
	case SignalHumanOverride:
		return 5
	case SignalExplicitRating:
		return 4
	case SignalModelScore:
		return 3
	case SignalAggregatorThumb:
		return 2
	case SignalKeywordSentiment:
		return 1
	default:
		return 0
	}
}

// ScoreSignal is one typed, prioritized piece of scoring evidence.
type ScoreSignal struct {
	Kind       SignalKind `json:"kind"`
	Value      int        `json:"value"`
	Confidence Confidence `json:"confidence"`
	Source     string     `json:"source"`
	Detail     string     `json:"detail,omitempty"`
}

// Bucket is the five-way qualitative label derived from a score.
type Bucket string

const (
	BucketRave     Bucket = "Rave"
	BucketPositive Bucket = "Positive"
	BucketMixed    Bucket = "Mixed"
	BucketNegative Bucket = "Negative"
	BucketPan      Bucket = "Pan"
)

// ConsensusScore is the reconciled judgment for one canonical review.
type ConsensusScore struct {
	Score        int         `json:"score"`
	Bucket       Bucket      `json:"bucket"`
	Confidence   Confidence  `json:"confidence"`
	Contributing ScoreSignal `json:"contributing_signal"`
	Considered   int         `json:"considered_signals"`
}
