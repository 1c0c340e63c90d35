package testsupport

import (
	"time"

	"marquee/internal/review"
)

// RecordOption customizes a SourceRecord built by NewRecord.
type RecordOption func(*review.SourceRecord)

// NewRecord builds a minimal valid SourceRecord.
func NewRecord(id, showID, outlet, critic string, opts ...RecordOption) review.SourceRecord {
	rec := review.SourceRecord{ID: id, ShowID: showID, Outlet: outlet, Critic: critic}
	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}

// WithURL sets the review URL.
func WithURL(url string) RecordOption {
	return func(r *review.SourceRecord) { r.URL = url }
}

// WithPublishDate sets the publish date from a YYYY-MM-DD string.
func WithPublishDate(day string) RecordOption {
	return func(r *review.SourceRecord) {
		t, err := time.Parse(time.DateOnly, day)
		if err != nil {
			panic(err)
		}
		r.PublishDate = &t
	}
}

// WithFullText sets the full review text.
func WithFullText(text string) RecordOption {
	return func(r *review.SourceRecord) { r.FullText = text }
}

// WithExcerpt appends an aggregator excerpt.
func WithExcerpt(source, text string) RecordOption {
	return func(r *review.SourceRecord) {
		r.Excerpts = append(r.Excerpts, review.Excerpt{Source: source, Text: text})
	}
}

// WithRating appends a textual rating indicator.
func WithRating(source, text string) RecordOption {
	return func(r *review.SourceRecord) {
		r.Indicators.Ratings = append(r.Indicators.Ratings, review.RatingIndicator{Source: source, Text: text})
	}
}

// WithThumb appends an aggregator thumb.
func WithThumb(source, verdict string) RecordOption {
	return func(r *review.SourceRecord) {
		r.Indicators.Thumbs = append(r.Indicators.Thumbs, review.ThumbIndicator{Source: source, Verdict: verdict})
	}
}

// WithModelScore appends a model judgment.
func WithModelScore(score float64, confidence review.Confidence, basis review.ModelBasis) RecordOption {
	return func(r *review.SourceRecord) {
		r.Indicators.ModelScores = append(r.Indicators.ModelScores, review.ModelIndicator{
			Model:      "sentiment-v2",
			Score:      score,
			Confidence: confidence,
			Basis:      basis,
		})
	}
}
