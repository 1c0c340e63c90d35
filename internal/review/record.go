package review

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Excerpt is a short quote attributed to the aggregator that published it.
type Excerpt struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// RatingIndicator is a textual rating exactly as an outlet or aggregator printed it.
type RatingIndicator struct {
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

// ThumbIndicator is a categorical aggregator verdict such as "Up" or "Meh".
type ThumbIndicator struct {
	Source  string `json:"source"`
	Verdict string `json:"verdict"`
}

// ModelBasis records which text a model judgment was produced from.
type ModelBasis string

const (
	BasisFullText ModelBasis = "full_text"
	BasisExcerpt  ModelBasis = "excerpt"
)

// ModelIndicator is a previously computed sentiment judgment.
type ModelIndicator struct {
	Model      string     `json:"model,omitempty"`
	Score      float64    `json:"score"`
	Confidence Confidence `json:"confidence"`
	Basis      ModelBasis `json:"basis"`
}

// Indicators holds the raw score evidence attached to a record.
type Indicators struct {
	Ratings     []RatingIndicator `json:"ratings,omitempty"`
	Thumbs      []ThumbIndicator  `json:"thumbs,omitempty"`
	ModelScores []ModelIndicator  `json:"model_scores,omitempty"`
}

// Empty reports whether no indicator of any kind is present.
func (i Indicators) Empty() bool {
	return len(i.Ratings) == 0 && len(i.Thumbs) == 0 && len(i.ModelScores) == 0
}

// SourceRecord is one scraped or ingested observation of a review.
type SourceRecord struct {
	ID          string     `json:"id"`
	ShowID      string     `json:"show_id"`
	Outlet      string     `json:"outlet"`
	Critic      string     `json:"critic_name"`
	URL         string     `json:"url,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	FullText    string     `json:"full_text,omitempty"`
	Excerpts    []Excerpt  `json:"excerpts,omitempty"`
	Indicators  Indicators `json:"score_indicators"`
	Origin      string     `json:"origin,omitempty"`
}

// ErrInvalidRecord marks a record that fails basic shape validation.
var ErrInvalidRecord = errors.New("invalid source record")

// Validate checks the minimum shape every record must have before resolution.
func (r SourceRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: id is empty", ErrInvalidRecord)
	case strings.TrimSpace(r.ShowID) == "":
		return fmt.Errorf("%w: show_id is empty", ErrInvalidRecord)
	case strings.TrimSpace(r.Outlet) == "":
		return fmt.Errorf("%w: outlet is empty", ErrInvalidRecord)
	case strings.TrimSpace(r.Critic) == "":
		return fmt.Errorf("%w: critic_name is empty", ErrInvalidRecord)
	}
	for i, m := range r.Indicators.ModelScores {
		if m.Score < 0 || m.Score > 100 {
			return fmt.Errorf("%w: model_scores[%d].score %.2f outside 0-100", ErrInvalidRecord, i, m.Score)
		}
	}
	return nil
}

// HasText reports whether the record carries any text evidence.
func (r SourceRecord) HasText() bool {
	if strings.TrimSpace(r.FullText) != "" {
		return true
	}
	for _, e := range r.Excerpts {
		if strings.TrimSpace(e.Text) != "" {
			return true
		}
	}
	return false
}
