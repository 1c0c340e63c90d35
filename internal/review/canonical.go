package review

import "time"

// Contribution is a raw indicator set tagged with the record that supplied it.
type Contribution struct {
	RecordID   string     `json:"record_id"`
	HasFull    bool       `json:"has_full_text"`
	Indicators Indicators `json:"indicators"`
}

// CanonicalReview is the merged result of one duplicate cluster.
type CanonicalReview struct {
	Identity      NormalizedIdentity `json:"identity"`
	OutletID      string             `json:"outlet_id"`
	OutletName    string             `json:"outlet_name"`
	CriticName    string             `json:"critic_name"`
	URL           string             `json:"url,omitempty"`
	CanonicalURL  string             `json:"canonical_url,omitempty"`
	MemberURLs    []string           `json:"member_urls,omitempty"` // every distinct member canonical URL, sorted
	PublishDate   *time.Time         `json:"publish_date,omitempty"`
	FullText      string             `json:"full_text,omitempty"`
	Excerpts      []Excerpt          `json:"excerpts,omitempty"`
	Contributions []Contribution     `json:"contributions"`
	MemberIDs     []string           `json:"member_ids"`
	MatchReasons  []MatchReason      `json:"match_reasons,omitempty"`
	Signals       []ScoreSignal      `json:"signals,omitempty"`
	Consensus     *ConsensusScore    `json:"consensus,omitempty"`
}

// ShowID returns the show the review belongs to.
func (r *CanonicalReview) ShowID() string {
	return r.Identity.ShowID
}

// Key returns a stable reference used by flags and the store.
func (r *CanonicalReview) Key() string {
	return r.Identity.String()
}

// Text returns the best available text evidence: full text when present,
// otherwise the excerpts joined in source order.
func (r *CanonicalReview) Text() (string, bool) {
	if r.FullText != "" {
		return r.FullText, true
	}
	var out string
	for _, e := range r.Excerpts {
		if e.Text == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += e.Text
	}
	return out, false
}
