package review

// NormalizedIdentity is the exact-match key of a review within a show.
type NormalizedIdentity struct {
	ShowID string `json:"show_id"`
	Outlet string `json:"outlet"`
	Critic string `json:"critic"`
}

// String renders the identity as show/outlet/critic for logs and flags.
func (id NormalizedIdentity) String() string {
	return id.ShowID + "/" + id.Outlet + "/" + id.Critic
}

// Less orders identities by show, outlet, then critic.
func (id NormalizedIdentity) Less(other NormalizedIdentity) bool {
	if id.ShowID != other.ShowID {
		return id.ShowID < other.ShowID
	}
	if id.Outlet != other.Outlet {
		return id.Outlet < other.Outlet
	}
	return id.Critic < other.Critic
}

// MatchKind names why two records were placed in the same cluster.
type MatchKind string

const (
	MatchExactIdentity MatchKind = "exact_identity"
	MatchEditDistance  MatchKind = "edit_distance"
	MatchPartialName   MatchKind = "partial_name"
	MatchSharedURL     MatchKind = "shared_url"
)

// MatchReason is one auditable pairwise link inside a duplicate cluster.
type MatchReason struct {
	Left       string    `json:"left"`
	Right      string    `json:"right"`
	Kind       MatchKind `json:"kind"`
	Confidence float64   `json:"confidence"`
	Detail     string    `json:"detail,omitempty"`
}

// Cluster is the transient set of records judged to be one real-world review.
type Cluster struct {
	ShowID   string             `json:"show_id"`
	Identity NormalizedIdentity `json:"identity"`
	Members  []string           `json:"members"`
	Reasons  []MatchReason      `json:"reasons,omitempty"`
}
