package similarity

import (
	"testing"

	"marquee/internal/review"
)

func entry(show, outlet, critic, raw string) Entry {
	return Entry{
		Identity:  review.NormalizedIdentity{ShowID: show, Outlet: outlet, Critic: critic},
		RawCritic: raw,
	}
}

func TestMatchPartialName(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	rels := m.Match([]Entry{
		entry("wicked-2003", "ew", "christian", "christian"),
		entry("wicked-2003", "ew", "christianholub", "christian-holub"),
	})
	if len(rels) != 1 {
		t.Fatalf("relations = %d, want 1", len(rels))
	}
	rel := rels[0]
	if rel.Kind != review.MatchPartialName {
		t.Fatalf("kind = %s, want partial_name", rel.Kind)
	}
	if rel.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", rel.Confidence)
	}
	if rel.Left.Critic != "christian" || rel.Right.Critic != "christianholub" {
		t.Fatalf("unexpected ordering %+v", rel)
	}
}

func TestMatchEditDistance(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	rels := m.Match([]Entry{
		entry("s", "variety", "jessegreen", "Jesse Green"),
		entry("s", "variety", "jesegreen", "Jese Green"),
	})
	if len(rels) != 1 || rels[0].Kind != review.MatchEditDistance {
		t.Fatalf("relations = %+v", rels)
	}
	if rels[0].Distance != 1 {
		t.Fatalf("distance = %d, want 1", rels[0].Distance)
	}
	if rels[0].Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", rels[0].Confidence)
	}
}

func TestMatchSkipsShortNamesAndOtherOutlets(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"short names", []Entry{entry("s", "nyt", "ann", "Ann"), entry("s", "nyt", "dan", "Dan")}},
		{"different outlets", []Entry{entry("s", "nyt", "jessegreen", "Jesse Green"), entry("s", "vulture", "jesegreen", "Jese Green")}},
		{"too far apart", []Entry{entry("s", "nyt", "jessegreen", "Jesse Green"), entry("s", "nyt", "jessicagreene", "Jessica Greene")}},
		{"same identity", []Entry{entry("s", "nyt", "benbrantley", "Ben Brantley"), entry("s", "nyt", "benbrantley", "ben-brantley")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rels := m.Match(tt.entries); len(rels) != 0 {
				t.Fatalf("relations = %+v, want none", rels)
			}
		})
	}
}

func TestMatchRejectsMixedShows(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	rels := m.Match([]Entry{
		entry("cats-1982", "nyt", "frankrich", "Frank Rich"),
		entry("cats-2016", "nyt", "frankrch", "Frank Rch"),
	})
	if rels != nil {
		t.Fatalf("cross-show relations = %+v", rels)
	}
}

func TestMatchDeterministicOrder(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	in := []Entry{
		entry("s", "nyt", "jessegreenx", "jesse-green-x"),
		entry("s", "nyt", "jessegreen", "jesse-green"),
		entry("s", "ew", "christianholub", "christian-holub"),
		entry("s", "ew", "christian", "christian"),
	}
	first := m.Match(in)
	reversed := []Entry{in[3], in[2], in[1], in[0]}
	second := m.Match(reversed)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Left != second[i].Left || first[i].Right != second[i].Right || first[i].Kind != second[i].Kind {
			t.Fatalf("relation %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if first[0].Left.Outlet != "ew" {
		t.Fatalf("first relation outlet = %s, want ew", first[0].Left.Outlet)
	}
}

func TestMatchTextOverlap(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	a := entry("s", "ew", "christian", "christian")
	a.Text = "a dazzling revival with thrilling choreography"
	b := entry("s", "ew", "christianholub", "christian-holub")
	b.Text = "a dazzling revival with thrilling choreography"
	rels := m.Match([]Entry{a, b})
	if len(rels) != 1 || rels[0].Overlap < 0.99 {
		t.Fatalf("relations = %+v, want full overlap", rels)
	}
}
