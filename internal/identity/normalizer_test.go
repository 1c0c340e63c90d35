package identity

import (
	"testing"

	"marquee/internal/refdata"
	"marquee/internal/review"
)

func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	aliases, err := refdata.DefaultAliases()
	if err != nil {
		t.Fatalf("DefaultAliases: %v", err)
	}
	return NewNormalizer(aliases)
}

func TestOutletNormalization(t *testing.T) {
	n := testNormalizer(t)
	tests := []struct {
		raw  string
		want string
	}{
		{"NYT", "nytimes"},
		{"nytimes", "nytimes"},
		{"The New York Times", "nytimes"},
		{"nytimes.com", "nytimes"},
		{"  the   Hollywood Reporter ", "hollywoodreporter"},
		{"THR", "hollywoodreporter"},
		{"Time Out New York", "timeoutny"},
		{"Some Blog", "someblog"},
		{"Théâtre Café", "theatrecafe"},
		{"The", "the"},
		{"???", "???"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := n.Outlet(tt.raw); got != tt.want {
				t.Errorf("Outlet(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCriticNormalization(t *testing.T) {
	n := testNormalizer(t)
	tests := []struct {
		raw  string
		want string
	}{
		{"Ben Brantley", "benbrantley"},
		{"ben-brantley", "benbrantley"},
		{"O'Neil, Jr.", "oneiljr"},
		{"José Solís", "josesolis"},
		{"Sarah Holdren", "saraholdren"},
		{"critic 2", "critic"},
		{"42", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := n.Critic(tt.raw); got != tt.want {
				t.Errorf("Critic(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizationNeverEmptyForNonEmptyInput(t *testing.T) {
	n := testNormalizer(t)
	inputs := []string{" ", "\t", "-", "!!!", "·", "the", "ÅÅ", "東京", "a"}
	for _, in := range inputs {
		if n.Outlet(in) == "" {
			t.Errorf("Outlet(%q) returned empty", in)
		}
		if n.Critic(in) == "" {
			t.Errorf("Critic(%q) returned empty", in)
		}
	}
	if got := n.Outlet(""); got != "" {
		t.Errorf("Outlet(\"\") = %q, want empty", got)
	}
}

func TestExactDuplicateIdentity(t *testing.T) {
	n := testNormalizer(t)
	a := n.Identity(review.SourceRecord{ShowID: "hamilton-2015", Outlet: "NYT", Critic: "Ben Brantley"})
	b := n.Identity(review.SourceRecord{ShowID: "hamilton-2015", Outlet: "nytimes", Critic: "ben-brantley"})
	want := review.NormalizedIdentity{ShowID: "hamilton-2015", Outlet: "nytimes", Critic: "benbrantley"}
	if a != want || b != want {
		t.Fatalf("identities = %+v, %+v; want %+v", a, b, want)
	}
}

func TestUnknownOutletIsNotRegistered(t *testing.T) {
	n := testNormalizer(t)
	key := n.Outlet("Broadway Blog")
	if _, ok := n.RegisteredOutlet(key); ok {
		t.Fatalf("unknown outlet %q resolved to a registry entry", key)
	}
	entry, ok := n.RegisteredOutlet(n.Outlet("NYT"))
	if !ok || entry.Name != "The New York Times" {
		t.Fatalf("RegisteredOutlet(nytimes) = %+v, %v", entry, ok)
	}
}

func TestDisplayName(t *testing.T) {
	n := testNormalizer(t)
	tests := []struct {
		raw  string
		want string
	}{
		{"ben-brantley", "Ben Brantley"},
		{"Ben Brantley", "Ben Brantley"},
		{"  jesse   green ", "Jesse Green"},
		{"NYT", "NYT"},
	}
	for _, tt := range tests {
		if got := n.DisplayName(tt.raw); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsRegistryForm(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"NYT", true},
		{"The New York Times", true},
		{"nytimes", false},
		{"new-york-times", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRegistryForm(tt.raw); got != tt.want {
			t.Errorf("IsRegistryForm(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSlugTokens(t *testing.T) {
	got := SlugTokens("Christian  Holub (EW)")
	want := []string{"christian", "holub", "ew"}
	if len(got) != len(want) {
		t.Fatalf("SlugTokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SlugTokens = %v, want %v", got, want)
		}
	}
}
