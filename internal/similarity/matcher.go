package similarity

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"marquee/internal/identity"
	"marquee/internal/review"
	"marquee/internal/textutil"
)

// Config bounds what counts as a near-duplicate.
type Config struct {
	MaxEditDistance   int
	MinNameLength     int
	PartialConfidence float64
}

// DefaultConfig mirrors the shipped [matching] defaults.
func DefaultConfig() Config {
	return Config{MaxEditDistance: 2, MinNameLength: 5, PartialConfidence: 0.5}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxEditDistance < 0 {
		c.MaxEditDistance = def.MaxEditDistance
	}
	if c.MinNameLength <= 0 {
		c.MinNameLength = def.MinNameLength
	}
	if c.PartialConfidence <= 0 || c.PartialConfidence > 1 {
		c.PartialConfidence = def.PartialConfidence
	}
	return c
}

// Entry is one record's view as seen by the matcher.
type Entry struct {
	Identity  review.NormalizedIdentity
	RawCritic string
	Text      string
}

// Relation links two distinct identities that may be the same person.
type Relation struct {
	Left       review.NormalizedIdentity
	Right      review.NormalizedIdentity
	Kind       review.MatchKind
	Confidence float64
	Distance   int
	Overlap    float64
	Detail     string
}

// Matcher evaluates candidate relations for one show at a time.
type Matcher struct {
	cfg Config
}

// NewMatcher returns a matcher using cfg, falling back to defaults for
// unset fields.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg.normalized()}
}

type group struct {
	id     review.NormalizedIdentity
	tokens [][]string
	raws   []string
	text   *textutil.Fingerprint
}

// Match returns relations between identities sharing an outlet. Entries from
// more than one show are rejected by returning nil; callers pass a single
// show's records.
func (m *Matcher) Match(entries []Entry) []Relation {
	if len(entries) < 2 {
		return nil
	}
	show := entries[0].Identity.ShowID
	groups := make(map[review.NormalizedIdentity]*group)
	for _, e := range entries {
		if e.Identity.ShowID != show {
			return nil
		}
		g, ok := groups[e.Identity]
		if !ok {
			g = &group{id: e.Identity}
			groups[e.Identity] = g
		}
		if !slices.Contains(g.raws, e.RawCritic) {
			g.raws = append(g.raws, e.RawCritic)
			g.tokens = append(g.tokens, identity.SlugTokens(e.RawCritic))
		}
		if g.text == nil && strings.TrimSpace(e.Text) != "" {
			g.text = textutil.NewFingerprint(e.Text)
		}
	}
	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.raws)
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].id.Less(ordered[j].id) })

	var out []Relation
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			a, b := ordered[i], ordered[j]
			if a.id.Outlet != b.id.Outlet {
				break
			}
			rel, ok := m.relate(a, b)
			if !ok {
				continue
			}
			rel.Overlap = textutil.CosineSimilarity(a.text, b.text)
			out = append(out, rel)
		}
	}
	return out
}

func (m *Matcher) relate(a, b *group) (Relation, bool) {
	if prefix, longer, ok := bylineContainment(a.tokens, b.tokens); ok {
		return Relation{
			Left:       a.id,
			Right:      b.id,
			Kind:       review.MatchPartialName,
			Confidence: m.cfg.PartialConfidence,
			Detail:     fmt.Sprintf("%q is a byline prefix of %q", prefix, longer),
		}, true
	}
	la := utf8.RuneCountInString(a.id.Critic)
	lb := utf8.RuneCountInString(b.id.Critic)
	if la < m.cfg.MinNameLength || lb < m.cfg.MinNameLength {
		return Relation{}, false
	}
	if abs(la-lb) > m.cfg.MaxEditDistance {
		return Relation{}, false
	}
	d := Distance(a.id.Critic, b.id.Critic)
	if d == 0 || d > m.cfg.MaxEditDistance {
		return Relation{}, false
	}
	return Relation{
		Left:       a.id,
		Right:      b.id,
		Kind:       review.MatchEditDistance,
		Confidence: 1 - float64(d)/float64(max(la, lb)),
		Distance:   d,
		Detail:     fmt.Sprintf("%q and %q differ by %d edit(s)", a.raws[0], b.raws[0], d),
	}, true
}

// bylineContainment reports whether one raw name's words are a strict word
// prefix of another's, e.g. "christian" and "christian-holub".
func bylineContainment(left, right [][]string) (string, string, bool) {
	for _, a := range left {
		for _, b := range right {
			if len(a) == 0 || len(b) == 0 || len(a) == len(b) {
				continue
			}
			short, long := a, b
			if len(short) > len(long) {
				short, long = long, short
			}
			if slices.Equal(short, long[:len(short)]) {
				return strings.Join(short, "-"), strings.Join(long, "-"), true
			}
		}
	}
	return "", "", false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
