package resolver

import (
	"sort"
	"strings"
	"unicode/utf8"

	"marquee/internal/identity"
	"marquee/internal/review"
)

// merge collapses one cluster into a canonical review. group is in member
// order; reasons are the links that formed it.
func (r *Resolver) merge(group []member, reasons []review.MatchReason) *review.CanonicalReview {
	resolved := resolvedIdentity(group)
	out := &review.CanonicalReview{Identity: resolved}

	r.mergeOutlet(out, group)
	r.mergeCritic(out, group)

	excerpts := make(map[string]string)
	urls := make(map[string]struct{})
	for _, m := range group {
		rec := m.rec
		out.MemberIDs = append(out.MemberIDs, rec.ID)
		if utf8.RuneCountInString(rec.FullText) > utf8.RuneCountInString(out.FullText) {
			out.FullText = rec.FullText
		}
		for _, e := range rec.Excerpts {
			text := strings.TrimSpace(e.Text)
			if text == "" {
				continue
			}
			if utf8.RuneCountInString(text) > utf8.RuneCountInString(excerpts[e.Source]) {
				excerpts[e.Source] = text
			}
		}
		if out.URL == "" && strings.TrimSpace(rec.URL) != "" {
			out.URL = strings.TrimSpace(rec.URL)
			out.CanonicalURL = m.url
		}
		if m.url != "" {
			urls[m.url] = struct{}{}
		}
		if out.PublishDate == nil && rec.PublishDate != nil {
			d := rec.PublishDate.UTC()
			out.PublishDate = &d
		}
		if !rec.Indicators.Empty() {
			out.Contributions = append(out.Contributions, review.Contribution{
				RecordID:   rec.ID,
				HasFull:    strings.TrimSpace(rec.FullText) != "",
				Indicators: rec.Indicators,
			})
		}
	}
	sources := make([]string, 0, len(excerpts))
	for source := range excerpts {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		out.Excerpts = append(out.Excerpts, review.Excerpt{Source: source, Text: excerpts[source]})
	}

	for u := range urls {
		out.MemberURLs = append(out.MemberURLs, u)
	}
	sort.Strings(out.MemberURLs)

	out.MatchReasons = append([]review.MatchReason(nil), reasons...)
	sort.SliceStable(out.MatchReasons, func(i, j int) bool {
		a, b := out.MatchReasons[i], out.MatchReasons[j]
		if a.Left != b.Left {
			return a.Left < b.Left
		}
		if a.Right != b.Right {
			return a.Right < b.Right
		}
		return a.Kind < b.Kind
	})
	if out.Contributions == nil {
		out.Contributions = []review.Contribution{}
	}
	return out
}

// mergeOutlet prefers the registry entry, then a member that recorded the
// outlet as a registry code, then the normalized slug.
func (r *Resolver) mergeOutlet(out *review.CanonicalReview, group []member) {
	if entry, ok := r.norm.RegisteredOutlet(out.Identity.Outlet); ok {
		out.OutletID = entry.ID
		out.OutletName = entry.Name
		if out.OutletName == "" {
			out.OutletName = r.norm.DisplayName(entry.ID)
		}
		return
	}
	out.OutletID = out.Identity.Outlet
	var firstRaw, registryName string
	for _, m := range group {
		if m.id.Outlet != out.Identity.Outlet {
			continue
		}
		raw := strings.TrimSpace(m.rec.Outlet)
		if firstRaw == "" {
			firstRaw = raw
		}
		if !identity.IsRegistryForm(raw) {
			continue
		}
		if registryName == "" {
			registryName = raw
		}
		if out.OutletID == out.Identity.Outlet && isCode(raw) {
			out.OutletID = raw
		}
	}
	switch {
	case registryName != "":
		out.OutletName = registryName
	default:
		out.OutletName = r.norm.DisplayName(firstRaw)
	}
}

func (r *Resolver) mergeCritic(out *review.CanonicalReview, group []member) {
	if name, ok := r.norm.RegisteredCritic(out.Identity.Critic); ok {
		out.CriticName = name
		return
	}
	var firstRaw string
	for _, m := range group {
		if m.id.Critic != out.Identity.Critic {
			continue
		}
		raw := strings.Join(strings.Fields(m.rec.Critic), " ")
		if firstRaw == "" {
			firstRaw = raw
		}
		if identity.IsRegistryForm(raw) && strings.Contains(raw, " ") {
			out.CriticName = raw
			return
		}
	}
	out.CriticName = r.norm.DisplayName(firstRaw)
}

// isCode reports whether raw is a compact registry code such as "NYT".
func isCode(raw string) bool {
	return raw != "" && !strings.ContainsAny(raw, " \t-_")
}

// resolvedIdentity picks the identity backed by the most members; ties go to
// the longer critic key, then to the smallest identity.
func resolvedIdentity(group []member) review.NormalizedIdentity {
	counts := make(map[review.NormalizedIdentity]int)
	for _, m := range group {
		counts[m.id]++
	}
	var best review.NormalizedIdentity
	bestCount := -1
	for id, n := range counts {
		switch {
		case n > bestCount:
		case n < bestCount:
			continue
		case len(id.Critic) > len(best.Critic):
		case len(id.Critic) < len(best.Critic):
			continue
		case !id.Less(best):
			continue
		}
		best, bestCount = id, n
	}
	return best
}
