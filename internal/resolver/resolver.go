package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"marquee/internal/identity"
	"marquee/internal/logging"
	"marquee/internal/review"
	"marquee/internal/similarity"
)

// Options tunes merge behaviour.
type Options struct {
	// MergeConfidenceFloor is the minimum similarity confidence that merges
	// two identities. Byline-prefix candidates are never merged.
	MergeConfidenceFloor float64
}

// Resolver builds canonical reviews for one show at a time. It holds only
// read-only collaborators and is safe for concurrent use across shows.
type Resolver struct {
	norm    *identity.Normalizer
	matcher *similarity.Matcher
	floor   float64
	logger  *slog.Logger
}

// New constructs a Resolver.
func New(norm *identity.Normalizer, matcher *similarity.Matcher, opts Options, logger *slog.Logger) *Resolver {
	floor := opts.MergeConfidenceFloor
	if floor <= 0 || floor > 1 {
		floor = 0.85
	}
	return &Resolver{
		norm:    norm,
		matcher: matcher,
		floor:   floor,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// Result is the immutable outcome of resolving one show.
type Result struct {
	ShowID   string
	Reviews  []*review.CanonicalReview
	Clusters []review.Cluster
	Flags    []review.Flag
}

type member struct {
	rec review.SourceRecord
	id  review.NormalizedIdentity
	url string
}

type link struct {
	a, b   int
	reason review.MatchReason
}

// ResolveShow clusters and merges the records of a single show. Records whose
// show differs from showID are ignored.
func (r *Resolver) ResolveShow(ctx context.Context, showID string, records []review.SourceRecord) Result {
	logger := logging.WithContext(ctx, r.logger)
	members := r.prepare(showID, records)
	result := Result{ShowID: showID}
	if len(members) == 0 {
		return result
	}

	uf := newUnionFind(len(members))
	var links []link
	join := func(a, b int, reason review.MatchReason) {
		if uf.union(a, b) {
			links = append(links, link{a: a, b: b, reason: reason})
		}
	}

	byIdentity := make(map[review.NormalizedIdentity][]int)
	for i, m := range members {
		byIdentity[m.id] = append(byIdentity[m.id], i)
	}
	for _, id := range sortedIdentities(byIdentity) {
		idx := byIdentity[id]
		for _, k := range idx[1:] {
			join(idx[0], k, review.MatchReason{
				Left:       members[idx[0]].rec.ID,
				Right:      members[k].rec.ID,
				Kind:       review.MatchExactIdentity,
				Confidence: 1,
			})
		}
	}

	relations := r.matcher.Match(similarityEntries(members))
	var pending []similarity.Relation
	for _, rel := range relations {
		a, b := byIdentity[rel.Left][0], byIdentity[rel.Right][0]
		mergeable := rel.Kind != review.MatchPartialName && rel.Confidence >= r.floor
		logger.Debug("similarity relation",
			logging.Args(
				logging.String("left", members[a].rec.ID),
				logging.String("right", members[b].rec.ID),
				logging.String("kind", string(rel.Kind)),
				logging.Float64("confidence", rel.Confidence),
				logging.Bool("mergeable", mergeable))...)
		if !mergeable {
			pending = append(pending, rel)
			continue
		}
		join(a, b, review.MatchReason{
			Left:       members[a].rec.ID,
			Right:      members[b].rec.ID,
			Kind:       rel.Kind,
			Confidence: rel.Confidence,
			Detail:     rel.Detail,
		})
	}

	byURL := make(map[string][]int)
	for i, m := range members {
		if m.url != "" {
			byURL[m.url] = append(byURL[m.url], i)
		}
	}
	urls := make([]string, 0, len(byURL))
	for u := range byURL {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	for _, u := range urls {
		idx := byURL[u]
		for _, k := range idx[1:] {
			join(idx[0], k, review.MatchReason{
				Left:       members[idx[0]].rec.ID,
				Right:      members[k].rec.ID,
				Kind:       review.MatchSharedURL,
				Confidence: 1,
				Detail:     u,
			})
		}
	}

	components := make(map[int][]int)
	var roots []int
	for i := range members {
		root := uf.find(i)
		if _, ok := components[root]; !ok {
			roots = append(roots, root)
		}
		components[root] = append(components[root], i)
	}
	linksByRoot := make(map[int][]review.MatchReason)
	for _, l := range links {
		root := uf.find(l.a)
		linksByRoot[root] = append(linksByRoot[root], l.reason)
	}

	placed := make(map[review.NormalizedIdentity]string)
	for _, root := range roots {
		idx := components[root]
		group := make([]member, len(idx))
		for i, k := range idx {
			group[i] = members[k]
		}
		reasons := linksByRoot[root]

		ev := assessEvidence(group)
		if distinctIdentities(group) > 1 && ev.conflict() {
			split := r.split(showID, group, reasons)
			keys := make([]string, 0, len(split))
			for _, c := range split {
				result.Reviews = append(result.Reviews, c)
				keys = append(keys, c.Key())
				for _, m := range group {
					if m.id == c.Identity {
						placed[m.id] = c.Key()
					}
				}
			}
			sort.Strings(keys)
			flag := ambiguousFlag(showID, group, keys, reasons, ev)
			result.Flags = append(result.Flags, flag)
			logger.Info("ambiguous cluster split",
				logging.Args(append(logging.DecisionAttrs("cluster_merge", "split", flag.Explanation),
					logging.Int("records", len(group)))...)...)
			continue
		}

		canonical := r.merge(group, reasons)
		result.Reviews = append(result.Reviews, canonical)
		for _, m := range group {
			placed[m.id] = canonical.Key()
		}
		if len(group) > 1 {
			logger.Debug("cluster merged",
				logging.Args(append(logging.DecisionAttrs("cluster_merge", "merged", reasonSummary(reasons)),
					logging.String(logging.FieldReview, canonical.Key()),
					logging.Int("records", len(group)))...)...)
		}
	}

	for _, rel := range pending {
		left, right := placed[rel.Left], placed[rel.Right]
		if left != "" && left == right {
			continue
		}
		flag := candidateFlag(showID, rel, byIdentity, members, left, right)
		result.Flags = append(result.Flags, flag)
		logger.Info("similarity candidate not merged",
			logging.Args(logging.FlagAttrs(string(flag.Kind), string(flag.Severity), flag.Explanation)...)...)
	}

	sort.Slice(result.Reviews, func(i, j int) bool {
		return result.Reviews[i].Identity.Less(result.Reviews[j].Identity)
	})
	result.Clusters = make([]review.Cluster, 0, len(result.Reviews))
	for _, c := range result.Reviews {
		result.Clusters = append(result.Clusters, review.Cluster{
			ShowID:   showID,
			Identity: c.Identity,
			Members:  append([]string(nil), c.MemberIDs...),
			Reasons:  append([]review.MatchReason(nil), c.MatchReasons...),
		})
	}
	review.SortFlags(result.Flags)
	return result
}

func (r *Resolver) prepare(showID string, records []review.SourceRecord) []member {
	members := make([]member, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.ShowID) != showID {
			continue
		}
		members = append(members, member{
			rec: rec,
			id:  r.norm.Identity(rec),
			url: identity.NormalizeURL(rec.URL),
		})
	}
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].rec.ID != members[j].rec.ID {
			return members[i].rec.ID < members[j].rec.ID
		}
		return members[i].id.Less(members[j].id)
	})
	return members
}

// split keeps each exact-identity group of a conflicting cluster as its own review.
func (r *Resolver) split(showID string, group []member, reasons []review.MatchReason) []*review.CanonicalReview {
	byID := make(map[review.NormalizedIdentity][]member)
	var order []review.NormalizedIdentity
	for _, m := range group {
		if _, ok := byID[m.id]; !ok {
			order = append(order, m.id)
		}
		byID[m.id] = append(byID[m.id], m)
	}
	out := make([]*review.CanonicalReview, 0, len(order))
	for _, id := range order {
		sub := byID[id]
		ids := make(map[string]struct{}, len(sub))
		for _, m := range sub {
			ids[m.rec.ID] = struct{}{}
		}
		var kept []review.MatchReason
		for _, reason := range reasons {
			if reason.Kind != review.MatchExactIdentity {
				continue
			}
			_, left := ids[reason.Left]
			_, right := ids[reason.Right]
			if left && right {
				kept = append(kept, reason)
			}
		}
		out = append(out, r.merge(sub, kept))
	}
	return out
}

func similarityEntries(members []member) []similarity.Entry {
	entries := make([]similarity.Entry, 0, len(members))
	for _, m := range members {
		text := m.rec.FullText
		if strings.TrimSpace(text) == "" {
			parts := make([]string, 0, len(m.rec.Excerpts))
			for _, e := range m.rec.Excerpts {
				parts = append(parts, e.Text)
			}
			text = strings.Join(parts, " ")
		}
		entries = append(entries, similarity.Entry{Identity: m.id, RawCritic: m.rec.Critic, Text: text})
	}
	return entries
}

func sortedIdentities(groups map[review.NormalizedIdentity][]int) []review.NormalizedIdentity {
	out := make([]review.NormalizedIdentity, 0, len(groups))
	for id := range groups {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func distinctIdentities(group []member) int {
	seen := make(map[review.NormalizedIdentity]struct{}, len(group))
	for _, m := range group {
		seen[m.id] = struct{}{}
	}
	return len(seen)
}

func reasonSummary(reasons []review.MatchReason) string {
	counts := make(map[review.MatchKind]int)
	for _, r := range reasons {
		counts[r.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind, n := range counts {
		kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ",")
}
