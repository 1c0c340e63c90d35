// Package guard enforces corpus-wide invariants that no single show can see:
// a canonical URL belongs to exactly one show, and a show holds at most one
// canonical review per normalized identity.
package guard

import (
	"fmt"
	"sort"
	"strings"

	"marquee/internal/review"
)

// Check inspects every canonical review after per-show resolution has
// finished and returns one critical flag per violation. Violations are never
// repaired here; relocating a misfiled review is a manual decision.
func Check(reviews []*review.CanonicalReview) []review.Flag {
	var flags []review.Flag
	flags = append(flags, crossShowURLs(reviews)...)
	flags = append(flags, duplicateIdentities(reviews)...)
	review.SortFlags(flags)
	return flags
}

func crossShowURLs(reviews []*review.CanonicalReview) []review.Flag {
	byURL := make(map[string][]*review.CanonicalReview)
	for _, r := range reviews {
		if r == nil {
			continue
		}
		for _, u := range urlsOf(r) {
			byURL[u] = append(byURL[u], r)
		}
	}

	urls := make([]string, 0, len(byURL))
	for u := range byURL {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var flags []review.Flag
	for _, u := range urls {
		group := byURL[u]
		shows := distinct(group, func(r *review.CanonicalReview) []string { return []string{r.ShowID()} })
		if len(shows) < 2 {
			continue
		}
		flags = append(flags, review.Flag{
			Kind:     review.FlagCrossEntityViolation,
			Severity: review.SeverityCritical,
			ShowIDs:  shows,
			Reviews:  distinct(group, func(r *review.CanonicalReview) []string { return []string{r.Key()} }),
			Records:  distinct(group, func(r *review.CanonicalReview) []string { return r.MemberIDs }),
			Explanation: fmt.Sprintf("url %s backs reviews under %d shows (%s); the review is likely filed under the wrong show",
				u, len(shows), strings.Join(shows, ", ")),
			Details: map[string]string{"url": u, "rule": "cross_show_url"},
		})
	}
	return flags
}

func duplicateIdentities(reviews []*review.CanonicalReview) []review.Flag {
	byIdentity := make(map[review.NormalizedIdentity][]*review.CanonicalReview)
	for _, r := range reviews {
		if r == nil {
			continue
		}
		byIdentity[r.Identity] = append(byIdentity[r.Identity], r)
	}

	ids := make([]review.NormalizedIdentity, 0, len(byIdentity))
	for id, group := range byIdentity {
		if len(group) > 1 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	flags := make([]review.Flag, 0, len(ids))
	for _, id := range ids {
		group := byIdentity[id]
		urls := distinct(group, urlsOf)
		flags = append(flags, review.Flag{
			Kind:     review.FlagCrossEntityViolation,
			Severity: review.SeverityCritical,
			ShowIDs:  []string{id.ShowID},
			Reviews:  []string{id.String()},
			Records:  distinct(group, func(r *review.CanonicalReview) []string { return r.MemberIDs }),
			Explanation: fmt.Sprintf("%d canonical reviews share identity %s within one show",
				len(group), id.String()),
			Details: map[string]string{"rule": "duplicate_identity", "urls": strings.Join(urls, " ")},
		})
	}
	return flags
}

// urlsOf returns every canonical URL a review was merged from. Reviews built
// before member URLs were tracked fall back to the single canonical URL.
func urlsOf(r *review.CanonicalReview) []string {
	if len(r.MemberURLs) > 0 {
		return r.MemberURLs
	}
	if r.CanonicalURL == "" {
		return nil
	}
	return []string{r.CanonicalURL}
}

func distinct(group []*review.CanonicalReview, values func(*review.CanonicalReview) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range group {
		for _, v := range values(r) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
