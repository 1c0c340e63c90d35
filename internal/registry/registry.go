// Package registry summarizes each critic's observed outlet affinity across
// the canonical corpus. Upstream ingestion uses it to sanity-check future
// attributions; here it only ever raises advisory flags.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"marquee/internal/fileutil"
	"marquee/internal/review"
)

// OutletCount is how many canonical reviews a critic has at one outlet.
type OutletCount struct {
	OutletID   string `json:"outlet_id"`
	OutletName string `json:"outlet_name"`
	Reviews    int    `json:"reviews"`
}

// Entry is one critic's registry line.
type Entry struct {
	Critic        string        `json:"critic"`
	Name          string        `json:"name"`
	Reviews       int           `json:"reviews"`
	Shows         []string      `json:"shows"`
	Outlets       []OutletCount `json:"outlets"`
	PrimaryOutlet string        `json:"primary_outlet"`
	PrimaryShare  float64       `json:"primary_share"`
}

// Registry is the persisted critic registry.
type Registry struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Critics     []Entry   `json:"critics"`
}

// Options controls the outlet affinity check.
type Options struct {
	MinReviews int
	MinShare   float64
}

// Build aggregates canonical reviews by normalized critic. The returned flags
// are OutletMismatch advisories for established critics seen at an outlet
// other than their primary one.
func Build(reviews []*review.CanonicalReview, opts Options) (*Registry, []review.Flag) {
	type accum struct {
		names   map[string]int
		shows   map[string]struct{}
		outlets map[string]*OutletCount
		byOut   map[string][]*review.CanonicalReview
		total   int
	}
	byCritic := make(map[string]*accum)
	for _, r := range reviews {
		if r == nil {
			continue
		}
		a, ok := byCritic[r.Identity.Critic]
		if !ok {
			a = &accum{
				names:   make(map[string]int),
				shows:   make(map[string]struct{}),
				outlets: make(map[string]*OutletCount),
				byOut:   make(map[string][]*review.CanonicalReview),
			}
			byCritic[r.Identity.Critic] = a
		}
		a.total++
		a.names[r.CriticName]++
		a.shows[r.ShowID()] = struct{}{}
		oc, ok := a.outlets[r.Identity.Outlet]
		if !ok {
			oc = &OutletCount{OutletID: r.OutletID, OutletName: r.OutletName}
			a.outlets[r.Identity.Outlet] = oc
		}
		oc.Reviews++
		a.byOut[r.Identity.Outlet] = append(a.byOut[r.Identity.Outlet], r)
	}

	critics := make([]string, 0, len(byCritic))
	for c := range byCritic {
		critics = append(critics, c)
	}
	sort.Strings(critics)

	reg := &Registry{Critics: make([]Entry, 0, len(critics))}
	var flags []review.Flag
	for _, critic := range critics {
		a := byCritic[critic]
		entry := Entry{
			Critic:  critic,
			Name:    mostCommon(a.names),
			Reviews: a.total,
			Shows:   sortedKeys(a.shows),
		}
		outletKeys := make([]string, 0, len(a.outlets))
		for k := range a.outlets {
			outletKeys = append(outletKeys, k)
		}
		sort.Slice(outletKeys, func(i, j int) bool {
			ci, cj := a.outlets[outletKeys[i]].Reviews, a.outlets[outletKeys[j]].Reviews
			if ci != cj {
				return ci > cj
			}
			return outletKeys[i] < outletKeys[j]
		})
		for _, k := range outletKeys {
			entry.Outlets = append(entry.Outlets, *a.outlets[k])
		}
		primary := outletKeys[0]
		entry.PrimaryOutlet = primary
		entry.PrimaryShare = float64(a.outlets[primary].Reviews) / float64(a.total)
		reg.Critics = append(reg.Critics, entry)

		if len(outletKeys) < 2 || a.total < opts.MinReviews || entry.PrimaryShare < opts.MinShare {
			continue
		}
		for _, k := range outletKeys[1:] {
			flags = append(flags, mismatchFlag(entry, k, a.byOut[k]))
		}
	}
	review.SortFlags(flags)
	return reg, flags
}

// Lookup finds a critic by normalized key.
func (r *Registry) Lookup(critic string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	i := sort.Search(len(r.Critics), func(i int) bool { return r.Critics[i].Critic >= critic })
	if i < len(r.Critics) && r.Critics[i].Critic == critic {
		return r.Critics[i], true
	}
	return Entry{}, false
}

// Save writes the registry atomically as indented JSON.
func Save(path string, reg *Registry) error {
	return fileutil.WriteJSONAtomic(path, reg)
}

// Load reads a registry written by Save.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read critic registry: %w", err)
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode critic registry %s: %w", path, err)
	}
	return &reg, nil
}

func mismatchFlag(entry Entry, outlet string, reviews []*review.CanonicalReview) review.Flag {
	shows := make(map[string]struct{})
	keys := make([]string, 0, len(reviews))
	var records []string
	for _, r := range reviews {
		shows[r.ShowID()] = struct{}{}
		keys = append(keys, r.Key())
		records = append(records, r.MemberIDs...)
	}
	sort.Strings(keys)
	sort.Strings(records)
	return review.Flag{
		Kind:     review.FlagOutletMismatch,
		Severity: review.SeverityInfo,
		ShowIDs:  sortedKeys(shows),
		Reviews:  keys,
		Records:  records,
		Explanation: fmt.Sprintf("%s writes %.0f%% of %d reviews for %s but appears under %s",
			entry.Name, entry.PrimaryShare*100, entry.Reviews, entry.PrimaryOutlet, outlet),
		Details: map[string]string{
			"critic":         entry.Critic,
			"primary_outlet": entry.PrimaryOutlet,
			"other_outlet":   outlet,
			"other_reviews":  strconv.Itoa(len(reviews)),
		},
	}
}

func mostCommon(counts map[string]int) string {
	best, bestN := "", -1
	for name, n := range counts {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
