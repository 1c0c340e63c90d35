package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"marquee/internal/refdata"
	"marquee/internal/review"
)

// Normalizer maps raw outlet and critic strings to identity keys.
type Normalizer struct {
	outletAlias map[string]string
	outlets     map[string]refdata.OutletEntry
	criticAlias map[string]string
	criticNames map[string]string
}

// NewNormalizer compiles alias reference data into lookup tables.
func NewNormalizer(aliases refdata.Aliases) *Normalizer {
	n := &Normalizer{
		outletAlias: make(map[string]string),
		outlets:     make(map[string]refdata.OutletEntry, len(aliases.Outlets)),
		criticAlias: make(map[string]string),
		criticNames: make(map[string]string, len(aliases.Critics)),
	}
	for _, entry := range aliases.Outlets {
		id := baseOutlet(entry.ID)
		if id == "" {
			continue
		}
		entry.ID = id
		n.outlets[id] = entry
		n.outletAlias[id] = id
		if key := baseOutlet(entry.Name); key != "" {
			n.outletAlias[key] = id
		}
		for _, alias := range entry.Aliases {
			if key := baseOutlet(alias); key != "" {
				n.outletAlias[key] = id
			}
		}
	}
	for _, entry := range aliases.Critics {
		canonical := baseCritic(entry.Name)
		if canonical == "" {
			continue
		}
		n.criticNames[canonical] = entry.Name
		for _, alias := range entry.Aliases {
			if key := baseCritic(alias); key != "" && key != canonical {
				n.criticAlias[key] = canonical
			}
		}
	}
	return n
}

// Outlet returns the canonical outlet key for raw.
func (n *Normalizer) Outlet(raw string) string {
	key := baseOutlet(raw)
	if key == "" {
		return fallback(raw)
	}
	if id, ok := n.outletAlias[key]; ok {
		return id
	}
	return key
}

// Critic returns the canonical critic key for raw.
func (n *Normalizer) Critic(raw string) string {
	key := baseCritic(raw)
	if key == "" {
		return fallback(raw)
	}
	if canonical, ok := n.criticAlias[key]; ok {
		return canonical
	}
	return key
}

// Identity derives the NormalizedIdentity of a record.
func (n *Normalizer) Identity(rec review.SourceRecord) review.NormalizedIdentity {
	return review.NormalizedIdentity{
		ShowID: strings.TrimSpace(rec.ShowID),
		Outlet: n.Outlet(rec.Outlet),
		Critic: n.Critic(rec.Critic),
	}
}

// RegisteredOutlet returns the registry entry for a normalized outlet key.
func (n *Normalizer) RegisteredOutlet(normOutlet string) (refdata.OutletEntry, bool) {
	entry, ok := n.outlets[normOutlet]
	return entry, ok
}

// RegisteredCritic returns the display name recorded for an aliased critic.
func (n *Normalizer) RegisteredCritic(normCritic string) (string, bool) {
	name, ok := n.criticNames[normCritic]
	return name, ok
}

// DisplayName turns a raw value into a human readable name. Values that
// already carry capitals are kept; slugs are de-hyphenated and title cased.
func (n *Normalizer) DisplayName(raw string) string {
	cleaned := collapseSpace(raw)
	if cleaned == "" {
		return raw
	}
	if hasUpper(cleaned) {
		return cleaned
	}
	words := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return cleaned
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// IsRegistryForm reports whether raw looks like a curated registry value
// rather than a heuristically derived slug.
func IsRegistryForm(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !hasUpper(trimmed) {
		return false
	}
	return !strings.Contains(trimmed, "-") || strings.Contains(trimmed, " ")
}

func hasUpper(value string) bool {
	for _, r := range value {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

var domainSuffixes = []string{".com", ".org", ".net", ".co.uk"}

func baseOutlet(raw string) string {
	value := foldText(collapseSpace(raw))
	for _, suffix := range domainSuffixes {
		if strings.HasSuffix(value, suffix) && len(value) > len(suffix) {
			value = strings.TrimSuffix(value, suffix)
			break
		}
	}
	value = strings.TrimPrefix(value, "www.")
	if rest, ok := strings.CutPrefix(value, "the "); ok && strings.TrimSpace(rest) != "" {
		value = rest
	}
	return compact(value, isAlnum)
}

func baseCritic(raw string) string {
	return compact(foldText(raw), unicode.IsLetter)
}
