package signals

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	fractionPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:/|out of|of)\s*(\d+(?:\.\d+)?)(?:\s*stars?)?$`)
	starsPattern    = regexp.MustCompile(`^(\d+(?:\.\d+)?)(\s+1/2)?\s*stars?$`)
	gradePattern    = regexp.MustCompile(`^([a-d][+-]?|f)$`)
)

type ratingMatch struct {
	value int
	rule  string
}

// parseRating maps printed rating text onto 0-100. Text matching no rule, or
// more than one, yields ok=false.
func parseRating(text string, floor, ceiling int) (ratingMatch, bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ratingMatch{}, false
	}
	if num, den, ok := starGlyphs(raw); ok {
		return scaled(num, den, floor, ceiling, "star_glyphs")
	}

	s := strings.ToLower(raw)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, ".")
	s = strings.ReplaceAll(s, " ½", "½")
	s = strings.ReplaceAll(s, "½", ".5")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	if m := fractionPattern.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		return scaled(num, den, floor, ceiling, "fraction")
	}
	if m := starsPattern.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		if m[2] != "" {
			num += 0.5
		}
		return scaled(num, 5, floor, ceiling, "stars")
	}
	if m := gradePattern.FindStringSubmatch(s); m != nil {
		return ratingMatch{value: letterGrades[m[1]], rule: "letter_grade"}, true
	}
	if v, ok := badgeValues[lettersOnly(s)]; ok {
		return ratingMatch{value: v, rule: "badge"}, true
	}
	return ratingMatch{}, false
}

func scaled(num, den float64, floor, ceiling int, rule string) (ratingMatch, bool) {
	if den <= 0 || den > 100 || num < 0 || num > den {
		return ratingMatch{}, false
	}
	value := float64(floor) + float64(ceiling-floor)*num/den
	return ratingMatch{value: int(math.Round(value)), rule: rule}, true
}

// starGlyphs reads ratings printed as ★★★½☆. Without hollow stars the scale
// is assumed to be five.
func starGlyphs(s string) (num, den float64, ok bool) {
	var filled, half, hollow int
	for _, r := range s {
		switch r {
		case '★':
			filled++
		case '½':
			half++
		case '☆':
			hollow++
		case ' ':
		default:
			return 0, 0, false
		}
	}
	if filled+half == 0 || half > 1 {
		return 0, 0, false
	}
	num = float64(filled) + 0.5*float64(half)
	if hollow == 0 {
		return num, 5, true
	}
	return num, float64(filled + half + hollow), true
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
