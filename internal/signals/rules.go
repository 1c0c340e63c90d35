package signals

// RulesVersion identifies the rule tables below. It is stamped on every run.
const RulesVersion = "2026.3"

// letterGrades maps a letter grade to its 0-100 value.
var letterGrades = map[string]int{
	"a+": 95, "a": 92, "a-": 88,
	"b+": 83, "b": 78, "b-": 73,
	"c+": 68, "c": 63, "c-": 58,
	"d+": 50, "d": 45, "d-": 40,
	"f": 25,
}

// badgeValues maps printed badge wording, reduced to letters only, to a value.
var badgeValues = map[string]int{
	"criticspick":       90,
	"criticschoice":     90,
	"mustsee":           92,
	"highlyrecommended": 88,
	"recommended":       82,
	"worthseeing":       75,
	"notrecommended":    30,
	"skipit":            25,
}

type thumbVerdict int

const (
	thumbUnknown thumbVerdict = iota
	thumbUp
	thumbMeh
	thumbDown
)

// thumbVerdicts maps aggregator verdict wording, reduced to letters only.
var thumbVerdicts = map[string]thumbVerdict{
	"up":         thumbUp,
	"thumbsup":   thumbUp,
	"thumbup":    thumbUp,
	"positive":   thumbUp,
	"fresh":      thumbUp,
	"yes":        thumbUp,
	"meh":        thumbMeh,
	"mixed":      thumbMeh,
	"sideways":   thumbMeh,
	"neutral":    thumbMeh,
	"down":       thumbDown,
	"thumbsdown": thumbDown,
	"thumbdown":  thumbDown,
	"negative":   thumbDown,
	"rotten":     thumbDown,
	"no":         thumbDown,
}

// lexicon weights sentiment vocabulary. Negative weights mark pans.
var lexicon = map[string]int{
	"brilliant":     3,
	"masterpiece":   3,
	"superb":        3,
	"triumph":       3,
	"triumphant":    3,
	"dazzling":      2,
	"thrilling":     2,
	"exhilarating":  2,
	"glorious":      2,
	"wonderful":     2,
	"delightful":    2,
	"stunning":      2,
	"terrific":      2,
	"excellent":     2,
	"joyous":        2,
	"gorgeous":      2,
	"funny":         1,
	"charming":      1,
	"moving":        1,
	"entertaining":  1,
	"enjoyable":     1,
	"good":          1,
	"awful":         -3,
	"terrible":      -3,
	"dreadful":      -3,
	"dreary":        -2,
	"dull":          -2,
	"tedious":       -2,
	"disappointing": -2,
	"boring":        -2,
	"tiresome":      -2,
	"lifeless":      -2,
	"misfire":       -2,
	"forgettable":   -2,
	"failure":       -2,
	"mess":          -2,
	"flat":          -1,
	"drags":         -1,
	"murky":         -1,
	"clumsy":        -1,
	"bland":         -1,
	"overlong":      -1,
	"uneven":        -1,
}

// negators flip the polarity of a lexicon hit up to negationWindow words later.
var negators = map[string]struct{}{
	"not":    {},
	"never":  {},
	"no":     {},
	"nor":    {},
	"hardly": {},
	"barely": {},
	"isnt":   {},
	"wasnt":  {},
	"doesnt": {},
	"arent":  {},
	"cant":   {},
	"lacks":  {},
}

const negationWindow = 3

// keyword signals stay inside this band; lexicon counting is never strong
// enough evidence for a rave or a pan.
const (
	keywordCenter = 50
	keywordSpread = 40
)
