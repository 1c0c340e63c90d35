package config

const (
	defaultDataDir   = "~/.local/share/marquee"
	defaultInputDir  = "~/.local/share/marquee/input"
	defaultLogDir    = "~/.local/share/marquee/logs"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
	defaultWorkers   = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			InputDir: defaultInputDir,
			LogDir:   defaultLogDir,
		},
		Matching: Matching{
			MaxEditDistance:       2,
			MinNameLength:         5,
			MergeConfidenceFloor:  0.85,
			PartialNameConfidence: 0.5,
		},
		Scoring: Scoring{
			DisagreementDelta: 30,
			ThumbUp:           80,
			ThumbMeh:          60,
			ThumbDown:         35,
			RatingFloor:       20,
			RatingCeiling:     92,
			Rave:              85,
			Positive:          70,
			Mixed:             50,
			Negative:          35,
		},
		Audit: Audit{
			MaxAmbiguousClusterRatio: 0.05,
			MaxHighDisagreementRatio: 0.25,
			MaxLowConfidenceRatio:    0.5,
			AffinityMinReviews:       3,
			AffinityMinShare:         0.8,
		},
		Workflow: Workflow{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
