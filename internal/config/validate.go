package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if c.Workflow.Workers <= 0 {
		return errors.New("workflow.workers must be positive")
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.InputDir == "" {
		return errors.New("paths.input_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.MaxEditDistance < 0 {
		return errors.New("matching.max_edit_distance must not be negative")
	}
	if c.Matching.MinNameLength <= 0 {
		return errors.New("matching.min_name_length must be positive")
	}
	return ensureRatioMap(map[string]float64{
		"matching.merge_confidence_floor":  c.Matching.MergeConfidenceFloor,
		"matching.partial_name_confidence": c.Matching.PartialNameConfidence,
	})
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	if s.DisagreementDelta <= 0 || s.DisagreementDelta > 100 {
		return errors.New("scoring.disagreement_delta must be between 1 and 100")
	}
	if err := ensureScoreMap(map[string]int{
		"scoring.thumb_up":       s.ThumbUp,
		"scoring.thumb_meh":      s.ThumbMeh,
		"scoring.thumb_down":     s.ThumbDown,
		"scoring.rating_floor":   s.RatingFloor,
		"scoring.rating_ceiling": s.RatingCeiling,
		"scoring.rave":           s.Rave,
		"scoring.positive":       s.Positive,
		"scoring.mixed":          s.Mixed,
		"scoring.negative":       s.Negative,
	}); err != nil {
		return err
	}
	if !(s.ThumbDown < s.ThumbMeh && s.ThumbMeh < s.ThumbUp) {
		return errors.New("scoring thumb anchors must satisfy thumb_down < thumb_meh < thumb_up")
	}
	if s.RatingFloor >= s.RatingCeiling {
		return errors.New("scoring.rating_floor must be below scoring.rating_ceiling")
	}
	if !(s.Negative < s.Mixed && s.Mixed < s.Positive && s.Positive < s.Rave) {
		return errors.New("scoring bucket bounds must satisfy negative < mixed < positive < rave")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.AffinityMinReviews <= 0 {
		return errors.New("audit.affinity_min_reviews must be positive")
	}
	return ensureRatioMap(map[string]float64{
		"audit.max_ambiguous_cluster_ratio": c.Audit.MaxAmbiguousClusterRatio,
		"audit.max_high_disagreement_ratio": c.Audit.MaxHighDisagreementRatio,
		"audit.max_low_confidence_ratio":    c.Audit.MaxLowConfidenceRatio,
		"audit.affinity_min_share":          c.Audit.AffinityMinShare,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensureRatioMap(values map[string]float64) error {
	for _, key := range sortedKeys(values) {
		if v := values[key]; v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}

func ensureScoreMap(values map[string]int) error {
	for _, key := range sortedKeys(values) {
		if v := values[key]; v < 0 || v > 100 {
			return fmt.Errorf("%s must be between 0 and 100", key)
		}
	}
	return nil
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
