package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marquee/internal/audit"
	"marquee/internal/config"
	"marquee/internal/consensus"
	"marquee/internal/guard"
	"marquee/internal/identity"
	"marquee/internal/ingest"
	"marquee/internal/logging"
	"marquee/internal/refdata"
	"marquee/internal/registry"
	"marquee/internal/resolver"
	"marquee/internal/review"
	"marquee/internal/services"
	"marquee/internal/signals"
	"marquee/internal/similarity"
)

// Pipeline holds the read-only collaborators of a run.
type Pipeline struct {
	cfg        *config.Config
	norm       *identity.Normalizer
	overrides  *refdata.Overrides
	resolver   *resolver.Resolver
	collector  *signals.Collector
	scorer     *consensus.Scorer
	thresholds audit.Thresholds
	affinity   registry.Options
	workers    int
	logger     *slog.Logger
	now        func() time.Time
}

// New loads reference data named by cfg and builds a pipeline.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	aliases, err := refdata.LoadAliases(cfg.Reference.OutletAliasesPath, cfg.Reference.CriticAliasesPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "load aliases", "", err)
	}
	norm := identity.NewNormalizer(aliases)
	overrides, err := refdata.LoadOverrides(cfg.Reference.OverridesPath, norm)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "load overrides", "", err)
	}

	matcher := similarity.NewMatcher(similarity.Config{
		MaxEditDistance:   cfg.Matching.MaxEditDistance,
		MinNameLength:     cfg.Matching.MinNameLength,
		PartialConfidence: cfg.Matching.PartialNameConfidence,
	})
	workers := cfg.Workflow.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{
		cfg:       cfg,
		norm:      norm,
		overrides: overrides,
		resolver: resolver.New(norm, matcher, resolver.Options{
			MergeConfidenceFloor: cfg.Matching.MergeConfidenceFloor,
		}, logger),
		collector: signals.NewCollector(signals.Config{
			ThumbUp:       cfg.Scoring.ThumbUp,
			ThumbMeh:      cfg.Scoring.ThumbMeh,
			ThumbDown:     cfg.Scoring.ThumbDown,
			RatingFloor:   cfg.Scoring.RatingFloor,
			RatingCeiling: cfg.Scoring.RatingCeiling,
		}, overrides, logger),
		scorer: consensus.NewScorer(consensus.Config{
			DisagreementDelta: cfg.Scoring.DisagreementDelta,
			Rave:              cfg.Scoring.Rave,
			Positive:          cfg.Scoring.Positive,
			Mixed:             cfg.Scoring.Mixed,
			Negative:          cfg.Scoring.Negative,
		}),
		thresholds: audit.Thresholds{
			MaxAmbiguousClusterRatio: cfg.Audit.MaxAmbiguousClusterRatio,
			MaxHighDisagreementRatio: cfg.Audit.MaxHighDisagreementRatio,
			MaxLowConfidenceRatio:    cfg.Audit.MaxLowConfidenceRatio,
		},
		affinity: registry.Options{
			MinReviews: cfg.Audit.AffinityMinReviews,
			MinShare:   cfg.Audit.AffinityMinShare,
		},
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		now:     time.Now,
	}, nil
}

// Normalizer exposes the normalizer built from the loaded alias tables.
func (p *Pipeline) Normalizer() *identity.Normalizer {
	return p.norm
}

// Result is everything one run produced.
type Result struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	InputDigest string
	Records     int
	Malformed   int
	Reviews     []*review.CanonicalReview
	Clusters    []review.Cluster
	Flags       []review.Flag
	Registry    *registry.Registry
	Report      *audit.Report
}

// Run reconciles a loaded batch. Malformed records already collected on the
// batch are carried into the report; records that fail validation here are
// added to them. Run only fails when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, batch *ingest.Batch) (*Result, error) {
	if batch == nil {
		batch = &ingest.Batch{}
	}
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
	}
	if len(batch.Files) > 0 {
		res.InputDigest = batch.Digest()
	}
	ctx = services.WithRunID(ctx, res.RunID)
	logger := logging.WithContext(ctx, p.logger)

	flags := batch.Flags()
	res.Malformed = len(batch.Malformed)
	res.Records = len(batch.Records) + res.Malformed

	byShow := make(map[string][]review.SourceRecord)
	for _, rec := range batch.Records {
		if err := rec.Validate(); err != nil {
			res.Malformed++
			flags = append(flags, invalidRecordFlag(rec, err))
			logging.WarnWithContext(logger, "skipping invalid record", "malformed_record",
				logging.String(logging.FieldRecordID, rec.ID),
				logging.Error(err))
			continue
		}
		show := strings.TrimSpace(rec.ShowID)
		byShow[show] = append(byShow[show], rec)
	}
	shows := make([]string, 0, len(byShow))
	for show := range byShow {
		shows = append(shows, show)
	}
	sort.Strings(shows)

	logger.Info("resolving shows",
		logging.Int("shows", len(shows)),
		logging.Int("records", len(batch.Records)),
		logging.Int("workers", p.workers))

	results, err := p.resolveShows(ctx, shows, byShow)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		res.Reviews = append(res.Reviews, r.Reviews...)
		res.Clusters = append(res.Clusters, r.Clusters...)
		flags = append(flags, r.Flags...)
	}

	guardFlags := guard.Check(res.Reviews)
	for _, f := range guardFlags {
		logger.Warn("cross-entity violation",
			logging.Args(logging.FlagAttrs(string(f.Kind), string(f.Severity), f.Explanation)...)...)
	}
	flags = append(flags, guardFlags...)

	for _, r := range res.Reviews {
		r.Signals = p.collector.Collect(r)
		var scoreFlags []review.Flag
		r.Consensus, scoreFlags = p.scorer.Score(r, r.Signals)
		flags = append(flags, scoreFlags...)
	}

	reg, regFlags := registry.Build(res.Reviews, p.affinity)
	reg.RunID = res.RunID
	flags = append(flags, regFlags...)

	sortReviews(res.Reviews)
	review.SortFlags(flags)
	res.Flags = flags
	res.FinishedAt = p.now().UTC()
	reg.GeneratedAt = res.FinishedAt
	res.Registry = reg

	res.Report = audit.Evaluate(audit.Input{
		RunID:            res.RunID,
		GeneratedAt:      res.FinishedAt,
		RulesVersion:     signals.RulesVersion,
		Records:          res.Records,
		MalformedRecords: res.Malformed,
		Reviews:          res.Reviews,
		Flags:            flags,
	}, p.thresholds)

	logger.Info("run evaluated",
		logging.Args(append(logging.DecisionAttrs("audit_gate", string(res.Report.Verdict), strings.Join(res.Report.FailedChecks(), ",")),
			logging.Group("records",
				logging.Int("total", res.Records),
				logging.Int("malformed", res.Malformed)),
			logging.Int("canonical_reviews", len(res.Reviews)),
			logging.Int("flags", len(flags)),
			logging.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)))...)...)
	return res, nil
}

// resolveShows fans per-show resolution out over the worker pool. Each worker
// writes only its own slot, so the fan-in needs no locking.
func (p *Pipeline) resolveShows(ctx context.Context, shows []string, byShow map[string][]review.SourceRecord) ([]resolver.Result, error) {
	results := make([]resolver.Result, len(shows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, show := range shows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			showCtx := services.WithShowID(gctx, show)
			results[i] = p.resolver.ResolveShow(showCtx, show, byShow[show])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve shows: %w", err)
	}
	return results, nil
}

func sortReviews(reviews []*review.CanonicalReview) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if a.Identity != b.Identity {
			return a.Identity.Less(b.Identity)
		}
		return a.CanonicalURL < b.CanonicalURL
	})
}

func invalidRecordFlag(rec review.SourceRecord, err error) review.Flag {
	f := review.Flag{
		Kind:        review.FlagMalformedRecord,
		Severity:    review.SeverityWarning,
		Explanation: err.Error(),
	}
	if show := strings.TrimSpace(rec.ShowID); show != "" {
		f.ShowIDs = []string{show}
	}
	if rec.ID != "" {
		f.Records = []string{rec.ID}
	}
	return f
}
