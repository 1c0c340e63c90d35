package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"marquee/internal/audit"
	"marquee/internal/logging"
	"marquee/internal/registry"
	"marquee/internal/services"
	"marquee/internal/store"
)

// ErrRunLocked is returned when another run holds the data directory lock.
var ErrRunLocked = errors.New("another marquee run holds the data directory lock")

// Persist writes the audit report, the critic registry, and the canonical
// store, in that order, so a store on disk always has its report and registry
// beside it. It holds an exclusive lock on the data directory while writing
// and fails fast with ErrRunLocked if the lock is taken.
func (p *Pipeline) Persist(ctx context.Context, res *Result) error {
	if res == nil || res.Report == nil {
		return errors.New("persist requires a completed run result")
	}
	if err := p.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "persist", "ensure directories", err)
	}

	lockPath := p.cfg.LockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunLocked, lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	snap := store.Snapshot{
		Run: store.RunInfo{
			ID:               res.RunID,
			StartedAt:        res.StartedAt,
			FinishedAt:       res.FinishedAt,
			Verdict:          string(res.Report.Verdict),
			RulesVersion:     res.Report.RulesVersion,
			InputDigest:      res.InputDigest,
			Records:          res.Records,
			MalformedRecords: res.Malformed,
			Reviews:          len(res.Reviews),
			Flags:            len(res.Flags),
		},
		Reviews: res.Reviews,
		Flags:   res.Flags,
	}
	logger := logging.WithContext(ctx, p.logger)
	if err := audit.Save(p.cfg.AuditReportPath(), res.Report); err != nil {
		logging.ErrorWithContext(logger, "audit report write failed", "persist_report_failed",
			logging.String("path", p.cfg.AuditReportPath()),
			logging.Error(err))
		return services.Wrap(services.ErrStorage, "pipeline", "persist", "write audit report", err)
	}
	if err := registry.Save(p.cfg.RegistryPath(), res.Registry); err != nil {
		logging.ErrorWithContext(logger, "critic registry write failed", "persist_registry_failed",
			logging.String("path", p.cfg.RegistryPath()),
			logging.Error(err))
		return services.Wrap(services.ErrStorage, "pipeline", "persist", "write critic registry", err)
	}
	if err := store.Write(ctx, p.cfg.StorePath(), snap); err != nil {
		logging.ErrorWithContext(logger, "canonical store write failed", "persist_store_failed",
			logging.String("path", p.cfg.StorePath()),
			logging.String(logging.FieldErrorHint, "the previous store is left in place; rerun after fixing the data directory"),
			logging.Error(err))
		return fmt.Errorf("write canonical store: %w", err)
	}

	logger.Info("run persisted",
		logging.String(logging.FieldRunID, res.RunID),
		logging.String("store", p.cfg.StorePath()),
		logging.String("audit_report", p.cfg.AuditReportPath()),
		logging.String("critic_registry", p.cfg.RegistryPath()))
	return nil
}
