package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marquee/internal/review"
	"marquee/internal/services"
)

const reviewColumns = "id, show_id, outlet, critic, outlet_id, outlet_name, critic_name, url, canonical_url, publish_date, full_text, excerpts_json, contributions_json, member_ids_json, member_urls_json, match_reasons_json, consensus_json"

// ShowSummary counts a show's canonical reviews.
type ShowSummary struct {
	ShowID  string `json:"show_id"`
	Reviews int    `json:"reviews"`
	Scored  int    `json:"scored"`
}

func insertRun(ctx context.Context, tx *sql.Tx, run RunInfo) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, verdict, rules_version, input_digest,
            records, malformed_records, reviews, flags
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Verdict,
		run.RulesVersion,
		nullableString(run.InputDigest),
		run.Records,
		run.MalformedRecords,
		run.Reviews,
		run.Flags,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func insertReview(ctx context.Context, tx *sql.Tx, r *review.CanonicalReview) error {
	if r == nil {
		return nil
	}
	blobs, err := marshalAll(r.Excerpts, r.Contributions, r.MemberIDs, r.MemberURLs, r.MatchReasons)
	if err != nil {
		return fmt.Errorf("encode review %s: %w", r.Key(), err)
	}
	var score, bucket, confidence, consensus any
	if r.Consensus != nil {
		data, err := json.Marshal(r.Consensus)
		if err != nil {
			return fmt.Errorf("encode consensus %s: %w", r.Key(), err)
		}
		score, bucket, confidence, consensus = r.Consensus.Score, string(r.Consensus.Bucket), string(r.Consensus.Confidence), string(data)
	}
	var publish any
	if r.PublishDate != nil {
		publish = r.PublishDate.UTC().Format(time.RFC3339Nano)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (
            review_key, show_id, outlet, critic, outlet_id, outlet_name, critic_name,
            url, canonical_url, publish_date, full_text,
            excerpts_json, contributions_json, member_ids_json, member_urls_json, match_reasons_json,
            consensus_score, consensus_bucket, consensus_confidence, consensus_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Key(), r.Identity.ShowID, r.Identity.Outlet, r.Identity.Critic,
		r.OutletID, r.OutletName, r.CriticName,
		nullableString(r.URL), nullableString(r.CanonicalURL), publish, nullableString(r.FullText),
		blobs[0], blobs[1], blobs[2], blobs[3], blobs[4],
		score, bucket, confidence, consensus,
	)
	if err != nil {
		return fmt.Errorf("insert review %s: %w", r.Key(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	for i, sig := range r.Signals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO score_signals (review_id, position, kind, value, confidence, source, detail)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, string(sig.Kind), sig.Value, string(sig.Confidence), sig.Source, nullableString(sig.Detail),
		); err != nil {
			return fmt.Errorf("insert signal %s[%d]: %w", r.Key(), i, err)
		}
	}
	return nil
}

func insertFlag(ctx context.Context, tx *sql.Tx, f review.Flag) error {
	details := f.Details
	if details == nil {
		details = map[string]string{}
	}
	blobs, err := marshalAll(nonNil(f.ShowIDs), nonNil(f.Reviews), nonNil(f.Records), details)
	if err != nil {
		return fmt.Errorf("encode flag: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO flags (kind, severity, show_ids_json, reviews_json, records_json, explanation, details_json)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(f.Kind), string(f.Severity), blobs[0], blobs[1], blobs[2], f.Explanation, blobs[3],
	); err != nil {
		return fmt.Errorf("insert flag: %w", err)
	}
	return nil
}

// LatestRun returns the run recorded in the store.
func (s *Store) LatestRun(ctx context.Context) (RunInfo, error) {
	ctx = ensureContext(ctx)
	var (
		run               RunInfo
		started, finished string
		digest            sql.NullString
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT id, started_at, finished_at, verdict, rules_version, input_digest,
                    records, malformed_records, reviews, flags
             FROM runs ORDER BY finished_at DESC LIMIT 1`,
		).Scan(&run.ID, &started, &finished, &run.Verdict, &run.RulesVersion, &digest,
			&run.Records, &run.MalformedRecords, &run.Reviews, &run.Flags)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, services.Wrap(services.ErrNotFound, "store", "latest run", "store has no run", nil)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("query latest run: %w", err)
	}
	run.InputDigest = digest.String
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

// ListReviews returns the canonical reviews of one show, or of every show
// when showID is empty, ordered by show, outlet, and critic.
func (s *Store) ListReviews(ctx context.Context, showID string) ([]*review.CanonicalReview, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + reviewColumns + " FROM reviews"
	var args []any
	if showID != "" {
		query += " WHERE show_id = ?"
		args = append(args, showID)
	}
	query += " ORDER BY show_id, outlet, critic, id"

	var out []*review.CanonicalReview
	ids := make(map[int64]*review.CanonicalReview)
	err := retryOnBusy(ctx, func() error {
		out = out[:0]
		clear(ids)
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			id, r, err := scanReview(rows)
			if err != nil {
				return err
			}
			ids[id] = r
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if err := s.attachSignals(ctx, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachSignals(ctx context.Context, byID map[int64]*review.CanonicalReview) error {
	if len(byID) == 0 {
		return nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT review_id, kind, value, confidence, source, detail FROM score_signals ORDER BY review_id, position")
	if err != nil {
		return fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id     int64
			sig    review.ScoreSignal
			kind   string
			conf   string
			detail sql.NullString
		)
		if err := rows.Scan(&id, &kind, &sig.Value, &conf, &sig.Source, &detail); err != nil {
			return fmt.Errorf("scan signal: %w", err)
		}
		r, ok := byID[id]
		if !ok {
			continue
		}
		sig.Kind = review.SignalKind(kind)
		sig.Confidence = review.Confidence(conf)
		sig.Detail = detail.String
		r.Signals = append(r.Signals, sig)
	}
	return rows.Err()
}

// ListFlags returns stored flags, optionally restricted to one kind.
func (s *Store) ListFlags(ctx context.Context, kind review.FlagKind) ([]review.Flag, error) {
	ctx = ensureContext(ctx)
	query := "SELECT kind, severity, show_ids_json, reviews_json, records_json, explanation, details_json FROM flags"
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query flags: %w", err)
	}
	defer rows.Close()
	var out []review.Flag
	for rows.Next() {
		var (
			f                              review.Flag
			k, sev                         string
			shows, reviews, records, extra string
		)
		if err := rows.Scan(&k, &sev, &shows, &reviews, &records, &f.Explanation, &extra); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		f.Kind = review.FlagKind(k)
		f.Severity = review.Severity(sev)
		if err := unmarshalAll([]string{shows, reviews, records, extra}, &f.ShowIDs, &f.Reviews, &f.Records, &f.Details); err != nil {
			return nil, fmt.Errorf("decode flag: %w", err)
		}
		if len(f.ShowIDs) == 0 {
			f.ShowIDs = nil
		}
		if len(f.Reviews) == 0 {
			f.Reviews = nil
		}
		if len(f.Records) == 0 {
			f.Records = nil
		}
		if len(f.Details) == 0 {
			f.Details = nil
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Shows summarizes every show in the store.
func (s *Store) Shows(ctx context.Context) ([]ShowSummary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT show_id, COUNT(1), COUNT(consensus_score) FROM reviews GROUP BY show_id ORDER BY show_id`)
	if err != nil {
		return nil, fmt.Errorf("query shows: %w", err)
	}
	defer rows.Close()
	var out []ShowSummary
	for rows.Next() {
		var sum ShowSummary
		if err := rows.Scan(&sum.ShowID, &sum.Reviews, &sum.Scored); err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func scanReview(scanner interface{ Scan(dest ...any) error }) (int64, *review.CanonicalReview, error) {
	var (
		id                                   int64
		r                                    review.CanonicalReview
		url, canonicalURL, publish, fullText sql.NullString
		excerpts, contributions              string
		members, memberURLs, reasons         string
		consensus                            sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&r.Identity.ShowID,
		&r.Identity.Outlet,
		&r.Identity.Critic,
		&r.OutletID,
		&r.OutletName,
		&r.CriticName,
		&url,
		&canonicalURL,
		&publish,
		&fullText,
		&excerpts,
		&contributions,
		&members,
		&memberURLs,
		&reasons,
		&consensus,
	); err != nil {
		return 0, nil, err
	}
	r.URL = url.String
	r.CanonicalURL = canonicalURL.String
	r.FullText = fullText.String
	if publish.Valid && publish.String != "" {
		t := parseTime(publish.String)
		r.PublishDate = &t
	}
	if err := unmarshalAll([]string{excerpts, contributions, members, memberURLs, reasons},
		&r.Excerpts, &r.Contributions, &r.MemberIDs, &r.MemberURLs, &r.MatchReasons); err != nil {
		return 0, nil, fmt.Errorf("decode review %d: %w", id, err)
	}
	if consensus.Valid && consensus.String != "" {
		var c review.ConsensusScore
		if err := json.Unmarshal([]byte(consensus.String), &c); err != nil {
			return 0, nil, fmt.Errorf("decode consensus %d: %w", id, err)
		}
		r.Consensus = &c
	}
	return id, &r, nil
}

func marshalAll(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(data)
	}
	return out, nil
}

func unmarshalAll(blobs []string, dst ...any) error {
	for i, blob := range blobs {
		if err := json.Unmarshal([]byte(blob), dst[i]); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
