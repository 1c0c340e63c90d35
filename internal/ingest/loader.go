package ingest

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marquee/internal/logging"
	"marquee/internal/review"
)

const maxLineBytes = 8 << 20

// FileSummary records what one input file contributed.
type FileSummary struct {
	Path      string `json:"path"`
	SHA256    string `json:"sha256"`
	Records   int    `json:"records"`
	Malformed int    `json:"malformed"`
}

// Batch is the result of loading an input set.
type Batch struct {
	Records   []review.SourceRecord
	Malformed []*MalformedRecordError
	Files     []FileSummary
}

// Flags converts every malformed record into an audit flag.
func (b *Batch) Flags() []review.Flag {
	if b == nil {
		return nil
	}
	flags := make([]review.Flag, 0, len(b.Malformed))
	for _, m := range b.Malformed {
		flags = append(flags, m.Flag())
	}
	return flags
}

// Digest combines the file digests into one input fingerprint.
func (b *Batch) Digest() string {
	h := sha256.New()
	for _, f := range b.Files {
		fmt.Fprintf(h, "%s %s\n", filepath.Base(f.Path), f.SHA256)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Loader reads source record files.
type Loader struct {
	logger *slog.Logger
}

// NewLoader builds a loader that reports skipped records to logger.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logging.NewComponentLogger(logger, "ingest")}
}

// LoadDir loads every *.json and *.jsonl file directly inside dir, in name
// order. Malformed records are collected on the batch, not returned as errors.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*Batch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".jsonl":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return l.LoadFiles(ctx, paths)
}

// LoadFiles loads the given files in sorted order. Records whose id repeats
// an earlier record are skipped as malformed.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) (*Batch, error) {
	paths = append([]string(nil), paths...)
	sort.Strings(paths)

	batch := &Batch{}
	seen := make(map[string]string)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		sum := sha256.Sum256(data)
		summary := FileSummary{Path: path, SHA256: hex.EncodeToString(sum[:])}

		records, malformed := Decode(path, data)
		for _, rec := range records {
			if first, dup := seen[rec.ID]; dup {
				malformed = append(malformed, &MalformedRecordError{
					File:     path,
					Index:    -1,
					RecordID: rec.ID,
					ShowID:   rec.ShowID,
					Cause:    fmt.Errorf("duplicate id, first seen in %s", filepath.Base(first)),
				})
				continue
			}
			seen[rec.ID] = path
			batch.Records = append(batch.Records, rec)
			summary.Records++
		}
		logger := logging.WithContext(ctx, l.logger)
		for _, m := range malformed {
			logging.WarnWithContext(logger, "skipping malformed record", "malformed_record",
				logging.String(logging.FieldErrorHint, "fix or remove the record in the input file"),
				logging.String("file", filepath.Base(m.File)),
				logging.Int("index", m.Index),
				logging.String(logging.FieldRecordID, m.RecordID),
				logging.Error(m.Cause))
		}
		summary.Malformed = len(malformed)
		batch.Malformed = append(batch.Malformed, malformed...)
		batch.Files = append(batch.Files, summary)
		logger.Debug("input file loaded",
			logging.String("file", filepath.Base(path)),
			logging.Int("records", summary.Records),
			logging.Int("malformed", summary.Malformed))
	}
	return batch, nil
}

// Decode splits one file's content into records. The file name decides the
// layout: *.jsonl is line-delimited, anything else is JSON.
func Decode(name string, data []byte) ([]review.SourceRecord, []*MalformedRecordError) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if strings.EqualFold(filepath.Ext(name), ".jsonl") {
		return decodeLines(name, data)
	}
	raws, err := splitDocument(data)
	if err != nil {
		return nil, []*MalformedRecordError{{File: name, Index: -1, Cause: err}}
	}
	var (
		records   []review.SourceRecord
		malformed []*MalformedRecordError
	)
	for i, raw := range raws {
		rec, err := DecodeRecord(raw)
		if err != nil {
			malformed = append(malformed, malformedFrom(name, i, raw, err))
			continue
		}
		records = append(records, rec)
	}
	return records, malformed
}

func decodeLines(name string, data []byte) ([]review.SourceRecord, []*MalformedRecordError) {
	var (
		records   []review.SourceRecord
		malformed []*MalformedRecordError
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		rec, err := DecodeRecord(raw)
		if err != nil {
			malformed = append(malformed, malformedFrom(name, line, raw, err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		malformed = append(malformed, &MalformedRecordError{File: name, Index: line + 1, Cause: err})
	}
	return records, malformed
}

// splitDocument returns the raw records of a JSON document: a bare array, an
// object with a "records" array, or a single record object.
func splitDocument(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		return raws, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		inner, ok := wrapper["records"]
		if !ok {
			return []json.RawMessage{trimmed}, nil
		}
		var raws []json.RawMessage
		if err := json.Unmarshal(inner, &raws); err != nil {
			return nil, fmt.Errorf("decode records field: %w", err)
		}
		return raws, nil
	default:
		return nil, errors.New("document must be a JSON array or object")
	}
}

// malformedFrom recovers whatever identifying fields it can from a bad record.
func malformedFrom(name string, index int, raw []byte, cause error) *MalformedRecordError {
	var partial struct {
		ID     any `json:"id"`
		ShowID any `json:"show_id"`
	}
	_ = json.Unmarshal(raw, &partial)
	m := &MalformedRecordError{File: name, Index: index, Cause: cause}
	if s, ok := partial.ID.(string); ok {
		m.RecordID = strings.TrimSpace(s)
	}
	if s, ok := partial.ShowID.(string); ok {
		m.ShowID = strings.TrimSpace(s)
	}
	return m
}
