package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"marquee/internal/review"
)

type wireRecord struct {
	ID          string            `json:"id"`
	ShowID      string            `json:"show_id"`
	Outlet      string            `json:"outlet"`
	Critic      string            `json:"critic_name"`
	URL         *string           `json:"url"`
	PublishDate *string           `json:"publish_date"`
	FullText    *string           `json:"full_text"`
	Origin      *string           `json:"origin"`
	Excerpts    json.RawMessage   `json:"excerpts"`
	Indicators  review.Indicators `json:"score_indicators"`
}

// DecodeRecord validates one raw JSON record and converts it. Records
// without an id get one derived from their content.
func DecodeRecord(raw []byte) (review.SourceRecord, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return review.SourceRecord{}, fmt.Errorf("decode record JSON: %w", err)
	}
	schema, err := loadSchema()
	if err != nil {
		return review.SourceRecord{}, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return review.SourceRecord{}, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return review.SourceRecord{}, fmt.Errorf("normalize record JSON: %w", err)
	}
	var wire wireRecord
	if err := json.Unmarshal(normalized, &wire); err != nil {
		return review.SourceRecord{}, fmt.Errorf("unmarshal record: %w", err)
	}

	rec, err := convert(wire)
	if err != nil {
		return review.SourceRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = contentID(normalized)
	}
	if err := rec.Validate(); err != nil {
		return review.SourceRecord{}, err
	}
	return rec, nil
}

func convert(w wireRecord) (review.SourceRecord, error) {
	rec := review.SourceRecord{
		ID:         strings.TrimSpace(w.ID),
		ShowID:     strings.TrimSpace(w.ShowID),
		Outlet:     w.Outlet,
		Critic:     w.Critic,
		Indicators: w.Indicators,
	}
	if strings.TrimSpace(rec.ShowID) == "" {
		return rec, errors.New("show_id must not be blank")
	}
	if strings.TrimSpace(rec.Outlet) == "" {
		return rec, errors.New("outlet must not be blank")
	}
	if strings.TrimSpace(rec.Critic) == "" {
		return rec, errors.New("critic_name must not be blank")
	}
	if w.URL != nil && strings.TrimSpace(*w.URL) != "" {
		if err := validateURL(*w.URL); err != nil {
			return rec, err
		}
		rec.URL = strings.TrimSpace(*w.URL)
	}
	if w.PublishDate != nil && strings.TrimSpace(*w.PublishDate) != "" {
		t, err := parseDate(*w.PublishDate)
		if err != nil {
			return rec, err
		}
		rec.PublishDate = &t
	}
	if w.FullText != nil {
		rec.FullText = strings.TrimSpace(*w.FullText)
	}
	if w.Origin != nil {
		rec.Origin = strings.TrimSpace(*w.Origin)
	}
	excerpts, err := decodeExcerpts(w.Excerpts)
	if err != nil {
		return rec, err
	}
	rec.Excerpts = excerpts
	return rec, nil
}

// decodeExcerpts accepts a list of {source, text} objects or a map of
// source tag to text. Map entries are returned in source order.
func decodeExcerpts(raw json.RawMessage) ([]review.Excerpt, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out []review.Excerpt
	if trimmed[0] == '{' {
		var byTag map[string]string
		if err := json.Unmarshal(trimmed, &byTag); err != nil {
			return nil, fmt.Errorf("excerpts: %w", err)
		}
		for tag, text := range byTag {
			out = append(out, review.Excerpt{Source: tag, Text: text})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	} else if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("excerpts: %w", err)
	}
	kept := out[:0]
	for _, e := range out {
		e.Source = strings.TrimSpace(e.Source)
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return kept, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("publish_date must be RFC3339 or YYYY-MM-DD: %q", value)
	}
	return t, nil
}

func validateURL(value string) error {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("url is not valid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be absolute http(s): %q", value)
	}
	return nil
}

// contentID hashes the normalized JSON, whose object keys encoding/json
// already emits in sorted order.
func contentID(normalized []byte) string {
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:])[:16]
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("record is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("record contains trailing content")
	}
	return value, nil
}
