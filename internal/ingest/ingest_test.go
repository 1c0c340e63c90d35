package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"marquee/internal/ingest"
	"marquee/internal/logging"
	"marquee/internal/review"
	"marquee/internal/testsupport"
)

func TestDecodeRecordFullShape(t *testing.T) {
	raw := `{
		"id": "r1",
		"show_id": " hamilton ",
		"outlet": "NYT",
		"critic_name": "Ben Brantley",
		"url": "https://www.nytimes.com/2015/08/07/theater/review-hamilton.html",
		"publish_date": "2015-08-06",
		"full_text": "  A brilliant triumph.  ",
		"excerpts": {"dtli": "Brilliant", "bww": "Yes, it really is that good"},
		"score_indicators": {
			"ratings": [{"source": "outlet", "text": "Critic's Pick"}],
			"thumbs": [{"source": "dtli", "verdict": "Up"}],
			"model_scores": [{"model": "m1", "score": 91.5, "confidence": "high", "basis": "full_text"}]
		}
	}`
	rec, err := ingest.DecodeRecord([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if rec.ShowID != "hamilton" || rec.FullText != "A brilliant triumph." {
		t.Fatalf("fields not trimmed: %+v", rec)
	}
	if rec.PublishDate == nil || rec.PublishDate.Format("2006-01-02") != "2015-08-06" {
		t.Fatalf("unexpected publish date %v", rec.PublishDate)
	}
	if len(rec.Excerpts) != 2 || rec.Excerpts[0].Source != "bww" {
		t.Fatalf("map excerpts should be sorted by source, got %+v", rec.Excerpts)
	}
	ind := rec.Indicators
	if len(ind.Ratings) != 1 || len(ind.Thumbs) != 1 || len(ind.ModelScores) != 1 || ind.ModelScores[0].Score != 91.5 {
		t.Fatalf("unexpected indicators %+v", ind)
	}
}

func TestDecodeRecordRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing critic", `{"id":"x","show_id":"s","outlet":"o"}`},
		{"blank outlet", `{"id":"x","show_id":"s","outlet":"   ","critic_name":"c"}`},
		{"relative url", `{"id":"x","show_id":"s","outlet":"o","critic_name":"c","url":"/reviews/1"}`},
		{"bad date", `{"id":"x","show_id":"s","outlet":"o","critic_name":"c","publish_date":"Aug 6"}`},
		{"score out of range", `{"id":"x","show_id":"s","outlet":"o","critic_name":"c","score_indicators":{"model_scores":[{"score":140}]}}`},
		{"unknown indicator", `{"id":"x","show_id":"s","outlet":"o","critic_name":"c","score_indicators":{"stars":3}}`},
		{"wrong type", `{"id":"x","show_id":"s","outlet":7,"critic_name":"c"}`},
		{"trailing content", `{"id":"x","show_id":"s","outlet":"o","critic_name":"c"} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ingest.DecodeRecord([]byte(tt.raw)); err == nil {
				t.Fatalf("expected error for %s", tt.raw)
			}
		})
	}
}

func TestDecodeRecordDerivesStableID(t *testing.T) {
	a := `{"show_id":"s","outlet":"o","critic_name":"c","url":"https://o.example/r"}`
	b := `{"url":"https://o.example/r","critic_name":"c","outlet":"o","show_id":"s"}`
	ra, err := ingest.DecodeRecord([]byte(a))
	if err != nil {
		t.Fatal(err)
	}
	rb, err := ingest.DecodeRecord([]byte(b))
	if err != nil {
		t.Fatal(err)
	}
	if ra.ID == "" || len(ra.ID) != 16 || ra.ID != rb.ID {
		t.Fatalf("expected identical 16-char ids, got %q and %q", ra.ID, rb.ID)
	}
}

func TestLoadDirCollectsMalformedAndContinues(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "a.json"), `[
		{"id":"r1","show_id":"hamilton","outlet":"NYT","critic_name":"Ben Brantley"},
		{"id":"r2","show_id":"hamilton","outlet":"NYT"},
		{"id":"r3","show_id":"hamilton","outlet":"Variety","critic_name":"Marilyn Stasio"}
	]`)
	testsupport.WriteText(t, filepath.Join(dir, "b.jsonl"),
		`{"id":"r4","show_id":"wicked","outlet":"EW","critic_name":"Melissa Rose Bernardo"}`+"\n"+
			"\n"+
			`not json`+"\n"+
			`{"id":"r1","show_id":"wicked","outlet":"EW","critic_name":"Dup"}`+"\n")
	testsupport.WriteText(t, filepath.Join(dir, "c.json"), `{"records":[{"id":"r5","show_id":"cats","outlet":"AP","critic_name":"Mark Kennedy"}]}`)
	testsupport.WriteText(t, filepath.Join(dir, "broken.json"), `{"records": 5}`)
	testsupport.WriteText(t, filepath.Join(dir, "notes.txt"), `ignored`)

	batch, err := ingest.NewLoader(logging.NewNop()).LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(batch.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(batch.Records))
	}
	ids := []string{"r1", "r3", "r4", "r5"}
	got := map[string]bool{}
	for _, r := range batch.Records {
		got[r.ID] = true
	}
	for _, id := range ids {
		if !got[id] {
			t.Fatalf("missing record %s", id)
		}
	}
	if len(batch.Malformed) != 4 {
		t.Fatalf("expected 4 malformed, got %d: %v", len(batch.Malformed), batch.Malformed)
	}
	for _, m := range batch.Malformed {
		if !errors.Is(m, ingest.ErrMalformedRecord) {
			t.Fatalf("malformed error does not match sentinel: %v", m)
		}
	}
	if batch.Malformed[0].RecordID != "r2" || batch.Malformed[0].Index != 1 {
		t.Fatalf("unexpected first malformed %+v", batch.Malformed[0])
	}
	if len(batch.Files) != 4 || batch.Files[0].Records != 2 || batch.Files[0].Malformed != 1 {
		t.Fatalf("unexpected file summaries %+v", batch.Files)
	}

	flags := batch.Flags()
	if len(flags) != 4 || flags[0].Kind != review.FlagMalformedRecord || flags[0].Severity != review.SeverityWarning {
		t.Fatalf("unexpected flags %+v", flags)
	}
	if batch.Digest() == "" {
		t.Fatal("expected digest")
	}
}

func TestLoadDirMissing(t *testing.T) {
	_, err := ingest.NewLoader(nil).LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestLoadFilesHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	testsupport.WriteText(t, path, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ingest.NewLoader(nil).LoadFiles(ctx, []string{path}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
