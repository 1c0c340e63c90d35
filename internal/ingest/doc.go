// Package ingest loads source records from the input directory.
//
// Records arrive as *.json files (a bare array, an object with a "records"
// array, or a single record object) or *.jsonl files with one record per
// line. Each record is checked against an embedded JSON Schema and then
// semantic rules. Records that fail are reported as MalformedRecordError
// values and skipped; loading always continues with the next record.
package ingest
