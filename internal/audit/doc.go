// Package audit evaluates a finished run against corpus-wide thresholds and
// produces the report consumed by release tooling.
//
// Checks are either blocking or advisory. A blocking check over its
// threshold fails the run; an advisory one only marks itself as flagged.
// Any critical flag also fails the run. The report groups every flag by
// kind and severity so it is the single place a human needs to look.
package audit
