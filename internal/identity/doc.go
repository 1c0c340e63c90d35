// Package identity canonicalizes the raw outlet and critic strings carried by
// source records into the stable keys used for exact duplicate detection.
//
// The Normalizer is built once from injected reference data and is safe for
// concurrent use: its lookup tables are never mutated after construction.
// Every method is total. Unknown outlets pass through in slug form, never
// mapped to an invented registry entry, and no non-empty input ever
// normalizes to the empty string.
package identity
