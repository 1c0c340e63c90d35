// Package similarity finds near-duplicate critic identities inside one show
// that exact key equality misses.
//
// Two relation kinds are reported: bounded edit distance between normalized
// critic keys, and byline containment where one hyphenated name is a word
// prefix of the other. Both are candidates only. The resolver decides which
// are strong enough to merge; the rest surface as flags for human review.
// Matching never crosses shows or outlets.
package similarity
