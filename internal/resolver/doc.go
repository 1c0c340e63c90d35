// Package resolver groups one show's source records into duplicate clusters
// and collapses each cluster into a single canonical review.
//
// Clusters are built with a union-find over three link types: exact
// normalized identity, similarity candidates at or above the merge floor,
// and a shared canonical URL. Every union that joins two components records
// the pairwise reason that justified it. A cluster whose members disagree on
// more evidence than they share is split back into its exact-identity
// groups and reported as an AmbiguousCluster flag instead of being merged.
//
// Member order is the record ID order, never input order, so merging the
// same records always produces the same canonical review.
package resolver
