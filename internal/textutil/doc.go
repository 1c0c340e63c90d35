// Package textutil provides the small text primitives shared by the matcher
// and the signal collector: word splitting and term-frequency fingerprints
// with cosine similarity.
//
// Tokenization lowercases text and splits on anything that is not an ASCII
// letter or digit. Tokenize drops tokens shorter than three characters for
// fingerprinting; Words keeps them, since short words such as "no" matter
// when reading sentiment.
package textutil
