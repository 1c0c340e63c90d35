// Package testsupport holds fixtures shared by package tests: a temp-dir
// config builder, SourceRecord builders, and small file helpers.
package testsupport
