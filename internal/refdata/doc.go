// Package refdata loads the externally maintained reference tables the
// reconciliation core consumes: the outlet registry with its alias variants,
// the manual critic alias set, and the human override table.
//
// Tables are decoded once and treated as read-only values that callers inject
// into the normalizer and signal collector. Nothing in this package keeps
// global state; the embedded defaults are parsed fresh by DefaultAliases.
package refdata
