// Package props reads and writes line-oriented key/value data files.
//
// A line holds one entry delimited by exactly one '=' or exactly one ':'.
// Lines starting with '#' or '!' are comments. Lines that are ambiguous
// (several delimiters, or both kinds) are dropped without diagnostics.
package props
