// Package ir defines the canonical score intermediate representation.
//
// This package is the foundational layer: every other internal package may
// import ir; ir imports nothing internal. It owns the Note/Section/ScoreIR
// types, canonical ordering, RFC 8785-style canonical JSON, content
// fingerprinting, schema version checking, and the structural diff.
//
// Key design constraints:
//   - NO float types anywhere - durations and positions are integer ticks
//   - Canonical JSON keys are sorted by UTF-16 code units, strings are NFC
//     normalized, and HTML characters are never escaped
//   - Provenance is additive metadata and never participates in ordering
//     or fingerprinting
package ir
