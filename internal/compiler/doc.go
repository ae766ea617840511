// Package compiler turns an arrangement plus a pattern library into a
// canonical score.
//
// The pipeline: per section, per audible layer, resolve the assigned
// pattern, tile it across the section's bars, resolve symbolic degrees
// against the harmony context, and place pitches in the layer's register.
// Configuration mistakes (unknown patterns, unbound parameters, bad
// numerals) abort the compile; musical violations (pitch out of range,
// polyphony exceeded, missing chord tones) are collected as issues while
// the compile runs to completion, so one pass reports everything and
// still yields a complete score.
package compiler
