// Package theory provides the music-theory value types the compiler is
// built on: pitch classes, intervals, scales, chords, and exact rational
// time values.
//
// This package contains pure value types only. All other internal packages
// may import theory; theory imports nothing internal. Every operation is
// referentially transparent: no hidden state, no caches, no floats.
// Rhythmic values use exact rationals (Beat) so that tick conversion is
// deterministic across platforms.
package theory
