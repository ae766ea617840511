// Package arrange defines the arrangement document model and its
// advisory validator.
//
// An arrangement is the producer-facing description of a piece: global
// context (key, tempo, meter), an ordered list of sections, harmony as
// Roman-numeral progressions, and layers that assign patterns to
// sections. The validator reports structured issues with severities; it
// never mutates and never aborts early, so one pass reports everything.
package arrange
