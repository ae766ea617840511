// Package pattern defines reusable musical pattern templates and their
// resolution into concrete instances.
//
// A pattern is a parameterized template: a bar-aligned list of events
// whose degree, duration, and velocity fields may be `$name` parameter
// placeholders. Resolution layers parameter defaults, an optional named
// variant, and explicit overrides, then substitutes placeholders
// literally. No expression language: a placeholder is the whole field or
// nothing.
package pattern
