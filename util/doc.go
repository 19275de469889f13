// Package util provides small shared helpers: string sanitization,
// filesystem-safe username normalization, and size parsing.
package util
