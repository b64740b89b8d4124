// Package sanitizer normalizes free-text input before it reaches validation or storage.
//
// All functions are idempotent and never fail: unusable input becomes an empty string.
package sanitizer
