package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans rich-text content to prevent XSS attacks. Applied to every
// user-supplied content field before it is persisted.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
