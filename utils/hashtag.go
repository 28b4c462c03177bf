package utils

import (
	"regexp"
	"strings"
)

// hashtagPattern matches a '#' followed by 1-32 tag characters. Longer runs
// are truncated at 32, matching the tag length limit in storage.
var hashtagPattern = regexp.MustCompile(`#[a-zA-Z0-9_]{1,32}`)

// MaxHashtagsPerPost caps how many distinct tags a post may carry. The
// extractor itself is unbounded; callers enforce the cap at validation time.
const MaxHashtagsPerPost = 5

// ExtractHashtags returns the de-duplicated hashtag names found in text,
// lowercased, in order of first occurrence. Dedup is case-insensitive, so
// "#Space #space" yields just "space". Zero matches yield an empty slice.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(matches))
	tags := []string{}
	for _, m := range matches {
		name := strings.ToLower(strings.TrimPrefix(m, "#"))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags
}
