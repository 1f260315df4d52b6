// Package content derives hashtag and mention links from post text and runs
// the resulting side effects (hashtag records, post links, mention rows,
// mention notifications).
package content

import (
	"regexp"
	"strings"
)

var (
	hashtagPattern = regexp.MustCompile(`#\w+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// Hashtags returns the distinct hashtags in text, lower-cased and keeping
// the leading '#'. A tag appearing twice counts once; first-seen order is
// preserved.
func Hashtags(text string) []string {
	return dedupe(hashtagPattern.FindAllString(text, -1), strings.ToLower)
}

// Mentions returns the distinct mention candidates in text with the '@'
// marker stripped. Candidates are matched against usernames verbatim.
func Mentions(text string) []string {
	return dedupe(mentionPattern.FindAllString(text, -1), func(s string) string {
		return strings.TrimPrefix(s, "@")
	})
}

func dedupe(matches []string, normalize func(string) string) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		n := normalize(m)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
