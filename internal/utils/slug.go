package utils

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]`)
)

// Slugify turns a label into a URL-safe identifier: "Breaking News!" -> "breaking-news".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// AccountName derives a username from a display name by dropping everything
// that is not alphanumeric: "CNN Super Staff" -> "cnnsuperstaff". Used to key
// externally sourced authors onto internal accounts.
func AccountName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return nonAlnum.ReplaceAllString(s, "")
}

// SplitDisplayName splits a display name into first and last name on the
// first run of whitespace. A single word becomes the first name.
func SplitDisplayName(s string) (first, last string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
