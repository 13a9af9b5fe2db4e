package normalize

import "regexp"

var reTag = regexp.MustCompile(`(?s)<.*?>`)

// StripTags removes every <...> span until none is left. Entities and
// whitespace are left as they are.
func StripTags(s string) string {
	for reTag.MatchString(s) {
		s = reTag.ReplaceAllString(s, "")
	}
	return s
}
