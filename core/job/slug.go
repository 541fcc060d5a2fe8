package job

import (
	"strings"

	"github.com/irsalhamdi/job-board/random"
)

// MakeSlug folds a title to a URL-safe slug and appends a random
// suffix so two jobs with the same title never collide.
func MakeSlug(title string) string {
	var b strings.Builder
	dash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	suffix := strings.ToLower(random.String(8))
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
