package valueobjects

import (
	"github.com/gosimple/slug"
)

// SlugFunc derives a URL slug from a title. The write path receives one as a
// dependency instead of relying on a save hook.
type SlugFunc func(title string) string

// DeriveSlug lowercases the title and keeps only ASCII letters, digits and
// single dashes, e.g. "Backend Development" -> "backend-development".
func DeriveSlug(title string) string {
	return slug.MakeLang(title, "en")
}
