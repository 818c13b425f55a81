package files

import "strings"

const illegalFilenameChars = `\/*?:"<>|`

// Sanitize normalises an arbitrary platform-supplied string into a string
// which is safe to use as a single filesystem path component. Characters
// which are illegal in filenames are replaced with underscores, and runs of
// whitespace are collapsed to a single space.
func Sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return '_'
		}

		return r
	}, name)

	return strings.Join(strings.Fields(cleaned), " ")
}
