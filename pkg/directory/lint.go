package directory

import (
	"fmt"
	"unicode/utf8"
)

// Warnings returns non-fatal problems with d that operators usually want to
// know about. The directory is still served as-is.
func Warnings(d *Directory) []string {
	var warnings []string

	for _, name := range d.Names() {
		u, _ := d.Find(name)

		if !IsQueryableName(name) {
			warnings = append(warnings, fmt.Sprintf("user %q cannot be queried: names may only contain A-Z, a-z, 0-9, '_', '.' and '-'", name))
		}
		if u.Info != nil && !isASCII(*u.Info) {
			warnings = append(warnings, fmt.Sprintf("user %q's info contains non-ASCII characters; most clients won't render them correctly", name))
		}
		if u.LongInfo != nil && !isASCII(*u.LongInfo) {
			warnings = append(warnings, fmt.Sprintf("user %q's long-info contains non-ASCII characters; most clients won't render them correctly", name))
		}
	}

	return warnings
}

// IsQueryableName reports whether a client can ask for name: it must be
// non-empty and contain only username characters.
func IsQueryableName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !IsUsernameByte(name[i]) {
			return false
		}
	}
	return true
}

// IsUsernameByte reports whether c may appear in a queried username.
func IsUsernameByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '-'
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
