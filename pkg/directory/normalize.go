package directory

import "strings"

// NormalizeCRLF rewrites every line terminator in s to CRLF and guarantees
// that s ends with CRLF, so that line-oriented clients can detect the end of
// a reply. Both "\n" and "\r\n" are accepted as terminators.
func NormalizeCRLF(s string) string {
	if !strings.Contains(s, "\n") {
		return s + "\r\n"
	}

	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var b strings.Builder
	b.Grow(len(s) + len(lines))
	for _, line := range lines {
		b.WriteString(strings.TrimSuffix(line, "\r"))
		b.WriteString("\r\n")
	}
	return b.String()
}

// normalize applies NormalizeCRLF to the user's texts when FixCRLF is set.
func (u *User) normalize() {
	if !u.FixCRLF {
		return
	}
	if u.Info != nil {
		s := NormalizeCRLF(*u.Info)
		u.Info = &s
	}
	if u.LongInfo != nil {
		s := NormalizeCRLF(*u.LongInfo)
		u.LongInfo = &s
	}
}
