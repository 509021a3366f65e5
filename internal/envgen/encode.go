package envgen

import (
	"strings"
)

// safeValue reports whether a value can be written verbatim after the "="
// without any quoting.
func safeValue(value string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./:@+=,", r):
		default:
			return false
		}
	}
	return true
}

// escapeValue renders a value for a KEY=value line. Values outside the safe
// character set are double-quoted with backslash escapes so that backslashes,
// quotes, embedded newlines and dollar signs in secret material cannot corrupt
// the output format, smuggle in extra lines, or expand against other variables
// when the file is parsed back. Parsers with dotenv semantics expand ${NAME}
// inside double quotes; \$ survives their escape pass as a literal dollar.
func escapeValue(value string) string {
	if safeValue(value) {
		return value
	}

	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '$':
			b.WriteString(`\$`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
