// Package util provides small string helpers shared by the console and the
// command line.
package util

import (
	"strings"
	"unicode"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// SplitArgs splits a console line on white space. A double-quoted part is
// one argument, spaces included; inside it "" stands for a literal quote.
// An unterminated quote runs to the end of the line.
func SplitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		started bool
		quoted  bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && quoted && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune('"')
			i++
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}
