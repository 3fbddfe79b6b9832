package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxFileNameBytes caps sanitized names, leaving room for a track prefix and
// an extension within the usual 255-byte filesystem limit.
const MaxFileNameBytes = 200

// fallbackFileName is used when sanitizing leaves nothing behind.
const fallbackFileName = "untitled"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName converts a title into a name that is safe on common
// filesystems. The input is NFC normalized, path separators and colons become
// dashes, other reserved characters and control characters are removed, and
// trailing dots and spaces are trimmed. Overlong names are cut on a rune
// boundary. An empty result yields "untitled".
func SanitizeFileName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	name = fileNameReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, name)
	name = truncateBytes(name, MaxFileNameBytes)
	name = strings.TrimRight(strings.TrimSpace(name), ". ")
	if name == "" {
		return fallbackFileName
	}
	return name
}

func truncateBytes(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

// JoinNonEmpty joins the non-blank parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, sep)
}
