package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameRunes bounds stored upload names, extension included.
const MaxFileNameRunes = 120

// ErrInvalidFileName is returned for names that are empty or try to escape
// their directory.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens path separators, drops control characters and
// caps the length while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\':
			b.WriteByte('_')
		case unicode.IsControl(r) || r == utf8.RuneError:
		default:
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	if s == "" {
		return "", ErrInvalidFileName
	}
	if utf8.RuneCountInString(s) <= MaxFileNameRunes {
		return s, nil
	}
	ext := path.Ext(s)
	if utf8.RuneCountInString(ext) >= MaxFileNameRunes {
		ext = ""
	}
	base := []rune(strings.TrimSuffix(s, ext))
	return string(base[:MaxFileNameRunes-utf8.RuneCountInString(ext)]) + ext, nil
}
