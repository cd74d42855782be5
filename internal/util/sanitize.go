package util

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"go-git-cms/pkg/apierror"
)

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename normalizes a user-supplied filename for storage inside the
// repository: control and invisible characters are stripped, path traversal
// and separators are neutralized, and the result is capped at 255 runes.
func SanitizeFilename(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apierror.New("INVALID_FILENAME", "filename cannot be empty", "", http.StatusBadRequest)
	}

	if strings.Contains(trimmed, "\x00") {
		return "", apierror.New("INVALID_FILENAME", "filename contains null bytes", trimmed, http.StatusBadRequest)
	}

	trimmed = strings.ReplaceAll(trimmed, "..", "")

	builder := strings.Builder{}
	builder.Grow(len(trimmed))
	for _, char := range trimmed {
		if unicode.IsControl(char) || unicode.Is(unicode.Cf, char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := unsafeFilenameChars.ReplaceAllString(builder.String(), "_")
	cleaned = strings.Trim(cleaned, " .")

	if cleaned == "" {
		return "", apierror.New("INVALID_FILENAME", "filename is invalid after sanitization", trimmed, http.StatusBadRequest)
	}

	// Truncate by runes (not bytes) to avoid splitting multi-byte characters.
	runes := []rune(cleaned)
	if len(runes) > 255 {
		ext := ""
		if idx := strings.LastIndex(cleaned, "."); idx >= 0 {
			ext = cleaned[idx:]
		}
		keep := 255 - len([]rune(ext))
		cleaned = string(runes[:keep]) + ext
	}

	return cleaned, nil
}
