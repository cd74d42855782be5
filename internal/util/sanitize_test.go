package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes invalid characters", func(t *testing.T) {
		actual, err := SanitizeFilename(` report<2026>?.pdf `)
		require.NoError(t, err)
		require.Equal(t, "report_2026__.pdf", actual)
	})

	t.Run("rejects empty filenames", func(t *testing.T) {
		_, err := SanitizeFilename("   ")
		require.Error(t, err)
	})

	t.Run("rejects null bytes", func(t *testing.T) {
		_, err := SanitizeFilename("evil\x00.png")
		require.Error(t, err)
	})

	t.Run("neutralizes path traversal", func(t *testing.T) {
		actual, err := SanitizeFilename("../../etc/passwd")
		require.NoError(t, err)
		require.NotContains(t, actual, "..")
		require.NotContains(t, actual, "/")
	})

	t.Run("strips zero-width characters", func(t *testing.T) {
		actual, err := SanitizeFilename("file\u200B\u200C\u200Dname.txt")
		require.NoError(t, err)
		require.Equal(t, "filename.txt", actual)
	})

	t.Run("rejects filenames that vanish after stripping", func(t *testing.T) {
		_, err := SanitizeFilename("\u200B\u200C\u200D")
		require.Error(t, err)
	})

	t.Run("truncates long filenames preserving the extension", func(t *testing.T) {
		actual, err := SanitizeFilename(strings.Repeat("a", 300) + ".png")
		require.NoError(t, err)
		require.Len(t, []rune(actual), 255)
		require.True(t, strings.HasSuffix(actual, ".png"))
	})
}
