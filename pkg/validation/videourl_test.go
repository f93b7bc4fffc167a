package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateVideoURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://vimeo.com/123456789",
		"https://www.vimeo.com/123456789",
		"https://player.vimeo.com/video/123456789",
		"http://youtu.be/dQw4w9WgXcQ",
	}
	for _, url := range valid {
		require.NoError(t, ValidateVideoURL(url), "expected %s to be accepted", url)
	}

	invalid := []string{
		"",
		"not a url",
		"https://example.com/video.mp4",
		"https://youtube.com.evil.com/watch?v=x",
		"ftp://youtube.com/watch?v=x",
		"javascript:alert(1)",
	}
	for _, url := range invalid {
		require.Error(t, ValidateVideoURL(url), "expected %s to be rejected", url)
	}
}
