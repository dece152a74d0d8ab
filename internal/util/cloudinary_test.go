package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPublicIDFromURL(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "versioned URL with folder",
			url:      "https://res.cloudinary.com/demo/image/upload/v1738061923/components/cpu_abc123.jpg",
			expected: "components/cpu_abc123",
		},
		{
			name:     "no version segment",
			url:      "https://res.cloudinary.com/demo/image/upload/components/cpu_abc123.png",
			expected: "components/cpu_abc123",
		},
		{
			name:     "no folder",
			url:      "https://res.cloudinary.com/demo/image/upload/v1/cpu_abc123.webp",
			expected: "cpu_abc123",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			publicID, err := ExtractPublicIDFromURL(tc.url)
			require.NoError(t, err)
			require.Equal(t, tc.expected, publicID)
		})
	}
}

func TestExtractPublicIDFromURLRejectsNonUploadURL(t *testing.T) {
	_, err := ExtractPublicIDFromURL("https://example.com/static/placeholder.png")
	require.Error(t, err)
}
