package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatUSD(t *testing.T) {
	testCases := []struct {
		cents    int64
		expected string
	}{
		{0, "$0"},
		{99, "$0.99"},
		{100, "$1"},
		{150050, "$1,500.50"},
		{123456789, "$1,234,567.89"},
		{-2500, "-$25"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, FormatUSD(tc.cents))
	}
}

func TestTruncateContent(t *testing.T) {
	require.Equal(t, "short", TruncateContent("short", 10))
	require.Equal(t, "exactly10!", TruncateContent("exactly10!", 10))
	require.Equal(t, "this is a ...", TruncateContent("this is a long title", 10))
}

func TestGenerateRandomSlug(t *testing.T) {
	first := GenerateRandomSlug("GeForce GTX 1080")
	second := GenerateRandomSlug("GeForce GTX 1080")

	require.Contains(t, first, "geforce-gtx-1080-")
	require.NotEqual(t, first, second)
}
