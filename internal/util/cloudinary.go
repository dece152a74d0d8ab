package util

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var cloudinaryVersionSegment = regexp.MustCompile(`^v\d+$`)

// ExtractPublicIDFromURL recovers the Cloudinary public ID from a delivery
// URL so the underlying asset can be deleted.
// Example: .../image/upload/v1738061923/components/cpu_abc123.jpg
// yields "components/cpu_abc123".
func ExtractPublicIDFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid file URL %q: %w", rawURL, err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	uploadIdx := -1
	for i, segment := range segments {
		if segment == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx == -1 || uploadIdx+1 >= len(segments) {
		return "", fmt.Errorf("no public ID found in URL %q", rawURL)
	}

	rest := segments[uploadIdx+1:]
	if len(rest) > 1 && cloudinaryVersionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	publicID := strings.Join(rest, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return "", fmt.Errorf("no public ID found in URL %q", rawURL)
	}
	return publicID, nil
}
