package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for cache backends.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// IsAbsoluteURL reports whether ref already carries an http(s) scheme.
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ResolveImageURL turns an image reference found in page markup into an
// absolute URL against the site base (no trailing slash expected).
//
//	//host/p -> https://host/p
//	/p       -> base/p
//	p        -> base/p
func ResolveImageURL(base, ref string) string {
	switch {
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return base + ref
	case IsAbsoluteURL(ref):
		return ref
	default:
		return base + "/" + ref
	}
}

// JoinPagePath builds the URL of a site page. An empty path is the root page.
func JoinPagePath(base, path string) string {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}
