package fetch

import (
	"net/url"
	"path/filepath"
	"strings"
)

// ResolveReference resolves a reference found in a document against the document's location.
// data: URIs and absolute references are returned unchanged. URL bases use RFC 3986 resolution;
// filesystem bases resolve relative to the directory holding the document.
//
// Parameters:
//   - base: the document location
//   - ref: the reference to resolve
//
// Returns:
//   - string: the absolute location
func ResolveReference(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ref
	}
	if _, ok := urlScheme(ref); ok {
		return ref
	}

	if _, ok := urlScheme(base); ok {
		b, err := url.Parse(base)
		if err == nil {
			r, err := url.Parse(ref)
			if err == nil {
				return b.ResolveReference(r).String()
			}
		}
	}

	if filepath.IsAbs(ref) || base == "" {
		return ref
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
}

// urlScheme returns the lower-cased scheme of uri.
// Single-letter schemes are treated as Windows drive letters, not schemes.
func urlScheme(uri string) (string, bool) {
	scheme, _, ok := strings.Cut(uri, ":")
	if !ok || len(scheme) < 2 {
		return "", false
	}
	for i, c := range scheme {
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlpha && (i == 0 || !(c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.')) {
			return "", false
		}
	}
	return strings.ToLower(scheme), true
}
