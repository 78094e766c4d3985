package provider

import "strings"

// PlaceholderPrefix marks template endpoints that were never filled in.
const PlaceholderPrefix = "YOUR "

// IsPlaceholder reports whether endpoint is empty or still a template value.
func IsPlaceholder(endpoint string) bool {
	e := strings.TrimSpace(endpoint)
	if e == "" {
		return true
	}
	return len(e) >= len(PlaceholderPrefix) &&
		strings.EqualFold(e[:len(PlaceholderPrefix)], PlaceholderPrefix)
}

// HasCredential reports whether a credential is set.
func HasCredential(credential string) bool {
	return strings.TrimSpace(credential) != ""
}

// JoinURL joins a base URL and a path with exactly one slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
