package filesystem

import "strings"

// ResolveWebURL converts a file:// URI into a plain local path that can
// be opened directly. Bare paths pass through unchanged so callers can
// hand either form to the operating system.
func ResolveWebURL(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}
