package github

import "strings"

// ResolveWebURL converts a github:// URI to a browser URL.
// github://owner/repo/blob/branch/path -> https://github.com/owner/repo/blob/branch/path
// Non-github URIs return "".
func ResolveWebURL(uri string) string {
	if strings.HasPrefix(uri, "github://") {
		return "https://github.com/" + strings.TrimPrefix(uri, "github://")
	}
	return ""
}
