package auth

import "strings"

// NormalizeLastEndpoint sanitizes a saved return path used after login.
// Login pages and empty paths collapse to the root so the user is never
// redirected back into the login flow itself.
func NormalizeLastEndpoint(path string) string {
	if path == "" {
		return "/"
	}
	if path == "/login" || strings.HasPrefix(path, "/login/") {
		return "/"
	}
	return path
}
