package types

import (
	"os"
	"strings"
)

const (
	ContextUserKey = "user"

	// SessionCookie carries the session token for browser clients.
	SessionCookie = "token"
)

// Dev server origins of the SPA, always allowed.
var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:5174",
}

// AllowedOrigins returns the browser origins allowed to call the API with
// credentials: the dev defaults plus CLIENT_URL and the comma-separated
// ALLOWED_ORIGINS. It reads the environment on every call, so call it after
// .env has been loaded.
func AllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	return origins
}
