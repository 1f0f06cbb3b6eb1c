package auth

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// BasicTokenSource serves a static API key as an Authorization header of the
// form "Basic <key>". The key is never refreshed.
func BasicTokenSource(apiKey string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiKey,
		TokenType:   "Basic",
	})
}

// NewBasicClient returns an HTTP client that signs every request with apiKey.
// A zero timeout means requests may wait indefinitely.
func NewBasicClient(apiKey string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: BasicTokenSource(apiKey),
			Base:   http.DefaultTransport,
		},
		Timeout: timeout,
	}
}
