// internal/common/rynko/credentials.go
package rynko

import (
	"net/http"
	"strings"
)

// DefaultBaseURL is the public Rynko API.
const DefaultBaseURL = "https://api.rynko.dev"

// Credentials authenticate calls to the Rynko API.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// ResolvedBaseURL returns BaseURL without a trailing slash, or the default
// when unset.
func (c Credentials) ResolvedBaseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}

// Authenticate sets the bearer token.
func (c Credentials) Authenticate(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
}

// String hides the key.
func (c Credentials) String() string {
	return "rynko.Credentials{BaseURL: " + c.ResolvedBaseURL() + ", APIKey: ***}"
}
