package middleware

import (
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strconv"
)

var clientNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateClientName validates the names configured for API keys.
func ValidateClientName(name string) error {
	if name == "" {
		return fmt.Errorf("client name cannot be empty")
	}
	if !clientNamePattern.MatchString(name) {
		return fmt.Errorf("invalid client name %q (alphanumeric, dash, underscore only, max 64 chars)", name)
	}
	return nil
}

// ValidateAPIKeys checks every configured client name and rejects empty keys.
func ValidateAPIKeys(keys map[string]string) error {
	for name, key := range keys {
		if err := ValidateClientName(name); err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("empty API key for client %q", name)
		}
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ParseLimit reads the "limit" query parameter; junk falls back to the default.
func ParseLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return ValidateLimit(n)
}

// IsJSON reports whether the request declares a JSON body.
func IsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
