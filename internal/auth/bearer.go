package auth

import (
	"errors"
	"strings"
)

// Credential extraction errors.
var (
	ErrMissingCredential   = errors.New("missing authorization header")
	ErrMalformedCredential = errors.New("authorization header must be 'Bearer <token>'")
)

// ExtractBearer returns the token of an "Authorization: Bearer <token>" header value.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredential
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrMalformedCredential
	}

	token := strings.TrimSpace(parts[1])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMalformedCredential
	}
	return token, nil
}
