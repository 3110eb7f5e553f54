// Package common contains shared constants and sentinel errors used across
// recipekeeper components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the preferred authorization scheme.
	BearerScheme = "Bearer"

	// TokenScheme is accepted for clients written against the DRF-style API.
	TokenScheme = "Token"

	// MinPasswordLength is the shortest password accepted on registration.
	MinPasswordLength = 5

	// MaxNameLength bounds names, titles, emails and links (VARCHAR(255)).
	MaxNameLength = 255
)
