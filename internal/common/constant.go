// Package common contains shared constants and sentinel errors used across
// Hydratr components.
package common

// AccessTokenCookieName is the cookie that carries the access token for
// browser clients.
const AccessTokenCookieName = "access_token"

// RefreshTokenCookieName is the cookie that carries the refresh token.
const RefreshTokenCookieName = "refresh_token"

// AuthorizationHeaderName is the header inspected for "Bearer <token>".
const AuthorizationHeaderName = "Authorization"
