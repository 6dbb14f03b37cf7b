package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the standard header carrying "Bearer <token>".
const AuthorizationHeaderName = "authorization"

// AccessTokenCookieName is the HTTP cookie set on login with the access token.
const AccessTokenCookieName = "Jwt"

// SessionEndedHeaderName is set on a response once the caller's sign-in has ended.
const SessionEndedHeaderName = "session-ended"
