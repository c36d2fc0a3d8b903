package common

// AuthorizationHeaderName is the HTTP header (and lower-cased gRPC metadata
// key) carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"
