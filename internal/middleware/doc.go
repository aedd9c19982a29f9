// Package middleware provides HTTP middleware for the PetzAdopt API.
//
// # Available Middleware
//
//   - Auth: bearer token validation, caller email in context
//   - OptionalAuth: like Auth, but anonymous requests pass through
//   - AdminAuth: admin role check, runs after Auth
//   - RateLimiter: token bucket per caller or client host, with per-route rules
//   - Idempotency: replays responses for a repeated Idempotency-Key; a key
//     reused with a different body is rejected
//   - ClientKey: the identity both of the above key on
//   - RequestID, Logger, Recovery, CORS, Compress
//
// Middleware composes with Chain, outermost first:
//
//	h := middleware.Chain(mux, middleware.RequestID, middleware.Logger, middleware.Recovery)
//
// OptionalAuth runs globally ahead of RateLimit and Idempotency so they see
// the verified caller; per-route Auth then reuses the claims it stored.
//
// # Context Values
//
//   - GetUserEmail(ctx): authenticated email
//   - GetClaims(ctx): verified token claims
//   - GetRequestID(ctx): unique request identifier
package middleware
