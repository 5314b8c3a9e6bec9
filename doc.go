// Package posts provides a session-less social posts API: bearer token
// issuance and verification, an auth gate for Fiber routes, and the post
// interaction engine (posts, likes, comments) backed by Bun repositories.
//
// Tokens:
//   - Auther.Login validates the payload, verifies the bcrypt hash through an
//     IdentityProvider and signs an HS256 token carrying {"user":{"id":...}}.
//   - TokenService.Validate is a pure check of signature and expiry against the
//     configured secret. RouteAuthenticator.ProtectedRoute wraps it as the
//     x-auth-token gate and puts the claims in the request user context.
//
// Posts:
//   - PostService enforces ownership against the actor id from the claims and
//     reports malformed identifiers as not found.
//   - Likes and comment removals are single conditional statements, so two
//     concurrent likes by the same user cannot both succeed.
//
// Activity:
//   - PostService and Auther report successful mutations and login attempts
//     to an optional ActivitySink. See the activitymap package for a
//     transport-agnostic shape.
//
// Persistence:
//   - OpenDB, Migrate and LoadFixtures prepare a SQLite (or Postgres, through
//     pgx) database from the embedded migrations and seed users.
package posts
