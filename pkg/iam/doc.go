// Package iam holds the authentication and ephemeral-credential subsystem.
//
// # Overview
//
// The package is organized into sub-packages that compose into the full
// authentication flow:
//
//   - iam/auth: signed session tokens, revocation list, active session
//     registry, login/register/reset/logout orchestration, Fiber middleware
//   - iam/otp:  one-time code issuance and atomic consumption
//   - iam/sso:  federated identity reconciliation
//   - iam/user: the user entity and its repository port
//
// # Architecture
//
// Each sub-domain follows the same layering:
//
//	HTTP handler → service (<x>srv) → port interface → infrastructure (<x>infra)
//
// Sub-domains expose their own error registry ("AUTH", "OTP", "SSO") and the
// only shared mutable resource is the TTL key/value store behind pkg/keyval:
// every concurrency invariant (exactly-once OTP consumption, single session
// per user, revocation) rides on that store's atomic primitives rather than
// application locks.
package iam
