// Package authgate provides the token security core shared by the edge
// gateway and the backend services: a two-layer token format, the issuer
// and validator built on it, and the break-glass identity fallback.
//
// Token format:
//   - The inner layer is a signed claims token (HS256) carrying subject,
//     roles, issuer, and expiry. The outer layer encrypts the signed form
//     into an opaque AES-GCM envelope, so only key holders can even read
//     the claims. Issuer composes both layers; Validator reverses them.
//   - Signature verification and expiry are separate checks on purpose:
//     ClaimsSigner.Verify authenticates structure and signature only, and
//     the Validator applies expiry on top. Every validation path funnels
//     through Validator.Validate so the decision procedure cannot drift.
//
// Identity fallback:
//   - FallbackIdentityStore keeps last-known-good identity records in
//     process memory and seeds one break-glass operator record, so login
//     keeps working for known subjects while the identity service is down.
//     Auther resolves credentials through it and mints tokens on success.
//
// Deployment:
//   - The remote package carries the validator service's HTTP surface and
//     the client every other service uses, and middleware/gateware is the
//     edge authorization filter that consults route policies and the
//     remote validator before requests are proxied upstream.
package authgate
