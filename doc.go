// Package adminauth implements the authentication and session lifecycle for the
// NebulaHunt admin panel: password and OAuth first factors, mandatory TOTP second
// factor, invitation-gated registration, and silent access-token renewal against the
// game backend's admin API.
//
// The package is designed for UI-driven workloads: [Controller] methods are safe to
// call from multiple goroutines after initialization through [Builder.Build], and
// mutating operations against the same session are serialized so a logout issued
// while another call is in flight takes effect only after that call resolves — and
// can never be undone by it.
//
// # Architecture boundaries
//
// adminauth is the public surface. It exposes [Controller], [Builder], [Config], the
// [Backend] interface, and value types (Session, PendingAuthContext, TOTPProvision,
// InviteClaims). The HTTP implementation of [Backend] lives in the api subpackage;
// token persistence lives in credstore; provider-assertion acquisition lives in oauth.
// The panel's forms and tables are consumers of this package and never reach past it.
//
// # What this package must NOT do
//
//   - Verify credentials, derive TOTP codes, or otherwise re-implement server-side
//     logic; it only drives and consumes the backend API's contracts.
//   - Hold tokens in package-level state. All persistence goes through the injected
//     [credstore.Store] so tests can substitute an in-memory fake.
//   - Leave a half-written token pair behind: access and refresh tokens are always
//     stored and cleared together.
//
// # Failure contract
//
// Every operation returns a sentinel error from this package. ErrServerUnavailable is
// the only class a UI should offer a retry for; ErrRefreshRejected destroys the
// session and returns the controller to StateAnonymous. See [Classify].
package adminauth
