// Package api is the HTTP implementation of the adminauth Backend: one method per
// admin-API operation, with every transport-level failure mapped into the adminauth
// error taxonomy before it reaches the controller.
//
// Classification policy: connection failures, timeouts, 5xx answers, and bodies
// that are not valid JSON all classify as ErrServerUnavailable — the caller cannot
// distinguish them and none are user-correctable. Rejections (bad credentials, bad
// code, bad invite) carry the server-provided message wrapped around the matching
// sentinel so the UI can surface it verbatim.
package api
