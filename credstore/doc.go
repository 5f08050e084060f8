// Package credstore persists the admin panel's client-held credentials: the raw
// access and refresh token strings and the short-lived pending second-factor
// payloads. Values are opaque to this package; callers interpret them.
//
// The contract is deliberately forgiving: reads never fail (a broken backing medium
// reads as absent, which forces the controller back to the unauthenticated state)
// and writes fail silently beyond a warn-level log line.
package credstore
