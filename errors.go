package adminauth

import "errors"

var (
	// ErrValidation is an exported constant or variable used by the session controller.
	ErrValidation = errors.New("invalid input")
	// ErrMalformedCode is an exported constant or variable used by the session controller.
	ErrMalformedCode = errors.New("totp code must be exactly six digits")
	// ErrAuthRejected is an exported constant or variable used by the session controller.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrAccountLocked is an exported constant or variable used by the session controller.
	ErrAccountLocked = errors.New("account locked")
	// ErrWeakPassword is an exported constant or variable used by the session controller.
	ErrWeakPassword = errors.New("password rejected by policy")
	// ErrInviteInvalid is an exported constant or variable used by the session controller.
	ErrInviteInvalid = errors.New("invite token invalid")
	// ErrInviteExpired is an exported constant or variable used by the session controller.
	ErrInviteExpired = errors.New("invite token expired or already consumed")
	// ErrUnauthorized is an exported constant or variable used by the session controller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServerUnavailable is an exported constant or variable used by the session controller.
	ErrServerUnavailable = errors.New("server unavailable")
	// ErrRefreshRejected is an exported constant or variable used by the session controller.
	ErrRefreshRejected = errors.New("refresh token rejected")
	// ErrTOTPNotProvisioned is an exported constant or variable used by the session controller.
	ErrTOTPNotProvisioned = errors.New("totp not provisioned")
	// ErrDisableNotConfirmed is an exported constant or variable used by the session controller.
	ErrDisableNotConfirmed = errors.New("totp disable not confirmed")
	// ErrAlreadyInitialized is an exported constant or variable used by the session controller.
	ErrAlreadyInitialized = errors.New("supervisor already initialized")
	// ErrDuplicateInvite is an exported constant or variable used by the session controller.
	ErrDuplicateInvite = errors.New("invite already exists for email")
	// ErrNoSession is an exported constant or variable used by the session controller.
	ErrNoSession = errors.New("no active session")
	// ErrNoPendingSecondFactor is an exported constant or variable used by the session controller.
	ErrNoPendingSecondFactor = errors.New("no pending second factor")
	// ErrControllerNotReady is an exported constant or variable used by the session controller.
	ErrControllerNotReady = errors.New("controller not initialized")
)

// ErrorClass buckets controller errors for presentation. The split mirrors the
// panel's UX contract: recoverable classes auto-clear, persistent classes require an
// explicit user action (retry or re-login).
type ErrorClass uint8

const (
	// ClassUnknown is an exported constant or variable used by the session controller.
	ClassUnknown ErrorClass = iota
	// ClassValidation is an exported constant or variable used by the session controller.
	ClassValidation
	// ClassAuthRejected is an exported constant or variable used by the session controller.
	ClassAuthRejected
	// ClassInviteExpired is an exported constant or variable used by the session controller.
	ClassInviteExpired
	// ClassUnauthorized is an exported constant or variable used by the session controller.
	ClassUnauthorized
	// ClassServerUnavailable is an exported constant or variable used by the session controller.
	ClassServerUnavailable
	// ClassSessionDestroyed is an exported constant or variable used by the session controller.
	ClassSessionDestroyed
)

// Classify maps any error returned by this package to its presentation class.
// Wrapped server messages are preserved on the error itself; Classify only decides
// how the UI should surface them.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMalformedCode):
		return ClassValidation
	case errors.Is(err, ErrRefreshRejected):
		return ClassSessionDestroyed
	case errors.Is(err, ErrAuthRejected), errors.Is(err, ErrAccountLocked),
		errors.Is(err, ErrWeakPassword), errors.Is(err, ErrNoPendingSecondFactor):
		return ClassAuthRejected
	case errors.Is(err, ErrInviteExpired), errors.Is(err, ErrInviteInvalid):
		return ClassInviteExpired
	case errors.Is(err, ErrUnauthorized):
		return ClassUnauthorized
	case errors.Is(err, ErrServerUnavailable):
		return ClassServerUnavailable
	default:
		return ClassUnknown
	}
}

// Persistent reports whether the class must be rendered as a sticky banner rather
// than an auto-dismissing message. ServerUnavailable stays up because no flow can
// proceed; SessionDestroyed stays up because the user must log in again.
func (c ErrorClass) Persistent() bool {
	return c == ClassServerUnavailable || c == ClassSessionDestroyed
}
