package adminauth

import (
	"context"
	"time"
)

// AuthState represents the controller's externally observable authentication state.
//
// StateAnonymous and StateAuthenticated are the only terminal states; the two
// transient states are never left active across a restart without a recovery check.
type AuthState uint8

const (
	// StateAnonymous is an exported constant or variable used by the session controller.
	StateAnonymous AuthState = iota
	// StateAuthenticating is an exported constant or variable used by the session controller.
	StateAuthenticating
	// StateAwaitingSecondFactor is an exported constant or variable used by the session controller.
	StateAwaitingSecondFactor
	// StateAuthenticated is an exported constant or variable used by the session controller.
	StateAuthenticated
)

// String describes the string operation and its observable behavior.
func (s AuthState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAwaitingSecondFactor:
		return "awaiting_second_factor"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// User is the authenticated admin identity, rebuilt from access-token claims so it
// survives a restart without an extra profile endpoint.
type User struct {
	ID       string
	Email    string
	Role     string
	Provider string
}

// Session is the full authenticated session owned by the [Controller]. The
// credential store only ever persists the two raw token strings; the rest is
// derived. AccessToken and RefreshToken are always set or cleared together.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
	ExpiresAt    time.Time
}

// PendingKind discriminates which first factor produced a [PendingAuthContext].
type PendingKind string

const (
	// PendingOAuth is an exported constant or variable used by the session controller.
	PendingOAuth PendingKind = "oauth"
	// PendingPassword is an exported constant or variable used by the session controller.
	PendingPassword PendingKind = "password"
)

// PendingFlow identifies which completion contract a pending second factor maps to.
// Each flow hits a different backend endpoint with an identical client-side shape.
type PendingFlow string

const (
	// FlowLogin is an exported constant or variable used by the session controller.
	FlowLogin PendingFlow = "login"
	// FlowRegistration is an exported constant or variable used by the session controller.
	FlowRegistration PendingFlow = "registration"
	// FlowBootstrap is an exported constant or variable used by the session controller.
	FlowBootstrap PendingFlow = "bootstrap"
)

// PendingAuthContext bridges a first-factor success to the second-factor step. It is
// persisted so the step survives a restart, and validated on every read: a malformed
// or stale record is treated as absent. At most one exists at a time.
type PendingAuthContext struct {
	ID          string      `json:"id"`
	Kind        PendingKind `json:"kind"`
	Flow        PendingFlow `json:"flow"`
	Email       string      `json:"email"`
	Provider    string      `json:"provider,omitempty"`
	InviteToken string      `json:"invite_token,omitempty"`
	IssuedAt    int64       `json:"issued_at"`
}

// InviteStatus is the server-reported lifecycle state of an invitation. Transitions
// are monotonic: PENDING moves to ACCEPTED or EXPIRED and never back.
type InviteStatus string

const (
	// InvitePending is an exported constant or variable used by the session controller.
	InvitePending InviteStatus = "PENDING"
	// InviteAccepted is an exported constant or variable used by the session controller.
	InviteAccepted InviteStatus = "ACCEPTED"
	// InviteExpired is an exported constant or variable used by the session controller.
	InviteExpired InviteStatus = "EXPIRED"
)

// InviteClaims is the validated target of an invitation token.
type InviteClaims struct {
	Email string
	Name  string
	Role  string
}

// TOTPProvision holds the shared secret and otpauth:// URI returned by enrollment
// operations. The URI is rendered as a QR code by the panel's external image
// endpoint; this package never draws it.
type TOTPProvision struct {
	Secret string
	URI    string
}

// TOTPInfo is the enrollment status of an already-provisioned account.
type TOTPInfo struct {
	Secret  string
	URI     string
	Enabled bool
}

// TokenPair carries an access/refresh token pair as issued by the backend.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginReply is the backend's answer to a first-factor attempt: either a token pair
// or a second-factor demand, never both.
type LoginReply struct {
	Tokens               *TokenPair
	SecondFactorRequired bool
	Email                string
	Provider             string
}

// LoginOutcome is returned by the first-factor controller operations.
type LoginOutcome struct {
	SecondFactorRequired bool
	Session              *Session
}

// RegistrationProfile is the local input to [Controller.RegisterWithInvite]. Email,
// name, and role come from the validated invite, not from the user.
type RegistrationProfile struct {
	Name     string
	Password string
}

// ConfirmFunc gates irreversible security downgrades. [Controller.DisableTOTP]
// calls it before issuing the request; returning false aborts the operation.
type ConfirmFunc func() bool

// Backend is the admin API surface consumed by the [Controller]. The production
// implementation lives in the api subpackage; tests substitute a fake. Every method
// maps errors into this package's sentinels before returning.
type Backend interface {
	BootstrapAdmin(ctx context.Context, email, secretKey string) (*TOTPProvision, error)
	BootstrapSupervisor(ctx context.Context) (*TOTPProvision, error)
	LoginPassword(ctx context.Context, email, password string) (*LoginReply, error)
	LoginOAuth(ctx context.Context, assertion string) (*LoginReply, error)
	VerifyLogin2FA(ctx context.Context, email, code string) (*TokenPair, error)
	SetupTOTP(ctx context.Context, accessToken, email string) (*TOTPProvision, error)
	TOTPInfo(ctx context.Context, accessToken string) (*TOTPInfo, error)
	ConfirmTOTPEnable(ctx context.Context, accessToken, email, code string) error
	DisableTOTP(ctx context.Context, accessToken, email string) error
	SendInvite(ctx context.Context, accessToken, email, name, role string) error
	ValidateInvite(ctx context.Context, token string) (*InviteClaims, error)
	Register(ctx context.Context, email, password, name, inviteToken string) (*TOTPProvision, error)
	CompleteRegistration(ctx context.Context, email, code, inviteToken string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}
