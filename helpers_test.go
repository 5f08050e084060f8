package adminauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tatyanamixx/nebulahunt-admin-sub001/credstore"
)

// fakeBackend implements Backend with per-method hooks and call counting. Methods
// without a hook fail loudly so a test never silently exercises an endpoint it did
// not mean to.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	bootstrapAdmin       func(ctx context.Context, email, secretKey string) (*TOTPProvision, error)
	bootstrapSupervisor  func(ctx context.Context) (*TOTPProvision, error)
	loginPassword        func(ctx context.Context, email, password string) (*LoginReply, error)
	loginOAuth           func(ctx context.Context, assertion string) (*LoginReply, error)
	verifyLogin2FA       func(ctx context.Context, email, code string) (*TokenPair, error)
	setupTOTP            func(ctx context.Context, accessToken, email string) (*TOTPProvision, error)
	totpInfo             func(ctx context.Context, accessToken string) (*TOTPInfo, error)
	confirmTOTPEnable    func(ctx context.Context, accessToken, email, code string) error
	disableTOTP          func(ctx context.Context, accessToken, email string) error
	sendInvite           func(ctx context.Context, accessToken, email, name, role string) error
	validateInvite       func(ctx context.Context, token string) (*InviteClaims, error)
	register             func(ctx context.Context, email, password, name, inviteToken string) (*TOTPProvision, error)
	completeRegistration func(ctx context.Context, email, code, inviteToken string) (*TokenPair, error)
	refresh              func(ctx context.Context, refreshToken string) (*TokenPair, error)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(map[string]int)}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) BootstrapAdmin(ctx context.Context, email, secretKey string) (*TOTPProvision, error) {
	f.record("BootstrapAdmin")
	if f.bootstrapAdmin == nil {
		panic("unexpected BootstrapAdmin call")
	}
	return f.bootstrapAdmin(ctx, email, secretKey)
}

func (f *fakeBackend) BootstrapSupervisor(ctx context.Context) (*TOTPProvision, error) {
	f.record("BootstrapSupervisor")
	if f.bootstrapSupervisor == nil {
		panic("unexpected BootstrapSupervisor call")
	}
	return f.bootstrapSupervisor(ctx)
}

func (f *fakeBackend) LoginPassword(ctx context.Context, email, password string) (*LoginReply, error) {
	f.record("LoginPassword")
	if f.loginPassword == nil {
		panic("unexpected LoginPassword call")
	}
	return f.loginPassword(ctx, email, password)
}

func (f *fakeBackend) LoginOAuth(ctx context.Context, assertion string) (*LoginReply, error) {
	f.record("LoginOAuth")
	if f.loginOAuth == nil {
		panic("unexpected LoginOAuth call")
	}
	return f.loginOAuth(ctx, assertion)
}

func (f *fakeBackend) VerifyLogin2FA(ctx context.Context, email, code string) (*TokenPair, error) {
	f.record("VerifyLogin2FA")
	if f.verifyLogin2FA == nil {
		panic("unexpected VerifyLogin2FA call")
	}
	return f.verifyLogin2FA(ctx, email, code)
}

func (f *fakeBackend) SetupTOTP(ctx context.Context, accessToken, email string) (*TOTPProvision, error) {
	f.record("SetupTOTP")
	if f.setupTOTP == nil {
		panic("unexpected SetupTOTP call")
	}
	return f.setupTOTP(ctx, accessToken, email)
}

func (f *fakeBackend) TOTPInfo(ctx context.Context, accessToken string) (*TOTPInfo, error) {
	f.record("TOTPInfo")
	if f.totpInfo == nil {
		panic("unexpected TOTPInfo call")
	}
	return f.totpInfo(ctx, accessToken)
}

func (f *fakeBackend) ConfirmTOTPEnable(ctx context.Context, accessToken, email, code string) error {
	f.record("ConfirmTOTPEnable")
	if f.confirmTOTPEnable == nil {
		panic("unexpected ConfirmTOTPEnable call")
	}
	return f.confirmTOTPEnable(ctx, accessToken, email, code)
}

func (f *fakeBackend) DisableTOTP(ctx context.Context, accessToken, email string) error {
	f.record("DisableTOTP")
	if f.disableTOTP == nil {
		panic("unexpected DisableTOTP call")
	}
	return f.disableTOTP(ctx, accessToken, email)
}

func (f *fakeBackend) SendInvite(ctx context.Context, accessToken, email, name, role string) error {
	f.record("SendInvite")
	if f.sendInvite == nil {
		panic("unexpected SendInvite call")
	}
	return f.sendInvite(ctx, accessToken, email, name, role)
}

func (f *fakeBackend) ValidateInvite(ctx context.Context, token string) (*InviteClaims, error) {
	f.record("ValidateInvite")
	if f.validateInvite == nil {
		panic("unexpected ValidateInvite call")
	}
	return f.validateInvite(ctx, token)
}

func (f *fakeBackend) Register(ctx context.Context, email, password, name, inviteToken string) (*TOTPProvision, error) {
	f.record("Register")
	if f.register == nil {
		panic("unexpected Register call")
	}
	return f.register(ctx, email, password, name, inviteToken)
}

func (f *fakeBackend) CompleteRegistration(ctx context.Context, email, code, inviteToken string) (*TokenPair, error) {
	f.record("CompleteRegistration")
	if f.completeRegistration == nil {
		panic("unexpected CompleteRegistration call")
	}
	return f.completeRegistration(ctx, email, code, inviteToken)
}

func (f *fakeBackend) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	f.record("Refresh")
	if f.refresh == nil {
		panic("unexpected Refresh call")
	}
	return f.refresh(ctx, refreshToken)
}

// mintAccessToken signs a throwaway HS256 token; the controller only ever decodes
// claims without verifying, so the key is irrelevant.
func mintAccessToken(t *testing.T, email, role string, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   "u-" + email,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("mint token failed: %v", err)
	}
	return token
}

func freshPair(t *testing.T, email string) *TokenPair {
	t.Helper()
	return &TokenPair{
		AccessToken:  mintAccessToken(t, email, "admin", time.Now().Add(time.Hour)),
		RefreshToken: "refresh-" + email,
	}
}

func newTestController(t *testing.T, fb *fakeBackend) (*Controller, *credstore.Memory) {
	t.Helper()

	store := credstore.NewMemory()
	controller, err := New().
		WithBackend(fb).
		WithCredentialStore(store).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(controller.Close)

	return controller, store
}
