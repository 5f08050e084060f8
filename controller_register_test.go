package adminauth

import (
	"context"
	"errors"
	"testing"

	"github.com/tatyanamixx/nebulahunt-admin-sub001/credstore"
)

func TestRegisterWithInviteHappyPath(t *testing.T) {
	fb := newFakeBackend()
	fb.validateInvite = func(ctx context.Context, token string) (*InviteClaims, error) {
		if token != "inv-abc" {
			t.Errorf("unexpected invite token %q", token)
		}
		return &InviteClaims{Email: "bob@nebulahunt.io", Name: "Bob", Role: "admin"}, nil
	}
	fb.register = func(ctx context.Context, email, password, name, inviteToken string) (*TOTPProvision, error) {
		if email != "bob@nebulahunt.io" || name != "Bob" {
			t.Errorf("profile must come from the invite, got %q/%q", email, name)
		}
		return &TOTPProvision{Secret: "SECRET", URI: "otpauth://totp/bob"}, nil
	}
	fb.completeRegistration = func(ctx context.Context, email, code, inviteToken string) (*TokenPair, error) {
		if inviteToken != "inv-abc" {
			t.Errorf("completion must carry the invite token, got %q", inviteToken)
		}
		return freshPair(t, email), nil
	}
	controller, store := newTestController(t, fb)

	provision, err := controller.RegisterWithInvite(context.Background(), "inv-abc", RegistrationProfile{Password: "hunter2!"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if provision.Secret != "SECRET" {
		t.Fatalf("unexpected provision: %+v", provision)
	}
	if controller.State() != StateAwaitingSecondFactor {
		t.Fatalf("expected awaiting second factor, got %s", controller.State())
	}
	if _, ok := store.Get(credstore.KeyPendingPassword); !ok {
		t.Fatal("expected pending context persisted")
	}

	session, err := controller.CompleteTwoFactor(context.Background(), "123456")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if session == nil || session.User.Email != "bob@nebulahunt.io" {
		t.Fatalf("expected authenticated session for bob, got %+v", session)
	}
	if controller.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", controller.State())
	}
}

func TestRegisterExpiredInviteNeverSubmitsProfile(t *testing.T) {
	fb := newFakeBackend()
	fb.validateInvite = func(ctx context.Context, token string) (*InviteClaims, error) {
		return nil, ErrInviteExpired
	}
	controller, _ := newTestController(t, fb)

	_, err := controller.RegisterWithInvite(context.Background(), "inv-old", RegistrationProfile{Password: "hunter2!"})
	if !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired, got %v", err)
	}
	if got := fb.callCount("Register"); got != 0 {
		t.Fatalf("profile must not be submitted on an expired invite, got %d Register calls", got)
	}
	if controller.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", controller.State())
	}
}

func TestRegisterWeakPasswordAllowsRetry(t *testing.T) {
	fb := newFakeBackend()
	fb.validateInvite = func(ctx context.Context, token string) (*InviteClaims, error) {
		return &InviteClaims{Email: "bob@nebulahunt.io", Role: "admin"}, nil
	}
	fb.register = func(ctx context.Context, email, password, name, inviteToken string) (*TOTPProvision, error) {
		return nil, ErrWeakPassword
	}
	controller, _ := newTestController(t, fb)

	_, err := controller.RegisterWithInvite(context.Background(), "inv-abc", RegistrationProfile{Password: "123"})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if controller.State() != StateAnonymous {
		t.Fatalf("expected anonymous for retry, got %s", controller.State())
	}
}

func TestRegisterConfirmationOnlyBackendSettlesAnonymous(t *testing.T) {
	fb := newFakeBackend()
	fb.validateInvite = func(ctx context.Context, token string) (*InviteClaims, error) {
		return &InviteClaims{Email: "bob@nebulahunt.io", Role: "admin"}, nil
	}
	fb.register = func(ctx context.Context, email, password, name, inviteToken string) (*TOTPProvision, error) {
		return &TOTPProvision{Secret: "SECRET", URI: "otpauth://totp/bob"}, nil
	}
	fb.completeRegistration = func(ctx context.Context, email, code, inviteToken string) (*TokenPair, error) {
		return nil, nil
	}
	controller, store := newTestController(t, fb)

	if _, err := controller.RegisterWithInvite(context.Background(), "inv-abc", RegistrationProfile{Password: "hunter2!"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	session, err := controller.CompleteTwoFactor(context.Background(), "123456")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if session != nil {
		t.Fatalf("confirmation-only completion must not produce a session, got %+v", session)
	}
	if controller.State() != StateAnonymous {
		t.Fatalf("expected anonymous after confirmation-only completion, got %s", controller.State())
	}
	if store.Len() != 0 {
		t.Fatalf("expected store cleared, %d keys remain", store.Len())
	}
}

func TestValidateInviteEmptyToken(t *testing.T) {
	fb := newFakeBackend()
	controller, _ := newTestController(t, fb)

	if _, err := controller.ValidateInvite(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := fb.callCount("ValidateInvite"); got != 0 {
		t.Fatalf("empty token must not hit the network, got %d calls", got)
	}
}

func TestSendInviteRequiresSession(t *testing.T) {
	fb := newFakeBackend()
	controller, _ := newTestController(t, fb)

	err := controller.SendInvite(context.Background(), "new@nebulahunt.io", "New Admin", "admin")
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSendInviteUnauthorizedKeepsSession(t *testing.T) {
	fb := newFakeBackend()
	fb.loginPassword = func(ctx context.Context, email, password string) (*LoginReply, error) {
		return &LoginReply{Tokens: freshPair(t, email)}, nil
	}
	fb.sendInvite = func(ctx context.Context, accessToken, email, name, role string) error {
		return ErrUnauthorized
	}
	controller, _ := newTestController(t, fb)
	if _, err := controller.LoginWithPassword(context.Background(), "alice@nebulahunt.io", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	err := controller.SendInvite(context.Background(), "new@nebulahunt.io", "New Admin", "viewer")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if controller.State() != StateAuthenticated {
		t.Fatalf("an unauthorized invite must not destroy the session, got %s", controller.State())
	}
}
