package adminauth

import (
	"context"
	"errors"
	"testing"
)

func TestBootstrapSupervisorFullScenario(t *testing.T) {
	fb := newFakeBackend()
	fb.bootstrapSupervisor = func(ctx context.Context) (*TOTPProvision, error) {
		return &TOTPProvision{Secret: "SUPERSECRET", URI: "otpauth://totp/supervisor"}, nil
	}
	fb.verifyLogin2FA = func(ctx context.Context, email, code string) (*TokenPair, error) {
		if email != "supervisor" {
			t.Errorf("supervisor verification must use the fixed identity, got %q", email)
		}
		if code != "234567" {
			return nil, ErrAuthRejected
		}
		return freshPair(t, "supervisor"), nil
	}
	controller, _ := newTestController(t, fb)

	provision, err := controller.BootstrapSupervisor(context.Background())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if provision.URI == "" {
		t.Fatal("expected enrollment URI for the QR code")
	}
	if controller.State() != StateAwaitingSecondFactor {
		t.Fatalf("expected awaiting second factor, got %s", controller.State())
	}

	// A wrong code keeps the enrollment open for another attempt.
	if _, err := controller.CompleteTwoFactor(context.Background(), "000000"); !errors.Is(err, ErrAuthRejected) {
		t.Fatalf("expected ErrAuthRejected, got %v", err)
	}
	if controller.State() != StateAwaitingSecondFactor {
		t.Fatalf("wrong code must not abandon the enrollment, got %s", controller.State())
	}

	session, err := controller.CompleteTwoFactor(context.Background(), "234567")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if session == nil || session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatalf("expected both tokens issued, got %+v", session)
	}
	if controller.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", controller.State())
	}
}

func TestBootstrapSupervisorAlreadyInitialized(t *testing.T) {
	fb := newFakeBackend()
	fb.bootstrapSupervisor = func(ctx context.Context) (*TOTPProvision, error) {
		return nil, ErrAlreadyInitialized
	}
	controller, _ := newTestController(t, fb)

	if _, err := controller.BootstrapSupervisor(context.Background()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
	if controller.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", controller.State())
	}
}

func TestBootstrapAdminRequiresSecretKey(t *testing.T) {
	fb := newFakeBackend()
	controller, _ := newTestController(t, fb)

	if _, err := controller.BootstrapAdmin(context.Background(), "alice@nebulahunt.io", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := fb.callCount("BootstrapAdmin"); got != 0 {
		t.Fatalf("missing secret key must not hit the network, got %d calls", got)
	}
}

func TestBootstrapAdminParksPendingContext(t *testing.T) {
	fb := newFakeBackend()
	fb.bootstrapAdmin = func(ctx context.Context, email, secretKey string) (*TOTPProvision, error) {
		if secretKey != "deploy-key" {
			t.Errorf("unexpected secret key %q", secretKey)
		}
		return &TOTPProvision{Secret: "S", URI: "otpauth://totp/alice"}, nil
	}
	controller, _ := newTestController(t, fb)

	if _, err := controller.BootstrapAdmin(context.Background(), "alice@nebulahunt.io", "deploy-key"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	pending := controller.PendingSecondFactor()
	if pending == nil || pending.Flow != FlowBootstrap || pending.Email != "alice@nebulahunt.io" {
		t.Fatalf("expected bootstrap pending context for alice, got %+v", pending)
	}
}
