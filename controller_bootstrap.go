package adminauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BootstrapAdmin provisions the first-time TOTP enrollment for an admin account
// using the deployment secret key. The controller parks in
// StateAwaitingSecondFactor; scanning the returned URI and completing
// [Controller.CompleteTwoFactor] finishes the bootstrap and issues a session.
func (c *Controller) BootstrapAdmin(ctx context.Context, email, secretKey string) (*TOTPProvision, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}
	if email == "" || secretKey == "" {
		return nil, wrapServerMessage(ErrValidation, errEmptyCredentials)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.beginTransient(StateAuthenticating)

	provision, err := c.backend.BootstrapAdmin(ctx, email, secretKey)
	if err != nil {
		c.settleAnonymous()
		c.emitAudit(ctx, auditEventBootstrapAdmin, false, email, string(FlowBootstrap), err)
		return nil, err
	}

	if err := c.parkBootstrap(email); err != nil {
		return nil, err
	}

	c.metricInc(MetricBootstrapStarted)
	c.emitAudit(ctx, auditEventBootstrapAdmin, true, email, string(FlowBootstrap), nil)
	return provision, nil
}

// BootstrapSupervisor provisions the one-time supervisor enrollment. It fails with
// ErrAlreadyInitialized once a supervisor exists.
func (c *Controller) BootstrapSupervisor(ctx context.Context) (*TOTPProvision, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.beginTransient(StateAuthenticating)

	provision, err := c.backend.BootstrapSupervisor(ctx)
	if err != nil {
		c.settleAnonymous()
		c.emitAudit(ctx, auditEventBootstrapSupervisor, false, "", string(FlowBootstrap), err)
		return nil, err
	}

	if err := c.parkBootstrap(supervisorEmail); err != nil {
		return nil, err
	}

	c.metricInc(MetricBootstrapStarted)
	c.emitAudit(ctx, auditEventBootstrapSupervisor, true, supervisorEmail, string(FlowBootstrap), nil)
	return provision, nil
}

// supervisorEmail is the fixed identity the backend uses for the supervisor
// account's second-factor verification.
const supervisorEmail = "supervisor"

func (c *Controller) parkBootstrap(email string) error {
	pending := &PendingAuthContext{
		ID:       uuid.NewString(),
		Kind:     PendingPassword,
		Flow:     FlowBootstrap,
		Email:    email,
		IssuedAt: time.Now().Unix(),
	}
	if err := savePending(c.creds, pending); err != nil {
		c.settleAnonymous()
		return wrapServerMessage(ErrServerUnavailable, err)
	}

	c.mu.Lock()
	c.pending = pending
	c.state = StateAwaitingSecondFactor
	c.mu.Unlock()
	return nil
}
