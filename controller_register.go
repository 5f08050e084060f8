package adminauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RegisterWithInvite runs the invite-gated registration flow. The invite is
// re-validated immediately before registration — invite state can change out of
// band — and an expired or consumed token fails here without the profile ever being
// submitted. On success the backend returns a TOTP provision and the controller
// parks in StateAwaitingSecondFactor; [Controller.CompleteTwoFactor] finishes the
// flow.
func (c *Controller) RegisterWithInvite(
	ctx context.Context,
	token string,
	profile RegistrationProfile,
) (*TOTPProvision, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}
	if token == "" {
		return nil, wrapServerMessage(ErrValidation, errEmptyInviteToken)
	}
	if profile.Password == "" {
		return nil, wrapServerMessage(ErrValidation, errEmptyPassword)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.beginTransient(StateAuthenticating)

	claims, err := c.validateInvite(ctx, token)
	if err != nil {
		c.settleAnonymous()
		return nil, err
	}

	name := profile.Name
	if name == "" {
		name = claims.Name
	}

	provision, err := c.backend.Register(ctx, claims.Email, profile.Password, name, token)
	if err != nil {
		c.settleAnonymous()
		c.emitAudit(ctx, auditEventRegistrationStarted, false, claims.Email, string(FlowRegistration), err)
		return nil, err
	}

	pending := &PendingAuthContext{
		ID:          uuid.NewString(),
		Kind:        PendingPassword,
		Flow:        FlowRegistration,
		Email:       claims.Email,
		InviteToken: token,
		IssuedAt:    time.Now().Unix(),
	}
	if err := savePending(c.creds, pending); err != nil {
		c.settleAnonymous()
		return nil, wrapServerMessage(ErrServerUnavailable, err)
	}

	c.mu.Lock()
	c.pending = pending
	c.state = StateAwaitingSecondFactor
	c.mu.Unlock()

	c.metricInc(MetricRegistrationStarted)
	c.emitAudit(ctx, auditEventRegistrationStarted, true, claims.Email, string(FlowRegistration), nil)
	return provision, nil
}
