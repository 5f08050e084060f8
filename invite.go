package adminauth

import (
	"context"
	"errors"
)

var (
	errEmptyInviteToken = errors.New("invite token required")
	errEmptyPassword    = errors.New("password required")
)

// ValidateInvite checks an invitation token against the backend and returns its
// target identity. There is no client-side caching: invite state can change out of
// band (concurrent acceptance, revocation), so every render of the registration
// entry point re-validates. The call is bounded by Invite.ValidateTimeout; exceeding
// it classifies as ErrServerUnavailable.
func (c *Controller) ValidateInvite(ctx context.Context, token string) (*InviteClaims, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}
	if token == "" {
		return nil, wrapServerMessage(ErrValidation, errEmptyInviteToken)
	}
	return c.validateInvite(ctx, token)
}

func (c *Controller) validateInvite(ctx context.Context, token string) (*InviteClaims, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.Invite.ValidateTimeout)
	defer cancel()

	claims, err := c.backend.ValidateInvite(callCtx, token)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrServerUnavailable) {
			err = wrapServerMessage(ErrServerUnavailable, err)
		}
		c.metricInc(MetricInviteRejected)
		c.emitAudit(ctx, auditEventInviteRejected, false, "", string(FlowRegistration), err)
		return nil, err
	}

	c.metricInc(MetricInviteValidated)
	c.emitAudit(ctx, auditEventInviteValidated, true, claims.Email, string(FlowRegistration), nil)
	return claims, nil
}

// SendInvite issues a new invitation for a named person and role. Requires an
// authenticated session; an Unauthorized answer is surfaced but does not by itself
// destroy an otherwise valid session.
func (c *Controller) SendInvite(ctx context.Context, email, name, role string) error {
	if c == nil || c.backend == nil {
		return ErrControllerNotReady
	}
	if email == "" || role == "" {
		return wrapServerMessage(ErrValidation, errors.New("email and role required"))
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	accessToken, err := c.accessTokenForRequest(ctx)
	if err != nil {
		return err
	}

	if err := c.backend.SendInvite(ctx, accessToken, email, name, role); err != nil {
		c.emitAudit(ctx, auditEventInviteSent, false, email, "", err)
		return err
	}

	c.emitAudit(ctx, auditEventInviteSent, true, email, "", nil)
	return nil
}
