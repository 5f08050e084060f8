package adminauth

import (
	"context"
	"time"
)

// CompleteTwoFactor submits the six-digit one-time code for whichever flow is
// pending. A code of any other shape fails fast client-side as ErrMalformedCode
// without a network round trip. A rejected code keeps the controller in
// StateAwaitingSecondFactor so the user can retry.
//
// On success the returned session is non-nil except for a registration flow whose
// backend confirms without issuing tokens; that flow settles in StateAnonymous and
// the user logs in normally.
func (c *Controller) CompleteTwoFactor(ctx context.Context, code string) (*Session, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}
	if !validTOTPCode(code, c.config.TOTP.Digits) {
		c.metricInc(MetricMalformedCodeRejected)
		return nil, ErrMalformedCode
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	pending, err := c.currentPending(ctx)
	if err != nil {
		return nil, err
	}

	switch pending.Flow {
	case FlowRegistration:
		return c.completeRegistrationSecondFactor(ctx, pending, code)
	default:
		return c.completeLoginSecondFactor(ctx, pending, code)
	}
}

// CancelTwoFactor abandons the pending second factor ("back to login options").
// The pending context is discarded and the controller returns to StateAnonymous.
func (c *Controller) CancelTwoFactor(ctx context.Context) error {
	if c == nil {
		return ErrControllerNotReady
	}
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	clearPending(c.creds)
	c.pending = nil
	if c.state == StateAwaitingSecondFactor {
		c.state = StateAnonymous
	}
	c.mu.Unlock()

	c.emitAudit(ctx, auditEventSecondFactorCancelled, true, "", "", nil)
	return nil
}

// currentPending returns the pending context for the second-factor step, resetting
// the controller to StateAnonymous when the state says a second factor is due but
// the context is missing or stale — that record is corrupt, not trustworthy.
// Caller holds opMu.
func (c *Controller) currentPending(ctx context.Context) (*PendingAuthContext, error) {
	c.mu.Lock()

	if c.state != StateAwaitingSecondFactor {
		c.mu.Unlock()
		return nil, ErrNoPendingSecondFactor
	}

	p := c.pending
	if p != nil {
		age := time.Since(time.Unix(p.IssuedAt, 0))
		if p.IssuedAt <= 0 || age > c.config.Pending.MaxAge {
			p = nil
		}
	}
	if p == nil {
		clearPending(c.creds)
		c.pending = nil
		c.state = StateAnonymous
		// Emit only after releasing c.mu; emitAudit reads the state through the
		// same mutex.
		c.mu.Unlock()
		c.metricInc(MetricStaleContextDiscarded)
		c.emitAudit(ctx, auditEventStaleContextDiscarded, false, "", "", ErrNoPendingSecondFactor)
		return nil, ErrNoPendingSecondFactor
	}

	out := *p
	c.mu.Unlock()
	return &out, nil
}

func (c *Controller) completeLoginSecondFactor(
	ctx context.Context,
	pending *PendingAuthContext,
	code string,
) (*Session, error) {
	callCtx, cancel := c.detachedCallCtx()
	tokens, err := c.backend.VerifyLogin2FA(callCtx, pending.Email, code)
	cancel()
	if err != nil {
		// Rejected or unreachable: stay in StateAwaitingSecondFactor, retry allowed.
		c.metricInc(MetricSecondFactorFailure)
		c.emitAudit(ctx, auditEventSecondFactorFailure, false, pending.Email, string(pending.Flow), err)
		return nil, err
	}
	if tokens == nil || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		c.metricInc(MetricSecondFactorFailure)
		return nil, wrapServerMessage(ErrServerUnavailable, errIncompleteTokenPair)
	}

	session := c.adoptTokens(tokens, pending.Provider)

	c.metricInc(MetricSecondFactorSuccess)
	c.emitAudit(ctx, auditEventSecondFactorSuccess, true, pending.Email, string(pending.Flow), nil)
	return session, nil
}

func (c *Controller) completeRegistrationSecondFactor(
	ctx context.Context,
	pending *PendingAuthContext,
	code string,
) (*Session, error) {
	callCtx, cancel := c.detachedCallCtx()
	tokens, err := c.backend.CompleteRegistration(callCtx, pending.Email, code, pending.InviteToken)
	cancel()
	if err != nil {
		c.metricInc(MetricSecondFactorFailure)
		c.emitAudit(ctx, auditEventSecondFactorFailure, false, pending.Email, string(FlowRegistration), err)
		return nil, err
	}

	c.metricInc(MetricSecondFactorSuccess)
	c.metricInc(MetricRegistrationCompleted)
	c.emitAudit(ctx, auditEventRegistrationCompleted, true, pending.Email, string(FlowRegistration), nil)

	if tokens != nil && tokens.AccessToken != "" && tokens.RefreshToken != "" {
		return c.adoptTokens(tokens, ""), nil
	}

	// Confirmation-only backend: registration is done but no session was issued.
	c.mu.Lock()
	clearPending(c.creds)
	c.pending = nil
	c.state = StateAnonymous
	c.mu.Unlock()
	return nil, nil
}

// validTOTPCode enforces the client-side code shape: exactly digits ASCII digits.
func validTOTPCode(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
