package adminauth

import "context"

// BeginTOTPSetup requests a fresh TOTP provision for the authenticated admin. Each
// explicit call may rotate an unconfirmed secret; a confirmed secret is never
// rotated implicitly — the caller must disable first.
func (c *Controller) BeginTOTPSetup(ctx context.Context) (*TOTPProvision, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	accessToken, email, err := c.authedIdentity(ctx)
	if err != nil {
		return nil, err
	}

	provision, err := c.backend.SetupTOTP(ctx, accessToken, email)
	if err != nil {
		c.emitAudit(ctx, auditEventTOTPSetupRequested, false, email, "", err)
		return nil, err
	}

	c.emitAudit(ctx, auditEventTOTPSetupRequested, true, email, "", nil)
	return provision, nil
}

// ConfirmTOTPSetup submits the first code for a provision requested through
// [Controller.BeginTOTPSetup], flipping the account's enrollment to enabled. This
// is the existing-admin enable path; login-time codes go through
// [Controller.CompleteTwoFactor] instead.
func (c *Controller) ConfirmTOTPSetup(ctx context.Context, code string) error {
	if c == nil || c.backend == nil {
		return ErrControllerNotReady
	}
	if !validTOTPCode(code, c.config.TOTP.Digits) {
		c.metricInc(MetricMalformedCodeRejected)
		return ErrMalformedCode
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	accessToken, email, err := c.authedIdentity(ctx)
	if err != nil {
		return err
	}

	if err := c.backend.ConfirmTOTPEnable(ctx, accessToken, email, code); err != nil {
		c.emitAudit(ctx, auditEventTOTPEnabled, false, email, "", err)
		return err
	}

	c.emitAudit(ctx, auditEventTOTPEnabled, true, email, "", nil)
	return nil
}

// FetchTOTPInfo redisplays the enrollment for an already-provisioned account, e.g.
// to re-render the QR code. Accounts with nothing provisioned fail with
// ErrTOTPNotProvisioned; the secret is never revealed for them.
func (c *Controller) FetchTOTPInfo(ctx context.Context) (*TOTPInfo, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	accessToken, err := c.accessTokenForRequest(ctx)
	if err != nil {
		return nil, err
	}

	return c.backend.TOTPInfo(ctx, accessToken)
}

// DisableTOTP turns the second factor off for the authenticated admin. This is an
// irreversible security downgrade, so the confirm hook must return true before any
// request is issued; declining aborts with ErrDisableNotConfirmed.
func (c *Controller) DisableTOTP(ctx context.Context, confirm ConfirmFunc) error {
	if c == nil || c.backend == nil {
		return ErrControllerNotReady
	}
	if confirm == nil || !confirm() {
		return ErrDisableNotConfirmed
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	accessToken, email, err := c.authedIdentity(ctx)
	if err != nil {
		return err
	}

	if err := c.backend.DisableTOTP(ctx, accessToken, email); err != nil {
		c.emitAudit(ctx, auditEventTOTPDisabled, false, email, "", err)
		return err
	}

	c.emitAudit(ctx, auditEventTOTPDisabled, true, email, "", nil)
	return nil
}

// authedIdentity returns a fresh access token plus the session email. Caller holds
// opMu.
func (c *Controller) authedIdentity(ctx context.Context) (accessToken, email string, err error) {
	if err := c.EnsureFresh(ctx); err != nil {
		return "", "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", "", ErrNoSession
	}
	return c.session.AccessToken, c.session.User.Email, nil
}
