package adminauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LoginWithPassword runs the password first factor. Without TOTP on the account the
// controller moves Anonymous -> Authenticated directly and no pending context is
// created; with TOTP it parks in StateAwaitingSecondFactor until
// [Controller.CompleteTwoFactor] succeeds.
func (c *Controller) LoginWithPassword(ctx context.Context, email, password string) (*LoginOutcome, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}
	if email == "" || password == "" {
		return nil, wrapServerMessage(ErrValidation, errEmptyCredentials)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.beginTransient(StateAuthenticating)

	callCtx, cancel := c.detachedCallCtx()
	reply, err := c.backend.LoginPassword(callCtx, email, password)
	cancel()
	if err != nil {
		c.settleAnonymous()
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, email, string(FlowLogin), err)
		return nil, err
	}

	return c.settleFirstFactor(ctx, reply, PendingPassword, email, "")
}

// LoginWithOAuth runs the OAuth first factor with a provider assertion obtained out
// of band (see the oauth subpackage). The backend either issues tokens directly or
// demands the TOTP second factor like the password path.
func (c *Controller) LoginWithOAuth(ctx context.Context, providerAssertion string) (*LoginOutcome, error) {
	if c == nil || c.backend == nil {
		return nil, ErrControllerNotReady
	}
	if providerAssertion == "" {
		return nil, wrapServerMessage(ErrValidation, errEmptyAssertion)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.beginTransient(StateAuthenticating)

	callCtx, cancel := c.detachedCallCtx()
	reply, err := c.backend.LoginOAuth(callCtx, providerAssertion)
	cancel()
	if err != nil {
		c.settleAnonymous()
		c.metricInc(MetricOAuthLoginFailure)
		c.emitAudit(ctx, auditEventOAuthLoginFailure, false, "", string(FlowLogin), err)
		return nil, err
	}

	provider := reply.Provider
	if provider == "" {
		provider = c.config.OAuth.Provider
	}
	return c.settleFirstFactor(ctx, reply, PendingOAuth, reply.Email, provider)
}

// settleFirstFactor applies a successful first-factor reply: adopt tokens, or
// persist exactly one pending context and await the second factor. Caller holds opMu.
func (c *Controller) settleFirstFactor(
	ctx context.Context,
	reply *LoginReply,
	kind PendingKind,
	email string,
	provider string,
) (*LoginOutcome, error) {
	oauth := kind == PendingOAuth

	if reply.SecondFactorRequired {
		if reply.Email != "" {
			email = reply.Email
		}
		pending := &PendingAuthContext{
			ID:       uuid.NewString(),
			Kind:     kind,
			Flow:     FlowLogin,
			Email:    email,
			Provider: provider,
			IssuedAt: time.Now().Unix(),
		}
		if err := savePending(c.creds, pending); err != nil {
			c.settleAnonymous()
			return nil, wrapServerMessage(ErrServerUnavailable, err)
		}

		c.mu.Lock()
		c.pending = pending
		c.state = StateAwaitingSecondFactor
		c.mu.Unlock()

		c.metricInc(MetricSecondFactorRequired)
		c.emitAudit(ctx, auditEventSecondFactorRequired, true, email, string(FlowLogin), nil)
		return &LoginOutcome{SecondFactorRequired: true}, nil
	}

	if reply.Tokens == nil || reply.Tokens.AccessToken == "" || reply.Tokens.RefreshToken == "" {
		// The backend broke its own contract; nothing usable to install.
		c.settleAnonymous()
		return nil, wrapServerMessage(ErrServerUnavailable, errIncompleteTokenPair)
	}

	session := c.adoptTokens(reply.Tokens, provider)

	if oauth {
		c.metricInc(MetricOAuthLoginSuccess)
		c.emitAudit(ctx, auditEventOAuthLoginSuccess, true, session.User.Email, string(FlowLogin), nil)
	} else {
		c.metricInc(MetricLoginSuccess)
		c.emitAudit(ctx, auditEventLoginSuccess, true, session.User.Email, string(FlowLogin), nil)
	}
	return &LoginOutcome{Session: session}, nil
}
