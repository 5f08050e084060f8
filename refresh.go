package adminauth

import (
	"context"
	"errors"
	"time"

	"github.com/tatyanamixx/nebulahunt-admin-sub001/credstore"
)

// EnsureFresh guarantees a usable access token before an authenticated operation.
// Within the configured safety margin of the exp claim (or past it) a refresh is
// triggered; concurrent callers are coalesced into a single network request and all
// receive the same resolved token pair.
//
// A rejected refresh token is terminal: the session is destroyed and the controller
// returns to StateAnonymous. A transient network failure is surfaced as
// ErrServerUnavailable with the session kept, allowing a manual retry.
func (c *Controller) EnsureFresh(ctx context.Context) error {
	if c == nil || c.backend == nil {
		return ErrControllerNotReady
	}

	c.mu.RLock()
	session := c.session
	epoch := c.epoch
	c.mu.RUnlock()

	if session == nil {
		return ErrNoSession
	}
	if time.Until(session.ExpiresAt) > c.config.Refresh.SafetyMargin {
		return nil
	}

	return c.refreshNow(ctx, session.RefreshToken, session.User.Provider, epoch)
}

func (c *Controller) refreshNow(ctx context.Context, refreshToken, provider string, epochBefore uint64) error {
	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		callCtx, cancel := c.detachedCallCtx()
		defer cancel()
		return c.backend.Refresh(callCtx, refreshToken)
	})
	if shared {
		c.metricInc(MetricRefreshCoalesced)
	}

	if err != nil {
		c.metricInc(MetricRefreshFailure)
		c.log.Warn().Err(err).Msg("token refresh failed")
		if errors.Is(err, ErrRefreshRejected) || errors.Is(err, ErrUnauthorized) {
			c.mu.Lock()
			destroyed := false
			if c.epoch == epochBefore && c.session != nil {
				c.destroySessionLocked()
				destroyed = true
			}
			c.mu.Unlock()

			c.emitAudit(ctx, auditEventRefreshRejected, false, "", "", err)
			if destroyed {
				c.metricInc(MetricForcedLogout)
				c.emitAudit(ctx, auditEventForcedLogout, false, "", "", err)
			}
			if !errors.Is(err, ErrRefreshRejected) {
				err = wrapServerMessage(ErrRefreshRejected, err)
			}
			return err
		}

		c.emitAudit(ctx, auditEventRefreshUnavailable, false, "", "", err)
		return err
	}

	pair, ok := v.(*TokenPair)
	if !ok || pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		c.metricInc(MetricRefreshFailure)
		return wrapServerMessage(ErrServerUnavailable, errIncompleteTokenPair)
	}

	c.mu.Lock()
	if c.epoch != epochBefore || c.session == nil {
		// A logout completed while the refresh was in flight. Logout wins; the
		// fresh pair is discarded rather than resurrecting the session.
		c.mu.Unlock()
		return ErrNoSession
	}
	c.creds.Set(credstore.KeyAccessToken, pair.AccessToken)
	c.creds.Set(credstore.KeyRefreshToken, pair.RefreshToken)
	c.session = &Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userFromClaims(pair.AccessToken, provider),
		ExpiresAt:    tokenExpiry(pair.AccessToken),
	}
	c.mu.Unlock()

	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(ctx, auditEventRefreshSuccess, true, "", "", nil)
	return nil
}

// accessTokenForRequest returns a fresh access token for an authenticated backend
// call, refreshing first when needed.
func (c *Controller) accessTokenForRequest(ctx context.Context) (string, error) {
	if err := c.EnsureFresh(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", ErrNoSession
	}
	return c.session.AccessToken, nil
}
