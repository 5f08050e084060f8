package adminauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tatyanamixx/nebulahunt-admin-sub001/credstore"
)

var (
	errEmptyCredentials    = errors.New("email and password required")
	errEmptyAssertion      = errors.New("provider assertion required")
	errIncompleteTokenPair = errors.New("backend returned an incomplete token pair")
)

// Controller defines a public type used by adminauth APIs.
//
// Controller instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Controller struct {
	config  Config
	backend Backend
	creds   credstore.Store
	audit   *auditDispatcher
	metrics *Metrics
	log     zerolog.Logger

	// opMu serializes mutating flows against the same session. A Logout issued
	// while a CompleteTwoFactor call is in flight is honored only after that call
	// resolves; the epoch guard then keeps the late result from resurrecting
	// anything. Refresh is the one deliberate exception (see refresh.go).
	opMu sync.Mutex

	// mu guards the observable state below. It is never held across a network
	// call, so State() reflects the pre-call state while a flow is suspended.
	mu      sync.RWMutex
	state   AuthState
	session *Session
	pending *PendingAuthContext
	epoch   uint64

	refreshGroup singleflight.Group
}

// State returns the controller's current authentication state.
func (c *Controller) State() AuthState {
	if c == nil {
		return StateAnonymous
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CurrentSession returns a copy of the active session, or nil when no session
// exists. The copy is safe to hand to the UI layer.
func (c *Controller) CurrentSession() *Session {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	out := *c.session
	return &out
}

// PendingSecondFactor returns a copy of the pending context bridging the first
// factor to the second, or nil outside that window.
func (c *Controller) PendingSecondFactor() *PendingAuthContext {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.pending == nil {
		return nil
	}
	out := *c.pending
	return &out
}

// Close stops the audit dispatcher. The controller must not be used afterwards.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped reports audit events discarded due to a saturated buffer.
func (c *Controller) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the controller's counters.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

// Logout destroys the session: tokens and pending state are cleared together and
// the controller returns to StateAnonymous. Any operation still in flight when
// Logout was issued resolves first and cannot re-create the session afterwards.
func (c *Controller) Logout(ctx context.Context) error {
	if c == nil {
		return ErrControllerNotReady
	}
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	hadSession := c.session != nil
	c.destroySessionLocked()
	c.mu.Unlock()

	if hadSession {
		c.metricInc(MetricLogout)
	}
	c.emitAudit(ctx, auditEventLogout, true, "", "", nil)
	return nil
}

// destroySessionLocked clears every piece of persisted and in-memory session state
// and advances the epoch so late results from concurrent flows are discarded.
// Caller holds c.mu.
func (c *Controller) destroySessionLocked() {
	c.creds.Clear(credstore.KeyAccessToken)
	c.creds.Clear(credstore.KeyRefreshToken)
	clearPending(c.creds)
	c.session = nil
	c.pending = nil
	c.state = StateAnonymous
	c.epoch++
}

// adoptTokens installs a freshly issued token pair as the active session. The two
// token keys are always written together; pending state is consumed.
func (c *Controller) adoptTokens(pair *TokenPair, provider string) *Session {
	session := &Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userFromClaims(pair.AccessToken, provider),
		ExpiresAt:    tokenExpiry(pair.AccessToken),
	}

	c.mu.Lock()
	c.creds.Set(credstore.KeyAccessToken, pair.AccessToken)
	c.creds.Set(credstore.KeyRefreshToken, pair.RefreshToken)
	clearPending(c.creds)
	c.session = session
	c.pending = nil
	c.state = StateAuthenticated
	c.mu.Unlock()

	out := *session
	return &out
}

// beginTransient flips the controller into a transient state for the duration of a
// network call and returns the epoch observed at entry.
func (c *Controller) beginTransient(state AuthState) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	return c.epoch
}

// detachedCallCtx returns a context for a backend call that must run to
// completion once issued, bounded only by the configured request timeout. Login,
// second-factor and refresh calls use it so their result still lands in the
// credential store even if the initiating view is torn down mid-flight.
func (c *Controller) detachedCallCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.config.API.RequestTimeout)
}

// settleAnonymous returns the controller to StateAnonymous after a failed or
// abandoned transient flow, leaving any existing session state cleared.
func (c *Controller) settleAnonymous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.state = StateAnonymous
}

// restore recovers state persisted by a previous run. Tokens win over a leftover
// pending context: both present means the second factor already completed, so the
// pending record is stale by definition and discarded. A token pair with only one
// half present violates the pair invariant and is treated as corrupt.
func (c *Controller) restore() {
	access, okAccess := c.creds.Get(credstore.KeyAccessToken)
	refresh, okRefresh := c.creds.Get(credstore.KeyRefreshToken)

	if okAccess != okRefresh {
		c.log.Warn().Msg("restore: half-written token pair discarded")
		c.creds.Clear(credstore.KeyAccessToken)
		c.creds.Clear(credstore.KeyRefreshToken)
		okAccess, okRefresh = false, false
	}

	if okAccess && okRefresh && access != "" && refresh != "" {
		clearPending(c.creds)
		c.session = &Session{
			AccessToken:  access,
			RefreshToken: refresh,
			User:         userFromClaims(access, ""),
			ExpiresAt:    tokenExpiry(access),
		}
		c.state = StateAuthenticated
		return
	}

	if p := loadPending(c.creds, c.config.Pending.MaxAge, time.Now()); p != nil {
		c.pending = p
		c.state = StateAwaitingSecondFactor
		return
	}

	c.state = StateAnonymous
}

func (c *Controller) metricInc(id MetricID) {
	c.metrics.Inc(id)
}

// userFromClaims rebuilds the admin identity from unverified access-token claims.
// Verification is the server's job; the client only needs the display fields.
func userFromClaims(accessToken, provider string) User {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return User{Provider: provider}
	}

	user := User{Provider: provider}
	if sub, err := claims.GetSubject(); err == nil {
		user.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}
	if provider == "" {
		if prov, ok := claims["provider"].(string); ok {
			user.Provider = prov
		}
	}
	return user
}

// tokenExpiry decodes the access token's exp claim without contacting the server.
// An undecodable token reports the zero time, which always reads as expired.
func tokenExpiry(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func wrapServerMessage(sentinel error, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
