package adminauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventOAuthLoginSuccess     = "oauth_login_success"
	auditEventOAuthLoginFailure     = "oauth_login_failure"
	auditEventSecondFactorRequired  = "second_factor_required"
	auditEventSecondFactorSuccess   = "second_factor_success"
	auditEventSecondFactorFailure   = "second_factor_failure"
	auditEventSecondFactorCancelled = "second_factor_cancelled"
	auditEventStaleContextDiscarded = "stale_context_discarded"
	auditEventRefreshSuccess        = "refresh_success"
	auditEventRefreshRejected       = "refresh_rejected"
	auditEventRefreshUnavailable    = "refresh_unavailable"
	auditEventForcedLogout          = "forced_logout"
	auditEventLogout                = "logout"
	auditEventInviteValidated       = "invite_validated"
	auditEventInviteRejected        = "invite_rejected"
	auditEventInviteSent            = "invite_sent"
	auditEventRegistrationStarted   = "registration_started"
	auditEventRegistrationCompleted = "registration_completed"
	auditEventBootstrapAdmin        = "bootstrap_admin"
	auditEventBootstrapSupervisor   = "bootstrap_supervisor"
	auditEventTOTPSetupRequested    = "totp_setup_requested"
	auditEventTOTPEnabled           = "totp_enabled"
	auditEventTOTPDisabled          = "totp_disabled"
)

func (c *Controller) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	email string,
	flow string,
	cause error,
) {
	if c.audit == nil {
		return
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email,
		Flow:      flow,
		State:     c.State().String(),
		Success:   success,
	}
	if session := c.CurrentSession(); session != nil {
		event.Provider = session.User.Provider
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	c.audit.Emit(ctx, event)
}
