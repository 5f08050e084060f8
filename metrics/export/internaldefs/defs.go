package internaldefs

import (
	adminauth "github.com/tatyanamixx/nebulahunt-admin-sub001"
)

// CounterDef defines a public type used by adminauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   adminauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session controller.
var CounterDefs = []CounterDef{
	{ID: adminauth.MetricLoginSuccess, Name: "nhadmin_login_success_total", Help: "Successful password logins."},
	{ID: adminauth.MetricLoginFailure, Name: "nhadmin_login_failure_total", Help: "Failed password logins."},
	{ID: adminauth.MetricOAuthLoginSuccess, Name: "nhadmin_oauth_login_success_total", Help: "Successful OAuth logins."},
	{ID: adminauth.MetricOAuthLoginFailure, Name: "nhadmin_oauth_login_failure_total", Help: "Failed OAuth logins."},
	{ID: adminauth.MetricSecondFactorRequired, Name: "nhadmin_second_factor_required_total", Help: "First factors that demanded a TOTP step."},
	{ID: adminauth.MetricSecondFactorSuccess, Name: "nhadmin_second_factor_success_total", Help: "Successful second-factor verifications."},
	{ID: adminauth.MetricSecondFactorFailure, Name: "nhadmin_second_factor_failure_total", Help: "Rejected second-factor verifications."},
	{ID: adminauth.MetricMalformedCodeRejected, Name: "nhadmin_malformed_code_rejected_total", Help: "TOTP codes rejected client-side without a network round trip."},
	{ID: adminauth.MetricRefreshSuccess, Name: "nhadmin_refresh_success_total", Help: "Successful token refreshes."},
	{ID: adminauth.MetricRefreshFailure, Name: "nhadmin_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: adminauth.MetricRefreshCoalesced, Name: "nhadmin_refresh_coalesced_total", Help: "Refresh callers coalesced into an already in-flight request."},
	{ID: adminauth.MetricForcedLogout, Name: "nhadmin_forced_logout_total", Help: "Sessions destroyed by a rejected refresh token."},
	{ID: adminauth.MetricLogout, Name: "nhadmin_logout_total", Help: "Explicit logouts."},
	{ID: adminauth.MetricInviteValidated, Name: "nhadmin_invite_validated_total", Help: "Invitation tokens validated successfully."},
	{ID: adminauth.MetricInviteRejected, Name: "nhadmin_invite_rejected_total", Help: "Invitation tokens rejected as invalid, expired, or consumed."},
	{ID: adminauth.MetricRegistrationStarted, Name: "nhadmin_registration_started_total", Help: "Registration flows started."},
	{ID: adminauth.MetricRegistrationCompleted, Name: "nhadmin_registration_completed_total", Help: "Registration flows completed."},
	{ID: adminauth.MetricBootstrapStarted, Name: "nhadmin_bootstrap_started_total", Help: "Bootstrap enrollments started."},
	{ID: adminauth.MetricStaleContextDiscarded, Name: "nhadmin_stale_context_discarded_total", Help: "Stale or corrupt pending second-factor contexts discarded."},
}
