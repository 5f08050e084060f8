package api

import (
	"context"
	"net/http"

	adminauth "github.com/tatyanamixx/nebulahunt-admin-sub001"
)

type provisionReply struct {
	Secret string `json:"secret"`
	URI    string `json:"provisioning_uri"`
}

type tokenReply struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type loginReply struct {
	tokenReply
	Requires2FA bool   `json:"requires_2fa"`
	Email       string `json:"email,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

func (r *loginReply) toDomain() *adminauth.LoginReply {
	out := &adminauth.LoginReply{
		SecondFactorRequired: r.Requires2FA,
		Email:                r.Email,
		Provider:             r.Provider,
	}
	if !r.Requires2FA {
		out.Tokens = &adminauth.TokenPair{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
		}
	}
	return out
}

// BootstrapAdmin describes the bootstrapadmin operation and its observable behavior.
func (c *Client) BootstrapAdmin(ctx context.Context, email, secretKey string) (*adminauth.TOTPProvision, error) {
	in := map[string]string{"email": email, "secret_key": secretKey}
	var out provisionReply
	err := c.do(ctx, http.MethodPost, "/api/admin/bootstrap", "", in, &out,
		func(status int, body errorBody) error {
			if status == http.StatusUnauthorized || status == http.StatusBadRequest {
				return wrap(adminauth.ErrAuthRejected, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &adminauth.TOTPProvision{Secret: out.Secret, URI: out.URI}, nil
}

// BootstrapSupervisor describes the bootstrapsupervisor operation and its observable behavior.
func (c *Client) BootstrapSupervisor(ctx context.Context) (*adminauth.TOTPProvision, error) {
	var out provisionReply
	err := c.do(ctx, http.MethodPost, "/api/admin/bootstrap/supervisor", "", nil, &out,
		func(status int, body errorBody) error {
			if status == http.StatusConflict {
				return wrap(adminauth.ErrAlreadyInitialized, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &adminauth.TOTPProvision{Secret: out.Secret, URI: out.URI}, nil
}

// LoginPassword describes the loginpassword operation and its observable behavior.
func (c *Client) LoginPassword(ctx context.Context, email, password string) (*adminauth.LoginReply, error) {
	in := map[string]string{"email": email, "password": password}
	var out loginReply
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", in, &out,
		func(status int, body errorBody) error {
			switch {
			case status == http.StatusLocked || body.Code == "account_locked":
				return wrap(adminauth.ErrAccountLocked, body)
			case status == http.StatusUnauthorized || status == http.StatusBadRequest:
				return wrap(adminauth.ErrAuthRejected, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// LoginOAuth describes the loginoauth operation and its observable behavior.
func (c *Client) LoginOAuth(ctx context.Context, assertion string) (*adminauth.LoginReply, error) {
	in := map[string]string{"assertion": assertion}
	var out loginReply
	err := c.do(ctx, http.MethodPost, "/api/auth/oauth", "", in, &out,
		func(status int, body errorBody) error {
			if status == http.StatusUnauthorized || status == http.StatusBadRequest {
				return wrap(adminauth.ErrAuthRejected, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// VerifyLogin2FA describes the verifylogin2fa operation and its observable behavior.
func (c *Client) VerifyLogin2FA(ctx context.Context, email, code string) (*adminauth.TokenPair, error) {
	in := map[string]string{"email": email, "code": code}
	var out tokenReply
	err := c.do(ctx, http.MethodPost, "/api/auth/2fa/verify", "", in, &out,
		func(status int, body errorBody) error {
			if status == http.StatusUnauthorized || status == http.StatusBadRequest {
				return wrap(adminauth.ErrAuthRejected, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &adminauth.TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// SetupTOTP describes the setuptotp operation and its observable behavior.
func (c *Client) SetupTOTP(ctx context.Context, accessToken, email string) (*adminauth.TOTPProvision, error) {
	in := map[string]string{"email": email}
	var out provisionReply
	err := c.do(ctx, http.MethodPost, "/api/auth/2fa/setup", accessToken, in, &out, nil)
	if err != nil {
		return nil, err
	}
	return &adminauth.TOTPProvision{Secret: out.Secret, URI: out.URI}, nil
}

// TOTPInfo describes the totpinfo operation and its observable behavior.
func (c *Client) TOTPInfo(ctx context.Context, accessToken string) (*adminauth.TOTPInfo, error) {
	var out struct {
		provisionReply
		Enabled bool `json:"enabled"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/2fa/info", accessToken, nil, &out,
		func(status int, body errorBody) error {
			if status == http.StatusNotFound || body.Code == "not_provisioned" {
				return wrap(adminauth.ErrTOTPNotProvisioned, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &adminauth.TOTPInfo{Secret: out.Secret, URI: out.URI, Enabled: out.Enabled}, nil
}

// ConfirmTOTPEnable describes the confirmtotpenable operation and its observable behavior.
func (c *Client) ConfirmTOTPEnable(ctx context.Context, accessToken, email, code string) error {
	in := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/api/auth/2fa/setup/verify", accessToken, in, nil,
		func(status int, body errorBody) error {
			if status == http.StatusBadRequest {
				return wrap(adminauth.ErrAuthRejected, body)
			}
			return nil
		})
}

// DisableTOTP describes the disabletotp operation and its observable behavior.
func (c *Client) DisableTOTP(ctx context.Context, accessToken, email string) error {
	in := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/2fa/disable", accessToken, in, nil, nil)
}

// SendInvite describes the sendinvite operation and its observable behavior.
func (c *Client) SendInvite(ctx context.Context, accessToken, email, name, role string) error {
	in := map[string]string{"email": email, "name": name, "role": role}
	return c.do(ctx, http.MethodPost, "/api/invites", accessToken, in, nil,
		func(status int, body errorBody) error {
			switch {
			case status == http.StatusConflict || body.Code == "duplicate_email":
				return wrap(adminauth.ErrDuplicateInvite, body)
			case status == http.StatusBadRequest:
				return wrap(adminauth.ErrValidation, body)
			}
			return nil
		})
}

// ValidateInvite describes the validateinvite operation and its observable behavior.
func (c *Client) ValidateInvite(ctx context.Context, token string) (*adminauth.InviteClaims, error) {
	in := map[string]string{"token": token}
	var out struct {
		Email  string `json:"email"`
		Name   string `json:"name"`
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	err := c.do(ctx, http.MethodPost, "/api/invites/validate", "", in, &out,
		func(status int, body errorBody) error {
			switch {
			case status == http.StatusGone || body.Code == "invite_expired" || body.Code == "invite_consumed":
				return wrap(adminauth.ErrInviteExpired, body)
			case status == http.StatusNotFound || status == http.StatusBadRequest:
				return wrap(adminauth.ErrInviteInvalid, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	// Some deployments answer 200 with a terminal status instead of an error code.
	switch adminauth.InviteStatus(out.Status) {
	case adminauth.InvitePending, "":
	default:
		return nil, adminauth.ErrInviteExpired
	}

	return &adminauth.InviteClaims{Email: out.Email, Name: out.Name, Role: out.Role}, nil
}

// Register describes the register operation and its observable behavior.
func (c *Client) Register(ctx context.Context, email, password, name, inviteToken string) (*adminauth.TOTPProvision, error) {
	in := map[string]string{
		"email":        email,
		"password":     password,
		"name":         name,
		"invite_token": inviteToken,
	}
	var out provisionReply
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", in, &out,
		func(status int, body errorBody) error {
			switch {
			case body.Code == "weak_password":
				return wrap(adminauth.ErrWeakPassword, body)
			case status == http.StatusGone || body.Code == "invite_expired" || body.Code == "invite_consumed":
				return wrap(adminauth.ErrInviteExpired, body)
			case status == http.StatusBadRequest || status == http.StatusNotFound:
				return wrap(adminauth.ErrInviteInvalid, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &adminauth.TOTPProvision{Secret: out.Secret, URI: out.URI}, nil
}

// CompleteRegistration describes the completeregistration operation and its observable behavior.
func (c *Client) CompleteRegistration(ctx context.Context, email, code, inviteToken string) (*adminauth.TokenPair, error) {
	in := map[string]string{"email": email, "code": code, "invite_token": inviteToken}
	var out tokenReply
	err := c.do(ctx, http.MethodPost, "/api/auth/register/2fa", "", in, &out,
		func(status int, body errorBody) error {
			if status == http.StatusUnauthorized || status == http.StatusBadRequest {
				return wrap(adminauth.ErrAuthRejected, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		// Confirmation-only deployment: registration done, no session issued.
		return nil, nil
	}
	return &adminauth.TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// Refresh describes the refresh operation and its observable behavior.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*adminauth.TokenPair, error) {
	in := map[string]string{"refresh_token": refreshToken}
	var out tokenReply
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh", "", in, &out,
		func(status int, body errorBody) error {
			if status == http.StatusUnauthorized || status == http.StatusBadRequest || status == http.StatusForbidden {
				return wrap(adminauth.ErrRefreshRejected, body)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &adminauth.TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}
