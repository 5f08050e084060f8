// Package oauth acquires the provider assertion consumed by
// adminauth.Controller.LoginWithOAuth: it drives the authorization-code exchange
// against the configured identity provider and verifies the resulting ID token
// locally before handing it to the backend.
package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	adminauth "github.com/tatyanamixx/nebulahunt-admin-sub001"
)

// Config defines a public type used by oauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Flow holds the discovered provider metadata for one identity provider.
type Flow struct {
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewFlow discovers the provider's endpoints. Discovery failure classifies as
// ErrServerUnavailable: the provider is unreachable, not misused.
func NewFlow(ctx context.Context, cfg Config) (*Flow, error) {
	if cfg.IssuerURL == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: issuer, client id, and redirect url required", adminauth.ErrValidation)
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: provider discovery: %v", adminauth.ErrServerUnavailable, err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &Flow{
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthCodeURL builds the provider's authorization URL for a browser redirect.
func (f *Flow) AuthCodeURL(state, nonce string) string {
	return f.oauth2Config.AuthCodeURL(state, oidc.Nonce(nonce))
}

// ExchangeAssertion swaps an authorization code for the provider assertion: the
// code is exchanged, the ID token extracted and verified (signature, audience,
// nonce), and the raw verified token returned for the backend to consume.
func (f *Flow) ExchangeAssertion(ctx context.Context, code, nonce string) (string, error) {
	token, err := f.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: code exchange: %v", adminauth.ErrServerUnavailable, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("%w: provider answered without an id token", adminauth.ErrAuthRejected)
	}

	idToken, err := f.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("%w: id token rejected: %v", adminauth.ErrAuthRejected, err)
	}
	if nonce != "" && idToken.Nonce != nonce {
		return "", fmt.Errorf("%w: nonce mismatch", adminauth.ErrAuthRejected)
	}

	return rawIDToken, nil
}

// ErrNotReady is returned by [WaitReady] when the probe never succeeds within the
// timeout.
var ErrNotReady = errors.New("oauth provider not ready")
