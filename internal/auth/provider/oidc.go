package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ErrExchangeFailed marks a callback the provider would not vouch for:
// a rejected code, a missing or invalid id_token.
var ErrExchangeFailed = errors.New("federated authentication failed")

// OIDCProvider implements OAuthProvider for any OpenID Connect issuer
// using authorization code flow with PKCE (S256).
type OIDCProvider struct {
	name        string
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// NewOIDCProvider builds a provider from an already discovered endpoint
// and verifier.
func NewOIDCProvider(name string, cfg *oauth2.Config, verifier *oidc.IDTokenVerifier) *OIDCProvider {
	return &OIDCProvider{
		name:        name,
		oauthConfig: cfg,
		verifier:    verifier,
	}
}

// Name returns the provider identifier used by the registry.
func (p *OIDCProvider) Name() string {
	return p.name
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *OIDCProvider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode exchanges the authorization code, verifies the id_token
// and returns the identity claims. It never creates users or sessions.
func (p *OIDCProvider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s token exchange: %w", ErrExchangeFailed, p.name, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: %s did not return id_token", ErrExchangeFailed, p.name)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s id_token verification: %w", ErrExchangeFailed, p.name, err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s id_token claims parse failed: %w", p.name, err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: %s id_token missing required claims", ErrExchangeFailed, p.name)
	}

	logger.Info("oidc identity verified", map[string]any{
		"provider":       p.name,
		"issuer":         idToken.Issuer,
		"email_verified": claims.EmailVerified,
		"expiry_unix":    idToken.Expiry.Unix(),
	})

	return &auth.Identity{
		Provider:       p.name,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		DisplayName:    claims.Name,
		PictureURL:     claims.Picture,
	}, nil
}
