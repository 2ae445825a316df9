package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "keycloak"

// New initializes a Keycloak OIDC provider using discovery.
// issuer must be the realm issuer URL, e.g.
// http://keycloak:8080/realms/auth-service
//
// publicBaseURL replaces the issuer host for the browser-facing
// authorize endpoint, since the backend usually reaches Keycloak
// through internal DNS.
func New(
	ctx context.Context,
	issuer string,
	clientID string,
	redirectURL string,
	publicBaseURL string,
) (*provider.OIDCProvider, error) {

	if issuer == "" || clientID == "" || redirectURL == "" || publicBaseURL == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	ep := oidcProvider.Endpoint()
	authURL, err := PublicAuthURL(ep.AuthURL, publicBaseURL)
	if err != nil {
		return nil, err
	}
	ep.AuthURL = authURL

	oauthCfg := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Endpoint:    ep,
		Scopes: []string{
			oidc.ScopeOpenID,
			"email",
			"profile",
		},
	}

	return provider.NewOIDCProvider(providerName, oauthCfg, verifier), nil
}

// PublicAuthURL rewrites the scheme and host of a discovered authorize
// endpoint to the public base URL, keeping the realm path.
func PublicAuthURL(discovered, publicBaseURL string) (string, error) {
	d, err := url.Parse(discovered)
	if err != nil {
		return "", fmt.Errorf("keycloak: parse auth url: %w", err)
	}
	pub, err := url.Parse(strings.TrimRight(publicBaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("keycloak: parse public base url: %w", err)
	}

	d.Scheme = pub.Scheme
	d.Host = pub.Host
	d.Path = pub.Path + d.Path
	return d.String(), nil
}
