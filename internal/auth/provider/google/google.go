package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	providerName = "google"
	issuer       = "https://accounts.google.com"
)

// New discovers Google's OIDC endpoints and returns a provider for the
// "google" sign-in method.
func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*provider.OIDCProvider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return provider.NewOIDCProvider(providerName, oauthCfg, verifier), nil
}
