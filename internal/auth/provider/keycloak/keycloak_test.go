package keycloak

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicAuthURL(t *testing.T) {
	got, err := PublicAuthURL(
		"http://keycloak:8080/realms/auth-service/protocol/openid-connect/auth",
		"https://login.example.com/",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://login.example.com/realms/auth-service/protocol/openid-connect/auth", got)
}

func TestPublicAuthURLWithPathPrefix(t *testing.T) {
	got, err := PublicAuthURL(
		"http://keycloak:8080/realms/r/protocol/openid-connect/auth",
		"https://example.com/kc",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/kc/realms/r/protocol/openid-connect/auth", got)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), "", "web", "https://app/cb", "https://kc")
	assert.Error(t, err)
}
