package auth

import "context"

// User is the application-level record derived from a Credential.
// It is not authoritative; the identity provider is.
type User struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName,omitempty"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	ProviderKind string `json:"providerKind"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
}

// TokenSource issues a fresh access token for a credential.
type TokenSource interface {
	Token(ctx context.Context, cred *Credential) (string, error)
}

// Normalize maps a provider credential onto a User, requesting a fresh
// token first. A nil credential or one without email yields (nil, nil).
// Token errors are returned as the provider produced them.
func Normalize(ctx context.Context, tokens TokenSource, cred *Credential) (*User, error) {
	if cred == nil || cred.Email == "" {
		return nil, nil
	}

	token, err := tokens.Token(ctx, cred)
	if err != nil {
		return nil, err
	}

	var kind string
	if len(cred.ProviderData) > 0 {
		kind = cred.ProviderData[0].ProviderID
	}

	return &User{
		ID:           cred.ID,
		DisplayName:  cred.DisplayName,
		Email:        cred.Email,
		AccessToken:  token,
		ProviderKind: kind,
		AvatarURL:    cred.PhotoURL,
	}, nil
}
