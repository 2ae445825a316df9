package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "google", "keycloak"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // email returned by provider
	EmailVerified  bool   // whether provider asserts email ownership
	DisplayName    string // optional "name" claim
	PictureURL     string // optional "picture" claim
}

// FederatedGrant is the completed result of a federated sign-in round trip
// (redirect, consent, callback). The identity provider redeems it.
type FederatedGrant struct {
	Provider     string
	Code         string
	CodeVerifier string
}

// ProviderInfo names one sign-in method linked to an account.
type ProviderInfo struct {
	ProviderID string `json:"providerId"`
}

// Credential is the identity provider's view of an authenticated user.
// ProviderData lists sign-in methods, the one used for the current
// sign-in first.
type Credential struct {
	ID           string         `json:"uid"`
	DisplayName  string         `json:"displayName,omitempty"`
	Email        string         `json:"email,omitempty"`
	PhotoURL     string         `json:"photoURL,omitempty"`
	ProviderData []ProviderInfo `json:"providerData,omitempty"`
}

// CredentialEvent is one notification on a credential-change stream.
// A nil Credential with nil Err means the provider has settled on
// "nobody signed in". Err means the provider could not decide.
type CredentialEvent struct {
	Credential *Credential
	Err        error
}

// Subscription is a live credential-change stream. Close releases it
// and may be called more than once.
type Subscription interface {
	Events() <-chan CredentialEvent
	Close() error
}
