// Package keystone is the bundled identity provider: password accounts,
// federated OIDC sign-in, per-browser provider sessions, access tokens
// and a credential-change stream.
package keystone

import (
	"context"
	"sync"
	"time"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/directory"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/resolver"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
	"github.com/MarcoTuMD/Template-Admin/internal/session"
)

// PasswordAccounts creates and checks email/password accounts.
type PasswordAccounts interface {
	Register(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// Profiles builds the credential view of a user.
type Profiles interface {
	Credential(ctx context.Context, userID, primary string) (*auth.Credential, error)
}

// Providers looks up federated sign-in methods by name.
type Providers interface {
	Get(name string) (provider.OAuthProvider, error)
}

type Options struct {
	Accounts   PasswordAccounts
	Providers  Providers
	Resolver   resolver.Resolver
	Profiles   Profiles
	Sessions   session.Store
	Tokens     *TokenIssuer
	Feed       *Feed
	SessionTTL time.Duration

	// RefreshEvery re-emits the current credential on open watches so
	// watchers can mint a new access token before the old one expires.
	// Zero disables it.
	RefreshEvery time.Duration
}

// Client is shared by all browsers; Bind scopes it to one.
type Client struct {
	opts Options
	now  func() time.Time
}

func New(opts Options) *Client {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.FlagExpiryDays * 24 * time.Hour
	}
	return &Client{opts: opts, now: time.Now}
}

// Bind returns the provider capabilities for one browser client.
func (c *Client) Bind(clientID string) *Binding {
	return &Binding{c: c, clientID: clientID}
}

// VerifyToken checks an access token issued by this provider.
func (c *Client) VerifyToken(raw string) (*Claims, error) {
	return c.opts.Tokens.Verify(raw)
}

// Binding is the identity provider as seen from one browser client.
type Binding struct {
	c        *Client
	clientID string
}

func (b *Binding) CreateAccount(ctx context.Context, email, password string) (*auth.Credential, error) {
	userID, err := b.c.opts.Accounts.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return b.signIn(ctx, userID, directory.PasswordProviderID)
}

func (b *Binding) SignIn(ctx context.Context, email, password string) (*auth.Credential, error) {
	userID, err := b.c.opts.Accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return b.signIn(ctx, userID, directory.PasswordProviderID)
}

func (b *Binding) SignInFederated(ctx context.Context, grant auth.FederatedGrant) (*auth.Credential, error) {
	p, err := b.c.opts.Providers.Get(grant.Provider)
	if err != nil {
		return nil, err
	}

	identity, err := p.ExchangeCode(ctx, grant.Code, grant.CodeVerifier)
	if err != nil {
		return nil, err
	}

	userID, err := b.c.opts.Resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	return b.signIn(ctx, userID, identity.Provider)
}

func (b *Binding) SignOut(ctx context.Context) error {
	if err := b.c.opts.Sessions.Delete(ctx, b.clientID); err != nil {
		return err
	}

	logger.Info("keystone sign-out", map[string]any{"client": shortID(b.clientID)})
	b.announce(ctx)
	return nil
}

// Token issues a fresh access token for cred.
func (b *Binding) Token(_ context.Context, cred *auth.Credential) (string, error) {
	return b.c.opts.Tokens.Issue(cred)
}

// Watch streams this client's credential: the current one first, then
// one event per change and per refresh period until the subscription is
// closed.
func (b *Binding) Watch(ctx context.Context) (auth.Subscription, error) {
	ps, err := b.c.opts.Feed.Subscribe(ctx, b.clientID)
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := &Subscription{
		events: make(chan auth.CredentialEvent, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.events)
		defer ps.Close()

		if !sub.emit(wctx, b.current(wctx)) {
			return
		}

		var refresh <-chan time.Time
		if every := b.c.opts.RefreshEvery; every > 0 {
			t := time.NewTicker(every)
			defer t.Stop()
			refresh = t.C
		}

		msgs := ps.Channel()
		for {
			select {
			case <-wctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
			case <-refresh:
			}
			if !sub.emit(wctx, b.current(wctx)) {
				return
			}
		}
	}()

	return sub, nil
}

func (b *Binding) current(ctx context.Context) auth.CredentialEvent {
	s, err := b.c.opts.Sessions.Get(ctx, b.clientID)
	if err != nil {
		return auth.CredentialEvent{Err: err}
	}
	if s == nil {
		return auth.CredentialEvent{}
	}

	cred, err := b.c.opts.Profiles.Credential(ctx, s.UserID, s.Provider)
	return auth.CredentialEvent{Credential: cred, Err: err}
}

func (b *Binding) signIn(ctx context.Context, userID, providerID string) (*auth.Credential, error) {
	now := b.c.now()
	err := b.c.opts.Sessions.Create(ctx, session.Session{
		SessionID: b.clientID,
		UserID:    userID,
		Provider:  providerID,
		CreatedAt: now,
		ExpiresAt: now.Add(b.c.opts.SessionTTL),
	})
	if err != nil {
		return nil, err
	}

	cred, err := b.c.opts.Profiles.Credential(ctx, userID, providerID)
	if err != nil {
		return nil, err
	}

	logger.Info("keystone sign-in", map[string]any{
		"client":   shortID(b.clientID),
		"user_id":  userID,
		"provider": providerID,
	})
	b.announce(ctx)
	return cred, nil
}

// announce is best-effort: the caller already has the new state, only
// other watchers miss the update if Redis is unreachable.
func (b *Binding) announce(ctx context.Context) {
	if err := b.c.opts.Feed.Publish(ctx, b.clientID); err != nil {
		logger.Warn("keystone change announce failed", map[string]any{
			"client": shortID(b.clientID),
			"error":  err.Error(),
		})
	}
}

// Subscription implements auth.Subscription over the change feed.
type Subscription struct {
	events chan auth.CredentialEvent
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) Events() <-chan auth.CredentialEvent {
	return s.events
}

func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

func (s *Subscription) emit(ctx context.Context, ev auth.CredentialEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
