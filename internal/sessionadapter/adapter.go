// Package sessionadapter keeps one browser's session state in step with
// the identity provider: it runs sign-in and sign-out through the
// provider, normalizes the result into an auth.User and maintains the
// session flag.
package sessionadapter

import (
	"context"
	"time"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
	"github.com/MarcoTuMD/Template-Admin/internal/metrics"
	"github.com/MarcoTuMD/Template-Admin/internal/session"
	"github.com/MarcoTuMD/Template-Admin/internal/state"
)

// IdentityProvider is everything the adapter needs from the provider,
// already bound to the current browser.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (*auth.Credential, error)
	SignIn(ctx context.Context, email, password string) (*auth.Credential, error)
	SignInFederated(ctx context.Context, grant auth.FederatedGrant) (*auth.Credential, error)
	SignOut(ctx context.Context) error
	Token(ctx context.Context, cred *auth.Credential) (string, error)
	Watch(ctx context.Context) (auth.Subscription, error)
}

// Navigator moves the browser after a successful sign-in.
type Navigator interface {
	Navigate(path string)
}

type Adapter struct {
	provider IdentityProvider
	flags    session.FlagStore
	host     *state.Host
	nav      Navigator
	home     string
}

func New(
	provider IdentityProvider,
	flags session.FlagStore,
	host *state.Host,
	nav Navigator,
	home string,
) *Adapter {
	if home == "" {
		home = "/"
	}
	return &Adapter{
		provider: provider,
		flags:    flags,
		host:     host,
		nav:      nav,
		home:     home,
	}
}

// State returns the current (user, loading) pair.
func (a *Adapter) State() state.Snapshot {
	return a.host.Snapshot()
}

func (a *Adapter) Register(ctx context.Context, email, password string) error {
	return a.authenticate(ctx, "register", func() (*auth.Credential, error) {
		return a.provider.CreateAccount(ctx, email, password)
	})
}

func (a *Adapter) Login(ctx context.Context, email, password string) error {
	return a.authenticate(ctx, "login", func() (*auth.Credential, error) {
		return a.provider.SignIn(ctx, email, password)
	})
}

func (a *Adapter) LoginFederated(ctx context.Context, grant auth.FederatedGrant) error {
	return a.authenticate(ctx, "login_federated", func() (*auth.Credential, error) {
		return a.provider.SignInFederated(ctx, grant)
	})
}

func (a *Adapter) Logout(ctx context.Context) (err error) {
	defer a.track("logout")(&err)

	if err := a.provider.SignOut(ctx); err != nil {
		return err
	}
	a.configureSession(nil)
	return nil
}

// Mount restores the session of a returning browser and keeps it in
// step with the provider until the returned unmount is called. Without
// the session flag the provider is not contacted at all.
func (a *Adapter) Mount(ctx context.Context) (unmount func()) {
	scope := &state.Scope{}

	scope.Mount(func() func() {
		if _, ok := a.flags.Get(session.FlagKey); !ok {
			a.host.SetUser(nil)
			a.host.SetLoading(false)
			return nil
		}

		a.host.SetLoading(true)
		sub, err := a.provider.Watch(ctx)
		if err != nil {
			logger.Warn("session restore unavailable", map[string]any{"error": err.Error()})
			a.host.SetUser(nil)
			a.host.SetLoading(false)
			return nil
		}

		metrics.ActiveWatchers.Inc()
		done := make(chan struct{})
		go func() {
			defer close(done)
			for ev := range sub.Events() {
				a.apply(ctx, ev)
			}
		}()

		return func() {
			_ = sub.Close()
			<-done
			metrics.ActiveWatchers.Dec()
		}
	})

	return scope.Unmount
}

// apply handles one credential-change event. An event the provider
// could not decide leaves the flag alone so the next load retries.
func (a *Adapter) apply(ctx context.Context, ev auth.CredentialEvent) {
	defer a.host.SetLoading(false)

	if ev.Err != nil {
		logger.Warn("credential change error", map[string]any{"error": ev.Err.Error()})
		a.host.SetUser(nil)
		return
	}

	user, err := auth.Normalize(ctx, a.provider, ev.Credential)
	if err != nil {
		logger.Warn("session token refresh failed", map[string]any{"error": err.Error()})
		a.host.SetUser(nil)
		return
	}
	a.configureSession(user)
}

func (a *Adapter) authenticate(
	ctx context.Context,
	op string,
	call func() (*auth.Credential, error),
) (err error) {
	defer a.track(op)(&err)

	cred, err := call()
	if err != nil {
		return err
	}

	user, err := auth.Normalize(ctx, a.provider, cred)
	if err != nil {
		return err
	}

	a.configureSession(user)
	a.nav.Navigate(a.home)
	return nil
}

// configureSession publishes user and keeps the flag in step with it.
func (a *Adapter) configureSession(user *auth.User) {
	a.host.SetUser(user)
	if user == nil {
		a.flags.Remove(session.FlagKey)
		return
	}
	a.flags.Set(session.FlagKey, "true", session.FlagExpiryDays)
}

// track raises loading for the duration of op. The returned func must
// be deferred with the operation's error.
func (a *Adapter) track(op string) func(*error) {
	started := time.Now()
	a.host.SetLoading(true)

	return func(errp *error) {
		a.host.SetLoading(false)
		metrics.ObserveOperation(op, started, *errp)
	}
}
