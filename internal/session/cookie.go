package session

import (
	"errors"
	"net/http"
	"time"
)

const (
	// ClientCookieName scopes all session state to one browser.
	// The __Host- prefix requires Secure, Path=/ and no Domain.
	ClientCookieName = "__Host-client"

	clientCookieTTL = 400 * 24 * time.Hour
)

// CookieOptions defines how cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

func (o CookieOptions) cookie(name, value string, maxAge int) *http.Cookie {
	o = o.normalize()
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   maxAge,
		HttpOnly: o.HttpOnly,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
	if maxAge > 0 {
		c.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	}
	return c
}

// EnsureClientID returns the browser's client ID, issuing a new one
// when the request carries none. The cookie is always HttpOnly.
func EnsureClientID(w http.ResponseWriter, r *http.Request, opts CookieOptions) (string, error) {
	if c, err := r.Cookie(ClientCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	} else if err != nil && !errors.Is(err, http.ErrNoCookie) {
		return "", err
	}

	id, err := GenerateID()
	if err != nil {
		return "", err
	}

	opts.HttpOnly = true
	http.SetCookie(w, opts.cookie(ClientCookieName, id, int(clientCookieTTL.Seconds())))
	return id, nil
}
