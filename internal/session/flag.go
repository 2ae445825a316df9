package session

import (
	"net/http"
	"sync"
	"time"
)

const (
	// FlagKey remembers that this browser signed in last time.
	FlagKey = "admin-template-auth"

	// FlagExpiryDays is how long the flag outlives the last sign-in.
	FlagExpiryDays = 7
)

// FlagStore is a small key/value store scoped to one browser. Values are
// hints, never proof of authentication.
type FlagStore interface {
	Set(key, value string, expiresInDays int)
	Get(key string) (string, bool)
	Remove(key string)
}

// CookieFlags is a FlagStore over one request/response pair. Writes are
// visible to later reads of the same request. Once sealed, writes only
// update that view and no longer touch the response headers.
type CookieFlags struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions

	mu      sync.Mutex
	sealed  bool
	pending map[string]*string // nil value: removed in this request
}

func NewCookieFlags(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieFlags {
	return &CookieFlags{
		w:       w,
		r:       r,
		opts:    opts,
		pending: make(map[string]*string),
	}
}

func (f *CookieFlags) Set(key, value string, expiresInDays int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	maxAge := int((time.Duration(expiresInDays) * 24 * time.Hour).Seconds())
	if !f.sealed {
		http.SetCookie(f.w, f.opts.cookie(key, value, maxAge))
	}
	f.pending[key] = &value
}

func (f *CookieFlags) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	c, err := f.r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (f *CookieFlags) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.sealed {
		http.SetCookie(f.w, f.opts.cookie(key, "", -1))
	}
	f.pending[key] = nil
}

// Seal must be called before the response headers are written when
// flags may still change concurrently, e.g. from a streaming handler.
func (f *CookieFlags) Seal() {
	f.mu.Lock()
	f.sealed = true
	f.mu.Unlock()
}
