package state

import (
	"context"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
)

// Snapshot is the reactive pair every view reads.
type Snapshot struct {
	User    *auth.User `json:"user"`
	Loading bool       `json:"loading"`
}

// Host holds the current user and loading flag of one browser.
// Loading starts true until the first restore attempt settles.
type Host struct {
	User    *Value[*auth.User]
	Loading *Value[bool]
	changed *Value[struct{}]
}

func NewHost() *Host {
	return &Host{
		User:    NewValue[*auth.User](nil),
		Loading: NewValue(true),
		changed: NewValue(struct{}{}),
	}
}

func (h *Host) SetUser(u *auth.User) {
	h.User.Set(u)
	h.changed.Set(struct{}{})
}

func (h *Host) SetLoading(b bool) {
	h.Loading.Set(b)
	h.changed.Set(struct{}{})
}

func (h *Host) Snapshot() Snapshot {
	return Snapshot{User: h.User.Get(), Loading: h.Loading.Get()}
}

// Changes streams a snapshot after every update until ctx is done.
// The channel is closed on return.
func (h *Host) Changes(ctx context.Context) <-chan Snapshot {
	ticks, cancel := h.changed.Watch()
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				select {
				case out <- h.Snapshot():
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// AwaitSettled blocks until loading is false or ctx ends.
func (h *Host) AwaitSettled(ctx context.Context) (Snapshot, error) {
	ticks, cancel := h.changed.Watch()
	defer cancel()

	for {
		if snap := h.Snapshot(); !snap.Loading {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return h.Snapshot(), ctx.Err()
		case <-ticks:
		}
	}
}
