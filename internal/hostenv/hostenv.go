// Package hostenv detects the privileged host runtime that exposes the
// backend command surface. The desktop launcher injects the daemon address
// into the environment; plain preview contexts lack it.
package hostenv

import (
	"os"
	"strings"
	"sync"
)

// EnvHostAddr is the marker variable injected by the desktop launcher. Its
// value is the base URL of the host daemon's command API.
const EnvHostAddr = "NETGLANCE_HOSTD_ADDR"

// Probe reports whether the host runtime is present. The first answer is
// cached for the lifetime of the Probe; callers are expected to share a
// single Probe per process so the answer is consistent for the session.
type Probe struct {
	once      sync.Once
	addr      string
	available bool
}

// New creates an unresolved Probe. No environment access happens until the
// first call to Available or Addr.
func New() *Probe {
	return &Probe{}
}

// Available reports whether the host daemon runtime is present. Safe to
// call at any time, including before any other initialization.
func (p *Probe) Available() bool {
	p.resolve()
	return p.available
}

// Addr returns the host daemon base URL, or "" when the runtime is absent.
func (p *Probe) Addr() string {
	p.resolve()
	return p.addr
}

func (p *Probe) resolve() {
	p.once.Do(func() {
		v, ok := os.LookupEnv(EnvHostAddr)
		v = strings.TrimSpace(v)
		p.available = ok && v != ""
		p.addr = v
	})
}
