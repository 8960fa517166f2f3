package session

import "sync/atomic"

// Credential holds the bearer token shared by every API call. Writes come
// from login, register and logout only; readers capture the value once per
// request.
type Credential struct {
	token atomic.Pointer[string]
}

func (c *Credential) Token() string {
	if p := c.token.Load(); p != nil {
		return *p
	}
	return ""
}

func (c *Credential) Set(token string) {
	if token == "" {
		c.token.Store(nil)
		return
	}
	c.token.Store(&token)
}

func (c *Credential) Clear() {
	c.token.Store(nil)
}

func (c *Credential) Present() bool {
	return c.token.Load() != nil
}
