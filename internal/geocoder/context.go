package geocoder

import "sync"

// Context carries the deployment host and the API keys used when filling
// request templates. Keys are looked up by service and then by host, so one
// process can hold separate keys per deployment. It is safe for concurrent use.
type Context struct {
	mu          sync.RWMutex
	defaultHost string
	host        string
	keys        map[string]map[string]string
}

// NewContext returns a context whose host, and reset state, is host.
func NewContext(host string) *Context {
	return &Context{
		defaultHost: host,
		host:        host,
		keys:        map[string]map[string]string{},
	}
}

// Host returns the current host.
func (c *Context) Host() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host
}

// SetHost changes the current host.
func (c *Context) SetHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = host
}

// Update merges keys (service → host → key) into the context. Entries
// already present for the same service and host are overwritten.
func (c *Context) Update(keys map[string]map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for service, hosts := range keys {
		if c.keys[service] == nil {
			c.keys[service] = make(map[string]string, len(hosts))
		}
		for host, key := range hosts {
			c.keys[service][host] = key
		}
	}
}

// SetKey stores one API key.
func (c *Context) SetKey(service, host, key string) {
	c.Update(map[string]map[string]string{service: {host: key}})
}

// Key returns the API key of service for the current host, or "".
func (c *Context) Key(service string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keys[service][c.host]
}

// Reset restores the construction-time host and drops all keys.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = c.defaultHost
	c.keys = map[string]map[string]string{}
}
