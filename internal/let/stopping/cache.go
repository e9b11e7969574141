package stopping

type cacheEntry struct {
	h   Handle
	err error
}

// Cache memoises resolved material handles for one worker. It is not safe
// for concurrent use. A failed resolution is remembered as well, so every
// material is resolved at most once per Cache.
type Cache struct {
	svc     Service
	entries map[string]cacheEntry
}

// NewCache returns an empty cache in front of svc.
func NewCache(svc Service) *Cache {
	return &Cache{svc: svc, entries: make(map[string]cacheEntry)}
}

// Handle returns the handle for material, resolving it on first use.
func (c *Cache) Handle(material string) (Handle, error) {
	if e, ok := c.entries[material]; ok {
		return e.h, e.err
	}
	h, err := c.svc.Resolve(material)
	c.entries[material] = cacheEntry{h: h, err: err}
	return h, err
}

// StoppingPowerFor returns the linear stopping power (MeV/mm) of particle at
// kineticEnergy (MeV) in material.
func (c *Cache) StoppingPowerFor(material, particle string, kineticEnergy float64) (float64, error) {
	h, err := c.Handle(material)
	if err != nil {
		return 0, err
	}
	return c.svc.StoppingPower(h, particle, kineticEnergy), nil
}

// Resolved returns the number of materials looked up so far, including
// failed ones.
func (c *Cache) Resolved() int { return len(c.entries) }

// Close drops every cached handle. The cache may be reused afterwards and
// will resolve again on demand.
func (c *Cache) Close() {
	clear(c.entries)
}
