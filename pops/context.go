package pops

import "sync"

// Context holds the POPS model handle as an explicit object passed to
// operations, rather than a package-level global. It holds only the
// model: the feature-range table (refine.RangeGate), the ES-prior table
// (refine.ESPriors) and any channel map are not kept here and are passed
// to their operations separately.
type Context struct {
	mu    sync.Mutex
	model *Model
}

// NewContext returns an empty Context; Model is populated on first use
// via EnsureModel.
func NewContext() *Context { return &Context{} }

// EnsureModel returns the held model, loading it via load on first call
// and reusing it thereafter (spec.md §9: "initialised lazily on first
// predict call and reused").
func (c *Context) EnsureModel(load func() (*Model, error)) (*Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil {
		return c.model, nil
	}
	m, err := load()
	if err != nil {
		return nil, err
	}
	c.model = m
	return m, nil
}

// SetModel installs an already-built model directly (the training path,
// which has no separate load step).
func (c *Context) SetModel(m *Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = m
}

// Model returns the currently held model, or nil if none has been set.
func (c *Context) Model() *Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}
