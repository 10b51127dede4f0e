package app

import (
	"sync/atomic"

	"github.com/bft-labs/drawstream/internal/domain"
)

// Defaults holds the ParamSet that new sessions start with and that fills
// omitted fields of param updates. It can be swapped at runtime (config reload).
type Defaults struct {
	v atomic.Pointer[domain.ParamSet]
}

// NewDefaults creates a holder initialized to p.
func NewDefaults(p domain.ParamSet) *Defaults {
	d := &Defaults{}
	d.Set(p)
	return d
}

// Get returns the current defaults.
func (d *Defaults) Get() domain.ParamSet {
	return *d.v.Load()
}

// Set replaces the defaults. Sessions already running keep their own params.
func (d *Defaults) Set(p domain.ParamSet) {
	d.v.Store(&p)
}
