package core

import (
	"math/rand/v2"

	"pkt.systems/pslog"
)

// ServiceDeps captures optional dependencies for the core service.
type ServiceDeps struct {
	Loader   Loader
	Listener Listener
	IDs      IDSource
	Rand     *rand.Rand
	Logger   pslog.Logger
}
