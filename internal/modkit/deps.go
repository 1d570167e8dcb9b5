// Package modkit is the wiring between binaries and pipeline modules: the shared
// dependencies each module is built from and the Module surface a binary mounts
package modkit

import (
	"mediarelay/internal/core/exchange"
	"mediarelay/internal/platform/config"
)

// Deps is what every pipeline module is constructed from. Modules read their own
// prefixed settings off Cfg; Layout is the exchange tree they share
type Deps struct {
	Cfg    config.Conf
	Layout exchange.Layout
}

// NewDeps resolves the exchange layout from RELAY_EXCHANGE_ROOT
func NewDeps(cfg config.Conf) Deps {
	return Deps{Cfg: cfg, Layout: exchange.FromConfig(cfg)}
}
