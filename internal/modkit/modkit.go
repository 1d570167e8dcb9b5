package modkit

import (
	"mediarelay/internal/modkit/module"
	phttp "mediarelay/internal/platform/net/http"
)

// Module is one pipeline stage as seen by a binary: a name, the ports other stages and the
// ops API use, and optional routes. Only the ops module mounts routes today
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

// Mount registers each module's ports under its name, in order, then mounts its routes on r
func Mount(r phttp.Router, mods ...Module) {
	for _, m := range mods {
		module.Register(m.Name(), m.Ports())
		m.MountRoutes(r)
	}
}
