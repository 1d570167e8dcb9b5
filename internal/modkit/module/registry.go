// Package module is the process-wide port registry. modkit.Mount records each pipeline
// module's ports under its name; the ops API looks them up to report and drive those stages
package module

import (
	"slices"
	"sync"
)

var (
	mu    sync.RWMutex
	ports = map[string]any{}
	order []string
)

// Register records p as the ports of module name. A repeated name replaces the ports
// and keeps its original position
func Register(name string, p any) {
	mu.Lock()
	defer mu.Unlock()
	if _, seen := ports[name]; !seen {
		order = append(order, name)
	}
	ports[name] = p
}

// PortsAs returns the ports of name asserted to T; ok is false when name is unknown
// or registered with another type
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	p, found := ports[name]
	mu.RUnlock()
	out, ok := p.(T)
	return out, found && ok
}

// Names lists registered modules in registration order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Clone(order)
}

// Reset forgets every module; tests composing a process call it first
func Reset() {
	mu.Lock()
	ports = map[string]any{}
	order = nil
	mu.Unlock()
}
