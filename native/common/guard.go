package common

import "errors"

var ErrModulePaused = errors.New("module paused")

// PauseView exposes host-level pause flags keyed by module name. It lets
// governance halt a native module without touching the module's own records.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard returns ErrModulePaused when the named module is paused. A nil view
// means the host has not wired governance pausing and the guard passes.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
