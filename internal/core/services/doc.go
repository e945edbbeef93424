// Package services implements the driving port interfaces.
// Services contain the core import logic: streaming documents off store
// cursors, flattening them, driving the sync phases and orchestrating
// runs against driven ports (adapters).
//
// Services never spawn background work of their own; every pull happens
// on the caller's goroutine. The scheduler is the one exception and says
// so.
package services
