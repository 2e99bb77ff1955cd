//go:build !uartlinedebug

package uartline

type Stats struct{}

func (d *Driver) DebugReset()       {}
func (d *Driver) DebugStats() Stats { return Stats{} }
