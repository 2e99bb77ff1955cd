//go:build !uartlinedebug

package uartline

func (d *Driver) dbgPrime()         {}
func (d *Driver) dbgQueue()         {}
func (d *Driver) dbgDrop()          {}
func (d *Driver) dbgTxComplete()    {}
func (d *Driver) dbgRxCapture(bool) {}
