//go:build uartlinedebug

package uartline

import "sync/atomic"

func (d *Driver) dbgPrime() {
	atomic.AddUint32(&d.stats.TxPrimed, 1)
}

func (d *Driver) dbgQueue() {
	atomic.AddUint32(&d.stats.TxQueued, 1)
}

func (d *Driver) dbgDrop() {
	atomic.AddUint32(&d.stats.TxDropped, 1)
}

func (d *Driver) dbgTxComplete() {
	atomic.AddUint32(&d.stats.TxIRQs, 1)
}

func (d *Driver) dbgRxCapture(overwritten bool) {
	atomic.AddUint32(&d.stats.RxBytes, 1)
	if overwritten {
		atomic.AddUint32(&d.stats.RxOverwrites, 1)
	}
}
