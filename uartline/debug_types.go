//go:build uartlinedebug

package uartline

import "sync/atomic"

// Stats holds driver counters since the last reset.
type Stats struct {
	TxPrimed     uint32 // bytes written straight to hardware by WriteByte
	TxQueued     uint32 // bytes accepted into the TX ring
	TxDropped    uint32 // WriteByte calls that found the ring full
	TxIRQs       uint32 // TX-complete handler entries
	RxBytes      uint32 // bytes captured by the RX-complete handler
	RxOverwrites uint32 // captures that clobbered an unread byte
}

func (d *Driver) DebugReset() {
	d.stats = Stats{}
}

func (d *Driver) DebugStats() Stats {
	// Return a copy built from atomic loads to avoid races.
	return Stats{
		TxPrimed:     atomic.LoadUint32(&d.stats.TxPrimed),
		TxQueued:     atomic.LoadUint32(&d.stats.TxQueued),
		TxDropped:    atomic.LoadUint32(&d.stats.TxDropped),
		TxIRQs:       atomic.LoadUint32(&d.stats.TxIRQs),
		RxBytes:      atomic.LoadUint32(&d.stats.RxBytes),
		RxOverwrites: atomic.LoadUint32(&d.stats.RxOverwrites),
	}
}
