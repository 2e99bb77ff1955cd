// uartline/simport.go

package uartline

import (
	"sync"
	"time"
)

// SimPort is an in-memory Port for unit tests and host demos; no device or
// machine deps. Interrupt delivery is synchronous: Push runs the RX handler
// on the caller's goroutine and CompleteTx the TX handler. The TX mask is
// honored the way the hardware flag register behaves: a completion that
// fires while masked stays latched and is delivered on resume.
type SimPort struct {
	mu        sync.Mutex
	drv       *Driver
	rxReg     byte
	status    Status
	txLog     []byte
	autoDrain bool
	masked    bool
	latched   int
}

// NewSimPort returns a SimPort that completes every transmitted byte
// immediately. Call Attach before delivering any traffic.
func NewSimPort() *SimPort {
	return &SimPort{autoDrain: true}
}

// Attach binds the simulated interrupt lines to a driver.
func (p *SimPort) Attach(d *Driver) { p.drv = d }

// SetAutoDrain controls whether a byte written to the TX register leaves
// the shifter immediately. Disable it to step the shifter by hand with
// CompleteTx, e.g. to pile bytes up in the ring.
func (p *SimPort) SetAutoDrain(v bool) {
	p.mu.Lock()
	p.autoDrain = v
	p.mu.Unlock()
}

func (p *SimPort) WriteTx(c byte) {
	p.mu.Lock()
	p.txLog = append(p.txLog, c)
	auto := p.autoDrain
	p.mu.Unlock()
	if auto {
		p.CompleteTx()
	}
}

// CompleteTx simulates the byte leaving the shift register, firing the
// TX-complete interrupt or latching it while masked.
func (p *SimPort) CompleteTx() {
	p.mu.Lock()
	if p.masked {
		p.latched++
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.drv.TxComplete()
}

func (p *SimPort) ReadRx() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rxReg
}

// Status returns and clears the pending receive error flags.
func (p *SimPort) Status() Status {
	p.mu.Lock()
	s := p.status
	p.status = 0
	p.mu.Unlock()
	return s
}

func (p *SimPort) SuspendTxIRQ() {
	p.mu.Lock()
	p.masked = true
	p.mu.Unlock()
}

func (p *SimPort) ResumeTxIRQ() {
	p.mu.Lock()
	p.masked = false
	n := p.latched
	p.latched = 0
	p.mu.Unlock()
	for ; n > 0; n-- {
		p.drv.TxComplete()
	}
}

// Push delivers one byte as a receive interrupt. Pushing before the driver
// consumed the previous byte overwrites it, exactly as the hardware would.
func (p *SimPort) Push(c byte) {
	p.mu.Lock()
	p.rxReg = c
	p.mu.Unlock()
	p.drv.RxComplete()
}

// PushBreak delivers a framing error, as a line break condition would.
func (p *SimPort) PushBreak() {
	p.mu.Lock()
	p.status |= StatusFrameError
	p.mu.Unlock()
	p.Push(0)
}

// PushOverrun delivers a byte flagged with a hardware overrun.
func (p *SimPort) PushOverrun(c byte) {
	p.mu.Lock()
	p.status |= StatusOverrun
	p.mu.Unlock()
	p.Push(c)
}

// Feed delivers bytes one receive interrupt at a time, waiting for the
// driver to consume each one so none are overwritten. Run it from its own
// goroutine when the reader is blocked on the same driver.
func (p *SimPort) Feed(data []byte) {
	for _, c := range data {
		p.Push(c)
		for p.drv.rx.Load() != 0 {
			time.Sleep(0)
		}
	}
}

// Transmitted returns a copy of everything written to the TX register so
// far.
func (p *SimPort) Transmitted() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.txLog...)
}

// DrainTx returns the transmit log and clears it.
func (p *SimPort) DrainTx() []byte {
	p.mu.Lock()
	out := p.txLog
	p.txLog = nil
	p.mu.Unlock()
	return out
}

// ClearTx empties the transmit log.
func (p *SimPort) ClearTx() {
	p.mu.Lock()
	p.txLog = p.txLog[:0]
	p.mu.Unlock()
}
