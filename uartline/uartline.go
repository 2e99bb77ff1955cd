// uartline/uartline.go

// Package uartline provides an interrupt-driven UART driver with a terminal
// line discipline. Transmission runs through a software ring buffer drained
// one byte per TX-complete interrupt, with the first byte of a burst written
// straight to the hardware register. Reception captures single bytes in the
// RX-complete interrupt and layers a blocking, line-edited read on top.
// Output expands LF to CR LF and input normalizes CR to LF, matching the
// usual terminal line conventions.
package uartline

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrBufferFull reports a WriteByte that found the TX ring full. The
	// byte was neither sent nor queued; whether to retry, drop or block is
	// the caller's decision.
	ErrBufferFull = errors.New("uartline: TX buffer full")

	// ErrOverrun reports a byte lost at the hardware level before it was
	// read.
	ErrOverrun = errors.New("uartline: receive overrun")

	// ErrAborted reports a partial line discarded by Ctrl-C.
	ErrAborted = errors.New("uartline: read aborted")
)

// rxValid marks the capture cell as holding an unread byte, so byte and
// flag travel in a single atomic word.
const rxValid = 1 << 8

// Config holds the one-time UART setup parameters.
type Config struct {
	BaudRate uint32
}

// Driver is one interrupt-driven UART line. The zero value is not usable;
// construct with New, or use the package-level instance on microcontroller
// builds.
type Driver struct {
	port Port

	// TX shared state. WriteByte touches the ring only while the
	// TX-complete source is masked; sending hands the transmitter between
	// foreground and handler, claimed by CAS on the prime path.
	tx      txRing
	sending atomic.Bool

	// RX capture cell, written only by RxComplete and consumed only by the
	// line editor. A capture while the cell is still valid overwrites the
	// previous byte silently; the receive side has no queue.
	rx atomic.Uint32

	ed lineEditor

	stats Stats
}

// New returns a Driver running on port. On microcontroller builds the
// package-level UART0 is already bound to the hardware interrupt vectors;
// New is for simulated or bridged ports.
func New(port Port) *Driver {
	return &Driver{port: port}
}

// WriteByte queues one byte for transmission, expanding LF to CR LF. If no
// transmission is in progress the byte goes straight to the hardware
// register; otherwise it is appended to the TX ring for the TX-complete
// handler to drain. Returns ErrBufferFull when the ring cannot take the
// byte. Must not be called from inside the TX-complete handler.
func (d *Driver) WriteByte(c byte) error {
	if c == '\n' {
		if err := d.send('\r'); err != nil {
			return err
		}
	}
	return d.send(c)
}

func (d *Driver) send(c byte) error {
	// An idle transmitter is claimed with a single CAS: prime the pump by
	// writing directly to the hardware register, skipping the ring.
	if d.sending.CompareAndSwap(false, true) {
		d.dbgPrime()
		d.port.WriteTx(c)
		return nil
	}

	// Transmitter busy: append under the TX critical section. The mask
	// covers only the index update and is restored on every exit path.
	d.port.SuspendTxIRQ()
	defer d.port.ResumeTxIRQ()
	if !d.tx.put(c) {
		d.dbgDrop()
		return ErrBufferFull
	}
	d.dbgQueue()
	return nil
}

// Write implements io.Writer over WriteByte, so a formatted printer can
// attach directly. It stops at the first byte the ring cannot take.
func (d *Driver) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := d.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Read implements io.Reader over ReadChar. It blocks until a line is
// complete and returns at most one line per call, so a bufio.Scanner works
// as expected. Framing errors surface as io.EOF.
func (d *Driver) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	for n < len(p) {
		c, err := d.ReadChar()
		if err != nil {
			return n, err
		}
		p[n] = c
		n++
		if c == '\n' {
			break
		}
	}
	return n, nil
}

// TxPending returns the number of bytes waiting in the software TX ring.
func (d *Driver) TxPending() int {
	d.port.SuspendTxIRQ()
	defer d.port.ResumeTxIRQ()
	return d.tx.used()
}

// TxFree returns the remaining TX ring space in bytes.
func (d *Driver) TxFree() int {
	return txBufferSize - 1 - d.TxPending()
}

// TxComplete is the transmit-complete interrupt body. It moves one queued
// byte to the hardware register, or releases the transmitter when the ring
// is empty so the next WriteByte primes the pump again. Bounded time: no
// loops, no calls into the line editor.
func (d *Driver) TxComplete() {
	d.dbgTxComplete()
	c, ok := d.tx.get()
	if !ok {
		d.sending.Store(false)
		return
	}
	d.port.WriteTx(c)
}

// RxComplete is the receive-complete interrupt body. It does exactly one
// thing: copy the hardware receive register into the capture cell, keeping
// worst-case interrupt latency constant. All receive processing happens in
// the line editor, in caller context.
func (d *Driver) RxComplete() {
	prev := d.rx.Swap(rxValid | uint32(d.port.ReadRx()))
	d.dbgRxCapture(prev&rxValid != 0)
}
