// Command linebridge runs the uartline driver over a real host serial port.
// The port's reader goroutine stands in for the receive interrupt and a
// writer goroutine for the transmit shifter, so the full line discipline
// (echo, editing, CR/LF translation) is exercised against whatever sits on
// the other end of the cable. Completed lines are printed locally and
// acknowledged back over the port.
//
// Usage:
//
//	linebridge -port /dev/ttyUSB0 -baud 9600
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"sync"

	"github.com/tarm/serial"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

// hostPort adapts an open serial port to uartline.Port. The tx mutex plays
// the role of interrupt masking: the TX-complete handler and the foreground
// append path never touch the ring concurrently.
type hostPort struct {
	s    *serial.Port
	drv  *uartline.Driver
	txCh chan byte

	txMu sync.Mutex

	rxMu  sync.Mutex
	rxReg byte
}

func newHostPort(s *serial.Port) *hostPort {
	// The channel outlives any ring burst, so the TX handler never blocks
	// on it.
	return &hostPort{s: s, txCh: make(chan byte, 1024)}
}

func (p *hostPort) attach(d *uartline.Driver) { p.drv = d }

func (p *hostPort) WriteTx(c byte) { p.txCh <- c }

func (p *hostPort) ReadRx() byte {
	p.rxMu.Lock()
	defer p.rxMu.Unlock()
	return p.rxReg
}

// Status always reads clean; the host serial API does not surface framing
// or overrun flags per byte.
func (p *hostPort) Status() uartline.Status { return 0 }

func (p *hostPort) SuspendTxIRQ() { p.txMu.Lock() }
func (p *hostPort) ResumeTxIRQ()  { p.txMu.Unlock() }

// txLoop is the transmit shifter: one byte out the port, then the
// TX-complete interrupt.
func (p *hostPort) txLoop() {
	buf := make([]byte, 1)
	for c := range p.txCh {
		buf[0] = c
		if _, err := p.s.Write(buf); err != nil {
			log.Fatalf("serial write: %v", err)
		}
		p.txMu.Lock()
		p.drv.TxComplete()
		p.txMu.Unlock()
	}
}

// rxLoop is the receive interrupt: every byte read from the port lands in
// the capture cell.
func (p *hostPort) rxLoop() {
	buf := make([]byte, 1)
	for {
		n, err := p.s.Read(buf)
		if err != nil {
			log.Fatalf("serial read: %v", err)
		}
		if n == 0 {
			continue
		}
		p.rxMu.Lock()
		p.rxReg = buf[0]
		p.rxMu.Unlock()
		p.drv.RxComplete()
	}
}

func main() {
	portName := flag.String("port", "/dev/ttyUSB0", "serial port device")
	baud := flag.Int("baud", 9600, "baud rate")
	flag.Parse()

	s, err := serial.OpenPort(&serial.Config{Name: *portName, Baud: *baud})
	if err != nil {
		log.Fatalf("open %s: %v", *portName, err)
	}

	hp := newHostPort(s)
	drv := uartline.New(hp)
	hp.attach(drv)
	go hp.txLoop()
	go hp.rxLoop()

	fmt.Fprintf(drv, "uartline bridge ready\n")

	sc := bufio.NewScanner(drv)
	for sc.Scan() {
		fmt.Printf("line: %q\n", sc.Text())
		fmt.Fprintf(drv, "ack: %s\n", sc.Text())
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("read: %v", err)
	}
}
