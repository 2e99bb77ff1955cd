// uartline/avr_uart.go

//go:build atmega328p || atmega2560

// USART0 binding for megaAVR parts. The per-part files select which
// interrupt vectors carry the two handlers; everything else is identical
// across the supported chips.

package uartline

import (
	"device/avr"
	"runtime/interrupt"

	"machine"
)

// UART0 is the driver bound to USART0 and its interrupt vectors.
var (
	UART0  = &_UART0
	_UART0 = Driver{port: avrPort{}}
)

func init() {
	interrupt.New(irqRxComplete, func(interrupt.Interrupt) { _UART0.RxComplete() })
	interrupt.New(irqTxComplete, func(interrupt.Interrupt) { _UART0.TxComplete() })
}

// Configure programs the USART: transmitter and receiver enabled, 8-bit
// frames, baud prescaler from the CPU clock, and both complete interrupts
// unmasked. One-time setup; the driver never reprograms these afterwards.
func (d *Driver) Configure(cfg Config) error {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600
	}
	ps := machine.CPUFrequency()/(cfg.BaudRate*16) - 1
	avr.UBRR0H.Set(uint8(ps >> 8))
	avr.UBRR0L.Set(uint8(ps))

	avr.UCSR0B.SetBits(avr.UCSR0B_TXEN0 | avr.UCSR0B_RXEN0)
	avr.UCSR0C.SetBits(avr.UCSR0C_UCSZ00 | avr.UCSR0C_UCSZ01)
	avr.UCSR0B.SetBits(avr.UCSR0B_RXCIE0 | avr.UCSR0B_TXCIE0)
	return nil
}

// avrPort maps the Port surface onto the USART0 registers.
type avrPort struct{}

func (avrPort) WriteTx(c byte) { avr.UDR0.Set(c) }
func (avrPort) ReadRx() byte   { return avr.UDR0.Get() }

func (avrPort) Status() Status {
	var s Status
	if avr.UCSR0A.HasBits(avr.UCSR0A_FE0) {
		s |= StatusFrameError
	}
	if avr.UCSR0A.HasBits(avr.UCSR0A_DOR0) {
		s |= StatusOverrun
	}
	return s
}

// The TXC flag is latched while TXCIE0 is clear, so a completion during the
// critical section fires as soon as the bit is set again.
func (avrPort) SuspendTxIRQ() { avr.UCSR0B.ClearBits(avr.UCSR0B_TXCIE0) }
func (avrPort) ResumeTxIRQ()  { avr.UCSR0B.SetBits(avr.UCSR0B_TXCIE0) }
