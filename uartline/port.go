// uartline/port.go

package uartline

// Status holds the receive line status flags sampled when a byte is
// consumed.
type Status uint8

const (
	// StatusFrameError flags a framing error, typically a break condition
	// on the line.
	StatusFrameError Status = 1 << iota
	// StatusOverrun flags a byte lost in hardware before it was read.
	StatusOverrun
)

// Port is the hardware surface the driver runs on: the two data registers,
// the receive status flags, and masking of the transmit-complete interrupt
// source. The AVR binding implements it on the USART registers; SimPort
// implements it in memory for tests and host tools.
type Port interface {
	// WriteTx loads one byte into the transmit data register. The caller
	// must own the transmitter, either by having primed it or by being the
	// TX-complete handler.
	WriteTx(c byte)

	// ReadRx returns the byte in the receive data register.
	ReadRx() byte

	// Status samples the receive error flags for the byte being consumed.
	Status() Status

	// SuspendTxIRQ masks the transmit-complete interrupt source. A
	// completion that fires while masked stays latched and is delivered on
	// resume, like the hardware flag register.
	SuspendTxIRQ()

	// ResumeTxIRQ unmasks the transmit-complete interrupt source.
	ResumeTxIRQ()
}
