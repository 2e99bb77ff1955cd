// uartline/avr_atmega2560.go

//go:build atmega2560

package uartline

import "device/avr"

// ATmega2560 has four USARTs; the driver runs on port 0.
const (
	irqRxComplete = avr.IRQ_USART0_RX
	irqTxComplete = avr.IRQ_USART0_TX
)
