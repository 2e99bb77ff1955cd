// uartline/avr_atmega328p.go

//go:build atmega328p

package uartline

import "device/avr"

// ATmega328P vector names carry no port index.
const (
	irqRxComplete = avr.IRQ_USART_RX
	irqTxComplete = avr.IRQ_USART_TX
)
