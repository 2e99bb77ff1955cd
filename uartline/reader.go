// uartline/reader.go

package uartline

import (
	"io"
	"time"
)

// Line buffer capacity, including the trailing newline but no terminator
// byte. Input beyond lineSize-1 characters is refused with a BEL echo until
// something is erased or the line is terminated.
const lineSize = 80

const (
	ctrlC = 0x03 // abort the line
	bell  = 0x07
	ctrlR = 0x12 // redraw
	ctrlU = 0x15 // kill line
	ctrlW = 0x17 // kill word
	del   = 0x7f
)

// lineEditor accumulates one logical line. While collecting, n counts the
// bytes buffered so far; once the newline lands the editor switches to
// draining and rd walks the completed line. The zero value is a fresh
// editor in collecting state.
type lineEditor struct {
	buf      [lineSize]byte
	n        int
	draining bool
	rd       int
}

// ReadChar returns the next character of the current line, collecting and
// editing a fresh line first when none is buffered. Characters only ever
// come from a completed, newline-terminated line; partial lines are never
// exposed. Collecting blocks until input arrives and is ended early by a
// framing error (returned as io.EOF, the usual meaning of a break
// condition), a hardware overrun (ErrOverrun) or Ctrl-C (ErrAborted). After
// any error the line state is fully reset before the next call.
//
// The editor echoes every accepted keystroke through WriteByte and supports
// BS/DEL (erase one character), Ctrl-U (erase the line), Ctrl-W (erase the
// previous word), Ctrl-R (redraw) and Ctrl-C (abort). CR terminates a line
// like LF, and TAB is taken as a single space. Other control bytes are
// ignored.
func (d *Driver) ReadChar() (byte, error) {
	if !d.ed.draining {
		if err := d.collect(); err != nil {
			return 0, err
		}
	}
	c := d.ed.buf[d.ed.rd]
	d.ed.rd++
	if c == '\n' {
		d.ed = lineEditor{} // line consumed, back to collecting
	}
	return c, nil
}

// collect runs the line editor until a newline completes the line or an
// error ends it.
func (d *Driver) collect() error {
	ed := &d.ed
	ed.n = 0
	for {
		c, err := d.waitByte()
		if err != nil {
			ed.n = 0
			return err
		}

		if c == '\r' { // stty ICRNL
			c = '\n'
		}
		if c == '\n' {
			ed.buf[ed.n] = c
			ed.n++
			d.echo(c)
			ed.draining = true
			ed.rd = 0
			return nil
		}
		if c == '\t' {
			c = ' '
		}

		// ASCII printable or high-bit extended.
		if (c >= ' ' && c <= 0x7e) || c >= 0xa0 {
			if ed.n == lineSize-1 {
				// Keep the slot reserved for the newline; complain
				// audibly instead of buffering.
				d.echo(bell)
			} else {
				ed.buf[ed.n] = c
				ed.n++
				d.echo(c)
			}
			continue
		}

		switch c {
		case ctrlC:
			ed.n = 0
			return ErrAborted

		case '\b', del:
			if ed.n > 0 {
				d.rubout()
				ed.n--
			}

		case ctrlR:
			d.echo('\r')
			for i := 0; i < ed.n; i++ {
				d.echo(ed.buf[i])
			}

		case ctrlU:
			for ed.n > 0 {
				d.rubout()
				ed.n--
			}

		case ctrlW:
			for ed.n > 0 && ed.buf[ed.n-1] != ' ' {
				d.rubout()
				ed.n--
			}
		}
		// Anything else: ignored, no echo, no buffer change.
	}
}

// waitByte busy-waits for the RX handler to publish a byte, then samples
// the line status for it. Taking the cell and clearing it is a single swap,
// so a concurrent capture can only ever replace, never tear.
func (d *Driver) waitByte() (byte, error) {
	var v uint32
	for {
		if v = d.rx.Swap(0); v&rxValid != 0 {
			break
		}
		time.Sleep(0) // polite yield while the line is idle
	}
	st := d.port.Status()
	if st&StatusFrameError != 0 {
		return 0, io.EOF
	}
	if st&StatusOverrun != 0 {
		return 0, ErrOverrun
	}
	return byte(v), nil
}

// echo transmits a keystroke reflection. Echo is best effort; a full TX
// ring drops the reflection, not the input.
func (d *Driver) echo(c byte) {
	_ = d.WriteByte(c)
}

// rubout erases the previous character on the terminal.
func (d *Driver) rubout() {
	d.echo('\b')
	d.echo(' ')
	d.echo('\b')
}
