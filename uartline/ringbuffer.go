// uartline/ringbuffer.go

package uartline

// Capacity of the software TX ring. One slot always stays free so that
// head == tail means empty with only the two cursors.
const txBufferSize = 256

// txRing is the circular byte buffer between WriteByte and the TX-complete
// handler. head is the next free slot, tail the next byte to send; both stay
// in [0, txBufferSize). Mutation happens only while the TX-complete source
// is masked, or inside the handler itself.
type txRing struct {
	buf  [txBufferSize]byte
	head int
	tail int
}

// put appends one byte. It reports false, leaving the ring untouched, when
// the advanced head would catch up with tail.
func (r *txRing) put(c byte) bool {
	next := r.head + 1
	if next == txBufferSize {
		next = 0
	}
	if next == r.tail { // full
		return false
	}
	r.buf[r.head] = c
	r.head = next
	return true
}

// get removes the oldest byte. It reports false on an empty ring.
func (r *txRing) get() (byte, bool) {
	if r.tail == r.head {
		return 0, false
	}
	c := r.buf[r.tail]
	r.tail++
	if r.tail == txBufferSize {
		r.tail = 0
	}
	return c, true
}

// used returns the number of queued bytes.
func (r *txRing) used() int {
	n := r.head - r.tail
	if n < 0 {
		n += txBufferSize
	}
	return n
}
