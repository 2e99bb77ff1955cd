package uartline

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type lineResult struct {
	line string
	err  error
}

// goReadLine starts one blocking line read and returns its result channel.
func goReadLine(d *Driver) <-chan lineResult {
	ch := make(chan lineResult, 1)
	go func() {
		var line []byte
		for {
			c, err := d.ReadChar()
			if err != nil {
				ch <- lineResult{string(line), err}
				return
			}
			line = append(line, c)
			if c == '\n' {
				ch <- lineResult{string(line), nil}
				return
			}
		}
	}()
	return ch
}

func waitLine(t *testing.T, ch <-chan lineResult) (string, error) {
	t.Helper()
	select {
	case r := <-ch:
		return r.line, r.err
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for line")
		return "", nil
	}
}

// readLine feeds input one receive interrupt at a time and returns the
// completed line.
func readLine(t *testing.T, d *Driver, sim *SimPort, input string) (string, error) {
	t.Helper()
	ch := goReadLine(d)
	sim.Feed([]byte(input))
	return waitLine(t, ch)
}

// erase is the terminal sequence rubbing out n characters.
func erase(n int) string {
	return strings.Repeat("\b \b", n)
}

func TestBackspaceEditing(t *testing.T) {
	d, sim := newTestDriver()

	line, err := readLine(t, d, sim, "abc\b\bd\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "ad\n" {
		t.Fatalf("line = %q, want %q", line, "ad\n")
	}
	want := "abc" + erase(2) + "d" + "\r\n"
	if got := string(sim.Transmitted()); got != want {
		t.Fatalf("echo = %q, want %q", got, want)
	}
}

func TestBackspaceAtLineStartIsNoop(t *testing.T) {
	d, sim := newTestDriver()

	line, err := readLine(t, d, sim, "\b\x7fa\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "a\n" {
		t.Fatalf("line = %q, want %q", line, "a\n")
	}
	if got := string(sim.Transmitted()); got != "a\r\n" {
		t.Fatalf("echo = %q, want %q", got, "a\r\n")
	}
}

func TestKillLine(t *testing.T) {
	d, sim := newTestDriver()

	line, err := readLine(t, d, sim, "hello\x15x\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "x\n" {
		t.Fatalf("line = %q, want %q", line, "x\n")
	}
	want := "hello" + erase(5) + "x" + "\r\n"
	if got := string(sim.Transmitted()); got != want {
		t.Fatalf("echo = %q, want %q", got, want)
	}
}

func TestKillWord(t *testing.T) {
	d, sim := newTestDriver()

	line, err := readLine(t, d, sim, "foo bar\x17\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	// The word goes, the delimiting space stays.
	if line != "foo \n" {
		t.Fatalf("line = %q, want %q", line, "foo \n")
	}
	want := "foo bar" + erase(3) + "\r\n"
	if got := string(sim.Transmitted()); got != want {
		t.Fatalf("echo = %q, want %q", got, want)
	}
}

func TestRedraw(t *testing.T) {
	d, sim := newTestDriver()

	line, err := readLine(t, d, sim, "ab\x12\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "ab\n" {
		t.Fatalf("line = %q, want %q", line, "ab\n")
	}
	// Redraw is a bare CR followed by the buffered content; the buffer
	// itself is untouched.
	want := "ab" + "\r" + "ab" + "\r\n"
	if got := string(sim.Transmitted()); got != want {
		t.Fatalf("echo = %q, want %q", got, want)
	}
}

func TestCRAndTabNormalization(t *testing.T) {
	d, sim := newTestDriver()

	// CR terminates like LF, TAB lands as a single space.
	line, err := readLine(t, d, sim, "a\tb\r")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "a b\n" {
		t.Fatalf("line = %q, want %q", line, "a b\n")
	}
}

func TestOtherControlBytesIgnored(t *testing.T) {
	d, sim := newTestDriver()

	line, err := readLine(t, d, sim, "a\x01\x0b\x1bb\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "ab\n" {
		t.Fatalf("line = %q, want %q", line, "ab\n")
	}
	if got := string(sim.Transmitted()); got != "ab\r\n" {
		t.Fatalf("echo = %q, want %q", got, "ab\r\n")
	}
}

func TestHighBitBytesAreInput(t *testing.T) {
	d, sim := newTestDriver()

	line, err := readLine(t, d, sim, "caf\xa9\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "caf\xa9\n" {
		t.Fatalf("line = %q, want %q", line, "caf\xa9\n")
	}
}

func TestFullLineRingsBell(t *testing.T) {
	d, sim := newTestDriver()

	// lineSize-1 printables fill the buffer; the next one is refused with
	// a BEL, but editing still works.
	full := strings.Repeat("x", lineSize-1)
	line, err := readLine(t, d, sim, full+"y\bz\n")
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	want := full[:lineSize-2] + "z\n"
	if line != want {
		t.Fatalf("line = %q, want %q", line, want)
	}
	echo := string(sim.Transmitted())
	if strings.Count(echo, "\a") != 1 {
		t.Fatalf("echo rang the bell %d times, want 1", strings.Count(echo, "\a"))
	}
	if strings.Contains(line, "y") {
		t.Fatal("rejected byte ended up in the line")
	}
}

func TestAbortDiscardsPartialLine(t *testing.T) {
	d, sim := newTestDriver()

	ch := goReadLine(d)
	sim.Feed([]byte("ab\x03"))
	line, err := waitLine(t, ch)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
	if line != "" {
		t.Fatalf("partial line %q escaped to the caller", line)
	}

	// The editor is fully reset; the next line starts clean.
	sim.ClearTx()
	line, err = readLine(t, d, sim, "ok\n")
	if err != nil || line != "ok\n" {
		t.Fatalf("line after abort = %q, %v; want %q, nil", line, err, "ok\n")
	}
}

func TestFramingErrorReadsAsEOF(t *testing.T) {
	d, sim := newTestDriver()

	ch := goReadLine(d)
	sim.Feed([]byte("ab"))
	sim.PushBreak()
	_, err := waitLine(t, ch)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}

	// Still usable afterwards.
	sim.ClearTx()
	line, err := readLine(t, d, sim, "on\n")
	if err != nil || line != "on\n" {
		t.Fatalf("line after break = %q, %v; want %q, nil", line, err, "on\n")
	}
}

func TestOverrunError(t *testing.T) {
	d, sim := newTestDriver()

	ch := goReadLine(d)
	sim.PushOverrun('x')
	_, err := waitLine(t, ch)
	if !errors.Is(err, ErrOverrun) {
		t.Fatalf("err = %v, want ErrOverrun", err)
	}
}

func TestDrainingThenFreshLine(t *testing.T) {
	d, sim := newTestDriver()

	ch := goReadLine(d)
	sim.Feed([]byte("one\n"))
	line, err := waitLine(t, ch)
	if err != nil || line != "one\n" {
		t.Fatalf("first line = %q, %v", line, err)
	}

	// No residue: the next line collects from scratch.
	line, err = readLine(t, d, sim, "two\n")
	if err != nil || line != "two\n" {
		t.Fatalf("second line = %q, %v", line, err)
	}
}

func TestDrainReturnsBytesInOrder(t *testing.T) {
	d, sim := newTestDriver()

	ch := make(chan lineResult, 1)
	go func() {
		// Drain one completed line byte by byte.
		var got []byte
		for {
			c, err := d.ReadChar()
			if err != nil {
				ch <- lineResult{string(got), err}
				return
			}
			got = append(got, c)
			if c == '\n' {
				ch <- lineResult{string(got), nil}
				return
			}
		}
	}()
	sim.Feed([]byte("wxyz\n"))
	line, err := waitLine(t, ch)
	if err != nil || line != "wxyz\n" {
		t.Fatalf("drained %q, %v; want %q, nil", line, err, "wxyz\n")
	}
}

func TestReaderAdapter(t *testing.T) {
	d, sim := newTestDriver()

	buf := make([]byte, 16)
	ch := make(chan lineResult, 1)
	go func() {
		n, err := d.Read(buf)
		ch <- lineResult{string(buf[:n]), err}
	}()
	sim.Feed([]byte("go\n"))
	line, err := waitLine(t, ch)
	if err != nil || line != "go\n" {
		t.Fatalf("Read = %q, %v; want %q, nil", line, err, "go\n")
	}
}

func TestEchoOfNewlineIsCRLF(t *testing.T) {
	d, sim := newTestDriver()

	if _, err := readLine(t, d, sim, "\n"); err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if got := string(sim.Transmitted()); got != "\r\n" {
		t.Fatalf("echo = %q, want %q", got, "\r\n")
	}
}
