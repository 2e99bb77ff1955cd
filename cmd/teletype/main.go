// Command teletype is an interactive demo of the line discipline on the
// simulated port: keystrokes are delivered as receive interrupts and the
// echo stream renders in a terminal view, erase sequences applied the way a
// glass teletype would. BS/DEL, ^U, ^W, ^R and ^C behave as on a real
// serial terminal; Esc quits.
package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

type teletype struct {
	sim *uartline.SimPort
	drv *uartline.Driver

	// UI state, touched only inside gocui.Update closures.
	out  []byte   // in-progress line as echoed, erases applied
	done []string // completed lines handed to the application side
	bell bool
}

func main() {
	sim := uartline.NewSimPort()
	drv := uartline.New(sim)
	sim.Attach(drv)

	tt := &teletype{sim: sim, drv: drv}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()
	g.Cursor = true
	g.SetManagerFunc(tt.layout)

	if err := g.SetKeybinding("", gocui.KeyEsc, gocui.ModNone, quit); err != nil {
		log.Fatal(err)
	}

	go tt.readLines(g)
	go tt.pumpEcho(g)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Fatal(err)
	}
}

func quit(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }

func (tt *teletype) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	v, err := g.SetView("tty", 0, 0, maxX-1, maxY-1)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = " uartline teletype (Esc quits) "
		v.Editable = true
		v.Editor = gocui.EditorFunc(tt.edit)
		if _, err := g.SetCurrentView("tty"); err != nil {
			return err
		}
		fmt.Fprint(v, "> ")
	}
	return nil
}

// edit maps a keystroke to the byte a serial terminal would send and
// delivers it as a receive interrupt. Typing faster than the reader
// consumes overwrites the capture cell, exactly as on hardware.
func (tt *teletype) edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	var c byte
	switch {
	case ch != 0 && ch < 0x80:
		c = byte(ch)
	case key == gocui.KeySpace:
		c = ' '
	case key == gocui.KeyEnter:
		c = '\r'
	case key == gocui.KeyTab:
		c = '\t'
	case key == gocui.KeyBackspace, key == gocui.KeyBackspace2:
		c = 0x7f
	case key == gocui.KeyCtrlC:
		c = 0x03
	case key == gocui.KeyCtrlR:
		c = 0x12
	case key == gocui.KeyCtrlU:
		c = 0x15
	case key == gocui.KeyCtrlW:
		c = 0x17
	default:
		return
	}
	tt.sim.Push(c)
}

// readLines is the application side: it blocks on the line editor and
// collects completed lines.
func (tt *teletype) readLines(g *gocui.Gui) {
	for {
		line, err := tt.readLine()
		g.Update(func(g *gocui.Gui) error {
			if err != nil {
				tt.done = append(tt.done, fmt.Sprintf("(%v)", err))
			} else {
				tt.done = append(tt.done, strings.TrimSuffix(line, "\n"))
			}
			return tt.render(g)
		})
	}
}

func (tt *teletype) readLine() (string, error) {
	var line []byte
	for {
		c, err := tt.drv.ReadChar()
		if err != nil {
			return "", err
		}
		line = append(line, c)
		if c == '\n' {
			return string(line), nil
		}
	}
}

// pumpEcho moves the driver's transmit stream into the view.
func (tt *teletype) pumpEcho(g *gocui.Gui) {
	for range time.Tick(30 * time.Millisecond) {
		out := tt.sim.DrainTx()
		if len(out) == 0 {
			continue
		}
		g.Update(func(g *gocui.Gui) error {
			for _, c := range out {
				tt.applyEcho(c)
			}
			return tt.render(g)
		})
	}
}

// applyEcho renders one echoed byte the way a terminal would.
func (tt *teletype) applyEcho(c byte) {
	switch c {
	case '\b':
		if n := len(tt.out); n > 0 {
			tt.out = tt.out[:n-1]
		}
	case '\a':
		tt.bell = true
	case '\r', '\n':
		tt.out = tt.out[:0]
	default:
		tt.out = append(tt.out, c)
	}
}

func (tt *teletype) render(g *gocui.Gui) error {
	v, err := g.View("tty")
	if err != nil {
		return err
	}
	v.Clear()
	for _, l := range tt.done {
		fmt.Fprintf(v, "<< %s\n", l)
	}
	bell := ""
	if tt.bell {
		bell = " \a(bell)"
		tt.bell = false
	}
	fmt.Fprintf(v, "> %s%s", tt.out, bell)
	return nil
}
