package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// GPIOOpts holds the optional lines of a directly wired display.
type GPIOOpts struct {
	// RW is the read/write line. When wired, the driver polls the busy
	// flag instead of sleeping for worst-case command durations. The
	// data pins are then switched to inputs during status reads and
	// must be 5V-tolerant on 5V panels. Leave nil if R/W is strapped
	// to ground.
	RW gpio.PinOut

	// Backlight switches the backlight. Leave nil if the backlight is
	// wired directly to power.
	Backlight gpio.PinOut
}

// GPIO implements Hardware for a display wired directly to GPIO pins.
//
// Four data pins select the 4-bit bus (D4-D7 of the panel), eight pins
// the 8-bit bus. Pin faults during transfers are not reported: the
// controller has no acknowledgment channel, so wiring is validated once
// at construction and transfer-path errors are discarded.
type GPIO struct {
	rs   gpio.PinOut
	en   gpio.PinOut
	rw   gpio.PinOut
	bl   gpio.PinOut
	data []gpio.PinIO
	mode FunctionMode
}

// NewGPIO returns a Hardware binding over directly wired pins.
//
// data must hold exactly 4 or 8 pins, least significant line first
// (D4..D7 in 4-bit mode, D0..D7 in 8-bit mode). All pins are driven low
// initially, which leaves the bus in its idle state.
func NewGPIO(rs, en gpio.PinOut, data []gpio.PinIO, opts *GPIOOpts) (*GPIO, error) {
	if opts == nil {
		opts = &GPIOOpts{}
	}
	if rs == nil || en == nil {
		return nil, errors.New("hd44780: RS and EN pins are required")
	}
	var mode FunctionMode
	switch len(data) {
	case 4:
		mode = Bit4
	case 8:
		mode = Bit8
	default:
		return nil, fmt.Errorf("hd44780: need 4 or 8 data pins, got %d", len(data))
	}
	for i, p := range data {
		if p == nil {
			return nil, fmt.Errorf("hd44780: data pin %d is nil", i)
		}
	}

	g := &GPIO{
		rs:   rs,
		en:   en,
		rw:   opts.RW,
		bl:   opts.Backlight,
		data: data,
		mode: mode,
	}
	if err := g.idle(); err != nil {
		return nil, fmt.Errorf("hd44780: failed to initialize pins: %w", err)
	}
	return g, nil
}

// idle drives every line low, the bus idle state.
func (g *GPIO) idle() error {
	if err := g.rs.Out(gpio.Low); err != nil {
		return err
	}
	if err := g.en.Out(gpio.Low); err != nil {
		return err
	}
	if g.rw != nil {
		if err := g.rw.Out(gpio.Low); err != nil {
			return err
		}
	}
	if g.bl != nil {
		if err := g.bl.Out(gpio.Low); err != nil {
			return err
		}
	}
	for _, p := range g.data {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

// RS drives the register select line.
func (g *GPIO) RS(bit bool) {
	_ = g.rs.Out(gpio.Level(bit))
}

// Enable drives the enable line.
func (g *GPIO) Enable(bit bool) {
	_ = g.en.Out(gpio.Level(bit))
}

// Data drives the data lines, least significant line first.
func (g *GPIO) Data(data byte) {
	for i, p := range g.data {
		_ = p.Out(gpio.Level(data&(1<<uint(i)) != 0))
	}
}

// Mode reports the bus width implied by the number of data pins.
func (g *GPIO) Mode() FunctionMode {
	return g.mode
}

// CanRead reports whether the R/W line is wired.
func (g *GPIO) CanRead() bool {
	return g.rw != nil
}

// RW drives the read/write line. The data pins are reconfigured as
// inputs before R/W goes high and back to outputs after it goes low,
// as the controller starts driving the bus while R/W is high.
func (g *GPIO) RW(bit bool) {
	if bit {
		for _, p := range g.data {
			_ = p.In(gpio.PullNoChange, gpio.NoEdge)
		}
		_ = g.rw.Out(gpio.High)
		return
	}
	_ = g.rw.Out(gpio.Low)
	for _, p := range g.data {
		_ = p.Out(gpio.Low)
	}
}

// ReadData samples the data lines.
func (g *GPIO) ReadData() byte {
	var data byte
	for i, p := range g.data {
		if p.Read() == gpio.High {
			data |= 1 << uint(i)
		}
	}
	return data
}

// HasBacklight reports whether a backlight line was wired in GPIOOpts.
func (g *GPIO) HasBacklight() bool {
	return g.bl != nil
}

// SetBacklight drives the backlight line.
func (g *GPIO) SetBacklight(on bool) {
	if g.bl != nil {
		_ = g.bl.Out(gpio.Level(on))
	}
}

// String returns a string representation of the binding.
func (g *GPIO) String() string {
	return fmt.Sprintf("hd44780.GPIO{rs:%s en:%s %d-bit}", g.rs, g.en, len(g.data))
}

var (
	_ Hardware  = &GPIO{}
	_ BusReader = &GPIO{}
	_ Backlight = &GPIO{}
)
