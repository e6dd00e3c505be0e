package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// PCF8574 backpack bit assignments. The expander's eight outputs drive
// the control lines and the high data nibble of the panel.
const (
	backpackRS        = 0x01
	backpackRW        = 0x02
	backpackEN        = 0x04
	backpackBacklight = 0x08
	backpackDataShift = 4 // D4-D7 on expander bits 4-7
)

// I2COpts is the configuration of an I2C backpack binding.
type I2COpts struct {
	// Addr is the I2C slave address of the expander. The PCF8574
	// responds on 0x20-0x27 depending on its address straps; 0 selects
	// the common default 0x27.
	Addr uint16

	// Backlight is the initial backlight state.
	Backlight bool
}

// I2C implements Hardware and Backlight for a display behind the common
// PCF8574 I2C backpack.
//
// The backpack only wires the high data nibble, so the bus is always
// 4-bit, and its R/W line is not readable through the expander, so
// synchronization always uses fixed delays. Every line change writes
// the full shadow register to the expander; write errors in the
// transfer path are discarded, as there is no error channel to the
// panel behind it anyway.
type I2C struct {
	c         i2c.Dev
	shadow    byte
	backlight bool
}

// NewI2C returns a Hardware binding over a PCF8574 backpack on the
// given bus.
//
// opts can be nil to use the default address 0x27 with the backlight
// off.
func NewI2C(b i2c.Bus, opts *I2COpts) (*I2C, error) {
	if b == nil {
		return nil, errors.New("hd44780: I2C bus is required")
	}
	if opts == nil {
		opts = &I2COpts{}
	}
	addr := opts.Addr
	switch {
	case addr == 0:
		addr = 0x27
	case addr >= 0x20 && addr <= 0x27:
	default:
		return nil, fmt.Errorf("hd44780: %#02x is not a PCF8574 address", addr)
	}

	h := &I2C{
		c:         i2c.Dev{Bus: b, Addr: addr},
		backlight: opts.Backlight,
	}
	// Drive the expander to the idle bus state.
	h.flush()
	return h, nil
}

// flush writes the shadow register, with the backlight bit folded in so
// that line changes never toggle the backlight.
func (h *I2C) flush() {
	data := h.shadow &^ backpackBacklight
	if h.backlight {
		data |= backpackBacklight
	}
	_ = h.c.Tx([]byte{data}, nil)
}

func (h *I2C) set(mask byte, bit bool) {
	if bit {
		h.shadow |= mask
	} else {
		h.shadow &^= mask
	}
	h.flush()
}

// RS drives the register select line.
func (h *I2C) RS(bit bool) {
	h.set(backpackRS, bit)
}

// Enable drives the enable line.
func (h *I2C) Enable(bit bool) {
	h.set(backpackEN, bit)
}

// Data drives the data nibble. Only the low 4 bits are used.
func (h *I2C) Data(data byte) {
	h.shadow = h.shadow&0x0f | data<<backpackDataShift
	h.flush()
}

// Mode reports Bit4; the backpack only wires the high data nibble.
func (h *I2C) Mode() FunctionMode {
	return Bit4
}

// HasBacklight reports true; the backpack always wires the backlight
// transistor to expander bit 3.
func (h *I2C) HasBacklight() bool {
	return true
}

// SetBacklight switches the backpack's backlight transistor.
func (h *I2C) SetBacklight(on bool) {
	h.backlight = on
	h.flush()
}

// String returns a string representation of the binding.
func (h *I2C) String() string {
	return fmt.Sprintf("hd44780.I2C{%s}", &h.c)
}

var (
	_ Hardware  = &I2C{}
	_ Backlight = &I2C{}
)
