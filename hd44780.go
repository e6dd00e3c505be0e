// Package hd44780 controls Hitachi HD44780-compatible character LCD
// controllers.
//
// The protocol core is hardware-agnostic: it talks to the display through
// the Hardware and Delay capabilities supplied by the caller, and supports
// both the 4-bit and the 8-bit bus, with either busy-flag polling or fixed
// worst-case delays for synchronization.
//
// See the package documentation in doc.go for wiring and usage details.
package hd44780

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3"
)

// FunctionMode selects the width of the data bus.
type FunctionMode byte

const (
	// Bit4 sends every byte as two nibble transfers, high nibble first.
	Bit4 FunctionMode = 0x00
	// Bit8 sends every byte as a single full-width transfer.
	Bit8 FunctionMode = 0x10
)

// FunctionDots selects the character font.
//
// The controller only supports the 5x10 font in 1-line mode. The driver
// does not enforce this; picking Dots5x10 together with Line2 is a caller
// error the hardware resolves on its own terms.
type FunctionDots byte

const (
	Dots5x8  FunctionDots = 0x00
	Dots5x10 FunctionDots = 0x04
)

// FunctionLine selects the number of display lines. Panels with four
// visible rows are two-line devices electrically.
type FunctionLine byte

const (
	Line1 FunctionLine = 0x00
	Line2 FunctionLine = 0x08
)

// DisplayMode turns the entire display on or off. DDRAM content is
// retained while the display is off.
type DisplayMode byte

const (
	DisplayOff DisplayMode = 0x00
	DisplayOn  DisplayMode = 0x04
)

// DisplayCursor turns the underline cursor on or off.
type DisplayCursor byte

const (
	CursorOff DisplayCursor = 0x00
	CursorOn  DisplayCursor = 0x02
)

// DisplayBlink makes the character at the cursor position blink.
type DisplayBlink byte

const (
	BlinkOff DisplayBlink = 0x00
	BlinkOn  DisplayBlink = 0x01
)

// Direction is the direction of a cursor or display shift.
type Direction byte

const (
	Left  Direction = 0x00
	Right Direction = 0x04
)

// EntryModeDirection selects which way the cursor moves after a data
// read or write.
type EntryModeDirection byte

const (
	EntryLeft  EntryModeDirection = 0x00
	EntryRight EntryModeDirection = 0x02
)

// EntryModeShift selects whether the whole display shifts (instead of
// the cursor moving) after a data read or write.
type EntryModeShift byte

const (
	NoShift EntryModeShift = 0x00
	Shift   EntryModeShift = 0x01
)

// Command classes, per the HD44780 datasheet. The low bits of each
// command byte carry the option flags defined above.
const (
	cmdClearDisplay   = 0x01
	cmdReturnHome     = 0x02
	cmdEntryModeSet   = 0x04
	cmdDisplayControl = 0x08
	cmdCursorShift    = 0x10
	cmdFunctionSet    = 0x20
	cmdSetCGRAMAddr   = 0x40
	cmdSetDDRAMAddr   = 0x80

	// Shift selector for cmdCursorShift.
	moveDisplay = 0x08
	moveCursor  = 0x00

	// Most significant bit of a status read.
	busyFlag = 0x80
)

// Delays in microseconds, all taken from the datasheet with margin.
const (
	pulseDelay  = 1    // enable pulse width, minimum is 450ns
	initDelay1  = 4500 // after the first function set, minimum is 4.1ms
	initDelay2  = 150  // after the second function set, minimum is 100us
	shortDelay  = 50   // typical command execution time is 37us
	longDelay   = 2000 // clear/home execution time, up to 1.52ms
	settleDelay = 5    // address counter update after a data write (tADD)
)

// Hardware is the pin-control capability the driver is layered over.
//
// Implementations drive the physical R/S, EN and data lines of the
// controller. None of the methods return an error: the HD44780 offers no
// acknowledgment channel, so a pin-level fault is not observable by
// software and implementations are expected to validate their wiring at
// construction time instead.
type Hardware interface {
	// RS drives the register select line. High selects the data
	// register, low the instruction register.
	RS(bit bool)
	// Enable drives the enable line. Data is latched on the falling
	// edge.
	Enable(bit bool)
	// Data drives the data bus. In 4-bit mode only the low 4 bits are
	// used.
	Data(data byte)
	// Mode reports the width of the data bus. The value must be fixed
	// for the lifetime of the binding.
	Mode() FunctionMode
}

// Delay is the timing capability. DelayMicroseconds must block the
// caller for at least the given number of microseconds.
type Delay interface {
	DelayMicroseconds(us uint32)
}

// BusReader is optionally implemented by Hardware that can reverse the
// bus and sample the data lines. When available (and CanRead reports
// true), the driver polls the busy flag instead of sleeping for
// worst-case command durations.
//
// Note that the controller typically runs at 5V, so the data inputs must
// be 5V-tolerant when the busy flag is used.
type BusReader interface {
	// CanRead reports whether read-back is actually wired. The value
	// must be fixed for the lifetime of the binding.
	CanRead() bool
	// RW drives the read/write line. Implementations must reconfigure
	// the data lines for input before driving R/W high, and back to
	// output after driving it low.
	RW(bit bool)
	// ReadData samples the data bus (D0-D7 in 8-bit mode, D4-D7 in
	// 4-bit mode).
	ReadData() byte
}

// Backlight is optionally implemented by Hardware that controls a
// backlight line.
type Backlight interface {
	// HasBacklight reports whether a backlight line is actually wired.
	// The value must be fixed for the lifetime of the binding.
	HasBacklight() bool
	SetBacklight(on bool)
}

// rowOffsets maps a row index to its DDRAM base address. Rows 2 and 3
// continue rows 0 and 1, which is why their offsets are not
// monotonic.
var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

// Dev drives one HD44780-compatible controller.
//
// Dev is stateless beyond its immutable configuration: the cursor
// position and display contents live in the controller, never in the
// driver. Every method is synchronous and blocks until the controller
// is expected to be ready for the next command.
//
// Dev is not safe for concurrent use. A transfer interrupted halfway
// (for example from another goroutine or an interrupt handler) leaves
// the controller's bus state desynchronized until it is re-initialized,
// so the caller must serialize access.
type Dev struct {
	hw    Hardware
	delay Delay
	mode  FunctionMode
	rd    BusReader // nil when the busy flag cannot be read
	bl    Backlight // nil when no backlight line is wired

	rows uint8
	cols uint8
}

// New returns a driver for a display reachable through the given
// capabilities.
//
// The bus width is queried from hw once and never re-evaluated. If hw
// implements BusReader and reports read-back support, synchronization
// uses busy-flag polling; otherwise every command is followed by a
// conservative fixed delay. If hw implements Backlight and reports a
// wired backlight line, SetBacklight becomes available.
//
// opts can be nil to use defaults (2 rows by 16 columns).
func New(hw Hardware, delay Delay, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Rows < 1 || opts.Rows > 4 {
		return nil, errors.New("hd44780: rows must be between 1 and 4")
	}
	if opts.Cols < 1 || opts.Cols > 40 {
		return nil, errors.New("hd44780: columns must be between 1 and 40")
	}

	d := &Dev{
		hw:    hw,
		delay: delay,
		mode:  hw.Mode(),
		rows:  opts.Rows,
		cols:  opts.Cols,
	}
	if rd, ok := hw.(BusReader); ok && rd.CanRead() {
		d.rd = rd
	}
	if bl, ok := hw.(Backlight); ok && bl.HasBacklight() {
		d.bl = bl
	}
	return d, nil
}

// Init brings the controller from its unknown power-on state into the
// configured bus width, line count and font, then leaves it with the
// display off, cleared, and the entry mode set to left-to-right without
// display shift.
//
// The function set command is deliberately issued three times with the
// datasheet-mandated delays: the controller may power up in either bus
// width and the repetition forces it into a known state regardless.
// This is not failure recovery, it is unconditional.
func (d *Dev) Init(line FunctionLine, dots FunctionDots) {
	d.hw.RS(false)
	switch d.mode {
	case Bit8:
		// The controller parses full bytes from the start, so the
		// function set can be latched three times as-is.
		d.sendData(cmdFunctionSet | byte(Bit8) | byte(Line2) | byte(Dots5x10))
		d.delay.DelayMicroseconds(initDelay1)

		d.pulseEnable()
		d.delay.DelayMicroseconds(initDelay2)

		d.pulseEnable()
		d.waitReady(shortDelay)
	default:
		// Until the bus width is settled the controller cannot parse a
		// two-nibble byte, so only the high nibble of the function set
		// goes out for the three reset transfers.
		d.sendData((cmdFunctionSet | byte(Bit8)) >> 4)
		d.delay.DelayMicroseconds(initDelay1)

		d.pulseEnable()
		d.delay.DelayMicroseconds(initDelay2)

		d.pulseEnable()
		d.waitReady(shortDelay)

		// Switch to 4-bit mode. From here on every byte is two nibbles.
		d.sendData((cmdFunctionSet | byte(Bit4)) >> 4)
		d.waitReady(shortDelay)
	}

	// Lock in the line count and font. The function set cannot be
	// changed again after this point.
	d.command(cmdFunctionSet | byte(d.mode) | byte(line) | byte(dots))

	d.SetDisplay(DisplayOff, CursorOff, BlinkOff)
	d.Clear()
	d.EntryMode(EntryRight, NoShift)
}

// Clear clears the display and returns the cursor to the home position
// (DDRAM address 0).
func (d *Dev) Clear() {
	d.command(cmdClearDisplay)
	// Takes up to 1.52ms to execute.
	d.waitReady(longDelay)
}

// Home returns the cursor to the home position and undoes any display
// shift. DDRAM content is unchanged.
func (d *Dev) Home() {
	d.command(cmdReturnHome)
	// Takes up to 1.52ms to execute.
	d.waitReady(longDelay)
}

// EntryMode sets the cursor move direction and whether the display
// shifts on data reads and writes.
func (d *Dev) EntryMode(dir EntryModeDirection, shift EntryModeShift) {
	d.command(cmdEntryModeSet | byte(dir) | byte(shift))
}

// SetDisplay sets the display on/off, cursor on/off and cursor blink
// flags.
func (d *Dev) SetDisplay(display DisplayMode, cursor DisplayCursor, blink DisplayBlink) {
	d.command(cmdDisplayControl | byte(display) | byte(cursor) | byte(blink))
}

// Scroll shifts the entire display one position in the given direction.
// DDRAM content is unchanged.
func (d *Dev) Scroll(dir Direction) {
	d.command(cmdCursorShift | moveDisplay | byte(dir))
}

// Cursor moves the cursor one position in the given direction. DDRAM
// content is unchanged.
func (d *Dev) Cursor(dir Direction) {
	d.command(cmdCursorShift | moveCursor | byte(dir))
}

// Position moves the cursor to the given row and column. It fails if
// the position is outside the geometry the driver was configured with,
// rather than computing a bogus DDRAM address.
func (d *Dev) Position(row, col uint8) error {
	if row >= d.rows {
		return fmt.Errorf("hd44780: row %d out of range, display has %d rows", row, d.rows)
	}
	if col >= d.cols {
		return fmt.Errorf("hd44780: column %d out of range, display has %d columns", col, d.cols)
	}
	d.command(cmdSetDDRAMAddr | (rowOffsets[row] + col))
	return nil
}

// DDRAMAddr sets the DDRAM address directly. Useful for panels whose
// row layout differs from the standard offset table.
func (d *Dev) DDRAMAddr(addr byte) {
	d.command(cmdSetDDRAMAddr | addr)
}

// CGRAMAddr sets the CGRAM address directly. Subsequent data writes go
// to character generator RAM until a DDRAM address is set.
func (d *Dev) CGRAMAddr(addr byte) {
	d.command(cmdSetCGRAMAddr | addr)
}

// UploadCharacter stores a user-defined glyph in one of the eight CGRAM
// locations. Each of the 8 bytes is one pixel row, of which the low 5
// bits are used. The glyph is displayed by writing the location number
// as a character code.
//
// The cursor position is clobbered; call Position afterwards.
func (d *Dev) UploadCharacter(location uint8, glyph [8]byte) error {
	if location > 7 {
		return fmt.Errorf("hd44780: CGRAM location %d out of range, must be 0-7", location)
	}
	d.command(cmdSetCGRAMAddr | (location&0x7)<<3)
	for _, row := range glyph {
		d.WriteChar(row)
	}
	return nil
}

// WriteChar writes a single character code at the current cursor
// position. Codes 0-7 select the CGRAM glyphs, the rest the
// controller's native character table.
func (d *Dev) WriteChar(c byte) {
	d.hw.RS(true)
	d.send(c)
	d.waitReady(shortDelay)
	// The address counter needs another 4us (tADD) after busy clears.
	d.delay.DelayMicroseconds(settleDelay)
}

// Write writes every byte of p as a character, one transfer per byte
// with its own synchronization wait. It implements io.Writer so the
// display can be a target of fmt.Fprintf; it never fails.
func (d *Dev) Write(p []byte) (int, error) {
	for _, c := range p {
		d.WriteChar(c)
	}
	return len(p), nil
}

// WriteString writes s as a sequence of characters. It implements
// io.StringWriter.
func (d *Dev) WriteString(s string) (int, error) {
	return d.Write([]byte(s))
}

// SetBacklight turns the backlight on or off. It fails if the hardware
// binding does not expose a backlight line.
func (d *Dev) SetBacklight(on bool) error {
	if d.bl == nil {
		return errors.New("hd44780: hardware has no backlight control")
	}
	d.bl.SetBacklight(on)
	return nil
}

// Halt blanks the display and switches the backlight off if there is
// one. It implements conn.Resource.
func (d *Dev) Halt() error {
	d.SetDisplay(DisplayOff, CursorOff, BlinkOff)
	if d.bl != nil {
		d.bl.SetBacklight(false)
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("hd44780.Dev{%dx%d}", d.cols, d.rows)
}

// command sends one instruction byte and waits for it to complete.
func (d *Dev) command(cmd byte) {
	d.hw.RS(false)
	d.send(cmd)
	d.waitReady(shortDelay)
}

// send moves one byte over the bus, as a single transfer in 8-bit mode
// or as two nibble transfers (high first) in 4-bit mode. The controller
// only becomes busy after the complete byte, so synchronization is the
// caller's job.
func (d *Dev) send(data byte) {
	if d.mode == Bit8 {
		d.sendData(data)
		return
	}
	d.sendData(data >> 4)
	d.sendData(data & 0xf)
}

// sendData latches the given bus state into the controller.
func (d *Dev) sendData(data byte) {
	d.hw.Data(data)
	d.pulseEnable()
}

func (d *Dev) pulseEnable() {
	d.hw.Enable(true)
	d.delay.DelayMicroseconds(pulseDelay)
	d.hw.Enable(false)
}

// waitReady blocks until the controller has finished the previous
// command: by polling the busy flag when the bus can be read, otherwise
// by sleeping for the given worst-case duration.
//
// The poll loop is bounded only by the device. The datasheet guarantees
// every command completes in bounded time, and there is no error
// channel that could make a software timeout meaningful, so a stuck or
// miswired device hangs the caller. This is an intentional limitation.
func (d *Dev) waitReady(us uint32) {
	if d.rd == nil {
		d.delay.DelayMicroseconds(us)
		return
	}
	d.hw.RS(false)
	d.rd.RW(true)
	for d.receive()&busyFlag != 0 {
	}
	d.rd.RW(false)
}

// receive reads one status byte, assembling it from two nibble reads in
// 4-bit mode.
func (d *Dev) receive() byte {
	if d.mode == Bit8 {
		return d.receiveData()
	}
	hi := d.receiveData() << 4
	lo := d.receiveData() & 0xf
	return hi | lo
}

// receiveData clocks one read transfer out of the controller.
func (d *Dev) receiveData() byte {
	d.hw.Enable(true)
	d.delay.DelayMicroseconds(pulseDelay)
	data := d.rd.ReadData()
	d.delay.DelayMicroseconds(pulseDelay)
	d.hw.Enable(false)
	return data
}

var (
	_ conn.Resource   = &Dev{}
	_ io.Writer       = &Dev{}
	_ io.StringWriter = &Dev{}
)
