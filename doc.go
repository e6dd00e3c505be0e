// Package hd44780 controls Hitachi HD44780-compatible character LCD
// controllers, the chipset behind most 16x2 and 20x4 text panels.
//
// The package is split into a hardware-agnostic protocol core and two
// ready-made hardware bindings:
//
//   - the core (Dev) produces the exact pin transitions and delays the
//     controller requires, in 4-bit and 8-bit bus mode, synchronizing
//     either on the busy flag or on fixed worst-case delays
//   - GPIO binds a panel wired directly to periph.io GPIO pins
//   - I2C binds a panel behind the common PCF8574 I2C backpack
//
// Custom hardware (memory-mapped ports, shift registers, test doubles)
// plugs in by implementing the Hardware and Delay capabilities and,
// optionally, BusReader and Backlight.
//
// # Hardware Connection
//
// Direct wiring in 4-bit mode uses six GPIOs plus power:
//
//	Panel Pin → System Pin
//	VSS       → GND
//	VDD       → 5V
//	V0        → contrast potentiometer wiper
//	RS        → any GPIO
//	RW        → GND (or a GPIO, to enable busy-flag polling)
//	E         → any GPIO
//	D4..D7    → any four GPIOs
//	A/K       → backlight supply (or a GPIO through a transistor)
//
// With an I2C backpack only SDA and SCL are needed.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"fmt"
//
//		"periph.io/x/conn/v3/gpio"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/devices/v3/hd44780"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		hw, _ := hd44780.NewGPIO(
//			gpioreg.ByName("GPIO22"), // RS
//			gpioreg.ByName("GPIO23"), // E
//			[]gpio.PinIO{
//				gpioreg.ByName("GPIO24"), // D4
//				gpioreg.ByName("GPIO25"), // D5
//				gpioreg.ByName("GPIO26"), // D6
//				gpioreg.ByName("GPIO27"), // D7
//			},
//			nil)
//
//		dev, _ := hd44780.New(hw, hd44780.SleepDelay{}, nil)
//		dev.Init(hd44780.Line2, hd44780.Dots5x8)
//		dev.SetDisplay(hd44780.DisplayOn, hd44780.CursorOff, hd44780.BlinkOff)
//
//		fmt.Fprintf(dev, "Hello, %s!", "world")
//	}
//
// # Synchronization
//
// The controller signals completion of the previous command through a
// busy flag readable from its status register. When the binding can
// read the bus (GPIO with an R/W pin), the driver polls that flag;
// otherwise it sleeps for the worst-case execution time of each
// command (50us for most commands, 2ms for Clear and Home).
//
// The busy-flag poll has no timeout. The datasheet guarantees every
// command completes in bounded time, and the protocol has no error
// channel a timeout could be reported through, so a device that never
// clears its busy flag (usually a wiring fault) hangs the caller.
//
// # Concurrency
//
// Dev holds no mutable state, but the bus it drives is a physical
// singleton and a transfer interrupted halfway desynchronizes the
// controller until it is re-initialized. Callers must serialize
// access; the driver takes no locks.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780
