package hd44780

import "time"

// SleepDelay implements Delay with time.Sleep. It is suitable for
// hosted targets such as a Raspberry Pi, where sub-millisecond
// oversleeping only costs latency.
//
// Bare-metal callers should supply their own cycle-accurate Delay
// instead.
type SleepDelay struct{}

// DelayMicroseconds blocks for at least us microseconds.
func (SleepDelay) DelayMicroseconds(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
