package hd44780

// Opts is the display geometry the driver validates cursor positions
// against. It describes the visible panel, not the controller: a 20x4
// panel is still a two-line device electrically (FunctionLine is passed
// to Init separately).
type Opts struct {
	// Rows is the number of visible character rows (1 to 4).
	Rows uint8
	// Cols is the number of visible character columns (1 to 40).
	Cols uint8
}

// DefaultOpts describes the ubiquitous 1602 panel.
var DefaultOpts = Opts{
	Rows: 2,
	Cols: 16,
}
