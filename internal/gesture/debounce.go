package gesture

// Debouncer suppresses symbol flicker by requiring a candidate to repeat for
// a number of consecutive cycles before it replaces the current symbol.
// A Debouncer with frames <= 1 passes every symbol through unchanged.
// Not safe for concurrent use; it belongs to the detect loop.
type Debouncer struct {
	frames    int
	current   Symbol
	candidate Symbol
	seen      int
}

// NewDebouncer creates a debouncer starting at None.
func NewDebouncer(frames int) *Debouncer {
	return &Debouncer{frames: frames}
}

// Push feeds one cycle's symbol and returns the debounced symbol.
func (d *Debouncer) Push(s Symbol) Symbol {
	if d.frames <= 1 || s == d.current {
		d.current = s
		d.candidate = s
		d.seen = 0
		return d.current
	}

	if s != d.candidate {
		d.candidate = s
		d.seen = 0
	}
	d.seen++
	if d.seen >= d.frames {
		d.current = s
		d.seen = 0
	}
	return d.current
}

// Current returns the last debounced symbol.
func (d *Debouncer) Current() Symbol {
	return d.current
}
