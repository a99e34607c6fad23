package jpegls

// Two-row rolling line buffer feeding the scan codec, with sentinel
// columns handling the edge-pixel rules of ISO/IEC 14495-1 A.2.1 so the
// inner loop never branches on column bounds (the shape charls'
// scan codecs use for their previous/current line pointers).

// lineBuffer holds the "current" and "previous" reconstructed rows for one
// component's scan, each padded with one sentinel sample on both ends so
// Ra/Rb/Rc/Rd neighbour lookups never need a bounds check (A.2.1 edge
// rules: previous_line[width+1] repeats previous_line[width],
// current_line[0] takes previous_line[1]).
type lineBuffer struct {
	width   int
	current []int
	prev    []int
}

// newLineBuffer allocates a buffer for a component of the given pixel width.
func newLineBuffer(width int) *lineBuffer {
	return &lineBuffer{
		width:   width,
		current: make([]int, width+2),
		prev:    make([]int, width+2),
	}
}

// StartLine initializes the sentinel columns for a new row per the A.2.1
// edge rules: the previous row's right sentinel repeats its last real sample
// (Rb/Rd at the right edge), and the current row's left sentinel takes the
// previous row's first sample (Ra/Rc at the left edge).
func (lb *lineBuffer) StartLine() {
	lb.prev[lb.width+1] = lb.prev[lb.width]
	lb.current[0] = lb.prev[1]
}

// Set records the reconstructed value for column x (0-based) of the
// current row.
func (lb *lineBuffer) Set(x, value int) {
	lb.current[x+1] = value
}

// Get returns the current row's sample at column x; x == -1 yields the
// left edge sentinel.
func (lb *lineBuffer) Get(x int) int { return lb.current[x+1] }

// prevAt returns the previous row's sample at column x (clamped to the
// right-edge sentinel when x is past the last real column), used by
// run-mode's interruption-sample coding to find Rb.
func (lb *lineBuffer) prevAt(x int) int {
	if x >= lb.width {
		return lb.prev[lb.width+1]
	}
	return lb.prev[x+1]
}

// Neighbours returns (Ra, Rb, Rc, Rd) for column x per A.2's naming: Ra is
// the reconstructed sample to the left on the current row, Rb above, Rc
// above-left, Rd above-right (Rd repeats Rb at the right edge of the row).
func (lb *lineBuffer) Neighbours(x int) (ra, rb, rc, rd int) {
	ra = lb.current[x]
	rb = lb.prev[x+1]
	rc = lb.prev[x]
	rd = lb.prev[x+2]
	return ra, rb, rc, rd
}

// Reset zeros both rows, used at a restart marker boundary: each restart
// interval's predictions must be independent of any pixel data coded
// before the marker.
func (lb *lineBuffer) Reset() {
	for i := range lb.current {
		lb.current[i] = 0
	}
	for i := range lb.prev {
		lb.prev[i] = 0
	}
}

// NextLine rotates the current row into "previous", called once per
// scanline.
func (lb *lineBuffer) NextLine() {
	lb.prev, lb.current = lb.current, lb.prev
}

// Row returns a view of the current row's real samples (not sentinels),
// useful for run-mode's run-match scanning which reads ahead along Ra.
func (lb *lineBuffer) Row() []int { return lb.current[1 : lb.width+1] }
