// Package delay implements the loopdrift delay engine: a single circular
// history shared by every channel, a write cursor, a drifting read cursor and
// the mode state machine that mixes taps and perturbs the read cursor.
package delay

const (
	// Capacity is the number of slots in the history buffer.
	Capacity = 400000

	// Boundary is the wrap trigger for both cursors. A cursor that reaches
	// Boundary resets to 0, so the last slot of the buffer is never written.
	Boundary = Capacity - 1

	// InitialReadCursor places the first reads at the untouched top slot.
	InitialReadCursor = Boundary

	// ScaleDenominator is the fixed-point denominator for the delay and time
	// parameters: a value of 1000 leaves the cursor unchanged.
	ScaleDenominator = 1000
)

// History is a fixed-capacity circular sample buffer with independent write
// and read cursors.
type History struct {
	buffer      []float32
	writeCursor int
	readCursor  int
}

// NewHistory creates a zero-filled history.
func NewHistory() *History {
	return &History{
		buffer:     make([]float32, Capacity),
		readCursor: InitialReadCursor,
	}
}

// Reset clears the buffer and restores the initial cursors - no allocations
func (h *History) Reset() {
	for i := range h.buffer {
		h.buffer[i] = 0
	}
	h.writeCursor = 0
	h.readCursor = InitialReadCursor
}

// Write stores a sample at the write cursor and advances it by one.
// The cursor is not wrapped here; Wrap runs once at the end of a step.
func (h *History) Write(sample float32) {
	h.buffer[h.writeCursor] = sample
	h.writeCursor++
}

// Read returns the slot at index without mutating anything.
func (h *History) Read(index int) float32 {
	return h.buffer[index]
}

// Tap reads the slot under the read cursor.
func (h *History) Tap() float32 {
	return h.buffer[h.readCursor]
}

// ScaledTap reads the slot at readCursor*scale/1000, wrapped into range.
func (h *History) ScaledTap(scale int) float32 {
	return h.buffer[wrap(scaleIndex(h.readCursor, scale))]
}

// AdvanceRead adds delta to the read cursor without wrapping.
func (h *History) AdvanceRead(delta int) {
	h.readCursor += delta
}

// Rescale multiplies the read cursor by time/1000 with integer truncation and
// wraps the result.
func (h *History) Rescale(time int) {
	h.readCursor = wrap(scaleIndex(h.readCursor, time))
}

// Wrap applies the boundary rule to both cursors.
func (h *History) Wrap() {
	h.writeCursor = wrap(h.writeCursor)
	h.readCursor = wrap(h.readCursor)
}

// WriteCursor returns the next slot to be written.
func (h *History) WriteCursor() int {
	return h.writeCursor
}

// ReadCursor returns the slot read as the delayed tap.
func (h *History) ReadCursor() int {
	return h.readCursor
}

// SetWriteCursor moves the write cursor, wrapping out-of-range values.
func (h *History) SetWriteCursor(pos int) {
	h.writeCursor = wrap(pos)
}

// SetReadCursor moves the read cursor, wrapping out-of-range values.
func (h *History) SetReadCursor(pos int) {
	h.readCursor = wrap(pos)
}

// wrap resets a cursor to 0 once it reaches Boundary. Negative cursors (a
// mode 6/7 decrement right after a wrap) also land on 0.
func wrap(pos int) int {
	if pos < 0 || pos >= Boundary {
		return 0
	}
	return pos
}

// scaleIndex computes pos*scale/1000 in 64-bit so the product cannot overflow.
func scaleIndex(pos, scale int) int {
	return int(int64(pos) * int64(scale) / ScaleDenominator)
}
