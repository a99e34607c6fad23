package jpegls

// Gradient quantization lookup table in the style of charls'
// quantization_lut: QuantizeGradient's result is precomputed for every
// representable gradient difference so the regular-mode encode/decode loop
// never branches through the five threshold comparisons per sample.

// quantizationLUT is a precomputed gradient-to-region table for one set of
// (NEAR, T1, T2, T3). Index 0 corresponds to gradient -4*maxVal (the most
// negative difference two samples bound by [0,MAXVAL] can produce); see
// newQuantizationLUT for the exact offset.
type quantizationLUT struct {
	table  []int8
	offset int
}

// newQuantizationLUT builds the table for gradients in [-4*maxVal, 4*maxVal].
// That range comfortably covers every D = sample-sample difference the scan
// codec ever computes, since samples lie in [0,maxVal].
func newQuantizationLUT(maxVal, near, t1, t2, t3 int) *quantizationLUT {
	span := 4 * maxVal
	if span < 4 {
		span = 4
	}
	size := 2*span + 1
	lut := &quantizationLUT{
		table:  make([]int8, size),
		offset: span,
	}
	for d := -span; d <= span; d++ {
		lut.table[d+span] = int8(QuantizeGradient(d, near, t1, t2, t3))
	}
	return lut
}

// Lookup returns the quantized region for gradient d, falling back to the
// direct computation if d somehow falls outside the precomputed span (it
// never should for valid sample data, but this keeps the LUT safe to use
// defensively rather than panicking on out-of-range indices).
func (l *quantizationLUT) Lookup(d, near, t1, t2, t3 int) int {
	idx := d + l.offset
	if idx < 0 || idx >= len(l.table) {
		return QuantizeGradient(d, near, t1, t2, t3)
	}
	return int(l.table[idx])
}
