package jpegls

// Scan encoder: the per-sample regular/run mode dispatch loop of ISO/IEC
// 14495-1 A.2, structured the way charls splits its scan_encoder — a
// shared sample-level core plus per-interleave line drivers — covering
// lossless and near-lossless coding for 1..4 components per scan.

// ScanCodec holds the adaptive state (contexts, line buffers, run
// indexes) that persists across the lines of one scan, and is recreated at
// the start of every scan and after every restart marker.
//
// All components of an interleaved scan share one context model; only the
// run index and the reconstructed-line history are private per component.
type ScanCodec struct {
	sc         scanConstants
	cm         *ContextModel
	qlt        *quantizationLUT
	width      int
	components int
	interleave InterleaveMode

	lbs        []*lineBuffer
	runIndexes []int

	// golombLUTs are built lazily, one per distinct Golomb parameter k
	// actually encountered in this scan (k ranges 0..16, A.5.1).
	golombLUTs [17]*GolombLUT
}

// NewScanCodec allocates fresh context and line-buffer state for a scan of
// the given pixel width, component count and interleave mode. A scan with
// interleave none always has componentCount 1 (each component is its own
// scan).
func NewScanCodec(sc scanConstants, width, componentCount int, interleave InterleaveMode) *ScanCodec {
	s := &ScanCodec{
		sc:         sc,
		cm:         NewContextModel(sc),
		qlt:        newQuantizationLUT(sc.maxVal, sc.near, sc.t1, sc.t2, sc.t3),
		width:      width,
		components: componentCount,
		interleave: interleave,
		lbs:        make([]*lineBuffer, componentCount),
		runIndexes: make([]int, componentCount),
	}
	for i := range s.lbs {
		s.lbs[i] = newLineBuffer(width)
	}
	return s
}

// golombLUT returns (building on first use) the fast decode table for
// parameter k within this scan's (limit, qbpp).
func (s *ScanCodec) golombLUT(k int) *GolombLUT {
	if s.golombLUTs[k] == nil {
		s.golombLUTs[k] = NewGolombLUT(k, s.sc.limit, s.sc.qbpp)
	}
	return s.golombLUTs[k]
}

// ResetForRestart reinitializes the adaptive state at a restart marker
// boundary: fresh contexts, zeroed run indexes and a zeroed line history,
// so the interval after the marker is coded independently of the pixels
// before it.
func (s *ScanCodec) ResetForRestart() {
	s.cm = NewContextModel(s.sc)
	for i := range s.runIndexes {
		s.runIndexes[i] = 0
	}
	for _, lb := range s.lbs {
		lb.Reset()
	}
}

func (s *ScanCodec) quantize(d int) int {
	return s.qlt.Lookup(d, s.sc.near, s.sc.t1, s.sc.t2, s.sc.t3)
}

// EncodeLine encodes one image line for every component in the scan.
// rows[c] holds component c's samples for this line (len == width), in
// already forward-color-transformed values. For a sample-interleaved scan
// all components are coded pixel by pixel; otherwise each component's line
// is coded in turn with its private run index.
func (s *ScanCodec) EncodeLine(bw *BitWriter, rows [][]int) error {
	if s.interleave == InterleaveSample && s.components > 1 {
		return s.encodePixelLine(bw, rows)
	}
	for c := 0; c < s.components; c++ {
		s.cm.SetRunIndex(s.runIndexes[c])
		if err := s.encodeSampleLine(bw, rows[c], s.lbs[c]); err != nil {
			return err
		}
		s.runIndexes[c] = s.cm.RunIndex()
	}
	return nil
}

// encodeSampleLine codes one component's line in regular/run mode.
func (s *ScanCodec) encodeSampleLine(bw *BitWriter, row []int, lb *lineBuffer) error {
	lb.StartLine()
	x := 0
	for x < s.width {
		ra, rb, rc, rd := lb.Neighbours(x)
		q1 := s.quantize(rd - rb)
		q2 := s.quantize(rb - rc)
		q3 := s.quantize(rc - ra)

		if q1 == 0 && q2 == 0 && q3 == 0 {
			n, err := s.encodeRun(bw, row, lb, x)
			if err != nil {
				return err
			}
			x += n
			continue
		}

		reconstructed, err := s.encodeRegular(bw, q1, q2, q3, row[x], ra, rb, rc)
		if err != nil {
			return err
		}
		lb.Set(x, reconstructed)
		x++
	}
	lb.NextLine()
	return nil
}

// encodeRegular codes one sample in regular mode and returns the
// reconstructed value (A.4, A.5).
func (s *ScanCodec) encodeRegular(bw *BitWriter, q1, q2, q3, x, ra, rb, rc int) (int, error) {
	q, sign := ContextIndex(q1, q2, q3)
	ctx := s.cm.Regular(q)
	predicted := predictWithContext(ra, rb, rc, ctx.BiasCorrection(), sign, s.sc.maxVal)

	errVal := computeErrorValue(applySign(x-predicted, sign), s.sc)

	k, err := ctx.GolombK()
	if err != nil {
		return 0, err
	}
	mapped := mapErrorValue(errVal)
	if k == 0 && s.sc.near == 0 {
		mapped ^= ctx.NegativeBit()
	}
	if err := EncodeGolomb(bw, mapped, k, s.sc.limit, s.sc.qbpp); err != nil {
		return 0, err
	}
	if err := ctx.Update(errVal, s.sc.near, s.sc.reset); err != nil {
		return 0, err
	}
	return computeReconstructedSample(predicted, errVal, sign, s.sc.near, s.sc.maxVal, s.sc.rangeVal), nil
}

// encodeRun handles the run-mode branch for one component starting at
// column x (all quantized gradients zero), returning the number of samples
// consumed (the run length, plus one more if interrupted before the line's
// end).
func (s *ScanCodec) encodeRun(bw *BitWriter, row []int, lb *lineBuffer, x int) (int, error) {
	ra := lb.Get(x - 1)
	runLength := countRun(row, x, s.width-x, ra, s.sc.near)
	endOfLine := x+runLength == s.width

	if err := EncodeRunLength(bw, s.cm, runLength, endOfLine); err != nil {
		return 0, err
	}
	for i := 0; i < runLength; i++ {
		lb.Set(x+i, ra)
	}
	if endOfLine {
		return runLength, nil
	}

	ix := x + runLength
	rb := lb.prevAt(ix)
	reconstructed, err := EncodeRunInterruptionSample(bw, s.cm, row[ix], ra, rb, s.sc)
	if err != nil {
		return 0, err
	}
	lb.Set(ix, reconstructed)
	s.cm.DecrementRunIndex()
	return runLength + 1, nil
}

// encodePixelLine codes one line of a sample-interleaved scan: each pixel's
// components are quantized against their own per-component neighbours, run
// mode is entered only when every component's context is zero, and run
// pixels repeat the whole previous pixel.
func (s *ScanCodec) encodePixelLine(bw *BitWriter, rows [][]int) error {
	for _, lb := range s.lbs {
		lb.StartLine()
	}
	s.cm.SetRunIndex(s.runIndexes[0])

	qs := make([]int, 3*s.components)
	x := 0
	for x < s.width {
		allZero := true
		for c, lb := range s.lbs {
			ra, rb, rc, rd := lb.Neighbours(x)
			qs[3*c] = s.quantize(rd - rb)
			qs[3*c+1] = s.quantize(rb - rc)
			qs[3*c+2] = s.quantize(rc - ra)
			if qs[3*c] != 0 || qs[3*c+1] != 0 || qs[3*c+2] != 0 {
				allZero = false
			}
		}
		if allZero {
			n, err := s.encodePixelRun(bw, rows, x)
			if err != nil {
				return err
			}
			x += n
			continue
		}
		for c, lb := range s.lbs {
			ra, rb, rc, _ := lb.Neighbours(x)
			reconstructed, err := s.encodeRegular(bw, qs[3*c], qs[3*c+1], qs[3*c+2], rows[c][x], ra, rb, rc)
			if err != nil {
				return err
			}
			lb.Set(x, reconstructed)
		}
		x++
	}

	s.runIndexes[0] = s.cm.RunIndex()
	for _, lb := range s.lbs {
		lb.NextLine()
	}
	return nil
}

// pixelRunLength counts how many whole pixels starting at x match the
// previous pixel (each component within NEAR).
func (s *ScanCodec) pixelRunLength(rows [][]int, x int) int {
	n := 0
	for x+n < s.width {
		for c, lb := range s.lbs {
			if !runMatches(rows[c][x+n], lb.Get(x-1), s.sc.near) {
				return n
			}
		}
		n++
	}
	return n
}

func (s *ScanCodec) encodePixelRun(bw *BitWriter, rows [][]int, x int) (int, error) {
	runLength := s.pixelRunLength(rows, x)
	endOfLine := x+runLength == s.width

	if err := EncodeRunLength(bw, s.cm, runLength, endOfLine); err != nil {
		return 0, err
	}
	for _, lb := range s.lbs {
		ra := lb.Get(x - 1)
		for i := 0; i < runLength; i++ {
			lb.Set(x+i, ra)
		}
	}
	if endOfLine {
		return runLength, nil
	}

	ix := x + runLength
	for c, lb := range s.lbs {
		reconstructed, err := EncodeRunInterruptionComponent(bw, s.cm, rows[c][ix], lb.Get(x-1), lb.prevAt(ix), s.sc)
		if err != nil {
			return 0, err
		}
		lb.Set(ix, reconstructed)
	}
	s.cm.DecrementRunIndex()
	return runLength + 1, nil
}
