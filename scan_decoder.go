package jpegls

// Scan decoder, the exact inverse of scan_encoder.go, shaped after
// charls' scan_decoder split between a sample-level core and
// per-interleave line drivers.

// maxDecodedErrorMagnitude bounds the error values a well-formed stream
// can produce; anything larger indicates corrupt data.
const maxDecodedErrorMagnitude = 65535

// DecodeLine decodes one image line for every component in the scan into
// rows (rows[c] must have length width), the mirror of EncodeLine.
func (s *ScanCodec) DecodeLine(br *BitReader, rows [][]int) error {
	if s.interleave == InterleaveSample && s.components > 1 {
		return s.decodePixelLine(br, rows)
	}
	for c := 0; c < s.components; c++ {
		s.cm.SetRunIndex(s.runIndexes[c])
		if err := s.decodeSampleLine(br, rows[c], s.lbs[c]); err != nil {
			return err
		}
		s.runIndexes[c] = s.cm.RunIndex()
	}
	return nil
}

func (s *ScanCodec) decodeSampleLine(br *BitReader, dst []int, lb *lineBuffer) error {
	lb.StartLine()
	x := 0
	for x < s.width {
		ra, rb, rc, rd := lb.Neighbours(x)
		q1 := s.quantize(rd - rb)
		q2 := s.quantize(rb - rc)
		q3 := s.quantize(rc - ra)

		if q1 == 0 && q2 == 0 && q3 == 0 {
			n, err := s.decodeRun(br, dst, lb, x)
			if err != nil {
				return err
			}
			x += n
			continue
		}

		reconstructed, err := s.decodeRegular(br, q1, q2, q3, ra, rb, rc)
		if err != nil {
			return err
		}
		lb.Set(x, reconstructed)
		dst[x] = reconstructed
		x++
	}
	lb.NextLine()
	return nil
}

// decodeRegular decodes one sample in regular mode (F.1, A.5), the inverse
// of encodeRegular.
func (s *ScanCodec) decodeRegular(br *BitReader, q1, q2, q3, ra, rb, rc int) (int, error) {
	q, sign := ContextIndex(q1, q2, q3)
	ctx := s.cm.Regular(q)
	predicted := predictWithContext(ra, rb, rc, ctx.BiasCorrection(), sign, s.sc.maxVal)

	k, err := ctx.GolombK()
	if err != nil {
		return 0, err
	}
	mapped, err := s.golombLUT(k).Decode(br, k, s.sc.limit, s.sc.qbpp)
	if err != nil {
		return 0, err
	}
	if k == 0 && s.sc.near == 0 {
		mapped ^= ctx.NegativeBit()
	}
	errVal := unmapErrorValue(mapped)
	if errVal > maxDecodedErrorMagnitude || errVal < -maxDecodedErrorMagnitude {
		return 0, newError(KindInvalidData, "decoded error value out of range")
	}
	if err := ctx.Update(errVal, s.sc.near, s.sc.reset); err != nil {
		return 0, err
	}
	return computeReconstructedSample(predicted, errVal, sign, s.sc.near, s.sc.maxVal, s.sc.rangeVal), nil
}

func (s *ScanCodec) decodeRun(br *BitReader, dst []int, lb *lineBuffer, x int) (int, error) {
	ra := lb.Get(x - 1)

	runLength, err := DecodeRunLength(br, s.cm, s.width-x)
	if err != nil {
		return 0, err
	}
	for i := 0; i < runLength; i++ {
		lb.Set(x+i, ra)
		dst[x+i] = ra
	}
	if x+runLength == s.width {
		return runLength, nil
	}

	ix := x + runLength
	rb := lb.prevAt(ix)
	reconstructed, err := DecodeRunInterruptionSample(br, s.cm, ra, rb, s.sc)
	if err != nil {
		return 0, err
	}
	lb.Set(ix, reconstructed)
	dst[ix] = reconstructed
	s.cm.DecrementRunIndex()
	return runLength + 1, nil
}

// decodePixelLine decodes one line of a sample-interleaved scan, the
// inverse of encodePixelLine.
func (s *ScanCodec) decodePixelLine(br *BitReader, rows [][]int) error {
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
			n, err := s.decodePixelRun(br, rows, x)
			if err != nil {
				return err
			}
			x += n
			continue
		}
		for c, lb := range s.lbs {
			ra, rb, rc, _ := lb.Neighbours(x)
			reconstructed, err := s.decodeRegular(br, qs[3*c], qs[3*c+1], qs[3*c+2], ra, rb, rc)
			if err != nil {
				return err
			}
			lb.Set(x, reconstructed)
			rows[c][x] = reconstructed
		}
		x++
	}

	s.runIndexes[0] = s.cm.RunIndex()
	for _, lb := range s.lbs {
		lb.NextLine()
	}
	return nil
}

func (s *ScanCodec) decodePixelRun(br *BitReader, rows [][]int, x int) (int, error) {
	runLength, err := DecodeRunLength(br, s.cm, s.width-x)
	if err != nil {
		return 0, err
	}
	for c, lb := range s.lbs {
		ra := lb.Get(x - 1)
		for i := 0; i < runLength; i++ {
			lb.Set(x+i, ra)
			rows[c][x+i] = ra
		}
	}
	if x+runLength == s.width {
		return runLength, nil
	}

	ix := x + runLength
	for c, lb := range s.lbs {
		reconstructed, err := DecodeRunInterruptionComponent(br, s.cm, lb.Get(x-1), lb.prevAt(ix), s.sc)
		if err != nil {
			return 0, err
		}
		lb.Set(ix, reconstructed)
		rows[c][ix] = reconstructed
	}
	s.cm.DecrementRunIndex()
	return runLength + 1, nil
}
