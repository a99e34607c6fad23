package jpegls

// Frame and coding parameter types, their validation, and the
// default-threshold derivation of ISO/IEC 14495-1 Annex C.2.4.1.1.1.

// InterleaveMode selects how multi-component scans are laid out.
type InterleaveMode int

const (
	InterleaveNone InterleaveMode = iota
	InterleaveLine
	InterleaveSample
)

// ColorTransformation selects the reversible HP transform applied before
// encoding a 3-component image.
type ColorTransformation int

const (
	ColorTransformNone ColorTransformation = iota
	ColorTransformHP1
	ColorTransformHP2
	ColorTransformHP3
)

// FrameInfo describes the image shape, read-only once a session starts.
type FrameInfo struct {
	Width          uint32
	Height         uint32
	BitsPerSample  int
	ComponentCount int
}

func (fi FrameInfo) validate() error {
	if fi.Width == 0 {
		return newError(KindInvalidParameterWidth, "width must be non-zero")
	}
	if fi.Height == 0 {
		return newError(KindInvalidParameterHeight, "height must be non-zero")
	}
	if fi.BitsPerSample < 2 || fi.BitsPerSample > 16 {
		return newError(KindInvalidParameterBitsPerSample, "bits_per_sample must be in [2,16]")
	}
	if fi.ComponentCount < 1 || fi.ComponentCount > 255 {
		return newError(KindInvalidParameterComponentCount, "component_count must be in [1,255]")
	}
	return nil
}

// CodingParameters controls how a scan is encoded.
type CodingParameters struct {
	NearLossless        int
	InterleaveMode      InterleaveMode
	RestartInterval     uint32
	ColorTransformation ColorTransformation
}

func (cp CodingParameters) validate(fi FrameInfo) error {
	maxNear := 255
	if v := maxValFor(fi.BitsPerSample) / 2; v < maxNear {
		maxNear = v
	}
	if cp.NearLossless < 0 || cp.NearLossless > maxNear {
		return newError(KindInvalidParameterNearLossless, "near_lossless out of range")
	}
	if cp.InterleaveMode != InterleaveNone && cp.InterleaveMode != InterleaveLine && cp.InterleaveMode != InterleaveSample {
		return newError(KindInvalidParameterInterleaveMode, "unknown interleave mode")
	}
	if fi.ComponentCount == 1 && cp.InterleaveMode != InterleaveNone {
		return newError(KindInvalidParameterInterleaveMode, "single component must use interleave none")
	}
	if cp.ColorTransformation != ColorTransformNone {
		if fi.ComponentCount != 3 || (fi.BitsPerSample != 8 && fi.BitsPerSample != 16) {
			return newError(KindInvalidParameterColorTransformation, "color transform requires 3 components at 8 or 16 bits")
		}
	}
	return nil
}

// PresetCodingParameters are the JPEG-LS preset coding parameters
// (MAXVAL/T1/T2/T3/RESET) carried in an LSE type-1 segment. A zero
// MaximumSampleValue or ResetValue means "use the default"; the thresholds
// take the defaults derived from (MaxValue, NEAR) only when all three are
// zero, and a partly zero threshold set is used as given.
type PresetCodingParameters struct {
	MaximumSampleValue int
	Threshold1         int
	Threshold2         int
	Threshold3         int
	ResetValue         int
}

// IsDefault reports whether all fields are zero (i.e. "use defaults").
func (pc PresetCodingParameters) IsDefault() bool {
	return pc.MaximumSampleValue == 0 && pc.Threshold1 == 0 && pc.Threshold2 == 0 &&
		pc.Threshold3 == 0 && pc.ResetValue == 0
}

func (pc PresetCodingParameters) validate(maxValLimit int) error {
	if pc.MaximumSampleValue < 0 || pc.MaximumSampleValue > maxValLimit {
		return newError(KindInvalidParameterJpegLSPresetCodingParameters, "maximum_sample_value out of range")
	}
	if pc.Threshold1 < 0 || pc.Threshold2 < 0 || pc.Threshold3 < 0 || pc.ResetValue < 0 || pc.ResetValue > 255 {
		return newError(KindInvalidParameterJpegLSPresetCodingParameters, "negative or out-of-range threshold/reset")
	}
	if !pc.IsDefault() {
		if !(pc.Threshold1 <= pc.Threshold2 && pc.Threshold2 <= pc.Threshold3) {
			return newError(KindInvalidParameterJpegLSPresetCodingParameters, "thresholds must be non-decreasing")
		}
	}
	return nil
}

const defaultResetValue = 64

func maxValFor(bitsPerSample int) int {
	return (1 << uint(bitsPerSample)) - 1
}

// clampThreshold is the clamping function of ISO/IEC 14495-1 Figure C.3:
// a value outside [low, maxVal] falls back to the lower bound.
func clampThreshold(v, low, maxVal int) int {
	if v > maxVal || v < low {
		return low
	}
	return v
}

// computeDefaultThresholds derives T1/T2/T3 from (MAXVAL, NEAR) per
// ISO/IEC 14495-1 Annex C.2.4.1.1.1, using the basic threshold set
// {3, 7, 21} defined for MAXVAL=255, NEAR=0 (Table C.3).
func computeDefaultThresholds(maxVal, near int) (t1, t2, t3 int) {
	const basicT1, basicT2, basicT3 = 3, 7, 21

	if maxVal >= 128 {
		factor := (minInt(maxVal, 4095) + 128) / 256
		t1 = clampThreshold(factor*(basicT1-2)+2+3*near, near+1, maxVal)
		t2 = clampThreshold(factor*(basicT2-3)+3+5*near, t1, maxVal)
		t3 = clampThreshold(factor*(basicT3-4)+4+7*near, t2, maxVal)
		return t1, t2, t3
	}

	factor := 256 / (maxVal + 1)
	t1 = clampThreshold(maxInt(2, basicT1/factor+3*near), near+1, maxVal)
	t2 = clampThreshold(maxInt(3, basicT2/factor+5*near), t1, maxVal)
	t3 = clampThreshold(maxInt(4, basicT3/factor+7*near), t2, maxVal)
	return t1, t2, t3
}

// resolvePresetCodingParameters validates pc, then fills in the default
// MaximumSampleValue and ResetValue where they are zero and the default
// thresholds where all three thresholds are zero.
func resolvePresetCodingParameters(bitsPerSample, near int, pc PresetCodingParameters) (PresetCodingParameters, error) {
	maxVal := maxValFor(bitsPerSample)
	if err := pc.validate(maxVal); err != nil {
		return pc, err
	}

	out := pc
	if out.MaximumSampleValue == 0 {
		out.MaximumSampleValue = maxVal
	}
	if out.Threshold1 == 0 && out.Threshold2 == 0 && out.Threshold3 == 0 {
		out.Threshold1, out.Threshold2, out.Threshold3 = computeDefaultThresholds(out.MaximumSampleValue, near)
	}
	if out.ResetValue == 0 {
		out.ResetValue = defaultResetValue
	}
	return out, nil
}

// scanConstants are the per-scan derived values of ISO/IEC 14495-1 A.2.1:
// RANGE, LIMIT and qbpp, alongside the resolved preset parameters.
type scanConstants struct {
	maxVal     int
	near       int
	t1, t2, t3 int
	reset      int
	rangeVal   int
	limit      int
	qbpp       int
	bitsPerPel int
}

func newScanConstants(bitsPerSample, near int, pc PresetCodingParameters) scanConstants {
	rangeVal := (pc.MaximumSampleValue + 2*near) / (2*near + 1) + 1
	qbpp := 0
	for (1 << uint(qbpp)) < rangeVal {
		qbpp++
	}
	bpp := bitsPerSample
	if bpp < 2 {
		bpp = 2
	}
	limit := 2 * (bpp + maxInt(8, bpp))
	return scanConstants{
		maxVal:     pc.MaximumSampleValue,
		near:       near,
		t1:         pc.Threshold1,
		t2:         pc.Threshold2,
		t3:         pc.Threshold3,
		reset:      pc.ResetValue,
		rangeVal:   rangeVal,
		limit:      limit,
		qbpp:       qbpp,
		bitsPerPel: bitsPerSample,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
