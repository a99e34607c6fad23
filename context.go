package jpegls

// Context modeling state: the 365 regular-mode contexts, the two
// run-interruption contexts and the adaptive run index, with the update
// equations of ISO/IEC 14495-1 A.12/A.13/A.21/A.23.

const (
	// RegularContextCount is the number of regular-mode contexts (365 per
	// ITU-T T.87, Q in [0,364] after sign normalization).
	RegularContextCount = 365
	runContextCount     = 2

	contextOverflowLimit = 1 << 24
	minBiasCorrection    = -128
	maxBiasCorrection    = 127
)

// JTable is the run-length coding order table of ITU-T T.87 Table A.2: the
// number of bits (RK) used to encode a run segment at a given run index.
var JTable = [32]int{
	0, 0, 0, 0, 1, 1, 1, 1,
	2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

// RegularContext holds the adaptive statistics (A, B, C, N) for one of
// the 365 regular contexts.
type RegularContext struct {
	A int
	B int
	C int
	N int
}

func newRegularContext(initA int) RegularContext {
	return RegularContext{A: initA, B: 0, C: 0, N: 1}
}

// GolombK returns the Golomb-Rice parameter k for this context, per
// ITU-T T.87 A.5.1: the smallest k with N<<k >= A, capped at 16.
func (c *RegularContext) GolombK() (int, error) {
	k := 0
	for k < 16 && (c.N<<uint(k)) < c.A {
		k++
	}
	if k == 16 && c.A > (c.N<<16) {
		return 0, newError(KindInvalidData, "regular context Golomb parameter exceeds limit")
	}
	return k, nil
}

// BiasCorrection returns the signed bias-correction value C[Q].
func (c *RegularContext) BiasCorrection() int { return c.C }

// NegativeBit is the k==0 sign correction of A.5.1: when the Golomb
// parameter is 0, the mapped error is additionally XORed with sign_of(2B+N-1)
// to fold the context's residual bias into the code. Callers must read this
// before calling Update, which consumes the same B/N it inspects here.
func (c *RegularContext) NegativeBit() int {
	if 2*c.B+c.N-1 < 0 {
		return 1
	}
	return 0
}

// Update applies the regular-mode statistics update of A.12/A.13 for a
// (already sign-flipped, modulo-reduced) prediction error and the NEAR
// parameter and reset threshold in force for the scan.
func (c *RegularContext) Update(errVal, near, reset int) error {
	absErr := errVal
	if absErr < 0 {
		absErr = -absErr
	}
	c.A += absErr
	c.B += errVal * (2*near + 1)

	if c.A >= contextOverflowLimit || c.B >= contextOverflowLimit || c.B <= -contextOverflowLimit {
		return newError(KindInvalidData, "regular context accumulator overflow")
	}

	if c.N == reset {
		c.A >>= 1
		if c.B >= 0 {
			c.B >>= 1
		} else {
			c.B = -((1 - c.B) >> 1)
		}
		c.N >>= 1
	}
	c.N++

	if c.B+c.N <= 0 {
		c.B += c.N
		if c.B <= -c.N {
			c.B = -c.N + 1
		}
		if c.C > minBiasCorrection {
			c.C--
		}
	} else if c.B > 0 {
		c.B -= c.N
		if c.B > 0 {
			c.B = 0
		}
		if c.C < maxBiasCorrection {
			c.C++
		}
	}
	return nil
}

// RunContext holds the statistics for one of the two run-interruption
// contexts (indices 365 and 366 of the standard's combined statistics
// arrays). RItype is 1 for the |Ra-Rb|<=NEAR interruption, 0
// otherwise.
type RunContext struct {
	A      int
	N      int
	Nn     int
	RItype int
}

func newRunContext(initA, riType int) RunContext {
	return RunContext{A: initA, N: 1, Nn: 0, RItype: riType}
}

// GolombK returns k for a run-interruption context, per A.7.2: the
// smallest k with N<<k >= A + (N>>1)*RItype. A k past 32 cannot occur in
// a valid stream (A and N are bounded by the reset discipline) and is
// reported as corrupt data on decode.
func (c *RunContext) GolombK() (int, error) {
	temp := c.A + (c.N>>1)*c.RItype
	k := 0
	for nTest := c.N; nTest < temp; k++ {
		nTest <<= 1
		if k > 32 {
			return 0, newError(KindInvalidData, "run context Golomb parameter exceeds limit")
		}
	}
	return k, nil
}

// Update applies the run-mode statistics update of A.23: Nn counts
// negative errors, A accumulates from the mapped error value.
func (c *RunContext) Update(errVal, eMappedErrVal, reset int) {
	if errVal < 0 {
		c.Nn++
	}
	c.A += (eMappedErrVal + 1 - c.RItype) >> 1

	if c.N == reset {
		c.A >>= 1
		c.N >>= 1
		c.Nn >>= 1
	}
	c.N++
}

// ComputeMap is the A.21 map predicate for run-interruption error values:
// the encoder folds it into the mapped value's low bit so the decoder can
// recover the error's sign from the context's Nn/N statistics.
func (c *RunContext) ComputeMap(errVal, k int) bool {
	if k == 0 && errVal > 0 && 2*c.Nn < c.N {
		return true
	}
	if errVal < 0 && 2*c.Nn >= c.N {
		return true
	}
	if errVal < 0 && k != 0 {
		return true
	}
	return false
}

// ComputeErrorValue inverts ComputeMap on the decode side: temp is the
// decoded mapped value plus RItype.
func (c *RunContext) ComputeErrorValue(temp, k int) int {
	mapBit := temp & 1
	errAbs := (temp + mapBit) / 2
	if (k != 0 || 2*c.Nn >= c.N) == (mapBit == 1) {
		return -errAbs
	}
	return errAbs
}

// QuantizeGradient maps a signed gradient to the quantized region index
// in {-4,...,4} using the thresholds T1<=T2<=T3 and the NEAR parameter
// (A.3.3).
func QuantizeGradient(d, near, t1, t2, t3 int) int {
	if d <= -t3 {
		return -4
	}
	if d <= -t2 {
		return -3
	}
	if d <= -t1 {
		return -2
	}
	if d < -near {
		return -1
	}
	if d <= near {
		return 0
	}
	if d < t1 {
		return 1
	}
	if d < t2 {
		return 2
	}
	if d < t3 {
		return 3
	}
	return 4
}

// ContextIndex computes Q = ((q1*9)+q2)*9+q3 and the sign flip applied so
// the caller can process with -error and flip the reconstructed error back
// (A.3.4). Q is returned in [0,364]; callers test Q==0 for run mode.
func ContextIndex(q1, q2, q3 int) (q int, sign int) {
	q = (q1*9+q2)*9 + q3
	if q < 0 {
		return -q, -1
	}
	return q, 1
}

// ContextModel owns the 365 regular contexts, the 2 run contexts and the
// adaptive run index shared per component across a scan interval.
type ContextModel struct {
	regular  [RegularContextCount]RegularContext
	run      [runContextCount]RunContext
	runIndex int
}

// NewContextModel allocates and initializes a context model for the given
// scan constants. Contexts are (re)created at the start of every scan and
// at every restart marker (A.8).
func NewContextModel(sc scanConstants) *ContextModel {
	initA := maxInt(2, (sc.rangeVal+32)/64)
	cm := &ContextModel{}
	for i := range cm.regular {
		cm.regular[i] = newRegularContext(initA)
	}
	cm.run[0] = newRunContext(initA, 0)
	cm.run[1] = newRunContext(initA, 1)
	return cm
}

// Regular returns the regular context for index q in [0,364].
func (cm *ContextModel) Regular(q int) *RegularContext { return &cm.regular[q] }

// Run returns run context 0 or 1.
func (cm *ContextModel) Run(idx int) *RunContext { return &cm.run[idx] }

// RunIndex returns the current adaptive run index.
func (cm *ContextModel) RunIndex() int { return cm.runIndex }

// SetRunIndex restores a previously saved run index. Interleaved scans
// keep a private run index per component while sharing the context
// statistics, so the scan codec swaps the active index in before coding
// each component's line.
func (cm *ContextModel) SetRunIndex(v int) { cm.runIndex = v }

// ResetRunIndex resets the run index to 0 (start of each line, and on
// restart).
func (cm *ContextModel) ResetRunIndex() { cm.runIndex = 0 }

// IncrementRunIndex advances to the next J-table entry after a completed
// run segment.
func (cm *ContextModel) IncrementRunIndex() {
	if cm.runIndex < len(JTable)-1 {
		cm.runIndex++
	}
}

// DecrementRunIndex steps back after a run interruption.
func (cm *ContextModel) DecrementRunIndex() {
	if cm.runIndex > 0 {
		cm.runIndex--
	}
}
