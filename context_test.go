package jpegls

import "testing"

func TestQuantizeGradientSymmetry(t *testing.T) {
	near, t1, t2, t3 := 0, 3, 7, 21
	for d := -50; d <= 50; d++ {
		got := QuantizeGradient(d, near, t1, t2, t3)
		negGot := QuantizeGradient(-d, near, t1, t2, t3)
		if got != -negGot {
			t.Errorf("QuantizeGradient(%d) = %d, QuantizeGradient(%d) = %d; want negation symmetry", d, got, -d, negGot)
		}
		if got < -4 || got > 4 {
			t.Errorf("QuantizeGradient(%d) = %d out of [-4,4]", d, got)
		}
	}
}

func TestContextIndexRange(t *testing.T) {
	for q1 := -4; q1 <= 4; q1++ {
		for q2 := -4; q2 <= 4; q2++ {
			for q3 := -4; q3 <= 4; q3++ {
				q, sign := ContextIndex(q1, q2, q3)
				if q < 0 || q > 364 {
					t.Fatalf("ContextIndex(%d,%d,%d) = %d out of [0,364]", q1, q2, q3, q)
				}
				if sign != 1 && sign != -1 {
					t.Fatalf("ContextIndex(%d,%d,%d) sign = %d, want +-1", q1, q2, q3, sign)
				}
			}
		}
	}
	if q, sign := ContextIndex(0, 0, 0); q != 0 || sign != 1 {
		t.Errorf("ContextIndex(0,0,0) = (%d,%d), want (0,1)", q, sign)
	}
}

func TestRegularContextHalvingInvariant(t *testing.T) {
	sc := newScanConstants(8, 0, PresetCodingParameters{MaximumSampleValue: 255, Threshold1: 3, Threshold2: 7, Threshold3: 21, ResetValue: 64})
	cm := NewContextModel(sc)
	ctx := cm.Regular(0)
	for i := 0; i < sc.reset+5; i++ {
		if err := ctx.Update(1, 0, sc.reset); err != nil {
			t.Fatalf("Update failed at iteration %d: %v", i, err)
		}
		if ctx.N > sc.reset {
			t.Fatalf("N exceeded reset threshold: N=%d reset=%d", ctx.N, sc.reset)
		}
	}
}

func TestGolombKNonNegative(t *testing.T) {
	sc := newScanConstants(8, 0, PresetCodingParameters{MaximumSampleValue: 255, Threshold1: 3, Threshold2: 7, Threshold3: 21, ResetValue: 64})
	cm := NewContextModel(sc)
	for q := 0; q < RegularContextCount; q++ {
		k, err := cm.Regular(q).GolombK()
		if err != nil {
			t.Fatalf("GolombK() for fresh context %d errored: %v", q, err)
		}
		if k < 0 {
			t.Errorf("GolombK() = %d, want non-negative", k)
		}
	}
}
