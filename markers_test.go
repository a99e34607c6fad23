package jpegls

import "testing"

func TestFrameSegmentRoundTrip(t *testing.T) {
	fi := FrameInfo{Width: 640, Height: 480, BitsPerSample: 12, ComponentCount: 3}
	buf := make([]byte, 64)
	bw := NewBitWriter(buf)
	if err := writeFrameSegment(bw, fi); err != nil {
		t.Fatalf("writeFrameSegment failed: %v", err)
	}
	sr := newStreamReader(buf[:bw.Len()])
	seg, err := sr.NextMarker()
	if err != nil {
		t.Fatalf("NextMarker failed: %v", err)
	}
	if seg.code != markerSOF55 {
		t.Fatalf("marker code = 0x%02X, want SOF55", seg.code)
	}
	fs, err := readFrameSegment(seg.payload)
	if err != nil {
		t.Fatalf("readFrameSegment failed: %v", err)
	}
	if fs.BitsPerSample != fi.BitsPerSample || fs.Height != fi.Height || fs.Width != fi.Width || fs.ComponentCount != fi.ComponentCount {
		t.Fatalf("readFrameSegment() = %+v, want dims matching %+v", fs, fi)
	}
	if len(fs.ComponentIDs) != 3 || fs.ComponentIDs[0] != 1 || fs.ComponentIDs[2] != 3 {
		t.Fatalf("ComponentIDs = %v, want [1 2 3]", fs.ComponentIDs)
	}
}

func TestScanSegmentRoundTrip(t *testing.T) {
	cp := CodingParameters{NearLossless: 3, InterleaveMode: InterleaveSample}
	tableIDs := []byte{0, 5, 0}
	buf := make([]byte, 32)
	bw := NewBitWriter(buf)
	if err := writeScanSegment(bw, []int{0, 1, 2}, tableIDs, cp); err != nil {
		t.Fatalf("writeScanSegment failed: %v", err)
	}
	sr := newStreamReader(buf[:bw.Len()])
	seg, err := sr.NextMarker()
	if err != nil {
		t.Fatalf("NextMarker failed: %v", err)
	}
	if seg.code != markerSOS {
		t.Fatalf("marker code = 0x%02X, want SOS", seg.code)
	}
	ss, err := readScanSegment(seg.payload, 3)
	if err != nil {
		t.Fatalf("readScanSegment failed: %v", err)
	}
	if ss.NearLossless != cp.NearLossless || ss.InterleaveMode != cp.InterleaveMode {
		t.Fatalf("readScanSegment() = %+v, want matching %+v", ss, cp)
	}
	if len(ss.ComponentIndices) != 3 || ss.ComponentIndices[0] != 0 || ss.ComponentIndices[2] != 2 {
		t.Fatalf("ComponentIndices = %v, want [0 1 2]", ss.ComponentIndices)
	}
	if len(ss.TableIDs) != 3 || ss.TableIDs[1] != 5 {
		t.Fatalf("TableIDs = %v, want [0 5 0]", ss.TableIDs)
	}
}

func TestScanSegmentRejectsNonZeroPointTransform(t *testing.T) {
	payload := []byte{1, 1, 0, 0, 0, 7} // Ns=1, (C1,T0), NEAR=0, ILV=0, Ah/Al=7
	if _, err := readScanSegment(payload, 1); err == nil || !IsKind(err, KindParameterValueNotSupported) {
		t.Fatalf("expected parameter_value_not_supported, got %v", err)
	}
}

func TestColorTransformSegmentRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	bw := NewBitWriter(buf)
	if err := writeColorTransformSegment(bw, ColorTransformHP2); err != nil {
		t.Fatalf("writeColorTransformSegment failed: %v", err)
	}
	sr := newStreamReader(buf[:bw.Len()])
	seg, err := sr.NextMarker()
	if err != nil {
		t.Fatalf("NextMarker failed: %v", err)
	}
	if seg.code != markerAPP8 {
		t.Fatalf("marker code = 0x%02X, want APP8", seg.code)
	}
	ct, ok, err := readColorTransformSegment(seg.payload)
	if err != nil || !ok || ct != ColorTransformHP2 {
		t.Fatalf("readColorTransformSegment() = (%v,%v,%v), want (HP2,true,nil)", ct, ok, err)
	}
}

func TestPresetCodingParametersRoundTrip(t *testing.T) {
	pc := PresetCodingParameters{MaximumSampleValue: 4095, Threshold1: 18, Threshold2: 30, Threshold3: 65, ResetValue: 64}
	buf := make([]byte, 32)
	bw := NewBitWriter(buf)
	if err := writePresetCodingParameters(bw, pc); err != nil {
		t.Fatalf("writePresetCodingParameters failed: %v", err)
	}
	sr := newStreamReader(buf[:bw.Len()])
	seg, err := sr.NextMarker()
	if err != nil {
		t.Fatalf("NextMarker failed: %v", err)
	}
	if seg.code != markerLSE || seg.payload[0] != lsePresetCodingParameters {
		t.Fatalf("expected LSE preset-coding-parameters segment, got code=0x%02X type=%d", seg.code, seg.payload[0])
	}
	got, err := readPresetCodingParameters(seg.payload[1:])
	if err != nil {
		t.Fatalf("readPresetCodingParameters failed: %v", err)
	}
	if got != pc {
		t.Fatalf("readPresetCodingParameters() = %+v, want %+v", got, pc)
	}
}

func TestOversizeImageSegmentRoundTrip(t *testing.T) {
	fi := FrameInfo{Width: 1 << 16, Height: 3, BitsPerSample: 8, ComponentCount: 1}
	buf := make([]byte, 32)
	bw := NewBitWriter(buf)
	if err := writeOversizeImageSegment(bw, fi); err != nil {
		t.Fatalf("writeOversizeImageSegment failed: %v", err)
	}
	sr := newStreamReader(buf[:bw.Len()])
	seg, err := sr.NextMarker()
	if err != nil {
		t.Fatalf("NextMarker failed: %v", err)
	}
	if seg.code != markerLSE || seg.payload[0] != lseXDimension {
		t.Fatalf("expected LSE X-dimension segment, got code=0x%02X type=%d", seg.code, seg.payload[0])
	}
	got, err := readOversizeImageSegment(seg.payload[1:])
	if err != nil {
		t.Fatalf("readOversizeImageSegment failed: %v", err)
	}
	if got.Height != fi.Height || got.Width != fi.Width {
		t.Fatalf("readOversizeImageSegment() = %+v, want Height=%d Width=%d", got, fi.Height, fi.Width)
	}
}

func TestRestartIntervalSegmentRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	bw := NewBitWriter(buf)
	if err := writeRestartIntervalSegment(bw, 17); err != nil {
		t.Fatalf("writeRestartIntervalSegment failed: %v", err)
	}
	sr := newStreamReader(buf[:bw.Len()])
	seg, err := sr.NextMarker()
	if err != nil {
		t.Fatalf("NextMarker failed: %v", err)
	}
	if seg.code != markerDRI {
		t.Fatalf("marker code = 0x%02X, want DRI", seg.code)
	}
	ri, err := readRestartIntervalSegment(seg.payload)
	if err != nil {
		t.Fatalf("readRestartIntervalSegment failed: %v", err)
	}
	if ri.Interval != 17 {
		t.Fatalf("Interval = %d, want 17", ri.Interval)
	}
}

// TestNextMarkerSkipsFillBytes: stray 0xFF fill bytes between the end of
// one segment's bit-stuffed entropy data and the next marker must be
// skipped, never mistaken for marker content.
func TestNextMarkerSkipsFillBytes(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xD9} // fill bytes then EOI
	sr := newStreamReader(buf)
	seg, err := sr.NextMarker()
	if err != nil {
		t.Fatalf("NextMarker failed: %v", err)
	}
	if seg.code != markerEOI {
		t.Fatalf("marker code = 0x%02X, want EOI", seg.code)
	}
}

func TestIsRestartMarker(t *testing.T) {
	for code := markerRST0; code <= markerRST7; code++ {
		if !isRestartMarker(code) {
			t.Fatalf("isRestartMarker(0x%02X) = false, want true", code)
		}
	}
	if isRestartMarker(markerSOS) {
		t.Fatal("isRestartMarker(SOS) = true, want false")
	}
}
