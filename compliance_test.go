package jpegls

import (
	"bytes"
	"testing"
)

// TestDecodePalletisedAnnexH45 decodes the sample palletised image of
// ISO/IEC 14495-1 Annex H.4.5 (Figure H.10) byte for byte: a 3x4 frame at
// 2 bits per sample, an LSE mapping table with id 5, and three bytes of
// entropy-coded data. This is a literal compliance fixture — any deviation
// in the predictor, run-mode transition, interruption coding, context
// updates or default thresholds changes the decoded samples.
func TestDecodePalletisedAnnexH45(t *testing.T) {
	stream := []byte{
		0xFF, 0xD8, // SOI
		0xFF, 0xF7, // SOF55
		0x00, 0x0B, // segment length = 11
		0x02,       // P = 2 bits per sample
		0x00, 0x04, // Y = 4 lines
		0x00, 0x03, // X = 3 columns
		0x01,             // Nf = 1 component
		0x01, 0x11, 0x00, // C1 = 1, 1x1 sampling, Tq = 0

		0xFF, 0xF8, // LSE
		0x00, 0x11, // segment length = 17
		0x02,             // type 2: mapping table specification
		0x05,             // table id = 5
		0x03,             // entry width = 3
		0xFF, 0xFF, 0xFF, // entry 0
		0xFF, 0x00, 0x00, // entry 1
		0x00, 0xFF, 0x00, // entry 2
		0x00, 0x00, 0xFF, // entry 3

		0xFF, 0xDA, // SOS
		0x00, 0x08, // segment length = 8
		0x01,       // Ns = 1
		0x01, 0x05, // C1 = 1, Tm = 5
		0x00,             // NEAR = 0
		0x00,             // ILV = none
		0x00,             // Al/Ah = 0
		0xDB, 0x95, 0xF0, // entropy-coded data
		0xFF, 0xD9, // EOI
	}

	dec := NewDecoder()
	result, err := dec.Decode(stream)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if result.Frame.Width != 3 || result.Frame.Height != 4 || result.Frame.BitsPerSample != 2 {
		t.Fatalf("frame = %+v, want 3x4 at 2 bits", result.Frame)
	}

	want := []uint16{0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3, 3}
	if len(result.Samples) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(result.Samples), len(want))
	}
	for i, v := range want {
		if result.Samples[i] != v {
			t.Fatalf("sample %d = %d, want %d (full: %v)", i, result.Samples[i], v, result.Samples)
		}
	}

	if len(result.ComponentTableIDs) != 1 || result.ComponentTableIDs[0] != 5 {
		t.Fatalf("ComponentTableIDs = %v, want [5]", result.ComponentTableIDs)
	}
	table := result.MappingTables.Table(5)
	if table == nil {
		t.Fatal("mapping table 5 not found")
	}
	wantPalette := []byte{
		0xFF, 0xFF, 0xFF,
		0xFF, 0x00, 0x00,
		0x00, 0xFF, 0x00,
		0x00, 0x00, 0xFF,
	}
	if table.EntrySize != 3 || table.EntryCount() != 4 {
		t.Fatalf("table shape = %dx%d entries, want 3x4", table.EntrySize, table.EntryCount())
	}
	for i := 0; i < 4; i++ {
		if !bytes.Equal(table.Entry(i), wantPalette[i*3:(i+1)*3]) {
			t.Fatalf("palette entry %d = % X, want % X", i, table.Entry(i), wantPalette[i*3:(i+1)*3])
		}
	}
}

// TestDefaultThresholds2Bit pins the low-MAXVAL branch of the threshold
// derivation the Annex H.4.5 fixture depends on: MAXVAL=3 yields T1=2,
// T2=3, T3=3 after the Figure C.3 clamp.
func TestDefaultThresholds2Bit(t *testing.T) {
	t1, t2, t3 := computeDefaultThresholds(3, 0)
	if t1 != 2 || t2 != 3 || t3 != 3 {
		t.Fatalf("computeDefaultThresholds(3,0) = (%d,%d,%d), want (2,3,3)", t1, t2, t3)
	}
}
