package jpegls

// SPIFF header support (ITU-T T.84 Annex F): the 30-byte still-picture
// interchange header carried in an APP8 marker segment immediately after
// SOI, plus the end-of-directory entry that closes it.

// SpiffColorSpace enumerates the SPIFF color space IDs this codec
// recognizes (C.2.6).
type SpiffColorSpace int

const (
	SpiffColorSpaceBiLevelBlack   SpiffColorSpace = 0
	SpiffColorSpaceYCbCrITU601    SpiffColorSpace = 1
	SpiffColorSpaceNone           SpiffColorSpace = 2
	SpiffColorSpaceYCbCrITU601RGB SpiffColorSpace = 3
	SpiffColorSpaceGrayscale      SpiffColorSpace = 8
	SpiffColorSpaceRGB            SpiffColorSpace = 10
	SpiffColorSpaceCMY            SpiffColorSpace = 11
	SpiffColorSpaceCMYK           SpiffColorSpace = 12
	SpiffColorSpaceYCCK           SpiffColorSpace = 13
	SpiffColorSpaceCIELab         SpiffColorSpace = 14
)

// SpiffCompressionType enumerates the compression type field; JPEG-LS
// streams always use SpiffCompressionJPEGLS.
type SpiffCompressionType int

const (
	SpiffCompressionUncompressed         SpiffCompressionType = 0
	SpiffCompressionModifiedHuffman      SpiffCompressionType = 1
	SpiffCompressionModifiedREAD         SpiffCompressionType = 2
	SpiffCompressionModifiedModifiedREAD SpiffCompressionType = 3
	SpiffCompressionJBIG                 SpiffCompressionType = 4
	SpiffCompressionJPEG                 SpiffCompressionType = 5
	SpiffCompressionJPEGLS               SpiffCompressionType = 6
)

// SpiffResolutionUnits enumerates the VRES/HRES unit field.
type SpiffResolutionUnits int

const (
	SpiffResolutionUnitsAspectRatio SpiffResolutionUnits = 0
	SpiffResolutionUnitsDotsPerInch SpiffResolutionUnits = 1
	SpiffResolutionUnitsDotsPerCm   SpiffResolutionUnits = 2
)

// SpiffHeader is the fixed 30-byte SPIFF directory entry header (C.2.6).
type SpiffHeader struct {
	ProfileID            byte
	ComponentCount       int
	Height               uint32
	Width                uint32
	ColorSpace           SpiffColorSpace
	BitsPerSample        int
	CompressionType      SpiffCompressionType
	ResolutionUnits      SpiffResolutionUnits
	VerticalResolution   uint32
	HorizontalResolution uint32
}

const spiffMagic = "SPIFF\x00"
const spiffEntryTagEndOfDirectory = 1

func (h SpiffHeader) validate(fi FrameInfo) error {
	if h.ComponentCount != fi.ComponentCount {
		return newError(KindAbbreviatedFormatAndSpiffHeaderMismatch, "SPIFF component count does not match frame")
	}
	if h.Height != fi.Height || h.Width != fi.Width {
		return newError(KindAbbreviatedFormatAndSpiffHeaderMismatch, "SPIFF dimensions do not match frame")
	}
	if h.BitsPerSample != fi.BitsPerSample {
		return newError(KindAbbreviatedFormatAndSpiffHeaderMismatch, "SPIFF bit depth does not match frame")
	}
	return nil
}

// writeSpiffHeader emits the APP8 marker carrying the SPIFF header and its
// mandatory end-of-directory entry, per C.2.6.
func writeSpiffHeader(bw *BitWriter, h SpiffHeader) error {
	if err := bw.WriteMarker(markerAPP8); err != nil {
		return err
	}
	// magic(6) + version(2) + profile(1) + components(1) + height(4) +
	// width(4) + colorspace(1) + bits(1) + compression(1) +
	// resolutionUnits(1) + vres(4) + hres(4) = 30 payload bytes, plus the
	// 2-byte length field itself.
	if err := bw.WriteUint16(32); err != nil {
		return err
	}
	for _, b := range []byte(spiffMagic) {
		if err := bw.WriteByte(b); err != nil {
			return err
		}
	}
	if err := bw.WriteByte(2); err != nil { // version high
		return err
	}
	if err := bw.WriteByte(0); err != nil { // version low
		return err
	}
	if err := bw.WriteByte(h.ProfileID); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(h.ComponentCount)); err != nil {
		return err
	}
	if err := writeUint32(bw, h.Height); err != nil {
		return err
	}
	if err := writeUint32(bw, h.Width); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(h.ColorSpace)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(h.BitsPerSample)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(h.CompressionType)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(h.ResolutionUnits)); err != nil {
		return err
	}
	if err := writeUint32(bw, h.VerticalResolution); err != nil {
		return err
	}
	if err := writeUint32(bw, h.HorizontalResolution); err != nil {
		return err
	}
	return writeSpiffEndOfDirectory(bw)
}

// writeSpiffEndOfDirectory writes the mandatory end-of-directory entry, an
// APP8 segment whose last two bytes are a fresh SOI marker so an encoder
// unaware of SPIFF can append a plain JPEG-LS stream after it (F.2.1.5).
func writeSpiffEndOfDirectory(bw *BitWriter) error {
	if err := bw.WriteMarker(markerAPP8); err != nil {
		return err
	}
	if err := bw.WriteUint16(8); err != nil {
		return err
	}
	if err := writeUint32(bw, spiffEntryTagEndOfDirectory); err != nil {
		return err
	}
	return bw.WriteMarker(markerSOI)
}

func writeUint32(bw *BitWriter, v uint32) error {
	if err := bw.WriteByte(byte(v >> 24)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(v >> 16)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(v >> 8)); err != nil {
		return err
	}
	return bw.WriteByte(byte(v))
}

func readUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// parseSpiffHeader parses a 30-byte SPIFF payload (the APP8 segment body
// after the 2-byte length field).
func parseSpiffHeader(payload []byte) (SpiffHeader, error) {
	if len(payload) < 30 {
		return SpiffHeader{}, newError(KindInvalidMarkerSegmentSize, "SPIFF header segment too short")
	}
	if string(payload[0:6]) != spiffMagic {
		return SpiffHeader{}, newError(KindInvalidData, "missing SPIFF magic")
	}
	if payload[6] > 2 {
		return SpiffHeader{}, newError(KindInvalidData, "unrecognized SPIFF version")
	}
	h := SpiffHeader{
		ProfileID:            payload[8],
		ComponentCount:       int(payload[9]),
		Height:               readUint32(payload[10:14]),
		Width:                readUint32(payload[14:18]),
		ColorSpace:           SpiffColorSpace(payload[18]),
		BitsPerSample:        int(payload[19]),
		CompressionType:      SpiffCompressionType(payload[20]),
		ResolutionUnits:      SpiffResolutionUnits(payload[21]),
		VerticalResolution:   readUint32(payload[22:26]),
		HorizontalResolution: readUint32(payload[26:30]),
	}
	return h, nil
}
