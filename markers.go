package jpegls

// Marker codes and marker-segment structures: the full marker set a
// conformant JPEG-LS reader/writer handles (SOF55, SOS, LSE variants,
// DNL, DRI, RSTm, APPn, COM) per ITU-T T.81 Annex B / T.87 Annex C.

// Marker byte values, always preceded by 0xFF on the wire.
const (
	markerTEM  byte = 0x01
	markerSOF0 byte = 0xC0
	// SOF55 (0xF7) is the JPEG-LS start-of-frame marker (ITU-T T.87).
	markerSOF55 byte = 0xF7
	markerDHT   byte = 0xC4
	markerDAC   byte = 0xCC
	markerRST0  byte = 0xD0
	markerRST7  byte = 0xD7
	markerSOI   byte = 0xD8
	markerEOI   byte = 0xD9
	markerSOS   byte = 0xDA
	markerDQT   byte = 0xDB
	markerDNL   byte = 0xDC
	markerDRI   byte = 0xDD
	markerDHP   byte = 0xDE
	markerEXP   byte = 0xDF
	markerAPP0  byte = 0xE0
	markerAPP8  byte = 0xE8
	markerAPP15 byte = 0xEF
	markerCOM   byte = 0xFE
	// LSE (0xF8) carries JPEG-LS preset parameters: preset coding
	// parameters, mapping table spec, mapping table continuation, and
	// oversize image dimension (ITU-T T.87 Annex C.2.4).
	markerLSE byte = 0xF8
)

// LSE preset-parameter-type IDs (C.2.4.1.x).
const (
	lsePresetCodingParameters    byte = 1
	lseMappingTableSpecification byte = 2
	lseMappingTableContinuation  byte = 3
	lseXDimension                byte = 4
)

// isRestartMarker reports whether code is one of RST0..RST7.
func isRestartMarker(code byte) bool {
	return code >= markerRST0 && code <= markerRST7
}

// isStandaloneMarker reports whether code carries no length field (the
// marker byte is the entire segment): SOI, EOI, TEM, RSTm.
func isStandaloneMarker(code byte) bool {
	return code == markerSOI || code == markerEOI || code == markerTEM || isRestartMarker(code)
}

// isUnsupportedFrameMarker reports whether code is a start-of-frame marker
// for a JPEG coding process other than JPEG-LS (baseline/extended/
// progressive/lossless/arithmetic SOFs C0..CB, or the JPEG-LS extension
// SOF57/F9): recognizable, but not decodable by this codec.
func isUnsupportedFrameMarker(code byte) bool {
	if code >= 0xC0 && code <= 0xCB && code != markerDHT && code != 0xC8 {
		return true
	}
	return code == 0xF9
}

// isApplicationDataMarker reports whether code is APP0..APP15.
func isApplicationDataMarker(code byte) bool {
	return code >= markerAPP0 && code <= markerAPP15
}

// FrameSegment is the decoded content of a SOF55 marker segment.
type FrameSegment struct {
	BitsPerSample  int
	Height         uint32
	Width          uint32
	ComponentCount int
	// ComponentIDs, one per component, as carried on the wire (sampling
	// factors are fixed at 1x1 for JPEG-LS and not separately modeled).
	ComponentIDs []byte
}

// ScanSegment is the decoded content of a SOS marker segment for one scan:
// the participating components (with each one's mapping table selector),
// NEAR and the interleave mode. The trailing Ah/Al byte must be 0 in a
// JPEG-LS scan and is validated, not stored.
type ScanSegment struct {
	ComponentIndices []int
	TableIDs         []byte
	NearLossless     int
	InterleaveMode   InterleaveMode
}

// colorTransformMagic identifies the 5-byte APP8 segment several JPEG-LS
// encoders (HP's originally) use to record the color transform applied to
// a 3-component image; the byte after the magic is the transform selector.
const colorTransformMagic = "mrfx"

// RestartIntervalSegment is the decoded content of a DRI marker segment.
type RestartIntervalSegment struct {
	Interval uint32
}

// CommentSegment is the decoded content of a COM marker segment.
type CommentSegment struct {
	Data []byte
}

// OversizeImageSegment is the LSE oversize-dimension segment (C.2.4.1.4),
// used when Height or Width exceeds what SOF55's 16-bit fields can hold.
type OversizeImageSegment struct {
	DimensionBytes int // 2, 3 or 4
	Height         uint32
	Width          uint32
}

// DNLSegment is the decoded content of a DNL marker segment, which supplies
// the true image height when SOF55 declared it as 0 (Annex C.2.6 / JFIF
// conventions this codec reuses for line-count deferral).
type DNLSegment struct {
	Height uint32
}

const maxMarkerSegmentLength = 0xFFFF
