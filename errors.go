package jpegls

import "fmt"

// Kind classifies the failure a codec operation reported. It mirrors the
// error taxonomy of the reference JPEG-LS implementation rather than Go's
// usual sentinel-per-case approach, because callers (DICOM codecs, image
// converters) branch on these kinds directly.
type Kind int

const (
	// KindUnexpected covers internal invariant violations that should never
	// happen given correct code; callers should treat it like a panic.
	KindUnexpected Kind = iota
	KindInvalidArgument
	KindInvalidOperation
	KindInvalidData
	KindNeedMoreData
	KindDestinationTooSmall
	KindTooMuchEncodedData
	KindJpegMarkerStartByteNotFound
	KindStartOfImageMarkerNotFound
	KindUnexpectedEndOfImageMarker
	KindDuplicateStartOfImageMarker
	KindDuplicateStartOfFrameMarker
	KindUnexpectedStartOfScanMarker
	KindUnexpectedRestartMarker
	KindRestartMarkerNotFound
	KindEncodingNotSupported
	KindUnknownJpegMarkerFound
	KindInvalidMarkerSegmentSize
	KindParameterValueNotSupported
	KindInvalidParameterBitsPerSample
	KindInvalidParameterComponentCount
	KindInvalidParameterInterleaveMode
	KindInvalidParameterWidth
	KindInvalidParameterHeight
	KindInvalidParameterColorTransformation
	KindInvalidParameterJpegLSPresetParameters
	KindInvalidParameterJpegLSPresetCodingParameters
	KindInvalidParameterNearLossless
	KindJpegLSPresetExtendedParameterTypeNotSupported
	KindInvalidJpegLSPresetParameterType
	KindColorTransformNotSupported
	KindBitDepthForTransformNotSupported
	KindAbbreviatedFormatAndSpiffHeaderMismatch
	KindCallbackFailed
	KindNotEnoughMemory
)

var kindNames = map[Kind]string{
	KindUnexpected:                        "unexpected_failure",
	KindInvalidArgument:                    "invalid_argument",
	KindInvalidOperation:                   "invalid_operation",
	KindInvalidData:                        "invalid_data",
	KindNeedMoreData:                       "need_more_data",
	KindDestinationTooSmall:                "destination_too_small",
	KindTooMuchEncodedData:                 "too_much_encoded_data",
	KindJpegMarkerStartByteNotFound:        "jpeg_marker_start_byte_not_found",
	KindStartOfImageMarkerNotFound:         "start_of_image_marker_not_found",
	KindUnexpectedEndOfImageMarker:         "unexpected_end_of_image_marker",
	KindDuplicateStartOfImageMarker:        "duplicate_start_of_image_marker",
	KindDuplicateStartOfFrameMarker:        "duplicate_start_of_frame_marker",
	KindUnexpectedStartOfScanMarker:        "unexpected_start_of_scan_marker",
	KindUnexpectedRestartMarker:            "unexpected_restart_marker",
	KindRestartMarkerNotFound:              "restart_marker_not_found",
	KindEncodingNotSupported:               "encoding_not_supported",
	KindUnknownJpegMarkerFound:             "unknown_jpeg_marker_found",
	KindInvalidMarkerSegmentSize:           "invalid_marker_segment_size",
	KindParameterValueNotSupported:         "parameter_value_not_supported",
	KindInvalidParameterBitsPerSample:      "invalid_parameter_bits_per_sample",
	KindInvalidParameterComponentCount:     "invalid_parameter_component_count",
	KindInvalidParameterInterleaveMode:     "invalid_parameter_interleave_mode",
	KindInvalidParameterWidth:              "invalid_parameter_width",
	KindInvalidParameterHeight:             "invalid_parameter_height",
	KindInvalidParameterColorTransformation: "invalid_parameter_color_transformation",
	KindInvalidParameterJpegLSPresetParameters:        "invalid_parameter_jpegls_preset_parameters",
	KindInvalidParameterJpegLSPresetCodingParameters:  "invalid_parameter_jpegls_preset_coding_parameters",
	KindInvalidParameterNearLossless:                  "invalid_parameter_near_lossless",
	KindJpegLSPresetExtendedParameterTypeNotSupported: "jpegls_preset_extended_parameter_type_not_supported",
	KindInvalidJpegLSPresetParameterType:              "invalid_jpegls_preset_parameter_type",
	KindColorTransformNotSupported:                    "color_transform_not_supported",
	KindBitDepthForTransformNotSupported:              "bit_depth_for_transform_not_supported",
	KindAbbreviatedFormatAndSpiffHeaderMismatch:        "abbreviated_format_and_spiff_header_mismatch",
	KindCallbackFailed:                                "callback_failed",
	KindNotEnoughMemory:                                "not_enough_memory",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown_error_kind"
}

// Error is the error type returned by every exported operation in this
// package. Callers that need to branch on the failure category should use
// Kind() rather than string-matching Error().
type Error struct {
	kind    Kind
	message string
	cause   error
}

func newError(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func wrapError(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.message == "" {
		return e.kind.String()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.kind == kind
}
