package dicomls

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/loco-i/jpegls"
)

// ExtractRawPixelData returns the dataset's pixel data as a flat, row-major
// byte buffer: 1 byte per sample for 8-bit, little-endian 2 bytes per
// sample otherwise, for any samples-per-pixel value.
func (d *Dataset) ExtractRawPixelData() ([]byte, error) {
	pixelElem, err := d.Data.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data found: %w", err)
	}

	pdi, ok := pixelElem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		if raw, ok := pixelElem.Value.GetValue().([]byte); ok {
			return raw, nil
		}
		return nil, fmt.Errorf("unsupported pixel data representation: %T", pixelElem.Value.GetValue())
	}
	if len(pdi.Frames) == 0 {
		return nil, fmt.Errorf("no frames in pixel data")
	}

	bitsAllocated := d.BitsAllocated()
	bytesPerSample := (bitsAllocated + 7) / 8
	frame := pdi.Frames[0]
	if frame.NativeData.Data == nil {
		return nil, fmt.Errorf("native frame data is nil")
	}

	result := make([]byte, 0, len(frame.NativeData.Data)*len(frame.NativeData.Data[0])*bytesPerSample)
	for _, pixel := range frame.NativeData.Data {
		for _, sample := range pixel {
			if bytesPerSample == 1 {
				result = append(result, byte(sample))
			} else {
				result = append(result, byte(sample), byte(sample>>8))
			}
		}
	}
	return result, nil
}

// frameInfo derives a jpegls.FrameInfo from the dataset's image description
// tags.
func (d *Dataset) frameInfo() (jpegls.FrameInfo, error) {
	width := d.Columns()
	height := d.Rows()
	if width == 0 || height == 0 {
		return jpegls.FrameInfo{}, fmt.Errorf("invalid image dimensions: %dx%d", width, height)
	}
	return jpegls.FrameInfo{
		Width:          uint32(width),
		Height:         uint32(height),
		BitsPerSample:  d.BitsAllocated(),
		ComponentCount: d.SamplesPerPixel(),
	}, nil
}

// rawBytesToSamples converts the little-endian byte layout DICOM native
// pixel data uses into the flat uint16 sample buffer jpegls.Encoder.Encode
// expects.
func rawBytesToSamples(raw []byte, bitsAllocated int) []uint16 {
	bytesPerSample := (bitsAllocated + 7) / 8
	if bytesPerSample == 1 {
		samples := make([]uint16, len(raw))
		for i, b := range raw {
			samples[i] = uint16(b)
		}
		return samples
	}
	samples := make([]uint16, len(raw)/2)
	for i := range samples {
		samples[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
	}
	return samples
}

func samplesToRawBytes(samples []uint16, bitsAllocated int) []byte {
	bytesPerSample := (bitsAllocated + 7) / 8
	if bytesPerSample == 1 {
		raw := make([]byte, len(samples))
		for i, s := range samples {
			raw[i] = byte(s)
		}
		return raw
	}
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		raw[2*i] = byte(s)
		raw[2*i+1] = byte(s >> 8)
	}
	return raw
}

// CompressJPEGLS compresses raw DICOM native pixel data with the jpegls
// package's encoder, a drop-in replacement for running dcmcjpls on the
// file.
func CompressJPEGLS(pixels []byte, width, height, samples, bitsAllocated int, cp jpegls.CodingParameters) ([]byte, error) {
	fi := jpegls.FrameInfo{
		Width:          uint32(width),
		Height:         uint32(height),
		BitsPerSample:  bitsAllocated,
		ComponentCount: samples,
	}
	enc, err := jpegls.NewEncoder(fi)
	if err != nil {
		return nil, err
	}
	if err := enc.SetCodingParameters(cp); err != nil {
		return nil, err
	}
	dst := make([]byte, enc.EstimatedDestinationSize())
	n, err := enc.Encode(dst, rawBytesToSamples(pixels, bitsAllocated))
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// DecompressJPEGLS decodes a JPEG-LS bitstream back into raw DICOM native
// pixel data bytes.
func DecompressJPEGLS(encoded []byte) (pixels []byte, width, height, samplesPerPixel, bitsAllocated int, err error) {
	dec := jpegls.NewDecoder()
	result, err := dec.Decode(encoded)
	if err != nil {
		return nil, 0, 0, 0, 0, err
	}
	raw := samplesToRawBytes(result.Samples, result.Frame.BitsPerSample)
	return raw, int(result.Frame.Width), int(result.Frame.Height), result.Frame.ComponentCount, result.Frame.BitsPerSample, nil
}

// CompressPixelData reads the dataset's current raw pixel data and returns
// it JPEG-LS encoded along with the transfer syntax UID that should
// replace TransferSyntaxUID in the dataset. Building and splicing in the
// encapsulated PixelData element (fragments, basic offset table) is left
// to the caller, so this package stops at the codec boundary.
func (d *Dataset) CompressPixelData(cp jpegls.CodingParameters) (encoded []byte, transferSyntax string, err error) {
	fi, err := d.frameInfo()
	if err != nil {
		return nil, "", err
	}
	raw, err := d.ExtractRawPixelData()
	if err != nil {
		return nil, "", err
	}
	encoded, err = CompressJPEGLS(raw, int(fi.Width), int(fi.Height), fi.ComponentCount, fi.BitsPerSample, cp)
	if err != nil {
		return nil, "", err
	}

	transferSyntax = TransferSyntaxJPEGLSLossless
	if cp.NearLossless > 0 {
		transferSyntax = TransferSyntaxJPEGLSNearLossless
	}
	return encoded, transferSyntax, nil
}
