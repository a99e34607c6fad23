package jpegls

import (
	"image"
)

// Convenience image.Image <-> sample buffer conversions, shaped after
// stdlib image/jpeg's Encode/Decode signatures but adapted to this
// package's caller-owned-buffer API: the codec itself never touches an
// io.Writer or io.Reader.

// SamplesFromImage converts a grayscale or RGB image.Image into the flat
// uint16 sample buffer Encoder.Encode expects, returning the FrameInfo that
// describes it. Only *image.Gray, *image.Gray16 and *image.NRGBA (alpha
// dropped) are supported; anything else, *image.RGBA included, returns
// invalid_argument.
func SamplesFromImage(img image.Image) (FrameInfo, []uint16, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return FrameInfo{}, nil, newError(KindInvalidArgument, "image has zero area")
	}

	switch src := img.(type) {
	case *image.Gray:
		fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
		samples := make([]uint16, width*height)
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width]
			for x := 0; x < width; x++ {
				samples[y*width+x] = uint16(row[x])
			}
		}
		return fi, samples, nil
	case *image.Gray16:
		fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 16, ComponentCount: 1}
		samples := make([]uint16, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				off := y*src.Stride + x*2
				samples[y*width+x] = uint16(src.Pix[off])<<8 | uint16(src.Pix[off+1])
			}
		}
		return fi, samples, nil
	case *image.NRGBA:
		fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 3}
		samples := make([]uint16, width*height*3)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				off := y*src.Stride + x*4
				i := (y*width + x) * 3
				samples[i] = uint16(src.Pix[off])
				samples[i+1] = uint16(src.Pix[off+1])
				samples[i+2] = uint16(src.Pix[off+2])
			}
		}
		return fi, samples, nil
	default:
		return FrameInfo{}, nil, newError(KindInvalidArgument, "unsupported image.Image concrete type")
	}
}

// ImageFromSamples converts a decoded sample buffer back into an
// image.Image, choosing the concrete type from the frame's component count
// and bit depth.
func ImageFromSamples(fi FrameInfo, samples []uint16) (image.Image, error) {
	width := int(fi.Width)
	height := int(fi.Height)
	rect := image.Rect(0, 0, width, height)

	switch {
	case fi.ComponentCount == 1 && fi.BitsPerSample <= 8:
		img := image.NewGray(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Pix[y*img.Stride+x] = byte(samples[y*width+x])
			}
		}
		return img, nil
	case fi.ComponentCount == 1:
		img := image.NewGray16(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := samples[y*width+x]
				off := y*img.Stride + x*2
				img.Pix[off] = byte(v >> 8)
				img.Pix[off+1] = byte(v)
			}
		}
		return img, nil
	case fi.ComponentCount == 3:
		img := image.NewNRGBA(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := (y*width + x) * 3
				off := y*img.Stride + x*4
				img.Pix[off] = byte(samples[i])
				img.Pix[off+1] = byte(samples[i+1])
				img.Pix[off+2] = byte(samples[i+2])
				img.Pix[off+3] = 0xFF
			}
		}
		return img, nil
	default:
		return nil, newError(KindInvalidParameterComponentCount, "unsupported component count for image conversion")
	}
}

// Encode is a convenience wrapper around Encoder.Encode for image.Image
// sources, mirroring stdlib image/jpeg's Encode signature shape but
// returning the written slice length since this package never takes an
// io.Writer.
func Encode(dst []byte, img image.Image, cp CodingParameters) (int, error) {
	fi, samples, err := SamplesFromImage(img)
	if err != nil {
		return 0, err
	}
	enc, err := NewEncoder(fi)
	if err != nil {
		return 0, err
	}
	if err := enc.SetCodingParameters(cp); err != nil {
		return 0, err
	}
	return enc.Encode(dst, samples)
}

// Decode is a convenience wrapper around Decoder.Decode that returns an
// image.Image directly.
func Decode(src []byte) (image.Image, error) {
	dec := NewDecoder()
	result, err := dec.Decode(src)
	if err != nil {
		return nil, err
	}
	return ImageFromSamples(result.Frame, result.Samples)
}
