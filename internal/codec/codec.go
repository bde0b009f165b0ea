// Package codec turns uploaded image bytes into the canonical stored
// encoding: baseline JPEG with the color forced to RGB.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	// Input formats beyond JPEG
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode indicates that the input bytes are not a valid image in any of
// the supported formats. It is a client fault, as opposed to the server
// faults that encoding and persistence may produce.
var ErrDecode = errors.New("unable to decode image")

// Decode parses data in any of the supported input formats.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return img, nil
}

// EncodeJPEG re-encodes img to the canonical format. The pixels are first
// drawn onto an RGB(A) canvas, discarding any alpha channel or exotic color
// model the source format may carry.
//
// The output is deterministic in format but not guaranteed to be
// byte-identical across encoder versions.
func EncodeJPEG(img image.Image) ([]byte, error) {
	bounds := img.Bounds()

	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, img, bounds.Min, draw.Src)

	var buf bytes.Buffer

	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpeg.DefaultQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
