package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	// Decoders for every format accepted as input.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	jpegQuality = 90

	MimeTypeJPEG = "image/jpeg"
)

// ToJPEG decodes an image in any registered format and re-encodes it as JPEG.
// The first frame is used for animated input.
func ToJPEG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding %s image as jpeg: %w", format, err)
	}

	return buf.Bytes(), nil
}

// DataURI wraps JPEG bytes into an inline data reference.
func DataURI(jpegData []byte) string {
	return "data:" + MimeTypeJPEG + ";base64," + base64.StdEncoding.EncodeToString(jpegData)
}

// flatten draws images with transparency onto white, JPEG has no alpha.
func flatten(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
