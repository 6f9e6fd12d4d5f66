package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// ImageResult is the outcome of re-encoding one image reference
type ImageResult struct {
	Page         int      `json:"page"`
	Ref          ImageRef `json:"-"`
	Name         string   `json:"name"`
	ObjNr        int      `json:"obj"`
	SourceWidth  int      `json:"source_width"`
	SourceHeight int      `json:"source_height"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Quality      int      `json:"quality"`
	InputBytes   int      `json:"input_bytes"`
	OutputBytes  int      `json:"output_bytes"`
	Err          error    `json:"-"`
}

// Error returns the failure message, or an empty string
func (r ImageResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ReencodeImage decodes an extracted image, converts it to RGB, scales it by
// the resize ratio and encodes it as JPEG at the configured quality.
func ReencodeImage(asset *ImageAsset, settings ImageSettings) ([]byte, image.Point, error) {
	src, err := asset.Decode()
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("decode: %w", err)
	}

	img := toRGB(src)
	b := img.Bounds()
	w, h := settings.ScaledSize(b.Dx(), b.Dy())
	if w != b.Dx() || h != b.Dy() {
		img = resize(img, w, h)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: settings.Quality}); err != nil {
		return nil, image.Point{}, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), image.Pt(w, h), nil
}

// toRGB copies any image onto an opaque RGBA canvas anchored at the origin
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// resize resamples img to w x h
func resize(img *image.RGBA, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// recompressImage runs extraction and re-encoding for one reference. The
// returned result carries the failure, if any, as an image processing error.
func (d *Document) recompressImage(page int, ref ImageRef, settings ImageSettings) (ImageResult, []byte) {
	res := ImageResult{
		Page:         page,
		Ref:          ref,
		Name:         ref.Path,
		ObjNr:        ref.ObjNr,
		SourceWidth:  ref.Width,
		SourceHeight: ref.Height,
		Quality:      settings.Quality,
	}

	asset, err := d.ExtractImage(ref)
	if err != nil {
		res.Err = imageError(fmt.Sprintf("extract image %s (obj %d)", ref.Path, ref.ObjNr), err)
		return res, nil
	}
	res.InputBytes = asset.StreamLength

	data, size, err := ReencodeImage(asset, settings)
	if err != nil {
		res.Err = imageError(fmt.Sprintf("re-encode image %s (obj %d)", ref.Path, ref.ObjNr), err)
		return res, nil
	}
	res.Width, res.Height = size.X, size.Y
	res.OutputBytes = len(data)
	return res, data
}
