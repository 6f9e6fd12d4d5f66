// Package testpdf builds small, valid PDF files in memory for tests.
package testpdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
)

// Image is an image XObject to place on a page
type Image struct {
	Width      int
	Height     int
	Filter     string // empty for unfiltered samples
	ColorSpace string // PDF syntax, e.g. "/DeviceRGB" or "[/Indexed /DeviceRGB 1 <FF00000000FF>]"
	BPC        int
	ImageMask  bool
	Decode     string // optional /Decode array, e.g. "[1 0]"
	Data       []byte
}

// Page describes one page of a fixture document
type Page struct {
	Width  float64
	Height float64
	// Origin moves the MediaBox lower-left corner
	OriginX float64
	OriginY float64
	// CropBox, when set, is written as [llx lly urx ury]
	CropBox []float64
	Rotate  int
	Images  []Image
	// FormImages are drawn through a nested form XObject
	FormImages []Image
}

// Gradient returns an RGB test picture with smooth colour ramps
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) % 256),
				A: 0xff,
			})
		}
	}
	return img
}

// EncodeJPEG encodes img at quality
func EncodeJPEG(img image.Image, quality int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEGImage is a DCT encoded RGB gradient
func JPEGImage(w, h int) Image {
	return Image{
		Width:      w,
		Height:     h,
		Filter:     "DCTDecode",
		ColorSpace: "/DeviceRGB",
		BPC:        8,
		Data:       EncodeJPEG(Gradient(w, h), 95),
	}
}

// FlateRGBImage is a Flate compressed 8-bit RGB gradient
func FlateRGBImage(w, h int) Image {
	img := Gradient(w, h)
	samples := make([]byte, 0, w*h*3)
	for i := 0; i < len(img.Pix); i += 4 {
		samples = append(samples, img.Pix[i], img.Pix[i+1], img.Pix[i+2])
	}
	return Image{
		Width:      w,
		Height:     h,
		Filter:     "FlateDecode",
		ColorSpace: "/DeviceRGB",
		BPC:        8,
		Data:       Deflate(samples),
	}
}

// IndexedImage is an unfiltered 8-bit image alternating between red and blue
func IndexedImage(w, h int) Image {
	samples := make([]byte, w*h)
	for i := range samples {
		samples[i] = byte(i % 2)
	}
	return Image{
		Width:      w,
		Height:     h,
		ColorSpace: "[/Indexed /DeviceRGB 1 <FF00000000FF>]",
		BPC:        8,
		Data:       samples,
	}
}

// GrayImage is an unfiltered 8-bit DeviceGray image with every sample set
// to value
func GrayImage(w, h int, value byte) Image {
	return Image{
		Width:      w,
		Height:     h,
		ColorSpace: "/DeviceGray",
		BPC:        8,
		Data:       bytes.Repeat([]byte{value}, w*h),
	}
}

// CorruptJPEGImage claims DCTDecode but carries bytes no decoder accepts
func CorruptJPEGImage(w, h int) Image {
	return Image{
		Width:      w,
		Height:     h,
		Filter:     "DCTDecode",
		ColorSpace: "/DeviceRGB",
		BPC:        8,
		Data:       []byte("this is not a jpeg stream at all"),
	}
}

// JPXImage has a filter the transform cannot decode
func JPXImage(w, h int) Image {
	return Image{
		Width:      w,
		Height:     h,
		Filter:     "JPXDecode",
		ColorSpace: "/DeviceRGB",
		BPC:        8,
		Data:       []byte{0, 0, 0, 12, 'j', 'P', ' ', ' '},
	}
}

// Deflate compresses data in zlib format, as FlateDecode expects
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// Broken returns bytes that start like a PDF but cannot be parsed
func Broken() []byte {
	return []byte("%PDF-1.4\nthis file ends before any object\n")
}

// Build returns a complete PDF with the given pages
func Build(pages ...Page) []byte {
	b := &builder{}
	catalog := b.reserve()
	pagesObj := b.reserve()

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", b.page(p, pagesObj)))
	}

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj))
	b.set(pagesObj, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	return b.bytes(catalog)
}

type builder struct {
	objects [][]byte
}

func (b *builder) reserve() int {
	b.objects = append(b.objects, nil)
	return len(b.objects)
}

func (b *builder) set(n int, body string) {
	b.objects[n-1] = []byte(body)
}

func (b *builder) add(body string) int {
	n := b.reserve()
	b.set(n, body)
	return n
}

func (b *builder) stream(dict string, data []byte) int {
	n := b.reserve()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< %s /Length %d >>\nstream\n", dict, len(data))
	buf.Write(data)
	buf.WriteString("\nendstream")
	b.objects[n-1] = buf.Bytes()
	return n
}

func (b *builder) image(img Image) int {
	dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d", img.Width, img.Height)
	if img.ImageMask {
		dict += " /ImageMask true"
	} else {
		dict += fmt.Sprintf(" /ColorSpace %s /BitsPerComponent %d", img.ColorSpace, img.BPC)
	}
	if img.Decode != "" {
		dict += " /Decode " + img.Decode
	}
	if img.Filter != "" {
		dict += " /Filter /" + img.Filter
	}
	return b.stream(dict, img.Data)
}

// drawImages returns operators painting each image in a row and the
// matching XObject resource entries
func (b *builder) drawImages(images []Image, prefix string) (string, []string) {
	var ops, res []string
	for i, img := range images {
		name := fmt.Sprintf("%s%d", prefix, i)
		obj := b.image(img)
		res = append(res, fmt.Sprintf("/%s %d 0 R", name, obj))
		ops = append(ops, fmt.Sprintf("q %d 0 0 %d %d 10 cm /%s Do Q", img.Width/4+1, img.Height/4+1, 10+i*20, name))
	}
	return strings.Join(ops, "\n"), res
}

func (b *builder) page(p Page, parent int) int {
	ops := []string{"0 0 1 rg 10 10 50 50 re f"}
	imgOps, xobjects := b.drawImages(p.Images, "Im")
	if imgOps != "" {
		ops = append(ops, imgOps)
	}

	if len(p.FormImages) > 0 {
		formOps, formRes := b.drawImages(p.FormImages, "FIm")
		form := b.stream(
			fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 %g %g] /Resources << /XObject << %s >> >>",
				p.Width, p.Height, strings.Join(formRes, " ")),
			[]byte(formOps))
		xobjects = append(xobjects, fmt.Sprintf("/Fm0 %d 0 R", form))
		ops = append(ops, "q /Fm0 Do Q")
	}

	content := b.stream("", []byte(strings.Join(ops, "\n")))

	dict := fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [%g %g %g %g] /Contents %d 0 R",
		parent, p.OriginX, p.OriginY, p.OriginX+p.Width, p.OriginY+p.Height, content)
	if len(p.CropBox) == 4 {
		dict += fmt.Sprintf(" /CropBox [%g %g %g %g]", p.CropBox[0], p.CropBox[1], p.CropBox[2], p.CropBox[3])
	}
	if p.Rotate != 0 {
		dict += fmt.Sprintf(" /Rotate %d", p.Rotate)
	}
	dict += " /Resources <<"
	if len(xobjects) > 0 {
		dict += " /XObject << " + strings.Join(xobjects, " ") + " >>"
	}
	dict += " >> >>"
	return b.add(dict)
}

func (b *builder) bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, root, xref)
	return buf.Bytes()
}
