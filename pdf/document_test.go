package pdf

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf_compressor/internal/testpdf"
)

func TestLoadPages(t *testing.T) {
	doc := loadFixture(t,
		testpdf.Page{Width: 612, Height: 792},
		testpdf.Page{Width: 600, Height: 400, Rotate: 90},
		testpdf.Page{Width: 600, Height: 800, CropBox: []float64{50, 50, 550, 750}},
		testpdf.Page{Width: 300, Height: 200, OriginX: 100, OriginY: 40},
	)

	require.Equal(t, 4, doc.PageCount())
	pages := doc.Pages()

	assert.Equal(t, 1, pages[0].Number)
	assert.InDelta(t, 612, pages[0].Width, 0.001)
	assert.InDelta(t, 792, pages[0].Height, 0.001)
	assert.Equal(t, 0, pages[0].Rotate)

	// Rotated pages report their displayed size
	assert.InDelta(t, 400, pages[1].Width, 0.001)
	assert.InDelta(t, 600, pages[1].Height, 0.001)
	assert.Equal(t, 90, pages[1].Rotate)

	// CropBox wins over MediaBox
	assert.InDelta(t, 500, pages[2].Width, 0.001)
	assert.InDelta(t, 700, pages[2].Height, 0.001)
	assert.InDelta(t, 50, pages[2].Box.LL.X, 0.001)

	assert.InDelta(t, 300, pages[3].Width, 0.001)
	assert.InDelta(t, 100, pages[3].Box.LL.X, 0.001)
	assert.InDelta(t, 40, pages[3].Box.LL.Y, 0.001)

	assert.False(t, doc.HasImages())
	assert.Equal(t, 0, doc.ImageCount())

	p, err := doc.Page(2)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Number)
	_, err = doc.Page(5)
	assert.Error(t, err)
	_, err = doc.Page(0)
	assert.Error(t, err)
}

func TestLoadImages(t *testing.T) {
	doc := loadFixture(t, testpdf.Page{
		Width:      500,
		Height:     500,
		Images:     []testpdf.Image{testpdf.JPEGImage(64, 48), testpdf.FlateRGBImage(20, 10)},
		FormImages: []testpdf.Image{testpdf.JPEGImage(32, 16)},
	})

	require.True(t, doc.HasImages())
	images := doc.Pages()[0].Images
	require.Len(t, images, 3)

	// Ordered by resource name, form images carry the form name in the path
	assert.Equal(t, "Fm0/FIm0", images[0].Path)
	assert.Equal(t, "FIm0", images[0].Name)
	assert.Equal(t, 32, images[0].Width)
	assert.Equal(t, 16, images[0].Height)

	assert.Equal(t, "Im0", images[1].Path)
	assert.Equal(t, 64, images[1].Width)
	assert.Equal(t, 48, images[1].Height)
	assert.Equal(t, "DCTDecode", images[1].Filter)
	assert.Equal(t, "DeviceRGB", images[1].ColorSpace)
	assert.Equal(t, 8, images[1].BitsPerComponent)

	assert.Equal(t, "Im1", images[2].Path)
	assert.Equal(t, "FlateDecode", images[2].Filter)

	for _, img := range images {
		assert.NotZero(t, img.ObjNr)
	}
	assert.Equal(t, 3, doc.ImageCount())
}

func TestLoadUnreadable(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     {},
		"truncated": testpdf.Broken(),
		"not a pdf": []byte("hello world, definitely not a PDF"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnreadablePdf), "got %v", err)
		})
	}

	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, errors.Is(err, ErrUnreadablePdf))
}

func TestOpenAndRead(t *testing.T) {
	data := testpdf.Build(testpdf.Page{Width: 200, Height: 100})
	path := filepath.Join(t.TempDir(), "in.pdf")
	require.NoError(t, os.WriteFile(path, data, 0644))

	doc, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, int64(len(data)), doc.Size())
	assert.Equal(t, data, doc.Bytes())
	require.NoError(t, doc.Close())

	doc, err = Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
}

func TestExtractImage(t *testing.T) {
	doc := loadFixture(t, testpdf.Page{
		Width:  300,
		Height: 300,
		Images: []testpdf.Image{
			testpdf.JPEGImage(40, 30),
			testpdf.FlateRGBImage(16, 8),
			testpdf.IndexedImage(4, 2),
			testpdf.JPXImage(10, 10),
		},
	})
	images := doc.Pages()[0].Images
	require.Len(t, images, 4)

	jpg, err := doc.ExtractImage(images[0])
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, jpg.Format)
	img, err := jpg.Decode()
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	flate, err := doc.ExtractImage(images[1])
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, flate.Format)
	assert.Positive(t, flate.StreamLength)
	img, err = flate.Decode()
	require.NoError(t, err)
	want := testpdf.Gradient(16, 8)
	assert.Equal(t, want.RGBAAt(5, 3), color.RGBAModel.Convert(img.At(5, 3)))

	indexed, err := doc.ExtractImage(images[2])
	require.NoError(t, err)
	img, err = indexed.Decode()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, color.RGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.RGBA{0, 0, 0xff, 0xff}, color.RGBAModel.Convert(img.At(1, 0)))

	_, err = doc.ExtractImage(images[3])
	assert.ErrorContains(t, err, "JPXDecode")
}

func TestExtractImageAppliesDecodeArray(t *testing.T) {
	inverted := testpdf.GrayImage(8, 8, 0xff)
	inverted.Decode = "[1 0]"
	doc := loadFixture(t, testpdf.Page{
		Width:  200,
		Height: 200,
		Images: []testpdf.Image{testpdf.GrayImage(6, 6, 0xff), inverted},
	})
	images := doc.Pages()[0].Images
	require.Len(t, images, 2)

	plain, err := doc.ExtractImage(images[0])
	require.NoError(t, err)
	img, err := plain.Decode()
	require.NoError(t, err)
	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})

	asset, err := doc.ExtractImage(images[1])
	require.NoError(t, err)
	img, err = asset.Decode()
	require.NoError(t, err)
	r, g, b, _ = img.At(3, 3).RGBA()
	assert.Equal(t, []uint32{0, 0, 0}, []uint32{r, g, b})

	// The re-encoded JPEG keeps the inverted samples black
	data, size, err := ReencodeImage(asset, SettingsFor("less"))
	require.NoError(t, err)
	assert.Equal(t, 8, size.X)
	out, err := (&ImageAsset{Format: FormatJPEG, Data: data}).Decode()
	require.NoError(t, err)
	r, g, b, _ = out.At(4, 4).RGBA()
	assert.Less(t, r, uint32(0x1000))
	assert.Less(t, g, uint32(0x1000))
	assert.Less(t, b, uint32(0x1000))
}
