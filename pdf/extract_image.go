package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	_ "golang.org/x/image/tiff"
)

// ImageFormat is the file type pdfcpu renders an image XObject to
type ImageFormat string

const (
	// FormatJPEG is a DCT stream passed through unchanged
	FormatJPEG ImageFormat = "jpg"
	// FormatPNG is used for gray, RGB, indexed and most other samples
	FormatPNG ImageFormat = "png"
	// FormatTIFF is used for DeviceCMYK samples
	FormatTIFF ImageFormat = "tif"
)

// ImageAsset holds one image XObject rendered to an image file
type ImageAsset struct {
	Ref    ImageRef
	Format ImageFormat
	Data   []byte
	// StreamLength is the size of the stored, still encoded stream
	StreamLength int
}

// unsupportedFilters have no decoder in pdfcpu
var unsupportedFilters = map[string]bool{
	"JPXDecode":   true,
	"JBIG2Decode": true,
}

// ExtractImage renders an image referenced by a page to a JPEG, PNG or
// TIFF file. Decode arrays, soft masks and the colour spaces pdfcpu knows
// are applied while rendering.
func (d *Document) ExtractImage(ref ImageRef) (asset *ImageAsset, err error) {
	if d.ctx == nil {
		return nil, fmt.Errorf("document is closed")
	}

	sd, err := resolveStream(d.ctx, ref.indRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image object %d: %w", ref.ObjNr, err)
	}
	if sd == nil {
		return nil, fmt.Errorf("image object %d not found", ref.ObjNr)
	}
	for _, f := range sd.FilterPipeline {
		if unsupportedFilters[f.Name] {
			return nil, fmt.Errorf("unsupported image filter %s", f.Name)
		}
	}

	// pdfcpu decodes into the stream dict it is given, so it works on a
	// copy that starts from the stored bytes
	work := sd.Clone().(types.StreamDict)
	if work.Raw != nil {
		work.Content = nil
	}
	// Clone turns a missing pipeline into an empty one, which pdfcpu
	// treats as an unsupported filter
	if len(work.FilterPipeline) == 0 {
		work.FilterPipeline = nil
	}

	defer func() {
		if r := recover(); r != nil {
			asset, err = nil, fmt.Errorf("failed to render image object %d: %v", ref.ObjNr, r)
		}
	}()

	img, err := pdfcpu.ExtractImage(d.ctx, &work, false, ref.Name, ref.ObjNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to render image object %d: %w", ref.ObjNr, err)
	}
	if img == nil || img.Reader == nil {
		return nil, fmt.Errorf("unsupported image: colour space %s, filter %q", ref.ColorSpace, ref.Filter)
	}

	data, err := io.ReadAll(img.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered image: %w", err)
	}

	asset = &ImageAsset{
		Ref:          ref,
		Format:       ImageFormat(img.FileType),
		Data:         data,
		StreamLength: len(sd.Raw),
	}
	if asset.StreamLength == 0 {
		asset.StreamLength = len(sd.Content)
	}
	return asset, nil
}

// Decode turns the rendered file into an image
func (a *ImageAsset) Decode() (image.Image, error) {
	switch a.Format {
	case FormatJPEG, FormatPNG, FormatTIFF:
	default:
		return nil, fmt.Errorf("unknown image format %q", a.Format)
	}
	img, _, err := image.Decode(bytes.NewReader(a.Data))
	return img, err
}
