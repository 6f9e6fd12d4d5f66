package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"
)

// Options tune a transform run
type Options struct {
	Logger zerolog.Logger
	// OnPage is called after each page has been rebuilt
	OnPage func(done, total int)
}

// PageReport lists what happened to the images of one page
type PageReport struct {
	Number  int           `json:"number"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Written []ImageResult `json:"written"`
	Skipped []ImageResult `json:"skipped"`
}

// Report summarizes a transform run
type Report struct {
	CompressionType string        `json:"compression_type"`
	Settings        ImageSettings `json:"settings"`
	Pages           []PageReport  `json:"pages"`
}

// WrittenCount is the number of images placed on output pages
func (r *Report) WrittenCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Written)
	}
	return n
}

// SkippedCount is the number of images dropped after a processing error
func (r *Report) SkippedCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Skipped)
	}
	return n
}

// OutputDocument is the rebuilt document, held in memory until written
type OutputDocument struct {
	ctx     *model.Context
	pages   int
	written bool
}

// PageCount returns the number of output pages
func (o *OutputDocument) PageCount() int {
	return o.pages
}

// Write serializes the document with object and xref streams. It can only
// be called once.
func (o *OutputDocument) Write(w io.Writer) error {
	if o.written {
		return errors.New("output document already written")
	}
	o.written = true
	if err := api.WriteContext(o.ctx, w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// WriteFile writes the document to path. A partial file is removed on failure.
func (o *OutputDocument) WriteFile(path string) error {
	// Serialize fully before touching the destination
	var buf bytes.Buffer
	if err := o.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to save output: %w", err)
	}
	return nil
}

// RecompressImages rebuilds every page of doc: the original page is drawn
// as a form XObject and each of its images, re-encoded as JPEG, is painted
// over the full page rectangle. compressionType "less" keeps image size at
// quality 85; anything else scales by 0.7 at quality 65.
func RecompressImages(doc *Document, compressionType string, opts Options) (*OutputDocument, *Report, error) {
	if doc == nil || doc.ctx == nil {
		return nil, nil, unreadableError("document is not open", nil)
	}
	settings := SettingsFor(compressionType)
	log := opts.Logger

	// The output is a second parse of the input, so the original pages can
	// be embedded without copying objects between contexts
	out, err := readContext(doc.data)
	if err != nil {
		return nil, nil, unreadableError("failed to create output document", err)
	}
	if out.PageCount != doc.PageCount() {
		return nil, nil, fmt.Errorf("output has %d pages, input has %d", out.PageCount, doc.PageCount())
	}

	report := &Report{CompressionType: compressionType, Settings: settings}
	total := doc.PageCount()
	for i, page := range doc.pages {
		pr := PageReport{
			Number:  page.Number,
			Width:   page.Width,
			Height:  page.Height,
			Written: []ImageResult{},
			Skipped: []ImageResult{},
		}

		var overlays []overlay
		for _, ref := range page.Images {
			res, data := doc.recompressImage(page.Number, ref, settings)
			if res.Err != nil {
				log.Warn().
					Int("page", page.Number).
					Str("image", ref.Path).
					Int("obj", ref.ObjNr).
					Stack().
					Err(res.Err).
					Msg("Skipping image")
				pr.Skipped = append(pr.Skipped, res)
				continue
			}
			pr.Written = append(pr.Written, res)
			overlays = append(overlays, overlay{data: data, width: res.Width, height: res.Height})
		}

		if err := rebuildPage(out, page, overlays); err != nil {
			return nil, nil, fmt.Errorf("failed to rebuild page %d: %w", page.Number, err)
		}
		log.Debug().
			Int("page", page.Number).
			Int("written", len(pr.Written)).
			Int("skipped", len(pr.Skipped)).
			Msg("Page rebuilt")

		report.Pages = append(report.Pages, pr)
		if opts.OnPage != nil {
			opts.OnPage(i+1, total)
		}
	}

	return &OutputDocument{ctx: out, pages: total}, report, nil
}

// overlay is a re-encoded image waiting to be placed on its page
type overlay struct {
	data   []byte
	width  int
	height int
}

// rebuildPage replaces the content of page n in ctx with the embedded
// original page followed by the overlays.
func rebuildPage(ctx *model.Context, page Page, overlays []overlay) error {
	pageDict, _, _, err := ctx.PageDict(page.Number, false)
	if err != nil {
		return err
	}
	if pageDict == nil {
		return fmt.Errorf("page %d not found", page.Number)
	}

	// Must run before the page resources are replaced
	formRef, err := embedPageForm(ctx, pageDict, page)
	if err != nil {
		return fmt.Errorf("embed original page: %w", err)
	}

	xobjects := types.Dict{pageFormName: *formRef}
	var buf bytes.Buffer
	buf.WriteString(pageFormOperators(page))
	for i, ov := range overlays {
		ref, err := embedJPEG(ctx, ov)
		if err != nil {
			return fmt.Errorf("embed image: %w", err)
		}
		name := fmt.Sprintf("%s%d", overlayImagePrefix, i)
		xobjects[name] = *ref
		buf.WriteString(overlayOperators(name, page.Width, page.Height))
	}

	contentRef, err := newFlateStream(ctx, buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("content stream: %w", err)
	}

	box := types.RectForWidthAndHeight(0, 0, page.Width, page.Height).Array()
	pageDict["Contents"] = *contentRef
	pageDict["Resources"] = types.Dict{"XObject": xobjects}
	pageDict["MediaBox"] = box
	// Rotate and CropBox are inheritable, so they are overwritten rather
	// than deleted
	pageDict["CropBox"] = box
	pageDict["Rotate"] = types.Integer(0)
	for _, key := range []string{"BleedBox", "TrimBox", "ArtBox", "Annots"} {
		delete(pageDict, key)
	}
	return nil
}

// pageFormOperators draws the original page so that its visible box,
// after rotation, fills the new unrotated page.
func pageFormOperators(page Page) string {
	var buf bytes.Buffer
	buf.WriteString("q\n")
	buf.WriteString(rotationOperator(page.Rotate, page.Box.Width(), page.Box.Height()))
	fmt.Fprintf(&buf, "1 0 0 1 %.4f %.4f cm\n/%s Do\nQ\n", 0-page.Box.LL.X, 0-page.Box.LL.Y, pageFormName)
	return buf.String()
}

// rotationOperator maps a w x h box rotated clockwise by rot degrees onto
// an upright page with its lower-left corner at the origin
func rotationOperator(rot int, w, h float64) string {
	switch rot {
	case 90:
		return fmt.Sprintf("0 -1 1 0 0 %.4f cm\n", w)
	case 180:
		return fmt.Sprintf("-1 0 0 -1 %.4f %.4f cm\n", w, h)
	case 270:
		return fmt.Sprintf("0 1 -1 0 %.4f 0 cm\n", h)
	}
	return ""
}

// overlayOperators paints an image over the full page rectangle
func overlayOperators(name string, width, height float64) string {
	return fmt.Sprintf("q\n%.4f 0 0 %.4f 0 0 cm\n/%s Do\nQ\n", width, height, name)
}

// embedPageForm turns the page content and resources into a form XObject
func embedPageForm(ctx *model.Context, pageDict types.Dict, page Page) (*types.IndirectRef, error) {
	content := []byte{}
	if _, ok := pageDict["Contents"]; ok {
		c, err := ctx.PageContent(pageDict, page.Number)
		if err != nil {
			return nil, err
		}
		content = c
	}

	dict := types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    page.Box.Array(),
	}
	if res := inheritedResources(ctx, pageDict); res != nil {
		dict["Resources"] = res
	}
	if group, ok := pageDict["Group"]; ok {
		dict["Group"] = group
	}
	return newFlateStream(ctx, content, dict)
}

// newFlateStream adds a Flate compressed stream with the extra entries of
// dict to ctx
func newFlateStream(ctx *model.Context, content []byte, dict types.Dict) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	for k, v := range dict {
		sd.Dict[k] = v
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(*sd)
}

// embedJPEG adds a DCT encoded RGB image XObject to ctx
func embedJPEG(ctx *model.Context, ov overlay) (*types.IndirectRef, error) {
	sd := types.StreamDict{
		Dict: types.Dict{
			"Type":             types.Name("XObject"),
			"Subtype":          types.Name("Image"),
			"Width":            types.Integer(ov.width),
			"Height":           types.Integer(ov.height),
			"ColorSpace":       types.Name("DeviceRGB"),
			"BitsPerComponent": types.Integer(8),
			"Filter":           types.Name("DCTDecode"),
		},
		Content: ov.data,
	}
	// Without a filter pipeline Encode stores the JPEG bytes as they are
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(sd)
}
