package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxTreeDepth bounds Parent chains and nested form XObjects
const maxTreeDepth = 32

func init() {
	// pdfcpu would otherwise create a config dir under the user's home
	api.DisableConfigDir()
}

// Document is a parsed input PDF. The original bytes are kept because the
// transform builds its output from a second parse of the same file.
type Document struct {
	data  []byte
	ctx   *model.Context
	pages []Page
}

// Page describes one page of the input document
type Page struct {
	Number int
	// Width and Height are the visible size, swapped for 90/270 rotation
	Width  float64
	Height float64
	Rotate int
	// Box is the visible rectangle in default user space (CropBox or MediaBox)
	Box    *types.Rectangle
	Images []ImageRef
}

// ImageRef identifies an image XObject reachable from a page
type ImageRef struct {
	ObjNr int
	// Name is the resource name, Path includes the enclosing form names
	Name             string
	Path             string
	Width            int
	Height           int
	Filter           string
	ColorSpace       string
	BitsPerComponent int
	ImageMask        bool

	indRef types.IndirectRef
}

// Open reads and parses the PDF at path
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadableError(fmt.Sprintf("failed to read %s", path), err)
	}
	return Load(data)
}

// Read parses a PDF from r
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, unreadableError("failed to read input", err)
	}
	return Load(data)
}

// Load parses a PDF held in memory
func Load(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, unreadableError("empty input", nil)
	}

	ctx, err := readContext(data)
	if err != nil {
		return nil, unreadableError("failed to parse PDF", err)
	}

	doc := &Document{data: data, ctx: ctx}
	if err := doc.loadPages(); err != nil {
		return nil, unreadableError("failed to read page tree", err)
	}
	return doc, nil
}

// newConfiguration returns the pdfcpu configuration used for reading and
// writing. Relaxed validation accepts the usual real-world defects.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	return conf
}

// readContext parses data into a fresh pdfcpu context
func readContext(data []byte) (ctx *model.Context, err error) {
	// pdfcpu panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			ctx, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	ctx, err = api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	if ctx.PageCount == 0 {
		return nil, errors.New("document has no pages")
	}
	return ctx, nil
}

func (d *Document) loadPages() error {
	d.pages = make([]Page, 0, d.ctx.PageCount)
	for i := 1; i <= d.ctx.PageCount; i++ {
		pageDict, _, inh, err := d.ctx.PageDict(i, false)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if pageDict == nil || inh == nil {
			return fmt.Errorf("page %d: missing page dictionary", i)
		}

		box := inh.CropBox
		if box == nil {
			box = inh.MediaBox
		}
		if box == nil || box.Width() <= 0 || box.Height() <= 0 {
			return fmt.Errorf("page %d: invalid page box", i)
		}

		page := Page{
			Number: i,
			Width:  box.Width(),
			Height: box.Height(),
			Rotate: normalizeRotation(inh.Rotate),
			Box:    box,
		}
		if page.Rotate == 90 || page.Rotate == 270 {
			page.Width, page.Height = page.Height, page.Width
		}

		w := imageWalker{ctx: d.ctx, seen: map[int]bool{}, forms: map[int]bool{}}
		w.walk(inheritedResources(d.ctx, pageDict), "", 0)
		page.Images = w.images

		d.pages = append(d.pages, page)
	}
	return nil
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Pages returns all pages in order
func (d *Document) Pages() []Page {
	return d.pages
}

// Page returns the 1-based page n
func (d *Document) Page(n int) (Page, error) {
	if n < 1 || n > len(d.pages) {
		return Page{}, fmt.Errorf("page %d out of range (1-%d)", n, len(d.pages))
	}
	return d.pages[n-1], nil
}

// HasImages reports whether any page references at least one image
func (d *Document) HasImages() bool {
	for _, p := range d.pages {
		if len(p.Images) > 0 {
			return true
		}
	}
	return false
}

// ImageCount returns the number of image references over all pages. An
// image shared by several pages is counted once per page.
func (d *Document) ImageCount() int {
	n := 0
	for _, p := range d.pages {
		n += len(p.Images)
	}
	return n
}

// Bytes returns the original file contents
func (d *Document) Bytes() []byte {
	return d.data
}

// Size returns the original file size in bytes
func (d *Document) Size() int64 {
	return int64(len(d.data))
}

// Close releases the parsed document
func (d *Document) Close() error {
	d.ctx = nil
	return nil
}

func normalizeRotation(rot int) int {
	rot %= 360
	if rot < 0 {
		rot += 360
	}
	// Only multiples of 90 are valid; anything else is treated as upright
	if rot%90 != 0 {
		return 0
	}
	return rot
}

// inheritedResources returns the page's resource dictionary, following the
// Parent chain when the page itself has none.
func inheritedResources(ctx *model.Context, pageDict types.Dict) types.Object {
	dict := pageDict
	for depth := 0; dict != nil && depth < maxTreeDepth; depth++ {
		if res, ok := dict["Resources"]; ok && res != nil {
			return res
		}
		parent, err := resolveDict(ctx, dict["Parent"])
		if err != nil {
			return nil
		}
		dict = parent
	}
	return nil
}

// imageWalker collects the image XObjects of one page
type imageWalker struct {
	ctx    *model.Context
	seen   map[int]bool
	forms  map[int]bool
	images []ImageRef
}

func (w *imageWalker) walk(resources types.Object, prefix string, depth int) {
	if depth >= maxTreeDepth {
		return
	}
	res, err := resolveDict(w.ctx, resources)
	if err != nil || res == nil {
		return
	}
	xobjects, err := resolveDict(w.ctx, res["XObject"])
	if err != nil || xobjects == nil {
		return
	}

	names := make([]string, 0, len(xobjects))
	for name := range xobjects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref, ok := xobjects[name].(types.IndirectRef)
		if !ok {
			continue
		}
		objNr := ref.ObjectNumber.Value()
		sd, err := resolveStream(w.ctx, ref)
		if err != nil || sd == nil {
			continue
		}

		subtype, _ := resolveName(w.ctx, sd.Dict["Subtype"])
		switch subtype {
		case "Image":
			if w.seen[objNr] {
				continue
			}
			w.seen[objNr] = true
			w.images = append(w.images, newImageRef(w.ctx, ref, name, prefix+name, sd.Dict))
		case "Form":
			if w.forms[objNr] {
				continue
			}
			w.forms[objNr] = true
			w.walk(sd.Dict["Resources"], prefix+name+"/", depth+1)
		}
	}
}

func newImageRef(ctx *model.Context, ref types.IndirectRef, name, path string, dict types.Dict) ImageRef {
	img := ImageRef{
		ObjNr:  ref.ObjectNumber.Value(),
		Name:   name,
		Path:   path,
		indRef: ref,
	}
	img.Width, _ = resolveInt(ctx, dict["Width"])
	img.Height, _ = resolveInt(ctx, dict["Height"])
	img.BitsPerComponent, _ = resolveInt(ctx, dict["BitsPerComponent"])
	img.ImageMask, _ = resolveBool(ctx, dict["ImageMask"])
	img.Filter = strings.Join(filterNames(ctx, dict["Filter"]), ",")
	img.ColorSpace = colorSpaceName(ctx, dict["ColorSpace"])
	return img
}

// filterNames lists the filters of a stream dictionary entry
func filterNames(ctx *model.Context, o types.Object) []string {
	obj, err := resolve(ctx, o)
	if err != nil {
		return nil
	}
	switch f := obj.(type) {
	case types.Name:
		return []string{string(f)}
	case types.Array:
		names := make([]string, 0, len(f))
		for _, e := range f {
			if n, ok := resolveName(ctx, e); ok {
				names = append(names, n)
			}
		}
		return names
	}
	return nil
}

// colorSpaceName is a short description of a colour space entry
func colorSpaceName(ctx *model.Context, o types.Object) string {
	obj, err := resolve(ctx, o)
	if err != nil {
		return ""
	}
	switch cs := obj.(type) {
	case types.Name:
		return string(cs)
	case types.Array:
		if len(cs) == 0 {
			return ""
		}
		family, _ := resolveName(ctx, cs[0])
		return family
	}
	return ""
}
