package pdf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ImageInfo describes one image reference for analysis output
type ImageInfo struct {
	ObjNr            int    `json:"obj"`
	Name             string `json:"name"`
	Path             string `json:"path"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Filter           string `json:"filter"`
	ColorSpace       string `json:"color_space"`
	BitsPerComponent int    `json:"bpc"`
	ImageMask        bool   `json:"image_mask"`
	Recompressible   bool   `json:"recompressible"` // false for JPX and JBIG2 images
}

// PageInfo is the inventory of one page
type PageInfo struct {
	Number int         `json:"number"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Rotate int         `json:"rotate"`
	Images []ImageInfo `json:"images"`
}

// Analysis is the inventory of a document and the strategy every tier would use
type Analysis struct {
	TotalPages      int               `json:"total_pages"`
	TotalImages     int               `json:"total_images"`
	UniqueImages    int               `json:"unique_images"`
	Recompressible  int               `json:"recompressible_images"`
	FileSize        int64             `json:"file_size"`
	Pages           []PageInfo        `json:"pages"`
	Strategies      map[Tier]Strategy `json:"strategies"`
	Recommendations []string          `json:"recommendations"`
}

// Analyze builds the inventory for the given pages, or for all pages when
// pages is empty
func Analyze(doc *Document, pages []int) (*Analysis, error) {
	if doc == nil {
		return nil, unreadableError("document is not open", nil)
	}
	if len(pages) > 0 {
		if err := ValidatePageNumbers(pages, doc.PageCount()); err != nil {
			return nil, err
		}
	} else {
		for _, p := range doc.Pages() {
			pages = append(pages, p.Number)
		}
	}

	analysis := &Analysis{
		TotalPages:      doc.PageCount(),
		FileSize:        doc.Size(),
		Pages:           []PageInfo{},
		Strategies:      map[Tier]Strategy{},
		Recommendations: []string{},
	}

	unique := map[int]bool{}
	for _, n := range pages {
		page, err := doc.Page(n)
		if err != nil {
			return nil, err
		}
		info := PageInfo{
			Number: page.Number,
			Width:  page.Width,
			Height: page.Height,
			Rotate: page.Rotate,
			Images: []ImageInfo{},
		}
		for _, ref := range page.Images {
			img := ImageInfo{
				ObjNr:            ref.ObjNr,
				Name:             ref.Name,
				Path:             ref.Path,
				Width:            ref.Width,
				Height:           ref.Height,
				Filter:           ref.Filter,
				ColorSpace:       ref.ColorSpace,
				BitsPerComponent: ref.BitsPerComponent,
				ImageMask:        ref.ImageMask,
				Recompressible:   recompressible(ref),
			}
			info.Images = append(info.Images, img)
			analysis.TotalImages++
			if !unique[ref.ObjNr] {
				unique[ref.ObjNr] = true
				if img.Recompressible {
					analysis.Recompressible++
				}
			}
		}
		analysis.Pages = append(analysis.Pages, info)
	}
	analysis.UniqueImages = len(unique)

	// Strategies depend on the whole document, not only the selected pages
	for _, tier := range Tiers {
		s, err := SelectStrategy(doc, tier)
		if err != nil {
			return nil, err
		}
		analysis.Strategies[tier] = s
	}

	if !doc.HasImages() {
		analysis.Recommendations = append(analysis.Recommendations,
			"No images found - both tiers use the external optimizer")
	} else {
		analysis.Recommendations = append(analysis.Recommendations,
			"Tier \"less\" re-encodes images as JPEG at quality 85 and keeps their size")
		if analysis.Recompressible < analysis.UniqueImages {
			analysis.Recommendations = append(analysis.Recommendations,
				fmt.Sprintf("%d image(s) use JPX or JBIG2 and would be skipped by tier \"less\"",
					analysis.UniqueImages-analysis.Recompressible))
		}
	}
	analysis.Recommendations = append(analysis.Recommendations,
		"Tier \"extreme\" runs the optimizer with the screen preset")

	return analysis, nil
}

// recompressible reports whether the transform can decode the image
func recompressible(ref ImageRef) bool {
	for _, f := range strings.Split(ref.Filter, ",") {
		if unsupportedFilters[f] {
			return false
		}
	}
	return true
}

// For JSON marshaling
func (a Analysis) String() string {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling analysis: %v", err)
	}
	return string(data)
}
