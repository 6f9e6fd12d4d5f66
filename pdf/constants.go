package pdf

const (
	// LessQuality is the JPEG quality used for the "less" compression type
	LessQuality = 85

	// LessResizeRatio keeps images at their original size
	LessResizeRatio = 1.0

	// ExtremeQuality is the JPEG quality for any other compression type
	ExtremeQuality = 65

	// ExtremeResizeRatio scales image width and height down to 70%
	ExtremeResizeRatio = 0.7

	// DefaultCompatibilityLevel is the PDF version requested from the optimizer
	DefaultCompatibilityLevel = "1.4"

	// DefaultGhostscriptBinary is looked up in PATH
	DefaultGhostscriptBinary = "gs"

	// pageFormName is the resource name of the embedded original page
	pageFormName = "PageForm"

	// overlayImagePrefix prefixes the resource names of re-encoded images
	overlayImagePrefix = "Img"
)
