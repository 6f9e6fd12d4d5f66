package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pdfPkg "pdf_compressor/pdf"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler serves the compression API. Compression requests are serialized:
// only one runs at a time per process.
type Handler struct {
	config     *Config
	compressor *pdfPkg.Compressor
	logger     zerolog.Logger

	mu sync.Mutex
}

// NewHandler creates a Handler
func NewHandler(config *Config, compressor *pdfPkg.Compressor, logger zerolog.Logger) *Handler {
	if config.OutputRetention <= 0 {
		config.OutputRetention = DefaultOutputRetention
	}
	return &Handler{config: config, compressor: compressor, logger: logger}
}

// HandleCompress compresses an uploaded PDF with the requested tier and
// returns where to download the result
func (h *Handler) HandleCompress(c *gin.Context) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file provided"})
		return
	}
	defer file.Close()

	// The tier is checked before anything is written to disk
	tier := c.PostForm("tier")
	if _, err := pdfPkg.ParseTier(tier); err != nil {
		writeError(c, err)
		return
	}

	// Validate PDF file
	if err := validatePDFFile(file, header, h.config.MaxFileSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID := uuid.NewString()
	jobDir := filepath.Join(h.config.TempDir, jobID)
	if err := os.MkdirAll(jobDir, DefaultFilePermissions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temp directory"})
		return
	}

	inFile := filepath.Join(jobDir, inputFileName)
	if err := saveUpload(file, inFile); err != nil {
		os.RemoveAll(jobDir)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save input file"})
		return
	}

	h.mu.Lock()
	result, err := h.compressor.Compress(c.Request.Context(), pdfPkg.Request{
		InputPath: inFile,
		OutputDir: jobDir,
		Tier:      tier,
	})
	h.mu.Unlock()

	// The upload is no longer needed either way
	os.Remove(inFile)

	if err != nil {
		os.RemoveAll(jobDir)
		h.logger.Error().Stack().Err(err).Str("job", jobID).Msg("Compression failed")
		writeError(c, err)
		return
	}

	// Outputs stay downloadable for a while
	time.AfterFunc(h.config.OutputRetention, func() {
		os.RemoveAll(jobDir)
	})

	name := filepath.Base(result.OutputPath)
	response := gin.H{
		"filename":          name,
		"original_filename": sanitizeFilename(header.Filename),
		"download_url":      fmt.Sprintf("/api/pdf/download/%s/%s", jobID, name),
		"tier":              result.Tier,
		"branch":            result.Branch,
		"preset":            result.Preset,
		"original_size":     result.InputSize,
		"compressed_size":   result.OutputSize,
		"saved_bytes":       result.Saved(),
		"ratio":             result.Ratio(),
		"duration_seconds":  result.Duration.Seconds(),
		"written_images":    0,
		"skipped_images":    0,
	}
	if result.Report != nil {
		response["written_images"] = result.Report.WrittenCount()
		response["skipped_images"] = result.Report.SkippedCount()
	}
	c.JSON(http.StatusOK, response)
}

// HandleDownload streams a compressed file produced by HandleCompress
func (h *Handler) HandleDownload(c *gin.Context) {
	jobID := c.Param("id")
	name := c.Param("name")

	// Only names we generate are served, which rules out path traversal
	if _, err := uuid.Parse(jobID); err != nil || !pdfPkg.IsOutputName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid download reference"})
		return
	}

	path := filepath.Join(h.config.TempDir, jobID, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found or expired"})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.File(path)
}

// HandleAnalyze reports the page and image inventory of an uploaded PDF and
// the strategy each tier would use. The optional "pages" field limits the
// inventory to a page selection.
func (h *Handler) HandleAnalyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file provided"})
		return
	}
	defer file.Close()

	if err := validatePDFFile(file, header, h.config.MaxFileSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := pdfPkg.Read(io.LimitReader(file, h.config.MaxFileSize))
	if err != nil {
		writeError(c, err)
		return
	}
	defer doc.Close()

	pages, err := pdfPkg.ParsePageSpecifier(c.PostForm("pages"), doc.PageCount())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := pdfPkg.Analyze(doc, pages)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// statusFor maps compression errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, pdfPkg.ErrInvalidTier), errors.Is(err, pdfPkg.ErrUnreadablePdf):
		return http.StatusBadRequest
	case errors.Is(err, pdfPkg.ErrOptimizerFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError responds with the error, truncating long messages but keeping
// the key information
func writeError(c *gin.Context, err error) {
	errorMsg := err.Error()
	if len(errorMsg) > MaxErrorMessageLength {
		errorMsg = errorMsg[:MaxErrorMessageLength] + "..."
	}
	response := gin.H{"error": errorMsg}
	var pe *pdfPkg.Error
	if errors.As(err, &pe) {
		response["kind"] = pe.Kind
	}
	c.Error(err)
	c.JSON(statusFor(err), response)
}

func saveUpload(file multipart.File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = out.ReadFrom(file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	// Remove directory separators and path traversal attempts
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	// Get just the base filename to prevent path issues
	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)

	// If empty after sanitization, use default
	if filename == "" || filename == "." {
		filename = "document.pdf"
	}

	return filename
}

// validatePDFFile checks the upload size and the PDF header
func validatePDFFile(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed %d bytes", header.Size, maxSize)
	}

	// Read first 4 bytes to check PDF header
	buffer := make([]byte, 4)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("failed to read file header: %v", err)
	}

	if n < 4 || string(buffer) != "%PDF" {
		return fmt.Errorf("invalid PDF file: header does not match")
	}

	// Seek back to beginning for subsequent reads
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %v", err)
	}

	return nil
}
