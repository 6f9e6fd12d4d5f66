package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Optimizer rewrites the PDF at inPath into outPath using a quality preset
type Optimizer interface {
	Optimize(ctx context.Context, preset Preset, inPath, outPath string) error
}

// OptimizerFunc adapts a function to the Optimizer interface
type OptimizerFunc func(ctx context.Context, preset Preset, inPath, outPath string) error

func (f OptimizerFunc) Optimize(ctx context.Context, preset Preset, inPath, outPath string) error {
	return f(ctx, preset, inPath, outPath)
}

// Ghostscript runs the gs pdfwrite device as the external optimizer
type Ghostscript struct {
	// Binary defaults to "gs" from PATH
	Binary string
	// Timeout of zero lets the tool run until it exits
	Timeout time.Duration
	// CompatibilityLevel defaults to 1.4
	CompatibilityLevel string
	Logger             zerolog.Logger
}

// NewGhostscript returns a Ghostscript optimizer with default settings
func NewGhostscript(binary string, timeout time.Duration, logger zerolog.Logger) *Ghostscript {
	return &Ghostscript{
		Binary:             binary,
		Timeout:            timeout,
		CompatibilityLevel: DefaultCompatibilityLevel,
		Logger:             logger,
	}
}

func (g *Ghostscript) binary() string {
	if g.Binary == "" {
		return DefaultGhostscriptBinary
	}
	return g.Binary
}

// Args returns the command line arguments for one run
func (g *Ghostscript) Args(preset Preset, inPath, outPath string) []string {
	level := g.CompatibilityLevel
	if level == "" {
		level = DefaultCompatibilityLevel
	}
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=" + level,
		"-dPDFSETTINGS=/" + string(preset),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + outPath,
		inPath,
	}
}

// Optimize runs gs and fails with an optimizer error on non-zero exit or
// timeout
func (g *Ghostscript) Optimize(ctx context.Context, preset Preset, inPath, outPath string) error {
	if preset == "" {
		return optimizerError("empty optimizer preset", nil)
	}

	start := time.Now()
	output, err := runCommand(ctx, g.Timeout, g.binary(), g.Args(preset, inPath, outPath)...)
	if err != nil {
		return optimizerError(fmt.Sprintf("%s failed with preset %s", g.binary(), preset), commandError(err, output))
	}

	g.Logger.Debug().
		Str("preset", string(preset)).
		Str("input", inPath).
		Str("output", outPath).
		Dur("elapsed", time.Since(start)).
		Msg("Ghostscript finished")
	return nil
}

// CheckGhostscript returns the version of the gs binary, or an optimizer
// error when it cannot be run
func CheckGhostscript(ctx context.Context, binary string) (string, error) {
	if binary == "" {
		binary = DefaultGhostscriptBinary
	}
	output, err := runCommand(ctx, ProbeTimeout, binary, "-version")
	if err != nil {
		return "", optimizerError(fmt.Sprintf("%s is not available", binary), commandError(err, output))
	}
	return strings.TrimSpace(string(output)), nil
}
