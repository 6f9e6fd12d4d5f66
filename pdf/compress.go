package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Compressor runs a full compression request: tier validation, loading,
// strategy selection and the chosen branch
type Compressor struct {
	Optimizer Optimizer
	Logger    zerolog.Logger
	// Now defaults to time.Now and drives output naming
	Now func() time.Time
	// OnPage reports transform progress
	OnPage func(done, total int)
}

// Request describes one compression job
type Request struct {
	InputPath string
	// OutputDir defaults to the directory of the input
	OutputDir string
	Tier      string
}

// Result describes a finished compression job
type Result struct {
	OutputPath string        `json:"output_path"`
	Tier       Tier          `json:"tier"`
	Branch     Branch        `json:"branch"`
	Preset     Preset        `json:"preset,omitempty"`
	InputSize  int64         `json:"input_size"`
	OutputSize int64         `json:"output_size"`
	Duration   time.Duration `json:"duration"`
	// Report is only set for the transform branch
	Report *Report `json:"report,omitempty"`
}

// Saved returns the number of bytes saved, negative when the output grew
func (r *Result) Saved() int64 {
	return r.InputSize - r.OutputSize
}

// Ratio returns output size divided by input size
func (r *Result) Ratio() float64 {
	if r.InputSize == 0 {
		return 0
	}
	return float64(r.OutputSize) / float64(r.InputSize)
}

func (c *Compressor) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Compress runs req. An invalid tier is rejected before any file is read.
func (c *Compressor) Compress(ctx context.Context, req Request) (*Result, error) {
	tier, err := ParseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	start := c.now()
	doc, err := Open(req.InputPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	strategy, err := SelectStrategy(doc, tier)
	if err != nil {
		return nil, err
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(req.InputPath)
	}
	outPath := filepath.Join(outDir, OutputName(string(tier), start))

	log := c.Logger.With().
		Str("tier", string(tier)).
		Str("branch", string(strategy.Branch)).
		Logger()
	log.Info().
		Str("input", req.InputPath).
		Int("pages", doc.PageCount()).
		Int("images", doc.ImageCount()).
		Str("preset", string(strategy.Preset)).
		Msg("Compressing PDF")

	result := &Result{
		OutputPath: outPath,
		Tier:       tier,
		Branch:     strategy.Branch,
		Preset:     strategy.Preset,
		InputSize:  doc.Size(),
	}

	switch strategy.Branch {
	case BranchTransform:
		out, report, err := RecompressImages(doc, string(tier), Options{Logger: log, OnPage: c.OnPage})
		if err != nil {
			return nil, err
		}
		if err := out.WriteFile(outPath); err != nil {
			return nil, err
		}
		result.Report = report
	case BranchOptimizer:
		if err := c.optimize(ctx, strategy.Preset, req.InputPath, outPath); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown branch %q", strategy.Branch)
	}

	result.OutputSize, err = outputSize(strategy.Branch, outPath)
	if err != nil {
		return nil, err
	}
	result.Duration = c.now().Sub(start)

	log.Info().
		Str("output", outPath).
		Int64("input_size", result.InputSize).
		Int64("output_size", result.OutputSize).
		Dur("duration", result.Duration).
		Msg("Compression finished")
	return result, nil
}

func (c *Compressor) optimize(ctx context.Context, preset Preset, inPath, outPath string) error {
	if c.Optimizer == nil {
		return optimizerError("no optimizer configured", nil)
	}
	if err := c.Optimizer.Optimize(ctx, preset, inPath, outPath); err != nil {
		os.Remove(outPath)
		var pe *Error
		if !errors.As(err, &pe) {
			return optimizerError("optimizer failed", err)
		}
		return err
	}
	return nil
}

// outputSize stats the file a branch produced. Only a missing optimizer
// output is an optimizer failure.
func outputSize(branch Branch, path string) (int64, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Size(), nil
	}
	if branch == BranchOptimizer {
		return 0, optimizerError("no output file was produced", err)
	}
	return 0, fmt.Errorf("output file missing after %s: %w", branch, err)
}
