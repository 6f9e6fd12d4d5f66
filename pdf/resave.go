package pdf

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"
)

// Pdfcpu optimizes in-process with pdfcpu. It has no quality presets: every
// preset gets the same structural optimization (duplicate removal, object
// and xref streams), so it never recompresses images.
type Pdfcpu struct {
	Logger zerolog.Logger
}

// Optimize rewrites inPath into outPath
func (p Pdfcpu) Optimize(ctx context.Context, preset Preset, inPath, outPath string) (err error) {
	if err := ctx.Err(); err != nil {
		return optimizerError("optimization cancelled", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = optimizerError("pdfcpu optimize failed", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := api.OptimizeFile(inPath, outPath, newConfiguration()); err != nil {
		return optimizerError("pdfcpu optimize failed", err)
	}

	p.Logger.Debug().
		Str("preset", string(preset)).
		Str("output", outPath).
		Msg("pdfcpu optimize finished, preset ignored")
	return nil
}
