package main

import (
	"fmt"
	"io"

	"pdf_compressor/pdf"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	compressTier   string
	compressOutDir string
)

var compressCmd = &cobra.Command{
	Use:   "compress <input.pdf>",
	Short: "Compress one PDF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, logger, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		compressor := &pdf.Compressor{
			Optimizer: newOptimizer(cfg, logger),
			Logger:    logger,
			OnPage: func(done, total int) {
				if bar == nil {
					bar = newPageBar(cmd.ErrOrStderr(), total)
				}
				_ = bar.Set(done)
			},
		}

		result, err := compressor.Compress(cmd.Context(), pdf.Request{
			InputPath: args[0],
			OutputDir: compressOutDir,
			Tier:      compressTier,
		})
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "✗ %v\n", err)
			return err
		}

		printResult(out, result)
		return nil
	},
}

func init() {
	compressCmd.Flags().StringVarP(&compressTier, "tier", "t", string(pdf.TierLess), "compression tier: less or extreme")
	compressCmd.Flags().StringVarP(&compressOutDir, "out-dir", "o", "", "output directory (default: next to the input)")
}

func newPageBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Rebuilding pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
}

func printResult(out io.Writer, result *pdf.Result) {
	color.New(color.FgGreen).Fprintf(out, "✓ %s\n", result.OutputPath)

	strategy := string(result.Branch)
	if result.Preset != "" {
		strategy += " (" + string(result.Preset) + ")"
	}
	fmt.Fprintf(out, "  Strategy: %s\n", strategy)
	fmt.Fprintf(out, "  Size:     %s -> %s", formatBytes(result.InputSize), formatBytes(result.OutputSize))
	if result.InputSize > 0 {
		fmt.Fprintf(out, " (%.1f%% saved)", 100*float64(result.Saved())/float64(result.InputSize))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Time:     %.2fs\n", result.Duration.Seconds())

	if result.Report == nil {
		return
	}
	fmt.Fprintf(out, "  Images:   %d re-encoded, %d skipped\n", result.Report.WrittenCount(), result.Report.SkippedCount())
	for _, page := range result.Report.Pages {
		for _, skipped := range page.Skipped {
			color.New(color.FgYellow).Fprintf(out, "  ⚠ page %d, %s: %s\n", page.Number, skipped.Name, skipped.Error())
		}
	}
}
